// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Circle Contributors

package event

import (
	"log/slog"
	"sync"

	"github.com/samber/oops"

	"github.com/circlehub/circle/internal/account"
)

// ErrClosed is the code of errors returned when subscribing to a closed
// channel or hub.
const ErrClosed = "EVENT_CHANNEL_CLOSED"

// Channel fans out the events of one account to its live subscribers.
type Channel struct {
	owner      account.ID
	bufferSize int
	logger     *slog.Logger

	mu     sync.RWMutex
	subs   map[*Subscription]struct{}
	closed bool
}

func newChannel(owner account.ID, bufferSize int, logger *slog.Logger) *Channel {
	return &Channel{
		owner:      owner,
		bufferSize: bufferSize,
		logger:     logger,
		subs:       make(map[*Subscription]struct{}),
	}
}

// Subscribe attaches a new subscriber. Fails once the channel is closed.
func (c *Channel) Subscribe() (*Subscription, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil, oops.Code(ErrClosed).With("account_id", c.owner.String()).Errorf("event channel is closed")
	}

	sub := &Subscription{
		ch:      make(chan Event, c.bufferSize),
		channel: c,
	}
	c.subs[sub] = struct{}{}
	Subscribers.Inc()
	return sub, nil
}

// Subscribers returns the number of live subscribers.
func (c *Channel) Subscribers() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.subs)
}

// Publish offers e to every subscriber and returns how many accepted it.
// It never blocks: a subscriber whose buffer is full loses its backlog and
// resumes with e. Publishes to one channel are serialised, so every
// subscriber sees events in publish order.
func (c *Channel) Publish(e Event) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed || len(c.subs) == 0 {
		return 0
	}
	Published.WithLabelValues(string(e.Type)).Inc()

	delivered := 0
	for sub := range c.subs {
		select {
		case sub.ch <- e:
			delivered++
			continue
		default:
		}

		skipped := sub.drain()
		Dropped.Add(float64(skipped))
		c.logger.Warn("subscriber lagging, backlog skipped",
			"account_id", c.owner.String(),
			"event_id", e.ID.String(),
			"event_type", e.Type,
			"skipped", skipped,
		)
		// Only this publisher sends while the lock is held, so the drained
		// buffer has room.
		sub.ch <- e
		delivered++
	}
	return delivered
}

// Close ends every subscription. Receivers see their channel closed.
func (c *Channel) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	c.closed = true
	for sub := range c.subs {
		delete(c.subs, sub)
		close(sub.ch)
		Subscribers.Dec()
	}
}

func (c *Channel) remove(sub *Subscription) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.subs[sub]; !ok {
		return
	}
	delete(c.subs, sub)
	close(sub.ch)
	Subscribers.Dec()
}

// Subscription is one subscriber's view of a Channel.
type Subscription struct {
	ch      chan Event
	channel *Channel
}

// C returns the events of the subscription. It is closed when the
// subscription or its channel is closed.
func (s *Subscription) C() <-chan Event {
	return s.ch
}

// Close detaches the subscriber. Safe to call more than once.
func (s *Subscription) Close() {
	s.channel.remove(s)
}

func (s *Subscription) drain() int {
	n := 0
	for {
		select {
		case <-s.ch:
			n++
		default:
			return n
		}
	}
}
