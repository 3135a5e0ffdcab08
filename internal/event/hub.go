// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Circle Contributors

package event

import (
	"log/slog"
	"sync"

	"github.com/samber/oops"

	"github.com/circlehub/circle/internal/account"
)

// DefaultBufferSize is the per-subscriber event buffer.
const DefaultBufferSize = 1024

// Config configures the Hub.
type Config struct {
	BufferSize int `koanf:"buffer_size" jsonschema:"minimum=1"`
}

// DefaultConfig returns the default event configuration.
func DefaultConfig() Config {
	return Config{BufferSize: DefaultBufferSize}
}

// Hub owns the channel of every account. Channels are created on first
// subscription. The hub has its own lock, separate from the account directory.
type Hub struct {
	bufferSize int
	logger     *slog.Logger

	mu       sync.Mutex
	channels map[account.ID]*Channel
	closed   bool
}

// HubOption configures a Hub.
type HubOption func(*Hub)

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(logger *slog.Logger) HubOption {
	return func(h *Hub) {
		if logger != nil {
			h.logger = logger
		}
	}
}

// NewHub creates a hub. A non-positive buffer size uses DefaultBufferSize.
func NewHub(cfg Config, opts ...HubOption) *Hub {
	h := &Hub{
		bufferSize: cfg.BufferSize,
		logger:     slog.Default(),
		channels:   make(map[account.ID]*Channel),
	}
	if h.bufferSize <= 0 {
		h.bufferSize = DefaultBufferSize
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Channel returns the channel of id, creating it if needed.
func (h *Hub) Channel(id account.ID) (*Channel, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return nil, oops.Code(ErrClosed).Errorf("event hub is closed")
	}
	c, ok := h.channels[id]
	if !ok {
		c = newChannel(id, h.bufferSize, h.logger)
		h.channels[id] = c
	}
	return c, nil
}

// Subscribe attaches a subscriber to the channel of id.
func (h *Hub) Subscribe(id account.ID) (*Subscription, error) {
	c, err := h.Channel(id)
	if err != nil {
		return nil, err
	}
	return c.Subscribe()
}

// Publish delivers e to the live subscribers of id. Events for accounts that
// never subscribed are discarded.
func (h *Hub) Publish(id account.ID, e Event) int {
	h.mu.Lock()
	c, ok := h.channels[id]
	h.mu.Unlock()

	if !ok {
		h.logger.Debug("event discarded, no channel",
			"account_id", id.String(),
			"event_type", e.Type,
		)
		return 0
	}
	return c.Publish(e)
}

// Close closes every channel. Later subscriptions fail and publishes are discarded.
func (h *Hub) Close() {
	h.mu.Lock()
	channels := h.channels
	h.channels = make(map[account.ID]*Channel)
	h.closed = true
	h.mu.Unlock()

	for _, c := range channels {
		c.Close()
	}
}
