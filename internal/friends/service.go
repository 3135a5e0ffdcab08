// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Circle Contributors

// Package friends implements the friend request workflow: an ordered pair of
// accounts moves from unrelated, to a pending request, to mutual friendship.
package friends

import (
	"context"
	"log/slog"
	"slices"

	"github.com/samber/oops"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/circlehub/circle/internal/account"
	"github.com/circlehub/circle/internal/event"
	"github.com/circlehub/circle/pkg/errutil"
)

var tracer = otel.Tracer("circle/friends")

const entityFriendRequest = "Friend Request"

// Publisher delivers events to the live subscribers of an account.
type Publisher interface {
	Publish(id account.ID, e event.Event) int
}

// Service runs friend requests against the account directory and notifies
// the accounts involved.
type Service struct {
	directory *account.Directory
	events    Publisher
	logger    *slog.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewService creates a Service.
func NewService(directory *account.Directory, events Publisher, opts ...Option) (*Service, error) {
	if directory == nil {
		return nil, oops.Code("FRIENDS_INVALID_SERVICE").Errorf("account directory is required")
	}
	if events == nil {
		return nil, oops.Code("FRIENDS_INVALID_SERVICE").Errorf("event publisher is required")
	}

	s := &Service{directory: directory, events: events, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Request records a friend request from requester to target and notifies
// target. It fails with NotFound if either account is unknown, AlreadyExisting
// if the request is already pending, and BadRequest for self-requests or
// accounts that are already friends.
func (s *Service) Request(ctx context.Context, requester, target account.ID) (err error) {
	ctx, span := tracer.Start(ctx, "friends.request", trace.WithAttributes(
		attribute.String("requester.id", requester.String()),
		attribute.String("target.id", target.String()),
	))
	defer func() {
		Requests.WithLabelValues("request", status(err)).Inc()
		endSpan(span, err)
	}()

	if requester == target {
		return errutil.BadRequest("you cannot befriend yourself")
	}

	err = s.directory.Update(func(w account.Writer) error {
		from, err := w.FindByID(requester)
		if err != nil {
			return err
		}
		to, err := w.FindByIDMut(target)
		if err != nil {
			return err
		}

		if to.HasPendingRequest(requester) {
			return errutil.AlreadyExisting(entityFriendRequest)
		}
		if from.HasFriend(target) {
			return errutil.BadRequest("that account is already your friend")
		}
		to.AddPendingRequest(requester)
		return nil
	})
	if err != nil {
		return err
	}

	s.events.Publish(target, event.FriendRequest(requester))
	s.logger.InfoContext(ctx, "friend request sent",
		"requester_id", requester.String(),
		"target_id", target.String(),
	)
	return nil
}

// Accept makes acceptor and requester friends. The request from requester
// must be pending on acceptor, otherwise it fails with NotFound. Both
// accounts are notified.
func (s *Service) Accept(ctx context.Context, acceptor, requester account.ID) (err error) {
	ctx, span := tracer.Start(ctx, "friends.accept", trace.WithAttributes(
		attribute.String("acceptor.id", acceptor.String()),
		attribute.String("requester.id", requester.String()),
	))
	defer func() {
		Requests.WithLabelValues("accept", status(err)).Inc()
		endSpan(span, err)
	}()

	// Both records change under one Update so friendship stays symmetric.
	err = s.directory.Update(func(w account.Writer) error {
		other, err := w.FindByIDMut(requester)
		if err != nil {
			return err
		}
		self, err := w.FindByIDMut(acceptor)
		if err != nil {
			return err
		}

		if !self.RemovePendingRequest(requester) {
			return errutil.NotFound(entityFriendRequest)
		}
		self.AddFriend(requester)
		other.AddFriend(acceptor)
		return nil
	})
	if err != nil {
		return err
	}

	accepted := event.FriendRequestAccepted(acceptor)
	s.events.Publish(acceptor, accepted)
	s.events.Publish(requester, accepted)
	s.logger.InfoContext(ctx, "friend request accepted",
		"acceptor_id", acceptor.String(),
		"requester_id", requester.String(),
	)
	return nil
}

// ListFriends returns the friends of id in the order they were added.
func (s *Service) ListFriends(_ context.Context, id account.ID) ([]account.ID, error) {
	acct, err := s.directory.Get(id)
	if err != nil {
		return nil, err
	}
	return slices.Clone(acct.Friends), nil
}

// ListPending returns the accounts with an open request to id, oldest first.
func (s *Service) ListPending(_ context.Context, id account.ID) ([]account.ID, error) {
	acct, err := s.directory.Get(id)
	if err != nil {
		return nil, err
	}
	return slices.Clone(acct.PendingRequests), nil
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, string(errutil.KindOf(err)))
	}
	span.End()
}
