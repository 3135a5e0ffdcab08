// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Circle Contributors

package httpapi

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/samber/oops"

	"github.com/circlehub/circle/internal/account"
	"github.com/circlehub/circle/internal/auth"
	"github.com/circlehub/circle/internal/event"
	"github.com/circlehub/circle/internal/observability"
)

// Accounts is the account side of the API.
type Accounts interface {
	Register(ctx context.Context, req auth.RegistrationRequest) (*account.Account, error)
	Login(ctx context.Context, req auth.LoginRequest) (*auth.Session, string, error)
	Authenticate(ctx context.Context, token string) (*auth.Session, error)
	ChangeUsername(ctx context.Context, id account.ID, username string) error
	Profile(ctx context.Context, id account.ID) (*account.Account, error)
}

// Friends is the friend workflow side of the API.
type Friends interface {
	Request(ctx context.Context, requester, target account.ID) error
	Accept(ctx context.Context, acceptor, requester account.ID) error
	ListFriends(ctx context.Context, id account.ID) ([]account.ID, error)
	ListPending(ctx context.Context, id account.ID) ([]account.ID, error)
}

// Subscriber attaches live event streams to accounts.
type Subscriber interface {
	Subscribe(id account.ID) (*event.Subscription, error)
}

// API holds the transport's collaborators.
type API struct {
	accounts  Accounts
	friends   Friends
	events    Subscriber
	logger    *slog.Logger
	metrics   *observability.Metrics
	heartbeat time.Duration
}

// Option configures an API.
type Option func(*API)

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(a *API) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// WithMetrics records per-route request metrics.
func WithMetrics(m *observability.Metrics) Option {
	return func(a *API) {
		a.metrics = m
	}
}

// WithHeartbeat sets the idle interval of event streams.
func WithHeartbeat(d time.Duration) Option {
	return func(a *API) {
		if d > 0 {
			a.heartbeat = d
		}
	}
}

// New creates an API.
func New(accounts Accounts, friends Friends, events Subscriber, opts ...Option) (*API, error) {
	switch {
	case accounts == nil:
		return nil, oops.Code("HTTPAPI_INVALID").Errorf("accounts service is required")
	case friends == nil:
		return nil, oops.Code("HTTPAPI_INVALID").Errorf("friends service is required")
	case events == nil:
		return nil, oops.Code("HTTPAPI_INVALID").Errorf("event subscriber is required")
	}

	a := &API{
		accounts:  accounts,
		friends:   friends,
		events:    events,
		logger:    slog.Default(),
		heartbeat: DefaultHeartbeat,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

// Handler returns the routed HTTP handler.
func (a *API) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(requestLogger(a.logger))
	r.Use(chimw.Recoverer)
	if a.metrics != nil {
		r.Use(instrument(a.metrics))
	}

	r.Route("/v1", func(r chi.Router) {
		r.Post("/auth/register", a.handleRegister)
		r.Post("/auth/login", a.handleLogin)

		r.Group(func(r chi.Router) {
			r.Use(a.authenticate)
			r.Get("/user", a.handleProfile)
			r.Post("/user/change_username", a.handleChangeUsername)
			r.Post("/friends/request", a.handleFriendRequest)
			r.Post("/friends/accept_request", a.handleAcceptRequest)
			r.Get("/friends/list", a.handleListFriends)
			r.Get("/friends/pending", a.handleListPending)
		})
	})

	r.With(a.authenticate).Get("/events", a.handleEvents)
	return r
}
