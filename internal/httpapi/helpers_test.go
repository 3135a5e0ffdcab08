// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Circle Contributors

package httpapi_test

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/circlehub/circle/internal/account"
	"github.com/circlehub/circle/internal/auth"
	"github.com/circlehub/circle/internal/event"
	"github.com/circlehub/circle/internal/friends"
	"github.com/circlehub/circle/internal/httpapi"
	"github.com/circlehub/circle/internal/observability"
	"github.com/circlehub/circle/internal/password"
)

var sharedKeys = sync.OnceValues(func() (*auth.KeyPair, error) {
	private, public, err := auth.GenerateKeyPair(auth.DefaultKeyBits)
	if err != nil {
		return nil, err
	}
	return auth.DecodeKeyPair(private, public)
})

// stack is a fully wired API over an in-memory directory.
type stack struct {
	directory *account.Directory
	hub       *event.Hub
	accounts  *auth.Service
	friends   *friends.Service
	metrics   *observability.Metrics
	handler   http.Handler
	logs      *bytes.Buffer
}

func newStack() (*stack, error) {
	keys, err := sharedKeys()
	if err != nil {
		return nil, err
	}
	hasher, err := auth.NewArgon2idHasher(auth.HashParams{
		MemoryCost: 64, TimeCost: 1, Length: 16, Lanes: 1, SaltLength: 16,
	})
	if err != nil {
		return nil, err
	}
	policy := password.DefaultPolicy()
	policy.CheckBreachDatabase = false
	passwords, err := password.NewValidator(policy, nil)
	if err != nil {
		return nil, err
	}
	issuer, err := auth.NewSessionIssuer(keys, 1)
	if err != nil {
		return nil, err
	}

	logs := &bytes.Buffer{}
	logger := slog.New(slog.NewJSONHandler(&lockedWriter{w: logs}, &slog.HandlerOptions{Level: slog.LevelDebug}))

	directory := account.NewDirectory(nil)
	hub := event.NewHub(event.DefaultConfig(), event.WithLogger(logger))
	accounts, err := auth.NewService(directory, hasher, passwords, issuer, auth.WithLogger(logger))
	if err != nil {
		return nil, err
	}
	friendsSvc, err := friends.NewService(directory, hub, friends.WithLogger(logger))
	if err != nil {
		return nil, err
	}
	metrics := observability.NewMetrics(prometheus.NewRegistry())
	api, err := httpapi.New(accounts, friendsSvc, hub,
		httpapi.WithLogger(logger),
		httpapi.WithMetrics(metrics),
		httpapi.WithHeartbeat(50*time.Millisecond),
	)
	if err != nil {
		return nil, err
	}

	return &stack{
		directory: directory,
		hub:       hub,
		accounts:  accounts,
		friends:   friendsSvc,
		metrics:   metrics,
		handler:   api.Handler(),
		logs:      logs,
	}, nil
}

// lockedWriter serialises writes from concurrent request goroutines.
type lockedWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (l *lockedWriter) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.w.Write(p)
}

type result struct {
	Code int
	Body map[string]any
}

func (s *stack) do(method, path, token, body string) result {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)

	out := result{Code: rec.Code}
	_ = json.Unmarshal(rec.Body.Bytes(), &out.Body)
	return out
}

func registerBody(email, username, pw string) string {
	data, _ := json.Marshal(map[string]string{"email": email, "username": username, "password": pw})
	return string(data)
}

func loginBody(email, pw string) string {
	data, _ := json.Marshal(map[string]string{"email": email, "password": pw})
	return string(data)
}

func idBody(id string) string {
	return `{"id":"` + id + `"}`
}
