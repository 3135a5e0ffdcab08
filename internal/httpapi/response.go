// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Circle Contributors

package httpapi

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/circlehub/circle/pkg/errutil"
)

// internalErrorMessage is the only detail clients see for server errors.
const internalErrorMessage = "Unexpected error, please contact the administrator"

// Response is the envelope shared by every endpoint.
type Response struct {
	Status string `json:"status"`
	Code   int    `json:"code"`
}

// RegisterResponse is returned by POST /v1/auth/register.
type RegisterResponse struct {
	Response
	ID string `json:"id"`
}

// LoginResponse is returned by POST /v1/auth/login.
type LoginResponse struct {
	Response
	Token     string `json:"token"`
	ExpiresAt int64  `json:"expires_at"`
}

// ProfileResponse is returned by GET /v1/user.
type ProfileResponse struct {
	Response
	ID              string   `json:"id"`
	Email           string   `json:"email"`
	Username        string   `json:"username"`
	UsernameHistory []string `json:"username_history"`
}

// FriendsResponse is returned by GET /v1/friends/list.
type FriendsResponse struct {
	Response
	Friends []string `json:"friends"`
}

// PendingResponse is returned by GET /v1/friends/pending.
type PendingResponse struct {
	Response
	Pending []string `json:"pending"`
}

func ok(status string) Response {
	return Response{Status: status, Code: http.StatusOK}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v) //nolint:errcheck // client may disconnect
}

// StatusFor maps an error kind to its HTTP status code.
func StatusFor(kind errutil.Kind) int {
	switch kind {
	case errutil.KindNotFound:
		return http.StatusNotFound
	case errutil.KindAlreadyExisting,
		errutil.KindWeakPassword,
		errutil.KindInvalidCredentials,
		errutil.KindBadRequest:
		return http.StatusBadRequest
	case errutil.KindUnauthorized:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// writeError reports err to the client. Server errors are logged with their
// full context and replaced by a generic message.
func writeError(ctx context.Context, logger *slog.Logger, w http.ResponseWriter, err error) {
	status := StatusFor(errutil.KindOf(err))
	if status == http.StatusInternalServerError {
		errutil.LogError(ctx, logger, "request failed", err)
		writeJSON(w, status, Response{Status: internalErrorMessage, Code: status})
		return
	}

	writeJSON(w, status, Response{Status: err.Error(), Code: status})
}
