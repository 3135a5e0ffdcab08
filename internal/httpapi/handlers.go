// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Circle Contributors

package httpapi

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"

	"github.com/circlehub/circle/internal/account"
	"github.com/circlehub/circle/internal/auth"
	"github.com/circlehub/circle/pkg/errutil"
)

// maxBodyBytes bounds every request body.
const maxBodyBytes = 1 << 20

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return errutil.BadRequest("malformed request body")
	}
	return nil
}

// readValue reads a single string argument from the body. The body may be a
// JSON object holding field, a JSON string, or the bare value as plain text.
func readValue(w http.ResponseWriter, r *http.Request, field string) (string, error) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		return "", errutil.BadRequest("malformed request body")
	}
	data = bytes.TrimSpace(data)

	var value string
	switch {
	case len(data) == 0:
		return "", errutil.BadRequest(field + " is required")
	case data[0] == '{':
		var obj map[string]string
		if err := json.Unmarshal(data, &obj); err != nil {
			return "", errutil.BadRequest("malformed request body")
		}
		value = obj[field]
	case data[0] == '"':
		if err := json.Unmarshal(data, &value); err != nil {
			return "", errutil.BadRequest("malformed request body")
		}
	default:
		value = string(data)
	}
	if value == "" {
		return "", errutil.BadRequest(field + " is required")
	}
	return value, nil
}

func readAccountID(w http.ResponseWriter, r *http.Request) (account.ID, error) {
	raw, err := readValue(w, r, "id")
	if err != nil {
		return account.ID{}, err
	}
	return account.ParseID(raw)
}

func idStrings(ids []account.ID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}
	return out
}

// mustSession returns the session of an authenticated route.
func mustSession(r *http.Request) (*auth.Session, error) {
	s, ok := SessionFromContext(r.Context())
	if !ok {
		return nil, errutil.Unauthorized("Unauthorized")
	}
	return s, nil
}

func (a *API) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req auth.RegistrationRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(r.Context(), a.logger, w, err)
		return
	}

	acct, err := a.accounts.Register(r.Context(), req)
	if err != nil {
		writeError(r.Context(), a.logger, w, err)
		return
	}
	writeJSON(w, http.StatusOK, RegisterResponse{Response: ok("Registered"), ID: acct.ID.String()})
}

func (a *API) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req auth.LoginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(r.Context(), a.logger, w, err)
		return
	}

	session, token, err := a.accounts.Login(r.Context(), req)
	if err != nil {
		writeError(r.Context(), a.logger, w, err)
		return
	}
	writeJSON(w, http.StatusOK, LoginResponse{
		Response:  ok("Logged in"),
		Token:     token,
		ExpiresAt: session.ExpiresAt.Unix(),
	})
}

func (a *API) handleProfile(w http.ResponseWriter, r *http.Request) {
	session, err := mustSession(r)
	if err != nil {
		writeError(r.Context(), a.logger, w, err)
		return
	}

	acct, err := a.accounts.Profile(r.Context(), session.AccountID)
	if err != nil {
		writeError(r.Context(), a.logger, w, err)
		return
	}
	writeJSON(w, http.StatusOK, ProfileResponse{
		Response:        ok("Successfully"),
		ID:              acct.ID.String(),
		Email:           acct.Email,
		Username:        acct.Username(),
		UsernameHistory: acct.UsernameHistory(),
	})
}

func (a *API) handleChangeUsername(w http.ResponseWriter, r *http.Request) {
	session, err := mustSession(r)
	if err != nil {
		writeError(r.Context(), a.logger, w, err)
		return
	}
	username, err := readValue(w, r, "username")
	if err != nil {
		writeError(r.Context(), a.logger, w, err)
		return
	}

	if err := a.accounts.ChangeUsername(r.Context(), session.AccountID, username); err != nil {
		writeError(r.Context(), a.logger, w, err)
		return
	}
	writeJSON(w, http.StatusOK, ok("Username changed"))
}

func (a *API) handleFriendRequest(w http.ResponseWriter, r *http.Request) {
	session, err := mustSession(r)
	if err != nil {
		writeError(r.Context(), a.logger, w, err)
		return
	}
	target, err := readAccountID(w, r)
	if err != nil {
		writeError(r.Context(), a.logger, w, err)
		return
	}

	if err := a.friends.Request(r.Context(), session.AccountID, target); err != nil {
		writeError(r.Context(), a.logger, w, err)
		return
	}
	writeJSON(w, http.StatusOK, ok("Friend Request sent"))
}

func (a *API) handleAcceptRequest(w http.ResponseWriter, r *http.Request) {
	session, err := mustSession(r)
	if err != nil {
		writeError(r.Context(), a.logger, w, err)
		return
	}
	requester, err := readAccountID(w, r)
	if err != nil {
		writeError(r.Context(), a.logger, w, err)
		return
	}

	if err := a.friends.Accept(r.Context(), session.AccountID, requester); err != nil {
		writeError(r.Context(), a.logger, w, err)
		return
	}
	writeJSON(w, http.StatusOK, ok("Friend Request accepted"))
}

func (a *API) handleListFriends(w http.ResponseWriter, r *http.Request) {
	session, err := mustSession(r)
	if err != nil {
		writeError(r.Context(), a.logger, w, err)
		return
	}

	ids, err := a.friends.ListFriends(r.Context(), session.AccountID)
	if err != nil {
		writeError(r.Context(), a.logger, w, err)
		return
	}
	writeJSON(w, http.StatusOK, FriendsResponse{Response: ok("Successfully"), Friends: idStrings(ids)})
}

func (a *API) handleListPending(w http.ResponseWriter, r *http.Request) {
	session, err := mustSession(r)
	if err != nil {
		writeError(r.Context(), a.logger, w, err)
		return
	}

	ids, err := a.friends.ListPending(r.Context(), session.AccountID)
	if err != nil {
		writeError(r.Context(), a.logger, w, err)
		return
	}
	writeJSON(w, http.StatusOK, PendingResponse{Response: ok("Successfully"), Pending: idStrings(ids)})
}
