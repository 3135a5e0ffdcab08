// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Circle Contributors

package httpapi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// DefaultHeartbeat is how often an idle event stream sends a comment line.
const DefaultHeartbeat = 30 * time.Second

// handleEvents streams the caller's events as server-sent events until the
// client disconnects, the channel is closed, or the session expires. Expiry
// is checked on every heartbeat.
func (a *API) handleEvents(w http.ResponseWriter, r *http.Request) {
	session, err := mustSession(r)
	if err != nil {
		writeError(r.Context(), a.logger, w, err)
		return
	}

	sub, err := a.events.Subscribe(session.AccountID)
	if err != nil {
		writeError(r.Context(), a.logger, w, err)
		return
	}
	defer sub.Close()

	rc := http.NewResponseController(w)
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	if err := rc.Flush(); err != nil {
		a.logger.WarnContext(r.Context(), "event stream unsupported", "error", err)
		return
	}

	ctx := r.Context()
	a.logger.DebugContext(ctx, "event stream opened", "account_id", session.AccountID.String())
	defer a.logger.DebugContext(ctx, "event stream closed", "account_id", session.AccountID.String())

	heartbeat := time.NewTicker(a.heartbeat)
	defer heartbeat.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-heartbeat.C:
			if session.IsExpiredAt(now) {
				a.logger.DebugContext(ctx, "event stream session expired", "account_id", session.AccountID.String())
				return
			}
			if _, err := fmt.Fprint(w, ": keep-alive\n\n"); err != nil {
				return
			}
		case e, open := <-sub.C():
			if !open {
				return
			}
			data, err := json.Marshal(e)
			if err != nil {
				a.logger.ErrorContext(ctx, "failed to encode event", "event_id", e.ID.String(), "error", err)
				continue
			}
			if _, err := fmt.Fprintf(w, "data: %s\n\n", data); err != nil {
				return
			}
		}
		if err := rc.Flush(); err != nil {
			return
		}
	}
}
