// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Circle Contributors

package event_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/circlehub/circle/internal/account"
	"github.com/circlehub/circle/internal/event"
)

func TestEvent_MarshalJSON(t *testing.T) {
	requester := account.NewID()

	tests := []struct {
		name  string
		event event.Event
		want  string
	}{
		{"message", event.MessageReceived("hello"), `{"type":"MessageReceived","value":"hello"}`},
		{"friend request", event.FriendRequest(requester), `{"type":"FriendRequest","value":"` + requester.String() + `"}`},
		{"accepted", event.FriendRequestAccepted(requester), `{"type":"FriendRequestAccepted","value":"` + requester.String() + `"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := json.Marshal(tt.event)
			require.NoError(t, err)
			assert.JSONEq(t, tt.want, string(data))
		})
	}
}

func TestEvent_UniqueIDs(t *testing.T) {
	a := event.MessageReceived("a")
	b := event.MessageReceived("a")
	assert.NotEqual(t, a.ID, b.ID)
	assert.False(t, a.Timestamp.IsZero())
}
