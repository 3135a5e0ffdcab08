// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Circle Contributors

// Package event delivers live notifications to the connected clients of an
// account.
package event

import (
	"encoding/json"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/circlehub/circle/internal/account"
)

// Type identifies the kind of event.
type Type string

const (
	TypeMessageReceived       Type = "MessageReceived"
	TypeFriendRequest         Type = "FriendRequest"
	TypeFriendRequestAccepted Type = "FriendRequestAccepted"
)

// Event is an immutable notification. Value is the message text or the id
// of the account that caused the event.
type Event struct {
	ID        ulid.ULID
	Type      Type
	Value     string
	Timestamp time.Time
}

// Payload is the wire form of an Event as subscribers receive it.
type Payload struct {
	Type  Type   `json:"type" jsonschema:"enum=MessageReceived,enum=FriendRequest,enum=FriendRequestAccepted"`
	Value string `json:"value"`
}

func newEvent(t Type, value string) Event {
	return Event{
		ID:        account.NewID(),
		Type:      t,
		Value:     value,
		Timestamp: time.Now(),
	}
}

// MessageReceived creates an event carrying a text message.
func MessageReceived(text string) Event {
	return newEvent(TypeMessageReceived, text)
}

// FriendRequest creates the event sent to the target of a friend request.
func FriendRequest(requester account.ID) Event {
	return newEvent(TypeFriendRequest, requester.String())
}

// FriendRequestAccepted creates the event sent to both sides of an accepted request.
func FriendRequestAccepted(acceptor account.ID) Event {
	return newEvent(TypeFriendRequestAccepted, acceptor.String())
}

// Payload returns the wire form of e.
func (e Event) Payload() Payload {
	return Payload{Type: e.Type, Value: e.Value}
}

// MarshalJSON encodes e in its wire form.
func (e Event) MarshalJSON() ([]byte, error) {
	return json.Marshal(e.Payload())
}
