// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Circle Contributors

// Package account holds the account directory: the identity records, their
// friend graph, and the store they live in.
package account

import (
	"slices"
	"time"
)

// Account is the identity record of one user.
//
// Friends and PendingRequests keep insertion order. Friends is symmetric
// across the directory and never contains the account itself; an id is never
// in both Friends and PendingRequests of the same account.
type Account struct {
	ID              ID
	Email           string
	PasswordHash    string
	Salt            string
	Friends         []ID
	PendingRequests []ID
	CreatedAt       time.Time

	// usernames is append-only; the last entry is the current username.
	usernames []string
}

// New builds an account with a fresh ID and the given credentials.
func New(email, username, passwordHash, salt string) *Account {
	return &Account{
		ID:           NewID(),
		Email:        email,
		PasswordHash: passwordHash,
		Salt:         salt,
		CreatedAt:    time.Now(),
		usernames:    []string{username},
	}
}

// Username returns the current username.
func (a *Account) Username() string {
	if len(a.usernames) == 0 {
		return ""
	}
	return a.usernames[len(a.usernames)-1]
}

// UsernameHistory returns every username the account has had, oldest first.
func (a *Account) UsernameHistory() []string {
	return slices.Clone(a.usernames)
}

// HasFriend reports whether id is in the friend set.
func (a *Account) HasFriend(id ID) bool {
	return slices.Contains(a.Friends, id)
}

// HasPendingRequest reports whether id has an open friend request to a.
func (a *Account) HasPendingRequest(id ID) bool {
	return slices.Contains(a.PendingRequests, id)
}

// AddPendingRequest records an incoming request from id. It returns false when
// the request is already pending or id is a.ID.
func (a *Account) AddPendingRequest(id ID) bool {
	if id == a.ID || a.HasPendingRequest(id) {
		return false
	}
	a.PendingRequests = append(a.PendingRequests, id)
	return true
}

// RemovePendingRequest drops the request from id and reports whether it existed.
func (a *Account) RemovePendingRequest(id ID) bool {
	i := slices.Index(a.PendingRequests, id)
	if i < 0 {
		return false
	}
	a.PendingRequests = slices.Delete(a.PendingRequests, i, i+1)
	return true
}

// AddFriend adds id to the friend set and clears any pending request from it.
// It returns false when id is already a friend or is a.ID.
func (a *Account) AddFriend(id ID) bool {
	if id == a.ID || a.HasFriend(id) {
		return false
	}
	a.RemovePendingRequest(id)
	a.Friends = append(a.Friends, id)
	return true
}

// Clone returns a deep copy that shares no slices with a.
func (a *Account) Clone() *Account {
	c := *a
	c.Friends = slices.Clone(a.Friends)
	c.PendingRequests = slices.Clone(a.PendingRequests)
	c.usernames = slices.Clone(a.usernames)
	return &c
}
