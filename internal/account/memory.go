// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Circle Contributors

package account

import (
	"github.com/circlehub/circle/pkg/errutil"
)

const entityAccount = "Account"

// MemoryStore keeps accounts in process memory. It is not safe for concurrent
// use on its own; wrap it in a Directory.
type MemoryStore struct {
	accounts   []*Account
	byID       map[ID]*Account
	byEmail    map[string]*Account
	byUsername map[string]*Account
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		byID:       make(map[ID]*Account),
		byEmail:    make(map[string]*Account),
		byUsername: make(map[string]*Account),
	}
}

// Len returns the number of accounts.
func (s *MemoryStore) Len() int {
	return len(s.accounts)
}

// Insert adds a new account.
func (s *MemoryStore) Insert(acct *Account) error {
	if acct == nil {
		return errutil.BadRequest("account is required")
	}
	if _, ok := s.byID[acct.ID]; ok {
		return errutil.AlreadyExisting(entityAccount)
	}
	if _, ok := s.byEmail[acct.Email]; ok {
		return errutil.AlreadyExisting(entityAccount)
	}
	if _, ok := s.byUsername[acct.Username()]; ok {
		return errutil.AlreadyExisting(entityAccount)
	}

	s.accounts = append(s.accounts, acct)
	s.byID[acct.ID] = acct
	s.byEmail[acct.Email] = acct
	s.byUsername[acct.Username()] = acct
	return nil
}

// FindByID returns a copy of the account with the given id.
func (s *MemoryStore) FindByID(id ID) (*Account, error) {
	return cloned(s.FindByIDMut(id))
}

// FindByEmail returns a copy of the account with the given email.
func (s *MemoryStore) FindByEmail(email string) (*Account, error) {
	return cloned(s.FindByEmailMut(email))
}

// FindByUsername returns a copy of the account with the given current username.
func (s *MemoryStore) FindByUsername(username string) (*Account, error) {
	return cloned(s.FindByUsernameMut(username))
}

// FindByIDMut returns the live account with the given id.
func (s *MemoryStore) FindByIDMut(id ID) (*Account, error) {
	return found(s.byID[id])
}

// FindByEmailMut returns the live account with the given email.
func (s *MemoryStore) FindByEmailMut(email string) (*Account, error) {
	return found(s.byEmail[email])
}

// FindByUsernameMut returns the live account with the given current username.
func (s *MemoryStore) FindByUsernameMut(username string) (*Account, error) {
	return found(s.byUsername[username])
}

// Rename makes username the current username of the account with id.
func (s *MemoryStore) Rename(id ID, username string) error {
	acct, err := s.FindByIDMut(id)
	if err != nil {
		return err
	}
	if acct.Username() == username {
		return nil
	}
	if _, taken := s.byUsername[username]; taken {
		return errutil.AlreadyExisting("Username")
	}

	delete(s.byUsername, acct.Username())
	acct.usernames = append(acct.usernames, username)
	s.byUsername[username] = acct
	return nil
}

func found(acct *Account) (*Account, error) {
	if acct == nil {
		return nil, errutil.NotFound(entityAccount)
	}
	return acct, nil
}

func cloned(acct *Account, err error) (*Account, error) {
	if err != nil {
		return nil, err
	}
	return acct.Clone(), nil
}
