// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Circle Contributors

package account

// Reader looks accounts up without modifying them. Returned accounts are
// copies; changing them has no effect on the store.
type Reader interface {
	// FindByID returns the account with the given id or a NotFound error.
	FindByID(id ID) (*Account, error)

	// FindByEmail returns the account with the given email (case-sensitive).
	FindByEmail(email string) (*Account, error)

	// FindByUsername returns the account whose current username matches.
	FindByUsername(username string) (*Account, error)

	// Len returns the number of accounts.
	Len() int
}

// Writer is a Reader that can insert and modify accounts in place.
// Accounts returned by the *Mut lookups are live records.
type Writer interface {
	Reader

	// Insert adds a new account. It fails with AlreadyExisting when the id,
	// email, or current username is already taken.
	Insert(acct *Account) error

	// FindByIDMut returns the live account with the given id.
	FindByIDMut(id ID) (*Account, error)

	// FindByEmailMut returns the live account with the given email.
	FindByEmailMut(email string) (*Account, error)

	// FindByUsernameMut returns the live account with the given current username.
	FindByUsernameMut(username string) (*Account, error)

	// Rename appends username to the account's history, making it current.
	// It fails with AlreadyExisting when another account currently uses it.
	Rename(id ID, username string) error
}

// Store is a storage backend for the directory. Implementations need not be
// safe for concurrent use; Directory serialises access.
type Store interface {
	Writer
}
