// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Circle Contributors

package account

import (
	"sync"
)

// Directory is the authoritative collection of accounts. All access goes
// through View (shared) or Update (exclusive); there is no finer-grained
// locking, so a multi-account change made inside one Update is atomic with
// respect to every other directory operation.
type Directory struct {
	mu    sync.RWMutex
	store Store
}

// NewDirectory wraps store. A nil store selects a fresh MemoryStore.
func NewDirectory(store Store) *Directory {
	if store == nil {
		store = NewMemoryStore()
	}
	return &Directory{store: store}
}

// View runs fn with shared access. Concurrent Views may run together.
func (d *Directory) View(fn func(r Reader) error) error {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return fn(d.store)
}

// Update runs fn with exclusive access. The error from fn is returned as is;
// changes made before fn fails are not rolled back.
func (d *Directory) Update(fn func(w Writer) error) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return fn(d.store)
}

// Get returns a copy of the account with id.
func (d *Directory) Get(id ID) (*Account, error) {
	var acct *Account
	err := d.View(func(r Reader) error {
		var err error
		acct, err = r.FindByID(id)
		return err
	})
	return acct, err
}

// Len returns the number of registered accounts.
func (d *Directory) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.store.Len()
}
