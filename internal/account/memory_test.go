// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Circle Contributors

package account_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/circlehub/circle/internal/account"
	"github.com/circlehub/circle/pkg/errutil"
)

func TestMemoryStore_InsertAndFind(t *testing.T) {
	s := account.NewMemoryStore()
	alice := account.New("alice@example.com", "alice", "h", "s")
	require.NoError(t, s.Insert(alice))

	byID, err := s.FindByID(alice.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", byID.Email)

	byEmail, err := s.FindByEmail("alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, alice.ID, byEmail.ID)

	byName, err := s.FindByUsername("alice")
	require.NoError(t, err)
	assert.Equal(t, alice.ID, byName.ID)

	assert.Equal(t, 1, s.Len())
}

func TestMemoryStore_EmailIsCaseSensitive(t *testing.T) {
	s := account.NewMemoryStore()
	require.NoError(t, s.Insert(account.New("alice@example.com", "alice", "h", "s")))

	_, err := s.FindByEmail("Alice@example.com")
	errutil.AssertKind(t, err, errutil.KindNotFound)
	require.NoError(t, s.Insert(account.New("Alice@example.com", "alice2", "h", "s")))
}

func TestMemoryStore_InsertRejectsDuplicates(t *testing.T) {
	tests := []struct {
		name     string
		email    string
		username string
	}{
		{"duplicate email", "alice@example.com", "other"},
		{"duplicate username", "other@example.com", "alice"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := account.NewMemoryStore()
			require.NoError(t, s.Insert(account.New("alice@example.com", "alice", "h", "s")))

			err := s.Insert(account.New(tt.email, tt.username, "h", "s"))
			errutil.AssertKind(t, err, errutil.KindAlreadyExisting)
			assert.Equal(t, 1, s.Len())
		})
	}
}

func TestMemoryStore_NotFound(t *testing.T) {
	s := account.NewMemoryStore()

	_, err := s.FindByID(account.NewID())
	errutil.AssertKind(t, err, errutil.KindNotFound)
	errutil.AssertErrorContext(t, err, "entity", "Account")

	_, err = s.FindByEmailMut("nobody@example.com")
	errutil.AssertKind(t, err, errutil.KindNotFound)

	_, err = s.FindByUsernameMut("nobody")
	errutil.AssertKind(t, err, errutil.KindNotFound)
}

func TestMemoryStore_ReadVariantsReturnCopies(t *testing.T) {
	s := account.NewMemoryStore()
	alice := account.New("alice@example.com", "alice", "h", "s")
	require.NoError(t, s.Insert(alice))

	c, err := s.FindByID(alice.ID)
	require.NoError(t, err)
	c.AddFriend(account.NewID())

	live, err := s.FindByIDMut(alice.ID)
	require.NoError(t, err)
	assert.Empty(t, live.Friends)

	live.AddFriend(account.NewID())
	again, err := s.FindByID(alice.ID)
	require.NoError(t, err)
	assert.Len(t, again.Friends, 1)
}

func TestMemoryStore_Rename(t *testing.T) {
	s := account.NewMemoryStore()
	alice := account.New("alice@example.com", "alice", "h", "s")
	bob := account.New("bob@example.com", "bob", "h", "s")
	require.NoError(t, s.Insert(alice))
	require.NoError(t, s.Insert(bob))

	t.Run("appends history and moves lookup", func(t *testing.T) {
		require.NoError(t, s.Rename(alice.ID, "alicia"))

		got, err := s.FindByUsername("alicia")
		require.NoError(t, err)
		assert.Equal(t, alice.ID, got.ID)
		assert.Equal(t, []string{"alice", "alicia"}, got.UsernameHistory())

		_, err = s.FindByUsername("alice")
		errutil.AssertKind(t, err, errutil.KindNotFound)
	})

	t.Run("rejects a name in use", func(t *testing.T) {
		err := s.Rename(alice.ID, "bob")
		errutil.AssertKind(t, err, errutil.KindAlreadyExisting)
	})

	t.Run("released name can be reused", func(t *testing.T) {
		require.NoError(t, s.Rename(bob.ID, "alice"))
		got, err := s.FindByUsername("alice")
		require.NoError(t, err)
		assert.Equal(t, bob.ID, got.ID)
	})

	t.Run("renaming to current name is a no-op", func(t *testing.T) {
		require.NoError(t, s.Rename(alice.ID, "alicia"))
		got, err := s.FindByID(alice.ID)
		require.NoError(t, err)
		assert.Equal(t, []string{"alice", "alicia"}, got.UsernameHistory())
	})

	t.Run("unknown account", func(t *testing.T) {
		errutil.AssertKind(t, s.Rename(account.NewID(), "zed"), errutil.KindNotFound)
	})
}
