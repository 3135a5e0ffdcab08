// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Circle Contributors

package account

import (
	"crypto/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/circlehub/circle/pkg/errutil"
)

// ID identifies an account. It is assigned at registration and never changes.
type ID = ulid.ULID

var (
	entropy     = ulid.Monotonic(rand.Reader, 0)
	entropyLock sync.Mutex
)

// NewID returns a fresh, time-ordered identifier. It is also used for
// session and event identifiers.
func NewID() ID {
	entropyLock.Lock()
	defer entropyLock.Unlock()
	return ulid.MustNew(ulid.Timestamp(time.Now()), entropy)
}

// ParseID parses the textual form of an ID. Malformed input is a bad request.
func ParseID(s string) (ID, error) {
	id, err := ulid.ParseStrict(s)
	if err != nil {
		return ID{}, oops.Code(string(errutil.KindBadRequest)).
			With("reason", "malformed account id").
			With("value", s).
			With("cause", err.Error()).
			Errorf("malformed account id")
	}
	return id, nil
}
