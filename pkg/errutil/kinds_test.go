// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Circle Contributors

package errutil_test

import (
	"errors"
	"testing"

	"github.com/samber/oops"
	"github.com/stretchr/testify/assert"

	"github.com/circlehub/circle/pkg/errutil"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want errutil.Kind
	}{
		{"not found", errutil.NotFound("Account"), errutil.KindNotFound},
		{"already existing", errutil.AlreadyExisting("Friend Request"), errutil.KindAlreadyExisting},
		{"weak password", errutil.WeakPassword("Password is too short!"), errutil.KindWeakPassword},
		{"invalid credentials", errutil.InvalidCredentials(), errutil.KindInvalidCredentials},
		{"bad request", errutil.BadRequest("nope"), errutil.KindBadRequest},
		{"unauthorized", errutil.Unauthorized("expired"), errutil.KindUnauthorized},
		{"internal wraps plain error", errutil.Internal("hash password", errors.New("rng")), errutil.KindServer},
		{"plain error", errors.New("plain"), errutil.KindServer},
		{"unknown oops code", oops.Code("SOMETHING_ELSE").Errorf("x"), errutil.KindServer},
		{"nil", nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, errutil.KindOf(tt.err))
		})
	}
}

func TestEntityAndReasonAreAttached(t *testing.T) {
	errutil.AssertErrorContext(t, errutil.NotFound("Account"), "entity", "Account")
	errutil.AssertErrorContext(t, errutil.WeakPassword("too short"), "reason", "too short")
	errutil.AssertErrorContext(t, errutil.Internal("sign token", errors.New("x")), "operation", "sign token")
}

func TestIs(t *testing.T) {
	assert.True(t, errutil.Is(errutil.NotFound("Account"), errutil.KindNotFound))
	assert.False(t, errutil.Is(errutil.NotFound("Account"), errutil.KindBadRequest))
	assert.False(t, errutil.Is(nil, errutil.KindServer))
}

func TestMessages(t *testing.T) {
	assert.Equal(t, "unable to find the Account", errutil.NotFound("Account").Error())
	assert.Equal(t, "the User is already existing", errutil.AlreadyExisting("User").Error())
	assert.Equal(t, "the entered credentials are invalid", errutil.InvalidCredentials().Error())
}
