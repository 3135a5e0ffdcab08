// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Circle Contributors

// Package errutil defines the error kinds shared by every Circle component
// and helpers to log and assert them.
package errutil

import (
	"github.com/samber/oops"
)

// Kind classifies an error for callers that must react to it, such as the
// HTTP transport choosing a status code.
type Kind string

// Error kinds. Each kind is used as the oops code of the error.
const (
	KindNotFound           Kind = "NOT_FOUND"
	KindAlreadyExisting    Kind = "ALREADY_EXISTING"
	KindWeakPassword       Kind = "WEAK_PASSWORD"
	KindInvalidCredentials Kind = "INVALID_CREDENTIALS"
	KindBadRequest         Kind = "BAD_REQUEST"
	KindUnauthorized       Kind = "UNAUTHORIZED"
	KindServer             Kind = "SERVER"
)

// NotFound reports that the named entity does not exist.
func NotFound(entity string) error {
	return oops.Code(string(KindNotFound)).
		With("entity", entity).
		Errorf("unable to find the %s", entity)
}

// AlreadyExisting reports that a unique value of the named entity is taken.
func AlreadyExisting(entity string) error {
	return oops.Code(string(KindAlreadyExisting)).
		With("entity", entity).
		Errorf("the %s is already existing", entity)
}

// WeakPassword reports the first password policy rule that was violated.
func WeakPassword(reason string) error {
	return oops.Code(string(KindWeakPassword)).
		With("reason", reason).
		Errorf("the entered password is too weak: %s", reason)
}

// InvalidCredentials is returned for any failed login, whatever the cause.
func InvalidCredentials() error {
	return oops.Code(string(KindInvalidCredentials)).Errorf("the entered credentials are invalid")
}

// BadRequest reports a malformed or disallowed request.
func BadRequest(reason string) error {
	return oops.Code(string(KindBadRequest)).With("reason", reason).Errorf("%s", reason)
}

// Unauthorized reports a missing, malformed, or expired session.
func Unauthorized(reason string) error {
	return oops.Code(string(KindUnauthorized)).With("reason", reason).Errorf("%s", reason)
}

// Internal wraps a cryptographic or otherwise unexpected failure. The cause is
// kept for server-side logging; the transport never shows it to clients.
func Internal(operation string, err error) error {
	return oops.Code(string(KindServer)).
		With("operation", operation).
		Wrapf(err, "%s failed", operation)
}

// KindOf returns the kind of err. Errors without a known code are KindServer.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	oopsErr, ok := oops.AsOops(err)
	if !ok {
		return KindServer
	}
	code, _ := oopsErr.Code().(string)
	switch k := Kind(code); k {
	case KindNotFound, KindAlreadyExisting, KindWeakPassword, KindInvalidCredentials,
		KindBadRequest, KindUnauthorized, KindServer:
		return k
	default:
		return KindServer
	}
}

// Is reports whether err has the given kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}
