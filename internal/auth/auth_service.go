// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Circle Contributors

package auth

import (
	"context"
	"log/slog"

	"github.com/samber/oops"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/circlehub/circle/internal/account"
	"github.com/circlehub/circle/internal/password"
	"github.com/circlehub/circle/pkg/errutil"
)

var tracer = otel.Tracer("circle/auth")

// dummyPassword is hashed once at startup. Logins for unknown emails verify
// against it so they take as long as logins for known ones.
const dummyPassword = "circle-timing-equaliser"

// Service registers accounts, logs them in, and authenticates session tokens.
type Service struct {
	directory *account.Directory
	hasher    PasswordHasher
	passwords *password.Validator
	issuer    *SessionIssuer
	logger    *slog.Logger

	dummyHash string
	dummySalt string
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(logger *slog.Logger) ServiceOption {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewService creates a Service. All dependencies are required.
func NewService(directory *account.Directory, hasher PasswordHasher, passwords *password.Validator, issuer *SessionIssuer, opts ...ServiceOption) (*Service, error) {
	switch {
	case directory == nil:
		return nil, oops.Code("AUTH_INVALID_SERVICE").Errorf("account directory is required")
	case hasher == nil:
		return nil, oops.Code("AUTH_INVALID_SERVICE").Errorf("password hasher is required")
	case passwords == nil:
		return nil, oops.Code("AUTH_INVALID_SERVICE").Errorf("password validator is required")
	case issuer == nil:
		return nil, oops.Code("AUTH_INVALID_SERVICE").Errorf("session issuer is required")
	}

	s := &Service{
		directory: directory,
		hasher:    hasher,
		passwords: passwords,
		issuer:    issuer,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}

	hash, salt, err := hasher.Hash(dummyPassword)
	if err != nil {
		return nil, oops.Code("AUTH_INVALID_SERVICE").With("operation", "hash dummy password").Wrap(err)
	}
	s.dummyHash, s.dummySalt = hash, salt

	return s, nil
}

// Register creates an account. It fails with AlreadyExisting when the email or
// username is taken, WeakPassword when the password violates the policy, and
// BadRequest when the email or username is malformed.
func (s *Service) Register(ctx context.Context, req RegistrationRequest) (acct *account.Account, err error) {
	ctx, span := tracer.Start(ctx, "auth.register")
	defer func() {
		Registrations.WithLabelValues(status(err)).Inc()
		endSpan(span, err)
	}()

	if err = req.validate(); err != nil {
		return nil, err
	}

	// Reject duplicates before paying for the hash.
	if err = s.directory.View(func(r account.Reader) error {
		return ensureAvailable(r, req.Email, req.Username)
	}); err != nil {
		return nil, err
	}

	// The breach lookup may go over the network; it must not run under the directory lock.
	if err = s.passwords.Validate(ctx, req.Password); err != nil {
		return nil, err
	}

	hash, salt, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, err
	}

	created := account.New(req.Email, req.Username, hash, salt)
	err = s.directory.Update(func(w account.Writer) error {
		if err := w.Insert(created); err != nil {
			return err
		}
		acct = created.Clone()
		return nil
	})
	if err != nil {
		return nil, err
	}

	span.SetAttributes(attribute.String("account.id", acct.ID.String()))
	s.logger.InfoContext(ctx, "account registered", "account_id", acct.ID.String())
	return acct, nil
}

// Login checks the credentials and issues a session. Unknown emails and wrong
// passwords both fail with InvalidCredentials.
func (s *Service) Login(ctx context.Context, req LoginRequest) (session *Session, token string, err error) {
	ctx, span := tracer.Start(ctx, "auth.login")
	defer func() {
		LoginAttempts.WithLabelValues(status(err)).Inc()
		endSpan(span, err)
	}()

	var (
		accountID account.ID
		hash      string
		salt      string
		exists    bool
	)
	_ = s.directory.View(func(r account.Reader) error {
		acct, lookupErr := r.FindByEmail(req.Email)
		if lookupErr != nil {
			return nil
		}
		accountID, hash, salt, exists = acct.ID, acct.PasswordHash, acct.Salt, true
		return nil
	})

	if !exists {
		_, _ = s.hasher.Verify(req.Password, s.dummyHash, s.dummySalt) //nolint:errcheck // timing only
		s.logger.InfoContext(ctx, "login failed", "reason", "unknown email")
		return nil, "", errutil.InvalidCredentials()
	}

	valid, err := s.hasher.Verify(req.Password, hash, salt)
	if err != nil {
		err = errutil.Internal("verify password", err)
		errutil.LogError(ctx, s.logger, "login failed", err)
		return nil, "", err
	}
	if !valid {
		s.logger.InfoContext(ctx, "login failed", "reason", "password mismatch", "account_id", accountID.String())
		return nil, "", errutil.InvalidCredentials()
	}

	if s.hasher.NeedsUpgrade(hash) {
		s.upgradeHash(ctx, accountID, hash, req.Password)
	}

	session, token, err = s.issuer.Issue(accountID)
	if err != nil {
		errutil.LogError(ctx, s.logger, "login failed", err)
		return nil, "", err
	}

	span.SetAttributes(attribute.String("account.id", accountID.String()))
	s.logger.InfoContext(ctx, "logged in",
		"account_id", accountID.String(),
		"session_id", session.ID.String(),
	)
	return session, token, nil
}

// upgradeHash rehashes the password under the current parameters. Failures
// are logged and otherwise ignored; the login still succeeds.
func (s *Service) upgradeHash(ctx context.Context, id account.ID, oldHash, plaintext string) {
	hash, salt, err := s.hasher.Hash(plaintext)
	if err != nil {
		errutil.LogError(ctx, s.logger, "password hash upgrade failed", err)
		return
	}
	_ = s.directory.Update(func(w account.Writer) error {
		acct, err := w.FindByIDMut(id)
		if err != nil || acct.PasswordHash != oldHash {
			return nil
		}
		acct.PasswordHash, acct.Salt = hash, salt
		return nil
	})
	s.logger.InfoContext(ctx, "password hash upgraded", "account_id", id.String())
}

// Authenticate verifies token and checks that its account still exists.
func (s *Service) Authenticate(ctx context.Context, token string) (*Session, error) {
	session, err := s.issuer.Verify(token)
	if err != nil {
		s.logger.DebugContext(ctx, "authentication failed", "error", err)
		return nil, err
	}

	if _, err := s.directory.Get(session.AccountID); err != nil {
		if errutil.Is(err, errutil.KindNotFound) {
			return nil, errutil.Unauthorized("unknown account")
		}
		return nil, err
	}
	return session, nil
}

// ChangeUsername makes username the current username of the account. Prior
// usernames stay in the history. Fails with AlreadyExisting when another
// account currently uses the name.
func (s *Service) ChangeUsername(ctx context.Context, id account.ID, username string) error {
	if err := ValidateUsername(username); err != nil {
		return err
	}
	if err := s.directory.Update(func(w account.Writer) error {
		return w.Rename(id, username)
	}); err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "username changed", "account_id", id.String())
	return nil
}

// Profile returns a copy of the account with id.
func (s *Service) Profile(_ context.Context, id account.ID) (*account.Account, error) {
	return s.directory.Get(id)
}

// FindByUsername returns a copy of the account currently using username.
func (s *Service) FindByUsername(_ context.Context, username string) (*account.Account, error) {
	var acct *account.Account
	err := s.directory.View(func(r account.Reader) error {
		var err error
		acct, err = r.FindByUsername(username)
		return err
	})
	return acct, err
}

func ensureAvailable(r account.Reader, email, username string) error {
	if _, err := r.FindByEmail(email); err == nil {
		return errutil.AlreadyExisting("Account")
	}
	if _, err := r.FindByUsername(username); err == nil {
		return errutil.AlreadyExisting("Account")
	}
	return nil
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, string(errutil.KindOf(err)))
	}
	span.End()
}
