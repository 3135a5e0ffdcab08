// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Circle Contributors

package auth

import (
	"errors"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/circlehub/circle/pkg/errutil"
)

// Username validation constraints.
const (
	MinUsernameLength = 3
	MaxUsernameLength = 30
)

// usernameRegex matches usernames that start with a letter and contain only
// letters, numbers, and underscores.
var usernameRegex = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9_]*$`)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("username", func(fl validator.FieldLevel) bool {
		name := fl.Field().String()
		return len(name) >= MinUsernameLength && len(name) <= MaxUsernameLength && usernameRegex.MatchString(name)
	})
	return v
}

// RegistrationRequest is the input to Service.Register. The password is
// checked by the password policy, not here.
type RegistrationRequest struct {
	Email    string `json:"email" validate:"required,email,max=254"`
	Username string `json:"username" validate:"required,username"`
	Password string `json:"password"`
}

// LoginRequest is the input to Service.Login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// ValidateUsername checks a username against the naming rules.
func ValidateUsername(username string) error {
	return fieldError(validate.Var(username, "required,username"), "username")
}

func (r RegistrationRequest) validate() error {
	return fieldError(validate.Struct(r), "")
}

// fieldError turns the first validator failure into a BadRequest naming the field.
func fieldError(err error, field string) error {
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		name := field
		if name == "" {
			name = verrs[0].Field()
		}
		switch verrs[0].Tag() {
		case "required":
			return errutil.BadRequest(name + " is required")
		case "username":
			return errutil.BadRequest("username must be 3 to 30 characters, start with a letter, and contain only letters, numbers, and underscores")
		default:
			return errutil.BadRequest("invalid " + name)
		}
	}
	return errutil.BadRequest("invalid request")
}
