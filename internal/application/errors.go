package application

import (
	"errors"
	"sort"
	"strings"

	"github.com/oksasatya/crm-accounts/internal/domain/repository"
)

var (
	ErrForbidden           = errors.New("forbidden")
	ErrNotFound            = repository.ErrNotFound
	ErrDuplicateEmail      = errors.New("email already in use")
	ErrConflict            = errors.New("username could not be reserved")
	ErrSelfActionForbidden = errors.New("action not allowed on your own account")
	ErrWrongPassword       = errors.New("old password is incorrect")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrInactiveAccount     = errors.New("account is inactive")
	ErrSessionNotFound     = errors.New("session not found")
	ErrUnsupportedImage    = errors.New("unsupported image type")
)

// Validation reason codes.
const (
	ReasonRequired      = "required"
	ReasonInvalidFormat = "invalid_format"
	ReasonTooShort      = "too_short"
	ReasonInvalidChoice = "invalid_choice"
	ReasonMismatch      = "mismatch"
)

// ForbiddenError is an authorization denial. errors.Is(err, ErrForbidden) holds.
type ForbiddenError struct {
	Action Action
	Reason string
}

func (e *ForbiddenError) Error() string {
	return "forbidden: " + e.Reason
}

func (e *ForbiddenError) Is(target error) bool {
	return target == ErrForbidden
}

func forbidden(action Action, reason string) *ForbiddenError {
	return &ForbiddenError{Action: action, Reason: reason}
}

// FieldError is a single field failure produced by a validator.
type FieldError struct {
	Field   string `json:"field"`
	Reason  string `json:"reason"`
	Message string `json:"message"`
}

func (e *FieldError) Error() string {
	return e.Field + ": " + e.Message
}

// ValidationError aggregates every field failure of a request.
type ValidationError struct {
	Fields map[string]*FieldError
}

// Collect records err when it is a *FieldError. Other errors are ignored.
func (v *ValidationError) Collect(err error) {
	var fe *FieldError
	if !errors.As(err, &fe) {
		return
	}
	if v.Fields == nil {
		v.Fields = make(map[string]*FieldError)
	}
	v.Fields[fe.Field] = fe
}

// Has reports whether field failed.
func (v *ValidationError) Has(field string) bool {
	_, ok := v.Fields[field]
	return ok
}

// Err returns v when at least one field failed, nil otherwise.
func (v *ValidationError) Err() error {
	if v == nil || len(v.Fields) == 0 {
		return nil
	}
	return v
}

func (v *ValidationError) Error() string {
	keys := make([]string, 0, len(v.Fields))
	for k := range v.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, v.Fields[k].Error())
	}
	return "validation failed: " + strings.Join(parts, "; ")
}
