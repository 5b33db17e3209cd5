package application

import (
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"

	"github.com/oksasatya/crm-accounts/internal/domain/entity"
)

const (
	minNameLength          = 2
	minPasswordLength      = 8
	minLoginPasswordLength = 3
)

var validate = validator.New()

var (
	activeTruthy = map[string]bool{"true": true, "1": true, "actif": true}
	activeFalsy  = map[string]bool{"false": true, "0": true, "inactif": true}
)

func fieldErr(field, reason, message string) *FieldError {
	return &FieldError{Field: field, Reason: reason, Message: message}
}

// ValidateEmail trims and lower-cases raw, then checks it looks like local@domain.tld.
func ValidateEmail(field, raw string) (string, error) {
	email := strings.ToLower(strings.TrimSpace(raw))
	if email == "" {
		return "", fieldErr(field, ReasonRequired, "is required")
	}
	if validate.Var(email, "email") != nil || !hasTLD(email) {
		return "", fieldErr(field, ReasonInvalidFormat, "must be a valid email address")
	}
	return email, nil
}

func hasTLD(email string) bool {
	at := strings.LastIndexByte(email, '@')
	domain := email[at+1:]
	dot := strings.LastIndexByte(domain, '.')
	return dot > 0 && dot < len(domain)-1
}

// ValidateName trims raw and requires at least two characters.
func ValidateName(field, raw string) (string, error) {
	name := strings.TrimSpace(raw)
	if name == "" {
		return "", fieldErr(field, ReasonRequired, "is required")
	}
	if utf8.RuneCountInString(name) < minNameLength {
		return "", fieldErr(field, ReasonTooShort, "must be at least 2 characters long")
	}
	return name, nil
}

// ValidatePassword applies the creation-strength rules.
func ValidatePassword(field, raw string) error {
	if raw == "" {
		return fieldErr(field, ReasonRequired, "is required")
	}
	if utf8.RuneCountInString(raw) < minPasswordLength {
		return fieldErr(field, ReasonTooShort, "must be at least 8 characters long")
	}
	return nil
}

// ValidateLoginPassword only rejects obviously empty input before the credential check.
func ValidateLoginPassword(field, raw string) error {
	if utf8.RuneCountInString(raw) < minLoginPasswordLength {
		return fieldErr(field, ReasonTooShort, "must be at least 3 characters long")
	}
	return nil
}

// ValidateRole checks raw against the fixed role set.
func ValidateRole(field, raw string) (entity.Role, error) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return "", fieldErr(field, ReasonRequired, "is required")
	}
	role := entity.Role(value)
	if !role.IsValid() {
		return "", fieldErr(field, ReasonInvalidChoice, "must be one of: "+strings.Join(entity.RoleNames(), ", "))
	}
	return role, nil
}

// ParseActiveFlag maps the accepted textual forms of the active flag to a bool.
// Empty input yields the default (true); anything outside the accepted set fails.
func ParseActiveFlag(field, raw string) (bool, error) {
	value := strings.ToLower(strings.TrimSpace(raw))
	switch {
	case value == "":
		return true, nil
	case activeTruthy[value]:
		return true, nil
	case activeFalsy[value]:
		return false, nil
	}
	return false, fieldErr(field, ReasonInvalidChoice, "must be one of: true, 1, actif, false, 0, inactif")
}

// ParseActiveFilter is ParseActiveFlag for list filters, where empty means "any".
func ParseActiveFilter(field, raw string) (*bool, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	v, err := ParseActiveFlag(field, raw)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// createFields is the normalized form of a CreateAccountInput.
type createFields struct {
	FirstName string
	LastName  string
	Email     string
	Phone     string
	Role      entity.Role
	Password  string
	IsActive  bool
}

// validateCreate runs every validator and aggregates all failures.
func validateCreate(in CreateAccountInput) (createFields, error) {
	var (
		out  createFields
		errs ValidationError
		err  error
	)
	out.FirstName, err = ValidateName("first_name", in.FirstName)
	errs.Collect(err)
	out.LastName, err = ValidateName("last_name", in.LastName)
	errs.Collect(err)
	out.Email, err = ValidateEmail("email", in.Email)
	errs.Collect(err)
	out.Role, err = ValidateRole("role", in.Role)
	errs.Collect(err)
	errs.Collect(ValidatePassword("password", in.Password))
	out.IsActive, err = ParseActiveFlag("is_active", in.IsActive)
	errs.Collect(err)

	out.Phone = strings.TrimSpace(in.Phone)
	out.Password = in.Password
	return out, errs.Err()
}
