package entity

import (
	"fmt"
	"strings"
	"time"
	"unicode"
)

// Account is the aggregate root for the accounts domain.
// PasswordHash holds a bcrypt hash and is never serialized to clients.
//
// IsSuperuser is the legacy flag carried over from the previous auth system;
// the authorization policy folds it into Role.
type Account struct {
	ID            int64
	Username      string
	Email         string
	FirstName     string
	LastName      string
	Phone         string
	Role          Role
	PasswordHash  string
	IsActive      bool
	EmailVerified bool
	IsSuperuser   bool
	AvatarURL     string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// FullName joins first and last name.
func (a *Account) FullName() string {
	return strings.TrimSpace(a.FirstName + " " + a.LastName)
}

func (a *Account) String() string {
	return a.Username + " - " + a.Role.Label()
}

// DisplayCode returns the human-facing identifier, e.g. #USR-007.
func (a *Account) DisplayCode() string {
	return DisplayCode(a.ID)
}

// Initials returns the upper-cased first letters of first and last name.
// When either name is blank the first two characters of the username are used.
func (a *Account) Initials() string {
	first := firstRune(a.FirstName)
	last := firstRune(a.LastName)
	if first == 0 || last == 0 {
		r := []rune(strings.TrimSpace(a.Username))
		if len(r) > 2 {
			r = r[:2]
		}
		return strings.ToUpper(string(r))
	}
	return string(unicode.ToUpper(first)) + string(unicode.ToUpper(last))
}

// DisplayCode formats an account id as #USR-<id>, zero-padded to three digits.
// Wider ids are never truncated.
func DisplayCode(id int64) string {
	return fmt.Sprintf("#USR-%03d", id)
}

func firstRune(s string) rune {
	for _, r := range strings.TrimSpace(s) {
		return r
	}
	return 0
}
