package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDisplayCode(t *testing.T) {
	cases := []struct {
		id   int64
		want string
	}{
		{1, "#USR-001"},
		{7, "#USR-007"},
		{42, "#USR-042"},
		{999, "#USR-999"},
		{1234, "#USR-1234"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, DisplayCode(tc.id))
		assert.Equal(t, tc.want, (&Account{ID: tc.id}).DisplayCode())
	}
}

func TestInitials(t *testing.T) {
	cases := []struct {
		name string
		acc  Account
		want string
	}{
		{"both names", Account{FirstName: "jean", LastName: "dupont", Username: "jeandupont"}, "JD"},
		{"accented", Account{FirstName: "élodie", LastName: "Ørsted", Username: "lodiersted"}, "ÉØ"},
		{"blank first name", Account{FirstName: "  ", LastName: "Dupont", Username: "dupont"}, "DU"},
		{"blank last name", Account{FirstName: "Jean", Username: "jean"}, "JE"},
		{"short username", Account{Username: "x"}, "X"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.acc.Initials())
		})
	}
}

func TestAccountString(t *testing.T) {
	a := &Account{Username: "jeandupont", FirstName: "Jean", LastName: "Dupont", Role: RoleFormateur}
	assert.Equal(t, "jeandupont - Formateur", a.String())
	assert.Equal(t, "Jean Dupont", a.FullName())
}
