package application

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/crm-accounts/internal/domain/entity"
	"github.com/oksasatya/crm-accounts/internal/infrastructure/memory"
)

func TestUsernameBase(t *testing.T) {
	cases := []struct {
		first, last, email, want string
	}{
		{"Jean", "Dupont", "j@x.com", "jeandupont"},
		{"Jean-Luc", "O'Neil 2", "j@x.com", "jeanluconeil2"},
		{"Zoë", "Ab", "z@x.com", "zoab"},
		{"  ", "", "Marie.Curie@x.com", "mariecurie"},
		{"é", "ü", "___@x.com", "user"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, UsernameBase(tc.first, tc.last, tc.email), tc.first+" "+tc.last)
	}
}

func TestGenerateAppendsCounter(t *testing.T) {
	ctx := context.Background()
	r := memory.NewAccountRepository()
	g := NewUsernameGenerator(r)

	first, err := g.Generate(ctx, "Jean", "Dupont", "j@x.com")
	require.NoError(t, err)
	assert.Equal(t, "jeandupont", first)
	_, err = r.Insert(ctx, &entity.Account{Username: first, Email: "j@x.com"})
	require.NoError(t, err)

	second, err := g.Generate(ctx, "Jean", "Dupont", "j2@x.com")
	require.NoError(t, err)
	assert.Equal(t, "jeandupont1", second)
	_, err = r.Insert(ctx, &entity.Account{Username: second, Email: "j2@x.com"})
	require.NoError(t, err)

	third, err := g.Generate(ctx, "Jean", "Dupont", "j3@x.com")
	require.NoError(t, err)
	assert.Equal(t, "jeandupont2", third)
}
