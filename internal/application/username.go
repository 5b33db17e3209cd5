package application

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	repo "github.com/oksasatya/crm-accounts/internal/domain/repository"
)

const fallbackUsername = "user"

// UsernameBase derives the collision-free candidate for a new account:
// lower(first+last) restricted to [a-z0-9], else the email local part
// restricted the same way, else "user".
func UsernameBase(firstName, lastName, email string) string {
	if base := sanitizeHandle(firstName + lastName); base != "" {
		return base
	}
	local := email
	if at := strings.IndexByte(email, '@'); at >= 0 {
		local = email[:at]
	}
	if base := sanitizeHandle(local); base != "" {
		return base
	}
	return fallbackUsername
}

func sanitizeHandle(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// UsernameGenerator probes the repository for the first free handle among
// base, base1, base2, ...
type UsernameGenerator struct {
	Repo repo.AccountRepository
}

func NewUsernameGenerator(r repo.AccountRepository) *UsernameGenerator {
	return &UsernameGenerator{Repo: r}
}

func (g *UsernameGenerator) Generate(ctx context.Context, firstName, lastName, email string) (string, error) {
	base := UsernameBase(firstName, lastName, email)
	candidate := base
	for n := 1; ; n++ {
		taken, err := g.Repo.ExistsByUsername(ctx, candidate)
		if err != nil {
			return "", fmt.Errorf("probe username %q: %w", candidate, err)
		}
		if !taken {
			return candidate, nil
		}
		if err := ctx.Err(); err != nil {
			return "", err
		}
		candidate = base + strconv.Itoa(n)
	}
}
