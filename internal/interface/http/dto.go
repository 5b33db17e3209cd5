package handlers

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/oksasatya/crm-accounts/internal/application"
	"github.com/oksasatya/crm-accounts/internal/domain/entity"
)

type accountDTO struct {
	ID            int64       `json:"id"`
	DisplayCode   string      `json:"display_code"`
	Username      string      `json:"username"`
	Email         string      `json:"email"`
	FirstName     string      `json:"first_name"`
	LastName      string      `json:"last_name"`
	FullName      string      `json:"full_name"`
	Phone         string      `json:"phone"`
	Role          entity.Role `json:"role"`
	RoleLabel     string      `json:"role_label"`
	IsActive      bool        `json:"is_active"`
	EmailVerified bool        `json:"email_verified"`
	AvatarURL     string      `json:"avatar_url,omitempty"`
	CreatedAt     time.Time   `json:"created_at"`
	UpdatedAt     time.Time   `json:"updated_at"`
}

func toAccountDTO(a *entity.Account) accountDTO {
	return accountDTO{
		ID:            a.ID,
		DisplayCode:   a.DisplayCode(),
		Username:      a.Username,
		Email:         a.Email,
		FirstName:     a.FirstName,
		LastName:      a.LastName,
		FullName:      a.FullName(),
		Phone:         a.Phone,
		Role:          a.Role,
		RoleLabel:     a.Role.Label(),
		IsActive:      a.IsActive,
		EmailVerified: a.EmailVerified,
		AvatarURL:     a.AvatarURL,
		CreatedAt:     a.CreatedAt,
		UpdatedAt:     a.UpdatedAt,
	}
}

type accountRowDTO struct {
	Numero   string `json:"numero"`
	Initials string `json:"initials"`
	accountDTO
}

func toRowDTOs(rows []application.AccountRow) []accountRowDTO {
	out := make([]accountRowDTO, 0, len(rows))
	for _, r := range rows {
		out = append(out, accountRowDTO{Numero: r.Numero, Initials: r.Initials, accountDTO: toAccountDTO(r.Account)})
	}
	return out
}

// flexibleFlag accepts a JSON bool, number or string and keeps its textual
// form; interpretation is left to application.ParseActiveFlag.
type flexibleFlag string

func (f *flexibleFlag) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case bytes.Equal(b, []byte("null")):
		*f = ""
	case len(b) > 0 && b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = flexibleFlag(s)
	default:
		*f = flexibleFlag(strings.ToLower(string(b)))
	}
	return nil
}

func parseID(raw string) (int64, bool) {
	id, err := strconv.ParseInt(raw, 10, 64)
	return id, err == nil && id > 0
}
