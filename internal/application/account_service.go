package application

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/crm-accounts/internal/domain/entity"
	repo "github.com/oksasatya/crm-accounts/internal/domain/repository"
	"github.com/oksasatya/crm-accounts/pkg/mailer"
)

// maxUsernameAttempts bounds the generate-and-insert loop under contention.
const maxUsernameAttempts = 5

const defaultPageSize = 10

// AccountService is the account lifecycle manager.
// Indexer, Events, Avatars and Sessions are optional; side effects on them
// never fail a use case.
type AccountService struct {
	Repo      repo.AccountRepository
	Policy    Policy
	Usernames *UsernameGenerator
	Hasher    PasswordHasher
	Sessions  SessionManager
	Indexer   AccountIndexer
	Events    EventPublisher
	Avatars   AvatarStorage
	Logger    *logrus.Logger
	PageSize  int
	Now       func() time.Time
}

func NewAccountService(r repo.AccountRepository, hasher PasswordHasher, sessions SessionManager, logger *logrus.Logger) *AccountService {
	return &AccountService{
		Repo:      r,
		Usernames: NewUsernameGenerator(r),
		Hasher:    hasher,
		Sessions:  sessions,
		Logger:    logger,
		PageSize:  defaultPageSize,
		Now:       time.Now,
	}
}

// CreateAccountInput carries raw client values; IsActive accepts the textual
// forms understood by ParseActiveFlag.
type CreateAccountInput struct {
	FirstName string
	LastName  string
	Email     string
	Phone     string
	Role      string
	Password  string
	IsActive  string
}

// authorize runs the policy and persists a pending legacy promotion.
func (s *AccountService) authorize(ctx context.Context, actor Actor, action Action, targetID int64) (Decision, error) {
	d, err := s.Policy.Authorize(actor, action, targetID)
	if d.PromoteRole {
		s.promote(ctx, actor.ID)
	}
	return d, err
}

func (s *AccountService) promote(ctx context.Context, id int64) {
	a, err := s.Repo.FindByID(ctx, id)
	if err != nil {
		s.log().WithError(err).WithField("account_id", id).Warn("legacy promotion lookup failed")
		return
	}
	if a.Role == entity.RoleSuperAdmin {
		return
	}
	prev := a.Role
	a.Role = entity.RoleSuperAdmin
	a.UpdatedAt = s.now()
	if _, err := s.Repo.Update(ctx, a); err != nil {
		s.log().WithError(err).WithField("account_id", id).Warn("legacy promotion failed")
		return
	}
	s.log().WithFields(logrus.Fields{"account_id": id, "from": prev}).Info("legacy superuser promoted to super_admin")
}

func (s *AccountService) CreateAccount(ctx context.Context, actor Actor, in CreateAccountInput) (*entity.Account, error) {
	if _, err := s.authorize(ctx, actor, ActionCreateAccount, 0); err != nil {
		return nil, err
	}
	f, err := validateCreate(in)
	if err != nil {
		return nil, err
	}
	taken, err := s.Repo.ExistsByEmail(ctx, f.Email)
	if err != nil {
		return nil, fmt.Errorf("check email: %w", err)
	}
	if taken {
		return nil, ErrDuplicateEmail
	}
	hash, err := s.Hasher.Hash(f.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := s.now()
	for attempt := 1; attempt <= maxUsernameAttempts; attempt++ {
		username, err := s.Usernames.Generate(ctx, f.FirstName, f.LastName, f.Email)
		if err != nil {
			return nil, err
		}
		created, err := s.Repo.Insert(ctx, &entity.Account{
			Username:     username,
			Email:        f.Email,
			FirstName:    f.FirstName,
			LastName:     f.LastName,
			Phone:        f.Phone,
			Role:         f.Role,
			PasswordHash: hash,
			IsActive:     f.IsActive,
			CreatedAt:    now,
			UpdatedAt:    now,
		})
		if err == nil {
			s.log().WithFields(logrus.Fields{"account_id": created.ID, "username": created.Username, "actor_id": actor.ID}).Info("account created")
			s.index(ctx, created)
			s.notify(ctx, created.Email, mailer.TemplateAccountCreated, map[string]any{
				"Name":     created.FullName(),
				"Username": created.Username,
				"Role":     created.Role.Label(),
			})
			return created, nil
		}
		var ce *repo.ConflictError
		if !errors.As(err, &ce) {
			return nil, fmt.Errorf("insert account: %w", err)
		}
		if ce.Field == "email" {
			return nil, ErrDuplicateEmail
		}
		s.log().WithFields(logrus.Fields{"username": username, "attempt": attempt}).Warn("username taken concurrently, retrying")
	}
	return nil, ErrConflict
}

// ListAccountsInput holds the raw list filters. Page 0 disables pagination.
type ListAccountsInput struct {
	Search   string
	Role     string
	IsActive string
	Page     int
	PageSize int
}

// AccountRow is an account decorated for listing.
type AccountRow struct {
	Numero      string
	Initials    string
	DisplayCode string
	Account     *entity.Account
}

type AccountList struct {
	Rows      []AccountRow
	Total     int
	Page      int
	PageSize  int
	CanManage bool
}

func (s *AccountService) ListAccounts(ctx context.Context, actor Actor, in ListAccountsInput) (*AccountList, error) {
	d, err := s.authorize(ctx, actor, ActionListAccounts, 0)
	if err != nil {
		return nil, err
	}

	var errs ValidationError
	filter := repo.AccountFilter{Search: in.Search}
	if in.Role != "" {
		filter.Role, err = ValidateRole("role", in.Role)
		errs.Collect(err)
	}
	filter.IsActive, err = ParseActiveFilter("is_active", in.IsActive)
	errs.Collect(err)
	size := in.PageSize
	if size <= 0 {
		size = s.pageSize()
	}
	// the offset of the last row on the page must fit in an int
	if in.Page > 0 && in.Page-1 > (math.MaxInt-size)/size {
		errs.Collect(fieldErr("page", ReasonInvalidChoice, "is out of range"))
	}
	if err := errs.Err(); err != nil {
		return nil, err
	}

	out := &AccountList{CanManage: d.CanManage}
	if in.Page > 0 {
		filter.Limit = size
		filter.Offset = (in.Page - 1) * size
		out.Page, out.PageSize = in.Page, size
	}

	accounts, total, err := s.Repo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	out.Total = total
	out.Rows = make([]AccountRow, 0, len(accounts))
	for i, a := range accounts {
		out.Rows = append(out.Rows, AccountRow{
			Numero:      fmt.Sprintf("%02d", filter.Offset+i+1),
			Initials:    a.Initials(),
			DisplayCode: a.DisplayCode(),
			Account:     a,
		})
	}
	return out, nil
}

// GetAccount returns a profile the actor is allowed to see.
func (s *AccountService) GetAccount(ctx context.Context, actor Actor, id int64) (*entity.Account, error) {
	if _, err := s.authorize(ctx, actor, ActionViewProfile, id); err != nil {
		return nil, err
	}
	return s.Repo.FindByID(ctx, id)
}

// ToggleActive flips the active flag of target and returns the new state.
func (s *AccountService) ToggleActive(ctx context.Context, actor Actor, targetID int64) (*entity.Account, error) {
	if _, err := s.authorize(ctx, actor, ActionToggleActive, targetID); err != nil {
		return nil, err
	}
	a, err := s.Repo.FindByID(ctx, targetID)
	if err != nil {
		return nil, err
	}
	if a.ID == actor.ID {
		return nil, ErrSelfActionForbidden
	}
	a.IsActive = !a.IsActive
	a.UpdatedAt = s.now()
	updated, err := s.Repo.Update(ctx, a)
	if err != nil {
		return nil, fmt.Errorf("update account: %w", err)
	}
	s.log().WithFields(logrus.Fields{"account_id": updated.ID, "is_active": updated.IsActive, "actor_id": actor.ID}).Info("account active flag toggled")
	if !updated.IsActive {
		s.revoke(ctx, updated.ID)
	}
	s.index(ctx, updated)
	s.notify(ctx, updated.Email, mailer.TemplateAccountStatusChanged, map[string]any{
		"Name":     updated.FullName(),
		"IsActive": updated.IsActive,
	})
	return updated, nil
}

// DeleteAccount hard-deletes target. The username stays reserved.
func (s *AccountService) DeleteAccount(ctx context.Context, actor Actor, targetID int64) error {
	if _, err := s.authorize(ctx, actor, ActionDeleteAccount, targetID); err != nil {
		return err
	}
	a, err := s.Repo.FindByID(ctx, targetID)
	if err != nil {
		return err
	}
	if a.ID == actor.ID {
		return ErrSelfActionForbidden
	}
	if err := s.Repo.Delete(ctx, a.ID); err != nil {
		return err
	}
	s.log().WithFields(logrus.Fields{"account_id": a.ID, "username": a.Username, "actor_id": actor.ID}).Info("account deleted")
	s.revoke(ctx, a.ID)
	if s.Indexer != nil {
		if err := s.Indexer.Remove(ctx, a.ID); err != nil {
			s.log().WithError(err).WithField("account_id", a.ID).Warn("search index removal failed")
		}
	}
	s.notify(ctx, a.Email, mailer.TemplateAccountDeleted, map[string]any{"Name": a.FullName()})
	return nil
}

// ChangePasswordInput is the payload of a password change. ConfirmPassword
// must repeat NewPassword.
type ChangePasswordInput struct {
	OldPassword     string
	NewPassword     string
	ConfirmPassword string
}

// ChangePassword verifies the old password, stores the new hash and returns a
// fresh session so the caller stays logged in.
func (s *AccountService) ChangePassword(ctx context.Context, actor Actor, in ChangePasswordInput) (*Session, error) {
	if _, err := s.authorize(ctx, actor, ActionChangeOwnPassword, actor.ID); err != nil {
		return nil, err
	}
	a, err := s.Repo.FindByID(ctx, actor.ID)
	if err != nil {
		return nil, err
	}

	if in.OldPassword == "" || !s.Hasher.Compare(a.PasswordHash, in.OldPassword) {
		return nil, ErrWrongPassword
	}
	var errs ValidationError
	errs.Collect(ValidatePassword("new_password", in.NewPassword))
	switch {
	case in.ConfirmPassword == "":
		errs.Collect(fieldErr("confirm_password", ReasonRequired, "is required"))
	case in.ConfirmPassword != in.NewPassword:
		errs.Collect(fieldErr("confirm_password", ReasonMismatch, "does not match the new password"))
	}
	if err := errs.Err(); err != nil {
		return nil, err
	}

	hash, err := s.Hasher.Hash(in.NewPassword)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	a.PasswordHash = hash
	a.UpdatedAt = s.now()
	updated, err := s.Repo.Update(ctx, a)
	if err != nil {
		return nil, fmt.Errorf("update account: %w", err)
	}
	s.log().WithField("account_id", updated.ID).Info("password changed")
	s.notify(ctx, updated.Email, mailer.TemplatePasswordChanged, map[string]any{"Name": updated.FullName()})

	if s.Sessions == nil {
		return nil, nil
	}
	sess, err := s.Sessions.IssueSession(ctx, updated)
	if err != nil {
		return nil, fmt.Errorf("re-establish session: %w", err)
	}
	return sess, nil
}

// UploadAvatar stores a new profile picture for the actor.
func (s *AccountService) UploadAvatar(ctx context.Context, actor Actor, r io.Reader, filename, contentType string) (*entity.Account, error) {
	if _, err := s.authorize(ctx, actor, ActionUpdateOwnProfile, actor.ID); err != nil {
		return nil, err
	}
	if s.Avatars == nil {
		return nil, errors.New("avatar storage not configured")
	}
	a, err := s.Repo.FindByID(ctx, actor.ID)
	if err != nil {
		return nil, err
	}
	url, err := s.Avatars.Upload(ctx, a.ID, r, filename, contentType)
	if err != nil {
		return nil, fmt.Errorf("upload avatar: %w", err)
	}
	a.AvatarURL = url
	a.UpdatedAt = s.now()
	updated, err := s.Repo.Update(ctx, a)
	if err != nil {
		return nil, fmt.Errorf("update account: %w", err)
	}
	s.index(ctx, updated)
	return updated, nil
}

// SearchAccounts queries the search index, falling back to the repository
// filter when no index is configured.
func (s *AccountService) SearchAccounts(ctx context.Context, actor Actor, q string, size int) ([]AccountHit, error) {
	if _, err := s.authorize(ctx, actor, ActionListAccounts, 0); err != nil {
		return nil, err
	}
	if size <= 0 || size > 50 {
		size = s.pageSize()
	}
	if s.Indexer != nil {
		hits, err := s.Indexer.Search(ctx, q, size)
		if err == nil {
			return hits, nil
		}
		s.log().WithError(err).Warn("search index query failed, falling back to repository")
	}
	accounts, _, err := s.Repo.List(ctx, repo.AccountFilter{Search: q, Limit: size})
	if err != nil {
		return nil, fmt.Errorf("search accounts: %w", err)
	}
	hits := make([]AccountHit, 0, len(accounts))
	for _, a := range accounts {
		hits = append(hits, HitFromAccount(a))
	}
	return hits, nil
}

func HitFromAccount(a *entity.Account) AccountHit {
	return AccountHit{
		ID:        a.ID,
		Username:  a.Username,
		Email:     a.Email,
		FirstName: a.FirstName,
		LastName:  a.LastName,
		Role:      a.Role,
		IsActive:  a.IsActive,
	}
}

func (s *AccountService) revoke(ctx context.Context, id int64) {
	if s.Sessions == nil {
		return
	}
	if err := s.Sessions.RevokeSessions(ctx, id); err != nil {
		s.log().WithError(err).WithField("account_id", id).Warn("session revocation failed")
	}
}

func (s *AccountService) index(ctx context.Context, a *entity.Account) {
	if s.Indexer == nil {
		return
	}
	if err := s.Indexer.Index(ctx, a); err != nil {
		s.log().WithError(err).WithField("account_id", a.ID).Warn("search indexing failed")
	}
}

func (s *AccountService) notify(ctx context.Context, to, template string, data map[string]any) {
	if s.Events == nil {
		return
	}
	job := mailer.EmailJob{To: to, Template: template, Data: data}
	if err := s.Events.PublishJSON(ctx, job); err != nil {
		s.log().WithError(err).WithField("template", template).Warn("publish email job failed")
	}
}

func (s *AccountService) pageSize() int {
	if s.PageSize > 0 {
		return s.PageSize
	}
	return defaultPageSize
}

func (s *AccountService) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

func (s *AccountService) log() logrus.FieldLogger {
	if s.Logger != nil {
		return s.Logger
	}
	return logrus.StandardLogger()
}
