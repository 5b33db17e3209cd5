package application

import (
	"github.com/oksasatya/crm-accounts/internal/domain/entity"
)

// Action names an operation subject to authorization.
type Action string

const (
	ActionCreateAccount     Action = "create_account"
	ActionListAccounts      Action = "list_accounts"
	ActionToggleActive      Action = "toggle_active"
	ActionDeleteAccount     Action = "delete_account"
	ActionViewProfile       Action = "view_profile"
	ActionChangeOwnPassword Action = "change_own_password"
	ActionUpdateOwnProfile  Action = "update_own_profile"
)

// Actor is the authenticated identity performing a request.
type Actor struct {
	ID          int64
	Role        entity.Role
	IsSuperuser bool
}

// ActorFromAccount builds the actor value for an authenticated account.
func ActorFromAccount(a *entity.Account) Actor {
	return Actor{ID: a.ID, Role: a.Role, IsSuperuser: a.IsSuperuser}
}

// Decision is the outcome of a granted check.
//
// PromoteRole is set when the actor carries the legacy superuser flag without
// the super_admin role; the caller persists the promotion. It is reported on
// denials as well so the migration happens on the first check of any kind.
type Decision struct {
	CanManage   bool
	PromoteRole bool
}

// Policy is the single authorization function for account operations.
type Policy struct{}

// EffectiveRole folds the legacy superuser flag into the canonical role.
func (Policy) EffectiveRole(actor Actor) entity.Role {
	if actor.IsSuperuser {
		return entity.RoleSuperAdmin
	}
	return actor.Role
}

// Authorize decides whether actor may perform action on targetID.
// targetID is ignored by actions that carry no target.
func (p Policy) Authorize(actor Actor, action Action, targetID int64) (Decision, error) {
	role := p.EffectiveRole(actor)
	d := Decision{
		CanManage:   role == entity.RoleSuperAdmin,
		PromoteRole: actor.IsSuperuser && actor.Role != entity.RoleSuperAdmin,
	}

	switch action {
	case ActionCreateAccount:
		if !d.CanManage {
			return d, forbidden(action, "only a super administrator can create accounts")
		}
	case ActionListAccounts:
	case ActionToggleActive, ActionDeleteAccount:
		if targetID == actor.ID {
			return d, ErrSelfActionForbidden
		}
		if !d.CanManage {
			return d, forbidden(action, "only a super administrator can manage accounts")
		}
	case ActionViewProfile:
		if targetID != actor.ID && !d.CanManage {
			return d, forbidden(action, "you can only view your own profile")
		}
	case ActionChangeOwnPassword, ActionUpdateOwnProfile:
		if targetID != actor.ID {
			return d, forbidden(action, "you can only change your own account")
		}
	default:
		return d, forbidden(action, "unknown action")
	}
	return d, nil
}
