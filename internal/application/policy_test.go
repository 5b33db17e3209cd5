package application

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/crm-accounts/internal/domain/entity"
)

var (
	superAdmin = Actor{ID: 1, Role: entity.RoleSuperAdmin}
	formateur  = Actor{ID: 2, Role: entity.RoleFormateur}
	legacy     = Actor{ID: 3, Role: entity.RoleResponsable, IsSuperuser: true}
)

func TestCreateAccountRequiresSuperAdmin(t *testing.T) {
	var p Policy
	_, err := p.Authorize(superAdmin, ActionCreateAccount, 0)
	assert.NoError(t, err)

	for _, role := range entity.Roles {
		if role == entity.RoleSuperAdmin {
			continue
		}
		_, err := p.Authorize(Actor{ID: 9, Role: role}, ActionCreateAccount, 0)
		var fe *ForbiddenError
		require.ErrorAs(t, err, &fe, role)
		assert.ErrorIs(t, err, ErrForbidden)
		assert.Equal(t, ActionCreateAccount, fe.Action)
		assert.NotEmpty(t, fe.Reason)
	}
}

func TestLegacySuperuserIsPromoted(t *testing.T) {
	var p Policy
	d, err := p.Authorize(legacy, ActionCreateAccount, 0)
	require.NoError(t, err)
	assert.True(t, d.PromoteRole)
	assert.True(t, d.CanManage)

	d, err = p.Authorize(superAdmin, ActionCreateAccount, 0)
	require.NoError(t, err)
	assert.False(t, d.PromoteRole)
}

func TestListReportsCanManage(t *testing.T) {
	var p Policy
	d, err := p.Authorize(formateur, ActionListAccounts, 0)
	require.NoError(t, err)
	assert.False(t, d.CanManage)

	d, err = p.Authorize(superAdmin, ActionListAccounts, 0)
	require.NoError(t, err)
	assert.True(t, d.CanManage)
}

func TestSelfActionAlwaysForbidden(t *testing.T) {
	var p Policy
	for _, actor := range []Actor{superAdmin, formateur, legacy} {
		for _, action := range []Action{ActionToggleActive, ActionDeleteAccount} {
			_, err := p.Authorize(actor, action, actor.ID)
			assert.ErrorIs(t, err, ErrSelfActionForbidden)
		}
	}
}

func TestManageOthers(t *testing.T) {
	var p Policy
	_, err := p.Authorize(superAdmin, ActionToggleActive, 5)
	assert.NoError(t, err)
	_, err = p.Authorize(formateur, ActionDeleteAccount, 5)
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestViewProfile(t *testing.T) {
	var p Policy
	_, err := p.Authorize(formateur, ActionViewProfile, formateur.ID)
	assert.NoError(t, err)
	_, err = p.Authorize(formateur, ActionViewProfile, 7)
	assert.ErrorIs(t, err, ErrForbidden)
	_, err = p.Authorize(superAdmin, ActionViewProfile, 7)
	assert.NoError(t, err)
}

func TestChangeOwnPasswordOnly(t *testing.T) {
	var p Policy
	_, err := p.Authorize(superAdmin, ActionChangeOwnPassword, superAdmin.ID)
	assert.NoError(t, err)
	_, err = p.Authorize(superAdmin, ActionChangeOwnPassword, 8)
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestUnknownActionDenied(t *testing.T) {
	_, err := Policy{}.Authorize(superAdmin, Action("drop_table"), 0)
	assert.ErrorIs(t, err, ErrForbidden)
}
