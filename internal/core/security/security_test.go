package security

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"datacatalog/internal/core/apperror"
	"datacatalog/internal/core/id"
)

func vis(v Visibility) *Visibility { return &v }

func TestParseRole_Aliases(t *testing.T) {
	tests := []struct {
		in   string
		want Role
	}{
		{"user", RoleUser},
		{"USER", RoleUser},
		{"admin", RoleAdmin},
		{" Admin ", RoleAdmin},
		{"cami", RoleCamiYaku},
		{"cami_yaku", RoleCamiYaku},
		{"CamiYaku", RoleCamiYaku},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseRole(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := ParseRole("superuser")
	assert.Error(t, err)
}

func TestCanEdit(t *testing.T) {
	owner := id.New()
	other := id.New()

	for _, r := range []Role{RoleAdmin, RoleCamiYaku} {
		assert.True(t, CanEdit(r, owner, other), "privileged role %s edits anything", r)
	}
	assert.True(t, CanEdit(RoleUser, owner, owner))
	assert.False(t, CanEdit(RoleUser, owner, other))
	assert.False(t, CanEdit(Role("GUEST"), owner, owner))
}

func TestCanEdit_AdminAlwaysAllowed(t *testing.T) {
	for i := 0; i < 50; i++ {
		assert.True(t, CanEdit(RoleAdmin, id.New(), id.New()))
	}
}

func TestCanDelete(t *testing.T) {
	owner := id.New()
	assert.True(t, CanDelete(RoleAdmin, owner, id.New()))
	assert.True(t, CanDelete(RoleCamiYaku, owner, id.New()))
	assert.False(t, CanDelete(RoleUser, owner, owner), "owners cannot delete")
}

func TestRoleOnlyPredicates(t *testing.T) {
	for _, r := range Roles {
		want := r == RoleAdmin
		assert.Equal(t, want, CanViewAudit(r), r)
		assert.Equal(t, want, CanManageUsers(r), r)
		assert.Equal(t, want, CanChangeStatus(r), r)
	}
}

func TestCapabilitiesFor(t *testing.T) {
	assert.Equal(t, Capabilities{}, CapabilitiesFor(nil))

	caps := CapabilitiesFor(NewActor(id.New(), RoleCamiYaku))
	assert.True(t, caps.CanEditAny)
	assert.True(t, caps.CanDeleteAny)
	assert.False(t, caps.CanViewAudit)

	caps = CapabilitiesFor(NewActor(id.New(), RoleAdmin))
	assert.True(t, caps.CanManageUsers)
	assert.True(t, caps.CanChangeStatus)
}

func TestRequireGuards(t *testing.T) {
	assert.True(t, apperror.IsUnauthorized(RequireActor(nil)))
	assert.True(t, apperror.IsUnauthorized(RequireAuditAccess(nil)))
	assert.True(t, apperror.IsForbidden(RequireAuditAccess(NewActor(id.New(), RoleCamiYaku))))
	assert.NoError(t, RequireAuditAccess(NewActor(id.New(), RoleAdmin)))
	assert.True(t, apperror.IsForbidden(RequireUserManagement(NewActor(id.New(), RoleUser))))
}

func TestVisibilityScope(t *testing.T) {
	user := NewActor(id.New(), RoleUser)
	cami := NewActor(id.New(), RoleCamiYaku)
	admin := NewActor(id.New(), RoleAdmin)

	tests := []struct {
		name      string
		actor     *Actor
		requested *Visibility
		want      []Visibility
	}{
		{"anonymous", nil, nil, []Visibility{VisibilityPublic}},
		{"anonymous cannot widen", nil, vis(VisibilityCamiYaku), []Visibility{VisibilityPublic}},
		{"user default", user, nil, []Visibility{VisibilityPublic, VisibilityExternal, VisibilityInternal}},
		{"user narrows to public", user, vis(VisibilityPublic), []Visibility{VisibilityPublic}},
		{"user external includes legacy", user, vis(VisibilityExternal), []Visibility{VisibilityExternal, VisibilityInternal}},
		{"user cannot widen", user, vis(VisibilityCamiYaku), []Visibility{}},
		{"cami default", cami, nil, AllVisibilities},
		{"admin narrows", admin, vis(VisibilityCamiYaku), []Visibility{VisibilityCamiYaku}},
		{"admin internal alias", admin, vis(VisibilityInternal), []Visibility{VisibilityExternal, VisibilityInternal}},
		{"unknown role", NewActor(id.New(), Role("GUEST")), nil, []Visibility{VisibilityPublic}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := VisibilityScope(tt.actor, tt.requested)
			require.NotNil(t, got)
			assert.ElementsMatch(t, tt.want, got)
		})
	}
}

func TestVisibilityScope_UserNeverSeesCamiYaku(t *testing.T) {
	user := NewActor(id.New(), RoleUser)
	requests := []*Visibility{nil}
	for _, v := range AllVisibilities {
		requests = append(requests, vis(v))
	}
	for _, r := range requests {
		assert.NotContains(t, VisibilityScope(user, r), VisibilityCamiYaku)
	}
}

func TestVisibilityScope_DoesNotAliasShared(t *testing.T) {
	got := VisibilityScope(NewActor(id.New(), RoleAdmin), nil)
	got[0] = "MUTATED"
	assert.Equal(t, VisibilityPublic, AllVisibilities[0])
}

func TestCanSee(t *testing.T) {
	assert.True(t, CanSee(nil, VisibilityPublic))
	assert.False(t, CanSee(nil, VisibilityInternal))
	assert.True(t, CanSee(NewActor(id.New(), RoleUser), VisibilityInternal))
	assert.False(t, CanSee(NewActor(id.New(), RoleUser), VisibilityCamiYaku))
	assert.True(t, CanSee(NewActor(id.New(), RoleCamiYaku), VisibilityCamiYaku))
}

func TestParseVisibility(t *testing.T) {
	v, err := ParseVisibility("external")
	require.NoError(t, err)
	assert.Equal(t, VisibilityExternal, v)

	_, err = ParseVisibility("secret")
	assert.Error(t, err)
}
