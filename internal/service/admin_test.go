package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pr-poehali-dev/telegram-bot-creation-7/internal/domain"
)

type fakeAdminStore struct {
	admins map[int64]*domain.AdminPermissions
}

func newFakeAdminStore() *fakeAdminStore {
	return &fakeAdminStore{admins: make(map[int64]*domain.AdminPermissions)}
}

func (f *fakeAdminStore) Permissions(_ context.Context, chatID int64) (*domain.AdminPermissions, error) {
	p, ok := f.admins[chatID]
	if !ok {
		return nil, nil
	}
	copied := *p
	return &copied, nil
}

func (f *fakeAdminStore) Upsert(_ context.Context, chatID int64, role domain.AdminRole, caps domain.Capabilities) error {
	f.admins[chatID] = &domain.AdminPermissions{ChatID: chatID, Role: role, Capabilities: caps}
	return nil
}

func (f *fakeAdminStore) Remove(_ context.Context, chatID int64) (bool, error) {
	_, ok := f.admins[chatID]
	delete(f.admins, chatID)
	return ok, nil
}

func (f *fakeAdminStore) List(_ context.Context) ([]domain.AdminPermissions, error) {
	var out []domain.AdminPermissions
	for _, p := range f.admins {
		out = append(out, *p)
	}
	return out, nil
}

func TestPermissionsForNonAdmin(t *testing.T) {
	a := NewAdmins(newFakeAdminStore())

	perms, err := a.PermissionsFor(context.Background(), 100)
	require.NoError(t, err)
	assert.Nil(t, perms)
}

func TestOwnerGetsEverythingRegardlessOfStoredFlags(t *testing.T) {
	store := newFakeAdminStore()
	store.admins[1] = &domain.AdminPermissions{ChatID: 1, Role: domain.RoleOwner}

	a := NewAdmins(store)
	perms, err := a.PermissionsFor(context.Background(), 1)
	require.NoError(t, err)
	require.NotNil(t, perms)
	assert.Equal(t, domain.AllCapabilities(), perms.Capabilities)
}

func TestGrantAssignsRoleDefaults(t *testing.T) {
	store := newFakeAdminStore()
	a := NewAdmins(store)

	require.NoError(t, a.Grant(context.Background(), 2, domain.RoleAdmin))
	perms, err := a.PermissionsFor(context.Background(), 2)
	require.NoError(t, err)
	require.NotNil(t, perms)
	assert.True(t, perms.CanBlockUsers)
	assert.False(t, perms.CanManageAdmins)

	require.NoError(t, a.Grant(context.Background(), 3, domain.RoleModerator))
	perms, err = a.PermissionsFor(context.Background(), 3)
	require.NoError(t, err)
	require.NotNil(t, perms)
	assert.True(t, perms.CanRemoveOrders)
	assert.False(t, perms.CanManageUsers)

	require.NoError(t, a.Grant(context.Background(), 4, domain.RoleViewer))
	perms, err = a.PermissionsFor(context.Background(), 4)
	require.NoError(t, err)
	require.NotNil(t, perms)
	assert.True(t, perms.CanViewStats)
	assert.False(t, perms.CanBlockUsers)
}

func TestRevoke(t *testing.T) {
	store := newFakeAdminStore()
	a := NewAdmins(store)
	require.NoError(t, a.Grant(context.Background(), 2, domain.RoleAdmin))

	removed, err := a.Revoke(context.Background(), 2)
	require.NoError(t, err)
	assert.True(t, removed)

	removed, err = a.Revoke(context.Background(), 2)
	require.NoError(t, err)
	assert.False(t, removed)
}
