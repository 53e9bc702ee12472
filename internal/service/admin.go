package service

import (
	"context"
	"fmt"

	"github.com/pr-poehali-dev/telegram-bot-creation-7/internal/domain"
)

// AdminStore reads and writes the admin roster. Permissions returns nil
// (and no error) for identities that are not active admins.
type AdminStore interface {
	Permissions(ctx context.Context, chatID int64) (*domain.AdminPermissions, error)
	Upsert(ctx context.Context, chatID int64, role domain.AdminRole, caps domain.Capabilities) error
	Remove(ctx context.Context, chatID int64) (bool, error)
	List(ctx context.Context) ([]domain.AdminPermissions, error)
}

// Admins resolves role-based authorization. The owner role is synthesized
// with every capability regardless of stored flags; all other roles carry
// exactly what storage says, with view-only defaults when unset.
type Admins struct {
	store AdminStore
}

func NewAdmins(store AdminStore) *Admins {
	return &Admins{store: store}
}

// PermissionsFor returns nil when the identity is not an active admin.
func (a *Admins) PermissionsFor(ctx context.Context, chatID int64) (*domain.AdminPermissions, error) {
	perms, err := a.store.Permissions(ctx, chatID)
	if err != nil {
		return nil, fmt.Errorf("load admin permissions: %w", err)
	}
	if perms == nil {
		return nil, nil
	}
	if perms.Role == domain.RoleOwner {
		perms.Capabilities = domain.AllCapabilities()
	}
	return perms, nil
}

// defaultCapabilities maps a role to the capability set granted on
// creation. Owner never reads these, it is synthesized at resolution time.
func defaultCapabilities(role domain.AdminRole) domain.Capabilities {
	switch role {
	case domain.RoleOwner:
		return domain.AllCapabilities()
	case domain.RoleAdmin:
		caps := domain.AllCapabilities()
		caps.CanManageAdmins = false
		return caps
	case domain.RoleModerator:
		return domain.Capabilities{
			CanViewStats:        true,
			CanViewOrders:       true,
			CanRemoveOrders:     true,
			CanBlockUsers:       true,
			CanViewSecurityLogs: true,
		}
	default:
		return domain.ViewerCapabilities()
	}
}

// Grant adds or re-roles an admin with the role's default capability set.
func (a *Admins) Grant(ctx context.Context, chatID int64, role domain.AdminRole) error {
	if err := a.store.Upsert(ctx, chatID, role, defaultCapabilities(role)); err != nil {
		return fmt.Errorf("grant admin: %w", err)
	}
	return nil
}

// Revoke removes an admin entirely.
func (a *Admins) Revoke(ctx context.Context, chatID int64) (bool, error) {
	removed, err := a.store.Remove(ctx, chatID)
	if err != nil {
		return false, fmt.Errorf("revoke admin: %w", err)
	}
	return removed, nil
}

// List returns the current roster with resolved capabilities.
func (a *Admins) List(ctx context.Context) ([]domain.AdminPermissions, error) {
	admins, err := a.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list admins: %w", err)
	}
	for i := range admins {
		if admins[i].Role == domain.RoleOwner {
			admins[i].Capabilities = domain.AllCapabilities()
		}
	}
	return admins, nil
}
