package domain

type AdminRole string

const (
	RoleOwner     AdminRole = "owner"
	RoleAdmin     AdminRole = "admin"
	RoleModerator AdminRole = "moderator"
	RoleViewer    AdminRole = "viewer"
)

// Capabilities is the full set of admin permission flags. Every admin-only
// action checks the one flag it needs, there is no coarse "is admin" gate
// for mutating actions.
type Capabilities struct {
	CanViewStats        bool
	CanViewOrders       bool
	CanRemoveOrders     bool
	CanManageUsers      bool
	CanBlockUsers       bool
	CanManageAdmins     bool
	CanViewSecurityLogs bool
}

// AllCapabilities is what the owner role resolves to regardless of any
// stored flags.
func AllCapabilities() Capabilities {
	return Capabilities{
		CanViewStats:        true,
		CanViewOrders:       true,
		CanRemoveOrders:     true,
		CanManageUsers:      true,
		CanBlockUsers:       true,
		CanManageAdmins:     true,
		CanViewSecurityLogs: true,
	}
}

// ViewerCapabilities is the safe default applied when an admin row has no
// explicit permissions record.
func ViewerCapabilities() Capabilities {
	return Capabilities{
		CanViewStats:  true,
		CanViewOrders: true,
	}
}

// AdminPermissions is the resolved authorization for one identity.
type AdminPermissions struct {
	ChatID int64
	Role   AdminRole
	Capabilities
}
