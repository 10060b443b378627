package domain

// Role is the closed set of user roles. Stored and transmitted as its string
// form, which matches the values seeded in the users table.
type Role string

const (
	RoleApplicationOwner Role = "Application Owner"
	RoleTenantOwner      Role = "Tenant Owner"
	RoleManager          Role = "Manager"
	RoleStaff            Role = "Staff"
	RoleTenantUser       Role = "Tenant User"
)

// DefaultRole is assigned when a user row carries no role.
const DefaultRole = RoleTenantUser

// ParseRole maps a stored string onto the closed role set. Unknown values
// fall back to the default role rather than failing, so a bad row degrades to
// least privilege.
func ParseRole(s string) Role {
	switch Role(s) {
	case RoleApplicationOwner, RoleTenantOwner, RoleManager, RoleStaff, RoleTenantUser:
		return Role(s)
	default:
		return DefaultRole
	}
}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleApplicationOwner, RoleTenantOwner, RoleManager, RoleStaff, RoleTenantUser:
		return true
	default:
		return false
	}
}

// BypassesTenantScope reports whether the role acts across all tenants
// without membership checks. This is the single place the global-owner
// bypass is decided.
func (r Role) BypassesTenantScope() bool {
	return r == RoleApplicationOwner
}

// CanManageTenantFeatures reports whether the role may apply or remove
// features on a tenant.
func (r Role) CanManageTenantFeatures() bool {
	return r == RoleApplicationOwner || r == RoleTenantOwner
}

func (r Role) String() string { return string(r) }
