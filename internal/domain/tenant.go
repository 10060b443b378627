package domain

import "time"

// Tenant is an isolated customer organization. A tenant may link to a parent
// tenant (hierarchical multi-tenancy); the parent's PIN is a shared secret
// used only for the association handshake.
type Tenant struct {
	ID             string
	Name           string
	Type           string
	ParentID       *string
	PIN            *string
	UserLimit      int
	RestaurantType string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Membership authorizes a user to act within a tenant. The role here is the
// user's role within that tenant, independent of the account-level role.
type Membership struct {
	UserID    string
	TenantID  string
	Role      string
	CreatedAt time.Time
}
