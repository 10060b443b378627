package domain

import "time"

// Feature is a billable product capability that can be applied per tenant.
type Feature struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Enabled     bool      `json:"enabled"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TenantFeature is a feature applied to a tenant, joined with the feature's
// descriptive fields for listings.
type TenantFeature struct {
	TenantID    string    `json:"tenant_id"`
	FeatureID   string    `json:"feature_id"`
	Name        string    `json:"name,omitempty"`
	Description string    `json:"description,omitempty"`
	Enabled     bool      `json:"enabled"`
	AppliedAt   time.Time `json:"applied_at"`
}
