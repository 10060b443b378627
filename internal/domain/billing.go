package domain

import "time"

// BillingSchedule is a time-boxed pricing entry for a feature. Entries with
// EffectiveAt in the past form the current price book; future entries are
// scheduled changes.
type BillingSchedule struct {
	ID                       string    `json:"id"`
	FeatureID                string    `json:"feature_id"`
	StandalonePricePerUser   *float64  `json:"standalone_price_per_user,omitempty"`
	ParentTenantPricePerUser *float64  `json:"parent_tenant_price_per_user,omitempty"`
	TrialDays                int       `json:"trial_days"`
	Override                 string    `json:"override,omitempty"` // raw JSON payload
	EffectiveAt              time.Time `json:"effective_at"`
	CreatedAt                time.Time `json:"created_at"`
}

// BillingSchedulePatch is a partial update to a scheduled entry.
type BillingSchedulePatch struct {
	FeatureID                *string
	StandalonePricePerUser   *float64
	ParentTenantPricePerUser *float64
	TrialDays                *int
	Override                 *string
	EffectiveAt              *time.Time
}

// IsEmpty reports whether the patch changes nothing.
func (p BillingSchedulePatch) IsEmpty() bool {
	return p.FeatureID == nil && p.StandalonePricePerUser == nil &&
		p.ParentTenantPricePerUser == nil && p.TrialDays == nil &&
		p.Override == nil && p.EffectiveAt == nil
}

// PricingOverride is a per-tenant price exception for a feature.
type PricingOverride struct {
	ID                       string     `json:"id"`
	TenantID                 string     `json:"tenant_id"`
	FeatureID                string     `json:"feature_id"`
	StandalonePricePerUser   *float64   `json:"standalone_price_per_user,omitempty"`
	ParentTenantPricePerUser *float64   `json:"parent_tenant_price_per_user,omitempty"`
	TrialDays                *int       `json:"trial_days,omitempty"`
	EffectiveAt              *time.Time `json:"effective_at,omitempty"`
	CreatedAt                time.Time  `json:"created_at"`
}
