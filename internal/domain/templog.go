package domain

import "time"

// TemperatureLog is a food-safety temperature reading recorded against a
// tenant. IsSafe is derived at creation from the safe range, never supplied
// by the client.
type TemperatureLog struct {
	ID          string     `json:"id"`
	TenantID    string     `json:"tenant_id"`
	Temperature float64    `json:"temperature"`
	Unit        string     `json:"unit"`
	Location    string     `json:"location,omitempty"`
	SafeMin     *float64   `json:"safe_min,omitempty"`
	SafeMax     *float64   `json:"safe_max,omitempty"`
	IsSafe      bool       `json:"is_safe"`
	Notes       string     `json:"notes,omitempty"`
	LoggedAt    *time.Time `json:"logged_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// TemperatureLogFilter narrows temperature log listings to a recorded range.
// An empty TenantID lists across tenants; only the global-owner bypass
// reaches that path.
type TemperatureLogFilter struct {
	TenantID string
	Start    *time.Time
	End      *time.Time
}
