package domain

import "time"

// FieldChange records a single field transition in a user update.
type FieldChange struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// UserAudit is one entry in the user change-audit sink. Changes holds the
// field-level diff applied by the update.
type UserAudit struct {
	ID        int64                  `json:"id"`
	UserID    string                 `json:"user_id"`
	ChangedBy string                 `json:"changed_by,omitempty"`
	Changes   map[string]FieldChange `json:"changes"`
	CreatedAt time.Time              `json:"created_at"`
}
