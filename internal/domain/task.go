package domain

import "time"

// Task is a unit of restaurant work (cleaning, prep, compliance checks)
// scoped to a tenant.
type Task struct {
	ID               string     `json:"id"`
	TenantID         string     `json:"tenant_id"`
	Title            string     `json:"title"`
	Description      string     `json:"description,omitempty"`
	Type             string     `json:"type,omitempty"`
	Schedule         string     `json:"schedule,omitempty"`
	AssignedTo       string     `json:"assigned_to,omitempty"`
	AssignedBy       string     `json:"assigned_by,omitempty"`
	Status           string     `json:"status"`
	DueDate          *time.Time `json:"due_date,omitempty"`
	RequiresApproval bool       `json:"requires_approval"`
	ApprovedBy       string     `json:"approved_by,omitempty"`
	ApprovedAt       *time.Time `json:"approved_at,omitempty"`
	ImageRequired    bool       `json:"image_required"`
	ImageURL         string     `json:"image_url,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// TaskStatusPending is the status assigned to new tasks.
const TaskStatusPending = "pending"

// TaskFilter narrows task listings. An empty TenantID lists across tenants;
// only the global-owner bypass reaches that path.
type TaskFilter struct {
	TenantID   string
	Status     string
	AssignedTo string
}
