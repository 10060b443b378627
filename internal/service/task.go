package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/chefpilot/chefpilot-api/internal/domain"
	"github.com/chefpilot/chefpilot-api/internal/store"
	"github.com/chefpilot/chefpilot-api/pkg/idx"
)

var ErrTitleRequired = errors.New("title is required")

// TaskService manages restaurant tasks within a tenant scope. The tenant id
// always comes from the resolved scope, never from the caller directly.
type TaskService struct {
	Store store.Store
}

type CreateTaskParams struct {
	Title            string
	Description      string
	Type             string
	Schedule         string
	AssignedTo       string
	AssignedBy       string
	DueDate          *time.Time
	RequiresApproval bool
	ImageRequired    bool
}

func (s *TaskService) CreateTask(ctx context.Context, tenantID string, p CreateTaskParams) (domain.Task, error) {
	if strings.TrimSpace(p.Title) == "" {
		return domain.Task{}, ErrTitleRequired
	}

	t := domain.Task{
		ID:               idx.New().String(),
		TenantID:         tenantID,
		Title:            strings.TrimSpace(p.Title),
		Description:      p.Description,
		Type:             p.Type,
		Schedule:         p.Schedule,
		AssignedTo:       p.AssignedTo,
		AssignedBy:       p.AssignedBy,
		Status:           domain.TaskStatusPending,
		DueDate:          p.DueDate,
		RequiresApproval: p.RequiresApproval,
		ImageRequired:    p.ImageRequired,
	}

	if err := s.Store.Tasks().CreateTask(ctx, t); err != nil {
		return domain.Task{}, err
	}
	return s.Store.Tasks().GetTaskByID(ctx, t.ID)
}

// GetTask returns a task only if it belongs to the given tenant. A task in
// another tenant reports not-found rather than leaking its existence. An
// empty tenantID means unscoped access; only the global-owner bypass path
// reaches here without one.
func (s *TaskService) GetTask(ctx context.Context, tenantID, id string) (domain.Task, error) {
	t, err := s.Store.Tasks().GetTaskByID(ctx, id)
	if err != nil {
		return domain.Task{}, err
	}
	if tenantID != "" && t.TenantID != tenantID {
		return domain.Task{}, store.ErrNotFound
	}
	return t, nil
}

func (s *TaskService) ListTasks(ctx context.Context, f domain.TaskFilter) ([]domain.Task, error) {
	return s.Store.Tasks().ListTasks(ctx, f)
}

func (s *TaskService) UpdateTask(ctx context.Context, t domain.Task) (domain.Task, error) {
	if strings.TrimSpace(t.Title) == "" {
		return domain.Task{}, ErrTitleRequired
	}
	if err := s.Store.Tasks().UpdateTask(ctx, t); err != nil {
		return domain.Task{}, err
	}
	return s.Store.Tasks().GetTaskByID(ctx, t.ID)
}

func (s *TaskService) DeleteTask(ctx context.Context, id string) error {
	return s.Store.Tasks().DeleteTask(ctx, id)
}
