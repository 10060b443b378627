package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/chefpilot/chefpilot-api/internal/domain"
	"github.com/chefpilot/chefpilot-api/internal/service"
	"github.com/chefpilot/chefpilot-api/internal/store"
	"github.com/chefpilot/chefpilot-api/pkg/apix"
	"github.com/chefpilot/chefpilot-api/pkg/httpx"
	"github.com/chefpilot/chefpilot-api/pkg/slogx"
)

// TaskHandler serves tenant-scoped task CRUD.
type TaskHandler struct {
	TaskService *service.TaskService
}

type taskRequest struct {
	TenantID         string     `json:"tenant_id"`
	Title            string     `json:"title"`
	Description      string     `json:"description"`
	Type             string     `json:"type"`
	Schedule         string     `json:"schedule"`
	AssignedTo       string     `json:"assigned_to"`
	AssignedBy       string     `json:"assigned_by"`
	Status           string     `json:"status"`
	DueDate          *time.Time `json:"due_date"`
	RequiresApproval bool       `json:"requires_approval"`
	ApprovedBy       string     `json:"approved_by"`
	ApprovedAt       *time.Time `json:"approved_at"`
	ImageRequired    bool       `json:"image_required"`
	ImageURL         string     `json:"image_url"`
}

func (h *TaskHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req taskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apix.NewMissingFields([]string{"tenant_id", "title"}).WriteError(w)
		return
	}
	if missing := requireFields(map[string]string{
		"tenant_id": req.TenantID,
		"title":     req.Title,
	}); len(missing) > 0 {
		apix.NewMissingFields(missing).WriteError(w)
		return
	}

	identity, _ := IdentityFromContext(ctx)

	task, err := h.TaskService.CreateTask(ctx, req.TenantID, service.CreateTaskParams{
		Title:            req.Title,
		Description:      req.Description,
		Type:             req.Type,
		Schedule:         req.Schedule,
		AssignedTo:       req.AssignedTo,
		AssignedBy:       identity.ID,
		DueDate:          req.DueDate,
		RequiresApproval: req.RequiresApproval,
		ImageRequired:    req.ImageRequired,
	})
	if err != nil {
		if errors.Is(err, service.ErrTitleRequired) {
			apix.NewValidation(err.Error()).WriteError(w)
			return
		}
		slogx.FromContext(ctx).Error("failed to create task", slog.Any("error", err))
		apix.ErrInternal.WriteError(w)
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, task)
}

func (h *TaskHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := r.URL.Query()

	tasks, err := h.TaskService.ListTasks(ctx, domain.TaskFilter{
		TenantID:   q.Get("tenant_id"),
		Status:     q.Get("status"),
		AssignedTo: q.Get("assigned_to"),
	})
	if err != nil {
		slogx.FromContext(ctx).Error("failed to list tasks", slog.Any("error", err))
		apix.ErrInternal.WriteError(w)
		return
	}
	if tasks == nil {
		tasks = []domain.Task{}
	}

	httpx.WriteJSON(w, http.StatusOK, tasks)
}

func (h *TaskHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	task, err := h.TaskService.GetTask(ctx, r.URL.Query().Get("tenant_id"), r.PathValue("id"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			apix.ErrNotFound.WriteError(w)
			return
		}
		slogx.FromContext(ctx).Error("failed to load task", slog.Any("error", err))
		apix.ErrInternal.WriteError(w)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, task)
}

func (h *TaskHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req taskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apix.NewMissingFields([]string{"tenant_id", "title"}).WriteError(w)
		return
	}
	if missing := requireFields(map[string]string{
		"tenant_id": req.TenantID,
		"title":     req.Title,
	}); len(missing) > 0 {
		apix.NewMissingFields(missing).WriteError(w)
		return
	}

	status := req.Status
	if status == "" {
		status = domain.TaskStatusPending
	}

	task, err := h.TaskService.UpdateTask(ctx, domain.Task{
		ID:               r.PathValue("id"),
		TenantID:         req.TenantID,
		Title:            req.Title,
		Description:      req.Description,
		Type:             req.Type,
		Schedule:         req.Schedule,
		AssignedTo:       req.AssignedTo,
		AssignedBy:       req.AssignedBy,
		Status:           status,
		DueDate:          req.DueDate,
		RequiresApproval: req.RequiresApproval,
		ApprovedBy:       req.ApprovedBy,
		ApprovedAt:       req.ApprovedAt,
		ImageRequired:    req.ImageRequired,
		ImageURL:         req.ImageURL,
	})
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			apix.ErrNotFound.WriteError(w)
			return
		}
		slogx.FromContext(ctx).Error("failed to update task", slog.Any("error", err))
		apix.ErrInternal.WriteError(w)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, task)
}

func (h *TaskHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := h.TaskService.DeleteTask(ctx, r.PathValue("id")); err != nil {
		slogx.FromContext(ctx).Error("failed to delete task", slog.Any("error", err))
		apix.ErrInternal.WriteError(w)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, map[string]bool{"ok": true})
}
