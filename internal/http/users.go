package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/chefpilot/chefpilot-api/internal/domain"
	"github.com/chefpilot/chefpilot-api/internal/service"
	"github.com/chefpilot/chefpilot-api/internal/store"
	"github.com/chefpilot/chefpilot-api/pkg/apix"
	"github.com/chefpilot/chefpilot-api/pkg/httpx"
	"github.com/chefpilot/chefpilot-api/pkg/slogx"
)

// UserHandler serves user accounts, profile updates and the change audit
// trail.
type UserHandler struct {
	UserService *service.UserService
}

type createUserRequest struct {
	Username  string `json:"username"`
	Password  string `json:"password"`
	Email     string `json:"email"`
	Role      string `json:"role"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Phone     string `json:"phone"`
	Address   string `json:"address"`
	DOB       string `json:"dob"`
}

func (h *UserHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req createUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apix.NewMissingFields([]string{"username", "password"}).WriteError(w)
		return
	}
	if missing := requireFields(map[string]string{
		"username": req.Username,
		"password": req.Password,
	}); len(missing) > 0 {
		apix.NewMissingFields(missing).WriteError(w)
		return
	}

	user, err := h.UserService.CreateUser(ctx, service.CreateUserParams{
		Username:  req.Username,
		Password:  req.Password,
		Email:     req.Email,
		Role:      req.Role,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Phone:     req.Phone,
		Address:   req.Address,
		DOB:       req.DOB,
	})
	if err != nil {
		switch {
		case errors.Is(err, store.ErrAlreadyExists):
			apix.NewConflict("username_taken").WriteError(w)
		case isValidationError(err):
			apix.NewValidation(err.Error()).WriteError(w)
		default:
			slogx.FromContext(ctx).Error("failed to create user", slog.Any("error", err))
			apix.ErrInternal.WriteError(w)
		}
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, renderUser(user))
}

func (h *UserHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	users, err := h.UserService.ListUsers(ctx)
	if err != nil {
		slogx.FromContext(ctx).Error("failed to list users", slog.Any("error", err))
		apix.ErrInternal.WriteError(w)
		return
	}

	out := make([]map[string]any, 0, len(users))
	for _, u := range users {
		out = append(out, renderUser(u))
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}

func (h *UserHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	user, err := h.UserService.GetUser(ctx, r.PathValue("id"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			apix.ErrNotFound.WriteError(w)
			return
		}
		slogx.FromContext(ctx).Error("failed to load user", slog.Any("error", err))
		apix.ErrInternal.WriteError(w)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, renderUser(user))
}

type updateUserRequest struct {
	Username  *string `json:"username"`
	Email     *string `json:"email"`
	Role      *string `json:"role"`
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	Phone     *string `json:"phone"`
	Address   *string `json:"address"`
	DOB       *string `json:"dob"`
}

func (h *UserHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req updateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apix.NewValidation("invalid request body").WriteError(w)
		return
	}

	identity, _ := IdentityFromContext(ctx)

	user, err := h.UserService.UpdateProfile(ctx, r.PathValue("id"), identity.ID,
		domain.ProfileUpdate{
			Username:  req.Username,
			Email:     req.Email,
			Role:      req.Role,
			FirstName: req.FirstName,
			LastName:  req.LastName,
			Phone:     req.Phone,
			Address:   req.Address,
			DOB:       req.DOB,
		})
	if err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			apix.ErrNotFound.WriteError(w)
		case errors.Is(err, store.ErrAlreadyExists):
			apix.NewConflict("username_taken").WriteError(w)
		case isValidationError(err):
			apix.NewValidation(err.Error()).WriteError(w)
		default:
			slogx.FromContext(ctx).Error("failed to update user", slog.Any("error", err))
			apix.ErrInternal.WriteError(w)
		}
		return
	}

	httpx.WriteJSON(w, http.StatusOK, renderUser(user))
}

func (h *UserHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := h.UserService.DeleteUser(ctx, r.PathValue("id")); err != nil {
		slogx.FromContext(ctx).Error("failed to delete user", slog.Any("error", err))
		apix.ErrInternal.WriteError(w)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (h *UserHandler) HandleAudit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	entries, err := h.UserService.ListAudit(ctx, r.PathValue("id"), limit)
	if err != nil {
		slogx.FromContext(ctx).Error("failed to list user audit", slog.Any("error", err))
		apix.ErrInternal.WriteError(w)
		return
	}
	if entries == nil {
		entries = []domain.UserAudit{}
	}

	httpx.WriteJSON(w, http.StatusOK, entries)
}

func isValidationError(err error) bool {
	return errors.Is(err, service.ErrUsernameTooShort) ||
		errors.Is(err, service.ErrInvalidEmail) ||
		errors.Is(err, service.ErrInvalidPhone) ||
		errors.Is(err, service.ErrInvalidDOB) ||
		errors.Is(err, service.ErrInvalidRole) ||
		errors.Is(err, service.ErrEmptyUpdate)
}

// renderUser shapes a user for the wire; the password hash never leaves the
// server.
func renderUser(u domain.User) map[string]any {
	return map[string]any{
		"id":         u.ID,
		"username":   u.Username,
		"email":      u.Email,
		"role":       u.Role,
		"first_name": u.FirstName,
		"last_name":  u.LastName,
		"phone":      u.Phone,
		"address":    u.Address,
		"dob":        u.DOB,
		"last_login": u.LastLogin,
		"created_at": u.CreatedAt,
		"updated_at": u.UpdatedAt,
	}
}
