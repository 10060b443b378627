package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sort"

	"github.com/chefpilot/chefpilot-api/internal/domain"
	"github.com/chefpilot/chefpilot-api/internal/service"
	"github.com/chefpilot/chefpilot-api/pkg/apix"
	"github.com/chefpilot/chefpilot-api/pkg/httpx"
	"github.com/chefpilot/chefpilot-api/pkg/slogx"
)

// SessionHandler serves login, refresh and logout.
type SessionHandler struct {
	SessionService *service.SessionService
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	AccessToken   string             `json:"access_token"`
	RefreshToken  string             `json:"refresh_token"`
	Identity      domain.SessionUser `json:"identity"`
	TenantContext string             `json:"tenant_context"`
}

func (h *SessionHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req loginRequest
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

	session, err := h.SessionService.Login(ctx, req.Username, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			apix.ErrInvalidCredentials.WriteError(w)
			return
		}
		slogx.FromContext(ctx).Error("login failed", slog.Any("error", err))
		apix.ErrInternal.WriteError(w)
		return
	}

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, loginResponse{
		AccessToken:   session.AccessToken,
		RefreshToken:  session.RefreshToken,
		Identity:      session.User,
		TenantContext: session.TenantContext,
	})
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

func (h *SessionHandler) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req refreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apix.NewMissingFields([]string{"refresh_token"}).WriteError(w)
		return
	}
	if req.RefreshToken == "" {
		apix.NewMissingFields([]string{"refresh_token"}).WriteError(w)
		return
	}

	accessToken, err := h.SessionService.Refresh(ctx, req.RefreshToken)
	if err != nil {
		if errors.Is(err, service.ErrInvalidRefresh) {
			apix.ErrInvalidRefresh.WriteError(w)
			return
		}
		slogx.FromContext(ctx).Error("refresh failed", slog.Any("error", err))
		apix.ErrInternal.WriteError(w)
		return
	}

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, map[string]string{"access_token": accessToken})
}

func (h *SessionHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req refreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apix.NewMissingFields([]string{"refresh_token"}).WriteError(w)
		return
	}
	if req.RefreshToken == "" {
		apix.NewMissingFields([]string{"refresh_token"}).WriteError(w)
		return
	}

	if err := h.SessionService.Logout(ctx, req.RefreshToken); err != nil {
		slogx.FromContext(ctx).Error("logout failed", slog.Any("error", err))
		apix.ErrInternal.WriteError(w)
		return
	}

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// requireFields returns the names of empty required fields, in a stable
// order for predictable responses.
func requireFields(fields map[string]string) []string {
	names := make([]string, 0, len(fields))
	for name, value := range fields {
		if value == "" {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}
