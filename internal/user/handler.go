package user

import (
	"context"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-opofit/internal/common"
	"github.com/ovaphlow/pitchfork/service-opofit/internal/user/entity"
)

// Handler exposes HTTP endpoints for the identity gate.
type Handler struct {
	svc    *Service
	logger *zap.SugaredLogger
}

func NewHandler(svc *Service, logger *zap.SugaredLogger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

type actorKey struct{}

// WithActor stores the authorized caller in ctx.
func WithActor(ctx context.Context, u *entity.User) context.Context {
	return context.WithValue(ctx, actorKey{}, u)
}

// ActorFrom returns the caller stored by RequireSession, or nil.
func ActorFrom(ctx context.Context) *entity.User {
	u, _ := ctx.Value(actorKey{}).(*entity.User)
	return u
}

// BearerToken extracts the token of an "Authorization: Bearer" header.
func BearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	const prefix = "bearer "
	if len(h) > len(prefix) && strings.EqualFold(h[:len(prefix)], prefix) {
		return strings.TrimSpace(h[len(prefix):])
	}
	return ""
}

// RequireSession rejects requests without a live session of an approved
// user. The check runs on every call, so a revoked user is shut out on the
// next request even while the session is still open.
func (h *Handler) RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u, err := h.svc.Authorize(r.Context(), BearerToken(r))
		if err != nil {
			common.WriteError(w, h.logger, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(WithActor(r.Context(), u)))
	})
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterInput
	if err := common.DecodeJSON(w, r, &req); err != nil {
		common.WriteError(w, h.logger, err)
		return
	}
	u, err := h.svc.Register(r.Context(), req)
	if err != nil {
		common.WriteError(w, h.logger, err)
		return
	}
	common.WriteJSON(w, http.StatusCreated, u)
}

// LoginRequest login payload.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := common.DecodeJSON(w, r, &req); err != nil {
		common.WriteError(w, h.logger, err)
		return
	}
	res, err := h.svc.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		common.WriteError(w, h.logger, err)
		return
	}
	common.WriteJSON(w, http.StatusOK, res)
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Logout(r.Context(), BearerToken(r)); err != nil {
		common.WriteError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	common.WriteJSON(w, http.StatusOK, ActorFrom(r.Context()))
}

func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.svc.GetAllUsers(r.Context(), ActorFrom(r.Context()))
	if err != nil {
		common.WriteError(w, h.logger, err)
		return
	}
	common.WriteJSON(w, http.StatusOK, users)
}

func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	if !ActorFrom(r.Context()).IsActiveAdmin() {
		common.WriteError(w, h.logger, common.ErrUnauthorized)
		return
	}
	u, err := h.svc.GetUserProfile(r.Context(), r.PathValue("id"))
	if err != nil {
		common.WriteError(w, h.logger, err)
		return
	}
	if u == nil {
		common.WriteError(w, h.logger, common.ErrNotFound)
		return
	}
	common.WriteJSON(w, http.StatusOK, u)
}

// StatusRequest is the body of a status change.
type StatusRequest struct {
	Status entity.Status `json:"status"`
}

func (h *Handler) SetStatus(w http.ResponseWriter, r *http.Request) {
	var req StatusRequest
	if err := common.DecodeJSON(w, r, &req); err != nil {
		common.WriteError(w, h.logger, err)
		return
	}
	u, err := h.svc.UpdateUserStatus(r.Context(), ActorFrom(r.Context()), r.PathValue("id"), req.Status)
	if err != nil {
		common.WriteError(w, h.logger, err)
		return
	}
	common.WriteJSON(w, http.StatusOK, u)
}
