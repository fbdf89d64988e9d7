package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/clinic-records/apiserver/internal/services"
	"github.com/clinic-records/apiserver/internal/store"
	"github.com/clinic-records/apiserver/types"
	"github.com/go-chi/chi/v5"
)

// UserHandler provides registration, login and user administration endpoints.
type UserHandler struct {
	users    *services.UserService
	audit    *services.AuditService
	secret   []byte
	tokenTTL time.Duration
}

func NewUserHandler(users *services.UserService, audit *services.AuditService, jwtSecret string, tokenTTL time.Duration) *UserHandler {
	return &UserHandler{
		users:    users,
		audit:    audit,
		secret:   []byte(jwtSecret),
		tokenTTL: tokenTTL,
	}
}

// UserRouter registers user routes on the given router.
func UserRouter(r chi.Router, h *UserHandler, authMiddleware func(http.Handler) http.Handler) {
	r.Post("/register", h.Register)
	r.Post("/login", h.Login)

	r.Group(func(r chi.Router) {
		r.Use(authMiddleware)
		r.With(RequireRoles(types.RoleAdmin)).Get("/", h.ListUsers)
		r.With(RequireRoles(types.RoleAdmin, types.RoleDoctor)).Get("/{username}", h.GetUser)
		r.With(RequireRoles(types.RoleAdmin)).Put("/{username}", h.UpdateUser)
		r.With(RequireRoles(types.RoleAdmin)).Delete("/{username}", h.DeleteUser)
	})
}

type RegisterRequest struct {
	Username string  `json:"username" validate:"required,max=64"`
	Password string  `json:"password" validate:"required"`
	Role     string  `json:"role" validate:"required,oneof=patient doctor admin"`
	Email    *string `json:"email" validate:"omitempty,email"`
}

type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type TokenResponse struct {
	Token string `json:"token"`
}

type UpdateUserRequest struct {
	Username *string `json:"username" validate:"omitempty,min=1,max=64"`
	Password *string `json:"password" validate:"omitempty,min=1"`
	Role     *string `json:"role" validate:"omitempty,oneof=patient doctor admin"`
	Email    *string `json:"email" validate:"omitempty,email"`
}

// Register creates a new account. The new user is recorded as the actor
// of its own creation.
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := decodeJSON(r, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}
	req.Username = strings.TrimSpace(req.Username)

	user, err := h.users.Register(r.Context(), req.Username, req.Password, req.Role, req.Email)
	if err != nil {
		if errors.Is(err, store.ErrConflict) {
			writeMessage(w, http.StatusConflict, "Username already exists")
			return
		}
		writeServiceError(w, r, err, "User not found")
		return
	}

	h.audit.Record(r.Context(), user.ID, types.ActionCreate, types.ResourceUser, &user.ID)
	writeCreated(w, "User registered successfully", user.ID)
}

// Login verifies credentials and returns a JWT.
func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}
	req.Username = strings.TrimSpace(req.Username)

	ok, err := h.users.ValidateCredential(r.Context(), req.Username, req.Password)
	if err != nil {
		writeServiceError(w, r, err, "Invalid credentials")
		return
	}
	if !ok {
		writeMessage(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	user, err := h.users.GetByUsername(r.Context(), req.Username)
	if err != nil {
		writeServiceError(w, r, err, "Invalid credentials")
		return
	}

	token, err := issueToken(user, h.secret, h.tokenTTL)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to create token")
		return
	}
	writeJSON(w, http.StatusOK, TokenResponse{Token: token})
}

func (h *UserHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.List(r.Context())
	if err != nil {
		writeServiceError(w, r, err, "User not found")
		return
	}
	writeJSON(w, http.StatusOK, users)
}

func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	user, err := h.users.GetByUsername(r.Context(), chi.URLParam(r, "username"))
	if err != nil {
		writeServiceError(w, r, err, "User not found")
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (h *UserHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	var req UpdateUserRequest
	if err := decodeJSON(r, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}

	user, err := h.users.GetByUsername(r.Context(), chi.URLParam(r, "username"))
	if err != nil {
		writeServiceError(w, r, err, "User not found")
		return
	}

	patch := types.UserPatch{Username: req.Username, Role: req.Role, Email: req.Email}
	affected, err := h.users.Update(r.Context(), user.ID, patch, req.Password)
	if err != nil {
		writeServiceError(w, r, err, "User not found")
		return
	}
	if affected == 0 {
		writeMessage(w, http.StatusNotFound, "User not found")
		return
	}

	h.audit.Record(r.Context(), actorID(r), types.ActionUpdate, types.ResourceUser, &user.ID)
	writeMessage(w, http.StatusOK, "User updated successfully")
}

func (h *UserHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	user, err := h.users.GetByUsername(r.Context(), chi.URLParam(r, "username"))
	if err != nil {
		writeServiceError(w, r, err, "User not found")
		return
	}

	affected, err := h.users.Delete(r.Context(), user.ID)
	if err != nil {
		writeServiceError(w, r, err, "User not found")
		return
	}
	if affected == 0 {
		writeMessage(w, http.StatusNotFound, "User not found")
		return
	}

	h.audit.Record(r.Context(), actorID(r), types.ActionDelete, types.ResourceUser, &user.ID)
	writeMessage(w, http.StatusOK, "User deleted successfully")
}
