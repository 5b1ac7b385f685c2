package handler

import (
	"encoding/json"
	"net/http"

	"github.com/rl1809/inventory/internal/core/domain"
	"github.com/rl1809/inventory/internal/core/service"
)

type UserHandler struct {
	users *service.UserService
}

func NewUserHandler(users *service.UserService) *UserHandler {
	return &UserHandler{users: users}
}

type createUserRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type roleUpdateRequest struct {
	Role string `json:"role"`
}

// Create registers a new user. Admin only.
func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	if UserFrom(r.Context()).Role != domain.RoleAdmin {
		writeDetail(w, http.StatusForbidden, "Only admins can create users")
		return
	}

	var req createUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDetail(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Username == "" || req.Password == "" {
		writeDetail(w, http.StatusBadRequest, "username and password are required")
		return
	}

	user, err := h.users.Create(r.Context(), req.Username, req.Password, domain.Role(req.Role))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toUserResponse(user))
}

// List returns all users. Admins and managers only.
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	role := UserFrom(r.Context()).Role
	if role != domain.RoleAdmin && role != domain.RoleManager {
		writeError(w, domain.ErrPermissionDenied)
		return
	}

	users, err := h.users.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	resp := make([]userResponse, 0, len(users))
	for i := range users {
		resp = append(resp, toUserResponse(&users[i]))
	}
	writeJSON(w, http.StatusOK, resp)
}

// UpdateRole moves a user to another role. Admin only. The role comes
// from the query string like the existing API; a JSON body works too.
func (h *UserHandler) UpdateRole(w http.ResponseWriter, r *http.Request) {
	if UserFrom(r.Context()).Role != domain.RoleAdmin {
		writeDetail(w, http.StatusForbidden, "Only admins can update user roles")
		return
	}

	role := r.URL.Query().Get("role")
	if role == "" {
		var req roleUpdateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err == nil {
			role = req.Role
		}
	}

	if err := h.users.UpdateRole(r.Context(), r.PathValue("id"), domain.Role(role)); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "User role updated successfully"})
}
