package handlers

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/bookhaven/backend/middleware"
	"github.com/bookhaven/backend/models"
	"github.com/bookhaven/backend/store"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"
)

// UsersHandler serves admin user management; routing puts it behind
// RequireAdmin.
type UsersHandler struct {
	DB *store.DB
}

type CreateUserRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
	Name     string `json:"name"`
}

type UserResponse struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	Role      string `json:"role"`
	Name      string `json:"name,omitempty"`
	CreatedAt string `json:"createdAt"`
}

type UpdateUserRequest struct {
	Email    *string `json:"email"`
	Password *string `json:"password"`
	Role     *string `json:"role"`
}

func roleValid(role string) bool {
	for _, r := range models.ValidRoles {
		if r == role {
			return true
		}
	}
	return false
}

// CreateUser creates a new user. Role must be user or admin; super_admin
// cannot be granted via the API.
func (h *UsersHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req CreateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid json"}`, http.StatusBadRequest)
		return
	}
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	if req.Email == "" || req.Password == "" {
		http.Error(w, `{"error":"email and password required"}`, http.StatusBadRequest)
		return
	}
	role := strings.TrimSpace(strings.ToLower(req.Role))
	if role == "" {
		role = models.RoleUser
	}
	if role == models.RoleSuperAdmin {
		http.Error(w, `{"error":"cannot create super_admin user via API"}`, http.StatusBadRequest)
		return
	}
	if !roleValid(role) {
		http.Error(w, `{"error":"invalid role; use user or admin"}`, http.StatusBadRequest)
		return
	}
	existing, err := h.DB.UserByEmail(r.Context(), req.Email)
	if err != nil {
		http.Error(w, `{"error":"failed to create user"}`, http.StatusInternalServerError)
		return
	}
	if existing != nil {
		http.Error(w, `{"error":"email already in use"}`, http.StatusConflict)
		return
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		http.Error(w, `{"error":"failed to create user"}`, http.StatusInternalServerError)
		return
	}
	user := &models.User{
		Email:     req.Email,
		Password:  string(hash),
		Role:      role,
		Name:      strings.TrimSpace(req.Name),
		CreatedAt: time.Now(),
	}
	id, err := h.DB.CreateUser(r.Context(), user)
	if err != nil {
		http.Error(w, `{"error":"failed to create user"}`, http.StatusInternalServerError)
		return
	}
	user.ID = id
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(userToResponse(user))
}

func userToResponse(u *models.User) UserResponse {
	return UserResponse{
		ID:        u.ID.Hex(),
		Email:     u.Email,
		Role:      u.Role,
		Name:      u.Name,
		CreatedAt: u.CreatedAt.Format(time.RFC3339),
	}
}

// ListUsers returns one page of users. Password is omitted via json:"-".
func (h *UsersHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	p := ParsePagination(r.URL.Query())
	users, total, err := h.DB.ListUsers(r.Context(), p.Page, p.Limit)
	if err != nil {
		http.Error(w, `{"error":"failed to list users"}`, http.StatusInternalServerError)
		return
	}
	out := make([]UserResponse, 0, len(users))
	for i := range users {
		out = append(out, userToResponse(&users[i]))
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(PageResponse{Data: out, Total: total, Page: p.Page, Limit: p.Limit})
}

// UpdateUser updates a user by ID. Body: { "email"?, "password"?, "role"? }
func (h *UsersHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, `{"error":"invalid user id"}`, http.StatusBadRequest)
		return
	}
	var req UpdateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid json"}`, http.StatusBadRequest)
		return
	}
	user, err := h.DB.UserByID(r.Context(), id)
	if err != nil || user == nil {
		http.Error(w, `{"error":"user not found"}`, http.StatusNotFound)
		return
	}
	var newEmail *string
	if req.Email != nil {
		e := strings.TrimSpace(strings.ToLower(*req.Email))
		if e == "" {
			http.Error(w, `{"error":"email cannot be empty"}`, http.StatusBadRequest)
			return
		}
		existing, _ := h.DB.UserByEmail(r.Context(), e)
		if existing != nil && existing.ID != id {
			http.Error(w, `{"error":"email already in use"}`, http.StatusConflict)
			return
		}
		newEmail = &e
	}
	var newHash *string
	if req.Password != nil && *req.Password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(*req.Password), bcrypt.DefaultCost)
		if err != nil {
			http.Error(w, `{"error":"failed to update user"}`, http.StatusInternalServerError)
			return
		}
		s := string(hash)
		newHash = &s
	}
	var newRole *string
	if req.Role != nil {
		role := strings.TrimSpace(strings.ToLower(*req.Role))
		if !roleValid(role) {
			http.Error(w, `{"error":"invalid role"}`, http.StatusBadRequest)
			return
		}
		// Demoting the last super_admin would lock the admin surface.
		if user.Role == models.RoleSuperAdmin && role != models.RoleSuperAdmin {
			count, err := h.DB.SuperAdminsCount(r.Context())
			if err != nil {
				http.Error(w, `{"error":"failed to update user"}`, http.StatusInternalServerError)
				return
			}
			if count <= 1 {
				http.Error(w, `{"error":"cannot demote the last super_admin"}`, http.StatusBadRequest)
				return
			}
		}
		newRole = &role
	}
	if err := h.DB.UpdateUser(r.Context(), id, newEmail, newHash, newRole); err != nil {
		http.Error(w, `{"error":"failed to update user"}`, http.StatusInternalServerError)
		return
	}
	user, _ = h.DB.UserByID(r.Context(), id)
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(userToResponse(user))
}

// DeleteUser deletes a user by ID. Prevents deleting self and the last
// super_admin.
func (h *UsersHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, `{"error":"invalid user id"}`, http.StatusBadRequest)
		return
	}
	current := middleware.IdentityFromContext(r.Context())
	if current == nil {
		http.Error(w, `{"error":"unauthorized"}`, http.StatusUnauthorized)
		return
	}
	if current.ID == id {
		http.Error(w, `{"error":"cannot delete your own account"}`, http.StatusBadRequest)
		return
	}
	user, err := h.DB.UserByID(r.Context(), id)
	if err != nil || user == nil {
		http.Error(w, `{"error":"user not found"}`, http.StatusNotFound)
		return
	}
	if user.Role == models.RoleSuperAdmin {
		count, err := h.DB.SuperAdminsCount(r.Context())
		if err != nil {
			http.Error(w, `{"error":"failed to delete user"}`, http.StatusInternalServerError)
			return
		}
		if count <= 1 {
			http.Error(w, `{"error":"cannot delete the last super_admin"}`, http.StatusBadRequest)
			return
		}
	}
	if err := h.DB.DeleteUser(r.Context(), id); err != nil {
		http.Error(w, `{"error":"failed to delete user"}`, http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
