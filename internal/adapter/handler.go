package adapter

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/avangard-team/auth-service/internal/entity"
	"github.com/avangard-team/auth-service/internal/middleware"
	"github.com/avangard-team/auth-service/internal/repository"
	"github.com/avangard-team/auth-service/internal/usecase"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

const sessionCookieMaxAge = 24 * 60 * 60 // 24 hours, matches the token TTL

type UserHandler struct {
	usecase  *usecase.UserUsecase
	validate *validator.Validate
	logger   *zap.Logger
}

func NewUserHandler(ucase *usecase.UserUsecase, logger *zap.Logger) *UserHandler {
	return &UserHandler{
		usecase:  ucase,
		validate: validator.New(),
		logger:   logger.Named("UserHTTPHandler"),
	}
}

// userResponse is the outward shape of a user. It never carries the password
// hash.
type userResponse struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Email      string    `json:"email,omitempty"`
	Role       string    `json:"role"`
	IsVerified bool      `json:"isVerified"`
	CreatedAt  time.Time `json:"createdAt,omitempty"`
	UpdatedAt  time.Time `json:"updatedAt,omitempty"`
}

func toUserResponse(u *entity.User) userResponse {
	return userResponse{
		ID:         u.ID.Hex(),
		Name:       u.Name,
		Email:      u.Email,
		Role:       u.Role,
		IsVerified: u.IsVerified,
		CreatedAt:  u.CreatedAt,
		UpdatedAt:  u.UpdatedAt,
	}
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

func respondError(w http.ResponseWriter, status int, message string, err error) {
	body := map[string]interface{}{
		"success": false,
		"message": message,
	}
	if err != nil {
		body["error"] = err.Error()
	}
	respondJSON(w, status, body)
}

type registerRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Register handles POST /api/v1/user/register.
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Error("Failed to decode request body for Register", zap.Error(err))
		respondError(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	if err := h.validate.Struct(req); err != nil {
		h.logger.Warn("Missing required fields for Register", zap.String("email", req.Email))
		respondError(w, http.StatusBadRequest, "All fields are required.", nil)
		return
	}
	h.logger.Info("Register request received", zap.String("email", req.Email))

	if err := h.usecase.Register(r.Context(), req.Name, req.Email, req.Password); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			respondError(w, http.StatusBadRequest, "User already exists.", nil)
			return
		}
		h.logger.Error("Failed to register user", zap.String("email", req.Email), zap.Error(err))
		respondError(w, http.StatusBadRequest, "User not registered successfully", err)
		return
	}

	respondJSON(w, http.StatusCreated, map[string]interface{}{
		"success": true,
		"message": "User registered successfully. Please check your email to verify your account.",
	})
}

// Verify handles GET /api/v1/user/verify/{token}.
func (h *UserHandler) Verify(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")
	if token == "" {
		respondError(w, http.StatusBadRequest, "Invalid Token", nil)
		return
	}

	if err := h.usecase.Verify(r.Context(), token); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			respondError(w, http.StatusBadRequest, "User not found", nil)
			return
		}
		h.logger.Error("Failed to verify user", zap.Error(err))
		respondError(w, http.StatusBadRequest, "User not verified successfully", err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"message": "User verified successfully",
	})
}

type loginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// Login handles POST /api/v1/user/login. On success the session token is both
// set as an HTTP-only cookie and returned in the body.
func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Error("Failed to decode request body for Login", zap.Error(err))
		respondError(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	if err := h.validate.Struct(req); err != nil {
		respondError(w, http.StatusBadRequest, "Email and password are required.", nil)
		return
	}

	token, user, err := h.usecase.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			respondError(w, http.StatusBadRequest, "User not found", nil)
			return
		}
		if errors.Is(err, usecase.ErrInvalidCredentials) {
			respondError(w, http.StatusBadRequest, "Invalid credentials", nil)
			return
		}
		h.logger.Error("Failed to login user", zap.String("email", req.Email), zap.Error(err))
		respondError(w, http.StatusBadRequest, "An error occurred during login", err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   true,
		MaxAge:   sessionCookieMaxAge,
	})

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Login successful",
		"token":   token,
		"user": map[string]interface{}{
			"id":   user.ID.Hex(),
			"name": user.Name,
			"role": user.Role,
		},
	})
}

// Me handles GET /api/v1/user/me. The identity comes from the session guard.
func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value(middleware.UserIDCtxKey).(string)
	if !ok || userID == "" {
		h.logger.Warn("User ID not found in token for Me")
		respondError(w, http.StatusUnauthorized, "Authentication failed", nil)
		return
	}

	user, err := h.usecase.CurrentUser(r.Context(), userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			respondError(w, http.StatusBadRequest, "User not found", nil)
			return
		}
		h.logger.Error("Failed to get current user", zap.String("userID", userID), zap.Error(err))
		respondError(w, http.StatusInternalServerError, "Server error", err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"user":    toUserResponse(user),
	})
}

// Logout handles POST /api/v1/user/logout. Stateless: the cookie is cleared
// but the token itself stays cryptographically valid until it expires.
func (h *UserHandler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   true,
		MaxAge:   -1,
	})

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Logged out successfully",
	})
}

type forgotPasswordRequest struct {
	Email string `json:"email" validate:"required"`
}

// ForgotPassword handles POST /api/v1/user/forgot-password.
func (h *UserHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req forgotPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Error("Failed to decode request body for ForgotPassword", zap.Error(err))
		respondError(w, http.StatusBadRequest, "Email is required", nil)
		return
	}

	if err := h.validate.Struct(req); err != nil {
		respondError(w, http.StatusBadRequest, "Email is required", nil)
		return
	}

	if err := h.usecase.ForgotPassword(r.Context(), req.Email); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			respondError(w, http.StatusNotFound, "User with this email does not exist", nil)
			return
		}
		h.logger.Error("Failed to initiate password reset", zap.String("email", req.Email), zap.Error(err))
		respondError(w, http.StatusInternalServerError, "Error while initiating password reset", err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Password reset email sent",
	})
}

type resetPasswordRequest struct {
	Password     string `json:"password"`
	ConfPassword string `json:"confPassword"`
}

// ResetPassword handles POST /api/v1/user/reset-password/{token}.
func (h *UserHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")

	var req resetPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Error("Failed to decode request body for ResetPassword", zap.Error(err))
		respondError(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	if err := h.usecase.ResetPassword(r.Context(), token, req.Password, req.ConfPassword); err != nil {
		if errors.Is(err, usecase.ErrPasswordMismatch) {
			respondError(w, http.StatusBadRequest, "Passwords do not match", nil)
			return
		}
		if errors.Is(err, usecase.ErrInvalidOrExpiredToken) {
			respondError(w, http.StatusBadRequest, "Invalid or expired reset token", nil)
			return
		}
		h.logger.Error("Failed to reset password", zap.Error(err))
		respondError(w, http.StatusBadRequest, "Error during password reset", err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Password reset successfully",
	})
}

type changePasswordRequest struct {
	OldPassword string `json:"oldPassword" validate:"required"`
	NewPassword string `json:"newPassword" validate:"required"`
}

// ChangePassword handles POST /api/v1/user/change-password (authenticated).
func (h *UserHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value(middleware.UserIDCtxKey).(string)
	if !ok || userID == "" {
		h.logger.Warn("User ID not found in token for ChangePassword")
		respondError(w, http.StatusUnauthorized, "Authentication failed", nil)
		return
	}

	var req changePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		respondError(w, http.StatusBadRequest, "Old and new passwords are required.", nil)
		return
	}

	if err := h.usecase.ChangePassword(r.Context(), userID, req.OldPassword, req.NewPassword); err != nil {
		if errors.Is(err, usecase.ErrInvalidCredentials) {
			respondError(w, http.StatusBadRequest, "Invalid credentials", nil)
			return
		}
		if errors.Is(err, repository.ErrUserNotFound) {
			respondError(w, http.StatusBadRequest, "User not found", nil)
			return
		}
		h.logger.Error("Failed to change password", zap.String("userID", userID), zap.Error(err))
		respondError(w, http.StatusInternalServerError, "Failed to change password", err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Password changed successfully",
	})
}

// AdminListUsers handles GET /api/v1/admin/users (authenticated, admin only).
func (h *UserHandler) AdminListUsers(w http.ResponseWriter, r *http.Request) {
	role, _ := r.Context().Value(middleware.UserRoleCtxKey).(string)

	skip, _ := strconv.ParseInt(r.URL.Query().Get("skip"), 10, 64)
	limit, err := strconv.ParseInt(r.URL.Query().Get("limit"), 10, 64)
	if err != nil || limit <= 0 {
		limit = 50
	}

	users, err := h.usecase.AdminListUsers(r.Context(), role, skip, limit)
	if err != nil {
		if errors.Is(err, usecase.ErrUnauthorized) {
			respondError(w, http.StatusForbidden, "Admin role required", nil)
			return
		}
		h.logger.Error("Failed to list users", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "Failed to list users", err)
		return
	}

	out := make([]userResponse, 0, len(users))
	for _, u := range users {
		out = append(out, toUserResponse(u))
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"users":   out,
	})
}
