package router

import (
	"github.com/avangard-team/auth-service/internal/adapter"
	"github.com/avangard-team/auth-service/internal/middleware"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// SetupUserRoutes configures all account routes.
func SetupUserRoutes(r *chi.Mux, userHandler *adapter.UserHandler, jwtSecret string, logger *zap.Logger) {
	// Public routes
	r.Post("/api/v1/user/register", userHandler.Register)
	r.Get("/api/v1/user/verify/{token}", userHandler.Verify)
	r.Post("/api/v1/user/login", userHandler.Login)
	r.Post("/api/v1/user/forgot-password", userHandler.ForgotPassword)
	r.Post("/api/v1/user/reset-password/{token}", userHandler.ResetPassword)

	// Protected routes (require a valid session cookie)
	r.Group(func(authRouter chi.Router) {
		authRouter.Use(middleware.SessionGuard([]byte(jwtSecret), logger))

		authRouter.Get("/api/v1/user/me", userHandler.Me)
		authRouter.Post("/api/v1/user/logout", userHandler.Logout)
		authRouter.Post("/api/v1/user/change-password", userHandler.ChangePassword)

		// Admin routes. The guard authenticates; the usecase checks the role claim.
		authRouter.Get("/api/v1/admin/users", userHandler.AdminListUsers)
	})
}
