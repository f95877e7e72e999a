package rest

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/frahmantamala/hr-attendance/internal/application"
	"github.com/frahmantamala/hr-attendance/internal/attendance"
	"github.com/frahmantamala/hr-attendance/internal/auth"
	"github.com/frahmantamala/hr-attendance/internal/notification"
	"github.com/frahmantamala/hr-attendance/internal/organization"
	"github.com/frahmantamala/hr-attendance/internal/transport/middleware"
	"github.com/frahmantamala/hr-attendance/internal/transport/swagger"
	"github.com/frahmantamala/hr-attendance/internal/user"
	"github.com/go-chi/chi"
)

type Handlers struct {
	Auth         *auth.Handler
	User         *user.Handler
	Organization *organization.Handler
	Application  *application.Handler
	Attendance   *attendance.Handler
	Notification *notification.Handler
}

func RegisterAllRoutes(router *chi.Mux, db *sql.DB, handlers Handlers, authz *auth.Authorization, logger *slog.Logger) {
	healthHandler := NewHealthHandler(db)

	router.Use(middleware.CORS)
	router.Use(middleware.RequestID)
	router.Use(middleware.RecoveryMiddleware(logger))
	router.Use(middleware.LoggingMiddleware(logger))

	// OpenAPI spec and swagger UI live outside the API prefix
	router.Get("/openapi.yml", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, "./api/openapi.yml")
	})
	router.Handle("/swagger/*", swagger.Handler())

	router.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", healthHandler.healthCheckHandler)
		r.Get("/ping", healthHandler.pingHandler)

		// Unauthenticated: login, refresh, self-signup
		r.Route("/auth", func(sr chi.Router) {
			sr.Post("/login", handlers.Auth.Login)
			sr.Post("/refresh", handlers.Auth.RefreshToken)
			sr.Post("/logout", handlers.Auth.Logout)
		})
		r.Post("/signup", handlers.User.Signup)

		// Everything below requires a valid access token
		r.Group(func(pr chi.Router) {
			pr.Use(handlers.Auth.AuthMiddleware)

			pr.Get("/users/me", handlers.User.GetCurrentUser)
			pr.Post("/users/me/password", handlers.Auth.ChangePassword)

			// HR-only user administration
			pr.Group(func(hr chi.Router) {
				hr.Use(authz.RequireRole(auth.RoleHr))
				hr.Get("/users", handlers.User.ListUsers)
				hr.Post("/users", handlers.User.CreateUser)
				hr.Get("/users/{id}", handlers.User.GetUser)
				hr.Patch("/users/{id}", handlers.User.UpdateUser)
				hr.Delete("/users/{id}", handlers.User.DeleteUser)
				hr.Post("/users/{id}/approve", handlers.User.ApproveUser)

				hr.Get("/departments", handlers.Organization.ListDepartments)
				hr.Post("/departments", handlers.Organization.CreateDepartment)
				hr.Get("/departments/{id}", handlers.Organization.GetDepartment)
				hr.Patch("/departments/{id}", handlers.Organization.UpdateDepartment)
				hr.Delete("/departments/{id}", handlers.Organization.DeleteDepartment)

				hr.Get("/teams", handlers.Organization.ListTeams)
				hr.Post("/teams", handlers.Organization.CreateTeam)
				hr.Get("/teams/{id}", handlers.Organization.GetTeam)
				hr.Patch("/teams/{id}", handlers.Organization.UpdateTeam)
				hr.Delete("/teams/{id}", handlers.Organization.DeleteTeam)
			})

			// Applications: own
			pr.Route("/applications", func(ar chi.Router) {
				ar.Post("/", handlers.Application.Submit)
				ar.Get("/", handlers.Application.ListMine)
				ar.Get("/{id}", handlers.Application.Get)
				ar.Patch("/{id}", handlers.Application.Update)
				ar.Delete("/{id}", handlers.Application.Delete)
			})

			// Applications: manager review
			pr.Group(func(mr chi.Router) {
				mr.Use(authz.RequireRole(auth.RoleManager))
				mr.Get("/manager/applications", handlers.Application.ListForManager)
				mr.Post("/manager/applications/{id}/approve", handlers.Application.ApproveByManager)
				mr.Post("/manager/applications/{id}/reject", handlers.Application.Reject)
				mr.Post("/manager/applications/{id}/send-back", handlers.Application.SendBack)
				mr.Get("/manager/attendance", handlers.Attendance.Roster)
			})

			// Applications and attendance: HR review
			pr.Group(func(hr chi.Router) {
				hr.Use(authz.RequireRole(auth.RoleHr))
				hr.Get("/hr/applications", handlers.Application.ListForHr)
				hr.Post("/hr/applications/{id}/approve", handlers.Application.ApproveByHr)
				hr.Post("/hr/applications/{id}/send-back", handlers.Application.SendBack)

				hr.Get("/hr/attendance", handlers.Attendance.ListAll)
				hr.Post("/hr/attendance", handlers.Attendance.CreateRecord)
				hr.Get("/hr/attendance/{id}", handlers.Attendance.Get)
				hr.Patch("/hr/attendance/{id}", handlers.Attendance.UpdateRecord)
				hr.Delete("/hr/attendance/{id}", handlers.Attendance.DeleteRecord)
				hr.Post("/hr/attendance/{id}/mark-read", handlers.Attendance.MarkRead)
				hr.Post("/hr/attendance/{id}/unmark-read", handlers.Attendance.UnmarkRead)
			})

			// Attendance dashboard
			pr.Route("/attendance", func(ar chi.Router) {
				ar.Get("/today", handlers.Attendance.Today)
				ar.Post("/clock-in", handlers.Attendance.ClockIn)
				ar.Post("/clock-out", handlers.Attendance.ClockOut)
				ar.Post("/break-start", handlers.Attendance.StartBreak)
				ar.Post("/break-end", handlers.Attendance.EndBreak)
				ar.Post("/note", handlers.Attendance.UpdateNote)
				ar.Get("/", handlers.Attendance.ListMine)
				ar.Get("/{id}", handlers.Attendance.Get)
			})

			// Notifications, recipient-scoped
			pr.Route("/notifications", func(nr chi.Router) {
				nr.Get("/", handlers.Notification.List)
				nr.Get("/unread-count", handlers.Notification.UnreadCount)
				nr.Post("/{id}/read", handlers.Notification.MarkRead)
				nr.Delete("/{id}", handlers.Notification.Delete)
			})
		})
	})
}
