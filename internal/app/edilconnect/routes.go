// Package edilconnect wires every route of the API.
package edilconnect

import (
	"log/slog"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/edilconnect/platform/internal/config"
	"github.com/edilconnect/platform/internal/http/handlers/auth/changepassword"
	"github.com/edilconnect/platform/internal/http/handlers/auth/login"
	"github.com/edilconnect/platform/internal/http/handlers/auth/logout"
	"github.com/edilconnect/platform/internal/http/handlers/auth/refresh"
	"github.com/edilconnect/platform/internal/http/handlers/auth/register"
	"github.com/edilconnect/platform/internal/http/handlers/auth/resendverification"
	"github.com/edilconnect/platform/internal/http/handlers/auth/verifyemail"
	doclist "github.com/edilconnect/platform/internal/http/handlers/document/list"
	docdelete "github.com/edilconnect/platform/internal/http/handlers/document/remove"
	projdocupload "github.com/edilconnect/platform/internal/http/handlers/document/upload"
	"github.com/edilconnect/platform/internal/http/handlers/project/addcollaborator"
	"github.com/edilconnect/platform/internal/http/handlers/project/addtask"
	"github.com/edilconnect/platform/internal/http/handlers/project/create"
	"github.com/edilconnect/platform/internal/http/handlers/project/list"
	"github.com/edilconnect/platform/internal/http/handlers/project/read"
	"github.com/edilconnect/platform/internal/http/handlers/project/remove"
	"github.com/edilconnect/platform/internal/http/handlers/project/update"
	"github.com/edilconnect/platform/internal/http/handlers/subscription/cancel"
	"github.com/edilconnect/platform/internal/http/handlers/subscription/checkout"
	"github.com/edilconnect/platform/internal/http/handlers/subscription/payments"
	"github.com/edilconnect/platform/internal/http/handlers/subscription/plans"
	substatus "github.com/edilconnect/platform/internal/http/handlers/subscription/status"
	"github.com/edilconnect/platform/internal/http/handlers/subscription/webhook"
	"github.com/edilconnect/platform/internal/http/handlers/user/profile"
	"github.com/edilconnect/platform/internal/http/handlers/user/profileupdate"
	"github.com/edilconnect/platform/internal/http/handlers/verification/admindocremove"
	"github.com/edilconnect/platform/internal/http/handlers/verification/detail"
	"github.com/edilconnect/platform/internal/http/handlers/verification/docremove"
	"github.com/edilconnect/platform/internal/http/handlers/verification/docreview"
	"github.com/edilconnect/platform/internal/http/handlers/verification/docupload"
	"github.com/edilconnect/platform/internal/http/handlers/verification/pending"
	"github.com/edilconnect/platform/internal/http/handlers/verification/reject"
	verifstatus "github.com/edilconnect/platform/internal/http/handlers/verification/status"
	"github.com/edilconnect/platform/internal/http/middlewarectx"
	authservice "github.com/edilconnect/platform/internal/services/auth"
	projectservice "github.com/edilconnect/platform/internal/services/project"
	subservice "github.com/edilconnect/platform/internal/services/subscription"
	verifservice "github.com/edilconnect/platform/internal/services/verification"
)

// RegisterRoutes registers every route of the application.
func RegisterRoutes(r chi.Router, logger *slog.Logger, cfg *config.Config,
	authService *authservice.AuthService,
	verificationService *verifservice.VerificationService,
	subscriptionService *subservice.SubscriptionService,
	projectService *projectservice.ProjectService) {
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
		middleware.URLFormat,
	)

	r.Route("/api/v1", func(r chi.Router) {
		// open endpoints
		r.Post("/auth/register", register.New(logger, authService).ServeHTTP)
		r.Post("/auth/login", login.New(logger, authService).ServeHTTP)
		r.Post("/auth/refresh", refresh.New(logger, authService).ServeHTTP)
		r.Get("/auth/verify-email", verifyemail.New(logger, authService).ServeHTTP)
		r.Post("/auth/resend-verification", resendverification.New(logger, authService).ServeHTTP)
		r.Get("/subscription/plans", plans.New(logger, subscriptionService).ServeHTTP)

		// signed provider callbacks, no bearer auth
		r.Post("/billing/webhook", webhook.New(logger, subscriptionService, cfg.Billing.WebhookSecret).ServeHTTP)

		// authenticated endpoints
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.AuthMiddleware(authService, logger))
			r.Use(middlewarectx.RateLimitMiddleware(logger))

			r.Post("/auth/logout", logout.New(logger, authService).ServeHTTP)
			r.Get("/users/me", profile.New(logger, authService).ServeHTTP)
			r.Patch("/users/me", profileupdate.New(logger, authService).ServeHTTP)
			r.Put("/users/me/password", changepassword.New(logger, authService).ServeHTTP)

			r.Get("/verification", verifstatus.New(logger, verificationService).ServeHTTP)
			r.Post("/verification/documents/{type}", docupload.New(logger, verificationService,
				cfg.Upload.MaxSizeBytes, cfg.Upload.AllowedMimeTypes).ServeHTTP)
			r.Delete("/verification/documents/{type}", docremove.New(logger, verificationService).ServeHTTP)

			r.Post("/subscription/checkout", checkout.New(logger, subscriptionService).ServeHTTP)
			r.Get("/subscription/status", substatus.New(logger, subscriptionService).ServeHTTP)
			r.Get("/subscription/payments", payments.New(logger, subscriptionService).ServeHTTP)
			r.Delete("/subscription", cancel.New(logger, subscriptionService).ServeHTTP)

			r.Post("/projects", create.New(logger, projectService).ServeHTTP)
			r.Get("/projects", list.New(logger, projectService).ServeHTTP)
			r.Get("/projects/{id}", read.New(logger, projectService).ServeHTTP)
			r.Put("/projects/{id}", update.New(logger, projectService).ServeHTTP)
			r.Delete("/projects/{id}", remove.New(logger, projectService).ServeHTTP)
			r.Post("/projects/{id}/tasks", addtask.New(logger, projectService).ServeHTTP)
			r.Post("/projects/{id}/collaborators", addcollaborator.New(logger, projectService).ServeHTTP)
			r.Post("/projects/{id}/documents", projdocupload.New(logger, projectService,
				cfg.Upload.MaxSizeBytes, cfg.Upload.AllowedMimeTypes).ServeHTTP)
			r.Get("/projects/{id}/documents", doclist.New(logger, projectService).ServeHTTP)
			r.Delete("/documents/{id}", docdelete.New(logger, projectService).ServeHTTP)

			// admin-only endpoints
			r.Group(func(r chi.Router) {
				r.Use(middlewarectx.AdminMiddleware(logger))
				r.Get("/admin/verification", pending.New(logger, verificationService).ServeHTTP)
				r.Get("/admin/verification/{uid}", detail.New(logger, verificationService).ServeHTTP)
				r.Put("/admin/verification/{uid}/documents/{type}", docreview.New(logger, verificationService).ServeHTTP)
				r.Delete("/admin/verification/{uid}/documents/{type}", admindocremove.New(logger, verificationService).ServeHTTP)
				r.Post("/admin/verification/{uid}/reject", reject.New(logger, verificationService).ServeHTTP)
			})
		})
	})

	r.Handle("/metrics", promhttp.Handler())
	r.Get("/docs/*", httpSwagger.WrapHandler)
}
