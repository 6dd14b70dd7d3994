package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/cholo-abroad/crm-api/internal/middleware"
	"github.com/cholo-abroad/crm-api/internal/models"
	"github.com/cholo-abroad/crm-api/internal/repository"
	"github.com/cholo-abroad/crm-api/internal/service"
)

// Handlers bundles every HTTP handler for route registration.
type Handlers struct {
	Auth       *AuthHandler
	Leads      *LeadHandler
	Enrollment *EnrollmentHandler
	Students   *StudentHandler
	Settings   *SettingsHandler
	Dashboard  *DashboardHandler
}

// RegisterRoutes mounts the API under prefix. Everything except the auth
// endpoints requires a valid access token; destructive and configuration
// endpoints additionally require the admin role.
func RegisterRoutes(r *gin.Engine, prefix string, h Handlers, authSvc *service.AuthService, users *repository.UserRepository) {
	api := r.Group(prefix)

	auth := api.Group("/auth")
	{
		auth.POST("/login", h.Auth.Login)
		auth.POST("/refresh", h.Auth.Refresh)
		auth.POST("/forgot-password", h.Auth.ForgotPassword)
		auth.POST("/reset-password", h.Auth.ResetPassword)
		auth.POST("/logout", middleware.JWT(authSvc), h.Auth.Logout)
		auth.GET("/me", middleware.JWT(authSvc), h.Auth.Me)
		auth.POST("/register",
			middleware.JWT(authSvc),
			middleware.RequireRoles(models.RoleAdmin),
			h.Auth.Register)
	}

	protected := api.Group("")
	protected.Use(middleware.JWT(authSvc))
	adminOnly := middleware.RequireRoles(models.RoleAdmin)

	leads := protected.Group("/leads")
	{
		leads.GET("", h.Leads.List)
		leads.POST("", h.Leads.Create)
		leads.GET("/:id", h.Leads.Get)
		leads.PATCH("/:id/status", h.Leads.UpdateStatus)
		leads.DELETE("/:id", h.Leads.Delete)
		leads.POST("/:id/convert",
			middleware.Audit(users, models.AuditActionLeadConvert, "lead"),
			h.Enrollment.Convert)
	}

	protected.POST("/conversions/retry", adminOnly, h.Enrollment.RetryPending)

	students := protected.Group("/students")
	{
		students.GET("", h.Students.List)
		students.GET("/export/csv", h.Students.ExportCSV)
		students.GET("/:id", h.Students.Get)
		students.PUT("/:id", h.Students.Update)
		students.DELETE("/:id", adminOnly,
			middleware.Audit(users, models.AuditActionStudentDelete, "student"),
			h.Students.Delete)
		students.PATCH("/:id/timeline/toggle", h.Students.ToggleStage)
		students.GET("/:id/balance", h.Students.Balance)
		students.POST("/:id/transactions", h.Students.AddTransaction)
		students.POST("/:id/applications", h.Students.AddApplication)
		students.PATCH("/:id/applications/:appId/status", h.Students.UpdateApplicationStatus)
		students.POST("/:id/notes", h.Students.AddNote)
		students.DELETE("/:id/notes/:noteId", h.Students.DeleteNote)
		students.GET("/:id/export/pdf", h.Students.ExportPDF)
		students.POST("/:id/export/share", h.Students.ShareCaseFile)
	}

	// Shared export downloads authenticate through the signed token alone.
	api.GET("/exports/:token", h.Students.DownloadShared)

	settings := protected.Group("/settings")
	{
		settings.GET("", h.Settings.Get)
		settings.PUT("/branding", adminOnly,
			middleware.Audit(users, models.AuditActionSettingsUpdate, "settings"),
			h.Settings.UpdateBranding)
		settings.PUT("/lists/:key", adminOnly,
			middleware.Audit(users, models.AuditActionSettingsUpdate, "settings"),
			h.Settings.UpdateList)
	}

	dashboard := protected.Group("/dashboard")
	{
		dashboard.GET("", h.Dashboard.Overview)
		dashboard.GET("/system", h.Dashboard.SystemMetrics)
	}
}
