package routes

import (
	"audition-management-api/controllers"
	"audition-management-api/middleware"
	"audition-management-api/models"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(router *gin.Engine) {
	// API v1 group
	v1 := router.Group("/api/v1")
	{
		// Public routes
		public := v1.Group("")
		{
			// Authentication
			public.POST("/login", controllers.Login)
			public.POST("/register", controllers.Register)

			// Health check
			public.GET("/health", func(c *gin.Context) {
				c.JSON(200, gin.H{
					"status":  "ok",
					"message": "Audition Management API is running",
				})
			})
		}

		// Protected routes (require authentication)
		protected := v1.Group("")
		protected.Use(middleware.AuthMiddleware())
		{
			// User profile
			protected.GET("/profile", controllers.GetProfile)
			protected.PUT("/change-password", controllers.ChangePassword)
			protected.POST("/logout", controllers.Logout)

			// Capability gate source of truth
			protected.GET("/capabilities", controllers.GetCapabilities)

			// Application status catalog
			protected.GET("/application-statuses", controllers.GetApplicationStatuses)

			// Coalitions
			coalitions := protected.Group("/coalitions")
			{
				coalitions.GET("", controllers.GetCoalitions)
				coalitions.POST("", middleware.RequireRole(models.RoleSuperAdmin), controllers.CreateCoalition)
				coalitions.PUT("/:id", middleware.RequireRole(models.RoleSuperAdmin), controllers.UpdateCoalition)
				coalitions.DELETE("/:id", middleware.RequireRole(models.RoleSuperAdmin), controllers.DeleteCoalition)
				coalitions.POST("/:id/admins", middleware.RequireRole(models.RoleSuperAdmin), controllers.AssignCoalitionAdmin)
			}

			// Organizations
			orgs := protected.Group("/organizations")
			{
				orgs.GET("", controllers.GetOrganizations)
				orgs.GET("/:id", controllers.GetOrganization)
				orgs.POST("", middleware.RequireRole(models.RoleSuperAdmin), controllers.CreateOrganization)
				orgs.PUT("/:id", middleware.RequireRole(models.RoleOrgAdmin, models.RoleSuperAdmin), controllers.UpdateOrganization)
				orgs.DELETE("/:id", middleware.RequireRole(models.RoleSuperAdmin), controllers.DeleteOrganization)
				orgs.POST("/:id/admins", middleware.RequireRole(models.RoleOrgAdmin, models.RoleSuperAdmin), controllers.AssignOrgAdmin)
			}

			// Programs and form schemas
			programs := protected.Group("/programs")
			{
				programs.GET("", controllers.GetPrograms)
				programs.GET("/mine", middleware.RequireRole(models.RoleReviewer), controllers.GetMyReviewerPrograms)
				programs.GET("/:id", controllers.GetProgram)
				programs.GET("/:id/schema", controllers.GetProgramSchema)

				admin := programs.Group("", middleware.RequireRole(models.RoleOrgAdmin, models.RoleSuperAdmin))
				{
					admin.POST("", controllers.CreateProgram)
					admin.PUT("/:id", controllers.UpdateProgram)
					admin.DELETE("/:id", controllers.DeleteProgram)
					admin.GET("/:id/reviewers", controllers.GetProgramReviewers)
					admin.POST("/:id/reviewers", controllers.AssignProgramReviewer)
					admin.DELETE("/:id/reviewers/:user_id", controllers.RemoveProgramReviewer)
					admin.POST("/:id/fields", controllers.CreateFormField)
					admin.PUT("/:id/fields/:field_id", controllers.UpdateFormField)
					admin.DELETE("/:id/fields/:field_id", controllers.DeleteFormField)
					admin.GET("/:id/applications", controllers.GetProgramApplications)
					admin.GET("/:id/stats", controllers.GetProgramStats)
				}
			}

			// Applications (applicant side)
			applications := protected.Group("/applications")
			{
				applications.GET("", controllers.GetApplications)
				applications.GET("/:id", controllers.GetApplication)
				applications.GET("/:id/history", controllers.GetApplicationHistory)
				applications.POST("", middleware.RequireRole(models.RoleApplicant), controllers.CreateApplication)
				applications.PUT("/:id/answers", middleware.RequireRole(models.RoleApplicant), controllers.SaveAnswers)
				applications.POST("/:id/submit", middleware.RequireRole(models.RoleApplicant), controllers.SubmitApplication)

				// Admin status decisions
				decide := applications.Group("", middleware.RequireRole(models.RoleOrgAdmin, models.RoleSuperAdmin))
				{
					decide.POST("/:id/begin-review", controllers.BeginReview)
					decide.POST("/:id/accept", controllers.AcceptApplication)
					decide.POST("/:id/reject", controllers.RejectApplication)
					decide.POST("/:id/waitlist", controllers.WaitlistApplication)
				}
			}

			// Collaborative review core
			reviews := protected.Group("/reviews", middleware.RequireRole(models.RoleReviewer))
			{
				reviews.GET("/queue/:id", controllers.GetReviewQueue)
				reviews.GET("/:id/bundle", controllers.GetReviewBundle)
				reviews.PUT("/:id", controllers.UpsertReview)
				reviews.POST("/:id/edits", controllers.EditReview)
				reviews.POST("/:id/submit", controllers.SubmitReview)
				reviews.POST("/:id/unlock", controllers.UnlockReview)
				reviews.GET("/:id/session", controllers.GetReviewSessionState)
				reviews.DELETE("/:id/session", controllers.ReleaseReviewSession)
				reviews.GET("/:id/events", controllers.StreamReviewEvents)
				reviews.GET("/:id/draft", controllers.GetReviewDraft)
				reviews.PUT("/:id/draft", controllers.SaveReviewDraft)
				reviews.DELETE("/:id/draft", controllers.ClearReviewDraft)
			}

			// Documents
			documents := protected.Group("/documents")
			{
				documents.POST("/upload", controllers.UploadDocument)
				documents.GET("/download/:file_id", controllers.DownloadDocument)
			}

			// Notifications
			notifications := protected.Group("/notifications")
			{
				notifications.GET("", controllers.GetNotifications)
				notifications.PUT("/:id/read", controllers.MarkNotificationRead)
				notifications.PUT("/read-all", controllers.MarkAllNotificationsRead)
			}

			// User management
			users := protected.Group("/users", middleware.RequireRole(models.RoleSuperAdmin))
			{
				users.GET("", controllers.GetUsers)
				users.POST("", controllers.CreateUser)
				users.DELETE("/:id", controllers.DeleteUser)
			}
		}

	}

	// 404 catch-all
	router.NoRoute(func(c *gin.Context) {
		c.JSON(404, gin.H{"error": "Endpoint not found"})
	})
}
