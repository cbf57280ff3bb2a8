package routes

import (
	"service-request-api/controllers"
	"service-request-api/middleware"
	"service-request-api/models"

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

			// Health check
			public.GET("/health", func(c *gin.Context) {
				c.JSON(200, gin.H{
					"status":  "ok",
					"message": "Service Request API is running",
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

			// Service requests
			requests := protected.Group("/requests")
			{
				requests.GET("", controllers.GetRequests)
				requests.GET("/:id", controllers.GetRequest)
				requests.POST("", controllers.CreateRequest)

				// Only staff/admin can approve/reject
				requests.POST("/:id/approve", middleware.RequireRole(models.RoleStaff, models.RoleAdmin), controllers.ApproveRequest)
				requests.POST("/:id/reject", middleware.RequireRole(models.RoleStaff, models.RoleAdmin), controllers.RejectRequest)
			}

			// Attachments
			protected.GET("/attachments/:attachment_id/download", controllers.DownloadAttachment)

			// Notifications
			notifications := protected.Group("/notifications")
			{
				notifications.GET("", controllers.GetNotifications)
				notifications.GET("/counter", controllers.GetNotificationCounter)
			}

			// Notification preferences
			preferences := protected.Group("/preferences")
			{
				preferences.GET("/channels", controllers.GetChannelPreferences)
				preferences.PUT("/channels", controllers.UpdateChannelPreference)
				preferences.GET("/categories", controllers.GetNotificationCategories)
				preferences.PUT("/categories/:category_id", controllers.UpdateCategorySubscription)
			}

			// Scheduled events
			events := protected.Group("/events")
			{
				events.GET("", controllers.GetEvents)
				events.POST("", middleware.RequireRole(models.RoleStaff, models.RoleAdmin), controllers.CreateEvent)
			}

			// Member administration
			members := protected.Group("/members")
			members.Use(middleware.RequireRole(models.RoleAdmin))
			{
				members.GET("/pending", controllers.GetPendingMembers)
				members.POST("/:id/approve", controllers.ApproveMember)
			}
		}
	}
}
