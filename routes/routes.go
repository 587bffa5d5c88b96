package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/zafarani/feedback-server/controllers"
	"github.com/zafarani/feedback-server/middleware"
)

func SetupRoutes(r *gin.Engine) {
	r.GET("/health", controllers.HealthCheck)

	api := r.Group("/api/v1")
	{
		auth := api.Group("/auth")
		{
			auth.POST("/register", controllers.Register)
			auth.POST("/login", controllers.Login)
			auth.POST("/google/login", controllers.GoogleLoginHandler)
			auth.GET("/me", middleware.AuthJWT(), controllers.Me)
		}
		api.GET("/users", middleware.AuthJWT(), middleware.RequireAdmin(), controllers.GetUserByEmail)

		questions := api.Group("/questions")
		{
			questions.GET("/", controllers.ListQuestions)
			questions.GET("/:slug/", controllers.GetQuestion)
			questions.POST("/", middleware.AuthJWT(), middleware.RequireAdmin(), controllers.CreateQuestion)
			questions.PATCH("/:slug/", middleware.AuthJWT(), middleware.RequireAdmin(), controllers.UpdateQuestion)
			questions.DELETE("/:slug/", middleware.AuthJWT(), middleware.RequireAdmin(), controllers.DeleteQuestion)
		}

		feedback := api.Group("/feedback")
		{
			// public: guests submit without an account
			feedback.POST("/", middleware.RateLimitFeedbackSubmit(), controllers.CreateFeedback)
			feedback.GET("/list/", middleware.AuthJWT(), controllers.ListFeedback)
			feedback.GET("/all/", middleware.AuthJWT(), controllers.AllFeedback)
			feedback.POST("/export", middleware.AuthJWT(), middleware.RequireAdmin(), controllers.CreateExport)
		}
		api.GET("/exports/:job_id", middleware.AuthJWT(), controllers.GetExport)
		api.GET("/analytics/", middleware.AuthJWT(), controllers.Analytics)
	}
}
