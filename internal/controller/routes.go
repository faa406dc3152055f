package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"examloop-backend/internal/config"
	"examloop-backend/internal/service"
	"examloop-backend/pkg/middleware"
	"examloop-backend/utilities"
)

// RegisterRoutes registers all route groups and their endpoints.
func RegisterRoutes(r *gin.Engine,
	cfg *config.APIConfig,
	sessionService service.SessionService,
	taskService service.TaskService,
	taskQueryService service.TaskQueryService,
	flashcardService service.FlashcardService,
	questionService service.QuestionService,
	reportService service.ReportService,
) {
	registerAuthRoutes(r, cfg)

	sessionCtrl := NewSessionController(sessionService, taskService, reportService)
	taskLimiter := middleware.TaskRateLimitMiddleware(cfg.LLM.RequestsPerMin)

	sessionRoutes := r.Group("/sessions")
	{
		sessionRoutes.GET("/", sessionCtrl.GetSessions)
		sessionRoutes.POST("/", sessionCtrl.CreateSession)
		sessionRoutes.GET("/:id", sessionCtrl.GetSession)
		sessionRoutes.PUT("/:id", sessionCtrl.UpdateSession)
		sessionRoutes.DELETE("/:id", sessionCtrl.DeleteSession)
		sessionRoutes.POST("/:id/tasks/:kind", taskLimiter, sessionCtrl.RunTask)
		sessionRoutes.POST("/:id/finalize", sessionCtrl.FinalizeSession)
		sessionRoutes.POST("/:id/complete-learning", sessionCtrl.CompleteLearning)
		sessionRoutes.GET("/:id/history", sessionCtrl.GetSessionHistory)
	}

	groupRoutes := r.Group("/answer-groups")
	{
		groupRoutes.POST("/", sessionCtrl.CreateAnswerGroup)
		groupRoutes.GET("/:id", sessionCtrl.GetAnswerGroup)
		groupRoutes.DELETE("/:id", sessionCtrl.DeleteAnswerGroup)
		groupRoutes.GET("/by-question/:questionId", sessionCtrl.ListAnswerGroupsByQuestion)
		groupRoutes.GET("/:id/report", sessionCtrl.DownloadAnswerGroupReport)
	}

	answerRoutes := r.Group("/answers")
	{
		answerRoutes.GET("/:id", sessionCtrl.GetAnswer)
		answerRoutes.DELETE("/:id", sessionCtrl.DeleteAnswer)
		answerRoutes.POST("/:id/sessions", sessionCtrl.CreateReviewSession)
	}

	taskCtrl := NewTaskController(taskQueryService)
	taskRoutes := r.Group("/tasks")
	{
		taskRoutes.GET("/", taskCtrl.ListTasks)
		taskRoutes.GET("/:id", taskCtrl.GetTask)
		taskRoutes.POST("/:id/retry", taskLimiter, taskCtrl.RetryTask)
		taskRoutes.POST("/:id/cancel", taskCtrl.CancelTask)
	}

	flashcardCtrl := NewFlashcardController(flashcardService)
	flashcardRoutes := r.Group("/flashcards")
	{
		flashcardRoutes.GET("/", flashcardCtrl.ListFlashcards)
		flashcardRoutes.POST("/:id/review", flashcardCtrl.ReviewFlashcard)
	}

	questionCtrl := NewQuestionController(questionService)
	questionRoutes := r.Group("/questions")
	{
		questionRoutes.GET("/", questionCtrl.GetQuestions)
		questionRoutes.POST("/", questionCtrl.CreateQuestion)
		questionRoutes.GET("/:id", questionCtrl.GetQuestion)
		questionRoutes.PUT("/:id", questionCtrl.UpdateQuestion)
		questionRoutes.DELETE("/:id", questionCtrl.DeleteQuestion)
	}
}

// registerAuthRoutes wires token issuance for the single operator. The
// access key is compared against a bcrypt hash from config so the plain
// key never lives on disk.
func registerAuthRoutes(r *gin.Engine, cfg *config.APIConfig) {
	authRoutes := r.Group("/auth")
	{
		authRoutes.POST("/token", func(c *gin.Context) {
			var req struct {
				AccessKey string `json:"access_key" binding:"required"`
			}
			if err := c.ShouldBindJSON(&req); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
				return
			}
			if err := bcrypt.CompareHashAndPassword(
				[]byte(cfg.Authentication.AccessKeyHash), []byte(req.AccessKey)); err != nil {
				c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid access key"})
				return
			}
			accessToken, refreshToken, err := utilities.GenerateTokens()
			if err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
				return
			}
			c.JSON(http.StatusOK, gin.H{
				"access_token":  accessToken,
				"refresh_token": refreshToken,
			})
		})

		authRoutes.POST("/refresh", func(c *gin.Context) {
			var req struct {
				RefreshToken string `json:"refresh_token" binding:"required"`
			}
			if err := c.ShouldBindJSON(&req); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
				return
			}
			accessToken, refreshToken, err := utilities.RefreshTokens(req.RefreshToken)
			if err != nil {
				c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
				return
			}
			c.JSON(http.StatusOK, gin.H{
				"access_token":  accessToken,
				"refresh_token": refreshToken,
			})
		})
	}
}
