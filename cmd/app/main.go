package main

import (
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"golang.org/x/net/netutil"

	"examloop-backend/internal/config"
	"examloop-backend/internal/controller"
	"examloop-backend/internal/db"
	"examloop-backend/internal/llm"
	"examloop-backend/internal/model"
	"examloop-backend/internal/repository"
	"examloop-backend/internal/service"
	"examloop-backend/pkg/middleware"
	"examloop-backend/utilities"
)

const version = "1.0.0"

func main() {
	printStartUpBanner()

	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, relying on environment")
	}

	utilities.SetupLogging("logs")

	// Load XML configuration from file.
	cfg, err := config.LoadConfig("config.xml")
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// Initialize DB using the loaded config.
	db.InitDBFromConfig(cfg)
	// Run migrations.
	err = db.GetDB().AutoMigrate(
		&model.Question{},
		&model.AnswerGroup{},
		&model.Answer{},
		&model.Session{},
		&model.Task{},
		&model.LLMConversation{},
		&model.Paragraph{},
		&model.Sentence{},
		&model.Lexeme{},
		&model.FlashcardProgress{},
	)
	if err != nil {
		log.Fatalf("migration failed: %v", err)
	}

	if cfg.DB.Initialize {
		seedQuestions()
	}

	// Create repositories.
	questionRepo := repository.NewQuestionRepository()
	sessionRepo := repository.NewSessionRepository()
	taskRepo := repository.NewTaskRepository()
	flashcardRepo := repository.NewFlashcardRepository()

	llmClient := buildLLMClient(cfg)
	eventBus := utilities.NewEventBus()

	// Create services.
	questionService := service.NewQuestionService(questionRepo)
	sessionService := service.NewSessionService(sessionRepo, questionRepo, taskRepo, flashcardRepo, eventBus)
	taskService := service.NewTaskService(sessionRepo, questionRepo, taskRepo, flashcardRepo, llmClient)
	taskQueryService := service.NewTaskQueryService(taskRepo, taskService)
	flashcardService := service.NewFlashcardService(flashcardRepo)
	reportService := service.NewReportService(sessionRepo, questionRepo)

	// Finalized answers flow into the structure pipeline via the bus.
	service.InitStructurePipeline(eventBus, taskService)

	// Initialize Gin router.
	r := gin.Default()

	// CORS configuration.
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	if cfg.RequestDump {
		r.Use(middleware.RequestDumpMiddleware())
	}
	if cfg.Authentication.EnableTokenAuth {
		r.Use(utilities.AuthMiddleware())
	}

	controller.RegisterRoutes(r,
		cfg,
		sessionService,
		taskService,
		taskQueryService,
		flashcardService,
		questionService,
		reportService,
	)

	// Start server on the host and port specified in the XML config.
	addr := fmt.Sprintf("%s:%d", cfg.Context.Host, cfg.Context.Port)
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		log.Fatalf("failed to listen on %s: %v", addr, err)
	}
	if cfg.Context.MaxConnections > 0 {
		listener = netutil.LimitListener(listener, cfg.Context.MaxConnections)
	}

	utilities.Info("listening on %s", addr)
	srv := &http.Server{Handler: r}
	if err := srv.Serve(listener); err != nil && err != http.ErrServerClosed {
		log.Fatalf("server stopped: %v", err)
	}
}

// buildLLMClient selects the provider configured in config.xml.
func buildLLMClient(cfg *config.APIConfig) llm.Client {
	switch cfg.LLM.Provider {
	case "openai":
		apiKey := os.Getenv(cfg.LLM.APIKeyEnv)
		if apiKey == "" {
			log.Fatalf("openai provider selected but %s is not set", cfg.LLM.APIKeyEnv)
		}
		return llm.NewOpenAIClient(apiKey, cfg.LLM.Model)
	default:
		return llm.NewOllamaClient(cfg.LLM.OllamaURL, cfg.LLM.Model)
	}
}

func printStartUpBanner() {
	myFigure := figure.NewFigure("EXAMLOOP", "", true)
	myFigure.Print()

	fmt.Println("======================================================")
	fmt.Printf("EXAMLOOP API (v%s)\n\n", version)
}
