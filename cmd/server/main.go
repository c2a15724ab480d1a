package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/zap"

	"persona-agent/internal/agent"
	"persona-agent/internal/llm"
	"persona-agent/internal/notify"
	"persona-agent/internal/persona"
	"persona-agent/internal/profile"
	"persona-agent/internal/store"
	"persona-agent/internal/tools"
	"persona-agent/pkg/config"
	apperrors "persona-agent/pkg/errors"
	"persona-agent/pkg/logger"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load configuration: %v", err))
	}

	// Initialize logger
	if err := logger.Init(cfg.Env); err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer logger.Sync()

	log := logger.Get()
	log.Info("Starting persona agent server...")

	// Load the persona grounding documents
	summary, err := profile.LoadSummary(cfg.SummaryPath)
	if err != nil {
		log.Fatal("Failed to load summary", zap.Error(err))
	}
	profileText, err := profile.LoadProfile(cfg.ProfilePath)
	if err != nil {
		log.Fatal("Failed to load profile", zap.Error(err))
	}
	p := persona.New(cfg.PersonaName, summary, profileText)

	// Initialize dependencies
	client := llm.NewOpenAIClient(cfg.ModelBaseURL, cfg.ModelAPIKey, cfg.ModelID, cfg.ModelTemperature)
	notifier := notify.NewPushover(cfg.PushoverToken, cfg.PushoverUser, cfg.PushoverEndpoint)

	// Lead store is optional; without it the push notifier is the only sink
	var recorder tools.Recorder
	if cfg.Neo4jURI != "" {
		driver, err := neo4j.NewDriverWithContext(
			cfg.Neo4jURI,
			neo4j.BasicAuth(cfg.Neo4jUser, cfg.Neo4jPassword, ""),
		)
		if err != nil {
			log.Fatal("Failed to create Neo4j driver", zap.Error(err))
		}
		if err := driver.VerifyConnectivity(context.Background()); err != nil {
			log.Fatal("Failed to verify Neo4j connectivity", zap.Error(err))
		}
		repo := store.NewRepository(driver)
		defer repo.Close()
		recorder = repo
		log.Info("Lead store enabled", zap.String("uri", cfg.Neo4jURI))
	}

	// A malformed catalog must stop the process before it serves traffic
	catalog, err := tools.NewCatalog()
	if err != nil {
		log.Fatal("Tool catalog validation failed", zap.Error(err))
	}

	executor := tools.NewExecutor(notifier, recorder)
	orch := agent.NewOrchestrator(p, catalog, executor, client, cfg.MaxToolRounds)

	// Setup Gin router
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := newRouter(orch, log)

	// Start server
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	// Graceful shutdown
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	log.Info("Server started", zap.String("port", cfg.Port), zap.String("persona", cfg.PersonaName))

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited")
}

type chatMessage struct {
	Role    string `json:"role" binding:"required"`
	Content string `json:"content"`
}

type chatRequest struct {
	Message string        `json:"message" binding:"required"`
	History []chatMessage `json:"history"`
}

// newRouter builds the HTTP surface: a health probe and the stateless chat
// endpoint. The caller retains conversation history and re-supplies it per
// request.
func newRouter(orch *agent.Orchestrator, log *zap.Logger) *gin.Engine {
	router := gin.New()
	router.Use(ginLogger(log))
	router.Use(gin.Recovery())

	// CORS middleware
	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := router.Group("/api")
	{
		api.POST("/chat", func(c *gin.Context) {
			var req chatRequest
			if err := c.ShouldBindJSON(&req); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}

			history := make([]llm.Message, 0, len(req.History))
			for _, m := range req.History {
				history = append(history, llm.Message{Role: m.Role, Content: m.Content})
			}

			reply, err := orch.Respond(c.Request.Context(), history, req.Message)
			if err != nil {
				var budget *apperrors.TurnBudgetExceededError
				if errors.As(err, &budget) {
					log.Warn("Turn aborted by budget", zap.Int("rounds", budget.Rounds))
					c.JSON(http.StatusBadGateway, gin.H{"error": "The agent could not finish the request"})
					return
				}
				log.Error("Failed to resolve turn", zap.Error(err))
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to process message"})
				return
			}

			c.JSON(http.StatusOK, gin.H{"reply": reply})
		})
	}

	return router
}

// ginLogger is a custom logger middleware for Gin
func ginLogger(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		raw := c.Request.URL.RawQuery

		c.Next()

		latency := time.Since(start)
		status := c.Writer.Status()

		if raw != "" {
			path = path + "?" + raw
		}

		log.Info("HTTP Request",
			zap.Int("status", status),
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.Duration("latency", latency),
			zap.String("ip", c.ClientIP()),
		)
	}
}
