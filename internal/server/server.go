package server

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"taskflow/internal/access"
	"taskflow/internal/cache"
	"taskflow/internal/config"
	"taskflow/internal/database"
	"taskflow/internal/handler"
	"taskflow/internal/llm"
	"taskflow/internal/middleware"
	"taskflow/internal/repository"
	"taskflow/internal/suggest"
	"taskflow/internal/summary"
)

type Server struct {
	Engine *gin.Engine
	DB     *gorm.DB
	Redis  *redis.Client
	Config *config.Config
	Log    *zap.Logger
}

func Init(cfg *config.Config, log *zap.Logger) (*Server, error) {
	db, err := database.Open(cfg, log)
	if err != nil {
		return nil, err
	}

	if cfg.AutoMigrate {
		if err := database.Migrate(db, log); err != nil {
			return nil, err
		}
	}

	var rdb *redis.Client
	composerOpts := []summary.Option{summary.WithFallback(cfg.SummaryFallback)}
	if cfg.RedisAddr != "" {
		rdb = cache.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Warn("Redis unreachable, summaries will not be cached", zap.String("addr", cfg.RedisAddr), zap.Error(err))
		} else {
			log.Info("Connected to Redis", zap.String("addr", cfg.RedisAddr))
		}
		cancel()
		composerOpts = append(composerOpts, summary.WithCache(cache.NewRedisCache(rdb, cfg.SummaryCacheTTL)))
	}

	if cfg.AppEnv == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	handler.RegisterValidators()

	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger(log), middleware.Metrics())

	// Initialize repositories
	projectRepo := repository.NewProjectRepository(db)
	sectionRepo := repository.NewSectionRepository(db)
	taskRepo := repository.NewTaskRepository(db)

	guard := access.NewGuard(projectRepo, sectionRepo, taskRepo, cfg.StrictOwnership())
	engine := suggest.NewEngine(suggest.DefaultTables())
	textGen := llm.NewClient(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, cfg.OpenAIModel, cfg.OpenAITimeout)
	composer := summary.NewComposer(textGen, log, composerOpts...)

	if !textGen.Configured() {
		log.Warn("OPENAI_API_KEY not configured, /ai/summary will report a configuration error")
	}

	// Initialize handlers
	healthHandler := handler.NewHealthHandler(database.NewChecker(db))
	projectHandler := handler.NewProjectHandler(projectRepo, guard, log)
	sectionHandler := handler.NewSectionHandler(sectionRepo, guard, log)
	taskHandler := handler.NewTaskHandler(taskRepo, guard, log)
	aiHandler := handler.NewAIHandler(taskRepo, guard, engine, composer, log)

	// Public routes
	r.GET("/health", healthHandler.Health)
	r.GET("/readyz", healthHandler.Ready)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Protected routes - require authentication
	authorized := r.Group("/")
	authorized.Use(middleware.JWTAuthMiddleware(cfg.JWTSecret))
	{
		authorized.GET("/projects", projectHandler.List)
		authorized.GET("/projects/:id", projectHandler.GetByID)
		authorized.POST("/projects", projectHandler.Create)
		authorized.PUT("/projects/:id", projectHandler.Update)
		authorized.DELETE("/projects/:id", projectHandler.Delete)

		authorized.GET("/sections/project/:projectId", sectionHandler.ListByProject)
		authorized.POST("/sections/project/:projectId/reorder", sectionHandler.Reorder)
		authorized.POST("/sections", sectionHandler.Create)
		authorized.PUT("/sections/:id", sectionHandler.Update)
		authorized.DELETE("/sections/:id", sectionHandler.Delete)

		authorized.GET("/tasks/section/:sectionId", taskHandler.ListBySection)
		authorized.GET("/tasks/project/:projectId", taskHandler.ListByProject)
		authorized.POST("/tasks", taskHandler.Create)
		authorized.PUT("/tasks/:id", taskHandler.Update)
		authorized.DELETE("/tasks/:id", taskHandler.Delete)

		authorized.POST("/ai/summary", aiHandler.Summary)
		authorized.POST("/ai/estimate-effort", aiHandler.EstimateEffort)
		authorized.POST("/ai/predict-priority", aiHandler.PredictPriority)
		authorized.POST("/ai/suggest", aiHandler.Suggest)
	}

	log.Info("Server initialized",
		zap.String("env", cfg.AppEnv),
		zap.String("ownership_policy", cfg.OwnershipPolicy),
		zap.Bool("summary_fallback", cfg.SummaryFallback),
		zap.Bool("summary_cache", rdb != nil),
	)

	return &Server{
		Engine: r,
		DB:     db,
		Redis:  rdb,
		Config: cfg,
		Log:    log,
	}, nil
}

func (s *Server) Run() {
	srv := &http.Server{
		Addr:    ":" + s.Config.ServerPort,
		Handler: s.Engine,
	}

	go func() {
		s.Log.Info("Server running", zap.String("port", s.Config.ServerPort))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.Log.Fatal("Failed to listen", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	s.Log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		s.Log.Error("Server forced to shutdown", zap.Error(err))
	}

	s.close()
	s.Log.Info("Server exited properly")
}

func (s *Server) close() {
	if sqlDB, err := s.DB.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			s.Log.Warn("Failed to close database", zap.Error(err))
		}
	}
	if s.Redis != nil {
		if err := s.Redis.Close(); err != nil {
			s.Log.Warn("Failed to close Redis", zap.Error(err))
		}
	}
}
