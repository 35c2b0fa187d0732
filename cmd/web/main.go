package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	goredis "github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/kavyapath/kavyapath-web/internal/apiclient"
	"github.com/kavyapath/kavyapath-web/internal/assistant"
	"github.com/kavyapath/kavyapath-web/internal/config"
	"github.com/kavyapath/kavyapath-web/internal/database"
	"github.com/kavyapath/kavyapath-web/internal/handler"
	"github.com/kavyapath/kavyapath-web/internal/middleware"
	"github.com/kavyapath/kavyapath-web/internal/migration"
	"github.com/kavyapath/kavyapath-web/internal/repository"
	"github.com/kavyapath/kavyapath-web/internal/routes"
	"github.com/kavyapath/kavyapath-web/internal/service"
	"github.com/kavyapath/kavyapath-web/internal/session"
	pkgcache "github.com/kavyapath/kavyapath-web/pkg/cache"
	pkglogger "github.com/kavyapath/kavyapath-web/pkg/logger"
	pkgredis "github.com/kavyapath/kavyapath-web/pkg/redis"
	"github.com/kavyapath/kavyapath-web/web"
)

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

// getConfigPath returns config file path based on APP_ENV environment variable
func getConfigPath() string {
	if p := os.Getenv("CONFIG_PATH"); p != "" {
		return p
	}
	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "local"
	}
	return fmt.Sprintf("configs/config.%s.yaml", env)
}

func main() {
	dotenvFiles := config.LoadDotEnv()

	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "local"
	}
	pkglogger.InitStructured(env)
	log := pkglogger.GetLogger()
	log.Info().Str("env", env).Strs("env_files", dotenvFiles).Msg("starting kavyapath-web")

	configPath := getConfigPath()
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", configPath).Msg("failed to load config")
	}
	config.LogResolved(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Redis, optional: drafts, transcripts and rate limits fall back to memory
	var redisClient *goredis.Client
	if cfg.Redis.Enabled {
		redisClient, err = pkgredis.NewClient(cfg.Redis.Host, cfg.Redis.Port, cfg.Redis.Password, cfg.Redis.DB, cfg.Redis.PoolSize)
		if err != nil {
			log.Warn().Err(err).Msg("redis unavailable, continuing with in-memory state")
			redisClient = nil
		} else {
			log.Info().Msg("connected to redis")
		}
	}

	var cacheService pkgcache.Service
	var limiter middleware.Limiter
	if redisClient != nil {
		cacheService = pkgcache.NewService(redisClient)
		limiter = middleware.NewRedisLimiter(redisClient)
	} else {
		cacheService = pkgcache.NewMemory()
		limiter = middleware.NewMemoryLimiter()
	}

	// Analysis cache database, optional
	var db *gorm.DB
	if cfg.Database.Enabled {
		db, err = database.Open(cfg.Database, cfg.IsDevelopment())
		if err != nil {
			log.Warn().Err(err).Msg("database unavailable, analysis cache disabled")
			db = nil
		} else if err := migration.Run(db); err != nil {
			log.Warn().Err(err).Msg("migration failed, analysis cache disabled")
			db = nil
		}
	}

	// Assistant
	var llm assistant.LLMClient
	if client, err := assistant.NewOpenAILLM(assistant.Settings{
		BaseURL: cfg.Assistant.BaseURL,
		APIKey:  cfg.Assistant.APIKey,
		Model:   cfg.Assistant.Model,
	}); err != nil {
		log.Warn().Err(err).Msg("assistant provider not configured, answers will be apologies")
	} else {
		llm = client
	}
	analyzerOpts := []assistant.Option{assistant.WithTimeout(cfg.Assistant.Timeout), assistant.WithModel(cfg.Assistant.Model)}
	if db != nil {
		analyzerOpts = append(analyzerOpts, assistant.WithCache(repository.NewAnalysisRepository(db), cfg.Assistant.CacheTTL))
	}
	analyzer := assistant.NewAnalyzer(llm, analyzerOpts...)
	transcripts := repository.NewTranscriptRepository(cacheService, cfg.Assistant.PanelTTL)
	panels := assistant.NewRegistry(ctx, analyzer, transcripts, cfg.Assistant.PanelTTL)
	go panels.Run(ctx, time.Minute)

	// Remote API and services
	api := apiclient.New(cfg.API)
	store := session.NewStore(cfg.Session)
	drafts := repository.NewDraftRepository(cacheService, cfg.Session.DraftTTL)

	storySvc := service.NewStoryService(api, cfg.Server.PublicURL)
	commentSvc := service.NewCommentService(api)
	submissionSvc := service.NewSubmissionService(api, drafts, cfg.Session.MaxImageSize)

	checks := map[string]handler.Pinger{"api": api}
	if redisClient != nil {
		checks["redis"] = cacheService
	}

	h := routes.Handlers{
		Story:     handler.NewStoryHandler(storySvc, commentSvc, panels),
		Comment:   handler.NewCommentHandler(commentSvc),
		Write:     handler.NewWriteHandler(submissionSvc, api, cfg.Session.MaxImageSize),
		Auth:      handler.NewAuthHandler(service.NewAuthService(api), store),
		Profile:   handler.NewProfileHandler(service.NewProfileService(api)),
		Assistant: handler.NewAssistantHandler(analyzer, panels, storySvc),
		Page:      handler.NewPageHandler(),
		Health:    handler.NewHealthHandler(version, checks),
	}

	if cfg.Server.Mode != "" {
		gin.SetMode(cfg.Server.Mode)
	}
	router := gin.New()
	router.Use(gin.Recovery())

	tmpl, err := web.Templates()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to parse templates")
	}
	router.SetHTMLTemplate(tmpl)

	router.Use(cors.New(cors.Config{
		AllowOrigins:     splitAndTrim(cfg.CORS.AllowOrigins, ","),
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "X-Requested-With", "X-Request-ID"},
		AllowCredentials: true,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		ExposeHeaders:    []string{"X-Request-ID", "X-RateLimit-Remaining"},
		MaxAge:           12 * time.Hour,
	}))
	router.Use(middleware.SecurityHeaders())
	router.Use(middleware.Metrics())
	router.Use(middleware.RequestLogger())
	router.Use(session.Middleware(store))

	limit := middleware.DefaultRateLimitConfig()
	if cfg.RateLimit.AssistantPerMinute > 0 {
		limit.RequestsPerMinute = cfg.RateLimit.AssistantPerMinute
	}
	routes.Setup(router, h, routes.Options{
		LoginPath:        cfg.Session.LoginPath,
		AssistantLimiter: limiter,
		AssistantLimit:   limit,
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
	go func() {
		log.Info().Str("addr", srv.Addr).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
	if redisClient != nil {
		_ = redisClient.Close()
	}
	if db != nil {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
}

// splitAndTrim splits a string by delimiter and trims spaces
func splitAndTrim(s string, delimiter string) []string {
	parts := []string{}
	for _, part := range strings.Split(s, delimiter) {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	return parts
}
