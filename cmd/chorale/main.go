package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/chorale-app/chorale/internal/app"
	"github.com/chorale-app/chorale/internal/assignments"
	"github.com/chorale-app/chorale/internal/auth"
	"github.com/chorale-app/chorale/internal/observability"
	"github.com/chorale-app/chorale/internal/permissions"
	"github.com/chorale-app/chorale/internal/platform/cache"
	"github.com/chorale-app/chorale/internal/platform/db"
	"github.com/chorale-app/chorale/internal/roles"
	"github.com/chorale-app/chorale/internal/shared"
	"github.com/chorale-app/chorale/internal/songs"
	"github.com/chorale-app/chorale/internal/teams"
	"github.com/chorale-app/chorale/internal/users"
	"github.com/chorale-app/chorale/jobs"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	pool, err := db.New(ctx, cfg.PGDSN, cfg.PGMaxConns)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	auditLogger := shared.NewAuditLogger(pool)
	tokenStore := auth.NewTokenStore(redisClient, cfg.TokenTTL)

	usersRepo := users.NewRepository(pool)
	usersService := users.NewService(usersRepo)
	usersHandler := users.NewHandler(logger, usersService)

	authService := auth.NewService(usersRepo)
	authHandler := auth.NewHandler(logger, authService, tokenStore)

	songsRepo := songs.NewRepository(pool)
	songsService := songs.NewService(songsRepo, auditLogger)
	songsHandler := songs.NewHandler(logger, songsService)

	rolesRepo := roles.NewRepository(pool)
	rolesService := roles.NewService(rolesRepo)
	rolesHandler := roles.NewHandler(logger, rolesService)

	teamsRepo := teams.NewRepository(pool)
	teamsService := teams.NewService(teamsRepo, auditLogger)
	teamsHandler := teams.NewHandler(logger, teamsService, rolesService)

	permissionsRepo := permissions.NewRepository(pool)
	permissionsService := permissions.NewService(permissionsRepo, auditLogger)
	permissionsHandler := permissions.NewHandler(logger, permissionsService)

	assignmentsRepo := assignments.NewRepository(pool)
	assignmentsService := assignments.NewService(assignmentsRepo, auditLogger)
	assignmentsHandler := assignments.NewHandler(logger, assignmentsService)

	metrics := observability.NewMetrics()

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobClient, err := jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	if err != nil {
		logger.Error("init job client", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := jobClient.Close(); err != nil {
			logger.Warn("job client close", slog.Any("error", err))
		}
	}()
	jobHandler := jobs.NewHandler(inspector, jobClient, logger)

	router := app.NewRouter(app.RouterParams{
		Logger:             logger,
		Config:             cfg,
		TokenStore:         tokenStore,
		AuthHandler:        authHandler,
		UsersHandler:       usersHandler,
		SongsHandler:       songsHandler,
		TeamsHandler:       teamsHandler,
		RolesHandler:       rolesHandler,
		PermissionsHandler: permissionsHandler,
		AssignmentsHandler: assignmentsHandler,
		JobHandler:         jobHandler,
		Metrics:            metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
