package cli

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"quiz-api-service/internal/app"
	"quiz-api-service/internal/auth"
	"quiz-api-service/internal/config"
	"quiz-api-service/internal/infra/memory"
	"quiz-api-service/internal/infra/postgres"
	infraredis "quiz-api-service/internal/infra/redis"
	"quiz-api-service/internal/logger"
	"quiz-api-service/internal/metrics"
	transport "quiz-api-service/internal/transport/http"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the quiz API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	log, err := logger.New(logger.Config{Level: cfg.Log.Level, File: cfg.Log.File})
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}

	var (
		store  app.Store
		source app.InfoSource
	)
	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg, log); err != nil {
			return err
		}
		db := postgres.Open(cfg.Postgres.URL)
		defer db.Close()
		store = postgres.NewStore(db)

		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
		defer pool.Close()
		source = postgres.NewInfoLoader(pool)
		log.Info("using postgres store")
	} else {
		mem := memory.NewStore()
		store = mem
		source = app.NewStoreInfoSource(mem)
		log.Warn("postgres url not configured, using in-memory store")
	}

	// cache invalidation must run before the broadcast reloads info
	var listeners []app.ChangeListener
	if cfg.Redis.Addr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer client.Close()
		cache := infraredis.NewInfoCache(client, source, config.TTLDuration(cfg.Redis.TTL, time.Minute), log)
		source = cache
		listeners = append(listeners, cache)
	}

	info := app.NewInfoService(source)
	info.OnError(func(err error) {
		log.Error("leaderboard refresh failed", zap.Error(err))
	})
	listeners = append(listeners, info)

	var authService *auth.Service
	if cfg.Auth.JWTSecret != "" && cfg.Auth.PasswordHash != "" {
		authService = auth.NewService(cfg.Auth.PasswordHash, cfg.Auth.JWTSecret, config.TTLDuration(cfg.Auth.TokenTTL, 24*time.Hour))
	} else {
		log.Warn("admin credentials not configured, authoring routes are locked")
	}

	router := transport.NewRouter(transport.Deps{
		Questions:      app.NewQuestionService(store, listeners...),
		Participations: app.NewParticipationService(store, listeners...),
		Info:           info,
		Auth:           authService,
		Metrics:        metrics.New(),
		Log:            log,
		CORSOrigins:    cfg.Server.CORSOrigins,
	})

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Info("starting quiz api", zap.String("port", finalPort))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server stopped", zap.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Info("shutting down server")
	case <-ctx.Done():
		log.Info("context canceled, shutting down server")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
