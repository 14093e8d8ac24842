package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/neonarcade/connect-four/backend/internal/config"
	"github.com/neonarcade/connect-four/backend/internal/domain"
	"github.com/neonarcade/connect-four/backend/internal/repository/postgres"
	"github.com/neonarcade/connect-four/backend/internal/repository/redis"
	"github.com/neonarcade/connect-four/backend/internal/service/bot"
	"github.com/neonarcade/connect-four/backend/internal/service/cleanup"
	"github.com/neonarcade/connect-four/backend/internal/service/game"
	transportHttp "github.com/neonarcade/connect-four/backend/internal/transport/http"
	"github.com/neonarcade/connect-four/backend/internal/transport/websocket"
)

func main() {
	if err := godotenv.Load(); err != nil {
		_ = godotenv.Load("../.env")
	}

	cfg := config.LoadConfig()
	setupLogger(cfg.LogLevel, cfg.LogFormat)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 1. Snapshot store (Persistence Layer)
	repo, pruner, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Str("store_driver", cfg.StoreDriver).Msg("failed to open snapshot store")
	}
	defer closeStore()

	// 2. Services (Business Logic Layer)
	engine := bot.NewEngine(bot.WithSearchDepth(cfg.BotSearchDepth))
	connManager := websocket.NewConnectionManager()

	opts := []game.Option{
		game.WithEngine(engine),
		game.WithNotifier(connManager),
		game.WithThinkingDelays(map[domain.Difficulty]time.Duration{
			domain.DifficultyEasy:   cfg.BotDelays.Easy,
			domain.DifficultyMedium: cfg.BotDelays.Medium,
			domain.DifficultyHard:   cfg.BotDelays.Hard,
		}),
	}
	if repo != nil {
		opts = append(opts, game.WithRepository(repo))
	}
	sessionManager := game.NewSessionManager(opts...)
	gameService := game.NewService(engine)

	// 3. Background worker
	cleanupWorker := cleanup.NewWorker(sessionManager, pruner, cfg.CleanupInterval, cfg.SessionIdle, cfg.SnapshotTTL)

	// 4. HTTP + WebSocket (API Layer)
	if cfg.LogLevel != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := transportHttp.NewRouter(transportHttp.Handlers{
		Engine: transportHttp.NewEngineHandler(gameService),
		Games:  transportHttp.NewGameHandler(sessionManager),
		Watch:  transportHttp.NewWatchHandler(sessionManager, connManager),
		WS:     websocket.NewHandler(connManager, sessionManager, cfg.AllowedOrigins),
	}, cfg.AllowedOrigins)
	serveStatic(router)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info().Str("port", cfg.Port).Str("store_driver", cfg.StoreDriver).Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		return cleanupWorker.Run(gctx)
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("server is shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		connManager.CloseAll()
		if err := sessionManager.Shutdown(shutdownCtx); err != nil {
			log.Warn().Err(err).Msg("pending AI moves did not stop in time")
		}
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Fatal().Err(err).Msg("server exited with error")
	}
	log.Info().Msg("server exited gracefully")
}

func setupLogger(level, format string) {
	if lvl, err := zerolog.ParseLevel(level); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}
	zerolog.TimeFieldFormat = time.RFC3339
	if format == "console" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	}
}

// openStore picks the snapshot repository for cfg.StoreDriver. Memory mode has
// no repository at all. Only Postgres needs the cleanup worker to prune.
func openStore(ctx context.Context, cfg *config.Config) (game.SnapshotRepository, cleanup.SnapshotPruner, func(), error) {
	switch cfg.StoreDriver {
	case config.StoreRedis:
		client, err := redis.NewClient(ctx, cfg.RedisURL, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			return nil, nil, nil, err
		}
		closeFn := func() { client.Close() }
		return redis.NewSnapshotStore(client, cfg.SnapshotTTL), nil, closeFn, nil

	case config.StorePostgres:
		db, err := postgres.Open(ctx, cfg.DatabaseURL, cfg.DBMaxOpenConns, cfg.DBMaxIdleConns, cfg.DBConnMaxLife)
		if err != nil {
			return nil, nil, nil, err
		}
		log.Info().Str("component", "postgres").Msg("running database migrations")
		if err := postgres.RunMigrations(ctx, db); err != nil {
			db.Close()
			return nil, nil, nil, err
		}
		repo := postgres.NewSnapshotRepo(db)
		closeFn := func() { db.Close() }
		return repo, repo, closeFn, nil
	}

	return nil, nil, func() {}, nil
}

// serveStatic serves a built frontend from ./static when one is present
func serveStatic(router *gin.Engine) {
	if _, err := os.Stat("./static"); err != nil {
		return
	}

	router.Static("/assets", "./static/assets")
	router.GET("/", func(c *gin.Context) {
		c.File("./static/index.html")
	})

	// SPA fallback: serve index.html for all unmatched routes
	router.NoRoute(func(c *gin.Context) {
		path := "./static" + c.Request.URL.Path

		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			c.File(path)
			return
		}

		if strings.HasPrefix(c.Request.URL.Path, "/api/") || strings.HasPrefix(c.Request.URL.Path, "/assets/") {
			c.Status(http.StatusNotFound)
			return
		}

		c.File("./static/index.html")
	})
}
