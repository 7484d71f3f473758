package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/MrSnakeDoc/marks/internal/auth"
	"github.com/MrSnakeDoc/marks/internal/config"
	"github.com/MrSnakeDoc/marks/internal/httpserver"
	"github.com/MrSnakeDoc/marks/internal/httpserver/deps"
	"github.com/MrSnakeDoc/marks/internal/ingest"
	"github.com/MrSnakeDoc/marks/internal/lock"
	"github.com/MrSnakeDoc/marks/internal/logger"
	"github.com/MrSnakeDoc/marks/internal/metadata"
	"github.com/MrSnakeDoc/marks/internal/redis"
	"github.com/MrSnakeDoc/marks/internal/store/sqlite"
	"github.com/MrSnakeDoc/marks/internal/utils"
	"github.com/MrSnakeDoc/marks/internal/version"
)

// lockSlack is added on top of the fetch and the two SQLite statements
// (read, then save) a lease guards.
const lockSlack = 5 * time.Second

// lockTTL bounds one update: fetch, then Get and Save, each of which may
// wait up to sqlite.BusyTimeout.
func lockTTL(fetchTimeout time.Duration) time.Duration {
	return fetchTimeout + 2*sqlite.BusyTimeout + lockSlack
}

type App struct {
	cfg         *config.Config
	logger      logger.Logger
	server      *httpserver.Server
	db          *sqlite.DB
	redisClient *goredis.Client
}

// New wires every component. Startup failures are returned, not fatal.
func New(ctx context.Context, cfg *config.Config, loggerClient logger.Logger) (*App, error) {
	loggerClient.Debug("configuration loaded", logger.String("config", fmt.Sprintf("%+v", cfg.Redacted())))

	db, err := sqlite.Open(ctx, cfg.DBPath, loggerClient)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Redis is optional: without it the ingest lock only covers this process.
	var (
		redisClient *goredis.Client
		locker      lock.Locker
	)
	if cfg.RedisAddr != "" {
		opts := redis.DefaultConnectOptions(cfg.RedisAddr)
		opts.Password = cfg.RedisPassword
		opts.DB = cfg.RedisDB
		opts.ConnectTimeout = cfg.RedisConnectTimeout

		redisClient, err = redis.Connect(ctx, opts, loggerClient)
		if err != nil {
			_ = db.Close()
			return nil, err
		}
		locker = lock.NewRedis(redisClient, lockTTL(cfg.FetchTimeout), loggerClient)
	} else {
		loggerClient.Info("redis not configured, using in-process bookmark locks")
		locker = lock.NewLocal()
	}

	fetcher := metadata.NewFetcher(
		metadata.WithTimeout(cfg.FetchTimeout),
		metadata.WithMaxBytes(cfg.FetchMaxBytes),
		metadata.WithUserAgent(cfg.FetchUserAgent),
	)

	bookmarks := sqlite.NewBookmarkStore(db)
	collections := sqlite.NewCollectionStore(db)

	d := deps.Deps{
		Logger:             loggerClient,
		StartTime:          time.Now(),
		Version:            version.Version,
		Commit:             version.Commit,
		BuildDate:          version.BuildDate,
		GoVersion:          version.GoVersion,
		AllowedHosts:       cfg.AllowedHosts,
		AllowedCIDRS:       cfg.AllowedCIDRS,
		TrustProxy:         cfg.TrustProxy,
		CORSOrigins:        cfg.CORSOrigins,
		RateLimitBurst:     cfg.RateLimitBurst,
		RateLimitPerMinute: cfg.RateLimitPerMinute,
		DB:                 db,
		RedisClient:        redisClient,
		Bookmarks:          bookmarks,
		Collections:        collections,
		Ingest:             ingest.NewService(fetcher, bookmarks, collections, locker, loggerClient),
		Verifier:           auth.NewVerifier(cfg.JWTSecret),
	}

	return &App{
		cfg:         cfg,
		logger:      loggerClient,
		server:      httpserver.New(cfg, loggerClient, d),
		db:          db,
		redisClient: redisClient,
	}, nil
}

// Run serves until SIGINT/SIGTERM, then shuts down gracefully.
func (a *App) Run() error {
	a.logger.Infof("🚀 Starting marks %s on %s", version.Version, a.cfg.ListenPort)
	a.logger.Infof("marks %s (commit=%s, built=%s, go=%s)",
		version.Version, version.Commit, version.BuildDate, version.GoVersion)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		if err := a.server.Start(); err != nil {
			errCh <- fmt.Errorf("http server error: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("⏳ Shutting down gracefully...")
	case err := <-errCh:
		a.close()
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()
	if err := a.server.Stop(shutdownCtx); err != nil {
		a.close()
		return fmt.Errorf("failed to stop server: %w", err)
	}

	a.close()
	a.logger.Info("✅ marks stopped cleanly")
	return nil
}

// close releases storage after the server stopped accepting requests.
func (a *App) close() {
	if a.redisClient != nil {
		utils.CloseLogged(a.redisClient, "redis", a.logger)
	}
	utils.CloseLogged(a.db, "database", a.logger)
}
