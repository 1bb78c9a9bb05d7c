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

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"zencontrol/internal/access"
	"zencontrol/internal/api"
	"zencontrol/internal/catalog"
	"zencontrol/internal/config"
	"zencontrol/internal/database"
	"zencontrol/internal/events"
	"zencontrol/internal/lifecycle"
	"zencontrol/internal/metrics"
	"zencontrol/internal/mirror"
	"zencontrol/internal/report"
	"zencontrol/internal/repository"
	"zencontrol/internal/service"
)

func main() {
	cfg, err := config.Load(os.Getenv("ZEN_CONFIG_PATH"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger := newLogger(cfg.Logging)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, db, rdb := openStore(ctx, cfg, &logger)
	if db != nil {
		defer db.Close()
	}
	if rdb != nil {
		defer rdb.Close()
	}

	bookings, err := repository.NewBookingRepository(ctx, store)
	if err != nil {
		logger.Fatal().Err(err).Msg("load bookings")
	}
	providers, err := repository.NewProviderRepository(ctx, store)
	if err != nil {
		logger.Fatal().Err(err).Msg("load providers")
	}
	marker := repository.NewMarkerRepository(store)

	cat, err := catalog.Load(cfg.Catalog.Path)
	if err != nil {
		logger.Fatal().Err(err).Msg("load catalog")
	}
	logger.Info().Str("catalog", cat.String()).Msg("catalog loaded")

	remote, err := newRemote(ctx, cfg, cat, &logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("create mirror client")
	}
	syncer := mirror.NewSyncer(remote, bookings, providers, mirror.Options{
		PushInterval: cfg.PushInterval(),
		Settle:       cfg.SyncSettle(),
		Timeout:      cfg.MirrorTimeout(),
	}, logger)

	if _, err := syncer.Reconcile(ctx); err != nil {
		logger.Warn().Err(err).Msg("initial pull failed, continuing on local data")
	}

	bus := events.NewEventBus()
	reports := report.NewGenerator(cfg.Reports.OutputDir, cat, logger)
	policy := lifecycle.NewPolicy(bookings, marker, reports, bus, logger)
	state, err := policy.Check(ctx)
	if err != nil {
		logger.Fatal().Err(err).Msg("archival check")
	}
	logger.Info().Str("state", string(state)).Msg("archival state")

	bus.SubscribeAll(events.MutationTypes, syncer.HandleEvent)

	sessions := access.NewSessionStore(cfg.SessionTTL())
	go cleanupSessions(ctx, sessions)

	server := api.NewHTTPServer(cfg.HTTP.Port, api.Deps{
		Gate:      access.NewGate(cfg.Access.AdminPassphrase, cfg.Access.AdminPassphraseHash, providers, logger),
		Sessions:  sessions,
		Catalog:   cat,
		Bookings:  service.NewBookingService(bookings, providers, cat, bus, logger),
		Providers: service.NewProviderService(providers, bookings, bus, logger),
		Reports:   reports,
		Policy:    policy,
		Syncer:    syncer,
	}, logger)

	if db != nil && cfg.Backup.Enabled {
		backups := database.NewBackupService(db, cfg.Backup, cfg.BackupInterval(), &logger)
		go backups.Start(ctx)
	}

	go startHealthServer(ctx, cfg.Monitoring.HealthCheckPort, db, rdb, &logger)

	if cfg.Monitoring.PrometheusEnabled {
		metrics.Register()
		go startMetricsServer(ctx, cfg.Monitoring.PrometheusPort, &logger)
	}

	logger.Info().Str("storage", cfg.Storage.Driver).Str("mirror", cfg.Mirror.Driver).Msg("zencontrol started")
	if err := server.Run(ctx); err != nil {
		logger.Error().Err(err).Msg("api server error")
		stop()
	}

	syncer.Wait()
	logger.Info().Msg("zencontrol stopped")
}

func newLogger(cfg config.LoggingConfig) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}

	var logger zerolog.Logger
	if cfg.Pretty {
		output := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
		logger = zerolog.New(output)
	} else {
		logger = zerolog.New(os.Stdout)
	}
	return logger.Level(level).With().Timestamp().Logger()
}

// openStore returns the keyed store for storage.driver plus the handles the
// health checks and backups need.
func openStore(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) (repository.Store, *database.DB, *redis.Client) {
	var (
		db  *database.DB
		rdb *redis.Client
		err error
	)

	if cfg.Storage.Driver == "sqlite" || cfg.Storage.Driver == "failover" {
		db, err = database.NewDB(cfg.Storage.SQLite.Path)
		if err != nil {
			logger.Fatal().Err(err).Msg("open db error")
		}
		logger.Info().Str("path", db.Path()).Msg("sqlite store opened")
	}

	if cfg.Storage.Driver == "redis" || cfg.Storage.Driver == "failover" {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.Storage.Redis.Address,
			Password: cfg.Storage.Redis.Password,
			DB:       cfg.Storage.Redis.DB,
		})
		ctxPing, cancel := context.WithTimeout(ctx, 3*time.Second)
		defer cancel()
		if err := rdb.Ping(ctxPing).Err(); err != nil {
			if cfg.Storage.Driver == "redis" {
				logger.Fatal().Err(err).Msg("redis not reachable")
			}
			logger.Warn().Err(err).Msg("redis not reachable, writes go to sqlite until it recovers")
		}
	}

	switch cfg.Storage.Driver {
	case "redis":
		return database.NewRedisStore(rdb, cfg.Storage.Redis.KeyPrefix), nil, rdb
	case "failover":
		primary := database.NewRedisStore(rdb, cfg.Storage.Redis.KeyPrefix)
		return repository.NewFailoverStore(primary, db, logger), db, rdb
	default:
		return db, db, nil
	}
}

// newRemote builds the mirror client for mirror.driver; nil disables mirroring.
func newRemote(ctx context.Context, cfg *config.Config, cat *catalog.Catalog, logger *zerolog.Logger) (mirror.Remote, error) {
	codec := mirror.NewCodec(cat, logger)

	switch cfg.Mirror.Driver {
	case "webapp":
		return mirror.NewWebAppClient(cfg.Mirror.WebApp.URL, cfg.MirrorTimeout(), codec), nil
	case "sheets":
		sc := cfg.Mirror.Sheets
		client, err := mirror.NewSheetsClient(ctx, sc.CredentialsFile, sc.SpreadsheetID, sc.BookingsRange, sc.ProvidersRange, codec)
		if err != nil {
			return nil, err
		}
		return client, nil
	default:
		return nil, nil
	}
}

func cleanupSessions(ctx context.Context, sessions *access.SessionStore) {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			sessions.Cleanup()
		}
	}
}

func startHealthServer(ctx context.Context, port int, db *database.DB, rdb *redis.Client, logger *zerolog.Logger) {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	mux.HandleFunc("/readyz", func(w http.ResponseWriter, _ *http.Request) {
		ctxPing, cancel := context.WithTimeout(ctx, time.Second)
		defer cancel()
		if db != nil {
			if err := db.PingContext(ctxPing); err != nil {
				http.Error(w, "db not ready", http.StatusServiceUnavailable)
				return
			}
		}
		if rdb != nil && db == nil {
			if err := rdb.Ping(ctxPing).Err(); err != nil {
				http.Error(w, "redis not ready", http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	srv := &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctxShutdown)
	}()
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error().Err(err).Msg("health server error")
	}
}

func startMetricsServer(ctx context.Context, port int, logger *zerolog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctxShutdown)
	}()
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error().Err(err).Msg("metrics server error")
	}
}
