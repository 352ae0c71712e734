package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/querydesk/internal/api/http"
	"github.com/spec-kit/querydesk/internal/config"
	"github.com/spec-kit/querydesk/internal/events"
	"github.com/spec-kit/querydesk/internal/observability"
	"github.com/spec-kit/querydesk/internal/persistence"
	"github.com/spec-kit/querydesk/internal/repository"
	"github.com/spec-kit/querydesk/internal/repository/memory"
	"github.com/spec-kit/querydesk/internal/service"
	"github.com/spec-kit/querydesk/internal/worker"
)

const shutdownTimeout = 10 * time.Second

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the querydesk web server",
		Long: `Starts the web pages and JSON API. Without POSTGRES_DSN the data lives
in memory; without REDIS_ADDR sessions and login throttling do too.

	querydesk serve
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			logger, err := observability.NewLogger(cfg.Logger)
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}
			defer logger.Sync() //nolint:errcheck

			return serve(cmd.Context(), *cfg, logger)
		},
	}
}

type stores struct {
	users    repository.UserRepository
	queries  repository.QueryRepository
	sessions repository.SessionRepository
	attempts repository.LoginAttemptRepository
}

// openStores picks Postgres and Redis backed repositories when they are
// configured and in-memory ones otherwise.
func openStores(pg *persistence.Postgres, rdb *persistence.Redis, logger *zap.Logger) stores {
	var s stores
	if pg.Enabled() {
		s.users = repository.NewUserRepository(pg.PoolHandle())
		s.queries = repository.NewQueryRepository(pg.PoolHandle())
	} else {
		logger.Warn("using in-memory user and query stores; data is lost on restart")
		s.users = memory.NewUserRepository()
		s.queries = memory.NewQueryRepository()
	}
	if rdb.Enabled() {
		s.sessions = repository.NewSessionRepository(rdb.Client)
		s.attempts = repository.NewLoginAttemptRepository(rdb.Client)
	} else {
		s.sessions = memory.NewSessionRepository()
		s.attempts = memory.NewLoginAttemptRepository()
	}
	return s
}

func serve(ctx context.Context, cfg config.Config, logger *zap.Logger) error {
	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer pg.Close()

	if pg.Enabled() && cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(cfg.Postgres.DSN, persistence.MigrateUp, logger); err != nil {
			return err
		}
	}

	rdb := persistence.NewRedis(ctx, cfg.Redis, logger)
	defer rdb.Close()

	st := openStores(pg, rdb, logger)

	dispatcher := events.NewInMemoryDispatcher()
	stopWorker := worker.StartNotificationWorker(dispatcher, cfg.Notification, logger)
	defer stopWorker()

	authService := service.NewAuthService(cfg, service.AuthDependencies{
		UserRepo:         st.users,
		SessionRepo:      st.sessions,
		LoginAttemptRepo: st.attempts,
		Logger:           logger,
	})
	queryService := service.NewQueryService(service.QueryDependencies{
		QueryRepo:  st.queries,
		Dispatcher: dispatcher,
		Logger:     logger,
	})

	app, err := httptransport.NewServer(httptransport.ServerDependencies{
		Config:   cfg,
		Logger:   logger,
		Metrics:  observability.NewMetrics(),
		Auth:     authService,
		Queries:  queryService,
		Postgres: pg,
		Redis:    rdb,
	})
	if err != nil {
		return fmt.Errorf("build server: %w", err)
	}

	listenErr := make(chan error, 1)
	go func() {
		logger.Info("listening", zap.String("addr", cfg.App.Addr()))
		listenErr <- app.Listen(cfg.App.Addr())
	}()

	select {
	case err := <-listenErr:
		return fmt.Errorf("fiber listen: %w", err)
	case <-ctx.Done():
		logger.Info("shutting down", zap.Error(context.Cause(ctx)))
	}

	if err := app.ShutdownWithTimeout(shutdownTimeout); err != nil && !errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
