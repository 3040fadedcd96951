package main

import (
	"context"
	"fmt"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"notedesk/internal/notes/adapters/gateway"
	"notedesk/internal/notes/adapters/postgres"
	"notedesk/internal/notes/adapters/redis"
	"notedesk/internal/notes/adapters/services"
	"notedesk/internal/notes/config"
	"notedesk/internal/notes/db"
	"notedesk/internal/notes/domain/entities"
	dbredis "notedesk/pkg/db/redis"
	"notedesk/pkg/logger"
)

// Константы для сообщений об ошибках.
const (
	ErrLoadConfig           = "failed to load configuration"
	ErrInitLoggerWithConfig = "failed to initialize logger with configuration settings"
	ErrInitDB               = "failed to initialize database"
	ErrInitRedis            = "failed to initialize redis"
	ErrResolveViewer        = "failed to resolve viewer"
)

// Константы для сообщений сервиса.
const (
	LogInitRepo     = "initializing repositories"
	LogInitNotifier = "initializing change notifier"
	LogInitGateway  = "initializing gateway"
	LogClosingDB    = "closing database connections"
	LogClosingRedis = "closing redis connections"
	LogViewer       = "viewer resolved"
)

// runtime собранные зависимости команды.
type runtime struct {
	cfg      *config.Config
	database *db.DB
	redis    *goredis.Client
	users    *postgres.UserRepository
	gateway  *gateway.Gateway
}

// loadConfig загружает конфигурацию и перенастраивает глобальный логгер.
// logPath перенаправляет логи в файл.
func loadConfig(ctx context.Context, flags *rootFlags, logPath string) (*config.Config, error) {
	cfg, err := config.LoadFrom(ctx, flags.envFile)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrLoadConfig, err)
	}

	var paths []string
	if logPath != "" {
		paths = append(paths, logPath)
	}
	log, err := logger.NewLoggerWithOutput(cfg.Logging.GetEnvironment(), cfg.Logging.Level, paths...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrInitLoggerWithConfig, err)
	}
	logger.SetGlobalLogger(log)
	return cfg, nil
}

// openRuntime подключается к Postgres и Redis и собирает шлюз.
func openRuntime(ctx context.Context, cfg *config.Config, migrationsDir string) (*runtime, error) {
	log := logger.Log(ctx)
	retry := cfg.Startup.RetryConfig()

	database, err := db.New(ctx, &cfg.Postgres, retry, migrationsDir)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrInitDB, err)
	}

	rdb, err := dbredis.NewClient(ctx, cfg.Redis.ClientConfig(), retry)
	if err != nil {
		database.Close(ctx)
		return nil, fmt.Errorf("%s: %w", ErrInitRedis, err)
	}

	log.Info(ctx, LogInitRepo)
	repoFactory := postgres.NewRepositoryFactory(database.Pool())

	log.Info(ctx, LogInitNotifier, zap.String("channel_prefix", cfg.Redis.ChannelPrefix))
	notifier := redis.NewNotifier(rdb, cfg.Redis.ChannelPrefix, redis.WithBreaker(cfg.Redis.PublishBreaker()))

	log.Info(ctx, LogInitGateway)
	gw := gateway.New(repoFactory.NoteRepository(), repoFactory.UserRepository(), notifier)

	return &runtime{
		cfg:      cfg,
		database: database,
		redis:    rdb,
		users:    repoFactory.UserRepository(),
		gateway:  gw,
	}, nil
}

// resolveViewer берет пользователя из токена, а без токена ищет email из
// конфигурации в списке допущенных.
func (r *runtime) resolveViewer(ctx context.Context) (entities.Viewer, error) {
	var (
		viewer entities.Viewer
		err    error
	)
	if r.cfg.Viewer.Token != "" {
		viewer, err = services.NewJWT(r.cfg.Viewer.SecretKey).ResolveViewer(ctx, r.cfg.Viewer.Token)
	} else {
		viewer, err = services.ViewerFromDirectory(ctx, r.cfg.Viewer.Email, r.users)
	}
	if err != nil {
		return entities.Viewer{}, fmt.Errorf("%s: %w", ErrResolveViewer, err)
	}

	logger.Log(ctx).Info(ctx, LogViewer,
		zap.String("email", viewer.Email),
		zap.String("role", string(viewer.Role)),
		zap.Bool("authenticated", viewer.Authenticated()))
	return viewer, nil
}

// close ждет завершения живых запросов и закрывает соединения.
func (r *runtime) close(ctx context.Context) error {
	r.gateway.Wait()

	logger.Log(ctx).Info(ctx, LogClosingRedis)
	redisErr := r.redis.Close()

	logger.Log(ctx).Info(ctx, LogClosingDB)
	r.database.Close(ctx)

	return redisErr
}
