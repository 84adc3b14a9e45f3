package bootstrap

import (
	"context"
	"log/slog"
	"strings"

	"go.uber.org/fx"
	"gorm.io/gorm"

	"github.com/thiagodalladea/bebida-segura/internal/bootstrap/config"
	"github.com/thiagodalladea/bebida-segura/internal/bootstrap/database"
	"github.com/thiagodalladea/bebida-segura/internal/bootstrap/logging"
	cacheinfra "github.com/thiagodalladea/bebida-segura/internal/infrastructure/cache"
	"github.com/thiagodalladea/bebida-segura/internal/infrastructure/notify"
	sqliterepo "github.com/thiagodalladea/bebida-segura/internal/infrastructure/persistence/sqlite/repository"
	sqliteuow "github.com/thiagodalladea/bebida-segura/internal/infrastructure/persistence/sqlite/uow"
	"github.com/thiagodalladea/bebida-segura/internal/ports"
	"github.com/thiagodalladea/bebida-segura/internal/usecase/tracking"
)

var Module = fx.Options(
	fx.Provide(provideConfig),
	fx.Provide(provideDatabase),
	fx.Provide(provideApp),
	fx.Provide(
		fx.Annotate(
			sqliterepo.NewTrackingRepository,
			fx.As(new(ports.TrackingRepository)),
		),
	),
	fx.Provide(
		fx.Annotate(
			sqliteuow.NewUnitOfWork,
			fx.As(new(ports.UnitOfWork)),
		),
	),
	fx.Provide(
		fx.Annotate(
			cacheinfra.NewSQLiteCache,
			fx.As(new(ports.Cache)),
		),
	),
	fx.Provide(provideNotifier),
	fx.Provide(provideTrackingService),
)

type configParams struct {
	fx.In

	Ctx        context.Context
	ConfigFile string `name:"configFile"`
}

func provideConfig(p configParams) (config.Config, error) {
	ctx := logging.WithAttrs(p.Ctx, slog.String("component", "bootstrap.fx"))
	return config.Load(ctx, p.ConfigFile)
}

func provideDatabase(lc fx.Lifecycle, ctx context.Context, cfg config.Config) (*gorm.DB, error) {
	logCtx := logging.WithAttrs(ctx, slog.String("component", "bootstrap.fx"))

	db, err := database.Open(logCtx, cfg.Database)
	if err != nil {
		return nil, err
	}

	lc.Append(fx.Hook{
		OnStop: func(_ context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.Close()
		},
	})

	return db, nil
}

func provideNotifier(lc fx.Lifecycle, ctx context.Context, cfg config.Config) (ports.Notifier, error) {
	url := strings.TrimSpace(cfg.Notify.NATSURL)
	if url == "" {
		return notify.NopNotifier{}, nil
	}

	notifier, err := notify.NewNATSNotifier(url, cfg.Notify.SubjectPrefix)
	if err != nil {
		return nil, err
	}
	logging.Info(
		logging.WithAttrs(ctx, slog.String("component", "bootstrap.fx")),
		"nats notifier connected",
		slog.String("url", url),
		slog.String("subject_prefix", cfg.Notify.SubjectPrefix),
	)

	lc.Append(fx.Hook{
		OnStop: func(_ context.Context) error {
			notifier.Close()
			return nil
		},
	})

	return notifier, nil
}

func provideTrackingService(
	repo ports.TrackingRepository,
	uow ports.UnitOfWork,
	cache ports.Cache,
	notifier ports.Notifier,
	cfg config.Config,
) *tracking.Service {
	return tracking.NewService(repo, uow, cache, notifier, cfg.Quality.MethanolLimitPPM)
}

func provideApp(cfg config.Config, db *gorm.DB) *App {
	return &App{
		Config: cfg,
		DB:     db,
	}
}
