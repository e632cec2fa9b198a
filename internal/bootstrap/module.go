package bootstrap

import (
	"context"
	"log/slog"

	"go.uber.org/fx"
	"gorm.io/gorm"

	"fieldtour/internal/bootstrap/config"
	"fieldtour/internal/bootstrap/database"
	"fieldtour/internal/bootstrap/logging"
	apiinfra "fieldtour/internal/infrastructure/api"
	cacheinfra "fieldtour/internal/infrastructure/cache"
	mediainfra "fieldtour/internal/infrastructure/media"
	sqliterepo "fieldtour/internal/infrastructure/persistence/sqlite/repository"
	sqliteuow "fieldtour/internal/infrastructure/persistence/sqlite/uow"
	"fieldtour/internal/ports"
	"fieldtour/internal/usecase/account"
	syncuc "fieldtour/internal/usecase/sync"
)

var Module = fx.Options(
	fx.Provide(provideConfig),
	fx.Provide(provideDatabase),
	fx.Provide(provideApp),
	fx.Provide(provideMediaStore),
	fx.Provide(provideAPIClient),
	fx.Provide(
		fx.Annotate(
			sqliterepo.NewVisitRepository,
			fx.As(new(ports.VisitRepository)),
		),
	),
	fx.Provide(
		fx.Annotate(
			sqliterepo.NewTourRepository,
			fx.As(new(ports.TourRepository)),
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
			cacheinfra.NewKVCache,
			fx.As(new(ports.Cache)),
		),
	),
	fx.Provide(
		fx.Annotate(
			cacheinfra.NewDraftStore,
			fx.As(new(ports.DraftStore)),
		),
	),
	fx.Provide(syncuc.NewService),
	fx.Provide(account.NewService),
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

func provideApp(cfg config.Config, db *gorm.DB) *App {
	return &App{
		Config: cfg,
		DB:     db,
	}
}

func provideMediaStore(cfg config.Config) ports.MediaStore {
	return mediainfra.NewStore(cfg.Media.Dir)
}

// provideAPIClient binds the bearer credential to the cached token so a
// fresh login is picked up without rebuilding the client.
func provideAPIClient(cfg config.Config, cache ports.Cache) (ports.TourAPI, ports.AccountAPI) {
	client := apiinfra.NewClient(cfg.API.BaseURL, cfg.API.Timeout(), account.TokenSource(cache))
	return client, client
}
