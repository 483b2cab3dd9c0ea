package app

import (
	"context"
	"fmt"

	"github.com/marcuszucareli/house-price-app/internal/config"
	"github.com/marcuszucareli/house-price-app/internal/db"
	"github.com/marcuszucareli/house-price-app/internal/db/drivers"
	"github.com/marcuszucareli/house-price-app/internal/db/models"
	"github.com/marcuszucareli/house-price-app/internal/db/repository"
	"github.com/marcuszucareli/house-price-app/internal/services/filestorage"
	"github.com/marcuszucareli/house-price-app/pkg/logger"
	"github.com/uptrace/bun"
	"go.uber.org/zap"
)

type App struct {
	db         *bun.DB
	config     *config.Config
	ctx        context.Context
	cancelFunc context.CancelFunc

	FileStorage filestorage.FileStorage
	Logger      *zap.Logger

	ModelRepository repository.IModelRepository
	PlaceRepository repository.IPlaceRepository
	InputRepository repository.IInputRepository
}

// Option funcs used to initialize the App struct
type OptionFunc func(app *App) error

func WithDB(driver drivers.Driver) OptionFunc {
	return func(app *App) error {
		app.db = driver.GetDB()
		app.initRepositories()
		return nil
	}
}

func WithLogger(logger *zap.Logger) OptionFunc {
	return func(app *App) error {
		app.Logger = logger
		return nil
	}
}

func WithDBInitialization() OptionFunc {
	return func(app *App) error {
		dbConn, err := db.NewConnection(app.ctx, app.config)
		if err != nil {
			return err
		}
		app.db = dbConn.GetDB()

		// Ensure tables exist
		err = app.db.RunInTx(app.ctx, nil, func(ctx context.Context, tx bun.Tx) error {
			tables := []interface{}{
				(*models.Model)(nil),
				(*models.Place)(nil),
				(*models.ModelPlace)(nil),
				(*models.Input)(nil),
			}

			for _, table := range tables {
				if _, err := tx.NewCreateTable().
					Model(table).
					IfNotExists().
					WithForeignKeys().
					Exec(ctx); err != nil {
					return fmt.Errorf("failed to create table: %w", err)
				}
			}
			return nil
		})
		if err != nil {
			return err
		}

		app.initRepositories()

		return nil
	}
}

func WithFileStorage() OptionFunc {
	return func(app *App) error {
		storage, err := filestorage.NewFileStorage(app.Config())
		if err != nil {
			return err
		}
		app.FileStorage = storage
		return nil
	}
}

func NewApp(cfg *config.Config, options ...OptionFunc) (*App, error) {
	ctx, cancel := context.WithCancel(context.Background())

	app := &App{
		config:     cfg,
		ctx:        ctx,
		cancelFunc: cancel,
	}

	if app.Logger == nil {
		app.Logger = logger.MustNewLogger(cfg)
	}

	for _, option := range options {
		if err := option(app); err != nil {
			cancel()
			return nil, err
		}
	}

	return app, nil
}

func (app *App) initRepositories() {
	app.ModelRepository = repository.NewModelRepository(app.db)
	app.PlaceRepository = repository.NewPlaceRepository(app.db)
	app.InputRepository = repository.NewInputRepository(app.db)
}

func (app *App) Config() *config.Config {
	return app.config
}

func (app *App) DB() *bun.DB {
	return app.db
}

func (app *App) Context() context.Context {
	return app.ctx
}

func (app *App) Close() {
	if app.db != nil {
		app.db.Close()
	}

	app.cancelFunc()
}
