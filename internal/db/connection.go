package db

import (
	"context"
	"fmt"

	"github.com/marcuszucareli/house-price-app/internal/config"
	"github.com/marcuszucareli/house-price-app/internal/db/drivers"
	"github.com/marcuszucareli/house-price-app/internal/db/models"
)

func NewConnection(ctx context.Context, config *config.Config) (drivers.Driver, error) {
	name := config.DB.Driver

	var (
		driver drivers.Driver
		err    error
	)
	if name == "sqlite" {
		driver, err = drivers.NewSQLiteDriver(ctx, config.DB.DSN)
	} else if name == "pg" {
		driver, err = drivers.NewPGDriver(ctx, config.DB.DSN)
	} else {
		return nil, fmt.Errorf("invalid database driver: %s", name)
	}
	if err != nil {
		return nil, err
	}

	// The m2m junction table must be registered before any query uses
	// the Model.Places relation.
	driver.GetDB().RegisterModel((*models.ModelPlace)(nil))

	return driver, nil
}
