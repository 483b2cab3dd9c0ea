package migrations

import (
	"context"

	"github.com/marcuszucareli/house-price-app/internal/db/models"
	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		tables := []interface{}{
			(*models.Model)(nil),
			(*models.Place)(nil),
			(*models.ModelPlace)(nil),
			(*models.Input)(nil),
		}

		for _, table := range tables {
			if _, err := db.NewCreateTable().
				Model(table).
				IfNotExists().
				WithForeignKeys().
				Exec(ctx); err != nil {
				return err
			}
		}

		return nil
	}, func(ctx context.Context, db *bun.DB) error {
		tables := []interface{}{
			(*models.Input)(nil),
			(*models.ModelPlace)(nil),
			(*models.Place)(nil),
			(*models.Model)(nil),
		}

		for _, table := range tables {
			if _, err := db.NewDropTable().
				Model(table).
				IfExists().
				Exec(ctx); err != nil {
				return err
			}
		}

		return nil
	})
}
