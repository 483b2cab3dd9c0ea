package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/marcuszucareli/house-price-app/internal/db/models"
	"github.com/uptrace/bun"
)

// The catalog is append-only from this core's point of view, so the
// repositories expose no update operations.
type IModelRepository interface {
	WithTx(tx *bun.Tx) IModelRepository
	WithDB(db *bun.DB) IModelRepository
	Create(ctx context.Context, model *models.Model) (*models.Model, error)
	GetByID(ctx context.Context, id string) (*models.Model, error)
	Exists(ctx context.Context, id string) (bool, error)
	ListByCity(ctx context.Context, city string, orderBy string) ([]models.Model, error)
}

type ModelRepository struct {
	db bun.IDB
}

func NewModelRepository(db *bun.DB) IModelRepository {
	return &ModelRepository{db: db}
}

func (r *ModelRepository) Create(ctx context.Context, model *models.Model) (*models.Model, error) {
	if model == nil {
		return nil, fmt.Errorf("model is nil")
	}

	if _, err := r.db.NewInsert().Model(model).Exec(ctx); err != nil {
		return nil, err
	}

	return model, nil
}

func (r *ModelRepository) GetByID(ctx context.Context, id string) (*models.Model, error) {
	var model models.Model
	if err := r.db.NewSelect().Model(&model).Where("id = ?", id).Scan(ctx); err != nil {
		return nil, err
	}

	return &model, nil
}

func (r *ModelRepository) Exists(ctx context.Context, id string) (bool, error) {
	err := r.db.NewSelect().
		Model((*models.Model)(nil)).
		Column("id").
		Where("id = ?", id).
		Scan(ctx, &id)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	return true, nil
}

// ListByCity returns the models registered for a city, ordered by the
// given expression. The caller is responsible for whitelisting orderBy;
// it is interpolated into the query.
func (r *ModelRepository) ListByCity(ctx context.Context, city string, orderBy string) ([]models.Model, error) {
	var found []models.Model
	err := r.db.NewSelect().
		Model(&found).
		Where("id IN (?)", r.db.NewSelect().
			Model((*models.ModelPlace)(nil)).
			Column("model_id").
			Join("JOIN places AS p ON p.id = model_place.place_id").
			Where("p.name = ?", city)).
		OrderExpr(orderBy).
		Scan(ctx)
	return found, err
}

func (r *ModelRepository) WithTx(tx *bun.Tx) IModelRepository {
	return &ModelRepository{db: tx}
}

func (r *ModelRepository) WithDB(db *bun.DB) IModelRepository {
	return &ModelRepository{db: db}
}
