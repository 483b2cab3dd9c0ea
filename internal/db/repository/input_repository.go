package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/marcuszucareli/house-price-app/internal/db/models"
	"github.com/uptrace/bun"
)

type IInputRepository interface {
	WithTx(tx *bun.Tx) IInputRepository
	WithDB(db *bun.DB) IInputRepository
	Create(ctx context.Context, input *models.Input) error
	ListByModel(ctx context.Context, modelID uuid.UUID) ([]models.Input, error)
}

type InputRepository struct {
	db bun.IDB
}

func NewInputRepository(db *bun.DB) IInputRepository {
	return &InputRepository{db: db}
}

func (r *InputRepository) Create(ctx context.Context, input *models.Input) error {
	if input == nil {
		return fmt.Errorf("input is nil")
	}

	_, err := r.db.NewInsert().Model(input).Exec(ctx)
	return err
}

// ListByModel returns inputs in insertion order. Ingestion inserts them
// sorted by input type, so the order read back is the documented
// type order.
func (r *InputRepository) ListByModel(ctx context.Context, modelID uuid.UUID) ([]models.Input, error) {
	var inputs []models.Input
	err := r.db.NewSelect().
		Model(&inputs).
		Where("model_id = ?", modelID).
		OrderExpr("id").
		Scan(ctx)
	return inputs, err
}

func (r *InputRepository) WithTx(tx *bun.Tx) IInputRepository {
	return &InputRepository{db: tx}
}

func (r *InputRepository) WithDB(db *bun.DB) IInputRepository {
	return &InputRepository{db: db}
}
