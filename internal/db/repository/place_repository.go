package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/marcuszucareli/house-price-app/internal/db/models"
	"github.com/uptrace/bun"
)

type IPlaceRepository interface {
	WithTx(tx *bun.Tx) IPlaceRepository
	WithDB(db *bun.DB) IPlaceRepository
	CreateIgnore(ctx context.Context, place *models.Place) error
	LinkModel(ctx context.Context, modelID uuid.UUID, placeID string) error
	GetByID(ctx context.Context, id string) (*models.Place, error)
	ListCountries(ctx context.Context) ([]string, error)
	ListCitiesByCountry(ctx context.Context, country string) ([]string, error)
}

type PlaceRepository struct {
	db bun.IDB
}

func NewPlaceRepository(db *bun.DB) IPlaceRepository {
	return &PlaceRepository{db: db}
}

// CreateIgnore inserts the place if its id is not registered yet.
// Places are shared across models, so conflicts are not errors.
func (r *PlaceRepository) CreateIgnore(ctx context.Context, place *models.Place) error {
	if place == nil {
		return fmt.Errorf("place is nil")
	}

	_, err := r.db.NewInsert().Model(place).Ignore().Exec(ctx)
	return err
}

func (r *PlaceRepository) LinkModel(ctx context.Context, modelID uuid.UUID, placeID string) error {
	link := &models.ModelPlace{PlaceID: placeID, ModelID: modelID}
	_, err := r.db.NewInsert().Model(link).Exec(ctx)
	return err
}

func (r *PlaceRepository) GetByID(ctx context.Context, id string) (*models.Place, error) {
	var place models.Place
	if err := r.db.NewSelect().Model(&place).Where("id = ?", id).Scan(ctx); err != nil {
		return nil, err
	}

	return &place, nil
}

func (r *PlaceRepository) ListCountries(ctx context.Context) ([]string, error) {
	var countries []string
	err := r.db.NewSelect().
		Model((*models.Place)(nil)).
		ColumnExpr("DISTINCT country").
		OrderExpr("country").
		Scan(ctx, &countries)
	return countries, err
}

func (r *PlaceRepository) ListCitiesByCountry(ctx context.Context, country string) ([]string, error) {
	var cities []string
	query := r.db.NewSelect().
		Model((*models.Place)(nil)).
		ColumnExpr("DISTINCT name").
		OrderExpr("name")

	if country != "" {
		query = query.Where("country = ?", country)
	}

	err := query.Scan(ctx, &cities)
	return cities, err
}

func (r *PlaceRepository) WithTx(tx *bun.Tx) IPlaceRepository {
	return &PlaceRepository{db: tx}
}

func (r *PlaceRepository) WithDB(db *bun.DB) IPlaceRepository {
	return &PlaceRepository{db: db}
}
