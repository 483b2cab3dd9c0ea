package models

import (
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Model is one registered submission. Rows are append-only: ingestion
// admits a model whole or not at all, and never updates it afterwards.
type Model struct {
	bun.BaseModel `bun:"table:models"`

	ID        uuid.UUID         `bun:"id,type:uuid,pk"`
	Flavor    string            `bun:"flavor,notnull"`
	R2        float64           `bun:"r2,notnull"`
	MAE       float64           `bun:"mae,notnull"`
	MAPE      float64           `bun:"mape,notnull"`
	RMSE      float64           `bun:"rmse,notnull"`
	Algorithm string            `bun:"algorithm,notnull"`
	DataYear  int               `bun:"data_year,notnull"`
	Author    string            `bun:"author,notnull"`
	Links     map[string]string `bun:"links,type:jsonb"`
	CreatedAt bun.NullTime      `bun:"created_at,nullzero,default:current_timestamp"`

	Places []*Place `bun:"m2m:model_places,join:Model=Place"`
	Inputs []*Input `bun:"rel:has-many,join:id=model_id"`
}
