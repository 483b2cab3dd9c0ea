package models

import (
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

type ModelPlace struct {
	bun.BaseModel `bun:"table:model_places"`

	ID      int64     `bun:"id,pk,autoincrement"`
	PlaceID string    `bun:"place_id,notnull"`
	ModelID uuid.UUID `bun:"model_id,type:uuid,notnull"`

	Place *Place `bun:"rel:belongs-to,join:place_id=id"`
	Model *Model `bun:"rel:belongs-to,join:model_id=id"`
}
