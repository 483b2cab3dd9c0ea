package models

import "github.com/uptrace/bun"

// Place is a city shared across models, keyed by its wikidata id.
// Re-ingesting a model that references a known place must not fail or
// duplicate the row, so inserts are always insert-or-ignore.
type Place struct {
	bun.BaseModel `bun:"table:places"`

	ID        string `bun:"id,pk"`
	Name      string `bun:"name,notnull"`
	Country   string `bun:"country,notnull"`
	Hierarchy string `bun:"hierarchy"`
}
