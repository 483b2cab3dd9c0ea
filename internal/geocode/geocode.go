package geocode

import (
	"context"
	"fmt"
)

// Place is a resolved geographic entity. Name and Country are always
// non-empty on a successful resolution; Hierarchy may be empty when the
// knowledge base has no administrative subdivision for the entity.
type Place struct {
	WikidataID string `json:"wikidata_id"`
	Name       string `json:"name"`
	Country    string `json:"country"`
	Hierarchy  string `json:"hierarchy"`
}

// Resolver translates a stable external place id into a Place. A failed
// resolution invalidates the whole submission under construction, so
// implementations must never return a partially populated Place.
type Resolver interface {
	Resolve(ctx context.Context, externalID string) (*Place, error)
}

type ResolutionError struct {
	ID  string
	Err error
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("failed to resolve place %s: %v", e.ID, e.Err)
}

func (e *ResolutionError) Unwrap() error {
	return e.Err
}
