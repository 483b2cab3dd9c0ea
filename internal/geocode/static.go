package geocode

import (
	"context"
	"errors"
)

var ErrUnknownPlace = errors.New("unknown place id")

// StaticResolver resolves places from an in-memory table. Used in tests
// and dev environments to keep the external knowledge base out of the
// loop.
type StaticResolver struct {
	places map[string]Place
}

func NewStaticResolver(places ...Place) *StaticResolver {
	table := make(map[string]Place, len(places))
	for _, place := range places {
		table[place.WikidataID] = place
	}

	return &StaticResolver{places: table}
}

func (r *StaticResolver) Resolve(ctx context.Context, externalID string) (*Place, error) {
	place, ok := r.places[externalID]
	if !ok {
		return nil, &ResolutionError{ID: externalID, Err: ErrUnknownPlace}
	}

	if place.Name == "" || place.Country == "" {
		return nil, &ResolutionError{ID: externalID, Err: ErrEmptyPlaceFields}
	}

	return &place, nil
}
