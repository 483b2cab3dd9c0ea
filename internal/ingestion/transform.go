package ingestion

import (
	"fmt"
	"sort"

	"github.com/google/uuid"

	"github.com/marcuszucareli/house-price-app/internal/db/models"
	"github.com/marcuszucareli/house-price-app/internal/packaging"
	"github.com/marcuszucareli/house-price-app/internal/submission"
)

type catalogRows struct {
	model  *models.Model
	places []*models.Place
	inputs []*models.Input
}

// metadataToRows projects the metadata document into the catalog's row
// shapes. Inputs are sorted by the documented type order so readers get
// a deterministic sequence; the sort is stable within a type.
func metadataToRows(metadata *packaging.Metadata) (*catalogRows, error) {
	modelID, err := uuid.Parse(metadata.ID)
	if err != nil {
		return nil, fmt.Errorf("metadata id %q is not a valid uuid: %w", metadata.ID, err)
	}

	model := &models.Model{
		ID:        modelID,
		Flavor:    metadata.Flavor,
		R2:        metadata.R2,
		MAE:       metadata.MAE,
		MAPE:      metadata.MAPE,
		RMSE:      metadata.RMSE,
		Algorithm: metadata.Algorithm,
		DataYear:  metadata.DataYear,
		Author:    metadata.Author,
		Links:     metadata.Links,
	}

	places := make([]*models.Place, 0, len(metadata.Cities))
	for _, city := range metadata.Cities {
		places = append(places, &models.Place{
			ID:        city.WikidataID,
			Name:      city.Name,
			Country:   city.Country,
			Hierarchy: city.Hierarchy,
		})
	}

	specs := make([]*submission.InputSpec, len(metadata.Inputs))
	copy(specs, metadata.Inputs)
	sort.SliceStable(specs, func(i, j int) bool {
		return submission.TypeRank(specs[i].Type) < submission.TypeRank(specs[j].Type)
	})

	inputs := make([]*models.Input, 0, len(specs))
	for _, spec := range specs {
		if submission.TypeRank(spec.Type) < 0 {
			return nil, fmt.Errorf("metadata declares unknown input type %q", spec.Type)
		}

		input := &models.Input{
			ModelID:    modelID,
			ColumnName: spec.ColumnName,
			Label:      spec.Label,
			Type:       string(spec.Type),
			Options:    spec.Options,
		}
		if spec.Lat != nil {
			input.Lat = *spec.Lat
		}
		if spec.Lng != nil {
			input.Lng = *spec.Lng
		}
		if spec.Description != nil {
			input.Description = *spec.Description
		}
		if spec.Unit != nil {
			input.Unit = *spec.Unit
		}

		inputs = append(inputs, input)
	}

	return &catalogRows{
		model:  model,
		places: places,
		inputs: inputs,
	}, nil
}
