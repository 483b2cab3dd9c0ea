package submission

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/marcuszucareli/house-price-app/internal/codec"
	"github.com/marcuszucareli/house-price-app/internal/geocode"
)

// Metrics is the cached score of a model against its evaluation sample,
// computed once at construction.
type Metrics struct {
	MAE  float64 `json:"mae"`
	MAPE float64 `json:"mape"`
	R2   float64 `json:"r2"`
	RMSE float64 `json:"rmse"`
}

// DraftParams is the raw contributor input for the first builder phase.
type DraftParams struct {
	Flavor    string
	ModelLink string
	Algorithm string
	Author    string
	DataYear  int
	Links     map[string]string
	CityIDs   []string
	Inputs    []*InputSpec
}

// Draft is a field-validated submission with resolved places but no
// metrics yet. Evaluate turns it into a ModelSubmission.
type Draft struct {
	Flavor    string
	ModelLink string
	Algorithm string
	Author    string
	DataYear  int
	Links     map[string]string
	Cities    []geocode.Place
	Inputs    []*InputSpec

	modelCodec codec.Codec
}

// NewDraft runs field validation and place resolution. The year check
// runs before anything expensive: a bad year must fail before metric
// computation and before any resolver call.
func NewDraft(ctx context.Context, params DraftParams, resolver geocode.Resolver) (*Draft, error) {
	modelCodec, err := codec.ForFlavor(params.Flavor)
	if err != nil {
		return nil, err
	}

	if params.DataYear > time.Now().Year() {
		return nil, &ValidationError{Field: "data_year", Reason: "must not exceed the current year"}
	}

	if len(params.CityIDs) == 0 {
		return nil, &ValidationError{Field: "cities", Reason: "at least one city is required"}
	}

	if len(params.Inputs) == 0 {
		return nil, &ValidationError{Field: "inputs", Reason: "at least one input is required"}
	}

	cities := make([]geocode.Place, 0, len(params.CityIDs))
	for _, cityID := range params.CityIDs {
		place, err := resolver.Resolve(ctx, cityID)
		if err != nil {
			return nil, err
		}
		cities = append(cities, *place)
	}

	links := params.Links
	if links == nil {
		links = map[string]string{}
	}

	return &Draft{
		Flavor:     params.Flavor,
		ModelLink:  params.ModelLink,
		Algorithm:  params.Algorithm,
		Author:     params.Author,
		DataYear:   params.DataYear,
		Links:      links,
		Cities:     cities,
		Inputs:     params.Inputs,
		modelCodec: modelCodec,
	}, nil
}

// ModelSubmission is a fully validated, scored submission. It is
// append-only from here: packaging serializes it once and ingestion
// admits or rejects it whole.
type ModelSubmission struct {
	ID        uuid.UUID
	Flavor    string
	Metrics   Metrics
	ModelLink string
	Algorithm string
	Author    string
	DataYear  int
	Links     map[string]string
	Cities    []geocode.Place
	Inputs    []*InputSpec
	Sample    *EvalSample

	modelCodec codec.Codec
}

func (s *ModelSubmission) Codec() codec.Codec {
	return s.modelCodec
}

// Evaluate is the second builder phase: it checks the model and sample
// against the draft, scores the model, and returns the submission with
// its metrics cached. Feature and label sizes are validated
// independently so each reports its own error.
func (d *Draft) Evaluate(model codec.Predictor, sample *EvalSample) (*ModelSubmission, error) {
	if model == nil {
		return nil, ErrMissingModel
	}

	if sample == nil {
		return nil, &ValidationError{Field: "x_test", Reason: "an evaluation sample is required"}
	}

	if len(sample.Rows) != SampleSize {
		return nil, &ValidationError{
			Field:  "x_test",
			Reason: fmt.Sprintf("must have %d rows, got %d", SampleSize, len(sample.Rows)),
		}
	}

	if len(sample.Labels) != SampleSize {
		return nil, &ValidationError{
			Field:  "y_test",
			Reason: fmt.Sprintf("must have %d rows, got %d", SampleSize, len(sample.Labels)),
		}
	}

	for i, row := range sample.Rows {
		if len(row) != len(sample.Columns) {
			return nil, &ValidationError{
				Field:  "x_test",
				Reason: fmt.Sprintf("row %d has %d values, want %d", i, len(row), len(sample.Columns)),
			}
		}
	}

	for _, input := range d.Inputs {
		if input.Type == TypeMap {
			if !sample.HasColumn(*input.Lat) {
				return nil, &ValidationError{
					Field:  "inputs",
					Reason: fmt.Sprintf("%s is not a x_test column", *input.Lat),
				}
			}
			if !sample.HasColumn(*input.Lng) {
				return nil, &ValidationError{
					Field:  "inputs",
					Reason: fmt.Sprintf("%s is not a x_test column", *input.Lng),
				}
			}
			continue
		}

		if !sample.HasColumn(input.ColumnName) {
			return nil, &ValidationError{
				Field:  "inputs",
				Reason: fmt.Sprintf("%s is not a x_test column", input.ColumnName),
			}
		}
	}

	metrics, err := computeMetrics(model, sample)
	if err != nil {
		return nil, err
	}

	if metrics.MAPE < 0 || metrics.MAPE > 1 {
		return nil, &ValidationError{Field: "mape", Reason: "must be in decimal form between 0 and 1"}
	}

	if metrics.R2 < -1 || metrics.R2 > 1 {
		return nil, &ValidationError{Field: "r2", Reason: "must be between -1 and 1"}
	}

	return &ModelSubmission{
		Flavor:     d.Flavor,
		Metrics:    metrics,
		ModelLink:  d.ModelLink,
		Algorithm:  d.Algorithm,
		Author:     d.Author,
		DataYear:   d.DataYear,
		Links:      d.Links,
		Cities:     d.Cities,
		Inputs:     d.Inputs,
		Sample:     sample,
		modelCodec: d.modelCodec,
	}, nil
}

func computeMetrics(model codec.Predictor, sample *EvalSample) (Metrics, error) {
	var (
		absSum     float64
		absPctSum  float64
		squaredSum float64
		labelSum   float64
	)

	predictions := make([]float64, len(sample.Rows))
	for i, row := range sample.Rows {
		prediction, err := model.Predict(row)
		if err != nil {
			return Metrics{}, fmt.Errorf("failed to score row %d: %w", i, err)
		}
		predictions[i] = prediction
		labelSum += sample.Labels[i]
	}

	for i, label := range sample.Labels {
		if label == 0 {
			return Metrics{}, &ValidationError{
				Field:  "y_test",
				Reason: fmt.Sprintf("label %d is zero, percentage error is undefined", i),
			}
		}

		diff := label - predictions[i]
		absSum += math.Abs(diff)
		absPctSum += math.Abs(diff) / math.Abs(label)
		squaredSum += diff * diff
	}

	n := float64(len(sample.Labels))
	mean := labelSum / n

	var totalSquares float64
	for _, label := range sample.Labels {
		totalSquares += (label - mean) * (label - mean)
	}

	if totalSquares == 0 {
		return Metrics{}, &ValidationError{Field: "y_test", Reason: "labels have zero variance"}
	}

	return Metrics{
		MAE:  absSum / n,
		MAPE: absPctSum / n,
		R2:   1 - squaredSum/totalSquares,
		RMSE: math.Sqrt(squaredSum / n),
	}, nil
}
