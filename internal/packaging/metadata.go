package packaging

import (
	"github.com/marcuszucareli/house-price-app/internal/geocode"
	"github.com/marcuszucareli/house-price-app/internal/submission"
)

const (
	// MetadataFileName is the fixed name of the metadata document at
	// the archive root.
	MetadataFileName = "model.json"

	// ModelFolderName is the fixed sub-directory holding the model in
	// its native serialized form.
	ModelFolderName = "model"
)

// Metadata is the archive's metadata document: every submission field
// except the live model object. The evaluation sample rides along so
// the ingestion side never recomputes metrics.
type Metadata struct {
	ID         string                 `json:"id"`
	Flavor     string                 `json:"flavor"`
	R2         float64                `json:"r2"`
	MAE        float64                `json:"mae"`
	MAPE       float64                `json:"mape"`
	RMSE       float64                `json:"rmse"`
	Algorithm  string                 `json:"algorithm"`
	DataYear   int                    `json:"data_year"`
	Author     string                 `json:"author"`
	ModelLink  string                 `json:"model_link"`
	Links      map[string]string      `json:"links"`
	Cities     []geocode.Place        `json:"cities"`
	Inputs     []*submission.InputSpec `json:"inputs"`
	Checksum   string                 `json:"checksum"`
	EvalSample *submission.EvalSample `json:"eval_sample"`
}

func NewMetadata(sub *submission.ModelSubmission, checksum string) Metadata {
	return Metadata{
		ID:         sub.ID.String(),
		Flavor:     sub.Flavor,
		R2:         sub.Metrics.R2,
		MAE:        sub.Metrics.MAE,
		MAPE:       sub.Metrics.MAPE,
		RMSE:       sub.Metrics.RMSE,
		Algorithm:  sub.Algorithm,
		DataYear:   sub.DataYear,
		Author:     sub.Author,
		ModelLink:  sub.ModelLink,
		Links:      sub.Links,
		Cities:     sub.Cities,
		Inputs:     sub.Inputs,
		Checksum:   checksum,
		EvalSample: sub.Sample,
	}
}
