package geocode

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/marcuszucareli/house-price-app/internal/config"
)

const (
	countryProperty   = "P17"
	adminUnitProperty = "P131"
)

var ErrEmptyPlaceFields = errors.New("place has no name or country")

// WikidataResolver resolves a place through the wikidata entity-data
// endpoint. Country and administrative hierarchy are claims pointing at
// other entities, so a full resolution takes up to three requests.
type WikidataResolver struct {
	baseURL string
	client  *http.Client
}

func NewWikidataResolver(cfg *config.Config) *WikidataResolver {
	baseURL := config.DefaultGeocoderBaseURL
	timeout := config.DefaultGeocoderTimeoutSeconds

	if cfg.Geocoder != nil {
		if cfg.Geocoder.BaseURL != "" {
			baseURL = cfg.Geocoder.BaseURL
		}
		if cfg.Geocoder.TimeoutSeconds > 0 {
			timeout = cfg.Geocoder.TimeoutSeconds
		}
	}

	return &WikidataResolver{
		baseURL: baseURL,
		client:  &http.Client{Timeout: time.Duration(timeout) * time.Second},
	}
}

func (r *WikidataResolver) Resolve(ctx context.Context, externalID string) (*Place, error) {
	entity, err := r.fetchEntity(ctx, externalID)
	if err != nil {
		return nil, &ResolutionError{ID: externalID, Err: err}
	}

	name := entity.label()

	var country string
	if countryID := entity.claimTarget(countryProperty); countryID != "" {
		countryEntity, err := r.fetchEntity(ctx, countryID)
		if err != nil {
			return nil, &ResolutionError{ID: externalID, Err: err}
		}
		country = countryEntity.label()
	}

	var hierarchy string
	if adminID := entity.claimTarget(adminUnitProperty); adminID != "" {
		adminEntity, err := r.fetchEntity(ctx, adminID)
		if err != nil {
			return nil, &ResolutionError{ID: externalID, Err: err}
		}
		hierarchy = adminEntity.label()
	}

	if name == "" || country == "" {
		return nil, &ResolutionError{ID: externalID, Err: ErrEmptyPlaceFields}
	}

	return &Place{
		WikidataID: externalID,
		Name:       name,
		Country:    country,
		Hierarchy:  hierarchy,
	}, nil
}

type entity struct {
	Labels map[string]struct {
		Value string `json:"value"`
	}
	Claims map[string][]struct {
		Mainsnak struct {
			Datavalue struct {
				Value struct {
					ID string `json:"id"`
				} `json:"datavalue"`
			} `json:"mainsnak"`
		}
	}
}

func (e *entity) label() string {
	if label, ok := e.Labels["en"]; ok {
		return label.Value
	}

	return ""
}

func (e *entity) claimTarget(property string) string {
	claims, ok := e.Claims[property]
	if !ok || len(claims) == 0 {
		return ""
	}

	return claims[0].Mainsnak.Datavalue.Value.ID
}

func (r *WikidataResolver) fetchEntity(ctx context.Context, id string) (*entity, error) {
	url := fmt.Sprintf("%s/%s.json", r.baseURL, id)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	res, err := r.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("wikidata returned status %d for %s", res.StatusCode, id)
	}

	var doc struct {
		Entities map[string]entity `json:"entities"`
	}
	if err := json.NewDecoder(res.Body).Decode(&doc); err != nil {
		return nil, err
	}

	found, ok := doc.Entities[id]
	if !ok {
		return nil, fmt.Errorf("entity %s not found in response", id)
	}

	return &found, nil
}
