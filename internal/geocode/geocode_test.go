package geocode_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/marcuszucareli/house-price-app/internal/config"
	"github.com/marcuszucareli/house-price-app/internal/geocode"
	"github.com/smartystreets/goconvey/convey"
)

func entityJSON(id, label string, claims map[string]string) string {
	var claimParts []string
	for property, target := range claims {
		claimParts = append(claimParts, fmt.Sprintf(
			`%q: [{"mainsnak": {"datavalue": {"value": {"id": %q}}}}]`, property, target,
		))
	}

	return fmt.Sprintf(
		`{"entities": {%q: {"labels": {"en": {"value": %q}}, "claims": {%s}}}}`,
		id, label, strings.Join(claimParts, ","),
	)
}

func newWikidataStub(t *testing.T, entities map[string]string) *httptest.Server {
	t.Helper()

	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSuffix(strings.TrimPrefix(r.URL.Path, "/"), ".json")
		body, ok := entities[id]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, body)
	}))
}

func TestStaticResolver(t *testing.T) {
	ctx := context.Background()

	convey.Convey("Given a static resolver with one known place", t, func() {
		resolver := geocode.NewStaticResolver(geocode.Place{
			WikidataID: "Q42800",
			Name:       "Belo Horizonte",
			Country:    "Brazil",
			Hierarchy:  "Minas Gerais",
		})

		convey.Convey("Then the known id resolves", func() {
			place, err := resolver.Resolve(ctx, "Q42800")

			convey.So(err, convey.ShouldBeNil)
			convey.So(place.Name, convey.ShouldEqual, "Belo Horizonte")
			convey.So(place.Country, convey.ShouldEqual, "Brazil")
		})

		convey.Convey("Then an unknown id fails with the offending id attached", func() {
			_, err := resolver.Resolve(ctx, "Q999999")

			var resErr *geocode.ResolutionError
			convey.So(errors.As(err, &resErr), convey.ShouldBeTrue)
			convey.So(resErr.ID, convey.ShouldEqual, "Q999999")
			convey.So(errors.Is(err, geocode.ErrUnknownPlace), convey.ShouldBeTrue)
		})
	})

	convey.Convey("Given a static resolver with a place missing its country", t, func() {
		resolver := geocode.NewStaticResolver(geocode.Place{WikidataID: "Q1", Name: "Nowhere"})

		convey.Convey("Then resolution fails on the empty field", func() {
			_, err := resolver.Resolve(ctx, "Q1")

			convey.So(errors.Is(err, geocode.ErrEmptyPlaceFields), convey.ShouldBeTrue)
		})
	})
}

func TestWikidataResolver(t *testing.T) {
	ctx := context.Background()

	newResolver := func(baseURL string) *geocode.WikidataResolver {
		return geocode.NewWikidataResolver(&config.Config{
			Geocoder: &config.GeocoderConfig{BaseURL: baseURL, TimeoutSeconds: 2},
		})
	}

	convey.Convey("Given an entity endpoint with a city, its country and its admin unit", t, func() {
		server := newWikidataStub(t, map[string]string{
			"Q42800": entityJSON("Q42800", "Belo Horizonte", map[string]string{
				"P17":  "Q155",
				"P131": "Q39109",
			}),
			"Q155":   entityJSON("Q155", "Brazil", nil),
			"Q39109": entityJSON("Q39109", "Minas Gerais", nil),
		})
		defer server.Close()

		convey.Convey("Then the city resolves with country and hierarchy labels", func() {
			place, err := newResolver(server.URL).Resolve(ctx, "Q42800")

			convey.So(err, convey.ShouldBeNil)
			convey.So(place.WikidataID, convey.ShouldEqual, "Q42800")
			convey.So(place.Name, convey.ShouldEqual, "Belo Horizonte")
			convey.So(place.Country, convey.ShouldEqual, "Brazil")
			convey.So(place.Hierarchy, convey.ShouldEqual, "Minas Gerais")
		})
	})

	convey.Convey("Given an entity without a country claim", t, func() {
		server := newWikidataStub(t, map[string]string{
			"Q42800": entityJSON("Q42800", "Belo Horizonte", nil),
		})
		defer server.Close()

		convey.Convey("Then resolution fails on the empty fields", func() {
			_, err := newResolver(server.URL).Resolve(ctx, "Q42800")

			convey.So(errors.Is(err, geocode.ErrEmptyPlaceFields), convey.ShouldBeTrue)
		})
	})

	convey.Convey("Given an endpoint that does not know the entity", t, func() {
		server := newWikidataStub(t, nil)
		defer server.Close()

		convey.Convey("Then resolution fails with the id attached", func() {
			_, err := newResolver(server.URL).Resolve(ctx, "Q42800")

			var resErr *geocode.ResolutionError
			convey.So(errors.As(err, &resErr), convey.ShouldBeTrue)
			convey.So(resErr.ID, convey.ShouldEqual, "Q42800")
		})
	})
}
