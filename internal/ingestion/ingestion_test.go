package ingestion_test

import (
	"archive/zip"
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/smartystreets/goconvey/convey"
	"go.uber.org/zap"

	"github.com/marcuszucareli/house-price-app/internal/app"
	"github.com/marcuszucareli/house-price-app/internal/codec"
	"github.com/marcuszucareli/house-price-app/internal/config"
	"github.com/marcuszucareli/house-price-app/internal/db/models"
	"github.com/marcuszucareli/house-price-app/internal/geocode"
	"github.com/marcuszucareli/house-price-app/internal/ingestion"
	"github.com/marcuszucareli/house-price-app/internal/packaging"
	"github.com/marcuszucareli/house-price-app/internal/submission"
)

func newTestConfig(t *testing.T) *config.Config {
	t.Helper()

	root := t.TempDir()
	inbound := filepath.Join(root, "ingestion")
	storage := filepath.Join(root, "storage")
	temp := filepath.Join(root, "temp")
	for _, dir := range []string{inbound, storage, temp} {
		if err := os.MkdirAll(dir, os.ModePerm); err != nil {
			t.Fatalf("failed to create %s: %v", dir, err)
		}
	}

	return &config.Config{
		Environment: "test",
		InboundDir:  inbound,
		StorageDir:  storage,
		TempDir:     temp,
		Filesystem:  config.FilesystemLocal,
		DB:          &config.DBConfig{Driver: "sqlite", DSN: ":memory:"},
	}
}

func newTestApp(t *testing.T, cfg *config.Config) *app.App {
	t.Helper()

	application, err := app.NewApp(cfg,
		app.WithLogger(zap.NewNop()),
		app.WithDBInitialization(),
		app.WithFileStorage(),
	)
	if err != nil {
		t.Fatalf("failed to build app: %v", err)
	}
	t.Cleanup(application.Close)

	return application
}

func newIngestor(application *app.App) *ingestion.Ingestor {
	return ingestion.NewIngestor(
		application.DB(),
		application.Config(),
		application.FileStorage,
		application.Logger,
	)
}

// buildSubmission declares the inputs out of type order on purpose:
// reading them back in bool, int, float, categorical, map order is part
// of what the round-trip test checks.
func buildSubmission(t *testing.T) (*submission.ModelSubmission, codec.Predictor) {
	t.Helper()

	lat, lng := "latitude", "longitude"
	unit := "m²"
	description := "Property neighbourhood"

	resolver := geocode.NewStaticResolver(
		geocode.Place{WikidataID: "Q42800", Name: "Belo Horizonte", Country: "Brazil", Hierarchy: "Minas Gerais"},
		geocode.Place{WikidataID: "Q1439211", Name: "Três Corações", Country: "Brazil", Hierarchy: "Minas Gerais"},
	)

	draft, err := submission.NewDraft(context.Background(), submission.DraftParams{
		Flavor:    codec.FlavorLinear,
		ModelLink: "https://example.com/models/bh",
		Algorithm: "LinearRegression",
		Author:    "marcus",
		DataYear:  time.Now().Year(),
		Links:     map[string]string{"github": "https://github.com/marcuszucareli"},
		CityIDs:   []string{"Q42800", "Q1439211"},
		Inputs: []*submission.InputSpec{
			{ColumnName: "area_m2", Label: "Area", Type: submission.TypeFloat, Unit: &unit},
			{Lat: &lat, Lng: &lng, Label: "Coordinates", Type: submission.TypeMap},
			{ColumnName: "neighbourhood", Label: "Neighbourhood", Type: submission.TypeCategorical,
				Options: []string{"Morumbi", "América"}, Description: &description},
			{ColumnName: "is_new", Label: "Is your house new?", Type: submission.TypeBool},
			{ColumnName: "n_bedrooms", Label: "Bedrooms", Type: submission.TypeInt},
		},
	}, resolver)
	if err != nil {
		t.Fatalf("failed to build draft: %v", err)
	}

	columns := []string{"area_m2", "latitude", "longitude", "neighbourhood", "is_new", "n_bedrooms"}
	weights := []float64{2, 1, 1, 5, 8, 3}
	model := &codec.LinearModel{Weights: weights, Bias: 10}

	rows := make([][]float64, submission.SampleSize)
	labels := make([]float64, submission.SampleSize)
	for i := range rows {
		row := []float64{
			40 + float64(i),
			-19.9 - float64(i%10)/100,
			-43.9 - float64(i%10)/100,
			float64(i % 2),
			float64(i % 2),
			float64(1 + i%4),
		}
		rows[i] = row

		label := 10.0
		for j, weight := range weights {
			label += weight * row[j]
		}
		labels[i] = label
	}

	sub, err := draft.Evaluate(model, &submission.EvalSample{
		Columns: columns,
		Rows:    rows,
		Labels:  labels,
	})
	if err != nil {
		t.Fatalf("failed to evaluate submission: %v", err)
	}

	return sub, model
}

func packageIntoInbound(t *testing.T, cfg *config.Config) (*submission.ModelSubmission, codec.Predictor, string) {
	t.Helper()

	sub, model := buildSubmission(t)
	archivePath, err := packaging.Package(sub, model, cfg.InboundDir)
	if err != nil {
		t.Fatalf("failed to package submission: %v", err)
	}

	return sub, model, archivePath
}

func TestIngestionRoundTrip(t *testing.T) {
	ctx := context.Background()

	convey.Convey("Given a packaged submission waiting in the inbound directory", t, func() {
		cfg := newTestConfig(t)
		application := newTestApp(t, cfg)
		sub, model, archivePath := packageIntoInbound(t, cfg)

		convey.Convey("When it is ingested", func() {
			report, err := newIngestor(application).Run(ctx)

			convey.So(err, convey.ShouldBeNil)
			convey.So(report.State, convey.ShouldEqual, ingestion.StateCommitted)
			convey.So(report.ID, convey.ShouldEqual, sub.ID.String())

			convey.Convey("Then the artifact tree is in permanent storage", func() {
				convey.So(report.StoragePath, convey.ShouldEqual, filepath.Join(cfg.StorageDir, sub.ID.String()))

				_, err := os.Stat(filepath.Join(report.StoragePath, packaging.MetadataFileName))
				convey.So(err, convey.ShouldBeNil)

				_, err = os.Stat(filepath.Join(report.StoragePath, packaging.ModelFolderName, codec.ModelFileName))
				convey.So(err, convey.ShouldBeNil)
			})

			convey.Convey("Then the stored model predicts like the original", func() {
				loaded, err := sub.Codec().Load(filepath.Join(report.StoragePath, packaging.ModelFolderName))
				convey.So(err, convey.ShouldBeNil)

				features := sub.Sample.Rows[0]
				want, err := model.Predict(features)
				convey.So(err, convey.ShouldBeNil)

				got, err := loaded.Predict(features)
				convey.So(err, convey.ShouldBeNil)
				convey.So(got, convey.ShouldAlmostEqual, want)
			})

			convey.Convey("Then the inbound slot is clear again", func() {
				_, err := os.Stat(archivePath)
				convey.So(os.IsNotExist(err), convey.ShouldBeTrue)
			})

			convey.Convey("Then the catalog row carries every submission field", func() {
				row, err := application.ModelRepository.GetByID(ctx, sub.ID.String())

				convey.So(err, convey.ShouldBeNil)
				convey.So(row.Flavor, convey.ShouldEqual, codec.FlavorLinear)
				convey.So(row.Algorithm, convey.ShouldEqual, "LinearRegression")
				convey.So(row.Author, convey.ShouldEqual, "marcus")
				convey.So(row.DataYear, convey.ShouldEqual, sub.DataYear)
				convey.So(row.R2, convey.ShouldAlmostEqual, sub.Metrics.R2)
				convey.So(row.MAE, convey.ShouldAlmostEqual, sub.Metrics.MAE)
				convey.So(row.MAPE, convey.ShouldAlmostEqual, sub.Metrics.MAPE)
				convey.So(row.RMSE, convey.ShouldAlmostEqual, sub.Metrics.RMSE)
				convey.So(row.Links["github"], convey.ShouldEqual, "https://github.com/marcuszucareli")
			})

			convey.Convey("Then both places exist and are linked", func() {
				place, err := application.PlaceRepository.GetByID(ctx, "Q42800")
				convey.So(err, convey.ShouldBeNil)
				convey.So(place.Name, convey.ShouldEqual, "Belo Horizonte")
				convey.So(place.Country, convey.ShouldEqual, "Brazil")

				countries, err := application.PlaceRepository.ListCountries(ctx)
				convey.So(err, convey.ShouldBeNil)
				convey.So(countries, convey.ShouldResemble, []string{"Brazil"})

				cities, err := application.PlaceRepository.ListCitiesByCountry(ctx, "Brazil")
				convey.So(err, convey.ShouldBeNil)
				convey.So(cities, convey.ShouldResemble, []string{"Belo Horizonte", "Três Corações"})
			})

			convey.Convey("Then inputs read back in type order regardless of declaration order", func() {
				inputs, err := application.InputRepository.ListByModel(ctx, sub.ID)

				convey.So(err, convey.ShouldBeNil)
				convey.So(inputs, convey.ShouldHaveLength, 5)

				gotTypes := make([]string, len(inputs))
				for i, input := range inputs {
					gotTypes[i] = input.Type
				}
				convey.So(gotTypes, convey.ShouldResemble, []string{"bool", "int", "float", "categorical", "map"})

				convey.So(inputs[0].ColumnName, convey.ShouldEqual, "is_new")
				convey.So(inputs[2].Unit, convey.ShouldEqual, "m²")
				convey.So(inputs[3].Options, convey.ShouldResemble, []string{"Morumbi", "América"})
				convey.So(inputs[4].Lat, convey.ShouldEqual, "latitude")
				convey.So(inputs[4].Lng, convey.ShouldEqual, "longitude")
			})
		})
	})
}

func TestIngestionDuplicate(t *testing.T) {
	ctx := context.Background()

	convey.Convey("Given an already ingested submission", t, func() {
		cfg := newTestConfig(t)
		application := newTestApp(t, cfg)
		sub, model, _ := packageIntoInbound(t, cfg)

		_, err := newIngestor(application).Run(ctx)
		convey.So(err, convey.ShouldBeNil)

		convey.Convey("When the same archive is dropped in again", func() {
			_, err := packaging.Package(sub, model, cfg.InboundDir)
			convey.So(err, convey.ShouldBeNil)

			report, err := newIngestor(application).Run(ctx)

			convey.Convey("Then it is rejected as a duplicate and nothing changes", func() {
				var dupErr *ingestion.DuplicateModelError
				convey.So(errors.As(err, &dupErr), convey.ShouldBeTrue)
				convey.So(dupErr.ID, convey.ShouldEqual, sub.ID.String())
				convey.So(report.State, convey.ShouldEqual, ingestion.StateRejected)

				inputs, err := application.InputRepository.ListByModel(ctx, sub.ID)
				convey.So(err, convey.ShouldBeNil)
				convey.So(inputs, convey.ShouldHaveLength, 5)
			})
		})
	})
}

func TestIngestionPreflight(t *testing.T) {
	ctx := context.Background()

	convey.Convey("Given an empty inbound directory", t, func() {
		cfg := newTestConfig(t)
		application := newTestApp(t, cfg)

		convey.Convey("Then ingestion is rejected", func() {
			report, err := newIngestor(application).Run(ctx)

			convey.So(errors.Is(err, ingestion.ErrEmptyInbound), convey.ShouldBeTrue)
			convey.So(report.State, convey.ShouldEqual, ingestion.StateRejected)
		})
	})

	convey.Convey("Given two archives in the inbound directory", t, func() {
		cfg := newTestConfig(t)
		application := newTestApp(t, cfg)
		packageIntoInbound(t, cfg)
		packageIntoInbound(t, cfg)

		convey.Convey("Then ingestion refuses to pick one", func() {
			_, err := newIngestor(application).Run(ctx)

			convey.So(errors.Is(err, ingestion.ErrAmbiguousInbound), convey.ShouldBeTrue)
		})
	})

	convey.Convey("Given a file that only pretends to be an archive", t, func() {
		cfg := newTestConfig(t)
		application := newTestApp(t, cfg)

		fake := filepath.Join(cfg.InboundDir, uuid.NewString()+".zip")
		convey.So(os.WriteFile(fake, []byte("not an archive at all"), 0644), convey.ShouldBeNil)

		convey.Convey("Then the sniffed type rejects it", func() {
			_, err := newIngestor(application).Run(ctx)

			var archiveErr *ingestion.NotAnArchiveError
			convey.So(errors.As(err, &archiveErr), convey.ShouldBeTrue)
			convey.So(archiveErr.Path, convey.ShouldEqual, fake)
		})
	})
}

func TestIngestionIDMismatch(t *testing.T) {
	ctx := context.Background()

	convey.Convey("Given an archive renamed to a different id", t, func() {
		cfg := newTestConfig(t)
		application := newTestApp(t, cfg)
		sub, _, archivePath := packageIntoInbound(t, cfg)

		otherID := uuid.NewString()
		renamed := filepath.Join(cfg.InboundDir, otherID+".zip")
		convey.So(os.Rename(archivePath, renamed), convey.ShouldBeNil)

		convey.Convey("Then ingestion rejects the archive and leaves it in place", func() {
			report, err := newIngestor(application).Run(ctx)

			var mismatchErr *ingestion.IDMismatchError
			convey.So(errors.As(err, &mismatchErr), convey.ShouldBeTrue)
			convey.So(mismatchErr.FileID, convey.ShouldEqual, otherID)
			convey.So(mismatchErr.MetadataID, convey.ShouldEqual, sub.ID.String())
			convey.So(report.State, convey.ShouldEqual, ingestion.StateRejected)

			_, statErr := os.Stat(renamed)
			convey.So(statErr, convey.ShouldBeNil)

			registered, err := application.ModelRepository.Exists(ctx, sub.ID.String())
			convey.So(err, convey.ShouldBeNil)
			convey.So(registered, convey.ShouldBeFalse)
		})
	})
}

func TestIngestionChecksumMismatch(t *testing.T) {
	ctx := context.Background()

	convey.Convey("Given an archive whose artifact does not match its checksum", t, func() {
		cfg := newTestConfig(t)
		application := newTestApp(t, cfg)
		sub, _, archivePath := packageIntoInbound(t, cfg)

		tamperChecksum(t, archivePath)

		convey.Convey("Then ingestion rejects the archive before any catalog write", func() {
			_, err := newIngestor(application).Run(ctx)

			var checksumErr *ingestion.ChecksumMismatchError
			convey.So(errors.As(err, &checksumErr), convey.ShouldBeTrue)
			convey.So(checksumErr.ID, convey.ShouldEqual, sub.ID.String())

			registered, err := application.ModelRepository.Exists(ctx, sub.ID.String())
			convey.So(err, convey.ShouldBeNil)
			convey.So(registered, convey.ShouldBeFalse)
		})
	})
}

func TestIngestionAtomicity(t *testing.T) {
	ctx := context.Background()

	convey.Convey("Given a catalog where the input table write will fail", t, func() {
		cfg := newTestConfig(t)
		application := newTestApp(t, cfg)
		sub, _, archivePath := packageIntoInbound(t, cfg)

		_, err := application.DB().NewDropTable().Model((*models.Input)(nil)).Exec(ctx)
		convey.So(err, convey.ShouldBeNil)

		convey.Convey("Then the whole transaction rolls back and the archive stays inbound", func() {
			report, err := newIngestor(application).Run(ctx)

			var txErr *ingestion.TransactionError
			convey.So(errors.As(err, &txErr), convey.ShouldBeTrue)
			convey.So(txErr.ID, convey.ShouldEqual, sub.ID.String())
			convey.So(report.State, convey.ShouldEqual, ingestion.StateRejected)

			registered, err := application.ModelRepository.Exists(ctx, sub.ID.String())
			convey.So(err, convey.ShouldBeNil)
			convey.So(registered, convey.ShouldBeFalse)

			_, statErr := os.Stat(archivePath)
			convey.So(statErr, convey.ShouldBeNil)

			empty, err := os.ReadDir(cfg.StorageDir)
			convey.So(err, convey.ShouldBeNil)
			convey.So(empty, convey.ShouldBeEmpty)
		})
	})
}

// brokenStorage refuses every relocation, standing in for an
// unreachable storage backend.
type brokenStorage struct{}

func (brokenStorage) StoreModel(id string, srcDir string) (string, error) {
	return "", errors.New("storage offline")
}

func (brokenStorage) ModelExists(id string) (bool, error) {
	return false, nil
}

func TestIngestionRelocationFailure(t *testing.T) {
	ctx := context.Background()

	convey.Convey("Given a storage backend that cannot accept the artifact", t, func() {
		cfg := newTestConfig(t)
		application := newTestApp(t, cfg)
		sub, _, _ := packageIntoInbound(t, cfg)

		ingestor := ingestion.NewIngestor(application.DB(), cfg, brokenStorage{}, zap.NewNop())

		convey.Convey("Then the failure is surfaced as a relocation error after commit", func() {
			report, err := ingestor.Run(ctx)

			var relErr *ingestion.RelocationError
			convey.So(errors.As(err, &relErr), convey.ShouldBeTrue)
			convey.So(relErr.ID, convey.ShouldEqual, sub.ID.String())
			convey.So(report.State, convey.ShouldEqual, ingestion.StateCommitted)

			convey.Convey("And the catalog row is kept for operator remediation", func() {
				registered, err := application.ModelRepository.Exists(ctx, sub.ID.String())
				convey.So(err, convey.ShouldBeNil)
				convey.So(registered, convey.ShouldBeTrue)
			})

			convey.Convey("And the unpacked tree named by the error still exists", func() {
				_, statErr := os.Stat(filepath.Join(relErr.Path, packaging.MetadataFileName))
				convey.So(statErr, convey.ShouldBeNil)

				_, statErr = os.Stat(filepath.Join(relErr.Path, packaging.ModelFolderName, codec.ModelFileName))
				convey.So(statErr, convey.ShouldBeNil)
			})
		})
	})
}

// tamperChecksum rewrites the archive in place with a corrupted model
// artifact, keeping the original metadata checksum.
func tamperChecksum(t *testing.T, archivePath string) {
	t.Helper()

	reader, err := zip.OpenReader(archivePath)
	if err != nil {
		t.Fatalf("failed to open archive: %v", err)
	}

	entries := map[string][]byte{}
	for _, entry := range reader.File {
		file, err := entry.Open()
		if err != nil {
			t.Fatalf("failed to open %s: %v", entry.Name, err)
		}

		data := make([]byte, entry.UncompressedSize64)
		if _, err := io.ReadFull(file, data); err != nil {
			t.Fatalf("failed to read %s: %v", entry.Name, err)
		}
		file.Close()
		entries[entry.Name] = data
	}
	reader.Close()

	artifact := packaging.ModelFolderName + "/" + codec.ModelFileName
	entries[artifact] = append(entries[artifact], 0x00)

	out, err := os.Create(archivePath)
	if err != nil {
		t.Fatalf("failed to rewrite archive: %v", err)
	}
	writer := zip.NewWriter(out)
	for name, data := range entries {
		entry, err := writer.Create(name)
		if err != nil {
			t.Fatalf("failed to create %s: %v", name, err)
		}
		if _, err := entry.Write(data); err != nil {
			t.Fatalf("failed to write %s: %v", name, err)
		}
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("failed to close archive: %v", err)
	}
	out.Close()
}

func TestMetadataDocumentShape(t *testing.T) {
	convey.Convey("Given a packaged archive", t, func() {
		cfg := newTestConfig(t)
		sub, _, archivePath := packageIntoInbound(t, cfg)

		convey.Convey("Then its metadata parses back into the same submission fields", func() {
			reader, err := zip.OpenReader(archivePath)
			convey.So(err, convey.ShouldBeNil)
			defer reader.Close()

			var metadata packaging.Metadata
			for _, entry := range reader.File {
				if entry.Name != packaging.MetadataFileName {
					continue
				}

				file, err := entry.Open()
				convey.So(err, convey.ShouldBeNil)
				convey.So(json.NewDecoder(file).Decode(&metadata), convey.ShouldBeNil)
				file.Close()
			}

			convey.So(metadata.ID, convey.ShouldEqual, sub.ID.String())
			convey.So(metadata.Cities, convey.ShouldHaveLength, 2)
			convey.So(metadata.Inputs, convey.ShouldHaveLength, 5)
			convey.So(metadata.Checksum, convey.ShouldNotBeEmpty)
			convey.So(metadata.EvalSample.Rows, convey.ShouldHaveLength, submission.SampleSize)
		})
	})
}
