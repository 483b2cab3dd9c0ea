package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/marcuszucareli/house-price-app/internal/codec"
	"github.com/marcuszucareli/house-price-app/internal/config"
	"github.com/marcuszucareli/house-price-app/internal/geocode"
	"github.com/marcuszucareli/house-price-app/internal/packaging"
	"github.com/marcuszucareli/house-price-app/internal/submission"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var Cmd = &cobra.Command{
	Use:   "package <manifest.json>",
	Short: "Build a submission archive from a manifest file",
	Long:  "Validates the manifest, scores the embedded model against its evaluation sample and writes the archive into the inbound directory, ready for ingestion",
	Args:  cobra.ExactArgs(1),
	RunE:  runPackage,
}

func init() {
	flags := Cmd.Flags()

	flags.String("environment", "dev", "Environment configuration")
	flags.String("out", "", "Target directory for the archive (defaults to the inbound directory)")

	viper.BindPFlags(flags)

	viper.BindEnv("geocoder.base_url")
	viper.BindEnv("geocoder.timeout_seconds")
}

// manifest is the package command's input document: the submission
// fields plus the model parameters and the evaluation sample.
type manifest struct {
	Flavor    string                 `json:"flavor"`
	ModelLink string                 `json:"model_link"`
	Algorithm string                 `json:"algorithm"`
	Author    string                 `json:"author"`
	DataYear  int                    `json:"data_year"`
	Links     map[string]string      `json:"links"`
	Cities    []string               `json:"cities"`
	Inputs    []submission.InputSpec `json:"inputs"`
	Model     json.RawMessage        `json:"model"`
	Sample    *submission.EvalSample `json:"eval_sample"`
}

func runPackage(cmd *cobra.Command, args []string) error {
	cfg := config.GetConfig()

	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to read manifest: %w", err)
	}

	var m manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return fmt.Errorf("failed to parse manifest: %w", err)
	}

	inputs := make([]*submission.InputSpec, 0, len(m.Inputs))
	for _, declared := range m.Inputs {
		spec, err := submission.NewInputSpec(declared)
		if err != nil {
			return err
		}
		inputs = append(inputs, spec)
	}

	draft, err := submission.NewDraft(cmd.Context(), submission.DraftParams{
		Flavor:    m.Flavor,
		ModelLink: m.ModelLink,
		Algorithm: m.Algorithm,
		Author:    m.Author,
		DataYear:  m.DataYear,
		Links:     m.Links,
		CityIDs:   m.Cities,
		Inputs:    inputs,
	}, geocode.NewWikidataResolver(cfg))
	if err != nil {
		return err
	}

	model, err := decodeModel(m.Flavor, m.Model)
	if err != nil {
		return err
	}

	sub, err := draft.Evaluate(model, m.Sample)
	if err != nil {
		return err
	}

	targetDir := viper.GetString("out")
	if targetDir == "" {
		targetDir = cfg.InboundDir
	}

	archivePath, err := packaging.Package(sub, model, targetDir)
	if err != nil {
		return err
	}

	fmt.Printf("archive written to %s\n", archivePath)
	return nil
}

func decodeModel(flavor string, raw json.RawMessage) (codec.Predictor, error) {
	if len(raw) == 0 {
		return nil, nil
	}

	var model codec.Predictor
	switch flavor {
	case codec.FlavorLinear:
		model = &codec.LinearModel{}
	case codec.FlavorTreeEnsemble:
		model = &codec.TreeEnsembleModel{}
	case codec.FlavorBoostedTree:
		model = &codec.BoostedTreeModel{}
	case codec.FlavorNeuralNet:
		model = &codec.NeuralNetModel{}
	default:
		return nil, &codec.UnknownFlavorError{Flavor: flavor}
	}

	if err := json.Unmarshal(raw, model); err != nil {
		return nil, fmt.Errorf("failed to parse %s model parameters: %w", flavor, err)
	}

	return model, nil
}
