package codec

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/vmihailenco/msgpack/v5"
)

// ModelFileName is the fixed name of the serialized model inside the
// model sub-directory of an archive and inside permanent storage.
const ModelFileName = "model.bin"

const (
	FlavorLinear       = "linear"
	FlavorTreeEnsemble = "tree-ensemble"
	FlavorBoostedTree  = "boosted-tree"
	FlavorNeuralNet    = "neural-net"
)

// Predictor is the black-box prediction capability: features in the
// declared column order, one float out.
type Predictor interface {
	Predict(features []float64) (float64, error)
}

// Codec saves and loads one model flavor in its native on-disk form.
// The set of flavors is closed; unknown flavors are rejected when the
// submission is constructed, not at save/load time.
type Codec interface {
	Flavor() string
	Save(model Predictor, dir string) error
	Load(dir string) (Predictor, error)
}

type UnknownFlavorError struct {
	Flavor string
}

func (e *UnknownFlavorError) Error() string {
	return fmt.Sprintf("unknown model flavor %q, must be one of: %v", e.Flavor, Flavors())
}

func Flavors() []string {
	return []string{FlavorLinear, FlavorTreeEnsemble, FlavorBoostedTree, FlavorNeuralNet}
}

func ForFlavor(flavor string) (Codec, error) {
	switch flavor {
	case FlavorLinear:
		return &LinearCodec{}, nil
	case FlavorTreeEnsemble:
		return &TreeEnsembleCodec{}, nil
	case FlavorBoostedTree:
		return &BoostedTreeCodec{}, nil
	case FlavorNeuralNet:
		return &NeuralNetCodec{}, nil
	}

	return nil, &UnknownFlavorError{Flavor: flavor}
}

func saveModelFile(dir string, flavor string, value interface{}) error {
	data, err := msgpack.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to serialize %s model: %w", flavor, err)
	}

	if err := os.MkdirAll(dir, os.ModePerm); err != nil {
		return err
	}

	path := filepath.Join(dir, ModelFileName)
	if err := os.WriteFile(path, data, os.FileMode(0644)); err != nil {
		return fmt.Errorf("failed to write %s model to %s: %w", flavor, path, err)
	}

	return nil
}

func loadModelFile(dir string, flavor string, target interface{}) error {
	path := filepath.Join(dir, ModelFileName)
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s model from %s: %w", flavor, path, err)
	}

	if err := msgpack.Unmarshal(data, target); err != nil {
		return fmt.Errorf("failed to deserialize %s model: %w", flavor, err)
	}

	return nil
}
