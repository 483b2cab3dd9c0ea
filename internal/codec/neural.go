package codec

import "fmt"

type NeuralLayer struct {
	// Weights[i][j] connects input j to unit i.
	Weights [][]float64 `msgpack:"weights" json:"weights"`
	Biases  []float64   `msgpack:"biases" json:"biases"`
	ReLU    bool        `msgpack:"relu" json:"relu"`
}

// NeuralNetModel is a fully connected feed-forward regressor. The last
// layer must have a single unit.
type NeuralNetModel struct {
	Layers []NeuralLayer `msgpack:"layers" json:"layers"`
}

func (m *NeuralNetModel) Predict(features []float64) (float64, error) {
	if len(m.Layers) == 0 {
		return 0, fmt.Errorf("network has no layers")
	}

	values := features
	for l, layer := range m.Layers {
		if len(layer.Weights) != len(layer.Biases) {
			return 0, fmt.Errorf("layer %d has %d weight rows but %d biases", l, len(layer.Weights), len(layer.Biases))
		}

		next := make([]float64, len(layer.Weights))
		for i, row := range layer.Weights {
			if len(row) != len(values) {
				return 0, fmt.Errorf("layer %d expects %d inputs, got %d", l, len(row), len(values))
			}

			sum := layer.Biases[i]
			for j, weight := range row {
				sum += weight * values[j]
			}

			if layer.ReLU && sum < 0 {
				sum = 0
			}
			next[i] = sum
		}

		values = next
	}

	if len(values) != 1 {
		return 0, fmt.Errorf("output layer has %d units, want 1", len(values))
	}

	return values[0], nil
}

type NeuralNetCodec struct{}

func (c *NeuralNetCodec) Flavor() string {
	return FlavorNeuralNet
}

func (c *NeuralNetCodec) Save(model Predictor, dir string) error {
	network, ok := model.(*NeuralNetModel)
	if !ok {
		return fmt.Errorf("model is not a %s model", FlavorNeuralNet)
	}

	return saveModelFile(dir, FlavorNeuralNet, network)
}

func (c *NeuralNetCodec) Load(dir string) (Predictor, error) {
	var model NeuralNetModel
	if err := loadModelFile(dir, FlavorNeuralNet, &model); err != nil {
		return nil, err
	}

	return &model, nil
}
