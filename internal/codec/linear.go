package codec

import "fmt"

// LinearModel is a fitted linear regression: prediction is the dot
// product of weights and features plus the intercept.
type LinearModel struct {
	Weights []float64 `msgpack:"weights" json:"weights"`
	Bias    float64   `msgpack:"bias" json:"bias"`
}

func (m *LinearModel) Predict(features []float64) (float64, error) {
	if len(features) != len(m.Weights) {
		return 0, fmt.Errorf("expected %d features, got %d", len(m.Weights), len(features))
	}

	prediction := m.Bias
	for i, weight := range m.Weights {
		prediction += weight * features[i]
	}

	return prediction, nil
}

type LinearCodec struct{}

func (c *LinearCodec) Flavor() string {
	return FlavorLinear
}

func (c *LinearCodec) Save(model Predictor, dir string) error {
	linear, ok := model.(*LinearModel)
	if !ok {
		return fmt.Errorf("model is not a %s model", FlavorLinear)
	}

	return saveModelFile(dir, FlavorLinear, linear)
}

func (c *LinearCodec) Load(dir string) (Predictor, error) {
	var model LinearModel
	if err := loadModelFile(dir, FlavorLinear, &model); err != nil {
		return nil, err
	}

	return &model, nil
}
