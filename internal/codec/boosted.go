package codec

import "fmt"

// BoostedTreeModel sums scaled tree corrections on top of a base score
// (gradient boosting).
type BoostedTreeModel struct {
	Base         float64 `msgpack:"base" json:"base"`
	LearningRate float64 `msgpack:"learning_rate" json:"learning_rate"`
	Trees        []Tree  `msgpack:"trees" json:"trees"`
}

func (m *BoostedTreeModel) Predict(features []float64) (float64, error) {
	if len(m.Trees) == 0 {
		return 0, fmt.Errorf("boosted model has no trees")
	}

	prediction := m.Base
	for i := range m.Trees {
		value, err := m.Trees[i].evaluate(features)
		if err != nil {
			return 0, err
		}
		prediction += m.LearningRate * value
	}

	return prediction, nil
}

type BoostedTreeCodec struct{}

func (c *BoostedTreeCodec) Flavor() string {
	return FlavorBoostedTree
}

func (c *BoostedTreeCodec) Save(model Predictor, dir string) error {
	boosted, ok := model.(*BoostedTreeModel)
	if !ok {
		return fmt.Errorf("model is not a %s model", FlavorBoostedTree)
	}

	return saveModelFile(dir, FlavorBoostedTree, boosted)
}

func (c *BoostedTreeCodec) Load(dir string) (Predictor, error) {
	var model BoostedTreeModel
	if err := loadModelFile(dir, FlavorBoostedTree, &model); err != nil {
		return nil, err
	}

	return &model, nil
}
