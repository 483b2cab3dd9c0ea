package codec

import "fmt"

// TreeNode is one node of a regression tree, stored as an index into
// the tree's node slice. Leaves carry the predicted value.
type TreeNode struct {
	Feature   int     `msgpack:"feature" json:"feature"`
	Threshold float64 `msgpack:"threshold" json:"threshold"`
	Left      int     `msgpack:"left" json:"left"`
	Right     int     `msgpack:"right" json:"right"`
	Value     float64 `msgpack:"value" json:"value"`
	Leaf      bool    `msgpack:"leaf" json:"leaf"`
}

type Tree struct {
	Nodes []TreeNode `msgpack:"nodes" json:"nodes"`
}

func (t *Tree) evaluate(features []float64) (float64, error) {
	if len(t.Nodes) == 0 {
		return 0, fmt.Errorf("tree has no nodes")
	}

	index := 0
	for {
		node := t.Nodes[index]
		if node.Leaf {
			return node.Value, nil
		}

		if node.Feature < 0 || node.Feature >= len(features) {
			return 0, fmt.Errorf("tree references feature %d, sample has %d", node.Feature, len(features))
		}

		if features[node.Feature] <= node.Threshold {
			index = node.Left
		} else {
			index = node.Right
		}

		if index < 0 || index >= len(t.Nodes) {
			return 0, fmt.Errorf("tree node index %d out of range", index)
		}
	}
}

// TreeEnsembleModel averages the predictions of its trees (bagging,
// e.g. a random forest).
type TreeEnsembleModel struct {
	Trees []Tree `msgpack:"trees" json:"trees"`
}

func (m *TreeEnsembleModel) Predict(features []float64) (float64, error) {
	if len(m.Trees) == 0 {
		return 0, fmt.Errorf("ensemble has no trees")
	}

	var sum float64
	for i := range m.Trees {
		value, err := m.Trees[i].evaluate(features)
		if err != nil {
			return 0, err
		}
		sum += value
	}

	return sum / float64(len(m.Trees)), nil
}

type TreeEnsembleCodec struct{}

func (c *TreeEnsembleCodec) Flavor() string {
	return FlavorTreeEnsemble
}

func (c *TreeEnsembleCodec) Save(model Predictor, dir string) error {
	ensemble, ok := model.(*TreeEnsembleModel)
	if !ok {
		return fmt.Errorf("model is not a %s model", FlavorTreeEnsemble)
	}

	return saveModelFile(dir, FlavorTreeEnsemble, ensemble)
}

func (c *TreeEnsembleCodec) Load(dir string) (Predictor, error) {
	var model TreeEnsembleModel
	if err := loadModelFile(dir, FlavorTreeEnsemble, &model); err != nil {
		return nil, err
	}

	return &model, nil
}
