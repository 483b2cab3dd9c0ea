package submission

// SampleSize is the exact number of held-out rows a submission must be
// evaluated against. Mismatched sizes are rejections, not truncations.
const SampleSize = 100

// EvalSample is the held-out feature/label sample used to score a model
// at construction time. It travels inside the archive so ingestion
// never recomputes metrics.
type EvalSample struct {
	Columns []string    `json:"columns"`
	Rows    [][]float64 `json:"rows"`
	Labels  []float64   `json:"labels"`
}

func (s *EvalSample) HasColumn(name string) bool {
	for _, column := range s.Columns {
		if column == name {
			return true
		}
	}

	return false
}
