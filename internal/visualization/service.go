package visualization

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/mat"
)

// Projection methods for the second stage
const (
	MethodTSNE     = "tsne"
	MethodPCA      = "pca"
	MethodSemantic = "semantic"
)

// Point is one row placed on the chart
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Result holds the projected points in input order
type Result struct {
	Points     []Point        `json:"points"`
	Method     string         `json:"method"`
	Dimensions int            `json:"dimensions"`
	Components int            `json:"components"`
	Axes       []SemanticAxis `json:"axes,omitempty"`
}

// Config holds visualization configuration
type Config struct {
	Method       string
	Components   int
	Perplexity   float64
	LearningRate float64
	Iterations   int
	Seed         int64
	AxisWords    []string
}

// DefaultConfig returns default configuration
func DefaultConfig() Config {
	return Config{
		Method:       MethodTSNE,
		Components:   50,
		Perplexity:   30,
		LearningRate: 200,
		Iterations:   1000,
	}
}

// SemanticWords returns the axis words the semantic method looks up, or nil
// for the other methods
func (c Config) SemanticWords() []string {
	if c.Method != MethodSemantic {
		return nil
	}
	if len(c.AxisWords) > 0 {
		return c.AxisWords
	}
	return DefaultPresets()[0].Words
}

// Service turns document vectors into 2-d chart coordinates
type Service struct {
	config Config
	lookup WordLookup
}

// NewService creates a new visualization service. lookup resolves semantic
// axis words and may be nil when the semantic method is not used.
func NewService(config Config, lookup WordLookup) *Service {
	def := DefaultConfig()
	if config.Method == "" {
		config.Method = def.Method
	}
	if config.Components <= 0 {
		config.Components = def.Components
	}
	if config.Perplexity <= 0 {
		config.Perplexity = def.Perplexity
	}
	if config.LearningRate <= 0 {
		config.LearningRate = def.LearningRate
	}
	if config.Iterations <= 0 {
		config.Iterations = def.Iterations
	}

	return &Service{config: config, lookup: lookup}
}

// Project imputes and standardizes rows, reduces them to the configured
// number of components with truncated SVD and embeds the result in 2-d.
// The semantic method instead projects the imputed rows onto word axes.
func (s *Service) Project(rows [][]float64) (*Result, error) {
	result := &Result{
		Points:     []Point{},
		Method:     s.config.Method,
		Dimensions: 2,
	}
	if len(rows) == 0 {
		return result, nil
	}

	n, d := len(rows), len(rows[0])
	if d == 0 {
		return nil, fmt.Errorf("rows have no columns")
	}
	data := mat.NewDense(n, d, nil)
	for i, row := range rows {
		if len(row) != d {
			return nil, fmt.Errorf("row %d has %d columns, want %d", i, len(row), d)
		}
		data.SetRow(i, row)
	}

	ImputeMean(data)

	var coords *mat.Dense
	var err error
	switch s.config.Method {
	case MethodSemantic:
		coords, result.Axes, err = s.projectSemantic(data)
	case MethodTSNE, MethodPCA:
		coords, result.Components, err = s.projectTwoStage(data)
	default:
		return nil, fmt.Errorf("unknown method: %s", s.config.Method)
	}
	if err != nil {
		return nil, err
	}

	result.Points = make([]Point, n)
	_, c := coords.Dims()
	for i := range result.Points {
		result.Points[i].X = coords.At(i, 0)
		if c > 1 {
			result.Points[i].Y = coords.At(i, 1)
		}
	}

	return result, nil
}

func (s *Service) projectTwoStage(data *mat.Dense) (*mat.Dense, int, error) {
	Standardize(data)

	start := time.Now()
	reduced, err := NewSVDReducer().Reduce(data, s.config.Components)
	if err != nil {
		return nil, 0, fmt.Errorf("svd: %w", err)
	}
	_, components := reduced.Dims()
	logrus.WithFields(logrus.Fields{
		"components": components,
		"elapsed":    time.Since(start).Round(time.Millisecond),
	}).Info("reduced features")

	var second Reducer
	if s.config.Method == MethodPCA {
		second = NewPCAReducer()
	} else {
		tsne := NewTSNEReducer(s.config.Seed)
		tsne.Perplexity = s.config.Perplexity
		tsne.LearningRate = s.config.LearningRate
		tsne.Iterations = s.config.Iterations
		tsne.Progress = func(iter int, kl float64) {
			logrus.WithFields(logrus.Fields{"iter": iter, "kl": kl}).Debug("t-SNE")
		}
		second = tsne
	}

	start = time.Now()
	coords, err := second.Reduce(reduced, 2)
	if err != nil {
		return nil, 0, fmt.Errorf("%s: %w", second.Name(), err)
	}
	logrus.WithFields(logrus.Fields{
		"method":  second.Name(),
		"elapsed": time.Since(start).Round(time.Millisecond),
	}).Info("embedded in 2-d")

	return coords, components, nil
}

func (s *Service) projectSemantic(data *mat.Dense) (*mat.Dense, []SemanticAxis, error) {
	if s.lookup == nil {
		return nil, nil, fmt.Errorf("embedding table not configured")
	}
	axes, err := FindSemanticAxes(s.lookup, s.config.SemanticWords())
	if err != nil {
		return nil, nil, fmt.Errorf("find semantic axes: %w", err)
	}

	coords, err := NewSemanticReducer(axes).Reduce(data, 2)
	if err != nil {
		return nil, nil, err
	}
	return coords, axes, nil
}
