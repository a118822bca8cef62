package visualization

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"
)

var ErrUnknownAxisWord = errors.New("axis word has no embedding")

// SemanticAxis is a chart dimension defined by one word's embedding
type SemanticAxis struct {
	Word      string    `json:"word"`
	Embedding []float32 `json:"-"`
}

// PresetAxis is a named pair of axis words
type PresetAxis struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Words       []string `json:"words"`
}

// DefaultPresets returns axis pairs that separate common grant themes
func DefaultPresets() []PresetAxis {
	return []PresetAxis{
		{
			Name:        "arts-health",
			Description: "Arts and culture vs health and care",
			Words:       []string{"arts", "health"},
		},
		{
			Name:        "children-elderly",
			Description: "Young people vs older people",
			Words:       []string{"children", "elderly"},
		},
		{
			Name:        "community-research",
			Description: "Community projects vs research programmes",
			Words:       []string{"community", "research"},
		},
		{
			Name:        "environment-education",
			Description: "Environment vs education",
			Words:       []string{"environment", "education"},
		},
	}
}

// WordLookup finds a word's embedding
type WordLookup interface {
	Lookup(word string) ([]float32, bool)
}

// FindSemanticAxes resolves axis words against an embedding table
func FindSemanticAxes(lookup WordLookup, words []string) ([]SemanticAxis, error) {
	axes := make([]SemanticAxis, len(words))
	for i, word := range words {
		emb, ok := lookup.Lookup(word)
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownAxisWord, word)
		}
		axes[i] = SemanticAxis{Word: word, Embedding: emb}
	}
	return axes, nil
}

// SemanticReducer projects document vectors onto word axes. It only makes
// sense for rows that live in the embedding space itself.
type SemanticReducer struct {
	axes []SemanticAxis
}

// NewSemanticReducer creates a reducer using semantic axes
func NewSemanticReducer(axes []SemanticAxis) *SemanticReducer {
	return &SemanticReducer{axes: axes}
}

// Name returns the reducer name
func (r *SemanticReducer) Name() string {
	return "semantic"
}

// Reduce takes the dot product of every row with the first dims axes and
// scales each coordinate to [-1, 1]
func (r *SemanticReducer) Reduce(data *mat.Dense, dims int) (*mat.Dense, error) {
	if len(r.axes) == 0 {
		return nil, fmt.Errorf("no semantic axes defined")
	}
	if dims <= 0 {
		return nil, ErrInvalidDims
	}

	axes := r.axes
	if dims < len(axes) {
		axes = axes[:dims]
	}

	n, d := data.Dims()
	basis := mat.NewDense(d, len(axes), nil)
	for j, axis := range axes {
		if len(axis.Embedding) != d {
			return nil, fmt.Errorf("axis %q has dimension %d, want %d", axis.Word, len(axis.Embedding), d)
		}
		for i, v := range axis.Embedding {
			basis.Set(i, j, float64(v))
		}
	}

	result := mat.NewDense(n, len(axes), nil)
	result.Mul(data, basis)
	normalizeCoordinates(result)
	return result, nil
}
