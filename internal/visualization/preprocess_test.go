package visualization

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

func TestImputeMean(t *testing.T) {
	nan := math.NaN()
	m := mat.NewDense(3, 3, []float64{
		1, nan, nan,
		3, 5, nan,
		nan, 7, nan,
	})

	ImputeMean(m)

	want := mat.NewDense(3, 3, []float64{
		1, 6, 0,
		3, 5, 0,
		2, 7, 0,
	})
	assert.True(t, mat.Equal(want, m), "got %v", mat.Formatted(m))
}

func TestStandardize(t *testing.T) {
	m := mat.NewDense(4, 2, []float64{
		1, 5,
		2, 5,
		3, 5,
		4, 5,
	})

	Standardize(m)

	col := mat.Col(nil, 0, m)
	mean, std := stat.PopMeanStdDev(col, nil)
	assert.InDelta(t, 0, mean, 1e-12)
	assert.InDelta(t, 1, std, 1e-12)

	// Constant columns are centered only
	assert.Equal(t, []float64{0, 0, 0, 0}, mat.Col(nil, 1, m))
}
