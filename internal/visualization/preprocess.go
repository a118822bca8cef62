package visualization

import (
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// ImputeMean replaces NaN entries with the mean of the finite entries of
// their column. A column without finite entries becomes all zeros.
func ImputeMean(m *mat.Dense) {
	r, c := m.Dims()
	col := make([]float64, 0, r)

	for j := 0; j < c; j++ {
		col = col[:0]
		hasNaN := false
		for i := 0; i < r; i++ {
			v := m.At(i, j)
			if math.IsNaN(v) {
				hasNaN = true
				continue
			}
			col = append(col, v)
		}
		if !hasNaN {
			continue
		}

		fill := 0.0
		if len(col) > 0 {
			fill = stat.Mean(col, nil)
		}
		for i := 0; i < r; i++ {
			if math.IsNaN(m.At(i, j)) {
				m.Set(i, j, fill)
			}
		}
	}
}

// Standardize scales every column to zero mean and unit population variance.
// Zero-variance columns are only centered.
func Standardize(m *mat.Dense) {
	r, c := m.Dims()
	col := make([]float64, r)

	for j := 0; j < c; j++ {
		mat.Col(col, j, m)
		mean, std := stat.PopMeanStdDev(col, nil)
		if std == 0 {
			std = 1
		}
		for i := 0; i < r; i++ {
			m.Set(i, j, (col[i]-mean)/std)
		}
	}
}
