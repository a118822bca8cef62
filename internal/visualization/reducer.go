package visualization

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

var (
	ErrFactorization = errors.New("SVD factorization failed")
	ErrInvalidDims   = errors.New("target dimension must be positive")
)

// Reducer defines the interface for dimensionality reduction
type Reducer interface {
	Reduce(data *mat.Dense, dims int) (*mat.Dense, error)
	Name() string
}

// SVDReducer projects data onto its leading right singular vectors without
// centering it first (truncated SVD / LSA).
type SVDReducer struct{}

// NewSVDReducer creates a new truncated SVD reducer
func NewSVDReducer() *SVDReducer {
	return &SVDReducer{}
}

// Name returns the reducer name
func (r *SVDReducer) Name() string {
	return "svd"
}

// Reduce keeps the first dims components, capped by the matrix rank bound
func (r *SVDReducer) Reduce(data *mat.Dense, dims int) (*mat.Dense, error) {
	return project(data, dims)
}

// PCAReducer implements PCA dimensionality reduction
type PCAReducer struct{}

// NewPCAReducer creates a new PCA reducer
func NewPCAReducer() *PCAReducer {
	return &PCAReducer{}
}

// Name returns the reducer name
func (r *PCAReducer) Name() string {
	return "pca"
}

// Reduce centers the data, projects it onto the first dims principal
// components and scales each coordinate to [-1, 1]
func (r *PCAReducer) Reduce(data *mat.Dense, dims int) (*mat.Dense, error) {
	n, d := data.Dims()

	// Center the data
	centered := mat.NewDense(n, d, nil)
	col := make([]float64, n)
	for j := 0; j < d; j++ {
		mat.Col(col, j, data)
		mean := stat.Mean(col, nil)
		for i := 0; i < n; i++ {
			centered.Set(i, j, col[i]-mean)
		}
	}

	result, err := project(centered, dims)
	if err != nil {
		return nil, err
	}
	normalizeCoordinates(result)
	return result, nil
}

func project(data *mat.Dense, dims int) (*mat.Dense, error) {
	if dims <= 0 {
		return nil, ErrInvalidDims
	}
	n, d := data.Dims()
	dims = min(dims, n, d)

	// Only V is needed; skipping U keeps memory at d*d
	var svd mat.SVD
	if ok := svd.Factorize(data, mat.SVDThinV); !ok {
		return nil, ErrFactorization
	}

	var v mat.Dense
	svd.VTo(&v)

	components := mat.DenseCopyOf(v.Slice(0, d, 0, dims))
	flipSigns(components)

	result := mat.NewDense(n, dims, nil)
	result.Mul(data, components)
	return result, nil
}

// flipSigns makes the largest-magnitude loading of every component positive,
// so the projection does not depend on the sign choice of the SVD routine
func flipSigns(components *mat.Dense) {
	r, c := components.Dims()
	for j := 0; j < c; j++ {
		best := 0.0
		for i := 0; i < r; i++ {
			if v := components.At(i, j); math.Abs(v) > math.Abs(best) {
				best = v
			}
		}
		if best >= 0 {
			continue
		}
		for i := 0; i < r; i++ {
			components.Set(i, j, -components.At(i, j))
		}
	}
}

// normalizeCoordinates scales each column to the [-1, 1] range in place
func normalizeCoordinates(m *mat.Dense) {
	r, c := m.Dims()
	col := make([]float64, r)

	for j := 0; j < c; j++ {
		mat.Col(col, j, m)
		lo, hi := math.MaxFloat64, -math.MaxFloat64
		for _, v := range col {
			lo = math.Min(lo, v)
			hi = math.Max(hi, v)
		}

		rng := hi - lo
		for i, v := range col {
			if rng == 0 {
				m.Set(i, j, 0)
			} else {
				m.Set(i, j, 2*(v-lo)/rng-1)
			}
		}
	}
}
