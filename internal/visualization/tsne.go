package visualization

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

const (
	perplexityTolerance = 1e-5
	perplexitySteps     = 100
	minProbability      = 1e-12
	minGain             = 0.01
)

// TSNEReducer implements exact t-SNE. Memory and time are quadratic in the
// number of rows.
type TSNEReducer struct {
	Perplexity        float64
	LearningRate      float64
	Iterations        int
	EarlyExaggeration float64
	ExaggerationIters int
	Seed              int64

	// Progress, if set, is called every 50 iterations with the current
	// Kullback-Leibler divergence
	Progress func(iter int, kl float64)
}

// NewTSNEReducer creates a t-SNE reducer with the usual defaults
func NewTSNEReducer(seed int64) *TSNEReducer {
	return &TSNEReducer{
		Perplexity:        30,
		LearningRate:      200,
		Iterations:        1000,
		EarlyExaggeration: 12,
		ExaggerationIters: 250,
		Seed:              seed,
	}
}

// Name returns the reducer name
func (r *TSNEReducer) Name() string {
	return "tsne"
}

// Reduce embeds the rows of data into dims dimensions
func (r *TSNEReducer) Reduce(data *mat.Dense, dims int) (*mat.Dense, error) {
	if dims <= 0 {
		return nil, ErrInvalidDims
	}
	n, _ := data.Dims()
	if n == 1 {
		return mat.NewDense(1, dims, nil), nil
	}

	// Perplexity cannot exceed the number of neighbours
	perplexity := r.Perplexity
	if limit := float64(n-1) / 3; perplexity > limit {
		perplexity = math.Max(limit, 1)
	}

	p := jointProbabilities(squaredDistances(data), n, perplexity)

	rng := rand.New(rand.NewSource(r.Seed))
	y := make([]float64, n*dims)
	for i := range y {
		y[i] = rng.NormFloat64() * 1e-4
	}

	update := make([]float64, n*dims)
	gains := make([]float64, n*dims)
	for i := range gains {
		gains[i] = 1
	}
	grad := make([]float64, n*dims)
	num := make([]float64, n*n)

	for iter := 0; iter < r.Iterations; iter++ {
		exaggeration, momentum := 1.0, 0.8
		if iter < r.ExaggerationIters {
			exaggeration, momentum = r.EarlyExaggeration, 0.5
		}

		// Student-t affinities in the embedding
		sumQ := 0.0
		for i := 0; i < n; i++ {
			num[i*n+i] = 0
			for j := i + 1; j < n; j++ {
				q := 1 / (1 + sqDist(y[i*dims:(i+1)*dims], y[j*dims:(j+1)*dims]))
				num[i*n+j] = q
				num[j*n+i] = q
				sumQ += 2 * q
			}
		}
		sumQ = math.Max(sumQ, minProbability)

		for i := range grad {
			grad[i] = 0
		}
		for i := 0; i < n; i++ {
			yi := y[i*dims : (i+1)*dims]
			gi := grad[i*dims : (i+1)*dims]
			for j := 0; j < n; j++ {
				if i == j {
					continue
				}
				w := num[i*n+j]
				mult := 4 * (exaggeration*p[i*n+j] - w/sumQ) * w
				yj := y[j*dims : (j+1)*dims]
				for k := range gi {
					gi[k] += mult * (yi[k] - yj[k])
				}
			}
		}

		// Adaptive gains with momentum
		for i := range y {
			if (grad[i] > 0) != (update[i] > 0) {
				gains[i] += 0.2
			} else {
				gains[i] *= 0.8
			}
			gains[i] = math.Max(gains[i], minGain)
			update[i] = momentum*update[i] - r.LearningRate*gains[i]*grad[i]
			y[i] += update[i]
		}
		center(y, n, dims)

		if r.Progress != nil && (iter+1)%50 == 0 {
			r.Progress(iter+1, klDivergence(p, num, sumQ))
		}
	}

	return mat.NewDense(n, dims, y), nil
}

// squaredDistances returns the n*n matrix of squared euclidean distances
func squaredDistances(data *mat.Dense) []float64 {
	n, _ := data.Dims()
	dist := make([]float64, n*n)
	for i := 0; i < n; i++ {
		ri := data.RawRowView(i)
		for j := i + 1; j < n; j++ {
			d := sqDist(ri, data.RawRowView(j))
			dist[i*n+j] = d
			dist[j*n+i] = d
		}
	}
	return dist
}

// jointProbabilities calibrates a Gaussian per row to the target perplexity
// and returns the symmetrized affinities normalized to sum to one.
func jointProbabilities(dist []float64, n int, perplexity float64) []float64 {
	cond := make([]float64, n*n)
	target := math.Log(perplexity)

	for i := 0; i < n; i++ {
		row := cond[i*n : (i+1)*n]
		d := dist[i*n : (i+1)*n]

		beta := 1.0
		betaMin, betaMax := math.Inf(-1), math.Inf(1)
		for step := 0; step < perplexitySteps; step++ {
			sumP, sumDP := 0.0, 0.0
			for j := range row {
				if j == i {
					row[j] = 0
					continue
				}
				row[j] = math.Exp(-d[j] * beta)
				sumP += row[j]
				sumDP += d[j] * row[j]
			}
			if sumP == 0 {
				sumP = 1e-8
			}
			entropy := math.Log(sumP) + beta*sumDP/sumP
			floats.Scale(1/sumP, row)

			diff := entropy - target
			if math.Abs(diff) < perplexityTolerance {
				break
			}
			if diff > 0 {
				betaMin = beta
				if math.IsInf(betaMax, 1) {
					beta *= 2
				} else {
					beta = (beta + betaMax) / 2
				}
			} else {
				betaMax = beta
				if math.IsInf(betaMin, -1) {
					beta /= 2
				} else {
					beta = (beta + betaMin) / 2
				}
			}
		}
	}

	p := make([]float64, n*n)
	norm := 2 * float64(n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			if i == j {
				continue
			}
			p[i*n+j] = math.Max((cond[i*n+j]+cond[j*n+i])/norm, minProbability)
		}
	}
	return p
}

func klDivergence(p, num []float64, sumQ float64) float64 {
	kl := 0.0
	for i, pij := range p {
		if pij == 0 {
			continue
		}
		q := math.Max(num[i]/sumQ, minProbability)
		kl += pij * math.Log(pij/q)
	}
	return kl
}

func center(y []float64, n, dims int) {
	for k := 0; k < dims; k++ {
		mean := 0.0
		for i := 0; i < n; i++ {
			mean += y[i*dims+k]
		}
		mean /= float64(n)
		for i := 0; i < n; i++ {
			y[i*dims+k] -= mean
		}
	}
}

func sqDist(a, b []float64) float64 {
	sum := 0.0
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return sum
}
