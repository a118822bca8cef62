// Package vectorize turns record text into IDF-weighted averages of
// pretrained word embeddings.
package vectorize

import (
	"fmt"

	"gonum.org/v1/gonum/floats"

	"github.com/todmy/grantmap/internal/embeddings"
	"github.com/todmy/grantmap/internal/idf"
)

// Document is a record that belongs to a group and carries free text
type Document interface {
	GroupKey() string
	Text() string
}

// Vectorizer builds document vectors from a read-only embedding table
type Vectorizer struct {
	table *embeddings.Table
}

// New creates a vectorizer bound to the given table
func New(table *embeddings.Table) *Vectorizer {
	return &Vectorizer{table: table}
}

// Dim returns the dimension of every vector the vectorizer produces
func (v *Vectorizer) Dim() int {
	return v.table.Dim()
}

// Vectorize returns the mean of the embeddings of the known tokens in text,
// each scaled by its inverse document frequency within stats. The mean is
// taken over the scaled vectors, so zero-weight tokens still count.
// Text without any known token yields the zero vector.
func (v *Vectorizer) Vectorize(text string, stats idf.GroupStats) ([]float64, error) {
	dim := v.table.Dim()
	sum := make([]float64, dim)
	scratch := make([]float64, dim)

	n := 0
	for _, word := range idf.Tokenize(text) {
		emb, ok := v.table.Lookup(word)
		if !ok {
			continue
		}

		weight, err := stats.Weight(word)
		if err != nil {
			return nil, err
		}

		for i, x := range emb {
			scratch[i] = float64(x)
		}
		floats.AddScaled(sum, weight, scratch)
		n++
	}

	if n == 0 {
		return sum, nil
	}

	for i := range sum {
		sum[i] /= float64(n)
	}
	return sum, nil
}

// VectorizeAll vectorizes each document against its own group's stats.
// Rows are returned in input order.
func VectorizeAll[D Document](v *Vectorizer, docs []D, groups idf.GroupTable) ([][]float64, error) {
	rows := make([][]float64, len(docs))
	for i, doc := range docs {
		stats, err := groups.Stats(doc.GroupKey())
		if err != nil {
			return nil, fmt.Errorf("document %d: %w", i, err)
		}
		vec, err := v.Vectorize(doc.Text(), stats)
		if err != nil {
			return nil, fmt.Errorf("document %d: %w", i, err)
		}
		rows[i] = vec
	}
	return rows, nil
}
