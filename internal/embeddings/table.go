package embeddings

import (
	"errors"
	"fmt"
)

var ErrDimensionMismatch = errors.New("embedding dimension mismatch")

// Table is a read-only mapping from word to a fixed-dimension vector.
// It is built once by a loader and shared by reference afterwards.
type Table struct {
	dim     int
	vectors map[string][]float32
}

// NewTable creates an empty table for vectors of the given dimension
func NewTable(dim int) *Table {
	return &Table{
		dim:     dim,
		vectors: make(map[string][]float32),
	}
}

// NewTableFromMap builds a table from an in-memory map. All vectors must share
// the same dimension.
func NewTableFromMap(vectors map[string][]float32) (*Table, error) {
	dim := -1
	for word, vec := range vectors {
		if dim == -1 {
			dim = len(vec)
			continue
		}
		if len(vec) != dim {
			return nil, fmt.Errorf("%w: %q has %d, want %d", ErrDimensionMismatch, word, len(vec), dim)
		}
	}
	if dim == -1 {
		dim = 0
	}

	t := NewTable(dim)
	for word, vec := range vectors {
		t.vectors[word] = vec
	}
	return t, nil
}

// add stores a vector; only loaders call it, before the table is shared.
func (t *Table) add(word string, vec []float32) error {
	if len(vec) != t.dim {
		return fmt.Errorf("%w: %q has %d, want %d", ErrDimensionMismatch, word, len(vec), t.dim)
	}
	t.vectors[word] = vec
	return nil
}

// Dim returns the vector dimension
func (t *Table) Dim() int {
	return t.dim
}

// Len returns the number of words in the table
func (t *Table) Len() int {
	return len(t.vectors)
}

// Lookup returns the vector for a word. The returned slice must not be modified.
func (t *Table) Lookup(word string) ([]float32, bool) {
	vec, ok := t.vectors[word]
	return vec, ok
}
