package embeddings

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeBinary(t *testing.T, entries map[string][]float32, order []string, dim int, trailingNewline bool) []byte {
	t.Helper()
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "%d %d\n", len(order), dim)
	for _, w := range order {
		buf.WriteString(w + " ")
		for _, v := range entries[w] {
			require.NoError(t, binary.Write(&buf, binary.LittleEndian, math.Float32bits(v)))
		}
		if trailingNewline {
			buf.WriteByte('\n')
		}
	}
	return buf.Bytes()
}

func TestLoadWord2VecBinary(t *testing.T) {
	entries := map[string][]float32{
		"cat":         {1, 0, -0.5},
		"Dog":         {0, 1, 0.25},
		"Los_Angeles": {3, 2, 1},
	}
	order := []string{"cat", "Dog", "Los_Angeles"}

	for _, newline := range []bool{true, false} {
		table, err := LoadWord2VecBinary(bytes.NewReader(writeBinary(t, entries, order, 3, newline)))
		require.NoError(t, err)

		assert.Equal(t, 3, table.Dim())
		assert.Equal(t, 3, table.Len())
		for w, want := range entries {
			got, ok := table.Lookup(w)
			require.True(t, ok, w)
			assert.Equal(t, want, got)
		}

		// Lookups are case sensitive
		_, ok := table.Lookup("dog")
		assert.False(t, ok)
	}
}

func TestLoadWord2VecBinary_Truncated(t *testing.T) {
	data := writeBinary(t, map[string][]float32{"cat": {1, 2}}, []string{"cat"}, 2, true)

	_, err := LoadWord2VecBinary(bytes.NewReader(data[:len(data)-4]))
	assert.Error(t, err)
}

func TestLoadWord2VecBinary_BadHeader(t *testing.T) {
	_, err := LoadWord2VecBinary(strings.NewReader("not a header\n"))
	assert.ErrorIs(t, err, ErrInvalidHeader)
}

func TestLoadText(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"word2vec header", "2 3\ncat 1 0 -0.5\ndog 0 1 0.25\n"},
		{"glove without header", "cat 1 0 -0.5\ndog 0 1 0.25\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table, err := LoadText(strings.NewReader(tt.input))
			require.NoError(t, err)

			assert.Equal(t, 3, table.Dim())
			assert.Equal(t, 2, table.Len())
			vec, ok := table.Lookup("dog")
			require.True(t, ok)
			assert.Equal(t, []float32{0, 1, 0.25}, vec)
		})
	}
}

func TestLoadText_DimensionMismatch(t *testing.T) {
	_, err := LoadText(strings.NewReader("cat 1 0\ndog 1\n"))
	assert.ErrorIs(t, err, ErrDimensionMismatch)
}

func TestLoadText_BadNumber(t *testing.T) {
	_, err := LoadText(strings.NewReader("cat 1 x\n"))
	assert.Error(t, err)
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "vectors.txt")
	require.NoError(t, os.WriteFile(path, []byte("cat 1 2\n"), 0o644))

	table, err := LoadFile(path, SourceText)
	require.NoError(t, err)
	assert.Equal(t, 2, table.Dim())

	_, err = LoadFile(path, "parquet")
	assert.Error(t, err)

	_, err = LoadFile(filepath.Join(dir, "missing.bin"), SourceWord2VecBinary)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestNewTableFromMap(t *testing.T) {
	table, err := NewTableFromMap(map[string][]float32{"a": {1, 2}, "b": {3, 4}})
	require.NoError(t, err)
	assert.Equal(t, 2, table.Dim())

	_, err = NewTableFromMap(map[string][]float32{"a": {1, 2}, "b": {3}})
	assert.ErrorIs(t, err, ErrDimensionMismatch)

	empty, err := NewTableFromMap(nil)
	require.NoError(t, err)
	assert.Equal(t, 0, empty.Dim())
	assert.Equal(t, 0, empty.Len())
}
