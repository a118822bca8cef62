package idf

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type doc struct {
	group string
	text  string
}

func docGroup(d doc) string { return d.group }
func docText(d doc) string  { return d.text }

func TestDocumentFrequency(t *testing.T) {
	df := DocumentFrequency([]string{"cat dog", "cat"})

	assert.Equal(t, 2, df["cat"])
	assert.Equal(t, 1, df["dog"])
	_, ok := df["bird"]
	assert.False(t, ok, "absent terms must not appear with a zero count")
}

func TestDocumentFrequency_RepeatsCountOncePerDocument(t *testing.T) {
	docs := []string{"grant grant grant", "grant", "other"}
	df := DocumentFrequency(docs)

	assert.Equal(t, 2, df["grant"])
	for term, n := range df {
		assert.LessOrEqual(t, n, len(docs), term)
	}
}

func TestDocumentFrequency_Empty(t *testing.T) {
	assert.Empty(t, DocumentFrequency(nil))
	assert.Empty(t, DocumentFrequency([]string{"", "123"}))
}

func TestBuildGroupTable(t *testing.T) {
	docs := []doc{
		{"F1", "cat"},
		{"F1", "dog"},
		{"F2", "cat cat dog"},
		{"F2", "cat"},
		{"F2", "bird"},
		{"F3", ""},
	}

	table := BuildGroupTable(docs, docGroup, docText)

	require.Len(t, table, 3)
	assert.Equal(t, len(docs), table.Records())

	assert.Equal(t, 2, table["F1"].Total)
	assert.Equal(t, map[string]int{"cat": 1, "dog": 1}, table["F1"].TermFreq)

	assert.Equal(t, 3, table["F2"].Total)
	assert.Equal(t, map[string]int{"cat": 2, "dog": 1, "bird": 1}, table["F2"].TermFreq)

	assert.Equal(t, 1, table["F3"].Total)
	assert.Empty(t, table["F3"].TermFreq)

	for key, stats := range table {
		for term, n := range stats.TermFreq {
			assert.LessOrEqual(t, n, stats.Total, "%s/%s", key, term)
		}
	}
}

func TestBuildGroupTable_Empty(t *testing.T) {
	table := BuildGroupTable([]doc{}, docGroup, docText)
	assert.Empty(t, table)
	assert.Equal(t, 0, table.Records())
}

func TestGroupTable_Stats(t *testing.T) {
	table := BuildGroupTable([]doc{{"F1", "cat"}}, docGroup, docText)

	stats, err := table.Stats("F1")
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Total)

	_, err = table.Stats("missing")
	assert.ErrorIs(t, err, ErrUnknownGroup)
}

func TestGroupTable_Vocabulary(t *testing.T) {
	table := BuildGroupTable([]doc{{"F1", "cat"}, {"F2", "dog cat"}}, docGroup, docText)
	assert.Equal(t, map[string]struct{}{"cat": {}, "dog": {}}, table.Vocabulary())
}

func TestGroupStats_Weight(t *testing.T) {
	stats := GroupStats{Total: 2, TermFreq: map[string]int{"cat": 1, "grant": 2}}

	w, err := stats.Weight("cat")
	require.NoError(t, err)
	assert.InDelta(t, math.Ln2, w, 1e-12)

	w, err = stats.Weight("grant")
	require.NoError(t, err)
	assert.Equal(t, 0.0, w)
}

func TestGroupStats_Weight_Defects(t *testing.T) {
	stats := GroupStats{Total: 2, TermFreq: map[string]int{"zero": 0}}

	_, err := stats.Weight("absent")
	assert.ErrorIs(t, err, ErrUnknownTerm)

	_, err = stats.Weight("zero")
	assert.ErrorIs(t, err, ErrZeroFrequency)
}

func TestGroupStats_Weight_DiffersAcrossGroups(t *testing.T) {
	table := BuildGroupTable([]doc{
		{"F1", "grant"},
		{"F1", "other"},
		{"F2", "grant"},
		{"F2", "grant"},
		{"F2", "other"},
	}, docGroup, docText)

	w1, err := table["F1"].Weight("grant")
	require.NoError(t, err)
	w2, err := table["F2"].Weight("grant")
	require.NoError(t, err)

	assert.InDelta(t, math.Log(2), w1, 1e-12)
	assert.InDelta(t, math.Log(1.5), w2, 1e-12)
	assert.NotEqual(t, w1, w2)
}
