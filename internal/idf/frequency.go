package idf

import (
	"errors"
	"fmt"
	"math"
)

var (
	ErrUnknownGroup  = errors.New("unknown group")
	ErrUnknownTerm   = errors.New("term not counted in group")
	ErrZeroFrequency = errors.New("non-positive document frequency")
)

// GroupStats holds the record count of one group and the number of records
// in that group containing each term.
type GroupStats struct {
	Total    int
	TermFreq map[string]int
}

// GroupTable maps a group key (funding organisation identifier) to its stats.
type GroupTable map[string]GroupStats

// DocumentFrequency counts in how many documents each term appears.
// A term repeated within one document is counted once for that document.
func DocumentFrequency(docs []string) map[string]int {
	df := make(map[string]int)
	for _, doc := range docs {
		seen := make(map[string]struct{})
		for _, word := range Tokenize(doc) {
			if _, ok := seen[word]; ok {
				continue
			}
			seen[word] = struct{}{}
			df[word]++
		}
	}
	return df
}

// BuildGroupTable partitions items by group key and computes the document
// frequencies of each partition independently.
func BuildGroupTable[T any](items []T, groupKey func(T) string, text func(T) string) GroupTable {
	// First pass: group texts by key
	partitions := make(map[string][]string)
	for _, item := range items {
		key := groupKey(item)
		partitions[key] = append(partitions[key], text(item))
	}

	// Second pass: count per partition
	table := make(GroupTable, len(partitions))
	for key, docs := range partitions {
		table[key] = GroupStats{
			Total:    len(docs),
			TermFreq: DocumentFrequency(docs),
		}
	}

	return table
}

// Stats returns the stats for a group key.
func (t GroupTable) Stats(key string) (GroupStats, error) {
	stats, ok := t[key]
	if !ok {
		return GroupStats{}, fmt.Errorf("%w: %q", ErrUnknownGroup, key)
	}
	return stats, nil
}

// Records returns the number of records across all groups.
func (t GroupTable) Records() int {
	n := 0
	for _, stats := range t {
		n += stats.Total
	}
	return n
}

// Weight returns ln(Total / TermFreq[term]). A term that appears in every
// record of the group weighs zero.
func (s GroupStats) Weight(term string) (float64, error) {
	df, ok := s.TermFreq[term]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownTerm, term)
	}
	if df <= 0 {
		return 0, fmt.Errorf("%w: %q has %d", ErrZeroFrequency, term, df)
	}
	return math.Log(float64(s.Total) / float64(df)), nil
}

// Vocabulary returns every term counted in any group
func (t GroupTable) Vocabulary() map[string]struct{} {
	vocab := make(map[string]struct{})
	for _, stats := range t {
		for term := range stats.TermFreq {
			vocab[term] = struct{}{}
		}
	}
	return vocab
}
