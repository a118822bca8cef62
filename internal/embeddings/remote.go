package embeddings

import (
	"context"
	"fmt"
	"sort"
)

// BuildTable embeds every word of a vocabulary and returns them as a Table.
// Words are embedded in sorted order so repeated runs issue identical requests.
func BuildTable(ctx context.Context, embedder TextEmbedder, vocabulary map[string]struct{}) (*Table, error) {
	words := make([]string, 0, len(vocabulary))
	for w := range vocabulary {
		words = append(words, w)
	}
	sort.Strings(words)

	t := NewTable(embedder.GetDimension())
	if len(words) == 0 {
		return t, nil
	}

	vecs, err := embedder.EmbedTexts(ctx, words)
	if err != nil {
		return nil, fmt.Errorf("embed vocabulary: %w", err)
	}

	// Trust the provider's dimension over the model table
	if len(vecs) > 0 && len(vecs[0]) != t.dim {
		t.dim = len(vecs[0])
	}
	for i, w := range words {
		if err := t.add(w, vecs[i]); err != nil {
			return nil, err
		}
	}
	return t, nil
}
