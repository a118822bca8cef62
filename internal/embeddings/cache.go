package embeddings

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"
)

// Cache stores word vectors keyed by model and word
type Cache interface {
	// GetMulti returns the cached vectors for the given words of a model.
	// Words without an entry are absent from the result.
	GetMulti(ctx context.Context, model string, words []string) (map[string][]float32, error)

	// SetMulti stores vectors for words of a model
	SetMulti(ctx context.Context, model string, vectors map[string][]float32) error
}

// CachedClient wraps a Client with a word cache
type CachedClient struct {
	client *Client
	cache  Cache
}

// NewCachedClient creates a new cached embedding client
func NewCachedClient(client *Client, cache Cache) *CachedClient {
	return &CachedClient{
		client: client,
		cache:  cache,
	}
}

// GetDimension returns the embedding dimension
func (c *CachedClient) GetDimension() int {
	return c.client.GetDimension()
}

// EmbedTexts embeds words, serving what it can from the cache
func (c *CachedClient) EmbedTexts(ctx context.Context, words []string) ([][]float32, error) {
	if len(words) == 0 {
		return nil, nil
	}

	model := c.client.Model()
	cached, err := c.cache.GetMulti(ctx, model, words)
	if err != nil {
		logrus.WithError(err).Warn("embedding cache lookup failed, embedding all words")
		cached = make(map[string][]float32)
	}

	var missing []string
	for _, w := range words {
		if _, ok := cached[w]; !ok {
			missing = append(missing, w)
		}
	}

	if len(missing) > 0 {
		fresh, err := c.client.EmbedTexts(ctx, missing)
		if err != nil {
			return nil, err
		}

		toCache := make(map[string][]float32, len(missing))
		for i, w := range missing {
			toCache[w] = fresh[i]
			cached[w] = fresh[i]
		}
		if err := c.cache.SetMulti(ctx, model, toCache); err != nil {
			logrus.WithError(err).Warn("embedding cache write failed")
		}
	}

	results := make([][]float32, len(words))
	for i, w := range words {
		results[i] = cached[w]
	}
	return results, nil
}

// MemoryCache is an in-process Cache
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string][]float32
}

// NewMemoryCache creates an empty in-memory cache
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{entries: make(map[string][]float32)}
}

func (c *MemoryCache) GetMulti(ctx context.Context, model string, words []string) (map[string][]float32, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make(map[string][]float32)
	for _, w := range words {
		if v, ok := c.entries[model+":"+w]; ok {
			out[w] = v
		}
	}
	return out, nil
}

func (c *MemoryCache) SetMulti(ctx context.Context, model string, vectors map[string][]float32) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for w, v := range vectors {
		c.entries[model+":"+w] = v
	}
	return nil
}
