package llm

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"sync"
)

// CachingEmbedder wraps an EmbedderClient and memoizes vectors by a
// hash of the input text. Repeated audits of the same site embed the
// same titles. Errors are never cached.
type CachingEmbedder struct {
	inner EmbedderClient

	mu    sync.Mutex
	cache map[string][]float32
}

func NewCachingEmbedder(inner EmbedderClient) *CachingEmbedder {
	return &CachingEmbedder{
		inner: inner,
		cache: make(map[string][]float32),
	}
}

func (c *CachingEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	key := hashText(text)

	c.mu.Lock()
	if vec, ok := c.cache[key]; ok {
		c.mu.Unlock()
		return vec, nil
	}
	c.mu.Unlock()

	vec, err := c.inner.Embed(ctx, text)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.cache[key] = vec
	c.mu.Unlock()
	return vec, nil
}

func hashText(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}
