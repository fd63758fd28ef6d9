package retrieval

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/Divas-Gupta30/rag-agent/internal/graph"
	"github.com/Divas-Gupta30/rag-agent/internal/metrics"
	"github.com/Divas-Gupta30/rag-agent/internal/processing"
	"github.com/Divas-Gupta30/rag-agent/internal/storage"
	"github.com/rs/zerolog/log"
)

const (
	DefaultTopK     = 15
	DefaultCacheTTL = 10 * time.Minute

	NoDocuments = "No relevant documents found."
)

// Searcher is the nearest-neighbour half of the vector store.
type Searcher interface {
	QuerySimilar(ctx context.Context, queryEmb []float32, topK int) ([]storage.Document, error)
}

// Cache stores rendered passages per query.
type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
}

type cachedPassages struct {
	Passages string    `json:"passages"`
	CachedAt time.Time `json:"cached_at"`
}

// Retriever embeds the query, searches the vector store and renders passages.
type Retriever struct {
	embedder processing.Embedder
	store    Searcher
	cache    Cache
	topK     int
	ttl      time.Duration
}

var _ graph.Retriever = (*Retriever)(nil)

type Option func(*Retriever)

func WithTopK(k int) Option {
	return func(r *Retriever) {
		if k > 0 {
			r.topK = k
		}
	}
}

// WithCache enables caching of rendered passages for ttl.
func WithCache(c Cache, ttl time.Duration) Option {
	return func(r *Retriever) {
		r.cache = c
		if ttl > 0 {
			r.ttl = ttl
		}
	}
}

func New(embedder processing.Embedder, store Searcher, opts ...Option) *Retriever {
	r := &Retriever{
		embedder: embedder,
		store:    store,
		topK:     DefaultTopK,
		ttl:      DefaultCacheTTL,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Search never fails: any error comes back as a human-readable string so
// callers can treat the result uniformly as context text.
func (r *Retriever) Search(ctx context.Context, query string) string {
	key := cacheKey(query, r.topK)
	if r.cache != nil {
		var hit cachedPassages
		found, err := r.cache.Get(ctx, key, &hit)
		if err != nil {
			log.Warn().Err(err).Msg("retrieval cache read failed")
		}
		if found {
			metrics.RetrievalCacheTotal.WithLabelValues("hit").Inc()
			return hit.Passages
		}
		metrics.RetrievalCacheTotal.WithLabelValues("miss").Inc()
	}

	docs, err := r.search(ctx, query)
	if err != nil {
		log.Warn().Err(err).Str("query", query).Msg("retrieval degraded")
		return fmt.Sprintf("(Error during retrieval): %v", err)
	}
	passages := Render(docs)

	// an empty store is usually one that has not been indexed yet
	if r.cache != nil && len(docs) > 0 {
		if err := r.cache.Set(ctx, key, cachedPassages{Passages: passages, CachedAt: time.Now()}, r.ttl); err != nil {
			log.Warn().Err(err).Msg("retrieval cache write failed")
		}
	}
	return passages
}

func (r *Retriever) search(ctx context.Context, query string) ([]storage.Document, error) {
	qemb, err := r.embedder.QueryEmbedding(ctx, query)
	if err != nil {
		return nil, err
	}
	return r.store.QuerySimilar(ctx, qemb, r.topK)
}

// Render joins document passages with blank lines.
func Render(docs []storage.Document) string {
	if len(docs) == 0 {
		return NoDocuments
	}
	parts := make([]string, len(docs))
	for i, d := range docs {
		parts[i] = d.Passage()
	}
	return strings.Join(parts, "\n\n")
}

func cacheKey(query string, k int) string {
	sum := sha1.Sum([]byte(strings.TrimSpace(strings.ToLower(query))))
	return fmt.Sprintf("retrieval:%s:%d", hex.EncodeToString(sum[:]), k)
}
