package main

import (
	"context"

	"github.com/Divas-Gupta30/rag-agent/internal/cache"
	"github.com/Divas-Gupta30/rag-agent/internal/config"
	"github.com/Divas-Gupta30/rag-agent/internal/graph"
	"github.com/Divas-Gupta30/rag-agent/internal/llm"
	"github.com/Divas-Gupta30/rag-agent/internal/processing"
	"github.com/Divas-Gupta30/rag-agent/internal/retrieval"
	"github.com/Divas-Gupta30/rag-agent/internal/storage"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
)

// app holds the collaborators shared by the subcommands.
type app struct {
	cfg      *config.Config
	pool     *pgxpool.Pool
	store    *storage.VectorStore
	dbErr    error
	cache    *cache.Redis
	embedder *processing.OllamaEmbedder
	gateway  llm.Gateway
}

// newApp connects to the vector store and the cache. Neither is fatal here:
// an unreachable database surfaces as retrieval error text in answers, and an
// unreachable cache just disables caching.
func newApp(ctx context.Context, cfg *config.Config) *app {
	a := &app{
		cfg:      cfg,
		embedder: processing.NewOllamaEmbedder(cfg.Embedding.URL, cfg.Embedding.Model, cfg.Embedding.Dim),
	}

	pool, err := storage.Open(ctx, cfg.Database.URL)
	if err == nil {
		err = storage.Migrate(ctx, pool, cfg.Embedding.Dim)
		if err != nil {
			pool.Close()
		}
	}
	if err != nil {
		log.Warn().Err(err).Msg("vector store unavailable")
		a.dbErr = err
	} else {
		a.pool = pool
		a.store = storage.NewVectorStore(pool)
	}

	a.cache, _ = cache.NewRedis(ctx, cache.Options{
		URL:      cfg.Redis.URL,
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	return a
}

// withGateway builds the language model client; it needs a valid config.
func (a *app) withGateway() error {
	if err := a.cfg.Validate(); err != nil {
		return err
	}
	gw, err := llm.New(llm.Settings{
		Provider:    a.cfg.LLM.Provider,
		APIKey:      a.cfg.LLM.APIKey,
		BaseURL:     a.cfg.LLM.BaseURL,
		Model:       a.cfg.LLM.Model,
		AudioModel:  a.cfg.LLM.AudioModel,
		Temperature: float64(a.cfg.LLM.Temperature),
	})
	if err != nil {
		return err
	}
	a.gateway = gw
	return nil
}

func (a *app) searcher() retrieval.Searcher {
	if a.store == nil {
		return unavailableStore{err: a.dbErr}
	}
	return a.store
}

func (a *app) orchestrator() *graph.Orchestrator {
	r := retrieval.New(a.embedder, a.searcher(),
		retrieval.WithTopK(a.cfg.Retrieval.TopK),
		retrieval.WithCache(a.cache, a.cfg.Retrieval.CacheTTL))
	return graph.New(r, a.gateway, graph.WithMaxCycles(a.cfg.Graph.MaxCycles))
}

// transcriber returns the gateway when it can transcribe audio.
func (a *app) transcriber() llm.Transcriber {
	if t, ok := a.gateway.(llm.Transcriber); ok {
		return t
	}
	return nil
}

func (a *app) Close() {
	if a.pool != nil {
		a.pool.Close()
	}
	_ = a.cache.Close()
}

type unavailableStore struct{ err error }

func (u unavailableStore) QuerySimilar(context.Context, []float32, int) ([]storage.Document, error) {
	return nil, u.err
}
