package retrieval

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/Divas-Gupta30/rag-agent/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeEmbedder struct {
	err   error
	calls int
}

func (f *fakeEmbedder) EmbedChunks(_ context.Context, chunks []string) ([][]float32, error) {
	return nil, errors.New("not used")
}

func (f *fakeEmbedder) QueryEmbedding(_ context.Context, _ string) ([]float32, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return []float32{1, 0, 0}, nil
}

type fakeStore struct {
	docs []storage.Document
	err  error
	topK int
}

func (f *fakeStore) QuerySimilar(_ context.Context, _ []float32, topK int) ([]storage.Document, error) {
	f.topK = topK
	return f.docs, f.err
}

type mapCache map[string][]byte

func (m mapCache) Get(_ context.Context, key string, dst any) (bool, error) {
	b, ok := m[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(b, dst)
}

func (m mapCache) Set(_ context.Context, key string, value any, _ time.Duration) error {
	b, err := json.Marshal(value)
	m[key] = b
	return err
}

func TestSearchRendersPassages(t *testing.T) {
	store := &fakeStore{docs: []storage.Document{
		{Filename: "data/gravity.pdf", Content: "Gravity causes objects to accelerate."},
		{Filename: "data/lecture.mp3", Content: "Newton described it."},
	}}
	r := New(&fakeEmbedder{}, store)

	out := r.Search(context.Background(), "gravity")
	assert.Equal(t, "File: gravity.pdf\nGravity causes objects to accelerate.\n\nFile: lecture.mp3\nNewton described it.", out)
	assert.Equal(t, DefaultTopK, store.topK)
}

func TestSearchEmpty(t *testing.T) {
	r := New(&fakeEmbedder{}, &fakeStore{}, WithTopK(3))
	assert.Equal(t, NoDocuments, r.Search(context.Background(), "anything"))
}

func TestSearchErrorsBecomeText(t *testing.T) {
	r := New(&fakeEmbedder{err: errors.New("ollama down")}, &fakeStore{})
	assert.Equal(t, "(Error during retrieval): ollama down", r.Search(context.Background(), "q"))

	r = New(&fakeEmbedder{}, &fakeStore{err: errors.New("relation \"documents\" does not exist")})
	assert.Contains(t, r.Search(context.Background(), "q"), "(Error during retrieval)")
}

func TestSearchUsesCache(t *testing.T) {
	emb := &fakeEmbedder{}
	store := &fakeStore{docs: []storage.Document{{Filename: "a.txt", Content: "alpha"}}}
	c := mapCache{}
	r := New(emb, store, WithCache(c, time.Minute))

	first := r.Search(context.Background(), "Alpha?")
	second := r.Search(context.Background(), "  alpha?  ")
	require.Equal(t, first, second)
	assert.Equal(t, 1, emb.calls)
	assert.Len(t, c, 1)
}

func TestSearchDoesNotCacheErrors(t *testing.T) {
	c := mapCache{}
	r := New(&fakeEmbedder{err: errors.New("boom")}, &fakeStore{}, WithCache(c, time.Minute))
	r.Search(context.Background(), "q")
	assert.Empty(t, c)
}

func TestSearchDoesNotCacheEmptyResults(t *testing.T) {
	emb := &fakeEmbedder{}
	store := &fakeStore{}
	c := mapCache{}
	r := New(emb, store, WithCache(c, time.Minute))

	assert.Equal(t, NoDocuments, r.Search(context.Background(), "gravity"))
	assert.Empty(t, c)

	// documents indexed after the first query are visible right away
	store.docs = []storage.Document{{Filename: "gravity.pdf", Content: "Gravity pulls."}}
	assert.Equal(t, "File: gravity.pdf\nGravity pulls.", r.Search(context.Background(), "gravity"))
	assert.Equal(t, 2, emb.calls)
	assert.Len(t, c, 1)
}
