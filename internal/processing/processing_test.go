package processing

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChunkTextParagraphs(t *testing.T) {
	text := "First paragraph.\n\n\n  Second paragraph.  \n \nThird."
	assert.Equal(t, []string{"First paragraph.", "Second paragraph.", "Third."}, ChunkText(text))
}

func TestChunkerWindowsLongParagraphs(t *testing.T) {
	c := NewChunker(10, 4)
	chunks := c.Split(strings.Repeat("abcdefghij", 3))

	require.NotEmpty(t, chunks)
	for _, ch := range chunks {
		assert.LessOrEqual(t, utf8.RuneCountInString(ch), 10)
	}
	assert.Equal(t, "abcdefghij", chunks[0])
	assert.Equal(t, "ghijabcdef", chunks[1])
}

func TestChunkerKeepsRunesWhole(t *testing.T) {
	c := NewChunker(5, 1)
	for _, ch := range c.Split(strings.Repeat("é", 12)) {
		assert.True(t, utf8.ValidString(ch))
	}
}

func TestNewChunkerDefaults(t *testing.T) {
	assert.Equal(t, Chunker{Size: DefaultChunkSize, Overlap: DefaultChunkOverlap}, NewChunker(0, -1))
	assert.Equal(t, Chunker{Size: 100, Overlap: 20}, NewChunker(100, 100))
}

func TestMetadata(t *testing.T) {
	m := NewMetadata("/data/lectures/Gravity Notes.PDF", SourceLocal)
	assert.Equal(t, TypePDF, m.FileType)
	assert.Equal(t, "Gravity Notes", m.Title)
	assert.Equal(t, SourceLocal, m.Source)

	assert.True(t, Supported("talk.m4a"))
	assert.True(t, Supported("deck.pptx"))
	assert.False(t, Supported("archive.zip"))
}

func TestOllamaEmbedder(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req ollamaRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "nomic-embed-text", req.Model)
		_ = json.NewEncoder(w).Encode(ollamaResponse{Embedding: []float32{0.1, 0.2, 0.3}})
	}))
	defer srv.Close()

	e := NewOllamaEmbedder(srv.URL, "", 3)
	embs, err := e.EmbedChunks(context.Background(), []string{"a", "b"})
	require.NoError(t, err)
	assert.Len(t, embs, 2)

	_, err = e.QueryEmbedding(context.Background(), "  ")
	assert.Error(t, err)

	e.Dim = 4
	_, err = e.QueryEmbedding(context.Background(), "gravity")
	assert.ErrorContains(t, err, "expected embedding dim 4")
}
