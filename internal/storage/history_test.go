package storage

import (
	"context"
	"testing"

	"github.com/Divas-Gupta30/rag-agent/internal/graph"
	"github.com/Divas-Gupta30/rag-agent/internal/processing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryHistoryLifecycle(t *testing.T) {
	ctx := context.Background()
	h := NewMemoryHistory()

	_, err := h.Load(ctx, "s1")
	assert.ErrorIs(t, err, ErrSessionNotFound)

	require.NoError(t, h.Create(ctx, "s1"))
	assert.ErrorIs(t, h.Create(ctx, "s1"), ErrSessionExists)

	turns := []graph.Turn{graph.UserTurn("hi"), graph.AssistantTurn("hello")}
	require.NoError(t, h.Replace(ctx, "s1", turns))

	got, err := h.Load(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, turns, got)

	got[0] = graph.UserTurn("mutated")
	again, _ := h.Load(ctx, "s1")
	assert.Equal(t, "hi", again[0].Content)

	require.NoError(t, h.Clear(ctx, "s1"))
	got, err = h.Load(ctx, "s1")
	require.NoError(t, err)
	assert.Empty(t, got)

	assert.ErrorIs(t, h.Clear(ctx, "missing"), ErrSessionNotFound)
}

func TestDocumentPassage(t *testing.T) {
	d := Document{Filename: "/data/physics/gravity.pdf", Content: "  Gravity pulls.\n"}
	assert.Equal(t, "File: gravity.pdf\nGravity pulls.", d.Passage())
	assert.Equal(t, processing.TypePDF, processing.TypeOf(d.Filename))
}
