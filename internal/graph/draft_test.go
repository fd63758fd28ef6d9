package graph

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDraftRoundTrip(t *testing.T) {
	pairs := []struct {
		context string
		draft   string
	}{
		{"Gravity causes objects to accelerate...", "Gravity: objects accelerate toward mass."},
		{"", ""},
		{"  padded context \n", "\n\tpadded draft  "},
		{"multi\n\nparagraph\n\ncontext", "- bullet one\n- bullet two"},
		{"context mentions ---DRAFT_BLOCK--- inline", "draft"},
		{"CONTEXT_BLOCK: nested marker", "draft with ---DRAFT_BLOCK--- inside"},
		{"ends with ---DRAFT_BLOCK", "x"},
		{"DRAFT_BLOCK_ and DRAFT_BLOCK__ stay intact", "y"},
		{"(Error during retrieval): connection refused", "I don't know."},
	}

	for _, p := range pairs {
		encoded := EncodeDraft(p.context, p.draft)
		ctx, draft, ok := DecodeDraft(encoded)
		require.True(t, ok, "encoded: %q", encoded)
		assert.Equal(t, strings.TrimSpace(p.context), ctx)
		assert.Equal(t, strings.TrimSpace(p.draft), draft)
	}
}

func TestDecodeDraftMissingSeparator(t *testing.T) {
	_, _, ok := DecodeDraft("CONTEXT_BLOCK:\nsome context but no separator")
	assert.False(t, ok)

	_, _, ok = DecodeDraft("---DRAFT_BLOCK---\ndraft without context marker")
	assert.False(t, ok)

	ctx, draft, ok := DecodeDraftOrRaw("just an answer")
	assert.False(t, ok)
	assert.Equal(t, UnknownContext, ctx)
	assert.Equal(t, "just an answer", draft)
}
