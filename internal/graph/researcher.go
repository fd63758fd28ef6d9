package graph

import (
	"context"
	"fmt"
	"time"

	"github.com/Divas-Gupta30/rag-agent/internal/llm"
	"github.com/rs/zerolog/log"
)

// RateLimitNotice is appended to the retrieved facts when synthesis was throttled.
const RateLimitNotice = "(API Rate Limit Hit. Please wait a moment and try again.)"

// Researcher retrieves context for the latest turn and drafts an answer from it.
type Researcher struct {
	Retriever Retriever
	Gateway   Gateway
}

// Research always returns an assistant turn. On success the turn is a tagged
// draft; on gateway failure it carries the raw facts and an error note.
func (r *Researcher) Research(ctx context.Context, s *State) Turn {
	start := time.Now()
	latest, _ := s.Latest()
	query := latest.Content

	log.Info().Str("stage", string(StageResearcher)).Str("query", query).Msg("Researcher is looking up")
	passages := r.Retriever.Search(ctx, query)

	draft, err := r.Gateway.Complete(ctx, researcherPrompt(query, passages))
	if err != nil {
		kind := observeFailure(StageResearcher, err, start)
		note := fmt.Sprintf("(LLM Synthesis Failed: %v)", err)
		if kind == llm.KindRateLimited {
			note = RateLimitNotice
		}
		return AssistantTurn(fmt.Sprintf("Found Facts: %s\n\n%s", passages, note))
	}

	observeSuccess(StageResearcher, start)
	return AssistantTurn(EncodeDraft(passages, draft))
}
