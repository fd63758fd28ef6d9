package graph

import (
	"context"
	"time"

	"github.com/Divas-Gupta30/rag-agent/internal/llm"
	"github.com/rs/zerolog/log"
)

// ReviewSkippedNote is appended to an unreviewed draft when the fact-check was throttled.
const ReviewSkippedNote = "(Review skipped due to Rate Limit 429)"

const unknownQuery = "Unknown"

// Reviewer fact-checks the researcher's draft against the retrieved context.
type Reviewer struct {
	Gateway Gateway
}

// Review returns the polished answer. A throttled review keeps the draft with
// a note; any other failure keeps the draft as is.
func (r *Reviewer) Review(ctx context.Context, s *State) Turn {
	start := time.Now()

	query := unknownQuery
	if prev, ok := s.Previous(); ok {
		query = prev.Content
	}
	latest, _ := s.Latest()
	passages, draft, ok := DecodeDraftOrRaw(latest.Content)
	if !ok {
		log.Debug().Str("stage", string(StageReviewer)).Msg("draft is not tagged, reviewing raw content")
	}

	log.Info().Str("stage", string(StageReviewer)).Msg("Reviewer is critiquing the draft")
	final, err := r.Gateway.Complete(ctx, reviewerPrompt(query, passages, draft))
	if err != nil {
		if observeFailure(StageReviewer, err, start) == llm.KindRateLimited {
			return AssistantTurn(draft + "\n\n" + ReviewSkippedNote)
		}
		return AssistantTurn(draft)
	}

	observeSuccess(StageReviewer, start)
	return AssistantTurn(final)
}
