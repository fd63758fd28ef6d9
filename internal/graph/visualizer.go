package graph

import (
	"context"
	"time"

	"github.com/Divas-Gupta30/rag-agent/internal/llm"
	"github.com/rs/zerolog/log"
)

const (
	VisualizationRateLimited = "(Visualization skipped due to API Rate Limit. Please try again later.)"
	VisualizationFailed      = "(Visualization Failed)"
)

// Visualizer asks the gateway for an optional key-points summary followed by
// a mermaid flowchart. It is a terminal stage.
type Visualizer struct {
	Gateway Gateway
}

func (v *Visualizer) Visualize(ctx context.Context, s *State) Turn {
	start := time.Now()

	instruction, _ := s.Latest()
	background := instruction
	if prev, ok := s.Previous(); ok {
		background = prev
	}

	log.Info().Str("stage", string(StageVisualizer)).Msg("Visualizer is drawing a flowchart")
	out, err := v.Gateway.Complete(ctx, visualizerPrompt(background.Content, instruction.Content))
	if err != nil {
		if observeFailure(StageVisualizer, err, start) == llm.KindRateLimited {
			return AssistantTurn(VisualizationRateLimited)
		}
		return AssistantTurn(VisualizationFailed)
	}

	observeSuccess(StageVisualizer, start)
	if !HasDiagram(out) {
		log.Warn().Str("stage", string(StageVisualizer)).Msg("gateway output has no flowchart block")
	}
	return AssistantTurn(out)
}
