package graph

import (
	"context"
	"time"

	"github.com/Divas-Gupta30/rag-agent/internal/llm"
	"github.com/Divas-Gupta30/rag-agent/internal/metrics"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// Retriever returns relevant passages for a query. It never fails: errors are
// reported inside the returned text.
type Retriever interface {
	Search(ctx context.Context, query string) string
}

// RetrieverFunc adapts a plain function to Retriever.
type RetrieverFunc func(ctx context.Context, query string) string

func (f RetrieverFunc) Search(ctx context.Context, query string) string { return f(ctx, query) }

// Gateway completes a prompt; see llm.Failure for the error contract.
type Gateway = llm.Gateway

const DefaultMaxCycles = 3

// Orchestrator drives the supervisor / researcher / reviewer / visualizer
// graph for one query at a time.
type Orchestrator struct {
	researcher *Researcher
	reviewer   *Reviewer
	visualizer *Visualizer
	maxCycles  int
}

type Option func(*Orchestrator)

// WithMaxCycles caps how many times the supervisor may dispatch the
// researcher in one run. Further dispatches are turned into FINISH.
func WithMaxCycles(n int) Option {
	return func(o *Orchestrator) {
		if n > 0 {
			o.maxCycles = n
		}
	}
}

func New(retriever Retriever, gateway Gateway, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		researcher: &Researcher{Retriever: retriever, Gateway: gateway},
		reviewer:   &Reviewer{Gateway: gateway},
		visualizer: &Visualizer{Gateway: gateway},
		maxCycles:  DefaultMaxCycles,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Run seeds a state with history (prior turns plus the new user turn) and
// loops until FINISH. The returned state's transcript is history plus the
// final assistant turn.
func (o *Orchestrator) Run(ctx context.Context, history []Turn) (*State, error) {
	if len(history) == 0 {
		return nil, ErrEmptyHistory
	}
	s := NewState(history)

	stage := StageSupervisor
	for stage != StageFinish {
		if err := ctx.Err(); err != nil {
			return s, errors.Wrapf(err, "run interrupted before %s", stage)
		}
		s.Trace = append(s.Trace, stage)
		next, err := o.step(ctx, s, stage)
		if err != nil {
			return s, err
		}
		stage = next
	}
	s.Trace = append(s.Trace, StageFinish)
	return s, nil
}

func (o *Orchestrator) step(ctx context.Context, s *State, stage Stage) (Stage, error) {
	switch stage {
	case StageSupervisor:
		sig, err := Route(s)
		if err != nil {
			return StageFinish, err
		}
		log.Debug().Str("signal", string(sig)).Int("cycles", s.Cycles).Msg("supervisor routed")
		return o.dispatch(s, sig), nil
	case StageResearcher:
		s.Append(o.researcher.Research(ctx, s))
		return StageReviewer, nil
	case StageReviewer:
		s.Supersede(o.reviewer.Review(ctx, s))
		return StageSupervisor, nil
	case StageVisualizer:
		s.Append(o.visualizer.Visualize(ctx, s))
		return StageFinish, nil
	default:
		return StageFinish, errors.Errorf("unknown stage %q", stage)
	}
}

func (o *Orchestrator) dispatch(s *State, sig Signal) Stage {
	switch sig {
	case SignalResearcher:
		if s.Cycles >= o.maxCycles {
			log.Warn().Int("max_cycles", o.maxCycles).Msg("research cycle cap reached, finishing")
			s.Next = SignalFinish
			return StageFinish
		}
		s.Cycles++
		return StageResearcher
	case SignalVisualizer:
		return StageVisualizer
	default:
		return StageFinish
	}
}

func observeSuccess(stage Stage, start time.Time) {
	metrics.ObserveNode(string(stage), "success", start)
}

func observeFailure(stage Stage, err error, start time.Time) llm.Kind {
	kind := llm.KindOf(err)
	log.Warn().Err(err).Str("stage", string(stage)).Str("kind", kind.String()).Msg("gateway call failed")
	metrics.GatewayFailuresTotal.WithLabelValues(string(stage), kind.String()).Inc()
	metrics.ObserveNode(string(stage), "degraded", start)
	return kind
}
