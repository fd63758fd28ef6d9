package graph

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunResearchReviewFinish(t *testing.T) {
	retriever := &fakeRetriever{passages: gravityContext}
	gw := &scriptedGateway{replies: []scriptedReply{
		reply("Gravity: objects accelerate toward mass."),
		reply("Objects accelerate toward masses."),
	}}
	history := []Turn{UserTurn("Summarize the PDF on gravity")}

	s, err := New(retriever, gw).Run(context.Background(), history)
	require.NoError(t, err)

	assert.Equal(t, []Stage{StageSupervisor, StageResearcher, StageReviewer, StageSupervisor, StageFinish}, s.Trace)
	assert.Equal(t, SignalFinish, s.Next)
	assert.Equal(t, 1, s.Cycles)
	assert.Equal(t, []Turn{
		UserTurn("Summarize the PDF on gravity"),
		AssistantTurn("Objects accelerate toward masses."),
	}, s.Transcript())
	assert.Len(t, history, 1, "caller history must not be mutated")
	assert.Len(t, gw.prompts, 2)
}

func TestRunVisualizeSkipsResearch(t *testing.T) {
	retriever := &fakeRetriever{passages: "unused"}
	gw := &scriptedGateway{replies: []scriptedReply{
		reply("```mermaid\ngraph TD\nSea --> Cloud --> Rain --> Sea\n```"),
	}}

	s, err := New(retriever, gw).Run(context.Background(), []Turn{UserTurn("visualize the water cycle")})
	require.NoError(t, err)

	assert.Empty(t, retriever.queries)
	assert.Equal(t, []Stage{StageSupervisor, StageVisualizer, StageFinish}, s.Trace)
	assert.Equal(t, SignalVisualizer, s.Next)

	answer := FinalAnswer(s)
	assert.True(t, answer.HasDiagram)
	assert.Equal(t, "graph TD\nSea --> Cloud --> Rain --> Sea", answer.Diagram)
}

func TestRunWithPriorHistory(t *testing.T) {
	gw := &scriptedGateway{replies: []scriptedReply{reply("draft"), reply("final")}}
	history := []Turn{
		UserTurn("What is gravity?"),
		AssistantTurn("A force."),
		UserTurn("Explain in detail"),
	}

	s, err := New(&fakeRetriever{passages: "ctx"}, gw).Run(context.Background(), history)
	require.NoError(t, err)

	require.Len(t, s.Turns, 4)
	assert.Equal(t, AssistantTurn("final"), s.Turns[3])
	assert.Contains(t, gw.prompts[1], "User Query: Explain in detail")
}

func TestRunAlwaysAnswersOnGatewayFailure(t *testing.T) {
	gw := &scriptedGateway{replies: []scriptedReply{
		fail(errors.New("Error 429: rate limited")),
		fail(errors.New("Error 429: rate limited")),
	}}

	s, err := New(&fakeRetriever{passages: gravityContext}, gw).Run(context.Background(), []Turn{UserTurn("gravity?")})
	require.NoError(t, err)

	answer := s.Answer()
	assert.Contains(t, answer, gravityContext)
	assert.Contains(t, answer, RateLimitNotice)
	assert.Contains(t, answer, ReviewSkippedNote)
}

func TestRunCycleCapForcesFinish(t *testing.T) {
	gw := &scriptedGateway{replies: []scriptedReply{reply("d1"), reply("f1")}}
	o := New(&fakeRetriever{passages: "ctx"}, gw, WithMaxCycles(1))

	s := NewState([]Turn{UserTurn("q")})
	s.Cycles = 1
	next, err := o.step(context.Background(), s, StageSupervisor)
	require.NoError(t, err)
	assert.Equal(t, StageFinish, next)
	assert.Equal(t, SignalFinish, s.Next)
	assert.Empty(t, gw.prompts)
}

func TestRunEmptyHistory(t *testing.T) {
	_, err := New(&fakeRetriever{}, &scriptedGateway{}).Run(context.Background(), nil)
	assert.ErrorIs(t, err, ErrEmptyHistory)
}

func TestRunCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(&fakeRetriever{}, &scriptedGateway{}).Run(ctx, []Turn{UserTurn("q")})
	assert.ErrorIs(t, err, context.Canceled)
}
