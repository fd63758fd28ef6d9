package graph

import (
	"context"
	"errors"
)

type scriptedReply struct {
	text string
	err  error
}

// scriptedGateway replays replies in order and records every prompt.
type scriptedGateway struct {
	replies []scriptedReply
	prompts []string
}

func (g *scriptedGateway) Complete(_ context.Context, prompt string) (string, error) {
	g.prompts = append(g.prompts, prompt)
	if len(g.prompts) > len(g.replies) {
		return "", errors.New("no scripted reply available")
	}
	r := g.replies[len(g.prompts)-1]
	return r.text, r.err
}

func reply(text string) scriptedReply { return scriptedReply{text: text} }
func fail(err error) scriptedReply    { return scriptedReply{err: err} }

type fakeRetriever struct {
	passages string
	queries  []string
}

func (f *fakeRetriever) Search(_ context.Context, query string) string {
	f.queries = append(f.queries, query)
	return f.passages
}
