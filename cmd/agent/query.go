package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/Divas-Gupta30/rag-agent/internal/graph"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

func newQueryCmd() *cobra.Command {
	var question string
	cmd := &cobra.Command{
		Use:   "query",
		Short: "Ask a single question",
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(question) == "" {
				return errors.New(`please provide -q "your query"`)
			}
			ctx := cmd.Context()
			a := newApp(ctx, cfg)
			defer a.Close()
			if err := a.withGateway(); err != nil {
				return err
			}

			state, err := a.orchestrator().Run(ctx, []graph.Turn{graph.UserTurn(question)})
			if err != nil {
				return err
			}
			printAnswer(cmd.OutOrStdout(), graph.FinalAnswer(state))
			return nil
		},
	}
	cmd.Flags().StringVarP(&question, "query", "q", "", "query text")
	return cmd
}

func printAnswer(w io.Writer, ans graph.Answer) {
	fmt.Fprintln(w, "Answer:", ans.Text)
	if ans.HasDiagram {
		fmt.Fprintln(w)
		fmt.Fprintln(w, graph.DiagramHint)
	}
}
