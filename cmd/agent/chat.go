package main

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/Divas-Gupta30/rag-agent/internal/graph"
	"github.com/Divas-Gupta30/rag-agent/internal/storage"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func newChatCmd() *cobra.Command {
	var sessionID string
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Interactive multi-turn chat (exit or quit to leave, /clear to reset)",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a := newApp(ctx, cfg)
			defer a.Close()
			if err := a.withGateway(); err != nil {
				return err
			}

			var history storage.History = storage.NewMemoryHistory()
			if sql, err := storage.OpenSQLHistory(ctx, cfg.Database.URL); err != nil {
				log.Warn().Err(err).Msg("chat history will not be persisted")
			} else {
				defer sql.Close()
				history = sql
			}

			if sessionID == "" {
				sessionID = uuid.NewString()
			}
			if err := history.Create(ctx, sessionID); err != nil && !errors.Is(err, storage.ErrSessionExists) {
				return err
			}
			turns, err := history.Load(ctx, sessionID)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Session %s (%d previous messages). Type exit to quit.\n", sessionID, len(turns))

			orch := a.orchestrator()
			scanner := bufio.NewScanner(cmd.InOrStdin())
			for {
				fmt.Fprint(out, "> ")
				if !scanner.Scan() {
					return scanner.Err()
				}
				line := strings.TrimSpace(scanner.Text())
				switch line {
				case "":
					continue
				case "exit", "quit":
					return nil
				case "/clear":
					if err := history.Clear(ctx, sessionID); err != nil {
						return err
					}
					turns = nil
					fmt.Fprintln(out, "History cleared.")
					continue
				}

				state, err := orch.Run(ctx, append(turns, graph.UserTurn(line)))
				if err != nil {
					return err
				}
				turns = state.Transcript()
				if err := history.Replace(ctx, sessionID, turns); err != nil {
					log.Warn().Err(err).Msg("save chat history")
				}
				printAnswer(out, graph.FinalAnswer(state))
			}
		},
	}
	cmd.Flags().StringVar(&sessionID, "session", "", "resume the given session id")
	return cmd
}
