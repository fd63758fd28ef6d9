package main

import (
	"time"

	"github.com/Divas-Gupta30/rag-agent/internal/server"
	"github.com/Divas-Gupta30/rag-agent/internal/storage"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func newServeCmd() *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the chat HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a := newApp(ctx, cfg)
			defer a.Close()
			if err := a.withGateway(); err != nil {
				return err
			}

			var history storage.History = storage.NewMemoryHistory()
			if sql, err := storage.OpenSQLHistory(ctx, cfg.Database.URL); err != nil {
				log.Warn().Err(err).Msg("sessions will be kept in memory")
			} else {
				defer sql.Close()
				history = sql
			}

			opts := []server.Option{server.WithCache(a.cache)}
			if a.store != nil {
				opts = append(opts, server.WithDatabase(a.store), server.WithDocumentCounter(a.store))
			}
			srv := server.New(a.orchestrator(), history, opts...)
			go srv.TrackDocuments(ctx, 30*time.Second)

			if addr == "" {
				addr = cfg.Server.Addr
			}
			return srv.ListenAndServe(ctx, addr)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from server.addr, :8080)")
	return cmd
}
