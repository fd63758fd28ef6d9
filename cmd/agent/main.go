package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/Divas-Gupta30/rag-agent/internal/config"
	"github.com/Divas-Gupta30/rag-agent/internal/logging"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	configFile string
	logCfg     logging.Config
	cfg        *config.Config
)

var rootCmd = &cobra.Command{
	Use:           "agent",
	Short:         "agent answers questions over your documents with a team of LLM workers",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := logging.Init(logCfg); err != nil {
			return err
		}
		loaded, err := config.Load(configFile)
		if err != nil {
			return err
		}
		cfg = loaded
		return nil
	},
}

func init() {
	// logging flags
	rootCmd.PersistentFlags().BoolVar(&logCfg.WithCaller, "with-caller", false, "Log caller")
	rootCmd.PersistentFlags().StringVar(&logCfg.Level, "log-level", "info", "Log level (debug, info, warn, error, fatal)")
	rootCmd.PersistentFlags().StringVar(&logCfg.Format, "log-format", "text", "Log format (json, text)")

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Path to config file (default ./agent.yaml or ~/.rag-agent/agent.yaml)")

	rootCmd.AddCommand(newIndexCmd())
	rootCmd.AddCommand(newQueryCmd())
	rootCmd.AddCommand(newChatCmd())
	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newDriveAuthCmd())
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		log.Error().Err(err).Msg("agent failed")
		stop()
		os.Exit(1)
	}
}
