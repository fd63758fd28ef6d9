package main

import (
	"fmt"

	"github.com/Divas-Gupta30/rag-agent/internal/config"
	"github.com/Divas-Gupta30/rag-agent/internal/ingestion"
	"github.com/spf13/cobra"
)

func newDriveAuthCmd() *cobra.Command {
	var code string
	cmd := &cobra.Command{
		Use:   "drive-auth",
		Short: "Authorize read-only Google Drive access for index --drive-folder",
		RunE: func(cmd *cobra.Command, args []string) error {
			dc := driveConfig(cfg)
			out := cmd.OutOrStdout()
			if code == "" {
				url, err := ingestion.DriveAuthURL(dc)
				if err != nil {
					return err
				}
				fmt.Fprintln(out, "Open this URL, approve access, then rerun with --code:")
				fmt.Fprintln(out, url)
				return nil
			}
			if err := ingestion.ExchangeDriveCode(cmd.Context(), dc, code); err != nil {
				return err
			}
			fmt.Fprintf(out, "Token saved to %s\n", dc.TokenFile)
			return nil
		},
	}
	cmd.Flags().StringVar(&code, "code", "", "authorization code returned by Google")
	return cmd
}

func driveConfig(c *config.Config) ingestion.DriveConfig {
	return ingestion.DriveConfig{
		ClientID:     c.Google.ClientID,
		ClientSecret: c.Google.ClientSecret,
		RedirectURL:  c.Google.RedirectURL,
		TokenFile:    c.Google.TokenFile,
	}
}
