package main

import (
	"fmt"
	"os"

	"github.com/Divas-Gupta30/rag-agent/internal/ingestion"
	"github.com/Divas-Gupta30/rag-agent/internal/processing"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func newIndexCmd() *cobra.Command {
	var (
		path        string
		driveFolder string
	)
	cmd := &cobra.Command{
		Use:   "index",
		Short: "Extract, chunk, embed and store documents from a folder or Google Drive",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a := newApp(ctx, cfg)
			defer a.Close()
			if a.store == nil {
				return errors.Wrap(a.dbErr, "indexing needs the vector store")
			}
			// audio needs a transcription-capable gateway; everything else indexes without one
			if err := a.withGateway(); err != nil {
				log.Warn().Err(err).Msg("no language model configured, audio files will be skipped")
			}

			ix := &ingestion.Indexer{
				Extractor: &ingestion.Extractor{Transcriber: a.transcriber()},
				Chunker:   processing.NewChunker(processing.DefaultChunkSize, processing.DefaultChunkOverlap),
				Embedder:  a.embedder,
				Sink:      a.store,
			}

			var total ingestion.Report
			if path != "" {
				log.Info().Str("path", path).Msg("Starting indexing")
				files, err := ingestion.LoadLocalFiles(path)
				if err != nil {
					return err
				}
				rep, err := ix.IndexFiles(ctx, ingestion.LocalFiles(files), processing.SourceLocal)
				total = add(total, rep)
				if err != nil {
					return err
				}
			}

			if driveFolder != "" {
				importer, err := ingestion.NewDriveImporter(ctx, driveConfig(cfg))
				if err != nil {
					return err
				}
				tmp, err := os.MkdirTemp("", "rag_drive")
				if err != nil {
					return errors.Wrap(err, "create drive download dir")
				}
				defer os.RemoveAll(tmp)

				log.Info().Str("folder", driveFolder).Msg("Downloading from Google Drive")
				files, err := importer.Download(ctx, driveFolder, tmp)
				if err != nil {
					return err
				}
				rep, err := ix.IndexFiles(ctx, files, processing.SourceDrive)
				total = add(total, rep)
				if err != nil {
					return err
				}
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Indexing complete. %d files indexed (%d chunks), %d skipped.\n",
				total.Indexed, total.Chunks, total.Skipped)
			return nil
		},
	}
	cmd.Flags().StringVar(&path, "path", "./data", "path to folder to index")
	cmd.Flags().StringVar(&driveFolder, "drive-folder", "", "Google Drive folder id to import")
	return cmd
}

func add(a, b ingestion.Report) ingestion.Report {
	return ingestion.Report{
		Indexed: a.Indexed + b.Indexed,
		Skipped: a.Skipped + b.Skipped,
		Chunks:  a.Chunks + b.Chunks,
	}
}
