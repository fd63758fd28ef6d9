package ingestion

import (
	"context"
	"strings"

	"github.com/Divas-Gupta30/rag-agent/internal/processing"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// TextExtractor is satisfied by *Extractor.
type TextExtractor interface {
	ExtractText(ctx context.Context, path string) (string, error)
}

// Sink stores chunk embeddings. *storage.VectorStore satisfies it.
type Sink interface {
	// ReplaceFile drops the chunks stored under meta.Path and writes the new
	// ones atomically.
	ReplaceFile(ctx context.Context, meta processing.Metadata, chunks []string, embeddings [][]float32) error
}

// File is one document to index. Path is where the bytes are on disk; Name
// is the identity stored with the chunks and must stay the same across runs.
type File struct {
	Path string
	Name string
}

// LocalFiles wraps paths that are their own identity.
func LocalFiles(paths []string) []File {
	files := make([]File, len(paths))
	for i, p := range paths {
		files[i] = File{Path: p, Name: p}
	}
	return files
}

// Indexer runs extract, chunk, embed and store over a list of files.
type Indexer struct {
	Extractor TextExtractor
	Chunker   processing.Chunker
	Embedder  processing.Embedder
	Sink      Sink
}

// Report summarizes one indexing run.
type Report struct {
	Indexed int
	Skipped int
	Chunks  int
}

// IndexFiles indexes each file. Per-file failures are logged and counted as
// skipped; only context cancellation aborts the run.
func (ix *Indexer) IndexFiles(ctx context.Context, files []File, source string) (Report, error) {
	var rep Report
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return rep, errors.Wrap(err, "indexing cancelled")
		}
		n, err := ix.IndexFile(ctx, f, source)
		if err != nil {
			log.Warn().Err(err).Str("file", f.Name).Msg("skip file")
			rep.Skipped++
			continue
		}
		log.Info().Str("file", f.Name).Int("chunks", n).Msg("indexed")
		rep.Indexed++
		rep.Chunks += n
	}
	return rep, nil
}

// IndexFile replaces any chunks previously stored under f.Name and returns
// the number of chunks written.
func (ix *Indexer) IndexFile(ctx context.Context, f File, source string) (int, error) {
	if f.Name == "" {
		f.Name = f.Path
	}
	text, err := ix.Extractor.ExtractText(ctx, f.Path)
	if err != nil {
		return 0, errors.Wrap(err, "extract")
	}
	if strings.TrimSpace(text) == "" {
		return 0, errors.New("no text extracted")
	}

	chunker := ix.Chunker
	if chunker.Size <= 0 || chunker.Overlap >= chunker.Size {
		chunker = processing.NewChunker(chunker.Size, chunker.Overlap)
	}
	chunks := chunker.Split(text)
	embs, err := ix.Embedder.EmbedChunks(ctx, chunks)
	if err != nil {
		return 0, errors.Wrap(err, "embed")
	}

	meta := processing.NewMetadata(f.Name, source)
	if err := ix.Sink.ReplaceFile(ctx, meta, chunks, embs); err != nil {
		return 0, errors.Wrap(err, "store")
	}
	return len(chunks), nil
}
