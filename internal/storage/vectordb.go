package storage

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/Divas-Gupta30/rag-agent/internal/processing"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"
	"github.com/pkg/errors"
)

type Document struct {
	ID       int
	Filename string
	Source   string
	FileType string
	Content  string
}

// Passage renders the document the way prompts expect it.
func (d Document) Passage() string {
	return fmt.Sprintf("File: %s\n%s", filepath.Base(d.Filename), strings.TrimSpace(d.Content))
}

// VectorStore keeps document chunks and their embeddings in Postgres.
type VectorStore struct {
	pool *pgxpool.Pool
}

func NewVectorStore(pool *pgxpool.Pool) *VectorStore {
	return &VectorStore{pool: pool}
}

// ReplaceFile swaps every stored chunk of meta.Path for chunks in one
// transaction, so a failed insert leaves the previous version intact.
func (v *VectorStore) ReplaceFile(ctx context.Context, meta processing.Metadata, chunks []string, embeddings [][]float32) error {
	if len(chunks) != len(embeddings) {
		return errors.Errorf("got %d chunks but %d embeddings", len(chunks), len(embeddings))
	}
	return pgx.BeginFunc(ctx, v.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, "DELETE FROM documents WHERE filename = $1", meta.Path); err != nil {
			return errors.Wrap(err, "delete file chunks")
		}
		for i := range chunks {
			_, err := tx.Exec(ctx,
				"INSERT INTO documents (filename, source, file_type, content, embedding) VALUES ($1, $2, $3, $4, $5)",
				meta.Path, meta.Source, string(meta.FileType), chunks[i], pgvector.NewVector(embeddings[i]))
			if err != nil {
				return errors.Wrapf(err, "insert chunk %d", i)
			}
		}
		return nil
	})
}

// QuerySimilar returns top-k most similar documents
func (v *VectorStore) QuerySimilar(ctx context.Context, queryEmb []float32, topK int) ([]Document, error) {
	rows, err := v.pool.Query(ctx,
		"SELECT id, filename, source, file_type, content FROM documents ORDER BY embedding <-> $1 LIMIT $2",
		pgvector.NewVector(queryEmb), topK)
	if err != nil {
		return nil, errors.Wrap(err, "query failed")
	}
	defer rows.Close()

	var results []Document
	for rows.Next() {
		var doc Document
		if err := rows.Scan(&doc.ID, &doc.Filename, &doc.Source, &doc.FileType, &doc.Content); err != nil {
			return nil, errors.Wrap(err, "scan document")
		}
		results = append(results, doc)
	}
	return results, errors.Wrap(rows.Err(), "iterate documents")
}

// Count returns the number of stored chunks.
func (v *VectorStore) Count(ctx context.Context) (int64, error) {
	var n int64
	err := v.pool.QueryRow(ctx, "SELECT COUNT(*) FROM documents").Scan(&n)
	return n, errors.Wrap(err, "count documents")
}

func (v *VectorStore) Ping(ctx context.Context) error {
	return v.pool.Ping(ctx)
}
