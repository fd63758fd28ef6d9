package storage

import (
	"context"
	"database/sql"
	"sync"
	"time"

	"github.com/Divas-Gupta30/rag-agent/internal/graph"
	"github.com/lib/pq"
	"github.com/pkg/errors"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrSessionExists   = errors.New("session already exists")
)

// uniqueViolation is the Postgres SQLSTATE for duplicate keys.
const uniqueViolation = "23505"

// History owns the persistent transcript of each chat session.
type History interface {
	Create(ctx context.Context, sessionID string) error
	Load(ctx context.Context, sessionID string) ([]graph.Turn, error)
	Replace(ctx context.Context, sessionID string, turns []graph.Turn) error
	Clear(ctx context.Context, sessionID string) error
}

// SQLHistory stores transcripts in Postgres through database/sql and lib/pq.
type SQLHistory struct {
	db *sql.DB
}

var _ History = (*SQLHistory)(nil)

func OpenSQLHistory(ctx context.Context, dbURL string) (*SQLHistory, error) {
	if dbURL == "" {
		dbURL = DefaultDatabaseURL
	}
	db, err := sql.Open("postgres", dbURL)
	if err != nil {
		return nil, errors.Wrap(err, "open history database")
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "ping history database")
	}
	h := &SQLHistory{db: db}
	if err := h.createTables(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return h, nil
}

func (h *SQLHistory) Close() error { return h.db.Close() }

func (h *SQLHistory) createTables(ctx context.Context) error {
	query := `
	CREATE TABLE IF NOT EXISTS chat_sessions (
		id TEXT PRIMARY KEY,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);
	CREATE TABLE IF NOT EXISTS chat_turns (
		session_id TEXT NOT NULL REFERENCES chat_sessions(id) ON DELETE CASCADE,
		seq INTEGER NOT NULL,
		role TEXT NOT NULL,
		content TEXT NOT NULL,
		PRIMARY KEY (session_id, seq)
	);`
	_, err := h.db.ExecContext(ctx, query)
	return errors.Wrap(err, "create history tables")
}

func (h *SQLHistory) Create(ctx context.Context, sessionID string) error {
	_, err := h.db.ExecContext(ctx, "INSERT INTO chat_sessions (id) VALUES ($1)", sessionID)
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		return ErrSessionExists
	}
	return errors.Wrap(err, "create session")
}

func (h *SQLHistory) Load(ctx context.Context, sessionID string) ([]graph.Turn, error) {
	var exists bool
	err := h.db.QueryRowContext(ctx,
		"SELECT EXISTS (SELECT 1 FROM chat_sessions WHERE id = $1)", sessionID).Scan(&exists)
	if err != nil {
		return nil, errors.Wrap(err, "lookup session")
	}
	if !exists {
		return nil, ErrSessionNotFound
	}

	rows, err := h.db.QueryContext(ctx,
		"SELECT role, content FROM chat_turns WHERE session_id = $1 ORDER BY seq", sessionID)
	if err != nil {
		return nil, errors.Wrap(err, "load turns")
	}
	defer rows.Close()

	turns := []graph.Turn{}
	for rows.Next() {
		var role, content string
		if err := rows.Scan(&role, &content); err != nil {
			return nil, errors.Wrap(err, "scan turn")
		}
		r, err := graph.ParseRole(role)
		if err != nil {
			return nil, err
		}
		turns = append(turns, graph.Turn{Role: r, Content: content})
	}
	return turns, errors.Wrap(rows.Err(), "iterate turns")
}

// Replace swaps the stored transcript for turns in one transaction.
func (h *SQLHistory) Replace(ctx context.Context, sessionID string, turns []graph.Turn) error {
	tx, err := h.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "begin replace")
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO chat_sessions (id) VALUES ($1)
		 ON CONFLICT (id) DO UPDATE SET updated_at = $2`, sessionID, time.Now()); err != nil {
		return errors.Wrap(err, "upsert session")
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM chat_turns WHERE session_id = $1", sessionID); err != nil {
		return errors.Wrap(err, "delete turns")
	}

	if len(turns) > 0 {
		seqs := make([]int64, len(turns))
		roles := make([]string, len(turns))
		contents := make([]string, len(turns))
		for i, t := range turns {
			seqs[i] = int64(i)
			roles[i] = t.Role.String()
			contents[i] = t.Content
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO chat_turns (session_id, seq, role, content)
			 SELECT $1, s.seq, s.role, s.content
			 FROM unnest($2::int[], $3::text[], $4::text[]) AS s(seq, role, content)`,
			sessionID, pq.Array(seqs), pq.Array(roles), pq.Array(contents)); err != nil {
			return errors.Wrap(err, "insert turns")
		}
	}
	return errors.Wrap(tx.Commit(), "commit replace")
}

func (h *SQLHistory) Clear(ctx context.Context, sessionID string) error {
	res, err := h.db.ExecContext(ctx, "DELETE FROM chat_turns WHERE session_id = $1", sessionID)
	if err != nil {
		return errors.Wrap(err, "clear turns")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		if _, err := h.Load(ctx, sessionID); err != nil {
			return err
		}
	}
	return nil
}

func (h *SQLHistory) Ping(ctx context.Context) error {
	return h.db.PingContext(ctx)
}

// MemoryHistory is the in-process History used when no database is configured.
type MemoryHistory struct {
	mu       sync.Mutex
	sessions map[string][]graph.Turn
}

var _ History = (*MemoryHistory)(nil)

func NewMemoryHistory() *MemoryHistory {
	return &MemoryHistory{sessions: make(map[string][]graph.Turn)}
}

func (m *MemoryHistory) Create(_ context.Context, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[sessionID]; ok {
		return ErrSessionExists
	}
	m.sessions[sessionID] = []graph.Turn{}
	return nil
}

func (m *MemoryHistory) Load(_ context.Context, sessionID string) ([]graph.Turn, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	turns, ok := m.sessions[sessionID]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return append([]graph.Turn{}, turns...), nil
}

func (m *MemoryHistory) Replace(_ context.Context, sessionID string, turns []graph.Turn) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[sessionID] = append([]graph.Turn{}, turns...)
	return nil
}

func (m *MemoryHistory) Clear(_ context.Context, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[sessionID]; !ok {
		return ErrSessionNotFound
	}
	m.sessions[sessionID] = []graph.Turn{}
	return nil
}
