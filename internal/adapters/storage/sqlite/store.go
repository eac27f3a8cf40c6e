package sqlitestore

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/ffaguiar/verbo/internal/domain"
)

// Store is a durable single-node session store on SQLite. Sessions carry
// an expires_at epoch; expired rows are dropped lazily on read.
type Store struct {
	db  *sql.DB
	ttl time.Duration
	now func() time.Time
}

// NewStore opens (or creates) the database at path, ensuring the parent
// directory exists, and initializes the schema.
func NewStore(path string, ttl time.Duration) (*Store, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating db directory %s: %w", dir, err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening db at %s: %w", path, err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging db at %s: %w", path, err)
	}

	if err := initSchema(db); err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db, ttl: ttl, now: time.Now}, nil
}

func initSchema(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS sessions (
			id TEXT PRIMARY KEY,
			expires_at INTEGER NOT NULL
		);

		CREATE TABLE IF NOT EXISTS turns (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			session_id TEXT NOT NULL,
			role TEXT NOT NULL,
			text TEXT NOT NULL DEFAULT '',
			image_b64 TEXT NOT NULL DEFAULT '',
			created_at INTEGER NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_turns_session ON turns(session_id, id);
	`)
	if err != nil {
		return fmt.Errorf("initializing schema: %w", err)
	}
	return nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) GetTurns(ctx context.Context, id domain.SessionID) ([]domain.Turn, error) {
	alive, err := s.alive(ctx, id)
	if err != nil {
		return nil, err
	}
	if !alive {
		return nil, nil
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT role, text, image_b64, created_at FROM turns WHERE session_id = ? ORDER BY id ASC`,
		string(id))
	if err != nil {
		return nil, fmt.Errorf("%w: select turns: %v", domain.ErrStoreUnavailable, err)
	}
	defer rows.Close()

	var turns []domain.Turn
	for rows.Next() {
		var role, text, image string
		var createdAt int64
		if err := rows.Scan(&role, &text, &image, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning turn: %w", err)
		}
		turns = append(turns, domain.Turn{
			Role:      domain.Role(role),
			Text:      text,
			ImageB64:  image,
			CreatedAt: time.Unix(createdAt, 0).UTC(),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating turns: %v", domain.ErrStoreUnavailable, err)
	}
	return turns, nil
}

func (s *Store) AppendTurn(ctx context.Context, id domain.SessionID, turn domain.Turn) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: begin append: %v", domain.ErrStoreUnavailable, err)
	}
	defer tx.Rollback()

	expiresAt := s.now().Add(s.ttl).Unix()
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO sessions (id, expires_at) VALUES (?, ?)
		 ON CONFLICT(id) DO UPDATE SET expires_at = excluded.expires_at`,
		string(id), expiresAt); err != nil {
		return fmt.Errorf("%w: upsert session: %v", domain.ErrStoreUnavailable, err)
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO turns (session_id, role, text, image_b64, created_at) VALUES (?, ?, ?, ?, ?)`,
		string(id), string(turn.Role), turn.Text, turn.ImageB64, turn.CreatedAt.Unix()); err != nil {
		return fmt.Errorf("%w: insert turn: %v", domain.ErrStoreUnavailable, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: commit append: %v", domain.ErrStoreUnavailable, err)
	}
	return nil
}

func (s *Store) Touch(ctx context.Context, id domain.SessionID) error {
	expiresAt := s.now().Add(s.ttl).Unix()
	if _, err := s.db.ExecContext(ctx,
		`UPDATE sessions SET expires_at = ? WHERE id = ?`,
		expiresAt, string(id)); err != nil {
		return fmt.Errorf("%w: touch session: %v", domain.ErrStoreUnavailable, err)
	}
	return nil
}

// alive reports whether the session exists and has not expired,
// dropping its rows when the expiry has passed.
func (s *Store) alive(ctx context.Context, id domain.SessionID) (bool, error) {
	var expiresAt int64
	err := s.db.QueryRowContext(ctx,
		`SELECT expires_at FROM sessions WHERE id = ?`, string(id)).Scan(&expiresAt)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("%w: select session: %v", domain.ErrStoreUnavailable, err)
	}

	if s.now().Unix() >= expiresAt {
		// Lazy cleanup; failures here do not fail the read.
		s.db.ExecContext(ctx, `DELETE FROM turns WHERE session_id = ?`, string(id))
		s.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, string(id))
		return false, nil
	}
	return true, nil
}
