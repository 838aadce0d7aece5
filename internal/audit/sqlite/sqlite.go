package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/procsnap/procsnap/internal/audit"
)

// Sink writes audit events to SQLite (modernc.org/sqlite driver, CGO-free).
type Sink struct {
	db *sql.DB
}

// New opens (or creates) the SQLite database behind dsn.
// Accepted forms:
//   - "sqlite:///path/to/file.db"
//   - "sqlite://:memory:"
//   - "/path/to/file.db" or ":memory:" (without prefix)
func New(dsn string) (*Sink, error) {
	dsn = strings.TrimSpace(dsn)
	if dsn == "" {
		return nil, errors.New("empty SQLite DSN")
	}
	if strings.HasPrefix(strings.ToLower(dsn), "sqlite://") {
		dsn = dsn[len("sqlite://"):]
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	// busy timeout helps with short concurrent locks
	_, _ = db.Exec("PRAGMA busy_timeout=3000;")

	s := &Sink{db: db}
	if err := s.ensureSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Sink) ensureSchema(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS action_audit(
			occurred_at TIMESTAMP NOT NULL,
			action TEXT NOT NULL,
			pid INTEGER NOT NULL,
			name TEXT NOT NULL,
			ok BOOLEAN NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_action_audit_pid ON action_audit(pid);`,
		`CREATE INDEX IF NOT EXISTS idx_action_audit_action ON action_audit(action);`,
	}
	for _, q := range stmts {
		if _, err := s.db.ExecContext(ctx, q); err != nil {
			return err
		}
	}
	return nil
}

func (s *Sink) Send(ctx context.Context, e audit.Event) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO action_audit(occurred_at, action, pid, name, ok)
		VALUES(?, ?, ?, ?, ?);`,
		e.OccurredAt.UTC(), e.Action, e.PID, e.Name, e.OK)
	return err
}

func (s *Sink) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}
