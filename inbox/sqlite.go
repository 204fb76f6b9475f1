package inbox

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// SQLiteStore keeps messages in a SQLite database. The schema is migrated
// to the latest version when the store is opened.
type SQLiteStore struct {
	db  *sql.DB
	now func() time.Time
}

var sqlitePragmas = []string{
	"PRAGMA journal_mode=WAL",
	"PRAGMA busy_timeout=5000",
	"PRAGMA synchronous=NORMAL",
}

// OpenSQLite opens (creating if needed) the database at path and applies
// pending migrations.
func OpenSQLite(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// One writer at a time; WAL lets readers proceed.
	db.SetMaxOpenConns(1)

	for _, p := range sqlitePragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("apply %q: %w", p, err)
		}
	}
	if err := migrateUp(db); err != nil {
		db.Close()
		return nil, err
	}
	return &SQLiteStore{db: db, now: time.Now}, nil
}

// migrateUp runs the embedded migrations. ErrNoChange is not an error.
func migrateUp(db *sql.DB) error {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("failed to open embedded migrations: %w", err)
	}
	driver, err := sqlite.WithInstance(db, &sqlite.Config{})
	if err != nil {
		return fmt.Errorf("failed to create sqlite driver: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", src, "sqlite", driver)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}
	// Closing m would close db as well.
	m.Log = migrateLogger{}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migration up failed: %w", err)
	}
	return nil
}

// migrateLogger forwards migrate output to the package logger.
type migrateLogger struct{}

func (migrateLogger) Printf(format string, v ...any) {
	logger().Info("inbox: migrate " + fmt.Sprintf(format, v...))
}

func (migrateLogger) Verbose() bool { return false }

// Submit inserts a message.
func (s *SQLiteStore) Submit(ctx context.Context, sub Submission) (Message, error) {
	if err := sub.Validate(); err != nil {
		return Message{}, err
	}
	m := newMessage(sub, s.now())
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO messages (id, name, email, body, received_at, read) VALUES (?, ?, ?, ?, ?, 0)`,
		m.ID, m.Name, m.Email, m.Body, m.ReceivedAt.UnixNano())
	if err != nil {
		return Message{}, fmt.Errorf("insert message: %w", err)
	}
	return m, nil
}

// List returns every message, most recent first.
func (s *SQLiteStore) List(ctx context.Context) ([]Message, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, email, body, received_at, read FROM messages ORDER BY received_at DESC, seq DESC`)
	if err != nil {
		return nil, fmt.Errorf("query messages: %w", err)
	}
	defer rows.Close()

	msgs := []Message{}
	for rows.Next() {
		var (
			m    Message
			nano int64
		)
		if err := rows.Scan(&m.ID, &m.Name, &m.Email, &m.Body, &nano, &m.Read); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		m.ReceivedAt = time.Unix(0, nano).UTC()
		msgs = append(msgs, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate messages: %w", err)
	}
	return msgs, nil
}

// MarkRead flags the message with id as read.
func (s *SQLiteStore) MarkRead(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `UPDATE messages SET read = 1 WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("mark read: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("mark read: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// Close closes the database.
func (s *SQLiteStore) Close() error { return s.db.Close() }
