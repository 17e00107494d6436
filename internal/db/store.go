package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/stormlightlabs/linedex/internal/posting"
)

// InvalidID is returned by the upsert operations when the write fails.
const InvalidID int64 = -1

// TimeLayout is the ISO-8601 local-time layout of files.modified.
const TimeLayout = "2006-01-02T15:04:05"

var (
	ErrNotFound      = errors.New("not found")
	ErrUnknownDriver = errors.New("unknown database driver")
)

// Entity selects the relation searched by LookupID.
type Entity int

const (
	EntityFile Entity = iota
	EntityWord
)

func (e Entity) String() string {
	switch e {
	case EntityFile:
		return "file"
	case EntityWord:
		return "word"
	default:
		return "unknown"
	}
}

func (e Entity) lookupSQL() (string, error) {
	switch e {
	case EntityFile:
		return `SELECT id FROM files WHERE path = ?`, nil
	case EntityWord:
		return `SELECT id FROM words WHERE word = ?`, nil
	default:
		return "", fmt.Errorf("lookup: unsupported entity %d", e)
	}
}

// Options selects the backend and its data source.
type Options struct {
	Driver string
	DSN    string
}

type Store struct {
	db      *sql.DB
	dialect Dialect
}

// Open connects to the store. Every handle is independent: the indexing
// worker and the query side each open their own.
func Open(ctx context.Context, opts Options) (*Store, error) {
	if opts.DSN == "" {
		return nil, errors.New("db path is required")
	}
	dialect, err := LookupDialect(opts.Driver)
	if err != nil {
		return nil, err
	}
	db, err := dialect.connect(ctx, opts.DSN)
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Store{db: db, dialect: dialect}, nil
}

// OpenPath opens a SQLite store at path with the default driver.
func OpenPath(ctx context.Context, path string) (*Store, error) {
	return Open(ctx, Options{Driver: DriverSQLite, DSN: path})
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Dialect reports the backend in use.
func (s *Store) Dialect() Dialect {
	return s.dialect
}

func (s *Store) Init(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, s.dialect.Schema)
	return err
}

func (s *Store) EnsureSchema(ctx context.Context) error {
	if err := s.Init(ctx); err != nil {
		return fmt.Errorf("init schema: %w", err)
	}
	return nil
}

func EnsureDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}

// FormatTime renders t in local time using TimeLayout.
func FormatTime(t time.Time) string {
	return t.Local().Format(TimeLayout)
}

func (s *Store) WithTx(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

// LookupID finds the identifier of a file by path or a word by its text.
// A miss is reported as ok=false with a nil error.
func (s *Store) LookupID(ctx context.Context, kind Entity, key string) (int64, bool, error) {
	query, err := kind.lookupSQL()
	if err != nil {
		return 0, false, err
	}
	var id int64
	err = s.db.QueryRowContext(ctx, s.dialect.Rebind(query), key).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("lookup %s %q: %w", kind, key, err)
	}
	return id, true, nil
}

// UpsertFile inserts the file row for path or refreshes its size, modified
// time and line count. It returns the row id, or InvalidID with the error
// when the write fails.
func (s *Store) UpsertFile(ctx context.Context, path string, size int64, modified time.Time, lineCount int) (int64, error) {
	id, ok, err := s.LookupID(ctx, EntityFile, path)
	if err != nil {
		return InvalidID, err
	}
	stamp := FormatTime(modified)

	if !ok {
		err := s.db.QueryRowContext(
			ctx,
			s.dialect.Rebind(`INSERT INTO files (path, size, modified, line_count) VALUES (?, ?, ?, ?) RETURNING id`),
			path, size, stamp, lineCount,
		).Scan(&id)
		if err != nil {
			return InvalidID, fmt.Errorf("insert file %s: %w", path, err)
		}
		return id, nil
	}

	if _, err := s.db.ExecContext(
		ctx,
		s.dialect.Rebind(`UPDATE files SET size = ?, modified = ?, line_count = ? WHERE id = ?`),
		size, stamp, lineCount, id,
	); err != nil {
		return InvalidID, fmt.Errorf("update file %s: %w", path, err)
	}
	return id, nil
}

// UpsertWord inserts word with an occurrence counter of delta, or adds delta
// to the counter of the existing row.
func (s *Store) UpsertWord(ctx context.Context, word string, delta int) (int64, error) {
	id, ok, err := s.LookupID(ctx, EntityWord, word)
	if err != nil {
		return InvalidID, err
	}

	if !ok {
		err := s.db.QueryRowContext(
			ctx,
			s.dialect.Rebind(`INSERT INTO words (word, occurrences) VALUES (?, ?) RETURNING id`),
			word, delta,
		).Scan(&id)
		if err != nil {
			return InvalidID, fmt.Errorf("insert word %q: %w", word, err)
		}
		return id, nil
	}

	if _, err := s.db.ExecContext(
		ctx,
		s.dialect.Rebind(`UPDATE words SET occurrences = occurrences + ? WHERE id = ?`),
		delta, id,
	); err != nil {
		return InvalidID, fmt.Errorf("update word %q: %w", word, err)
	}
	return id, nil
}

// UpsertPosting replaces the posting for (wordID, fileID) with lines.
func (s *Store) UpsertPosting(ctx context.Context, wordID, fileID int64, lines []int) error {
	_, err := s.db.ExecContext(
		ctx,
		s.dialect.Rebind(`INSERT INTO postings (word_id, file_id, line_numbers) VALUES (?, ?, ?)
			ON CONFLICT (word_id, file_id) DO UPDATE SET line_numbers = excluded.line_numbers`),
		wordID, fileID, posting.FormatLines(lines),
	)
	if err != nil {
		return fmt.Errorf("upsert posting word=%d file=%d: %w", wordID, fileID, err)
	}
	return nil
}

// PostingLines returns the stored line numbers for (wordID, fileID).
func (s *Store) PostingLines(ctx context.Context, wordID, fileID int64) ([]int, bool, error) {
	var raw string
	err := s.db.QueryRowContext(
		ctx,
		s.dialect.Rebind(`SELECT line_numbers FROM postings WHERE word_id = ? AND file_id = ?`),
		wordID, fileID,
	).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return posting.ParseLines(raw), true, nil
}

// ClearAll empties postings, then words, then files.
func (s *Store) ClearAll(ctx context.Context) error {
	return s.WithTx(ctx, func(tx *sql.Tx) error {
		for _, table := range []string{"postings", "words", "files"} {
			if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
				return fmt.Errorf("clear %s: %w", table, err)
			}
		}
		return nil
	})
}
