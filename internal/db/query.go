package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/stormlightlabs/linedex/internal/posting"
)

// FileFilter restricts file rows. Empty fields impose no constraint; Like is
// a LIKE pattern using '\' as escape, From and To are TimeLayout strings.
type FileFilter struct {
	Like string
	From string
	To   string
}

func (f FileFilter) clause(alias, like string) (string, []any) {
	var b strings.Builder
	var args []any
	if f.Like != "" {
		fmt.Fprintf(&b, " AND %s.path %s ? ESCAPE '\\'", alias, like)
		args = append(args, f.Like)
	}
	if f.From != "" {
		fmt.Fprintf(&b, " AND %s.modified >= ?", alias)
		args = append(args, f.From)
	}
	if f.To != "" {
		fmt.Fprintf(&b, " AND %s.modified <= ?", alias)
		args = append(args, f.To)
	}
	return b.String(), args
}

// File is a row of the files relation.
type File struct {
	ID        int64  `json:"id"`
	Path      string `json:"path"`
	Size      int64  `json:"size"`
	Modified  string `json:"modified"`
	LineCount int    `json:"line_count"`
}

// Word is a row of the words relation.
type Word struct {
	ID          int64  `json:"id"`
	Text        string `json:"word"`
	Occurrences int64  `json:"occurrences"`
}

// FilePosting pairs a file with the lines one word occurs on in it.
type FilePosting struct {
	File  File
	Lines []int
}

// Stats summarizes the index contents.
type Stats struct {
	Files      int   `json:"files"`
	Words      int   `json:"words"`
	Postings   int   `json:"postings"`
	TotalLines int64 `json:"total_lines"`
	TotalBytes int64 `json:"total_bytes"`
}

// FilePostings joins the postings of word to the files passing filter.
func (s *Store) FilePostings(ctx context.Context, word string, filter FileFilter) ([]FilePosting, error) {
	where, args := filter.clause("f", s.dialect.like())
	query := `SELECT f.id, f.path, f.size, f.modified, f.line_count, p.line_numbers
		FROM postings p
		JOIN words w ON w.id = p.word_id
		JOIN files f ON f.id = p.file_id
		WHERE w.word = ?` + where + `
		ORDER BY f.id`

	rows, err := s.db.QueryContext(ctx, s.dialect.Rebind(query), append([]any{word}, args...)...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []FilePosting
	for rows.Next() {
		var fp FilePosting
		var raw string
		if err := rows.Scan(&fp.File.ID, &fp.File.Path, &fp.File.Size, &fp.File.Modified, &fp.File.LineCount, &raw); err != nil {
			return nil, err
		}
		fp.Lines = posting.ParseLines(raw)
		out = append(out, fp)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// ListFiles returns the files passing filter in insertion order.
func (s *Store) ListFiles(ctx context.Context, filter FileFilter) ([]File, error) {
	where, args := filter.clause("f", s.dialect.like())
	query := `SELECT f.id, f.path, f.size, f.modified, f.line_count FROM files f WHERE 1=1` + where + ` ORDER BY f.id`

	rows, err := s.db.QueryContext(ctx, s.dialect.Rebind(query), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var files []File
	for rows.Next() {
		var f File
		if err := rows.Scan(&f.ID, &f.Path, &f.Size, &f.Modified, &f.LineCount); err != nil {
			return nil, err
		}
		files = append(files, f)
	}
	return files, rows.Err()
}

func (s *Store) GetWord(ctx context.Context, word string) (Word, error) {
	var w Word
	err := s.db.QueryRowContext(
		ctx,
		s.dialect.Rebind(`SELECT id, word, occurrences FROM words WHERE word = ?`),
		word,
	).Scan(&w.ID, &w.Text, &w.Occurrences)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Word{}, fmt.Errorf("word %q: %w", word, ErrNotFound)
		}
		return Word{}, err
	}
	return w, nil
}

// TopWords returns the words with the highest occurrence counters.
func (s *Store) TopWords(ctx context.Context, limit int) ([]Word, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := s.db.QueryContext(
		ctx,
		s.dialect.Rebind(`SELECT id, word, occurrences FROM words ORDER BY occurrences DESC, word LIMIT ?`),
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var words []Word
	for rows.Next() {
		var w Word
		if err := rows.Scan(&w.ID, &w.Text, &w.Occurrences); err != nil {
			return nil, err
		}
		words = append(words, w)
	}
	return words, rows.Err()
}

func (s *Store) Stats(ctx context.Context) (Stats, error) {
	var st Stats
	if err := s.db.QueryRowContext(
		ctx,
		`SELECT COUNT(*), COALESCE(SUM(line_count), 0), COALESCE(SUM(size), 0) FROM files`,
	).Scan(&st.Files, &st.TotalLines, &st.TotalBytes); err != nil {
		return Stats{}, err
	}
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM words`).Scan(&st.Words); err != nil {
		return Stats{}, err
	}
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM postings`).Scan(&st.Postings); err != nil {
		return Stats{}, err
	}
	return st, nil
}
