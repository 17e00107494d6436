package search

import (
	"context"
	"strings"
	"time"

	"github.com/stormlightlabs/linedex/internal/db"
)

// DateLayout is the layout of the from/to dates accepted on every surface.
const DateLayout = "2006-01-02"

// Filter restricts the files a query considers. Zero fields impose no
// constraint; all set fields must hold.
type Filter struct {
	// Mask is a glob with * and ? matched against the stored file path.
	Mask string
	// From and To are calendar dates, inclusive, in local time.
	From time.Time
	To   time.Time
}

// ParseDate parses a YYYY-MM-DD date in local time. An empty string is the
// zero time.
func ParseDate(s string) (time.Time, error) {
	if strings.TrimSpace(s) == "" {
		return time.Time{}, nil
	}
	return time.ParseInLocation(DateLayout, strings.TrimSpace(s), time.Local)
}

// WildcardToLike turns a * / ? glob into a LIKE pattern that uses '\' as
// its escape character.
func WildcardToLike(mask string) string {
	if mask == "" {
		return ""
	}
	r := strings.NewReplacer(
		`\`, `\\`,
		`%`, `\%`,
		`_`, `\_`,
		`*`, `%`,
		`?`, `_`,
	)
	return r.Replace(mask)
}

func (f Filter) store() db.FileFilter {
	var out db.FileFilter
	out.Like = WildcardToLike(f.Mask)
	if !f.From.IsZero() {
		y, m, d := f.From.Date()
		out.From = db.FormatTime(time.Date(y, m, d, 0, 0, 0, 0, time.Local))
	}
	if !f.To.IsZero() {
		y, m, d := f.To.Date()
		out.To = db.FormatTime(time.Date(y, m, d, 23, 59, 59, 0, time.Local))
	}
	return out
}

// ListFiles returns the indexed files passing f, in insertion order.
func ListFiles(ctx context.Context, src Source, f Filter) ([]db.File, error) {
	return src.ListFiles(ctx, f.store())
}
