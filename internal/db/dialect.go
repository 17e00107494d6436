package db

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"
	_ "github.com/mattn/go-sqlite3"
	_ "modernc.org/sqlite"
)

// Driver names accepted by Open.
const (
	DriverSQLite   = "sqlite"
	DriverSQLite3  = "sqlite3"
	DriverPostgres = "postgres"
)

// Dialect captures what differs between the supported SQL backends.
type Dialect struct {
	Name    string
	Schema  string
	dollar  bool
	connect func(ctx context.Context, dsn string) (*sql.DB, error)
}

var dialects = map[string]Dialect{
	DriverSQLite: {
		Name:   DriverSQLite,
		Schema: SQLiteSchema,
		connect: func(ctx context.Context, dsn string) (*sql.DB, error) {
			return sql.Open("sqlite", withParams(dsn,
				"_pragma=foreign_keys(1)",
				"_pragma=busy_timeout(5000)",
				"_pragma=journal_mode(WAL)",
			))
		},
	},
	DriverSQLite3: {
		Name:   DriverSQLite3,
		Schema: SQLiteSchema,
		connect: func(ctx context.Context, dsn string) (*sql.DB, error) {
			return sql.Open("sqlite3", withParams(dsn,
				"_foreign_keys=on",
				"_busy_timeout=5000",
				"_journal_mode=WAL",
			))
		},
	},
	DriverPostgres: {
		Name:   DriverPostgres,
		Schema: PostgresSchema,
		dollar: true,
		connect: func(ctx context.Context, dsn string) (*sql.DB, error) {
			cfg, err := pgx.ParseConfig(dsn)
			if err != nil {
				return nil, err
			}
			return stdlib.OpenDB(*cfg), nil
		},
	},
}

// LookupDialect returns the dialect registered for driver. An empty driver
// selects SQLite.
func LookupDialect(driver string) (Dialect, error) {
	if driver == "" {
		driver = DriverSQLite
	}
	d, ok := dialects[strings.ToLower(driver)]
	if !ok {
		return Dialect{}, fmt.Errorf("%w: %q", ErrUnknownDriver, driver)
	}
	return d, nil
}

// Drivers lists the accepted driver names.
func Drivers() []string {
	return []string{DriverSQLite, DriverSQLite3, DriverPostgres}
}

// Rebind rewrites ? placeholders into the dialect's style.
func (d Dialect) Rebind(query string) string {
	if !d.dollar {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	inQuote := false
	for _, r := range query {
		switch {
		case r == '\'':
			inQuote = !inQuote
			b.WriteRune(r)
		case r == '?' && !inQuote:
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

func withParams(dsn string, params ...string) string {
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + strings.Join(params, "&")
}

// like returns the case-insensitive pattern operator. SQLite LIKE already
// folds ASCII case.
func (d Dialect) like() string {
	if d.Name == DriverPostgres {
		return "ILIKE"
	}
	return "LIKE"
}
