// Package db holds the SQL schema shared by the postgres and sqlite stores.
package db

import (
	"embed"
	"strconv"
	"strings"

	"github.com/dmitrymomot/letterdesk/pkg/pg"
	"github.com/dmitrymomot/letterdesk/pkg/sqlite"
)

// Migrations contains goose migrations for every supported dialect.
//
//go:embed migrations
var Migrations embed.FS

// Dialect names a SQL flavour.
type Dialect string

const (
	Postgres Dialect = "postgres"
	SQLite   Dialect = "sqlite"
)

// MigrationsDir returns the directory inside Migrations for d.
func (d Dialect) MigrationsDir() string {
	return "migrations/" + string(d)
}

// Valid reports whether d is supported.
func (d Dialect) Valid() bool {
	return d == Postgres || d == SQLite
}

// Rebind rewrites '?' placeholders to '$1, $2, ...' for postgres.
// Question marks inside single-quoted literals are left alone.
func (d Dialect) Rebind(query string) string {
	if d != Postgres {
		return query
	}

	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	quoted := false
	for i := 0; i < len(query); i++ {
		c := query[i]
		switch {
		case c == '\'':
			quoted = !quoted
		case c == '?' && !quoted:
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteByte(c)
	}
	return b.String()
}

// IsUniqueViolation reports a unique constraint failure from either driver.
func IsUniqueViolation(err error) bool {
	return pg.IsDuplicateKeyError(err) || sqlite.IsUniqueViolation(err)
}
