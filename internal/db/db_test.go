package db_test

import (
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/letterdesk/internal/db"
)

func TestRebind(t *testing.T) {
	t.Parallel()

	q := "SELECT * FROM interns WHERE owner_id = ? AND status <> '?' AND id = ?"
	assert.Equal(t, "SELECT * FROM interns WHERE owner_id = $1 AND status <> '?' AND id = $2", db.Postgres.Rebind(q))
	assert.Equal(t, q, db.SQLite.Rebind(q))
}

func TestMigrations(t *testing.T) {
	t.Parallel()

	for _, d := range []db.Dialect{db.Postgres, db.SQLite} {
		assert.True(t, d.Valid())
		entries, err := fs.ReadDir(db.Migrations, d.MigrationsDir())
		require.NoError(t, err)
		assert.Len(t, entries, 2, string(d))
	}
	assert.False(t, db.Dialect("mysql").Valid())
}
