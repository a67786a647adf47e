package intern_test

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/letterdesk/internal/db"
	"github.com/dmitrymomot/letterdesk/pkg/logger"
	"github.com/dmitrymomot/letterdesk/pkg/sqlite"
	"github.com/dmitrymomot/letterdesk/svc/intern"
)

var sqliteSeq atomic.Int64

func openSQLite(t *testing.T) *sql.DB {
	t.Helper()
	ctx := context.Background()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	conn, err := sqlite.Open(ctx, sqlite.Config{
		DSN:          fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", name, sqliteSeq.Add(1)),
		MaxOpenConns: 1,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	require.NoError(t, sqlite.Migrate(ctx, conn, db.Migrations, db.SQLite.MigrationsDir(), logger.Discard()))
	return conn
}

func TestSQLStore_SQLite(t *testing.T) {
	runStoreSuite(t, func(t *testing.T, now func() time.Time) intern.Store {
		return intern.NewSQLStore(openSQLite(t), db.SQLite, intern.WithClock(now))
	})
}

func newPostgresMock(t *testing.T) (*intern.SQLStore, sqlmock.Sqlmock) {
	t.Helper()
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return intern.NewSQLStore(conn, db.Postgres, intern.WithClock(stepClock(baseTime))), mock
}

var internCols = []string{
	"id", "owner_id", "name", "email", "position", "start_date", "duration",
	"location", "stipend", "offer_date", "status", "created_at", "updated_at",
}

func TestSQLStore_Postgres_Create(t *testing.T) {
	t.Parallel()

	store, mock := newPostgresMock(t)
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO interns (id, owner_id`)+`.*VALUES \(\$1, \$2, .*\$13\)`).
		WithArgs(sqlmock.AnyArg(), "o1", "Anu Priya", "anu@example.com", "Backend Engineer", "2025-01-01", "3 Months",
			"Technopark, Trivandrum", "INR 10,000 / month", "", "active", baseTime.Add(time.Second), baseTime.Add(time.Second)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	rec, err := store.Create(context.Background(), sampleRecord("o1", "Anu Priya", "anu@example.com"))
	require.NoError(t, err)
	assert.NotEmpty(t, rec.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLStore_Postgres_CreateConflict(t *testing.T) {
	t.Parallel()

	store, mock := newPostgresMock(t)
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO interns`)).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "interns_owner_email_uniq"})

	_, err := store.Create(context.Background(), sampleRecord("o1", "Anu", "anu@example.com"))
	assert.ErrorIs(t, err, intern.ErrConflict)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLStore_Postgres_Get(t *testing.T) {
	t.Parallel()

	store, mock := newPostgresMock(t)
	mock.ExpectQuery(regexp.QuoteMeta(`FROM interns WHERE owner_id = $1 AND id = $2`)).
		WithArgs("o1", "i1").
		WillReturnRows(sqlmock.NewRows(internCols).AddRow(
			"i1", "o1", "Anu", "anu@example.com", "Engineer", "2025-01-01", "3 Months",
			"Trivandrum", "10000", "", "completed", baseTime, baseTime,
		))
	mock.ExpectQuery(regexp.QuoteMeta(`FROM interns WHERE owner_id = $1 AND id = $2`)).
		WithArgs("o1", "missing").
		WillReturnError(sql.ErrNoRows)

	rec, err := store.Get(context.Background(), "o1", "i1")
	require.NoError(t, err)
	assert.Equal(t, intern.StatusCompleted, rec.Status)
	assert.Equal(t, baseTime, rec.CreatedAt)

	_, err = store.Get(context.Background(), "o1", "missing")
	assert.ErrorIs(t, err, intern.ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLStore_Postgres_ListAndDelete(t *testing.T) {
	t.Parallel()

	store, mock := newPostgresMock(t)
	mock.ExpectQuery(regexp.QuoteMeta(`FROM interns WHERE owner_id = $1 ORDER BY created_at DESC, id DESC`)).
		WithArgs("o1").
		WillReturnRows(sqlmock.NewRows(internCols).
			AddRow("i2", "o1", "B", "", "", "", "", "", "", "", "active", baseTime.Add(time.Hour), baseTime.Add(time.Hour)).
			AddRow("i1", "o1", "A", "", "", "", "", "", "", "", "active", baseTime, baseTime))
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM interns WHERE owner_id = $1 AND id = $2`)).
		WithArgs("o1", "i3").
		WillReturnResult(sqlmock.NewResult(0, 0))

	list, err := store.List(context.Background(), "o1")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "i2", list[0].ID)

	assert.ErrorIs(t, store.Delete(context.Background(), "o1", "i3"), intern.ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}
