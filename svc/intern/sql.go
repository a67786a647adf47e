package intern

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrymomot/letterdesk/internal/db"
)

const internColumns = `id, owner_id, name, email, position, start_date, duration, location, stipend, offer_date, status, created_at, updated_at`

// SQLStore keeps records in the interns table of a postgres or sqlite
// database.
type SQLStore struct {
	db      *sql.DB
	dialect db.Dialect
	opts    options
}

// NewSQLStore returns a store using conn with the given dialect.
func NewSQLStore(conn *sql.DB, dialect db.Dialect, opts ...Option) *SQLStore {
	return &SQLStore{db: conn, dialect: dialect, opts: newOptions(opts)}
}

func (s *SQLStore) List(ctx context.Context, ownerID string) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx, s.dialect.Rebind(
		`SELECT `+internColumns+` FROM interns WHERE owner_id = ? ORDER BY created_at DESC, id DESC`,
	), ownerID)
	if err != nil {
		return nil, fmt.Errorf("intern: list: %w", err)
	}
	defer rows.Close()

	out := make([]Record, 0)
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("intern: list: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("intern: list: %w", err)
	}
	return out, nil
}

func (s *SQLStore) Get(ctx context.Context, ownerID, id string) (Record, error) {
	row := s.db.QueryRowContext(ctx, s.dialect.Rebind(
		`SELECT `+internColumns+` FROM interns WHERE owner_id = ? AND id = ?`,
	), ownerID, id)
	r, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, ErrNotFound
	}
	if err != nil {
		return Record{}, fmt.Errorf("intern: get: %w", err)
	}
	return r, nil
}

func (s *SQLStore) Lookup(ctx context.Context, id string) (Record, error) {
	row := s.db.QueryRowContext(ctx, s.dialect.Rebind(
		`SELECT `+internColumns+` FROM interns WHERE id = ?`,
	), id)
	r, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, ErrNotFound
	}
	if err != nil {
		return Record{}, fmt.Errorf("intern: lookup: %w", err)
	}
	return r, nil
}

func (s *SQLStore) Create(ctx context.Context, rec Record) (Record, error) {
	rec, err := prepareCreate(rec, s.opts)
	if err != nil {
		return Record{}, err
	}

	_, err = s.db.ExecContext(ctx, s.dialect.Rebind(
		`INSERT INTO interns (`+internColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
	),
		rec.ID, rec.OwnerID, rec.Name, rec.Email, rec.Position, rec.StartDate, rec.Duration,
		rec.Location, rec.Stipend, rec.OfferDate, string(rec.Status), rec.CreatedAt, rec.UpdatedAt,
	)
	if db.IsUniqueViolation(err) {
		return Record{}, errors.Join(ErrConflict, err)
	}
	if err != nil {
		return Record{}, fmt.Errorf("intern: create: %w", err)
	}
	return rec, nil
}

func (s *SQLStore) Update(ctx context.Context, rec Record) (Record, error) {
	existing, err := s.Get(ctx, rec.OwnerID, rec.ID)
	if err != nil {
		return Record{}, err
	}
	rec, err = prepareUpdate(rec, existing, s.opts)
	if err != nil {
		return Record{}, err
	}

	res, err := s.db.ExecContext(ctx, s.dialect.Rebind(
		`UPDATE interns SET name = ?, email = ?, position = ?, start_date = ?, duration = ?, location = ?,
		stipend = ?, offer_date = ?, status = ?, updated_at = ? WHERE owner_id = ? AND id = ?`,
	),
		rec.Name, rec.Email, rec.Position, rec.StartDate, rec.Duration, rec.Location,
		rec.Stipend, rec.OfferDate, string(rec.Status), rec.UpdatedAt, rec.OwnerID, rec.ID,
	)
	if db.IsUniqueViolation(err) {
		return Record{}, errors.Join(ErrConflict, err)
	}
	if err != nil {
		return Record{}, fmt.Errorf("intern: update: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return Record{}, ErrNotFound
	}
	return rec, nil
}

func (s *SQLStore) Delete(ctx context.Context, ownerID, id string) error {
	res, err := s.db.ExecContext(ctx, s.dialect.Rebind(
		`DELETE FROM interns WHERE owner_id = ? AND id = ?`,
	), ownerID, id)
	if err != nil {
		return fmt.Errorf("intern: delete: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("intern: delete: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(row scanner) (Record, error) {
	var (
		r      Record
		status string
	)
	err := row.Scan(
		&r.ID, &r.OwnerID, &r.Name, &r.Email, &r.Position, &r.StartDate, &r.Duration,
		&r.Location, &r.Stipend, &r.OfferDate, &status, &r.CreatedAt, &r.UpdatedAt,
	)
	if err != nil {
		return Record{}, err
	}
	r.Status = Status(status)
	r.CreatedAt = r.CreatedAt.UTC()
	r.UpdatedAt = r.UpdatedAt.UTC()
	return r, nil
}
