package history

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrymomot/letterdesk/internal/db"
)

const historyColumns = `id, owner_id, intern_id, kind, recipient_email, status, provider_message_id, error_kind, error_detail, channel, created_at`

// SQLStore keeps the log in the letter_history table. It only ever inserts
// and selects.
type SQLStore struct {
	db      *sql.DB
	dialect db.Dialect
	opts    options
}

func NewSQLStore(conn *sql.DB, dialect db.Dialect, opts ...Option) *SQLStore {
	return &SQLStore{db: conn, dialect: dialect, opts: newOptions(opts)}
}

func (s *SQLStore) Append(ctx context.Context, rec Record) (Record, error) {
	rec, err := prepare(rec, s.opts)
	if err != nil {
		return Record{}, err
	}

	_, err = s.db.ExecContext(ctx, s.dialect.Rebind(
		`INSERT INTO letter_history (`+historyColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
	),
		rec.ID, rec.OwnerID, rec.InternID, rec.Kind, rec.RecipientEmail, string(rec.Status),
		rec.ProviderMessageID, rec.ErrorKind, rec.ErrorDetail, rec.Channel, rec.CreatedAt,
	)
	if err != nil {
		return Record{}, fmt.Errorf("history: append: %w", err)
	}
	return rec, nil
}

func (s *SQLStore) ListAll(ctx context.Context, ownerID string) ([]Record, error) {
	return s.query(ctx,
		`SELECT `+historyColumns+` FROM letter_history WHERE owner_id = ? ORDER BY created_at DESC, id DESC`,
		ownerID)
}

func (s *SQLStore) ListByIntern(ctx context.Context, ownerID, internID string) ([]Record, error) {
	return s.query(ctx,
		`SELECT `+historyColumns+` FROM letter_history WHERE owner_id = ? AND intern_id = ? ORDER BY created_at DESC, id DESC`,
		ownerID, internID)
}

func (s *SQLStore) query(ctx context.Context, query string, args ...any) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx, s.dialect.Rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("history: list: %w", err)
	}
	defer rows.Close()

	out := make([]Record, 0)
	for rows.Next() {
		var (
			r      Record
			status string
		)
		if err := rows.Scan(
			&r.ID, &r.OwnerID, &r.InternID, &r.Kind, &r.RecipientEmail, &status,
			&r.ProviderMessageID, &r.ErrorKind, &r.ErrorDetail, &r.Channel, &r.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("history: scan: %w", err)
		}
		r.Status = Status(status)
		r.CreatedAt = r.CreatedAt.UTC()
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("history: list: %w", err)
	}
	return out, nil
}
