package workflow

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/dmitrymomot/letterdesk/pkg/file"
	"github.com/dmitrymomot/letterdesk/pkg/logger"
	"github.com/dmitrymomot/letterdesk/svc/dispatch"
	"github.com/dmitrymomot/letterdesk/svc/export"
	"github.com/dmitrymomot/letterdesk/svc/history"
	"github.com/dmitrymomot/letterdesk/svc/intern"
	"github.com/dmitrymomot/letterdesk/svc/letter"
)

// ErrInProgress means the same letter is already being sent.
var ErrInProgress = errors.New("workflow: letter dispatch already in progress")

// DefaultGuardTTL bounds how long a send blocks duplicates.
const DefaultGuardTTL = 30 * time.Second

// Dispatcher submits a rendered letter. *dispatch.Client implements it.
type Dispatcher interface {
	SendLetter(ctx context.Context, kind letter.Kind, rec intern.Record) dispatch.Result
}

// Service runs the user-facing letter actions: preview, send and download.
// Every send attempt that reached the channel and every download leaves an
// audit row.
type Service struct {
	interns    intern.Store
	history    history.Store
	dispatcher Dispatcher
	renderer   *letter.Renderer
	exporter   *export.Exporter
	archive    file.Storage
	guard      Guard
	guardTTL   time.Duration
	now        func() time.Time
	log        *slog.Logger
}

// Option configures a Service.
type Option func(*Service)

func WithExporter(e *export.Exporter) Option {
	return func(s *Service) {
		if e != nil {
			s.exporter = e
		}
	}
}

// WithArchive stores every downloaded document.
func WithArchive(st file.Storage) Option {
	return func(s *Service) {
		if st != nil {
			s.archive = st
		}
	}
}

// WithGuard replaces the in-memory send guard.
func WithGuard(g Guard, ttl time.Duration) Option {
	return func(s *Service) {
		if g != nil {
			s.guard = g
		}
		if ttl > 0 {
			s.guardTTL = ttl
		}
	}
}

// WithClock overrides the reference time used for previews and downloads.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.log = l
		}
	}
}

// New creates a Service.
func New(interns intern.Store, hist history.Store, d Dispatcher, r *letter.Renderer, opts ...Option) *Service {
	s := &Service{
		interns:    interns,
		history:    hist,
		dispatcher: d,
		renderer:   r,
		exporter:   export.New(),
		guardTTL:   DefaultGuardTTL,
		now:        time.Now,
		log:        logger.Discard(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.guard == nil {
		s.guard = NewMemoryGuard(s.now)
	}
	s.log = s.log.With(logger.Component("workflow"))
	return s
}

// Preview renders the letter without sending or recording it.
func (s *Service) Preview(ctx context.Context, ownerID, internID string, kind letter.Kind) (*letter.Letter, error) {
	rec, err := s.interns.Get(ctx, ownerID, internID)
	if err != nil {
		return nil, err
	}
	return s.renderer.Render(kind, rec, s.now())
}

// Send dispatches one letter. The returned error is Result.Err() or a lookup,
// guard or kind error; the Result is zero in the latter cases.
func (s *Service) Send(ctx context.Context, ownerID, internID string, kind letter.Kind) (dispatch.Result, error) {
	if _, err := letter.ParseKind(string(kind)); err != nil {
		return dispatch.Result{}, err
	}
	rec, err := s.interns.Get(ctx, ownerID, internID)
	if err != nil {
		return dispatch.Result{}, err
	}

	release, err := s.guard.Acquire(ctx, strings.Join([]string{ownerID, internID, string(kind)}, "/"), s.guardTTL)
	switch {
	case errors.Is(err, ErrInProgress):
		return dispatch.Result{}, err
	case err != nil:
		s.log.WarnContext(ctx, "send guard unavailable", logger.Error(err))
	default:
		defer release()
	}

	res := s.dispatcher.SendLetter(ctx, kind, rec)
	if res.ErrorKind == dispatch.KindValidation {
		return res, res.Err()
	}

	row := history.Record{
		OwnerID:        ownerID,
		InternID:       internID,
		Kind:           string(kind),
		RecipientEmail: rec.Email,
		Channel:        res.Channel,
	}
	if res.Success {
		row.Status = history.StatusSent
		row.ProviderMessageID = res.ProviderMessageID
	} else {
		row.Status = history.StatusFailed
		row.ErrorKind = string(res.ErrorKind)
		row.ErrorDetail = res.ErrorDetail
	}
	s.audit(ctx, row)

	return res, res.Err()
}

// Download is an exported letter plus where it was archived.
type Download struct {
	*export.Document
	// ArchiveURL is empty when no archive is configured or archiving failed.
	ArchiveURL string
}

// Download renders and exports a letter and records the download.
func (s *Service) Download(ctx context.Context, ownerID, internID string, kind letter.Kind, format export.Format) (*Download, error) {
	rec, err := s.interns.Get(ctx, ownerID, internID)
	if err != nil {
		return nil, err
	}
	l, err := s.renderer.Render(kind, rec, s.now())
	if err != nil {
		return nil, err
	}
	doc, err := s.exporter.Export(l, rec.Name, format)
	if err != nil {
		return nil, err
	}
	if doc.Truncated {
		s.log.WarnContext(ctx, "exported document truncated",
			logger.InternID(internID), logger.LetterKind(string(kind)), slog.Int("pages", doc.Pages))
	}

	out := &Download{Document: doc}
	if s.archive != nil {
		obj, err := s.archive.Put(ctx, file.Key(ownerID, internID, doc.Filename), doc.Data, doc.ContentType)
		if err != nil {
			s.log.WarnContext(ctx, "archive failed", logger.InternID(internID), logger.Error(err))
		} else {
			out.ArchiveURL = obj.URL
		}
	}

	s.audit(ctx, history.Record{
		OwnerID:        ownerID,
		InternID:       internID,
		Kind:           string(kind),
		RecipientEmail: rec.Email,
		Status:         history.StatusDownloaded,
	})
	return out, nil
}

// History lists the owner's audit rows, newest first.
func (s *Service) History(ctx context.Context, ownerID string) ([]history.Record, error) {
	return s.history.ListAll(ctx, ownerID)
}

// InternHistory lists rows for one intern. Rows of deleted interns remain.
func (s *Service) InternHistory(ctx context.Context, ownerID, internID string) ([]history.Record, error) {
	return s.history.ListByIntern(ctx, ownerID, internID)
}

// Stats is the dashboard summary.
type Stats struct {
	TotalInterns     int `json:"total_interns"`
	ActiveInterns    int `json:"active_interns"`
	CompletedInterns int `json:"completed_interns"`
	LettersSent      int `json:"letters_sent"`
}

// Stats counts the owner's interns by status and the letters sent.
func (s *Service) Stats(ctx context.Context, ownerID string) (Stats, error) {
	interns, err := s.interns.List(ctx, ownerID)
	if err != nil {
		return Stats{}, err
	}
	rows, err := s.history.ListAll(ctx, ownerID)
	if err != nil {
		return Stats{}, err
	}

	st := Stats{TotalInterns: len(interns)}
	for _, r := range interns {
		switch r.Status {
		case intern.StatusActive:
			st.ActiveInterns++
		case intern.StatusCompleted:
			st.CompletedInterns++
		}
	}
	for _, r := range rows {
		if r.Status == history.StatusSent {
			st.LettersSent++
		}
	}
	return st, nil
}

// audit appends row. A failed append is logged; the action it records has
// already happened.
func (s *Service) audit(ctx context.Context, row history.Record) {
	if _, err := s.history.Append(ctx, row); err != nil {
		s.log.ErrorContext(ctx, "audit append failed",
			logger.OwnerID(row.OwnerID), logger.InternID(row.InternID),
			logger.LetterKind(row.Kind), slog.String("status", string(row.Status)), logger.Error(err))
	}
}
