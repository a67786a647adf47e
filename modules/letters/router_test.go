package letters_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/letterdesk/modules/letters"
	"github.com/dmitrymomot/letterdesk/pkg/email"
	"github.com/dmitrymomot/letterdesk/pkg/jwt"
	"github.com/dmitrymomot/letterdesk/svc/dispatch"
	"github.com/dmitrymomot/letterdesk/svc/history"
	"github.com/dmitrymomot/letterdesk/svc/intern"
	"github.com/dmitrymomot/letterdesk/svc/letter"
	"github.com/dmitrymomot/letterdesk/svc/workflow"
)

var fixedNow = time.Date(2025, 1, 5, 10, 30, 0, 0, time.UTC)

type MockSender struct {
	mock.Mock
}

func (m *MockSender) Send(ctx context.Context, msg email.Message) (email.Receipt, error) {
	args := m.Called(ctx, msg)
	return args.Get(0).(email.Receipt), args.Error(1)
}

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Meta  map[string]any  `json:"meta"`
	Error *struct {
		Code    string              `json:"code"`
		Message string              `json:"message"`
		Details map[string][]string `json:"details"`
	} `json:"error"`
}

type testAPI struct {
	server  *httptest.Server
	sender  *MockSender
	history *history.MemoryStore
	token   string
}

func newTestAPI(t *testing.T, cfg dispatch.Config) *testAPI {
	t.Helper()

	r, err := letter.NewRenderer(letter.DefaultCompany())
	require.NoError(t, err)

	sender := new(MockSender)
	if cfg.Channel == "" {
		cfg.Channel = "mock"
	}
	if cfg.AttachFormat == "" {
		cfg.AttachFormat = dispatch.AttachNone
	}
	client := dispatch.New(
		func(context.Context) (email.Sender, error) { return sender, nil },
		r, cfg,
		dispatch.WithClock(func() time.Time { return fixedNow }),
	)

	interns := intern.NewMemoryStore()
	hist := history.NewMemoryStore()
	flow := workflow.New(interns, hist, client, r, workflow.WithClock(func() time.Time { return fixedNow }))

	auth, err := jwt.New(jwt.Config{Secret: "test-secret"})
	require.NoError(t, err)
	token, err := auth.Issue("owner-1", time.Hour)
	require.NoError(t, err)

	opts := letters.RouterOptions{
		Interns:    interns,
		Workflow:   flow,
		Channel:    client,
		Auth:       letters.AuthMiddleware(auth, nil),
		SystemName: "Roriri Internship System",
		Issuer:     "Roriri Software Solutions Pvt. Ltd",
		Now:        func() time.Time { return fixedNow },
	}
	mux := chi.NewRouter()
	mux.Get("/verify/{id}", letters.Verify(opts))
	mux.Mount("/api", letters.Router(opts))

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return &testAPI{server: srv, sender: sender, history: hist, token: token}
}

func (a *testAPI) do(t *testing.T, method, path, body string) *http.Response {
	t.Helper()
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, a.server.URL+path, rd)
	require.NoError(t, err)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if a.token != "" {
		req.Header.Set("Authorization", "Bearer "+a.token)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func decode(t *testing.T, resp *http.Response) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	return env
}

const anuJSON = `{"name":"Anu Priya","email":"anu@example.com","position":"Backend Engineer","start_date":"2025-01-01","duration":"3 Months"}`

func (a *testAPI) createAnu(t *testing.T) intern.Record {
	t.Helper()
	resp := a.do(t, http.MethodPost, "/api/interns", anuJSON)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var rec intern.Record
	require.NoError(t, json.Unmarshal(decode(t, resp).Data, &rec))
	return rec
}

func TestHealth(t *testing.T) {
	t.Parallel()

	a := newTestAPI(t, dispatch.Config{})
	a.token = ""
	resp := a.do(t, http.MethodGet, "/api/health", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "OK", body["status"])
	assert.Equal(t, "Roriri Internship System API is running", body["message"])
	assert.Equal(t, "2025-01-05T10:30:00Z", body["timestamp"])
	assert.Equal(t, true, body["emailConfigured"])
}

func TestAuthRequired(t *testing.T) {
	t.Parallel()

	a := newTestAPI(t, dispatch.Config{})
	a.token = ""
	resp := a.do(t, http.MethodGet, "/api/interns", "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "unauthorized", decode(t, resp).Error.Code)

	a.token = "not-a-token"
	resp = a.do(t, http.MethodGet, "/api/stats", "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestInternCRUD(t *testing.T) {
	t.Parallel()

	a := newTestAPI(t, dispatch.Config{})
	rec := a.createAnu(t)
	assert.Equal(t, "owner-1", rec.OwnerID)
	assert.Equal(t, intern.StatusActive, rec.Status)

	resp := a.do(t, http.MethodGet, "/api/interns/"+rec.ID, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = a.do(t, http.MethodGet, "/api/interns", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.EqualValues(t, 1, decode(t, resp).Meta["total"])

	resp = a.do(t, http.MethodPut, "/api/interns/"+rec.ID,
		`{"name":"Anu Priya","email":"anu@example.com","position":"Frontend Engineer","status":"completed"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var updated intern.Record
	require.NoError(t, json.Unmarshal(decode(t, resp).Data, &updated))
	assert.Equal(t, "Frontend Engineer", updated.Position)
	assert.Equal(t, intern.StatusCompleted, updated.Status)

	resp = a.do(t, http.MethodPost, "/api/interns", anuJSON)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp = a.do(t, http.MethodPost, "/api/interns", `{"name":"X","email":"nope"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Equal(t, "validation_error", decode(t, resp).Error.Code)

	resp = a.do(t, http.MethodPost, "/api/interns", `{"name":`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = a.do(t, http.MethodDelete, "/api/interns/"+rec.ID, "")
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = a.do(t, http.MethodGet, "/api/interns/"+rec.ID, "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "not_found", decode(t, resp).Error.Code)
}

func TestPreview(t *testing.T) {
	t.Parallel()

	a := newTestAPI(t, dispatch.Config{})
	rec := a.createAnu(t)

	resp := a.do(t, http.MethodGet, "/api/interns/"+rec.ID+"/letters/offer/preview", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/html; charset=utf-8", resp.Header.Get("Content-Type"))
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "Anu Priya")

	resp = a.do(t, http.MethodGet, "/api/interns/"+rec.ID+"/letters/farewell/preview", "")
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
}

func TestSendLetter(t *testing.T) {
	t.Parallel()

	a := newTestAPI(t, dispatch.Config{})
	rec := a.createAnu(t)
	a.sender.On("Send", mock.Anything, mock.Anything).Return(email.Receipt{MessageID: "msg-42"}, nil).Once()

	resp := a.do(t, http.MethodPost, "/api/interns/"+rec.ID+"/letters/offer/send", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var res dispatch.Result
	require.NoError(t, json.Unmarshal(decode(t, resp).Data, &res))
	assert.True(t, res.Success)
	assert.Equal(t, "msg-42", res.ProviderMessageID)

	resp = a.do(t, http.MethodGet, "/api/interns/"+rec.ID+"/history", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var rows []history.Record
	require.NoError(t, json.Unmarshal(decode(t, resp).Data, &rows))
	require.Len(t, rows, 1)
	assert.Equal(t, history.StatusSent, rows[0].Status)
}

func TestSendLetter_Failures(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		sendErr  error
		status   int
		code     string
		kind     dispatch.ErrorKind
		auditRow bool
	}{
		{"rejected", fmt.Errorf("%w: bounced", email.ErrRejected), http.StatusBadGateway, "channel_failed", dispatch.KindChannel, true},
		{"transport", fmt.Errorf("%w: timeout", email.ErrTransport), http.StatusBadGateway, "channel_failed", dispatch.KindTransport, true},
		{"configuration", fmt.Errorf("%w: bad key", email.ErrInvalidConfig), http.StatusServiceUnavailable, "channel_not_configured", dispatch.KindConfiguration, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			a := newTestAPI(t, dispatch.Config{})
			rec := a.createAnu(t)
			a.sender.On("Send", mock.Anything, mock.Anything).Return(email.Receipt{}, tt.sendErr).Once()

			resp := a.do(t, http.MethodPost, "/api/interns/"+rec.ID+"/letters/completion/send", "")
			assert.Equal(t, tt.status, resp.StatusCode)
			env := decode(t, resp)
			assert.Equal(t, tt.code, env.Error.Code)

			var res dispatch.Result
			require.NoError(t, json.Unmarshal(env.Data, &res))
			assert.False(t, res.Success)
			assert.Equal(t, tt.kind, res.ErrorKind)

			rows, err := a.history.ListAll(context.Background(), "owner-1")
			require.NoError(t, err)
			require.Len(t, rows, 1)
			assert.Equal(t, history.StatusFailed, rows[0].Status)
			assert.Empty(t, rows[0].ProviderMessageID)
		})
	}
}

func TestSendLetter_ValidationAndLookup(t *testing.T) {
	t.Parallel()

	a := newTestAPI(t, dispatch.Config{})
	resp := a.do(t, http.MethodPost, "/api/interns", `{"name":"Ravi","email":"ravi@example.com"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var rec intern.Record
	require.NoError(t, json.Unmarshal(decode(t, resp).Data, &rec))

	resp = a.do(t, http.MethodPost, "/api/interns/"+rec.ID+"/letters/offer/send", "")
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	env := decode(t, resp)
	assert.Equal(t, "validation_error", env.Error.Code)
	assert.Contains(t, env.Error.Details, "position")

	resp = a.do(t, http.MethodPost, "/api/interns/missing/letters/offer/send", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	rows, err := a.history.ListAll(context.Background(), "owner-1")
	require.NoError(t, err)
	assert.Empty(t, rows)
	a.sender.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
}

func TestDownload(t *testing.T) {
	t.Parallel()

	a := newTestAPI(t, dispatch.Config{})
	rec := a.createAnu(t)

	resp := a.do(t, http.MethodGet, "/api/interns/"+rec.ID+"/letters/offer/download?format=pdf", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))
	assert.Equal(t, "attachment; filename=offer-letter-anu-priya.pdf", resp.Header.Get("Content-Disposition"))
	assert.Equal(t, "false", resp.Header.Get("X-Document-Truncated"))
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(body), "%PDF"))

	resp = a.do(t, http.MethodGet, "/api/interns/"+rec.ID+"/letters/completion/download?format=html", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "attachment; filename=completion-letter-anu-priya.html", resp.Header.Get("Content-Disposition"))

	resp = a.do(t, http.MethodGet, "/api/interns/"+rec.ID+"/letters/offer/download?format=docx", "")
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	resp = a.do(t, http.MethodGet, "/api/history", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.EqualValues(t, 2, decode(t, resp).Meta["total"])
}

func TestDownload_UndrawableName(t *testing.T) {
	t.Parallel()

	a := newTestAPI(t, dispatch.Config{})
	resp := a.do(t, http.MethodPost, "/api/interns",
		`{"name":"அனு பிரியா","email":"anu.ta@example.com","position":"Backend Engineer","start_date":"2025-01-01","duration":"3 Months"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var rec intern.Record
	require.NoError(t, json.Unmarshal(decode(t, resp).Data, &rec))

	resp = a.do(t, http.MethodGet, "/api/interns/"+rec.ID+"/letters/offer/download?format=pdf", "")
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	env := decode(t, resp)
	assert.Equal(t, "validation_error", env.Error.Code)
	assert.Contains(t, env.Error.Details, "letter")

	resp = a.do(t, http.MethodGet, "/api/interns/"+rec.ID+"/letters/offer/download?format=html", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "அனு பிரியா")
}

func TestStats(t *testing.T) {
	t.Parallel()

	a := newTestAPI(t, dispatch.Config{})
	rec := a.createAnu(t)
	a.sender.On("Send", mock.Anything, mock.Anything).Return(email.Receipt{MessageID: "m"}, nil).Once()
	resp := a.do(t, http.MethodPost, "/api/interns/"+rec.ID+"/letters/offer/send", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = a.do(t, http.MethodGet, "/api/stats", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var st workflow.Stats
	require.NoError(t, json.Unmarshal(decode(t, resp).Data, &st))
	assert.Equal(t, workflow.Stats{TotalInterns: 1, ActiveInterns: 1, LettersSent: 1}, st)
}

func TestEmailEndpoints(t *testing.T) {
	t.Parallel()

	a := newTestAPI(t, dispatch.Config{})
	resp := a.do(t, http.MethodGet, "/api/email/status", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var hr dispatch.HealthResult
	require.NoError(t, json.Unmarshal(decode(t, resp).Data, &hr))
	assert.True(t, hr.Configured)
	assert.False(t, hr.Probed)

	resp = a.do(t, http.MethodPost, "/api/email/test", "")
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)

	b := newTestAPI(t, dispatch.Config{TestRecipient: "hr@example.com"})
	b.sender.On("Send", mock.Anything, mock.MatchedBy(func(m email.Message) bool {
		return m.To == "hr@example.com" && m.Subject == "Email Configuration Test - Roriri Internship System"
	})).Return(email.Receipt{MessageID: "diag-1"}, nil).Once()

	resp = b.do(t, http.MethodPost, "/api/email/test", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	b.sender.AssertExpectations(t)
}

func TestStaticOwner(t *testing.T) {
	t.Parallel()

	var got string
	h := letters.StaticOwner("local")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = jwt.Subject(r.Context())
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, "local", got)
}

func TestVerify(t *testing.T) {
	t.Parallel()

	api := newTestAPI(t, dispatch.Config{})
	rec := api.createAnu(t)
	token := api.token
	api.token = ""

	type verification struct {
		Valid    bool          `json:"valid"`
		Name     string        `json:"name"`
		Position string        `json:"position"`
		Status   intern.Status `json:"status"`
		Issuer   string        `json:"issuer"`
		Email    string        `json:"email"`
	}
	check := func(t *testing.T) verification {
		t.Helper()
		resp := api.do(t, http.MethodGet, "/verify/"+rec.ID, "")
		require.Equal(t, http.StatusOK, resp.StatusCode)
		var v verification
		require.NoError(t, json.Unmarshal(decode(t, resp).Data, &v))
		return v
	}

	v := check(t)
	assert.False(t, v.Valid)
	assert.Equal(t, "Anu Priya", v.Name)
	assert.Equal(t, intern.StatusActive, v.Status)
	assert.Equal(t, "Roriri Software Solutions Pvt. Ltd", v.Issuer)
	assert.Empty(t, v.Email)

	api.token = token
	completed := strings.Replace(anuJSON, `}`, `,"status":"completed"}`, 1)
	require.Equal(t, http.StatusOK, api.do(t, http.MethodPut, "/api/interns/"+rec.ID, completed).StatusCode)
	api.token = ""

	v = check(t)
	assert.True(t, v.Valid)
	assert.Equal(t, intern.StatusCompleted, v.Status)

	resp := api.do(t, http.MethodGet, "/verify/missing", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
