package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/dmoraes/driver-finance/internal/api/middleware"
	"github.com/dmoraes/driver-finance/internal/auth"
	"github.com/dmoraes/driver-finance/internal/blobstore"
	"github.com/dmoraes/driver-finance/internal/domain"
	"github.com/dmoraes/driver-finance/internal/jobs"
	"github.com/dmoraes/driver-finance/internal/logger"
	"github.com/dmoraes/driver-finance/internal/store"
)

type fixture struct {
	store *store.Store
	auth  *auth.Manager
	blobs *blobstore.Store
	log   zerolog.Logger
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	s, err := store.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	ddl, err := os.ReadFile("../../../migrations/sqlite/0001_init.sql")
	require.NoError(t, err)
	require.NoError(t, s.ExecSchema(context.Background(), string(ddl)))

	a, err := auth.NewManager("test-secret", time.Hour)
	require.NoError(t, err)

	blobs, err := blobstore.New(t.TempDir())
	require.NoError(t, err)

	return &fixture{
		store: s,
		auth:  a,
		blobs: blobs,
		log:   logger.NewWithWriter(&bytes.Buffer{}),
	}
}

func (f *fixture) createUser(t *testing.T) *domain.User {
	t.Helper()
	u := &domain.User{Username: "maria", PasswordHash: "x", Email: "maria@example.com"}
	require.NoError(t, f.store.CreateUser(context.Background(), u))
	return u
}

// authed attaches the user to the request context the way the middleware
// chain would.
func authed(r *http.Request, u *domain.User) *http.Request {
	return r.WithContext(middleware.ContextWithUser(r.Context(), u))
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	return body
}

type capturePublisher struct {
	jobs []*jobs.ParseStatementJob
	err  error
}

func (p *capturePublisher) PublishParseStatement(ctx context.Context, job *jobs.ParseStatementJob) error {
	if p.err != nil {
		return p.err
	}
	if job.JobID == "" {
		job.JobID = "job-1"
	}
	p.jobs = append(p.jobs, job)
	return nil
}

func (p *capturePublisher) Close() error { return nil }

func TestRegisterAndLogin(t *testing.T) {
	f := newFixture(t)
	h := NewAuthHandler(f.store, f.auth, f.log)

	body := `{"username":"joao","password":"s3cret","email":"joao@example.com","full_name":"João"}`
	req := httptest.NewRequest(http.MethodPost, "/api/auth/register", bytes.NewBufferString(body))
	rec := httptest.NewRecorder()
	h.Register(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	// Duplicate username is rejected.
	req = httptest.NewRequest(http.MethodPost, "/api/auth/register", bytes.NewBufferString(body))
	rec = httptest.NewRecorder()
	h.Register(rec, req)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	// Correct credentials produce a usable token.
	req = httptest.NewRequest(http.MethodPost, "/api/auth/token", bytes.NewBufferString(`{"username":"joao","password":"s3cret"}`))
	rec = httptest.NewRecorder()
	h.Token(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	token := decodeBody(t, rec)["access_token"].(string)
	subject, err := f.auth.ParseToken(token)
	require.NoError(t, err)
	require.Equal(t, "joao", subject)

	// Wrong password gets 401.
	req = httptest.NewRequest(http.MethodPost, "/api/auth/token", bytes.NewBufferString(`{"username":"joao","password":"wrong"}`))
	rec = httptest.NewRecorder()
	h.Token(rec, req)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRegisterStartsTrial(t *testing.T) {
	f := newFixture(t)
	h := NewAuthHandler(f.store, f.auth, f.log)

	body := `{"username":"ana","password":"pw","email":"ana@example.com"}`
	req := httptest.NewRequest(http.MethodPost, "/api/auth/register", bytes.NewBufferString(body))
	rec := httptest.NewRecorder()
	h.Register(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code)

	user, err := f.store.GetUserByUsername(context.Background(), "ana")
	require.NoError(t, err)
	require.NotNil(t, user.TrialEndsAt)
	require.Equal(t, "active", user.PlanStatus(time.Now()))
}

func TestCurrentUser(t *testing.T) {
	f := newFixture(t)
	h := NewAuthHandler(f.store, f.auth, f.log)
	u := f.createUser(t)

	req := authed(httptest.NewRequest(http.MethodGet, "/api/auth/user", nil), u)
	rec := httptest.NewRecorder()
	h.CurrentUser(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	require.Equal(t, "maria", body["username"])
	require.Equal(t, "inactive", body["plan_status"])
}

func TestCreateAndListTransactions(t *testing.T) {
	f := newFixture(t)
	h := NewTransactionsHandler(f.store, f.log)
	u := f.createUser(t)

	body := `{"amount":"35.50","type":"income","description":"Corrida","date":"2025-07-21"}`
	req := authed(httptest.NewRequest(http.MethodPost, "/api/transactions", bytes.NewBufferString(body)), u)
	rec := httptest.NewRecorder()
	h.Create(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	req = authed(httptest.NewRequest(http.MethodGet, "/api/transactions", nil), u)
	rec = httptest.NewRecorder()
	h.List(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	require.EqualValues(t, 1, decodeBody(t, rec)["count"])
}

func TestCreateTransactionValidation(t *testing.T) {
	f := newFixture(t)
	h := NewTransactionsHandler(f.store, f.log)
	u := f.createUser(t)

	for name, body := range map[string]string{
		"negative amount": `{"amount":"-5","type":"income"}`,
		"zero amount":     `{"amount":"0","type":"income"}`,
		"bad type":        `{"amount":"10","type":"transfer"}`,
		"bad date":        `{"amount":"10","type":"income","date":"21/07/2025"}`,
		"unknown category": `{"amount":"10","type":"income","category_id":999}`,
	} {
		req := authed(httptest.NewRequest(http.MethodPost, "/api/transactions", bytes.NewBufferString(body)), u)
		rec := httptest.NewRecorder()
		h.Create(rec, req)
		require.Equalf(t, http.StatusBadRequest, rec.Code, "%s: %s", name, rec.Body.String())
	}
}

func TestListTransactionsByDateRange(t *testing.T) {
	f := newFixture(t)
	h := NewTransactionsHandler(f.store, f.log)
	u := f.createUser(t)

	for _, date := range []string{"2025-07-01", "2025-07-15", "2025-08-01"} {
		body := `{"amount":"10","type":"income","date":"` + date + `"}`
		req := authed(httptest.NewRequest(http.MethodPost, "/api/transactions", bytes.NewBufferString(body)), u)
		rec := httptest.NewRecorder()
		h.Create(rec, req)
		require.Equal(t, http.StatusCreated, rec.Code)
	}

	req := authed(httptest.NewRequest(http.MethodGet, "/api/transactions/date-range?start_date=2025-07-01&end_date=2025-07-31", nil), u)
	rec := httptest.NewRecorder()
	h.ListByDateRange(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	require.EqualValues(t, 2, decodeBody(t, rec)["count"])

	req = authed(httptest.NewRequest(http.MethodGet, "/api/transactions/date-range?start_date=bogus&end_date=2025-07-31", nil), u)
	rec = httptest.NewRecorder()
	h.ListByDateRange(rec, req)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateCategory(t *testing.T) {
	f := newFixture(t)
	h := NewCategoriesHandler(f.store, f.log)
	u := f.createUser(t)

	body := `{"name":"Uber","type":"income","icon":"car","color":"#000"}`
	req := authed(httptest.NewRequest(http.MethodPost, "/api/categories", bytes.NewBufferString(body)), u)
	rec := httptest.NewRecorder()
	h.Create(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	req = authed(httptest.NewRequest(http.MethodGet, "/api/categories", nil), u)
	rec = httptest.NewRecorder()
	h.List(rec, req)
	require.EqualValues(t, 1, decodeBody(t, rec)["count"])
}

func multipartUpload(t *testing.T, filename, source, format string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	buf := &bytes.Buffer{}
	mw := multipart.NewWriter(buf)
	part, err := mw.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	if source != "" {
		require.NoError(t, mw.WriteField("source", source))
	}
	if format != "" {
		require.NoError(t, mw.WriteField("format", format))
	}
	require.NoError(t, mw.Close())
	return buf, mw.FormDataContentType()
}

func TestUploadStatement(t *testing.T) {
	f := newFixture(t)
	pub := &capturePublisher{}
	h := NewStatementsHandler(f.store, f.blobs, pub, 1<<20, f.log)
	u := f.createUser(t)

	csv := []byte("Date,Amount\n21/07/2025,R$ 35.50\n")
	body, contentType := multipartUpload(t, "uber-july.csv", "uber", "", csv)
	req := authed(httptest.NewRequest(http.MethodPost, "/api/statements", body), u)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	h.Upload(rec, req)

	require.Equal(t, http.StatusAccepted, rec.Code, rec.Body.String())
	resp := decodeBody(t, rec)
	require.NotEmpty(t, resp["document_id"])
	require.NotEmpty(t, resp["job_id"])
	require.Equal(t, string(domain.ParsingPending), resp["status"])

	// The document row exists and the stored file is readable.
	doc, err := f.store.GetDocument(context.Background(), u.ID, resp["document_id"].(string))
	require.NoError(t, err)
	require.Equal(t, "uber-july.csv", doc.Filename)
	require.Equal(t, "csv", doc.Format)
	require.Equal(t, "Uber", doc.Source)
	require.Len(t, doc.ChecksumSHA256, 64)

	stored, err := f.blobs.Load(doc.StoredPath)
	require.NoError(t, err)
	require.Equal(t, csv, stored)

	// The parse job carries the coordinates the worker needs.
	require.Len(t, pub.jobs, 1)
	job := pub.jobs[0]
	require.Equal(t, doc.ID, job.DocumentID)
	require.Equal(t, u.ID, job.UserID)
	require.Equal(t, doc.StoredPath, job.Path)
}

func TestUploadStatementFormatFromFilename(t *testing.T) {
	f := newFixture(t)
	pub := &capturePublisher{}
	h := NewStatementsHandler(f.store, f.blobs, pub, 1<<20, f.log)
	u := f.createUser(t)

	body, contentType := multipartUpload(t, "report.PDF", "", "", []byte("%PDF-1.4 stub"))
	req := authed(httptest.NewRequest(http.MethodPost, "/api/statements", body), u)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	h.Upload(rec, req)

	require.Equal(t, http.StatusAccepted, rec.Code)
	require.Equal(t, "pdf", pub.jobs[0].Format)
}

func TestUploadStatementRequiresFile(t *testing.T) {
	f := newFixture(t)
	h := NewStatementsHandler(f.store, f.blobs, &capturePublisher{}, 1<<20, f.log)
	u := f.createUser(t)

	buf := &bytes.Buffer{}
	mw := multipart.NewWriter(buf)
	require.NoError(t, mw.WriteField("source", "uber"))
	require.NoError(t, mw.Close())

	req := authed(httptest.NewRequest(http.MethodPost, "/api/statements", buf), u)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	h.Upload(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDocumentsEndpoints(t *testing.T) {
	f := newFixture(t)
	h := NewDocumentsHandler(f.store, f.log)
	u := f.createUser(t)

	doc := &domain.Document{
		ID: "doc-1", UserID: u.ID, Filename: "a.csv",
		StoredPath: "/tmp/a.csv", ChecksumSHA256: "x", Format: "csv",
	}
	require.NoError(t, f.store.InsertDocument(context.Background(), doc))

	req := authed(httptest.NewRequest(http.MethodGet, "/api/documents", nil), u)
	rec := httptest.NewRecorder()
	h.List(rec, req)
	require.EqualValues(t, 1, decodeBody(t, rec)["count"])

	req = authed(httptest.NewRequest(http.MethodGet, "/api/documents/doc-1", nil), u)
	rec = httptest.NewRecorder()
	h.Get(rec, req, "doc-1")
	require.Equal(t, http.StatusOK, rec.Code)

	req = authed(httptest.NewRequest(http.MethodGet, "/api/documents/nope", nil), u)
	rec = httptest.NewRecorder()
	h.Get(rec, req, "nope")
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestJobsEndpointsScopedToUser(t *testing.T) {
	f := newFixture(t)
	u := f.createUser(t)

	jobStore := &staticJobStore{job: &jobs.ParseStatementJob{JobID: "job-1", UserID: u.ID + 1}}
	h := NewJobsHandler(jobStore, f.log)

	// Another user's job reads as not found.
	req := authed(httptest.NewRequest(http.MethodGet, "/api/jobs/job-1", nil), u)
	rec := httptest.NewRecorder()
	h.Get(rec, req, "job-1")
	require.Equal(t, http.StatusNotFound, rec.Code)

	jobStore.job.UserID = u.ID
	rec = httptest.NewRecorder()
	h.Get(rec, authed(httptest.NewRequest(http.MethodGet, "/api/jobs/job-1", nil), u), "job-1")
	require.Equal(t, http.StatusOK, rec.Code)
}

type staticJobStore struct {
	job *jobs.ParseStatementJob
}

func (s *staticJobStore) SaveJob(ctx context.Context, job *jobs.ParseStatementJob) error { return nil }

func (s *staticJobStore) GetJob(ctx context.Context, jobID string) (*jobs.ParseStatementJob, error) {
	return s.job, nil
}

func (s *staticJobStore) ListJobs(ctx context.Context, filter jobs.JobFilter) ([]*jobs.ParseStatementJob, error) {
	if filter.UserID != 0 && s.job.UserID != filter.UserID {
		return nil, nil
	}
	return []*jobs.ParseStatementJob{s.job}, nil
}

func TestWorkSessionsCreateComputesMinutes(t *testing.T) {
	f := newFixture(t)
	h := NewWorkSessionsHandler(f.store, f.log)
	u := f.createUser(t)

	body := `{"start_time":"2025-07-21T08:00:00Z","end_time":"2025-07-21T14:00:00Z"}`
	req := authed(httptest.NewRequest(http.MethodPost, "/api/work-sessions", bytes.NewBufferString(body)), u)
	rec := httptest.NewRecorder()
	h.Create(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	sessions, err := f.store.ListWorkSessions(context.Background(), u.ID)
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	require.Equal(t, 360, sessions[0].TotalMinutes)
	require.Equal(t, "2025-07-21", sessions[0].Date)
}

func TestGoalsEndpoints(t *testing.T) {
	f := newFixture(t)
	h := NewGoalsHandler(f.store, f.log)
	u := f.createUser(t)

	body := `{"title":"Semana boa","type":"weekly","category":"income","target":"500"}`
	req := authed(httptest.NewRequest(http.MethodPost, "/api/goals", bytes.NewBufferString(body)), u)
	rec := httptest.NewRecorder()
	h.Create(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	req = authed(httptest.NewRequest(http.MethodPost, "/api/goals", bytes.NewBufferString(`{"title":"x","target":"-1"}`)), u)
	rec = httptest.NewRecorder()
	h.Create(rec, req)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	req = authed(httptest.NewRequest(http.MethodGet, "/api/goals", nil), u)
	rec = httptest.NewRecorder()
	h.List(rec, req)
	require.EqualValues(t, 1, decodeBody(t, rec)["count"])
}

func TestComprehensiveProfile(t *testing.T) {
	f := newFixture(t)
	h := NewProfileHandler(f.store, f.log)
	u := f.createUser(t)

	txH := NewTransactionsHandler(f.store, f.log)
	body := `{"amount":"100","type":"income","date":"2025-07-21"}`
	req := authed(httptest.NewRequest(http.MethodPost, "/api/transactions", bytes.NewBufferString(body)), u)
	rec := httptest.NewRecorder()
	txH.Create(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code)

	req = authed(httptest.NewRequest(http.MethodGet, "/api/profile/comprehensive", nil), u)
	rec = httptest.NewRecorder()
	h.Comprehensive(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decodeBody(t, rec)
	stats := resp["stats"].(map[string]interface{})
	require.EqualValues(t, 1, stats["total_trips"])
	require.Len(t, resp["monthly_performance"], 12)
	require.Len(t, resp["achievements"], 4)
}
