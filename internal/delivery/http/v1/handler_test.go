package v1

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"job-board-backend/config"
	"job-board-backend/internal/domain"
	"job-board-backend/pkg/apperror"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type mockAuthUC struct{ mock.Mock }

func (m *mockAuthUC) SignIn(ctx context.Context, email, password string) (*domain.Session, error) {
	args := m.Called(ctx, email, password)
	s, _ := args.Get(0).(*domain.Session)
	return s, args.Error(1)
}

func (m *mockAuthUC) SignOut(ctx context.Context, p *domain.Principal) error {
	return m.Called(ctx, p).Error(0)
}

func (m *mockAuthUC) Resolve(ctx context.Context, token string) (domain.SessionState, *domain.Principal, error) {
	args := m.Called(ctx, token)
	p, _ := args.Get(1).(*domain.Principal)
	return args.Get(0).(domain.SessionState), p, args.Error(2)
}

type mockJobUC struct{ mock.Mock }

func (m *mockJobUC) CreateJob(ctx context.Context, d domain.JobDraft) (*domain.Job, error) {
	args := m.Called(ctx, d)
	j, _ := args.Get(0).(*domain.Job)
	return j, args.Error(1)
}

func (m *mockJobUC) GetJob(ctx context.Context, slug string) (*domain.Job, error) {
	args := m.Called(ctx, slug)
	j, _ := args.Get(0).(*domain.Job)
	return j, args.Error(1)
}

func (m *mockJobUC) ListJobs(ctx context.Context, f domain.JobFilter) ([]domain.Job, error) {
	args := m.Called(ctx, f)
	j, _ := args.Get(0).([]domain.Job)
	return j, args.Error(1)
}

func (m *mockJobUC) ListApplicants(ctx context.Context, slug string, o domain.ApplicantOrder) (*domain.JobApplicants, error) {
	args := m.Called(ctx, slug, o)
	r, _ := args.Get(0).(*domain.JobApplicants)
	return r, args.Error(1)
}

func (m *mockJobUC) ExportApplicants(ctx context.Context, slug string) ([]byte, string, error) {
	args := m.Called(ctx, slug)
	b, _ := args.Get(0).([]byte)
	return b, args.String(1), args.Error(2)
}

type mockApplicationUC struct{ mock.Mock }

func (m *mockApplicationUC) Submit(ctx context.Context, p domain.SubmissionPayload) (*domain.Applicant, error) {
	args := m.Called(ctx, p)
	a, _ := args.Get(0).(*domain.Applicant)
	return a, args.Error(1)
}

type stubHealth struct{ healthy bool }

func (s stubHealth) Check(ctx context.Context) (map[string]string, bool) {
	if s.healthy {
		return map[string]string{"status": "ok", "database": "up"}, true
	}
	return map[string]string{"status": "degraded", "database": "down"}, false
}

type testServer struct {
	router *gin.Engine
	auth   *mockAuthUC
	jobs   *mockJobUC
	apps   *mockApplicationUC
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	s := &testServer{auth: new(mockAuthUC), jobs: new(mockJobUC), apps: new(mockApplicationUC)}
	s.router = NewRouter(RouterDeps{
		AuthUC:        s.auth,
		JobUC:         s.jobs,
		ApplicationUC: s.apps,
		HealthUC:      stubHealth{healthy: true},
		Config: &config.Config{
			FrontendURL:   "https://jobs.example.com",
			GinMode:       gin.TestMode,
			PhotoMaxBytes: 2 << 20,
		},
	})
	return s
}

func (s *testServer) do(req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *testServer) signedIn(token string) *domain.Principal {
	p := &domain.Principal{Subject: "admin:admin@example.com", Email: "admin@example.com", TokenID: "jti-1", ExpiresAt: time.Now().Add(time.Hour)}
	s.auth.On("Resolve", mock.Anything, token).Return(domain.SessionPresent, p, nil)
	return p
}

type envelopeBody struct {
	Success   bool            `json:"success"`
	Message   string          `json:"message"`
	Data      json.RawMessage `json:"data"`
	RequestID string          `json:"request_id"`
	Error     struct {
		Kind    string                  `json:"kind"`
		Details []domain.FieldViolation `json:"details"`
	} `json:"error"`
}

func decode(t *testing.T, w *httptest.ResponseRecorder) envelopeBody {
	t.Helper()
	var body envelopeBody
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body), w.Body.String())
	return body
}

func sampleJob() *domain.Job {
	return &domain.Job{
		ID: 3, Slug: "backend-engineer", JobName: "Backend Engineer", JobType: domain.JobTypeFullTime,
		Status: domain.JobStatusActive, NumOfCandidate: 2, Requirements: domain.DefaultPolicy(),
	}
}

func TestAdminRoutesRequireSession(t *testing.T) {
	s := newTestServer(t)
	s.auth.On("Resolve", mock.Anything, "").Return(domain.SessionAbsent, nil, nil)

	w := s.do(httptest.NewRequest(http.MethodPost, "/api/jobs", strings.NewReader(`{}`)))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	body := decode(t, w)
	assert.False(t, body.Success)
	assert.Equal(t, "auth", body.Error.Kind)
	assert.NotEmpty(t, body.RequestID)
	s.jobs.AssertNotCalled(t, "CreateJob", mock.Anything, mock.Anything)
}

func TestUnknownSessionIsServiceUnavailable(t *testing.T) {
	s := newTestServer(t)
	s.auth.On("Resolve", mock.Anything, "tok").Return(domain.SessionUnknown, nil, domain.ErrAuthUnavailable)

	req := httptest.NewRequest(http.MethodGet, "/api/jobs/backend-engineer/applicants", nil)
	req.Header.Set("Authorization", "Bearer tok")
	w := s.do(req)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "unavailable", decode(t, w).Error.Kind)
}

func TestCreateJob(t *testing.T) {
	s := newTestServer(t)
	s.signedIn("tok")

	name := "Backend Engineer"
	s.jobs.On("CreateJob", mock.Anything, mock.MatchedBy(func(d domain.JobDraft) bool {
		return d.JobName != nil && *d.JobName == name && d.NumOfCandidate != nil && *d.NumOfCandidate == 2 &&
			d.MinSalary == nil && d.Requirements["gender"] == "OFF"
	})).Return(sampleJob(), nil)

	req := httptest.NewRequest(http.MethodPost, "/api/jobs", strings.NewReader(`{
		"jobName": "Backend Engineer", "jobType": "FULL_TIME", "jobDescription": "Build APIs",
		"numOfCandidate": 2, "requirements": {"gender": "OFF"}
	}`))
	req.Header.Set("Authorization", "Bearer tok")
	req.Header.Set("Content-Type", "application/json")
	w := s.do(req)

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var job domain.Job
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &job))
	assert.Equal(t, "backend-engineer", job.Slug)
	s.jobs.AssertExpectations(t)
}

func TestCreateJobValidationDetails(t *testing.T) {
	s := newTestServer(t)
	s.signedIn("tok")
	s.jobs.On("CreateJob", mock.Anything, mock.Anything).Return(nil, apperror.Validation("Job is invalid", []domain.FieldViolation{
		domain.MissingField("jobName"),
		domain.MissingField("requirements.gender"),
	}))

	req := httptest.NewRequest(http.MethodPost, "/api/jobs", strings.NewReader(`{}`))
	req.Header.Set("Authorization", "Bearer tok")
	w := s.do(req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	body := decode(t, w)
	assert.Equal(t, "validation", body.Error.Kind)
	require.Len(t, body.Error.Details, 2)
	assert.Equal(t, "requirements.gender", body.Error.Details[1].Field)
}

func TestListJobsPassesFilter(t *testing.T) {
	s := newTestServer(t)
	s.jobs.On("ListJobs", mock.Anything, domain.JobFilter{Search: "engineer", Status: domain.JobStatusActive}).Return(nil, nil)

	w := s.do(httptest.NewRequest(http.MethodGet, "/api/jobs?search=engineer&status=active", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, string(decode(t, w).Data))

	w = s.do(httptest.NewRequest(http.MethodGet, "/api/jobs?status=archived", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetJobNotFound(t *testing.T) {
	s := newTestServer(t)
	s.jobs.On("GetJob", mock.Anything, "nope").Return(nil, apperror.NotFound("Job not found"))

	w := s.do(httptest.NewRequest(http.MethodGet, "/api/jobs/nope", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Job not found", decode(t, w).Message)
}

func TestJobFormDescribesEveryField(t *testing.T) {
	s := newTestServer(t)
	job := sampleJob()
	require.NoError(t, job.Requirements.SetLevel(domain.FieldLinkedin, domain.LevelOff))
	s.jobs.On("GetJob", mock.Anything, "backend-engineer").Return(job, nil)

	w := s.do(httptest.NewRequest(http.MethodGet, "/api/jobs/backend-engineer/form", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var out struct {
		Fields []struct {
			Field string `json:"field"`
			State struct {
				Visible, Enabled, Required bool
			} `json:"state"`
		} `json:"fields"`
	}
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &out))
	require.Len(t, out.Fields, len(domain.Fields))
	for _, f := range out.Fields {
		if f.Field == "linkedin" {
			assert.True(t, f.State.Visible)
			assert.False(t, f.State.Enabled)
			assert.False(t, f.State.Required)
		}
	}
}

func TestApplicantsSortFallsBack(t *testing.T) {
	s := newTestServer(t)
	s.signedIn("tok")
	s.jobs.On("ListApplicants", mock.Anything, "backend-engineer", domain.DefaultApplicantOrder).
		Return(&domain.JobApplicants{Job: sampleJob().Summary()}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/jobs/backend-engineer/applicants?sort=password&order=asc", nil)
	req.Header.Set("Authorization", "Bearer tok")
	w := s.do(req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, string(decode(t, w).Data), `"applicants":[]`)
}

func TestExportApplicants(t *testing.T) {
	s := newTestServer(t)
	s.signedIn("tok")
	s.jobs.On("ExportApplicants", mock.Anything, "backend-engineer").Return([]byte("PK"), "applicants_backend-engineer_20240314_090000.xlsx", nil)

	req := httptest.NewRequest(http.MethodGet, "/api/jobs/backend-engineer/applicants/export", nil)
	req.AddCookie(&http.Cookie{Name: "auth_token", Value: "tok"})
	w := s.do(req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, xlsxContentType, w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "applicants_backend-engineer_20240314_090000.xlsx")
	assert.Equal(t, "PK", w.Body.String())
}

func multipartRequest(t *testing.T, fields map[string]string, photo []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if photo != nil {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", `form-data; name="photoProfile"; filename="me.png"`)
		h.Set("Content-Type", "image/png")
		part, err := mw.CreatePart(h)
		require.NoError(t, err)
		_, err = part.Write(photo)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/applications", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestSubmitApplicationBuildsPayload(t *testing.T) {
	s := newTestServer(t)
	photo := []byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A}

	s.apps.On("Submit", mock.Anything, mock.MatchedBy(func(p domain.SubmissionPayload) bool {
		_, hasLinkedin := p.Values[domain.FieldLinkedin]
		return p.JobID == 3 &&
			p.Values[domain.FieldFullName] == "Ana Putri" &&
			p.Values[domain.FieldDomicile] == "" && p.Has(domain.FieldDomicile) &&
			!hasLinkedin &&
			p.Photo != nil && p.Photo.ContentType == "image/png" && bytes.Equal(p.Photo.Data, photo)
	})).Return(&domain.Applicant{ID: 11, JobID: 3, FullName: "Ana Putri"}, nil)

	w := s.do(multipartRequest(t, map[string]string{
		"jobId": "3", "fullName": "Ana Putri", "email": "ana@example.com", "domicile": "",
	}, photo))

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	s.apps.AssertExpectations(t)
}

func TestSubmitApplicationReportsAllViolations(t *testing.T) {
	s := newTestServer(t)
	s.apps.On("Submit", mock.Anything, mock.Anything).Return(nil, apperror.Validation("Submission is invalid", []domain.FieldViolation{
		domain.RequiredFieldMissing(domain.FieldPhotoProfile),
		domain.UnexpectedField(domain.FieldLinkedin),
	}))

	w := s.do(multipartRequest(t, map[string]string{"jobId": "3", "linkedin": "https://linkedin.com/in/ana"}, nil))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	details := decode(t, w).Error.Details
	require.Len(t, details, 2)
	assert.Equal(t, domain.CodeUnexpectedField, details[1].Code)
}

func TestSubmitApplicationRejectsBadJobID(t *testing.T) {
	s := newTestServer(t)
	w := s.do(multipartRequest(t, map[string]string{"jobId": "abc"}, nil))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "jobId", decode(t, w).Error.Details[0].Field)
	s.apps.AssertNotCalled(t, "Submit", mock.Anything, mock.Anything)
}

func TestSubmitApplicationRequiresMultipart(t *testing.T) {
	s := newTestServer(t)
	req := httptest.NewRequest(http.MethodPost, "/api/applications", strings.NewReader(`{"jobId":3}`))
	req.Header.Set("Content-Type", "application/json")

	w := s.do(req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLoginSetsCookieAndPassesErrorsThrough(t *testing.T) {
	s := newTestServer(t)
	s.auth.On("SignIn", mock.Anything, "admin@example.com", "secret").
		Return(&domain.Session{AccessToken: "tok-1", TokenType: "bearer", ExpiresAt: time.Now().Add(time.Hour), Email: "admin@example.com"}, nil)
	s.auth.On("SignIn", mock.Anything, "admin@example.com", "wrong").
		Return(nil, apperror.Auth("Invalid login credentials"))

	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(`{"email":"admin@example.com","password":"secret"}`))
	req.Header.Set("Content-Type", "application/json")
	w := s.do(req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Set-Cookie"), "auth_token=tok-1")
	assert.Contains(t, w.Header().Get("Set-Cookie"), "HttpOnly")

	req = httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(`{"email":"admin@example.com","password":"wrong"}`))
	req.Header.Set("Content-Type", "application/json")
	w = s.do(req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Invalid login credentials", decode(t, w).Message)
}

func TestLogoutRevokesPrincipal(t *testing.T) {
	s := newTestServer(t)
	p := s.signedIn("tok")
	s.auth.On("SignOut", mock.Anything, p).Return(nil)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/logout", nil)
	req.Header.Set("Authorization", "Bearer tok")
	w := s.do(req)

	require.Equal(t, http.StatusOK, w.Code)
	s.auth.AssertCalled(t, "SignOut", mock.Anything, p)
}

func TestSessionEndpointReportsUnknown(t *testing.T) {
	s := newTestServer(t)
	s.auth.On("Resolve", mock.Anything, "tok").Return(domain.SessionUnknown, nil, domain.ErrAuthUnavailable)

	req := httptest.NewRequest(http.MethodGet, "/api/auth/session", nil)
	req.Header.Set("Authorization", "Bearer tok")
	w := s.do(req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "1", w.Header().Get("Retry-After"))
	assert.JSONEq(t, `{"state":"unknown"}`, string(decode(t, w).Data))
}

func TestHealthAndHeaders(t *testing.T) {
	s := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	req.Header.Set("Origin", "https://jobs.example.com")
	req.Header.Set("X-Request-ID", "req-42")
	w := s.do(req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "https://jobs.example.com", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "req-42", w.Header().Get("X-Request-ID"))
	assert.Equal(t, "req-42", decode(t, w).RequestID)
}

func TestCORSRejectsUnknownOriginPreflight(t *testing.T) {
	s := newTestServer(t)
	req := httptest.NewRequest(http.MethodOptions, "/api/applications", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	w := s.do(req)

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}
