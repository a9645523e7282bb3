// Package client talks to the job board API. It implements form.Transport so
// a form.Form can be submitted over HTTP.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strconv"
	"strings"
	"sync"

	"job-board-backend/internal/domain"
	"job-board-backend/internal/form"
	"job-board-backend/pkg/apperror"
)

type Client struct {
	baseURL    string
	httpClient *http.Client

	mu    sync.RWMutex
	token string
}

func New(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		baseURL:    strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		httpClient: httpClient,
	}
}

// SetToken replaces the admin session token sent as a bearer token.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = token
}

func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Kind    apperror.Kind   `json:"kind"`
		Details json.RawMessage `json:"details"`
	} `json:"error"`
}

// JobForm is a job together with its rendered field descriptors.
type JobForm struct {
	Job    domain.Job              `json:"job"`
	Fields []form.FieldDescriptor `json:"fields"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type sessionResponse struct {
	State domain.SessionState `json:"state"`
	Email string              `json:"email"`
}

func (c *Client) ListJobs(ctx context.Context, filter domain.JobFilter) ([]domain.Job, error) {
	q := url.Values{}
	if filter.Search != "" {
		q.Set("search", filter.Search)
	}
	if filter.Status != "" {
		q.Set("status", string(filter.Status))
	}
	path := "/api/jobs"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}
	var jobs []domain.Job
	if err := c.do(ctx, http.MethodGet, path, nil, "", &jobs); err != nil {
		return nil, err
	}
	return jobs, nil
}

func (c *Client) GetJob(ctx context.Context, slug string) (*domain.Job, error) {
	var job domain.Job
	if err := c.do(ctx, http.MethodGet, "/api/jobs/"+url.PathEscape(slug), nil, "", &job); err != nil {
		return nil, err
	}
	return &job, nil
}

func (c *Client) GetForm(ctx context.Context, slug string) (*JobForm, error) {
	var jf JobForm
	if err := c.do(ctx, http.MethodGet, "/api/jobs/"+url.PathEscape(slug)+"/form", nil, "", &jf); err != nil {
		return nil, err
	}
	return &jf, nil
}

func (c *Client) ListApplicants(ctx context.Context, slug string, order domain.ApplicantOrder) (*domain.JobApplicants, error) {
	q := url.Values{}
	q.Set("sort", string(order.Field))
	if order.Desc {
		q.Set("order", "desc")
	} else {
		q.Set("order", "asc")
	}
	var out domain.JobApplicants
	path := "/api/jobs/" + url.PathEscape(slug) + "/applicants?" + q.Encode()
	if err := c.do(ctx, http.MethodGet, path, nil, "", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ExportApplicants downloads the applicants workbook and the filename the
// server suggested for it.
func (c *Client) ExportApplicants(ctx context.Context, slug string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/jobs/"+url.PathEscape(slug)+"/applicants/export", nil)
	if err != nil {
		return nil, "", fmt.Errorf("create request: %w", err)
	}
	if token := c.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("send export request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", fmt.Errorf("read export: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		var env envelope
		if err := json.Unmarshal(raw, &env); err != nil {
			return nil, "", apperror.New(resp.StatusCode, strings.TrimSpace(string(raw)), nil)
		}
		return nil, "", apiError(resp.StatusCode, env)
	}

	filename := slug + ".xlsx"
	if _, params, err := mime.ParseMediaType(resp.Header.Get("Content-Disposition")); err == nil && params["filename"] != "" {
		filename = params["filename"]
	}
	return raw, filename, nil
}

// SubmitApplication posts payload as multipart/form-data. Only the fields
// present in payload.Values are written, so OFF fields never reach the wire.
func (c *Client) SubmitApplication(ctx context.Context, payload domain.SubmissionPayload) (*domain.Applicant, error) {
	body, contentType, err := encodeSubmission(payload)
	if err != nil {
		return nil, fmt.Errorf("encode submission: %w", err)
	}
	var applicant domain.Applicant
	if err := c.do(ctx, http.MethodPost, "/api/applications", body, contentType, &applicant); err != nil {
		return nil, err
	}
	return &applicant, nil
}

func encodeSubmission(payload domain.SubmissionPayload) (*bytes.Buffer, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	if err := w.WriteField("jobId", strconv.FormatInt(payload.JobID, 10)); err != nil {
		return nil, "", err
	}
	for _, f := range domain.Fields {
		v, ok := payload.Values[f]
		if !ok || f == domain.FieldPhotoProfile {
			continue
		}
		if err := w.WriteField(string(f), v); err != nil {
			return nil, "", err
		}
	}

	if p := payload.Photo; p != nil {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, string(domain.FieldPhotoProfile), p.Filename))
		ct := p.ContentType
		if ct == "" {
			ct = "application/octet-stream"
		}
		h.Set("Content-Type", ct)
		part, err := w.CreatePart(h)
		if err != nil {
			return nil, "", err
		}
		if _, err := part.Write(p.Data); err != nil {
			return nil, "", err
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return &buf, w.FormDataContentType(), nil
}

// Login signs in and keeps the returned token for later admin calls.
func (c *Client) Login(ctx context.Context, email, password string) (*domain.Session, error) {
	body, err := json.Marshal(loginRequest{Email: email, Password: password})
	if err != nil {
		return nil, err
	}
	var session domain.Session
	if err := c.do(ctx, http.MethodPost, "/api/auth/login", bytes.NewReader(body), "application/json", &session); err != nil {
		return nil, err
	}
	c.SetToken(session.AccessToken)
	return &session, nil
}

func (c *Client) Logout(ctx context.Context) error {
	if err := c.do(ctx, http.MethodPost, "/api/auth/logout", nil, "", nil); err != nil {
		return err
	}
	c.SetToken("")
	return nil
}

// Session asks the server what it makes of the current token. A transport
// failure is returned as an error, never as SessionAbsent.
func (c *Client) Session(ctx context.Context) (domain.SessionState, error) {
	var out sessionResponse
	if err := c.do(ctx, http.MethodGet, "/api/auth/session", nil, "", &out); err != nil {
		return domain.SessionUnknown, err
	}
	switch out.State {
	case domain.SessionPresent, domain.SessionAbsent:
		return out.State, nil
	}
	return domain.SessionUnknown, nil
}

func (c *Client) do(ctx context.Context, method, path string, body io.Reader, contentType string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token := c.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("send %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		if resp.StatusCode >= http.StatusBadRequest {
			return apperror.New(resp.StatusCode, strings.TrimSpace(string(raw)), nil)
		}
		return fmt.Errorf("decode response: %w", err)
	}

	if resp.StatusCode >= http.StatusBadRequest || !env.Success {
		return apiError(resp.StatusCode, env)
	}
	if out == nil || len(env.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("decode data: %w", err)
	}
	return nil
}

// apiError rebuilds the server's AppError so callers can switch on Kind and
// read every field violation.
func apiError(status int, env envelope) error {
	if status < http.StatusBadRequest {
		status = http.StatusInternalServerError
	}
	e := apperror.New(status, env.Message, nil)
	if env.Error == nil {
		return e
	}
	if env.Error.Kind != "" {
		e.Kind = env.Error.Kind
	}
	if len(env.Error.Details) > 0 && e.Kind == apperror.KindValidation {
		var violations []domain.FieldViolation
		if err := json.Unmarshal(env.Error.Details, &violations); err == nil {
			e.Details = violations
		}
	}
	return e
}

// Violations extracts field violations from an error returned by the
// client or by form.BuildSubmission.
func Violations(err error) []domain.FieldViolation {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		v, _ := appErr.Details.([]domain.FieldViolation)
		return v
	}
	var missing *form.MissingFieldsError
	if errors.As(err, &missing) {
		return missing.Violations()
	}
	return nil
}
