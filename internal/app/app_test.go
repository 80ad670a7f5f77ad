package app

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"training_tracker/internal/config"
	"training_tracker/pkg/database"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Details []struct {
		Field string `json:"field"`
	} `json:"details"`
}

type client struct {
	t      *testing.T
	router http.Handler
}

func newTestApp(t *testing.T) *client {
	t.Helper()
	db, err := database.OpenSQLite(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	cfg := &config.Config{
		Server:   config.ServerConfig{Port: "0", Mode: "test"},
		Database: config.DatabaseConfig{Driver: "sqlite", Path: ":memory:"},
		JWT:      config.JWTConfig{Secret: "integration-secret", ExpireTime: time.Hour},
		Auth:     config.AuthConfig{DevLogin: true, AdminEmails: []string{"admin@example.com"}},
		Storage:  config.StorageConfig{Type: "local", LocalPath: t.TempDir()},
		Reports:  config.ReportsConfig{Timezone: "UTC"},
		CORS:     config.CORSConfig{AllowedOrigins: []string{"http://localhost:3000"}},
	}
	a, err := NewAppWithStores(cfg, db, nil)
	require.NoError(t, err)
	return &client{t: t, router: a.Router}
}

func (c *client) do(method, path, token string, body interface{}, headers ...string) *httptest.ResponseRecorder {
	c.t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(c.t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	c.router.ServeHTTP(rec, req)
	return rec
}

func (c *client) decode(rec *httptest.ResponseRecorder, data interface{}) envelope {
	c.t.Helper()
	var env envelope
	require.NoError(c.t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	if data != nil && len(env.Data) > 0 {
		require.NoError(c.t, json.Unmarshal(env.Data, data))
	}
	return env
}

type signedIn struct {
	Token string `json:"token"`
	User  struct {
		ID   string `json:"id"`
		Role string `json:"role"`
	} `json:"user"`
}

func (c *client) signIn(email string) signedIn {
	c.t.Helper()
	rec := c.do(http.MethodPost, "/api/auth/signin", "", map[string]string{"email": email, "name": strings.Split(email, "@")[0]})
	require.Equal(c.t, http.StatusOK, rec.Code, rec.Body.String())
	var s signedIn
	c.decode(rec, &s)
	return s
}

func TestHealthAndMetrics(t *testing.T) {
	c := newTestApp(t)

	rec := c.do(http.MethodGet, "/api/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = c.do(http.MethodGet, "/metrics", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "http_requests_total")
}

func TestAccessGate(t *testing.T) {
	c := newTestApp(t)
	emp := c.signIn("emp@example.com")
	assert.Equal(t, "EMPLOYEE", emp.User.Role)

	assert.Equal(t, http.StatusUnauthorized, c.do(http.MethodGet, "/api/courses", "", nil).Code)
	assert.Equal(t, http.StatusUnauthorized, c.do(http.MethodGet, "/api/courses", "bogus", nil).Code)
	assert.Equal(t, http.StatusOK, c.do(http.MethodGet, "/api/courses", emp.Token, nil).Code)

	for _, r := range []struct{ method, path string }{
		{http.MethodPost, "/api/courses"},
		{http.MethodPost, "/api/assignments"},
		{http.MethodGet, "/api/users"},
		{http.MethodGet, "/api/admin/reports"},
		{http.MethodGet, "/api/admin/reports/export"},
	} {
		rec := c.do(r.method, r.path, emp.Token, map[string]string{})
		assert.Equal(t, http.StatusForbidden, rec.Code, r.path)
	}

	var me struct {
		Email string `json:"email"`
	}
	rec := c.do(http.MethodGet, "/api/auth/me", emp.Token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	c.decode(rec, &me)
	assert.Equal(t, "emp@example.com", me.Email)
}

func TestTrainingFlow(t *testing.T) {
	c := newTestApp(t)
	admin := c.signIn("admin@example.com")
	require.Equal(t, "ADMIN", admin.User.Role)
	emp := c.signIn("emp@example.com")
	peer := c.signIn("peer@example.com")

	// invalid course
	rec := c.do(http.MethodPost, "/api/courses", admin.Token, map[string]interface{}{"title": "x", "resourceType": "AUDIO"})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	env := c.decode(rec, nil)
	assert.NotEmpty(t, env.Details)

	var course struct {
		ID string `json:"id"`
	}
	rec = c.do(http.MethodPost, "/api/courses", admin.Token, map[string]interface{}{
		"title":        `Code of "Conduct"`,
		"category":     "Compliance",
		"skillLevel":   "Beginner",
		"mandatory":    true,
		"resourceType": "PDF",
		"url":          "https://example.com/coc.pdf",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	c.decode(rec, &course)

	// unassigned progress is rejected
	rec = c.do(http.MethodPost, "/api/progress", emp.Token, map[string]string{"courseId": course.ID, "status": "IN_PROGRESS"})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = c.do(http.MethodPost, "/api/assignments", admin.Token, map[string]string{
		"userId":   emp.User.ID,
		"courseId": course.ID,
		"dueDate":  "2000-01-01T00:00:00Z",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = c.do(http.MethodPost, "/api/assignments", admin.Token, map[string]string{"userId": emp.User.ID, "courseId": course.ID, "dueDate": "tomorrow"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = c.do(http.MethodPost, "/api/assignments", admin.Token, map[string]string{"dueDate": "tomorrow"})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	env = c.decode(rec, nil)
	var fields []string
	for _, d := range env.Details {
		fields = append(fields, d.Field)
	}
	assert.ElementsMatch(t, []string{"userId", "courseId", "dueDate"}, fields)

	var bulk struct {
		Assignments []struct {
			UserID string `json:"userId"`
		} `json:"assignments"`
		Failures []struct {
			UserID string `json:"userId"`
		} `json:"failures"`
	}
	rec = c.do(http.MethodPost, "/api/assignments", admin.Token, map[string]interface{}{
		"userIds":  []string{peer.User.ID, "ghost"},
		"courseId": course.ID,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	c.decode(rec, &bulk)
	assert.Len(t, bulk.Assignments, 1)
	require.Len(t, bulk.Failures, 1)
	assert.Equal(t, "ghost", bulk.Failures[0].UserID)

	rec = c.do(http.MethodPost, "/api/assignments", admin.Token, map[string]interface{}{
		"userIds":  []string{"ghost"},
		"courseId": course.ID,
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = c.do(http.MethodPost, "/api/progress", emp.Token, map[string]string{"courseId": course.ID, "status": "DONE"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = c.do(http.MethodPost, "/api/progress", emp.Token, map[string]string{"courseId": course.ID, "status": "IN_PROGRESS"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	assert.Equal(t, http.StatusForbidden, c.do(http.MethodGet, "/api/progress?userId="+emp.User.ID, peer.Token, nil).Code)
	assert.Equal(t, http.StatusOK, c.do(http.MethodGet, "/api/progress?userId="+emp.User.ID, admin.Token, nil).Code)

	var summary struct {
		TotalAssignments   int `json:"totalAssignments"`
		PendingAssignments int `json:"pendingAssignments"`
		OverdueAssignments int `json:"overdueAssignments"`
	}
	rec = c.do(http.MethodGet, "/api/admin/reports", admin.Token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	c.decode(rec, &summary)
	assert.Equal(t, 2, summary.TotalAssignments)
	assert.Equal(t, 1, summary.PendingAssignments)
	assert.Equal(t, 1, summary.OverdueAssignments)

	rec = c.do(http.MethodGet, "/api/admin/reports/export", admin.Token, nil, "Accept-Language", "de-DE")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.HasPrefix(rec.Header().Get("Content-Type"), "text/csv"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), `attachment; filename="training-report-`)
	csv := rec.Body.String()
	assert.Equal(t, 2, strings.Count(csv, "\n"))
	assert.Contains(t, csv, `"Code of ""Conduct"""`)
	assert.Contains(t, csv, `"IN PROGRESS"`)
	assert.Contains(t, csv, `"1.1.2000"`)

	// archiving hides the course and blocks new assignments
	assert.Equal(t, http.StatusOK, c.do(http.MethodDelete, "/api/courses/"+course.ID, admin.Token, nil).Code)
	var courses []interface{}
	c.decode(c.do(http.MethodGet, "/api/courses", emp.Token, nil), &courses)
	assert.Empty(t, courses)
	rec = c.do(http.MethodPost, "/api/assignments", admin.Token, map[string]string{"userId": peer.User.ID, "courseId": course.ID})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, http.StatusNotFound, c.do(http.MethodGet, "/api/courses/missing", emp.Token, nil).Code)
}

func TestSignOutWithoutRedis(t *testing.T) {
	c := newTestApp(t)
	emp := c.signIn("emp@example.com")

	assert.Equal(t, http.StatusOK, c.do(http.MethodPost, "/api/auth/signout", emp.Token, nil).Code)
	assert.Equal(t, http.StatusUnauthorized, c.do(http.MethodPost, "/api/auth/signout", "", nil).Code)

	rec := c.do(http.MethodPost, "/api/auth/signin", "", map[string]string{"email": "nope"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
