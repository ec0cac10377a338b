package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Ayash-Bera/student-lookup/internal/api/handlers"
	"github.com/Ayash-Bera/student-lookup/internal/health"
	"github.com/Ayash-Bera/student-lookup/internal/models"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubLookup struct {
	records []models.StudentRecord
	search  *models.SearchResponse
	err     error

	gotClassification models.Classification
	gotRaw            string
	gotCategory       models.Category
}

func (s *stubLookup) Lookup(_ context.Context, _ string, c models.Classification) ([]models.StudentRecord, error) {
	s.gotClassification = c
	return s.records, s.err
}

func (s *stubLookup) Search(_ context.Context, _ string, raw string, category models.Category) (*models.SearchResponse, error) {
	s.gotRaw, s.gotCategory = raw, category
	return s.search, s.err
}

func newTestServer(lookup handlers.Lookuper, checker *health.HealthChecker) *gin.Engine {
	gin.SetMode(gin.TestMode)
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)

	return NewRouter(RouterDeps{
		Students:  handlers.NewStudentHandler(lookup, nil, 5*time.Second, logger),
		Health:    handlers.NewHealthHandler(checker),
		RateLimit: 0,
		Logger:    logger,
	})
}

func post(r http.Handler, path, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	return w
}

func TestLookup_ReturnsArray(t *testing.T) {
	lookup := &stubLookup{records: []models.StudentRecord{{StudentID: 1001, NewEnrollment: "EN1002", Guardians: []models.Guardian{}}}}
	r := newTestServer(lookup, health.NewHealthChecker(logrus.New()))

	for _, path := range []string{"/byENR", "/student/byENR"} {
		w := post(r, path, `{"result": {"enNumber": ["EN1002"], "email": "en@x.com"}}`)
		require.Equal(t, http.StatusOK, w.Code, path)

		var body []map[string]interface{}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		require.Len(t, body, 1)
		assert.Equal(t, "EN1002", body[0]["Student New ENR"])
		assert.Equal(t, float64(1001), body[0]["Student ID"])
	}

	assert.Equal(t, models.Classification{
		models.CategoryEnrollment: {"EN1002"},
		models.CategoryEmail:      {"en@x.com"},
	}, lookup.gotClassification)
}

func TestLookup_ErrorMapping(t *testing.T) {
	cases := []struct {
		name string
		err  error
		code int
		body string
	}{
		{"not found", models.ErrNotFound, http.StatusNotFound, `{"message":"Student not found"}`},
		{"invalid", models.ErrInvalidInput, http.StatusBadRequest, `{"message":"invalid input"}`},
		{"internal", errors.New("socket closed by mongo"), http.StatusInternalServerError, `{"error":"internal server error"}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := newTestServer(&stubLookup{err: tc.err}, health.NewHealthChecker(logrus.New()))

			w := post(r, "/byENR", `{"result": {"enNumber": "EN1"}}`)
			assert.Equal(t, tc.code, w.Code)
			assert.JSONEq(t, tc.body, w.Body.String())
		})
	}
}

func TestLookup_BadBody(t *testing.T) {
	r := newTestServer(&stubLookup{}, health.NewHealthChecker(logrus.New()))

	for _, body := range []string{`not json`, `{}`, `{"result": {"enNumber": 5}}`} {
		w := post(r, "/byENR", body)
		assert.Equal(t, http.StatusBadRequest, w.Code, body)
	}
}

func TestSearch(t *testing.T) {
	lookup := &stubLookup{search: &models.SearchResponse{
		Students:     []models.StudentRecord{{NewEnrollment: "EN1002"}},
		MissingItems: []string{"en@x.com"},
		Category:     models.CategoryEnrollment,
		Total:        1,
	}}
	r := newTestServer(lookup, health.NewHealthChecker(logrus.New()))

	w := post(r, "/search", `{"query": " en@x.com, EN1002 ", "type": "custom"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "en@x.com, EN1002", lookup.gotRaw)
	assert.Equal(t, models.CategoryCustom, lookup.gotCategory)

	var body struct {
		Success bool                  `json:"success"`
		Data    models.SearchResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.True(t, body.Success)
	assert.Equal(t, []string{"en@x.com"}, body.Data.MissingItems)
}

func TestSearch_NotFoundKeepsMissingItems(t *testing.T) {
	lookup := &stubLookup{
		search: &models.SearchResponse{Students: []models.StudentRecord{}, MissingItems: []string{"EN1"}},
		err:    models.ErrNotFound,
	}
	r := newTestServer(lookup, health.NewHealthChecker(logrus.New()))

	w := post(r, "/search", `{"query": "EN1"}`)
	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), `"missing_items":["EN1"]`)
}

func TestHealth(t *testing.T) {
	checker := health.NewHealthChecker(logrus.New())
	checker.Register("mongodb", func(context.Context) error { return nil })
	r := newTestServer(&stubLookup{}, checker)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	checker.Register("redis", func(context.Context) error { return errors.New("down") })
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestAuditDisabled(t *testing.T) {
	r := newTestServer(&stubLookup{}, health.NewHealthChecker(logrus.New()))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/audit/recent", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}
