package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Ayash-Bera/student-lookup/internal/models"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

type fakeStore struct {
	records []models.StudentRecord
	err     error
	filters []bson.D
}

func (f *fakeStore) Find(_ context.Context, filter bson.D) ([]models.StudentRecord, error) {
	f.filters = append(f.filters, filter)
	if f.err != nil {
		return nil, f.err
	}
	if len(f.records) == 0 {
		return nil, models.ErrNotFound
	}
	return f.records, nil
}

type fakeCache struct {
	entries map[string][]models.StudentRecord
	sets    int
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: make(map[string][]models.StudentRecord)}
}

func (c *fakeCache) GetCachedLookupResults(_ context.Context, key string) ([]models.StudentRecord, error) {
	records, ok := c.entries[key]
	if !ok {
		return nil, errors.New("miss")
	}
	return records, nil
}

func (c *fakeCache) CacheLookupResults(_ context.Context, key string, records []models.StudentRecord, _ time.Duration) error {
	c.entries[key] = records
	c.sets++
	return nil
}

type fakeAudit struct {
	rows []models.LookupAudit
	err  error
}

func (a *fakeAudit) Create(audit *models.LookupAudit) error {
	a.rows = append(a.rows, *audit)
	return a.err
}

func (a *fakeAudit) GetRecent(limit int) ([]models.LookupAudit, error) {
	return a.rows, nil
}

func (a *fakeAudit) CountByStatus(time.Time) (map[string]int64, error) {
	return nil, nil
}

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return logger
}

func TestLookupService_Lookup(t *testing.T) {
	store := &fakeStore{records: []models.StudentRecord{{StudentID: 1, NewEnrollment: "EN1002"}}}
	audit := &fakeAudit{}
	svc := NewLookupService(store, nil, audit, time.Minute, quietLogger())

	records, err := svc.Lookup(context.Background(), "req-1", models.Classification{
		models.CategoryEmail:      {"en@x.com"},
		models.CategoryEnrollment: {"EN1002"},
	})
	require.NoError(t, err)
	assert.Len(t, records, 1)

	require.Len(t, store.filters, 1)
	assert.Equal(t, bson.D{{Key: "Student New ENR", Value: "EN1002"}}, store.filters[0])

	require.Len(t, audit.rows, 1)
	assert.Equal(t, models.AuditStatusOK, audit.rows[0].Status)
	assert.Equal(t, "enNumber", audit.rows[0].Category)
	assert.Equal(t, "req-1", audit.rows[0].RequestID)
}

func TestLookupService_LookupErrors(t *testing.T) {
	t.Run("not found", func(t *testing.T) {
		audit := &fakeAudit{}
		svc := NewLookupService(&fakeStore{}, nil, audit, time.Minute, quietLogger())

		_, err := svc.Lookup(context.Background(), "", models.Classification{models.CategoryEnrollment: {"EN0"}})
		assert.ErrorIs(t, err, models.ErrNotFound)
		assert.Equal(t, models.AuditStatusNotFound, audit.rows[0].Status)
	})

	t.Run("invalid input never reaches the store", func(t *testing.T) {
		store := &fakeStore{}
		audit := &fakeAudit{}
		svc := NewLookupService(store, nil, audit, time.Minute, quietLogger())

		_, err := svc.Lookup(context.Background(), "", models.Classification{models.CategoryPhone: {"12ab"}})
		assert.ErrorIs(t, err, models.ErrInvalidInput)
		assert.Empty(t, store.filters)
		assert.Equal(t, models.AuditStatusInvalid, audit.rows[0].Status)
	})

	t.Run("store failure is internal", func(t *testing.T) {
		audit := &fakeAudit{}
		svc := NewLookupService(&fakeStore{err: errors.New("connection reset")}, nil, audit, time.Minute, quietLogger())

		_, err := svc.Lookup(context.Background(), "", models.Classification{models.CategoryEnrollment: {"EN1"}})
		require.Error(t, err)
		assert.NotErrorIs(t, err, models.ErrNotFound)
		assert.NotErrorIs(t, err, models.ErrInvalidInput)
		assert.Equal(t, models.AuditStatusError, audit.rows[0].Status)
	})

	t.Run("audit failure does not fail the lookup", func(t *testing.T) {
		store := &fakeStore{records: []models.StudentRecord{{StudentID: 1}}}
		svc := NewLookupService(store, nil, &fakeAudit{err: errors.New("db down")}, time.Minute, quietLogger())

		_, err := svc.Lookup(context.Background(), "", models.Classification{models.CategoryStudentID: {"1"}})
		assert.NoError(t, err)
	})
}

func TestLookupService_UsesCache(t *testing.T) {
	store := &fakeStore{records: []models.StudentRecord{{StudentID: 7}}}
	cache := newFakeCache()
	svc := NewLookupService(store, cache, nil, time.Minute, quietLogger())
	c := models.Classification{models.CategoryStudentID: {"7"}}

	_, err := svc.Lookup(context.Background(), "", c)
	require.NoError(t, err)
	records, err := svc.Lookup(context.Background(), "", c)
	require.NoError(t, err)

	assert.Equal(t, models.FlexInt(7), records[0].StudentID)
	assert.Len(t, store.filters, 1, "second lookup is served from cache")
	assert.Equal(t, 1, cache.sets)
}

func TestLookupService_Search(t *testing.T) {
	store := &fakeStore{records: []models.StudentRecord{{
		StudentID:     1001,
		NewEnrollment: "EN1002",
		Guardians:     []models.Guardian{{Email: "parent@x.com"}},
	}}}
	svc := NewLookupService(store, nil, nil, time.Minute, quietLogger())

	resp, err := svc.Search(context.Background(), "", "en@x.com, EN1002", models.CategoryCustom)
	require.NoError(t, err)

	assert.Equal(t, models.CategoryEnrollment, resp.Category)
	assert.Equal(t, 1, resp.Total)
	assert.Equal(t, []string{"en@x.com"}, resp.MissingItems)
	assert.Equal(t, bson.D{{Key: "Student New ENR", Value: "EN1002"}}, store.filters[0])
}

func TestLookupService_SearchNotFound(t *testing.T) {
	svc := NewLookupService(&fakeStore{}, nil, nil, time.Minute, quietLogger())

	resp, err := svc.Search(context.Background(), "", "EN1, EN2", "")
	assert.ErrorIs(t, err, models.ErrNotFound)
	require.NotNil(t, resp)
	assert.Empty(t, resp.Students)
	assert.NotNil(t, resp.Students)
	assert.Equal(t, []string{"EN1", "EN2"}, resp.MissingItems)
}

func TestLookupService_SearchInvalid(t *testing.T) {
	store := &fakeStore{}
	svc := NewLookupService(store, nil, nil, time.Minute, quietLogger())

	resp, err := svc.Search(context.Background(), "", " , ", "")
	assert.ErrorIs(t, err, models.ErrInvalidInput)
	assert.Nil(t, resp)
	assert.Empty(t, store.filters)
}
