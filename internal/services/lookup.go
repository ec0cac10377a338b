package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Ayash-Bera/student-lookup/internal/classifier"
	"github.com/Ayash-Bera/student-lookup/internal/models"
	"github.com/Ayash-Bera/student-lookup/internal/query"
	"github.com/Ayash-Bera/student-lookup/internal/reconcile"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
)

// RecordStore executes a filter against the student collection.
type RecordStore interface {
	Find(ctx context.Context, filter bson.D) ([]models.StudentRecord, error)
}

// ResultCache stores records found for a filter.
type ResultCache interface {
	GetCachedLookupResults(ctx context.Context, key string) ([]models.StudentRecord, error)
	CacheLookupResults(ctx context.Context, key string, records []models.StudentRecord, expiration time.Duration) error
}

type LookupService struct {
	store    RecordStore
	cache    ResultCache
	audit    models.LookupAuditRepository
	cacheTTL time.Duration
	logger   *logrus.Logger
}

// NewLookupService wires the lookup chain. cache and audit may be nil.
func NewLookupService(
	store RecordStore,
	cache ResultCache,
	audit models.LookupAuditRepository,
	cacheTTL time.Duration,
	logger *logrus.Logger,
) *LookupService {
	return &LookupService{
		store:    store,
		cache:    cache,
		audit:    audit,
		cacheTTL: cacheTTL,
		logger:   logger,
	}
}

// Lookup builds one filter from c and returns the matching records.
func (s *LookupService) Lookup(ctx context.Context, requestID string, c models.Classification) ([]models.StudentRecord, error) {
	filter, err := query.Build(c)
	if err != nil {
		s.record(requestID, nil, termCount(c), 0, err, 0)
		return nil, err
	}
	return s.run(ctx, requestID, filter)
}

// Search classifies raw, looks it up and reports unmatched terms. On
// ErrNotFound the returned response still lists every term as missing.
func (s *LookupService) Search(ctx context.Context, requestID, raw string, category models.Category) (*models.SearchResponse, error) {
	classified, err := classifier.Classify(raw, category)
	if err != nil {
		s.record(requestID, nil, 0, 0, err, 0)
		return nil, err
	}

	filter, err := query.Build(classified.Classification)
	if err != nil {
		s.record(requestID, nil, len(classified.Terms), 0, err, 0)
		return nil, err
	}

	records, err := s.run(ctx, requestID, filter)
	if err != nil && !errors.Is(err, models.ErrNotFound) {
		return nil, err
	}

	resp := &models.SearchResponse{
		Students:     records,
		MissingItems: reconcile.Unmatched(classified.Terms, records),
		Category:     filter.Category,
		Total:        len(records),
	}
	if resp.Students == nil {
		resp.Students = []models.StudentRecord{}
	}
	return resp, err
}

func (s *LookupService) run(ctx context.Context, requestID string, filter *query.Filter) ([]models.StudentRecord, error) {
	start := time.Now()

	if len(filter.Ignored) > 0 {
		// Only one category takes part in a query.
		s.logger.WithFields(logrus.Fields{
			"request_id": requestID,
			"used":       filter.Category,
			"ignored":    filter.Ignored,
		}).Debug("Lower-precedence categories not queried")
	}

	records, err := s.find(ctx, filter)
	s.record(requestID, filter, len(filter.Values), len(records), err, time.Since(start))
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"request_id":    requestID,
		"category":      filter.Category,
		"results_count": len(records),
		"response_time": time.Since(start).Milliseconds(),
	}).Info("Lookup completed")

	return records, nil
}

func (s *LookupService) find(ctx context.Context, filter *query.Filter) ([]models.StudentRecord, error) {
	key := filter.CacheKey()

	if s.cache != nil {
		if records, err := s.cache.GetCachedLookupResults(ctx, key); err == nil && len(records) > 0 {
			s.logger.WithField("category", filter.Category).Debug("Lookup served from cache")
			return records, nil
		}
	}

	records, err := s.store.Find(ctx, filter.Document())
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("record store unavailable: %w", err)
	}

	if s.cache != nil {
		if err := s.cache.CacheLookupResults(ctx, key, records, s.cacheTTL); err != nil {
			s.logger.WithError(err).Warn("Failed to cache lookup results")
		}
	}
	return records, nil
}

func (s *LookupService) record(requestID string, filter *query.Filter, terms, results int, err error, elapsed time.Duration) {
	if s.audit == nil {
		return
	}

	audit := &models.LookupAudit{
		RequestID:      requestID,
		TermCount:      terms,
		ResultCount:    results,
		Status:         auditStatus(err),
		ResponseTimeMs: int(elapsed.Milliseconds()),
	}
	if filter != nil {
		audit.Category = string(filter.Category)
		audit.Field = filter.Field
	}

	if err := s.audit.Create(audit); err != nil {
		s.logger.WithError(err).Error("Failed to record lookup audit")
	}
}

func auditStatus(err error) string {
	switch {
	case err == nil:
		return models.AuditStatusOK
	case errors.Is(err, models.ErrNotFound):
		return models.AuditStatusNotFound
	case errors.Is(err, models.ErrInvalidInput):
		return models.AuditStatusInvalid
	default:
		return models.AuditStatusError
	}
}

func termCount(c models.Classification) int {
	n := 0
	for _, terms := range c {
		n += len(terms)
	}
	return n
}
