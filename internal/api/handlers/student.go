package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/Ayash-Bera/student-lookup/internal/models"
	"github.com/Ayash-Bera/student-lookup/pkg/utils"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// Lookuper is the lookup chain behind the student routes.
type Lookuper interface {
	Lookup(ctx context.Context, requestID string, c models.Classification) ([]models.StudentRecord, error)
	Search(ctx context.Context, requestID, raw string, category models.Category) (*models.SearchResponse, error)
}

const (
	notFoundMessage = "Student not found"
	internalMessage = "internal server error"
	maxQueryLength  = 2000
)

type StudentHandler struct {
	lookup  Lookuper
	audit   models.LookupAuditRepository
	timeout time.Duration
	logger  *logrus.Logger
}

// NewStudentHandler builds the handler. audit may be nil.
func NewStudentHandler(lookup Lookuper, audit models.LookupAuditRepository, timeout time.Duration, logger *logrus.Logger) *StudentHandler {
	return &StudentHandler{
		lookup:  lookup,
		audit:   audit,
		timeout: timeout,
		logger:  logger,
	}
}

// HandleLookup serves POST /byENR: a pre-classified mapping in, a bare
// array of records out.
func (h *StudentHandler) HandleLookup(c *gin.Context) {
	var req models.LookupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.WithError(err).Warn("Invalid lookup request")
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request format"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	requestID := utils.RequestID(c)
	records, err := h.lookup.Lookup(ctx, requestID, req.Classification())
	switch {
	case err == nil:
		c.JSON(http.StatusOK, records)
	case errors.Is(err, models.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
	case errors.Is(err, models.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"message": notFoundMessage})
	default:
		h.logger.WithError(err).WithField("request_id", requestID).Error("Lookup failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": internalMessage})
	}
}

// HandleSearch serves POST /search: raw comma-separated text in, records
// plus unmatched terms out.
func (h *StudentHandler) HandleSearch(c *gin.Context) {
	var req models.SearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request format", err)
		return
	}

	query := strings.TrimSpace(req.Query)
	if len(query) > maxQueryLength {
		utils.ErrorResponse(c, http.StatusBadRequest, "Query too long (max 2000 characters)", nil)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	requestID := utils.RequestID(c)
	resp, err := h.lookup.Search(ctx, requestID, query, models.Category(req.Type))
	switch {
	case err == nil:
		utils.SuccessResponse(c, http.StatusOK, "Search completed", resp)
	case errors.Is(err, models.ErrInvalidInput):
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid input", err)
	case errors.Is(err, models.ErrNotFound):
		utils.ErrorResponseWithData(c, http.StatusNotFound, notFoundMessage, resp)
	default:
		h.logger.WithError(err).WithField("request_id", requestID).Error("Search failed")
		utils.ErrorResponse(c, http.StatusInternalServerError, internalMessage, nil)
	}
}

// HandleRecentAudits serves GET /audit/recent.
func (h *StudentHandler) HandleRecentAudits(c *gin.Context) {
	if h.audit == nil {
		utils.ErrorResponse(c, http.StatusNotFound, "Audit log is not enabled", nil)
		return
	}

	limit, err := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if err != nil || limit <= 0 {
		utils.ErrorResponse(c, http.StatusBadRequest, "limit must be a positive integer", nil)
		return
	}
	if limit > 100 {
		limit = 100
	}

	audits, err := h.audit.GetRecent(limit)
	if err != nil {
		h.logger.WithError(err).Error("Failed to load lookup audits")
		utils.ErrorResponse(c, http.StatusInternalServerError, internalMessage, nil)
		return
	}

	counts, err := h.audit.CountByStatus(time.Now().Add(-24 * time.Hour))
	if err != nil {
		h.logger.WithError(err).Warn("Failed to count lookup audits")
	}

	utils.SuccessResponse(c, http.StatusOK, "Recent lookups", gin.H{
		"lookups":      audits,
		"last_24h":     counts,
		"result_limit": limit,
	})
}
