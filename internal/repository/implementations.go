package repository

import (
	"time"

	"github.com/Ayash-Bera/student-lookup/internal/models"
	"gorm.io/gorm"
)

// LookupAuditRepositoryImpl implements LookupAuditRepository
type LookupAuditRepositoryImpl struct {
	db *gorm.DB
}

func NewLookupAuditRepository(db *gorm.DB) models.LookupAuditRepository {
	return &LookupAuditRepositoryImpl{db: db}
}

func (r *LookupAuditRepositoryImpl) Create(audit *models.LookupAudit) error {
	return r.db.Create(audit).Error
}

func (r *LookupAuditRepositoryImpl) GetRecent(limit int) ([]models.LookupAudit, error) {
	var audits []models.LookupAudit
	err := r.db.Order("created_at DESC").
		Limit(limit).
		Find(&audits).Error
	return audits, err
}

func (r *LookupAuditRepositoryImpl) CountByStatus(since time.Time) (map[string]int64, error) {
	var rows []struct {
		Status string
		Count  int64
	}
	err := r.db.Model(&models.LookupAudit{}).
		Select("status, COUNT(*) AS count").
		Where("created_at >= ?", since).
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}

// RepositoryManager bundles all repositories
type RepositoryManager struct {
	LookupAudit models.LookupAuditRepository
}

func NewRepositoryManager(db *gorm.DB) *RepositoryManager {
	return &RepositoryManager{
		LookupAudit: NewLookupAuditRepository(db),
	}
}
