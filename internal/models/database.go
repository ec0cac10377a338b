package models

// GORM models

import (
	"time"
)

// Base model with common fields
type BaseModel struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Audit statuses
const (
	AuditStatusOK       = "ok"
	AuditStatusNotFound = "not_found"
	AuditStatusInvalid  = "invalid"
	AuditStatusError    = "error"
)

// LookupAudit records one executed lookup. Search terms themselves are not
// stored, only their shape.
type LookupAudit struct {
	BaseModel
	RequestID      string `json:"request_id" gorm:"index"`
	Category       string `json:"category"`
	Field          string `json:"field"`
	TermCount      int    `json:"term_count"`
	ResultCount    int    `json:"result_count" gorm:"default:0"`
	Status         string `json:"status" gorm:"not null;check:status IN ('ok','not_found','invalid','error')"`
	ResponseTimeMs int    `json:"response_time_ms"`
}

// LookupAuditRepository persists lookup audit rows.
type LookupAuditRepository interface {
	Create(audit *LookupAudit) error
	GetRecent(limit int) ([]LookupAudit, error)
	CountByStatus(since time.Time) (map[string]int64, error)
}
