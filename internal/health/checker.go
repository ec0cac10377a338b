package health

import (
	"context"
	"time"

	"github.com/Ayash-Bera/student-lookup/internal/database"
	"github.com/sirupsen/logrus"
)

// PingFunc reports whether a dependency is reachable.
type PingFunc func(ctx context.Context) error

type check struct {
	name string
	ping PingFunc
}

// HealthChecker manages health checks for all services
type HealthChecker struct {
	checks  []check
	timeout time.Duration
	logger  *logrus.Logger
}

func NewHealthChecker(logger *logrus.Logger) *HealthChecker {
	return &HealthChecker{
		timeout: 5 * time.Second,
		logger:  logger,
	}
}

// ForManager registers a check for every backend the manager holds.
func ForManager(dbManager *database.Manager, logger *logrus.Logger) *HealthChecker {
	h := NewHealthChecker(logger)
	h.Register("mongodb", dbManager.PingMongo)
	if dbManager.DB != nil {
		h.Register("postgresql", func(context.Context) error { return dbManager.PingDatabase() })
	}
	if dbManager.Redis != nil {
		h.Register("redis", dbManager.PingRedis)
	}
	return h
}

func (h *HealthChecker) Register(name string, ping PingFunc) {
	h.checks = append(h.checks, check{name: name, ping: ping})
}

// ServiceHealth represents the health status of a service
type ServiceHealth struct {
	Name         string `json:"name"`
	Status       string `json:"status"`
	ResponseTime int    `json:"response_time_ms"`
	Error        string `json:"error,omitempty"`
	LastChecked  string `json:"last_checked"`
}

// OverallHealth represents the overall system health
type OverallHealth struct {
	Status   string          `json:"status"`
	Services []ServiceHealth `json:"services"`
	Uptime   string          `json:"uptime"`
}

func (h *HealthChecker) checkOne(ctx context.Context, c check) ServiceHealth {
	ctx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()

	start := time.Now()
	err := c.ping(ctx)
	responseTime := int(time.Since(start).Milliseconds())

	status := "healthy"
	errorMsg := ""
	if err != nil {
		status = "unhealthy"
		errorMsg = err.Error()
		h.logger.WithError(err).WithField("service", c.name).Error("Health check failed")
	}

	return ServiceHealth{
		Name:         c.name,
		Status:       status,
		ResponseTime: responseTime,
		Error:        errorMsg,
		LastChecked:  time.Now().Format(time.RFC3339),
	}
}

// CheckAll performs health checks on all services
func (h *HealthChecker) CheckAll(ctx context.Context) OverallHealth {
	services := make([]ServiceHealth, 0, len(h.checks))
	overallStatus := "healthy"

	for _, c := range h.checks {
		service := h.checkOne(ctx, c)
		if service.Status == "unhealthy" {
			overallStatus = "unhealthy"
		}
		services = append(services, service)
	}

	return OverallHealth{
		Status:   overallStatus,
		Services: services,
		Uptime:   time.Since(startTime).Round(time.Second).String(),
	}
}

var startTime = time.Now()
