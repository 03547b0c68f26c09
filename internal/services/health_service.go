package services

import (
	"context"
	"log/slog"
	"runtime"
	"time"
)

// Pinger is anything that can confirm its backing resource is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthService provides health check functionality
type HealthService struct {
	version   string
	buildTime string
	db        Pinger
	notebook  Notebook
	startTime time.Time
	logger    *slog.Logger
}

// HealthStatus represents the health status response
type HealthStatus struct {
	Status    string                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Version   string                 `json:"version"`
	Runtime   map[string]interface{} `json:"runtime,omitempty"`
	Services  map[string]interface{} `json:"services,omitempty"`
}

// ServiceHealth represents individual service health
type ServiceHealth struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// NewHealthService creates a new health service with injected dependencies.
func NewHealthService(version, buildTime string, db Pinger, notebook Notebook, logger *slog.Logger) *HealthService {
	if logger == nil {
		logger = slog.Default()
	}
	return &HealthService{
		version:   version,
		buildTime: buildTime,
		db:        db,
		notebook:  notebook,
		startTime: time.Now(),
		logger:    logger.With(slog.String("component", "health_service")),
	}
}

// Check reports overall and per-dependency health. A missing ELN config is
// reported as disabled, not unhealthy; the pipeline works without it.
func (s *HealthService) Check(ctx context.Context) HealthStatus {
	status := HealthStatus{
		Status:    "healthy",
		Timestamp: time.Now().UTC(),
		Version:   s.version,
		Runtime: map[string]interface{}{
			"go_version":     runtime.Version(),
			"os":             runtime.GOOS,
			"arch":           runtime.GOARCH,
			"goroutines":     runtime.NumGoroutine(),
			"uptime_seconds": time.Since(s.startTime).Seconds(),
			"build_time":     s.buildTime,
		},
		Services: map[string]interface{}{},
	}

	if s.db != nil {
		if err := s.db.Ping(ctx); err != nil {
			status.Status = "degraded"
			status.Services["storage"] = ServiceHealth{Status: "unhealthy", Message: err.Error()}
			s.logger.WarnContext(ctx, "storage health check failed", slog.String("error", err.Error()))
		} else {
			status.Services["storage"] = ServiceHealth{Status: "healthy"}
		}
	}

	if s.notebook != nil && s.notebook.Configured() {
		status.Services["eln"] = ServiceHealth{Status: "configured"}
	} else {
		status.Services["eln"] = ServiceHealth{Status: "disabled", Message: "no eln url or token configured"}
	}

	return status
}
