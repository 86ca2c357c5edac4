package logger

import (
	"time"

	"github.com/sirupsen/logrus"
)

// AuditLogger records served API requests.
type AuditLogger struct {
	*logrus.Entry
}

// NewAuditLogger creates a new audit logger.
func NewAuditLogger(baseLogger *logrus.Logger) *AuditLogger {
	return &AuditLogger{
		Entry: baseLogger.WithField("component", "audit"),
	}
}

// LogRequest logs one completed HTTP request.
func (al *AuditLogger) LogRequest(method, path string, status int, latency time.Duration, clientIP string) {
	entry := al.WithFields(logrus.Fields{
		"method":     method,
		"path":       path,
		"status":     status,
		"latency_ms": float64(latency.Microseconds()) / 1000,
		"client_ip":  clientIP,
	})
	switch {
	case status >= 500:
		entry.Error("Request failed")
	case status >= 400:
		entry.Warn("Request rejected")
	default:
		entry.Info("Request served")
	}
}

// LogModelLoaded logs the model a serving context was built from.
func (al *AuditLogger) LogModelLoaded(modelID, path string, createdAt time.Time, drivers int) {
	al.WithFields(logrus.Fields{
		"model_id":   modelID,
		"path":       path,
		"created_at": createdAt.Format(time.RFC3339),
		"drivers":    drivers,
	}).Info("Serving context ready")
}
