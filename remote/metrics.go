package remote

import (
	"time"

	log "github.com/sirupsen/logrus"
)

type requestMetrics struct {
	logger     *log.Logger
	start      time.Time
	method     string
	route      string
	requestID  string
	traceID    string
	errorStage string
}

func newRequestMetrics(logger *log.Logger, method, route string) *requestMetrics {
	return &requestMetrics{
		logger: logger,
		start:  time.Now(),
		method: method,
		route:  route,
	}
}

func (m *requestMetrics) SetRequestID(id string) {
	m.requestID = id
}

func (m *requestMetrics) SetTraceID(id string) {
	m.traceID = id
}

func (m *requestMetrics) SetErrorStage(stage string) {
	if stage == "" {
		return
	}
	m.errorStage = stage
}

func (m *requestMetrics) Log(status int, err error) {
	if m == nil || m.logger == nil {
		return
	}

	fields := log.Fields{
		"method":   m.method,
		"route":    m.route,
		"status":   status,
		"total_ms": durationToMillis(time.Since(m.start)),
	}
	if m.requestID != "" {
		fields["request_id"] = m.requestID
	}
	if m.traceID != "" {
		fields["trace_id"] = m.traceID
	}
	if m.errorStage != "" {
		fields["error_stage"] = m.errorStage
	}
	if err != nil {
		fields["error"] = err.Error()
	}

	m.logger.WithFields(fields).Debug("authority.request.metrics")
}

func durationToMillis(d time.Duration) float64 {
	if d <= 0 {
		return 0
	}
	return float64(d) / float64(time.Millisecond)
}
