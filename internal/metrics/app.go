package metrics

import (
	"time"

	"github.com/worklane/worklane-cli/internal/observability"
)

// Metric names following Prometheus conventions.
var (
	ResolveTotal         = "resolve_total"
	UpstreamCallsTotal   = "upstream_calls_total"
	ThrottleRetriesTotal = "throttle_retries_total"
	CacheEventsTotal     = "cache_events_total"

	ActiveConnections = "app_active_connections"

	HealthCheckTotal    = "app_health_check_total"
	HealthCheckDuration = "app_health_check_duration_ms"

	ServerStartTime = "app_server_start_time_seconds"
	ServerUptime    = "app_server_uptime_seconds"
)

// RecordResolve records one resolver call by resource type and outcome
// (resolved, not_found, ambiguous, error). Calls that left type detection
// to the resolver are labeled "auto".
func RecordResolve(resourceType string, outcome string) {
	if observability.TelemetrySystem == nil {
		return
	}
	if resourceType == "" {
		resourceType = "auto"
	}
	_ = observability.TelemetrySystem.Counter(
		ResolveTotal,
		1,
		map[string]string{
			"type":    resourceType,
			"outcome": outcome,
		},
	)
}

// RecordUpstreamCall records one call admitted to the upstream API.
func RecordUpstreamCall(class string, success bool) {
	if observability.TelemetrySystem == nil {
		return
	}
	status := "success"
	if !success {
		status = "failure"
	}
	_ = observability.TelemetrySystem.Counter(
		UpstreamCallsTotal,
		1,
		map[string]string{
			"class":  class,
			"status": status,
		},
	)
}

// RecordThrottleRetry records a retry forced by an upstream 429.
func RecordThrottleRetry(class string) {
	if observability.TelemetrySystem == nil {
		return
	}
	_ = observability.TelemetrySystem.Counter(
		ThrottleRetriesTotal,
		1,
		map[string]string{"class": class},
	)
}

// RecordCacheEvent records cache activity. cache is "response" or
// "resolve"; event is hit, miss, write, invalidate, or sweep.
func RecordCacheEvent(cache string, event string) {
	if observability.TelemetrySystem == nil {
		return
	}
	_ = observability.TelemetrySystem.Counter(
		CacheEventsTotal,
		1,
		map[string]string{
			"cache": cache,
			"event": event,
		},
	)
}

// SetActiveConnections sets the current number of active connections.
func SetActiveConnections(count int64) {
	if observability.TelemetrySystem == nil {
		return
	}
	_ = observability.TelemetrySystem.Gauge(ActiveConnections, float64(count), nil)
}

// RecordHealthCheck records a health check execution.
func RecordHealthCheck(checkName string, healthy bool, duration time.Duration) {
	if observability.TelemetrySystem == nil {
		return
	}

	status := "healthy"
	if !healthy {
		status = "unhealthy"
	}

	_ = observability.TelemetrySystem.Counter(
		HealthCheckTotal,
		1,
		map[string]string{
			"check":  checkName,
			"status": status,
		},
	)
	_ = observability.TelemetrySystem.Histogram(
		HealthCheckDuration,
		duration,
		map[string]string{"check": checkName},
	)
}

// SetServerStartTime records the server start time as a Unix timestamp.
func SetServerStartTime(timestamp int64) {
	if observability.TelemetrySystem == nil {
		return
	}
	_ = observability.TelemetrySystem.Gauge(ServerStartTime, float64(timestamp), nil)
}

// SetServerUptime records the server uptime in seconds.
func SetServerUptime(seconds int64) {
	if observability.TelemetrySystem == nil {
		return
	}
	_ = observability.TelemetrySystem.Gauge(ServerUptime, float64(seconds), nil)
}
