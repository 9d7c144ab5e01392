package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/worklane/worklane-cli/internal/observability"
	"go.uber.org/zap"
)

// statusRecorder captures the status code and body size that the wrapped
// handler writes, since http.ResponseWriter exposes neither.
type statusRecorder struct {
	http.ResponseWriter
	status  int
	written int64
}

func (sr *statusRecorder) WriteHeader(code int) {
	sr.status = code
	sr.ResponseWriter.WriteHeader(code)
}

func (sr *statusRecorder) Write(p []byte) (int, error) {
	n, err := sr.ResponseWriter.Write(p)
	sr.written += int64(n)
	return n, err
}

// getEndpointPattern maps a request to a bounded label value. Routed
// requests use the chi pattern; everything else collapses into a small
// fixed set so arbitrary paths cannot inflate metric cardinality.
func getEndpointPattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if pattern := rctx.RoutePattern(); pattern != "" {
			return pattern
		}
	}

	path := r.URL.Path
	switch {
	case path == "/" || path == "/version" || path == "/metrics" || path == "/v1/ratelimit":
		return path
	case strings.HasPrefix(path, "/health"):
		return "/health/*"
	case strings.HasPrefix(path, "/v1/resolve"):
		return "/v1/resolve/*"
	case strings.HasPrefix(path, "/v1/cache"):
		return "/v1/cache/*"
	default:
		return "/unknown"
	}
}

// requestBodySize reads the declared Content-Length without consuming the
// body. Absent or malformed headers count as zero.
func requestBodySize(r *http.Request) int64 {
	header := r.Header.Get("Content-Length")
	if header == "" {
		return 0
	}
	size, err := strconv.ParseInt(header, 10, 64)
	if err != nil || size < 0 {
		return 0
	}
	return size
}

// emitRequestMetrics records one completed request: totals and latency on
// every call, error counts only for 4xx and 5xx responses.
func emitRequestMetrics(r *http.Request, endpoint string, status int, elapsed time.Duration, requestBytes, responseBytes int64) {
	sys := observability.TelemetrySystem
	if sys == nil {
		return
	}

	labels := map[string]string{
		"method":   r.Method,
		"endpoint": endpoint,
		"status":   strconv.Itoa(status),
	}
	sizeLabels := map[string]string{
		"method":   r.Method,
		"endpoint": endpoint,
	}

	_ = sys.Counter("http_requests_total", 1, labels)

	// Duration histogram in milliseconds, matching the gofulmen standard
	_ = sys.Histogram("http_request_duration_ms", elapsed, labels)

	_ = sys.Gauge("http_request_size_bytes", float64(requestBytes), sizeLabels)
	_ = sys.Gauge("http_response_size_bytes", float64(responseBytes), sizeLabels)

	if status < 400 {
		return
	}
	errorType := "client_error"
	if status >= 500 {
		errorType = "server_error"
	}
	_ = sys.Counter("http_errors_total", 1, map[string]string{
		"method":     r.Method,
		"endpoint":   endpoint,
		"status":     strconv.Itoa(status),
		"error_type": errorType,
	})
}

// RequestMetrics instruments every request with counters, a latency
// histogram, and size gauges. When telemetry is disabled the middleware
// passes requests through untouched.
func RequestMetrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if observability.TelemetrySystem == nil {
			next.ServeHTTP(w, r)
			return
		}

		start := time.Now()
		requestBytes := requestBodySize(r)
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(recorder, r)

		elapsed := time.Since(start)
		endpoint := getEndpointPattern(r)
		emitRequestMetrics(r, endpoint, recorder.status, elapsed, requestBytes, recorder.written)

		// Request ids stay in the log line, never in metric labels.
		if logger := observability.ServerLogger; logger != nil {
			logger.Info("HTTP request completed",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.String("endpoint", endpoint),
				zap.Int("status", recorder.status),
				zap.Duration("duration", elapsed),
				zap.Int64("request_size", requestBytes),
				zap.Int64("response_size", recorder.written),
				zap.String("requestID", GetRequestID(r.Context())),
			)
		}
	})
}
