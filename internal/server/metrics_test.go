package server

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/fulmenhq/gofulmen/telemetry/exporters"
	"github.com/stretchr/testify/require"

	"github.com/worklane/worklane-cli/internal/observability"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) {
	return f(r)
}

// stubExporterResponse swaps the proxy client for one that returns the
// given exporter response without any network traffic.
func stubExporterResponse(t *testing.T, build func() *http.Response) {
	t.Helper()

	original := metricsProxyClient
	t.Cleanup(func() { metricsProxyClient = original })
	metricsProxyClient = &http.Client{
		Transport: roundTripFunc(func(*http.Request) (*http.Response, error) {
			return build(), nil
		}),
	}

	observability.PrometheusExporter = exporters.NewPrometheusExporter("test", ":9090")
	t.Cleanup(func() { observability.PrometheusExporter = nil })
}

func TestMetricsHandlerProxiesExporterOutput(t *testing.T) {
	const scrape = "# HELP worklane_resolve_total Resolutions performed\nworklane_resolve_total 3\n"
	stubExporterResponse(t, func() *http.Response {
		resp := &http.Response{
			StatusCode: http.StatusOK,
			Body:       io.NopCloser(strings.NewReader(scrape)),
			Header:     make(http.Header),
		}
		resp.Header.Set("Content-Type", "text/plain; version=0.0.4")
		resp.Header.Set("X-Scrape-Source", "exporter")
		resp.Header.Set("Transfer-Encoding", "chunked")
		return resp
	})

	rec := httptest.NewRecorder()
	MetricsHandler(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Header().Get("Content-Type"), "text/plain")
	require.Contains(t, rec.Body.String(), "worklane_resolve_total")

	// End-to-end headers pass; hop-by-hop ones must not.
	require.Equal(t, "exporter", rec.Header().Get("X-Scrape-Source"))
	require.Empty(t, rec.Header().Get("Transfer-Encoding"))
}

func TestMetricsHandlerDefaultsContentType(t *testing.T) {
	stubExporterResponse(t, func() *http.Response {
		return &http.Response{
			StatusCode: http.StatusOK,
			Body:       io.NopCloser(strings.NewReader("worklane_up 1\n")),
			Header:     make(http.Header),
		}
	})

	rec := httptest.NewRecorder()
	MetricsHandler(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "text/plain; version=0.0.4", rec.Header().Get("Content-Type"))
}

func TestMetricsHandlerWithoutExporterReturns503(t *testing.T) {
	observability.PrometheusExporter = nil

	rec := httptest.NewRecorder()
	MetricsHandler(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var resp struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.Equal(t, "SERVICE_UNAVAILABLE", resp.Error.Code)
}
