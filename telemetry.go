package main

import (
	"context"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	prometheusotel "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

const requestIDHeader = "X-Request-ID"

func withJSONHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		next.ServeHTTP(w, r)
	})
}

type responseRecorder struct {
	http.ResponseWriter
	status int
}

func (r *responseRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

type telemetry struct {
	enabled bool
	logger  *slog.Logger

	registry       *prometheus.Registry
	metricsHandler http.Handler
	meter          metric.Meter

	reqCount atomic.Int64
	errCount atomic.Int64

	httpRequests  metric.Int64Counter
	httpErrors    metric.Int64Counter
	httpLatency   metric.Float64Histogram
	addedDocs     metric.Int64Counter
	rejectedDocs  metric.Int64Counter
	searchOps     metric.Int64Counter
	searchLatency metric.Float64Histogram
	searchHits    metric.Int64Histogram
	matchOps      metric.Int64Counter

	documentGauge prometheus.Gauge
}

func newTelemetry(ctx context.Context, logger *slog.Logger, enabled bool) *telemetry {
	telemetry := &telemetry{enabled: enabled, logger: logger}
	if !enabled {
		return telemetry
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	exporter, err := prometheusotel.New(prometheusotel.WithRegisterer(registry))
	if err != nil {
		logger.Error("failed to initialize prometheus exporter", "error", err)
		telemetry.enabled = false
		return telemetry
	}

	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(exporter))
	otel.SetMeterProvider(provider)
	meter := provider.Meter("searchserver")

	httpReq, _ := meter.Int64Counter("http_requests_total", metric.WithDescription("Total HTTP requests"))
	httpErr, _ := meter.Int64Counter("http_errors_total", metric.WithDescription("HTTP requests that returned an error status"))
	httpLatency, _ := meter.Float64Histogram("http_request_duration_ms", metric.WithDescription("Latency of HTTP requests in milliseconds"), metric.WithUnit("ms"))
	addedDocs, _ := meter.Int64Counter("documents_added_total", metric.WithDescription("Documents accepted by the index"))
	rejectedDocs, _ := meter.Int64Counter("documents_rejected_total", metric.WithDescription("Documents rejected by validation"))
	searchOps, _ := meter.Int64Counter("search_requests_total", metric.WithDescription("Top document searches executed"))
	searchLatency, _ := meter.Float64Histogram("search_latency_ms", metric.WithDescription("Latency of top document searches"), metric.WithUnit("ms"))
	searchHits, _ := meter.Int64Histogram("search_results", metric.WithDescription("Results returned per search"))
	matchOps, _ := meter.Int64Counter("match_requests_total", metric.WithDescription("Document match operations executed"))

	documentGauge := prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "searchserver", Name: "documents", Help: "Documents currently held by the index"})
	registry.MustRegister(documentGauge)

	telemetry.registry = registry
	telemetry.metricsHandler = promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
	telemetry.meter = meter
	telemetry.httpRequests = httpReq
	telemetry.httpErrors = httpErr
	telemetry.httpLatency = httpLatency
	telemetry.addedDocs = addedDocs
	telemetry.rejectedDocs = rejectedDocs
	telemetry.searchOps = searchOps
	telemetry.searchLatency = searchLatency
	telemetry.searchHits = searchHits
	telemetry.matchOps = matchOps
	telemetry.documentGauge = documentGauge

	telemetry.logger.Info("telemetry initialized", "prometheus", true)
	telemetry.httpRequests.Add(ctx, 0) // ensure metric is created eagerly
	return telemetry
}

func (t *telemetry) recordRequest(ctx context.Context, method, path string, status int, duration time.Duration) {
	if !t.enabled {
		return
	}

	attrs := metric.WithAttributes(
		attribute.String("method", method),
		attribute.String("path", path),
		attribute.Int("status", status),
	)
	t.httpRequests.Add(ctx, 1, attrs)
	t.httpLatency.Record(ctx, float64(duration.Milliseconds()), attrs)
	if status >= http.StatusBadRequest {
		t.httpErrors.Add(ctx, 1, attrs)
		t.errCount.Add(1)
	}
	t.reqCount.Add(1)
}

func (t *telemetry) recordAdd(ctx context.Context, status string, ok bool, documents int) {
	if !t.enabled {
		return
	}

	attrs := metric.WithAttributes(attribute.String("status", status))
	if ok {
		t.addedDocs.Add(ctx, 1, attrs)
	} else {
		t.rejectedDocs.Add(ctx, 1, attrs)
	}
	t.documentGauge.Set(float64(documents))
}

func (t *telemetry) recordSearch(ctx context.Context, hits int, duration time.Duration) {
	if !t.enabled {
		return
	}

	t.searchOps.Add(ctx, 1)
	t.searchLatency.Record(ctx, float64(duration.Milliseconds()))
	t.searchHits.Record(ctx, int64(hits))
}

func (t *telemetry) recordMatch(ctx context.Context, matched int) {
	if !t.enabled {
		return
	}

	t.matchOps.Add(ctx, 1, metric.WithAttributes(attribute.Bool("matched", matched > 0)))
}

func (t *telemetry) handleMetrics(w http.ResponseWriter, r *http.Request) {
	if !t.enabled || t.registry == nil {
		respond(w, http.StatusOK, map[string]any{"enabled": false})
		return
	}

	t.metricsHandler.ServeHTTP(w, r)
}

func withTelemetry(next http.Handler, telemetry *telemetry, logRequests bool) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(requestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, requestID)

		recorder := &responseRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()
		next.ServeHTTP(recorder, r)
		duration := time.Since(start)

		if telemetry != nil {
			telemetry.recordRequest(r.Context(), r.Method, r.URL.Path, recorder.status, duration)
		}
		if logRequests && telemetry != nil && telemetry.logger != nil {
			telemetry.logger.Info("request completed", "request_id", requestID, "method", r.Method, "path", r.URL.Path, "status", recorder.status, "duration_ms", duration.Milliseconds())
		}
	})
}
