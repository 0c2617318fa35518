package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var HttpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "http_requests_total",
	Help: "Total number of requests labelled by path and status",
}, []string{"path", "status"})

var cacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "query_cache_lookups_total",
	Help: "Query cache lookups labelled by cache (answer/retrieval) and outcome (hit/miss/unavailable)",
}, []string{"cache", "outcome"})

var chunksIngested = promauto.NewCounter(prometheus.CounterOpts{
	Name: "chunks_ingested_total",
	Help: "Number of chunks inserted into session indexes",
})

var ingestJobsInQueue = promauto.NewGauge(prometheus.GaugeOpts{
	Name: "ingest_jobs_in_queue",
	Help: "Number of ingest jobs waiting for a worker",
})

var activeWorkerCount = promauto.NewGauge(prometheus.GaugeOpts{
	Name: "active_worker_count",
	Help: "Number of active ingest workers",
})

var queryRoutes = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "query_routes_total",
	Help: "Answer routing decisions (rag/tools/reasoning)",
}, []string{"route"})

var dispatcherSignals = promauto.NewCounter(prometheus.CounterOpts{
	Name: "dispatcher_signals_total",
	Help: "Signals sent to the dispatcher to scale up the worker pool",
})

type HttpStatusRecorder struct {
	http.ResponseWriter
	Status int
}

func (r *HttpStatusRecorder) CaptureWriteHeaderMetrics(code int) {
	r.Status = code
	r.ResponseWriter.WriteHeader(code)
}

func CaptureCacheLookup(cache string, outcome string) {
	cacheLookups.WithLabelValues(cache, outcome).Inc()
}

func AddChunksIngested(count int) {
	chunksIngested.Add(float64(count))
}

func CaptureRoute(route string) {
	queryRoutes.WithLabelValues(route).Inc()
}

func IncrementJobsInQueue() {
	ingestJobsInQueue.Inc()
}

func DecrementJobsInQueue() {
	ingestJobsInQueue.Dec()
}

func StartDispatcherSignalCount() {
	dispatcherSignals.Inc()
}

func IncrementActiveWorkerCount() {
	activeWorkerCount.Inc()
}

func DecrementActiveWorkerCount() {
	activeWorkerCount.Dec()
}

var requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Name:    "process_query_duration_seconds",
	Help:    "Total time spent answering one query.",
	Buckets: []float64{.1, .5, 1, 2, 5, 10, 30},
}, []string{"status"})

var dependencyLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Name:    "dependency_latency_seconds",
	Help:    "Latency of external service calls.",
	Buckets: []float64{.05, .1, .25, .5, 1, 2, 5, 10},
}, []string{"service"})

var jobDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Name:    "ingest_job_duration_seconds",
	Help:    "Total time spent processing one ingest job.",
	Buckets: []float64{.5, 1, 5, 10, 30, 60, 120},
}, []string{"status"})

func CaptureJobMetrics(label string, timeElapsed time.Duration) {
	jobDuration.WithLabelValues(label).Observe(timeElapsed.Seconds())
}

func CaptureExecutionMetrics(label string, timeElapsed time.Duration) {
	dependencyLatency.WithLabelValues(label).Observe(timeElapsed.Seconds())
}

func CaptureQueryMetrics(label string, timeElapsed time.Duration) {
	requestDuration.WithLabelValues(label).Observe(timeElapsed.Seconds())
}
