package metrics

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/push"

	"github.com/clima-cdmx/archivador/pkg/util/logger"
)

// PrometheusRecorder is a Prometheus implementation of the Recorder interface.
// Because an archive run is a short-lived batch process, metrics are pushed to
// a Pushgateway at run end rather than scraped.
type PrometheusRecorder struct {
	registry       *prometheus.Registry
	pushGatewayURL string

	runDurationSeconds *prometheus.HistogramVec
	runStatusCounter   *prometheus.CounterVec

	stepReadCount   *prometheus.CounterVec
	stepWriteCount  *prometheus.CounterVec
	stepCommitCount *prometheus.CounterVec

	operationDurationSeconds *prometheus.HistogramVec
}

// NewPrometheusRecorder creates a PrometheusRecorder.
// pushGatewayURL may be empty, in which case metrics are recorded but never
// pushed (useful when the registry is exposed some other way).
func NewPrometheusRecorder(pushGatewayURL string) *PrometheusRecorder {
	registry := prometheus.NewRegistry()

	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	r := &PrometheusRecorder{
		registry:       registry,
		pushGatewayURL: pushGatewayURL,
		runDurationSeconds: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "archivador_run_duration_seconds",
			Help:    "Duration of archive runs.",
			Buckets: prometheus.DefBuckets,
		}, []string{"job_name", "status"}),
		runStatusCounter: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "archivador_run_status_total",
			Help: "Total number of archive runs by status.",
		}, []string{"job_name", "status"}),
		stepReadCount: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "archivador_step_read_total",
			Help: "Total items read by step.",
		}, []string{"step_name"}),
		stepWriteCount: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "archivador_step_write_total",
			Help: "Total items written by step.",
		}, []string{"step_name"}),
		stepCommitCount: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "archivador_step_commit_total",
			Help: "Total chunk commits by step.",
		}, []string{"step_name"}),
		operationDurationSeconds: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "archivador_operation_duration_seconds",
			Help:    "Duration of named operations such as the archive API call.",
			Buckets: prometheus.DefBuckets,
		}, []string{"operation"}),
	}

	registry.MustRegister(r.runDurationSeconds)
	registry.MustRegister(r.runStatusCounter)
	registry.MustRegister(r.stepReadCount)
	registry.MustRegister(r.stepWriteCount)
	registry.MustRegister(r.stepCommitCount)
	registry.MustRegister(r.operationDurationSeconds)

	return r
}

// GetRegistry returns the Prometheus registry.
func (r *PrometheusRecorder) GetRegistry() *prometheus.Registry {
	return r.registry
}

// RecordRunStart records the start of a run.
func (r *PrometheusRecorder) RecordRunStart(ctx context.Context, execution *RunExecution) {
	logger.Debugf("Metrics: run '%s' started.", execution.RunID)
}

// RecordRunEnd records the end of a run and pushes the registry to the
// Pushgateway when one is configured. Push failures are logged, not returned;
// metrics delivery must not fail an otherwise successful run.
func (r *PrometheusRecorder) RecordRunEnd(ctx context.Context, execution *RunExecution) {
	duration := execution.EndTime.Sub(execution.StartTime).Seconds()
	r.runDurationSeconds.WithLabelValues(execution.JobName, string(execution.Status)).Observe(duration)
	r.runStatusCounter.WithLabelValues(execution.JobName, string(execution.Status)).Inc()
	logger.Debugf("Metrics: run '%s' ended with status %s. Duration: %.3fs", execution.RunID, execution.Status, duration)

	if r.pushGatewayURL == "" {
		return
	}
	pusher := push.New(r.pushGatewayURL, execution.JobName).
		Gatherer(r.registry).
		Grouping("run_id", execution.RunID)
	if err := pusher.AddContext(ctx); err != nil {
		logger.Warnf("Metrics: failed to push to Pushgateway %s: %v", r.pushGatewayURL, err)
	}
}

// RecordItemRead records successful item reads.
func (r *PrometheusRecorder) RecordItemRead(ctx context.Context, stepName string) {
	r.stepReadCount.WithLabelValues(stepName).Inc()
}

// RecordItemProcess records successful item processing.
func (r *PrometheusRecorder) RecordItemProcess(ctx context.Context, stepName string) {
	// Processing sits between read and write; read/write counters cover it.
}

// RecordItemWrite records successful item writes.
func (r *PrometheusRecorder) RecordItemWrite(ctx context.Context, stepName string, count int) {
	r.stepWriteCount.WithLabelValues(stepName).Add(float64(count))
}

// RecordChunkCommit records chunk commits.
func (r *PrometheusRecorder) RecordChunkCommit(ctx context.Context, stepName string, count int) {
	r.stepCommitCount.WithLabelValues(stepName).Inc()
}

// RecordDuration records the execution time of a named operation.
func (r *PrometheusRecorder) RecordDuration(ctx context.Context, name string, duration time.Duration, tags map[string]string) {
	r.operationDurationSeconds.WithLabelValues(name).Observe(duration.Seconds())
}

var _ Recorder = (*PrometheusRecorder)(nil)
