package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// PipelineJobMetrics records metadata for pipeline jobs.
type PipelineJobMetrics struct {
	duration    *prometheus.HistogramVec
	success     *prometheus.CounterVec
	failure     *prometheus.CounterVec
	rowsSkipped *prometheus.CounterVec
}

// NewPipelineJobMetrics registers the pipeline job metrics on the provided registerer.
func NewPipelineJobMetrics(reg prometheus.Registerer) *PipelineJobMetrics {
	if reg == nil {
		return &PipelineJobMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "pipeline_job_duration_seconds",
		Help:    "Duration of pipeline jobs in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"job"})
	success := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "pipeline_job_success",
		Help: "Successful pipeline job executions.",
	}, []string{"job"})
	failure := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "pipeline_job_failure",
		Help: "Failed pipeline job executions.",
	}, []string{"job"})
	rowsSkipped := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "pipeline_rows_skipped",
		Help: "Raw records skipped during normalization.",
	}, []string{"entity"})
	reg.MustRegister(duration, success, failure, rowsSkipped)
	return &PipelineJobMetrics{
		duration:    duration,
		success:     success,
		failure:     failure,
		rowsSkipped: rowsSkipped,
	}
}

// ObserveDuration records the duration for the named job.
func (p *PipelineJobMetrics) ObserveDuration(job string, duration time.Duration) {
	if p == nil || p.duration == nil {
		return
	}
	p.duration.WithLabelValues(normalizeLabel(job)).Observe(duration.Seconds())
}

// IncSuccess increments the success counter for the named job.
func (p *PipelineJobMetrics) IncSuccess(job string) {
	if p == nil || p.success == nil {
		return
	}
	p.success.WithLabelValues(normalizeLabel(job)).Inc()
}

// IncFailure increments the failure counter for the named job.
func (p *PipelineJobMetrics) IncFailure(job string) {
	if p == nil || p.failure == nil {
		return
	}
	p.failure.WithLabelValues(normalizeLabel(job)).Inc()
}

// AddRowsSkipped counts raw records skipped for the given entity.
func (p *PipelineJobMetrics) AddRowsSkipped(entity string, n int) {
	if p == nil || p.rowsSkipped == nil || n <= 0 {
		return
	}
	p.rowsSkipped.WithLabelValues(normalizeLabel(entity)).Add(float64(n))
}

func normalizeLabel(label string) string {
	if label == "" {
		return "unknown"
	}
	return label
}
