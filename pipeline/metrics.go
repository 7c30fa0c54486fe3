// SPDX-License-Identifier: EPL-2.0

package pipeline

import (
	"context"
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/ik5/audpipe/chunk"
	"github.com/ik5/audpipe/decode"
	"github.com/ik5/audpipe/encoder"
	"github.com/ik5/audpipe/media"
)

// Metrics contains the Prometheus collectors of a Pipeline.
type Metrics struct {
	JobsStarted   prometheus.Counter
	JobsCompleted *prometheus.CounterVec // by outcome
	JobsFailed    *prometheus.CounterVec // by reason
	JobsInFlight  prometheus.Gauge

	StageDuration *prometheus.HistogramVec
	EncodedBytes  prometheus.Histogram
	PartsProduced prometheus.Counter
}

// NewMetrics creates the collectors and registers them with reg. A nil reg
// leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		JobsStarted: factory.NewCounter(prometheus.CounterOpts{
			Name: "audpipe_jobs_started_total",
			Help: "Total number of conversion jobs started",
		}),
		JobsCompleted: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "audpipe_jobs_completed_total",
			Help: "Total number of jobs completed, by outcome",
		}, []string{"outcome"}),
		JobsFailed: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "audpipe_jobs_failed_total",
			Help: "Total number of failed jobs, by reason",
		}, []string{"reason"}),
		JobsInFlight: factory.NewGauge(prometheus.GaugeOpts{
			Name: "audpipe_jobs_in_flight",
			Help: "Current number of running jobs",
		}),
		StageDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "audpipe_stage_duration_seconds",
			Help:    "Time spent in each pipeline stage",
			Buckets: prometheus.ExponentialBuckets(0.005, 4, 8),
		}, []string{"stage"}),
		EncodedBytes: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "audpipe_encoded_bytes",
			Help:    "Size of encoded MP3 output",
			Buckets: prometheus.ExponentialBuckets(64*1024, 4, 8),
		}),
		PartsProduced: factory.NewCounter(prometheus.CounterOpts{
			Name: "audpipe_parts_produced_total",
			Help: "Total number of chunk parts produced",
		}),
	}
}

// Outcomes of completed jobs.
const (
	outcomePassThrough = "passthrough"
	outcomeConverted   = "converted"
	outcomeSplit       = "split"
)

// failureReason maps an error to a low-cardinality label.
func failureReason(err error) string {
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	case errors.Is(err, media.ErrUnsupportedFormat):
		return "unsupported_format"
	case errors.Is(err, ErrCategoryMismatch):
		return "category_mismatch"
	case errors.Is(err, chunk.ErrEmptyPayload):
		return "empty_payload"
	case errors.Is(err, decode.ErrDecode):
		return "decode"
	case errors.Is(err, encoder.ErrEncode):
		return "encode"
	default:
		return "other"
	}
}
