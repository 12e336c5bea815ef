package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics contains the Prometheus instruments for the translation server.
type Metrics struct {
	// Inbound audio
	ChunksReceived prometheus.Counter
	ChunksMirrored prometheus.Counter

	// Pipeline
	PipelineRuns     prometheus.Counter
	PipelineFailures prometheus.Counter
	EmptyResults     prometheus.Counter
	PipelineDuration prometheus.Histogram

	// Dispatch
	TranslationsBroadcast prometheus.Counter
	BroadcastErrors       prometheus.Counter

	// Registry
	ActiveRooms        prometheus.Gauge
	ActiveParticipants prometheus.Gauge
}

// New creates and registers all instruments against the given registerer.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		ChunksReceived: factory.NewCounter(prometheus.CounterOpts{
			Name: "translator_chunks_received_total",
			Help: "Total number of binary audio chunks received",
		}),
		ChunksMirrored: factory.NewCounter(prometheus.CounterOpts{
			Name: "translator_chunks_mirrored_total",
			Help: "Total number of chunks echoed back in mirror mode",
		}),
		PipelineRuns: factory.NewCounter(prometheus.CounterOpts{
			Name: "translator_pipeline_runs_total",
			Help: "Total number of translation pipeline invocations",
		}),
		PipelineFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "translator_pipeline_failures_total",
			Help: "Total number of pipeline invocations aborted by a collaborator failure",
		}),
		EmptyResults: factory.NewCounter(prometheus.CounterOpts{
			Name: "translator_pipeline_empty_results_total",
			Help: "Total number of pipeline invocations that produced no usable speech",
		}),
		PipelineDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "translator_pipeline_duration_seconds",
			Help:    "Duration of translation pipeline invocations",
			Buckets: prometheus.DefBuckets,
		}),
		TranslationsBroadcast: factory.NewCounter(prometheus.CounterOpts{
			Name: "translator_translations_broadcast_total",
			Help: "Total number of translation results dispatched to a room",
		}),
		BroadcastErrors: factory.NewCounter(prometheus.CounterOpts{
			Name: "translator_broadcast_errors_total",
			Help: "Total number of per-connection delivery failures during broadcasts",
		}),
		ActiveRooms: factory.NewGauge(prometheus.GaugeOpts{
			Name: "translator_active_rooms",
			Help: "Number of rooms with at least one participant",
		}),
		ActiveParticipants: factory.NewGauge(prometheus.GaugeOpts{
			Name: "translator_active_participants",
			Help: "Number of connected participants across all rooms",
		}),
	}
}
