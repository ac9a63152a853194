// SPDX-License-Identifier: EPL-2.0

// Package metrics exposes Prometheus collectors for the augmentation
// pipeline and the shard streams feeding it. A nil *Metrics is valid and
// records nothing.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "audperturb"

// Metrics contains all collectors of one pipeline.
type Metrics struct {
	// Augmentation stages
	StagesApplied *prometheus.CounterVec
	StagesSkipped *prometheus.CounterVec
	StageDuration *prometheus.HistogramVec
	StageErrors   *prometheus.CounterVec
	UnknownKinds  *prometheus.CounterVec

	// Shard streams
	RecordsRead     prometheus.Counter
	RecordsFiltered prometheus.Counter
	PassRestarts    prometheus.Counter
	ShardErrors     prometheus.Counter

	// Noise cache
	NoiseCacheSize   prometheus.Gauge
	SilentCandidates prometheus.Counter
}

// New creates the collectors and registers them on reg. A nil reg uses
// prometheus.DefaultRegisterer.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Metrics{
		StagesApplied: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stages_applied_total",
			Help:      "Number of perturbation stages applied, by kind",
		}, []string{"kind"}),
		StagesSkipped: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stages_skipped_total",
			Help:      "Number of perturbation stages skipped by their probability draw, by kind",
		}, []string{"kind"}),
		StageDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "stage_duration_seconds",
			Help:      "Time spent applying one perturbation stage",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 2, 14), // 0.1ms to ~1.6s
		}, []string{"kind"}),
		StageErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stage_errors_total",
			Help:      "Number of perturbation stages that failed, by kind",
		}, []string{"kind"}),
		UnknownKinds: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "unknown_kinds_total",
			Help:      "Configuration entries skipped because their kind is not registered",
		}, []string{"kind"}),

		RecordsRead: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stream_records_read_total",
			Help:      "Audio records read from shard archives",
		}),
		RecordsFiltered: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stream_records_filtered_total",
			Help:      "Audio records dropped because their file id is not in the manifest",
		}),
		PassRestarts: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stream_pass_restarts_total",
			Help:      "Times a shard stream wrapped around to a new pass",
		}),
		ShardErrors: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stream_shard_errors_total",
			Help:      "Shard open or read failures",
		}),

		NoiseCacheSize: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "noise_cache_segments",
			Help:      "Segments held by streamed noise caches",
		}),
		SilentCandidates: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "noise_silent_candidates_total",
			Help:      "Cached noise segments whose RMS is -Inf dB",
		}),
	}
}

func (m *Metrics) StageApplied(kind string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.StagesApplied.WithLabelValues(kind).Inc()
	m.StageDuration.WithLabelValues(kind).Observe(elapsed.Seconds())
}

func (m *Metrics) StageSkipped(kind string) {
	if m == nil {
		return
	}
	m.StagesSkipped.WithLabelValues(kind).Inc()
}

func (m *Metrics) StageFailed(kind string) {
	if m == nil {
		return
	}
	m.StageErrors.WithLabelValues(kind).Inc()
}

func (m *Metrics) UnknownKind(kind string) {
	if m == nil {
		return
	}
	m.UnknownKinds.WithLabelValues(kind).Inc()
}

func (m *Metrics) RecordRead() {
	if m == nil {
		return
	}
	m.RecordsRead.Inc()
}

func (m *Metrics) RecordFiltered() {
	if m == nil {
		return
	}
	m.RecordsFiltered.Inc()
}

func (m *Metrics) PassRestarted() {
	if m == nil {
		return
	}
	m.PassRestarts.Inc()
}

func (m *Metrics) ShardFailed() {
	if m == nil {
		return
	}
	m.ShardErrors.Inc()
}

// NoiseCached adds n segments to the cache gauge, silent of which have
// no energy.
func (m *Metrics) NoiseCached(n, silent int) {
	if m == nil {
		return
	}
	m.NoiseCacheSize.Add(float64(n))
	m.SilentCandidates.Add(float64(silent))
}
