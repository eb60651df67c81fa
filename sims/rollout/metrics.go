// Copyright (c) 2024, The CCNLab Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package rollout

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics are the rollout counters, registered on a caller-provided
// registry so that several runners can coexist in one process
type Metrics struct {
	Steps        prometheus.Counter
	Episodes     *prometheus.CounterVec
	Return       prometheus.Histogram
	EpisodeSteps prometheus.Histogram
	SuccessRate  prometheus.Gauge
	ActiveRuns   prometheus.Gauge
}

// NewMetrics creates and registers the metrics on reg
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		// Steps counts environment steps, each covering every instance
		Steps: f.NewCounter(prometheus.CounterOpts{
			Name: "pegsim_steps_total",
			Help: "Total batched environment steps",
		}),
		Episodes: f.NewCounterVec(prometheus.CounterOpts{
			Name: "pegsim_episodes_total",
			Help: "Total instance episodes by outcome",
		}, []string{"outcome"}),
		Return: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "pegsim_episode_return",
			Help:    "Sum of dense reward over an instance episode",
			Buckets: prometheus.LinearBuckets(0, 50, 12),
		}),
		EpisodeSteps: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "pegsim_episode_steps",
			Help:    "Steps until an instance episode terminated or was truncated",
			Buckets: []float64{10, 20, 30, 40, 50, 60, 80, 100, 150, 200},
		}),
		SuccessRate: f.NewGauge(prometheus.GaugeOpts{
			Name: "pegsim_success_rate",
			Help: "Fraction of logged instance episodes that succeeded",
		}),
		ActiveRuns: f.NewGauge(prometheus.GaugeOpts{
			Name: "pegsim_active_runs",
			Help: "Runs currently stepping",
		}),
	}
}

// Outcome labels
const (
	OutcomeSuccess = "success"
	OutcomeTimeout = "timeout"
)

// ObserveEpisode records one finished instance episode
func (m *Metrics) ObserveEpisode(er *EpisodeRow) {
	out := OutcomeTimeout
	if er.Success {
		out = OutcomeSuccess
	}
	m.Episodes.WithLabelValues(out).Inc()
	m.Return.Observe(float64(er.Return))
	m.EpisodeSteps.Observe(float64(er.Steps))
}
