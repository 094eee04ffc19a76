// Copyright (c) 2017 Intel Corporation
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package campaign

import (
	"time"

	"github.com/intelsdi-x/faultload/pkg/injection"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "faultload"

// Metrics exposes campaign progress. Nil Metrics records nothing.
type Metrics struct {
	Ticks      *prometheus.CounterVec
	Overruns   prometheus.Counter
	Injections *prometheus.CounterVec
	Phase      prometheus.Gauge
	Queue      prometheus.Gauge
	TickWork   prometheus.Histogram
}

// NewMetrics registers campaign metrics in registerer.
func NewMetrics(registerer prometheus.Registerer) *Metrics {
	factory := promauto.With(registerer)
	return &Metrics{
		Ticks: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ticks_total",
			Help:      "Number of captured observations by phase.",
		}, []string{"phase"}),
		Overruns: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tick_overruns_total",
			Help:      "Number of observations which took longer than the tick period.",
		}),
		Injections: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "injections_started_total",
			Help:      "Number of started injections by kind.",
		}, []string{"kind"}),
		Phase: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "injecting",
			Help:      "1 when an injection is active, 0 when resting.",
		}),
		Queue: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "queued_injections",
			Help:      "Number of injections waiting in the queue.",
		}),
		TickWork: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "tick_work_seconds",
			Help:      "Time spent capturing and writing one observation.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10),
		}),
	}
}

func (m *Metrics) observeTick(phase Phase, work time.Duration) {
	if m == nil {
		return
	}
	m.Ticks.WithLabelValues(phase.String()).Inc()
	m.TickWork.Observe(work.Seconds())
}

func (m *Metrics) overrun() {
	if m == nil {
		return
	}
	m.Overruns.Inc()
}

func (m *Metrics) injectionStarted(kind injection.Kind) {
	if m == nil {
		return
	}
	m.Injections.WithLabelValues(kind.String()).Inc()
}

func (m *Metrics) setPhase(phase Phase, queued int) {
	if m == nil {
		return
	}
	if phase == Injecting {
		m.Phase.Set(1)
	} else {
		m.Phase.Set(0)
	}
	m.Queue.Set(float64(queued))
}
