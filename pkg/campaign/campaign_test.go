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
	"context"
	"testing"
	"time"

	"github.com/intelsdi-x/faultload/pkg/injection"
	"github.com/intelsdi-x/faultload/pkg/utils/random"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	. "github.com/smartystreets/goconvey/convey"
)

func testConfig() Config {
	return Config{
		ID:                            "test",
		TickPeriod:                    time.Millisecond,
		ObservationsPerInjection:      3,
		ObservationsBetweenInjections: 2,
	}
}

func TestCampaign(t *testing.T) {
	Convey("When running a campaign of two injections", t, func() {
		first := newFakeInjector("inj1", false)
		second := newFakeInjector("inj2", false)
		sink := &memorySink{}
		registry := prometheus.NewRegistry()
		metrics := NewMetrics(registry)

		c, err := New(testConfig(), []injection.Injector{first, second}, &fakeSampler{}, sink, random.Fixed(2))
		So(err, ShouldBeNil)
		c.WithMetrics(metrics)
		var notified []string
		c.OnInjection(func(inj injection.Injector) { notified = append(notified, inj.Name()) })

		So(c.Run(context.Background()), ShouldBeNil)

		Convey("Samples are labeled with rest and injection phases in order", func() {
			So(sink.labels(), ShouldResemble, []string{
				"rest", "rest", "inj1", "inj1", "inj1",
				"rest", "rest", "inj2", "inj2", "inj2",
			})
		})

		Convey("Every injection is started exactly once in queue order", func() {
			started, _ := first.counts()
			So(started, ShouldEqual, 1)
			started, _ = second.counts()
			So(started, ShouldEqual, 1)
			So(c.Started(), ShouldResemble, []injection.Injector{first, second})
			So(notified, ShouldResemble, []string{"inj1", "inj2"})
		})

		Convey("Sink is opened with campaign id and closed", func() {
			So(sink.opened, ShouldBeTrue)
			So(sink.closed, ShouldBeTrue)
			So(sink.id, ShouldEqual, "test")
		})

		Convey("Campaign ends resting", func() {
			So(c.Phase(), ShouldEqual, Resting)
		})

		Convey("Metrics reflect the run", func() {
			So(testutil.ToFloat64(metrics.Ticks.WithLabelValues("resting")), ShouldEqual, 4)
			So(testutil.ToFloat64(metrics.Ticks.WithLabelValues("injecting")), ShouldEqual, 6)
			So(testutil.ToFloat64(metrics.Injections.WithLabelValues("CPUStressInjection")), ShouldEqual, 2)
			So(testutil.ToFloat64(metrics.Phase), ShouldEqual, 0)
			So(testutil.ToFloat64(metrics.Queue), ShouldEqual, 0)
		})

		Convey("Pacing summary counts every tick", func() {
			summary, err := c.Summary(decimal.New(99, 0))
			So(err, ShouldBeNil)
			So(summary.Ticks, ShouldEqual, 10)
			So(summary.Max, ShouldBeGreaterThanOrEqualTo, summary.Mean)

			_, err = c.Summary(decimal.New(101, 0))
			So(err, ShouldNotBeNil)
		})
	})

	Convey("When rest length is perturbed", t, func() {
		sink := &memorySink{}
		c, err := New(testConfig(), []injection.Injector{newFakeInjector("inj", false)}, &fakeSampler{}, sink, random.Fixed(3))
		So(err, ShouldBeNil)
		So(c.Run(context.Background()), ShouldBeNil)

		Convey("Initial rest is rounded up", func() {
			So(sink.labels(), ShouldResemble, []string{"rest", "rest", "rest", "inj", "inj", "inj"})
		})
	})

	Convey("When the queue is empty", t, func() {
		sink := &memorySink{}
		c, err := New(testConfig(), nil, &fakeSampler{}, sink, random.Fixed(2))
		So(err, ShouldBeNil)

		Convey("Campaign ends without observations", func() {
			So(c.Run(context.Background()), ShouldBeNil)
			So(sink.rows, ShouldBeEmpty)
			So(sink.closed, ShouldBeTrue)
		})
	})

	Convey("When injections outlive the campaign", t, func() {
		inj := newFakeInjector("slow", true)
		config := testConfig()
		config.ObservationsBetweenInjections = 0
		c, err := New(config, []injection.Injector{inj}, &fakeSampler{}, &memorySink{}, random.Fixed(2))
		So(err, ShouldBeNil)
		So(c.Run(context.Background()), ShouldBeNil)
		So(inj.IsRunning(), ShouldBeTrue)

		Convey("Awaiting started injections times out while they run", func() {
			So(c.AwaitStarted(20*time.Millisecond), ShouldBeFalse)
		})

		Convey("Awaiting started injections returns once they finish", func() {
			go func() {
				time.Sleep(20 * time.Millisecond)
				inj.ForceStop()
			}()
			So(c.AwaitStarted(5*time.Second), ShouldBeTrue)
			So(inj.Status(), ShouldEqual, injection.Completed)
		})
	})

	Convey("When the campaign is interrupted", t, func() {
		inj := newFakeInjector("long", true)
		config := testConfig()
		config.ObservationsPerInjection = 100000
		config.ObservationsBetweenInjections = 0
		sink := &memorySink{}

		c, err := New(config, []injection.Injector{inj}, &fakeSampler{}, sink, random.Fixed(2))
		So(err, ShouldBeNil)

		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()
		err = c.Run(ctx)

		Convey("Context error is returned and started injections are stopped", func() {
			So(err, ShouldEqual, context.DeadlineExceeded)
			_, stopped := inj.counts()
			So(stopped, ShouldEqual, 1)
			So(inj.Wait(time.Second), ShouldBeTrue)
			So(sink.closed, ShouldBeTrue)
		})
	})

	Convey("When ticks overrun the period", t, func() {
		sink := &memorySink{}
		registry := prometheus.NewRegistry()
		metrics := NewMetrics(registry)
		c, err := New(testConfig(), []injection.Injector{newFakeInjector("inj", false)}, &fakeSampler{delay: 3 * time.Millisecond}, sink, random.Fixed(2))
		So(err, ShouldBeNil)
		c.WithMetrics(metrics)

		Convey("Every observation is still captured", func() {
			So(c.Run(context.Background()), ShouldBeNil)
			So(sink.rows, ShouldHaveLength, 5)
			So(testutil.ToFloat64(metrics.Overruns), ShouldEqual, 5)
		})
	})

	Convey("When sampling fails", t, func() {
		sink := &memorySink{}
		c, err := New(testConfig(), []injection.Injector{newFakeInjector("inj", false)}, &fakeSampler{fail: true}, sink, random.Fixed(2))
		So(err, ShouldBeNil)

		Convey("Campaign returns the error", func() {
			err := c.Run(context.Background())
			So(err, ShouldNotBeNil)
			So(err.Error(), ShouldContainSubstring, "sensor unavailable")
			So(sink.closed, ShouldBeTrue)
		})
	})

	Convey("Invalid configuration is rejected", t, func() {
		for _, config := range []Config{
			{TickPeriod: 0, ObservationsPerInjection: 1},
			{TickPeriod: time.Second, ObservationsPerInjection: 0},
			{TickPeriod: time.Second, ObservationsPerInjection: 1, ObservationsBetweenInjections: -1},
		} {
			_, err := New(config, nil, &fakeSampler{}, &memorySink{}, random.Fixed(0))
			So(err, ShouldNotBeNil)
		}
	})

	Convey("Injection duration covers its observations", t, func() {
		config := Config{TickPeriod: 500 * time.Millisecond, ObservationsPerInjection: 80}
		So(config.InjectionDurationMs(), ShouldEqual, 40000)
	})
}
