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

// Package campaign runs a fault injection campaign: injections from an ordered
// queue interleaved with rest periods, while host telemetry is sampled at a
// fixed cadence and every sample is labeled with the active injection.
package campaign

import (
	"context"
	"time"

	"github.com/intelsdi-x/faultload/pkg/injection"
	"github.com/intelsdi-x/faultload/pkg/telemetry"
	"github.com/intelsdi-x/faultload/pkg/utils/errutil"
	"github.com/intelsdi-x/faultload/pkg/utils/random"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// RestLabel labels samples captured when no injection is active.
const RestLabel = "rest"

// Config holds campaign cadence.
type Config struct {
	// ID identifies the campaign in sinks.
	ID string
	// TickPeriod is the target time between two samples.
	TickPeriod time.Duration
	// ObservationsPerInjection is the number of samples labeled with each injection.
	ObservationsPerInjection int
	// ObservationsBetweenInjections is the nominal number of rest samples
	// before each injection, perturbed by random.RestMultipliers.
	ObservationsBetweenInjections int
}

// InjectionDurationMs returns the injection duration covering all its observations.
func (c Config) InjectionDurationMs() int {
	return c.ObservationsPerInjection * int(c.TickPeriod/time.Millisecond)
}

func (c Config) validate() error {
	if c.TickPeriod <= 0 {
		return errors.Errorf("tick period must be positive, got %s", c.TickPeriod)
	}
	if c.ObservationsPerInjection <= 0 {
		return errors.Errorf("observations per injection must be positive, got %d", c.ObservationsPerInjection)
	}
	if c.ObservationsBetweenInjections < 0 {
		return errors.Errorf("observations between injections cannot be negative, got %d", c.ObservationsBetweenInjections)
	}
	return nil
}

// Campaign sequences injections against a telemetry sampler. It is not safe
// for concurrent use and runs once.
type Campaign struct {
	config  Config
	sampler telemetry.Sampler
	sink    Sink
	rand    random.Source
	metrics *Metrics

	onInjection func(injection.Injector)

	queue     []injection.Injector
	phase     Phase
	active    injection.Injector
	remaining int
	started   []injection.Injector

	workTimes []float64
	overruns  int
}

// New is a constructor of Campaign. Queue order is the injection order.
func New(config Config, queue []injection.Injector, sampler telemetry.Sampler, sink Sink, src random.Source) (*Campaign, error) {
	if err := config.validate(); err != nil {
		return nil, err
	}

	return &Campaign{
		config:  config,
		sampler: sampler,
		sink:    sink,
		rand:    src,
		queue:   append([]injection.Injector{}, queue...),
		phase:   Resting,
	}, nil
}

// WithMetrics enables prometheus metrics of the campaign.
func (c *Campaign) WithMetrics(metrics *Metrics) *Campaign {
	c.metrics = metrics
	return c
}

// OnInjection registers fn called after every injection start.
func (c *Campaign) OnInjection(fn func(injection.Injector)) *Campaign {
	c.onInjection = fn
	return c
}

// Phase returns current phase.
func (c *Campaign) Phase() Phase {
	return c.phase
}

// Started returns injections started so far in start order.
func (c *Campaign) Started() []injection.Injector {
	return append([]injection.Injector{}, c.started...)
}

// AwaitStarted waits up to timeout for every started injection to finish.
// It returns false when some injection is still running at the deadline.
func (c *Campaign) AwaitStarted(timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)
	finished := true
	for _, inj := range c.started {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			remaining = time.Nanosecond
		}
		if !inj.Wait(remaining) {
			log.Warnf("Injection %s still running after %s", inj.Name(), timeout)
			finished = false
		}
	}
	return finished
}

// Run samples telemetry until the last injection has been observed. Started
// injections are not awaited. When ctx is done every started injection is
// force stopped and ctx error is returned.
func (c *Campaign) Run(ctx context.Context) (err error) {
	if err := c.sink.Open(c.config.ID); err != nil {
		return errors.Wrap(err, "cannot open sink")
	}
	defer func() {
		closeErr := c.sink.Close()
		if err == nil && closeErr != nil {
			err = errors.Wrap(closeErr, "cannot close sink")
		}
	}()

	log.Infof("Campaign %q started: %d injections, tick %s", c.config.ID, len(c.queue), c.config.TickPeriod)

	if !c.rest() {
		log.Info("No injections to run")
		return nil
	}

	for {
		if c.remaining <= 0 {
			switch c.phase {
			case Resting:
				c.inject()
			case Injecting:
				if !c.rest() {
					log.Infof("Campaign %q finished", c.config.ID)
					return nil
				}
				continue
			}
		}

		if err := c.tick(ctx); err != nil {
			if ctx.Err() != nil {
				log.Warnf("Campaign %q interrupted: %v", c.config.ID, ctx.Err())
				c.stopStarted()
				return ctx.Err()
			}
			c.stopStarted()
			return err
		}
		c.remaining--
	}
}

// rest drops the active injection and enters rest phase. Returns false when
// there is nothing left to inject.
func (c *Campaign) rest() bool {
	if c.active != nil {
		log.Infof("Ending injection %s", c.active.Name())
		c.active = nil
	}
	c.phase = Resting
	c.metrics.setPhase(Resting, len(c.queue))
	if len(c.queue) == 0 {
		return false
	}

	c.remaining = random.JitterCount(c.config.ObservationsBetweenInjections, c.rand)
	log.Debugf("Resting for %d observations", c.remaining)
	return true
}

// inject starts the head of the queue and enters injecting phase. Start
// errors are logged and the samples are still labeled with the injection.
func (c *Campaign) inject() {
	next := c.queue[0]
	c.queue = c.queue[1:]

	c.active = next
	c.phase = Injecting
	c.remaining = c.config.ObservationsPerInjection
	c.started = append(c.started, next)

	log.Infof("Injecting %s | remaining: %d", next.Name(), len(c.queue))
	if err := next.Start(); err != nil {
		log.Errorf("Cannot start injection %s: %v", next.Name(), err)
	}
	c.metrics.injectionStarted(next.Kind())
	c.metrics.setPhase(Injecting, len(c.queue))
	if c.onInjection != nil {
		c.onInjection(next)
	}
}

// label returns the label of the current tick.
func (c *Campaign) label() string {
	if c.active == nil {
		return RestLabel
	}
	return c.active.Name()
}

// tick captures, labels and writes one sample and sleeps for the rest of the
// tick period.
func (c *Campaign) tick(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	start := time.Now()
	sample, err := c.sampler.Sample()
	if err != nil {
		return errors.Wrap(err, "cannot capture telemetry")
	}

	label := c.label()
	if err := c.sink.Write(Row{Sample: sample, Label: label}); err != nil {
		return errors.Wrap(err, "cannot write observation")
	}

	work := time.Since(start)
	c.workTimes = append(c.workTimes, work.Seconds())
	c.metrics.observeTick(c.phase, work)

	if work >= c.config.TickPeriod {
		c.overruns++
		c.metrics.overrun()
		log.Warnf("[%s] Tick took too long: %s over %s", label, work-c.config.TickPeriod, c.config.TickPeriod)
		return nil
	}

	timer := time.NewTimer(c.config.TickPeriod - work)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *Campaign) stopStarted() {
	for _, inj := range c.started {
		if inj.IsRunning() {
			log.Infof("Stopping injection %s", inj.Name())
			errutil.Warn(inj.ForceStop(), "cannot stop injection "+inj.Name())
		}
	}
}
