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

package injection

import (
	"fmt"
	"sync"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// Base carries the state shared by every variant: identity, validity,
// lifecycle status and the interval log. Variants embed *Base and provide
// Start, ForceStop, Name and Parameters.
type Base struct {
	kind       Kind
	tag        string
	durationMs int
	invalid    error

	mu        sync.Mutex
	status    Status
	intervals []Interval
	done      chan struct{}
}

// NewBase returns Base for given identity. Non positive durations invalidate it.
func NewBase(kind Kind, tag string, durationMs int) *Base {
	b := &Base{
		kind:       kind,
		tag:        tag,
		durationMs: durationMs,
	}
	if durationMs <= 0 {
		b.Invalidate("duration_ms must be positive, got %d", durationMs)
	}
	return b
}

// NewBaseFromRecord reads tag and duration_ms from record.
func NewBaseFromRecord(kind Kind, record Record) *Base {
	tag, tagErr := record.String(FieldTag, "")
	durationMs, durationErr := record.Int(FieldDuration, DefaultDurationMs)
	b := NewBase(kind, tag, durationMs)
	b.Check(tagErr)
	b.Check(durationErr)
	return b
}

// Invalidate marks the injection invalid. Only the first reason is kept.
func (b *Base) Invalidate(format string, args ...interface{}) {
	b.Check(errors.Errorf(format, args...))
}

// Check invalidates the injection if err is not nil.
func (b *Base) Check(err error) {
	if err != nil && b.invalid == nil {
		b.invalid = err
	}
}

// Init is a no-op.
func (b *Base) Init() error {
	return nil
}

// IsValid implements Injector.
func (b *Base) IsValid() bool {
	return b.invalid == nil
}

// Invalid implements Injector.
func (b *Base) Invalid() error {
	return b.invalid
}

// Kind implements Injector.
func (b *Base) Kind() Kind {
	return b.kind
}

// Tag implements Injector.
func (b *Base) Tag() string {
	return b.tag
}

// DurationMs returns nominal duration in milliseconds.
func (b *Base) DurationMs() int {
	return b.durationMs
}

// Duration implements Injector.
func (b *Base) Duration() time.Duration {
	return time.Duration(b.durationMs) * time.Millisecond
}

// FormatName builds the display name from variant specific parameters.
func (b *Base) FormatName(params string) string {
	return fmt.Sprintf("[%s]%s(d%d-%s)", b.tag, b.kind, b.durationMs, params)
}

// Status implements Injector.
func (b *Base) Status() Status {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.status
}

// IsRunning implements Injector.
func (b *Base) IsRunning() bool {
	return b.Status() == Running
}

// Intervals implements Injector.
func (b *Base) Intervals() []Interval {
	b.mu.Lock()
	defer b.mu.Unlock()
	intervals := make([]Interval, len(b.intervals))
	copy(intervals, b.intervals)
	return intervals
}

// Launch moves the injection to Running and executes body in a new goroutine.
// The interval is recorded and status set to Completed when body returns.
// A panic in body is logged and ends only this run.
func (b *Base) Launch(name string, body func()) error {
	return b.LaunchPrepared(name, nil, body)
}

// LaunchPrepared is Launch with prepare run before body is started. prepare
// is called only when the injection is allowed to start and never
// concurrently with another start of the same injection.
func (b *Base) LaunchPrepared(name string, prepare func(), body func()) error {
	if b.invalid != nil {
		return errors.Wrapf(b.invalid, "cannot start invalid injection %s", name)
	}

	b.mu.Lock()
	if b.status == Running {
		b.mu.Unlock()
		return errors.Wrap(ErrAlreadyRunning, name)
	}
	if prepare != nil {
		prepare()
	}
	b.status = Running
	done := make(chan struct{})
	b.done = done
	b.mu.Unlock()

	go func() {
		startMs := NowMs()
		defer func() {
			if r := recover(); r != nil {
				log.Errorf("Injection %s failed: %v", name, r)
			}
			b.mu.Lock()
			b.intervals = append(b.intervals, Interval{StartMs: startMs, EndMs: NowMs()})
			b.status = Completed
			b.mu.Unlock()
			close(done)
			log.Debugf("Injection %s completed", name)
		}()
		body()
	}()

	return nil
}

// Wait implements Injector. An injection which was never started is not waited for.
func (b *Base) Wait(timeout time.Duration) bool {
	b.mu.Lock()
	done := b.done
	b.mu.Unlock()

	if done == nil {
		return true
	}

	if timeout == 0 {
		<-done
		return true
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case <-done:
		return true
	case <-timer.C:
		return false
	}
}
