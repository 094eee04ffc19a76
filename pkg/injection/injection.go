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

// Package injection defines the resource contention fault abstraction shared
// by the CPU, memory and disk stress variants.
package injection

import (
	"time"

	"github.com/pkg/errors"
)

// ErrAlreadyRunning is returned by Start when the previous run has not ended.
var ErrAlreadyRunning = errors.New("injection is already running")

// Injector is a single stress unit which runs for its nominal duration in the
// background once started.
type Injector interface {
	// Init performs optional pre-setup before the first Start.
	Init() error
	// Start launches the stress body and returns immediately.
	Start() error
	// IsRunning reports whether the stress body is still executing.
	IsRunning() bool
	// ForceStop ends the stress body early on a best effort basis.
	ForceStop() error
	// Intervals returns the wall clock intervals of all completed runs.
	Intervals() []Interval
	// Name returns a deterministic, human readable identity of the injection.
	Name() string
	// IsValid reports whether construction parameters were accepted.
	IsValid() bool
	// Invalid returns the reason the injection is invalid, or nil.
	Invalid() error

	Status() Status
	Kind() Kind
	Tag() string
	Duration() time.Duration
	// Parameters returns the variant specific parameters after defaults and jitter.
	Parameters() Record
	// Wait blocks until the latest run ends. Zero timeout means no timeout.
	// Returns false on timeout.
	Wait(timeout time.Duration) bool
}

// Status is the lifecycle state of an injection.
type Status int

const (
	// Idle means the injection was never started.
	Idle Status = iota
	// Running means the stress body is executing.
	Running
	// Completed means the latest run has ended.
	Completed
)

func (s Status) String() string {
	switch s {
	case Idle:
		return "Idle"
	case Running:
		return "Running"
	case Completed:
		return "Completed"
	}
	return "Unknown"
}

// Interval is the wall clock span of one run in milliseconds since epoch.
type Interval struct {
	StartMs int64
	EndMs   int64
}

// Elapsed returns the length of the interval.
func (i Interval) Elapsed() time.Duration {
	return time.Duration(i.EndMs-i.StartMs) * time.Millisecond
}

// NowMs returns current wall clock time in milliseconds since epoch.
func NowMs() int64 {
	return time.Now().UnixNano() / int64(time.Millisecond)
}
