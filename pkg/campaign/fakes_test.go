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
	"sync"
	"time"

	"github.com/intelsdi-x/faultload/pkg/injection"
	"github.com/intelsdi-x/faultload/pkg/telemetry"
	"github.com/pkg/errors"
)

type fakeInjector struct {
	*injection.Base
	name     string
	blocking bool

	mu      sync.Mutex
	started int
	stopped int
	release chan struct{}
}

func newFakeInjector(name string, blocking bool) *fakeInjector {
	return &fakeInjector{
		Base:     injection.NewBase(injection.CPUStress, name, 1000),
		name:     name,
		blocking: blocking,
		release:  make(chan struct{}),
	}
}

func (f *fakeInjector) Name() string {
	return f.name
}

func (f *fakeInjector) Parameters() injection.Record {
	return injection.Record{}
}

func (f *fakeInjector) Start() error {
	f.mu.Lock()
	f.started++
	f.mu.Unlock()
	return f.Launch(f.name, func() {
		if f.blocking {
			<-f.release
		}
	})
}

func (f *fakeInjector) ForceStop() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.stopped == 0 {
		close(f.release)
	}
	f.stopped++
	return nil
}

func (f *fakeInjector) counts() (started, stopped int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.started, f.stopped
}

type fakeSampler struct {
	delay time.Duration
	fail  bool
	count int
}

func (s *fakeSampler) Sample() (telemetry.Sample, error) {
	if s.fail {
		return telemetry.Sample{}, errors.New("sensor unavailable")
	}
	time.Sleep(s.delay)
	s.count++
	sample := telemetry.Sample{Time: time.Now()}
	sample.Add("0user", float64(s.count))
	sample.Add("virtual_percent", 42.5)
	sample.Add(telemetry.TimeField, telemetry.Seconds(sample.Time))
	return sample, nil
}

type memorySink struct {
	id      string
	rows    []Row
	opened  bool
	closed  bool
	openErr error
}

func (m *memorySink) Open(campaignID string) error {
	if m.openErr != nil {
		return m.openErr
	}
	m.id = campaignID
	m.opened = true
	m.rows = nil
	return nil
}

func (m *memorySink) Write(row Row) error {
	m.rows = append(m.rows, row)
	return nil
}

func (m *memorySink) Close() error {
	m.closed = true
	return nil
}

func (m *memorySink) labels() []string {
	var labels []string
	for _, row := range m.rows {
		labels = append(labels, row.Label)
	}
	return labels
}
