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

// Package memorystress implements an injection which keeps allocating and
// retaining memory blocks until its duration elapses.
package memorystress

import (
	"fmt"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/intelsdi-x/faultload/pkg/conf"
	"github.com/intelsdi-x/faultload/pkg/injection"
	log "github.com/sirupsen/logrus"
)

const (
	// FieldItemsForLoop is the record field holding the number of items allocated per step.
	FieldItemsForLoop = "items_for_loop"

	sentinel int64 = 999
)

// PauseFlag is the pause between allocation steps.
var PauseFlag = conf.NewDurationFlag("memory_stress_pause", "Pause between memory stress allocation steps", time.Millisecond)

// Config holds memory stress parameters.
type Config struct {
	ItemsForLoop int
	Pause        time.Duration
}

// DefaultConfig is a constructor for Config with default parameters.
func DefaultConfig() Config {
	return Config{
		ItemsForLoop: 1234567,
		Pause:        PauseFlag.Value(),
	}
}

type memoryStress struct {
	*injection.Base
	config Config
	stop   int32
}

// New returns memory stress injection. Non positive item count invalidates it.
func New(tag string, durationMs int, config Config) injection.Injector {
	return newMemoryStress(injection.NewBase(injection.MemoryStress, tag, durationMs), config)
}

// NewFromRecord builds memory stress injection from record fields.
func NewFromRecord(record injection.Record) injection.Injector {
	base := injection.NewBaseFromRecord(injection.MemoryStress, record)
	config := DefaultConfig()

	var err error
	config.ItemsForLoop, err = record.Int(FieldItemsForLoop, config.ItemsForLoop)
	base.Check(err)
	return newMemoryStress(base, config)
}

func newMemoryStress(base *injection.Base, config Config) *memoryStress {
	if config.ItemsForLoop <= 0 {
		base.Invalidate("items_for_loop must be positive, got %d", config.ItemsForLoop)
	}
	return &memoryStress{Base: base, config: config}
}

// Name implements injection.Injector.
func (m *memoryStress) Name() string {
	return m.FormatName(fmt.Sprintf("i%d", m.config.ItemsForLoop))
}

// Parameters implements injection.Injector.
func (m *memoryStress) Parameters() injection.Record {
	return injection.Record{FieldItemsForLoop: m.config.ItemsForLoop}
}

// Start implements injection.Injector.
func (m *memoryStress) Start() error {
	return m.LaunchPrepared(m.Name(), func() { atomic.StoreInt32(&m.stop, 0) }, m.run)
}

// ForceStop implements injection.Injector. The allocation loop observes the
// request after its current step.
func (m *memoryStress) ForceStop() error {
	atomic.StoreInt32(&m.stop, 1)
	return nil
}

func (m *memoryStress) run() {
	start := time.Now()
	var blocks [][]int64
	for {
		block := make([]int64, m.config.ItemsForLoop)
		for i := range block {
			block[i] = sentinel
		}
		blocks = append(blocks, block)

		if time.Since(start) > m.Duration() || atomic.LoadInt32(&m.stop) == 1 {
			break
		}
		time.Sleep(m.config.Pause)
	}

	log.Debugf("%s retained %d blocks", m.Name(), len(blocks))
	runtime.KeepAlive(blocks)
}
