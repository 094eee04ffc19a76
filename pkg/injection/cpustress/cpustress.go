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

// Package cpustress implements an injection which keeps one or all CPU cores
// at a target utilization using a busy/idle duty cycle.
package cpustress

import (
	"fmt"
	"runtime"

	"github.com/intelsdi-x/faultload/pkg/conf"
	"github.com/intelsdi-x/faultload/pkg/injection"
	"github.com/intelsdi-x/faultload/pkg/utils/random"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

const (
	// FieldTargetLoad is the record field holding target utilization in percent.
	FieldTargetLoad = "target_load"
	// FieldTargetCore is the record field holding the core to stress (-1 for all).
	FieldTargetCore = "target_core"

	// AllCores stresses every available core.
	AllCores = -1
)

// LoadJitterFlag enables random perturbation of the target load.
var LoadJitterFlag = conf.NewBoolFlag("cpu_load_jitter", "Perturb CPU stress target load by a random factor of 0.9, 1.0 or 1.1", true)

// Config holds CPU stress parameters.
type Config struct {
	TargetLoad int
	TargetCore int
}

// DefaultConfig is a constructor for Config with default parameters.
func DefaultConfig() Config {
	return Config{
		TargetLoad: 70,
		TargetCore: AllCores,
	}
}

type cpuStress struct {
	*injection.Base
	config Config
}

// New returns CPU stress injection. Out of range parameters invalidate it.
func New(tag string, durationMs int, config Config) injection.Injector {
	return newCPUStress(injection.NewBase(injection.CPUStress, tag, durationMs), config)
}

// NewFromRecord builds CPU stress injection from record fields. When src is not
// nil the target load is perturbed with random.JitterPercent.
func NewFromRecord(record injection.Record, src random.Source) injection.Injector {
	base := injection.NewBaseFromRecord(injection.CPUStress, record)
	config := DefaultConfig()

	var err error
	config.TargetLoad, err = record.Int(FieldTargetLoad, config.TargetLoad)
	base.Check(err)
	config.TargetCore, err = record.Int(FieldTargetCore, config.TargetCore)
	base.Check(err)

	if src != nil {
		config.TargetLoad = random.JitterPercent(config.TargetLoad, src)
	}
	return newCPUStress(base, config)
}

func newCPUStress(base *injection.Base, config Config) *cpuStress {
	if config.TargetLoad < 0 || config.TargetLoad > 100 {
		base.Invalidate("target_load must be within [0, 100], got %d", config.TargetLoad)
	}
	if config.TargetCore != AllCores && (config.TargetCore < 0 || config.TargetCore >= runtime.NumCPU()) {
		base.Invalidate("target_core must be -1 or within [0, %d), got %d", runtime.NumCPU(), config.TargetCore)
	}
	return &cpuStress{Base: base, config: config}
}

// Name implements injection.Injector.
func (c *cpuStress) Name() string {
	params := fmt.Sprintf("t%d", c.config.TargetLoad)
	if c.config.TargetCore != AllCores {
		params = fmt.Sprintf("%s-c%d", params, c.config.TargetCore)
	}
	return c.FormatName(params)
}

// Parameters implements injection.Injector.
func (c *cpuStress) Parameters() injection.Record {
	return injection.Record{
		FieldTargetLoad: c.config.TargetLoad,
		FieldTargetCore: c.config.TargetCore,
	}
}

// Start implements injection.Injector.
func (c *cpuStress) Start() error {
	return c.Launch(c.Name(), c.run)
}

// ForceStop implements injection.Injector. The duty cycle cannot be interrupted
// and always runs for its full duration.
func (c *cpuStress) ForceStop() error {
	log.Debugf("%s cannot be stopped before its duration elapses", c.Name())
	return nil
}

func (c *cpuStress) run() {
	cores := []int{c.config.TargetCore}
	if c.config.TargetCore == AllCores {
		cores = make([]int, runtime.NumCPU())
		for i := range cores {
			cores[i] = i
		}
	}

	load := float64(c.config.TargetLoad) / 100
	var group errgroup.Group
	for _, core := range cores {
		core := core
		group.Go(func() error {
			return runDutyCycle(core, load, c.Duration())
		})
	}
	if err := group.Wait(); err != nil {
		log.Warnf("%s: %v", c.Name(), err)
	}
}
