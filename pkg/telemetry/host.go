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

package telemetry

import (
	"fmt"
	"time"

	"github.com/pkg/errors"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
	log "github.com/sirupsen/logrus"
)

const (
	timesWindow = 5 * time.Millisecond
	loadWindow  = 50 * time.Millisecond
)

// cpuTimeFields are per core time categories in output order.
var cpuTimeFields = []string{"user", "nice", "system", "idle", "iowait", "irq", "softirq", "steal", "guest", "guest_nice"}

// frequencyFields are per core frequency fields in output order.
var frequencyFields = []string{"current", "min", "max"}

// memoryFields are aggregate virtual memory fields in output order.
var memoryFields = []string{"total", "available", "percent", "used", "free", "active", "inactive", "buffers", "cached", "shared", "slab"}

// HostSampler samples the local host with gopsutil and sysfs.
type HostSampler struct {
	cores     int
	frequency frequencyReader
	now       func() time.Time
}

// NewHostSampler is a constructor for HostSampler. The core count is fixed
// for the lifetime of the sampler.
func NewHostSampler() (*HostSampler, error) {
	cores, err := cpu.Counts(true)
	if err != nil {
		return nil, errors.Wrap(err, "cannot count logical cores")
	}
	if cores <= 0 {
		return nil, errors.Errorf("invalid number of logical cores: %d", cores)
	}

	return &HostSampler{
		cores:     cores,
		frequency: newSysfsFrequencyReader(sysfsCPUPath, cores),
		now:       time.Now,
	}, nil
}

// Cores returns number of sampled cores.
func (h *HostSampler) Cores() int {
	return h.cores
}

// FieldNames returns names of fields produced for given number of cores.
func FieldNames(cores int) []string {
	var names []string
	for core := 0; core < cores; core++ {
		for _, field := range cpuTimeFields {
			names = append(names, fmt.Sprintf("%d%s", core, field))
		}
	}
	for core := 0; core < cores; core++ {
		names = append(names, fmt.Sprintf("load%d", core))
	}
	for core := 0; core < cores; core++ {
		for _, field := range frequencyFields {
			names = append(names, fmt.Sprintf("%d%s", core, field))
		}
	}
	for _, field := range memoryFields {
		names = append(names, "virtual_"+field)
	}
	return append(names, TimeField)
}

// Sample implements Sampler.
func (h *HostSampler) Sample() (Sample, error) {
	sample := Sample{Time: h.now()}

	before, err := cpu.Times(true)
	if err != nil {
		return Sample{}, errors.Wrap(err, "cannot read cpu times")
	}
	time.Sleep(timesWindow)
	after, err := cpu.Times(true)
	if err != nil {
		return Sample{}, errors.Wrap(err, "cannot read cpu times")
	}
	for core := 0; core < h.cores; core++ {
		percents := make([]float64, len(cpuTimeFields))
		if core < len(before) && core < len(after) {
			percents = timesPercent(before[core], after[core])
		}
		for i, field := range cpuTimeFields {
			sample.Add(fmt.Sprintf("%d%s", core, field), percents[i])
		}
	}

	loads, err := cpu.Percent(loadWindow, true)
	if err != nil {
		return Sample{}, errors.Wrap(err, "cannot read cpu load")
	}
	for core := 0; core < h.cores; core++ {
		var load float64
		if core < len(loads) {
			load = loads[core]
		}
		sample.Add(fmt.Sprintf("load%d", core), load)
	}

	for core := 0; core < h.cores; core++ {
		current, minimum, maximum := h.frequency.read(core)
		sample.Add(fmt.Sprintf("%dcurrent", core), current)
		sample.Add(fmt.Sprintf("%dmin", core), minimum)
		sample.Add(fmt.Sprintf("%dmax", core), maximum)
	}

	memory, err := mem.VirtualMemory()
	if err != nil {
		return Sample{}, errors.Wrap(err, "cannot read virtual memory")
	}
	for i, value := range []float64{
		float64(memory.Total),
		float64(memory.Available),
		memory.UsedPercent,
		float64(memory.Used),
		float64(memory.Free),
		float64(memory.Active),
		float64(memory.Inactive),
		float64(memory.Buffers),
		float64(memory.Cached),
		float64(memory.Shared),
		float64(memory.Slab),
	} {
		sample.Add("virtual_"+memoryFields[i], value)
	}

	sample.Add(TimeField, Seconds(sample.Time))
	log.Debugf("Captured %d fields", len(sample.Fields))
	return sample, nil
}

// timesPercent returns share of every cpuTimeFields category in the window
// between before and after, in percent. Guest time is already part of user
// time and is not counted in the total.
func timesPercent(before, after cpu.TimesStat) []float64 {
	delta := []float64{
		after.User - before.User,
		after.Nice - before.Nice,
		after.System - before.System,
		after.Idle - before.Idle,
		after.Iowait - before.Iowait,
		after.Irq - before.Irq,
		after.Softirq - before.Softirq,
		after.Steal - before.Steal,
		after.Guest - before.Guest,
		after.GuestNice - before.GuestNice,
	}

	var total float64
	for _, d := range delta[:8] {
		total += d
	}

	percents := make([]float64, len(delta))
	if total <= 0 {
		return percents
	}
	for i, d := range delta {
		if d < 0 {
			d = 0
		}
		percents[i] = d / total * 100
	}
	return percents
}
