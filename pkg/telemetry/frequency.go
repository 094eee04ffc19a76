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
	"path/filepath"

	"github.com/intelsdi-x/faultload/pkg/utils/sysfs"
	"github.com/shirou/gopsutil/v3/cpu"
	log "github.com/sirupsen/logrus"
)

const sysfsCPUPath = "/sys/devices/system/cpu"

type frequencyReader interface {
	// read returns current, min and max frequency of core in MHz.
	read(core int) (current, minimum, maximum float64)
}

// sysfsFrequencyReader reads cpufreq files. When they are missing the nominal
// frequency reported by gopsutil is used as current, and 0 when unknown.
type sysfsFrequencyReader struct {
	root     string
	fallback []float64
}

func newSysfsFrequencyReader(root string, cores int) *sysfsFrequencyReader {
	reader := &sysfsFrequencyReader{root: root, fallback: make([]float64, cores)}

	infos, err := cpu.Info()
	if err != nil {
		log.Debugf("Cannot read cpu info, frequency fallback disabled: %v", err)
		return reader
	}
	for core := range reader.fallback {
		if core < len(infos) {
			reader.fallback[core] = infos[core].Mhz
		}
	}
	return reader
}

func (s *sysfsFrequencyReader) read(core int) (current, minimum, maximum float64) {
	current, ok := s.readKHz(core, "scaling_cur_freq")
	if !ok && core < len(s.fallback) {
		current = s.fallback[core]
	}
	minimum, _ = s.readKHz(core, "cpuinfo_min_freq")
	maximum, _ = s.readKHz(core, "cpuinfo_max_freq")
	return current, minimum, maximum
}

// readKHz reads a cpufreq file of core and converts it to MHz.
func (s *sysfsFrequencyReader) readKHz(core int, name string) (float64, bool) {
	path := filepath.Join(s.root, fmt.Sprintf("cpu%d", core), "cpufreq", name)
	value, err := sysfs.GetFloat(path)
	if err != nil {
		return 0, false
	}
	return value / 1000, true
}
