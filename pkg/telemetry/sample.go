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

// Package telemetry captures flat, timestamped snapshots of host CPU and
// memory statistics.
package telemetry

import "time"

// TimeField is the name of the capture timestamp field (seconds since epoch).
const TimeField = "time_s"

// Field is a single named measurement.
type Field struct {
	Name  string
	Value float64
}

// Sample is an ordered set of measurements captured at Time.
type Sample struct {
	Time   time.Time
	Fields []Field
}

// Sampler captures samples.
type Sampler interface {
	Sample() (Sample, error)
}

// Add appends a measurement.
func (s *Sample) Add(name string, value float64) {
	s.Fields = append(s.Fields, Field{Name: name, Value: value})
}

// Names returns field names in capture order.
func (s Sample) Names() []string {
	names := make([]string, len(s.Fields))
	for i, field := range s.Fields {
		names[i] = field.Name
	}
	return names
}

// Get returns value of the named field.
func (s Sample) Get(name string) (float64, bool) {
	for _, field := range s.Fields {
		if field.Name == name {
			return field.Value, true
		}
	}
	return 0, false
}

// Map returns measurements keyed by name.
func (s Sample) Map() map[string]float64 {
	values := make(map[string]float64, len(s.Fields))
	for _, field := range s.Fields {
		values[field.Name] = field.Value
	}
	return values
}

// Seconds converts t to fractional seconds since epoch.
func Seconds(t time.Time) float64 {
	return float64(t.UnixNano()) / float64(time.Second)
}
