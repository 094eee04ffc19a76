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

// Package factory builds validated injections from declarative records and
// expands them to a requested count.
package factory

import (
	"github.com/intelsdi-x/faultload/pkg/injection"
	"github.com/intelsdi-x/faultload/pkg/injection/cpustress"
	"github.com/intelsdi-x/faultload/pkg/injection/diskstress"
	"github.com/intelsdi-x/faultload/pkg/injection/memorystress"
	"github.com/intelsdi-x/faultload/pkg/utils/random"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// AllRecords requests exactly the parsed injections, without expansion.
const AllRecords = -1

var (
	// ErrTooFewInjectors is returned when requested count is lower than the number of records.
	ErrTooFewInjectors = errors.New("requested number of injectors is lower than the number of definitions")
	// ErrNoValidInjectors is returned when expansion is requested but no record is valid.
	ErrNoValidInjectors = errors.New("no valid injector definition to expand from")
)

// Constructor builds an injection of one kind. The jitter source may be nil.
type Constructor func(record injection.Record, jitter random.Source) injection.Injector

// Constructors maps every kind to its constructor.
var Constructors = map[injection.Kind]Constructor{
	injection.CPUStress: cpustress.NewFromRecord,
	injection.MemoryStress: func(record injection.Record, _ random.Source) injection.Injector {
		return memorystress.NewFromRecord(record)
	},
	injection.DiskStress: func(record injection.Record, _ random.Source) injection.Injector {
		return diskstress.NewFromRecord(record)
	},
}

// Factory creates injections from records.
type Factory struct {
	// Rand draws records during expansion and jitter factors.
	Rand random.Source
	// Jitter enables random perturbation of variant parameters.
	Jitter bool
	// DurationMs overrides duration_ms of every record when positive.
	DurationMs int

	constructors map[injection.Kind]Constructor
}

// New is a constructor of Factory using built-in variants.
func New(src random.Source, durationMs int, jitter bool) *Factory {
	return &Factory{
		Rand:         src,
		Jitter:       jitter,
		DurationMs:   durationMs,
		constructors: Constructors,
	}
}

// Create builds and initializes one injection. Unknown kinds and invalid
// parameters are reported as errors.
func (f *Factory) Create(record injection.Record) (injection.Injector, error) {
	kind, ok := injection.ResolveKind(record.Type())
	if !ok {
		return nil, errors.Errorf("unknown injector type %q", record.Type())
	}

	constructor, ok := f.constructors[kind]
	if !ok {
		return nil, errors.Errorf("no constructor for %s", kind)
	}

	if f.DurationMs > 0 {
		record = record.With(injection.FieldDuration, f.DurationMs)
	}

	var jitter random.Source
	if f.Jitter {
		jitter = f.Rand
	}

	inj := constructor(record, jitter)
	if !inj.IsValid() {
		return nil, errors.Wrapf(inj.Invalid(), "invalid %s definition", kind)
	}
	if err := inj.Init(); err != nil {
		return nil, errors.Wrapf(err, "cannot initialize %s", inj.Name())
	}
	return inj, nil
}

// Build creates injections from records preserving their order and skipping
// unknown or invalid ones. When n is not AllRecords records are drawn with
// replacement until exactly n valid injections exist.
func (f *Factory) Build(records []injection.Record, n int) ([]injection.Injector, error) {
	if n != AllRecords && n < len(records) {
		return nil, errors.Wrapf(ErrTooFewInjectors, "requested %d, defined %d", n, len(records))
	}

	injectors := []injection.Injector{}
	for i, record := range records {
		inj, err := f.Create(record)
		if err != nil {
			log.Warnf("Skipping injector definition %d: %v", i, err)
			continue
		}
		log.Debugf("New injector loaded: %s", inj.Name())
		injectors = append(injectors, inj)
	}

	if n == AllRecords || len(injectors) == n {
		return injectors, nil
	}

	if len(injectors) == 0 {
		return nil, errors.Wrapf(ErrNoValidInjectors, "requested %d", n)
	}

	for len(injectors) < n {
		record := records[f.Rand.Intn(len(records))]
		inj, err := f.Create(record)
		if err != nil {
			continue
		}
		injectors = append(injectors, inj)
	}
	log.Infof("Expanded %d injector definitions to %d injectors", len(records), n)

	return injectors, nil
}

// BuildFromInput parses input and builds injections from it.
func (f *Factory) BuildFromInput(input string, n int) ([]injection.Injector, error) {
	records, err := Parse(input)
	if err != nil {
		return nil, err
	}
	return f.Build(records, n)
}

// Shuffle permutes injectors in place.
func Shuffle(src random.Source, injectors []injection.Injector) {
	random.Shuffle(src, len(injectors), func(i, j int) {
		injectors[i], injectors[j] = injectors[j], injectors[i]
	})
}
