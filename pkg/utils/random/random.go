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

// Package random holds the randomized perturbations used when building and
// scheduling injections. Every function takes its random Source explicitly so
// callers (and tests) decide how draws are made.
package random

import (
	"math"
	"math/rand"
	"time"
)

var (
	// LoadMultipliers perturb the target load of a CPU stress injection.
	LoadMultipliers = []float64{0.9, 1.0, 1.1}
	// RestMultipliers perturb the length of a rest phase.
	RestMultipliers = []float64{0.6, 0.8, 1.0, 1.2, 1.4}
)

// Source draws uniformly distributed integers from [0, n).
// *rand.Rand satisfies it.
type Source interface {
	Intn(n int) int
}

// NewSource returns a Source seeded with seed. Zero seed means a time based seed.
func NewSource(seed int64) *rand.Rand {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return rand.New(rand.NewSource(seed))
}

// Fixed is a Source which always picks the same index (modulo n).
type Fixed int

// Intn implements Source.
func (f Fixed) Intn(n int) int {
	if n <= 0 {
		panic("random: invalid argument to Intn")
	}
	return int(f) % n
}

// Choice returns one of values drawn uniformly with src.
func Choice(src Source, values []float64) float64 {
	return values[src.Intn(len(values))]
}

// JitterPercent multiplies percent by one of LoadMultipliers and clamps the
// result to [0, 100].
func JitterPercent(percent int, src Source) int {
	jittered := int(math.Round(float64(percent) * Choice(src, LoadMultipliers)))
	if jittered < 0 {
		return 0
	}
	if jittered > 100 {
		return 100
	}
	return jittered
}

// JitterCount multiplies count by one of RestMultipliers and rounds up.
func JitterCount(count int, src Source) int {
	// Epsilon absorbs float error, e.g. 140*0.6 must stay 84.
	return int(math.Ceil(float64(count)*Choice(src, RestMultipliers) - 1e-9))
}

// Shuffle permutes n elements in place using Fisher-Yates and src.
func Shuffle(src Source, n int, swap func(i, j int)) {
	for i := n - 1; i > 0; i-- {
		swap(i, src.Intn(i+1))
	}
}
