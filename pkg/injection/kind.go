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

import "sort"

// Kind identifies an injection variant.
type Kind int

const (
	// Unknown is returned for unrecognized discriminators.
	Unknown Kind = iota
	// CPUStress saturates CPU cores with a duty cycle.
	CPUStress
	// MemoryStress grows resident memory.
	MemoryStress
	// DiskStress generates disk I/O.
	DiskStress
)

// Kinds lists every known variant.
var Kinds = []Kind{CPUStress, MemoryStress, DiskStress}

var aliases = map[string]Kind{
	"Memory":       MemoryStress,
	"RAM":          MemoryStress,
	"MemoryUsage":  MemoryStress,
	"Mem":          MemoryStress,
	"MemoryStress": MemoryStress,

	"Disk":            DiskStress,
	"SSD":             DiskStress,
	"DiskMemoryUsage": DiskStress,
	"DiskStress":      DiskStress,

	"CPU":       CPUStress,
	"Proc":      CPUStress,
	"CPUUsage":  CPUStress,
	"CPUStress": CPUStress,
}

// String returns the name used in injection display names.
func (k Kind) String() string {
	switch k {
	case CPUStress:
		return "CPUStressInjection"
	case MemoryStress:
		return "MemoryStressInjection"
	case DiskStress:
		return "DiskStressInjection"
	}
	return "UnknownInjection"
}

// ResolveKind maps a discriminator to its variant. Matching is exact and case sensitive.
func ResolveKind(discriminator string) (Kind, bool) {
	kind, ok := aliases[discriminator]
	return kind, ok
}

// Aliases returns sorted discriminators which resolve to kind.
func Aliases(kind Kind) []string {
	var names []string
	for alias, k := range aliases {
		if k == kind {
			names = append(names, alias)
		}
	}
	sort.Strings(names)
	return names
}
