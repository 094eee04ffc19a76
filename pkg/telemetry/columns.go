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

import "fmt"

// InferenceDropColumns returns fields which downstream anomaly detectors
// discard before inference, for given number of cores.
func InferenceDropColumns(cores int) []string {
	var columns []string
	for core := 0; core < cores; core++ {
		for _, field := range []string{"irq", "steal", "guest", "guest_nice", "iowait", "min", "max"} {
			columns = append(columns, fmt.Sprintf("%d%s", core, field))
		}
	}
	return append(columns, TimeField, "virtual_total")
}
