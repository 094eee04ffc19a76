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

package visualization

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/intelsdi-x/faultload/pkg/injection"
)

var planHeaders = []string{"#", "Injector", "Kind", "Duration", "Parameters"}

// NewPlanTable describes the injector queue in start order.
func NewPlanTable(injectors []injection.Injector) *Table {
	data := make([][]string, 0, len(injectors))
	for i, inj := range injectors {
		data = append(data, []string{
			strconv.Itoa(i + 1),
			inj.Name(),
			inj.Kind().String(),
			inj.Duration().String(),
			formatParameters(inj.Parameters()),
		})
	}
	return NewTable(planHeaders, data)
}

func formatParameters(parameters injection.Record) string {
	keys := make([]string, 0, len(parameters))
	for key := range parameters {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys))
	for _, key := range keys {
		pairs = append(pairs, fmt.Sprintf("%s=%v", key, parameters[key]))
	}
	return strings.Join(pairs, " ")
}
