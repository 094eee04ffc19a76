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

package factory

import "github.com/intelsdi-x/faultload/pkg/conf"

var (
	// InjectorsFlag holds injector definitions or a path to a file with them.
	InjectorsFlag = conf.NewStringFlag("injectors", "Injector definitions: inline YAML/JSON list or path to a file containing one", "base_injectors.json")
	// CountFlag is the number of injectors in the campaign.
	CountFlag = conf.NewIntFlag("n_injectors", "Number of injectors in the campaign; -1 uses every definition exactly once", 50)
	// ShuffleFlag enables shuffling of the injector queue.
	ShuffleFlag = conf.NewBoolFlag("shuffle_injectors", "Shuffle the injector queue after construction", true)
)
