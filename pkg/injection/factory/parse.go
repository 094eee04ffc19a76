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

import (
	"os"

	"github.com/intelsdi-x/faultload/pkg/injection"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// ErrUnparsableInput is returned when input is neither a list of records nor a readable file with one.
var ErrUnparsableInput = errors.New("input is neither a list of injector definitions nor a file containing one")

// Parse decodes injector records from inline YAML or JSON text. When input is
// not a list it is treated as a path to a file holding one.
func Parse(input string) ([]injection.Record, error) {
	if records, ok := decode([]byte(input)); ok {
		return records, nil
	}

	info, err := os.Stat(input)
	if err != nil || info.IsDir() {
		return nil, errors.Wrapf(ErrUnparsableInput, "%q", input)
	}

	data, err := os.ReadFile(input)
	if err != nil {
		return nil, errors.Wrapf(ErrUnparsableInput, "cannot read %q: %v", input, err)
	}
	if records, ok := decode(data); ok {
		return records, nil
	}
	return nil, errors.Wrapf(ErrUnparsableInput, "file %q", input)
}

// decode returns records when data is a YAML (or JSON) sequence. Elements
// which are not mappings become empty records and are skipped later as unknown.
func decode(data []byte) ([]injection.Record, bool) {
	var document interface{}
	if err := yaml.Unmarshal(data, &document); err != nil {
		return nil, false
	}

	items, ok := document.([]interface{})
	if !ok {
		return nil, false
	}

	records := make([]injection.Record, 0, len(items))
	for i, item := range items {
		fields, ok := item.(map[string]interface{})
		if !ok {
			log.Warnf("Injector definition %d is not a mapping: %v", i, item)
			fields = map[string]interface{}{}
		}
		records = append(records, injection.Record(fields))
	}
	return records, true
}
