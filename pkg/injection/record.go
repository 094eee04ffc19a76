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

import (
	"fmt"
	"math"
	"strconv"

	"github.com/pkg/errors"
)

// Common record fields.
const (
	FieldType     = "type"
	FieldTag      = "tag"
	FieldDuration = "duration_ms"
)

// DefaultDurationMs is used when a record does not define duration_ms.
const DefaultDurationMs = 1000

// Record is one declarative injection definition as decoded from YAML or JSON.
// Unknown keys are ignored by constructors.
type Record map[string]interface{}

// Type returns the discriminator or empty string when missing.
func (r Record) Type() string {
	value, ok := r[FieldType].(string)
	if !ok {
		return ""
	}
	return value
}

// With returns a copy of the record with key set to value.
func (r Record) With(key string, value interface{}) Record {
	copied := make(Record, len(r)+1)
	for k, v := range r {
		copied[k] = v
	}
	copied[key] = value
	return copied
}

// String returns the string field or defaultValue when missing.
func (r Record) String(key, defaultValue string) (string, error) {
	raw, ok := r[key]
	if !ok || raw == nil {
		return defaultValue, nil
	}
	switch value := raw.(type) {
	case string:
		return value, nil
	case int, int64, float64, bool:
		return fmt.Sprint(value), nil
	}
	return "", errors.Errorf("field %q: unsupported value %v", key, raw)
}

// Int returns the integer field or defaultValue when missing. Floats are
// truncated and numeric strings are accepted.
func (r Record) Int(key string, defaultValue int) (int, error) {
	raw, ok := r[key]
	if !ok || raw == nil {
		return defaultValue, nil
	}
	switch value := raw.(type) {
	case int:
		return value, nil
	case int64:
		return int(value), nil
	case uint64:
		if value > math.MaxInt32 {
			return 0, errors.Errorf("field %q: value %d out of range", key, value)
		}
		return int(value), nil
	case float64:
		if math.IsNaN(value) || math.IsInf(value, 0) {
			return 0, errors.Errorf("field %q: value %v is not a number", key, value)
		}
		return int(value), nil
	case string:
		parsed, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return 0, errors.Wrapf(err, "field %q", key)
		}
		return int(parsed), nil
	}
	return 0, errors.Errorf("field %q: unsupported value %v", key, raw)
}
