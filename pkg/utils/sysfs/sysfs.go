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

// Package sysfs reads single value files of the sys and proc file systems.
package sysfs

import (
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Get returns the content of the file at path without the trailing newline.
func Get(path string) (string, error) {
	byteContent, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}

	// The sys file system represents single values as newline terminated files.
	return strings.TrimSuffix(string(byteContent), "\n"), nil
}

// GetFloat returns the numeric value of the file at path.
func GetFloat(path string) (float64, error) {
	content, err := Get(path)
	if err != nil {
		return 0, err
	}

	value, err := strconv.ParseFloat(strings.TrimSpace(content), 64)
	if err != nil {
		return 0, errors.Wrapf(err, "%q does not hold a number", path)
	}
	return value, nil
}
