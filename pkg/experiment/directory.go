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

package experiment

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

// CreateExperimentDir creates <outputDir>/<uuid> and a log file named after
// the application inside it.
func CreateExperimentDir(outputDir, uuid, appName string) (experimentDirectory string, logFile *os.File, err error) {
	experimentDirectory = filepath.Join(outputDir, uuid)
	if err = os.MkdirAll(experimentDirectory, 0755); err != nil {
		return "", nil, errors.Wrapf(err, "cannot create experiment directory %q", experimentDirectory)
	}

	logPath := filepath.Join(experimentDirectory, filepath.Base(appName)+".log")
	logFile, err = os.OpenFile(logPath, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0644)
	if err != nil {
		return "", nil, errors.Wrapf(err, "cannot create log file %q", logPath)
	}

	return experimentDirectory, logFile, nil
}
