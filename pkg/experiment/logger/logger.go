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

// Package logger configures logrus for a campaign.
package logger

import (
	"fmt"
	"io"
	"os"

	"github.com/intelsdi-x/faultload/pkg/experiment"
	"github.com/intelsdi-x/faultload/pkg/utils/errutil"
	"github.com/sirupsen/logrus"
)

// Initialize creates campaign logs directory and configures logrus to write
// to both the log file and stderr. Returns the campaign directory.
func Initialize(appName, outputDir, uuid string) string {
	// Create experiment directory
	experimentDirectory, logFile, err := experiment.CreateExperimentDir(outputDir, uuid, appName)
	errutil.CheckWithContext(err, "Cannot create campaign logs directory")

	// Setup logging set to both output and logFile.
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true, TimestampFormat: "2006-01-02 15:04:05.100"})
	logrus.Infof("Working directory %q", experimentDirectory)
	logrus.SetOutput(io.MultiWriter(logFile, os.Stderr))

	// Logging and outputting campaign ID.
	logrus.Info("Starting campaign ", appName, " with uid ", uuid)
	fmt.Println(uuid)

	return experimentDirectory
}
