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

package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	. "github.com/smartystreets/goconvey/convey"
)

func TestInitialize(t *testing.T) {
	Convey("When logger is initialized", t, func() {
		outputDir, err := os.MkdirTemp("", "faultload_logger_test_")
		So(err, ShouldBeNil)
		defer os.RemoveAll(outputDir)
		defer logrus.SetOutput(os.Stderr)

		directory := Initialize("faultload", outputDir, "campaign-id")

		Convey("Messages are written to the campaign log file", func() {
			logrus.Info("written to file")
			data, err := os.ReadFile(filepath.Join(directory, "faultload.log"))
			So(err, ShouldBeNil)
			So(string(data), ShouldContainSubstring, "written to file")
			So(string(data), ShouldContainSubstring, "campaign-id")
		})
	})
}
