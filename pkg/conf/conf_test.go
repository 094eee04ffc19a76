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

package conf

import (
	"os"
	"testing"

	"github.com/sirupsen/logrus"
	. "github.com/smartystreets/goconvey/convey"
)

const testAppName = "testAppName"

var customFlag = NewStringFlag("custom_arg", "help", "default")

func clearEnv() {
	logLevelFlag.clear()
	customFlag.clear()
}

func TestConf(t *testing.T) {
	Convey("While using Conf pkg", t, func() {
		clearEnv()
		defer clearEnv()

		SetAppName(testAppName)
		SetHelp("help message")

		Convey("Name and help should match to specified one", func() {
			So(AppName(), ShouldEqual, testAppName)
			So(app.Help, ShouldEqual, "help message")
		})

		Convey("Log level can be fetched from env", func() {
			err := ParseEnv()
			So(err, ShouldBeNil)
			So(LogLevel(), ShouldEqual, logrus.InfoLevel)

			os.Setenv(logLevelFlag.envName(), "debug")

			err = ParseEnv()
			So(err, ShouldBeNil)
			So(LogLevel(), ShouldEqual, logrus.DebugLevel)
		})

		Convey("Command line arguments take precedence over defaults", func() {
			err := ParseArgs([]string{"--custom_arg=fromCLI"})
			So(err, ShouldBeNil)
			So(customFlag.Value(), ShouldEqual, "fromCLI")
		})

		Convey("Unknown command line arguments are reported", func() {
			err := ParseArgs([]string{"--no_such_flag=1"})
			So(err, ShouldNotBeNil)
		})

		Convey("Configuration dump contains prefixed variables with current values", func() {
			os.Setenv(customFlag.envName(), "dumped")
			So(ParseEnv(), ShouldBeNil)

			dump := DumpConfig()
			So(dump, ShouldContainSubstring, "FAULTLOAD_CUSTOM_ARG=dumped")
			So(dump, ShouldContainSubstring, "set -o allexport")
			So(GetFlags()["custom_arg"], ShouldEqual, "dumped")
		})
	})
}
