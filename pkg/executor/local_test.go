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

package executor

import (
	"io/ioutil"
	"os"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

// TestLocal tests the execution of process on local machine.
func TestLocal(t *testing.T) {
	Convey("While using Local executor", t, func() {
		l := NewLocal()
		So(l.Name(), ShouldEqual, "Local Executor")

		Convey("When blocking infinitively sleep command is executed", func() {
			task, err := l.Execute("sleep inf")
			So(err, ShouldBeNil)
			defer func() {
				task.Clean()
				task.EraseOutput()
			}()

			Convey("Task should be still running and exit code unavailable", func() {
				So(task.Status(), ShouldEqual, RUNNING)
				_, err := task.ExitCode()
				So(err, ShouldNotBeNil)

				So(task.Stop(), ShouldBeNil)
			})

			Convey("When we wait for task termination with the 1ms timeout", func() {
				isTaskTerminated := task.Wait(1 * time.Millisecond)

				Convey("The timeout should exceed and the task not terminated", func() {
					So(isTaskTerminated, ShouldBeFalse)
					So(task.Status(), ShouldEqual, RUNNING)
				})

				So(task.Stop(), ShouldBeNil)
			})

			Convey("When we stop the task", func() {
				So(task.Stop(), ShouldBeNil)

				Convey("The task should be terminated by SIGKILL", func() {
					So(task.Status(), ShouldEqual, TERMINATED)
					exitCode, err := task.ExitCode()
					So(err, ShouldBeNil)
					So(exitCode, ShouldEqual, -9)
				})

				Convey("Stopping it again is a no-op", func() {
					So(task.Stop(), ShouldBeNil)
				})
			})
		})

		Convey("When a command spawning children is stopped the whole group is killed", func() {
			task, err := l.Execute("sleep inf & sleep inf & wait")
			So(err, ShouldBeNil)
			defer func() {
				task.Clean()
				task.EraseOutput()
			}()

			So(task.Stop(), ShouldBeNil)
			So(task.Wait(time.Second), ShouldBeTrue)
		})

		Convey("When command exits on its own", func() {
			task, err := l.Execute("echo output; exit 5")
			So(err, ShouldBeNil)

			So(task.Wait(0), ShouldBeTrue)
			exitCode, err := task.ExitCode()
			So(err, ShouldBeNil)
			So(exitCode, ShouldEqual, 5)

			Convey("Output files are removed by EraseOutput", func() {
				lt := task.(*localTaskHandle)
				content, err := ioutil.ReadFile(lt.stdoutFile.Name())
				So(err, ShouldBeNil)
				So(string(content), ShouldEqual, "output\n")

				So(task.Clean(), ShouldBeNil)
				So(task.EraseOutput(), ShouldBeNil)
				_, err = os.Stat(lt.stdoutFile.Name())
				So(os.IsNotExist(err), ShouldBeTrue)
			})
		})
	})
}
