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

package diskstress

import (
	"os"
	"testing"

	"github.com/intelsdi-x/faultload/pkg/executor"
	"github.com/intelsdi-x/faultload/pkg/executor/mocks"
	"github.com/pkg/errors"
	. "github.com/smartystreets/goconvey/convey"
	"github.com/stretchr/testify/mock"
)

func TestProcessPool(t *testing.T) {
	config := Config{Workers: 2, Blocks: 3, Folder: "/tmp/io"}
	command := "faultload-diskworker --rw_folder='/tmp/io' --n_blocks=3"

	Convey("Worker command quotes the folder", t, func() {
		So(WorkerCommand("faultload-diskworker", config), ShouldEqual, command)
		So(shellQuote("it's"), ShouldEqual, `'it'"'"'s'`)
	})

	Convey("When using a process pool", t, func() {
		executorMock := new(mocks.Executor)
		taskMock := new(mocks.TaskHandle)
		pool := NewProcessPool(executorMock, "faultload-diskworker", config)

		Convey("Every worker is started and then stopped", func() {
			executorMock.On("Execute", command).Return(taskMock, nil).Twice()
			taskMock.On("Wait", WorkerStartupGrace).Return(false).Once()
			taskMock.On("Status").Return(executor.RUNNING).Twice()
			taskMock.On("Stop").Return(nil).Twice()
			taskMock.On("Clean").Return(nil).Twice()
			taskMock.On("EraseOutput").Return(nil).Twice()

			So(pool.Start(2), ShouldBeNil)
			So(pool.Stop(), ShouldBeNil)

			executorMock.AssertExpectations(t)
			taskMock.AssertExpectations(t)
		})

		Convey("Stop errors of all workers are collected", func() {
			executorMock.On("Execute", mock.AnythingOfType("string")).Return(taskMock, nil).Twice()
			taskMock.On("Wait", mock.Anything).Return(false)
			taskMock.On("Status").Return(executor.RUNNING)
			taskMock.On("Stop").Return(errors.New("kill failed")).Twice()
			taskMock.On("Clean").Return(nil).Twice()
			taskMock.On("EraseOutput").Return(nil).Twice()

			So(pool.Start(2), ShouldBeNil)
			err := pool.Stop()
			So(err, ShouldNotBeNil)
			So(err.Error(), ShouldContainSubstring, "cannot stop worker 0")
			So(err.Error(), ShouldContainSubstring, "cannot stop worker 1")
			taskMock.AssertExpectations(t)
		})

		Convey("Start failure is reported and started workers are still stopped", func() {
			executorMock.On("Execute", command).Return(taskMock, nil).Once()
			executorMock.On("Execute", command).Return(nil, errors.New("no binary")).Once()
			taskMock.On("Stop").Return(nil).Once()
			taskMock.On("Clean").Return(nil).Once()
			taskMock.On("EraseOutput").Return(nil).Once()

			So(pool.Start(2), ShouldNotBeNil)
			So(pool.Stop(), ShouldBeNil)
			taskMock.AssertExpectations(t)
		})

		Convey("Worker exiting right after start fails the start", func() {
			executorMock.On("Execute", command).Return(taskMock, nil).Twice()
			taskMock.On("Wait", WorkerStartupGrace).Return(true).Once()
			taskMock.On("Status").Return(executor.TERMINATED).Once()
			taskMock.On("ExitCode").Return(127, nil).Once()
			taskMock.On("Stop").Return(nil).Twice()
			taskMock.On("Clean").Return(nil).Twice()
			taskMock.On("EraseOutput").Return(nil).Twice()

			err := pool.Start(2)
			So(err, ShouldNotBeNil)
			So(err.Error(), ShouldContainSubstring, "worker 0 exited prematurely with code 127")
			So(pool.Stop(), ShouldBeNil)
			taskMock.AssertExpectations(t)
		})
	})

	Convey("When the worker binary does not exist", t, func() {
		folder, err := os.MkdirTemp("", "faultload_disk_test_")
		So(err, ShouldBeNil)
		defer os.RemoveAll(folder)

		pool := NewProcessPool(executor.NewLocal(), "/nonexistent/faultload-diskworker", Config{Workers: 2, Blocks: 1, Folder: folder})

		Convey("Start reports the exited workers", func() {
			err := pool.Start(2)
			So(err, ShouldNotBeNil)
			So(err.Error(), ShouldContainSubstring, "exited prematurely")
			So(pool.Stop(), ShouldBeNil)
		})
	})
}
