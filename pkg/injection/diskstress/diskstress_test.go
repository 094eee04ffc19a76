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
	"context"
	"os"
	"testing"
	"time"

	"github.com/intelsdi-x/faultload/pkg/injection"
	. "github.com/smartystreets/goconvey/convey"
)

func TestDiskStress(t *testing.T) {
	Convey("When building disk stress from a record", t, func() {
		Convey("Defaults are applied", func() {
			inj := NewFromRecord(injection.Record{"type": "SSD", "duration_ms": 100})
			So(inj.IsValid(), ShouldBeTrue)
			So(inj.Kind(), ShouldEqual, injection.DiskStress)
			So(inj.Name(), ShouldEqual, "[]DiskStressInjection(d100-nw10)")
			So(inj.Parameters(), ShouldResemble, injection.Record{FieldWorkers: 10, FieldBlocks: 10, FieldFolder: "./"})
		})

		Convey("Invalid parameters invalidate it", func() {
			So(NewFromRecord(injection.Record{"n_workers": 0}).IsValid(), ShouldBeFalse)
			So(NewFromRecord(injection.Record{"n_blocks": -1}).IsValid(), ShouldBeFalse)
			So(NewFromRecord(injection.Record{"rw_folder": ""}).IsValid(), ShouldBeFalse)
		})

		Convey("Init fails for a missing folder", func() {
			inj := NewFromRecord(injection.Record{"rw_folder": "/nonexistent/faultload"})
			So(inj.Init(), ShouldNotBeNil)
		})

		Convey("Process pool requires the worker binary", func() {
			So(PoolFlag.Value(), ShouldEqual, ProcessPool)
			inj := NewFromRecord(injection.Record{"rw_folder": os.TempDir()}).(*diskStress)
			So(inj.workerPath, ShouldEqual, WorkerPathFlag.Value())

			inj.workerPath = "/nonexistent/faultload-diskworker"
			err := inj.Init()
			So(err, ShouldNotBeNil)
			So(err.Error(), ShouldContainSubstring, "disk worker")
		})
	})

	Convey("When running disk stress with a goroutine pool", t, func() {
		folder, err := os.MkdirTemp("", "faultload_disk_test_")
		So(err, ShouldBeNil)
		defer os.RemoveAll(folder)

		inj := NewWithPool("d", 300, Config{Workers: 2, Blocks: 1, Folder: folder}, NewGoroutinePool)
		So(inj.IsValid(), ShouldBeTrue)
		So(inj.Init(), ShouldBeNil)
		So(inj.Start(), ShouldBeNil)

		Convey("It ends after its duration and leaves no files", func() {
			So(inj.IsRunning(), ShouldBeTrue)
			So(inj.Wait(10*time.Second), ShouldBeTrue)
			So(inj.Status(), ShouldEqual, injection.Completed)
			So(inj.Intervals()[0].Elapsed(), ShouldBeBetweenOrEqual, 300*time.Millisecond, 350*time.Millisecond)

			entries, err := os.ReadDir(folder)
			So(err, ShouldBeNil)
			So(entries, ShouldBeEmpty)
		})

		Convey("ForceStop right after Start ends it immediately", func() {
			So(inj.ForceStop(), ShouldBeNil)
			So(inj.Wait(10*time.Second), ShouldBeTrue)
			So(inj.Intervals()[0].Elapsed(), ShouldBeLessThan, 100*time.Millisecond)
			So(inj.ForceStop(), ShouldBeNil)
		})
	})

	Convey("Worker returns once its context is done", t, func() {
		folder, err := os.MkdirTemp("", "faultload_disk_test_")
		So(err, ShouldBeNil)
		defer os.RemoveAll(folder)

		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()
		So(Work(ctx, folder, 1), ShouldBeNil)

		So(Work(context.Background(), "/nonexistent/faultload", 1), ShouldNotBeNil)
	})
}
