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

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/intelsdi-x/faultload/pkg/conf"
	"github.com/intelsdi-x/faultload/pkg/experiment"
	"github.com/intelsdi-x/faultload/pkg/injection/diskstress"
	"github.com/intelsdi-x/faultload/pkg/utils/errutil"
	"github.com/sirupsen/logrus"
)

var (
	folderFlag = conf.NewStringFlag("rw_folder", "Directory for temporary files", "./")
	blocksFlag = conf.NewIntFlag("n_blocks", "Number of 1 MiB blocks written to every temporary file", 10)
)

// Single disk stress worker. Runs until killed.
func main() {
	conf.SetAppName("faultload-diskworker")
	conf.SetHelp("Repeatedly writes and reads back a temporary file until terminated.")
	experiment.Configure()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logrus.Debugf("Disk worker %d writing %d blocks to %q", os.Getpid(), blocksFlag.Value(), folderFlag.Value())
	err := diskstress.Work(ctx, folderFlag.Value(), blocksFlag.Value())
	errutil.CheckWithContext(err, "Disk stress worker failed")
}
