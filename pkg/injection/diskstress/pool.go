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
	"fmt"
	"strings"
	"time"

	"github.com/intelsdi-x/faultload/pkg/conf"
	"github.com/intelsdi-x/faultload/pkg/executor"
	"github.com/intelsdi-x/faultload/pkg/utils/err_collection"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

const (
	// ProcessPool runs every worker as a separate diskworker process.
	ProcessPool = "process"
	// GoroutinePool runs every worker as a goroutine of the current process.
	GoroutinePool = "goroutine"

	// WorkerStartupGrace is how long a freshly started worker process is
	// watched for an early exit.
	WorkerStartupGrace = 100 * time.Millisecond
)

var (
	// PoolFlag selects the worker pool kind.
	PoolFlag = conf.NewStringFlag("disk_pool", "Disk stress worker pool: process or goroutine", ProcessPool)
	// WorkerPathFlag is the diskworker binary used by the process pool.
	WorkerPathFlag = conf.NewStringFlag("disk_worker_path", "Path to the disk stress worker binary", "faultload-diskworker")
)

// Pool is a set of disk stress workers.
type Pool interface {
	// Start launches n workers. On error workers started so far keep running until Stop.
	Start(n int) error
	// Stop terminates all workers and releases their resources.
	Stop() error
}

func poolFactoryFromFlags() (PoolFactory, error) {
	switch PoolFlag.Value() {
	case ProcessPool:
		workerPath := WorkerPathFlag.Value()
		return func(config Config) Pool {
			return NewProcessPool(executor.NewLocal(), workerPath, config)
		}, nil
	case GoroutinePool:
		return NewGoroutinePool, nil
	}
	return nil, errors.Errorf("unknown disk_pool %q", PoolFlag.Value())
}

type processPool struct {
	executor executor.Executor
	command  string
	tasks    []executor.TaskHandle
}

// NewProcessPool returns Pool which executes workerPath for every worker.
func NewProcessPool(exec executor.Executor, workerPath string, config Config) Pool {
	return &processPool{
		executor: exec,
		command:  WorkerCommand(workerPath, config),
	}
}

// WorkerCommand returns the shell command running a single diskworker.
func WorkerCommand(workerPath string, config Config) string {
	return fmt.Sprintf("%s --rw_folder=%s --n_blocks=%d", workerPath, shellQuote(config.Folder), config.Blocks)
}

func shellQuote(s string) string {
	return "'" + strings.Replace(s, "'", `'"'"'`, -1) + "'"
}

// Start launches n workers and checks none of them exited within
// WorkerStartupGrace. Workers run until stopped, so any exit is a failure.
func (p *processPool) Start(n int) error {
	for i := 0; i < n; i++ {
		task, err := p.executor.Execute(p.command)
		if err != nil {
			return errors.Wrapf(err, "cannot start worker %d", i)
		}
		p.tasks = append(p.tasks, task)
	}
	if len(p.tasks) == 0 {
		return nil
	}

	p.tasks[0].Wait(WorkerStartupGrace)
	for i, task := range p.tasks {
		if task.Status() != executor.TERMINATED {
			continue
		}
		exitCode, err := task.ExitCode()
		if err != nil {
			return errors.Wrapf(err, "worker %d terminated", i)
		}
		return errors.Errorf("worker %d exited prematurely with code %d (%s)", i, exitCode, p.command)
	}
	return nil
}

func (p *processPool) Stop() error {
	var errCollection errcollection.ErrorCollection
	for i, task := range p.tasks {
		errCollection.Addf(task.Stop(), "cannot stop worker %d", i)
		errCollection.Addf(task.Clean(), "cannot clean worker %d", i)
		errCollection.Addf(task.EraseOutput(), "cannot erase output of worker %d", i)
	}
	p.tasks = nil
	return errCollection.GetErrIfAny()
}

type goroutinePool struct {
	config Config
	cancel context.CancelFunc
	group  *errgroup.Group
}

// NewGoroutinePool returns Pool running workers as goroutines.
func NewGoroutinePool(config Config) Pool {
	return &goroutinePool{config: config}
}

func (p *goroutinePool) Start(n int) error {
	ctx, cancel := context.WithCancel(context.Background())
	group, ctx := errgroup.WithContext(ctx)
	p.cancel = cancel
	p.group = group
	for i := 0; i < n; i++ {
		group.Go(func() error {
			return Work(ctx, p.config.Folder, p.config.Blocks)
		})
	}
	return nil
}

func (p *goroutinePool) Stop() error {
	if p.cancel == nil {
		return nil
	}
	p.cancel()
	err := p.group.Wait()
	p.cancel = nil
	p.group = nil
	if errors.Cause(err) == context.Canceled {
		return nil
	}
	return err
}
