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

// Package diskstress implements an injection which generates disk I/O with a
// pool of workers repeatedly writing and reading back temporary files.
package diskstress

import (
	"fmt"
	"os"
	"os/exec"
	"sync"
	"time"

	"github.com/intelsdi-x/faultload/pkg/injection"
	"github.com/intelsdi-x/faultload/pkg/utils/errutil"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

const (
	// FieldWorkers is the record field holding the pool size.
	FieldWorkers = "n_workers"
	// FieldBlocks is the record field holding the number of 1 MiB blocks per file.
	FieldBlocks = "n_blocks"
	// FieldFolder is the record field holding the directory for temporary files.
	FieldFolder = "rw_folder"
)

// Config holds disk stress parameters.
type Config struct {
	Workers int
	Blocks  int
	Folder  string
}

// DefaultConfig is a constructor for Config with default parameters.
func DefaultConfig() Config {
	return Config{
		Workers: 10,
		Blocks:  10,
		Folder:  "./",
	}
}

// PoolFactory creates a worker pool for a single run.
type PoolFactory func(config Config) Pool

type diskStress struct {
	*injection.Base
	config  Config
	newPool PoolFactory
	// workerPath is the worker binary required by the process pool.
	workerPath string

	mu   sync.Mutex
	stop chan struct{}
}

// New returns disk stress injection using pool kind selected by PoolFlag.
func New(tag string, durationMs int, config Config) injection.Injector {
	return newDiskStressFromFlags(injection.NewBase(injection.DiskStress, tag, durationMs), config)
}

// NewWithPool returns disk stress injection using given pool factory.
func NewWithPool(tag string, durationMs int, config Config, newPool PoolFactory) injection.Injector {
	return newDiskStress(injection.NewBase(injection.DiskStress, tag, durationMs), config, newPool)
}

// NewFromRecord builds disk stress injection from record fields.
func NewFromRecord(record injection.Record) injection.Injector {
	base := injection.NewBaseFromRecord(injection.DiskStress, record)
	config := DefaultConfig()

	var err error
	config.Workers, err = record.Int(FieldWorkers, config.Workers)
	base.Check(err)
	config.Blocks, err = record.Int(FieldBlocks, config.Blocks)
	base.Check(err)
	config.Folder, err = record.String(FieldFolder, config.Folder)
	base.Check(err)
	return newDiskStressFromFlags(base, config)
}

func newDiskStressFromFlags(base *injection.Base, config Config) *diskStress {
	newPool, err := poolFactoryFromFlags()
	base.Check(err)
	d := newDiskStress(base, config, newPool)
	if PoolFlag.Value() == ProcessPool {
		d.workerPath = WorkerPathFlag.Value()
	}
	return d
}

func newDiskStress(base *injection.Base, config Config, newPool PoolFactory) *diskStress {
	if config.Workers <= 0 {
		base.Invalidate("n_workers must be positive, got %d", config.Workers)
	}
	if config.Blocks <= 0 {
		base.Invalidate("n_blocks must be positive, got %d", config.Blocks)
	}
	if config.Folder == "" {
		base.Invalidate("rw_folder cannot be empty")
	}
	return &diskStress{Base: base, config: config, newPool: newPool}
}

// Init implements injection.Injector. It checks rw_folder is a writable
// directory and that the worker binary can be found when workers are processes.
func (d *diskStress) Init() error {
	if d.workerPath != "" {
		if _, err := exec.LookPath(d.workerPath); err != nil {
			return errors.Wrapf(err, "disk worker %q not found", d.workerPath)
		}
	}
	tmp, err := os.CreateTemp(d.config.Folder, "faultload_check_")
	if err != nil {
		return errors.Wrapf(err, "rw_folder %q is not writable", d.config.Folder)
	}
	tmp.Close()
	return os.Remove(tmp.Name())
}

// Name implements injection.Injector.
func (d *diskStress) Name() string {
	return d.FormatName(fmt.Sprintf("nw%d", d.config.Workers))
}

// Parameters implements injection.Injector.
func (d *diskStress) Parameters() injection.Record {
	return injection.Record{
		FieldWorkers: d.config.Workers,
		FieldBlocks:  d.config.Blocks,
		FieldFolder:  d.config.Folder,
	}
}

// Start implements injection.Injector.
func (d *diskStress) Start() error {
	stop := make(chan struct{})
	return d.LaunchPrepared(d.Name(), func() {
		d.mu.Lock()
		d.stop = stop
		d.mu.Unlock()
	}, func() { d.run(stop) })
}

// ForceStop implements injection.Injector. Workers are terminated immediately.
func (d *diskStress) ForceStop() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stop != nil {
		close(d.stop)
		d.stop = nil
	}
	return nil
}

func (d *diskStress) run(stop <-chan struct{}) {
	deadline := time.Now().Add(d.Duration())

	pool := d.newPool(d.config)
	if err := pool.Start(d.config.Workers); err != nil {
		log.Errorf("%s: cannot start workers: %v", d.Name(), err)
		errutil.Warn(pool.Stop(), d.Name()+": cannot stop workers")
		return
	}

	timer := time.NewTimer(time.Until(deadline))
	defer timer.Stop()
	select {
	case <-timer.C:
	case <-stop:
		log.Debugf("%s stopped before its duration elapsed", d.Name())
	}

	errutil.Warn(pool.Stop(), d.Name()+": cannot stop workers")
}
