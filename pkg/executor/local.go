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
	"os/exec"
	"sync"
	"syscall"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

const (
	localTmpFilesPrefix = "faultload_local_executor_"
	killTimeout         = 5 * time.Second
)

// Local provisioning is responsible for providing the execution environment
// on local machine via exec.Command.
// It runs command as current user, in its own process group.
type Local struct{}

// NewLocal returns a Local instance.
func NewLocal() Local {
	return Local{}
}

// Name returns user-friendly name of executor.
func (Local) Name() string {
	return "Local Executor"
}

// Execute runs the command given as input.
// Returned TaskHandle is able to stop & monitor the provisioned process.
func (l Local) Execute(command string) (TaskHandle, error) {
	log.Debug("Starting ", command)

	stdoutFile, err := ioutil.TempFile(os.TempDir(), localTmpFilesPrefix+"stdout_")
	if err != nil {
		return nil, errors.Wrap(err, "cannot create stdout file")
	}
	stderrFile, err := ioutil.TempFile(os.TempDir(), localTmpFilesPrefix+"stderr_")
	if err != nil {
		stdoutFile.Close()
		os.Remove(stdoutFile.Name())
		return nil, errors.Wrap(err, "cannot create stderr file")
	}

	cmd := exec.Command("sh", "-c", command)
	// Separate process group so Stop can signal the command and all of its children.
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.Stdout = stdoutFile
	cmd.Stderr = stderrFile

	if err := cmd.Start(); err != nil {
		stdoutFile.Close()
		stderrFile.Close()
		os.Remove(stdoutFile.Name())
		os.Remove(stderrFile.Name())
		return nil, errors.Wrapf(err, "cannot start %q", command)
	}
	log.Debug("Started with pid ", cmd.Process.Pid)

	t := &localTaskHandle{
		command:        command,
		pid:            cmd.Process.Pid,
		stdoutFile:     stdoutFile,
		stderrFile:     stderrFile,
		waitEndChannel: make(chan struct{}),
	}

	go func() {
		defer close(t.waitEndChannel)

		// Wait returns an error for non-zero exit codes as well; the state is
		// inspected below in every case.
		cmd.Wait()

		exitCode := -1
		if status, ok := cmd.ProcessState.Sys().(syscall.WaitStatus); ok {
			if status.Exited() {
				exitCode = status.ExitStatus()
			} else {
				exitCode = -int(status.Signal())
			}
		}
		t.setExitCode(exitCode)

		log.Debug("Ended ", command, " with status code: ", exitCode)
	}()

	return t, nil
}

// localTaskHandle implements TaskHandle interface.
type localTaskHandle struct {
	command        string
	pid            int
	stdoutFile     *os.File
	stderrFile     *os.File
	waitEndChannel chan struct{}

	mu       sync.Mutex
	exitCode int
}

func (t *localTaskHandle) setExitCode(code int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.exitCode = code
}

// isTerminated checks if waitEndChannel is closed. If it is closed, it means
// that wait ended and task is in terminated state.
func (t *localTaskHandle) isTerminated() bool {
	select {
	case <-t.waitEndChannel:
		return true
	default:
		return false
	}
}

// Stop sends SIGKILL to the whole process group of the task.
func (t *localTaskHandle) Stop() error {
	if t.isTerminated() {
		return nil
	}

	// The kill syscall interprets a negated PID N as the process group N belongs to.
	log.Debug("Sending SIGKILL to process group ", -t.pid)
	if err := syscall.Kill(-t.pid, syscall.SIGKILL); err != nil && err != syscall.ESRCH {
		return errors.Wrapf(err, "cannot kill %q", t.command)
	}

	if !t.Wait(killTimeout) {
		return errors.Errorf("cannot terminate %q within %s", t.command, killTimeout)
	}
	return nil
}

// Status returns a state of the task.
func (t *localTaskHandle) Status() TaskState {
	if !t.isTerminated() {
		return RUNNING
	}
	return TERMINATED
}

// ExitCode returns the exit code, or the negated signal number when the
// task was killed.
func (t *localTaskHandle) ExitCode() (int, error) {
	if !t.isTerminated() {
		return -1, errors.New("task is not terminated")
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	return t.exitCode, nil
}

// Wait waits for the command to finish with the given timeout time.
func (t *localTaskHandle) Wait(timeout time.Duration) bool {
	if t.isTerminated() {
		return true
	}

	var timeoutChannel <-chan time.Time
	if timeout != 0 {
		timeoutChannel = time.After(timeout)
	}

	select {
	case <-t.waitEndChannel:
		return true
	case <-timeoutChannel:
		return false
	}
}

// Clean closes files to which stdout and stderr of executed command was written.
func (t *localTaskHandle) Clean() error {
	if err := t.stdoutFile.Close(); err != nil {
		return errors.Wrapf(err, "cannot close %s", t.stdoutFile.Name())
	}
	if err := t.stderrFile.Close(); err != nil {
		return errors.Wrapf(err, "cannot close %s", t.stderrFile.Name())
	}
	return nil
}

// EraseOutput removes task's stdout & stderr files.
func (t *localTaskHandle) EraseOutput() error {
	for _, name := range []string{t.stdoutFile.Name(), t.stderrFile.Name()} {
		if err := os.Remove(name); err != nil && !os.IsNotExist(err) {
			return errors.Wrapf(err, "cannot remove %s", name)
		}
	}
	return nil
}
