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

package cpustress

import (
	"runtime"
	"time"

	"github.com/pkg/errors"
)

// dutyPeriod is the length of one busy plus idle slot.
const dutyPeriod = 100 * time.Millisecond

// runDutyCycle keeps core busy for load fraction of every dutyPeriod until
// duration elapses. It locks the calling goroutine to its OS thread and never
// unlocks it, so the pinned thread is discarded when the goroutine exits.
func runDutyCycle(core int, load float64, duration time.Duration) error {
	runtime.LockOSThread()
	if err := pinToCore(core); err != nil {
		return errors.Wrapf(err, "cannot pin to core %d", core)
	}

	busy := time.Duration(load * float64(dutyPeriod))
	idle := dutyPeriod - busy
	deadline := time.Now().Add(duration)

	for now := time.Now(); now.Before(deadline); now = time.Now() {
		spinUntil(minTime(now.Add(busy), deadline))
		if idle > 0 {
			if remaining := time.Until(deadline); remaining < idle {
				time.Sleep(remaining)
			} else {
				time.Sleep(idle)
			}
		}
	}
	return nil
}

func spinUntil(end time.Time) {
	for time.Now().Before(end) {
	}
}

func minTime(a, b time.Time) time.Time {
	if a.Before(b) {
		return a
	}
	return b
}
