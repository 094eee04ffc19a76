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

package campaign

import (
	"time"

	"github.com/montanaflynn/stats"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

// Summary describes how well the campaign kept its cadence.
type Summary struct {
	Ticks    int
	Overruns int
	// Rank is the percentile rank of Percentile, e.g. 99.
	Rank       decimal.Decimal
	Mean       time.Duration
	Percentile time.Duration
	Max        time.Duration
}

// Summary computes pacing statistics of observations captured so far.
// Rank must be within (0, 100].
func (c *Campaign) Summary(rank decimal.Decimal) (Summary, error) {
	summary := Summary{
		Ticks:    len(c.workTimes),
		Overruns: c.overruns,
		Rank:     rank,
	}
	if rank.LessThanOrEqual(decimal.Zero) || rank.GreaterThan(decimal.New(100, 0)) {
		return summary, errors.Errorf("percentile rank must be within (0, 100], got %s", rank)
	}
	if len(c.workTimes) == 0 {
		return summary, nil
	}

	data := stats.Float64Data(c.workTimes)
	mean, err := stats.Mean(data)
	if err != nil {
		return summary, errors.Wrap(err, "cannot compute mean tick work")
	}
	percent, _ := rank.Float64()
	percentile, err := stats.PercentileNearestRank(data, percent)
	if err != nil {
		return summary, errors.Wrapf(err, "cannot compute %s percentile of tick work", rank)
	}
	max, err := stats.Max(data)
	if err != nil {
		return summary, errors.Wrap(err, "cannot compute max tick work")
	}

	summary.Mean = seconds(mean)
	summary.Percentile = seconds(percentile)
	summary.Max = seconds(max)
	return summary, nil
}

// Log prints the summary.
func (s Summary) Log() {
	log.WithFields(log.Fields{
		"ticks":               s.Ticks,
		"overruns":            s.Overruns,
		"mean":                s.Mean,
		"p" + s.Rank.String(): s.Percentile,
		"max":                 s.Max,
	}).Info("Campaign pacing")
}

func seconds(value float64) time.Duration {
	return time.Duration(value * float64(time.Second))
}
