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

	"github.com/intelsdi-x/faultload/pkg/conf"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

var (
	// TickPeriodFlag is the target time between two observations.
	TickPeriodFlag = conf.NewDurationFlag("observation_interval", "Target time between two observations", 500*time.Millisecond)
	// ObservationsPerInjectionFlag is the number of observations of every injection.
	ObservationsPerInjectionFlag = conf.NewIntFlag("observations_per_injection", "Number of observations labeled with each injection", 80)
	// ObservationsBetweenInjectionsFlag is the nominal number of rest observations.
	ObservationsBetweenInjectionsFlag = conf.NewIntFlag("observations_between_injections", "Nominal number of rest observations before each injection", 140)
	// OutputDirFlag is the directory for campaign output.
	OutputDirFlag = conf.NewStringFlag("output_dir", "Directory for campaign output and logs", "output_folder")
	// OutputFileFlag is the CSV file name inside OutputDirFlag.
	OutputFileFlag = conf.NewStringFlag("output_file", "Name of the labeled observations CSV file", "monitored_data.csv")
	// MetricsAddressFlag enables the prometheus endpoint when not empty.
	MetricsAddressFlag = conf.NewStringFlag("metrics_address", "Address for the prometheus /metrics endpoint, e.g. :9100; empty disables it", "")
	// PacingPercentileFlag is the percentile rank reported in the pacing summary.
	PacingPercentileFlag = conf.NewStringFlag("pacing_percentile", "Percentile rank of tick work time reported at the end of the campaign", "99")
)

// ConfigFromFlags returns Config built from flags.
func ConfigFromFlags(id string) Config {
	return Config{
		ID:                            id,
		TickPeriod:                    TickPeriodFlag.Value(),
		ObservationsPerInjection:      ObservationsPerInjectionFlag.Value(),
		ObservationsBetweenInjections: ObservationsBetweenInjectionsFlag.Value(),
	}
}

// PacingPercentile returns PacingPercentileFlag as decimal.
func PacingPercentile() (decimal.Decimal, error) {
	rank, err := decimal.NewFromString(PacingPercentileFlag.Value())
	if err != nil {
		return decimal.Zero, errors.Wrapf(err, "invalid pacing percentile %q", PacingPercentileFlag.Value())
	}
	return rank, nil
}
