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
	"github.com/intelsdi-x/faultload/pkg/telemetry"
	"github.com/intelsdi-x/faultload/pkg/utils/err_collection"
	"github.com/intelsdi-x/faultload/pkg/utils/errutil"
)

// LabelColumn is the name of the column holding the row label.
const LabelColumn = "injector"

// Row is one labeled observation.
type Row struct {
	Sample telemetry.Sample
	Label  string
}

// Sink persists rows of a campaign.
type Sink interface {
	// Open prepares the sink for a new campaign, discarding previous content where applicable.
	Open(campaignID string) error
	Write(row Row) error
	Close() error
}

type multiSink []Sink

// NewMultiSink returns Sink writing every row to all sinks in order.
func NewMultiSink(sinks ...Sink) Sink {
	return multiSink(sinks)
}

// Open opens sinks in order. When one fails the sinks opened before it are closed.
func (m multiSink) Open(campaignID string) error {
	for i, sink := range m {
		if err := sink.Open(campaignID); err != nil {
			errutil.Warn(m[:i].Close(), "cannot close sinks after failed open")
			return err
		}
	}
	return nil
}

func (m multiSink) Write(row Row) error {
	for _, sink := range m {
		if err := sink.Write(row); err != nil {
			return err
		}
	}
	return nil
}

func (m multiSink) Close() error {
	var errCollection errcollection.ErrorCollection
	for _, sink := range m {
		errCollection.Add(sink.Close())
	}
	return errCollection.GetErrIfAny()
}
