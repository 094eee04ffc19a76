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
	"encoding/csv"
	"os"
	"path/filepath"
	"strconv"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// CSVSink writes rows to a CSV file. The header is fixed by the first row:
// its field names followed by LabelColumn.
type CSVSink struct {
	path string

	file    *os.File
	writer  *csv.Writer
	header  []string
	columns map[string]int
	warned  map[string]bool
}

// NewCSVSink is a constructor of CSVSink.
func NewCSVSink(path string) *CSVSink {
	return &CSVSink{path: path}
}

// Path returns the output file path.
func (s *CSVSink) Path() string {
	return s.path
}

// Header returns the header written so far, nil before the first row.
func (s *CSVSink) Header() []string {
	return s.header
}

// Open creates or truncates the output file and its parent directory.
func (s *CSVSink) Open(campaignID string) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return errors.Wrapf(err, "cannot create directory for %q", s.path)
	}
	file, err := os.Create(s.path)
	if err != nil {
		return errors.Wrapf(err, "cannot create %q", s.path)
	}

	s.file = file
	s.writer = csv.NewWriter(file)
	s.header = nil
	s.columns = nil
	s.warned = map[string]bool{}
	log.Debugf("Writing observations of campaign %q to %s", campaignID, s.path)
	return nil
}

// Write appends row. Fields missing from the header leave empty cells and
// fields not in the header are dropped.
func (s *CSVSink) Write(row Row) error {
	if s.writer == nil {
		return errors.New("csv sink is not open")
	}

	if s.header == nil {
		s.header = append(row.Sample.Names(), LabelColumn)
		s.columns = make(map[string]int, len(s.header))
		for i, name := range s.header {
			s.columns[name] = i
		}
		if err := s.writer.Write(s.header); err != nil {
			return errors.Wrap(err, "cannot write csv header")
		}
	}

	record := make([]string, len(s.header))
	for _, field := range row.Sample.Fields {
		index, ok := s.columns[field.Name]
		if !ok || field.Name == LabelColumn {
			if !s.warned[field.Name] {
				log.Warnf("Field %q is not part of the output header and is dropped", field.Name)
				s.warned[field.Name] = true
			}
			continue
		}
		record[index] = strconv.FormatFloat(field.Value, 'f', -1, 64)
	}
	record[len(record)-1] = row.Label

	if err := s.writer.Write(record); err != nil {
		return errors.Wrap(err, "cannot write csv row")
	}
	s.writer.Flush()
	return errors.Wrap(s.writer.Error(), "cannot flush csv row")
}

// Close flushes and closes the output file.
func (s *CSVSink) Close() error {
	if s.file == nil {
		return nil
	}
	s.writer.Flush()
	flushErr := s.writer.Error()
	closeErr := s.file.Close()
	s.file = nil
	s.writer = nil
	if flushErr != nil {
		return errors.Wrap(flushErr, "cannot flush csv")
	}
	return errors.Wrapf(closeErr, "cannot close %q", s.path)
}
