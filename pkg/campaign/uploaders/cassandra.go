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

// Package uploaders holds campaign sinks backed by external databases.
package uploaders

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/gocql/gocql"
	"github.com/intelsdi-x/faultload/pkg/campaign"
	"github.com/intelsdi-x/faultload/pkg/conf"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

const observationsTable = "observations"

var (
	// CassandraAddressFlag enables the Cassandra sink when not empty.
	CassandraAddressFlag = conf.NewStringFlag("cassandra_address", "Comma separated Cassandra hosts storing observations; empty disables the sink", "")
	// CassandraKeyspaceFlag is the keyspace of the observations table.
	CassandraKeyspaceFlag = conf.NewStringFlag("cassandra_keyspace", "Cassandra keyspace for observations", "faultload")
	// CassandraTimeoutFlag is the connect and query timeout.
	CassandraTimeoutFlag = conf.NewDurationFlag("cassandra_timeout", "Cassandra connect and query timeout", 10*time.Second)

	keyspacePattern = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]{0,47}$`)
)

// Config stores Cassandra database configuration.
type Config struct {
	Hosts    []string
	Keyspace string
	Timeout  time.Duration
}

// ConfigFromFlags returns Config from flags and false when the sink is disabled.
func ConfigFromFlags() (Config, bool) {
	address := strings.TrimSpace(CassandraAddressFlag.Value())
	if address == "" {
		return Config{}, false
	}

	var hosts []string
	for _, host := range strings.Split(address, ",") {
		if host = strings.TrimSpace(host); host != "" {
			hosts = append(hosts, host)
		}
	}
	return Config{
		Hosts:    hosts,
		Keyspace: CassandraKeyspaceFlag.Value(),
		Timeout:  CassandraTimeoutFlag.Value(),
	}, true
}

type cassandra struct {
	config     Config
	session    *gocql.Session
	campaignID string
	sequence   int
}

// NewCassandra returns campaign.Sink storing rows in Cassandra. Connection is
// made when the sink is opened.
func NewCassandra(config Config) (campaign.Sink, error) {
	if len(config.Hosts) == 0 {
		return nil, errors.New("no cassandra hosts given")
	}
	if !keyspacePattern.MatchString(config.Keyspace) {
		return nil, errors.Errorf("invalid cassandra keyspace %q", config.Keyspace)
	}
	return &cassandra{config: config}, nil
}

func createKeyspaceStatement(keyspace string) string {
	return fmt.Sprintf("CREATE KEYSPACE IF NOT EXISTS %s WITH replication = {'class': 'SimpleStrategy', 'replication_factor': 1}", keyspace)
}

func createTableStatement(keyspace string) string {
	return fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s.%s (
	campaign_id text,
	seq int,
	time timestamp,
	injector text,
	fields map<text, double>,
	PRIMARY KEY (campaign_id, seq))`, keyspace, observationsTable)
}

func insertStatement(keyspace string) string {
	return fmt.Sprintf("INSERT INTO %s.%s (campaign_id, seq, time, injector, fields) VALUES (?, ?, ?, ?, ?)", keyspace, observationsTable)
}

// Open implements campaign.Sink. Keyspace and table are created when missing.
func (c *cassandra) Open(campaignID string) error {
	cluster := gocql.NewCluster(c.config.Hosts...)
	cluster.ProtoVersion = 4
	cluster.Consistency = gocql.One
	cluster.Timeout = c.config.Timeout
	cluster.ConnectTimeout = c.config.Timeout

	session, err := cluster.CreateSession()
	if err != nil {
		return errors.Wrapf(err, "creating gocql session to %v failed", c.config.Hosts)
	}

	for _, statement := range []string{createKeyspaceStatement(c.config.Keyspace), createTableStatement(c.config.Keyspace)} {
		if err := session.Query(statement).Exec(); err != nil {
			session.Close()
			return errors.Wrapf(err, "cannot prepare keyspace %q", c.config.Keyspace)
		}
	}

	c.session = session
	c.campaignID = campaignID
	c.sequence = 0
	log.Debugf("Storing observations of campaign %q in cassandra %v", campaignID, c.config.Hosts)
	return nil
}

// Write implements campaign.Sink.
func (c *cassandra) Write(row campaign.Row) error {
	if c.session == nil {
		return errors.New("cassandra sink is not open")
	}
	err := c.session.Query(insertStatement(c.config.Keyspace),
		c.campaignID, c.sequence, row.Sample.Time, row.Label, row.Sample.Map()).Exec()
	if err != nil {
		return errors.Wrapf(err, "observation %d saving failed (campaign: %s)", c.sequence, c.campaignID)
	}
	c.sequence++
	return nil
}

// Close implements campaign.Sink.
func (c *cassandra) Close() error {
	if c.session != nil && !c.session.Closed() {
		c.session.Close()
	}
	c.session = nil
	return nil
}
