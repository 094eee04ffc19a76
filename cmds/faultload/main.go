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
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/intelsdi-x/faultload/pkg/campaign"
	"github.com/intelsdi-x/faultload/pkg/campaign/uploaders"
	"github.com/intelsdi-x/faultload/pkg/conf"
	"github.com/intelsdi-x/faultload/pkg/experiment"
	"github.com/intelsdi-x/faultload/pkg/experiment/logger"
	"github.com/intelsdi-x/faultload/pkg/injection"
	"github.com/intelsdi-x/faultload/pkg/injection/cpustress"
	"github.com/intelsdi-x/faultload/pkg/injection/factory"
	"github.com/intelsdi-x/faultload/pkg/telemetry"
	"github.com/intelsdi-x/faultload/pkg/utils/errutil"
	"github.com/intelsdi-x/faultload/pkg/utils/random"
	"github.com/intelsdi-x/faultload/pkg/visualization"
	"github.com/nu7hatch/gouuid"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"gopkg.in/cheggaaa/pb.v1"
)

const (
	exInterrupted = 130
	// drainGrace is added to the injection duration when waiting for
	// injections still running at the end of the campaign.
	drainGrace = 10 * time.Second
)

var (
	seedFlag = conf.NewIntFlag("random_seed", "Seed of random draws; 0 uses current time", 0)
	planFlag = conf.NewBoolFlag("plan", "Print the injector queue and exit", false)
	appName  = os.Args[0]
)

func main() {
	// Preparing application - setting name, help, parsing flags etc.
	conf.SetAppName("faultload")
	conf.SetHelp("Injects CPU, memory and disk stress on this host in a sequence of injections " +
		"interleaved with rest periods, and records host telemetry labeled with the active injection.")
	errorLevelEnabled := experiment.Configure()

	// Build the injector queue.
	src := random.NewSource(int64(seedFlag.Value()))
	config := campaign.ConfigFromFlags("")
	injectorFactory := factory.New(src, config.InjectionDurationMs(), cpustress.LoadJitterFlag.Value())
	injectors, err := injectorFactory.BuildFromInput(factory.InjectorsFlag.Value(), factory.CountFlag.Value())
	errutil.CheckWithContext(err, "Cannot build injectors")
	if factory.ShuffleFlag.Value() {
		factory.Shuffle(src, injectors)
	}

	if planFlag.Value() {
		visualization.NewPlanTable(injectors).Draw(os.Stdout)
		return
	}

	// Generate a campaign ID and set up logging.
	uid, err := uuid.NewV4()
	errutil.CheckWithContext(err, "Cannot generate campaign ID")
	config.ID = uid.String()
	outputDir := campaign.OutputDirFlag.Value()
	logger.Initialize(appName, outputDir, config.ID)

	sampler, err := telemetry.NewHostSampler()
	errutil.CheckWithContext(err, "Cannot create telemetry sampler")
	logrus.Debugf("Sampling %d cores", sampler.Cores())

	// Sinks.
	csvSink := campaign.NewCSVSink(filepath.Join(outputDir, campaign.OutputFileFlag.Value()))
	sinks := []campaign.Sink{csvSink}
	if cassandraConfig, enabled := uploaders.ConfigFromFlags(); enabled {
		cassandraSink, err := uploaders.NewCassandra(cassandraConfig)
		errutil.CheckWithContext(err, "Cannot create cassandra sink")
		sinks = append(sinks, cassandraSink)
	}

	// Metrics.
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := campaign.NewMetrics(registry)
	if address := campaign.MetricsAddressFlag.Value(); address != "" {
		go serveMetrics(address, registry)
	}

	rank, err := campaign.PacingPercentile()
	errutil.CheckWithContext(err, "Cannot read pacing percentile")

	c, err := campaign.New(config, injectors, sampler, campaign.NewMultiSink(sinks...), src)
	errutil.CheckWithContext(err, "Cannot create campaign")
	c.WithMetrics(metrics)

	// Initialize progress bar when log level is error.
	var bar *pb.ProgressBar
	if errorLevelEnabled {
		bar = pb.StartNew(len(injectors))
		bar.ShowCounters = true
		bar.ShowTimeLeft = true
		c.OnInjection(func(injection.Injector) { bar.Increment() })
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err = c.Run(ctx)
	stop()
	if bar != nil {
		bar.Finish()
	}

	// Disk workers live in their own process groups and must not outlive us.
	injectionDuration := time.Duration(config.InjectionDurationMs()) * time.Millisecond
	if !c.AwaitStarted(injectionDuration + drainGrace) {
		logrus.Warn("Some injections did not finish before exit")
	}

	summary, summaryErr := c.Summary(rank)
	errutil.Warn(summaryErr, "Cannot compute pacing summary")
	summary.Log()

	if errors.Cause(err) == context.Canceled {
		logrus.Warnf("Campaign %s interrupted, partial observations in %s", config.ID, csvSink.Path())
		os.Exit(exInterrupted)
	}
	errutil.CheckWithContext(err, "Campaign failed")

	logrus.Infof("Observations written to %s", csvSink.Path())
}

func serveMetrics(address string, registry *prometheus.Registry) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	logrus.Infof("Serving metrics on %s/metrics", address)
	errutil.Warn(http.ListenAndServe(address, mux), "Metrics endpoint stopped")
}
