// Copyright (c) 2025, NVIDIA CORPORATION.  All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package orchestrator

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/UnderAOverE/nsync/pkg/defaults"
	"github.com/UnderAOverE/nsync/pkg/errors"
	"github.com/UnderAOverE/nsync/pkg/notify"
	"github.com/UnderAOverE/nsync/pkg/processor"
	"github.com/UnderAOverE/nsync/pkg/record"
)

// Report is the outcome of one full refresh cycle.
type Report struct {
	// RunID ties every log line and the alert to one cycle.
	RunID string

	// Processed is the number of clusters whose refresh was actually
	// started. It is less than the fetched count only when the cycle was
	// canceled mid-launch.
	Processed int

	// Results holds one entry per processed cluster, in completion order.
	Results []processor.Result

	// Warnings lists clusters that ran with an empty filter list.
	Warnings []string

	// Elapsed is the wall time of the whole cycle.
	Elapsed time.Duration
}

// Succeeded returns the results of clusters that refreshed cleanly.
func (r *Report) Succeeded() []processor.Result {
	return r.filter(true)
}

// Failed returns the results of clusters whose cycle aborted.
func (r *Report) Failed() []processor.Result {
	return r.filter(false)
}

func (r *Report) filter(succeeded bool) []processor.Result {
	out := make([]processor.Result, 0, len(r.Results))
	for _, res := range r.Results {
		if res.Succeeded() == succeeded {
			out = append(out, res)
		}
	}
	return out
}

// Orchestrator runs the refresh cycle across every active cluster record
// under a bounded concurrency limit, then aggregates outcomes into a single
// alert when anything failed. Success is silent.
type Orchestrator struct {
	store       record.Store
	proc        *processor.Processor
	notifier    notify.Notifier
	concurrency int
	launchRate  *rate.Limiter
}

// Option customizes an Orchestrator.
type Option func(*Orchestrator)

// WithConcurrency caps the number of in-flight cluster refreshes.
func WithConcurrency(n int) Option {
	return func(o *Orchestrator) {
		if n > 0 {
			o.concurrency = n
		}
	}
}

// WithLaunchRate overrides the pacing of goroutine launches, smoothing the
// initial burst of API and store traffic across large fleets.
func WithLaunchRate(perSecond float64, burst int) Option {
	return func(o *Orchestrator) {
		o.launchRate = rate.NewLimiter(rate.Limit(perSecond), burst)
	}
}

// New creates an Orchestrator over the given collaborators.
func New(store record.Store, proc *processor.Processor, notifier notify.Notifier, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		store:       store,
		proc:        proc,
		notifier:    notifier,
		concurrency: defaults.MaxConcurrentClusters,
		launchRate:  rate.NewLimiter(rate.Limit(defaults.ClusterLaunchRate), defaults.ClusterLaunchBurst),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Run executes one full refresh cycle. A store fetch failure aborts the
// cycle with a critical alert and a non-nil error; per-cluster failures do
// not; they are collected into the report and one aggregated alert.
func (o *Orchestrator) Run(ctx context.Context) (*Report, error) {
	start := time.Now()
	report := &Report{RunID: uuid.NewString()}

	slog.Info("refresh cycle starting", "run", report.RunID)

	docs, err := o.store.FetchActive(ctx)
	if err != nil {
		werr := errors.Wrap(errors.ErrCodeStore, "failed to fetch active cluster records", err)
		o.alert(ctx, "cluster refresh aborted",
			fmt.Sprintf("run %s could not fetch active cluster records: %v", report.RunID, err))
		return nil, werr
	}

	activeClusterCount.Set(float64(len(docs)))
	if len(docs) == 0 {
		report.Elapsed = time.Since(start)
		slog.Info("refresh cycle complete, no active clusters", "run", report.RunID)
		return report, nil
	}

	var mu sync.Mutex
	var g errgroup.Group
	g.SetLimit(o.concurrency)

	launched := 0
	for _, doc := range docs {
		if err := o.launchRate.Wait(ctx); err != nil {
			// Context canceled mid-launch; already-launched clusters
			// finish and report, the rest never start.
			slog.Warn("cycle canceled before all clusters launched",
				"run", report.RunID,
				"launched", launched,
				"fetched", len(docs))
			break
		}
		launched++
		g.Go(func() error {
			res := o.proc.Process(ctx, doc)
			mu.Lock()
			report.Results = append(report.Results, res)
			mu.Unlock()
			return nil
		})
	}
	report.Processed = launched

	// Process never returns an error; Wait gathers completions only.
	_ = g.Wait()

	report.Elapsed = time.Since(start)
	o.record(report)

	if failed := report.Failed(); len(failed) > 0 {
		o.alert(ctx, fmt.Sprintf("cluster refresh: %d of %d clusters failed", len(failed), report.Processed),
			failureBody(report))
	}

	slog.Info("refresh cycle complete",
		"run", report.RunID,
		"processed", report.Processed,
		"succeeded", len(report.Succeeded()),
		"failed", len(report.Failed()),
		"elapsed", report.Elapsed.Round(time.Millisecond).String())

	return report, nil
}

// record updates cycle metrics and the per-cluster warning list.
func (o *Orchestrator) record(report *Report) {
	cycleDuration.Observe(report.Elapsed.Seconds())
	for _, res := range report.Results {
		if res.Succeeded() {
			clusterResultTotal.WithLabelValues("success").Inc()
			clusterNamespaces.WithLabelValues(res.Cluster).Set(float64(res.Namespaces))
		} else {
			clusterResultTotal.WithLabelValues("error").Inc()
		}
		if res.NoFilters {
			report.Warnings = append(report.Warnings, res.Cluster)
		}
	}
}

// alert sends a notification, logging a delivery failure without escalating.
func (o *Orchestrator) alert(ctx context.Context, subject, body string) {
	nctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), defaults.NotifyTimeout)
	defer cancel()
	if err := o.notifier.Notify(nctx, subject, body); err != nil {
		slog.Error("failed to deliver alert", "subject", subject, "error", err)
	}
}

// failureBody renders the aggregated alert: one line per failed cluster with
// its reason, plus any empty-filter warnings.
func failureBody(report *Report) string {
	var b strings.Builder
	fmt.Fprintf(&b, "run %s: %d of %d clusters failed to refresh\n\n",
		report.RunID, len(report.Failed()), report.Processed)
	for _, res := range report.Failed() {
		fmt.Fprintf(&b, "  - %s: %v\n", res.Cluster, res.Err)
	}
	if len(report.Warnings) > 0 {
		fmt.Fprintf(&b, "\nclusters running without namespace filters: %s\n",
			strings.Join(report.Warnings, ", "))
	}
	return b.String()
}
