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
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Refresh cycle metrics
	cycleDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "nsync_cycle_duration_seconds",
			Help:    "Time taken to refresh all active clusters",
			Buckets: []float64{1, 5, 10, 30, 60, 120, 300, 600},
		},
	)

	clusterResultTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nsync_cluster_refresh_total",
			Help: "Total number of per-cluster refresh outcomes",
		},
		[]string{"status"}, // success or error
	)

	clusterNamespaces = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "nsync_cluster_namespaces",
			Help: "Filtered namespace count per cluster from the last cycle",
		},
		[]string{"cluster"},
	)

	activeClusterCount = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "nsync_active_clusters",
			Help: "Number of active cluster records in the last cycle",
		},
	)
)
