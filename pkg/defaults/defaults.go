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

package defaults

import "time"

// Batch processing limits.
const (
	// MaxConcurrentClusters caps the number of cluster refresh tasks in
	// flight at once. Both the Kubernetes API calls and the store updates
	// are remote I/O and must not be fired unbounded.
	MaxConcurrentClusters = 20

	// ClusterLaunchRate is the steady-state rate (tasks per second) at which
	// new cluster tasks are started within the concurrency cap.
	ClusterLaunchRate = 50.0

	// ClusterLaunchBurst is the launch rate limiter burst size.
	ClusterLaunchBurst = 20
)

// Kubernetes API timeouts.
const (
	// KubeAPITimeout is the default per-call timeout for namespace listing.
	KubeAPITimeout = 30 * time.Second

	// KubeRetryInitialInterval is the first backoff interval for retrying
	// transient Kubernetes API failures.
	KubeRetryInitialInterval = 500 * time.Millisecond

	// KubeRetryMaxElapsed bounds total time spent retrying a single call.
	// Kept below KubeAPITimeout so the per-call deadline wins.
	KubeRetryMaxElapsed = 20 * time.Second
)

// Record store settings.
const (
	// StoreTimeout is the default timeout for record store reads and writes.
	StoreTimeout = 15 * time.Second
)

// Notification settings.
const (
	// NotifyTimeout bounds report delivery. Delivery is best-effort and its
	// failure is never escalated.
	NotifyTimeout = 30 * time.Second
)

// MappingFile is the default path of the identifier mapping file.
const MappingFile = "identifier_mappings.json"
