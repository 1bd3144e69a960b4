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

package errors

import "fmt"

// ClusterError is the umbrella error for a single cluster's refresh cycle.
// It carries the cluster name and the pipeline step that failed, so the
// batch report can attribute every failure without parsing message text.
type ClusterError struct {
	Cluster string
	Step    string
	Cause   error
}

// Error implements the error interface.
func (e *ClusterError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("cluster %q: step %s: %v", e.Cluster, e.Step, e.Cause)
	}
	return fmt.Sprintf("cluster %q: step %s failed", e.Cluster, e.Step)
}

// Unwrap returns the step's underlying error.
func (e *ClusterError) Unwrap() error {
	return e.Cause
}

// NewClusterError wraps a step failure with its cluster attribution.
func NewClusterError(cluster, step string, cause error) *ClusterError {
	return &ClusterError{
		Cluster: cluster,
		Step:    step,
		Cause:   cause,
	}
}
