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

package record

import "context"

// Store is the cluster record persistence contract. Implementations are
// shared across concurrent cluster tasks; each task only touches its own
// record, so no cross-record locking is required.
type Store interface {
	// FetchActive returns the raw documents of all records with active=true.
	// Failure carries the STORE error code and aborts the whole batch.
	FetchActive(ctx context.Context) ([]Document, error)

	// UpdateByID replaces the document stored under id. A missing id yields
	// (false, nil); the caller decides whether that is fatal. Connection or
	// write failures carry the STORE error code.
	UpdateByID(ctx context.Context, id string, doc Document) (bool, error)
}
