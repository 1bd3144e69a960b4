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

package tokensource

import (
	"context"
	"time"

	"github.com/UnderAOverE/nsync/pkg/errors"
	"github.com/UnderAOverE/nsync/pkg/record"
)

// Credential is a freshly acquired bearer token with optional expiry.
type Credential struct {
	// Token is the plaintext bearer token. Never logged.
	Token string

	// ExpiresAt is zero when the source cannot state an expiry; the caller
	// then preserves whatever advisory value the record already carries.
	ExpiresAt time.Time
}

// Source acquires a bearer token for a cluster that has none stored. The
// processor treats a Source failure like a decryption failure: that
// cluster's cycle aborts, the batch continues.
type Source interface {
	Acquire(ctx context.Context, r *record.ClusterRecord) (Credential, error)
}

// Static serves tokens from a fixed per-cluster table. Used in tests and
// for configuration-provided tokens.
type Static struct {
	// Tokens maps cluster name to credential.
	Tokens map[string]Credential
}

// Acquire implements Source.
func (s *Static) Acquire(_ context.Context, r *record.ClusterRecord) (Credential, error) {
	cred, ok := s.Tokens[r.ClusterName]
	if !ok {
		return Credential{}, errors.Newf(errors.ErrCodeTokenAcquisition,
			"no token configured for cluster %q", r.ClusterName)
	}
	return cred, nil
}

// Disabled is a Source for deployments with no acquisition hook wired:
// every call fails, so clusters without a stored token fail their cycle
// with a clear reason instead of a nil-source panic.
type Disabled struct{}

// Acquire implements Source.
func (Disabled) Acquire(_ context.Context, r *record.ClusterRecord) (Credential, error) {
	return Credential{}, errors.Newf(errors.ErrCodeTokenAcquisition,
		"cluster %q has no stored token and no acquisition hook is configured", r.ClusterName)
}
