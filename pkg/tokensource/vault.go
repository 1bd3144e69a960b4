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
	"fmt"
	"time"

	vault "github.com/hashicorp/vault-client-go"

	"github.com/UnderAOverE/nsync/pkg/errors"
	"github.com/UnderAOverE/nsync/pkg/record"
)

// Vault field names read from each cluster's KV v2 secret.
const (
	vaultTokenField     = "token"
	vaultExpiresAtField = "expires_at"
	vaultTTLField       = "ttl_seconds"
)

// Vault acquires bearer tokens from a HashiCorp Vault KV v2 mount. One
// secret per cluster, addressed by a path template keyed on cluster name,
// e.g. mount "secret", template "clusters/%s/k8s".
type Vault struct {
	client       *vault.Client
	mount        string
	pathTemplate string
}

// NewVault builds a Vault source. The vault token authenticates this
// process to Vault; it is unrelated to the cluster bearer tokens served.
func NewVault(address, vaultToken, mount, pathTemplate string) (*Vault, error) {
	client, err := vault.New(
		vault.WithAddress(address),
		vault.WithRequestTimeout(30*time.Second),
	)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeConfiguration, "failed to build vault client", err)
	}
	if err := client.SetToken(vaultToken); err != nil {
		return nil, errors.Wrap(errors.ErrCodeConfiguration, "failed to set vault token", err)
	}
	return &Vault{
		client:       client,
		mount:        mount,
		pathTemplate: pathTemplate,
	}, nil
}

// Acquire implements Source.
func (v *Vault) Acquire(ctx context.Context, r *record.ClusterRecord) (Credential, error) {
	path := fmt.Sprintf(v.pathTemplate, r.ClusterName)

	resp, err := v.client.Secrets.KvV2Read(ctx, path, vault.WithMountPath(v.mount))
	if err != nil {
		return Credential{}, errors.WrapWithContext(errors.ErrCodeTokenAcquisition,
			"failed to read cluster secret from vault", err,
			map[string]any{"cluster": r.ClusterName, "path": path})
	}
	if resp.Data.Data == nil {
		return Credential{}, errors.Newf(errors.ErrCodeTokenAcquisition,
			"vault secret for cluster %q contained no data", r.ClusterName)
	}

	token, ok := resp.Data.Data[vaultTokenField].(string)
	if !ok || token == "" {
		return Credential{}, errors.Newf(errors.ErrCodeTokenAcquisition,
			"vault secret for cluster %q has no %q field", r.ClusterName, vaultTokenField)
	}

	return Credential{
		Token:     token,
		ExpiresAt: expiryFrom(resp.Data.Data),
	}, nil
}

// expiryFrom derives the token expiry from the secret payload when it can
// state one: an absolute expires_at (RFC 3339) wins over a relative
// ttl_seconds. Absent both, the credential has no known expiry.
func expiryFrom(data map[string]any) time.Time {
	if raw, ok := data[vaultExpiresAtField].(string); ok {
		if t, err := time.Parse(time.RFC3339, raw); err == nil {
			return t
		}
	}
	switch ttl := data[vaultTTLField].(type) {
	case float64:
		if ttl > 0 {
			return time.Now().UTC().Add(time.Duration(ttl) * time.Second)
		}
	case string:
		if d, err := time.ParseDuration(ttl + "s"); err == nil && d > 0 {
			return time.Now().UTC().Add(d)
		}
	}
	return time.Time{}
}
