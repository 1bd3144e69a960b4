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

package processor

import (
	"context"
	"log/slog"
	"time"

	"k8s.io/utils/clock"

	"github.com/UnderAOverE/nsync/pkg/cipher"
	"github.com/UnderAOverE/nsync/pkg/defaults"
	"github.com/UnderAOverE/nsync/pkg/errors"
	"github.com/UnderAOverE/nsync/pkg/kube"
	"github.com/UnderAOverE/nsync/pkg/mapper"
	"github.com/UnderAOverE/nsync/pkg/record"
	"github.com/UnderAOverE/nsync/pkg/tokensource"
)

// Pipeline step names carried on failures and used in logs.
const (
	StepNormalize = "normalize"
	StepToken     = "token"
	StepList      = "list-namespaces"
	StepEncrypt   = "encrypt"
	StepPersist   = "persist"
)

// Result is one cluster's refresh outcome. Failures are values here; a
// Process call never returns an error and never panics across the task
// boundary, so one bad cluster cannot take the batch down with it.
type Result struct {
	// Cluster is the display name used in reports.
	Cluster string

	// Namespaces is the post-filter namespace count on success.
	Namespaces int

	// NoFilters is set when the record carried an empty filter list and
	// every namespace was included. Usually a misconfiguration.
	NoFilters bool

	// Err is nil on success; otherwise a *errors.ClusterError naming the
	// failed step.
	Err error
}

// Succeeded reports whether the cluster's cycle completed.
func (r Result) Succeeded() bool {
	return r.Err == nil
}

// Processor runs the per-cluster refresh cycle: normalize keys, obtain the
// bearer token, list namespaces, filter, re-encrypt, persist.
type Processor struct {
	mapper  *mapper.Mapper
	lister  kube.NamespaceLister
	source  tokensource.Source
	store   record.Store
	clock   clock.PassiveClock
	timeout time.Duration
}

// Option customizes a Processor.
type Option func(*Processor)

// WithClock overrides the wall clock, letting tests pin lastRefreshedAt.
func WithClock(c clock.PassiveClock) Option {
	return func(p *Processor) {
		p.clock = c
	}
}

// WithAPITimeout overrides the per-cluster Kubernetes call timeout.
func WithAPITimeout(d time.Duration) Option {
	return func(p *Processor) {
		p.timeout = d
	}
}

// New creates a Processor over the given collaborators.
func New(m *mapper.Mapper, lister kube.NamespaceLister, source tokensource.Source, store record.Store, opts ...Option) *Processor {
	p := &Processor{
		mapper:  m,
		lister:  lister,
		source:  source,
		store:   store,
		clock:   clock.RealClock{},
		timeout: defaults.KubeAPITimeout,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Process runs one cluster's refresh cycle over a raw stored document.
// Steps run strictly in order; the first failure short-circuits the rest
// and becomes the cluster's outcome.
func (p *Processor) Process(ctx context.Context, doc record.Document) Result {
	canonical, _ := p.mapper.Reverse(doc).(record.Document)
	if canonical == nil {
		canonical = doc
	}

	r, err := record.FromDocument(canonical)
	if err != nil {
		return p.fail(displayName(doc), StepNormalize, err)
	}
	name := r.DisplayName()

	token, expiresAt, err := p.obtainToken(ctx, r)
	if err != nil {
		return p.failRecord(r, StepToken, err)
	}

	names, err := p.lister.ListNamespaces(ctx, kube.Endpoint{
		ClusterName:      name,
		APIURL:           r.APIURL,
		CACertificatePEM: r.CACertificatePEM,
		BearerToken:      token,
		Timeout:          p.timeout,
	})
	if err != nil {
		return p.failRecord(r, StepList, err)
	}

	noFilters := len(r.NamespaceFetchFilters) == 0
	if noFilters {
		slog.Warn("no namespace filters configured, including all namespaces",
			"cluster", name,
			"namespaces", len(names))
	}
	filtered := FilterNamespaces(names, r.NamespaceFetchFilters)

	// Fresh ciphertext every cycle even when the plaintext is unchanged;
	// the cipher's random nonce makes each sealing unique.
	sealed, err := cipher.Encrypt(r.FernetKey, token)
	if err != nil {
		return p.failRecord(r, StepEncrypt, err)
	}

	r.SetNamespaces(filtered)
	r.FernetToken = sealed
	if !expiresAt.IsZero() {
		r.TokenExpirationEpochSeconds = expiresAt.Unix()
	}
	r.LastRefreshedAt = p.clock.Now()

	meaningful, _ := p.mapper.Forward(r.Document()).(record.Document)
	if meaningful == nil {
		meaningful = r.Document()
	}

	updated, err := p.store.UpdateByID(ctx, r.ID, meaningful)
	if err != nil {
		return p.fail(name, StepPersist, err)
	}
	if !updated {
		return p.fail(name, StepPersist, errors.Newf(errors.ErrCodeStore,
			"no record matched id %q on update", r.ID))
	}

	slog.Debug("cluster refreshed",
		"cluster", name,
		"namespaces", len(filtered))

	return Result{
		Cluster:    name,
		Namespaces: len(filtered),
		NoFilters:  noFilters,
	}
}

// obtainToken decrypts the stored token when both key and ciphertext exist,
// and otherwise acquires a fresh one, bootstrapping a cipher key for
// genuinely new clusters. An acquisition failure is treated exactly like a
// decryption failure.
func (p *Processor) obtainToken(ctx context.Context, r *record.ClusterRecord) (string, time.Time, error) {
	if r.FernetKey != "" && r.FernetToken != "" {
		token, err := cipher.Decrypt(r.FernetKey, r.FernetToken)
		if err != nil {
			return "", time.Time{}, err
		}
		return token, time.Time{}, nil
	}

	cred, err := p.source.Acquire(ctx, r)
	if err != nil {
		return "", time.Time{}, err
	}
	if r.FernetKey == "" {
		key, err := cipher.GenerateKey()
		if err != nil {
			return "", time.Time{}, err
		}
		r.FernetKey = key
	}
	return cred.Token, cred.ExpiresAt, nil
}

func (p *Processor) fail(cluster, step string, cause error) Result {
	err := errors.NewClusterError(cluster, step, cause)
	slog.Error("cluster refresh failed",
		"cluster", cluster,
		"step", step,
		"error", cause)
	return Result{Cluster: cluster, Err: err}
}

// failRecord stamps the attempt time on the in-memory record and reports
// the failure. A failed cluster is never written back: the store keeps the
// last successful state untouched.
func (p *Processor) failRecord(r *record.ClusterRecord, step string, cause error) Result {
	r.LastRefreshedAt = p.clock.Now()
	return p.fail(r.DisplayName(), step, cause)
}

// displayName extracts a best-effort cluster name from a document that
// failed to decode, so even malformed records get an attributable outcome.
func displayName(doc record.Document) string {
	if name, ok := doc[record.FieldClusterName].(string); ok && name != "" {
		return name
	}
	if id, ok := doc[record.FieldID].(string); ok && id != "" {
		return "id:" + id
	}
	return "unknown"
}
