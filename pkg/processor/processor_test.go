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
	stderrors "errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	clocktesting "k8s.io/utils/clock/testing"

	"github.com/UnderAOverE/nsync/pkg/cipher"
	"github.com/UnderAOverE/nsync/pkg/errors"
	"github.com/UnderAOverE/nsync/pkg/kube"
	"github.com/UnderAOverE/nsync/pkg/mapper"
	"github.com/UnderAOverE/nsync/pkg/record"
	"github.com/UnderAOverE/nsync/pkg/tokensource"
)

type fakeLister struct {
	names    []string
	err      error
	endpoint kube.Endpoint
}

func (f *fakeLister) ListNamespaces(_ context.Context, ep kube.Endpoint) ([]string, error) {
	f.endpoint = ep
	if f.err != nil {
		return nil, f.err
	}
	return f.names, nil
}

type fakeStore struct {
	updatedID   string
	updatedDoc  record.Document
	updateCalls int
	miss        bool
	err         error
}

func (f *fakeStore) FetchActive(context.Context) ([]record.Document, error) {
	return nil, nil
}

func (f *fakeStore) UpdateByID(_ context.Context, id string, doc record.Document) (bool, error) {
	f.updateCalls++
	if f.err != nil {
		return false, f.err
	}
	f.updatedID = id
	f.updatedDoc = doc
	return !f.miss, nil
}

func testMapper(t *testing.T) *mapper.Mapper {
	t.Helper()
	m, err := mapper.NewFromTable(map[string]any{
		"identifier_a": "sector",
		"identifier_b": "region",
	})
	require.NoError(t, err)
	return m
}

func testDocument(t *testing.T) (record.Document, string) {
	t.Helper()
	key, err := cipher.GenerateKey()
	require.NoError(t, err)
	token, err := cipher.Encrypt(key, "bearer-secret")
	require.NoError(t, err)
	return record.Document{
		record.FieldID:           "rec-1",
		record.FieldClusterName:  "prod-east",
		record.FieldAPIURL:       "https://prod-east.example.com:6443",
		record.FieldFernetKey:    key,
		record.FieldFernetToken:  token,
		record.FieldFetchFilters: []any{"team-"},
		record.FieldActive:       true,
		"sector":                 "finance",
	}, token
}

func TestProcessSuccess(t *testing.T) {
	doc, originalToken := testDocument(t)
	lister := &fakeLister{names: []string{"team-b", "kube-system", "team-a"}}
	store := &fakeStore{}
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	p := New(testMapper(t), lister, tokensource.Disabled{}, store,
		WithClock(clocktesting.NewFakePassiveClock(now)))
	res := p.Process(context.Background(), doc)

	require.True(t, res.Succeeded(), "unexpected error: %v", res.Err)
	assert.Equal(t, "prod-east", res.Cluster)
	assert.Equal(t, 2, res.Namespaces)
	assert.False(t, res.NoFilters)

	// The lister saw the decrypted token, never the ciphertext.
	assert.Equal(t, "bearer-secret", lister.endpoint.BearerToken)

	require.Equal(t, "rec-1", store.updatedID)
	assert.Equal(t, []any{"team-a", "team-b"}, store.updatedDoc[record.FieldNamespaces])
	assert.Equal(t, 2, store.updatedDoc[record.FieldTotalNamespaces])
	assert.Equal(t, now.Format(time.RFC3339), store.updatedDoc[record.FieldLastRefreshedAt])

	// Identifier keys are persisted in meaningful form.
	assert.Equal(t, "finance", store.updatedDoc["sector"])
	assert.NotContains(t, store.updatedDoc, "identifier_a")

	// Re-encryption produced a fresh ciphertext for the same plaintext.
	sealed, ok := store.updatedDoc[record.FieldFernetToken].(string)
	require.True(t, ok)
	assert.NotEqual(t, originalToken, sealed)
	key := store.updatedDoc[record.FieldFernetKey].(string)
	plain, err := cipher.Decrypt(key, sealed)
	require.NoError(t, err)
	assert.Equal(t, "bearer-secret", plain)
}

func TestProcessBootstrapsNewCluster(t *testing.T) {
	expires := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	source := &tokensource.Static{
		Tokens: map[string]tokensource.Credential{
			"fresh-cluster": {Token: "acquired-token", ExpiresAt: expires},
		},
	}
	lister := &fakeLister{names: []string{"team-a"}}
	store := &fakeStore{}

	p := New(testMapper(t), lister, source, store)
	res := p.Process(context.Background(), record.Document{
		record.FieldID:           "rec-2",
		record.FieldClusterName:  "fresh-cluster",
		record.FieldAPIURL:       "https://fresh.example.com:6443",
		record.FieldFetchFilters: []any{"team-"},
		record.FieldActive:       true,
	})

	require.True(t, res.Succeeded(), "unexpected error: %v", res.Err)
	assert.Equal(t, "acquired-token", lister.endpoint.BearerToken)
	assert.Equal(t, expires.Unix(), store.updatedDoc[record.FieldTokenExpiration])

	key, ok := store.updatedDoc[record.FieldFernetKey].(string)
	require.True(t, ok, "bootstrap must persist a generated key")
	plain, err := cipher.Decrypt(key, store.updatedDoc[record.FieldFernetToken].(string))
	require.NoError(t, err)
	assert.Equal(t, "acquired-token", plain)
}

func TestProcessDecryptFailure(t *testing.T) {
	doc, _ := testDocument(t)
	otherKey, err := cipher.GenerateKey()
	require.NoError(t, err)
	doc[record.FieldFernetKey] = otherKey

	store := &fakeStore{}
	p := New(testMapper(t), &fakeLister{}, tokensource.Disabled{}, store)
	res := p.Process(context.Background(), doc)

	require.False(t, res.Succeeded())
	var cerr *errors.ClusterError
	require.True(t, stderrors.As(res.Err, &cerr))
	assert.Equal(t, "prod-east", cerr.Cluster)
	assert.Equal(t, StepToken, cerr.Step)
	assert.Zero(t, store.updateCalls, "failed cluster must not be written back")
}

func TestProcessMissingTokenWithDisabledSource(t *testing.T) {
	doc, _ := testDocument(t)
	delete(doc, record.FieldFernetToken)

	p := New(testMapper(t), &fakeLister{}, tokensource.Disabled{}, &fakeStore{})
	res := p.Process(context.Background(), doc)

	require.False(t, res.Succeeded())
	var cerr *errors.ClusterError
	require.True(t, stderrors.As(res.Err, &cerr))
	assert.Equal(t, StepToken, cerr.Step)
	assert.True(t, errors.IsCode(res.Err, errors.ErrCodeTokenAcquisition))
}

func TestProcessListFailure(t *testing.T) {
	doc, _ := testDocument(t)
	lister := &fakeLister{err: errors.New(errors.ErrCodeKubernetesAPI, "forbidden")}
	store := &fakeStore{}

	p := New(testMapper(t), lister, tokensource.Disabled{}, store)
	res := p.Process(context.Background(), doc)

	require.False(t, res.Succeeded())
	var cerr *errors.ClusterError
	require.True(t, stderrors.As(res.Err, &cerr))
	assert.Equal(t, StepList, cerr.Step)
	assert.Zero(t, store.updateCalls, "failed cluster must not be written back")
}

func TestProcessUpdateMiss(t *testing.T) {
	doc, _ := testDocument(t)
	p := New(testMapper(t), &fakeLister{names: []string{"team-a"}}, tokensource.Disabled{}, &fakeStore{miss: true})
	res := p.Process(context.Background(), doc)

	require.False(t, res.Succeeded())
	var cerr *errors.ClusterError
	require.True(t, stderrors.As(res.Err, &cerr))
	assert.Equal(t, StepPersist, cerr.Step)
	assert.True(t, errors.IsCode(res.Err, errors.ErrCodeStore))
}

func TestProcessMissingID(t *testing.T) {
	p := New(testMapper(t), &fakeLister{}, tokensource.Disabled{}, &fakeStore{})
	res := p.Process(context.Background(), record.Document{
		record.FieldClusterName: "nameless",
	})

	require.False(t, res.Succeeded())
	var cerr *errors.ClusterError
	require.True(t, stderrors.As(res.Err, &cerr))
	assert.Equal(t, "nameless", cerr.Cluster)
	assert.Equal(t, StepNormalize, cerr.Step)
}

func TestProcessEmptyFilterListIncludesAll(t *testing.T) {
	doc, _ := testDocument(t)
	doc[record.FieldFetchFilters] = []any{}

	store := &fakeStore{}
	p := New(testMapper(t), &fakeLister{names: []string{"b", "a"}}, tokensource.Disabled{}, store)
	res := p.Process(context.Background(), doc)

	require.True(t, res.Succeeded(), "unexpected error: %v", res.Err)
	assert.True(t, res.NoFilters)
	assert.Equal(t, []any{"a", "b"}, store.updatedDoc[record.FieldNamespaces])
}

func TestProcessAcceptsMeaningfulKeys(t *testing.T) {
	doc, _ := testDocument(t)
	// Incoming document carries the meaningful identifier name; reverse
	// mapping must normalize it before decoding.
	doc["sector"] = "retail"

	store := &fakeStore{}
	p := New(testMapper(t), &fakeLister{names: []string{"team-a"}}, tokensource.Disabled{}, store)
	res := p.Process(context.Background(), doc)

	require.True(t, res.Succeeded(), "unexpected error: %v", res.Err)
	assert.Equal(t, "retail", store.updatedDoc["sector"])
}
