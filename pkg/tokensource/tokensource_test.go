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
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/UnderAOverE/nsync/pkg/errors"
	"github.com/UnderAOverE/nsync/pkg/record"
)

func TestStaticAcquire(t *testing.T) {
	expiry := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)
	s := &Static{Tokens: map[string]Credential{
		"cluster-alpha": {Token: "alpha-token", ExpiresAt: expiry},
	}}

	cred, err := s.Acquire(context.Background(), &record.ClusterRecord{ClusterName: "cluster-alpha"})
	require.NoError(t, err)
	assert.Equal(t, "alpha-token", cred.Token)
	assert.Equal(t, expiry, cred.ExpiresAt)

	_, err = s.Acquire(context.Background(), &record.ClusterRecord{ClusterName: "unknown"})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeTokenAcquisition))
}

func TestDisabledAcquire(t *testing.T) {
	_, err := Disabled{}.Acquire(context.Background(), &record.ClusterRecord{ClusterName: "cluster-alpha"})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeTokenAcquisition))
	assert.Contains(t, err.Error(), "cluster-alpha")
}

func TestExpiryFrom(t *testing.T) {
	tests := []struct {
		name string
		data map[string]any
		want func(t *testing.T, got time.Time)
	}{
		{
			name: "absolute expires_at",
			data: map[string]any{"expires_at": "2025-05-01T00:00:00Z"},
			want: func(t *testing.T, got time.Time) {
				assert.Equal(t, time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC), got)
			},
		},
		{
			name: "numeric ttl",
			data: map[string]any{"ttl_seconds": float64(3600)},
			want: func(t *testing.T, got time.Time) {
				assert.WithinDuration(t, time.Now().UTC().Add(time.Hour), got, time.Minute)
			},
		},
		{
			name: "string ttl",
			data: map[string]any{"ttl_seconds": "600"},
			want: func(t *testing.T, got time.Time) {
				assert.WithinDuration(t, time.Now().UTC().Add(10*time.Minute), got, time.Minute)
			},
		},
		{
			name: "absolute wins over ttl",
			data: map[string]any{
				"expires_at":  "2025-05-01T00:00:00Z",
				"ttl_seconds": float64(60),
			},
			want: func(t *testing.T, got time.Time) {
				assert.Equal(t, time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC), got)
			},
		},
		{
			name: "no expiry data",
			data: map[string]any{"token": "x"},
			want: func(t *testing.T, got time.Time) {
				assert.True(t, got.IsZero())
			},
		},
		{
			name: "garbage expires_at ignored",
			data: map[string]any{"expires_at": "soon"},
			want: func(t *testing.T, got time.Time) {
				assert.True(t, got.IsZero())
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.want(t, expiryFrom(tt.data))
		})
	}
}
