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

package notify

import (
	"context"
	stderrors "errors"
	"testing"

	"github.com/UnderAOverE/nsync/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogNotifier(t *testing.T) {
	err := Log{}.Notify(context.Background(), "subject", "body")
	assert.NoError(t, err)
}

func TestNewSMTPValidation(t *testing.T) {
	tests := []struct {
		name string
		addr string
		from string
		to   []string
	}{
		{"missing addr", "", "a@b.c", []string{"x@y.z"}},
		{"missing from", "relay:25", "", []string{"x@y.z"}},
		{"missing recipients", "relay:25", "a@b.c", nil},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewSMTP(tc.addr, tc.from, tc.to)
			require.Error(t, err)
			assert.True(t, errors.IsCode(err, errors.ErrCodeConfiguration))
		})
	}
}

func TestSMTPNotify(t *testing.T) {
	n, err := NewSMTP("relay.example.com:25", "nsync@example.com", []string{"ops@example.com"})
	require.NoError(t, err)

	var gotAddr, gotFrom string
	var gotTo []string
	var gotMsg string
	n.send = func(addr, from string, to []string, msg []byte) error {
		gotAddr, gotFrom, gotTo, gotMsg = addr, from, to, string(msg)
		return nil
	}

	require.NoError(t, n.Notify(context.Background(), "refresh failures", "details"))
	assert.Equal(t, "relay.example.com:25", gotAddr)
	assert.Equal(t, "nsync@example.com", gotFrom)
	assert.Equal(t, []string{"ops@example.com"}, gotTo)
	assert.Contains(t, gotMsg, "Subject: refresh failures")
	assert.Contains(t, gotMsg, "details")
}

func TestSMTPNotifyDeliveryError(t *testing.T) {
	n, err := NewSMTP("relay:25", "a@b.c", []string{"x@y.z"})
	require.NoError(t, err)
	n.send = func(string, string, []string, []byte) error {
		return stderrors.New("connection refused")
	}
	err = n.Notify(context.Background(), "s", "b")
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeInternal))
}
