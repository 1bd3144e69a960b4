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

package cipher

import (
	"encoding/base64"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/UnderAOverE/nsync/pkg/errors"
)

func TestEncryptDecryptRoundTrip(t *testing.T) {
	key, err := GenerateKey()
	require.NoError(t, err)

	tests := []struct {
		name      string
		plaintext string
	}{
		{name: "typical bearer token", plaintext: "eyJhbGciOiJSUzI1NiJ9.payload.sig"},
		{name: "empty plaintext", plaintext: ""},
		{name: "binary-ish content", plaintext: string([]byte{0, 1, 2, 255, 254})},
		{name: "long token", plaintext: strings.Repeat("t", 8192)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, err := Encrypt(key, tt.plaintext)
			require.NoError(t, err)

			got, err := Decrypt(key, token)
			require.NoError(t, err)
			assert.Equal(t, tt.plaintext, got)
		})
	}
}

func TestEncryptUsesFreshNonce(t *testing.T) {
	key, err := GenerateKey()
	require.NoError(t, err)

	a, err := Encrypt(key, "same plaintext")
	require.NoError(t, err)
	b, err := Encrypt(key, "same plaintext")
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
}

func TestDecryptWrongKeyFails(t *testing.T) {
	k1, err := GenerateKey()
	require.NoError(t, err)
	k2, err := GenerateKey()
	require.NoError(t, err)

	token, err := Encrypt(k1, "secret-bearer-token")
	require.NoError(t, err)

	_, err = Decrypt(k2, token)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeDecryption))
	assert.NotContains(t, err.Error(), "secret-bearer-token")
}

func TestDecryptTamperedTokenFails(t *testing.T) {
	key, err := GenerateKey()
	require.NoError(t, err)

	token, err := Encrypt(key, "secret")
	require.NoError(t, err)

	raw, err := base64.URLEncoding.DecodeString(token)
	require.NoError(t, err)
	raw[len(raw)-1] ^= 0x01
	tampered := base64.URLEncoding.EncodeToString(raw)

	_, err = Decrypt(key, tampered)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeDecryption))
}

func TestMalformedInputs(t *testing.T) {
	key, err := GenerateKey()
	require.NoError(t, err)

	tests := []struct {
		name string
		run  func() error
		code errors.ErrorCode
	}{
		{
			name: "encrypt with malformed key",
			run: func() error {
				_, err := Encrypt("not base64!!", "p")
				return err
			},
			code: errors.ErrCodeEncryption,
		},
		{
			name: "encrypt with short key",
			run: func() error {
				_, err := Encrypt(base64.URLEncoding.EncodeToString([]byte("short")), "p")
				return err
			},
			code: errors.ErrCodeEncryption,
		},
		{
			name: "decrypt with malformed key",
			run: func() error {
				_, err := Decrypt("not base64!!", "token")
				return err
			},
			code: errors.ErrCodeDecryption,
		},
		{
			name: "decrypt malformed token",
			run: func() error {
				_, err := Decrypt(key, "not base64!!")
				return err
			},
			code: errors.ErrCodeDecryption,
		},
		{
			name: "decrypt truncated token",
			run: func() error {
				_, err := Decrypt(key, base64.URLEncoding.EncodeToString([]byte("tiny")))
				return err
			},
			code: errors.ErrCodeDecryption,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.run()
			require.Error(t, err)
			assert.True(t, errors.IsCode(err, tt.code), "got %v", err)
		})
	}
}
