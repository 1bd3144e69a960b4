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
	"crypto/rand"
	"encoding/base64"
	"io"

	"golang.org/x/crypto/nacl/secretbox"

	"github.com/UnderAOverE/nsync/pkg/errors"
)

const (
	keySize   = 32
	nonceSize = 24
)

// GenerateKey returns a fresh base64url-encoded 32-byte symmetric key.
// Used only for new-cluster bootstrap; established clusters keep the key
// assigned during onboarding.
func GenerateKey() (string, error) {
	var key [keySize]byte
	if _, err := io.ReadFull(rand.Reader, key[:]); err != nil {
		return "", errors.Wrap(errors.ErrCodeEncryption, "failed to generate key", err)
	}
	return base64.URLEncoding.EncodeToString(key[:]), nil
}

// Encrypt seals plaintext under the given key with a random nonce and
// returns a base64url token. Repeated calls on the same plaintext produce
// different ciphertexts.
func Encrypt(key, plaintext string) (string, error) {
	k, err := decodeKey(key, errors.ErrCodeEncryption)
	if err != nil {
		return "", err
	}

	var nonce [nonceSize]byte
	if _, err := io.ReadFull(rand.Reader, nonce[:]); err != nil {
		return "", errors.Wrap(errors.ErrCodeEncryption, "failed to generate nonce", err)
	}

	sealed := secretbox.Seal(nonce[:], []byte(plaintext), &nonce, k)
	return base64.URLEncoding.EncodeToString(sealed), nil
}

// Decrypt opens a token produced by Encrypt. It fails if the key is
// malformed, the token is malformed, or the authentication check fails
// (tampered ciphertext or wrong key). Error messages never include key or
// plaintext material.
func Decrypt(key, token string) (string, error) {
	k, err := decodeKey(key, errors.ErrCodeDecryption)
	if err != nil {
		return "", err
	}

	raw, err := base64.URLEncoding.DecodeString(token)
	if err != nil {
		return "", errors.New(errors.ErrCodeDecryption, "malformed token encoding")
	}
	if len(raw) <= nonceSize {
		return "", errors.New(errors.ErrCodeDecryption, "token too short")
	}

	var nonce [nonceSize]byte
	copy(nonce[:], raw[:nonceSize])

	plaintext, ok := secretbox.Open(nil, raw[nonceSize:], &nonce, k)
	if !ok {
		return "", errors.New(errors.ErrCodeDecryption, "token authentication failed")
	}
	return string(plaintext), nil
}

func decodeKey(key string, code errors.ErrorCode) (*[keySize]byte, error) {
	raw, err := base64.URLEncoding.DecodeString(key)
	if err != nil {
		return nil, errors.New(code, "malformed key encoding")
	}
	if len(raw) != keySize {
		return nil, errors.Newf(code, "invalid key length %d", len(raw))
	}
	var k [keySize]byte
	copy(k[:], raw)
	return &k, nil
}
