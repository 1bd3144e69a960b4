// Package cipher protects per-cluster bearer tokens at rest with an
// authenticated symmetric cipher (NaCl secretbox). Each cluster has its own
// 32-byte key; every encryption uses a fresh random nonce, so re-encrypting
// an unchanged token still yields a new ciphertext.
package cipher
