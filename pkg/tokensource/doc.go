// Package tokensource provides the external token-acquisition hook used
// when a cluster record carries no stored bearer token: a Vault KV v2
// implementation for production and a static table for tests.
package tokensource
