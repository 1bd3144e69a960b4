// Package kube issues authenticated namespace listings against arbitrary
// Kubernetes clusters, one explicit rest.Config per call.
//
// Unlike a kubeconfig-discovered client, every connection parameter comes
// from the cluster record: API URL, bearer token, and an optional CA bundle
// that, when present, is the only trust anchor. A record without a CA bundle
// falls back to the system trust store and the fallback is logged.
package kube
