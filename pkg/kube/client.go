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

package kube

import (
	"context"
	stderrors "errors"
	"log/slog"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/rest"

	"github.com/UnderAOverE/nsync/pkg/defaults"
	"github.com/UnderAOverE/nsync/pkg/errors"
)

// Interface is an alias for kubernetes.Interface to allow easier mocking in
// tests via fake.NewSimpleClientset().
type Interface = kubernetes.Interface

// maxErrorBody caps how much API response text is carried in errors.
const maxErrorBody = 500

// Endpoint describes one cluster's API connection for a single call.
type Endpoint struct {
	// ClusterName is used for logging only.
	ClusterName string

	// APIURL is the base URL of the Kubernetes API server.
	APIURL string

	// CACertificatePEM is the PEM CA bundle to trust exclusively. Empty
	// falls back to the system trust store with a warning.
	CACertificatePEM string

	// BearerToken authenticates the call. Never logged and never included
	// in returned errors.
	BearerToken string

	// Timeout bounds the call; zero means defaults.KubeAPITimeout.
	Timeout time.Duration
}

// NamespaceLister lists namespace names for a cluster endpoint.
type NamespaceLister interface {
	ListNamespaces(ctx context.Context, ep Endpoint) ([]string, error)
}

// Client issues authenticated namespace listings against arbitrary clusters.
// It builds a fresh rest.Config per call; no process-wide client state.
type Client struct {
	newClientset    func(*rest.Config) (Interface, error)
	retryInitial    time.Duration
	retryMaxElapsed time.Duration
}

// Option customizes a Client.
type Option func(*Client)

// WithClientsetFactory overrides clientset construction, letting tests
// substitute fake.NewSimpleClientset.
func WithClientsetFactory(f func(*rest.Config) (Interface, error)) Option {
	return func(c *Client) {
		c.newClientset = f
	}
}

// WithRetrySchedule overrides the transient-failure retry schedule.
func WithRetrySchedule(initial, maxElapsed time.Duration) Option {
	return func(c *Client) {
		c.retryInitial = initial
		c.retryMaxElapsed = maxElapsed
	}
}

// NewClient creates a Client with the default clientset factory and
// retry schedule.
func NewClient(opts ...Option) *Client {
	c := &Client{
		newClientset: func(cfg *rest.Config) (Interface, error) {
			return kubernetes.NewForConfig(cfg)
		},
		retryInitial:    defaults.KubeRetryInitialInterval,
		retryMaxElapsed: defaults.KubeRetryMaxElapsed,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ListNamespaces returns the cluster's namespace names in API-provided order.
// Sorting, when desired, is the caller's responsibility. Transient failures
// are retried with capped exponential backoff inside the per-call timeout.
func (c *Client) ListNamespaces(ctx context.Context, ep Endpoint) ([]string, error) {
	cfg, err := c.restConfig(ep)
	if err != nil {
		return nil, err
	}

	clientset, err := c.newClientset(cfg)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeKubernetesAPI, "failed to build API client", sanitize(err, ep.BearerToken))
	}

	timeout := ep.Timeout
	if timeout <= 0 {
		timeout = defaults.KubeAPITimeout
	}
	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var names []string
	op := func() error {
		list, err := clientset.CoreV1().Namespaces().List(callCtx, metav1.ListOptions{})
		if err != nil {
			if retryable(err) {
				return err
			}
			return backoff.Permanent(err)
		}
		names = make([]string, 0, len(list.Items))
		for i := range list.Items {
			names = append(names, list.Items[i].Name)
		}
		return nil
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = c.retryInitial
	bo.MaxElapsedTime = c.retryMaxElapsed

	if err := backoff.Retry(op, backoff.WithContext(bo, callCtx)); err != nil {
		return nil, c.mapError(ep, err)
	}

	slog.Debug("listed namespaces", "cluster", ep.ClusterName, "count", len(names))
	return names, nil
}

// restConfig builds the per-cluster client configuration. Missing CA data is
// a security-relevant fallback to system trust, surfaced as a warning rather
// than silently accepted.
func (c *Client) restConfig(ep Endpoint) (*rest.Config, error) {
	if ep.APIURL == "" {
		return nil, errors.New(errors.ErrCodeKubernetesAPI, "API URL is missing")
	}
	if ep.BearerToken == "" {
		return nil, errors.New(errors.ErrCodeKubernetesAPI, "bearer token is missing")
	}

	cfg := &rest.Config{
		Host:        strings.TrimRight(ep.APIURL, "/"),
		BearerToken: ep.BearerToken,
	}
	if ep.Timeout > 0 {
		cfg.Timeout = ep.Timeout
	} else {
		cfg.Timeout = defaults.KubeAPITimeout
	}

	if ep.CACertificatePEM == "" {
		slog.Warn("no CA certificate configured, falling back to system trust store",
			"cluster", ep.ClusterName)
	} else {
		cfg.TLSClientConfig = rest.TLSClientConfig{CAData: []byte(ep.CACertificatePEM)}
	}

	return cfg, nil
}

// mapError converts a failed API call into a KUBERNETES_API structured error
// carrying the status code when one is known. The bearer token never appears
// in the message.
func (c *Client) mapError(ep Endpoint, err error) error {
	cause := sanitize(err, ep.BearerToken)

	var status apierrors.APIStatus
	if stderrors.As(err, &status) {
		return errors.WrapWithContext(
			errors.ErrCodeKubernetesAPI,
			truncate(status.Status().Message, maxErrorBody),
			cause,
			map[string]any{"status": int(status.Status().Code)},
		)
	}

	if cerr := contextCause(err); cerr != nil {
		return errors.Wrap(errors.ErrCodeKubernetesAPI, "request timed out", cerr)
	}

	return errors.Wrap(errors.ErrCodeKubernetesAPI, "request failed", cause)
}

// retryable reports whether the failure is worth retrying: server-side
// transient statuses and network-level errors. Client errors (401/403/404,
// bad requests) are permanent.
func retryable(err error) bool {
	if apierrors.IsServerTimeout(err) ||
		apierrors.IsServiceUnavailable(err) ||
		apierrors.IsTooManyRequests(err) ||
		apierrors.IsInternalError(err) {
		return true
	}
	// Status errors that are not one of the transient classes above are
	// permanent; anything without an API status is a transport failure.
	var status apierrors.APIStatus
	if stderrors.As(err, &status) {
		return false
	}
	if contextCause(err) != nil {
		return false
	}
	return true
}

func contextCause(err error) error {
	switch {
	case stderrors.Is(err, context.DeadlineExceeded):
		return context.DeadlineExceeded
	case stderrors.Is(err, context.Canceled):
		return context.Canceled
	default:
		return nil
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

func sanitize(err error, token string) error {
	if err == nil || token == "" {
		return err
	}
	msg := err.Error()
	if !strings.Contains(msg, token) {
		return err
	}
	return errors.New(errors.ErrCodeKubernetesAPI, strings.ReplaceAll(msg, token, "[redacted]"))
}
