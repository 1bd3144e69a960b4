package errors

import (
	"errors"
	"testing"
)

func TestNew(t *testing.T) {
	err := New(ErrCodeStore, "record not found")
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if err.Code != ErrCodeStore {
		t.Errorf("expected code %s, got %s", ErrCodeStore, err.Code)
	}
	if err.Message != "record not found" {
		t.Errorf("expected message 'record not found', got %s", err.Message)
	}
	if err.Cause != nil {
		t.Errorf("expected nil cause, got %v", err.Cause)
	}
}

func TestWrap(t *testing.T) {
	cause := errors.New("underlying error")
	err := Wrap(ErrCodeInternal, "operation failed", cause)

	if err.Code != ErrCodeInternal {
		t.Errorf("expected code %s, got %s", ErrCodeInternal, err.Code)
	}
	if !errors.Is(err, cause) {
		t.Errorf("expected cause to be wrapped")
	}
}

func TestWrapWithContext(t *testing.T) {
	cause := errors.New("connection refused")
	ctx := map[string]interface{}{
		"cluster": "cluster-alpha",
		"status":  503,
	}

	err := WrapWithContext(ErrCodeKubernetesAPI, "namespace listing failed", cause, ctx)

	if err.Code != ErrCodeKubernetesAPI {
		t.Errorf("expected code %s, got %s", ErrCodeKubernetesAPI, err.Code)
	}
	if err.Context == nil {
		t.Fatal("expected context to be set")
	}
	if err.Context["cluster"] != "cluster-alpha" {
		t.Errorf("expected cluster to be cluster-alpha")
	}
}

func TestError(t *testing.T) {
	tests := []struct {
		name     string
		err      *StructuredError
		expected string
	}{
		{
			name:     "error without cause",
			err:      New(ErrCodeDecryption, "token integrity check failed"),
			expected: "[DECRYPTION] token integrity check failed",
		},
		{
			name:     "error with cause",
			err:      Wrap(ErrCodeInternal, "failed", errors.New("root cause")),
			expected: "[INTERNAL] failed: root cause",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.err.Error()
			if got != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, got)
			}
		})
	}
}

func TestCodeOf(t *testing.T) {
	if got := CodeOf(New(ErrCodeEncryption, "bad key")); got != ErrCodeEncryption {
		t.Errorf("expected %s, got %s", ErrCodeEncryption, got)
	}
	if got := CodeOf(errors.New("plain")); got != ErrCodeInternal {
		t.Errorf("expected %s for plain error, got %s", ErrCodeInternal, got)
	}

	// Code survives wrapping in a ClusterError.
	wrapped := NewClusterError("cluster-a", "decrypt_token", New(ErrCodeDecryption, "bad token"))
	if got := CodeOf(wrapped); got != ErrCodeDecryption {
		t.Errorf("expected %s through ClusterError, got %s", ErrCodeDecryption, got)
	}
}

func TestIsCode(t *testing.T) {
	err := Wrap(ErrCodeStore, "update failed", errors.New("disk full"))
	if !IsCode(err, ErrCodeStore) {
		t.Error("expected IsCode to match STORE")
	}
	if IsCode(err, ErrCodeDecryption) {
		t.Error("did not expect IsCode to match DECRYPTION")
	}
	if IsCode(errors.New("plain"), ErrCodeStore) {
		t.Error("plain errors carry no code")
	}
}

func TestClusterError(t *testing.T) {
	cause := New(ErrCodeKubernetesAPI, "status 403")
	err := NewClusterError("cluster-beta", "list_namespaces", cause)

	want := `cluster "cluster-beta": step list_namespaces: [KUBERNETES_API] status 403`
	if got := err.Error(); got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
	if !errors.Is(err, cause) {
		t.Error("expected cause to be reachable via errors.Is")
	}
}
