// Package errors provides structured error types for better observability
// and programmatic error handling across the application.
//
// Example usage:
//
//	err := errors.WrapWithContext(
//	    errors.ErrCodeKubernetesAPI,
//	    "failed to list namespaces",
//	    cause,
//	    map[string]interface{}{
//	        "cluster": clusterName,
//	        "status":  statusCode,
//	    },
//	)
package errors
