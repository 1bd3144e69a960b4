// Package processor implements the per-cluster refresh cycle: identifier
// key normalization, token decryption or acquisition, namespace listing,
// prefix filtering, token re-encryption, and persistence. Each cluster's
// outcome is a Result value; errors never cross the task boundary.
package processor
