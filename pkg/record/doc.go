// Package record defines the cluster record data model and the store
// contract against which the refresh pipeline persists reconciled state.
package record
