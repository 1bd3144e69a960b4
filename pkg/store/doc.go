// Package store provides the SQLite-backed implementation of the cluster
// record store: one JSON document per row, update-by-id semantics, and an
// indexed active flag for the batch fetch.
package store
