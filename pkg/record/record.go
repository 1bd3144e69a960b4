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

package record

import (
	"time"

	"github.com/UnderAOverE/nsync/pkg/errors"
)

// Document is the raw stored form of a cluster record: a JSON-like tree
// whose identifier key names may be in either generic or meaningful form.
type Document = map[string]any

// Document field names for the known (non-identifier) record fields.
const (
	FieldID              = "id"
	FieldClusterName     = "clusterName"
	FieldAPIURL          = "apiUrl"
	FieldCACertificate   = "caCertificatePem"
	FieldFernetKey       = "fernetKey"
	FieldFernetToken     = "fernetToken"
	FieldTokenExpiration = "tokenExpirationEpochSeconds"
	FieldFetchFilters    = "namespaceFetchFilters"
	FieldNamespaces      = "namespaces"
	FieldTotalNamespaces = "totalNamespaces"
	FieldActive          = "active"
	FieldLastRefreshedAt = "lastRefreshedAt"
)

var knownFields = map[string]struct{}{
	FieldID:              {},
	FieldClusterName:     {},
	FieldAPIURL:          {},
	FieldCACertificate:   {},
	FieldFernetKey:       {},
	FieldFernetToken:     {},
	FieldTokenExpiration: {},
	FieldFetchFilters:    {},
	FieldNamespaces:      {},
	FieldTotalNamespaces: {},
	FieldActive:          {},
	FieldLastRefreshedAt: {},
}

// ClusterRecord is the typed, canonical (generic-key) view of one managed
// cluster. It is the unit of work for the refresh pipeline and is converted
// back to a Document for persistence.
type ClusterRecord struct {
	// ID is the store-assigned identifier used as the update key.
	ID string

	// ClusterName is human-readable and used in all logging and error text.
	// Not guaranteed unique across records.
	ClusterName string

	// APIURL is the base URL of the cluster's Kubernetes API server.
	APIURL string

	// CACertificatePEM is an optional PEM CA bundle. Empty means the system
	// default trust store is used (with a warning).
	CACertificatePEM string

	// FernetKey is the cluster's base64 symmetric key. Never logged.
	FernetKey string

	// FernetToken is the ciphertext of the current bearer token. Empty means
	// no token yet.
	FernetToken string

	// TokenExpirationEpochSeconds is advisory only; refresh logic does not
	// gate on it but preserves and updates it.
	TokenExpirationEpochSeconds int64

	// NamespaceFetchFilters is the ordered prefix rule list. Empty means no
	// filtering (include everything), which is logged as a warning.
	NamespaceFetchFilters []string

	// Namespaces is the last-known filtered namespace list.
	Namespaces []string

	// TotalNamespaces always equals len(Namespaces). Mutate both through
	// SetNamespaces.
	TotalNamespaces int

	// Active gates processing; only active records are fetched.
	Active bool

	// LastRefreshedAt is set on every refresh attempt, but only reaches the
	// store on success; a failed cluster keeps its last persisted state.
	LastRefreshedAt time.Time

	// Identifiers holds the generic identifier slots (identifier_a, ...).
	// Key names are subject to the identifier mapper; values are opaque.
	Identifiers map[string]any
}

// SetNamespaces replaces the namespace list and keeps TotalNamespaces
// consistent with it.
func (r *ClusterRecord) SetNamespaces(namespaces []string) {
	r.Namespaces = namespaces
	r.TotalNamespaces = len(namespaces)
}

// DisplayName returns the cluster name for logs and reports, falling back to
// the record ID when the name is unset.
func (r *ClusterRecord) DisplayName() string {
	if r.ClusterName != "" {
		return r.ClusterName
	}
	return "id:" + r.ID
}

// FromDocument decodes a canonical-form document into a typed record.
// Unknown keys are treated as identifier slots and preserved verbatim.
// The document must carry an id.
func FromDocument(doc Document) (*ClusterRecord, error) {
	id := asString(doc[FieldID])
	if id == "" {
		return nil, errors.New(errors.ErrCodeStore, "cluster document has no id")
	}

	r := &ClusterRecord{
		ID:                          id,
		ClusterName:                 asString(doc[FieldClusterName]),
		APIURL:                      asString(doc[FieldAPIURL]),
		CACertificatePEM:            asString(doc[FieldCACertificate]),
		FernetKey:                   asString(doc[FieldFernetKey]),
		FernetToken:                 asString(doc[FieldFernetToken]),
		TokenExpirationEpochSeconds: asInt64(doc[FieldTokenExpiration]),
		NamespaceFetchFilters:       asStringSlice(doc[FieldFetchFilters]),
		Active:                      asBool(doc[FieldActive]),
		Identifiers:                 map[string]any{},
	}
	r.SetNamespaces(asStringSlice(doc[FieldNamespaces]))

	if ts := asString(doc[FieldLastRefreshedAt]); ts != "" {
		if parsed, err := time.Parse(time.RFC3339, ts); err == nil {
			r.LastRefreshedAt = parsed
		}
	}

	for k, v := range doc {
		if _, known := knownFields[k]; known {
			continue
		}
		r.Identifiers[k] = v
	}

	return r, nil
}

// Document converts the record back to its raw stored form (still with
// generic identifier keys; forward mapping happens at persistence time).
func (r *ClusterRecord) Document() Document {
	doc := Document{
		FieldID:              r.ID,
		FieldClusterName:     r.ClusterName,
		FieldAPIURL:          r.APIURL,
		FieldFetchFilters:    toAnySlice(r.NamespaceFetchFilters),
		FieldNamespaces:      toAnySlice(r.Namespaces),
		FieldTotalNamespaces: r.TotalNamespaces,
		FieldActive:          r.Active,
	}
	if r.CACertificatePEM != "" {
		doc[FieldCACertificate] = r.CACertificatePEM
	}
	if r.FernetKey != "" {
		doc[FieldFernetKey] = r.FernetKey
	}
	if r.FernetToken != "" {
		doc[FieldFernetToken] = r.FernetToken
	}
	if r.TokenExpirationEpochSeconds != 0 {
		doc[FieldTokenExpiration] = r.TokenExpirationEpochSeconds
	}
	if !r.LastRefreshedAt.IsZero() {
		doc[FieldLastRefreshedAt] = r.LastRefreshedAt.UTC().Format(time.RFC3339)
	}
	for k, v := range r.Identifiers {
		doc[k] = v
	}
	return doc
}

func asString(v any) string {
	s, _ := v.(string)
	return s
}

func asBool(v any) bool {
	b, _ := v.(bool)
	return b
}

// asInt64 accepts the numeric shapes JSON decoding produces.
func asInt64(v any) int64 {
	switch n := v.(type) {
	case int64:
		return n
	case int:
		return int64(n)
	case float64:
		return int64(n)
	default:
		return 0
	}
}

func asStringSlice(v any) []string {
	switch s := v.(type) {
	case []string:
		return s
	case []any:
		out := make([]string, 0, len(s))
		for _, item := range s {
			if str, ok := item.(string); ok {
				out = append(out, str)
			}
		}
		return out
	default:
		return nil
	}
}

func toAnySlice(s []string) []any {
	out := make([]any, len(s))
	for i, v := range s {
		out[i] = v
	}
	return out
}
