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

package mapper

import (
	"encoding/json"
	"log/slog"
	"os"

	"github.com/UnderAOverE/nsync/pkg/errors"
)

// Mapper renames dictionary keys in nested document trees using a flat
// generic-key to meaningful-key table loaded once at construction. The
// loaded tables are read-only afterwards and safe for concurrent use.
type Mapper struct {
	forward map[string]string
	reverse map[string]string
}

// New loads the mapping table from a flat JSON object file. If the file does
// not exist the mapper degrades to a no-op (both directions return input
// unchanged) with a single warning. Entries with non-string values are
// skipped with a warning; a duplicate meaningful name aborts the load since
// the reverse table would be ambiguous.
func New(path string) (*Mapper, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			slog.Warn("identifier mapping file not found, key mapping disabled", "path", path)
			return &Mapper{}, nil
		}
		return nil, errors.Wrap(errors.ErrCodeConfiguration, "failed to read identifier mapping file", err)
	}

	var entries map[string]any
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, errors.Wrap(errors.ErrCodeConfiguration, "identifier mapping file is not a flat JSON object", err)
	}

	return NewFromTable(entries)
}

// NewFromTable builds a Mapper from an already-parsed mapping table.
// Exposed for tests and programmatic construction.
func NewFromTable(entries map[string]any) (*Mapper, error) {
	forward := make(map[string]string, len(entries))
	reverse := make(map[string]string, len(entries))

	for generic, v := range entries {
		meaningful, ok := v.(string)
		if !ok {
			slog.Warn("ignoring non-string identifier mapping entry", "key", generic)
			continue
		}
		if prior, exists := reverse[meaningful]; exists {
			return nil, errors.Newf(errors.ErrCodeConfiguration,
				"duplicate meaningful name %q (maps from both %q and %q)", meaningful, prior, generic)
		}
		forward[generic] = meaningful
		reverse[meaningful] = generic
	}

	return &Mapper{forward: forward, reverse: reverse}, nil
}

// Len returns the number of loaded mapping entries. Zero means the mapper
// is operating as a no-op.
func (m *Mapper) Len() int {
	return len(m.forward)
}

// Forward recursively renames generic keys (identifier_a, ...) to their
// meaningful counterparts (sector, ...). Keys without a table entry and all
// values pass through unchanged.
func (m *Mapper) Forward(v any) any {
	return apply(v, m.forward)
}

// Reverse is the exact inverse of Forward.
func (m *Mapper) Reverse(v any) any {
	return apply(v, m.reverse)
}

// apply walks the document as a tagged variant: object, array, or scalar.
// Only object keys are rewritten; scalar leaves are returned as-is.
func apply(v any, table map[string]string) any {
	if len(table) == 0 {
		return v
	}

	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			if renamed, ok := table[k]; ok {
				k = renamed
			}
			out[k] = apply(val, table)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = apply(item, table)
		}
		return out
	default:
		return v
	}
}
