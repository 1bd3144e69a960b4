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

package processor

import (
	"sort"
	"strings"
)

// FilterNamespaces returns the subset of all whose names start with at least
// one of the given prefixes, sorted ascending and deduplicated. An empty
// prefix list selects everything; the caller is expected to log that case as
// a likely misconfiguration (this function is pure and does not log).
func FilterNamespaces(all, prefixes []string) []string {
	if len(all) == 0 {
		return []string{}
	}

	out := make([]string, 0, len(all))
	seen := make(map[string]struct{}, len(all))
	for _, name := range all {
		if _, dup := seen[name]; dup {
			continue
		}
		if len(prefixes) > 0 && !matchesAny(name, prefixes) {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

func matchesAny(name string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(name, p) {
			return true
		}
	}
	return false
}
