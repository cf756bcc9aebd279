// Copyright 2025 Poiesic Systems
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


package extract

import (
	"fmt"
	"sort"
	"strings"
)

// FlattenMetadata converts decoded metadata values into strings. Lists are
// joined with ", "; nil values are dropped.
func FlattenMetadata(raw map[string]any) map[string]string {
	out := make(map[string]string, len(raw))
	for k, v := range raw {
		if s, ok := flatten(v); ok {
			out[k] = s
		}
	}
	return out
}

func flatten(v any) (string, bool) {
	switch val := v.(type) {
	case nil:
		return "", false
	case string:
		return val, true
	case []string:
		return strings.Join(val, ", "), true
	case []any:
		parts := make([]string, 0, len(val))
		for _, item := range val {
			if s, ok := flatten(item); ok {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, ", "), true
	case float64:
		if val == float64(int64(val)) {
			return fmt.Sprintf("%d", int64(val)), true
		}
		return fmt.Sprintf("%g", val), true
	case map[string]any:
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, 0, len(keys))
		for _, k := range keys {
			if s, ok := flatten(val[k]); ok {
				parts = append(parts, k+"="+s)
			}
		}
		return strings.Join(parts, ", "), true
	default:
		return fmt.Sprint(val), true
	}
}
