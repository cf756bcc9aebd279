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


package openai

import (
	"strings"
	"unicode"
)

// repairJSON fixes two mistakes small models make in JSON mode: keys that
// lost their opening quote (`, people":`) and trailing commas before a
// closing bracket or brace. Content inside string literals is left alone.
func repairJSON(s string) string {
	in := []rune(s)
	out := make([]rune, 0, len(in)+16)
	inString := false

	for i := 0; i < len(in); i++ {
		ch := in[i]

		if inString {
			out = append(out, ch)
			if ch == '\\' && i+1 < len(in) {
				i++
				out = append(out, in[i])
			} else if ch == '"' {
				inString = false
			}
			continue
		}

		switch ch {
		case '"':
			inString = true
			out = append(out, ch)
		case ',':
			j := skipSpace(in, i+1)
			if j < len(in) && (in[j] == ']' || in[j] == '}') {
				continue
			}
			out = append(out, ch)
			out = quoteBareKey(in, j, out, &i)
		case '{':
			out = append(out, ch)
			out = quoteBareKey(in, skipSpace(in, i+1), out, &i)
		default:
			out = append(out, ch)
		}
	}

	return string(out)
}

// quoteBareKey copies whitespace and, when a bare identifier followed by `":`
// starts at j, emits it with its opening quote. i is advanced past what was
// consumed.
func quoteBareKey(in []rune, j int, out []rune, i *int) []rune {
	k := j
	for k < len(in) && (unicode.IsLetter(in[k]) || in[k] == '_') {
		k++
	}
	if k == j || k+1 >= len(in) || in[k] != '"' || in[k+1] != ':' {
		return out
	}
	out = append(out, in[*i+1:j]...)
	out = append(out, '"')
	out = append(out, in[j:k]...)
	out = append(out, '"', ':')
	*i = k + 1
	return out
}

func skipSpace(in []rune, j int) int {
	for j < len(in) && unicode.IsSpace(in[j]) {
		j++
	}
	return j
}

// stripFences removes markdown code fences around a model response.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
