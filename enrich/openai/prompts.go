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

const systemPrompt = `Identify the named entities in the given document and its language. Return them as JSON.

Output ONLY valid JSON which complies with the schema given below. Do not include any preamble or explanation.
Start your response directly with the opening brace { and end with the closing brace }.

{
  "type": "object",
  "properties": {
    "people":        {"type": "array", "items": {"type": "string"}},
    "organizations": {"type": "array", "items": {"type": "string"}},
    "locations":     {"type": "array", "items": {"type": "string"}},
    "language":      {"type": "string", "pattern": "^[a-z]{2}$"}
  },
  "required": ["people", "organizations", "locations", "language"],
  "additionalProperties": false
}

Rules:
- Use the names exactly as written in the document. Do not translate them.
- Only list entities that are explicitly named. Do not hallucinate.
- language is the ISO 639-1 code of the main language of the document.
- Use empty arrays when a category has no entities.

Example:

Document: "Ada Lovelace wrote to Charles Babbage from London about the Analytical Engine project at the Royal Society."

{"people": ["Ada Lovelace", "Charles Babbage"], "organizations": ["Royal Society"], "locations": ["London"], "language": "en"}`
