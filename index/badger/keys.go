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


package badger

// Key prefixes for different data types
const (
	definitionPrefix = "idxdef"
	recordPrefix     = "idxrec"
)

// makeDefinitionKey generates the key holding an index definition.
// Format: idxdef:name
func makeDefinitionKey(name string) []byte {
	return []byte(definitionPrefix + ":" + name)
}

// makeRecordPrefix generates the prefix shared by all records of an index.
// Format: idxrec:name:
func makeRecordPrefix(name string) []byte {
	return []byte(recordPrefix + ":" + name + ":")
}

// makeRecordKey generates the key for one record.
// Format: idxrec:name:key
func makeRecordKey(name, key string) []byte {
	return append(makeRecordPrefix(name), key...)
}
