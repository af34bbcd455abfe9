// Copyright 2026 Ian Lewis
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

package mdict

// Entry is a dictionary entry.
type Entry struct {
	key        string
	definition string
}

// Title returns the entry's key as stored in the dictionary.
func (e *Entry) Title() string {
	return e.key
}

// Definition returns the entry's rendered definition.
func (e *Entry) Definition() string {
	return e.definition
}

// String returns a string representation of the Entry.
func (e *Entry) String() string {
	return e.key + "\n" + e.definition + "\n"
}
