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

// Package mdict implements an indexed reader for MDict dictionaries in pure
// Go.
//
// MDict dictionaries contain up to two files:
//  1. An .mdx file that contains the dictionary's metadata, its sorted key
//     list and the text definitions stored in compressed record blocks.
//  2. An optional .mdd file with the same base name that contains
//     resources such as images, sounds and stylesheets addressed by path
//     like keys.
//
// Looking up a key in an MDict file requires reading the key list, which is
// slow for large dictionaries. The first time a dictionary is opened, an
// index mapping every key to the location of its record is built and saved
// next to the dictionary as a SQLite database (dict.mdx.idx and
// dict.mdd.idx). Later lookups query the index and decompress only the
// single record block holding the definition.
package mdict
