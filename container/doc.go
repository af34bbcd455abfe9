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

// Package container implements reading MDict dictionary containers.
//
// An MDict dictionary is made up of a .mdx file holding the text
// definitions and an optional .mdd file holding binary resources such as
// images and sounds. Both files share the same layout:
//  1. A header: a UTF-16LE XML tag whose attributes describe the
//     dictionary (engine version, encoding, title, stylesheet, etc.).
//  2. The key section: a table describing the key blocks followed by the
//     compressed key blocks. Each key block holds a sorted run of keys and,
//     for each key, the offset of its record in the concatenated
//     decompressed record data.
//  3. The record section: a table of compressed and decompressed block
//     sizes followed by the compressed record blocks.
//
// Container parses the header and the key section. The record section is
// read by package record.
package container
