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

// Package record locates and extracts records in the record section of an
// MDict container.
//
// The record section starts with a table of block sizes followed by the
// compressed record blocks. Decompressed, the blocks form one continuous
// stream in which every key's record starts at the offset given in the key
// list. A record ends where the next key's record starts, or at the end of
// the last block.
//
// [ScanBlockTable] reads the block size table, [Locate] assigns each key a
// [KeyLocation] and [Extract] reads a single record back given its
// KeyLocation.
package record
