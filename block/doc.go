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

// Package block implements decoding of MDict compressed blocks.
//
// Both key blocks and record blocks in an MDict container share the same
// layout:
//  1. A 4 byte compression type tag. Only three values are defined:
//     00 00 00 00 (no compression), 01 00 00 00 (LZO1X) and
//     02 00 00 00 (zlib).
//  2. A 4 byte Adler-32 checksum of the decompressed data in network byte
//     order.
//  3. The (possibly compressed) payload.
package block
