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

package testutil

import (
	"encoding/binary"

	"github.com/ianlewis/go-mdict/block"
	"github.com/ianlewis/go-mdict/internal/ripemd128"
)

// EncryptKeyInfo scrambles an encoded key block info block the way
// containers with Encrypted="2" store it.
func EncryptKeyInfo(b []byte) []byte {
	var seed [8]byte
	copy(seed[:4], b[4:8])
	binary.LittleEndian.PutUint32(seed[4:], 0x3695)
	key := ripemd128.Sum(seed[:])

	out := make([]byte, len(b))
	copy(out, b[:block.HeaderSize])
	prev := byte(0x36)
	for i, p := range b[block.HeaderSize:] {
		//nolint:gosec // only the low byte of i is used.
		t := p ^ prev ^ byte(i) ^ key[i%ripemd128.Size]
		c := t>>4 | t<<4
		out[block.HeaderSize+i] = c
		prev = c
	}
	return out
}
