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
	"fmt"

	"golang.org/x/text/encoding/unicode"
)

// Key is a key block entry.
type Key struct {
	RecordStart uint64
	Text        string
}

// MakeKeyBlock makes the decoded content of a key block given a list of keys.
// numberWidth is either 4 or 8. When wide is true key text is written as
// UTF-16LE.
func MakeKeyBlock(keys []Key, numberWidth int, wide bool) []byte {
	b := []byte{}
	for _, k := range keys {
		b = appendNumber(b, k.RecordStart, numberWidth)
		b = append(b, encodeText(k.Text, wide)...)
		b = append(b, terminator(wide)...) // Add the zero byte terminator.
	}
	return b
}

func appendNumber(b []byte, n uint64, numberWidth int) []byte {
	switch numberWidth {
	case 4:
		//nolint:gosec // test code, values fit in 32 bits.
		return binary.BigEndian.AppendUint32(b, uint32(n))
	case 8:
		return binary.BigEndian.AppendUint64(b, n)
	default:
		panic(fmt.Sprintf("unsupported number width: %d", numberWidth))
	}
}

func encodeText(s string, wide bool) []byte {
	if !wide {
		return []byte(s)
	}
	b, err := unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM).NewEncoder().Bytes([]byte(s))
	if err != nil {
		panic(fmt.Sprintf("encoding %q: %v", s, err))
	}
	return b
}

func terminator(wide bool) []byte {
	if wide {
		return []byte{0, 0}
	}
	return []byte{0}
}
