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

// Package ripemd128 implements the RIPEMD-128 hash function used to derive
// MDict key block info decryption keys.
package ripemd128

import (
	"encoding/binary"
	"math/bits"
)

// Size is the size of a RIPEMD-128 checksum in bytes.
const Size = 16

// BlockSize is the block size of RIPEMD-128 in bytes.
const BlockSize = 64

var (
	// Message word order for the left and right lines.
	rl = [64]uint8{
		0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15,
		7, 4, 13, 1, 10, 6, 15, 3, 12, 0, 9, 5, 2, 14, 11, 8,
		3, 10, 14, 4, 9, 15, 8, 1, 2, 7, 0, 6, 13, 11, 5, 12,
		1, 9, 11, 10, 0, 8, 12, 4, 13, 3, 7, 15, 14, 5, 6, 2,
	}
	rr = [64]uint8{
		5, 14, 7, 0, 9, 2, 11, 4, 13, 6, 15, 8, 1, 10, 3, 12,
		6, 11, 3, 7, 0, 13, 5, 10, 14, 15, 8, 12, 4, 9, 1, 2,
		15, 5, 1, 3, 7, 14, 6, 9, 11, 8, 12, 2, 10, 0, 4, 13,
		8, 6, 4, 1, 3, 11, 15, 0, 5, 12, 2, 13, 9, 7, 10, 14,
	}

	// Rotation amounts for the left and right lines.
	sl = [64]uint8{
		11, 14, 15, 12, 5, 8, 7, 9, 11, 13, 14, 15, 6, 7, 9, 8,
		7, 6, 8, 13, 11, 9, 7, 15, 7, 12, 15, 9, 11, 7, 13, 12,
		11, 13, 6, 7, 14, 9, 13, 15, 14, 8, 13, 6, 5, 12, 7, 5,
		11, 12, 14, 15, 14, 15, 9, 8, 9, 14, 5, 6, 8, 6, 5, 12,
	}
	sr = [64]uint8{
		8, 9, 9, 11, 13, 15, 15, 5, 7, 7, 8, 11, 14, 14, 12, 6,
		9, 13, 15, 7, 12, 8, 9, 11, 7, 7, 12, 7, 6, 15, 13, 11,
		9, 7, 15, 11, 8, 6, 6, 14, 12, 13, 5, 14, 13, 13, 7, 5,
		15, 5, 8, 11, 14, 14, 6, 14, 6, 9, 12, 9, 12, 5, 15, 8,
	}

	kl = [4]uint32{0x00000000, 0x5a827999, 0x6ed9eba1, 0x8f1bbcdc}
	kr = [4]uint32{0x50a28be6, 0x5c4dd124, 0x6d703ef3, 0x00000000}
)

// f returns the result of the round function for round j.
func f(j int, x, y, z uint32) uint32 {
	switch j {
	case 0:
		return x ^ y ^ z
	case 1:
		return (x & y) | (^x & z)
	case 2:
		return (x | ^y) ^ z
	default:
		return (x & z) | (y &^ z)
	}
}

// Sum returns the RIPEMD-128 checksum of data.
func Sum(data []byte) [Size]byte {
	h := [4]uint32{0x67452301, 0xefcdab89, 0x98badcfe, 0x10325476}

	// Pad with 0x80, zeros and the little endian bit length.
	n := len(data)
	padded := make([]byte, 0, n+BlockSize+8)
	padded = append(padded, data...)
	padded = append(padded, 0x80)
	for len(padded)%BlockSize != BlockSize-8 {
		padded = append(padded, 0)
	}
	//nolint:gosec // length is non-negative.
	padded = binary.LittleEndian.AppendUint64(padded, uint64(n)*8)

	var x [16]uint32
	for p := 0; p < len(padded); p += BlockSize {
		for i := range x {
			x[i] = binary.LittleEndian.Uint32(padded[p+4*i:])
		}

		a, b, c, d := h[0], h[1], h[2], h[3]
		ar, br, cr, dr := h[0], h[1], h[2], h[3]
		for i := range 64 {
			j := i / 16
			t := bits.RotateLeft32(a+f(j, b, c, d)+x[rl[i]]+kl[j], int(sl[i]))
			a, d, c, b = d, c, b, t

			t = bits.RotateLeft32(ar+f(3-j, br, cr, dr)+x[rr[i]]+kr[j], int(sr[i]))
			ar, dr, cr, br = dr, cr, br, t
		}

		t := h[1] + c + dr
		h[1] = h[2] + d + ar
		h[2] = h[3] + a + br
		h[3] = h[0] + b + cr
		h[0] = t
	}

	var sum [Size]byte
	for i, v := range h {
		binary.LittleEndian.PutUint32(sum[4*i:], v)
	}
	return sum
}
