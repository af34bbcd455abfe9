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

package block

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

func TestParseType(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		tag      []byte
		expected Type
		err      error
	}{
		{
			name:     "raw",
			tag:      []byte{0, 0, 0, 0},
			expected: Raw,
		},
		{
			name:     "lzo",
			tag:      []byte{1, 0, 0, 0, 0xff},
			expected: LZO,
		},
		{
			name:     "zlib",
			tag:      []byte{2, 0, 0, 0},
			expected: Zlib,
		},
		{
			name: "unknown",
			tag:  []byte{3, 0, 0, 0},
			err:  ErrUnsupportedCompression,
		},
		{
			name: "trailing garbage",
			tag:  []byte{2, 0, 0, 1},
			err:  ErrUnsupportedCompression,
		},
		{
			name: "short",
			tag:  []byte{0, 0},
			err:  ErrTruncated,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()

			got, err := ParseType(test.tag)
			if diff := cmp.Diff(test.err, err, cmpopts.EquateErrors()); diff != "" {
				t.Fatalf("ParseType err (-want, +got):\n%s", diff)
			}
			if diff := cmp.Diff(test.expected, got); diff != "" {
				t.Fatalf("ParseType (-want, +got):\n%s", diff)
			}
		})
	}
}

func TestDecode(t *testing.T) {
	t.Parallel()

	data := []byte("<b>hoge</b>\r\n\x00fuga\x00")

	raw, err := Encode(Raw, data)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	zl, err := Encode(Zlib, data)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	badSum := append([]byte{}, raw...)
	badSum[7] ^= 0xff

	unknown := append([]byte{}, raw...)
	unknown[0] = 9

	tests := []struct {
		name  string
		block []byte
		size  uint64

		expected []byte
		err      error
	}{
		{
			name:     "raw",
			block:    raw,
			size:     uint64(len(data)),
			expected: data,
		},
		{
			name:     "zlib",
			block:    zl,
			size:     uint64(len(data)),
			expected: data,
		},
		{
			name:  "size mismatch",
			block: zl,
			size:  uint64(len(data)) + 1,
			err:   ErrSizeMismatch,
		},
		{
			name:  "bad checksum",
			block: badSum,
			size:  uint64(len(data)),
			err:   ErrChecksum,
		},
		{
			name:  "unknown type",
			block: unknown,
			size:  uint64(len(data)),
			err:   ErrUnsupportedCompression,
		},
		{
			name:  "truncated",
			block: raw[:5],
			size:  uint64(len(data)),
			err:   ErrTruncated,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()

			got, err := Decode(test.block, test.size)
			if diff := cmp.Diff(test.err, err, cmpopts.EquateErrors()); diff != "" {
				t.Fatalf("Decode err (-want, +got):\n%s", diff)
			}
			if diff := cmp.Diff(test.expected, got); diff != "" {
				t.Fatalf("Decode (-want, +got):\n%s", diff)
			}
		})
	}
}

func TestDecode_oversized(t *testing.T) {
	t.Parallel()

	// A small zlib block that inflates far past its declared size.
	zl, err := Encode(Zlib, make([]byte, 1<<24))
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	_, err = Decode(zl, 16)
	if diff := cmp.Diff(ErrSizeMismatch, err, cmpopts.EquateErrors()); diff != "" {
		t.Fatalf("Decode err (-want, +got):\n%s", diff)
	}
	// Inflation stops one byte past the declared size.
	if want := "got 17, want 16"; !strings.Contains(err.Error(), want) {
		t.Errorf("Decode err = %q, want it to contain %q", err, want)
	}
}

func TestEncode_unsupported(t *testing.T) {
	t.Parallel()

	if _, err := Encode(LZO, []byte("hoge")); err == nil {
		t.Fatal("Encode: expected failure")
	}
}
