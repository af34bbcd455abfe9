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

package folding

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"golang.org/x/text/transform"
)

func TestWhitespace_Transform(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		src   []byte
		dst   []byte
		atEOF bool

		expected []byte
		nDst     int
		nSrc     int
		err      error
	}{
		{
			name:  "leading and trailing whitespace",
			src:   []byte(" \t　hoge\t　 "),
			dst:   make([]byte, 6),
			atEOF: true,

			expected: []byte{'h', 'o', 'g', 'e', 0, 0},
			nDst:     4,
			nSrc:     14,
		},
		{
			name:  "internal spans",
			src:   []byte("a  lot\t　of\nspace"),
			dst:   make([]byte, 16),
			atEOF: true,

			expected: []byte{'a', ' ', 'l', 'o', 't', ' ', 'o', 'f', ' ', 's', 'p', 'a', 'c', 'e', 0, 0},
			nDst:     14,
			nSrc:     18,
		},
		{
			name:  "short dst",
			src:   []byte(" hoge fuga"),
			dst:   make([]byte, 4),
			atEOF: true,

			expected: []byte{'h', 'o', 'g', 'e'},
			nDst:     4,
			nSrc:     6,
			err:      transform.ErrShortDst,
		},
		{
			name: "short src",
			// NOTE: only the first byte of U+3000 is included.
			src:   []byte("hoge 　")[:6],
			dst:   make([]byte, 8),
			atEOF: false,

			expected: []byte{'h', 'o', 'g', 'e', 0, 0, 0, 0},
			nDst:     4,
			nSrc:     5,
			err:      transform.ErrShortSrc,
		},
		{
			name:  "invalid byte",
			src:   []byte{'a', ' ', 0xe3, ' ', 'b'},
			dst:   make([]byte, 8),
			atEOF: true,

			// NOTE: []byte{0xef, 0xbf, 0xbd} is utf8.RuneError.
			expected: []byte{'a', ' ', 0xef, 0xbf, 0xbd, ' ', 'b', 0},
			nDst:     7,
			nSrc:     5,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()

			w := Whitespace()
			nDst, nSrc, err := w.Transform(test.dst, test.src, test.atEOF)
			if diff := cmp.Diff(test.err, err, cmpopts.EquateErrors()); diff != "" {
				t.Fatalf("err (-want, +got):\n%s", diff)
			}
			if diff := cmp.Diff(test.nDst, nDst); diff != "" {
				t.Fatalf("nDst (-want, +got):\n%s", diff)
			}
			if diff := cmp.Diff(test.nSrc, nSrc); diff != "" {
				t.Fatalf("nSrc (-want, +got):\n%s", diff)
			}
			if diff := cmp.Diff(test.expected, test.dst); diff != "" {
				t.Fatalf("dst (-want, +got):\n%s", diff)
			}
		})
	}
}

func TestQuery(t *testing.T) {
	t.Parallel()

	got, _, err := transform.String(Query(), "  look\x00 \t up\n")
	if err != nil {
		t.Fatalf("transform.String: %v", err)
	}
	if want := "look up"; got != want {
		t.Fatalf("Query: want %q, got %q", want, got)
	}
}
