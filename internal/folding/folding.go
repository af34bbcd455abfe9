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

// Package folding implements normalization of lookup queries.
package folding

import (
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
)

// Query returns a transformer suitable for normalizing user supplied lookup
// words. It folds whitespace and removes control characters.
func Query() transform.Transformer {
	return transform.Chain(Whitespace(), runes.Remove(runes.In(unicode.Cc)))
}

// Whitespace returns a transformer that removes whitespace from the start and
// end of the input and replaces each internal run of whitespace with a single
// ASCII space.
func Whitespace() transform.Transformer {
	return &whitespace{}
}

type whitespace struct {
	// text is set once a non-space rune has been written.
	text bool

	// pending is set while skipping a whitespace run that follows text.
	pending bool
}

// Transform implements [transform.Transformer.Transform].
func (w *whitespace) Transform(dst, src []byte, atEOF bool) (nDst, nSrc int, err error) {
	for nSrc < len(src) {
		r, size := utf8.DecodeRune(src[nSrc:])
		if r == utf8.RuneError && !atEOF && !utf8.FullRune(src[nSrc:]) {
			return nDst, nSrc, transform.ErrShortSrc
		}

		if unicode.IsSpace(r) {
			// Whitespace is only emitted once the following text is seen,
			// which drops both leading and trailing runs.
			w.pending = w.text
			nSrc += size
			continue
		}

		// A replaced invalid byte is written as a full utf8.RuneError.
		need := utf8.RuneLen(r)
		if w.pending {
			need++
		}
		if nDst+need > len(dst) {
			return nDst, nSrc, transform.ErrShortDst
		}
		if w.pending {
			dst[nDst] = ' '
			nDst++
			w.pending = false
		}
		nDst += utf8.EncodeRune(dst[nDst:], r)
		nSrc += size
		w.text = true
	}
	return nDst, nSrc, nil
}

// Reset implements [transform.Transformer.Reset].
func (w *whitespace) Reset() {
	*w = whitespace{}
}
