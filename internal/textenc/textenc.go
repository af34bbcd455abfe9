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

// Package textenc decodes dictionary text in the encodings declared by MDict
// containers.
package textenc

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
)

// ErrUnknownEncoding indicates that an encoding name is not recognized.
var ErrUnknownEncoding = errors.New("unknown encoding")

// Lookup returns the encoding for the given name. Names are matched case
// insensitively against the WHATWG encoding labels. An empty name is UTF-8.
func Lookup(name string) (encoding.Encoding, error) {
	label := strings.ToLower(strings.TrimSpace(name))
	switch label {
	case "":
		label = "utf-8"
	case "utf16":
		label = "utf-16le"
	}
	e, err := htmlindex.Get(label)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownEncoding, name)
	}
	return e, nil
}

// Decode decodes b to a UTF-8 string. Decoding is lossy: byte sequences that
// are invalid in the source encoding are dropped.
func Decode(b []byte, name string) (string, error) {
	e, err := Lookup(name)
	if err != nil {
		return "", err
	}

	t := transform.Chain(e.NewDecoder(), runes.Remove(runes.Predicate(func(r rune) bool {
		return r == utf8.RuneError
	})))
	s, _, err := transform.Bytes(t, b)
	if err != nil {
		return "", fmt.Errorf("decoding %s text: %w", name, err)
	}
	return string(s), nil
}
