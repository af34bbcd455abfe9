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

// Package stylesheet implements MDict stylesheets.
//
// MDict text dictionaries may compact repeated markup by replacing it with
// numeric tags of the form `N` inside definitions. The container header
// carries the stylesheet which maps each tag to a pair of opening and
// closing markup. Text following a tag, up to the next tag, is wrapped in
// the tag's markup.
package stylesheet

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode"
)

var errInvalidStyle = errors.New("invalid style")

var (
	tagRegex     = regexp.MustCompile("`\\d+`")
	newlineRegex = regexp.MustCompile("\r\n|\n|\r")
)

// Style is the markup that wraps text following a tag.
type Style struct {
	Open  string
	Close string
}

// MarshalJSON encodes the style as a two element array.
func (s Style) MarshalJSON() ([]byte, error) {
	return marshal([2]string{s.Open, s.Close})
}

// UnmarshalJSON decodes a style from a two element array.
func (s *Style) UnmarshalJSON(b []byte) error {
	var pair []string
	if err := json.Unmarshal(b, &pair); err != nil {
		return fmt.Errorf("%w: %w", errInvalidStyle, err)
	}
	if len(pair) != 2 {
		return fmt.Errorf("%w: %d elements", errInvalidStyle, len(pair))
	}
	s.Open, s.Close = pair[0], pair[1]
	return nil
}

// Stylesheet maps tag numbers to styles.
type Stylesheet map[string]Style

// Parse parses the value of a container header's StyleSheet attribute. The
// value is a sequence of lines in groups of three: the tag number, the
// opening markup and the closing markup. An incomplete trailing group is
// ignored.
func Parse(value string) Stylesheet {
	s := Stylesheet{}
	if value == "" {
		return s
	}

	lines := newlineRegex.Split(value, -1)
	// A trailing line break does not start a new line.
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	for i := 0; i+2 < len(lines); i += 3 {
		s[strings.TrimSpace(lines[i])] = Style{
			Open:  lines[i+1],
			Close: lines[i+2],
		}
	}
	return s
}

// Apply replaces the tags in text with the stylesheet's markup. Unknown tags
// are replaced with nothing. When the text following a tag ends with a line
// break the closing markup is placed before a normalized "\r\n" line ending.
func (s Stylesheet) Apply(text string) string {
	matches := tagRegex.FindAllStringIndex(text, -1)
	if len(matches) == 0 {
		return text
	}

	var b strings.Builder
	b.Grow(len(text))
	b.WriteString(text[:matches[0][0]])
	for i, m := range matches {
		end := len(text)
		if i+1 < len(matches) {
			end = matches[i+1][0]
		}
		part := text[m[1]:end]
		style := s[text[m[0]+1:m[1]-1]]

		b.WriteString(style.Open)
		if strings.HasSuffix(part, "\n") {
			b.WriteString(strings.TrimRightFunc(part, unicode.IsSpace))
			b.WriteString(style.Close)
			b.WriteString("\r\n")
		} else {
			b.WriteString(part)
			b.WriteString(style.Close)
		}
	}
	return b.String()
}

// Marshal serializes the stylesheet as a JSON object.
func (s Stylesheet) Marshal() (string, error) {
	if s == nil {
		s = Stylesheet{}
	}
	b, err := marshal(s)
	if err != nil {
		return "", fmt.Errorf("marshaling stylesheet: %w", err)
	}
	return string(b), nil
}

// marshal encodes v as JSON leaving markup characters unescaped.
func marshal(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		//nolint:wrapcheck // error should not be wrapped
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// Unmarshal parses a stylesheet serialized with Marshal. An empty string is
// an empty stylesheet.
func Unmarshal(data string) (Stylesheet, error) {
	s := Stylesheet{}
	if data == "" {
		return s, nil
	}
	if err := json.Unmarshal([]byte(data), &s); err != nil {
		return nil, fmt.Errorf("unmarshaling stylesheet: %w", err)
	}
	return s, nil
}
