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

package container

import (
	"encoding/binary"
	"errors"
	"fmt"
	"hash/adler32"
	"html"
	"io"
	"math"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/encoding/unicode"

	"github.com/ianlewis/go-mdict/stylesheet"
)

var (
	// ErrBadHeader indicates that the container header could not be parsed.
	ErrBadHeader = errors.New("bad header")

	// ErrHeaderChecksum indicates that the header's Adler-32 checksum did not
	// match.
	ErrHeaderChecksum = errors.New("header checksum mismatch")
)

// maxHeaderSize bounds the size of the header tag read from a file.
const maxHeaderSize = 16 << 20

var attrRegex = regexp.MustCompile(`(?s)(\w+)="(.*?)"`)

// Header is the container's header metadata.
type Header struct {
	attrs map[string]string

	version    float64
	encoding   string
	stylesheet stylesheet.Stylesheet

	// size is the number of bytes the header occupies in the file.
	size int64
}

// readHeader reads the header from the start of r.
func readHeader(r io.Reader, typ Type) (*Header, error) {
	var tagSize uint32
	if err := binary.Read(r, binary.BigEndian, &tagSize); err != nil {
		return nil, fmt.Errorf("%w: reading size: %w", ErrBadHeader, err)
	}
	if tagSize > maxHeaderSize {
		return nil, fmt.Errorf("%w: size %d too large", ErrBadHeader, tagSize)
	}

	tag := make([]byte, tagSize)
	if _, err := io.ReadFull(r, tag); err != nil {
		return nil, fmt.Errorf("%w: reading tag: %w", ErrBadHeader, err)
	}

	var checksum uint32
	if err := binary.Read(r, binary.LittleEndian, &checksum); err != nil {
		return nil, fmt.Errorf("%w: reading checksum: %w", ErrBadHeader, err)
	}
	if sum := adler32.Checksum(tag); sum != checksum {
		return nil, fmt.Errorf("%w: got %08x, want %08x", ErrHeaderChecksum, sum, checksum)
	}

	h, err := parseHeader(tag, typ)
	if err != nil {
		return nil, err
	}
	h.size = int64(tagSize) + 8
	return h, nil
}

// parseHeader parses the UTF-16LE encoded header tag.
func parseHeader(tag []byte, typ Type) (*Header, error) {
	text, err := unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM).NewDecoder().Bytes(tag)
	if err != nil {
		return nil, fmt.Errorf("%w: decoding tag: %w", ErrBadHeader, err)
	}

	h := &Header{
		attrs: map[string]string{},
	}
	for _, m := range attrRegex.FindAllSubmatch(text, -1) {
		h.attrs[string(m[1])] = html.UnescapeString(string(m[2]))
	}

	v := h.attrs["GeneratedByEngineVersion"]
	if v == "" {
		return nil, fmt.Errorf("%w: missing engine version", ErrBadHeader)
	}
	h.version, err = strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil || math.IsNaN(h.version) {
		return nil, fmt.Errorf("%w: invalid engine version %q", ErrBadHeader, v)
	}

	h.encoding = normalizeEncoding(h.attrs["Encoding"])
	if typ == TypeMDD {
		h.encoding = "UTF-16"
	}
	h.stylesheet = stylesheet.Parse(h.attrs["StyleSheet"])

	return h, nil
}

func normalizeEncoding(enc string) string {
	switch strings.ToUpper(strings.TrimSpace(enc)) {
	case "":
		return "UTF-8"
	case "GBK", "GB2312":
		return "GB18030"
	case "UTF16":
		return "UTF-16"
	default:
		return enc
	}
}

// Value returns the raw value of a header attribute.
func (h *Header) Value(key string) string {
	return h.attrs[key]
}

// Version returns the engine version that generated the container.
func (h *Header) Version() float64 {
	return h.version
}

// Encoding returns the container's text encoding.
func (h *Header) Encoding() string {
	return h.encoding
}

// Title returns the dictionary title.
func (h *Header) Title() string {
	return h.attrs["Title"]
}

// Description returns the dictionary description.
func (h *Header) Description() string {
	return h.attrs["Description"]
}

// Stylesheet returns the dictionary's stylesheet.
func (h *Header) Stylesheet() stylesheet.Stylesheet {
	return h.stylesheet
}

// Encryption flags of the Encrypted attribute.
const (
	// EncryptRecords is set when the key section header and record blocks
	// are encrypted with a registration code.
	EncryptRecords = 1

	// EncryptKeyInfo is set when the key block info is scrambled with a key
	// derived from its checksum.
	EncryptKeyInfo = 2
)

// EncryptFlags returns the container's encryption flags.
func (h *Header) EncryptFlags() int {
	v := strings.TrimSpace(h.attrs["Encrypted"])
	switch v {
	case "", "No", "no":
		return 0
	case "Yes", "yes":
		return EncryptRecords
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return EncryptRecords
	}
	return n
}

// Encrypted reports whether any part of the container is encrypted.
func (h *Header) Encrypted() bool {
	return h.EncryptFlags() != 0
}
