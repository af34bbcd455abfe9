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
	"hash/adler32"
	"html"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"testing"

	"golang.org/x/text/encoding/unicode"

	"github.com/ianlewis/go-mdict/block"
)

// Entry is a dictionary entry written to a test container.
type Entry struct {
	Key  string
	Data []byte
}

// ContainerOptions are options for building a test container.
type ContainerOptions struct {
	// Version is the GeneratedByEngineVersion attribute. Defaults to "2.0".
	Version string

	// Encoding is the Encoding attribute. It is omitted when empty. Keys are
	// written as UTF-16LE when Encoding is "UTF-16" or the container is an
	// .mdd file.
	Encoding string

	Title       string
	Description string
	StyleSheet  string

	// Encrypted is the Encrypted attribute. Defaults to "No".
	Encrypted string

	// KeysPerBlock is the number of keys in each key block. Zero puts all
	// keys in one block.
	KeysPerBlock int

	// RecordsPerBlock is the number of records in each record block. Zero
	// puts all records in one block.
	RecordsPerBlock int

	// RecordBlockType is the compression type of record blocks.
	RecordBlockType block.Type

	// RecordTag overrides the 4 byte type tag written to record blocks.
	RecordTag []byte

	// CorruptChecksum writes invalid checksums to record blocks.
	CorruptChecksum bool
}

func (o *ContainerOptions) version() string {
	if o.Version == "" {
		return "2.0"
	}
	return o.Version
}

func (o *ContainerOptions) numberWidth() int {
	if strings.HasPrefix(o.version(), "1.") {
		return 4
	}
	return 8
}

// MakeContainer writes a test container named "dict"+ext in a temporary
// directory and returns its path. ext is either ".mdx" or ".mdd".
func MakeContainer(t *testing.T, ext string, entries []Entry, opts *ContainerOptions) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "dict"+ext)
	WriteContainer(t, path, entries, opts)
	return path
}

// WriteContainer writes a test container to path. The container type is
// determined by the path's extension. Entries are sorted by key.
func WriteContainer(t *testing.T, path string, entries []Entry, opts *ContainerOptions) {
	t.Helper()
	if opts == nil {
		opts = &ContainerOptions{}
	}

	sorted := append([]Entry(nil), entries...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Key < sorted[j].Key
	})

	mdd := strings.EqualFold(filepath.Ext(path), ".mdd")
	wide := mdd || strings.EqualFold(opts.Encoding, "UTF-16")

	b := MakeHeader(t, headerAttrs(opts, mdd), mdd)
	b = append(b, makeKeySection(t, sorted, opts, wide)...)
	b = append(b, MakeRecordSection(t, sorted, opts)...)

	if err := os.WriteFile(path, b, 0o600); err != nil {
		t.Fatal(err)
	}
}

func headerAttrs(opts *ContainerOptions, mdd bool) [][2]string {
	encrypted := opts.Encrypted
	if encrypted == "" {
		encrypted = "No"
	}
	attrs := [][2]string{
		{"GeneratedByEngineVersion", opts.version()},
		{"RequiredEngineVersion", opts.version()},
		{"Encrypted", encrypted},
	}
	if opts.Encoding != "" && !mdd {
		attrs = append(attrs, [2]string{"Encoding", opts.Encoding})
	}
	if !mdd {
		attrs = append(attrs,
			[2]string{"Format", "Html"},
			[2]string{"CreationDate", "2026-1-1"},
			[2]string{"Title", opts.Title},
			[2]string{"Description", opts.Description},
			[2]string{"StyleSheet", opts.StyleSheet},
		)
	}
	return attrs
}

// MakeHeader makes a container header with the given attributes.
func MakeHeader(t *testing.T, attrs [][2]string, mdd bool) []byte {
	t.Helper()

	var sb strings.Builder
	if mdd {
		sb.WriteString("<Library_Data")
	} else {
		sb.WriteString("<Dictionary")
	}
	for _, a := range attrs {
		fmt.Fprintf(&sb, " %s=\"%s\"", a[0], html.EscapeString(a[1]))
	}
	sb.WriteString("/>\r\n\x00")

	tag, err := unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM).NewEncoder().Bytes([]byte(sb.String()))
	if err != nil {
		t.Fatal(err)
	}

	//nolint:gosec // test code, header is small.
	b := binary.BigEndian.AppendUint32(nil, uint32(len(tag)))
	b = append(b, tag...)
	return binary.LittleEndian.AppendUint32(b, adler32.Checksum(tag))
}

func makeKeySection(t *testing.T, entries []Entry, opts *ContainerOptions, wide bool) []byte {
	t.Helper()

	width := opts.numberWidth()
	perBlock := opts.KeysPerBlock
	if perBlock <= 0 {
		perBlock = len(entries)
	}

	var (
		info   []byte
		blocks []byte
		start  uint64
		n      int
	)
	for i := 0; i < len(entries); i += perBlock {
		chunk := entries[i:min(i+perBlock, len(entries))]
		keys := make([]Key, 0, len(chunk))
		for _, e := range chunk {
			keys = append(keys, Key{RecordStart: start, Text: e.Key})
			start += uint64(len(e.Data))
		}

		data := MakeKeyBlock(keys, width, wide)
		typ := block.Zlib
		if width == 4 {
			typ = block.Raw
		}
		compressed, err := block.Encode(typ, data)
		if err != nil {
			t.Fatal(err)
		}
		blocks = append(blocks, compressed...)

		info = appendNumber(info, uint64(len(chunk)), width)
		info = appendKeyInfoText(info, chunk[0].Key, width, wide)
		info = appendKeyInfoText(info, chunk[len(chunk)-1].Key, width, wide)
		info = appendNumber(info, uint64(len(compressed)), width)
		info = appendNumber(info, uint64(len(data)), width)
		n++
	}

	infoDecompSize := len(info)
	if width == 8 {
		var err error
		info, err = block.Encode(block.Zlib, info)
		if err != nil {
			t.Fatal(err)
		}
		if flags, err := strconv.Atoi(opts.Encrypted); err == nil && flags&2 != 0 {
			info = EncryptKeyInfo(info)
		}
	}

	var b []byte
	//nolint:gosec // test code, sizes are non-negative.
	nums := []uint64{uint64(n), uint64(len(entries)), uint64(infoDecompSize), uint64(len(info)), uint64(len(blocks))}
	if width == 4 {
		nums = []uint64{nums[0], nums[1], nums[3], nums[4]}
	}
	for _, v := range nums {
		b = appendNumber(b, v, width)
	}
	if width == 8 {
		b = binary.BigEndian.AppendUint32(b, adler32.Checksum(b))
	}
	b = append(b, info...)
	return append(b, blocks...)
}

// appendKeyInfoText appends the size prefixed first or last key of a key
// block to the key block info.
func appendKeyInfoText(b []byte, text string, width int, wide bool) []byte {
	enc := encodeText(text, wide)
	size := len(enc)
	if wide {
		size /= 2
	}
	if width == 8 {
		//nolint:gosec // test code, keys are short.
		b = binary.BigEndian.AppendUint16(b, uint16(size))
		b = append(b, enc...)
		return append(b, terminator(wide)...)
	}
	//nolint:gosec // test code, keys are short.
	b = append(b, byte(size))
	return append(b, enc...)
}

// MakeRecordSection makes a record section holding the data of entries in
// order.
func MakeRecordSection(t *testing.T, entries []Entry, opts *ContainerOptions) []byte {
	t.Helper()
	if opts == nil {
		opts = &ContainerOptions{}
	}

	width := opts.numberWidth()
	perBlock := opts.RecordsPerBlock
	if perBlock <= 0 {
		perBlock = max(len(entries), 1)
	}

	var (
		info   []byte
		blocks []byte
		n      uint64
	)
	for i := 0; i < len(entries); i += perBlock {
		var data []byte
		for _, e := range entries[i:min(i+perBlock, len(entries))] {
			data = append(data, e.Data...)
		}
		compressed, err := block.Encode(opts.RecordBlockType, data)
		if err != nil {
			t.Fatal(err)
		}
		if opts.RecordTag != nil {
			copy(compressed, opts.RecordTag)
		}
		if opts.CorruptChecksum {
			compressed[4] ^= 0xff
		}
		blocks = append(blocks, compressed...)
		info = appendNumber(info, uint64(len(compressed)), width)
		info = appendNumber(info, uint64(len(data)), width)
		n++
	}

	var b []byte
	b = appendNumber(b, n, width)
	b = appendNumber(b, uint64(len(entries)), width)
	b = appendNumber(b, uint64(len(info)), width)
	b = appendNumber(b, uint64(len(blocks)), width)
	b = append(b, info...)
	return append(b, blocks...)
}
