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
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"hash/adler32"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ianlewis/go-mdict/block"
)

var (
	// ErrUnsupportedVersion indicates that the container was generated by an
	// engine version that is not supported.
	ErrUnsupportedVersion = errors.New("unsupported engine version")

	// ErrEncrypted indicates that the container is encrypted.
	ErrEncrypted = errors.New("containers encrypted with a registration code are not supported")

	// ErrKeySection indicates that the key section is malformed.
	ErrKeySection = errors.New("invalid key section")

	// ErrKeyCount indicates that the number of keys read did not match the
	// number declared in the key section.
	ErrKeyCount = errors.New("key count mismatch")
)

// Type is the kind of container.
type Type int

const (
	// TypeMDX is a text dictionary.
	TypeMDX Type = iota

	// TypeMDD is a resource container.
	TypeMDD
)

// String implements [fmt.Stringer].
func (t Type) String() string {
	if t == TypeMDD {
		return "mdd"
	}
	return "mdx"
}

// Options are options for opening a container.
type Options struct {
	// Encoding overrides the text encoding declared in the header. It has no
	// effect on .mdd containers.
	Encoding string
}

// DefaultOptions are the default options for opening a container.
var DefaultOptions = &Options{}

// Key is a single entry in the container's key list.
type Key struct {
	// RecordStart is the offset of the key's record in the concatenated
	// decompressed record data.
	RecordStart uint64

	// Text is the decoded key text.
	Text string
}

// keySection is the fixed size table at the start of the key section.
type keySection struct {
	numBlocks      uint64
	numEntries     uint64
	infoDecompSize uint64
	infoSize       uint64
	blocksSize     uint64
}

// Container is an opened MDict container. A Container does not hold the file
// open. Methods reading file data open it for the duration of the call.
type Container struct {
	path     string
	typ      Type
	header   *Header
	encoding string

	// numberWidth is the width of numbers in the key and record sections.
	numberWidth int

	keys keySection

	// keyInfoOffset is the absolute offset of the key block info.
	keyInfoOffset int64

	// recordOffset is the absolute offset of the record section.
	recordOffset int64
}

// Open opens the container at path and reads its header and key section
// table.
func Open(path string, options *Options) (*Container, error) {
	if options == nil {
		options = DefaultOptions
	}

	typ := TypeMDX
	if strings.EqualFold(filepath.Ext(path), ".mdd") {
		typ = TypeMDD
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening container: %w", err)
	}
	defer f.Close()

	r := bufio.NewReader(f)
	h, err := readHeader(r, typ)
	if err != nil {
		return nil, fmt.Errorf("reading header from %q: %w", path, err)
	}
	if h.Version() >= 3 {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedVersion, h.Version())
	}
	if h.EncryptFlags()&EncryptRecords != 0 {
		return nil, fmt.Errorf("%w: %q", ErrEncrypted, path)
	}

	c := &Container{
		path:        path,
		typ:         typ,
		header:      h,
		encoding:    h.Encoding(),
		numberWidth: 4,
	}
	if options.Encoding != "" && typ == TypeMDX {
		c.encoding = normalizeEncoding(options.Encoding)
	}
	if h.Version() >= 2 {
		c.numberWidth = 8
	}

	n, err := c.readKeySection(r)
	if err != nil {
		return nil, fmt.Errorf("reading key section from %q: %w", path, err)
	}
	c.keyInfoOffset = h.size + n
	//nolint:gosec // sizes are bounded by the file size.
	c.recordOffset = c.keyInfoOffset + int64(c.keys.infoSize) + int64(c.keys.blocksSize)

	return c, nil
}

// readKeySection reads the key section table and returns the number of bytes
// read.
func (c *Container) readKeySection(r io.Reader) (int64, error) {
	fields := 4
	if c.numberWidth == 8 {
		fields = 5
	}
	buf := make([]byte, fields*c.numberWidth)
	if _, err := io.ReadFull(r, buf); err != nil {
		return 0, fmt.Errorf("%w: %w", ErrKeySection, err)
	}
	n := int64(len(buf))

	nums := make([]uint64, fields)
	for i := range nums {
		nums[i] = c.number(buf[i*c.numberWidth:])
	}

	if c.numberWidth == 8 {
		var checksum uint32
		if err := binary.Read(r, binary.BigEndian, &checksum); err != nil {
			return 0, fmt.Errorf("%w: reading checksum: %w", ErrKeySection, err)
		}
		if sum := adler32.Checksum(buf); sum != checksum {
			return 0, fmt.Errorf("%w: checksum got %08x, want %08x", ErrKeySection, sum, checksum)
		}
		n += 4

		c.keys = keySection{
			numBlocks:      nums[0],
			numEntries:     nums[1],
			infoDecompSize: nums[2],
			infoSize:       nums[3],
			blocksSize:     nums[4],
		}
	} else {
		c.keys = keySection{
			numBlocks:  nums[0],
			numEntries: nums[1],
			infoSize:   nums[2],
			blocksSize: nums[3],
		}
	}

	return n, nil
}

func (c *Container) number(b []byte) uint64 {
	if c.numberWidth == 8 {
		return binary.BigEndian.Uint64(b)
	}
	return uint64(binary.BigEndian.Uint32(b))
}

// Path returns the path to the container file.
func (c *Container) Path() string {
	return c.path
}

// Type returns the kind of container.
func (c *Container) Type() Type {
	return c.typ
}

// Header returns the container's header.
func (c *Container) Header() *Header {
	return c.header
}

// Version returns the engine version that generated the container.
func (c *Container) Version() float64 {
	return c.header.Version()
}

// Encoding returns the encoding used for key and record text.
func (c *Container) Encoding() string {
	return c.encoding
}

// NumEntries returns the number of keys declared in the key section.
func (c *Container) NumEntries() uint64 {
	return c.keys.numEntries
}

// RecordSectionOffset returns the absolute file offset of the record section.
func (c *Container) RecordSectionOffset() int64 {
	return c.recordOffset
}

// DecodeBlock decodes a compressed record block.
func (c *Container) DecodeBlock(compressed []byte, size uint64) ([]byte, error) {
	//nolint:wrapcheck // block errors are returned as is.
	return block.Decode(compressed, size)
}
