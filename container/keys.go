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
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/ianlewis/go-mdict/block"
	"github.com/ianlewis/go-mdict/internal/textenc"
)

// keyBlockInfo describes one key block.
type keyBlockInfo struct {
	numEntries       uint64
	compressedSize   uint64
	decompressedSize uint64
}

// Keys reads every key in the container in file order.
func (c *Container) Keys() ([]Key, error) {
	f, err := os.Open(c.path)
	if err != nil {
		return nil, fmt.Errorf("opening container: %w", err)
	}
	defer f.Close()

	r := io.NewSectionReader(f, c.keyInfoOffset, c.recordOffset-c.keyInfoOffset)

	//nolint:gosec // infoSize is bounded by the section size.
	info := make([]byte, c.keys.infoSize)
	if _, err := io.ReadFull(r, info); err != nil {
		return nil, fmt.Errorf("%w: reading key block info: %w", ErrKeySection, err)
	}
	blocks, err := c.parseKeyBlockInfo(info)
	if err != nil {
		return nil, err
	}

	keys := make([]Key, 0, c.keys.numEntries)
	var total uint64
	for i, b := range blocks {
		compressed := make([]byte, b.compressedSize)
		if _, err := io.ReadFull(r, compressed); err != nil {
			return nil, fmt.Errorf("%w: reading key block %d: %w", ErrKeySection, i, err)
		}
		data, err := block.Decode(compressed, b.decompressedSize)
		if err != nil {
			return nil, fmt.Errorf("decoding key block %d: %w", i, err)
		}
		before := len(keys)
		keys, err = c.splitKeys(keys, data)
		if err != nil {
			return nil, fmt.Errorf("splitting key block %d: %w", i, err)
		}
		if got := uint64(len(keys) - before); got != b.numEntries {
			return nil, fmt.Errorf("%w: key block %d has %d keys, want %d", ErrKeyCount, i, got, b.numEntries)
		}
		total += b.compressedSize
	}

	if total != c.keys.blocksSize {
		return nil, fmt.Errorf("%w: key blocks are %d bytes, want %d", ErrKeySection, total, c.keys.blocksSize)
	}
	if uint64(len(keys)) != c.keys.numEntries {
		return nil, fmt.Errorf("%w: read %d keys, want %d", ErrKeyCount, len(keys), c.keys.numEntries)
	}
	return keys, nil
}

// textWidth returns the width of a character unit in key text.
func (c *Container) textWidth() int {
	if c.typ == TypeMDD || c.encoding == "UTF-16" {
		return 2
	}
	return 1
}

// parseKeyBlockInfo parses the key block info table.
func (c *Container) parseKeyBlockInfo(info []byte) ([]keyBlockInfo, error) {
	if c.numberWidth == 8 {
		if c.header.EncryptFlags()&EncryptKeyInfo != 0 {
			info = decryptKeyInfo(info)
		}
		var err error
		info, err = block.Decode(info, c.keys.infoDecompSize)
		if err != nil {
			return nil, fmt.Errorf("decoding key block info: %w", err)
		}
	}

	// Version 2 key sizes are 2 bytes and exclude a terminator that is
	// present in the data. Version 1 sizes are 1 byte without a terminator.
	sizeWidth, term := 1, 0
	if c.numberWidth == 8 {
		sizeWidth, term = 2, 1
	}
	width := c.textWidth()

	blocks := make([]keyBlockInfo, 0, c.keys.numBlocks)
	var entries uint64
	p := 0
	next := func(n int) ([]byte, error) {
		if p+n > len(info) {
			return nil, fmt.Errorf("%w: key block info truncated at %d", ErrKeySection, p)
		}
		b := info[p : p+n]
		p += n
		return b, nil
	}
	skipKey := func() error {
		b, err := next(sizeWidth)
		if err != nil {
			return err
		}
		size := int(b[0])
		if sizeWidth == 2 {
			size = int(b[0])<<8 | int(b[1])
		}
		_, err = next((size + term) * width)
		return err
	}

	for uint64(len(blocks)) < c.keys.numBlocks {
		var kb keyBlockInfo
		b, err := next(c.numberWidth)
		if err != nil {
			return nil, err
		}
		kb.numEntries = c.number(b)

		// First and last keys are only used for bisecting key blocks.
		if err := skipKey(); err != nil {
			return nil, err
		}
		if err := skipKey(); err != nil {
			return nil, err
		}

		if b, err = next(c.numberWidth); err != nil {
			return nil, err
		}
		kb.compressedSize = c.number(b)
		if b, err = next(c.numberWidth); err != nil {
			return nil, err
		}
		kb.decompressedSize = c.number(b)

		entries += kb.numEntries
		blocks = append(blocks, kb)
	}

	if entries != c.keys.numEntries {
		return nil, fmt.Errorf("%w: key block info declares %d keys, want %d", ErrKeyCount, entries, c.keys.numEntries)
	}
	return blocks, nil
}

// splitKeys appends the keys in a decoded key block to keys.
func (c *Container) splitKeys(keys []Key, data []byte) ([]Key, error) {
	s := bufio.NewScanner(bytes.NewReader(data))
	s.Buffer(make([]byte, 0, 4096), len(data)+1)
	s.Split(c.splitKey)

	for s.Scan() {
		tok := s.Bytes()
		text, err := textenc.Decode(tok[c.numberWidth:len(tok)-c.textWidth()], c.encoding)
		if err != nil {
			return keys, fmt.Errorf("decoding key text: %w", err)
		}
		keys = append(keys, Key{
			RecordStart: c.number(tok),
			Text:        text,
		})
	}
	//nolint:wrapcheck // error should not be wrapped
	return keys, s.Err()
}

// splitKey splits a key entry: a record offset followed by NUL terminated
// text.
func (c *Container) splitKey(data []byte, atEOF bool) (advance int, token []byte, err error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}

	width := c.textWidth()
	for i := c.numberWidth; i+width <= len(data); i += width {
		if data[i] == 0 && (width == 1 || data[i+1] == 0) {
			return i + width, data[:i+width], nil
		}
	}

	if atEOF {
		return 0, nil, fmt.Errorf("%w: unterminated key", ErrKeySection)
	}

	// Request more data.
	return 0, nil, nil
}
