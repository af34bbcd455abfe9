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

package record

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
)

// ErrSectionSize indicates that the declared size of the record section does
// not match the block sizes in its table.
var ErrSectionSize = errors.New("record section size mismatch")

// BlockInfo describes a single compressed record block.
type BlockInfo struct {
	// CompressedSize is the size of the block in the file including its
	// type tag and checksum.
	CompressedSize uint64

	// DecompressedSize is the size of the block's decoded data.
	DecompressedSize uint64

	// FileOffset is the absolute file offset of the block's first byte.
	FileOffset int64
}

// BlockTable is the record section's table of blocks.
type BlockTable struct {
	// Blocks are the record blocks in file order.
	Blocks []BlockInfo

	// NumEntries is the number of records declared in the section.
	NumEntries uint64

	// TotalSize is the declared total size of the compressed blocks.
	TotalSize uint64
}

// tableReader reads numbers of varying width sequentially.
type tableReader struct {
	r   io.Reader
	buf [8]byte
	n   int64
}

func (t *tableReader) read(width int) (uint64, error) {
	b := t.buf[:width]
	if _, err := io.ReadFull(t.r, b); err != nil {
		return 0, fmt.Errorf("reading record block table: %w", err)
	}
	t.n += int64(width)
	if width == 8 {
		return binary.BigEndian.Uint64(b), nil
	}
	return uint64(binary.BigEndian.Uint32(b)), nil
}

// ScanBlockTable reads the record block table at offset in r. version is the
// container's engine version, which determines the width of numbers in the
// table.
func ScanBlockTable(r io.ReaderAt, offset int64, version float64) (*BlockTable, error) {
	t := &tableReader{
		r: io.NewSectionReader(r, offset, math.MaxInt64-offset),
	}

	// Version 3 tables have 4 byte counts and an 8 byte total size.
	countWidth, sizeWidth := 4, 4
	switch {
	case version >= 3:
		sizeWidth = 8
	case version >= 2:
		countWidth, sizeWidth = 8, 8
	}

	numBlocks, err := t.read(countWidth)
	if err != nil {
		return nil, err
	}

	var numEntries, infoSize uint64
	infoDeclared := version < 3
	if infoDeclared {
		if numEntries, err = t.read(countWidth); err != nil {
			return nil, err
		}
		if infoSize, err = t.read(countWidth); err != nil {
			return nil, err
		}
	}
	totalSize, err := t.read(sizeWidth)
	if err != nil {
		return nil, err
	}

	pairWidth := countWidth
	if infoDeclared && infoSize != numBlocks*uint64(2*pairWidth) {
		return nil, fmt.Errorf("%w: block info is %d bytes for %d blocks", ErrSectionSize, infoSize, numBlocks)
	}

	bt := &BlockTable{
		NumEntries: numEntries,
		TotalSize:  totalSize,
	}
	var sum uint64
	for i := uint64(0); i < numBlocks; i++ {
		var b BlockInfo
		if b.CompressedSize, err = t.read(pairWidth); err != nil {
			return nil, err
		}
		if b.DecompressedSize, err = t.read(pairWidth); err != nil {
			return nil, err
		}
		sum += b.CompressedSize
		bt.Blocks = append(bt.Blocks, b)
	}

	if sum != totalSize {
		return nil, fmt.Errorf("%w: blocks are %d bytes, want %d", ErrSectionSize, sum, totalSize)
	}

	pos := offset + t.n
	for i := range bt.Blocks {
		bt.Blocks[i].FileOffset = pos
		//nolint:gosec // block sizes sum to totalSize which was read from the file.
		pos += int64(bt.Blocks[i].CompressedSize)
	}

	return bt, nil
}
