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
	"errors"
	"fmt"
	"io"

	"github.com/op/go-logging"

	"github.com/ianlewis/go-mdict/block"
	"github.com/ianlewis/go-mdict/container"
)

var log = logging.MustGetLogger("record")

var (
	// ErrBlockVerification indicates that a record block failed to decode
	// while verifying blocks.
	ErrBlockVerification = errors.New("block verification failed")

	// ErrKeyOrder indicates that key record offsets are not strictly
	// increasing.
	ErrKeyOrder = errors.New("key offsets are not increasing")

	// ErrKeyOutOfRange indicates that a key's record starts beyond the end of
	// the last record block.
	ErrKeyOutOfRange = errors.New("key offset out of range")

	// ErrInvalidLocation indicates that a KeyLocation's offsets are not
	// consistent.
	ErrInvalidLocation = errors.New("invalid key location")
)

// BlockDecoder decodes compressed record blocks.
type BlockDecoder interface {
	// DecodeBlock decodes a compressed block whose decoded data is size
	// bytes long.
	DecodeBlock(compressed []byte, size uint64) ([]byte, error)
}

// BlockDecoderFunc is a function that implements BlockDecoder.
type BlockDecoderFunc func(compressed []byte, size uint64) ([]byte, error)

// DecodeBlock implements BlockDecoder.
func (f BlockDecoderFunc) DecodeBlock(compressed []byte, size uint64) ([]byte, error) {
	return f(compressed, size)
}

// KeyLocation is the location of a key's record.
type KeyLocation struct {
	// Key is the key text.
	Key string

	// FileOffset is the absolute file offset of the record's block.
	FileOffset int64

	// CompressedSize is the size of the record's block in the file.
	CompressedSize uint64

	// DecompressedSize is the decoded size of the record's block.
	DecompressedSize uint64

	// BlockType is the compression type of the record's block.
	BlockType block.Type

	// RecordStart is the offset of the record in the decompressed record
	// stream.
	RecordStart uint64

	// RecordEnd is the offset of the end of the record in the decompressed
	// record stream.
	RecordEnd uint64

	// BlockOffset is the offset of the block's data in the decompressed
	// record stream.
	BlockOffset uint64
}

// NewKeyLocation returns a KeyLocation for the record of key between start
// and end in blk. blockOffset is the offset of blk's data in the decompressed
// record stream.
func NewKeyLocation(key string, blk BlockInfo, typ block.Type, blockOffset, start, end uint64) (KeyLocation, error) {
	loc := KeyLocation{
		Key:              key,
		FileOffset:       blk.FileOffset,
		CompressedSize:   blk.CompressedSize,
		DecompressedSize: blk.DecompressedSize,
		BlockType:        typ,
		RecordStart:      start,
		RecordEnd:        end,
		BlockOffset:      blockOffset,
	}
	if err := loc.Validate(); err != nil {
		return KeyLocation{}, err
	}
	return loc, nil
}

// Validate checks that the location's record is non-empty and starts within
// its block.
func (l KeyLocation) Validate() error {
	if l.RecordStart >= l.RecordEnd {
		return fmt.Errorf("%w: %q: record [%d, %d) is empty", ErrInvalidLocation, l.Key, l.RecordStart, l.RecordEnd)
	}
	if l.RecordStart < l.BlockOffset || l.RecordStart-l.BlockOffset >= l.DecompressedSize {
		return fmt.Errorf("%w: %q: record start %d outside block [%d, %d)",
			ErrInvalidLocation, l.Key, l.RecordStart, l.BlockOffset, l.BlockOffset+l.DecompressedSize)
	}
	return nil
}

// SpansBlocks reports whether the record extends past the end of its block.
func (l KeyLocation) SpansBlocks() bool {
	return l.RecordEnd-l.BlockOffset > l.DecompressedSize
}

// LocateOptions are options for Locate.
type LocateOptions struct {
	// CheckBlocks decodes every block and fails if any block cannot be
	// decoded. Decoder must be set when CheckBlocks is true.
	CheckBlocks bool

	// Decoder decodes blocks when CheckBlocks is true.
	Decoder BlockDecoder
}

// DefaultLocateOptions are the default options for Locate.
var DefaultLocateOptions = &LocateOptions{}

// Locate assigns each key a KeyLocation. keys must be ordered by their
// record offsets. Only the 4 byte type tag of each block is read from r
// unless options.CheckBlocks is set.
func Locate(r io.ReaderAt, blocks []BlockInfo, keys []container.Key, options *LocateOptions) ([]KeyLocation, error) {
	if options == nil {
		options = DefaultLocateOptions
	}
	if options.CheckBlocks && options.Decoder == nil {
		return nil, fmt.Errorf("%w: no decoder", ErrBlockVerification)
	}

	for i := 1; i < len(keys); i++ {
		if keys[i].RecordStart <= keys[i-1].RecordStart {
			return nil, fmt.Errorf("%w: %q at %d follows %q at %d",
				ErrKeyOrder, keys[i].Text, keys[i].RecordStart, keys[i-1].Text, keys[i-1].RecordStart)
		}
	}

	locs := make([]KeyLocation, 0, len(keys))
	var cumulative uint64
	next := 0
	for i, blk := range blocks {
		typ, err := readType(r, blk, options)
		if err != nil {
			return nil, fmt.Errorf("record block %d: %w", i, err)
		}

		for next < len(keys) && keys[next].RecordStart-cumulative < blk.DecompressedSize {
			end := cumulative + blk.DecompressedSize
			if next+1 < len(keys) {
				end = keys[next+1].RecordStart
			}

			loc, err := NewKeyLocation(keys[next].Text, blk, typ, cumulative, keys[next].RecordStart, end)
			if err != nil {
				return nil, err
			}
			if loc.SpansBlocks() {
				log.Warningf("record for %q spans blocks: [%d, %d) extends past block %d ending at %d",
					loc.Key, loc.RecordStart, loc.RecordEnd, i, cumulative+blk.DecompressedSize)
			}
			locs = append(locs, loc)
			next++
		}

		cumulative += blk.DecompressedSize
	}

	if next < len(keys) {
		return nil, fmt.Errorf("%w: %q at %d, record data ends at %d", ErrKeyOutOfRange, keys[next].Text, keys[next].RecordStart, cumulative)
	}

	return locs, nil
}

// readType reads the block's type tag and, when checking blocks, decodes the
// whole block.
func readType(r io.ReaderAt, blk BlockInfo, options *LocateOptions) (block.Type, error) {
	size := uint64(4)
	if options.CheckBlocks {
		size = blk.CompressedSize
	}
	if blk.CompressedSize < size {
		return 0, fmt.Errorf("%w: %d bytes", block.ErrTruncated, blk.CompressedSize)
	}

	buf := make([]byte, size)
	if _, err := r.ReadAt(buf, blk.FileOffset); err != nil {
		return 0, fmt.Errorf("reading block at %d: %w", blk.FileOffset, err)
	}

	typ, err := block.ParseType(buf)
	if err != nil {
		//nolint:wrapcheck // error should not be wrapped
		return 0, err
	}

	if options.CheckBlocks {
		data, err := options.Decoder.DecodeBlock(buf, blk.DecompressedSize)
		if err != nil {
			return 0, fmt.Errorf("%w: %w", ErrBlockVerification, err)
		}
		if uint64(len(data)) != blk.DecompressedSize {
			return 0, fmt.Errorf("%w: decoded %d bytes, want %d", ErrBlockVerification, len(data), blk.DecompressedSize)
		}
	}
	return typ, nil
}
