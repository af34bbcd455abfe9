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

package block

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"hash/adler32"
	"io"
	"math"

	"github.com/klauspost/compress/zlib"
	"github.com/rasky/go-lzo"
)

// HeaderSize is the size of the type tag and checksum preceding the payload.
const HeaderSize = 8

var (
	// ErrUnsupportedCompression indicates that a block's type tag is not one
	// of the known compression types.
	ErrUnsupportedCompression = errors.New("unsupported compression type")

	// ErrSizeMismatch indicates that a decoded block's length does not match
	// its declared decompressed size.
	ErrSizeMismatch = errors.New("decompressed size mismatch")

	// ErrChecksum indicates that the Adler-32 checksum of a decoded block did
	// not match the checksum stored in the block.
	ErrChecksum = errors.New("checksum mismatch")

	// ErrTruncated indicates that a block is too short to hold its header.
	ErrTruncated = errors.New("truncated block")
)

// Type is a block's compression type.
type Type uint8

const (
	// Raw blocks hold uncompressed data.
	Raw Type = 0

	// LZO blocks are compressed with LZO1X.
	LZO Type = 1

	// Zlib blocks are compressed with zlib.
	Zlib Type = 2
)

// String implements [fmt.Stringer].
func (t Type) String() string {
	switch t {
	case Raw:
		return "raw"
	case LZO:
		return "lzo"
	case Zlib:
		return "zlib"
	default:
		return fmt.Sprintf("Type(%d)", uint8(t))
	}
}

// ParseType returns the compression type for the 4 byte tag at the start of
// a block.
func ParseType(tag []byte) (Type, error) {
	if len(tag) < 4 {
		return 0, fmt.Errorf("%w: %d byte tag", ErrTruncated, len(tag))
	}
	switch {
	case bytes.Equal(tag[:4], []byte{0, 0, 0, 0}):
		return Raw, nil
	case bytes.Equal(tag[:4], []byte{1, 0, 0, 0}):
		return LZO, nil
	case bytes.Equal(tag[:4], []byte{2, 0, 0, 0}):
		return Zlib, nil
	default:
		return 0, fmt.Errorf("%w: %x", ErrUnsupportedCompression, tag[:4])
	}
}

// Tag returns the 4 byte tag for the compression type.
func (t Type) Tag() []byte {
	return []byte{byte(t), 0, 0, 0}
}

// Decode decodes a compressed block and verifies that the result is exactly
// decompressedSize bytes long and matches the block's checksum.
func Decode(compressed []byte, decompressedSize uint64) ([]byte, error) {
	if len(compressed) < HeaderSize {
		return nil, fmt.Errorf("%w: %d bytes", ErrTruncated, len(compressed))
	}
	if decompressedSize > math.MaxInt32 {
		return nil, fmt.Errorf("%w: declared size %d too large", ErrSizeMismatch, decompressedSize)
	}

	t, err := ParseType(compressed)
	if err != nil {
		return nil, err
	}
	checksum := binary.BigEndian.Uint32(compressed[4:8])
	payload := compressed[HeaderSize:]

	var out []byte
	switch t {
	case Raw:
		out = payload
	case LZO:
		//nolint:gosec // decompressedSize is bounds checked above.
		out, err = lzo.Decompress1X(bytes.NewReader(payload), len(payload), int(decompressedSize))
		if err != nil {
			return nil, fmt.Errorf("lzo decompress: %w", err)
		}
	case Zlib:
		out, err = inflate(payload, decompressedSize)
		if err != nil {
			return nil, fmt.Errorf("zlib decompress: %w", err)
		}
	}

	if uint64(len(out)) != decompressedSize {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrSizeMismatch, len(out), decompressedSize)
	}
	if sum := adler32.Checksum(out); sum != checksum {
		return nil, fmt.Errorf("%w: got %08x, want %08x", ErrChecksum, sum, checksum)
	}
	return out, nil
}

func inflate(payload []byte, sizeHint uint64) ([]byte, error) {
	zr, err := zlib.NewReader(bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	defer zr.Close()

	// One byte past the declared size is enough to detect oversized output.
	//nolint:gosec // sizeHint is bounds checked by Decode.
	lr := io.LimitReader(zr, int64(sizeHint)+1)
	buf := bytes.NewBuffer(make([]byte, 0, sizeHint))
	if _, err := io.Copy(buf, lr); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Encode builds a block of the given type around data. Only Raw and Zlib
// blocks can be encoded.
func Encode(t Type, data []byte) ([]byte, error) {
	var payload []byte
	switch t {
	case Raw:
		payload = data
	case Zlib:
		var buf bytes.Buffer
		zw := zlib.NewWriter(&buf)
		if _, err := zw.Write(data); err != nil {
			return nil, fmt.Errorf("zlib compress: %w", err)
		}
		if err := zw.Close(); err != nil {
			return nil, fmt.Errorf("zlib compress: %w", err)
		}
		payload = buf.Bytes()
	default:
		return nil, fmt.Errorf("%w: cannot encode %v", ErrUnsupportedCompression, t)
	}

	b := make([]byte, HeaderSize, HeaderSize+len(payload))
	copy(b, t.Tag())
	binary.BigEndian.PutUint32(b[4:8], adler32.Checksum(data))
	return append(b, payload...), nil
}
