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
)

var (
	// ErrDecode indicates that a record's block could not be read or decoded.
	ErrDecode = errors.New("decoding record")

	// ErrRecordSpansBlocks indicates that a record extends past the end of
	// its block.
	ErrRecordSpansBlocks = errors.New("record spans multiple blocks")
)

// Extract reads the record at loc from r. The record's block is read and
// decoded with d and the record is sliced from the decoded data.
func Extract(r io.ReaderAt, loc KeyLocation, d BlockDecoder) ([]byte, error) {
	if err := loc.Validate(); err != nil {
		return nil, err
	}
	if loc.SpansBlocks() {
		return nil, fmt.Errorf("%w: %q: record [%d, %d) extends past block ending at %d",
			ErrRecordSpansBlocks, loc.Key, loc.RecordStart, loc.RecordEnd, loc.BlockOffset+loc.DecompressedSize)
	}

	compressed := make([]byte, loc.CompressedSize)
	if _, err := r.ReadAt(compressed, loc.FileOffset); err != nil {
		return nil, fmt.Errorf("%w: %q: reading block at %d: %w", ErrDecode, loc.Key, loc.FileOffset, err)
	}

	data, err := d.DecodeBlock(compressed, loc.DecompressedSize)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %w", ErrDecode, loc.Key, err)
	}
	if uint64(len(data)) != loc.DecompressedSize {
		return nil, fmt.Errorf("%w: %q: decoded %d bytes, want %d", ErrDecode, loc.Key, len(data), loc.DecompressedSize)
	}

	return data[loc.RecordStart-loc.BlockOffset : loc.RecordEnd-loc.BlockOffset], nil
}
