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

package mdict

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/op/go-logging"
	"golang.org/x/text/transform"

	"github.com/ianlewis/go-mdict/container"
	"github.com/ianlewis/go-mdict/record"
	"github.com/ianlewis/go-mdict/store"
	"github.com/ianlewis/go-mdict/stylesheet"
)

var log = logging.MustGetLogger("mdict")

var (
	// ErrContainerNotFound indicates that the dictionary file does not exist.
	ErrContainerNotFound = errors.New("dictionary not found")

	// ErrBadExtension indicates that the dictionary file is not an .mdx file.
	ErrBadExtension = errors.New("bad extension")
)

// indexExt is appended to a container's path to get its index path.
const indexExt = ".idx"

// Codec is the part of a container used to build an index and read records.
type Codec interface {
	// Keys returns the container's keys ordered by record offset.
	Keys() ([]container.Key, error)

	// DecodeBlock decodes a compressed record block.
	DecodeBlock(compressed []byte, size uint64) ([]byte, error)

	// Header returns the container's header metadata.
	Header() *container.Header

	// Version returns the container's engine version.
	Version() float64

	// Encoding returns the encoding of key and record text.
	Encoding() string

	// RecordSectionOffset returns the file offset of the record section.
	RecordSectionOffset() int64
}

// Options are options for opening a dictionary.
type Options struct {
	// Encoding overrides the text encoding declared by the dictionary.
	Encoding string

	// ForceRebuild rebuilds the index even if one exists.
	ForceRebuild bool

	// CheckBlocks decodes and verifies every record block while building
	// the index.
	CheckBlocks bool

	// SkipKeyIndex builds the index without a database index on key text.
	SkipKeyIndex bool

	// FollowLinks resolves "@@@LINK=" redirect definitions.
	FollowLinks bool

	// Folder returns a [transform.Transformer] that is applied to words
	// before lookup. If Folder is nil the word is used as is.
	Folder func() transform.Transformer
}

// DefaultOptions are the default options for opening a dictionary.
var DefaultOptions = &Options{}

// Dictionary is an indexed MDict dictionary. A Dictionary may be used
// concurrently.
type Dictionary struct {
	path    string
	options Options

	index *store.Store
	meta  store.Meta

	// mddPath is the path to the companion .mdd file. It is empty if the
	// dictionary has no resources.
	mddPath   string
	resources *store.Store

	codec    func() (Codec, error)
	resCodec func() (Codec, error)
}

// OpenAll opens all dictionaries under a directory. This function will return
// all successfully opened dictionaries along with any errors that occurred.
func OpenAll(path string, options *Options) ([]*Dictionary, []error) {
	var dicts []*Dictionary
	var errs []error
	if err := filepath.WalkDir(path, func(path string, info fs.DirEntry, err error) error {
		// Walking the file path will ignore errors.
		if err != nil {
			errs = append(errs, err)
			return nil
		}
		if !info.IsDir() && strings.EqualFold(filepath.Ext(info.Name()), ".mdx") {
			d, err := Open(path, options)
			if err != nil {
				errs = append(errs, err)
				return nil
			}
			dicts = append(dicts, d)
		}
		return nil
	}); err != nil {
		errs = append(errs, err)
		return nil, errs
	}
	return dicts, errs
}

// Open opens the .mdx dictionary at path. The dictionary's index is built if
// it does not exist or options.ForceRebuild is set. If an .mdd file with the
// same base name exists its resources are indexed as well.
func Open(path string, options *Options) (*Dictionary, error) {
	if options == nil {
		options = DefaultOptions
	}

	ext := filepath.Ext(path)
	if !strings.EqualFold(ext, ".mdx") {
		return nil, fmt.Errorf("%w: %q", ErrBadExtension, ext)
	}
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrContainerNotFound, err)
	}

	d := &Dictionary{
		path:    path,
		options: *options,
	}

	var built Codec
	if options.ForceRebuild || !exists(path+indexExt) {
		c, err := container.Open(path, &container.Options{Encoding: options.Encoding})
		if err != nil {
			return nil, fmt.Errorf("opening %q: %w", path, err)
		}
		h := c.Header()
		d.meta = store.Meta{
			Encoding:    c.Encoding(),
			Stylesheet:  h.Stylesheet(),
			Title:       h.Title(),
			Description: h.Description(),
			Version:     store.FormatVersion,
		}
		if err := buildIndex(c, path, &d.meta, d.buildOptions(false), options.CheckBlocks); err != nil {
			return nil, err
		}
		built = c
	}

	var err error
	d.index, err = store.Open(path + indexExt)
	if err != nil {
		return nil, err
	}
	if built == nil {
		d.loadMeta()
		if options.Encoding != "" {
			d.meta.Encoding = options.Encoding
		}
	}
	d.codec = sync.OnceValues(func() (Codec, error) {
		if built != nil {
			return built, nil
		}
		return d.openCodec(d.path)
	})

	mddPath := strings.TrimSuffix(path, ext) + ".mdd"
	if exists(mddPath) {
		if err := d.openResources(mddPath); err != nil {
			_ = d.index.Close()
			return nil, err
		}
	}

	return d, nil
}

func (d *Dictionary) buildOptions(unique bool) *store.BuildOptions {
	return &store.BuildOptions{
		KeyIndex: !d.options.SkipKeyIndex,
		Unique:   unique,
	}
}

// loadMeta reads the index metadata. Missing or unreadable metadata leaves
// the metadata empty.
func (d *Dictionary) loadMeta() {
	m, err := d.index.Meta()
	if err != nil {
		log.Warningf("%q: using empty metadata: %v", d.path, err)
		return
	}
	d.meta = *m
}

// openResources builds, if needed, and opens the index for the .mdd file at
// mddPath.
func (d *Dictionary) openResources(mddPath string) error {
	var built Codec
	if d.options.ForceRebuild || !exists(mddPath+indexExt) {
		c, err := container.Open(mddPath, nil)
		if err != nil {
			return fmt.Errorf("opening %q: %w", mddPath, err)
		}
		if err := buildIndex(c, mddPath, nil, d.buildOptions(true), d.options.CheckBlocks); err != nil {
			return err
		}
		built = c
	}

	s, err := store.Open(mddPath + indexExt)
	if err != nil {
		return err
	}
	d.mddPath = mddPath
	d.resources = s
	d.resCodec = sync.OnceValues(func() (Codec, error) {
		if built != nil {
			return built, nil
		}
		return d.openCodec(mddPath)
	})
	return nil
}

func (d *Dictionary) openCodec(path string) (Codec, error) {
	c, err := container.Open(path, &container.Options{Encoding: d.options.Encoding})
	if err != nil {
		return nil, fmt.Errorf("opening %q: %w", path, err)
	}
	return c, nil
}

// buildIndex builds the index for the container at path.
func buildIndex(c Codec, path string, meta *store.Meta, options *store.BuildOptions, checkBlocks bool) error {
	log.Infof("indexing %q", path)

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrContainerNotFound, err)
	}
	defer f.Close()

	bt, err := record.ScanBlockTable(f, c.RecordSectionOffset(), c.Version())
	if err != nil {
		return fmt.Errorf("indexing %q: %w", path, err)
	}
	keys, err := c.Keys()
	if err != nil {
		return fmt.Errorf("indexing %q: %w", path, err)
	}
	locs, err := record.Locate(f, bt.Blocks, keys, &record.LocateOptions{
		CheckBlocks: checkBlocks,
		Decoder:     c,
	})
	if err != nil {
		return fmt.Errorf("indexing %q: %w", path, err)
	}

	if err := store.Build(path+indexExt, locs, meta, options); err != nil {
		//nolint:wrapcheck // store errors include the path.
		return err
	}
	log.Infof("indexed %d keys in %d blocks from %q", len(locs), len(bt.Blocks), path)
	return nil
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// Path returns the path to the dictionary's .mdx file.
func (d *Dictionary) Path() string {
	return d.path
}

// Title returns the dictionary title.
func (d *Dictionary) Title() string {
	return d.meta.Title
}

// Description returns the dictionary description.
func (d *Dictionary) Description() string {
	return d.meta.Description
}

// Encoding returns the encoding of the dictionary's text.
func (d *Dictionary) Encoding() string {
	return d.meta.Encoding
}

// Stylesheet returns the dictionary's stylesheet.
func (d *Dictionary) Stylesheet() stylesheet.Stylesheet {
	return d.meta.Stylesheet
}

// HasResources reports whether the dictionary has an .mdd resource file.
func (d *Dictionary) HasResources() bool {
	return d.resources != nil
}

// Count returns the number of keys in the dictionary.
func (d *Dictionary) Count() (int64, error) {
	//nolint:wrapcheck // error should not be wrapped
	return d.index.Count()
}

// Keys returns the dictionary keys matching pattern, in which '*' matches
// zero or more characters. An empty pattern returns all keys.
func (d *Dictionary) Keys(pattern string) ([]string, error) {
	//nolint:wrapcheck // error should not be wrapped
	return d.index.Keys(pattern)
}

// ResourceKeys returns the resource keys matching pattern. It returns nil if
// the dictionary has no resources.
func (d *Dictionary) ResourceKeys(pattern string) ([]string, error) {
	if d.resources == nil {
		return nil, nil
	}
	//nolint:wrapcheck // error should not be wrapped
	return d.resources.Keys(pattern)
}

// Close closes the dictionary's indexes.
func (d *Dictionary) Close() error {
	var errs []error
	if err := d.index.Close(); err != nil {
		errs = append(errs, err)
	}
	if d.resources != nil {
		if err := d.resources.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
