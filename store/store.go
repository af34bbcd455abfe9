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

// Package store implements the on-disk index of key locations.
//
// An index store is a SQLite database holding a KEY_INDEX table with one row
// per dictionary key and an optional META table holding dictionary metadata.
// Stores are written once by [Build] and are read-only afterwards.
package store

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/op/go-logging"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/ianlewis/go-mdict/block"
	"github.com/ianlewis/go-mdict/record"
	"github.com/ianlewis/go-mdict/stylesheet"
)

var log = logging.MustGetLogger("store")

// FormatVersion is the version of the index format written by Build.
const FormatVersion = "1.0"

var (
	// ErrNoMetadata indicates that the store does not have a metadata table.
	ErrNoMetadata = errors.New("no metadata")

	// ErrCorrupt indicates that the store's contents could not be read.
	ErrCorrupt = errors.New("corrupt index store")
)

// keyRow is a row in the KEY_INDEX table.
type keyRow struct {
	KeyText               string
	FileOffset            int64
	CompressedSize        int64
	DecompressedSize      int64
	BlockType             int
	RecordStart           int64
	RecordEnd             int64
	BlockCumulativeOffset int64
}

// TableName implements gorm's schema.Tabler.
func (keyRow) TableName() string {
	return "KEY_INDEX"
}

//nolint:gosec // offsets and sizes are read from a file and fit in int64.
func newKeyRow(l record.KeyLocation) keyRow {
	return keyRow{
		KeyText:               l.Key,
		FileOffset:            l.FileOffset,
		CompressedSize:        int64(l.CompressedSize),
		DecompressedSize:      int64(l.DecompressedSize),
		BlockType:             int(l.BlockType),
		RecordStart:           int64(l.RecordStart),
		RecordEnd:             int64(l.RecordEnd),
		BlockCumulativeOffset: int64(l.BlockOffset),
	}
}

//nolint:gosec // values were written from unsigned values.
func (r keyRow) location() record.KeyLocation {
	return record.KeyLocation{
		Key:              r.KeyText,
		FileOffset:       r.FileOffset,
		CompressedSize:   uint64(r.CompressedSize),
		DecompressedSize: uint64(r.DecompressedSize),
		BlockType:        block.Type(r.BlockType),
		RecordStart:      uint64(r.RecordStart),
		RecordEnd:        uint64(r.RecordEnd),
		BlockOffset:      uint64(r.BlockCumulativeOffset),
	}
}

// metaRow is a row in the META table.
type metaRow struct {
	Key   string
	Value string
}

// TableName implements gorm's schema.Tabler.
func (metaRow) TableName() string {
	return "META"
}

// Meta is dictionary metadata stored alongside the key index.
type Meta struct {
	Encoding    string
	Stylesheet  stylesheet.Stylesheet
	Title       string
	Description string

	// Version is the index format version. It is set by Meta and ignored by
	// Build.
	Version string
}

// BuildOptions are options for Build.
type BuildOptions struct {
	// KeyIndex creates an index on key text.
	KeyIndex bool

	// Unique makes the key text index unique.
	Unique bool
}

// DefaultBuildOptions are the default options for Build.
var DefaultBuildOptions = &BuildOptions{
	KeyIndex: true,
}

// batchSize is the number of rows inserted per statement.
const batchSize = 1000

// dsn returns the SQLite URI for the database file at path.
func dsn(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("opening index store: %w", err)
	}
	p := filepath.ToSlash(abs)
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	u := url.URL{
		Scheme: "file",
		Path:   p,
		// Case sensitive LIKE so that key patterns match exactly.
		RawQuery: "_cslike=1",
	}
	return u.String(), nil
}

func openDB(path string) (*gorm.DB, error) {
	name, err := dsn(path)
	if err != nil {
		return nil, err
	}
	db, err := gorm.Open(sqlite.Open(name), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("opening index store: %w", err)
	}
	return db, nil
}

func closeDB(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		//nolint:wrapcheck // error should not be wrapped
		return err
	}
	//nolint:wrapcheck // error should not be wrapped
	return sqlDB.Close()
}

// Build writes a new store holding rows and meta to path, replacing any
// existing store. meta may be nil in which case no META table is written.
// The store is written to a temporary file which is renamed to path once
// complete so that path holds either the old or the new store.
func Build(path string, rows []record.KeyLocation, meta *Meta, options *BuildOptions) (err error) {
	if options == nil {
		options = DefaultBuildOptions
	}

	tmp := fmt.Sprintf("%s.%s.tmp", path, uuid.NewString())
	defer func() {
		if err != nil {
			_ = os.Remove(tmp)
		}
	}()

	log.Infof("building index %q with %d keys", path, len(rows))

	db, err := openDB(tmp)
	if err != nil {
		return err
	}
	if err := write(db, rows, meta, options); err != nil {
		_ = closeDB(db)
		return fmt.Errorf("writing index store %q: %w", path, err)
	}
	if err := closeDB(db); err != nil {
		return fmt.Errorf("closing index store %q: %w", path, err)
	}

	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("replacing index store: %w", err)
	}
	return nil
}

func write(db *gorm.DB, rows []record.KeyLocation, meta *Meta, options *BuildOptions) error {
	//nolint:wrapcheck // errors are wrapped by Build.
	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Migrator().CreateTable(&keyRow{}); err != nil {
			return err
		}
		if options.KeyIndex {
			stmt := "CREATE INDEX key_text_index ON KEY_INDEX (key_text)"
			if options.Unique {
				stmt = "CREATE UNIQUE INDEX key_text_index ON KEY_INDEX (key_text)"
			}
			if err := tx.Exec(stmt).Error; err != nil {
				return err
			}
		}

		if len(rows) > 0 {
			krs := make([]keyRow, 0, len(rows))
			for _, r := range rows {
				krs = append(krs, newKeyRow(r))
			}
			if err := tx.CreateInBatches(&krs, batchSize).Error; err != nil {
				return err
			}
		}

		if meta == nil {
			return nil
		}
		s, err := meta.Stylesheet.Marshal()
		if err != nil {
			return err
		}
		if err := tx.Migrator().CreateTable(&metaRow{}); err != nil {
			return err
		}
		mrs := []metaRow{
			{Key: "encoding", Value: meta.Encoding},
			{Key: "stylesheet", Value: s},
			{Key: "title", Value: meta.Title},
			{Key: "description", Value: meta.Description},
			{Key: "version", Value: FormatVersion},
		}
		return tx.Create(&mrs).Error
	})
}

// Store is an opened index store. A Store may be used concurrently.
type Store struct {
	path string
	db   *gorm.DB
}

// Open opens the existing store at path.
func Open(path string) (*Store, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("opening index store: %w", err)
	}
	db, err := openDB(path)
	if err != nil {
		return nil, err
	}
	if !db.Migrator().HasTable(&keyRow{}) {
		_ = closeDB(db)
		return nil, fmt.Errorf("%w: %q has no key index", ErrCorrupt, path)
	}
	return &Store{
		path: path,
		db:   db,
	}, nil
}

// Path returns the path to the store's file.
func (s *Store) Path() string {
	return s.path
}

func (s *Store) find(query string, args ...any) ([]record.KeyLocation, error) {
	var rows []keyRow
	if err := s.db.Where(query, args...).Order("rowid").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("querying index store: %w", err)
	}
	locs := make([]record.KeyLocation, 0, len(rows))
	for _, r := range rows {
		locs = append(locs, r.location())
	}
	return locs, nil
}

// Lookup returns the locations of keys equal to key.
func (s *Store) Lookup(key string) ([]record.KeyLocation, error) {
	return s.find("key_text = ?", key)
}

// LookupFold returns the locations of keys equal to key under ASCII case
// folding. LookupFold cannot use the key index and scans the whole table.
func (s *Store) LookupFold(key string) ([]record.KeyLocation, error) {
	return s.find("lower(key_text) = lower(?)", key)
}

// likeEscaper escapes LIKE wildcards and translates '*' to '%'.
var likeEscaper = strings.NewReplacer(
	`\`, `\\`,
	`%`, `\%`,
	`_`, `\_`,
	`*`, `%`,
)

// Keys returns the keys matching pattern in which '*' matches zero or more
// characters. Matching is case sensitive. An empty pattern returns all keys.
func (s *Store) Keys(pattern string) ([]string, error) {
	q := s.db.Model(&keyRow{})
	if pattern != "" {
		q = q.Where(`key_text LIKE ? ESCAPE '\'`, likeEscaper.Replace(pattern))
	}
	var keys []string
	if err := q.Order("rowid").Pluck("key_text", &keys).Error; err != nil {
		return nil, fmt.Errorf("listing keys: %w", err)
	}
	return keys, nil
}

// Count returns the number of keys in the store.
func (s *Store) Count() (int64, error) {
	var n int64
	if err := s.db.Model(&keyRow{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("counting keys: %w", err)
	}
	return n, nil
}

// Meta reads the store's metadata. It returns ErrNoMetadata if the store
// has no META table.
func (s *Store) Meta() (*Meta, error) {
	if !s.db.Migrator().HasTable(&metaRow{}) {
		return nil, fmt.Errorf("%w: %q", ErrNoMetadata, s.path)
	}

	var rows []metaRow
	if err := s.db.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("%w: reading metadata: %w", ErrCorrupt, err)
	}

	m := &Meta{}
	for _, r := range rows {
		switch r.Key {
		case "encoding":
			m.Encoding = r.Value
		case "stylesheet":
			ss, err := stylesheet.Unmarshal(r.Value)
			if err != nil {
				return nil, fmt.Errorf("%w: %w", ErrCorrupt, err)
			}
			m.Stylesheet = ss
		case "title":
			m.Title = r.Value
		case "description":
			m.Description = r.Value
		case "version":
			m.Version = r.Value
		}
	}
	if m.Stylesheet == nil {
		m.Stylesheet = stylesheet.Stylesheet{}
	}
	return m, nil
}

// Close closes the store.
func (s *Store) Close() error {
	if err := closeDB(s.db); err != nil {
		return fmt.Errorf("closing index store: %w", err)
	}
	return nil
}
