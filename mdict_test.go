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
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"golang.org/x/text/transform"

	"github.com/ianlewis/go-mdict/block"
	"github.com/ianlewis/go-mdict/internal/folding"
	"github.com/ianlewis/go-mdict/internal/testutil"
	"github.com/ianlewis/go-mdict/record"
	"github.com/ianlewis/go-mdict/store"
)

var testEntries = []testutil.Entry{
	{Key: "Apple", Data: []byte("`1`a company\r\n\x00")},
	{Key: "alias", Data: []byte("@@@LINK=banana\r\n\x00")},
	{Key: "apple", Data: []byte("`1`a fruit`2` that is red\r\n\x00")},
	{Key: "banana", Data: []byte("`1`a long fruit\r\n\x00")},
	{Key: "cherry", Data: []byte("a small fruit\x00\x00")},
}

var testResources = []testutil.Entry{
	{Key: `\img\apple.png`, Data: []byte{0x89, 'P', 'N', 'G', 1}},
	{Key: `\img\banana.png`, Data: []byte{0x89, 'P', 'N', 'G', 2}},
	{Key: `\style.css`, Data: []byte("body { color: red; }")},
}

var testStyle = "1\n<b>\n</b>\n2\n<i>\n</i>\n"

// writeDict writes out a test dictionary and, if resources is not nil, its
// resource file. It returns the path to the .mdx file.
func writeDict(t *testing.T, entries, resources []testutil.Entry, opts *testutil.ContainerOptions) string {
	t.Helper()

	if opts == nil {
		opts = &testutil.ContainerOptions{}
	}
	if opts.Title == "" {
		opts.Title = "Fruit"
	}
	if opts.StyleSheet == "" {
		opts.StyleSheet = testStyle
	}

	dir := t.TempDir()
	path := filepath.Join(dir, "fruit.mdx")
	testutil.WriteContainer(t, path, entries, opts)
	if resources != nil {
		testutil.WriteContainer(t, filepath.Join(dir, "fruit.mdd"), resources, &testutil.ContainerOptions{
			RecordBlockType: opts.RecordBlockType,
		})
	}
	return path
}

func openDict(t *testing.T, path string, options *Options) *Dictionary {
	t.Helper()

	d, err := Open(path, options)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() {
		if err := d.Close(); err != nil {
			t.Errorf("Close: %v", err)
		}
	})
	return d
}

func TestOpen_errors(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	txt := filepath.Join(dir, "fruit.txt")
	if err := os.WriteFile(txt, []byte("fruit"), 0o600); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		path string
		err  error
	}{
		{
			name: "not found",
			path: filepath.Join(dir, "missing.mdx"),
			err:  ErrContainerNotFound,
		},
		{
			name: "bad extension",
			path: txt,
			err:  ErrBadExtension,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()

			_, err := Open(test.path, nil)
			if diff := cmp.Diff(test.err, err, cmpopts.EquateErrors()); diff != "" {
				t.Fatalf("Open (-want, +got):\n%s", diff)
			}
		})
	}
}

func TestDictionary_Lookup(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		opts       *testutil.ContainerOptions
		options    *Options
		word       string
		ignoreCase bool
		expected   []string
	}{
		{
			name:     "exact",
			word:     "apple",
			expected: []string{"<b>a fruit</b><i> that is red</i>\r\n"},
		},
		{
			name:       "ignore case",
			word:       "APPLE",
			ignoreCase: true,
			expected: []string{
				"<b>a company</b>\r\n",
				"<b>a fruit</b><i> that is red</i>\r\n",
			},
		},
		{
			name:     "case sensitive miss",
			word:     "APPLE",
			expected: []string{},
		},
		{
			name:     "not found",
			word:     "missing",
			expected: []string{},
		},
		{
			name:     "trailing padding stripped",
			word:     "cherry",
			expected: []string{"a small fruit"},
		},
		{
			name:     "zlib blocks",
			opts:     &testutil.ContainerOptions{RecordBlockType: block.Zlib, RecordsPerBlock: 2, KeysPerBlock: 3},
			word:     "banana",
			expected: []string{"<b>a long fruit</b>\r\n"},
		},
		{
			name:     "version 1.2",
			opts:     &testutil.ContainerOptions{Version: "1.2", RecordBlockType: block.Zlib},
			word:     "banana",
			expected: []string{"<b>a long fruit</b>\r\n"},
		},
		{
			name:     "link not followed",
			word:     "alias",
			expected: []string{"@@@LINK=banana\r\n"},
		},
		{
			name:     "link followed",
			options:  &Options{FollowLinks: true},
			word:     "alias",
			expected: []string{"<b>a long fruit</b>\r\n"},
		},
		{
			name: "folded word",
			options: &Options{
				Folder: func() transform.Transformer {
					return folding.Query()
				},
			},
			word:     "  banana\t",
			expected: []string{"<b>a long fruit</b>\r\n"},
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()

			path := writeDict(t, testEntries, nil, test.opts)
			d := openDict(t, path, test.options)

			got, err := d.Lookup(test.word, test.ignoreCase)
			if err != nil {
				t.Fatalf("Lookup: %v", err)
			}
			if diff := cmp.Diff(test.expected, got); diff != "" {
				t.Errorf("Lookup (-want, +got):\n%s", diff)
			}
		})
	}
}

func TestDictionary_Entries(t *testing.T) {
	t.Parallel()

	d := openDict(t, writeDict(t, testEntries, nil, nil), nil)

	entries, err := d.Entries("apple", true)
	if err != nil {
		t.Fatalf("Entries: %v", err)
	}
	var titles []string
	for _, e := range entries {
		titles = append(titles, e.Title())
	}
	if diff := cmp.Diff([]string{"Apple", "apple"}, titles); diff != "" {
		t.Errorf("Entries (-want, +got):\n%s", diff)
	}
}

func TestDictionary_linkLoop(t *testing.T) {
	t.Parallel()

	entries := []testutil.Entry{
		{Key: "a", Data: []byte("@@@LINK=b")},
		{Key: "b", Data: []byte("@@@LINK=a")},
	}
	d := openDict(t, writeDict(t, entries, nil, nil), &Options{FollowLinks: true})

	got, err := d.Lookup("a", false)
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("Lookup: got %q, want no definitions", got)
	}
}

func TestDictionary_roundTrip(t *testing.T) {
	t.Parallel()

	opts := &testutil.ContainerOptions{
		RecordBlockType: block.Zlib,
		RecordsPerBlock: 2,
	}
	d := openDict(t, writeDict(t, testEntries, nil, opts), nil)

	keys, err := d.Keys("")
	if err != nil {
		t.Fatalf("Keys: %v", err)
	}
	if len(keys) != len(testEntries) {
		t.Fatalf("Keys: got %d keys, want %d", len(keys), len(testEntries))
	}

	for _, k := range keys {
		first, err := d.Lookup(k, false)
		if err != nil {
			t.Fatalf("Lookup(%q): %v", k, err)
		}
		if len(first) == 0 || first[0] == "" {
			t.Errorf("Lookup(%q): got %q, want a definition", k, first)
		}
		second, err := d.Lookup(k, false)
		if err != nil {
			t.Fatalf("Lookup(%q): %v", k, err)
		}
		if diff := cmp.Diff(first, second); diff != "" {
			t.Errorf("Lookup(%q) not stable (-first, +second):\n%s", k, diff)
		}
	}
}

func readRows(t *testing.T, path string) []record.KeyLocation {
	t.Helper()

	s, err := store.Open(path)
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	defer s.Close()

	keys, err := s.Keys("")
	if err != nil {
		t.Fatalf("Keys: %v", err)
	}
	var rows []record.KeyLocation
	for _, k := range keys {
		locs, err := s.Lookup(k)
		if err != nil {
			t.Fatalf("Lookup: %v", err)
		}
		rows = append(rows, locs...)
	}
	return rows
}

func TestOpen_rebuild(t *testing.T) {
	t.Parallel()

	path := writeDict(t, testEntries, nil, &testutil.ContainerOptions{
		Description: "<p>fruit & more</p>",
	})

	d, err := Open(path, nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := d.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	first := readRows(t, path+".idx")

	// Open again loads metadata from the existing index.
	d = openDict(t, path, nil)
	if got, want := d.Title(), "Fruit"; got != want {
		t.Errorf("Title: got %q, want %q", got, want)
	}
	if got, want := d.Description(), "<p>fruit & more</p>"; got != want {
		t.Errorf("Description: got %q, want %q", got, want)
	}
	if got, want := d.Encoding(), "UTF-8"; got != want {
		t.Errorf("Encoding: got %q, want %q", got, want)
	}
	if _, ok := d.Stylesheet()["2"]; !ok {
		t.Errorf("Stylesheet: missing tag 2: %v", d.Stylesheet())
	}

	rebuilt := openDict(t, path, &Options{ForceRebuild: true})
	if got, want := rebuilt.Title(), "Fruit"; got != want {
		t.Errorf("Title: got %q, want %q", got, want)
	}
	second := readRows(t, path+".idx")

	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("rebuilt rows (-want, +got):\n%s", diff)
	}
}

func TestOpen_missingMetadata(t *testing.T) {
	t.Parallel()

	path := writeDict(t, testEntries, nil, nil)
	d := openDict(t, path, nil)
	rows := readRows(t, path+".idx")

	// Replace the index with one that has no metadata.
	if err := store.Build(path+".idx", rows, nil, nil); err != nil {
		t.Fatalf("Build: %v", err)
	}

	d2 := openDict(t, path, nil)
	if got := d2.Title(); got != "" {
		t.Errorf("Title: got %q, want empty", got)
	}
	got, err := d2.Lookup("cherry", false)
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if diff := cmp.Diff([]string{"a small fruit"}, got); diff != "" {
		t.Errorf("Lookup (-want, +got):\n%s", diff)
	}

	// Without metadata the stylesheet is not applied.
	got, err = d2.Lookup("banana", false)
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if diff := cmp.Diff([]string{"a long fruit\r\n"}, got); diff != "" {
		t.Errorf("Lookup (-want, +got):\n%s", diff)
	}

	if d.Title() != "Fruit" {
		t.Errorf("Title: got %q, want %q", d.Title(), "Fruit")
	}
}

func TestOpen_unsupportedCompression(t *testing.T) {
	t.Parallel()

	path := writeDict(t, testEntries, nil, &testutil.ContainerOptions{
		RecordTag: []byte{9, 9, 9, 9},
	})

	_, err := Open(path, nil)
	if diff := cmp.Diff(block.ErrUnsupportedCompression, err, cmpopts.EquateErrors()); diff != "" {
		t.Fatalf("Open (-want, +got):\n%s", diff)
	}

	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatal(err)
	}
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	if diff := cmp.Diff([]string{"fruit.mdx"}, names); diff != "" {
		t.Errorf("ReadDir (-want, +got):\n%s", diff)
	}
}

func TestOpen_failedRebuildKeepsIndex(t *testing.T) {
	t.Parallel()

	path := writeDict(t, testEntries, nil, nil)
	d, err := Open(path, nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := d.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	before := readRows(t, path+".idx")

	testutil.WriteContainer(t, path, testEntries, &testutil.ContainerOptions{
		Title:      "Broken",
		StyleSheet: testStyle,
		RecordTag:  []byte{9, 9, 9, 9},
	})
	if _, err := Open(path, &Options{ForceRebuild: true}); !errors.Is(err, block.ErrUnsupportedCompression) {
		t.Fatalf("Open: got %v, want %v", err, block.ErrUnsupportedCompression)
	}

	if diff := cmp.Diff(before, readRows(t, path+".idx")); diff != "" {
		t.Errorf("rows after failed rebuild (-want, +got):\n%s", diff)
	}
}

func TestOpen_checkBlocks(t *testing.T) {
	t.Parallel()

	opts := &testutil.ContainerOptions{
		RecordBlockType: block.Zlib,
		CorruptChecksum: true,
	}

	_, err := Open(writeDict(t, testEntries, nil, opts), &Options{CheckBlocks: true})
	if diff := cmp.Diff(record.ErrBlockVerification, err, cmpopts.EquateErrors()); diff != "" {
		t.Fatalf("Open (-want, +got):\n%s", diff)
	}

	// Without checking, the failure surfaces on lookup.
	d := openDict(t, writeDict(t, testEntries, nil, opts), nil)
	_, err = d.Lookup("apple", false)
	if diff := cmp.Diff(record.ErrDecode, err, cmpopts.EquateErrors()); diff != "" {
		t.Fatalf("Lookup (-want, +got):\n%s", diff)
	}
}

func TestOpen_skipKeyIndex(t *testing.T) {
	t.Parallel()

	d := openDict(t, writeDict(t, testEntries, nil, nil), &Options{SkipKeyIndex: true})
	got, err := d.Lookup("cherry", false)
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if diff := cmp.Diff([]string{"a small fruit"}, got); diff != "" {
		t.Errorf("Lookup (-want, +got):\n%s", diff)
	}
}

func TestOpen_encoding(t *testing.T) {
	t.Parallel()

	entries := []testutil.Entry{
		// "中文" in GB18030.
		{Key: "zh", Data: []byte{0xd6, 0xd0, 0xce, 0xc4, 0}},
	}
	d := openDict(t, writeDict(t, entries, nil, &testutil.ContainerOptions{Encoding: "GBK"}), nil)

	if got, want := d.Encoding(), "GB18030"; got != want {
		t.Errorf("Encoding: got %q, want %q", got, want)
	}
	got, err := d.Lookup("zh", false)
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if diff := cmp.Diff([]string{"中文"}, got); diff != "" {
		t.Errorf("Lookup (-want, +got):\n%s", diff)
	}
}

func TestDictionary_Keys(t *testing.T) {
	t.Parallel()

	d := openDict(t, writeDict(t, testEntries, nil, nil), nil)

	tests := []struct {
		pattern  string
		expected []string
	}{
		{pattern: "", expected: []string{"Apple", "alias", "apple", "banana", "cherry"}},
		{pattern: "a*", expected: []string{"alias", "apple"}},
		{pattern: "*an*", expected: []string{"banana"}},
		{pattern: "z*", expected: []string{}},
	}

	for _, test := range tests {
		t.Run(test.pattern, func(t *testing.T) {
			t.Parallel()

			got, err := d.Keys(test.pattern)
			if err != nil {
				t.Fatalf("Keys: %v", err)
			}
			if diff := cmp.Diff(test.expected, got, cmpopts.EquateEmpty()); diff != "" {
				t.Errorf("Keys (-want, +got):\n%s", diff)
			}
		})
	}
}

func TestDictionary_LookupResource(t *testing.T) {
	t.Parallel()

	path := writeDict(t, testEntries, testResources, &testutil.ContainerOptions{
		RecordBlockType: block.Zlib,
	})
	d := openDict(t, path, nil)

	if !d.HasResources() {
		t.Fatal("HasResources: got false, want true")
	}
	if _, err := os.Stat(filepath.Join(filepath.Dir(path), "fruit.mdd.idx")); err != nil {
		t.Errorf("resource index: %v", err)
	}

	tests := []struct {
		name       string
		path       string
		ignoreCase bool
		expected   [][]byte
	}{
		{
			name:     "mdict key",
			path:     `\img\apple.png`,
			expected: [][]byte{testResources[0].Data},
		},
		{
			name:     "slash path",
			path:     "img/banana.png",
			expected: [][]byte{testResources[1].Data},
		},
		{
			name:     "rooted slash path",
			path:     "/style.css",
			expected: [][]byte{testResources[2].Data},
		},
		{
			name:       "ignore case",
			path:       "IMG/Apple.PNG",
			ignoreCase: true,
			expected:   [][]byte{testResources[0].Data},
		},
		{
			name:     "missing",
			path:     "img/cherry.png",
			expected: [][]byte{},
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()

			got, err := d.LookupResource(test.path, test.ignoreCase)
			if err != nil {
				t.Fatalf("LookupResource: %v", err)
			}
			if diff := cmp.Diff(test.expected, got); diff != "" {
				t.Errorf("LookupResource (-want, +got):\n%s", diff)
			}
		})
	}

	keys, err := d.ResourceKeys(`\img\*`)
	if err != nil {
		t.Fatalf("ResourceKeys: %v", err)
	}
	if diff := cmp.Diff([]string{`\img\apple.png`, `\img\banana.png`}, keys); diff != "" {
		t.Errorf("ResourceKeys (-want, +got):\n%s", diff)
	}
}

func TestDictionary_noResources(t *testing.T) {
	t.Parallel()

	d := openDict(t, writeDict(t, testEntries, nil, nil), nil)
	if d.HasResources() {
		t.Error("HasResources: got true, want false")
	}
	got, err := d.LookupResource("style.css", false)
	if err != nil {
		t.Fatalf("LookupResource: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("LookupResource: got %d resources, want 0", len(got))
	}
}

func TestOpenAll(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	testutil.WriteContainer(t, filepath.Join(dir, "a.mdx"), testEntries, nil)
	if err := os.Mkdir(filepath.Join(dir, "sub"), 0o700); err != nil {
		t.Fatal(err)
	}
	testutil.WriteContainer(t, filepath.Join(dir, "sub", "b.MDX"), testEntries, nil)
	if err := os.WriteFile(filepath.Join(dir, "sub", "c.mdx"), []byte("bad"), 0o600); err != nil {
		t.Fatal(err)
	}

	dicts, errs := OpenAll(dir, nil)
	for _, d := range dicts {
		defer d.Close()
	}
	if got, want := len(dicts), 2; got != want {
		t.Errorf("OpenAll: got %d dictionaries, want %d", got, want)
	}
	if got, want := len(errs), 1; got != want {
		t.Errorf("OpenAll: got %d errors, want %d: %v", got, want, errs)
	}
}

func TestOpen_uriPath(t *testing.T) {
	t.Parallel()

	for _, dirName := range []string{"a#b", "what?", "100%25"} {
		t.Run(dirName, func(t *testing.T) {
			t.Parallel()

			dir := filepath.Join(t.TempDir(), dirName)
			if err := os.Mkdir(dir, 0o700); err != nil {
				t.Fatal(err)
			}
			path := filepath.Join(dir, "fruit.mdx")
			testutil.WriteContainer(t, path, testEntries, nil)
			testutil.WriteContainer(t, filepath.Join(dir, "fruit.mdd"), testResources, nil)

			d := openDict(t, path, nil)
			n, err := d.Count()
			if err != nil {
				t.Fatalf("Count: %v", err)
			}
			if got, want := n, int64(len(testEntries)); got != want {
				t.Errorf("Count: got %d, want %d", got, want)
			}
			res, err := d.LookupResource("/style.css", false)
			if err != nil {
				t.Fatalf("LookupResource: %v", err)
			}
			if got, want := len(res), 1; got != want {
				t.Errorf("LookupResource: got %d resources, want %d", got, want)
			}
		})
	}
}

func TestOpen_encryptedKeyInfo(t *testing.T) {
	t.Parallel()

	plain := openDict(t, writeDict(t, testEntries, testResources, nil), nil)
	enc := openDict(t, writeDict(t, testEntries, testResources, &testutil.ContainerOptions{
		Encrypted: "2",
	}), nil)

	for _, word := range []string{"apple", "banana", "cherry"} {
		want, err := plain.Lookup(word, false)
		if err != nil {
			t.Fatalf("Lookup(%q): %v", word, err)
		}
		got, err := enc.Lookup(word, false)
		if err != nil {
			t.Fatalf("Lookup(%q): %v", word, err)
		}
		if len(got) == 0 {
			t.Errorf("Lookup(%q): no definitions", word)
		}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("Lookup(%q) (-want, +got):\n%s", word, diff)
		}
	}
}
