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
	"fmt"
	"os"
	"strings"

	"golang.org/x/text/transform"

	"github.com/ianlewis/go-mdict/internal/textenc"
	"github.com/ianlewis/go-mdict/record"
)

// linkPrefix starts definitions that redirect to another key.
const linkPrefix = "@@@LINK="

// maxLinkDepth is the maximum number of redirects followed in one lookup.
const maxLinkDepth = 8

// Lookup returns the definitions of word. It returns an empty slice if the
// word is not found.
func (d *Dictionary) Lookup(word string, ignoreCase bool) ([]string, error) {
	entries, err := d.Entries(word, ignoreCase)
	if err != nil {
		return nil, err
	}
	defs := make([]string, 0, len(entries))
	for _, e := range entries {
		defs = append(defs, e.definition)
	}
	return defs, nil
}

// Entries returns the entries for word. It returns an empty slice if the
// word is not found.
func (d *Dictionary) Entries(word string, ignoreCase bool) ([]*Entry, error) {
	return d.entries(d.fold(word), ignoreCase, 0)
}

func (d *Dictionary) entries(word string, ignoreCase bool, depth int) ([]*Entry, error) {
	lookup := d.index.Lookup
	if ignoreCase {
		lookup = d.index.LookupFold
	}
	locs, err := lookup(word)
	if err != nil {
		return nil, fmt.Errorf("looking up %q: %w", word, err)
	}

	entries := []*Entry{}
	for _, loc := range locs {
		data, err := d.extract(d.path, d.codec, loc)
		if err != nil {
			return nil, err
		}
		text, err := d.render(data)
		if err != nil {
			return nil, fmt.Errorf("%w: %q: %w", record.ErrDecode, loc.Key, err)
		}

		if target, ok := strings.CutPrefix(text, linkPrefix); ok && d.options.FollowLinks {
			if depth >= maxLinkDepth {
				log.Warningf("%q: too many redirects at %q", d.path, loc.Key)
				continue
			}
			linked, err := d.entries(strings.TrimSpace(target), ignoreCase, depth+1)
			if err != nil {
				return nil, err
			}
			entries = append(entries, linked...)
			continue
		}

		entries = append(entries, &Entry{
			key:        loc.Key,
			definition: text,
		})
	}
	return entries, nil
}

// LookupResource returns the resources stored under path. MDict resource
// keys are rooted at '\' and use '\' as separator, so if path is not found
// as given it is converted to that form. It returns an empty slice if the
// resource is not found or the dictionary has no resources.
func (d *Dictionary) LookupResource(path string, ignoreCase bool) ([][]byte, error) {
	res := [][]byte{}
	if d.resources == nil {
		return res, nil
	}

	lookup := d.resources.Lookup
	if ignoreCase {
		lookup = d.resources.LookupFold
	}

	candidates := []string{path}
	if p := `\` + strings.ReplaceAll(strings.TrimLeft(path, `/\`), "/", `\`); p != path {
		candidates = append(candidates, p)
	}

	for _, key := range candidates {
		locs, err := lookup(key)
		if err != nil {
			return nil, fmt.Errorf("looking up resource %q: %w", key, err)
		}
		for _, loc := range locs {
			data, err := d.extract(d.mddPath, d.resCodec, loc)
			if err != nil {
				return nil, err
			}
			res = append(res, data)
		}
		if len(res) > 0 {
			break
		}
	}
	return res, nil
}

// extract reads the record at loc from the container at path.
func (d *Dictionary) extract(path string, codec func() (Codec, error), loc record.KeyLocation) ([]byte, error) {
	c, err := codec()
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrContainerNotFound, err)
	}
	defer f.Close()

	//nolint:wrapcheck // record errors include the key.
	return record.Extract(f, loc, c)
}

// render decodes a text record and applies the stylesheet.
func (d *Dictionary) render(data []byte) (string, error) {
	enc := d.meta.Encoding
	if enc == "" {
		c, err := d.codec()
		if err != nil {
			return "", err
		}
		enc = c.Encoding()
	}

	text, err := textenc.Decode(data, enc)
	if err != nil {
		//nolint:wrapcheck // error should not be wrapped
		return "", err
	}
	text = strings.TrimRight(text, "\x00")
	return d.meta.Stylesheet.Apply(text), nil
}

// fold applies the dictionary's folder to word.
func (d *Dictionary) fold(word string) string {
	if d.options.Folder == nil {
		return word
	}
	folded, _, err := transform.String(d.options.Folder(), word)
	if err != nil {
		return word
	}
	return folded
}
