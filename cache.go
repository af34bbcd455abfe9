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
	"path/filepath"
	"strconv"
	"sync"

	"golang.org/x/sync/singleflight"
)

type cacheKey struct {
	path         string
	forceRebuild bool
}

func (k cacheKey) String() string {
	return strconv.FormatBool(k.forceRebuild) + ":" + k.path
}

// Cache is a set of opened dictionaries keyed by path and rebuild flag. At
// most one Open is in flight for each key. Cache may be used concurrently.
type Cache struct {
	options Options

	// open opens a dictionary on a cache miss.
	open func(path string, options *Options) (*Dictionary, error)

	group singleflight.Group

	mu    sync.Mutex
	dicts map[cacheKey]*Dictionary
}

// NewCache returns a new Cache that opens dictionaries with options.
// options.ForceRebuild is ignored in favor of the flag passed to Get.
func NewCache(options *Options) *Cache {
	if options == nil {
		options = DefaultOptions
	}
	return &Cache{
		options: *options,
		open:    Open,
		dicts:   map[cacheKey]*Dictionary{},
	}
}

func (c *Cache) key(path string, forceRebuild bool) (cacheKey, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return cacheKey{}, fmt.Errorf("resolving %q: %w", path, err)
	}
	return cacheKey{path: abs, forceRebuild: forceRebuild}, nil
}

func (c *Cache) lookup(k cacheKey) (*Dictionary, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	d, ok := c.dicts[k]
	return d, ok
}

// Get returns the dictionary at path, opening it if it is not in the cache.
func (c *Cache) Get(path string, forceRebuild bool) (*Dictionary, error) {
	k, err := c.key(path, forceRebuild)
	if err != nil {
		return nil, err
	}
	if d, ok := c.lookup(k); ok {
		return d, nil
	}

	v, err, _ := c.group.Do(k.String(), func() (any, error) {
		// Another caller may have finished opening the dictionary.
		if d, ok := c.lookup(k); ok {
			return d, nil
		}

		opts := c.options
		opts.ForceRebuild = forceRebuild
		d, err := c.open(k.path, &opts)
		if err != nil {
			return nil, err
		}

		c.mu.Lock()
		c.dicts[k] = d
		c.mu.Unlock()
		return d, nil
	})
	if err != nil {
		//nolint:wrapcheck // error should not be wrapped
		return nil, err
	}
	//nolint:forcetypeassert // Do only returns *Dictionary.
	return v.(*Dictionary), nil
}

// Evict removes the dictionary from the cache and closes it.
func (c *Cache) Evict(path string, forceRebuild bool) error {
	k, err := c.key(path, forceRebuild)
	if err != nil {
		return err
	}

	c.mu.Lock()
	d, ok := c.dicts[k]
	delete(c.dicts, k)
	c.mu.Unlock()

	if !ok {
		return nil
	}
	return d.Close()
}

// Len returns the number of dictionaries in the cache.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.dicts)
}

// Dictionaries returns the dictionaries in the cache.
func (c *Cache) Dictionaries() []*Dictionary {
	c.mu.Lock()
	defer c.mu.Unlock()
	dicts := make([]*Dictionary, 0, len(c.dicts))
	for _, d := range c.dicts {
		dicts = append(dicts, d)
	}
	return dicts
}

// Close closes and removes every dictionary in the cache.
func (c *Cache) Close() error {
	c.mu.Lock()
	dicts := c.dicts
	c.dicts = map[cacheKey]*Dictionary{}
	c.mu.Unlock()

	var errs []error
	for _, d := range dicts {
		if err := d.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
