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

package main

import (
	"os"
	"path/filepath"
	"slices"
)

// dictLocations returns the existing directories searched by list when no
// directory is given. MDICT_DATA_DIR holds a list of directories separated
// by the OS path list separator.
func dictLocations() []string {
	var candidates []string
	if dataDirs := os.Getenv("MDICT_DATA_DIR"); dataDirs != "" {
		candidates = append(candidates, filepath.SplitList(dataDirs)...)
	}
	if homeDir, err := os.UserHomeDir(); err == nil && homeDir != "" {
		candidates = append(candidates, filepath.Join(homeDir, ".mdict"))
	}
	candidates = append(candidates, systemDictDirs()...)

	var dirs []string
	for _, d := range candidates {
		d = filepath.Clean(d)
		if slices.Contains(dirs, d) {
			continue
		}
		if fi, err := os.Stat(d); err != nil || !fi.IsDir() {
			continue
		}
		dirs = append(dirs, d)
	}
	return dirs
}
