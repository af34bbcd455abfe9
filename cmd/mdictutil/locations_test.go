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
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestDictLocations(t *testing.T) {
	root := t.TempDir()
	a := filepath.Join(root, "a")
	b := filepath.Join(root, "b")
	for _, d := range []string{a, b} {
		if err := os.Mkdir(d, 0o700); err != nil {
			t.Fatal(err)
		}
	}
	missing := filepath.Join(root, "missing")

	t.Setenv("MDICT_DATA_DIR", filepath.Join(a, ".")+string(filepath.ListSeparator)+
		missing+string(filepath.ListSeparator)+b+string(filepath.ListSeparator)+a)
	t.Setenv("HOME", root)
	t.Setenv("USERPROFILE", root)
	t.Setenv("XDG_DATA_HOME", missing)

	got := dictLocations()
	// System directories may exist on the test machine.
	if len(got) < 2 {
		t.Fatalf("dictLocations: got %v, want at least %v", got, []string{a, b})
	}
	if diff := cmp.Diff([]string{a, b}, got[:2]); diff != "" {
		t.Errorf("dictLocations (-want, +got):\n%s", diff)
	}
}
