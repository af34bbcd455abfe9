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
	"fmt"

	"github.com/rodaine/table"
	"github.com/urfave/cli/v2"

	mdict "github.com/ianlewis/go-mdict"
)

var listCommand = &cli.Command{
	Name:      "list",
	Usage:     "List dictionaries",
	ArgsUsage: "[DIR]...",
	Description: "List all dictionaries in the given directories. If no directory is\n" +
		"given the default dictionary locations are searched.",
	Action: func(c *cli.Context) error {
		dirs := c.Args().Slice()
		if len(dirs) == 0 {
			dirs = dictLocations()
		}

		var dicts []*mdict.Dictionary
		var errs []error
		for _, dir := range dirs {
			d, e := mdict.OpenAll(dir, dictOptions(c))
			dicts = append(dicts, d...)
			errs = append(errs, e...)
		}
		defer func() {
			for _, d := range dicts {
				_ = d.Close()
			}
		}()
		for _, err := range errs {
			fmt.Fprintln(c.App.ErrWriter, err)
		}

		tbl := table.New("Title", "Entries", "Path").WithWriter(c.App.Writer)
		for _, d := range dicts {
			count, err := d.Count()
			if err != nil {
				return fmt.Errorf("%w: %w", ErrMdictutil, err)
			}
			tbl.AddRow(d.Title(), count, d.Path())
		}
		tbl.Print()

		if len(errs) > 0 {
			return fmt.Errorf("%w: %d dictionaries could not be opened", ErrMdictutil, len(errs))
		}
		return nil
	},
}
