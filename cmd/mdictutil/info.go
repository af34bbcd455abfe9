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
	"strconv"

	"github.com/k3a/html2text"
	"github.com/rodaine/table"
	"github.com/urfave/cli/v2"
)

var infoCommand = &cli.Command{
	Name:      "info",
	Usage:     "Print information about a dictionary",
	ArgsUsage: "[PATH]",
	Action: func(c *cli.Context) error {
		d, _, err := openDict(c, dictOptions(c))
		if err != nil {
			return err
		}
		defer d.Close()

		count, err := d.Count()
		if err != nil {
			return fmt.Errorf("%w: %w", ErrMdictutil, err)
		}

		tbl := table.New("Field", "Value").WithWriter(c.App.Writer)
		tbl.AddRow("Title", d.Title())
		tbl.AddRow("Description", html2text.HTML2Text(d.Description()))
		tbl.AddRow("Encoding", d.Encoding())
		tbl.AddRow("Entries", strconv.FormatInt(count, 10))
		tbl.AddRow("Resources", strconv.FormatBool(d.HasResources()))
		tbl.AddRow("Path", d.Path())
		tbl.Print()
		return nil
	},
}
