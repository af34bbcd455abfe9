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

	"github.com/urfave/cli/v2"
)

var buildCommand = &cli.Command{
	Name:      "build",
	Usage:     "Rebuild a dictionary's index",
	ArgsUsage: "[PATH]",
	Flags: []cli.Flag{
		&cli.BoolFlag{
			Name:               "check",
			Usage:              "decode and verify every record block",
			DisableDefaultText: true,
		},
		&cli.BoolFlag{
			Name:               "skip-key-index",
			Usage:              "do not create the key column index",
			DisableDefaultText: true,
		},
	},
	Action: func(c *cli.Context) error {
		options := dictOptions(c)
		options.ForceRebuild = true
		options.CheckBlocks = c.Bool("check")
		options.SkipKeyIndex = c.Bool("skip-key-index")

		d, _, err := openDict(c, options)
		if err != nil {
			return err
		}
		defer d.Close()

		count, err := d.Count()
		if err != nil {
			return fmt.Errorf("%w: %w", ErrMdictutil, err)
		}
		fmt.Fprintf(c.App.Writer, "%s: indexed %d entries\n", d.Path(), count)
		return nil
	},
}
