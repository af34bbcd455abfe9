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

var keysCommand = &cli.Command{
	Name:      "keys",
	Usage:     "List the keys of a dictionary",
	ArgsUsage: "[PATH] [PATTERN]",
	Description: "List keys matching PATTERN. '*' in PATTERN matches any run of\n" +
		"characters. All keys are listed if PATTERN is omitted.",
	Flags: []cli.Flag{
		&cli.BoolFlag{
			Name:               "resources",
			Usage:              "list resource keys instead of word keys",
			Aliases:            []string{"r"},
			DisableDefaultText: true,
		},
	},
	Action: func(c *cli.Context) error {
		d, args, err := openDict(c, dictOptions(c))
		if err != nil {
			return err
		}
		defer d.Close()

		pattern := "*"
		if len(args) > 0 {
			pattern = args[0]
		}

		list := d.Keys
		if c.Bool("resources") {
			list = d.ResourceKeys
		}
		keys, err := list(pattern)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrMdictutil, err)
		}
		for _, k := range keys {
			fmt.Fprintln(c.App.Writer, k)
		}
		return nil
	},
}
