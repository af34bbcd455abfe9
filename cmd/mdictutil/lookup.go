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
	"strings"

	"github.com/k3a/html2text"
	"github.com/urfave/cli/v2"
)

var lookupCommand = &cli.Command{
	Name:      "lookup",
	Usage:     "Look up a word",
	ArgsUsage: "[PATH] WORD",
	Flags: []cli.Flag{
		&cli.BoolFlag{
			Name:               "ignore-case",
			Usage:              "match the word case insensitively",
			Aliases:            []string{"i"},
			DisableDefaultText: true,
		},
		&cli.BoolFlag{
			Name:               "html",
			Usage:              "print definitions as HTML",
			DisableDefaultText: true,
		},
	},
	Action: func(c *cli.Context) error {
		d, args, err := openDict(c, dictOptions(c))
		if err != nil {
			return err
		}
		defer d.Close()

		if len(args) == 0 {
			return fmt.Errorf("%w: missing word", ErrFlagParse)
		}
		word := strings.Join(args, " ")

		entries, err := d.Entries(word, c.Bool("ignore-case"))
		if err != nil {
			return fmt.Errorf("%w: %w", ErrMdictutil, err)
		}
		if len(entries) == 0 {
			return fmt.Errorf("%w: %q", ErrNotFound, word)
		}

		for i, e := range entries {
			if i > 0 {
				fmt.Fprintln(c.App.Writer)
			}
			def := e.Definition()
			if !c.Bool("html") {
				def = html2text.HTML2Text(def)
			}
			fmt.Fprintln(c.App.Writer, e.Title())
			fmt.Fprintln(c.App.Writer, def)
		}
		return nil
	},
}
