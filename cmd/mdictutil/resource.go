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
	"io"
	"os"

	"github.com/urfave/cli/v2"
)

var resourceCommand = &cli.Command{
	Name:      "resource",
	Usage:     "Write a resource to stdout or a file",
	ArgsUsage: "[PATH] KEY",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:    "output",
			Usage:   "write the resource to `FILE`",
			Aliases: []string{"o"},
		},
		&cli.BoolFlag{
			Name:               "ignore-case",
			Usage:              "match the key case insensitively",
			Aliases:            []string{"i"},
			DisableDefaultText: true,
		},
	},
	Action: func(c *cli.Context) error {
		d, args, err := openDict(c, dictOptions(c))
		if err != nil {
			return err
		}
		defer d.Close()

		if len(args) != 1 {
			return fmt.Errorf("%w: expected one resource key", ErrFlagParse)
		}

		res, err := d.LookupResource(args[0], c.Bool("ignore-case"))
		if err != nil {
			return fmt.Errorf("%w: %w", ErrMdictutil, err)
		}
		if len(res) == 0 {
			return fmt.Errorf("%w: %q", ErrNotFound, args[0])
		}

		var w io.Writer = c.App.Writer
		if out := c.String("output"); out != "" {
			f, err := os.Create(out)
			if err != nil {
				return fmt.Errorf("%w: %w", ErrMdictutil, err)
			}
			defer f.Close()
			w = f
		}
		if _, err := w.Write(res[0]); err != nil {
			return fmt.Errorf("%w: writing resource: %w", ErrMdictutil, err)
		}
		return nil
	},
}
