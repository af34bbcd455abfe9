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
	"go.uber.org/dig"

	mdict "github.com/ianlewis/go-mdict"
	"github.com/ianlewis/go-mdict/internal/server"
)

var serveCommand = &cli.Command{
	Name:      "serve",
	Usage:     "Serve lookups over HTTP",
	ArgsUsage: "[PATH]...",
	Description: "Serve the given dictionaries over HTTP. The dictionary set with\n" +
		"--dict is served first and used when a request names no dictionary.",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:    "addr",
			Usage:   "listen on `ADDR`",
			Value:   ":8080",
			EnvVars: []string{"MDICT_ADDR"},
		},
	},
	Action: func(c *cli.Context) error {
		cfg := server.Config{
			Addr: c.String("addr"),
		}
		if p := c.String("dict"); p != "" {
			cfg.Dicts = append(cfg.Dicts, p)
		}
		cfg.Dicts = append(cfg.Dicts, c.Args().Slice()...)

		container, err := newServeContainer(cfg, dictOptions(c))
		if err != nil {
			return err
		}

		//nolint:wrapcheck // errors from Run are already wrapped.
		return container.Invoke(func(s *server.Server, cache *mdict.Cache) error {
			defer cache.Close()
			s.Preload()
			return s.Run()
		})
	},
}

// newServeContainer returns a container providing the server and its
// dependencies.
func newServeContainer(cfg server.Config, options *mdict.Options) (*dig.Container, error) {
	container := dig.New()
	for _, ctor := range []any{
		func() server.Config { return cfg },
		func() *mdict.Options { return options },
		mdict.NewCache,
		server.New,
	} {
		if err := container.Provide(ctor); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrMdictutil, err)
		}
	}
	return container, nil
}
