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
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/op/go-logging"
	"github.com/urfave/cli/v2"
	"golang.org/x/text/transform"

	mdict "github.com/ianlewis/go-mdict"
	"github.com/ianlewis/go-mdict/internal/folding"
)

const (
	// ExitCodeSuccess is successful error code.
	ExitCodeSuccess int = iota

	// ExitCodeFlagParseError is the exit code for a flag parsing error.
	ExitCodeFlagParseError

	// ExitCodeUnknownError is the exit code for an unknown error.
	ExitCodeUnknownError

	// ExitCodeDictionaryUnavailable is the exit code when a dictionary does
	// not exist or is not an MDict dictionary.
	ExitCodeDictionaryUnavailable

	// ExitCodeNotFound is the exit code when a word or resource is not
	// found.
	ExitCodeNotFound
)

// ErrMdictutil is a parent error for all command errors.
var ErrMdictutil = errors.New("mdictutil")

// ErrFlagParse is a flag parsing error.
var ErrFlagParse = fmt.Errorf("%w: parsing flags", ErrMdictutil)

// ErrNotFound indicates that a word or resource was not found.
var ErrNotFound = fmt.Errorf("%w: not found", ErrMdictutil)

var copyrightNames = []string{
	"2026 Ian Lewis",
}

//nolint:gochecknoinits // init needed needed for global variable.
func init() {
	// Set the HelpFlag to a random name so that it isn't used. `cli` handles
	// the flag with the root command such that it takes a command name argument
	// but we don't use it.
	//
	// This is done because `mdictutil --help foo` will display a
	// "command foo not found" error instead of the help.
	//
	// This flag is hidden by the help output.
	// See: github.com/urfave/cli/issues/1809
	cli.HelpFlag = &cli.BoolFlag{
		// NOTE: Use a random name no one would guess.
		Name:               "d41d8cd98f00b204e980",
		DisableDefaultText: true,
	}
}

// check checks the error and panics if not nil.
func check(err error) {
	if err != nil {
		panic(err)
	}
}

// exitCode returns the process exit code for an error returned by the app.
func exitCode(err error) int {
	switch {
	case err == nil:
		return ExitCodeSuccess
	case errors.Is(err, ErrFlagParse):
		return ExitCodeFlagParseError
	case errors.Is(err, mdict.ErrContainerNotFound), errors.Is(err, mdict.ErrBadExtension):
		return ExitCodeDictionaryUnavailable
	case errors.Is(err, ErrNotFound):
		return ExitCodeNotFound
	default:
		return ExitCodeUnknownError
	}
}

// setupLogging configures library logging. Only warnings and errors are
// logged unless verbose is set.
func setupLogging(c *cli.Context) {
	backend := logging.NewLogBackend(c.App.ErrWriter, "", 0)
	format := logging.MustStringFormatter(`%{time:15:04:05.000} %{module} %{level:.4s} %{message}`)
	leveled := logging.AddModuleLevel(logging.NewBackendFormatter(backend, format))
	level := logging.WARNING
	if c.Bool("verbose") {
		level = logging.DEBUG
	}
	leveled.SetLevel(level, "")
	logging.SetBackend(leveled)
}

// dictOptions returns the dictionary options for the command's flags.
func dictOptions(c *cli.Context) *mdict.Options {
	return &mdict.Options{
		Encoding:    c.String("encoding"),
		FollowLinks: !c.Bool("no-follow-links"),
		Folder: func() transform.Transformer {
			return folding.Query()
		},
	}
}

// dictArgs splits the command's arguments into the dictionary path and the
// remaining arguments. The path is the first argument unless the --dict flag
// is set.
func dictArgs(c *cli.Context) (string, []string, error) {
	args := c.Args().Slice()
	if p := c.String("dict"); p != "" {
		return p, args, nil
	}
	if len(args) == 0 {
		return "", nil, fmt.Errorf("%w: missing dictionary path", ErrFlagParse)
	}
	return args[0], args[1:], nil
}

// openDict opens the dictionary named by the command's arguments.
func openDict(c *cli.Context, options *mdict.Options) (*mdict.Dictionary, []string, error) {
	path, args, err := dictArgs(c)
	if err != nil {
		return nil, nil, err
	}
	d, err := mdict.Open(path, options)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", ErrMdictutil, err)
	}
	return d, args, nil
}

func newMdictutilApp() *cli.App {
	return &cli.App{
		Name:  filepath.Base(os.Args[0]),
		Usage: "Look up words in MDict dictionaries.",
		Description: strings.Join([]string{
			"MDict utility written in Go.",
			"http://github.com/ianlewis/go-mdict",
		}, "\n"),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "dict",
				Usage:   "use the .mdx dictionary at `PATH`",
				Aliases: []string{"d"},
				EnvVars: []string{"MDICT_PATH"},
			},
			&cli.StringFlag{
				Name:  "encoding",
				Usage: "override the dictionary's text `ENCODING`",
			},
			&cli.BoolFlag{
				Name:               "no-follow-links",
				Usage:              "do not resolve @@@LINK= redirects",
				DisableDefaultText: true,
			},
			&cli.BoolFlag{
				Name:               "verbose",
				Usage:              "log progress information",
				Aliases:            []string{"v"},
				EnvVars:            []string{"MDICT_VERBOSE"},
				DisableDefaultText: true,
			},

			// Special flags are shown at the end.
			&cli.BoolFlag{
				Name:               "help",
				Usage:              "print this help text and exit",
				Aliases:            []string{"h"},
				DisableDefaultText: true,
			},
			&cli.BoolFlag{
				Name:               "version",
				Usage:              "print version information and exit",
				Aliases:            []string{"V"},
				DisableDefaultText: true,
			},
		},
		Copyright:       strings.Join(copyrightNames, "\n"),
		HideHelp:        true,
		HideHelpCommand: true,
		Before: func(c *cli.Context) error {
			// A missing .env file is not an error.
			_ = godotenv.Load(".env")
			setupLogging(c)
			return nil
		},
		OnUsageError: func(_ *cli.Context, err error, _ bool) error {
			return fmt.Errorf("%w: %w", ErrFlagParse, err)
		},
		Action: func(c *cli.Context) error {
			if c.Bool("version") {
				return printVersion(c)
			}

			check(cli.ShowAppHelp(c))
			return nil
		},
		Commands: []*cli.Command{
			infoCommand,
			listCommand,
			buildCommand,
			lookupCommand,
			keysCommand,
			resourceCommand,
			serveCommand,
		},
	}
}
