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

// Package server implements an HTTP API for looking up words in MDict
// dictionaries.
package server

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/op/go-logging"

	mdict "github.com/ianlewis/go-mdict"
)

var log = logging.MustGetLogger("server")

// ErrNoDictionary indicates that no dictionary was requested and no default
// is configured.
var ErrNoDictionary = errors.New("no dictionary")

// Config is the server configuration.
type Config struct {
	// Addr is the address to listen on.
	Addr string

	// Dicts are the paths of dictionaries opened at startup. The first is
	// used when a request does not name a dictionary.
	Dicts []string
}

// Server serves dictionary lookups over HTTP.
type Server struct {
	cfg    Config
	cache  *mdict.Cache
	engine *chi.Mux
}

// New returns a new Server looking up dictionaries in cache.
func New(cfg Config, cache *mdict.Cache) *Server {
	s := &Server{
		cfg:    cfg,
		cache:  cache,
		engine: chi.NewRouter(),
	}
	s.engine.Use(middleware.RequestID)
	s.engine.Use(middleware.Recoverer)
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.engine.Get("/health", s.health)
	s.engine.Get("/dicts", s.dicts)
	s.engine.Post("/lookup", s.lookup)
	s.engine.Get("/keys", s.keys)
	s.engine.Get("/resource/*", s.resource)
}

// ServeHTTP implements [http.Handler].
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.engine.ServeHTTP(w, r)
}

// Preload opens the configured dictionaries, building their indexes if
// needed. Dictionaries that fail to open are logged and skipped.
func (s *Server) Preload() {
	for _, p := range s.cfg.Dicts {
		if _, err := s.cache.Get(p, false); err != nil {
			log.Errorf("loading %q: %v", p, err)
			continue
		}
		log.Infof("loaded %q", p)
	}
}

// Run listens on the configured address and serves requests.
func (s *Server) Run() error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}
	log.Infof("listening on %s", s.cfg.Addr)
	if err := srv.ListenAndServe(); err != nil {
		return fmt.Errorf("serving: %w", err)
	}
	return nil
}

// dictionary returns the dictionary at path or the default dictionary if
// path is empty.
func (s *Server) dictionary(path string) (*mdict.Dictionary, error) {
	if path == "" {
		if len(s.cfg.Dicts) == 0 {
			return nil, ErrNoDictionary
		}
		path = s.cfg.Dicts[0]
	}
	//nolint:wrapcheck // error should not be wrapped
	return s.cache.Get(path, false)
}
