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

package server

import (
	"encoding/json"
	"errors"
	"mime"
	"net/http"
	"path"
	"sort"

	"github.com/go-chi/chi/v5"

	mdict "github.com/ianlewis/go-mdict"
)

// LookupRequest is the body of a lookup request.
type LookupRequest struct {
	Word       string `json:"word"`
	DictPath   string `json:"dict_path,omitempty"`
	IgnoreCase bool   `json:"ignorecase,omitempty"`
}

// LookupResponse is the body of a lookup response.
type LookupResponse struct {
	Word        string   `json:"word"`
	Definitions []string `json:"definitions"`
	DictTitle   string   `json:"dict_title"`
}

// DictResponse describes a loaded dictionary.
type DictResponse struct {
	Path         string `json:"path"`
	Title        string `json:"title"`
	Description  string `json:"description"`
	Encoding     string `json:"encoding"`
	HasResources bool   `json:"has_resources"`
}

// ErrorResponse is the body of an error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Errorf("writing response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorResponse{Error: msg})
}

// writeLoadError maps a dictionary load failure to a response.
func writeLoadError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, mdict.ErrContainerNotFound):
		writeError(w, http.StatusNotFound, "dictionary not found")
	case errors.Is(err, mdict.ErrBadExtension), errors.Is(err, ErrNoDictionary):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		log.Errorf("loading dictionary: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to load dictionary")
	}
}

func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) dicts(w http.ResponseWriter, _ *http.Request) {
	resp := []DictResponse{}
	for _, d := range s.cache.Dictionaries() {
		resp = append(resp, DictResponse{
			Path:         d.Path(),
			Title:        d.Title(),
			Description:  d.Description(),
			Encoding:     d.Encoding(),
			HasResources: d.HasResources(),
		})
	}
	sort.Slice(resp, func(i, j int) bool {
		return resp[i].Path < resp[j].Path
	})
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) lookup(w http.ResponseWriter, r *http.Request) {
	var req LookupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Word == "" {
		writeError(w, http.StatusBadRequest, "missing word")
		return
	}

	d, err := s.dictionary(req.DictPath)
	if err != nil {
		writeLoadError(w, err)
		return
	}

	defs, err := d.Lookup(req.Word, req.IgnoreCase)
	if err != nil {
		log.Errorf("looking up %q in %q: %v", req.Word, d.Path(), err)
		writeError(w, http.StatusInternalServerError, "lookup failed")
		return
	}

	writeJSON(w, http.StatusOK, LookupResponse{
		Word:        req.Word,
		Definitions: defs,
		DictTitle:   d.Title(),
	})
}

func (s *Server) keys(w http.ResponseWriter, r *http.Request) {
	d, err := s.dictionary(r.URL.Query().Get("dict_path"))
	if err != nil {
		writeLoadError(w, err)
		return
	}

	keys, err := d.Keys(r.URL.Query().Get("pattern"))
	if err != nil {
		log.Errorf("listing keys in %q: %v", d.Path(), err)
		writeError(w, http.StatusInternalServerError, "lookup failed")
		return
	}
	if keys == nil {
		keys = []string{}
	}
	writeJSON(w, http.StatusOK, keys)
}

func (s *Server) resource(w http.ResponseWriter, r *http.Request) {
	d, err := s.dictionary(r.URL.Query().Get("dict_path"))
	if err != nil {
		writeLoadError(w, err)
		return
	}

	p := chi.URLParam(r, "*")
	res, err := d.LookupResource(p, true)
	if err != nil {
		log.Errorf("looking up resource %q in %q: %v", p, d.Path(), err)
		writeError(w, http.StatusInternalServerError, "lookup failed")
		return
	}
	if len(res) == 0 {
		writeError(w, http.StatusNotFound, "resource not found")
		return
	}

	ct := mime.TypeByExtension(path.Ext(p))
	if ct == "" {
		ct = http.DetectContentType(res[0])
	}
	w.Header().Set("Content-Type", ct)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(res[0]); err != nil {
		log.Errorf("writing resource: %v", err)
	}
}
