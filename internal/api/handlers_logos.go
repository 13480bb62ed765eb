// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"strings"

	"github.com/ManuGH/dvrguide/internal/model"
)

const (
	maxPrefetchIDs  = 1000
	maxPrefetchBody = 64 << 10
)

type prefetchRequest struct {
	IDs []int64 `json:"ids"`
}

type prefetchResponse struct {
	Queued  int `json:"queued"`
	Pending int `json:"pending"`
}

// handleLogoPrefetch serves POST /api/logos/prefetch. Ids are queued for
// the next batch; the response does not wait for resolution.
func (s *Server) handleLogoPrefetch(w http.ResponseWriter, r *http.Request) {
	if s.logos == nil {
		writeProblem(w, r, http.StatusServiceUnavailable, "logo resolver disabled")
		return
	}
	var req prefetchRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxPrefetchBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeProblem(w, r, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.IDs) > maxPrefetchIDs {
		writeProblem(w, r, http.StatusBadRequest, fmt.Sprintf("at most %d ids per request", maxPrefetchIDs))
		return
	}

	queued, err := s.logos.Request(req.IDs...)
	if err != nil {
		writeProblem(w, r, http.StatusServiceUnavailable, err.Error())
		return
	}
	writeJSON(w, http.StatusAccepted, prefetchResponse{Queued: queued, Pending: s.logos.Pending()})
}

// logoEntry is a resolved logo with its preferred display url.
type logoEntry struct {
	model.Logo
	DisplayURL string `json:"display_url"`
}

// handleLogos serves GET /api/logos?ids=1,2. Without ids every resolved
// logo is returned.
func (s *Server) handleLogos(w http.ResponseWriter, r *http.Request) {
	if s.logos == nil {
		writeProblem(w, r, http.StatusServiceUnavailable, "logo resolver disabled")
		return
	}
	ids, err := parseIDList(r.URL.Query().Get("ids"))
	if err != nil {
		writeProblem(w, r, http.StatusBadRequest, err.Error())
		return
	}

	resolved := s.logos.Resolved(ids...)
	out := make([]logoEntry, 0, len(resolved))
	for _, logo := range resolved {
		display := logo.CacheURL
		if display == "" {
			display = logo.URL
		}
		out = append(out, logoEntry{Logo: logo, DisplayURL: display})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	writeJSON(w, http.StatusOK, map[string]any{"logos": out})
}

func parseIDList(v string) ([]int64, error) {
	if strings.TrimSpace(v) == "" {
		return nil, nil
	}
	parts := strings.Split(v, ",")
	ids := make([]int64, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		id, err := strconv.ParseInt(p, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid id %q", p)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
