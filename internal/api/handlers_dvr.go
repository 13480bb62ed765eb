// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package api

import (
	"net/http"
	"strings"

	"github.com/ManuGH/dvrguide/internal/control/read"
	"github.com/ManuGH/dvrguide/internal/model"
	"github.com/go-chi/chi/v5"
)

// handleDvr serves GET /api/dvr.
func (s *Server) handleDvr(w http.ResponseWriter, r *http.Request) {
	prefs, err := s.requestPrefs(r)
	if err != nil {
		writeProblem(w, r, http.StatusBadRequest, err.Error())
		return
	}
	view, err := read.GetDvr(r.Context(), s.src, s.clock, prefs)
	if err != nil {
		s.writeReadError(w, r, "dvr", err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// seriesResponse lists the deduplicated upcoming episodes of one series.
type seriesResponse struct {
	TVGID    model.Key       `json:"tvg_id"`
	Title    string          `json:"title"`
	Episodes []read.DvrEntry `json:"episodes"`
}

// handleSeries serves GET /api/dvr/series?tvg_id=&title=.
func (s *Server) handleSeries(w http.ResponseWriter, r *http.Request) {
	prefs, err := s.requestPrefs(r)
	if err != nil {
		writeProblem(w, r, http.StatusBadRequest, err.Error())
		return
	}
	series := model.Program{
		TVGID: model.Key(strings.TrimSpace(r.URL.Query().Get("tvg_id"))),
		Title: strings.TrimSpace(r.URL.Query().Get("title")),
	}
	if series.Title == "" {
		writeProblem(w, r, http.StatusBadRequest, "title is required")
		return
	}

	episodes, err := read.GetSeriesEpisodes(r.Context(), s.src, series, s.clock, prefs)
	if err != nil {
		s.writeReadError(w, r, "series", err)
		return
	}
	writeJSON(w, http.StatusOK, seriesResponse{TVGID: series.TVGID, Title: series.Title, Episodes: episodes})
}

// handleRule serves GET /api/dvr/rules/{id}.
func (s *Server) handleRule(w http.ResponseWriter, r *http.Request) {
	prefs, err := s.requestPrefs(r)
	if err != nil {
		writeProblem(w, r, http.StatusBadRequest, err.Error())
		return
	}
	id := model.Key(chi.URLParam(r, "id"))
	detail, err := read.GetRule(r.Context(), s.src, id, s.clock, prefs)
	if err != nil {
		s.writeReadError(w, r, "rule", err)
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

// occurrencesResponse lists the future recordings materialized for a rule.
type occurrencesResponse struct {
	RuleID      model.Key       `json:"rule_id"`
	Occurrences []read.DvrEntry `json:"occurrences"`
}

// handleRuleOccurrences serves GET /api/dvr/rules/{id}/occurrences. The
// rule itself need not exist: occurrences left behind by a deleted rule
// are still listed so they can be cancelled.
func (s *Server) handleRuleOccurrences(w http.ResponseWriter, r *http.Request) {
	prefs, err := s.requestPrefs(r)
	if err != nil {
		writeProblem(w, r, http.StatusBadRequest, err.Error())
		return
	}
	id := model.Key(chi.URLParam(r, "id"))
	entries, err := read.GetRuleOccurrences(r.Context(), s.src, id, s.clock, prefs)
	if err != nil {
		s.writeReadError(w, r, "rule_occurrences", err)
		return
	}
	writeJSON(w, http.StatusOK, occurrencesResponse{RuleID: id, Occurrences: entries})
}
