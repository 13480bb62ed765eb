// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package api

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/ManuGH/dvrguide/internal/control/read"
	"github.com/ManuGH/dvrguide/internal/model"
	"github.com/ManuGH/dvrguide/internal/timeutil"
)

// handleGuide serves GET /api/guide.
//
// Query parameters: start, end (timestamps, both or neither), q (channel
// name filter), group (channel group id), expanded (program id), fit
// (widen window to all programs), tz (viewer zone override).
func (s *Server) handleGuide(w http.ResponseWriter, r *http.Request) {
	prefs, err := s.requestPrefs(r)
	if err != nil {
		writeProblem(w, r, http.StatusBadRequest, err.Error())
		return
	}
	q, err := parseGuideQuery(r)
	if err != nil {
		writeProblem(w, r, http.StatusBadRequest, err.Error())
		return
	}

	g, err := read.GetGuide(r.Context(), s.src, q, s.clock, prefs)
	if err != nil {
		s.writeReadError(w, r, "guide", err)
		return
	}
	if s.logos != nil {
		if _, err := s.logos.Request(g.LogoIDs()...); err != nil {
			s.logger.Debug().Err(err).Msg("logo prefetch skipped")
		}
	}
	writeJSON(w, http.StatusOK, g)
}

func parseGuideQuery(r *http.Request) (read.GuideQuery, error) {
	values := r.URL.Query()
	q := read.GuideQuery{
		ExpandedProgramID: model.Key(values.Get("expanded")),
	}
	q.Filter.Query = values.Get("q")

	start, end := values.Get("start"), values.Get("end")
	if (start == "") != (end == "") {
		return q, fmt.Errorf("start and end must be given together")
	}
	if start != "" {
		var ok bool
		if q.Start, ok = timeutil.ParseInstant(start); !ok {
			return q, fmt.Errorf("invalid start %q", start)
		}
		if q.End, ok = timeutil.ParseInstant(end); !ok {
			return q, fmt.Errorf("invalid end %q", end)
		}
		if !q.Start.Before(q.End) {
			return q, fmt.Errorf("start must be before end")
		}
	}

	if v := values.Get("group"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return q, fmt.Errorf("invalid group %q", v)
		}
		q.Filter.GroupID = &id
	}
	if v := values.Get("fit"); v != "" {
		fit, err := strconv.ParseBool(v)
		if err != nil {
			return q, fmt.Errorf("invalid fit %q", v)
		}
		q.FitPrograms = fit
	}
	return q, nil
}

// requestPrefs applies the tz query parameter on top of the configured
// preferences.
func (s *Server) requestPrefs(r *http.Request) (read.Prefs, error) {
	prefs := s.prefs
	tz := r.URL.Query().Get("tz")
	if tz == "" {
		return prefs, nil
	}
	loc, err := timeutil.LoadLocation(tz)
	if err != nil {
		return prefs, fmt.Errorf("invalid tz %q", tz)
	}
	prefs.Location = loc
	return prefs, nil
}
