// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package api

import (
	"bytes"
	"net/http"
	"strconv"

	"github.com/ManuGH/dvrguide/internal/log"
	"github.com/ManuGH/dvrguide/internal/metrics"
	chimw "github.com/go-chi/chi/v5/middleware"
)

// HeaderCache reports whether a view came from the response cache.
const HeaderCache = "X-Cache"

// viewCacheKey identifies a rendered view. The snapshot load time is part
// of the key so a reload never serves views of the previous snapshot.
func (s *Server) viewCacheKey(r *http.Request) (string, bool) {
	data := s.src.Current()
	if data == nil {
		return "", false
	}
	// Encode sorts by key, so parameter order does not split entries.
	return r.URL.Path + "?" + r.URL.Query().Encode() + "@" + strconv.FormatInt(data.LoadedAt.UnixNano(), 10), true
}

// cached serves successful responses of next from the view cache. Only
// 200 responses are stored.
func (s *Server) cached(view string, next http.HandlerFunc) http.HandlerFunc {
	if s.cache == nil || s.cfg.Cache.TTL <= 0 {
		return next
	}
	return func(w http.ResponseWriter, r *http.Request) {
		key, ok := s.viewCacheKey(r)
		if !ok {
			next(w, r)
			return
		}
		ctx := r.Context()
		if body, hit := s.cache.Get(ctx, key); hit {
			metrics.RecordViewCache(view, true)
			w.Header().Set(HeaderCache, "HIT")
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write(body)
			return
		}
		metrics.RecordViewCache(view, false)

		var buf bytes.Buffer
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		ww.Tee(&buf)
		w.Header().Set(HeaderCache, "MISS")
		next(ww, r)

		if ww.Status() == http.StatusOK && buf.Len() > 0 {
			s.cache.Set(ctx, key, buf.Bytes(), s.cfg.Cache.TTL)
			logger := log.WithComponentFromContext(ctx, "api")
			logger.Debug().
				Str(log.FieldEvent, "view.cached").
				Str("view", view).
				Int("bytes", buf.Len()).
				Msg("view cached")
		}
	}
}
