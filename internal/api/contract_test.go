// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/getkin/kin-openapi/openapi3filter"
	"github.com/getkin/kin-openapi/routers/legacy"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	openapiOnce sync.Once
	openapiDoc  *openapi3.T
	openapiErr  error
)

func loadOpenAPIDoc(t *testing.T) *openapi3.T {
	t.Helper()
	openapiOnce.Do(func() {
		doc, err := openapi3.NewLoader().LoadFromData(OpenAPISpec)
		if err != nil {
			openapiErr = err
			return
		}
		if err := doc.Validate(context.Background()); err != nil {
			openapiErr = err
			return
		}
		openapiDoc = doc
	})
	if openapiErr != nil {
		t.Fatalf("openapi load failed: %v", openapiErr)
	}
	return openapiDoc
}

func newRequest(method, target, body string) *http.Request {
	if body == "" {
		return httptest.NewRequest(method, target, nil)
	}
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

// validateExchange checks req against the document, serves it and checks
// the response.
func validateExchange(t *testing.T, doc *openapi3.T, h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	router, err := legacy.NewRouter(doc)
	require.NoError(t, err, "openapi router init")

	route, pathParams, err := router.FindRoute(req)
	require.NoError(t, err, "openapi route lookup")

	reqInput := &openapi3filter.RequestValidationInput{
		Request:    req,
		PathParams: pathParams,
		Route:      route,
	}
	require.NoError(t, openapi3filter.ValidateRequest(context.Background(), reqInput), "openapi request validation")

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	input := &openapi3filter.ResponseValidationInput{
		RequestValidationInput: reqInput,
		Status:                 rr.Code,
		Header:                 rr.Header(),
		Options:                &openapi3filter.Options{IncludeResponseStatus: true},
	}
	input.SetBodyBytes(rr.Body.Bytes())
	require.NoError(t, openapi3filter.ValidateResponse(context.Background(), input), "openapi response validation: %s", rr.Body.String())
	return rr
}

func TestOpenAPIDocumentServed(t *testing.T) {
	ts := newTestServer(t, &fakeSnapshot{data: fixtureData()}, false)
	rec := ts.do(t, http.MethodGet, "/api/openapi.yaml", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/yaml", rec.Header().Get("Content-Type"))
	assert.Equal(t, OpenAPISpec, rec.Body.Bytes())
}

func TestContract(t *testing.T) {
	doc := loadOpenAPIDoc(t)
	loaded := newTestServer(t, &fakeSnapshot{data: fixtureData()}, true)
	empty := newTestServer(t, &fakeSnapshot{}, false)

	tests := []struct {
		name   string
		srv    *testServer
		method string
		target string
		body   string
		status int
	}{
		{"ready", loaded, http.MethodGet, "/healthz", "", http.StatusOK},
		{"not ready", empty, http.MethodGet, "/healthz", "", http.StatusServiceUnavailable},
		{"live", loaded, http.MethodGet, "/livez", "", http.StatusOK},
		{"guide", loaded, http.MethodGet, "/api/guide", "", http.StatusOK},
		{"guide filtered", loaded, http.MethodGet, "/api/guide?q=news&group=3&expanded=p1&fit=true", "", http.StatusOK},
		{"guide explicit window", loaded, http.MethodGet, "/api/guide?start=2025-03-01T22:00:00Z&end=2025-03-02T01:00:00Z&tz=Europe/Berlin", "", http.StatusOK},
		{"guide bad window", loaded, http.MethodGet, "/api/guide?start=2025-03-01T22:00:00Z", "", http.StatusBadRequest},
		{"guide not loaded", empty, http.MethodGet, "/api/guide", "", http.StatusServiceUnavailable},
		{"dvr", loaded, http.MethodGet, "/api/dvr", "", http.StatusOK},
		{"series", loaded, http.MethodGet, "/api/dvr/series?tvg_id=news.1&title=Evening%20News", "", http.StatusOK},
		{"rule", loaded, http.MethodGet, "/api/dvr/rules/9", "", http.StatusOK},
		{"rule missing", loaded, http.MethodGet, "/api/dvr/rules/404", "", http.StatusNotFound},
		{"rule occurrences", loaded, http.MethodGet, "/api/dvr/rules/9/occurrences?tz=Europe/Berlin", "", http.StatusOK},
		{"orphaned occurrences", loaded, http.MethodGet, "/api/dvr/rules/404/occurrences", "", http.StatusOK},
		{"occurrences not loaded", empty, http.MethodGet, "/api/dvr/rules/9/occurrences", "", http.StatusServiceUnavailable},
		{"logos", loaded, http.MethodGet, "/api/logos?ids=5,6", "", http.StatusOK},
		{"logos disabled", empty, http.MethodGet, "/api/logos", "", http.StatusServiceUnavailable},
		{"prefetch", loaded, http.MethodPost, "/api/logos/prefetch", `{"ids":[5,6]}`, http.StatusAccepted},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := validateExchange(t, doc, tt.srv.handler, newRequest(tt.method, tt.target, tt.body))
			assert.Equal(t, tt.status, rr.Code, rr.Body.String())
		})
	}
}

// TestRouterParity checks that every documented operation is mounted and
// every mounted route is documented.
func TestRouterParity(t *testing.T) {
	doc := loadOpenAPIDoc(t)
	ts := newTestServer(t, &fakeSnapshot{data: fixtureData()}, true)

	documented := make(map[string]bool)
	for path, item := range doc.Paths.Map() {
		documented[path] = true
		for method := range item.Operations() {
			target := strings.ReplaceAll(path, "{id}", "9")
			rec := ts.do(t, method, target, "")
			assert.NotContains(t, []int{http.StatusNotFound, http.StatusMethodNotAllowed}, rec.Code,
				"route not mounted: %s %s", method, path)
		}
	}

	routes, ok := ts.handler.(chi.Routes)
	require.True(t, ok, "handler is a chi router")
	var undocumented []string
	err := chi.Walk(routes, func(method, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
		if !documented[route] {
			undocumented = append(undocumented, method+" "+route)
		}
		return nil
	})
	require.NoError(t, err)
	sort.Strings(undocumented)
	assert.Empty(t, undocumented)
}
