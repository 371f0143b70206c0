// router_test.go: Tests for root router assembly
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package goadapters

import (
	"compress/gzip"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	goerrors "github.com/agilira/go-errors"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testAppContext(env Environment, ic Interceptions) Context {
	app := NewContext()
	app.Environment = env
	app.Config = &Config{
		Server: ServerConfig{Port: 5000, Host: "127.0.0.1", Interceptions: ic},
	}
	return app
}

func testRoutes() chi.Router {
	r := chi.NewRouter()
	r.Get("/hello", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("hello"))
	})
	r.Get("/panic", func(w http.ResponseWriter, r *http.Request) {
		panic("handler exploded")
	})
	r.Post("/echo", echoBody)
	return r
}

func serve(t *testing.T, handler http.Handler, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestNewRouter_Defaults(t *testing.T) {
	router, err := NewRouter(testAppContext(EnvironmentProduction, Interceptions{}), testRoutes(), nil, NewTestLogger())
	require.NoError(t, err)

	rec := serve(t, router, httptest.NewRequest(http.MethodGet, "/hello", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "hello", rec.Body.String())
	assert.Equal(t, "butter", rec.Header().Get("x-powered-by"))
	assert.NotEmpty(t, rec.Header().Get(RequestIDHeader))

	rec = serve(t, router, httptest.NewRequest(http.MethodGet, HealthzPath, nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"ok":true`)

	rec = serve(t, router, httptest.NewRequest(http.MethodGet, "/missing", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestNewRouter_CatchPanicOnlyInDevelopment(t *testing.T) {
	router, err := NewRouter(testAppContext(EnvironmentDevelopment, Interceptions{}), testRoutes(), nil, NewTestLogger())
	require.NoError(t, err)

	rec := serve(t, router, httptest.NewRequest(http.MethodGet, "/panic", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "handler exploded", decodeErrorResponse(t, rec).Message)

	router, err = NewRouter(testAppContext(EnvironmentProduction, Interceptions{}), testRoutes(), nil, NewTestLogger())
	require.NoError(t, err)

	assert.Panics(t, func() {
		serve(t, router, httptest.NewRequest(http.MethodGet, "/panic", nil))
	})
}

func TestNewRouter_LimitPayload(t *testing.T) {
	ic := Interceptions{LimitPayload: &LimitPayloadConfig{Enable: true, BodyLimit: "1kb"}}
	logger := NewTestLogger()
	router, err := NewRouter(testAppContext(EnvironmentProduction, ic), testRoutes(), nil, logger)
	require.NoError(t, err)
	assert.True(t, logger.HasMessage("INFO", "[Middleware] +limit payload"))

	rec := serve(t, router, httptest.NewRequest(http.MethodPost, "/echo", strings.NewReader(strings.Repeat("x", 1000))))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = serve(t, router, httptest.NewRequest(http.MethodPost, "/echo", strings.NewReader(strings.Repeat("x", 1001))))
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestNewRouter_InvalidBodyLimit(t *testing.T) {
	ic := Interceptions{LimitPayload: &LimitPayloadConfig{Enable: true, BodyLimit: "huge"}}
	_, err := NewRouter(testAppContext(EnvironmentProduction, ic), testRoutes(), nil, nil)
	assert.Error(t, err)
}

func TestNewRouter_CORS(t *testing.T) {
	ic := Interceptions{CORS: &CORSConfig{Enable: true, AllowOrigins: []string{"https://app.example.com"}}}
	router, err := NewRouter(testAppContext(EnvironmentProduction, ic), testRoutes(), nil, nil)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/hello", nil)
	req.Header.Set("Origin", "https://app.example.com")
	rec := serve(t, router, req)
	assert.Equal(t, "https://app.example.com", rec.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/hello", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	rec = serve(t, router, req)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestNewRouter_Compression(t *testing.T) {
	routes := chi.NewRouter()
	routes.Get("/big", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":"` + strings.Repeat("a", 4096) + `"}`))
	})
	ic := Interceptions{Compression: &CompressionConfig{Enable: true}}
	router, err := NewRouter(testAppContext(EnvironmentProduction, ic), routes, nil, nil)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/big", nil)
	req.Header.Set("Accept-Encoding", "gzip")
	rec := serve(t, router, req)

	assert.Equal(t, "gzip", rec.Header().Get("Content-Encoding"))
	reader, err := gzip.NewReader(rec.Body)
	require.NoError(t, err)
	defer reader.Close()
}

func TestNewRouter_ReadinessFollowsShutdown(t *testing.T) {
	manager := NewAdapterManager[testRouter](NewContext(), DefaultManagerOptions())
	health := NewHealthHandler(manager.ShutdownSignal())

	router, err := NewRouter(testAppContext(EnvironmentProduction, Interceptions{}), nil, health, nil)
	require.NoError(t, err)

	rec := serve(t, router, httptest.NewRequest(http.MethodGet, ReadyzPath, nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	require.NoError(t, manager.StopAll(t.Context()))

	rec = serve(t, router, httptest.NewRequest(http.MethodGet, ReadyzPath, nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), `"ok":false`)

	rec = serve(t, router, httptest.NewRequest(http.MethodGet, HealthzPath, nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func writeStaticAssets(t *testing.T) (folder, fallback string) {
	t.Helper()
	folder = t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(folder, "app.js"), []byte("console.log('app')"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(folder, "index.html"), []byte("<html>spa</html>"), 0o600))

	var gz strings.Builder
	w := gzip.NewWriter(&gz)
	_, _ = w.Write([]byte("console.log('app')"))
	require.NoError(t, w.Close())
	require.NoError(t, os.WriteFile(filepath.Join(folder, "app.js.gz"), []byte(gz.String()), 0o600))

	return folder, filepath.Join(folder, "index.html")
}

func TestNewRouter_StaticAssets(t *testing.T) {
	folder, fallback := writeStaticAssets(t)
	ic := Interceptions{Static: &StaticAssetsConfig{
		Enable:        true,
		MustExist:     true,
		Folder:        StaticFolder{URI: "/static", Path: folder},
		Fallback:      fallback,
		Precompressed: true,
	}}
	router, err := NewRouter(testAppContext(EnvironmentProduction, ic), testRoutes(), nil, nil)
	require.NoError(t, err)

	rec := serve(t, router, httptest.NewRequest(http.MethodGet, "/static/app.js", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "console.log('app')", rec.Body.String())

	req := httptest.NewRequest(http.MethodGet, "/static/app.js", nil)
	req.Header.Set("Accept-Encoding", "gzip")
	rec = serve(t, router, req)
	assert.Equal(t, "gzip", rec.Header().Get("Content-Encoding"))
	assert.Contains(t, rec.Header().Get("Content-Type"), "javascript")

	rec = serve(t, router, httptest.NewRequest(http.MethodGet, "/static/dashboard/settings", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "<html>spa</html>", rec.Body.String())

	rec = serve(t, router, httptest.NewRequest(http.MethodPost, "/static/app.js", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Application routes still win outside the static prefix
	rec = serve(t, router, httptest.NewRequest(http.MethodGet, "/hello", nil))
	assert.Equal(t, "hello", rec.Body.String())
}

func TestNewRouter_StaticAssetsMustExist(t *testing.T) {
	ic := Interceptions{Static: &StaticAssetsConfig{
		Enable:    true,
		MustExist: true,
		Folder:    StaticFolder{URI: "/static", Path: filepath.Join(t.TempDir(), "missing")},
		Fallback:  "index.html",
	}}

	_, err := NewRouter(testAppContext(EnvironmentProduction, ic), testRoutes(), nil, nil)

	var coded *goerrors.Error
	require.True(t, errors.As(err, &coded))
	assert.Equal(t, goerrors.ErrorCode(ErrCodeStaticAssetsError), coded.Code)
}

func TestNewRouter_StaticAssetsAtRootRejected(t *testing.T) {
	for _, uri := range []string{"/", "//", ""} {
		ic := Interceptions{Static: &StaticAssetsConfig{
			Enable: true,
			Folder: StaticFolder{URI: uri, Path: t.TempDir()},
		}}

		_, err := NewRouter(testAppContext(EnvironmentProduction, ic), testRoutes(), nil, nil)

		var coded *goerrors.Error
		require.True(t, errors.As(err, &coded), "uri %q", uri)
		assert.Equal(t, goerrors.ErrorCode(ErrCodeConfigValidationError), coded.Code)
	}
}
