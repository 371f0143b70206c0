// router.go: Root HTTP router assembly
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package goadapters

import (
	"mime"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
)

// NewRouter assembles the root router: configured interceptions, the health
// endpoints, the application routes and, when enabled, static assets.
//
// The returned router is what ConfigureRoutes hands to the adapters' AfterRoute.
func NewRouter(app Context, routes chi.Router, health *HealthHandler, logger Logger) (chi.Router, error) {
	logger = NewLogger(logger)

	router := chi.NewRouter()
	if err := applyInterceptions(router, app, logger); err != nil {
		return nil, err
	}

	if health == nil {
		health = NewHealthHandler(nil)
	}
	router.Get(HealthzPath, health.Healthz)
	router.Get(ReadyzPath, health.Readyz)

	if routes != nil {
		router.Mount("/", routes)
	}

	if app.Config != nil {
		if assets := app.Config.Server.Interceptions.Static; assets != nil && assets.Enable {
			if !isStaticPrefix(assets.Folder.URI) {
				return nil, NewConfigValidationError("static assets uri must be a path below /, got "+strconv.Quote(assets.Folder.URI), nil)
			}
			handler, err := newStaticHandler(assets, logger)
			if err != nil {
				return nil, err
			}
			uri := strings.TrimSuffix(assets.Folder.URI, "/")
			router.Handle(uri+"/*", http.StripPrefix(uri, handler))
			logger.Info("[Middleware] +static assets", "uri", assets.Folder.URI, "path", assets.Folder.Path)
		}
	}

	return router, nil
}

// staticHandler serves files below root and answers misses with the fallback
// file, for single page applications whose routes are virtual.
type staticHandler struct {
	root          string
	fallback      string
	precompressed bool
}

func newStaticHandler(cfg *StaticAssetsConfig, logger Logger) (*staticHandler, error) {
	if cfg.MustExist && (!pathExists(cfg.Folder.Path) || !pathExists(cfg.Fallback)) {
		return nil, NewStaticAssetsError(cfg.Folder.Path, cfg.Fallback)
	}
	if cfg.Precompressed {
		logger.Info("[Middleware] +precompressed static assets")
	}
	return &staticHandler{
		root:          cfg.Folder.Path,
		fallback:      cfg.Fallback,
		precompressed: cfg.Precompressed,
	}, nil
}

func (s *staticHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", "GET, HEAD")
		Error(w, NewBadRequestError("method not allowed for static assets"))
		return
	}

	name := filepath.Join(s.root, filepath.FromSlash(path.Clean("/"+r.URL.Path)))
	if info, err := os.Stat(name); err != nil || info.IsDir() {
		if s.fallback == "" || !pathExists(s.fallback) {
			Error(w, NewNotFoundError("not found"))
			return
		}
		name = s.fallback
	}

	if s.precompressed && strings.Contains(r.Header.Get("Accept-Encoding"), "gzip") && pathExists(name+".gz") {
		if ctype := mime.TypeByExtension(filepath.Ext(name)); ctype != "" {
			w.Header().Set("Content-Type", ctype)
		}
		w.Header().Set("Content-Encoding", "gzip")
		w.Header().Add("Vary", "Accept-Encoding")
		http.ServeFile(w, r, name+".gz")
		return
	}

	http.ServeFile(w, r, name)
}

func pathExists(p string) bool {
	_, err := os.Stat(p)
	return err == nil
}
