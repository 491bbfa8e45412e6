// Package server serves a directory of Markdown documents as rendered pages.
package server

import (
	"bytes"
	"context"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/livetemplate/docpage"
	"github.com/livetemplate/docpage/internal/cache"
	"github.com/livetemplate/docpage/internal/config"
	"github.com/livetemplate/docpage/internal/logging"
)

// Route represents a discovered page route.
type Route struct {
	Pattern  string // URL pattern (e.g., "/guide")
	FilePath string // Relative file path in slash form (e.g., "guide.md")
}

// Server is the docpage preview server.
type Server struct {
	rootDir string
	config  *config.Config
	render  docpage.Options
	log     logging.Logger

	mu     sync.RWMutex
	routes []*Route

	pages   *cache.PageCache
	reload  *reloadHub
	watcher *Watcher
}

// New creates a new server for the given root directory.
func New(rootDir string, cfg *config.Config, render docpage.Options, log logging.Logger) *Server {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	log = logging.OrNoOp(log)
	return &Server{
		rootDir: rootDir,
		config:  cfg,
		render:  render,
		log:     log,
		routes:  make([]*Route, 0),
		pages:   cache.New(0),
		reload:  newReloadHub(log),
	}
}

// Discover scans the directory for .md files and creates routes.
func (s *Server) Discover() error {
	routes := make([]*Route, 0)

	err := filepath.WalkDir(s.rootDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if d.IsDir() {
			name := d.Name()
			if path != s.rootDir && (strings.HasPrefix(name, "_") || strings.HasPrefix(name, ".")) {
				return filepath.SkipDir
			}
			return nil
		}

		if filepath.Ext(path) != ".md" {
			return nil
		}

		relPath, err := filepath.Rel(s.rootDir, path)
		if err != nil {
			return err
		}
		relPath = filepath.ToSlash(relPath)

		routes = append(routes, &Route{
			Pattern:  mdToPattern(relPath),
			FilePath: relPath,
		})
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to walk directory: %w", err)
	}

	sortRoutes(routes)

	s.mu.Lock()
	s.routes = routes
	s.mu.Unlock()

	s.log.Debug("routes discovered", "count", len(routes))
	return nil
}

// Routes returns the discovered routes.
func (s *Server) Routes() []*Route {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.routes
}

func (s *Server) lookup(pattern string) *Route {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, route := range s.routes {
		if route.Pattern == pattern {
			return route
		}
	}
	return nil
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path == reloadPath {
		s.reload.ServeHTTP(w, r)
		return
	}

	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", "GET, HEAD")
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if route := s.lookup(r.URL.Path); route != nil {
		s.servePage(w, r, route)
		return
	}

	if r.URL.Path == "/" {
		s.serveIndex(w, r)
		return
	}

	http.NotFound(w, r)
}

// servePage serves a rendered page, rendering on cache miss or source change.
func (s *Server) servePage(w http.ResponseWriter, r *http.Request, route *Route) {
	abs := filepath.Join(s.rootDir, filepath.FromSlash(route.FilePath))
	info, err := os.Stat(abs)
	if err != nil {
		s.pages.Invalidate(route.FilePath)
		http.NotFound(w, r)
		return
	}

	entry, ok := s.pages.Get(route.FilePath)
	if !ok || !entry.Fresh(info) {
		page, err := docpage.RenderFile(abs, s.render)
		if err != nil {
			s.log.Error("render failed", "file", route.FilePath, "error", err)
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		body, err := docpage.Assemble(page)
		if err != nil {
			s.log.Error("assemble failed", "file", route.FilePath, "error", err)
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		entry = cache.NewEntry(body, info)
		s.pages.Put(route.FilePath, entry)
		s.log.Debug("page rendered", "file", route.FilePath, "bytes", len(body))
	}

	s.writePage(w, r, entry)
}

// serveIndex lists every route when the root has no index.md.
func (s *Server) serveIndex(w http.ResponseWriter, r *http.Request) {
	var md strings.Builder
	md.WriteString("# " + filepath.Base(s.rootDir) + "\n\n")
	for _, route := range s.Routes() {
		fmt.Fprintf(&md, "- [%s](%s)\n", route.FilePath, route.Pattern)
	}

	opts := s.render
	opts.Engine = docpage.EngineGFM
	opts.Title = "Index of " + filepath.Base(s.rootDir)
	body, err := docpage.HTML(md.String(), opts)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	s.writePage(w, r, cache.NewEntry(body, nil))
}

func (s *Server) writePage(w http.ResponseWriter, r *http.Request, entry *cache.Entry) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("ETag", entry.ETag)

	if match := r.Header.Get("If-None-Match"); match != "" && match == entry.ETag {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	body := entry.Body
	if s.config.Server.Watch {
		body = injectReloadScript(body)
	}
	if r.Method == http.MethodHead {
		return
	}
	w.Write(body)
}

// Invalidate drops the cached page for a changed file and, when files were
// added or removed, rediscovers routes.
func (s *Server) Invalidate(relPath string, structural bool) {
	relPath = filepath.ToSlash(relPath)
	s.pages.Invalidate(relPath)
	if structural {
		if err := s.Discover(); err != nil {
			s.log.Error("rediscover failed", "error", err)
		}
	}
	s.reload.Broadcast(mdToPattern(relPath))
}

// Handler returns the server wrapped in security headers, rate limiting and
// gzip compression. done is closed when the rate limiter's cleanup exits
// after ctx is cancelled.
func (s *Server) Handler(ctx context.Context) (handler http.Handler, done <-chan struct{}) {
	limiter := newRateLimiter(s.config.Server.GetRateLimit(), s.config.Server.GetBurst(), 0, s.log)
	done = limiter.start(ctx)

	handler = WithCompression(s)
	handler = limiter.Middleware(handler)
	handler = SecurityHeadersMiddleware()(handler)
	return handler, done
}

// EnableWatch starts the file watcher.
func (s *Server) EnableWatch() error {
	watcher, err := NewWatcher(s.rootDir, s.Invalidate, s.log)
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}

	s.watcher = watcher
	s.watcher.Start()

	s.log.Info("file watcher started", "dir", s.rootDir)
	return nil
}

// Close stops the watcher and cache and disconnects reload clients.
func (s *Server) Close() error {
	s.pages.Stop()
	s.reload.Close()
	if s.watcher != nil {
		return s.watcher.Stop()
	}
	return nil
}

// mdToPattern converts a markdown file path to a URL pattern.
// Examples:
//   - "index.md" → "/"
//   - "guide.md" → "/guide"
//   - "ops/runbook.md" → "/ops/runbook"
//   - "ops/index.md" → "/ops/"
func mdToPattern(relPath string) string {
	path := strings.TrimSuffix(filepath.ToSlash(relPath), ".md")

	if path == "index" {
		return "/"
	}
	if strings.HasSuffix(path, "/index") {
		return "/" + strings.TrimSuffix(path, "index")
	}

	return "/" + path
}

// sortRoutes sorts routes with / first, then directory indexes, then the rest
// alphabetically.
func sortRoutes(routes []*Route) {
	rank := func(r *Route) int {
		switch {
		case r.Pattern == "/":
			return 0
		case strings.HasSuffix(r.Pattern, "/"):
			return 1
		default:
			return 2
		}
	}
	sort.SliceStable(routes, func(i, j int) bool {
		ri, rj := rank(routes[i]), rank(routes[j])
		if ri != rj {
			return ri < rj
		}
		return routes[i].Pattern < routes[j].Pattern
	})
}

// injectReloadScript adds the live-reload client before </body>.
func injectReloadScript(page []byte) []byte {
	idx := bytes.LastIndex(page, []byte("</body>"))
	if idx < 0 {
		return page
	}
	out := make([]byte, 0, len(page)+len(reloadScript))
	out = append(out, page[:idx]...)
	out = append(out, reloadScript...)
	out = append(out, page[idx:]...)
	return out
}
