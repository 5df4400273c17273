// Package server renders the dashboard as a local web page and exposes the
// same store mutations as a small JSON API.
package server

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/nikbrunner/homescreen/internal/favicon"
	"github.com/nikbrunner/homescreen/internal/logging"
	"github.com/nikbrunner/homescreen/internal/model"
	"github.com/nikbrunner/homescreen/internal/storage"
)

var log = logging.GetLogger("server")

// DefaultAddr is used when no listen address is configured.
const DefaultAddr = "127.0.0.1:8765"

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

// StateStore loads and saves the whole dashboard state.
type StateStore interface {
	Load() (*model.Store, error)
	Save(store *model.Store) error
}

// IconResolver resolves a page's favicon.
type IconResolver interface {
	Resolve(ctx context.Context, pageURL string) (favicon.Icon, error)
}

// NewServerParams configures a Server.
type NewServerParams struct {
	Addr     string
	Storage  StateStore
	Favicons IconResolver
	// LogRequests enables the per-request access log.
	LogRequests bool
	Now         func() time.Time
}

// Server serves the web dashboard.
type Server struct {
	http.Handler

	addr     string
	storage  StateStore
	favicons IconResolver
	page     *template.Template
	now      func() time.Time

	// mu serialises load-mutate-save cycles.
	mu sync.Mutex
}

// NewServer builds the router.
func NewServer(params NewServerParams) (*Server, error) {
	page, err := template.New("index.html").Funcs(templateFuncs).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}

	s := &Server{
		addr:     params.Addr,
		storage:  params.Storage,
		favicons: params.Favicons,
		page:     page,
		now:      params.Now,
	}
	if s.addr == "" {
		s.addr = DefaultAddr
	}
	if s.now == nil {
		s.now = time.Now
	}

	router := chi.NewRouter()
	if params.LogRequests {
		router.Use(middleware.RequestLogger(&middleware.DefaultLogFormatter{
			Logger:  log.StandardLog(),
			NoColor: true,
		}))
	}
	router.Use(middleware.Recoverer)

	apiRoute := chi.NewRouter()
	apiRoute.Get("/folders", s.apiGetFolders)
	apiRoute.Put("/folders", s.apiSelectFolder)
	apiRoute.Post("/folders", s.apiAddFolder)
	apiRoute.Delete("/folders/{name}", s.apiDeleteFolder)
	apiRoute.Post("/folders/{name}/rename", s.apiRenameFolder)
	apiRoute.Post("/folders/{name}/pin", s.apiTogglePin)
	apiRoute.Get("/bookmarks", s.apiGetBookmarks)
	apiRoute.Post("/bookmarks", s.apiAddBookmark)
	apiRoute.Put("/bookmarks", s.apiEditBookmark)
	apiRoute.Delete("/bookmarks", s.apiDeleteBookmark)
	apiRoute.Post("/bookmarks/toggle", s.apiToggleFlag)
	apiRoute.Post("/bookmarks/move", s.apiMoveBookmarks)
	apiRoute.Post("/reorder", s.apiReorder)
	apiRoute.Get("/todos", s.apiGetToDos)
	apiRoute.Post("/todos", s.apiToDoAction)
	apiRoute.Get("/settings", s.apiGetSettings)
	apiRoute.Put("/settings", s.apiSetSettings)
	apiRoute.Get("/export/{format}", s.apiExport)
	apiRoute.Post("/import", s.apiImport)
	router.Mount("/api", apiRoute)

	staticContent, err := fs.Sub(staticFS, "static")
	if err != nil {
		return nil, err
	}
	static := http.FileServer(http.FS(staticContent))
	router.Handle("/static/*", http.StripPrefix("/static", static))

	router.Get("/favicon", s.faviconView)
	router.Get("/", s.indexView)

	s.Handler = router
	return s, nil
}

// Addr is the configured listen address.
func (s *Server) Addr() string {
	return s.addr
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve is Run on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	server := &http.Server{
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 90 * time.Second,
		IdleTimeout:  120 * time.Second,
		Handler:      s.Handler,
	}

	errc := make(chan error, 1)
	go func() {
		errc <- server.Serve(ln)
	}()
	log.Info("Dashboard listening", "addr", "http://"+ln.Addr().String())

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// update runs fn on freshly loaded state and saves it when fn succeeds.
func (s *Server) update(fn func(store *model.Store) error) (*model.Store, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	store, err := s.storage.Load()
	if err != nil {
		return nil, fmt.Errorf("load state: %w", err)
	}
	if err := fn(store); err != nil {
		return nil, err
	}
	if err := s.storage.Save(store); err != nil {
		return nil, fmt.Errorf("save state: %w", err)
	}
	return store, nil
}

// load reads the current state without changing it.
func (s *Server) load() (*model.Store, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	store, err := s.storage.Load()
	if err != nil {
		return nil, fmt.Errorf("load state: %w", err)
	}
	return store, nil
}

var _ StateStore = (*storage.Accessor)(nil)
