// Package http exposes the ledger over a JSON API: entry capture, reports,
// category registry, lock control and workbook export.
package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/ellinstar/offering-app/internal/amqp"
	"github.com/ellinstar/offering-app/internal/cache"
	"github.com/ellinstar/offering-app/internal/lock"
	applog "github.com/ellinstar/offering-app/internal/log"
	"github.com/ellinstar/offering-app/internal/session"
)

// Publisher announces persisted batches to the mirror pipeline. May be nil
// when AMQP is not configured.
type Publisher interface {
	PublishBatchSaved(ctx context.Context, msg *amqp.BatchSavedMessage) error
}

type Server struct {
	http.Server
	session   *session.Session
	locker    *lock.Manager
	publisher Publisher
	logger    *applog.Logger

	// Derived views are cached per query and dropped wholesale on save.
	reportCache *cache.LRUCache[[]reportRow]
	exportCache *cache.LRUCache[[]byte]

	cacheManager *cache.Manager
	shutdownOnce sync.Once
}

// NewServer configures routes and caches, returning a ready-to-run server.
func NewServer(addr string, sess *session.Session, locker *lock.Manager, publisher Publisher, logger *applog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		session:      sess,
		locker:       locker,
		publisher:    publisher,
		logger:       logger,
		reportCache:  cache.NewLRUCache[[]reportRow](100, 5*time.Minute),
		exportCache:  cache.NewLRUCache[[]byte](8, 10*time.Minute),
		cacheManager: cache.NewManager(),
	}

	s.cacheManager.Register(s.reportCache)
	s.cacheManager.Register(s.exportCache)
	s.cacheManager.StartCleanup(10 * time.Minute)

	// A saved batch stales every derived view at once; drop them wholesale.
	sess.Subscribe(func(session.SaveResult) {
		s.reportCache.Purge()
		s.exportCache.Purge()
	})

	mux.HandleFunc("POST /api/entries", s.guarded(s.handleSaveEntries))
	mux.HandleFunc("GET /api/reports/{dimension}", s.guarded(s.handleReport))
	mux.HandleFunc("GET /api/years", s.guarded(s.handleYears))
	mux.HandleFunc("GET /api/names", s.guarded(s.handleNames))
	mux.HandleFunc("GET /api/types", s.guarded(s.handleListTypes))
	mux.HandleFunc("POST /api/types", s.guarded(s.handleAddType))
	mux.HandleFunc("GET /api/export", s.guarded(s.handleExport))

	// Lock control stays reachable while locked.
	mux.HandleFunc("GET /api/lock/status", s.withSecurityHeaders(s.handleLockStatus))
	mux.HandleFunc("POST /api/unlock", s.withSecurityHeaders(s.handleUnlock))
	mux.HandleFunc("POST /api/lock", s.withSecurityHeaders(s.handleLock))
	mux.HandleFunc("PUT /api/pin", s.withSecurityHeaders(s.handleSetPIN))
	mux.HandleFunc("DELETE /api/pin", s.withSecurityHeaders(s.handleResetPIN))

	mux.HandleFunc("GET /healthz", handleHealth)

	s.Server = http.Server{
		Addr:    addr,
		Handler: applog.Middleware(logger)(mux),
	}

	return s
}

// guarded rejects requests while the screen lock is engaged and counts
// activity against the idle timeout otherwise.
func (s *Server) guarded(next http.HandlerFunc) http.HandlerFunc {
	return s.withSecurityHeaders(func(w http.ResponseWriter, r *http.Request) {
		if s.locker.Locked() {
			respondError(w, http.StatusLocked, "ledger is locked")
			return
		}
		s.locker.Touch()
		next(w, r)
	})
}

func (s *Server) withSecurityHeaders(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		next(w, r)
	}
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// Shutdown stops the cache cleanup routine along with the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.cacheManager.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}
