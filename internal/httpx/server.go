// Package httpx serves a session over HTTP: a JSON API for every game
// operation and a websocket stream of the game state.
package httpx

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/lgbarn/fairychess-go/internal/logging"
	"github.com/lgbarn/fairychess-go/internal/session"
)

// DefaultComputerTimeout bounds one computer move.
const DefaultComputerTimeout = 30 * time.Second

// Server is the HTTP front end of one session. Requests are serialised on
// the session.
type Server struct {
	router   *mux.Router
	handler  http.Handler
	upgrader websocket.Upgrader
	hub      *hub

	mu   sync.Mutex
	sess *session.Session

	snapshotFile    string
	allowedOrigins  []string
	computerTimeout time.Duration
	autoReply       bool
}

// Option configures a Server.
type Option func(*Server)

// WithSnapshotFile sets the file save and load use. Without it both are
// refused.
func WithSnapshotFile(path string) Option {
	return func(s *Server) {
		s.snapshotFile = path
	}
}

// WithAllowedOrigins sets the origins allowed by CORS and the websocket
// origin check.
func WithAllowedOrigins(origins []string) Option {
	return func(s *Server) {
		s.allowedOrigins = origins
	}
}

// WithComputerTimeout bounds the time one computer move may take.
func WithComputerTimeout(d time.Duration) Option {
	return func(s *Server) {
		if d > 0 {
			s.computerTimeout = d
		}
	}
}

// WithAutoReply sets whether the computer answers a human move within the
// same request. It is on by default.
func WithAutoReply(on bool) Option {
	return func(s *Server) {
		s.autoReply = on
	}
}

// New creates a server for sess.
func New(sess *session.Session, opts ...Option) *Server {
	s := &Server{
		router:          mux.NewRouter(),
		hub:             newHub(),
		sess:            sess,
		computerTimeout: DefaultComputerTimeout,
		autoReply:       true,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     s.checkOrigin,
	}
	s.routes()

	var h http.Handler = s.router
	if len(s.allowedOrigins) > 0 {
		h = handlers.CORS(
			handlers.AllowedOrigins(s.allowedOrigins),
			handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodPut}),
			handlers.AllowedHeaders([]string{"Content-Type"}),
		)(h)
	}
	h = handlers.RecoveryHandler(
		handlers.RecoveryLogger(recoveryLogger{}),
		handlers.PrintRecoveryStack(false),
	)(h)
	s.handler = handlers.LoggingHandler(logging.Writer(zerolog.InfoLevel), h)
	return s
}

func (s *Server) routes() {
	r := s.router
	r.NotFoundHandler = http.HandlerFunc(notFoundHandler)
	r.MethodNotAllowedHandler = http.HandlerFunc(methodNotAllowedHandler)

	api := r.PathPrefix("/api").Subrouter()
	api.NotFoundHandler = http.HandlerFunc(notFoundHandler)
	api.MethodNotAllowedHandler = http.HandlerFunc(methodNotAllowedHandler)
	api.HandleFunc("/variants", s.variantsHandler).Methods(http.MethodGet)
	api.HandleFunc("/state", s.stateHandler).Methods(http.MethodGet)
	api.HandleFunc("/variant", s.selectVariantHandler).Methods(http.MethodPost)
	api.HandleFunc("/back", s.backHandler).Methods(http.MethodPost)
	api.HandleFunc("/settings", s.settingsHandler).Methods(http.MethodPut)
	api.HandleFunc("/start", s.startHandler).Methods(http.MethodPost)
	api.HandleFunc("/reset", s.resetHandler).Methods(http.MethodPost)

	api.HandleFunc("/moves/{square:[a-n][0-9]{1,2}}", s.legalMovesHandler).Methods(http.MethodGet)
	api.HandleFunc("/move", s.moveHandler).Methods(http.MethodPost)
	api.HandleFunc("/castle", s.castleHandler).Methods(http.MethodPost)
	api.HandleFunc("/confirm", s.confirmHandler).Methods(http.MethodPost)
	api.HandleFunc("/promote", s.promoteHandler).Methods(http.MethodPost)
	api.HandleFunc("/fire", s.fireHandler).Methods(http.MethodPost)
	api.HandleFunc("/hold", s.holdHandler).Methods(http.MethodPost)
	api.HandleFunc("/undo", s.undoHandler).Methods(http.MethodPost)
	api.HandleFunc("/redo", s.redoHandler).Methods(http.MethodPost)
	api.HandleFunc("/computer", s.computerHandler).Methods(http.MethodPost)
	api.HandleFunc("/hint", s.hintHandler).Methods(http.MethodGet)
	api.HandleFunc("/save", s.saveHandler).Methods(http.MethodPost)
	api.HandleFunc("/load", s.loadHandler).Methods(http.MethodPost)

	r.HandleFunc("/ws", s.wsHandler)
}

// ServeHTTP implements http.Handler with request logging, panic recovery
// and CORS.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

// ListenAndServe serves on addr until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errc := make(chan error, 1)
	go func() {
		log.Info().Str("addr", addr).Msg("listening")
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	s.hub.closeAll()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return nil
}

func (s *Server) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" || origin == "http://"+r.Host || origin == "https://"+r.Host {
		return true
	}
	for _, o := range s.allowedOrigins {
		if o == "*" || o == origin {
			return true
		}
	}
	return false
}

// recoveryLogger sends recovered panics to the global logger.
type recoveryLogger struct{}

func (recoveryLogger) Println(v ...interface{}) {
	log.Error().Interface("panic", v).Msg("recovered from panic")
}

func notFoundHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusNotFound, errorResponse{Error: "not found"})
}

func methodNotAllowedHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusMethodNotAllowed, errorResponse{Error: r.Method + " not allowed"})
}
