package httpapi

import (
	"net/http"

	"github.com/gorilla/mux"
)

// Handler builds the route table. Dispatch is by exact path + method;
// any unmatched combination, wrong method included, is a 404.
func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()

	r.HandleFunc("/api/health", s.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/api/signup", s.handleSignup).Methods(http.MethodPost)
	r.HandleFunc("/api/login", s.handleLogin).Methods(http.MethodPost)
	r.HandleFunc("/api/logout", s.handleLogout).Methods(http.MethodPost)
	r.Handle("/api/data", s.requireSession(http.HandlerFunc(s.handleGetData))).Methods(http.MethodGet)
	r.Handle("/api/data", s.requireSession(http.HandlerFunc(s.handlePostData))).Methods(http.MethodPost)
	r.Handle("/api/account", s.requireSession(http.HandlerFunc(s.handleDeleteAccount))).Methods(http.MethodDelete)

	r.NotFoundHandler = http.HandlerFunc(s.handleNotFound)
	r.MethodNotAllowedHandler = http.HandlerFunc(s.handleNotFound)

	// CORS is outermost so every response, 404s and recovered panics
	// included, carries the headers the browser needs.
	return s.corsMiddleware(s.recoveryMiddleware(r))
}
