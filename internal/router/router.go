package router

import (
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/mberrie/todoapp-service/internal/admin"
	"github.com/mberrie/todoapp-service/internal/auth"
	"github.com/mberrie/todoapp-service/internal/todo"
	"github.com/mberrie/todoapp-service/internal/user"
	"github.com/mberrie/todoapp-service/pkg/utilities"
)

// loggingResponseWriter wraps http.ResponseWriter to capture status and size.
type loggingResponseWriter struct {
	http.ResponseWriter
	status int
	size   int
}

func (lrw *loggingResponseWriter) WriteHeader(code int) {
	lrw.status = code
	lrw.ResponseWriter.WriteHeader(code)
}

func (lrw *loggingResponseWriter) Write(b []byte) (int, error) {
	if lrw.status == 0 {
		lrw.status = http.StatusOK
	}
	n, err := lrw.ResponseWriter.Write(b)
	lrw.size += n
	return n, err
}

// LoggingMiddleware logs each request at debug level with its request id.
func LoggingMiddleware(logger *zap.SugaredLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			lrw := &loggingResponseWriter{ResponseWriter: w}
			next.ServeHTTP(lrw, r)
			status := lrw.status
			if status == 0 {
				status = http.StatusOK
			}
			logger.Debugw("http request",
				"method", r.Method,
				"path", r.URL.Path,
				"remote", r.RemoteAddr,
				"status", status,
				"duration_ms", float64(time.Since(start).Microseconds())/1000.0,
				"size", lrw.size,
				"request_id", lrw.Header().Get("X-Request-Id"),
			)
		})
	}
}

// RequestIDMiddleware tags every request with a KSUID, honoring an id the
// caller already supplied.
func RequestIDMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rid := r.Header.Get("X-Request-Id")
			if rid == "" {
				rid = utilities.NewRequestID()
			}
			w.Header().Set("X-Request-Id", rid)
			next.ServeHTTP(w, r)
		})
	}
}

// SecurityHeadersMiddleware sets common HTTP security headers.
func SecurityHeadersMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Content-Type-Options", "nosniff")
			w.Header().Set("X-Frame-Options", "DENY")
			w.Header().Set("Referrer-Policy", "no-referrer-when-downgrade")
			next.ServeHTTP(w, r)
		})
	}
}

// Deps carries the constructed services the routes are built on.
type Deps struct {
	Logger  *zap.SugaredLogger
	Users   *user.Service
	Todos   *todo.Service
	Tokens  *auth.TokenService
	AuthCfg auth.Config
}

// New mounts HTTP handlers on the standard library's http.ServeMux.
func New(d Deps) http.Handler {
	mux := http.NewServeMux()

	// health
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	requireUser := auth.RequireUser(d.Tokens, d.Logger)
	requireAdmin := auth.RequireAdmin(d.Tokens, d.Logger)

	// account routes
	userHandler := user.NewHandler(d.Users, d.Tokens, d.AuthCfg, d.Logger)
	mux.HandleFunc("POST /auth", userHandler.Register)
	mux.HandleFunc("POST /auth/token", userHandler.Login)
	mux.HandleFunc("POST /auth/logout", userHandler.Logout)
	mux.Handle("GET /users/me", requireUser(http.HandlerFunc(userHandler.Me)))
	mux.Handle("PUT /users/password", requireUser(http.HandlerFunc(userHandler.ChangePassword)))
	mux.Handle("PUT /users/phone-number/{phone}", requireUser(http.HandlerFunc(userHandler.ChangePhoneNumber)))

	// owner-scoped task routes
	todoHandler := todo.NewHandler(d.Todos, d.Logger)
	mux.Handle("GET /todos", requireUser(http.HandlerFunc(todoHandler.List)))
	mux.Handle("POST /todos", requireUser(http.HandlerFunc(todoHandler.Create)))
	mux.Handle("GET /todos/{id}", requireUser(http.HandlerFunc(todoHandler.Get)))
	mux.Handle("PUT /todos/{id}", requireUser(http.HandlerFunc(todoHandler.Update)))
	mux.Handle("DELETE /todos/{id}", requireUser(http.HandlerFunc(todoHandler.Delete)))

	// admin routes
	adminHandler := admin.NewHandler(d.Todos, d.Logger)
	mux.Handle("GET /admin/todo", requireAdmin(http.HandlerFunc(adminHandler.List)))
	mux.Handle("DELETE /admin/todo/{id}", requireAdmin(http.HandlerFunc(adminHandler.Delete)))

	return LoggingMiddleware(d.Logger)(RequestIDMiddleware()(SecurityHeadersMiddleware()(mux)))
}
