package router

import (
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-opofit/internal/casestudy"
	"github.com/ovaphlow/pitchfork/service-opofit/internal/profile"
	"github.com/ovaphlow/pitchfork/service-opofit/internal/user"
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

// LoggingMiddleware logs every request: debug for normal traffic, warn for
// server errors.
func LoggingMiddleware(logger *zap.SugaredLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			lrw := &loggingResponseWriter{ResponseWriter: w}
			next.ServeHTTP(lrw, r)
			dur := time.Since(start)
			status := lrw.status
			if status == 0 {
				status = http.StatusOK
			}
			log := logger.Debugw
			if status >= http.StatusInternalServerError {
				log = logger.Warnw
			}
			log("http request",
				"method", r.Method,
				"path", r.URL.Path,
				"remote", r.RemoteAddr,
				"status", status,
				"duration_ms", float64(dur.Microseconds())/1000.0,
				"size", lrw.size,
			)
		})
	}
}

// SecurityHeadersMiddleware sets common HTTP security headers. Responses carry
// personal data and session tokens, so nothing is cached.
func SecurityHeadersMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			h.Set("X-Content-Type-Options", "nosniff")
			h.Set("X-Frame-Options", "DENY")
			h.Set("Referrer-Policy", "no-referrer")
			h.Set("Permissions-Policy", "camera=(), microphone=(), geolocation=()")
			h.Set("Cache-Control", "no-store")
			if h.Get("Content-Security-Policy") == "" {
				h.Set("Content-Security-Policy", "default-src 'none'; frame-ancestors 'none';")
			}
			// HSTS only over TLS, 30 days
			if r.TLS != nil {
				h.Set("Strict-Transport-Security", "max-age=2592000; includeSubDomains")
			}
			next.ServeHTTP(w, r)
		})
	}
}

// Prefix is the path every route is mounted under.
const Prefix = "/opofit-api"

// RegisterRoutes mounts HTTP handlers using the standard library's http.ServeMux.
// Routes under /me and /admin require a live session of an approved user.
func RegisterRoutes(logger *zap.SugaredLogger, users *user.Handler, profiles *profile.Handler, cases *casestudy.Handler) http.Handler {
	mux := http.NewServeMux()

	// health
	mux.HandleFunc("GET "+Prefix+"/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	// identity gate
	mux.HandleFunc("POST "+Prefix+"/auth/register", users.Register)
	mux.HandleFunc("POST "+Prefix+"/auth/login", users.Login)
	mux.HandleFunc("POST "+Prefix+"/auth/logout", users.Logout)

	protected := func(pattern string, h http.HandlerFunc) {
		mux.Handle(pattern, users.RequireSession(h))
	}

	// own study record
	protected("GET "+Prefix+"/me", users.Me)
	protected("PATCH "+Prefix+"/me/data", profiles.UpdateData)
	protected("POST "+Prefix+"/me/topics/{id}/cycle", profiles.CycleTopic)
	protected("POST "+Prefix+"/me/tasks", profiles.AddTask)
	protected("POST "+Prefix+"/me/tasks/{id}/toggle", profiles.ToggleTask)
	protected("DELETE "+Prefix+"/me/tasks/{id}", profiles.DeleteTask)
	protected("GET "+Prefix+"/me/summary", profiles.Summary)

	// reference catalogue
	protected("GET "+Prefix+"/case-studies", cases.List)
	protected("GET "+Prefix+"/case-studies/{id}", cases.Get)

	// admin
	protected("GET "+Prefix+"/admin/users", users.ListUsers)
	protected("GET "+Prefix+"/admin/users/{id}", users.GetUser)
	protected("PUT "+Prefix+"/admin/users/{id}/status", users.SetStatus)

	// wrap with security headers middleware then logging middleware
	handler := LoggingMiddleware(logger)(SecurityHeadersMiddleware()(mux))
	return handler
}
