package logger

import (
	"net/http"
	"strconv"
	"time"
)

// statusWriter records the final status code for request logging. Flush is
// forwarded so streaming responses keep working behind the wrapper.
type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusWriter) Flush() {
	if flusher, ok := w.ResponseWriter.(http.Flusher); ok {
		flusher.Flush()
	}
}

// RequestLogger returns a middleware logging one line per request with
// method, path, status and duration.
func (l *Logger) RequestLogger() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}

			next.ServeHTTP(sw, r)

			l.LogAPI(r.Method, r.URL.Path, strconv.Itoa(sw.status), time.Since(start).Round(time.Millisecond).String())
		})
	}
}
