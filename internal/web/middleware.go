package web

import (
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

// methodOverrideKey names the query or form field that overrides POST.
const methodOverrideKey = "_method"

// methodOverride dispatches a POST carrying _method=PUT, PATCH or DELETE as
// that method. PATCH is dispatched as PUT. The query string is checked
// before the form body.
func methodOverride(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			m := r.URL.Query().Get(methodOverrideKey)
			if m == "" {
				m = r.PostFormValue(methodOverrideKey)
			}
			switch strings.ToUpper(m) {
			case http.MethodPut, http.MethodPatch:
				r.Method = http.MethodPut
			case http.MethodDelete:
				r.Method = http.MethodDelete
			}
		}
		next.ServeHTTP(w, r)
	})
}

// statusRecorder captures the status code and body size of a response.
type statusRecorder struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (s *statusRecorder) WriteHeader(code int) {
	if s.status == 0 {
		s.status = code
	}
	s.ResponseWriter.WriteHeader(code)
}

func (s *statusRecorder) Write(b []byte) (int, error) {
	if s.status == 0 {
		s.status = http.StatusOK
	}
	n, err := s.ResponseWriter.Write(b)
	s.bytes += n
	return n, err
}

func (s *statusRecorder) code() int {
	if s.status == 0 {
		return http.StatusOK
	}
	return s.status
}

// observe logs every request and records it in metrics. The route label is
// the matched mux pattern, read after the inner handler has run.
func observe(log *zap.Logger, metrics *Metrics, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w}
		next.ServeHTTP(rec, r)
		elapsed := time.Since(start)

		metrics.observeRequest(r.Method, r.Pattern, rec.code(), elapsed)
		log.Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.code()),
			zap.Duration("duration", elapsed),
			zap.Int("bytes", rec.bytes),
		)
	})
}
