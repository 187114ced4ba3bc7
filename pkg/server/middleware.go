package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/cancerflow/pkg/observability"
)

// logRequests logs each request once it completes.
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		hooks := observability.HTTP()
		hooks.OnRequest(r.Context(), r.Method, r.URL.Path)

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		took := time.Since(start)
		hooks.OnResponse(r.Context(), r.Method, r.URL.Path, status, took)

		logFn := s.logger.Debug
		if status >= http.StatusInternalServerError {
			logFn = s.logger.Error
		}
		logFn("http",
			"method", r.Method,
			"path", r.URL.Path,
			"status", status,
			"bytes", ww.BytesWritten(),
			"took", took,
			"request_id", middleware.GetReqID(r.Context()))
	})
}
