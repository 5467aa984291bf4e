package server

import (
	"context"
	"log/slog"
	"net/http"
	"slices"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/bascanada/proposalviewer/pkg/proposal"
)

type contextKey string

const (
	requestIDKey    contextKey = "requestID"
	filterLogKey    contextKey = "filterLog"
	requestIDHeader            = "X-Request-ID"
)

// filterLog is what a filter handler evaluated, reported on the request line.
type filterLog struct {
	kind     proposal.RecordKind
	document string
	parsed   string
	matched  int
	total    int
}

func requestIDFrom(r *http.Request) string {
	id, _ := r.Context().Value(requestIDKey).(string)
	return id
}

// noteFilter attaches the outcome of a filter request to its log line.
func noteFilter(r *http.Request, kind proposal.RecordKind, meta FilterMetadata) {
	if fl, ok := r.Context().Value(filterLogKey).(*filterLog); ok {
		*fl = filterLog{
			kind:     kind,
			document: meta.Document,
			parsed:   meta.Parsed,
			matched:  meta.Matched,
			total:    meta.Total,
		}
	}
}

// routePattern is the chi route that served r, or its path when unrouted.
func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if pattern := rctx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return r.URL.Path
}

// requestIDMiddleware keeps a well-formed incoming X-Request-ID or assigns a
// new one, and echoes it on the response.
func (s *Server) requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIDHeader)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.New().String()
		}
		w.Header().Set(requestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestIDKey, id)))
	})
}

// statusRecorder captures the status code and lets SSE flushes through.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (rw *statusRecorder) WriteHeader(code int) {
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *statusRecorder) Flush() {
	if f, ok := rw.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// loggingMiddleware writes one line per request. Filter requests add their
// record kind, document, parsed filter and match counts; client errors log
// at warn and server errors at error.
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		fl := &filterLog{}
		r = r.WithContext(context.WithValue(r.Context(), filterLogKey, fl))

		next.ServeHTTP(rw, r)

		attrs := []any{
			"requestID", requestIDFrom(r),
			"method", r.Method,
			"route", routePattern(r),
			"status", rw.status,
			"duration", time.Since(start).String(),
		}
		if fl.kind != "" {
			attrs = append(attrs,
				"kind", fl.kind,
				"document", fl.document,
				"filter", fl.parsed,
				"matched", fl.matched,
				"total", fl.total,
			)
		}

		level := slog.LevelInfo
		switch {
		case rw.status >= http.StatusInternalServerError:
			level = slog.LevelError
		case rw.status >= http.StatusBadRequest:
			level = slog.LevelWarn
		}
		s.logger.Log(r.Context(), level, "request handled", attrs...)
	})
}

// recoveryMiddleware turns a handler panic into a 500 and tells SSE clients.
func (s *Server) recoveryMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				s.logger.Error("recovered from panic", "err", err, "requestID", requestIDFrom(r), "route", routePattern(r))
				s.eventBroker.Broadcast(Event{Type: EventServerError, Data: map[string]interface{}{
					"route":     routePattern(r),
					"requestID": requestIDFrom(r),
				}})
				w.Header().Set("Connection", "close")
				s.writeError(w, http.StatusInternalServerError, ErrCodeInternal, "The server encountered a problem")
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// corsMiddleware allows any origin unless WithAllowedOrigins narrowed it, in
// which case only listed origins are echoed back.
func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		if len(s.allowedOrigins) == 0 {
			h.Set("Access-Control-Allow-Origin", "*")
		} else if origin := r.Header.Get("Origin"); slices.Contains(s.allowedOrigins, origin) {
			h.Set("Access-Control-Allow-Origin", origin)
			h.Add("Vary", "Origin")
		}
		h.Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		h.Set("Access-Control-Allow-Headers", "Content-Type, Authorization, "+requestIDHeader)
		h.Set("Access-Control-Expose-Headers", requestIDHeader)

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
