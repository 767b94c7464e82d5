package api

import (
	"bufio"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/hilthontt/ragtp/internal/infrastructure/json"
	"github.com/hilthontt/ragtp/internal/infrastructure/logging"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

type responseWriter struct {
	http.ResponseWriter
	statusCode  int
	bytes       int
	wroteHeader bool
}

func newResponseWriter(w http.ResponseWriter) *responseWriter {
	return &responseWriter{
		ResponseWriter: w,
		statusCode:     http.StatusOK,
	}
}

func (rw *responseWriter) WriteHeader(statusCode int) {
	if !rw.wroteHeader {
		rw.statusCode = statusCode
		rw.wroteHeader = true
	}
	rw.ResponseWriter.WriteHeader(statusCode)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	rw.wroteHeader = true
	n, err := rw.ResponseWriter.Write(b)
	rw.bytes += n
	return n, err
}

func (rw *responseWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hijacker, ok := rw.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, fmt.Errorf("responseWriter does not implement http.Hijacker")
	}
	return hijacker.Hijack()
}

func (rw *responseWriter) Flush() {
	if flusher, ok := rw.ResponseWriter.(http.Flusher); ok {
		flusher.Flush()
	}
}

func (rw *responseWriter) Unwrap() http.ResponseWriter {
	return rw.ResponseWriter
}

// headerWritten reports whether a response already started on w.
func headerWritten(w http.ResponseWriter) bool {
	for {
		switch rw := w.(type) {
		case *responseWriter:
			if rw.wroteHeader {
				return true
			}
			w = rw.ResponseWriter
		case interface{ Unwrap() http.ResponseWriter }:
			w = rw.Unwrap()
		default:
			return false
		}
	}
}

// recoverer is the error stage. Panics below it end up in internalError,
// as do errors returned from handlers through handle.
func (app *Application) recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		wrapped := newResponseWriter(w)

		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				// the server treats this as a deliberate connection abort
				panic(rec)
			}

			err, ok := rec.(error)
			if !ok {
				err = fmt.Errorf("%v", rec)
			}
			app.internalError(wrapped, r, err)
		}()

		next.ServeHTTP(wrapped, r)
	})
}

func (app *Application) internalError(w http.ResponseWriter, r *http.Request, err error) {
	span := trace.SpanFromContext(r.Context())
	span.RecordError(err)
	span.SetStatus(codes.Error, json.InternalMessage(err))

	app.logger.Error(logging.Internal, logging.Recover, "Unhandled error", map[logging.ExtraKey]any{
		logging.ErrorMessage: err.Error(),
		logging.Method:       r.Method,
		logging.Url:          r.URL.RequestURI(),
		logging.RequestId:    w.Header().Get(RequestIDHeader),
	})

	if headerWritten(w) {
		return
	}

	json.WriteInternalError(w, err)
}

// decodeBody parses JSON request bodies and stores the result on the
// request context. Non-JSON and empty bodies pass through untouched.
func (app *Application) decodeBody(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Body == nil || r.Body == http.NoBody || r.ContentLength == 0 ||
			!json.IsJSONContentType(r.Header.Get("Content-Type")) {
			next.ServeHTTP(w, r)
			return
		}

		body, err := json.ReadBody(r, app.config.HTTP.BodyLimit)
		if err != nil {
			app.logger.Warn(logging.Validation, logging.DecodeBody, "rejected request body", map[logging.ExtraKey]any{
				logging.ErrorMessage: err.Error(),
				logging.Method:       r.Method,
				logging.Url:          r.URL.RequestURI(),
			})

			switch {
			case errors.Is(err, json.ErrBodyTooLarge):
				json.WritePayloadTooLargeError(w, err.Error())
			case errors.Is(err, json.ErrMalformedBody):
				json.WriteBadRequestError(w, err.Error())
			default:
				app.internalError(w, r, err)
			}
			return
		}

		next.ServeHTTP(w, r.WithContext(withBody(r.Context(), body)))
	})
}

// requestLogger is the access-log stage. It records every request before
// dispatch and never rejects one.
func (app *Application) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		requestID := r.Header.Get(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, requestID)

		app.logger.Info(logging.RequestResponse, logging.Api, "Incoming request", map[logging.ExtraKey]any{
			logging.Method:    r.Method,
			logging.Url:       r.URL.RequestURI(),
			logging.RequestId: requestID,
		})

		wrapped := newResponseWriter(w)
		next.ServeHTTP(wrapped, r.WithContext(withRequestID(r.Context(), requestID)))

		app.logger.Debug(logging.RequestResponse, logging.Api, "request completed", map[logging.ExtraKey]any{
			logging.Method:     r.Method,
			logging.Path:       r.URL.Path,
			logging.StatusCode: wrapped.statusCode,
			logging.BodySize:   wrapped.bytes,
			logging.Latency:    time.Since(start).Milliseconds(),
			logging.ClientIp:   r.RemoteAddr,
			logging.RequestId:  requestID,
		})
	})
}
