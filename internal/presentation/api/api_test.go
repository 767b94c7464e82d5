package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/hilthontt/ragtp/internal/infrastructure/configs"
	"github.com/hilthontt/ragtp/internal/infrastructure/logging"
	"github.com/hilthontt/ragtp/internal/presentation/handler/health"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

const internalErrorBody = `{"success":false,"error":{"code":"INTERNAL_ERROR","message":"%s"}}`

func testConfig() configs.Config {
	return configs.Config{
		HTTP: configs.HTTPConfig{
			Host:            "127.0.0.1",
			Port:            0,
			BodyLimit:       1024,
			ReadTimeout:     time.Second,
			WriteTimeout:    time.Second,
			IdleTimeout:     time.Second,
			ShutdownTimeout: time.Second,
		},
	}
}

func newTestApp(t *testing.T) (*Application, *observer.ObservedLogs) {
	t.Helper()

	core, logs := observer.New(zapcore.DebugLevel)
	app := NewApplication(testConfig(), *health.NewHandler(time.Now()), logging.FromZap(zap.New(core)))

	return app, logs
}

// pipeline mounts the application with extra routes registered after the
// regular ones, so failures can be injected behind the real stages.
func pipeline(app *Application, extra func(r chi.Router)) http.Handler {
	r := app.router()
	if extra != nil {
		extra(r)
	}
	return app.instrument(r)
}

func serve(h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func jsonRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func TestHealth(t *testing.T) {
	app, _ := newTestApp(t)
	h := app.Mount()

	withAuth := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	withAuth.Header.Set("Authorization", "Bearer whatever")

	tests := []struct {
		name string
		req  *http.Request
	}{
		{name: "no body", req: httptest.NewRequest(http.MethodGet, "/api/health", nil)},
		{name: "json body", req: jsonRequest(http.MethodGet, "/api/health", `{"ignored":true}`)},
		{name: "non json body", req: httptest.NewRequest(http.MethodGet, "/api/health", strings.NewReader("{{{ not json"))},
		{name: "with query", req: httptest.NewRequest(http.MethodGet, "/api/health?verbose=1", nil)},
		{name: "with credentials", req: withAuth},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(h, tt.req)

			assert.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, `{"status":"ok"}`, rec.Body.String())
			assert.Contains(t, rec.Header().Get("Content-Type"), "application/json")
		})
	}
}

func TestStatus(t *testing.T) {
	app, _ := newTestApp(t)
	h := app.Mount()

	uptime := func() float64 {
		rec := serve(h, httptest.NewRequest(http.MethodGet, "/api/status", nil))
		require.Equal(t, http.StatusOK, rec.Code)

		var body struct {
			Status  string   `json:"status"`
			Version string   `json:"version"`
			Uptime  *float64 `json:"uptime"`
		}
		require.NoError(t, decode(rec.Body, &body))
		assert.Equal(t, "ok", body.Status)
		assert.Equal(t, "0.1.0", body.Version)
		require.NotNil(t, body.Uptime)
		assert.GreaterOrEqual(t, *body.Uptime, 0.0)

		return *body.Uptime
	}

	first := uptime()
	second := uptime()
	assert.GreaterOrEqual(t, second, first)
}

func TestMalformedJSON(t *testing.T) {
	app, logs := newTestApp(t)
	h := app.Mount()

	for _, target := range []string{"/api/health", "/api/status", "/api/unknown"} {
		t.Run(target, func(t *testing.T) {
			rec := serve(h, jsonRequest(http.MethodPost, target, `{"query": `))

			assert.Equal(t, http.StatusBadRequest, rec.Code)

			var body errorEnvelope
			require.NoError(t, decode(rec.Body, &body))
			assert.False(t, body.Success)
			assert.Equal(t, "INVALID_JSON", body.Error.Code)
			assert.NotEmpty(t, body.Error.Message)
		})
	}

	// a failed decode never reaches the access log
	assert.Zero(t, logs.FilterMessage("Incoming request").Len())
	assert.Equal(t, 3, logs.FilterMessage("rejected request body").Len())
}

func TestPayloadTooLarge(t *testing.T) {
	app, _ := newTestApp(t)
	h := app.Mount()

	big := `{"q":"` + strings.Repeat("a", 2048) + `"}`
	rec := serve(h, jsonRequest(http.MethodPost, "/api/health", big))

	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)

	var body errorEnvelope
	require.NoError(t, decode(rec.Body, &body))
	assert.Equal(t, "PAYLOAD_TOO_LARGE", body.Error.Code)
}

func TestDecodedBodyReachesHandler(t *testing.T) {
	app, _ := newTestApp(t)

	var got any
	var found bool
	h := pipeline(app, func(r chi.Router) {
		r.Post("/echo", app.handle(func(w http.ResponseWriter, r *http.Request) error {
			got, found = BodyFrom(r.Context())
			w.WriteHeader(http.StatusNoContent)
			return nil
		}))
	})

	rec := serve(h, jsonRequest(http.MethodPost, "/echo", `{"question":"why"}`))
	require.Equal(t, http.StatusNoContent, rec.Code)
	assert.True(t, found)
	assert.Equal(t, map[string]any{"question": "why"}, got)

	rec = serve(h, httptest.NewRequest(http.MethodPost, "/echo", nil))
	require.Equal(t, http.StatusNoContent, rec.Code)
	assert.False(t, found)
}

func TestHandlerError(t *testing.T) {
	tests := []struct {
		name    string
		handler HandlerFunc
		wantMsg string
	}{
		{
			name: "returned error",
			handler: func(http.ResponseWriter, *http.Request) error {
				return errors.New("vector store unreachable")
			},
			wantMsg: "vector store unreachable",
		},
		{
			name: "returned error without message",
			handler: func(http.ResponseWriter, *http.Request) error {
				return errors.New("")
			},
			wantMsg: "Internal server error",
		},
		{
			name: "panic with error",
			handler: func(http.ResponseWriter, *http.Request) error {
				panic(errors.New("nil embedding"))
			},
			wantMsg: "nil embedding",
		},
		{
			name: "panic with value",
			handler: func(http.ResponseWriter, *http.Request) error {
				panic("index out of range")
			},
			wantMsg: "index out of range",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app, logs := newTestApp(t)
			h := pipeline(app, func(r chi.Router) {
				r.Get("/fault", app.handle(tt.handler))
			})

			rec := serve(h, httptest.NewRequest(http.MethodGet, "/fault", nil))

			assert.Equal(t, http.StatusInternalServerError, rec.Code)
			assert.JSONEq(t, fmt.Sprintf(internalErrorBody, tt.wantMsg), rec.Body.String())

			errorsLogged := logs.FilterMessage("Unhandled error").All()
			require.Len(t, errorsLogged, 1)
			assert.Equal(t, zapcore.ErrorLevel, errorsLogged[0].Level)
			assert.Equal(t, "Internal", errorsLogged[0].ContextMap()["Category"])

			// the process keeps serving
			rec = serve(h, httptest.NewRequest(http.MethodGet, "/api/health", nil))
			assert.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, `{"status":"ok"}`, rec.Body.String())
		})
	}
}

func TestHandlerErrorAfterWrite(t *testing.T) {
	app, logs := newTestApp(t)
	h := pipeline(app, func(r chi.Router) {
		r.Get("/partial", app.handle(func(w http.ResponseWriter, _ *http.Request) error {
			w.WriteHeader(http.StatusAccepted)
			_, _ = io.WriteString(w, "partial")
			panic("too late")
		}))
	})

	rec := serve(h, httptest.NewRequest(http.MethodGet, "/partial", nil))

	// the response already started; only one is ever sent
	assert.Equal(t, http.StatusAccepted, rec.Code)
	assert.Equal(t, "partial", rec.Body.String())
	assert.Equal(t, 1, logs.FilterMessage("Unhandled error").Len())
}

func TestAbortHandlerIsNotSwallowed(t *testing.T) {
	app, _ := newTestApp(t)
	r := app.router()
	r.Get("/abort", func(http.ResponseWriter, *http.Request) {
		panic(http.ErrAbortHandler)
	})

	assert.PanicsWithValue(t, http.ErrAbortHandler, func() {
		serve(r, httptest.NewRequest(http.MethodGet, "/abort", nil))
	})
}

func TestUnknownRoutes(t *testing.T) {
	app, _ := newTestApp(t)
	h := app.Mount()

	tests := []struct {
		method, target string
		wantStatus     int
	}{
		{http.MethodGet, "/api/unknown", http.StatusNotFound},
		{http.MethodGet, "/", http.StatusNotFound},
		{http.MethodGet, "/api/health/extra", http.StatusNotFound},
		{http.MethodPost, "/api/health", http.StatusMethodNotAllowed},
		{http.MethodDelete, "/api/status", http.StatusMethodNotAllowed},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.target, func(t *testing.T) {
			rec := serve(h, httptest.NewRequest(tt.method, tt.target, nil))

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.NotEqual(t, `{"status":"ok"}`, strings.TrimSpace(rec.Body.String()))
		})
	}
}

func TestAccessLog(t *testing.T) {
	app, logs := newTestApp(t)
	h := app.Mount()

	rec := serve(h, httptest.NewRequest(http.MethodGet, "/api/status?probe=1", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	incoming := logs.FilterMessage("Incoming request").All()
	require.Len(t, incoming, 1)
	assert.Equal(t, zapcore.InfoLevel, incoming[0].Level)

	fields := incoming[0].ContextMap()
	assert.Equal(t, http.MethodGet, fields["Method"])
	assert.Equal(t, "/api/status?probe=1", fields["Url"])

	requestID := rec.Header().Get(RequestIDHeader)
	_, err := uuid.Parse(requestID)
	assert.NoError(t, err)
	assert.Equal(t, requestID, fields["RequestId"])

	completed := logs.FilterMessage("request completed").All()
	require.Len(t, completed, 1)
	assert.Equal(t, int64(http.StatusOK), completed[0].ContextMap()["StatusCode"])
}

func TestAccessLog_KeepsIncomingRequestID(t *testing.T) {
	app, _ := newTestApp(t)
	h := app.Mount()

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	req.Header.Set(RequestIDHeader, "req-123")

	rec := serve(h, req)
	assert.Equal(t, "req-123", rec.Header().Get(RequestIDHeader))
}

func TestAccessLog_RunsForUnknownRoutes(t *testing.T) {
	app, logs := newTestApp(t)
	h := app.Mount()

	serve(h, httptest.NewRequest(http.MethodGet, "/api/nope", nil))

	assert.Equal(t, 1, logs.FilterMessage("Incoming request").Len())
}

func TestHandlerErrorMarksSpan(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))

	previous := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() { otel.SetTracerProvider(previous) })

	app, _ := newTestApp(t)
	h := pipeline(app, func(r chi.Router) {
		r.Get("/fault", app.handle(func(http.ResponseWriter, *http.Request) error {
			return errors.New("reranker timed out")
		}))
	})

	rec := serve(h, httptest.NewRequest(http.MethodGet, "/fault", nil))
	require.Equal(t, http.StatusInternalServerError, rec.Code)

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "GET /fault", spans[0].Name())
	assert.Equal(t, codes.Error, spans[0].Status().Code)

	var recorded []string
	for _, event := range spans[0].Events() {
		if event.Name != "exception" {
			continue
		}
		for _, attr := range event.Attributes {
			if attr.Key == "exception.message" {
				recorded = append(recorded, attr.Value.AsString())
			}
		}
	}
	assert.Equal(t, []string{"reranker timed out"}, recorded)
}

func TestRun(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	app := NewApplication(testConfig(), *health.NewHandler(time.Now()), logging.FromZap(zap.New(core)))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- app.Run(ctx, app.Mount())
	}()

	var port int64
	require.Eventually(t, func() bool {
		started := logs.FilterMessage("Server started").All()
		if len(started) == 0 {
			return false
		}
		port = started[0].ContextMap()["Port"].(int64)
		return true
	}, 2*time.Second, 10*time.Millisecond)

	resp, err := http.Get(fmt.Sprintf("http://127.0.0.1:%d/api/health", port))
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, `{"status":"ok"}`, string(body))

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("server did not stop")
	}
}
