package tracing

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestMiddlewareNamesSpanAfterRoute(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	previous := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() { otel.SetTracerProvider(previous) })

	router := chi.NewRouter()
	router.Use(Middleware)
	router.Get("/registrations/{userName}", func(w http.ResponseWriter, r *http.Request) {
		Annotate(r.Context(), chi.URLParam(r, "userName"), "")
		w.WriteHeader(http.StatusNotFound)
	})

	response := httptest.NewRecorder()
	router.ServeHTTP(response, httptest.NewRequest(http.MethodGet, "/registrations/alice", nil))
	require.Equal(t, http.StatusNotFound, response.Code)

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "GET /registrations/{userName}", spans[0].Name())

	attributes := map[string]interface{}{}
	for _, kv := range spans[0].Attributes() {
		attributes[string(kv.Key)] = kv.Value.AsInterface()
	}
	assert.Equal(t, "alice", attributes["registrar.user"])
	assert.EqualValues(t, http.StatusNotFound, attributes["http.status_code"])
}

func TestInitWithoutEndpoint(t *testing.T) {
	previous := otel.GetTracerProvider()
	t.Cleanup(func() { otel.SetTracerProvider(previous) })

	shutdown, err := Init(context.Background(), "registrar", "instance-1", "")
	require.NoError(t, err)
	assert.NoError(t, shutdown(context.Background()))
}
