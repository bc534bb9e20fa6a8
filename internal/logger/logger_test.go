package logger

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func observeLog(t *testing.T) *observer.ObservedLogs {
	t.Helper()
	core, logs := observer.New(zap.InfoLevel)
	previous := Log
	Log = zap.New(core).Sugar()
	t.Cleanup(func() { Log = previous })
	return logs
}

func TestInitRejectsUnknownLevel(t *testing.T) {
	previous := Log
	t.Cleanup(func() { Log = previous })

	assert.Error(t, Init("loud"))
	assert.NoError(t, Init("debug", "instance", "test"))
}

func TestWithLoggingHTTPMiddleware(t *testing.T) {
	type tExpected struct {
		level  zapcore.Level
		status int
		size   int
	}
	testCases := []struct {
		name     string
		handler  http.HandlerFunc
		expected tExpected
	}{
		{
			name: "listing",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusAccepted)
				_, _ = w.Write([]byte("hello"))
			},
			expected: tExpected{level: zapcore.InfoLevel, status: http.StatusAccepted, size: 5},
		},
		{
			name:     "implicit ok",
			handler:  func(w http.ResponseWriter, r *http.Request) {},
			expected: tExpected{level: zapcore.InfoLevel, status: http.StatusOK},
		},
		{
			name: "server error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
			},
			expected: tExpected{level: zapcore.ErrorLevel, status: http.StatusInternalServerError},
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			logs := observeLog(t)

			mux := chi.NewRouter()
			mux.Use(WithLoggingHTTPMiddleware)
			mux.Get(`/registrations/{userName}`, testCase.handler)

			request := httptest.NewRequest(http.MethodGet, "/registrations/alice", nil)
			mux.ServeHTTP(httptest.NewRecorder(), request)

			require.Equal(t, 1, logs.Len())
			entry := logs.All()[0]
			fields := entry.ContextMap()
			assert.Equal(t, testCase.expected.level, entry.Level)
			assert.Equal(t, "/registrations/alice", fields["uri"])
			assert.Equal(t, "/registrations/{userName}", fields["route"])
			assert.Equal(t, http.MethodGet, fields["method"])
			assert.EqualValues(t, testCase.expected.status, fields["status"])
			assert.EqualValues(t, testCase.expected.size, fields["size"])
		})
	}
}

func TestWithLoggingHTTPMiddlewareOutsideChi(t *testing.T) {
	logs := observeLog(t)

	handler := WithLoggingHTTPMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/ping", nil))

	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "", logs.All()[0].ContextMap()["route"])
}
