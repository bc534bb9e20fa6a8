package gzippedhttp

import (
	"bytes"
	"compress/gzip"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func gzipString(t *testing.T, input string) []byte {
	t.Helper()
	var buf bytes.Buffer
	gzipWriter := gzip.NewWriter(&buf)
	_, err := gzipWriter.Write([]byte(input))
	require.NoError(t, err)
	require.NoError(t, gzipWriter.Close())
	return buf.Bytes()
}

func echoHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		if err != nil {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(body)
	})
}

func TestDecompress(t *testing.T) {
	payload := `{"nodeId":"node1","url":"http://10.0.0.1:8080"}`
	request := httptest.NewRequest(http.MethodPost, "/", bytes.NewReader(gzipString(t, payload)))
	request.Header.Set("Content-Encoding", "gzip")
	recorder := httptest.NewRecorder()

	Decompress(echoHandler()).ServeHTTP(recorder, request)

	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, payload, recorder.Body.String())
}

func TestDecompressRejectsBrokenBody(t *testing.T) {
	request := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("plain text"))
	request.Header.Set("Content-Encoding", "gzip")
	recorder := httptest.NewRecorder()

	Decompress(echoHandler()).ServeHTTP(recorder, request)

	assert.Equal(t, http.StatusBadRequest, recorder.Code)
}

func TestCompress(t *testing.T) {
	payload := `[{"nodeId":"node1","url":"http://10.0.0.1:8080"}]`

	t.Run("client accepts gzip", func(t *testing.T) {
		request := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(payload))
		request.Header.Set("Accept-Encoding", "gzip")
		recorder := httptest.NewRecorder()

		Compress(echoHandler()).ServeHTTP(recorder, request)

		assert.Equal(t, "gzip", recorder.Header().Get("Content-Encoding"))
		reader, err := gzip.NewReader(recorder.Body)
		require.NoError(t, err)
		body, err := io.ReadAll(reader)
		require.NoError(t, err)
		assert.Equal(t, payload, string(body))
	})

	t.Run("client does not accept gzip", func(t *testing.T) {
		request := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(payload))
		recorder := httptest.NewRecorder()

		Compress(echoHandler()).ServeHTTP(recorder, request)

		assert.Empty(t, recorder.Header().Get("Content-Encoding"))
		assert.Equal(t, payload, recorder.Body.String())
	})
}
