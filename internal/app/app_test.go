package app

import (
	"context"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/patric-chuzhbe/registrar/internal/config"
)

func freeAddr(t *testing.T) string {
	t.Helper()
	lis, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := lis.Addr().String()
	require.NoError(t, lis.Close())
	return addr
}

func TestAppServesUntilCanceled(t *testing.T) {
	addr := freeAddr(t)
	t.Setenv("SERVER_ADDRESS", addr)
	t.Setenv("SHUTDOWN_TIMEOUT", "2s")

	application, err := New(config.WithDisableFlagsParsing(true))
	require.NoError(t, err)
	defer application.Close()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- application.Run(ctx)
	}()

	client := resty.New().
		SetBaseURL("http://"+addr).
		SetRetryCount(20).
		SetRetryWaitTime(50 * time.Millisecond)

	resp, err := client.R().Get("/ping")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode())

	resp, err = client.R().
		SetBody(`{"nodeId":"node1","url":"http://10.0.0.1:8080"}`).
		SetHeader("Content-Type", "application/json").
		Post("/registrations/alice")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode())
	assert.Len(t, application.Registry().List("alice"), 1)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("the app did not stop after cancellation")
	}
}

func TestAppRejectsInvalidConfig(t *testing.T) {
	t.Setenv("LOG_LEVEL", "chatty")

	_, err := New(config.WithDisableFlagsParsing(true))
	assert.Error(t, err)
}
