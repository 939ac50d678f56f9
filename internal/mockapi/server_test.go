package mockapi

import (
	"context"
	"net"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServe_ShutsDownOnCancel(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- Serve(ctx, ln, NewHandler(nil), nil)
	}()

	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.Post("http://"+ln.Addr().String()+"/chat", "application/json",
		strings.NewReader(`{"history":[],"message":"hi"}`))
	require.NoError(t, err)
	body := readAll(t, resp.Body)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "You said: hi")
	client.CloseIdleConnections()

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("server did not shut down")
	}
}

func TestListenAndServe_BadAddr(t *testing.T) {
	err := ListenAndServe(context.Background(), "256.0.0.1:99999", NewHandler(nil), nil)
	assert.Error(t, err)
}
