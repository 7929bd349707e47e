package sourcehttp

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func location(t *testing.T, raw string) *url.URL {
	t.Helper()
	u, err := url.Parse(raw)
	require.NoError(t, err)
	return u
}

func TestHTTPLoader_Accept(t *testing.T) {
	l := New(Options{})

	assert.True(t, l.Accept(location(t, "https://example.com/app.yaml")))
	assert.True(t, l.Accept(location(t, "http://example.com/conf/app.properties#UTF-8")))
	assert.False(t, l.Accept(location(t, "https://example.com/app")))
	assert.False(t, l.Accept(location(t, "file:./app.yaml")))

	restricted := New(Options{Format: "toml"})
	assert.True(t, restricted.Accept(location(t, "https://example.com/app.toml")))
	assert.False(t, restricted.Accept(location(t, "https://example.com/app.yaml")))
}

func TestHTTPLoader_Load(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/app.toml":
			_, _ = w.Write([]byte("[server]\nport = 9090\n"))
		case "/broken.json":
			_, _ = w.Write([]byte("{"))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	l := New(Options{Timeout: time.Second})
	ctx := context.Background()

	assert.Equal(t, map[string]string{"server.port": "9090"}, l.Load(ctx, location(t, srv.URL+"/app.toml#UTF-8")))
	assert.Empty(t, l.Load(ctx, location(t, srv.URL+"/missing.toml")))
	assert.Empty(t, l.Load(ctx, location(t, srv.URL+"/broken.json")))
}

func TestHTTPLoader_Retries(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte("a: b\n"))
	}))
	defer srv.Close()

	l := New(Options{Retries: 3, Timeout: 10 * time.Second})
	got := l.Load(context.Background(), location(t, srv.URL+"/app.yaml"))

	assert.Equal(t, map[string]string{"a": "b"}, got)
	assert.Equal(t, int32(3), calls.Load())
}

func TestHTTPLoader_CircuitOpens(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	l := New(Options{TripAfter: 2, OpenTimeout: time.Minute})
	ctx := context.Background()
	for i := 0; i < 5; i++ {
		assert.Empty(t, l.Load(ctx, location(t, srv.URL+"/app.yaml")))
	}

	assert.Equal(t, int32(2), calls.Load())
}

func TestHTTPLoader_CircuitIsPerHost(t *testing.T) {
	var failing, healthy atomic.Int32
	down := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		failing.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer down.Close()
	up := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		healthy.Add(1)
		_, _ = w.Write([]byte("a: b\n"))
	}))
	defer up.Close()

	l := New(Options{TripAfter: 1, OpenTimeout: time.Minute})
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		assert.Empty(t, l.Load(ctx, location(t, down.URL+"/app.yaml")))
	}
	assert.Equal(t, int32(1), failing.Load())

	assert.Equal(t, map[string]string{"a": "b"}, l.Load(ctx, location(t, up.URL+"/app.yaml")))
	assert.Equal(t, int32(1), healthy.Load())
}
