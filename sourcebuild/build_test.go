package sourcebuild

import (
	"context"
	"net/url"
	"runtime/debug"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fakeInfo() (*debug.BuildInfo, bool) {
	return &debug.BuildInfo{
		GoVersion: "go1.21.5",
		Path:      "example.com/app",
		Main:      debug.Module{Path: "example.com/app", Version: "v1.2.3"},
		Deps: []*debug.Module{
			{Path: "github.com/google/uuid", Version: "v1.6.0"},
			{Path: "example.com/old", Version: "v0.1.0", Replace: &debug.Module{Path: "example.com/new", Version: "v0.2.0"}},
		},
		Settings: []debug.BuildSetting{{Key: "vcs.revision", Value: "abc123"}},
	}, true
}

func location(t *testing.T, raw string) *url.URL {
	t.Helper()
	u, err := url.Parse(raw)
	require.NoError(t, err)
	return u
}

func TestBuildLoader_Accept(t *testing.T) {
	l := New(Options{ReadBuildInfo: fakeInfo})
	assert.True(t, l.Accept(location(t, "build:info?path")))
	assert.True(t, l.Accept(location(t, "build:info?main.version=v1.2.3")))
	assert.False(t, l.Accept(location(t, "build:info")))
	assert.False(t, l.Accept(location(t, "system:env")))
}

func TestBuildLoader_Load(t *testing.T) {
	l := New(Options{ReadBuildInfo: fakeInfo})
	ctx := context.Background()

	tests := []struct {
		name      string
		location  string
		wantEmpty bool
	}{
		{name: "attribute exists", location: "build:info?vcs.revision"},
		{name: "attribute matches", location: "build:info?path=example.com/app"},
		{name: "attribute differs", location: "build:info?path=example.com/other", wantEmpty: true},
		{name: "attribute missing", location: "build:info?nope", wantEmpty: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := l.Load(ctx, location(t, tt.location))
			if tt.wantEmpty {
				assert.Empty(t, got)
				return
			}
			assert.Equal(t, "abc123", got["vcs.revision"])
			assert.Equal(t, "v1.2.3", got["main.version"])
			assert.Equal(t, "v1.6.0", got["dep.github.com/google/uuid"])
			assert.Equal(t, "v0.2.0", got["dep.example.com/old"])
		})
	}
}

func TestBuildLoader_NoBuildInfo(t *testing.T) {
	l := New(Options{ReadBuildInfo: func() (*debug.BuildInfo, bool) { return nil, false }})
	assert.Empty(t, l.Load(context.Background(), location(t, "build:info?path")))
}
