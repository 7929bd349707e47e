package standard

import (
	"context"
	"testing"
	"testing/fstest"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Azhovan/tether"
)

func TestLoaders_EndToEnd(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/home/u/app.properties", []byte("app.port=9000\napp.host=file-host\n"), 0o644))

	system := tether.NewSystemProperties()
	system.Set("app.host", "system-host")

	agg := tether.NewAggregator().
		WithLoader(Loaders(Options{
			Fs:        fs,
			Resources: fstest.MapFS{"defaults.toml": {Data: []byte("[app]\nport = 1\nname = \"demo\"\n")}},
			System:    system,
		})...).
		WithSystemProperties(system).
		WithHomeDir(func() (string, error) { return "/home/u", nil }).
		WithSource("system:properties").
		WithSource("file:~/app.properties").
		WithSource("classpath:defaults.toml")

	props, err := agg.Load(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "system-host", props.Get("app.host"))
	assert.Equal(t, "9000", props.Get("app.port"))
	assert.Equal(t, "demo", props.Get("app.name"))
	assert.Equal(t, "file:/home/u/app.properties", props.Origin("app.port"))
}

func TestLoaders_WithoutResources(t *testing.T) {
	assert.Len(t, Loaders(Options{}), 5)
	assert.Len(t, Loaders(Options{Resources: fstest.MapFS{}}), 6)
}
