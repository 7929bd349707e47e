package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Azhovan/tether"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := New(&out, &errOut)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return "file:" + path
}

func TestResolve(t *testing.T) {
	first := writeFile(t, "a.properties", "app.name=first\napp.port=80\n")
	second := writeFile(t, "b.toml", "[app]\nname = \"second\"\nmode = \"dev\"\n")

	out, err := run(t, "resolve", first, second, "--set", "app.port=9090")
	require.NoError(t, err)

	assert.Contains(t, out, "app.name=first (source: "+first+")")
	assert.Contains(t, out, "app.mode=dev (source: "+second+")")
	assert.Contains(t, out, "app.port=9090 (source: "+tether.OverridesLocation+")")

	out, err = run(t, "resolve", first, second, "--precedence", "last-wins", "--json")
	require.NoError(t, err)

	var got map[string]struct {
		Value  string `json:"value"`
		Source string `json:"source"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, "second", got["app.name"].Value)
	assert.Equal(t, second, got["app.name"].Source)
}

func TestResolve_Defines(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "prod.properties"), []byte("env=production\n"), 0o644))

	out, err := run(t, "resolve", "-D", "profile=prod", "file:"+dir+"/{profile}.properties", "system:properties")
	require.NoError(t, err)
	assert.Contains(t, out, "env=production")
	assert.Contains(t, out, "profile=prod (source: system:properties)")
}

func TestResolve_Errors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{name: "bad precedence", args: []string{"resolve", "--precedence", "random"}, want: "unknown precedence"},
		{name: "bad key mode", args: []string{"resolve", "--keys", "fuzzy"}, want: "unknown key mode"},
		{name: "malformed override", args: []string{"resolve", "--set", "novalue"}, want: "expected key=value"},
		{name: "no loader", args: []string{"resolve", "ftp://example.com/app.toml"}, want: "loader not found"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := run(t, tt.args...)
			assert.ErrorContains(t, err, tt.want)
		})
	}
}

func TestGet(t *testing.T) {
	src := writeFile(t, "app.properties",
		"hosts=b;a;b\nlimits=cpu|2,mem|4\nweights=b|2,a|1\nname=demo\n")

	tests := []struct {
		name string
		args []string
		want string
	}{
		{name: "scalar", args: []string{"get", "name", src}, want: "demo\n"},
		{name: "default", args: []string{"get", "missing", src, "--default", "x"}, want: "x\n"},
		{name: "optional absent", args: []string{"get", "missing", src, "--optional"}, want: "<absent>\n"},
		{name: "list", args: []string{"get", "hosts", src, "--shape", "list", "--split", ";"}, want: "b\na\nb\n"},
		{name: "set collapses duplicates", args: []string{"get", "hosts", src, "--shape", "set", "--split", ";"}, want: "a\nb\n"},
		{name: "optional set", args: []string{"get", "hosts", src, "--shape", "set", "--split", ";", "--optional"}, want: "a\nb\n"},
		{name: "sorted set", args: []string{"get", "hosts", src, "--shape", "sorted-set", "--split", ";"}, want: "a\nb\n"},
		{name: "sorted set default", args: []string{"get", "missing", src, "--shape", "sorted-set", "--default", "z,y,z"}, want: "y\nz\n"},
		{name: "map", args: []string{"get", "limits", src, "--shape", "map"}, want: "cpu=2\nmem=4\n"},
		{name: "sorted map", args: []string{"get", "weights", src, "--shape", "sorted-map"}, want: "a=1\nb=2\n"},
		{name: "optional sorted map absent", args: []string{"get", "missing", src, "--shape", "sorted-map", "--optional"}, want: "<absent>\n"},
		{name: "override", args: []string{"get", "name", src, "--set", "name=other"}, want: "other\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := run(t, tt.args...)
			require.NoError(t, err)
			assert.Equal(t, tt.want, out)
		})
	}
}

func TestGet_Errors(t *testing.T) {
	src := writeFile(t, "app.properties", "limits=cpu\n")

	_, err := run(t, "get", "missing", src)
	assert.ErrorIs(t, err, tether.ErrMissingValue)

	_, err = run(t, "get", "limits", src, "--shape", "map")
	assert.ErrorIs(t, err, tether.ErrBadValue)

	dup := writeFile(t, "dup.properties", "limits=a|1,a|2\n")
	_, err = run(t, "get", "limits", dup, "--shape", "sorted-map")
	assert.ErrorIs(t, err, tether.ErrDuplicateKey)

	_, err = run(t, "get", "limits", src, "--shape", "cube")
	assert.ErrorContains(t, err, "unknown shape")

	_, err = run(t, "get", "limits", src, "--optional", "--default", "x")
	assert.ErrorContains(t, err, "mutually exclusive")

	_, err = run(t, "get")
	assert.Error(t, err)
}
