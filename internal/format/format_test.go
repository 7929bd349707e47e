package format

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"
)

func TestDetect(t *testing.T) {
	tests := map[string]string{
		"app.properties":    Properties,
		"dir/app.TOML":      TOML,
		"app.yml":           YAML,
		"app.yaml":          YAML,
		"app.json":          JSON,
		"app.ini":           INI,
		"app.hcl":           HCL,
		".env":              DotEnv,
		"app.txt":           "",
		"noextension":       "",
		"/abs/path/x.json5": "",
	}

	for input, want := range tests {
		t.Run(input, func(t *testing.T) {
			assert.Equal(t, want, Detect(input))
		})
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		name   string
		format string
		data   string
		want   map[string]string
	}{
		{
			name:   "properties keeps placeholders literal",
			format: Properties,
			data:   "app.name=demo\napp.path=${HOME}/x\n# comment\nlist=A,B,C\n",
			want:   map[string]string{"app.name": "demo", "app.path": "${HOME}/x", "list": "A,B,C"},
		},
		{
			name:   "toml nested tables and arrays",
			format: TOML,
			data:   "title = \"t\"\n[server]\nport = 8080\nhosts = [\"a\", \"b\"]\n",
			want:   map[string]string{"title": "t", "server.port": "8080", "server.hosts": "a,b"},
		},
		{
			name:   "yaml nested maps",
			format: YAML,
			data:   "database:\n  host: localhost\n  port: 5432\nfeatures:\n  - one\n  - two\n",
			want:   map[string]string{"database.host": "localhost", "database.port": "5432", "features": "one,two"},
		},
		{
			name:   "json keeps number literals",
			format: JSON,
			data:   `{"a": {"big": 12345678901234567890, "f": 1.50}, "ok": true, "none": null}`,
			want:   map[string]string{"a.big": "12345678901234567890", "a.f": "1.50", "ok": "true", "none": ""},
		},
		{
			name:   "dotenv",
			format: DotEnv,
			data:   "APP_NAME=demo\n",
			want:   map[string]string{"app_name": "demo"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.format, []byte(tt.data))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParse_Errors(t *testing.T) {
	_, err := Parse("xml", []byte("<a/>"))
	assert.ErrorContains(t, err, "unsupported format")

	_, err = Parse(JSON, []byte("{not json"))
	assert.ErrorContains(t, err, "parse JSON")

	_, err = Parse(TOML, []byte("= broken"))
	assert.ErrorContains(t, err, "parse TOML")
}

func TestDecode(t *testing.T) {
	latin1, err := charmap.ISO8859_1.NewEncoder().Bytes([]byte("name=Jürgen"))
	require.NoError(t, err)

	got, err := Decode(latin1, "ISO-8859-1")
	require.NoError(t, err)
	assert.Equal(t, "name=Jürgen", string(got))

	same, err := Decode([]byte("plain"), "")
	require.NoError(t, err)
	assert.Equal(t, "plain", string(same))

	_, err = Decode([]byte("x"), "no-such-charset")
	assert.Error(t, err)
}
