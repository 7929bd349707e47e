package tether

import (
	"errors"
	"testing"
)

func TestSubstitute(t *testing.T) {
	vars := map[string]string{"profile": "prod", "HOME": "/home/u", "empty": ""}

	tests := []struct {
		in   string
		want string
	}{
		{"file:/etc/{profile}.toml", "file:/etc/prod.toml"},
		{"file:{HOME}/{profile}/{profile}.yaml", "file:/home/u/prod/prod.yaml"},
		{"file:/etc/{missing}.toml", "file:/etc/{missing}.toml"},
		{"file:/etc/app{empty}.toml", "file:/etc/app.toml"},
		{"file:/etc/{unterminated", "file:/etc/{unterminated"},
		{"no placeholders", "no placeholders"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := substitute(tt.in, vars); got != tt.want {
				t.Errorf("substitute(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestTemplateVariables_PropertiesWin(t *testing.T) {
	vars := templateVariables(
		[]string{"A=env", "B=env", "malformed", "=nokey"},
		map[string]string{"B": "props"},
	)

	if vars["A"] != "env" || vars["B"] != "props" {
		t.Errorf("templateVariables() = %v", vars)
	}
	if _, ok := vars[""]; ok {
		t.Error("empty variable names must be skipped")
	}
}

func TestLocationTemplate_Expand(t *testing.T) {
	home := func() (string, error) { return "/home/u/", nil }
	noVars := func() map[string]string {
		t.Fatal("vars requested for a template without placeholders")
		return nil
	}

	u, loc, err := newLocationTemplate("file:~/app.toml").expand(home, noVars)
	if err != nil {
		t.Fatalf("expand() error: %v", err)
	}
	if loc != "file:/home/u/app.toml" || u.Path != "/home/u/app.toml" {
		t.Errorf("expand() = %q (path %q)", loc, u.Path)
	}

	failingHome := func() (string, error) { return "", errors.New("no home") }
	if _, _, err := newLocationTemplate("file:~/app.toml").expand(failingHome, noVars); err == nil {
		t.Error("expand() should fail when the home directory is unknown")
	}

	_, loc, err = newLocationTemplate("classpath:~/app.toml").expand(failingHome, noVars)
	if err != nil || loc != "classpath:~/app.toml" {
		t.Errorf("only file: locations expand the home prefix, got %q, %v", loc, err)
	}
}
