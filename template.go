package tether

import (
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
)

const homePrefix = "file:~/"

// locationTemplate is a source location that may reference the user home
// directory (`file:~/`) and `{name}` variables.
type locationTemplate struct {
	raw     string
	hasVars bool
}

func newLocationTemplate(raw string) locationTemplate {
	return locationTemplate{raw: raw, hasVars: strings.Contains(raw, "{")}
}

// expand rewrites the home prefix, then substitutes variables. vars is only
// called when the template has placeholders.
func (t locationTemplate) expand(homeDir func() (string, error), vars func() map[string]string) (*url.URL, string, error) {
	loc := t.raw
	if strings.HasPrefix(loc, homePrefix) {
		home, err := homeDir()
		if err != nil {
			return nil, t.raw, &SourceError{Location: t.raw, Err: fmt.Errorf("resolve home directory: %w", err)}
		}
		home = filepath.ToSlash(home)
		if !strings.HasPrefix(home, "/") {
			home = "/" + home
		}
		loc = "file:" + strings.TrimSuffix(home, "/") + "/" + loc[len(homePrefix):]
	}
	if t.hasVars {
		loc = substitute(loc, vars())
	}

	u, err := url.Parse(loc)
	if err != nil {
		return nil, loc, &SourceError{Location: loc, Err: fmt.Errorf("%w: %v", ErrInvalidLocation, err)}
	}
	if u.Scheme == "" {
		return nil, loc, &SourceError{Location: loc, Err: fmt.Errorf("%w: missing scheme", ErrInvalidLocation)}
	}
	return u, loc, nil
}

// substitute replaces every `{name}` with vars[name]. Unknown names are kept
// verbatim.
func substitute(s string, vars map[string]string) string {
	var b strings.Builder
	for {
		open := strings.IndexByte(s, '{')
		if open < 0 {
			break
		}
		end := strings.IndexByte(s[open+1:], '}')
		if end < 0 {
			break
		}
		name := s[open+1 : open+1+end]
		b.WriteString(s[:open])
		if v, ok := vars[name]; ok {
			b.WriteString(v)
		} else {
			b.WriteString(s[open : open+end+2])
		}
		s = s[open+end+2:]
	}
	b.WriteString(s)
	return b.String()
}

// templateVariables merges the environment with system properties, the
// properties winning.
func templateVariables(environ []string, system map[string]string) map[string]string {
	vars := make(map[string]string, len(environ)+len(system))
	for _, kv := range environ {
		k, v, ok := strings.Cut(kv, "=")
		if !ok || k == "" {
			continue
		}
		vars[k] = v
	}
	for k, v := range system {
		vars[k] = v
	}
	return vars
}
