package tether

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"path/filepath"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/spf13/afero"
)

// MaxSnapshotSize is the maximum allowed snapshot size (100MB).
const MaxSnapshotSize = 100 * 1024 * 1024

// SnapshotVersion is the current snapshot format version.
const SnapshotVersion = "1.0"

// Snapshot errors.
var (
	// ErrSnapshotTooLarge is returned when a snapshot exceeds MaxSnapshotSize.
	ErrSnapshotTooLarge = errors.New("tether: snapshot exceeds 100MB size limit")

	// ErrNilConfig is returned when a nil *Config or snapshot is passed in.
	ErrNilConfig = errors.New("tether: config is nil")
)

// ConfigSnapshot is a point-in-time capture of a bound configuration.
type ConfigSnapshot struct {
	Version   string    `json:"version"`
	Timestamp time.Time `json:"timestamp"`
	Contract  string    `json:"contract"`

	// Config maps lookup keys to bound values, secrets redacted and unset
	// optionals omitted.
	Config map[string]any `json:"config"`

	Provenance []FieldProvenance `json:"provenance"`
}

// SnapshotOption configures snapshot creation behavior.
type SnapshotOption func(*snapshotConfig)

type snapshotConfig struct {
	excludeKeys []string
	now         func() time.Time
}

// WithExcludeKeys leaves the given lookup keys out of the snapshot.
// Matching is case-insensitive.
func WithExcludeKeys(keys ...string) SnapshotOption {
	return func(cfg *snapshotConfig) {
		cfg.excludeKeys = append(cfg.excludeKeys, keys...)
	}
}

// WithClock replaces time.Now as the snapshot timestamp source.
func WithClock(now func() time.Time) SnapshotOption {
	return func(cfg *snapshotConfig) {
		cfg.now = now
	}
}

// CreateSnapshot captures the bound values and provenance of cfg.
func CreateSnapshot(cfg *Config, opts ...SnapshotOption) (*ConfigSnapshot, error) {
	if cfg == nil {
		return nil, ErrNilConfig
	}

	snapCfg := &snapshotConfig{now: time.Now}
	for _, opt := range opts {
		opt(snapCfg)
	}

	excluded := make(map[string]bool, len(snapCfg.excludeKeys))
	for _, k := range snapCfg.excludeKeys {
		excluded[strings.ToLower(k)] = true
	}

	values := make(map[string]any, len(cfg.values))
	provenance := make([]FieldProvenance, 0, len(cfg.values))
	for _, prov := range cfg.Provenance() {
		if excluded[strings.ToLower(prov.KeyPath)] {
			continue
		}
		provenance = append(provenance, prov)

		v := cfg.values[prov.Accessor]
		if isShape(v.Type(), "Optional") && !v.Field(1).Bool() {
			continue
		}
		if prov.Secret {
			values[prov.KeyPath] = redacted
			continue
		}
		values[prov.KeyPath] = formatValueForJSON(v)
	}

	return &ConfigSnapshot{
		Version:    SnapshotVersion,
		Timestamp:  snapCfg.now().UTC(),
		Contract:   cfg.contract.Name(),
		Config:     values,
		Provenance: provenance,
	}, nil
}

// ExpandPath expands template variables using current time.
func ExpandPath(template string) string {
	return ExpandPathWithTime(template, time.Now())
}

// ExpandPathWithTime replaces every {{timestamp}} with t formatted as
// 20060102-150405 (UTC).
func ExpandPathWithTime(template string, t time.Time) string {
	return strings.ReplaceAll(template, "{{timestamp}}", t.UTC().Format("20060102-150405"))
}

// WriteSnapshot persists a snapshot to the OS filesystem. See WriteSnapshotFs.
func WriteSnapshot(snapshot *ConfigSnapshot, pathTemplate string) error {
	return WriteSnapshotFs(afero.NewOsFs(), snapshot, pathTemplate)
}

// WriteSnapshotFs writes the snapshot as indented JSON through a temp file
// and a rename, so readers never observe a partial file. {{timestamp}} in
// the path expands from the snapshot's own timestamp.
func WriteSnapshotFs(fs afero.Fs, snapshot *ConfigSnapshot, pathTemplate string) error {
	if snapshot == nil {
		return ErrNilConfig
	}

	target := ExpandPathWithTime(pathTemplate, snapshot.Timestamp)

	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return err
	}
	if len(data) > MaxSnapshotSize {
		return ErrSnapshotTooLarge
	}

	if dir := filepath.Dir(target); dir != "" && dir != "." {
		if err := fs.MkdirAll(dir, 0o700); err != nil {
			return err
		}
	}

	suffix := make([]byte, 8)
	if _, err := rand.Read(suffix); err != nil {
		return err
	}
	temp := target + ".tmp." + hex.EncodeToString(suffix)

	if err := afero.WriteFile(fs, temp, data, 0o600); err != nil {
		_ = fs.Remove(temp)
		return err
	}
	if err := fs.Rename(temp, target); err != nil {
		_ = fs.Remove(temp)
		return err
	}
	return nil
}
