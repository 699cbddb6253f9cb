package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// DefaultPath resolves the user config file location:
// $XDG_CONFIG_HOME/hark/config.toml (or the OS equivalent).
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolving config dir: %w", err)
	}
	return filepath.Join(dir, "hark", "config.toml"), nil
}

// requiredKeys must all be present in a parsed file; anything missing is a
// schema error telling the user to fix or delete the file.
var requiredKeys = [][]string{
	{"general", "model_paths"},
	{"general", "sensitivity"},
	{"general", "launch_cooldown_secs"},
	{"wakewords"},
	{"audio", "sample_rate"},
	{"audio", "channels"},
	{"audio", "chunk_size"},
}

// Read parses the TOML file at path and checks required keys. It does not
// validate values; callers run Snapshot.Validate before using the result.
func Read(path string) (*Snapshot, error) {
	snap := &Snapshot{
		Audio: Audio{VADMode: -1},
	}
	md, err := toml.DecodeFile(path, snap)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	var missing []string
	for _, key := range requiredKeys {
		if !md.IsDefined(key...) {
			missing = append(missing, strings.Join(key, "."))
		}
	}
	if len(missing) > 0 {
		return nil, schemaErrorf("config %s is missing required keys: %s (fix the file or delete it to regenerate defaults)",
			path, strings.Join(missing, ", "))
	}
	if snap.Wakewords == nil {
		snap.Wakewords = map[string][]string{}
	}
	return snap, nil
}

// Write serializes snap to path atomically: encode to a temp file in the
// same directory, fsync, then rename over the destination.
func Write(path string, snap *Snapshot) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory %s: %w", dir, err)
	}

	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(snap); err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp*")
	if err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("writing config: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("writing config: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("writing config: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

// Ensure writes the documented defaults to path if no file exists yet.
func Ensure(path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return err
	}
	return Write(path, Default())
}
