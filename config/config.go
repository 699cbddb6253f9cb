// Package config owns the daemon configuration: the on-disk TOML file, its
// validation, and the immutable snapshot the running daemon reads from.
package config

import (
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"
)

// SchemaError marks a config file that parsed but is missing required keys
// or holds structurally invalid values. At startup it maps to exit code 3.
type SchemaError struct {
	msg string
}

func (e *SchemaError) Error() string { return e.msg }

func schemaErrorf(format string, args ...any) *SchemaError {
	return &SchemaError{msg: fmt.Sprintf(format, args...)}
}

type General struct {
	ModelPaths         []string           `toml:"model_paths"`
	Sensitivity        float64            `toml:"sensitivity"`
	Sensitivities      map[string]float64 `toml:"sensitivities,omitempty"`
	LogLevel           string             `toml:"log_level"`
	LaunchCooldownSecs float64            `toml:"launch_cooldown_secs"`
}

type Audio struct {
	SampleRate int    `toml:"sample_rate"`
	Channels   int    `toml:"channels"`
	ChunkSize  int    `toml:"chunk_size"`
	Device     string `toml:"device,omitempty"`
	VADMode    int    `toml:"vad_mode"`
}

// Snapshot is one fully-formed configuration. Snapshots are never mutated
// after publication; a reload builds a new one and swaps it in whole.
type Snapshot struct {
	General   General             `toml:"general"`
	Wakewords map[string][]string `toml:"wakewords"`
	Audio     Audio               `toml:"audio"`
}

// Labels derives the wakeword label set from the model paths: the label is
// the file name without its extension (Open_Browser.ppn -> "Open_Browser").
func (s *Snapshot) Labels() []string {
	labels := make([]string, 0, len(s.General.ModelPaths))
	for _, p := range s.General.ModelPaths {
		labels = append(labels, LabelFromPath(p))
	}
	return labels
}

func LabelFromPath(p string) string {
	base := filepath.Base(p)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// Threshold returns the effective sensitivity for a label: the per-label
// override when configured, else the global value.
func (s *Snapshot) Threshold(label string) float64 {
	if v, ok := s.General.Sensitivities[label]; ok {
		return v
	}
	return s.General.Sensitivity
}

func (s *Snapshot) Cooldown() time.Duration {
	return time.Duration(s.General.LaunchCooldownSecs * float64(time.Second))
}

// Commands returns a copy of the command list for a label, so a later reload
// cannot change an already-issued dispatch.
func (s *Snapshot) Commands(label string) []string {
	return slices.Clone(s.Wakewords[label])
}

// Validate checks value ranges and cross-references. checkModels also
// requires every model path to exist on disk; reloads and startup use it,
// tests that fabricate snapshots may skip it.
func (s *Snapshot) Validate(checkModels bool) error {
	if len(s.General.ModelPaths) == 0 {
		return schemaErrorf("general.model_paths must list at least one model")
	}
	if s.General.Sensitivity < 0 || s.General.Sensitivity > 1 {
		return schemaErrorf("general.sensitivity %v out of range [0, 1]", s.General.Sensitivity)
	}
	for label, v := range s.General.Sensitivities {
		if v < 0 || v > 1 {
			return schemaErrorf("general.sensitivities.%s %v out of range [0, 1]", label, v)
		}
	}
	if s.General.LaunchCooldownSecs < 0 {
		return schemaErrorf("general.launch_cooldown_secs must be >= 0")
	}
	if _, err := parseLevelName(s.General.LogLevel); err != nil {
		return schemaErrorf("general.log_level: %v", err)
	}
	if s.Audio.SampleRate <= 0 {
		return schemaErrorf("audio.sample_rate must be positive")
	}
	if s.Audio.Channels <= 0 {
		return schemaErrorf("audio.channels must be positive")
	}
	if s.Audio.ChunkSize <= 0 {
		return schemaErrorf("audio.chunk_size must be positive")
	}
	if s.Audio.VADMode < -1 || s.Audio.VADMode > 3 {
		return schemaErrorf("audio.vad_mode must be -1 (off) or 0-3")
	}

	known := make(map[string]bool)
	for _, label := range s.Labels() {
		known[label] = true
	}
	for label := range s.Wakewords {
		if !known[label] {
			return schemaErrorf("wakewords.%s does not match any configured model", label)
		}
	}

	if checkModels {
		for _, p := range s.General.ModelPaths {
			if _, err := os.Stat(p); err != nil {
				return fmt.Errorf("model file %s: %w", p, err)
			}
		}
	}
	return nil
}

// parseLevelName mirrors log.ParseLevel without importing it; config must
// not depend on the logging package.
func parseLevelName(s string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "debug", "info", "warn", "warning", "error":
		return s, nil
	}
	return "", fmt.Errorf("unknown log level %q", s)
}

// ScorerEquals reports whether two snapshots agree on everything the scorer
// was built from. False means a reload must reinitialize the scorer.
func (s *Snapshot) ScorerEquals(o *Snapshot) bool {
	return slices.Equal(s.General.ModelPaths, o.General.ModelPaths) &&
		s.General.Sensitivity == o.General.Sensitivity &&
		maps.Equal(s.General.Sensitivities, o.General.Sensitivities)
}

// AudioEquals reports whether the audio sections match. False means a reload
// must restart the frame source.
func (s *Snapshot) AudioEquals(o *Snapshot) bool {
	return s.Audio == o.Audio
}

// Default returns the documented first-run configuration, mirroring the
// generated config file's comments in structure.
func Default() *Snapshot {
	modelDir := defaultModelDir()
	return &Snapshot{
		General: General{
			ModelPaths: []string{
				filepath.Join(modelDir, "Open_Browser.ppn"),
				filepath.Join(modelDir, "Open_Editor.ppn"),
				filepath.Join(modelDir, "Open_Terminal.ppn"),
				filepath.Join(modelDir, "Open_Youtube.ppn"),
			},
			Sensitivity:        0.5,
			LogLevel:           "info",
			LaunchCooldownSecs: 3.0,
		},
		Wakewords: map[string][]string{
			"Open_Terminal": {"wezterm start --always-new-process"},
			"Open_Browser":  {"firefox"},
			"Open_Editor":   {"code"},
			"Open_Youtube":  {"firefox --new-tab https://www.youtube.com"},
		},
		Audio: Audio{
			SampleRate: 16000,
			Channels:   1,
			ChunkSize:  1280,
			VADMode:    -1,
		},
	}
}

func defaultModelDir() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "models"
	}
	return filepath.Join(dir, "hark", "models")
}
