package config

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func testSnapshot(t *testing.T) *Snapshot {
	t.Helper()
	dir := t.TempDir()
	models := []string{
		filepath.Join(dir, "Open_Browser.ppn"),
		filepath.Join(dir, "Open_Terminal.ppn"),
	}
	for _, p := range models {
		if err := os.WriteFile(p, []byte("model"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return &Snapshot{
		General: General{
			ModelPaths:         models,
			Sensitivity:        0.5,
			LogLevel:           "info",
			LaunchCooldownSecs: 3.0,
		},
		Wakewords: map[string][]string{
			"Open_Browser":  {"firefox"},
			"Open_Terminal": {"wezterm start --always-new-process"},
		},
		Audio: Audio{SampleRate: 16000, Channels: 1, ChunkSize: 1280, VADMode: -1},
	}
}

func TestRoundTrip(t *testing.T) {
	snap := testSnapshot(t)
	path := filepath.Join(t.TempDir(), "config.toml")

	if err := Write(path, snap); err != nil {
		t.Fatal(err)
	}
	got, err := Read(path)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(got, snap) {
		t.Errorf("round trip mismatch:\n got %+v\nwant %+v", got, snap)
	}
	if err := got.Validate(true); err != nil {
		t.Errorf("re-validation after round trip: %v", err)
	}
}

func TestEnsureGeneratesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hark", "config.toml")
	if err := Ensure(path); err != nil {
		t.Fatal(err)
	}
	snap, err := Read(path)
	if err != nil {
		t.Fatal(err)
	}
	if snap.General.Sensitivity != 0.5 {
		t.Errorf("default sensitivity = %v, want 0.5", snap.General.Sensitivity)
	}
	if snap.Audio.ChunkSize != 1280 {
		t.Errorf("default chunk_size = %d, want 1280", snap.Audio.ChunkSize)
	}
	if len(snap.Wakewords) != 4 {
		t.Errorf("default wakewords = %d entries, want 4", len(snap.Wakewords))
	}
	// Second Ensure must not overwrite.
	if err := Ensure(path); err != nil {
		t.Fatal(err)
	}
}

func TestReadMissingKeysIsSchemaError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := "[general]\nsensitivity = 0.5\n\n[audio]\nsample_rate = 16000\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err := Read(path)
	if err == nil {
		t.Fatal("expected error for missing keys")
	}
	var se *SchemaError
	if !errors.As(err, &se) {
		t.Fatalf("expected SchemaError, got %T: %v", err, err)
	}
}

func TestValidateRejectsOutOfRangeSensitivity(t *testing.T) {
	snap := testSnapshot(t)
	snap.General.Sensitivity = 1.7
	if err := snap.Validate(false); err == nil {
		t.Error("expected rejection of sensitivity 1.7")
	}
}

func TestValidateRejectsUnknownWakewordLabel(t *testing.T) {
	snap := testSnapshot(t)
	snap.Wakewords["Open_Mystery"] = []string{"xdg-open ."}
	if err := snap.Validate(false); err == nil {
		t.Error("expected rejection of label with no matching model")
	}
}

func TestValidateRejectsMissingModelFile(t *testing.T) {
	snap := testSnapshot(t)
	snap.General.ModelPaths = append(snap.General.ModelPaths, filepath.Join(t.TempDir(), "Gone.ppn"))
	if err := snap.Validate(true); err == nil {
		t.Error("expected rejection of nonexistent model path")
	}
	// Without the stat check the same snapshot is fine: the extra model only
	// grows the label set.
	if err := snap.Validate(false); err != nil {
		t.Errorf("validate without model check: %v", err)
	}
}

func TestThresholdPerLabelOverride(t *testing.T) {
	snap := testSnapshot(t)
	snap.General.Sensitivities = map[string]float64{"Open_Browser": 0.8}
	if got := snap.Threshold("Open_Browser"); got != 0.8 {
		t.Errorf("Threshold(Open_Browser) = %v, want 0.8", got)
	}
	if got := snap.Threshold("Open_Terminal"); got != 0.5 {
		t.Errorf("Threshold(Open_Terminal) = %v, want 0.5", got)
	}
}

func TestCommandsReturnsCopy(t *testing.T) {
	snap := testSnapshot(t)
	cmds := snap.Commands("Open_Browser")
	cmds[0] = "mutated"
	if snap.Wakewords["Open_Browser"][0] != "firefox" {
		t.Error("Commands must copy, not alias, the snapshot's list")
	}
}

func TestLabelFromPath(t *testing.T) {
	cases := map[string]string{
		"/opt/models/Open_Browser.ppn": "Open_Browser",
		"Open_Terminal.onnx":           "Open_Terminal",
		"./rel/Hey_Hark.ppn":           "Hey_Hark",
	}
	for in, want := range cases {
		if got := LabelFromPath(in); got != want {
			t.Errorf("LabelFromPath(%q) = %q, want %q", in, got, want)
		}
	}
}
