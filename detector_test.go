package main

import (
	"reflect"
	"testing"
	"time"

	"hark/config"
	"hark/scorer"
)

func detectorSnapshot() *config.Snapshot {
	return &config.Snapshot{
		General: config.General{
			ModelPaths:         []string{"Open_Browser.ppn", "Open_Terminal.ppn"},
			Sensitivity:        0.5,
			LaunchCooldownSecs: 3.0,
		},
		Wakewords: map[string][]string{
			"Open_Browser":  {"firefox"},
			"Open_Terminal": {"wezterm start --always-new-process"},
		},
	}
}

func TestDetectorCooldownSuppressesRepeat(t *testing.T) {
	d := newDetector()
	snap := detectorSnapshot()
	base := time.Unix(1000, 0)
	hit := scorer.Frame{"Open_Browser": 0.9}

	if got := d.Step(hit, snap, base); !reflect.DeepEqual(got, []string{"Open_Browser"}) {
		t.Fatalf("t=0: fired %v, want [Open_Browser]", got)
	}
	// 1.5s later, still inside the 3.0s cooldown.
	if got := d.Step(hit, snap, base.Add(1500*time.Millisecond)); got != nil {
		t.Fatalf("t=1.5s: fired %v, want none", got)
	}
	// 3.1s later the cooldown has elapsed.
	if got := d.Step(hit, snap, base.Add(3100*time.Millisecond)); !reflect.DeepEqual(got, []string{"Open_Browser"}) {
		t.Fatalf("t=3.1s: fired %v, want [Open_Browser]", got)
	}
}

func TestDetectorCooldownsArePerLabel(t *testing.T) {
	d := newDetector()
	snap := detectorSnapshot()
	base := time.Unix(1000, 0)

	if got := d.Step(scorer.Frame{"Open_Browser": 0.9}, snap, base); len(got) != 1 {
		t.Fatalf("fired %v", got)
	}
	// A different label inside Open_Browser's cooldown still fires.
	got := d.Step(scorer.Frame{"Open_Browser": 0.9, "Open_Terminal": 0.8}, snap, base.Add(time.Second))
	if !reflect.DeepEqual(got, []string{"Open_Terminal"}) {
		t.Fatalf("fired %v, want [Open_Terminal]", got)
	}
}

func TestDetectorSimultaneousLabelsBothFire(t *testing.T) {
	d := newDetector()
	snap := detectorSnapshot()

	got := d.Step(scorer.Frame{"Open_Browser": 0.9, "Open_Terminal": 0.8}, snap, time.Unix(1000, 0))
	if !reflect.DeepEqual(got, []string{"Open_Browser", "Open_Terminal"}) {
		t.Fatalf("fired %v, want both labels", got)
	}
}

func TestDetectorThresholdIsInclusive(t *testing.T) {
	d := newDetector()
	snap := detectorSnapshot()

	if got := d.Step(scorer.Frame{"Open_Browser": 0.5}, snap, time.Unix(1000, 0)); len(got) != 1 {
		t.Fatalf("score == threshold should fire, got %v", got)
	}
	if got := d.Step(scorer.Frame{"Open_Terminal": 0.49}, snap, time.Unix(1000, 0)); got != nil {
		t.Fatalf("score below threshold fired: %v", got)
	}
}

func TestDetectorPerLabelSensitivityOverride(t *testing.T) {
	d := newDetector()
	snap := detectorSnapshot()
	snap.General.Sensitivities = map[string]float64{"Open_Browser": 0.8}

	if got := d.Step(scorer.Frame{"Open_Browser": 0.7}, snap, time.Unix(1000, 0)); got != nil {
		t.Fatalf("score below override fired: %v", got)
	}
	if got := d.Step(scorer.Frame{"Open_Browser": 0.85}, snap, time.Unix(1000, 0)); len(got) != 1 {
		t.Fatalf("score above override did not fire: %v", got)
	}
}

func TestDetectorIgnoresLabelsWithoutCommands(t *testing.T) {
	d := newDetector()
	snap := detectorSnapshot()
	delete(snap.Wakewords, "Open_Terminal")

	if got := d.Step(scorer.Frame{"Open_Terminal": 1.0}, snap, time.Unix(1000, 0)); got != nil {
		t.Fatalf("label without commands fired: %v", got)
	}
}

func TestDetectorCooldownSurvivesSnapshotSwap(t *testing.T) {
	d := newDetector()
	snap := detectorSnapshot()
	base := time.Unix(1000, 0)

	if got := d.Step(scorer.Frame{"Open_Browser": 0.9}, snap, base); len(got) != 1 {
		t.Fatalf("fired %v", got)
	}

	// Reload: new snapshot, same label. The earlier hit still counts.
	next := detectorSnapshot()
	next.General.Sensitivity = 0.4
	if got := d.Step(scorer.Frame{"Open_Browser": 0.9}, next, base.Add(time.Second)); got != nil {
		t.Fatalf("cooldown dropped across snapshot swap: fired %v", got)
	}

	// A label the old snapshot never fired starts armed.
	if got := d.Step(scorer.Frame{"Open_Terminal": 0.9}, next, base.Add(time.Second)); len(got) != 1 {
		t.Fatalf("new label not armed: fired %v", got)
	}
}
