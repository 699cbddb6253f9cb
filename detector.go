package main

import (
	"sort"
	"time"

	"hark/config"
	"hark/scorer"
)

// detector turns score frames into firing decisions. A label fires when its
// score reaches the effective threshold and its cooldown has elapsed. The
// lastFired map is keyed by label and lives outside the config snapshot, so
// cooldowns survive reloads; labels new to a snapshot start armed.
type detector struct {
	lastFired map[string]time.Time
}

func newDetector() *detector {
	return &detector{lastFired: make(map[string]time.Time)}
}

// Step evaluates one score frame against snap at time now. It returns the
// labels that fire this frame, sorted for deterministic dispatch order.
// Labels with no command list configured never fire.
func (d *detector) Step(scores scorer.Frame, snap *config.Snapshot, now time.Time) []string {
	cooldown := snap.Cooldown()
	var fired []string
	for label, score := range scores {
		if len(snap.Wakewords[label]) == 0 {
			continue
		}
		if score < snap.Threshold(label) {
			continue
		}
		if last, ok := d.lastFired[label]; ok && now.Sub(last) < cooldown {
			continue
		}
		d.lastFired[label] = now
		fired = append(fired, label)
	}
	sort.Strings(fired)
	return fired
}
