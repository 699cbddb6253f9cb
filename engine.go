package main

import (
	"errors"
	"fmt"
	"time"

	"hark/audio"
	"hark/config"
	"hark/log"
	"hark/scorer"
)

// frameSource is the pull side of audio capture. audio.Source implements it;
// tests substitute scripted sources.
type frameSource interface {
	Next(stop <-chan struct{}) ([]int16, error)
	Close()
}

// engine runs the daemon loop: pull a chunk, gate on speech, score, detect,
// dispatch. Reload requests are applied between cycles, never inside one, so
// a single chunk is always evaluated against exactly one snapshot.
type engine struct {
	ctrl   *config.Controller
	source frameSource
	sc     scorer.Scorer
	gate   *speechGate
	det    *detector
	disp   *dispatcher
	now    func() time.Time

	configPath string
	reload     <-chan struct{}
	stop       <-chan struct{}
	once       bool

	// buildScorer and buildSource construct replacements during a reload
	// whose scorer or audio section changed. Left nil only by tests that
	// never exercise those reload paths.
	buildScorer func(snap *config.Snapshot) (scorer.Scorer, error)
	buildSource func(snap *config.Snapshot) (frameSource, error)
}

// buildGate returns the speech gate for a snapshot, nil when gating is off.
func buildGate(snap *config.Snapshot) (*speechGate, error) {
	if snap.Audio.VADMode < 0 {
		return nil, nil
	}
	return newSpeechGate(snap.Audio.VADMode, snap.Audio.SampleRate)
}

// onceTimeout bounds -once runs: without it a silent room would keep a
// one-shot invocation alive forever.
const onceTimeout = 10 * time.Second

// run loops until stop closes (returns nil) or the audio device faults
// (returns the fault). Scoring errors are logged and skip the chunk.
func (e *engine) run() error {
	var deadline time.Time
	if e.once {
		deadline = e.now().Add(onceTimeout)
	}
	for {
		select {
		case <-e.stop:
			return nil
		case <-e.reload:
			e.applyReload()
			continue
		default:
		}

		if e.once && e.now().After(deadline) {
			return nil
		}

		frame, err := e.source.Next(e.stop)
		if err != nil {
			if errors.Is(err, audio.ErrSourceClosed) {
				return nil
			}
			log.DeviceFault(err)
			return err
		}

		snap := e.ctrl.Current()
		if e.gate != nil && !e.gate.HasSpeech(frame) {
			continue
		}

		scores, err := e.sc.Score(frame)
		if err != nil {
			log.Errorf("scoring chunk: %v", err)
			continue
		}

		fired := e.det.Step(scores, snap, e.now())
		for _, label := range fired {
			log.Detection(label, scores[label])
			e.disp.Dispatch(label, snap.Commands(label))
		}
		if e.once && len(fired) > 0 {
			return nil
		}
	}
}

// applyReload re-reads the config file and swaps it in. Any failure, from
// parse errors to a scorer that will not initialize, rejects the reload and
// leaves the running state untouched. Replacement resources are built before
// anything old is torn down.
func (e *engine) applyReload() {
	next, err := config.Read(e.configPath)
	if err == nil {
		err = next.Validate(true)
	}
	if err != nil {
		log.ReloadRejected(e.configPath, err)
		return
	}
	prev := e.ctrl.Current()

	var newSc scorer.Scorer
	if !prev.ScorerEquals(next) {
		newSc, err = e.buildScorer(next)
		if err != nil {
			log.ReloadRejected(e.configPath, fmt.Errorf("rebuilding scorer: %w", err))
			return
		}
	}

	var newSrc frameSource
	var newGate *speechGate
	audioChanged := !prev.AudioEquals(next)
	if audioChanged {
		newGate, err = buildGate(next)
		if err == nil {
			newSrc, err = e.buildSource(next)
		}
		if err != nil {
			if newSc != nil {
				newSc.Close()
			}
			log.ReloadRejected(e.configPath, fmt.Errorf("restarting audio: %w", err))
			return
		}
	}

	if newSc != nil {
		e.sc.Close()
		e.sc = newSc
	}
	if audioChanged {
		e.source.Close()
		e.source = newSrc
		e.gate = newGate
	}
	if next.General.LogLevel != prev.General.LogLevel {
		if err := log.SetLevel(next.General.LogLevel); err != nil {
			log.Warnf("reload: %v", err)
		}
	}
	e.ctrl.Swap(next)
	log.ReloadApplied(e.configPath, len(next.Wakewords))
}
