// Package scorer wraps wake-phrase scoring backends behind one interface:
// PCM16 frames in, per-label confidence out.
package scorer

// Frame holds one frame's confidence per wakeword label, in [0, 1].
type Frame map[string]float64

// Scorer consumes frames from a single stream. Implementations may keep a
// rolling window internally and are not required to be safe for concurrent
// use; the daemon loop calls Score from one goroutine only.
type Scorer interface {
	// Labels lists the wakeword labels this scorer can report, in model
	// order.
	Labels() []string
	// Score processes one frame of arbitrary length and returns a score for
	// every label. Binary backends report 1.0 on detection and 0.0 otherwise.
	Score(pcm []int16) (Frame, error)
	Close()
}
