package scorer

import "fmt"

// Fake replays a scripted score sequence, one Frame per Score call, then
// holds at zero for all labels. Tests use it to drive exact detection
// scenarios without a model.
type Fake struct {
	labels []string
	script []Frame
	calls  int

	// FailAt, when > 0, makes that Score call (1-based) return an error,
	// simulating a scoring backend fault.
	FailAt int
}

func NewFake(labels []string, script []Frame) *Fake {
	return &Fake{labels: labels, script: script}
}

func (f *Fake) Labels() []string { return f.labels }

func (f *Fake) Score(_ []int16) (Frame, error) {
	f.calls++
	if f.FailAt > 0 && f.calls == f.FailAt {
		return nil, fmt.Errorf("scripted scoring fault at call %d", f.calls)
	}

	scores := make(Frame, len(f.labels))
	for _, label := range f.labels {
		scores[label] = 0
	}
	if f.calls-1 < len(f.script) {
		for label, v := range f.script[f.calls-1] {
			scores[label] = v
		}
	}
	return scores, nil
}

func (f *Fake) Calls() int { return f.calls }

func (f *Fake) Close() {}
