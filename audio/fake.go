package audio

import (
	"encoding/binary"
	"sync"
	"time"
)

const fakeChunkSamples = 256

// FakeContext replays in-memory PCM16 through the CaptureDevice interface so
// the daemon loop can run against scripted audio in tests.
type FakeContext struct {
	pcm      []int16
	realtime bool
	rate     int
}

// NewFakeContext builds a context whose captures feed pcm and then silence.
// With realtime set, chunks are paced at the sample rate; otherwise they are
// delivered as fast as the consumer keeps up.
func NewFakeContext(pcm []int16, rate int, realtime bool) *FakeContext {
	return &FakeContext{pcm: pcm, rate: rate, realtime: realtime}
}

func (f *FakeContext) Devices() ([]DeviceInfo, error) {
	return []DeviceInfo{{ID: "fake0", Name: "fake"}}, nil
}

func (f *FakeContext) Close() {}

func (f *FakeContext) NewCapture(_ *DeviceInfo, _ CaptureConfig) (CaptureDevice, error) {
	return &FakeCapture{
		pcm:      f.pcm,
		rate:     f.rate,
		realtime: f.realtime,
		drained:  make(chan struct{}),
	}, nil
}

type FakeCapture struct {
	pcm      []int16
	rate     int
	realtime bool
	drained  chan struct{}

	mu     sync.Mutex
	cb     DataCallback
	fcb    FaultCallback
	stopCh chan struct{}
	done   chan struct{}
}

// Drained closes once all scripted PCM has been delivered and the capture
// has switched to silence.
func (f *FakeCapture) Drained() <-chan struct{} { return f.drained }

// InjectFault simulates the device disappearing mid-stream.
func (f *FakeCapture) InjectFault(err error) {
	f.mu.Lock()
	fcb := f.fcb
	f.mu.Unlock()
	if fcb != nil {
		fcb(err)
	}
}

func (f *FakeCapture) SetCallback(cb DataCallback) {
	f.mu.Lock()
	f.cb = cb
	f.mu.Unlock()
}

func (f *FakeCapture) SetFaultCallback(cb FaultCallback) {
	f.mu.Lock()
	f.fcb = cb
	f.mu.Unlock()
}

func (f *FakeCapture) ClearCallback() {
	f.mu.Lock()
	f.cb = nil
	f.fcb = nil
	f.mu.Unlock()
}

func (f *FakeCapture) Start() error {
	f.stopCh = make(chan struct{})
	f.done = make(chan struct{})

	interval := time.Millisecond
	if f.realtime && f.rate > 0 {
		interval = time.Duration(fakeChunkSamples) * time.Second / time.Duration(f.rate)
	}

	go func() {
		defer close(f.done)
		pos := 0
		silence := make([]byte, fakeChunkSamples*2)
		finished := false
		for {
			select {
			case <-f.stopCh:
				return
			default:
			}

			f.mu.Lock()
			cb := f.cb
			f.mu.Unlock()

			if cb != nil {
				if pos < len(f.pcm) {
					end := min(pos+fakeChunkSamples, len(f.pcm))
					chunk := make([]byte, (end-pos)*2)
					for i, s := range f.pcm[pos:end] {
						binary.LittleEndian.PutUint16(chunk[i*2:], uint16(s))
					}
					cb(chunk, uint32(end-pos))
					pos = end
				} else {
					if !finished {
						finished = true
						close(f.drained)
					}
					cb(silence, fakeChunkSamples)
				}
			}

			select {
			case <-f.stopCh:
				return
			case <-time.After(interval):
			}
		}
	}()
	return nil
}

func (f *FakeCapture) Stop() {
	if f.stopCh == nil {
		return
	}
	select {
	case <-f.stopCh:
	default:
		close(f.stopCh)
	}
	<-f.done
}

func (f *FakeCapture) Close() {
	f.Stop()
}
