package audio

import (
	"encoding/binary"
	"fmt"
	"sync"
)

// sourceDepth bounds how many frames may queue between the device callback
// and the detection loop. A brief stall (config reload, scorer rebuild) must
// not drop audio; a loop that stops consuming altogether sheds the oldest
// frames instead of blocking the capture thread.
const sourceDepth = 16

// Source adapts a callback-driven CaptureDevice into the pull interface the
// daemon loop wants: Next blocks until a full chunk of samples is available.
type Source struct {
	dev   CaptureDevice
	chunk int

	frames chan []int16
	fault  chan error

	mu      sync.Mutex
	buf     []int16
	dropped uint64
	closed  bool
}

// NewSource opens a capture on dev (nil means system default), starts it,
// and begins accumulating chunk-sized frames. chunk is in samples.
func NewSource(ctx Context, dev *DeviceInfo, cfg CaptureConfig, chunk int) (*Source, error) {
	if chunk <= 0 {
		return nil, fmt.Errorf("audio: chunk size must be positive, got %d", chunk)
	}
	capture, err := ctx.NewCapture(dev, cfg)
	if err != nil {
		return nil, fmt.Errorf("audio: opening capture: %w", err)
	}

	s := &Source{
		dev:    capture,
		chunk:  chunk,
		frames: make(chan []int16, sourceDepth),
		fault:  make(chan error, 1),
	}
	capture.SetCallback(s.onData)
	capture.SetFaultCallback(s.onFault)

	if err := capture.Start(); err != nil {
		capture.ClearCallback()
		capture.Close()
		return nil, fmt.Errorf("audio: starting capture: %w", err)
	}
	return s, nil
}

// onData runs on the capture thread: decode little-endian PCM16, accumulate,
// and emit complete chunks. Never blocks.
func (s *Source) onData(data []byte, _ uint32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	for i := 0; i+1 < len(data); i += 2 {
		s.buf = append(s.buf, int16(binary.LittleEndian.Uint16(data[i:])))
	}
	for len(s.buf) >= s.chunk {
		frame := make([]int16, s.chunk)
		copy(frame, s.buf[:s.chunk])
		s.buf = s.buf[s.chunk:]
		select {
		case s.frames <- frame:
		default:
			// Queue full: shed the oldest frame so the newest audio stays
			// available to the consumer.
			select {
			case <-s.frames:
			default:
			}
			select {
			case s.frames <- frame:
			default:
			}
			s.dropped++
		}
	}
}

func (s *Source) onFault(err error) {
	if err == nil {
		err = ErrDeviceLost
	}
	select {
	case s.fault <- err:
	default:
	}
}

// Next blocks until a full frame is available. It returns ErrDeviceLost (or
// the backend's wrapped fault) when the device fails, and ErrSourceClosed
// after Close. stop aborts the wait without tearing the source down.
func (s *Source) Next(stop <-chan struct{}) ([]int16, error) {
	select {
	case frame, ok := <-s.frames:
		if !ok {
			return nil, ErrSourceClosed
		}
		return frame, nil
	case err := <-s.fault:
		return nil, err
	case <-stop:
		return nil, ErrSourceClosed
	}
}

// Dropped reports frames shed because the consumer stalled past the queue
// depth.
func (s *Source) Dropped() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dropped
}

// Close stops the capture and releases the device handle. Safe to call once;
// Next calls unblocked by Close return ErrSourceClosed.
func (s *Source) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.mu.Unlock()

	s.dev.Stop()
	s.dev.ClearCallback()
	s.dev.Close()
	close(s.frames)
}
