// Package audio acquires microphone input and turns the platform capture
// callbacks into fixed-size PCM16 frames the detection loop can pull.
package audio

import "errors"

// ErrDeviceLost is the fault value surfaced when the capture device fails
// mid-stream. The daemon treats it as fatal: without frames there is nothing
// to detect.
var ErrDeviceLost = errors.New("audio: capture device lost")

// ErrSourceClosed is returned by Source.Next after Close; it signals a clean
// shutdown rather than a fault.
var ErrSourceClosed = errors.New("audio: source closed")

type DataCallback func(data []byte, frameCount uint32)

// FaultCallback delivers an asynchronous device failure. Backends call it at
// most once.
type FaultCallback func(err error)

type CaptureConfig struct {
	SampleRate uint32
	Channels   uint32
}

type DeviceInfo struct {
	ID   string // opaque platform-specific identifier
	Name string
}

type Context interface {
	Devices() ([]DeviceInfo, error)
	NewCapture(device *DeviceInfo, config CaptureConfig) (CaptureDevice, error)
	Close()
}

type CaptureDevice interface {
	Start() error
	Stop()
	Close()
	SetCallback(cb DataCallback)
	SetFaultCallback(cb FaultCallback)
	ClearCallback()
}

// FindDevice resolves a configured device name to a DeviceInfo, or nil for
// the system default. A configured name that is not present yields ok=false
// so the caller can warn and fall back.
func FindDevice(ctx Context, name string) (dev *DeviceInfo, ok bool) {
	if name == "" {
		return nil, true
	}
	devices, err := ctx.Devices()
	if err != nil {
		return nil, false
	}
	for i := range devices {
		if devices[i].Name == name {
			return &devices[i], true
		}
	}
	return nil, false
}
