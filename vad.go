package main

import (
	"encoding/binary"

	webrtcvad "github.com/maxhawkins/go-webrtcvad"
)

const gateFrameMs = 20

// speechGate skips scoring on silent chunks. Incoming PCM is reframed into
// 20ms VAD frames; a chunk counts as speech when any frame in it is voiced.
// The gate fails open: a chunk that yields no decidable frame is treated as
// speech, so gating can only save work, never swallow a wakeword.
type speechGate struct {
	vad        *webrtcvad.VAD
	rate       int
	frameBytes int
	buf        []byte
}

// newSpeechGate builds a gate with the given webrtcvad aggressiveness
// (0 least, 3 most) at the capture sample rate.
func newSpeechGate(mode, rate int) (*speechGate, error) {
	v, err := webrtcvad.New()
	if err != nil {
		return nil, err
	}
	if err := v.SetMode(mode); err != nil {
		return nil, err
	}
	return &speechGate{
		vad:        v,
		rate:       rate,
		frameBytes: rate * gateFrameMs / 1000 * 2,
	}, nil
}

func (g *speechGate) HasSpeech(pcm []int16) bool {
	off := len(g.buf)
	g.buf = append(g.buf, make([]byte, len(pcm)*2)...)
	for i, s := range pcm {
		binary.LittleEndian.PutUint16(g.buf[off+i*2:], uint16(s))
	}

	voiced := false
	frames := 0
	for len(g.buf) >= g.frameBytes {
		frame := g.buf[:g.frameBytes]
		g.buf = g.buf[g.frameBytes:]
		frames++

		active, err := g.vad.Process(g.rate, frame)
		if err != nil || active {
			voiced = true
		}
	}
	if frames == 0 {
		return true
	}
	return voiced
}
