package scorer

import (
	"fmt"
	"os"

	porcupine "github.com/Picovoice/porcupine/binding/go/v3"
	"github.com/joho/godotenv"

	"hark/config"
)

// accessKeyEnv names the Picovoice access key variable. A .env file in the
// working directory is honored for local runs.
const accessKeyEnv = "PORCUPINE_ACCESS_KEY"

// RequiredSampleRate is the capture rate Porcupine models expect; feeding any
// other rate silently degrades detection.
var RequiredSampleRate = porcupine.SampleRate

// Porcupine scores frames with one Picovoice keyword model per configured
// path. The label for each model is its file stem. Porcupine consumes fixed
// frames of porcupine.FrameLength samples, so an internal buffer re-frames
// whatever chunk size the audio config uses.
type Porcupine struct {
	engine porcupine.Porcupine
	labels []string
	buf    []int16
}

// NewPorcupine initializes the engine for modelPaths. The per-label
// sensitivity (falling back to the global value) is handed to Porcupine
// directly; detections therefore surface as score 1.0.
func NewPorcupine(modelPaths []string, sensitivities map[string]float64, global float64) (*Porcupine, error) {
	if len(modelPaths) == 0 {
		return nil, fmt.Errorf("scorer: no model paths configured")
	}

	_ = godotenv.Load()
	key := os.Getenv(accessKeyEnv)
	if key == "" {
		return nil, fmt.Errorf("scorer: %s not set", accessKeyEnv)
	}

	labels := make([]string, len(modelPaths))
	sens := make([]float32, len(modelPaths))
	for i, p := range modelPaths {
		labels[i] = config.LabelFromPath(p)
		s := global
		if v, ok := sensitivities[labels[i]]; ok {
			s = v
		}
		sens[i] = float32(s)
	}

	p := &Porcupine{
		engine: porcupine.Porcupine{
			AccessKey:     key,
			KeywordPaths:  modelPaths,
			Sensitivities: sens,
		},
		labels: labels,
	}
	if err := p.engine.Init(); err != nil {
		return nil, fmt.Errorf("scorer: initializing porcupine: %w", err)
	}
	return p, nil
}

func (p *Porcupine) Labels() []string { return p.labels }

func (p *Porcupine) Score(pcm []int16) (Frame, error) {
	scores := make(Frame, len(p.labels))
	for _, label := range p.labels {
		scores[label] = 0
	}

	p.buf = append(p.buf, pcm...)
	for len(p.buf) >= porcupine.FrameLength {
		idx, err := p.engine.Process(p.buf[:porcupine.FrameLength])
		p.buf = p.buf[porcupine.FrameLength:]
		if err != nil {
			return nil, fmt.Errorf("scorer: %w", err)
		}
		if idx >= 0 && idx < len(p.labels) {
			scores[p.labels[idx]] = 1.0
		}
	}
	return scores, nil
}

func (p *Porcupine) Close() {
	p.engine.Delete()
}
