package speech

import (
	log "log/slog"
	"math"
	"time"

	"github.com/gordonklaus/portaudio"
)

const (
	sampleRate       = 16000
	frameSize        = 320 // 20ms
	silenceThreshRMS = 0.015
	silenceHold      = 600 * time.Millisecond
)

// Recorder captures mono 16 kHz microphone audio with RMS endpointing.
// deviceIndex selects a specific capture device; -1 means the system
// default.
type Recorder struct {
	deviceIndex int
}

func NewRecorder(deviceIndex int) *Recorder {
	return &Recorder{deviceIndex: deviceIndex}
}

func (r *Recorder) Init() error {
	if err := portaudio.Initialize(); err != nil {
		return err
	}
	r.logDevices()
	return nil
}

func (r *Recorder) Close() {
	portaudio.Terminate()
}

func (r *Recorder) logDevices() {
	devs, err := portaudio.Devices()
	if err != nil {
		log.Error("listing audio devices failed", "error", err)
		return
	}
	for i, dev := range devs {
		if dev.MaxInputChannels > 0 {
			log.Info("capture device", "index", i, "name", dev.Name)
		}
	}
	if r.deviceIndex >= len(devs) {
		log.Error("configured microphone index out of range", "index", r.deviceIndex)
	}
}

func (r *Recorder) openStream(buf []float32) (*portaudio.Stream, error) {
	if r.deviceIndex >= 0 {
		devs, err := portaudio.Devices()
		if err == nil && r.deviceIndex < len(devs) {
			params := portaudio.LowLatencyParameters(devs[r.deviceIndex], nil)
			params.Input.Channels = 1
			params.SampleRate = sampleRate
			params.FramesPerBuffer = len(buf)
			return portaudio.OpenStream(params, buf)
		}
		log.Warn("configured microphone unavailable, using default", "index", r.deviceIndex)
	}
	return portaudio.OpenDefaultStream(1, 0, sampleRate, len(buf), buf)
}

// Record waits up to wait for speech onset, then captures until the speaker
// pauses or phraseLimit elapses. Returns nil samples (no error) when no
// speech was detected before the timeout.
func (r *Recorder) Record(wait, phraseLimit time.Duration) ([]float32, error) {
	buf := make([]float32, frameSize)
	out := make([]float32, 0, sampleRate*3)

	stream, err := r.openStream(buf)
	if err != nil {
		return nil, err
	}
	defer stream.Close()

	if err := stream.Start(); err != nil {
		return nil, err
	}
	defer stream.Stop()

	const frameDur = frameSize * time.Second / sampleRate

	var (
		speaking      bool
		silenceFrames int
		waited        time.Duration
		captured      time.Duration
	)
	silenceLimit := int(silenceHold / frameDur)

	for {
		if err := stream.Read(); err != nil {
			return nil, err
		}

		rms := frameRMS(buf)
		if !speaking {
			if rms > silenceThreshRMS {
				speaking = true
				out = append(out, buf...)
				captured += frameDur
				continue
			}
			waited += frameDur
			if waited >= wait {
				return nil, nil
			}
			continue
		}

		out = append(out, buf...)
		captured += frameDur
		if captured >= phraseLimit {
			break
		}

		if rms > silenceThreshRMS {
			silenceFrames = 0
		} else {
			silenceFrames++
			if silenceFrames >= silenceLimit {
				break
			}
		}
	}

	return out, nil
}

func frameRMS(f []float32) float64 {
	var s float64
	for _, x := range f {
		s += float64(x * x)
	}
	return math.Sqrt(s / float64(len(f)))
}
