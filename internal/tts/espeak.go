package tts

/*
#cgo LDFLAGS: -lespeak-ng
#include <stdlib.h>
#include <espeak-ng/speak_lib.h>

int
espeak_say(const char *text, int rate, int volume)
{
	if (!text)
	{ return -1; }

	espeak_Initialize(AUDIO_OUTPUT_SYNCH_PLAYBACK, 500, NULL, 0);
	espeak_VOICE specs = { .languages = "en" };
	espeak_SetVoiceByProperties(&specs);

	if (rate > 0)
	{ espeak_SetParameter(espeakRATE, rate, 0); }
	if (volume >= 0)
	{ espeak_SetParameter(espeakVOLUME, volume, 0); }

	espeak_Synth(text, 500, 0, 0, 0, espeakCHARS_AUTO, NULL, NULL);
	espeak_Synchronize();
	espeak_Terminate();

	return 0;
}
*/
import "C"

import (
	"fmt"
	log "log/slog"
	"unsafe"
)

// Engine speaks text through espeak-ng. Rate is words per minute, Volume is
// 0.0 to 1.0; zero values keep the engine defaults.
type Engine struct {
	rate   int
	volume float64
}

func NewEngine(rate int, volume float64) *Engine {
	return &Engine{rate: rate, volume: volume}
}

// Say renders one utterance and blocks until playback finishes.
func (e *Engine) Say(text string) error {
	if text == "" {
		return nil
	}

	ctext := C.CString(text)
	defer C.free(unsafe.Pointer(ctext))

	rate := C.int(e.rate)
	volume := C.int(-1)
	if e.volume > 0 {
		// espeak amplitude runs 0..200 with 100 as the default.
		volume = C.int(e.volume * 200)
	}

	rc := C.espeak_say(ctext, rate, volume)
	if rc != 0 {
		return fmt.Errorf("espeak_say failed: %d", int(rc))
	}
	return nil
}

// Speak satisfies the command processor's Speaker interface: it logs the
// utterance and swallows synthesis errors so a broken audio path never
// crashes a command.
func (e *Engine) Speak(text string) {
	log.Info("speaking", "text", text)
	if err := e.Say(text); err != nil {
		log.Error("speech synthesis failed", "error", err)
	}
}
