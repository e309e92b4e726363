package speech

import (
	"context"
	log "log/slog"
	"regexp"
	"strings"
	"time"
)

// Listener combines the recorder and the transcriber into the two blocking
// calls the assistant loop needs: one-shot command capture and wake-word
// watching.
type Listener struct {
	rec *Recorder
	tr  *Transcriber
}

func NewListener(rec *Recorder, tr *Transcriber) *Listener {
	return &Listener{rec: rec, tr: tr}
}

// Listen captures one utterance and transcribes it. An empty string with a
// nil error means nothing usable was heard before the timeout.
func (l *Listener) Listen(ctx context.Context, timeout, phraseLimit time.Duration) (string, error) {
	pcm, err := l.rec.Record(timeout, phraseLimit)
	if err != nil {
		return "", err
	}
	if len(pcm) == 0 {
		log.Debug("listen timeout, no speech detected")
		return "", nil
	}

	raw, err := l.tr.Transcribe(ctx, pcm)
	if err != nil {
		return "", err
	}
	text := normalizeTranscript(raw)
	log.Info("recognized", "text", text)
	return text, nil
}

// ListenForWakeWord listens in short phrases until one contains the wake
// word, then returns the full heard text so any trailing command can be
// extracted. Empty string means the timeout elapsed without a detection.
func (l *Listener) ListenForWakeWord(ctx context.Context, word string, timeout time.Duration) (string, error) {
	deadline := time.Now().Add(timeout)
	word = strings.ToLower(word)

	for time.Now().Before(deadline) {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		default:
		}

		remaining := time.Until(deadline)
		window := 5 * time.Second
		if remaining < window {
			window = remaining
		}

		text, err := l.Listen(ctx, window, 5*time.Second)
		if err != nil {
			log.Error("wake-word listening failed", "error", err)
			time.Sleep(time.Second)
			continue
		}
		if text == "" {
			continue
		}
		log.Debug("heard", "text", text)
		if matchesWakeWord(text, word) {
			log.Info("wake word detected", "text", text)
			return text, nil
		}
	}
	return "", nil
}

// matchesWakeWord accepts exact containment, and for wake words longer than
// three runes also a match on the first four runes. Transcription tends to
// mangle word endings.
func matchesWakeWord(text, word string) bool {
	text = strings.ToLower(text)
	word = strings.ToLower(word)
	if word == "" {
		return false
	}
	if strings.Contains(text, word) {
		return true
	}
	runes := []rune(word)
	if len(runes) > 3 && strings.Contains(text, string(runes[:4])) {
		return true
	}
	return false
}

var annotationRe = regexp.MustCompile(`[\[(][^\])]*[\])]`)

// normalizeTranscript strips whisper's non-speech annotations (such as
// "[BLANK_AUDIO]" or "(wind blowing)"), trailing punctuation and extra
// whitespace, and lower-cases the result.
func normalizeTranscript(s string) string {
	s = annotationRe.ReplaceAllString(s, " ")
	s = strings.ToLower(s)
	s = strings.Trim(s, " \t\n.,!?")
	return strings.Join(strings.Fields(s), " ")
}
