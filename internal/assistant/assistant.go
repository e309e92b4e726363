// Package assistant runs the outer voice loop: wait for the wake word,
// capture a command, dispatch it, repeat.
package assistant

import (
	"context"
	log "log/slog"
	"strings"
	"time"

	"jarvis/internal/command"
)

// Listener is the speech-to-text collaborator. Empty text with a nil error
// means the timeout elapsed without usable speech.
type Listener interface {
	Listen(ctx context.Context, timeout, phraseLimit time.Duration) (string, error)
	ListenForWakeWord(ctx context.Context, word string, timeout time.Duration) (string, error)
}

// Ducker fades other playback streams down around a listening window.
type Ducker interface {
	Duck(ctx context.Context, factor float64, duration time.Duration) error
	Restore(ctx context.Context, duration time.Duration) error
}

// Chime plays the activation sound.
type Chime interface {
	PlayBestEffort()
}

const (
	wakeWindow    = 60 * time.Second
	commandWindow = 15 * time.Second
	duckFactor    = 0.25
	duckFade      = 300 * time.Millisecond
)

type Assistant struct {
	listener  Listener
	speaker   command.Speaker
	processor *command.Processor
	chime     Chime
	ducker    Ducker
	wakeWord  string
}

type Config struct {
	Listener  Listener
	Speaker   command.Speaker
	Processor *command.Processor
	Chime     Chime  // optional
	Ducker    Ducker // optional
	WakeWord  string
}

func New(cfg Config) *Assistant {
	wake := strings.ToLower(strings.TrimSpace(cfg.WakeWord))
	if wake == "" {
		wake = "jarvis"
	}
	return &Assistant{
		listener:  cfg.Listener,
		speaker:   cfg.Speaker,
		processor: cfg.Processor,
		chime:     cfg.Chime,
		ducker:    cfg.Ducker,
		wakeWord:  wake,
	}
}

// Run blocks in the wake loop until ctx is cancelled.
func (a *Assistant) Run(ctx context.Context) {
	a.speaker.Speak("Initializing JARVIS system. All systems are now online.")
	a.speaker.Speak("At your service, sir. Say my name followed by a command.")

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		log.Info("listening for wake word", "word", a.wakeWord)
		heard, err := a.listener.ListenForWakeWord(ctx, a.wakeWord, wakeWindow)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			log.Error("wake-word listening failed", "error", err)
			time.Sleep(time.Second)
			continue
		}
		if heard == "" {
			continue
		}

		if cmd := ExtractCommand(heard, a.wakeWord); cmd != "" {
			log.Info("wake word with command", "command", cmd)
			a.processor.Process(ctx, cmd)
			continue
		}

		log.Info("wake word detected, listening for command")
		cmd := a.captureCommand(ctx)
		if cmd == "" {
			a.speaker.Speak("I didn't catch that. Please try speaking clearly and a bit louder, or try direct mode with the --direct flag.")
			continue
		}
		a.processor.Process(ctx, cmd)
	}
}

// captureCommand plays the chime, ducks other audio and listens for one
// command window.
func (a *Assistant) captureCommand(ctx context.Context) string {
	if a.chime != nil {
		a.chime.PlayBestEffort()
	}
	if a.ducker != nil {
		if err := a.ducker.Duck(ctx, duckFactor, duckFade); err != nil {
			log.Debug("audio duck failed", "error", err)
		}
		defer func() {
			if err := a.ducker.Restore(ctx, duckFade); err != nil {
				log.Debug("audio restore failed", "error", err)
			}
		}()
	}

	cmd, err := a.listener.Listen(ctx, commandWindow, commandWindow)
	if err != nil {
		log.Error("command listening failed", "error", err)
		return ""
	}
	return cmd
}

// DirectMode answers up to n questions without requiring the wake word.
func (a *Assistant) DirectMode(ctx context.Context, n int) {
	a.speaker.Speak("Direct voice mode activated. I'll respond to your questions directly without requiring the wake word.")
	a.speaker.Speak("Please speak clearly after the beep. Say 'exit' to end this mode.")

	for i := 0; i < n; i++ {
		select {
		case <-ctx.Done():
			return
		default:
		}

		cmd := a.captureCommand(ctx)
		if cmd == "" {
			a.speaker.Speak("I didn't catch that. Let's try again. Please speak clearly and a bit louder.")
			continue
		}
		log.Info("direct command", "text", cmd)

		switch strings.ToLower(cmd) {
		case "exit", "quit", "stop", "goodbye":
			a.speaker.Speak("Exiting direct voice mode.")
			a.speaker.Speak("Direct voice mode completed. Returning to normal operation.")
			return
		}
		a.processor.Process(ctx, cmd)
		time.Sleep(2 * time.Second)
	}
	a.speaker.Speak("Direct voice mode completed. Returning to normal operation.")
}

// TestVoice runs one listen-and-repeat cycle to verify the audio path.
func (a *Assistant) TestVoice(ctx context.Context) bool {
	a.speaker.Speak("Starting voice recognition test. Please say something after the beep.")
	if a.chime != nil {
		a.chime.PlayBestEffort()
	}
	heard := a.captureCommand(ctx)
	if heard == "" {
		a.speaker.Speak("I couldn't hear or understand what you said. Please check your microphone settings and try again with direct mode.")
		return false
	}
	log.Info("voice test succeeded", "heard", heard)
	a.speaker.Speak("I heard: " + heard)
	return true
}

// ExtractCommand pulls the command part out of a wake-word activation. Text
// after the wake word becomes the command; a bare activation returns "".
// Text that somehow lacks the wake word is used whole.
func ExtractCommand(text, wakeWord string) string {
	text = strings.ToLower(strings.TrimSpace(text))
	wakeWord = strings.ToLower(wakeWord)
	if text == "" {
		return ""
	}

	idx := strings.Index(text, wakeWord)
	if idx < 0 {
		return text
	}
	rest := strings.TrimSpace(text[idx+len(wakeWord):])
	rest = strings.TrimLeft(rest, ",. ")
	return rest
}
