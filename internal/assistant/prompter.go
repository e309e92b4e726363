package assistant

import (
	"context"
	log "log/slog"
	"strings"
	"time"

	"jarvis/internal/command"
)

const answerWindow = 10 * time.Second

// VoicePrompter asks follow-up questions over the speaker and interprets the
// spoken answers.
type VoicePrompter struct {
	listener Listener
	speaker  command.Speaker
	chime    Chime
}

var _ command.Prompter = (*VoicePrompter)(nil)

func NewVoicePrompter(listener Listener, speaker command.Speaker, chime Chime) *VoicePrompter {
	return &VoicePrompter{listener: listener, speaker: speaker, chime: chime}
}

// Confirm speaks the question and waits for a yes or a no. Anything else,
// including silence, counts as a no.
func (p *VoicePrompter) Confirm(question string) bool {
	answer, ok := p.hear(question + " Say yes to confirm or no to cancel.")
	if !ok {
		return false
	}
	log.Info("confirmation answer", "text", answer)
	return isAffirmative(answer)
}

// Ask speaks the question and returns the spoken answer. ok is false when
// nothing usable was heard.
func (p *VoicePrompter) Ask(question string) (string, bool) {
	answer, ok := p.hear(question)
	if !ok || answer == "" {
		return "", false
	}
	return answer, true
}

func (p *VoicePrompter) hear(question string) (string, bool) {
	p.speaker.Speak(question)
	if p.chime != nil {
		p.chime.PlayBestEffort()
	}
	answer, err := p.listener.Listen(context.Background(), answerWindow, answerWindow)
	if err != nil {
		log.Error("prompt listening failed", "error", err)
		return "", false
	}
	return strings.TrimSpace(answer), answer != ""
}

func isAffirmative(answer string) bool {
	answer = strings.ToLower(answer)
	for _, word := range []string{"yes", "yeah", "yep", "sure", "confirm", "affirmative", "go ahead", "do it"} {
		if strings.Contains(answer, word) {
			return true
		}
	}
	return false
}
