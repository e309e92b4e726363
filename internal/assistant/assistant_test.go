package assistant

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestExtractCommand(t *testing.T) {
	cases := map[string]string{
		"jarvis what time is it":     "what time is it",
		"jarvis, what time is it":    "what time is it",
		"hey jarvis open firefox":    "open firefox",
		"jarvis":                     "",
		"jarvis.":                    "",
		"JARVIS CREATE FOLDER notes": "create folder notes",
		"what time is it":            "what time is it",
		"":                           "",
	}
	for input, want := range cases {
		assert.Equal(t, want, ExtractCommand(input, "jarvis"), "input %q", input)
	}
}

type scriptedListener struct {
	answers []string
	calls   int
}

func (l *scriptedListener) Listen(_ context.Context, _, _ time.Duration) (string, error) {
	if l.calls >= len(l.answers) {
		return "", nil
	}
	answer := l.answers[l.calls]
	l.calls++
	return answer, nil
}

func (l *scriptedListener) ListenForWakeWord(_ context.Context, _ string, _ time.Duration) (string, error) {
	return "", nil
}

type recordingSpeaker struct {
	lines []string
}

func (s *recordingSpeaker) Speak(text string) {
	s.lines = append(s.lines, text)
}

func TestVoicePrompterConfirm(t *testing.T) {
	cases := map[string]bool{
		"yes":         true,
		"yes please":  true,
		"yeah":        true,
		"go ahead":    true,
		"no":          false,
		"never":       false,
		"maybe later": false,
	}
	for answer, want := range cases {
		speaker := &recordingSpeaker{}
		p := NewVoicePrompter(&scriptedListener{answers: []string{answer}}, speaker, nil)
		assert.Equal(t, want, p.Confirm("Delete the file?"), "answer %q", answer)
		assert.Len(t, speaker.lines, 1)
		assert.Contains(t, speaker.lines[0], "yes to confirm")
	}
}

func TestVoicePrompterConfirmSilence(t *testing.T) {
	p := NewVoicePrompter(&scriptedListener{}, &recordingSpeaker{}, nil)
	assert.False(t, p.Confirm("Delete the file?"))
}

func TestVoicePrompterAsk(t *testing.T) {
	p := NewVoicePrompter(&scriptedListener{answers: []string{"notes.txt"}}, &recordingSpeaker{}, nil)
	answer, ok := p.Ask("What should the file be called?")
	assert.True(t, ok)
	assert.Equal(t, "notes.txt", answer)

	_, ok = p.Ask("Anything else?")
	assert.False(t, ok)
}
