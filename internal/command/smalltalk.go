package command

import (
	"context"
	log "log/slog"
	"strings"
	"time"
)

func (p *Processor) timeDate(_ context.Context, text string, _ Captures) {
	now := time.Now()
	if strings.Contains(text, "time") {
		p.say("The current time is " + now.Format("3:04 PM"))
	} else {
		p.say("Today is " + now.Format("Monday, January 2, 2006"))
	}
}

func (p *Processor) weather(_ context.Context, _ string, caps Captures) {
	location := caps.Get("location")
	if location == "" {
		p.say("For which location would you like the weather?")
		return
	}
	p.say("I'm sorry, I don't have access to current weather data for " + location +
		". You would need to integrate a weather API for this functionality.")
}

func (p *Processor) answerQuestion(ctx context.Context, text string, _ Captures) {
	if p.knowledge == nil {
		p.say("I'm sorry, I don't have an answer for that question right now. Please try asking something else.")
		return
	}
	answer, err := p.knowledge.Answer(ctx, text)
	if err != nil {
		log.Warn("question answering failed", "error", err)
		p.say("I'm sorry, I don't have an answer for that question right now. Please try asking something else.")
		return
	}
	p.say(answer)
}

func (p *Processor) shutdown(_ context.Context, _ string, _ Captures) {
	p.say("Shutting down. Goodbye, sir.")
	if p.onShutdown != nil {
		p.onShutdown()
	}
}

func (p *Processor) introduceSelf(_ context.Context, _ string, _ Captures) {
	p.say("I am JARVIS, a virtual assistant inspired by Tony Stark's AI in the Iron Man films. " +
		"I'm here to assist you with information, answer questions, and help with various tasks.")
}

func (p *Processor) moodResponse(_ context.Context, _ string, _ Captures) {
	p.say(p.pick([]string{
		"I'm functioning within normal parameters, thank you for asking.",
		"All systems are operating at optimal efficiency.",
		"I'm doing well, sir. How can I assist you today?",
		"I'm operating at peak performance levels.",
	}))
}

func (p *Processor) youreWelcome(_ context.Context, _ string, _ Captures) {
	p.say(p.pick([]string{
		"You're welcome, sir.",
		"Happy to be of service.",
		"At your service, sir.",
		"It's my pleasure.",
	}))
}

func (p *Processor) helpCommand(_ context.Context, _ string, _ Captures) {
	for _, line := range []string{
		"I can help you with various tasks. Here are some things you can ask me.",
		"For time and date: what time is it, or what's today's date.",
		"For information: who is Albert Einstein, or tell me about quantum physics.",
		"For system operations: open an application, create a file called notes.txt, create a folder called projects, or run command followed by a shell command.",
		"For system analysis: tell me about my computer, what's my CPU info, what processes are running, or analyze files in a directory.",
		"For device monitoring: what devices are connected, tell me about my monitors, or scan for new devices.",
		"For security and privacy: show privacy settings, enable or disable a data collection setting, add sensitive directory, show data access log, or clear all my data.",
		"You can also ask about myself: who are you, or how are you today.",
		"To exit, simply say goodbye or exit.",
	} {
		p.say(line)
	}
}

var operationKeywords = []string{
	"create", "make", "open", "launch", "start", "run", "execute",
	"delete", "remove", "folder", "directory", "file",
}

// defaultResponse is the catch-all. It first tries to salvage a system
// operation phrased in a way the table missed, then falls back to the
// language model, then to a canned reply.
func (p *Processor) defaultResponse(ctx context.Context, text string, _ Captures) {
	if containsAny(text, operationKeywords) {
		if p.salvageOperation(ctx, text) {
			return
		}
	}

	if p.knowledge != nil && p.knowledge.HasModel() {
		if answer, err := p.knowledge.Answer(ctx, text); err == nil {
			p.say(answer)
			return
		}
	}

	p.say(p.pick([]string{
		"I'm not sure how to help with that. Try asking about the time, weather, or for general information.",
		"I don't understand that command. Say 'help' for a list of things I can do.",
		"Could you please rephrase that?",
		"I'm afraid I don't have a response for that.",
		"I'm still learning. I don't know how to respond to that yet.",
	}))
}

// salvageOperation handles near-miss operation phrasings. Returns true when
// it produced a response.
func (p *Processor) salvageOperation(ctx context.Context, text string) bool {
	mentionsDir := containsAny(text, []string{"folder", "directory", "dir"})

	switch {
	case mentionsDir && containsAny(text, []string{"create", "make"}):
		p.createDirectoryPrompt(ctx, text, Captures{})
		return true
	case mentionsDir && containsAny(text, []string{"delete", "remove"}):
		p.say("Please specify the name of the directory you want to delete.")
		return true
	case mentionsDir && containsAny(text, []string{"update", "rename"}):
		p.say("Please specify the name of the directory you want to update or rename.")
		return true
	case mentionsDir && strings.Contains(text, "insert"):
		p.say("Please specify the directory where you want to insert a file.")
		return true
	case strings.Contains(text, "file") && containsAny(text, []string{"create", "make"}):
		p.say("Please specify a name for the file you want to create.")
		return true
	}

	for _, keyword := range []string{"open", "launch", "start", "run"} {
		if idx := strings.Index(text, keyword); idx >= 0 {
			rest := strings.TrimSpace(text[idx+len(keyword):])
			if rest != "" {
				p.launchApplication(rest, nil)
				return true
			}
		}
	}
	return false
}

func containsAny(text string, words []string) bool {
	for _, w := range words {
		if strings.Contains(text, w) {
			return true
		}
	}
	return false
}
