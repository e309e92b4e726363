package command

import (
	"context"
	log "log/slog"
	"math/rand"
	"regexp"
	"strings"
	"sync"

	"jarvis/internal/devices"
	"jarvis/internal/knowledge"
	"jarvis/internal/security"
	"jarvis/internal/sysinfo"
	"jarvis/internal/system"
)

// Speaker renders utterances aloud, one line at a time.
type Speaker interface {
	Speak(text string)
}

// Prompter collects an answer from the user mid-command. The voice
// implementation speaks the question and listens; a console one reads a
// line. Destructive handlers refuse to act without a positive Confirm.
type Prompter interface {
	Confirm(question string) bool
	Ask(question string) (string, bool)
}

// HandlerFunc processes one matched command. text is the normalized input,
// caps the regex captures.
type HandlerFunc func(ctx context.Context, text string, caps Captures)

// Rule binds one command shape to its handler. The table is an ordered
// slice and the first matching rule wins.
type Rule struct {
	Pattern *regexp.Regexp
	Handle  HandlerFunc
}

// Captures holds the positional and named capture groups of a rule match.
// Absent groups are empty strings.
type Captures struct {
	positional []string
	named      map[string]string
}

// Get returns the trimmed named capture, or "" when the group is absent.
func (c Captures) Get(name string) string {
	return strings.TrimSpace(c.named[name])
}

// Has reports whether a named capture matched non-empty text.
func (c Captures) Has(name string) bool { return c.Get(name) != "" }

// Positional returns the trimmed i-th unnamed capture (0-based), or "".
func (c Captures) Positional(i int) string {
	if i < 0 || i >= len(c.positional) {
		return ""
	}
	return strings.TrimSpace(c.positional[i])
}

// Processor owns the pattern table and every collaborator the handlers
// reach for. Any collaborator may be nil; the affected handlers then speak
// a fixed unavailability line instead.
type Processor struct {
	speaker  Speaker
	prompter Prompter

	system    *system.Handler
	analyzer  *sysinfo.Analyzer
	devices   *devices.Monitor
	security  *security.Manager
	knowledge *knowledge.Client

	onShutdown func()
	rng        *rand.Rand

	// mu serializes dispatch and is shared by every WithSpeaker clone, so
	// injected commands cannot interleave with the voice loop.
	mu    *sync.Mutex
	rules []Rule
}

// Config wires the processor's collaborators. Speaker is mandatory;
// everything else degrades gracefully when nil.
type Config struct {
	Speaker   Speaker
	Prompter  Prompter
	System    *system.Handler
	Analyzer  *sysinfo.Analyzer
	Devices   *devices.Monitor
	Security  *security.Manager
	Knowledge *knowledge.Client

	// OnShutdown is called when the user asks to exit, after the farewell
	// has been spoken.
	OnShutdown func()

	// Seed fixes the pseudo-random canned-response choice. Zero means a
	// time-derived seed.
	Seed int64
}

func NewProcessor(cfg Config) *Processor {
	p := &Processor{
		speaker:    cfg.Speaker,
		prompter:   cfg.Prompter,
		system:     cfg.System,
		analyzer:   cfg.Analyzer,
		devices:    cfg.Devices,
		security:   cfg.Security,
		knowledge:  cfg.Knowledge,
		onShutdown: cfg.OnShutdown,
		mu:         &sync.Mutex{},
	}
	if cfg.Seed != 0 {
		p.rng = rand.New(rand.NewSource(cfg.Seed))
	} else {
		p.rng = rand.New(rand.NewSource(rand.Int63()))
	}
	p.rules = p.buildRules()
	log.Info("command processor ready", "rules", len(p.rules))
	return p
}

// WithSpeaker returns a processor that shares this one's collaborators but
// routes utterances to s. The control socket and the debug console use it to
// capture replies instead of voicing them.
func (p *Processor) WithSpeaker(s Speaker) *Processor {
	clone := &Processor{
		speaker:    s,
		prompter:   p.prompter,
		system:     p.system,
		analyzer:   p.analyzer,
		devices:    p.devices,
		security:   p.security,
		knowledge:  p.knowledge,
		onShutdown: p.onShutdown,
		rng:        rand.New(rand.NewSource(rand.Int63())),
		mu:         p.mu,
	}
	clone.rules = clone.buildRules()
	return clone
}

func (p *Processor) say(text string) {
	if p.speaker != nil {
		p.speaker.Speak(text)
	}
}

func (p *Processor) pick(options []string) string {
	return options[p.rng.Intn(len(options))]
}

// Process routes one utterance: normalize, scan the table in order, run the
// first matching handler. A panicking handler is converted into a spoken
// apology; the loop never dies on a bad command. Commands are serialized so
// console injection cannot interleave with the voice loop.
func (p *Processor) Process(ctx context.Context, text string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	text = strings.ToLower(strings.TrimSpace(text))
	if text == "" {
		p.say("I didn't catch that. Can you please repeat?")
		return
	}
	log.Debug("processing command", "text", text)

	for _, rule := range p.rules {
		m := rule.Pattern.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		log.Info("command matched", "pattern", rule.Pattern.String())
		p.run(ctx, rule, text, newCaptures(rule.Pattern, m))
		return
	}

	// Unreachable while the catch-all stays last, kept as a guard.
	p.say("I'm sorry, I don't understand that command.")
	log.Warn("no matching pattern", "text", text)
}

func (p *Processor) run(ctx context.Context, rule Rule, text string, caps Captures) {
	defer func() {
		if r := recover(); r != nil {
			log.Error("handler panicked", "pattern", rule.Pattern.String(), "panic", r)
			p.say("I encountered an error while processing that command.")
		}
	}()
	rule.Handle(ctx, text, caps)
}

func newCaptures(re *regexp.Regexp, match []string) Captures {
	caps := Captures{named: make(map[string]string)}
	for i, name := range re.SubexpNames() {
		if i == 0 {
			continue
		}
		if name != "" {
			caps.named[name] = match[i]
		} else {
			caps.positional = append(caps.positional, match[i])
		}
	}
	return caps
}

// mustPattern compiles a table pattern: case-insensitive, anchored at the
// start of the input.
func mustPattern(expr string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)^(?:` + expr + `)`)
}
