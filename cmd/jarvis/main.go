package main

import (
	"context"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	cli "github.com/spf13/pflag"

	"github.com/lmittmann/tint"
	log "log/slog"

	"jarvis/internal/assistant"
	"jarvis/internal/audio"
	"jarvis/internal/command"
	"jarvis/internal/console"
	"jarvis/internal/devices"
	"jarvis/internal/ipc"
	"jarvis/internal/knowledge"
	"jarvis/internal/notify"
	"jarvis/internal/security"
	"jarvis/internal/speech"
	"jarvis/internal/sysinfo"
	"jarvis/internal/system"
	"jarvis/internal/tts"
	"jarvis/pkg/audioconv"
)

var logLevelMap = map[string]log.Level{
	"debug": log.LevelDebug,
	"info":  log.LevelInfo,
	"warn":  log.LevelWarn,
	"error": log.LevelError,
}

func main() {
	envFile := cli.StringP("env", "e", ".env", "Env file path")
	logLevel := cli.StringP("log", "l", "info", "Log level")
	testMode := cli.BoolP("test", "t", false, "Run a single voice recognition test and exit")
	directMode := cli.BoolP("direct", "d", false, "Answer questions without the wake word")
	consoleAddr := cli.StringP("console", "c", "", "Debug websocket console address, e.g. localhost:8092")
	socketPath := cli.StringP("socket", "s", ipc.DefaultSocketPath, "Control socket path")
	cli.Parse()

	log.SetDefault(log.New(tint.NewHandler(os.Stdout, &tint.Options{
		Level: logLevelMap[*logLevel],
	})))

	log.Info("Booting up")

	godotenv.Load(*envFile)

	dataDir := os.Getenv("JARVIS_DATA_DIR")
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			log.Error("Failed to resolve home directory", "err", err)
			os.Exit(1)
		}
		dataDir = home + "/.jarvis"
	}

	sec, err := security.NewManager(dataDir)
	if err != nil {
		log.Error("Failed to init security manager", "err", err)
		os.Exit(1)
	}

	platform := system.Detect()
	sys, err := system.NewHandler(platform)
	if err != nil {
		log.Error("Failed to init system handler", "err", err)
		os.Exit(1)
	}

	analyzer := sysinfo.NewAnalyzer(platform)
	monitor := devices.NewMonitor(platform)

	know, err := knowledge.NewClient(os.Getenv("OPENAI_API_KEY"), os.Getenv("SOCKS_PROXY"))
	if err != nil {
		log.Error("Failed to init knowledge client", "err", err)
		os.Exit(1)
	}
	if !know.HasModel() {
		log.Warn("OPENAI_API_KEY not set, falling back to Wikipedia lookups only")
	}

	engine := tts.NewEngine(envInt("TTS_RATE", 175), envFloat("TTS_VOLUME", 1.0))

	rec := speech.NewRecorder(envInt("MIC_DEVICE", -1))
	if err := rec.Init(); err != nil {
		log.Error("Failed to init audio", "err", err)
		os.Exit(1)
	}
	defer rec.Close()

	modelPath := os.Getenv("WHISPER_MODEL")
	if modelPath == "" {
		modelPath = "third_party/whisper.cpp/models/ggml-base.en.bin"
	}
	whisper, err := speech.NewTranscriber(modelPath)
	if err != nil {
		log.Error("Failed to init whisper", "err", err)
		os.Exit(1)
	}
	defer whisper.Close()

	listener := speech.NewListener(rec, whisper)

	chime := notify.NewChime(envOr("JARVIS_CHIME", "assets/chime.mp3"))
	ducker := audio.NewDucker([]string{"jarvis", "espeak"}, 20)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	proc := command.NewProcessor(command.Config{
		Speaker:    engine,
		Prompter:   assistant.NewVoicePrompter(listener, engine, chime),
		System:     sys,
		Analyzer:   analyzer,
		Devices:    monitor,
		Security:   sec,
		Knowledge:  know,
		OnShutdown: cancel,
	})

	jarvis := assistant.New(assistant.Config{
		Listener:  listener,
		Speaker:   engine,
		Processor: proc,
		Chime:     chime,
		Ducker:    ducker,
		WakeWord:  envOr("WAKE_WORD", "jarvis"),
	})

	ctl, err := ipc.Serve(*socketPath, func(req ipc.Request) ipc.Reply {
		return handleControl(ctx, req, proc, whisper)
	})
	if err != nil {
		log.Error("Failed to start control socket", "err", err)
		os.Exit(1)
	}
	defer ctl.Close()

	if *consoleAddr != "" {
		dbg := console.NewServer(*consoleAddr, func(ctx context.Context, text string) []string {
			return dispatchCaptured(ctx, proc, text)
		})
		dbg.Start()
		defer dbg.Shutdown(context.Background())
		log.Info("Debug console listening", "addr", *consoleAddr)
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sig
		log.Info("Interrupt received")
		cancel()
	}()

	log.Info("Boot up - successful")

	switch {
	case *testMode:
		if !jarvis.TestVoice(ctx) {
			os.Exit(1)
		}
	case *directMode:
		jarvis.DirectMode(ctx, 5)
	default:
		jarvis.Run(ctx)
	}

	engine.Speak("Goodbye, sir.")
}

// handleControl answers one control-socket request. Inject and status run
// against a capture speaker so the reply carries the spoken lines.
func handleControl(ctx context.Context, req ipc.Request, proc *command.Processor, whisper *speech.Transcriber) ipc.Reply {
	switch req.Op {
	case ipc.OpInject:
		ctx, cancel := context.WithTimeout(ctx, time.Minute)
		defer cancel()
		return ipc.Reply{OK: true, Lines: dispatchCaptured(ctx, proc, req.Text)}

	case ipc.OpTranscribe:
		pcm, err := audioconv.DecodeFile(req.Path, 0)
		if err != nil {
			return ipc.Reply{Error: err.Error()}
		}
		ctx, cancel := context.WithTimeout(ctx, time.Minute)
		defer cancel()
		text, err := whisper.Transcribe(ctx, pcm)
		if err != nil {
			return ipc.Reply{Error: err.Error()}
		}
		return ipc.Reply{OK: true, Lines: []string{text}}

	case ipc.OpStatus:
		return ipc.Reply{OK: true, Lines: []string{"running"}}

	default:
		return ipc.Reply{Error: "unknown operation: " + req.Op}
	}
}

// captureSpeaker collects utterances instead of voicing them.
type captureSpeaker struct {
	lines []string
}

func (s *captureSpeaker) Speak(text string) { s.lines = append(s.lines, text) }

// dispatchCaptured runs text through a processor clone that records its
// utterances. The clone shares all collaborators with the live processor.
func dispatchCaptured(ctx context.Context, proc *command.Processor, text string) []string {
	sp := &captureSpeaker{}
	proc.WithSpeaker(sp).Process(ctx, text)
	return sp.lines
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Warn("Invalid integer in environment", "key", key, "value", v)
		return fallback
	}
	return n
}

func envFloat(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		log.Warn("Invalid number in environment", "key", key, "value", v)
		return fallback
	}
	return f
}
