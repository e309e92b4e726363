// Command jarvis-ctl talks to a running assistant over its control socket.
//
//	jarvis-ctl inject "what time is it"
//	jarvis-ctl transcribe recording.wav
//	jarvis-ctl status
package main

import (
	"fmt"
	"os"

	cli "github.com/spf13/pflag"

	"jarvis/internal/ipc"
)

func main() {
	socketPath := cli.StringP("socket", "s", ipc.DefaultSocketPath, "Control socket path")
	cli.Parse()

	args := cli.Args()
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "usage: jarvis-ctl [--socket path] inject <text> | transcribe <file> | status")
		os.Exit(2)
	}

	var req ipc.Request
	switch args[0] {
	case "inject":
		if len(args) < 2 {
			fmt.Fprintln(os.Stderr, "inject needs the command text")
			os.Exit(2)
		}
		req = ipc.Request{Op: ipc.OpInject, Text: args[1]}
	case "transcribe":
		if len(args) < 2 {
			fmt.Fprintln(os.Stderr, "transcribe needs an audio file")
			os.Exit(2)
		}
		req = ipc.Request{Op: ipc.OpTranscribe, Path: args[1]}
	case "status":
		req = ipc.Request{Op: ipc.OpStatus}
	default:
		fmt.Fprintln(os.Stderr, "unknown subcommand:", args[0])
		os.Exit(2)
	}

	reply, err := ipc.Send(*socketPath, req)
	if err != nil {
		fmt.Fprintln(os.Stderr, "jarvis not running:", err)
		os.Exit(1)
	}
	if reply.Error != "" {
		fmt.Fprintln(os.Stderr, "error:", reply.Error)
		os.Exit(1)
	}
	for _, line := range reply.Lines {
		fmt.Println(line)
	}
}
