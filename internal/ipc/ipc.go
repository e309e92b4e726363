// Package ipc exposes a unix-socket control channel: a running assistant
// accepts one JSON request per connection and answers with the utterances
// the command produced.
package ipc

import (
	"encoding/json"
	"fmt"
	log "log/slog"
	"net"
	"os"
	"time"
)

const DefaultSocketPath = "/tmp/jarvis.sock"

// Request operations.
const (
	OpInject     = "inject"     // dispatch Text as a spoken command
	OpTranscribe = "transcribe" // transcribe the audio file at Path
	OpStatus     = "status"     // report loop state
)

type Request struct {
	Op   string `json:"op"`
	Text string `json:"text,omitempty"`
	Path string `json:"path,omitempty"`
}

type Reply struct {
	OK    bool     `json:"ok"`
	Lines []string `json:"lines,omitempty"`
	Error string   `json:"error,omitempty"`
}

// Server answers control requests over a unix socket.
type Server struct {
	path string
	ln   net.Listener
}

// Serve binds the socket and handles requests until Close. handler runs on
// the connection goroutine; it must be safe for concurrent use.
func Serve(path string, handler func(Request) Reply) (*Server, error) {
	if path == "" {
		path = DefaultSocketPath
	}
	os.Remove(path)

	ln, err := net.Listen("unix", path)
	if err != nil {
		return nil, fmt.Errorf("listen %s: %w", path, err)
	}
	s := &Server{path: path, ln: ln}

	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			go s.handleConn(conn, handler)
		}
	}()

	log.Info("control socket ready", "path", path)
	return s, nil
}

func (s *Server) handleConn(conn net.Conn, handler func(Request) Reply) {
	defer conn.Close()

	var req Request
	if err := json.NewDecoder(conn).Decode(&req); err != nil {
		log.Warn("bad control request", "error", err)
		return
	}
	reply := handler(req)
	if err := json.NewEncoder(conn).Encode(reply); err != nil {
		log.Warn("control reply failed", "error", err)
	}
}

func (s *Server) Close() error {
	err := s.ln.Close()
	os.Remove(s.path)
	return err
}

// Send connects to a running assistant, submits one request and waits for
// the reply.
func Send(path string, req Request) (Reply, error) {
	if path == "" {
		path = DefaultSocketPath
	}
	conn, err := net.DialTimeout("unix", path, 3*time.Second)
	if err != nil {
		return Reply{}, fmt.Errorf("dial %s: %w", path, err)
	}
	defer conn.Close()

	if err := json.NewEncoder(conn).Encode(req); err != nil {
		return Reply{}, fmt.Errorf("send request: %w", err)
	}
	var reply Reply
	if err := json.NewDecoder(conn).Decode(&reply); err != nil {
		return Reply{}, fmt.Errorf("read reply: %w", err)
	}
	return reply, nil
}
