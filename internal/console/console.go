// Package console serves a websocket text console: each text frame is
// dispatched as if it had been spoken, and the resulting utterances are
// streamed back, one frame per line.
package console

import (
	"context"
	"errors"
	log "log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

// DispatchFunc routes one typed command and returns the lines the
// assistant would have spoken.
type DispatchFunc func(ctx context.Context, text string) []string

type Server struct {
	addr     string
	dispatch DispatchFunc
	httpSrv  *http.Server
	upgrader websocket.Upgrader
}

func NewServer(addr string, dispatch DispatchFunc) *Server {
	s := &Server{
		addr:     addr,
		dispatch: dispatch,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Loopback debugging tool, not an exposed surface.
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWS)
	s.httpSrv = &http.Server{Addr: addr, Handler: mux}
	return s
}

// Start serves in the background until Shutdown.
func (s *Server) Start() {
	go func() {
		log.Info("console listening", "addr", s.addr)
		if err := s.httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("console server failed", "error", err)
		}
	}()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpSrv.Shutdown(ctx)
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn("console upgrade failed", "error", err)
		return
	}
	defer conn.Close()
	log.Info("console client connected", "remote", conn.RemoteAddr())

	for {
		kind, msg, err := conn.ReadMessage()
		if err != nil {
			if !isClosed(err) {
				log.Warn("console read failed", "error", err)
			}
			return
		}
		if kind != websocket.TextMessage {
			continue
		}

		ctx, cancel := context.WithTimeout(r.Context(), time.Minute)
		lines := s.dispatch(ctx, string(msg))
		cancel()

		for _, line := range lines {
			if err := conn.WriteMessage(websocket.TextMessage, []byte(line)); err != nil {
				log.Warn("console write failed", "error", err)
				return
			}
		}
	}
}

func isClosed(err error) bool {
	return websocket.IsCloseError(err,
		websocket.CloseNormalClosure,
		websocket.CloseGoingAway,
		websocket.CloseAbnormalClosure)
}
