// Package livereload pushes stylesheet changes to browsers speaking the
// LiveReload protocol over a websocket.
package livereload

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/go-logr/logr"
	"github.com/gorilla/websocket"

	"github.com/yacobolo/cssbuild"
)

// DefaultAddr is the port LiveReload browser extensions connect to.
const DefaultAddr = ":35729"

const protocolOfficial7 = "http://livereload.com/protocols/official-7"

// message is a LiveReload protocol frame.
type message struct {
	Command    string   `json:"command"`
	Protocols  []string `json:"protocols,omitempty"`
	ServerName string   `json:"serverName,omitempty"`
	Path       string   `json:"path,omitempty"`
	LiveCSS    bool     `json:"liveCSS,omitempty"`
}

// Server implements cssbuild.Syncer by broadcasting reload commands.
type Server struct {
	addr     string
	cwd      string
	log      logr.Logger
	hub      *hub
	upgrader websocket.Upgrader
}

// New creates a server; written paths are reported relative to cwd.
func New(addr, cwd string, log logr.Logger) *Server {
	if addr == "" {
		addr = DefaultAddr
	}
	return &Server{
		addr: addr,
		cwd:  cwd,
		log:  log,
		hub:  newHub(log),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// Handler serves the websocket endpoint.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/livereload", s.handleWS)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		_, _ = fmt.Fprint(w, "ok")
	})
	return mux
}

// Run listens until ctx is done.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{Addr: s.addr, Handler: s.Handler(), ReadHeaderTimeout: 10 * time.Second}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		s.hub.Close()
	}()
	s.log.Info("livereload listening", "addr", s.addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Sync tells connected browsers to reload path when it matches opts.Match.
func (s *Server) Sync(_ context.Context, opts cssbuild.SyncOptions, path string) error {
	rel := path
	if filepath.IsAbs(path) && s.cwd != "" {
		if r, err := filepath.Rel(s.cwd, path); err == nil {
			rel = r
		}
	}
	rel = filepath.ToSlash(rel)

	if opts.Match != "" {
		ok, err := doublestar.Match(opts.Match, rel)
		if err != nil {
			return fmt.Errorf("match %s: %w", opts.Match, err)
		}
		if !ok {
			return nil
		}
	}

	payload, err := json.Marshal(message{Command: "reload", Path: "/" + rel, LiveCSS: true})
	if err != nil {
		return err
	}
	s.log.V(1).Info("reload", "path", rel, "clients", s.hub.Len())
	s.hub.Broadcast(payload)
	return nil
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Error(err, "upgrade livereload websocket")
		return
	}
	c := newClient(conn, s.log)
	s.hub.Register(c)
	go c.writeLoop()
	c.readLoop(s.handleMessage, func() {
		s.hub.Unregister(c)
	})
}

// handleMessage answers the protocol handshake.
func (s *Server) handleMessage(c *client, data []byte) {
	var msg message
	if err := json.Unmarshal(data, &msg); err != nil {
		return
	}
	if msg.Command != "hello" {
		return
	}
	reply, err := json.Marshal(message{
		Command:    "hello",
		Protocols:  []string{protocolOfficial7},
		ServerName: "cssbuild",
	})
	if err != nil {
		return
	}
	c.trySend(reply)
}

// Nop is a syncer that does nothing.
type Nop struct{}

// Sync does nothing.
func (Nop) Sync(context.Context, cssbuild.SyncOptions, string) error {
	return nil
}
