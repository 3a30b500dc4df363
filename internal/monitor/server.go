package monitor

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/GriffinCanCode/sepia/internal/recorder"
	"github.com/GriffinCanCode/sepia/internal/trace"
)

// Feed is the read side of the recorder's journal.
type Feed interface {
	Recent(n int) []recorder.Entry
	Counts() recorder.Counts
	Baselines() map[string]string
	Events() <-chan recorder.Entry
}

// Message types.
type Message struct {
	Type string `json:"type"`
}

type DecisionMessage struct {
	Type string `json:"type"`
	recorder.Entry
}

type RecentMessage struct {
	Type    string           `json:"type"`
	Entries []recorder.Entry `json:"entries"`
}

type ErrorMessage struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// Status is the /api/status response body.
type Status struct {
	Session   string            `json:"session"`
	Uptime    string            `json:"uptime"`
	Counts    recorder.Counts   `json:"counts"`
	Baselines map[string]string `json:"baselines"`
	Recent    []recorder.Entry  `json:"recent"`
}

// rateLimiter tracks message timestamps using a sliding window.
type rateLimiter struct {
	timestamps []time.Time
	mu         sync.Mutex
}

// allow checks if a message is allowed and records the timestamp if so.
func (r *rateLimiter) allow(now time.Time) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	cutoff := now.Add(-RateLimitWindow)
	valid := r.timestamps[:0]
	for _, t := range r.timestamps {
		if t.After(cutoff) {
			valid = append(valid, t)
		}
	}
	r.timestamps = valid

	if len(r.timestamps) >= RateLimitMessages {
		return false
	}
	r.timestamps = append(r.timestamps, now)
	return true
}

// Server handles HTTP and WebSocket connections.
type Server struct {
	feed    Feed
	session string
	started time.Time
	mu      sync.RWMutex
	conns   map[*websocket.Conn]*rateLimiter
	done    chan struct{} // closed when the feed's event stream ends
}

// New creates a server and starts broadcasting feed events to clients until
// the feed's event channel is closed.
func New(feed Feed, session string) *Server {
	s := &Server{
		feed:    feed,
		session: session,
		started: time.Now(),
		conns:   make(map[*websocket.Conn]*rateLimiter),
		done:    make(chan struct{}),
	}
	go s.broadcastDecisions()
	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWebSocket)
	mux.HandleFunc("GET /api/status", s.handleStatus)

	// trace -> CORS
	return corsMiddleware(trace.Middleware(mux))
}

// Serve listens on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Serve(ctx context.Context, addr string) error {
	httpServer := &http.Server{
		Addr:         addr,
		Handler:      s.Handler(),
		ReadTimeout:  ReadTimeout,
		WriteTimeout: WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		trace.Logger(ctx).Info("monitor listening", "addr", addr)
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "*")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(Status{
		Session:   s.session,
		Uptime:    time.Since(s.started).Round(time.Second).String(),
		Counts:    s.feed.Counts(),
		Baselines: s.feed.Baselines(),
		Recent:    s.feed.Recent(RecentLimit),
	})
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		trace.Logger(r.Context()).Error("websocket accept error", "error", err)
		return
	}
	defer func() { _ = conn.Close(websocket.StatusNormalClosure, "") }()

	rl := &rateLimiter{}
	s.mu.Lock()
	s.conns[conn] = rl
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		delete(s.conns, conn)
		s.mu.Unlock()
	}()

	ctx := r.Context()
	log := trace.Logger(ctx)
	log.Info("websocket connected", "remote", r.RemoteAddr)

	for {
		var msg Message
		if err := wsjson.Read(ctx, conn, &msg); err != nil {
			log.Debug("websocket read error", "error", err)
			return
		}

		if !rl.allow(time.Now()) {
			log.Warn("rate limit exceeded", "remote", r.RemoteAddr)
			_ = wsjson.Write(ctx, conn, ErrorMessage{Type: "error", Message: "rate limit exceeded"})
			continue
		}

		switch msg.Type {
		case "recent":
			_ = wsjson.Write(ctx, conn, RecentMessage{Type: "recent", Entries: s.feed.Recent(RecentLimit)})
		default:
			_ = wsjson.Write(ctx, conn, ErrorMessage{Type: "error", Message: "unknown message type"})
		}
	}
}

// broadcastDecisions runs until the feed closes its event channel.
func (s *Server) broadcastDecisions() {
	defer close(s.done)
	for e := range s.feed.Events() {
		msg := DecisionMessage{Type: "decision", Entry: e}

		s.mu.RLock()
		for conn := range s.conns {
			go func(c *websocket.Conn) {
				ctx, cancel := context.WithTimeout(context.Background(), BroadcastTimeout)
				defer cancel()
				_ = wsjson.Write(ctx, c, msg)
			}(conn)
		}
		s.mu.RUnlock()
	}
}
