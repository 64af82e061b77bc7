// Package observer streams the simulation to websocket clients, so a run can be watched from
// elsewhere (a browser, another terminal) while it progresses. Each published tick is sent as
// a JSON encoded Frame. Only loopback clients are accepted.
//
// Observers are read-only: nothing they send is interpreted.
package observer

import (
	"encoding/json"
	"github.com/gorilla/websocket"
	"github.com/janpfeifer/hexants/internal/state"
	"github.com/janpfeifer/hexants/internal/ui/cli"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
	"net"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

const (
	// QueueSize of frames pending for each observer: if an observer lags further behind,
	// frames are dropped for it.
	QueueSize = 8

	writeTimeout = 5 * time.Second
)

// Frame is the message sent to the observers for each published tick.
type Frame struct {
	Tick        int `json:"tick"`
	TargetTicks int `json:"target_ticks"`
	Width       int `json:"width"`
	Height      int `json:"height"`

	// Rows of the board, rendered as text without colors (see cli.UI.RenderBoard).
	Rows  []string         `json:"rows"`
	Stats state.BoardStats `json:"stats"`
}

// Server keeps the last published frame and broadcasts new ones to the connected observers.
type Server struct {
	upgrader websocket.Upgrader
	ui       *cli.UI
	nextID   atomic.Uint64

	mu      sync.Mutex
	last    []byte
	clients map[uint64]chan []byte
	closed  bool
}

// NewServer creates a Server with no frames published yet.
func NewServer() *Server {
	return &Server{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4 * 1024,
			WriteBufferSize: 64 * 1024,
			CheckOrigin:     func(r *http.Request) bool { return true }, // Loopback only anyway.
		},
		ui:      cli.New(false, false),
		clients: make(map[uint64]chan []byte),
	}
}

// Handler serves the websocket at "/ws" and the last frame, as plain JSON, at "/frame".
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.WSHandler())
	mux.HandleFunc("/frame", s.FrameHandler())
	return mux
}

// Publish renders the board and sends it to all observers. The board is only read.
func (s *Server) Publish(board *state.Board, targetTicks int) error {
	frame := Frame{
		Tick:        board.TickNumber,
		TargetTicks: targetTicks,
		Width:       board.Width(),
		Height:      board.Height(),
		Rows:        strings.Split(strings.TrimSuffix(s.ui.RenderBoard(board), "\n"), "\n"),
		Stats:       board.Stats(),
	}
	msg, err := json.Marshal(frame)
	if err != nil {
		return errors.Wrapf(err, "failed to encode frame for tick %d", frame.Tick)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.last = msg
	for id, out := range s.clients {
		select {
		case out <- msg:
		default:
			klog.V(2).Infof("Observer #%d lagging behind, frame for tick %d dropped", id, frame.Tick)
		}
	}
	return nil
}

// NumClients returns the number of connected observers.
func (s *Server) NumClients() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.clients)
}

// Close disconnects all observers, and refuses new ones.
func (s *Server) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	for id, out := range s.clients {
		close(out)
		delete(s.clients, id)
	}
}

// join registers a new observer, with the last frame (if any) already queued.
func (s *Server) join() (id uint64, out chan []byte) {
	id = s.nextID.Add(1)
	out = make(chan []byte, QueueSize)
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		close(out)
		return
	}
	if s.last != nil {
		out <- s.last
	}
	s.clients[id] = out
	return
}

func (s *Server) leave(id uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.clients, id)
}

// FrameHandler returns the last published frame, or http.StatusNoContent if none was published yet.
func (s *Server) FrameHandler() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			rw.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		if !isLoopbackRemote(r.RemoteAddr) {
			http.Error(rw, "forbidden", http.StatusForbidden)
			return
		}
		s.mu.Lock()
		last := s.last
		s.mu.Unlock()
		if last == nil {
			rw.WriteHeader(http.StatusNoContent)
			return
		}
		rw.Header().Set("Content-Type", "application/json")
		_, _ = rw.Write(last)
	}
}

// WSHandler upgrades the connection to a websocket, and streams the frames to it until
// either side closes it.
func (s *Server) WSHandler() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		if !isLoopbackRemote(r.RemoteAddr) {
			http.Error(rw, "forbidden", http.StatusForbidden)
			return
		}
		conn, err := s.upgrader.Upgrade(rw, r, nil)
		if err != nil {
			klog.V(1).Infof("Failed to upgrade observer connection from %s: %v", r.RemoteAddr, err)
			return
		}
		defer func() { _ = conn.Close() }()

		id, out := s.join()
		defer s.leave(id)
		klog.V(1).Infof("Observer #%d connected from %s", id, r.RemoteAddr)

		// Reading is needed to process control messages and to notice the observer leaving.
		gone := make(chan struct{})
		go func() {
			defer close(gone)
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					return
				}
			}
		}()

		for {
			select {
			case <-gone:
				klog.V(1).Infof("Observer #%d disconnected", id)
				return
			case msg, ok := <-out:
				if !ok {
					_ = conn.WriteControl(websocket.CloseMessage,
						websocket.FormatCloseMessage(websocket.CloseNormalClosure, "simulation finished"),
						time.Now().Add(time.Second))
					return
				}
				_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
				if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
					klog.V(1).Infof("Observer #%d dropped: %v", id, err)
					return
				}
			}
		}
	}
}

func isLoopbackRemote(remoteAddr string) bool {
	host := remoteAddr
	if h, _, err := net.SplitHostPort(remoteAddr); err == nil {
		host = h
	}
	host = strings.TrimSuffix(strings.TrimPrefix(host, "["), "]")
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}
