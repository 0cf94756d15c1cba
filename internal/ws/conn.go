package ws

import (
	"context"
	"net/http"
	"slices"
	"sync"
	"time"

	"fxconvert/internal/config"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

const greeting = "Connected to Currency Exchange"

type connIDKey struct{}

func withConnID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, connIDKey{}, id)
}

func connID(ctx context.Context) string {
	id, _ := ctx.Value(connIDKey{}).(string)
	return id
}

// Server upgrades HTTP requests and runs one sequential read loop per
// connection, handing every message to the Router.
type Server struct {
	router   *Router
	cfg      config.WebSocket
	upgrader websocket.Upgrader

	mu    sync.Mutex
	conns map[string]*websocket.Conn
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already replied with an HTTP error.
		logrus.WithError(err).Warn("Websocket upgrade failed")
		return
	}

	id := uuid.NewString()
	s.track(id, conn)
	defer s.untrack(id)

	logrus.WithField("conn_id", id).Info("Websocket connected")
	s.serve(withConnID(r.Context(), id), conn)
	logrus.WithField("conn_id", id).Info("Websocket disconnected")
}

func (s *Server) serve(ctx context.Context, conn *websocket.Conn) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Unblocks ReadMessage once the server or client context is done.
	go func() {
		<-ctx.Done()
		_ = conn.Close()
	}()

	if s.cfg.ReadLimitBytes > 0 {
		conn.SetReadLimit(s.cfg.ReadLimitBytes)
	}

	hello := Outbound{Type: TypeConnectionEstablished, Message: greeting, Timestamp: s.router.timestamp()}
	if err := s.write(conn, hello); err != nil {
		logrus.WithError(err).WithField("conn_id", connID(ctx)).Warn("Failed to send greeting")
		return
	}

	for {
		kind, raw, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway, websocket.CloseNoStatusReceived) && ctx.Err() == nil {
				logrus.WithError(err).WithField("conn_id", connID(ctx)).Warn("Websocket read failed")
			}
			return
		}
		if kind != websocket.TextMessage && kind != websocket.BinaryMessage {
			continue
		}

		out := s.dispatch(ctx, raw)
		if err = s.write(conn, out); err != nil {
			logrus.WithError(err).WithField("conn_id", connID(ctx)).Warn("Websocket write failed")
			return
		}
	}
}

func (s *Server) dispatch(ctx context.Context, raw []byte) Outbound {
	timeout := s.cfg.RequestTimeout()
	if timeout <= 0 {
		return s.router.Dispatch(ctx, raw)
	}
	reqCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return s.router.Dispatch(reqCtx, raw)
}

func (s *Server) write(conn *websocket.Conn, out Outbound) error {
	if wt := s.cfg.WriteTimeout(); wt > 0 {
		_ = conn.SetWriteDeadline(time.Now().Add(wt))
	}
	return conn.WriteJSON(out)
}

func (s *Server) track(id string, conn *websocket.Conn) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.conns[id] = conn
}

func (s *Server) untrack(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.conns, id)
}

// CloseAll sends a going-away close frame to every open connection.
func (s *Server) CloseAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	deadline := time.Now().Add(time.Second)
	for id, conn := range s.conns {
		msg := websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down")
		if err := conn.WriteControl(websocket.CloseMessage, msg, deadline); err != nil {
			logrus.WithError(err).WithField("conn_id", id).Debug("Close frame not delivered")
		}
		_ = conn.Close()
	}
}

func (s *Server) checkOrigin(r *http.Request) bool {
	if len(s.cfg.AllowedOrigins) == 0 {
		return true
	}
	return slices.Contains(s.cfg.AllowedOrigins, r.Header.Get("Origin"))
}

func NewServer(router *Router, cfg config.WebSocket) *Server {
	s := &Server{router: router, cfg: cfg, conns: make(map[string]*websocket.Conn)}
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  4096,
		WriteBufferSize: 4096,
		CheckOrigin:     s.checkOrigin,
	}
	return s
}
