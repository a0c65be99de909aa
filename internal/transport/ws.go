package transport

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/classquiz/quizhost/internal/wire"
)

// sendBufferCap bounds the per-connection write queue. A client that cannot
// drain its queue loses pushes rather than stalling the emitter.
const sendBufferCap = 256

// inFrame is one client request: an event name, its argument payload, and
// an optional ack correlation id.
type inFrame struct {
	Event string          `json:"event"`
	Args  json.RawMessage `json:"args"`
	AckID *int            `json:"ackId"`
}

// outFrame is one server message. AckID is set on acknowledgements and
// absent on pushes; the envelope's event field routes pushes client-side.
type outFrame struct {
	AckID *int          `json:"ackId,omitempty"`
	Body  wire.Envelope `json:"body"`
}

// Server is the websocket realization of Transport: a gin-routed HTTP
// server exposing the upgrade endpoint and a health check.
type Server struct {
	*core
	engine   *gin.Engine
	http     *http.Server
	upgrader websocket.Upgrader
}

// NewServer builds the server listening on the given port.
func NewServer(port int) *Server {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())

	s := &Server{
		core:   newCore(),
		engine: engine,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}

	engine.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	engine.GET("/ws", s.handleWS)

	s.http = &http.Server{
		Addr:        fmt.Sprintf(":%d", port),
		Handler:     engine,
		ReadTimeout: 0, // websocket connections are long-lived
		IdleTimeout: 60 * time.Second,
	}
	return s
}

// Start begins serving. It blocks until Shutdown is called.
func (s *Server) Start() error {
	log.Printf("transport: listening on %s", s.http.Addr)
	if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown gracefully stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

func (s *Server) handleWS(c *gin.Context) {
	sock, err := s.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("transport: upgrade failed: %v", err)
		return
	}

	conn := &wsConn{
		id:   uuid.NewString(),
		sock: sock,
		send: make(chan outFrame, sendBufferCap),
	}
	s.register(conn)
	log.Printf("transport: connection %s opened", conn.id)

	go conn.writePump()
	s.readLoop(conn)
}

// readLoop decodes frames until the connection errors out, then tears the
// connection down (disconnect hook first, room cleanup second).
func (s *Server) readLoop(conn *wsConn) {
	defer func() {
		s.drop(conn)
		conn.close()
		log.Printf("transport: connection %s closed", conn.id)
	}()

	for {
		var f inFrame
		if err := conn.sock.ReadJSON(&f); err != nil {
			return
		}

		ack := Ack(func(wire.Envelope) {})
		if f.AckID != nil {
			id := *f.AckID
			ack = func(env wire.Envelope) {
				conn.enqueue(outFrame{AckID: &id, Body: env})
			}
		}
		s.dispatch(conn, f.Event, f.Args, ack)
	}
}

// wsConn pairs a websocket with a buffered write queue so emits never block
// on a slow reader.
type wsConn struct {
	id   string
	sock *websocket.Conn

	mu     sync.Mutex
	send   chan outFrame
	closed bool
}

func (c *wsConn) ID() string { return c.id }

func (c *wsConn) push(env wire.Envelope) {
	c.enqueue(outFrame{Body: env})
}

func (c *wsConn) enqueue(f outFrame) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	select {
	case c.send <- f:
	default:
		log.Printf("transport: dropping frame for slow connection %s", c.id)
	}
}

func (c *wsConn) writePump() {
	for f := range c.send {
		if err := c.sock.WriteJSON(f); err != nil {
			return
		}
	}
}

func (c *wsConn) close() {
	c.mu.Lock()
	if !c.closed {
		c.closed = true
		close(c.send)
	}
	c.mu.Unlock()
	c.sock.Close()
}
