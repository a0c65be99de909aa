package transport

import (
	"encoding/json"
	"sync"

	"github.com/google/uuid"

	"github.com/classquiz/quizhost/internal/wire"
)

// Memory is an in-process Transport for tests: connections are plain
// structs, requests are dispatched synchronously, and every push is
// recorded for inspection.
type Memory struct {
	*core
}

// NewMemory returns an empty in-process transport.
func NewMemory() *Memory {
	return &Memory{core: newCore()}
}

// Connect creates and registers a new connection.
func (m *Memory) Connect() *MemoryConn {
	conn := &MemoryConn{id: uuid.NewString()}
	m.register(conn)
	return conn
}

// Emit encodes args, dispatches the event on behalf of conn, and returns
// every acknowledgement the handler produced (the dispatch layer caps this
// at one).
func (m *Memory) Emit(conn *MemoryConn, event string, args any) []wire.Envelope {
	var raw json.RawMessage
	if args != nil {
		b, err := json.Marshal(args)
		if err != nil {
			panic(err)
		}
		raw = b
	}

	var acks []wire.Envelope
	m.dispatch(conn, event, raw, func(env wire.Envelope) {
		acks = append(acks, env)
	})
	return acks
}

// Disconnect simulates the connection closing: the disconnect hook runs,
// then the connection leaves the registry and all rooms.
func (m *Memory) Disconnect(conn *MemoryConn) {
	m.drop(conn)
}

// MemoryConn records every envelope pushed to it.
type MemoryConn struct {
	id string

	mu     sync.Mutex
	pushed []wire.Envelope
}

func (c *MemoryConn) ID() string { return c.id }

func (c *MemoryConn) push(env wire.Envelope) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pushed = append(c.pushed, env)
}

// Pushed returns a snapshot of everything pushed so far.
func (c *MemoryConn) Pushed() []wire.Envelope {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]wire.Envelope(nil), c.pushed...)
}

// LastPushed returns the most recent push, if any.
func (c *MemoryConn) LastPushed() (wire.Envelope, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.pushed) == 0 {
		return wire.Envelope{}, false
	}
	return c.pushed[len(c.pushed)-1], true
}

// PushedNamed returns every pushed envelope carrying the given event name.
func (c *MemoryConn) PushedNamed(event string) []wire.Envelope {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []wire.Envelope
	for _, env := range c.pushed {
		if env.Event == event {
			out = append(out, env)
		}
	}
	return out
}
