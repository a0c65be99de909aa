// Package transport is the room-aware message layer the controller speaks
// through: named events with per-request acknowledgement callbacks, rooms
// keyed by session id, and emit-to-one/room/room-except-one fan-out. The
// websocket server (ws.go) is the production realization; Memory
// (memory.go) is the in-process one used by tests.
package transport

import (
	"encoding/json"
	"log"
	"sync"

	"github.com/classquiz/quizhost/internal/wire"
)

// Conn is one live client connection. Implementations live in this package;
// consumers only read the id and hand the Conn back to Emitter calls.
type Conn interface {
	ID() string

	// push delivers a server-initiated envelope (a broadcast or a private
	// emit). It must not block.
	push(env wire.Envelope)
}

// Ack delivers exactly one acknowledgement for one request.
type Ack func(env wire.Envelope)

// Handler processes one decoded request. args is the raw argument payload
// (nil when the client sent none); the handler must invoke ack exactly once.
type Handler func(conn Conn, args json.RawMessage, ack Ack)

// Transport is everything the controller consumes: event registration, the
// disconnect hook, and the room/emit primitives.
type Transport interface {
	OnEvent(event string, h Handler)
	OnDisconnect(f func(conn Conn))

	JoinRoom(conn Conn, room string)
	LeaveRoom(conn Conn, room string)
	ForceLeave(connID, room string)
	ForceAllLeave(room string)
	RoomsOf(connID string) []string

	EmitToOne(connID string, env wire.Envelope)
	EmitToRoom(room string, env wire.Envelope)
	EmitToRoomExcept(room, exceptID string, env wire.Envelope)
}

// core holds the connection registry, the room membership maps, and the
// handler table shared by the websocket server and the memory transport.
type core struct {
	mu           sync.Mutex
	conns        map[string]Conn
	rooms        map[string]map[string]Conn
	memberOf     map[string]map[string]struct{}
	handlers     map[string]Handler
	onDisconnect func(conn Conn)
}

func newCore() *core {
	return &core{
		conns:    make(map[string]Conn),
		rooms:    make(map[string]map[string]Conn),
		memberOf: make(map[string]map[string]struct{}),
		handlers: make(map[string]Handler),
	}
}

// OnEvent registers the handler for a request event name.
func (c *core) OnEvent(event string, h Handler) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.handlers[event] = h
}

// OnDisconnect registers the hook fired when a connection closes. The hook
// runs before the connection's room memberships are torn down, so it can
// still ask RoomsOf.
func (c *core) OnDisconnect(f func(conn Conn)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onDisconnect = f
}

func (c *core) register(conn Conn) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.conns[conn.ID()] = conn
}

// drop runs the disconnect hook and then removes the connection from the
// registry and every room.
func (c *core) drop(conn Conn) {
	c.mu.Lock()
	hook := c.onDisconnect
	c.mu.Unlock()
	if hook != nil {
		hook(conn)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	id := conn.ID()
	for room := range c.memberOf[id] {
		delete(c.rooms[room], id)
		if len(c.rooms[room]) == 0 {
			delete(c.rooms, room)
		}
	}
	delete(c.memberOf, id)
	delete(c.conns, id)
}

// dispatch routes one request to its handler. The ack is wrapped so it
// fires at most once; a panicking handler is answered with a bare failure
// and never takes the process down.
func (c *core) dispatch(conn Conn, event string, args json.RawMessage, ack Ack) {
	c.mu.Lock()
	h := c.handlers[event]
	c.mu.Unlock()

	once := onceAck(ack)
	if h == nil {
		once(wire.Fail(event, "", nil))
		return
	}
	defer func() {
		if r := recover(); r != nil {
			log.Printf("transport: handler %q panicked: %v", event, r)
			once(wire.Fail(event, "", nil))
		}
	}()
	h(conn, args, once)
}

func onceAck(ack Ack) Ack {
	var done bool
	var mu sync.Mutex
	return func(env wire.Envelope) {
		mu.Lock()
		defer mu.Unlock()
		if done {
			return
		}
		done = true
		ack(env)
	}
}

// JoinRoom adds the connection to a room, creating the room on first join.
func (c *core) JoinRoom(conn Conn, room string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.rooms[room] == nil {
		c.rooms[room] = make(map[string]Conn)
	}
	c.rooms[room][conn.ID()] = conn
	if c.memberOf[conn.ID()] == nil {
		c.memberOf[conn.ID()] = make(map[string]struct{})
	}
	c.memberOf[conn.ID()][room] = struct{}{}
}

// LeaveRoom removes the connection from a room.
func (c *core) LeaveRoom(conn Conn, room string) {
	c.ForceLeave(conn.ID(), room)
}

// ForceLeave removes a connection from a room by id.
func (c *core) ForceLeave(connID, room string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.rooms[room], connID)
	if len(c.rooms[room]) == 0 {
		delete(c.rooms, room)
	}
	delete(c.memberOf[connID], room)
}

// ForceAllLeave empties a room.
func (c *core) ForceAllLeave(room string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for id := range c.rooms[room] {
		delete(c.memberOf[id], room)
	}
	delete(c.rooms, room)
}

// RoomsOf returns the rooms the connection is currently a member of.
func (c *core) RoomsOf(connID string) []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, 0, len(c.memberOf[connID]))
	for room := range c.memberOf[connID] {
		out = append(out, room)
	}
	return out
}

// EmitToOne delivers an envelope to a single connection, if still present.
func (c *core) EmitToOne(connID string, env wire.Envelope) {
	c.mu.Lock()
	conn := c.conns[connID]
	c.mu.Unlock()
	if conn != nil {
		conn.push(env)
	}
}

// EmitToRoom delivers an envelope to every member of a room.
func (c *core) EmitToRoom(room string, env wire.Envelope) {
	c.EmitToRoomExcept(room, "", env)
}

// EmitToRoomExcept delivers an envelope to every member of a room except
// the named connection (the usual shape: everyone but the initiator).
func (c *core) EmitToRoomExcept(room, exceptID string, env wire.Envelope) {
	c.mu.Lock()
	members := make([]Conn, 0, len(c.rooms[room]))
	for id, conn := range c.rooms[room] {
		if id != exceptID {
			members = append(members, conn)
		}
	}
	c.mu.Unlock()
	for _, conn := range members {
		conn.push(env)
	}
}
