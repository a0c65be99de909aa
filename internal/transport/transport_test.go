package transport

import (
	"encoding/json"
	"testing"

	"github.com/classquiz/quizhost/internal/wire"
)

func TestEmitToRoomExcept(t *testing.T) {
	m := NewMemory()
	a, b, c := m.Connect(), m.Connect(), m.Connect()
	m.JoinRoom(a, "room")
	m.JoinRoom(b, "room")
	m.JoinRoom(c, "other")

	m.EmitToRoomExcept("room", a.ID(), wire.OK("ping", "room", nil))

	if len(a.Pushed()) != 0 {
		t.Fatal("excluded connection should not receive the emit")
	}
	if len(b.Pushed()) != 1 {
		t.Fatalf("room member should receive the emit, got %d", len(b.Pushed()))
	}
	if len(c.Pushed()) != 0 {
		t.Fatal("member of another room should not receive the emit")
	}
}

func TestEmitToOne(t *testing.T) {
	m := NewMemory()
	a, b := m.Connect(), m.Connect()

	m.EmitToOne(a.ID(), wire.OK("ping", "room", nil))
	m.EmitToOne("unknown", wire.OK("ping", "room", nil))

	if len(a.Pushed()) != 1 || len(b.Pushed()) != 0 {
		t.Fatalf("expected exactly one delivery to a, got a=%d b=%d", len(a.Pushed()), len(b.Pushed()))
	}
}

func TestForceLeaveAndRoomsOf(t *testing.T) {
	m := NewMemory()
	a := m.Connect()
	m.JoinRoom(a, "one")
	m.JoinRoom(a, "two")

	if got := m.RoomsOf(a.ID()); len(got) != 2 {
		t.Fatalf("expected membership in 2 rooms, got %v", got)
	}

	m.ForceLeave(a.ID(), "one")
	if got := m.RoomsOf(a.ID()); len(got) != 1 || got[0] != "two" {
		t.Fatalf("expected membership in two only, got %v", got)
	}

	m.EmitToRoom("one", wire.OK("ping", "one", nil))
	if len(a.Pushed()) != 0 {
		t.Fatal("emit to a left room should not reach the connection")
	}
}

func TestForceAllLeave(t *testing.T) {
	m := NewMemory()
	a, b := m.Connect(), m.Connect()
	m.JoinRoom(a, "room")
	m.JoinRoom(b, "room")

	m.ForceAllLeave("room")

	m.EmitToRoom("room", wire.OK("ping", "room", nil))
	if len(a.Pushed()) != 0 || len(b.Pushed()) != 0 {
		t.Fatal("emptied room should have no recipients")
	}
}

func TestDispatchUnknownEvent(t *testing.T) {
	m := NewMemory()
	a := m.Connect()

	acks := m.Emit(a, "noSuchEvent", nil)
	if len(acks) != 1 {
		t.Fatalf("expected exactly one ack, got %d", len(acks))
	}
	if acks[0].Status != wire.StatusBad {
		t.Fatalf("expected failure status, got %d", acks[0].Status)
	}
}

func TestDispatchAcksAtMostOnce(t *testing.T) {
	m := NewMemory()
	m.OnEvent("echo", func(conn Conn, args json.RawMessage, ack Ack) {
		ack(wire.OK("echo", "", nil))
		ack(wire.OK("echo", "", nil))
	})
	a := m.Connect()

	acks := m.Emit(a, "echo", nil)
	if len(acks) != 1 {
		t.Fatalf("expected the second ack to be swallowed, got %d", len(acks))
	}
}

func TestDispatchRecoversPanic(t *testing.T) {
	m := NewMemory()
	m.OnEvent("boom", func(conn Conn, args json.RawMessage, ack Ack) {
		panic("handler bug")
	})
	a := m.Connect()

	acks := m.Emit(a, "boom", nil)
	if len(acks) != 1 || acks[0].Status != wire.StatusBad {
		t.Fatalf("panicking handler should still produce one failure ack, got %v", acks)
	}

	// The transport survives for other traffic.
	m.OnEvent("ok", func(conn Conn, args json.RawMessage, ack Ack) {
		ack(wire.OK("ok", "", nil))
	})
	if acks := m.Emit(a, "ok", nil); len(acks) != 1 || acks[0].Status != wire.StatusOK {
		t.Fatalf("transport should keep dispatching after a panic, got %v", acks)
	}
}

func TestDisconnectRunsHookBeforeCleanup(t *testing.T) {
	m := NewMemory()
	a := m.Connect()
	m.JoinRoom(a, "room")

	var roomsAtHook []string
	m.OnDisconnect(func(conn Conn) {
		roomsAtHook = m.RoomsOf(conn.ID())
	})

	m.Disconnect(a)
	if len(roomsAtHook) != 1 || roomsAtHook[0] != "room" {
		t.Fatalf("hook should still see room membership, got %v", roomsAtHook)
	}
	if got := m.RoomsOf(a.ID()); len(got) != 0 {
		t.Fatalf("membership should be gone after disconnect, got %v", got)
	}
}
