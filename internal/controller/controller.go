// Package controller routes wire events onto session state. Every handler
// validates, mutates exactly one session under that session's lock,
// acknowledges the caller exactly once, and fans out at most one broadcast.
package controller

import (
	"encoding/json"
	"log"
	"math/rand"
	"sync"

	"github.com/classquiz/quizhost/internal/quiz"
	"github.com/classquiz/quizhost/internal/transport"
	"github.com/classquiz/quizhost/internal/wire"
)

// Controller owns the registry of live sessions and binds one handler per
// wire event on the transport.
type Controller struct {
	tr transport.Transport

	mu       sync.Mutex
	sessions map[string]*live
}

// live pairs a session with the mutex that serializes all operations
// touching it, including the ack and broadcast they produce.
type live struct {
	mu      sync.Mutex
	session *quiz.Session
}

// New builds a controller and registers its handlers on the transport.
func New(tr transport.Transport) *Controller {
	c := &Controller{
		tr:       tr,
		sessions: make(map[string]*live),
	}

	tr.OnEvent(wire.CreateSession, c.handleCreateSession)
	tr.OnEvent(wire.JoinSession, c.handleJoinSession)
	tr.OnEvent(wire.AddQuestion, c.handleAddQuestion)
	tr.OnEvent(wire.EditQuestion, c.handleEditQuestion)
	tr.OnEvent(wire.RemoveQuestion, c.handleRemoveQuestion)
	tr.OnEvent(wire.KickUser, c.handleKickUser)
	tr.OnEvent(wire.StartSession, c.handleStartSession)
	tr.OnEvent(wire.EndSession, c.handleEndSession)
	tr.OnEvent(wire.NextQuestion, c.handleNextQuestion)
	tr.OnEvent(wire.QuestionResponse, c.handleQuestionResponse)
	tr.OnEvent(wire.EndQuestion, c.handleEndQuestion)
	tr.OnEvent(wire.SubmitFeedback, c.handleSubmitFeedback)
	tr.OnEvent(wire.SendHint, c.handleSendHint)
	tr.OnDisconnect(c.handleDisconnect)

	return c
}

// SessionCount returns the number of live sessions.
func (c *Controller) SessionCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.sessions)
}

// lookup returns the live session for id, or nil.
func (c *Controller) lookup(id string) *live {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sessions[id]
}

// createSession allocates a unique code and registers a new session owned
// by the given connection.
func (c *Controller) createSession(owner string) *live {
	c.mu.Lock()
	defer c.mu.Unlock()
	id := randomCode()
	for {
		if _, taken := c.sessions[id]; !taken {
			break
		}
		id = randomCode()
	}
	ls := &live{session: quiz.NewSession(id, owner)}
	c.sessions[id] = ls
	return ls
}

// removeSession drops a session from the registry.
func (c *Controller) removeSession(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.sessions, id)
}

// sessionsOwnedBy returns every live session owned by the connection.
func (c *Controller) sessionsOwnedBy(connID string) []*live {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []*live
	for _, ls := range c.sessions {
		if ls.session.Owner == connID {
			out = append(out, ls)
		}
	}
	return out
}

func randomCode() string {
	b := make([]byte, quiz.SessionIDLen)
	for i := range b {
		b[i] = quiz.SessionIDAlphabet[rand.Intn(len(quiz.SessionIDAlphabet))]
	}
	return string(b)
}

// ownerSession authorizes an owner operation: the session must exist and be
// owned by the caller. On failure the second return is the ready-made
// failure envelope.
func (c *Controller) ownerSession(conn transport.Conn, event, id string) (*live, wire.Envelope, bool) {
	ls := c.lookup(id)
	if ls == nil {
		return nil, wire.FailField(event, "", "session", nullable(id)), false
	}
	if ls.session.Owner != conn.ID() {
		return nil, wire.FailField(event, "", "session", nil), false
	}
	return ls, wire.Envelope{}, true
}

// decode unmarshals the argument payload. A missing or malformed payload
// yields a bare failure: status 400, session null, errors null.
func decode[T any](args json.RawMessage) (T, bool) {
	var req T
	if args == nil {
		return req, false
	}
	if err := json.Unmarshal(args, &req); err != nil {
		return req, false
	}
	return req, true
}

// nullable echoes a client-sent string, or nil when it was absent.
func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// derefOr echoes a client-sent int pointer, or nil when it was absent.
func derefOr(p *int) any {
	if p == nil {
		return nil
	}
	return *p
}

// questionView projects a question for participants: the correct answer
// and the accepted fill-in texts stay server-side.
func questionView(q *quiz.Question) wire.QuestionView {
	v := wire.QuestionView{
		Text:      q.Text,
		TimeLimit: q.TimeLimit,
		Kind:      string(q.Body.Kind),
	}
	switch q.Body.Kind {
	case quiz.MultipleChoice:
		v.Choices = make([]wire.OptionView, len(q.Body.Choices))
		for i, ch := range q.Body.Choices {
			v.Choices[i] = wire.OptionView{Text: ch.Text, Points: ch.Points}
		}
	case quiz.FillIn:
		v.Blanks = len(q.Body.Answers)
	}
	return v
}

func logSession(action, id, conn string) {
	log.Printf("controller: session %s %s (conn %s)", id, action, conn)
}
