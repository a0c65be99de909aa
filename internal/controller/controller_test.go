package controller

import (
	"regexp"
	"testing"
	"time"

	"github.com/classquiz/quizhost/internal/quiz"
	"github.com/classquiz/quizhost/internal/transport"
	"github.com/classquiz/quizhost/internal/wire"
)

func ptr[T any](v T) *T { return &v }

type stubTimer struct{ stopped bool }

func (s *stubTimer) Stop() bool {
	s.stopped = true
	return true
}

type timerCapture struct {
	timers []*stubTimer
	fns    []func()
}

// fire runs the i-th armed timer callback, as if its deadline passed.
func (c *timerCapture) fire(i int) {
	c.fns[i]()
}

// captureTimers substitutes the question timer so tests can advance virtual
// time by firing the captured callbacks.
func captureTimers(t *testing.T) *timerCapture {
	t.Helper()
	c := &timerCapture{}
	orig := quiz.NewTimer
	quiz.NewTimer = func(d time.Duration, f func()) quiz.Timer {
		st := &stubTimer{}
		c.timers = append(c.timers, st)
		c.fns = append(c.fns, f)
		return st
	}
	t.Cleanup(func() { quiz.NewTimer = orig })
	return c
}

type fixture struct {
	tr    *transport.Memory
	c     *Controller
	owner *transport.MemoryConn
	sid   string
}

// newFixture boots a controller on the memory transport and creates one
// session.
func newFixture(t *testing.T) *fixture {
	t.Helper()
	tr := transport.NewMemory()
	c := New(tr)

	owner := tr.Connect()
	env := mustAck(t, tr.Emit(owner, wire.CreateSession, nil))
	if env.Status != wire.StatusOK {
		t.Fatalf("create session failed: %+v", env)
	}
	sid, ok := env.Data.(string)
	if !ok {
		t.Fatalf("create session ack data should be the code, got %T", env.Data)
	}
	return &fixture{tr: tr, c: c, owner: owner, sid: sid}
}

func mustAck(t *testing.T, acks []wire.Envelope) wire.Envelope {
	t.Helper()
	if len(acks) != 1 {
		t.Fatalf("expected exactly one ack, got %d", len(acks))
	}
	return acks[0]
}

func sessionOf(env wire.Envelope) string {
	if env.Session == nil {
		return ""
	}
	return *env.Session
}

// join connects a new client and joins it under name.
func (f *fixture) join(t *testing.T, name string) *transport.MemoryConn {
	t.Helper()
	conn := f.tr.Connect()
	env := mustAck(t, f.tr.Emit(conn, wire.JoinSession, wire.JoinSessionRequest{ID: f.sid, Name: name}))
	if env.Status != wire.StatusOK {
		t.Fatalf("join %q failed: %+v", name, env)
	}
	return conn
}

func mcSubmission(points ...int) wire.QuestionSubmission {
	choices := make([]wire.OptionSubmission, len(points))
	for i, p := range points {
		choices[i] = wire.OptionSubmission{Text: ptr("choice"), Points: ptr(p)}
	}
	return wire.QuestionSubmission{
		Text:      ptr("Q"),
		TimeLimit: ptr(60),
		Body: &wire.BodySubmission{
			Kind:    ptr(wire.KindMultipleChoice),
			Choices: choices,
			Answer:  ptr(1),
		},
	}
}

// addStartAdvance authors one question, starts the session, and reveals the
// question.
func (f *fixture) addStartAdvance(t *testing.T, sub wire.QuestionSubmission) {
	t.Helper()
	if env := mustAck(t, f.tr.Emit(f.owner, wire.AddQuestion, wire.AddQuestionRequest{Session: f.sid, Question: sub})); env.Status != wire.StatusOK {
		t.Fatalf("add question failed: %+v", env)
	}
	if env := mustAck(t, f.tr.Emit(f.owner, wire.StartSession, wire.SessionRequest{Session: f.sid})); env.Status != wire.StatusOK {
		t.Fatalf("start session failed: %+v", env)
	}
	if env := mustAck(t, f.tr.Emit(f.owner, wire.NextQuestion, wire.SessionRequest{Session: f.sid})); env.Status != wire.StatusOK {
		t.Fatalf("next question failed: %+v", env)
	}
}

var codeRe = regexp.MustCompile(`^[0-9A-Z]{8}$`)

func TestCreateAndJoinRoundTrip(t *testing.T) {
	f := newFixture(t)

	if !codeRe.MatchString(f.sid) {
		t.Fatalf("session code %q should be 8 chars of [0-9A-Z]", f.sid)
	}

	b := f.tr.Connect()
	env := mustAck(t, f.tr.Emit(b, wire.JoinSession, wire.JoinSessionRequest{ID: f.sid, Name: "b"}))
	if env.Status != wire.StatusOK || sessionOf(env) != f.sid || env.Data != nil {
		t.Fatalf("join ack: %+v", env)
	}

	joined := f.owner.PushedNamed(wire.UserJoinedSession)
	if len(joined) != 1 {
		t.Fatalf("owner should see one join broadcast, got %d", len(joined))
	}
	if got := joined[0].Data.(wire.UserPayload); got.Name != "b" {
		t.Fatalf("join broadcast name: %+v", got)
	}
	if len(b.Pushed()) != 0 {
		t.Fatal("the joiner must not receive their own join broadcast")
	}
}

func TestJoinUnknownSession(t *testing.T) {
	f := newFixture(t)
	b := f.tr.Connect()
	env := mustAck(t, f.tr.Emit(b, wire.JoinSession, wire.JoinSessionRequest{ID: "NOPENOPE", Name: "b"}))
	if env.Status != wire.StatusBad || len(env.Errors) != 1 || env.Errors[0].Field != "session" {
		t.Fatalf("expected session error, got %+v", env)
	}
}

func TestAddQuestionRequiresOwner(t *testing.T) {
	f := newFixture(t)
	b := f.join(t, "b")

	env := mustAck(t, f.tr.Emit(b, wire.AddQuestion, wire.AddQuestionRequest{Session: f.sid, Question: mcSubmission(100, 100)}))
	if env.Status != wire.StatusBad {
		t.Fatalf("expected rejection, got %+v", env)
	}
	if env.Session != nil {
		t.Fatalf("authorization failure should carry a null session, got %q", *env.Session)
	}
	if len(env.Errors) != 1 || env.Errors[0].Field != "session" || env.Errors[0].Value != nil {
		t.Fatalf("expected [{session nil}], got %+v", env.Errors)
	}
	if got := f.owner.PushedNamed(wire.QuestionEnded); len(got) != 0 {
		t.Fatalf("rejected request must not broadcast, got %v", got)
	}
}

func TestAddQuestionParserErrorsReachOwner(t *testing.T) {
	f := newFixture(t)
	bad := mcSubmission(100, 100)
	bad.TimeLimit = ptr(30)

	env := mustAck(t, f.tr.Emit(f.owner, wire.AddQuestion, wire.AddQuestionRequest{Session: f.sid, Question: bad}))
	if env.Status != wire.StatusBad || len(env.Errors) == 0 || env.Errors[0].Field != "timeLimit" {
		t.Fatalf("expected timeLimit error, got %+v", env)
	}
}

func TestGradingAndStatistics(t *testing.T) {
	captureTimers(t)
	f := newFixture(t)
	b := f.join(t, "b")
	f.addStartAdvance(t, mcSubmission(200, 200))

	env := mustAck(t, f.tr.Emit(b, wire.QuestionResponse, wire.QuestionResponseRequest{
		Session:  f.sid,
		Name:     "b",
		Index:    ptr(0),
		Response: wire.ResponseSubmission{Kind: ptr(wire.KindMultipleChoice), Submitter: "b", Answer: 1},
	}))
	if env.Status != wire.StatusOK {
		t.Fatalf("response rejected: %+v", env)
	}
	ackData := env.Data.(wire.ResponseAckPayload)
	if ackData.Index != 0 || !ackData.FirstCorrect || ackData.Points != 200 {
		t.Fatalf("submitter ack: %+v", ackData)
	}

	added := f.owner.PushedNamed(wire.QuestionResponseAdded)
	if len(added) != 1 {
		t.Fatalf("owner should get one statistics emit, got %d", len(added))
	}
	stats := added[0].Data.(wire.ResponseAddedPayload)
	want := wire.ResponseAddedPayload{
		Index: 0, User: "b", Response: "1", Points: 200,
		FirstCorrect: "b", Frequency: 1, RelativeFrequency: 1,
	}
	if stats != want {
		t.Fatalf("statistics emit: got %+v, want %+v", stats, want)
	}
}

func TestFillInResponseIsCaseInsensitive(t *testing.T) {
	captureTimers(t)
	f := newFixture(t)
	b := f.join(t, "b")

	sub := wire.QuestionSubmission{
		Text:      ptr("Capital of France?"),
		TimeLimit: ptr(60),
		Body: &wire.BodySubmission{
			Kind:    ptr(wire.KindFillIn),
			Answers: []wire.OptionSubmission{{Text: ptr("Paris"), Points: ptr(100)}},
		},
	}
	f.addStartAdvance(t, sub)

	env := mustAck(t, f.tr.Emit(b, wire.QuestionResponse, wire.QuestionResponseRequest{
		Session:  f.sid,
		Name:     "b",
		Index:    ptr(0),
		Response: wire.ResponseSubmission{Kind: ptr(wire.KindFillIn), Submitter: "b", Answer: "pArIs"},
	}))
	if env.Status != wire.StatusOK || env.Data.(wire.ResponseAckPayload).Points != 100 {
		t.Fatalf("case-insensitive match should score, got %+v", env)
	}
}

func TestDuplicateResponseRejected(t *testing.T) {
	captureTimers(t)
	f := newFixture(t)
	b := f.join(t, "b")
	f.addStartAdvance(t, mcSubmission(200, 200))

	req := wire.QuestionResponseRequest{
		Session:  f.sid,
		Name:     "b",
		Index:    ptr(0),
		Response: wire.ResponseSubmission{Kind: ptr(wire.KindMultipleChoice), Submitter: "b", Answer: 0},
	}
	mustAck(t, f.tr.Emit(b, wire.QuestionResponse, req))
	env := mustAck(t, f.tr.Emit(b, wire.QuestionResponse, req))
	if env.Status != wire.StatusBad || env.Errors[0].Field != "response" || env.Errors[0].Value != "duplicate" {
		t.Fatalf("expected duplicate response error, got %+v", env)
	}
}

func TestResponseIdentityEnforced(t *testing.T) {
	captureTimers(t)
	f := newFixture(t)
	f.join(t, "b")
	imposter := f.tr.Connect()
	f.addStartAdvance(t, mcSubmission(200, 200))

	env := mustAck(t, f.tr.Emit(imposter, wire.QuestionResponse, wire.QuestionResponseRequest{
		Session:  f.sid,
		Name:     "b",
		Index:    ptr(0),
		Response: wire.ResponseSubmission{Kind: ptr(wire.KindMultipleChoice), Submitter: "b", Answer: 1},
	}))
	if env.Status != wire.StatusBad || env.Errors[0].Field != "name" {
		t.Fatalf("expected name rejection, got %+v", env)
	}
}

func TestTimerDrivenQuestionEnd(t *testing.T) {
	tc := captureTimers(t)
	f := newFixture(t)
	b := f.join(t, "b")
	f.addStartAdvance(t, mcSubmission(200, 200))

	if len(tc.fns) != 1 {
		t.Fatalf("advance should arm one timer, got %d", len(tc.fns))
	}
	tc.fire(0) // virtual time passes the 60s limit

	ended := b.PushedNamed(wire.QuestionEnded)
	if len(ended) != 1 {
		t.Fatalf("room should see one question-ended broadcast, got %d", len(ended))
	}
	if got := ended[0].Data.(wire.QuestionEndedPayload); got.Question != 0 {
		t.Fatalf("question-ended payload: %+v", got)
	}

	// A manual end after expiry is rejected.
	env := mustAck(t, f.tr.Emit(f.owner, wire.EndQuestion, wire.QuestionIndexRequest{Session: f.sid, Question: ptr(0)}))
	if env.Status != wire.StatusBad {
		t.Fatalf("second end should fail, got %+v", env)
	}
}

func TestManualQuestionEnd(t *testing.T) {
	tc := captureTimers(t)
	f := newFixture(t)
	b := f.join(t, "b")
	f.addStartAdvance(t, mcSubmission(200, 200))

	env := mustAck(t, f.tr.Emit(f.owner, wire.EndQuestion, wire.QuestionIndexRequest{Session: f.sid, Question: ptr(0)}))
	if env.Status != wire.StatusOK {
		t.Fatalf("manual end failed: %+v", env)
	}
	if !tc.timers[0].stopped {
		t.Fatal("manual end should cancel the timer")
	}

	ended := b.PushedNamed(wire.QuestionEnded)
	if len(ended) != 1 {
		t.Fatalf("expected exactly one question-ended broadcast, got %d", len(ended))
	}

	// The cancelled timer firing late must not produce a second broadcast.
	tc.fire(0)
	if got := b.PushedNamed(wire.QuestionEnded); len(got) != 1 {
		t.Fatalf("late timer must not re-broadcast, got %d", len(got))
	}
}

func TestNextQuestionPastEnd(t *testing.T) {
	captureTimers(t)
	f := newFixture(t)
	f.addStartAdvance(t, mcSubmission(200, 200))

	env := mustAck(t, f.tr.Emit(f.owner, wire.NextQuestion, wire.SessionRequest{Session: f.sid}))
	if env.Status != wire.StatusBad {
		t.Fatalf("advance past end should fail, got %+v", env)
	}
	fields := map[string]any{}
	for _, e := range env.Errors {
		fields[e.Field] = e.Value
	}
	if fields["numQuestions"] != 1 || fields["currentQuestion"] != 0 {
		t.Fatalf("failure should expose quiz position, got %+v", env.Errors)
	}
}

func TestNextQuestionBroadcastMatchesAck(t *testing.T) {
	captureTimers(t)
	f := newFixture(t)
	b := f.join(t, "b")

	mustAck(t, f.tr.Emit(f.owner, wire.AddQuestion, wire.AddQuestionRequest{Session: f.sid, Question: mcSubmission(200, 200)}))
	mustAck(t, f.tr.Emit(f.owner, wire.StartSession, wire.SessionRequest{Session: f.sid}))

	env := mustAck(t, f.tr.Emit(f.owner, wire.NextQuestion, wire.SessionRequest{Session: f.sid}))
	if env.Status != wire.StatusOK {
		t.Fatalf("next question failed: %+v", env)
	}
	ackPayload := env.Data.(wire.NextQuestionPayload)

	pushed := b.PushedNamed(wire.NextQuestion)
	if len(pushed) != 1 {
		t.Fatalf("expected one broadcast, got %d", len(pushed))
	}
	broadcast := pushed[0].Data.(wire.NextQuestionPayload)
	if ackPayload.Index != broadcast.Index || ackPayload.Question.Text != broadcast.Question.Text {
		t.Fatalf("ack %+v and broadcast %+v should match", ackPayload, broadcast)
	}
	if broadcast.Index != 0 || broadcast.Question.Kind != string(quiz.MultipleChoice) {
		t.Fatalf("broadcast payload: %+v", broadcast)
	}
}

func TestStartSessionTwice(t *testing.T) {
	f := newFixture(t)
	b := f.join(t, "b")

	mustAck(t, f.tr.Emit(f.owner, wire.StartSession, wire.SessionRequest{Session: f.sid}))
	if got := b.PushedNamed(wire.SessionStarted); len(got) != 1 {
		t.Fatalf("participants should see session-started, got %d", len(got))
	}

	env := mustAck(t, f.tr.Emit(f.owner, wire.StartSession, wire.SessionRequest{Session: f.sid}))
	if env.Status != wire.StatusBad {
		t.Fatalf("second start should fail, got %+v", env)
	}
}

func TestEndSessionFlow(t *testing.T) {
	f := newFixture(t)
	b := f.join(t, "b")

	mustAck(t, f.tr.Emit(f.owner, wire.StartSession, wire.SessionRequest{Session: f.sid}))
	env := mustAck(t, f.tr.Emit(f.owner, wire.EndSession, wire.SessionRequest{Session: f.sid}))
	if env.Status != wire.StatusOK {
		t.Fatalf("end session failed: %+v", env)
	}
	if got := b.PushedNamed(wire.SessionEnded); len(got) != 1 {
		t.Fatalf("participants should see session-ended, got %d", len(got))
	}

	// Participants were forced out: later broadcasts no longer reach them.
	if got := f.tr.RoomsOf(b.ID()); len(got) != 0 {
		t.Fatalf("participant should be out of the room, got %v", got)
	}

	env = mustAck(t, f.tr.Emit(f.owner, wire.EndSession, wire.SessionRequest{Session: f.sid}))
	if env.Status != wire.StatusBad {
		t.Fatalf("second end should fail, got %+v", env)
	}

	// The ended session admits nobody.
	c := f.tr.Connect()
	env = mustAck(t, f.tr.Emit(c, wire.JoinSession, wire.JoinSessionRequest{ID: f.sid, Name: "c"}))
	if env.Status != wire.StatusBad {
		t.Fatalf("join after end should fail, got %+v", env)
	}
}

func TestKickThenRejoin(t *testing.T) {
	f := newFixture(t)
	b := f.join(t, "b")

	env := mustAck(t, f.tr.Emit(f.owner, wire.KickUser, wire.KickUserRequest{Session: f.sid, Name: "b"}))
	if env.Status != wire.StatusOK || env.Data.(wire.UserPayload).Name != "b" {
		t.Fatalf("kick ack: %+v", env)
	}
	if got := b.PushedNamed(wire.UserKicked); len(got) != 1 {
		t.Fatalf("kicked user should see the broadcast before leaving, got %d", len(got))
	}
	if got := f.tr.RoomsOf(b.ID()); len(got) != 0 {
		t.Fatalf("kicked connection should be out of the room, got %v", got)
	}

	// The freed name can be claimed by a new connection.
	c := f.tr.Connect()
	env = mustAck(t, f.tr.Emit(c, wire.JoinSession, wire.JoinSessionRequest{ID: f.sid, Name: "b"}))
	if env.Status != wire.StatusOK {
		t.Fatalf("rejoin under freed name failed: %+v", env)
	}
}

func TestOwnerDisconnectCascade(t *testing.T) {
	tc := captureTimers(t)
	f := newFixture(t)
	b := f.join(t, "b")
	f.addStartAdvance(t, mcSubmission(200, 200))

	f.tr.Disconnect(f.owner)

	if got := b.PushedNamed(wire.SessionEnded); len(got) != 1 {
		t.Fatalf("room should see session-ended, got %d", len(got))
	}
	if f.c.SessionCount() != 0 {
		t.Fatalf("registry should be empty, got %d", f.c.SessionCount())
	}
	if !tc.timers[0].stopped {
		t.Fatal("owner disconnect should cancel the live question timer")
	}

	c := f.tr.Connect()
	env := mustAck(t, f.tr.Emit(c, wire.JoinSession, wire.JoinSessionRequest{ID: f.sid, Name: "c"}))
	if env.Status != wire.StatusBad || env.Errors[0].Field != "session" {
		t.Fatalf("join after teardown should fail with a session error, got %+v", env)
	}
}

func TestParticipantDisconnect(t *testing.T) {
	f := newFixture(t)
	b := f.join(t, "b")

	f.tr.Disconnect(b)

	gone := f.owner.PushedNamed(wire.UserDisconnected)
	if len(gone) != 1 || gone[0].Data.(wire.UserPayload).Name != "b" {
		t.Fatalf("owner should see the disconnect broadcast, got %v", gone)
	}

	// The name is freed for a new connection.
	c := f.tr.Connect()
	env := mustAck(t, f.tr.Emit(c, wire.JoinSession, wire.JoinSessionRequest{ID: f.sid, Name: "b"}))
	if env.Status != wire.StatusOK {
		t.Fatalf("rejoin under freed name failed: %+v", env)
	}
}

func TestSendHint(t *testing.T) {
	captureTimers(t)
	f := newFixture(t)
	b := f.join(t, "b")

	env := mustAck(t, f.tr.Emit(f.owner, wire.SendHint, wire.SendHintRequest{Session: f.sid, Question: ptr(0), Hint: "look closer"}))
	if env.Status != wire.StatusBad {
		t.Fatalf("hint before start should fail, got %+v", env)
	}

	f.addStartAdvance(t, mcSubmission(200, 200))

	env = mustAck(t, f.tr.Emit(f.owner, wire.SendHint, wire.SendHintRequest{Session: f.sid, Question: ptr(3), Hint: "look closer"}))
	if env.Status != wire.StatusBad || env.Errors[0].Field != "question" {
		t.Fatalf("hint for a non-current question should fail, got %+v", env)
	}

	env = mustAck(t, f.tr.Emit(f.owner, wire.SendHint, wire.SendHintRequest{Session: f.sid, Question: ptr(0), Hint: "look closer"}))
	if env.Status != wire.StatusOK {
		t.Fatalf("hint failed: %+v", env)
	}
	hints := b.PushedNamed(wire.HintReceived)
	if len(hints) != 1 {
		t.Fatalf("expected one hint broadcast, got %d", len(hints))
	}
	if got := hints[0].Data.(wire.HintPayload); got.Question != 0 || got.Hint != "look closer" {
		t.Fatalf("hint payload: %+v", got)
	}
}

func TestSubmitFeedback(t *testing.T) {
	captureTimers(t)
	f := newFixture(t)
	b := f.join(t, "b")
	f.addStartAdvance(t, mcSubmission(200, 200))

	req := wire.SubmitFeedbackRequest{
		Session:  f.sid,
		Name:     "b",
		Question: ptr(0),
		Feedback: wire.FeedbackSubmission{Rating: ptr(4), Message: ptr("great question")},
	}
	env := mustAck(t, f.tr.Emit(b, wire.SubmitFeedback, req))
	if env.Status != wire.StatusOK {
		t.Fatalf("feedback failed: %+v", env)
	}

	relayed := f.owner.PushedNamed(wire.FeedbackSubmitted)
	if len(relayed) != 1 {
		t.Fatalf("owner should get the feedback emit, got %d", len(relayed))
	}
	got := relayed[0].Data.(wire.FeedbackSubmittedPayload)
	if got.User != "b" || got.Question != 0 || got.Feedback.Rating != 4 {
		t.Fatalf("feedback payload: %+v", got)
	}

	// One feedback per participant per question.
	env = mustAck(t, f.tr.Emit(b, wire.SubmitFeedback, req))
	if env.Status != wire.StatusBad || env.Errors[0].Field != "feedback" {
		t.Fatalf("duplicate feedback should fail, got %+v", env)
	}

	// Feedback for a question not yet revealed is rejected.
	later := req
	later.Question = ptr(1)
	env = mustAck(t, f.tr.Emit(b, wire.SubmitFeedback, later))
	if env.Status != wire.StatusBad || env.Errors[0].Field != "question" {
		t.Fatalf("unrevealed question feedback should fail, got %+v", env)
	}
}

func TestMissingArgs(t *testing.T) {
	f := newFixture(t)
	env := mustAck(t, f.tr.Emit(f.owner, wire.JoinSession, nil))
	if env.Status != wire.StatusBad || env.Session != nil || env.Errors != nil {
		t.Fatalf("missing args should yield a bare failure, got %+v", env)
	}
}

func TestEditAndRemoveRestrictions(t *testing.T) {
	captureTimers(t)
	f := newFixture(t)
	mustAck(t, f.tr.Emit(f.owner, wire.AddQuestion, wire.AddQuestionRequest{Session: f.sid, Question: mcSubmission(200, 200)}))
	mustAck(t, f.tr.Emit(f.owner, wire.AddQuestion, wire.AddQuestionRequest{Session: f.sid, Question: mcSubmission(100, 100)}))
	mustAck(t, f.tr.Emit(f.owner, wire.StartSession, wire.SessionRequest{Session: f.sid}))
	mustAck(t, f.tr.Emit(f.owner, wire.NextQuestion, wire.SessionRequest{Session: f.sid}))

	// The live question cannot be edited or removed.
	env := mustAck(t, f.tr.Emit(f.owner, wire.EditQuestion, wire.EditQuestionRequest{Session: f.sid, Index: ptr(0), Question: mcSubmission(300, 300)}))
	if env.Status != wire.StatusBad || env.Errors[0].Field != "index" {
		t.Fatalf("editing the live question should fail, got %+v", env)
	}
	env = mustAck(t, f.tr.Emit(f.owner, wire.RemoveQuestion, wire.RemoveQuestionRequest{Session: f.sid, Index: ptr(0)}))
	if env.Status != wire.StatusBad || env.Errors[0].Field != "index" {
		t.Fatalf("removing the live question should fail, got %+v", env)
	}

	// A pending question can still be edited.
	env = mustAck(t, f.tr.Emit(f.owner, wire.EditQuestion, wire.EditQuestionRequest{Session: f.sid, Index: ptr(1), Question: mcSubmission(300, 300)}))
	if env.Status != wire.StatusOK {
		t.Fatalf("editing a pending question failed: %+v", env)
	}

	// Cross-kind replacement is rejected.
	fill := wire.QuestionSubmission{
		Text:      ptr("f"),
		TimeLimit: ptr(60),
		Body: &wire.BodySubmission{
			Kind:    ptr(wire.KindFillIn),
			Answers: []wire.OptionSubmission{{Text: ptr("x"), Points: ptr(100)}},
		},
	}
	env = mustAck(t, f.tr.Emit(f.owner, wire.EditQuestion, wire.EditQuestionRequest{Session: f.sid, Index: ptr(1), Question: fill}))
	if env.Status != wire.StatusBad || env.Errors[0].Field != "question" {
		t.Fatalf("cross-kind edit should fail, got %+v", env)
	}
}
