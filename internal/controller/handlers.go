package controller

import (
	"encoding/json"
	"errors"

	"github.com/classquiz/quizhost/internal/quiz"
	"github.com/classquiz/quizhost/internal/transport"
	"github.com/classquiz/quizhost/internal/wire"
)

// handleCreateSession allocates a session owned by the caller and joins the
// caller to its room. The ack data is the session code.
func (c *Controller) handleCreateSession(conn transport.Conn, _ json.RawMessage, ack transport.Ack) {
	ls := c.createSession(conn.ID())
	id := ls.session.ID
	c.tr.JoinRoom(conn, id)
	logSession("created", id, conn.ID())
	ack(wire.OK(wire.CreatedSession, id, id))
}

// handleJoinSession admits the caller to a session under a display name and
// tells the rest of the room.
func (c *Controller) handleJoinSession(conn transport.Conn, args json.RawMessage, ack transport.Ack) {
	req, ok := decode[wire.JoinSessionRequest](args)
	if !ok {
		ack(wire.Fail(wire.JoinSession, "", nil))
		return
	}

	ls := c.lookup(req.ID)
	if ls == nil {
		ack(wire.FailField(wire.JoinSession, "", "session", nullable(req.ID)))
		return
	}
	if req.Name == "" {
		ack(wire.FailField(wire.JoinSession, "", "name", nil))
		return
	}

	ls.mu.Lock()
	defer ls.mu.Unlock()
	if err := ls.session.AddUser(quiz.User{Name: req.Name, ID: conn.ID()}); err != nil {
		if errors.Is(err, quiz.ErrDuplicateName) {
			ack(wire.FailField(wire.JoinSession, "", "name", req.Name))
			return
		}
		ack(wire.FailField(wire.JoinSession, "", "session", nullable(req.ID)))
		return
	}

	c.tr.JoinRoom(conn, req.ID)
	ack(wire.OK(wire.JoinSession, req.ID, nil))
	c.tr.EmitToRoomExcept(req.ID, conn.ID(), wire.OK(wire.UserJoinedSession, req.ID, wire.UserPayload{Name: req.Name}))
}

// handleAddQuestion parses the submission and appends it to the quiz. The
// question's timeout hook broadcasts QuestionEnded with the index committed
// here, not whatever the current index is when the timer fires.
func (c *Controller) handleAddQuestion(conn transport.Conn, args json.RawMessage, ack transport.Ack) {
	req, ok := decode[wire.AddQuestionRequest](args)
	if !ok {
		ack(wire.Fail(wire.AddQuestion, "", nil))
		return
	}
	ls, failure, ok := c.ownerSession(conn, wire.AddQuestion, req.Session)
	if !ok {
		ack(failure)
		return
	}

	q, errs := quiz.ParseSubmission(req.Question)
	if errs != nil {
		ack(wire.Fail(wire.AddQuestion, req.Session, errs))
		return
	}

	ls.mu.Lock()
	defer ls.mu.Unlock()
	if ls.session.HasEnded() {
		ack(wire.FailField(wire.AddQuestion, "", "session", req.Session))
		return
	}

	ls.session.Quiz().AddQuestion(q)
	c.armTimeout(req.Session, q)
	ack(wire.OK(wire.AddQuestion, req.Session, nil))
}

// armTimeout wires the question's expiry broadcast. The closure captures
// the append-time index.
func (c *Controller) armTimeout(sessionID string, q *quiz.Question) {
	index := q.Index
	q.SetOnTimeout(func() {
		c.tr.EmitToRoom(sessionID, wire.OK(wire.QuestionEnded, sessionID, wire.QuestionEndedPayload{Question: index}))
	})
}

// handleEditQuestion replaces a question in place. The live current
// question of a started session cannot be edited, and the replacement must
// keep the body kind.
func (c *Controller) handleEditQuestion(conn transport.Conn, args json.RawMessage, ack transport.Ack) {
	req, ok := decode[wire.EditQuestionRequest](args)
	if !ok {
		ack(wire.Fail(wire.EditQuestion, "", nil))
		return
	}
	ls, failure, ok := c.ownerSession(conn, wire.EditQuestion, req.Session)
	if !ok {
		ack(failure)
		return
	}
	if req.Index == nil {
		ack(wire.FailField(wire.EditQuestion, req.Session, "index", nil))
		return
	}

	q, errs := quiz.ParseSubmission(req.Question)
	if errs != nil {
		ack(wire.Fail(wire.EditQuestion, req.Session, errs))
		return
	}

	ls.mu.Lock()
	defer ls.mu.Unlock()
	z := ls.session.Quiz()
	if ls.session.HasEnded() {
		ack(wire.FailField(wire.EditQuestion, "", "session", req.Session))
		return
	}
	if ls.session.IsStarted() && *req.Index == z.CurrentIndex() {
		ack(wire.FailField(wire.EditQuestion, req.Session, "index", *req.Index))
		return
	}
	if !z.ReplaceQuestion(*req.Index, q) {
		ack(wire.FailField(wire.EditQuestion, req.Session, "question", *req.Index))
		return
	}
	c.armTimeout(req.Session, q)
	ack(wire.OK(wire.EditQuestion, req.Session, nil))
}

// handleRemoveQuestion deletes a question. Surviving questions keep their
// append-time indexes.
func (c *Controller) handleRemoveQuestion(conn transport.Conn, args json.RawMessage, ack transport.Ack) {
	req, ok := decode[wire.RemoveQuestionRequest](args)
	if !ok {
		ack(wire.Fail(wire.RemoveQuestion, "", nil))
		return
	}
	ls, failure, ok := c.ownerSession(conn, wire.RemoveQuestion, req.Session)
	if !ok {
		ack(failure)
		return
	}
	if req.Index == nil {
		ack(wire.FailField(wire.RemoveQuestion, req.Session, "index", nil))
		return
	}

	ls.mu.Lock()
	defer ls.mu.Unlock()
	z := ls.session.Quiz()
	if ls.session.HasEnded() {
		ack(wire.FailField(wire.RemoveQuestion, "", "session", req.Session))
		return
	}
	if ls.session.IsStarted() && *req.Index == z.CurrentIndex() {
		ack(wire.FailField(wire.RemoveQuestion, req.Session, "index", *req.Index))
		return
	}
	if !z.RemoveQuestion(*req.Index) {
		ack(wire.FailField(wire.RemoveQuestion, req.Session, "question", *req.Index))
		return
	}
	ack(wire.OK(wire.RemoveQuestion, req.Session, nil))
}

// handleKickUser removes a participant, tells the room, and forces the
// kicked connection out of it. The freed name can be taken again.
func (c *Controller) handleKickUser(conn transport.Conn, args json.RawMessage, ack transport.Ack) {
	req, ok := decode[wire.KickUserRequest](args)
	if !ok {
		ack(wire.Fail(wire.KickUser, "", nil))
		return
	}
	ls, failure, ok := c.ownerSession(conn, wire.KickUser, req.Session)
	if !ok {
		ack(failure)
		return
	}

	ls.mu.Lock()
	defer ls.mu.Unlock()
	u, removed := ls.session.RemoveUser(req.Name)
	if !removed {
		ack(wire.FailField(wire.KickUser, req.Session, "name", nullable(req.Name)))
		return
	}

	ack(wire.OK(wire.KickUser, req.Session, wire.UserPayload{Name: u.Name}))
	c.tr.EmitToRoomExcept(req.Session, conn.ID(), wire.OK(wire.UserKicked, req.Session, wire.UserPayload{Name: u.Name}))
	c.tr.ForceLeave(u.ID, req.Session)
}

// handleStartSession moves the session into its started state.
func (c *Controller) handleStartSession(conn transport.Conn, args json.RawMessage, ack transport.Ack) {
	req, ok := decode[wire.SessionRequest](args)
	if !ok {
		ack(wire.Fail(wire.StartSession, "", nil))
		return
	}
	ls, failure, ok := c.ownerSession(conn, wire.StartSession, req.Session)
	if !ok {
		ack(failure)
		return
	}

	ls.mu.Lock()
	defer ls.mu.Unlock()
	if ls.session.IsStarted() {
		ack(wire.Fail(wire.StartSession, req.Session, nil))
		return
	}
	ls.session.Start()
	logSession("started", req.Session, conn.ID())
	ack(wire.OK(wire.StartSession, req.Session, nil))
	c.tr.EmitToRoomExcept(req.Session, conn.ID(), wire.OK(wire.SessionStarted, req.Session, nil))
}

// handleEndSession terminates a started session. Participants are forced
// out of the room; the owner stays to read terminal state, and the session
// remains addressable to the owner until their connection closes.
func (c *Controller) handleEndSession(conn transport.Conn, args json.RawMessage, ack transport.Ack) {
	req, ok := decode[wire.SessionRequest](args)
	if !ok {
		ack(wire.Fail(wire.EndSession, "", nil))
		return
	}
	ls, failure, ok := c.ownerSession(conn, wire.EndSession, req.Session)
	if !ok {
		ack(failure)
		return
	}

	ls.mu.Lock()
	defer ls.mu.Unlock()
	users := ls.session.Users()
	if !ls.session.End() {
		ack(wire.Fail(wire.EndSession, req.Session, nil))
		return
	}
	logSession("ended", req.Session, conn.ID())
	ack(wire.OK(wire.EndSession, req.Session, nil))
	c.tr.EmitToRoomExcept(req.Session, conn.ID(), wire.OK(wire.SessionEnded, req.Session, nil))
	for _, u := range users {
		c.tr.ForceLeave(u.ID, req.Session)
	}
}

// handleNextQuestion advances the quiz and starts the revealed question.
// The owner ack and the room broadcast carry the same payload. When no
// question remains, the failure exposes the quiz position so the client can
// recover.
func (c *Controller) handleNextQuestion(conn transport.Conn, args json.RawMessage, ack transport.Ack) {
	req, ok := decode[wire.SessionRequest](args)
	if !ok {
		ack(wire.Fail(wire.NextQuestion, "", nil))
		return
	}
	ls, failure, ok := c.ownerSession(conn, wire.NextQuestion, req.Session)
	if !ok {
		ack(failure)
		return
	}

	ls.mu.Lock()
	defer ls.mu.Unlock()
	if !ls.session.IsStarted() || ls.session.HasEnded() {
		ack(wire.Fail(wire.NextQuestion, req.Session, nil))
		return
	}
	z := ls.session.Quiz()
	q := z.AdvanceToNextQuestion()
	if q == nil {
		ack(wire.Fail(wire.NextQuestion, req.Session, []wire.FieldError{
			{Field: "numQuestions", Value: z.Len()},
			{Field: "currentQuestion", Value: z.CurrentIndex()},
		}))
		return
	}

	payload := wire.NextQuestionPayload{Index: z.CurrentIndex(), Question: questionView(q)}
	ack(wire.OK(wire.NextQuestion, req.Session, payload))
	c.tr.EmitToRoomExcept(req.Session, conn.ID(), wire.OK(wire.NextQuestion, req.Session, payload))
}

// handleQuestionResponse grades a participant's answer to the current
// question. The owner privately receives the running statistics; the
// submitter learns their points and whether they were first to score.
func (c *Controller) handleQuestionResponse(conn transport.Conn, args json.RawMessage, ack transport.Ack) {
	req, ok := decode[wire.QuestionResponseRequest](args)
	if !ok {
		ack(wire.Fail(wire.QuestionResponse, "", nil))
		return
	}

	ls := c.lookup(req.Session)
	if ls == nil {
		ack(wire.FailField(wire.QuestionResponse, "", "session", nullable(req.Session)))
		return
	}

	ls.mu.Lock()
	defer ls.mu.Unlock()
	user, found := ls.session.FindUserByName(req.Name)
	if !found || user.ID != conn.ID() {
		ack(wire.FailField(wire.QuestionResponse, "", "name", nullable(req.Name)))
		return
	}

	z := ls.session.Quiz()
	q := z.CurrentQuestion()
	if q == nil || req.Index == nil || *req.Index != z.CurrentIndex() {
		ack(wire.FailField(wire.QuestionResponse, req.Session, "index", derefOr(req.Index)))
		return
	}

	r, ok := parseResponse(req.Response, req.Name)
	if !ok {
		ack(wire.FailField(wire.QuestionResponse, req.Session, "response", nil))
		return
	}

	points, err := q.AddResponse(r)
	if err != nil {
		value := any(nil)
		if errors.Is(err, quiz.ErrDuplicateResponse) {
			value = "duplicate"
		}
		ack(wire.FailField(wire.QuestionResponse, req.Session, "response", value))
		return
	}

	c.tr.EmitToOne(ls.session.Owner, wire.OK(wire.QuestionResponseAdded, req.Session, wire.ResponseAddedPayload{
		Index:             *req.Index,
		User:              req.Name,
		Response:          r.String(),
		Points:            points,
		FirstCorrect:      q.FirstCorrect(),
		Frequency:         q.FrequencyOf(r),
		RelativeFrequency: q.RelativeFrequencyOf(r),
	}))
	ack(wire.OK(wire.QuestionResponse, req.Session, wire.ResponseAckPayload{
		Index:        *req.Index,
		FirstCorrect: q.FirstCorrect() == req.Name,
		Points:       points,
	}))
}

// parseResponse narrows the untyped wire answer into a Response. The
// submitter is the verified caller name, not whatever the payload claims.
func parseResponse(sub wire.ResponseSubmission, name string) (quiz.Response, bool) {
	if sub.Kind == nil {
		return quiz.Response{}, false
	}
	switch *sub.Kind {
	case wire.KindMultipleChoice:
		f, ok := sub.Answer.(float64)
		if !ok || f != float64(int(f)) {
			return quiz.Response{}, false
		}
		return quiz.NewChoiceResponse(name, int(f)), true
	case wire.KindFillIn:
		s, ok := sub.Answer.(string)
		if !ok {
			return quiz.Response{}, false
		}
		return quiz.NewTextResponse(name, s), true
	}
	return quiz.Response{}, false
}

// handleEndQuestion ends the current question ahead of its timer. The
// broadcast is identical to the timer-driven one, and whichever path runs
// first wins; the loser is rejected here or no-ops there.
func (c *Controller) handleEndQuestion(conn transport.Conn, args json.RawMessage, ack transport.Ack) {
	req, ok := decode[wire.QuestionIndexRequest](args)
	if !ok {
		ack(wire.Fail(wire.EndQuestion, "", nil))
		return
	}
	ls, failure, ok := c.ownerSession(conn, wire.EndQuestion, req.Session)
	if !ok {
		ack(failure)
		return
	}

	ls.mu.Lock()
	defer ls.mu.Unlock()
	if !ls.session.IsStarted() || ls.session.HasEnded() {
		ack(wire.Fail(wire.EndQuestion, req.Session, nil))
		return
	}
	z := ls.session.Quiz()
	q := z.CurrentQuestion()
	if q == nil || req.Question == nil || *req.Question != z.CurrentIndex() {
		ack(wire.FailField(wire.EndQuestion, req.Session, "question", derefOr(req.Question)))
		return
	}
	if !q.End() {
		ack(wire.Fail(wire.EndQuestion, req.Session, nil))
		return
	}

	ack(wire.OK(wire.EndQuestion, req.Session, nil))
	c.tr.EmitToRoomExcept(req.Session, conn.ID(), wire.OK(wire.QuestionEnded, req.Session, wire.QuestionEndedPayload{Question: q.Index}))
}

// handleSubmitFeedback records a rating for any already-revealed question
// and relays it privately to the owner.
func (c *Controller) handleSubmitFeedback(conn transport.Conn, args json.RawMessage, ack transport.Ack) {
	req, ok := decode[wire.SubmitFeedbackRequest](args)
	if !ok {
		ack(wire.Fail(wire.SubmitFeedback, "", nil))
		return
	}

	ls := c.lookup(req.Session)
	if ls == nil {
		ack(wire.FailField(wire.SubmitFeedback, "", "session", nullable(req.Session)))
		return
	}

	ls.mu.Lock()
	defer ls.mu.Unlock()
	user, found := ls.session.FindUserByName(req.Name)
	if !found || user.ID != conn.ID() {
		ack(wire.FailField(wire.SubmitFeedback, "", "name", nullable(req.Name)))
		return
	}

	if req.Feedback.Rating == nil {
		ack(wire.FailField(wire.SubmitFeedback, req.Session, "rating", nil))
		return
	}
	message := ""
	if req.Feedback.Message != nil {
		message = *req.Feedback.Message
	}
	fb, err := quiz.NewFeedback(*req.Feedback.Rating, message)
	if err != nil {
		field := "rating"
		value := any(*req.Feedback.Rating)
		if len(message) > quiz.MaxFeedbackMessageLen {
			field, value = "message", message
		}
		ack(wire.FailField(wire.SubmitFeedback, req.Session, field, value))
		return
	}

	z := ls.session.Quiz()
	if req.Question == nil || *req.Question < 0 || *req.Question > z.CurrentIndex() {
		ack(wire.FailField(wire.SubmitFeedback, req.Session, "question", derefOr(req.Question)))
		return
	}
	q := z.QuestionAt(*req.Question)
	if q == nil {
		ack(wire.FailField(wire.SubmitFeedback, req.Session, "question", *req.Question))
		return
	}
	if !q.AddFeedback(req.Name, fb) {
		ack(wire.FailField(wire.SubmitFeedback, req.Session, "feedback", "duplicate"))
		return
	}

	c.tr.EmitToOne(ls.session.Owner, wire.OK(wire.FeedbackSubmitted, req.Session, wire.FeedbackSubmittedPayload{
		User:     req.Name,
		Question: *req.Question,
		Feedback: wire.FeedbackView{Rating: fb.Rating, Message: fb.Message},
	}))
	ack(wire.OK(wire.SubmitFeedback, req.Session, nil))
}

// handleSendHint broadcasts an owner hint for the current question.
func (c *Controller) handleSendHint(conn transport.Conn, args json.RawMessage, ack transport.Ack) {
	req, ok := decode[wire.SendHintRequest](args)
	if !ok {
		ack(wire.Fail(wire.SendHint, "", nil))
		return
	}
	ls, failure, ok := c.ownerSession(conn, wire.SendHint, req.Session)
	if !ok {
		ack(failure)
		return
	}
	if req.Hint == "" {
		ack(wire.FailField(wire.SendHint, req.Session, "hint", nil))
		return
	}

	ls.mu.Lock()
	defer ls.mu.Unlock()
	if !ls.session.IsStarted() || ls.session.HasEnded() {
		ack(wire.Fail(wire.SendHint, req.Session, nil))
		return
	}
	z := ls.session.Quiz()
	if req.Question == nil || *req.Question != z.CurrentIndex() || z.CurrentQuestion() == nil {
		ack(wire.FailField(wire.SendHint, req.Session, "question", derefOr(req.Question)))
		return
	}

	ack(wire.OK(wire.SendHint, req.Session, nil))
	c.tr.EmitToRoomExcept(req.Session, conn.ID(), wire.OK(wire.HintReceived, req.Session, wire.HintPayload{
		Question: *req.Question,
		Hint:     req.Hint,
	}))
}

// handleDisconnect reacts to a closed connection. An owner's loss tears the
// session down entirely; a participant's loss removes them and tells the
// room.
func (c *Controller) handleDisconnect(conn transport.Conn) {
	id := conn.ID()

	owned := c.sessionsOwnedBy(id)
	if len(owned) > 0 {
		for _, ls := range owned {
			sid := ls.session.ID
			c.removeSession(sid)
			ls.mu.Lock()
			ls.session.ForceEnd()
			ls.mu.Unlock()
			logSession("ended by owner disconnect", sid, id)
			c.tr.EmitToRoomExcept(sid, id, wire.OK(wire.SessionEnded, sid, nil))
			c.tr.ForceAllLeave(sid)
		}
		return
	}

	for _, room := range c.tr.RoomsOf(id) {
		ls := c.lookup(room)
		if ls == nil {
			continue
		}
		ls.mu.Lock()
		u, found := ls.session.FindUserByID(id)
		if found {
			ls.session.RemoveUser(u.Name)
		}
		ls.mu.Unlock()
		if found {
			c.tr.EmitToRoomExcept(room, id, wire.OK(wire.UserDisconnected, room, wire.UserPayload{Name: u.Name}))
		}
	}
}
