package wire

// UserPayload names a participant in join/kick/disconnect events.
type UserPayload struct {
	Name string `json:"name"`
}

// QuestionView is the participant-facing projection of a question. The
// correct multiple-choice index and the accepted fill-in answers are
// withheld; choices keep their point values so clients can display stakes.
type QuestionView struct {
	Text      string       `json:"text"`
	TimeLimit int          `json:"timeLimit"`
	Kind      string       `json:"kind"`
	Choices   []OptionView `json:"choices,omitempty"`
	Blanks    int          `json:"blanks,omitempty"`
}

// OptionView is one selectable choice as shown to participants.
type OptionView struct {
	Text   string `json:"text"`
	Points int    `json:"points"`
}

// NextQuestionPayload is both the owner ack and the room broadcast for an
// advance; the two carry identical data.
type NextQuestionPayload struct {
	Index    int          `json:"index"`
	Question QuestionView `json:"question"`
}

// ResponseAckPayload acknowledges a graded response to its submitter.
// FirstCorrect reports whether the submitter is the question's first
// correct responder.
type ResponseAckPayload struct {
	Index        int  `json:"index"`
	FirstCorrect bool `json:"firstCorrect"`
	Points       int  `json:"points"`
}

// ResponseAddedPayload is the owner-private statistics emit for each
// accepted response. FirstCorrect is the holder's name, or "" while no
// response has scored.
type ResponseAddedPayload struct {
	Index             int     `json:"index"`
	User              string  `json:"user"`
	Response          string  `json:"response"`
	Points            int     `json:"points"`
	FirstCorrect      string  `json:"firstCorrect"`
	Frequency         int     `json:"frequency"`
	RelativeFrequency float64 `json:"relativeFrequency"`
}

// QuestionEndedPayload identifies which question ended. The manual path and
// the timer path emit the same payload.
type QuestionEndedPayload struct {
	Question int `json:"question"`
}

// FeedbackView is feedback as relayed to the owner.
type FeedbackView struct {
	Rating  int    `json:"rating"`
	Message string `json:"message"`
}

// FeedbackSubmittedPayload is the owner-private feedback emit.
type FeedbackSubmittedPayload struct {
	User     string       `json:"user"`
	Question int          `json:"question"`
	Feedback FeedbackView `json:"feedback"`
}

// HintPayload carries an owner hint for the current question.
type HintPayload struct {
	Question int    `json:"question"`
	Hint     string `json:"hint"`
}
