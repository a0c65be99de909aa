package wire

// Body kind discriminators as they appear on the wire.
const (
	KindMultipleChoice = "multipleChoice"
	KindFillIn         = "fillIn"
)

// JoinSessionRequest asks to join session ID under a display name.
type JoinSessionRequest struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// AddQuestionRequest submits a new question to an owned session.
type AddQuestionRequest struct {
	Session  string             `json:"session"`
	Question QuestionSubmission `json:"question"`
}

// EditQuestionRequest replaces the question at Index with a new submission
// of the same body kind.
type EditQuestionRequest struct {
	Session  string             `json:"session"`
	Index    *int               `json:"index"`
	Question QuestionSubmission `json:"question"`
}

// RemoveQuestionRequest removes the question at Index.
type RemoveQuestionRequest struct {
	Session string `json:"session"`
	Index   *int   `json:"index"`
}

// KickUserRequest removes a named participant from an owned session.
type KickUserRequest struct {
	Session string `json:"session"`
	Name    string `json:"name"`
}

// SessionRequest carries only the session id (start session, end session,
// next question).
type SessionRequest struct {
	Session string `json:"session"`
}

// QuestionIndexRequest targets one question of an owned session (end
// question).
type QuestionIndexRequest struct {
	Session  string `json:"session"`
	Question *int   `json:"question"`
}

// QuestionResponseRequest submits a participant's answer to the current
// question.
type QuestionResponseRequest struct {
	Session  string             `json:"session"`
	Name     string             `json:"name"`
	Index    *int               `json:"index"`
	Response ResponseSubmission `json:"response"`
}

// SubmitFeedbackRequest rates a revealed question.
type SubmitFeedbackRequest struct {
	Session  string             `json:"session"`
	Name     string             `json:"name"`
	Question *int               `json:"question"`
	Feedback FeedbackSubmission `json:"feedback"`
}

// SendHintRequest pushes a hint for the current question to the room.
type SendHintRequest struct {
	Session  string `json:"session"`
	Question *int   `json:"question"`
	Hint     string `json:"hint"`
}

// QuestionSubmission is the client-authored form of a question. Every field
// is optional on the wire; the parser reports what is missing or out of
// bounds instead of failing to decode.
type QuestionSubmission struct {
	Text      *string         `json:"text"`
	TimeLimit *int            `json:"timeLimit"`
	Body      *BodySubmission `json:"body"`
}

// BodySubmission is the client-authored question body. Choices/Answer are
// read for multiple choice, Answers for fill-in.
type BodySubmission struct {
	Kind    *string            `json:"kind"`
	Choices []OptionSubmission `json:"choices"`
	Answer  *int               `json:"answer"`
	Answers []OptionSubmission `json:"answers"`
}

// OptionSubmission is one choice or one accepted fill-in answer.
type OptionSubmission struct {
	Text   *string `json:"text"`
	Points *int    `json:"points"`
}

// ResponseSubmission is a participant's typed answer. Answer is an integer
// choice index for multiple choice and a string for fill-in; it arrives
// untyped and is narrowed by the controller.
type ResponseSubmission struct {
	Kind      *string `json:"kind"`
	Submitter string  `json:"submitter"`
	Answer    any     `json:"answer"`
}

// FeedbackSubmission is a participant's rating of a question.
type FeedbackSubmission struct {
	Rating  *int    `json:"rating"`
	Message *string `json:"message"`
}
