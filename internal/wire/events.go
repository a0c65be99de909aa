package wire

// Request event names. Each maps to one controller handler; the handler
// answers the caller through the per-request ack callback using the same
// event name in the envelope (CreateSession answers with CreatedSession).
const (
	CreateSession    = "createSession"
	JoinSession      = "joinSession"
	AddQuestion      = "addQuestion"
	EditQuestion     = "editQuestion"
	RemoveQuestion   = "removeQuestion"
	KickUser         = "kickUser"
	StartSession     = "startSession"
	EndSession       = "endSession"
	NextQuestion     = "nextQuestion"
	QuestionResponse = "questionResponse"
	EndQuestion      = "endQuestion"
	SubmitFeedback   = "submitFeedback"
	SendHint         = "sendHint"
)

// Broadcast / push event names. These ride in envelopes pushed to a session
// room (or privately to the owner) and never appear as requests.
const (
	CreatedSession        = "createdSession"
	UserJoinedSession     = "userJoinedSession"
	UserKicked            = "userKicked"
	SessionStarted        = "sessionStarted"
	SessionEnded          = "sessionEnded"
	QuestionResponseAdded = "questionResponseAdded"
	QuestionEnded         = "questionEnded"
	FeedbackSubmitted     = "feedbackSubmitted"
	HintReceived          = "hintReceived"
	UserDisconnected      = "userDisconnected"
)
