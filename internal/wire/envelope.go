package wire

// Status codes carried in the envelope. The transport itself has no notion
// of success or failure; these are application-level.
const (
	StatusOK  = 200
	StatusBad = 400
)

// Envelope wraps every acknowledgement and broadcast. Data is present iff
// Status is 200; Errors is present iff Status is 400 and may be null (a
// state rejection with no field to blame, or a request whose args were
// missing entirely).
type Envelope struct {
	Status  int          `json:"status"`
	Event   string       `json:"event"`
	Session *string      `json:"session"`
	Data    any          `json:"data,omitempty"`
	Errors  []FieldError `json:"errors,omitempty"`
}

// FieldError names a rejected argument. Value echoes what the client sent
// (possibly null), or a NestedError when the rejection points inside a
// choice or answer list.
type FieldError struct {
	Field string `json:"field"`
	Value any    `json:"value"`
}

// NestedError locates a rejection inside an indexed list, e.g. choice 2 has
// empty text.
type NestedError struct {
	Index int    `json:"index"`
	Field string `json:"field"`
	Value any    `json:"value"`
}

// OK builds a success envelope for event with the given session id and data.
func OK(event, session string, data any) Envelope {
	return Envelope{Status: StatusOK, Event: event, Session: &session, Data: data}
}

// Fail builds a failure envelope. session may be empty, which serializes as
// null (the caller could not be tied to a session).
func Fail(event, session string, errs []FieldError) Envelope {
	env := Envelope{Status: StatusBad, Event: event, Errors: errs}
	if session != "" {
		env.Session = &session
	}
	return env
}

// FailField is shorthand for a single-descriptor failure.
func FailField(event, session, field string, value any) Envelope {
	return Fail(event, session, []FieldError{{Field: field, Value: value}})
}
