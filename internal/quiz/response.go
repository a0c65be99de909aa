package quiz

import (
	"strconv"
	"strings"
)

// BodyKind discriminates the two question/response variants.
type BodyKind string

const (
	MultipleChoice BodyKind = "multipleChoice"
	FillIn         BodyKind = "fillIn"
)

// Response is one participant's typed answer to a question. Choice is read
// when Kind is MultipleChoice, Text when Kind is FillIn.
type Response struct {
	Submitter string
	Kind      BodyKind
	Choice    int
	Text      string
}

// NewChoiceResponse builds a multiple-choice response.
func NewChoiceResponse(submitter string, choice int) Response {
	return Response{Submitter: submitter, Kind: MultipleChoice, Choice: choice}
}

// NewTextResponse builds a fill-in response.
func NewTextResponse(submitter, text string) Response {
	return Response{Submitter: submitter, Kind: FillIn, Text: text}
}

// Key is the frequency-map key for this response: the stringified choice
// index, or the lowercased fill-in text.
func (r Response) Key() string {
	if r.Kind == MultipleChoice {
		return strconv.Itoa(r.Choice)
	}
	return strings.ToLower(r.Text)
}

// String renders the raw answer for the owner-facing statistics emit.
func (r Response) String() string {
	if r.Kind == MultipleChoice {
		return strconv.Itoa(r.Choice)
	}
	return r.Text
}
