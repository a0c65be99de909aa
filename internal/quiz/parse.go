package quiz

import "github.com/classquiz/quizhost/internal/wire"

// Submission acceptance bounds.
const (
	MinTimeLimit   = 60
	MaxTimeLimit   = 300
	MinTotalPoints = 100
	MaxTotalPoints = 1000
	MinChoices     = 2
	MaxChoices     = 4
	MinAnswers     = 1
	MaxAnswers     = 3
)

// ParseSubmission turns a client-authored question form into a Question, or
// into the full list of field errors. Validation does not stop at the first
// problem; the one exception is a missing body, which leaves nothing else
// to inspect.
func ParseSubmission(sub wire.QuestionSubmission) (*Question, []wire.FieldError) {
	var errs []wire.FieldError

	if sub.Text == nil || *sub.Text == "" {
		errs = append(errs, wire.FieldError{Field: "text", Value: deref(sub.Text)})
	}
	if sub.TimeLimit == nil || *sub.TimeLimit < MinTimeLimit || *sub.TimeLimit > MaxTimeLimit {
		errs = append(errs, wire.FieldError{Field: "timeLimit", Value: deref(sub.TimeLimit)})
	}
	if sub.Body == nil {
		errs = append(errs, wire.FieldError{Field: "body", Value: nil})
		return nil, errs
	}

	var body Body
	switch kind := sub.Body.Kind; {
	case kind != nil && *kind == wire.KindMultipleChoice:
		body, errs = parseMultipleChoice(*sub.Body, errs)
	case kind != nil && *kind == wire.KindFillIn:
		body, errs = parseFillIn(*sub.Body, errs)
	default:
		errs = append(errs, wire.FieldError{Field: "body", Value: deref(kind)})
	}

	if len(errs) > 0 {
		return nil, errs
	}
	return NewQuestion(*sub.Text, body, *sub.TimeLimit), nil
}

func parseMultipleChoice(sub wire.BodySubmission, errs []wire.FieldError) (Body, []wire.FieldError) {
	choices, errs := parseOptions(sub.Choices, "choices", MinChoices, MaxChoices, errs)

	answer := -1
	if sub.Answer == nil || *sub.Answer < 0 || *sub.Answer >= len(sub.Choices) {
		errs = append(errs, wire.FieldError{Field: "answer", Value: deref(sub.Answer)})
	} else {
		answer = *sub.Answer
	}
	return NewMultipleChoiceBody(choices, answer), errs
}

func parseFillIn(sub wire.BodySubmission, errs []wire.FieldError) (Body, []wire.FieldError) {
	answers, errs := parseOptions(sub.Answers, "answers", MinAnswers, MaxAnswers, errs)
	return NewFillInBody(answers), errs
}

// parseOptions validates one choice/answer list: count bounds, per-option
// text and points, and the total-points window. Option errors are reported
// nested under the list's field with the offending index.
func parseOptions(subs []wire.OptionSubmission, field string, lo, hi int, errs []wire.FieldError) ([]Option, []wire.FieldError) {
	if len(subs) < lo || len(subs) > hi {
		errs = append(errs, wire.FieldError{Field: field, Value: len(subs)})
	}

	total := 0
	opts := make([]Option, 0, len(subs))
	for i, sub := range subs {
		opt := Option{}
		if sub.Text == nil || *sub.Text == "" {
			errs = append(errs, wire.FieldError{
				Field: field,
				Value: wire.NestedError{Index: i, Field: "text", Value: deref(sub.Text)},
			})
		} else {
			opt.Text = *sub.Text
		}
		if sub.Points == nil || *sub.Points < 0 {
			errs = append(errs, wire.FieldError{
				Field: field,
				Value: wire.NestedError{Index: i, Field: "points", Value: deref(sub.Points)},
			})
		} else {
			opt.Points = *sub.Points
			total += opt.Points
		}
		opts = append(opts, opt)
	}

	if total < MinTotalPoints || total > MaxTotalPoints {
		errs = append(errs, wire.FieldError{Field: "totalPoints", Value: total})
	}
	return opts, errs
}

// deref unwraps a pointer for error echoing: the value the client sent, or
// nil when the field was absent.
func deref[T any](p *T) any {
	if p == nil {
		return nil
	}
	return *p
}
