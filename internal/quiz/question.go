package quiz

import (
	"errors"
	"strconv"
	"strings"
	"sync"
	"time"
)

// Response rejection reasons.
var (
	ErrNotStarted        = errors.New("question not started")
	ErrEnded             = errors.New("question ended")
	ErrDuplicateResponse = errors.New("duplicate response")
)

// Timer is the slice of *time.Timer a question needs.
type Timer interface {
	Stop() bool
}

// NewTimer arms a one-shot timer. Tests substitute it to drive expiry with
// virtual time instead of waiting out real time limits.
var NewTimer = func(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// Option is one multiple-choice choice or one accepted fill-in answer.
type Option struct {
	Text   string
	Points int
}

// Body is the tagged body of a question. Choices and Answer are read when
// Kind is MultipleChoice; Answers when Kind is FillIn. answerPoints is the
// lowercased fill-in lookup table built at construction.
type Body struct {
	Kind    BodyKind
	Choices []Option
	Answer  int
	Answers []Option

	answerPoints map[string]int
}

// NewMultipleChoiceBody builds a multiple-choice body. Bounds are the
// parser's concern; the body trusts its inputs.
func NewMultipleChoiceBody(choices []Option, answer int) Body {
	return Body{Kind: MultipleChoice, Choices: choices, Answer: answer}
}

// NewFillInBody builds a fill-in body and its lowercased lookup table.
func NewFillInBody(answers []Option) Body {
	points := make(map[string]int, len(answers))
	for _, a := range answers {
		points[strings.ToLower(a.Text)] = a.Points
	}
	return Body{Kind: FillIn, Answers: answers, answerPoints: points}
}

// Question is one prompt with a body, a time limit, a Created → Started →
// Ended lifecycle, and the responses, statistics and feedback collected
// while live. All methods are safe for concurrent use; in practice the
// controller serializes everything except the expiry timer.
type Question struct {
	Index     int
	Text      string
	TimeLimit int // seconds
	Body      Body

	mu           sync.Mutex
	isStarted    bool
	hasEnded     bool
	responses    map[string]Response
	frequency    map[string]int
	firstCorrect string
	feedback     map[string]Feedback
	onTimeout    func()
	timer        Timer
}

// NewQuestion builds an unappended (Index −1) question and pre-seeds the
// frequency map with every known answer key at zero, so relative frequency
// is defined for canonical answers from the first response on.
func NewQuestion(text string, body Body, timeLimit int) *Question {
	freq := make(map[string]int)
	switch body.Kind {
	case MultipleChoice:
		for i := range body.Choices {
			freq[strconv.Itoa(i)] = 0
		}
	case FillIn:
		for _, a := range body.Answers {
			freq[strings.ToLower(a.Text)] = 0
		}
	}
	return &Question{
		Index:     -1,
		Text:      text,
		TimeLimit: timeLimit,
		Body:      body,
		responses: make(map[string]Response),
		frequency: freq,
		feedback:  make(map[string]Feedback),
	}
}

// SetOnTimeout registers the callback the expiry timer fires after ending
// the question. It must be set before Start.
func (q *Question) SetOnTimeout(f func()) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.onTimeout = f
}

// Start marks the question live and arms the one-shot expiry timer.
// Starting an already-started question is a no-op.
func (q *Question) Start() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.isStarted {
		return
	}
	q.isStarted = true
	q.timer = NewTimer(time.Duration(q.TimeLimit)*time.Second, q.expire)
}

// End terminates a live question and cancels the pending timer. It reports
// whether this call performed the transition; ending an unstarted or
// already-ended question is a no-op returning false.
func (q *Question) End() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	if !q.isStarted || q.hasEnded {
		return false
	}
	q.hasEnded = true
	if q.timer != nil {
		q.timer.Stop()
	}
	return true
}

// expire is the timer callback: end the question, then fire onTimeout. A
// timer observed after a manual end does nothing.
func (q *Question) expire() {
	q.mu.Lock()
	if !q.isStarted || q.hasEnded {
		q.mu.Unlock()
		return
	}
	q.hasEnded = true
	f := q.onTimeout
	q.mu.Unlock()
	if f != nil {
		f()
	}
}

// IsStarted reports whether Start has been called.
func (q *Question) IsStarted() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.isStarted
}

// HasEnded reports whether the question has ended, by any path.
func (q *Question) HasEnded() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.hasEnded
}

// Grade scores a response against the body: zero on kind mismatch, the
// selected choice's points on an exact index match, or the case-insensitive
// fill-in lookup.
func (q *Question) Grade(r Response) int {
	if r.Kind != q.Body.Kind {
		return 0
	}
	switch q.Body.Kind {
	case MultipleChoice:
		if r.Choice == q.Body.Answer {
			return q.Body.Choices[q.Body.Answer].Points
		}
	case FillIn:
		return q.Body.answerPoints[strings.ToLower(r.Text)]
	}
	return 0
}

// AddResponse records a response while the question is live. Each submitter
// may respond once. On success it updates the frequency count, attributes
// first-correct if this response is the first to score, and returns the
// points earned.
func (q *Question) AddResponse(r Response) (int, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if !q.isStarted {
		return 0, ErrNotStarted
	}
	if q.hasEnded {
		return 0, ErrEnded
	}
	if _, ok := q.responses[r.Submitter]; ok {
		return 0, ErrDuplicateResponse
	}
	q.responses[r.Submitter] = r
	q.frequency[r.Key()]++
	points := q.Grade(r)
	if points > 0 && q.firstCorrect == "" {
		q.firstCorrect = r.Submitter
	}
	return points, nil
}

// FirstCorrect returns the name of the first submitter to score, or "".
func (q *Question) FirstCorrect() string {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.firstCorrect
}

// ResponseCount returns how many responses have been recorded.
func (q *Question) ResponseCount() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.responses)
}

// FrequencyOf returns how many recorded responses share r's answer key.
func (q *Question) FrequencyOf(r Response) int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.frequency[r.Key()]
}

// RelativeFrequencyOf returns FrequencyOf divided by the response count.
// The caller guarantees at least one response has been recorded.
func (q *Question) RelativeFrequencyOf(r Response) float64 {
	q.mu.Lock()
	defer q.mu.Unlock()
	return float64(q.frequency[r.Key()]) / float64(len(q.responses))
}

// AddFeedback stores one feedback per participant; it reports false on a
// duplicate.
func (q *Question) AddFeedback(name string, f Feedback) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	if _, ok := q.feedback[name]; ok {
		return false
	}
	q.feedback[name] = f
	return true
}

// clone deep-copies the question for a post-end snapshot. The copy carries
// no timer and no timeout hook; it is a read-only view.
func (q *Question) clone() *Question {
	q.mu.Lock()
	defer q.mu.Unlock()

	body := Body{Kind: q.Body.Kind, Answer: q.Body.Answer}
	body.Choices = append([]Option(nil), q.Body.Choices...)
	body.Answers = append([]Option(nil), q.Body.Answers...)
	if q.Body.answerPoints != nil {
		body.answerPoints = make(map[string]int, len(q.Body.answerPoints))
		for k, v := range q.Body.answerPoints {
			body.answerPoints[k] = v
		}
	}

	c := &Question{
		Index:        q.Index,
		Text:         q.Text,
		TimeLimit:    q.TimeLimit,
		Body:         body,
		isStarted:    q.isStarted,
		hasEnded:     q.hasEnded,
		firstCorrect: q.firstCorrect,
		responses:    make(map[string]Response, len(q.responses)),
		frequency:    make(map[string]int, len(q.frequency)),
		feedback:     make(map[string]Feedback, len(q.feedback)),
	}
	for k, v := range q.responses {
		c.responses[k] = v
	}
	for k, v := range q.frequency {
		c.frequency[k] = v
	}
	for k, v := range q.feedback {
		c.feedback[k] = v
	}
	return c
}
