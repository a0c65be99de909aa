package quiz

// Quiz is the ordered sequence of questions owned by one session. The
// current index starts at −1 and only ever moves forward. A Quiz is not
// safe for concurrent use; the controller serializes access per session.
type Quiz struct {
	questions []*Question
	current   int
}

// NewQuiz returns an empty quiz positioned before the first question.
func NewQuiz() *Quiz {
	return &Quiz{current: -1}
}

// AddQuestion appends q and assigns its index. Indexes are append-time
// positions and are not recomputed by later removals.
func (z *Quiz) AddQuestion(q *Question) {
	z.questions = append(z.questions, q)
	q.Index = len(z.questions) - 1
}

// Len returns the number of questions.
func (z *Quiz) Len() int {
	return len(z.questions)
}

// CurrentIndex returns the index of the live question, or −1 before the
// first advance.
func (z *Quiz) CurrentIndex() int {
	return z.current
}

// QuestionAt returns the question at i, or nil out of bounds.
func (z *Quiz) QuestionAt(i int) *Question {
	if i < 0 || i >= len(z.questions) {
		return nil
	}
	return z.questions[i]
}

// CurrentQuestion returns the live question, or nil if the quiz has not
// advanced yet or has run past the end.
func (z *Quiz) CurrentQuestion() *Question {
	return z.QuestionAt(z.current)
}

// AdvanceToNextQuestion moves to the next question, starts it, and returns
// it. When no question remains it returns nil and the index is unchanged.
func (z *Quiz) AdvanceToNextQuestion() *Question {
	if z.current+1 >= len(z.questions) {
		return nil
	}
	z.current++
	q := z.questions[z.current]
	q.Start()
	return q
}

// RemoveQuestion deletes the question at i. Surviving questions keep their
// append-time indexes.
func (z *Quiz) RemoveQuestion(i int) bool {
	if i < 0 || i >= len(z.questions) {
		return false
	}
	z.questions = append(z.questions[:i], z.questions[i+1:]...)
	return true
}

// ReplaceQuestion swaps the question at i for q, which must have the same
// body kind. q takes over the slot's index.
func (z *Quiz) ReplaceQuestion(i int, q *Question) bool {
	if i < 0 || i >= len(z.questions) {
		return false
	}
	if z.questions[i].Body.Kind != q.Body.Kind {
		return false
	}
	q.Index = z.questions[i].Index
	z.questions[i] = q
	return true
}

// Clone deep-copies the quiz for the read-only view handed out after a
// session ends. Mutating the clone never touches the live quiz.
func (z *Quiz) Clone() *Quiz {
	c := &Quiz{current: z.current, questions: make([]*Question, len(z.questions))}
	for i, q := range z.questions {
		c.questions[i] = q.clone()
	}
	return c
}
