package quiz

import "fmt"

// Rating bounds and the message cap for participant feedback.
const (
	MinRating             = 0
	MaxRating             = 4
	MaxFeedbackMessageLen = 100
)

// Feedback is a participant's rating of a question plus a short free-text
// message. Values are validated at construction and immutable after.
type Feedback struct {
	Rating  int
	Message string
}

// NewFeedback validates the rating and message bounds.
func NewFeedback(rating int, message string) (Feedback, error) {
	if rating < MinRating || rating > MaxRating {
		return Feedback{}, fmt.Errorf("rating %d out of range", rating)
	}
	if len(message) > MaxFeedbackMessageLen {
		return Feedback{}, fmt.Errorf("message length %d exceeds %d", len(message), MaxFeedbackMessageLen)
	}
	return Feedback{Rating: rating, Message: message}, nil
}
