package quiz

import "errors"

// User join rejection reasons.
var (
	ErrSessionStarted = errors.New("session already started")
	ErrSessionEnded   = errors.New("session ended")
	ErrOwnerJoin      = errors.New("owner cannot join as participant")
	ErrDuplicateName  = errors.New("name already taken")
)

// SessionIDAlphabet and SessionIDLen define the opaque join code format.
const (
	SessionIDAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	SessionIDLen      = 8
)

// User is an immutable (display name, connection id) pair.
type User struct {
	Name string
	ID   string
}

// Session is one live classroom: an owner connection, a quiz, and the
// joined participants indexed both by name and by connection id. The owner
// is never among the participants. Like Quiz, a Session is serialized by
// the controller rather than internally locked.
type Session struct {
	ID    string
	Owner string

	quiz      *Quiz
	byName    map[string]User
	byID      map[string]User
	isStarted bool
	hasEnded  bool
}

// NewSession creates an empty session owned by the given connection id.
func NewSession(id, owner string) *Session {
	return &Session{
		ID:     id,
		Owner:  owner,
		quiz:   NewQuiz(),
		byName: make(map[string]User),
		byID:   make(map[string]User),
	}
}

// Quiz returns the session's quiz.
func (s *Session) Quiz() *Quiz {
	return s.quiz
}

// AddUser admits a participant. The owner cannot join their own session, a
// started or ended session admits nobody, and names are unique.
func (s *Session) AddUser(u User) error {
	switch {
	case u.ID == s.Owner:
		return ErrOwnerJoin
	case s.hasEnded:
		return ErrSessionEnded
	case s.isStarted:
		return ErrSessionStarted
	}
	if _, ok := s.byName[u.Name]; ok {
		return ErrDuplicateName
	}
	s.byName[u.Name] = u
	s.byID[u.ID] = u
	return nil
}

// RemoveUser drops the named participant from both indexes and returns the
// removed user. Removal is forbidden once the session has ended.
func (s *Session) RemoveUser(name string) (User, bool) {
	if s.hasEnded {
		return User{}, false
	}
	u, ok := s.byName[name]
	if !ok {
		return User{}, false
	}
	delete(s.byName, name)
	delete(s.byID, u.ID)
	return u, true
}

// FindUserByName looks a participant up by display name.
func (s *Session) FindUserByName(name string) (User, bool) {
	u, ok := s.byName[name]
	return u, ok
}

// FindUserByID looks a participant up by connection id.
func (s *Session) FindUserByID(id string) (User, bool) {
	u, ok := s.byID[id]
	return u, ok
}

// Users returns a snapshot of the joined participants.
func (s *Session) Users() []User {
	out := make([]User, 0, len(s.byName))
	for _, u := range s.byName {
		out = append(out, u)
	}
	return out
}

// UserCount returns the number of joined participants.
func (s *Session) UserCount() int {
	return len(s.byName)
}

// IsStarted reports whether the session has been started.
func (s *Session) IsStarted() bool {
	return s.isStarted
}

// HasEnded reports whether the session has ended.
func (s *Session) HasEnded() bool {
	return s.hasEnded
}

// Start marks the session live. Re-starting is a no-op.
func (s *Session) Start() {
	s.isStarted = true
}

// End terminates a started session, ending the live question (and thus
// cancelling its timer) if one is active. It reports whether this call
// performed the transition.
func (s *Session) End() bool {
	if !s.isStarted || s.hasEnded {
		return false
	}
	s.hasEnded = true
	if q := s.quiz.CurrentQuestion(); q != nil {
		q.End()
	}
	return true
}

// ForceEnd ends the session regardless of the started flag. It is the
// owner-disconnect path: the session is torn down from any state.
func (s *Session) ForceEnd() {
	s.hasEnded = true
	if q := s.quiz.CurrentQuestion(); q != nil {
		q.End()
	}
}
