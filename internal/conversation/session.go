package conversation

import "sync"

// Step identifies where a dialogue currently waits for input.
type Step int

const (
	StepAwaitingStart Step = iota
	StepAwaitingEnd
	StepAwaitingHorizon
	StepAwaitingIntermediateChoice
	StepAwaitingIntermediateCities
)

// session accumulates one dialogue's route parameters. It exists from the
// /weather command until the summary (or failure) reply, then it is cleared.
type session struct {
	step          Step
	start         string
	end           string
	horizon       int
	intermediates []string
}

// Sessions keeps one dialogue per session identity. It is handed to the
// Manager as an explicit dependency; sessions for distinct identities never
// share state.
type Sessions struct {
	mu   sync.RWMutex
	byID map[string]*session
}

func NewSessions() *Sessions {
	return &Sessions{byID: make(map[string]*session)}
}

// begin creates (or restarts) the dialogue for an identity at the first step.
func (s *Sessions) begin(id string) *session {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess := &session{step: StepAwaitingStart}
	s.byID[id] = sess
	return sess
}

func (s *Sessions) get(id string) (*session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.byID[id]
	return sess, ok
}

func (s *Sessions) clear(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.byID, id)
}

// Active reports whether an identity currently has a dialogue in progress.
func (s *Sessions) Active(id string) bool {
	_, ok := s.get(id)
	return ok
}
