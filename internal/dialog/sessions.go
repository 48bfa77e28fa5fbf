package dialog

import "sync"

// Sessions holds the active dialog of every conversation. A conversation is
// identified by a key built with SessionKey.
//
// Starting a dialog for a key that already has one restarts it from
// AwaitingType; the partial data is discarded.
type Sessions struct {
	mu     sync.Mutex
	active map[string]*Dialog
}

func NewSessions() *Sessions {
	return &Sessions{active: make(map[string]*Dialog)}
}

// SessionKey scopes a dialog to one user in one chat.
func SessionKey(chatID, userID string) string {
	return chatID + ":" + userID
}

// Start opens a dialog for key. restarted is true when a previous dialog
// was discarded.
func (s *Sessions) Start(key string) (res Result, restarted bool) {
	d, res := New()
	s.mu.Lock()
	defer s.mu.Unlock()
	_, restarted = s.active[key]
	s.active[key] = d
	return res, restarted
}

// Handle routes text to the dialog of key. ok is false when key has no active
// dialog. Dialogs that terminate are removed.
func (s *Sessions) Handle(key, text string) (res Result, ok bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.active[key]
	if !ok {
		return Result{}, false, nil
	}
	res, err = d.Handle(text)
	if d.State() == Terminated {
		delete(s.active, key)
	}
	return res, true, err
}

// Cancel aborts the dialog of key, if any.
func (s *Sessions) Cancel(key string) (Result, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.active[key]
	if !ok {
		return Result{}, false
	}
	delete(s.active, key)
	return d.Abort(), true
}

// State returns the state of key's dialog; ok is false when none is active.
func (s *Sessions) State(key string) (State, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.active[key]
	if !ok {
		return Terminated, false
	}
	return d.State(), true
}

// Len returns the number of active dialogs.
func (s *Sessions) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.active)
}
