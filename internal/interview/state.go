package interview

import "sync"

// State holds the mutable per-session interview context. The data-channel
// listener writes the job description from the read pump goroutine while
// turn goroutines read it, so access is guarded.
type State struct {
	mu             sync.RWMutex
	jobDescription string
}

// NewState creates session state with no job description yet.
func NewState() *State {
	return &State{}
}

// SetJobDescription stores the received job description, overwriting any
// previous value.
func (s *State) SetJobDescription(jd string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobDescription = jd
}

// JobDescription returns the current job description, or "" if none has
// arrived.
func (s *State) JobDescription() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.jobDescription
}

// HasJobDescription reports whether a job description has been received.
func (s *State) HasJobDescription() bool {
	return s.JobDescription() != ""
}
