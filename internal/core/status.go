package core

import "time"

// Status summarizes the most recent collection pass.
type Status struct {
	Running      bool
	Passes       int
	LastPass     time.Time
	LastDuration time.Duration
	Executables  int
	Blocked      int
	Processes    int
}

// GetStatus returns the current status.
func (s *Service) GetStatus() *Status {
	s.mu.RLock()
	defer s.mu.RUnlock()

	status := s.status
	status.Running = s.running
	return &status
}

// recordPass stores the pass results and broadcasts them.
func (s *Service) recordPass(start time.Time, elapsed time.Duration) {
	groups := s.engine.Groups()

	s.mu.Lock()
	s.status.Passes++
	s.status.LastPass = start
	s.status.LastDuration = elapsed
	s.status.Executables = len(groups)
	s.status.Blocked = 0
	s.status.Processes = 0
	for _, g := range groups {
		if g.Blocked {
			s.status.Blocked++
		}
		s.status.Processes += len(g.Processes)
	}
	s.mu.Unlock()

	s.broadcastStatus()
}

// broadcastStatus sends status update to listener.
func (s *Service) broadcastStatus() {
	s.mu.RLock()
	listener := s.statusListener
	s.mu.RUnlock()
	if listener != nil {
		listener(s.GetStatus())
	}
}
