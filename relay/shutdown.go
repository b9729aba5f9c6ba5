package relay

import "sync/atomic"

// ShutdownSignal is the cooperative stop flag shared between the chat
// handler and the process run loop. The setter and the poller never
// race: both sides go through the atomic.
type ShutdownSignal struct {
	requested atomic.Bool
}

// NewShutdownSignal creates an unraised signal.
func NewShutdownSignal() *ShutdownSignal {
	return &ShutdownSignal{}
}

// Request raises the flag. Idempotent.
func (s *ShutdownSignal) Request() {
	s.requested.Store(true)
}

// Requested reports whether shutdown has been requested.
func (s *ShutdownSignal) Requested() bool {
	return s.requested.Load()
}
