package service

import "sync"

// WriteGate keeps restores exclusive against ordinary writes inside one
// process. Nothing waits: a caller that cannot enter gets ErrRestoreInProgress.
type WriteGate struct {
	mu sync.RWMutex
}

// NewWriteGate constructs an open gate.
func NewWriteGate() *WriteGate {
	return &WriteGate{}
}

// EnterWrite admits an ordinary write unless a restore holds the gate.
func (g *WriteGate) EnterWrite() (func(), error) {
	if g == nil {
		return func() {}, nil
	}
	if !g.mu.TryRLock() {
		return nil, ErrRestoreInProgress
	}
	return g.mu.RUnlock, nil
}

// EnterRestore admits a restore only when no write or restore is in flight.
func (g *WriteGate) EnterRestore() (func(), error) {
	if g == nil {
		return func() {}, nil
	}
	if !g.mu.TryLock() {
		return nil, ErrRestoreInProgress
	}
	return g.mu.Unlock, nil
}
