package api

import (
	"sync"

	"github.com/namvh1209/posture-cli/internal/scanner"
)

// ScanStore holds the single most-recent scan. There is deliberately no
// history: the slot starts empty, is overwritten once per completed scan,
// and is otherwise read-only. Lookups by id succeed only when the id
// actually matches the stored scan (or is the literal "latest"), so the API
// never returns a scan under an id it does not carry.
type ScanStore struct {
	mu   sync.RWMutex
	last *scanner.Scan
}

func NewScanStore() *ScanStore {
	return &ScanStore{}
}

// Put replaces the stored scan.
func (s *ScanStore) Put(scan *scanner.Scan) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.last = scan
}

// Latest returns the stored scan, or false if no scan has completed yet.
func (s *ScanStore) Latest() (*scanner.Scan, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.last == nil {
		return nil, false
	}
	return s.last, true
}

// Get returns the stored scan when id matches it or equals "latest".
func (s *ScanStore) Get(id string) (*scanner.Scan, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.last == nil {
		return nil, false
	}
	if id == "latest" || id == s.last.ID {
		return s.last, true
	}
	return nil, false
}
