package risk

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Store owns the persisted symbol -> RiskRecord mapping. All mutation goes
// through explicit Seed/UpdateExtreme/Delete/Prune operations; the
// monotonicity of the extreme price is enforced here, not left to callers.
//
// Persistence is a single JSON object keyed by symbol, written atomically
// (temp file + rename) so a crash mid-save leaves the previous pass's
// state intact.
type Store struct {
	path    string
	mu      sync.RWMutex
	records map[string]RiskRecord
}

// NewStore creates a store persisting to path. Call Load before the first
// pass to pick up state from a previous run.
func NewStore(path string) *Store {
	return &Store{
		path:    path,
		records: make(map[string]RiskRecord),
	}
}

// Load reads the persisted records from disk. A missing file is a clean
// start, not an error.
func (s *Store) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read risk data file: %w", err)
	}

	records := make(map[string]RiskRecord)
	if err := json.Unmarshal(data, &records); err != nil {
		return fmt.Errorf("failed to parse risk data file: %w", err)
	}

	s.records = records
	return nil
}

// Save writes the current records to disk atomically.
func (s *Store) Save() error {
	s.mu.RLock()
	data, err := json.MarshalIndent(s.records, "", "  ")
	s.mu.RUnlock()
	if err != nil {
		return fmt.Errorf("failed to marshal risk data: %w", err)
	}

	if dir := filepath.Dir(s.path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create risk data directory: %w", err)
		}
	}

	tempFile := s.path + ".tmp"
	if err := os.WriteFile(tempFile, data, 0644); err != nil {
		return fmt.Errorf("failed to write temp risk data file: %w", err)
	}
	if err := os.Rename(tempFile, s.path); err != nil {
		return fmt.Errorf("failed to move risk data file: %w", err)
	}
	return nil
}

// Get returns the record for a symbol.
func (s *Store) Get(symbol string) (RiskRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.records[symbol]
	return rec, ok
}

// Seed creates a record for a newly observed position, with the extreme
// initialized to the current price.
func (s *Store) Seed(symbol string, side Side, currentPrice float64) RiskRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec := RiskRecord{ExtremePrice: currentPrice, Side: side}
	s.records[symbol] = rec
	return rec
}

// UpdateExtreme moves the extreme price in the favorable direction only:
// strictly higher for LONG, strictly lower for SHORT. Returns the current
// record and whether it changed.
func (s *Store) UpdateExtreme(symbol string, currentPrice float64) (RiskRecord, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[symbol]
	if !ok {
		return RiskRecord{}, false
	}

	improved := (rec.Side == SideLong && currentPrice > rec.ExtremePrice) ||
		(rec.Side == SideShort && currentPrice < rec.ExtremePrice)
	if !improved {
		return rec, false
	}

	rec.ExtremePrice = currentPrice
	s.records[symbol] = rec
	return rec, true
}

// Delete removes the record for a symbol.
func (s *Store) Delete(symbol string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.records, symbol)
}

// Clear removes all records.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = make(map[string]RiskRecord)
}

// Prune removes every record whose symbol is not in the live set and
// returns the removed symbols. This is how records for externally closed
// positions get cleaned up.
func (s *Store) Prune(live map[string]bool) []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	var removed []string
	for symbol := range s.records {
		if !live[symbol] {
			delete(s.records, symbol)
			removed = append(removed, symbol)
		}
	}
	return removed
}

// Len returns the number of tracked symbols.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.records)
}
