package boardstate

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// OnboardingFlags remembers which boards have shown their onboarding tour.
// Flags are kept in a JSON file.
type OnboardingFlags struct {
	path string
	mu   sync.Mutex
	seen map[string]bool
}

// LoadOnboardingFlags reads flags from path. A missing file is an empty set.
func LoadOnboardingFlags(path string) (*OnboardingFlags, error) {
	f := &OnboardingFlags{path: path, seen: make(map[string]bool)}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return f, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read onboarding flags: %w", err)
	}
	if err := json.Unmarshal(data, &f.seen); err != nil {
		return nil, fmt.Errorf("parse onboarding flags: %w", err)
	}
	return f, nil
}

func (f *OnboardingFlags) Seen(boardID string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.seen[boardID]
}

// MarkSeen records boardID and writes the file.
func (f *OnboardingFlags) MarkSeen(boardID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seen[boardID] = true

	data, err := json.Marshal(f.seen)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(f.path), 0755); err != nil {
		return fmt.Errorf("create onboarding dir: %w", err)
	}
	return os.WriteFile(f.path, data, 0644)
}
