package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/farmkeep/shell/internal/domain"
	"github.com/google/uuid"
)

const (
	decisionFile     = "decision.json"
	installationFile = "installation_id"
)

// Store provides persistent file-based storage for shell state.
type Store struct {
	dataDir string
	mu      sync.RWMutex
}

// NewStore creates a Store rooted at dataDir, ensuring the directory exists.
func NewStore(dataDir string) (*Store, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir %s: %w", dataDir, err)
	}
	return &Store{dataDir: dataDir}, nil
}

// InstallationID returns the persisted installation ID, generating one if it doesn't exist.
func (s *Store) InstallationID() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	path := filepath.Join(s.dataDir, installationFile)
	data, err := os.ReadFile(path)
	if err == nil {
		id := strings.TrimSpace(string(data))
		if _, err := uuid.Parse(id); err == nil {
			return id, nil
		}
	}

	id := uuid.New().String()
	if err := os.WriteFile(path, []byte(id), 0o600); err != nil {
		return "", fmt.Errorf("write installation id: %w", err)
	}
	return id, nil
}

// State returns the persisted decision state. A missing or unreadable
// document reads as not checked.
func (s *Store) State() domain.DecisionState {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := os.ReadFile(filepath.Join(s.dataDir, decisionFile))
	if err != nil {
		return domain.DecisionState{}
	}
	var state domain.DecisionState
	if err := json.Unmarshal(data, &state); err != nil {
		return domain.DecisionState{}
	}
	return state
}

// WasChecked reports whether bootstrap has completed before.
func (s *Store) WasChecked() bool {
	return s.State().WasChecked
}

// AcceptedURL returns the persisted destination; empty means native.
func (s *Store) AcceptedURL() string {
	return s.State().AcceptedURL
}

// SetDecision marks bootstrap as done and stores url. Both fields are written
// in one document and swapped into place with a rename.
func (s *Store) SetDecision(url string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.Marshal(domain.DecisionState{WasChecked: true, AcceptedURL: url})
	if err != nil {
		return fmt.Errorf("marshal decision: %w", err)
	}

	tmp, err := os.CreateTemp(s.dataDir, decisionFile+".*")
	if err != nil {
		return fmt.Errorf("create temp decision file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write decision: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync decision: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close decision: %w", err)
	}

	if err := os.Rename(tmp.Name(), filepath.Join(s.dataDir, decisionFile)); err != nil {
		return fmt.Errorf("commit decision: %w", err)
	}
	return nil
}

// Reset removes the persisted decision, as a reinstall would.
func (s *Store) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	path := filepath.Join(s.dataDir, decisionFile)
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
