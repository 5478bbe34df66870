// Package identity resolves the acting user's id from device-local state.
package identity

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/chanikarn/mealrecord/internal/models"
)

// stateFile holds the cached identity next to the store files.
const stateFile = "identity.json"

// State is the device-local key-value cache of {userId, email}. It survives
// independently of any live session object; after a reinstall it may hold
// only the email, which is expected.
type State struct {
	mu   sync.Mutex
	path string
}

// NewState creates a State backed by a JSON file under dataDir.
func NewState(dataDir string) *State {
	return &State{path: filepath.Join(dataDir, stateFile)}
}

// Load reads the cached identity. A missing file yields an empty identity,
// not an error.
func (s *State) Load() (models.UserIdentity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var ident models.UserIdentity
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return ident, nil
		}
		return ident, err
	}
	if err := json.Unmarshal(data, &ident); err != nil {
		// Corrupt state is treated as absent; the resolver will fall through.
		return models.UserIdentity{}, nil
	}
	return ident, nil
}

// Save persists the cached identity.
func (s *State) Save(ident models.UserIdentity) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.Marshal(ident)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return err
	}
	return os.WriteFile(s.path, data, 0600)
}

// SetIdentity caches both id and email, typically after a successful login.
func (s *State) SetIdentity(userID int64, email string) error {
	return s.Save(models.UserIdentity{UserID: userID, Email: email})
}

// Clear removes the cached identity, typically on logout.
func (s *State) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := os.Remove(s.path)
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
