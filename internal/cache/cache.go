// Package cache persists the current identity to a single local file so
// a cold start can restore the session before the auth provider answers.
package cache

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/Rustix69/QuantInsiderHirrd/internal/models"
)

// DefaultFile is the default location of the identity slot.
const DefaultFile = "hirrd_user.json"

// IdentityCache is a one-slot durable store for the serialized Identity.
// Single-writer access is expected; the mutex guards against accidental
// concurrent use from HTTP handlers.
type IdentityCache struct {
	path string
	mu   sync.Mutex
}

// New returns an IdentityCache backed by the file at path.
// An empty path falls back to DefaultFile.
func New(path string) *IdentityCache {
	if path == "" {
		path = DefaultFile
	}
	return &IdentityCache{path: path}
}

// Load reads the cached Identity. A missing file is valid empty state
// and returns (nil, nil).
func (c *IdentityCache) Load() (*models.Identity, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	f, err := os.Open(c.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("open identity cache: %w", err)
	}
	defer f.Close()

	var identity models.Identity
	if err := json.NewDecoder(f).Decode(&identity); err != nil {
		return nil, fmt.Errorf("decode identity cache: %w", err)
	}
	return &identity, nil
}

// Save writes the Identity to the slot, replacing any previous value.
func (c *IdentityCache) Save(identity *models.Identity) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	f, err := os.Create(c.path)
	if err != nil {
		return fmt.Errorf("create identity cache: %w", err)
	}
	defer f.Close()

	if err := json.NewEncoder(f).Encode(identity); err != nil {
		return fmt.Errorf("encode identity cache: %w", err)
	}
	return nil
}

// Clear removes the slot. Clearing an already-empty slot is not an error.
func (c *IdentityCache) Clear() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := os.Remove(c.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove identity cache: %w", err)
	}
	return nil
}
