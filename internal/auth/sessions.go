package auth

import (
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"github.com/example/skillbuilder/pkg/models"
)

// Sessions remembers which profile is signed in on each chat. Profiles are
// kept as serialized JSON, without email or password.
type Sessions struct {
	mu    sync.RWMutex
	blobs map[int64][]byte
}

// NewSessions creates an empty session table
func NewSessions() *Sessions {
	return &Sessions{blobs: make(map[int64][]byte)}
}

// Save signs user in on chatID, replacing any previous profile
func (s *Sessions) Save(chatID int64, user *models.User) error {
	blob, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}
	s.mu.Lock()
	s.blobs[chatID] = blob
	s.mu.Unlock()
	return nil
}

// Load returns the profile signed in on chatID
func (s *Sessions) Load(chatID int64) (*models.User, bool) {
	s.mu.RLock()
	blob, ok := s.blobs[chatID]
	s.mu.RUnlock()
	if !ok {
		return nil, false
	}
	var user models.User
	if err := json.Unmarshal(blob, &user); err != nil {
		return nil, false
	}
	return &user, true
}

// Clear signs chatID out
func (s *Sessions) Clear(chatID int64) {
	s.mu.Lock()
	delete(s.blobs, chatID)
	s.mu.Unlock()
}

// ChatIDs lists every chat with a signed-in profile, in ascending order
func (s *Sessions) ChatIDs() []int64 {
	s.mu.RLock()
	ids := make([]int64, 0, len(s.blobs))
	for id := range s.blobs {
		ids = append(ids, id)
	}
	s.mu.RUnlock()
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
