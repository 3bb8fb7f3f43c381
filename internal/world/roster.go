package world

import (
	"sync"

	"github.com/packetdancer/arx/internal/model"
)

// Roster tracks characters currently active in the world.
type Roster struct {
	mu         sync.RWMutex
	characters map[int64]*model.Character
}

// NewRoster creates an empty Roster.
func NewRoster() *Roster {
	return &Roster{
		characters: make(map[int64]*model.Character),
	}
}

// Add registers a character. Replaces any previous entry with the same ID.
func (r *Roster) Add(ch *model.Character) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.characters[ch.ID()] = ch
}

// Character returns a character by ID, or nil if not active.
func (r *Roster) Character(id int64) *model.Character {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.characters[id]
}

// Remove drops a character from the roster.
func (r *Roster) Remove(id int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.characters, id)
}

// Characters returns a snapshot of all active characters.
func (r *Roster) Characters() []*model.Character {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*model.Character, 0, len(r.characters))
	for _, ch := range r.characters {
		out = append(out, ch)
	}
	return out
}
