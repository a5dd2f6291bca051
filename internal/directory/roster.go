// Package directory keeps the role-partitioned user roster and the selection
// lists derived from it.
package directory

import (
	"sync"

	"github.com/terra-clan/interview-console/internal/models"
)

// Roster holds the known users of each role
type Roster struct {
	mu    sync.RWMutex
	users map[models.Role][]models.User
}

// NewRoster creates an empty roster
func NewRoster() *Roster {
	return &Roster{
		users: make(map[models.Role][]models.User),
	}
}

// Users returns a copy of the users of one role
func (r *Roster) Users(role models.Role) []models.User {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]models.User(nil), r.users[role]...)
}

// All returns candidates followed by recruiters
func (r *Roster) All() []models.User {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []models.User
	for _, role := range models.Roles {
		out = append(out, r.users[role]...)
	}
	return out
}

// Replace swaps both role collections at once
func (r *Roster) Replace(candidates, recruiters []models.User) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.users = map[models.Role][]models.User{
		models.RoleCandidate: append([]models.User(nil), candidates...),
		models.RoleRecruiter: append([]models.User(nil), recruiters...),
	}
}

// Add appends a user to its role's collection. A user whose ID is already
// present in that collection is not added twice.
func (r *Roster) Add(u models.User) bool {
	if !u.Role.Valid() {
		return false
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.users[u.Role] {
		if existing.ID == u.ID {
			return false
		}
	}
	r.users[u.Role] = append(r.users[u.Role], u)
	return true
}
