package session

import (
	"github.com/rmarchese/polyfit/game/service"
)

// SessionPersistence is the snapshot store behind the session manager.
type SessionPersistence interface {
	// Save writes the session's current snapshot.
	Save(session *service.Session) error

	// Load rebuilds a session from its snapshot.
	Load(id string) (*service.Session, error)

	// Delete removes a session's snapshot.
	Delete(id string) error

	// ListAll returns the IDs of every stored snapshot.
	ListAll() ([]string, error)

	// Exists reports whether a snapshot is stored for the ID.
	Exists(id string) bool
}
