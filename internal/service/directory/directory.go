package directory

import (
	"github.com/upendo-connect/backend/internal/model/match"
	"github.com/upendo-connect/backend/internal/model/user"
)

// Directory resolves display names from the user and match stores.
type Directory struct {
	users   user.Store
	matches match.Store
}

// New wires a Directory over the given stores.
func New(users user.Store, matches match.Store) *Directory {
	return &Directory{users: users, matches: matches}
}

// UserName returns the onboarded user's name, or "" before onboarding.
func (d *Directory) UserName() string {
	if p, ok := d.users.Current(); ok {
		return p.Name
	}
	return ""
}

// Match returns the display fields of a match. Unknown IDs fall back to
// the ID itself as the name.
func (d *Directory) Match(matchID string) (name, town, bio string) {
	p, ok := d.matches.FindByID(matchID)
	if !ok {
		return matchID, "", ""
	}
	return p.Name, p.Town, p.Bio
}
