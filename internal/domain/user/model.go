package user

import "context"

// Principal is the authenticated caller resolved from a bearer token.
type Principal struct {
	UserID  string
	Email   string
	IsAdmin bool
}

// Profile is the display subset of a user account. Profiles are owned by
// the account service; the ranking engine only decorates leaderboard rows
// with them.
type Profile struct {
	UserID      string
	DisplayName string
	PhotoURL    string
}

// Directory resolves display profiles for a batch of user ids. Missing ids
// are simply absent from the result, never an error.
type Directory interface {
	GetProfiles(ctx context.Context, userIDs []string) (map[string]Profile, error)
}
