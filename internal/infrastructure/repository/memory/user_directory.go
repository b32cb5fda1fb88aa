package memory

import (
	"context"
	"sync"

	"github.com/fitpulse/ranking-engine/internal/domain/user"
)

type UserDirectory struct {
	mu    sync.RWMutex
	items map[string]user.Profile
}

func NewUserDirectory(profiles []user.Profile) *UserDirectory {
	items := make(map[string]user.Profile, len(profiles))
	for _, profile := range profiles {
		items[profile.UserID] = profile
	}
	return &UserDirectory{items: items}
}

func (d *UserDirectory) GetProfiles(_ context.Context, userIDs []string) (map[string]user.Profile, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	out := make(map[string]user.Profile, len(userIDs))
	for _, id := range userIDs {
		if profile, ok := d.items[id]; ok {
			out[id] = profile
		}
	}
	return out, nil
}

func (d *UserDirectory) Upsert(_ context.Context, profile user.Profile) {
	d.mu.Lock()
	d.items[profile.UserID] = profile
	d.mu.Unlock()
}
