package ranking

import (
	"strings"
	"time"
)

// Cohort names a group of users ranked together.
type Cohort string

const (
	CohortOverall Cohort = "overall"
	CohortWeekly  Cohort = "weekly"
	CohortMonthly Cohort = "monthly"
)

// Cohorts lists every cohort a full recalculation covers, in publish order.
func Cohorts() []Cohort {
	return []Cohort{CohortOverall, CohortWeekly, CohortMonthly}
}

func ParseCohort(raw string) (Cohort, bool) {
	switch Cohort(strings.ToLower(strings.TrimSpace(raw))) {
	case CohortOverall, "":
		return CohortOverall, true
	case CohortWeekly:
		return CohortWeekly, true
	case CohortMonthly:
		return CohortMonthly, true
	default:
		return "", false
	}
}

// ActivityWindow returns how recent a user's last workout must be to join
// the cohort. Zero means no window: every user is included. Inactive users
// are excluded from windowed cohorts entirely, not scored as zero, so the
// weekly and monthly boards are not dominated by stale accounts.
func (c Cohort) ActivityWindow() time.Duration {
	switch c {
	case CohortWeekly:
		return 7 * 24 * time.Hour
	case CohortMonthly:
		return 30 * 24 * time.Hour
	default:
		return 0
	}
}

type RankChange string

const (
	RankChangeUp   RankChange = "up"
	RankChangeDown RankChange = "down"
	RankChangeNone RankChange = "none"
)

// Entry is one leaderboard row.
type Entry struct {
	UserID       string
	DisplayName  string
	PhotoURL     string
	Score        float64
	Tier         Tier
	CurrentRank  int
	PreviousRank int // 0 for a new entrant
	RankChange   RankChange
	RankDelta    int
	TotalUsers   int
}

// Snapshot is an immutable, fully computed leaderboard for one cohort.
// A new aggregation run produces a new snapshot that atomically replaces
// the previous one; readers never observe a partially ranked list.
type Snapshot struct {
	Cohort         Cohort
	Rankings       []Entry
	ComputedAt     time.Time
	WeightsVersion int64
	RunID          string

	indexByUser map[string]int
}

func NewSnapshot(cohort Cohort, rankings []Entry, computedAt time.Time, weightsVersion int64, runID string) Snapshot {
	index := make(map[string]int, len(rankings))
	for i, entry := range rankings {
		index[entry.UserID] = i
	}
	return Snapshot{
		Cohort:         cohort,
		Rankings:       rankings,
		ComputedAt:     computedAt,
		WeightsVersion: weightsVersion,
		RunID:          runID,
		indexByUser:    index,
	}
}

func (s Snapshot) EntryByUser(userID string) (Entry, bool) {
	if s.indexByUser != nil {
		i, ok := s.indexByUser[userID]
		if !ok {
			return Entry{}, false
		}
		return s.Rankings[i], true
	}
	for _, entry := range s.Rankings {
		if entry.UserID == userID {
			return entry, true
		}
	}
	return Entry{}, false
}

// Page returns a contiguous slice of the rankings bounded by offset/limit.
// Out-of-range offsets yield an empty page, never an error.
func (s Snapshot) Page(offset, limit int) []Entry {
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 || offset >= len(s.Rankings) {
		return []Entry{}
	}
	end := offset + limit
	if end > len(s.Rankings) {
		end = len(s.Rankings)
	}
	out := make([]Entry, end-offset)
	copy(out, s.Rankings[offset:end])
	return out
}
