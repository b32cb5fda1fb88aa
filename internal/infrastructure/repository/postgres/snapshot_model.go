package postgres

import (
	"fmt"
	"time"

	"github.com/bytedance/sonic"

	"github.com/fitpulse/ranking-engine/internal/domain/ranking"
)

type snapshotTableModel struct {
	Cohort         string    `db:"cohort"`
	Rankings       []byte    `db:"rankings"`
	ComputedAt     time.Time `db:"computed_at"`
	WeightsVersion int64     `db:"weights_version"`
	RunID          string    `db:"run_id"`
}

type snapshotEntryPayload struct {
	UserID       string  `json:"userId"`
	DisplayName  string  `json:"displayName,omitempty"`
	PhotoURL     string  `json:"photoUrl,omitempty"`
	Score        float64 `json:"score"`
	Tier         string  `json:"tier"`
	CurrentRank  int     `json:"currentRank"`
	PreviousRank int     `json:"previousRank,omitempty"`
	RankChange   string  `json:"rankChange"`
	RankDelta    int     `json:"rankDelta"`
	TotalUsers   int     `json:"totalUsers"`
}

func encodeRankings(entries []ranking.Entry) ([]byte, error) {
	payload := make([]snapshotEntryPayload, 0, len(entries))
	for _, entry := range entries {
		payload = append(payload, snapshotEntryPayload{
			UserID:       entry.UserID,
			DisplayName:  entry.DisplayName,
			PhotoURL:     entry.PhotoURL,
			Score:        entry.Score,
			Tier:         string(entry.Tier),
			CurrentRank:  entry.CurrentRank,
			PreviousRank: entry.PreviousRank,
			RankChange:   string(entry.RankChange),
			RankDelta:    entry.RankDelta,
			TotalUsers:   entry.TotalUsers,
		})
	}

	encoded, err := sonic.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal snapshot rankings: %w", err)
	}
	return encoded, nil
}

func decodeRankings(raw []byte) ([]ranking.Entry, error) {
	if len(raw) == 0 {
		return []ranking.Entry{}, nil
	}

	var payload []snapshotEntryPayload
	if err := sonic.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("unmarshal snapshot rankings: %w", err)
	}

	out := make([]ranking.Entry, 0, len(payload))
	for _, row := range payload {
		out = append(out, ranking.Entry{
			UserID:       row.UserID,
			DisplayName:  row.DisplayName,
			PhotoURL:     row.PhotoURL,
			Score:        row.Score,
			Tier:         ranking.Tier(row.Tier),
			CurrentRank:  row.CurrentRank,
			PreviousRank: row.PreviousRank,
			RankChange:   ranking.RankChange(row.RankChange),
			RankDelta:    row.RankDelta,
			TotalUsers:   row.TotalUsers,
		})
	}
	return out, nil
}
