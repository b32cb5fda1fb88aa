package postgres

import (
	"testing"

	"github.com/fitpulse/ranking-engine/internal/domain/ranking"
)

func TestEncodeDecodeRankings(t *testing.T) {
	entries := []ranking.Entry{
		{
			UserID:       "user-1",
			DisplayName:  "Top Lifter",
			Score:        97.5,
			Tier:         ranking.TierDiamond,
			CurrentRank:  1,
			PreviousRank: 2,
			RankChange:   ranking.RankChangeUp,
			RankDelta:    1,
			TotalUsers:   2,
		},
		{
			UserID:      "user-2",
			Score:       61.25,
			Tier:        ranking.TierSilver,
			CurrentRank: 2,
			RankChange:  ranking.RankChangeNone,
			TotalUsers:  2,
		},
	}

	raw, err := encodeRankings(entries)
	if err != nil {
		t.Fatalf("encode rankings: %v", err)
	}

	got, err := decodeRankings(raw)
	if err != nil {
		t.Fatalf("decode rankings: %v", err)
	}
	if len(got) != len(entries) {
		t.Fatalf("unexpected entry count: got=%d want=%d", len(got), len(entries))
	}
	if got[0] != entries[0] {
		t.Fatalf("first entry mismatch: got=%+v want=%+v", got[0], entries[0])
	}
	if got[1].PreviousRank != 0 || got[1].RankChange != ranking.RankChangeNone {
		t.Fatalf("newcomer fields must survive the round trip: %+v", got[1])
	}
}

func TestDecodeRankings_EmptyColumn(t *testing.T) {
	got, err := decodeRankings(nil)
	if err != nil {
		t.Fatalf("decode empty rankings: %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Fatalf("expected empty non-nil slice, got %v", got)
	}
}
