package ranking

import "testing"

func TestTierThresholds_Classify(t *testing.T) {
	t.Parallel()

	thresholds := DefaultTierThresholds()

	cases := []struct {
		name       string
		rank       int
		totalUsers int
		want       Tier
	}{
		{"top of hundred", 1, 100, TierDiamond},
		{"diamond boundary", 6, 100, TierDiamond},
		{"just below diamond", 7, 100, TierPlatinum},
		{"platinum boundary", 16, 100, TierPlatinum},
		{"gold boundary", 31, 100, TierGold},
		{"silver boundary", 51, 100, TierSilver},
		{"below silver", 52, 100, TierBronze},
		{"last place", 100, 100, TierBronze},
		{"single user is diamond", 1, 1, TierDiamond},
		{"two users split", 2, 2, TierSilver},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			if got := thresholds.Classify(tc.rank, tc.totalUsers); got != tc.want {
				t.Fatalf("classify rank=%d total=%d: got=%s want=%s", tc.rank, tc.totalUsers, got, tc.want)
			}
		})
	}
}

func TestTierThresholds_ClassifyInvalidInput(t *testing.T) {
	t.Parallel()

	thresholds := DefaultTierThresholds()

	if got := thresholds.Classify(0, 10); got != TierBronze {
		t.Fatalf("rank 0 should fall back to bronze, got=%s", got)
	}
	if got := thresholds.Classify(5, 0); got != TierBronze {
		t.Fatalf("empty cohort should fall back to bronze, got=%s", got)
	}
	if got := thresholds.Classify(11, 10); got != TierBronze {
		t.Fatalf("rank beyond cohort should fall back to bronze, got=%s", got)
	}
}
