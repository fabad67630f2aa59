package ratingdomain

import (
	"errors"
	"testing"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		rr       int
		position int
		want     Tier
	}{
		{"bronze floor", 0, 10, TierBronze},
		{"bronze ceiling", 99, 10, TierBronze},
		{"silver", 100, 10, TierSilver},
		{"gold", 200, 10, TierGold},
		{"platinum", 300, 10, TierPlatinum},
		{"diamond", 400, 10, TierDiamond},
		{"master", 500, 10, TierMaster},
		{"master ceiling at rank one", 749, 1, TierMaster},
		{"grandmaster", 750, 10, TierGrandmaster},
		{"grandmaster at rank two", 750, 2, TierGrandmaster},
		{"top tier at rank one", 750, 1, TierUsainBolt},
		{"top tier far above bound", 5000, 1, TierUsainBolt},
		{"unranked runner above bound", 900, 0, TierGrandmaster},
		{"unranked fresh runner", 0, 0, TierBronze},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Classify(tt.rr, tt.position)
			if err != nil {
				t.Fatalf("Classify(%d, %d) unexpected error: %v", tt.rr, tt.position, err)
			}
			if got != tt.want {
				t.Fatalf("Classify(%d, %d) = %s, want %s", tt.rr, tt.position, got, tt.want)
			}
		})
	}
}

func TestClassifyBelowTopBoundIgnoresPosition(t *testing.T) {
	for _, rr := range []int{0, 100, 200, 300, 400, 500, 749} {
		atTop, err := Classify(rr, 1)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		elsewhere, err := Classify(rr, 42)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if atTop != elsewhere {
			t.Fatalf("rr %d: position changed tier from %s to %s", rr, elsewhere, atTop)
		}
	}
}

func TestClassifyIsTotalForNonNegativeRR(t *testing.T) {
	for rr := 0; rr <= 1200; rr++ {
		for _, pos := range []int{0, 1, 2, 50} {
			tier, err := Classify(rr, pos)
			if err != nil {
				t.Fatalf("Classify(%d, %d) unexpected error: %v", rr, pos, err)
			}
			if !tier.Valid() {
				t.Fatalf("Classify(%d, %d) returned undefined tier %d", rr, pos, int(tier))
			}
			if tier == TierUsainBolt && (rr < TopTierMinRatingPoints || pos != 1) {
				t.Fatalf("Classify(%d, %d) returned the top tier", rr, pos)
			}
		}
	}
}

func TestClassifyRejectsInvalidInput(t *testing.T) {
	if _, err := Classify(-1, 1); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for negative rr, got %v", err)
	}
	if _, err := Classify(10, -3); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for negative position, got %v", err)
	}
}

func TestLookup(t *testing.T) {
	want := map[Tier]struct {
		name, icon      string
		reward, penalty int
		rangeLabel      string
	}{
		TierBronze:      {"Bronze", "🥉", 25, 0, "0 - 99"},
		TierSilver:      {"Silver", "🥈", 24, 0, "100 - 199"},
		TierGold:        {"Gold", "🥇", 23, 0, "200 - 299"},
		TierPlatinum:    {"Platinum", "💿", 22, 5, "300 - 399"},
		TierDiamond:     {"Diamond", "💎", 20, 7, "400 - 499"},
		TierMaster:      {"Master", "👑", 18, 12, "500 - 749"},
		TierGrandmaster: {"Grandmaster", "🏆", 17, 17, "750+"},
		TierUsainBolt:   {"Usain Bolt", "⚡", 17, 22, "750+"},
	}

	for tier, w := range want {
		info, err := Lookup(tier)
		if err != nil {
			t.Fatalf("Lookup(%d) unexpected error: %v", int(tier), err)
		}
		if info.Name != w.name || info.Icon != w.icon {
			t.Errorf("tier %d: got %q %q, want %q %q", int(tier), info.Name, info.Icon, w.name, w.icon)
		}
		if info.BaseReward != w.reward || info.BasePenalty != w.penalty {
			t.Errorf("%s: got reward/penalty %d/%d, want %d/%d", w.name, info.BaseReward, info.BasePenalty, w.reward, w.penalty)
		}
		if got := info.RangeLabel(); got != w.rangeLabel {
			t.Errorf("%s: RangeLabel() = %q, want %q", w.name, got, w.rangeLabel)
		}
	}

	if _, err := Lookup(Tier(8)); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for unknown tier, got %v", err)
	}
	if _, err := Lookup(Tier(-1)); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for negative tier, got %v", err)
	}
	if got := Tier(99).String(); got != "Unknown Tier" {
		t.Fatalf("unexpected name for unknown tier: %q", got)
	}
}

func TestTiersAreContiguous(t *testing.T) {
	tiers := Tiers()
	if len(tiers) != 8 {
		t.Fatalf("expected 8 tiers, got %d", len(tiers))
	}
	for i := 1; i < int(TierGrandmaster); i++ {
		if tiers[i].MinRR != tiers[i-1].MaxRR+1 {
			t.Fatalf("gap between %s and %s", tiers[i-1].Name, tiers[i].Name)
		}
	}
	if tiers[TierGrandmaster].Bounded() || tiers[TierUsainBolt].Bounded() {
		t.Fatalf("top tiers must be unbounded")
	}

	// Mutating the copy must not leak into the table.
	tiers[0].Name = "changed"
	if info, _ := Lookup(TierBronze); info.Name != "Bronze" {
		t.Fatalf("Tiers() exposed the backing table")
	}
}
