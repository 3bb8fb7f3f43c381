package dice

import (
	"testing"

	"github.com/packetdancer/arx/internal/model"
)

func newTestActor(t *testing.T, stats, skills map[string]int32) *model.Character {
	t.Helper()
	ch, err := model.NewCharacter(1, "Roller")
	if err != nil {
		t.Fatalf("NewCharacter: %v", err)
	}
	for name, val := range stats {
		ch.SetStat(name, val)
	}
	for name, val := range skills {
		ch.SetSkill(name, val)
	}
	return ch
}

func TestRollEmptyPoolLosesByDifficulty(t *testing.T) {
	r := NewSeededRoller(1)
	actor := newTestActor(t, nil, nil)

	// No stat, no skill, no bonus dice: the pool is empty and the only
	// question is how the difficulty and crit multiplier interact.
	got := r.Roll(actor, "dexterity", "smithing", 30, 0)
	if got != -30 {
		t.Fatalf("Roll with empty pool = %d, want -30", got)
	}
}

func TestRollZeroDifficultyNonNegative(t *testing.T) {
	r := NewSeededRoller(7)
	actor := newTestActor(t,
		map[string]int32{"dexterity": 3},
		map[string]int32{"smithing": 2},
	)

	for range 200 {
		if got := r.Roll(actor, "dexterity", "smithing", 0, 1); got < 0 {
			t.Fatalf("Roll at difficulty 0 = %d, want >= 0", got)
		}
	}
}

func TestRollSeededDeterminism(t *testing.T) {
	actor := newTestActor(t,
		map[string]int32{"dexterity": 4},
		map[string]int32{"smithing": 3},
	)

	a := NewSeededRoller(42)
	b := NewSeededRoller(42)
	for i := range 50 {
		ra := a.Roll(actor, "dexterity", "smithing", 25, 2)
		rb := b.Roll(actor, "dexterity", "smithing", 25, 2)
		if ra != rb {
			t.Fatalf("roll %d diverged: %d vs %d", i, ra, rb)
		}
	}
}

func TestRollLowerBound(t *testing.T) {
	r := NewSeededRoller(99)
	actor := newTestActor(t,
		map[string]int32{"dexterity": 2},
		map[string]int32{"smithing": 1},
	)

	// Worst case with a positive pool: every kept die shows 1, crit
	// multiplier 1, so the result can never drop below kept - difficulty.
	// keep = 1 + 2/2 + 1 = 3.
	const difficulty = 40
	for range 500 {
		if got := r.Roll(actor, "dexterity", "smithing", difficulty, 0); got < 3-difficulty {
			t.Fatalf("Roll = %d, below floor %d", got, 3-difficulty)
		}
	}
}

func TestRollMoreSkillNeverHurtsOnAverage(t *testing.T) {
	actor := newTestActor(t,
		map[string]int32{"dexterity": 3},
		map[string]int32{"smithing": 1},
	)
	expert := newTestActor(t,
		map[string]int32{"dexterity": 3},
		map[string]int32{"smithing": 5},
	)

	r := NewSeededRoller(5)
	var noviceTotal, expertTotal int64
	for range 2000 {
		noviceTotal += int64(r.Roll(actor, "dexterity", "smithing", 20, 0))
		expertTotal += int64(r.Roll(expert, "dexterity", "smithing", 20, 0))
	}
	if expertTotal <= noviceTotal {
		t.Fatalf("expert total %d not above novice total %d over 2000 rolls", expertTotal, noviceTotal)
	}
}
