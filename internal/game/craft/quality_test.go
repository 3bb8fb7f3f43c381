package craft

import (
	"testing"

	"github.com/packetdancer/arx/internal/data"
	"github.com/packetdancer/arx/internal/dice"
	"github.com/packetdancer/arx/internal/model"
)

func TestQualityLevelThresholds(t *testing.T) {
	// Difficulty 20 puts every threshold on an integer boundary:
	// effective = roll + 20 against 5, 15, 24, 32, 40, 50, 70, 100, 140, 200.
	const difficulty = 20
	tests := []struct {
		name string
		roll int32
		want int32
	}{
		{name: "deep failure", roll: -20, want: 0},
		{name: "just under first threshold", roll: -16, want: 0},
		{name: "first threshold", roll: -15, want: 1},
		{name: "just under second", roll: -6, want: 1},
		{name: "second threshold", roll: -5, want: 2},
		{name: "third threshold", roll: 4, want: 3},
		{name: "fourth threshold", roll: 12, want: 4},
		{name: "fifth threshold", roll: 20, want: 5},
		{name: "sixth threshold", roll: 30, want: 6},
		{name: "seventh threshold", roll: 50, want: 7},
		{name: "eighth threshold", roll: 80, want: 8},
		{name: "ninth threshold", roll: 120, want: 9},
		{name: "ten times difficulty", roll: 180, want: 10},
		{name: "far beyond", roll: 100000, want: 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := QualityLevel(tt.roll, difficulty); got != tt.want {
				t.Errorf("QualityLevel(%d, %d) = %d, want %d", tt.roll, difficulty, got, tt.want)
			}
		})
	}
}

func TestQualityLevelZeroDifficulty(t *testing.T) {
	if got := QualityLevel(0, 0); got != 10 {
		t.Errorf("QualityLevel(0, 0) = %d, want 10", got)
	}
	if got := QualityLevel(37, 0); got != 10 {
		t.Errorf("QualityLevel(37, 0) = %d, want 10", got)
	}
	if got := QualityLevel(-1, 0); got != 0 {
		t.Errorf("QualityLevel(-1, 0) = %d, want 0", got)
	}
}

func TestQualityLevelMonotonic(t *testing.T) {
	const difficulty = 35
	prev := int32(-1)
	for roll := int32(-difficulty); roll <= difficulty*12; roll++ {
		got := QualityLevel(roll, difficulty)
		if got < prev {
			t.Fatalf("QualityLevel(%d, %d) = %d dropped below %d", roll, difficulty, got, prev)
		}
		prev = got
	}
	if prev != 10 {
		t.Fatalf("ceiling = %d, want 10", prev)
	}
}

func TestQualityName(t *testing.T) {
	tests := []struct {
		quality int32
		want    string
	}{
		{quality: 0, want: "awful"},
		{quality: 2, want: "average"},
		{quality: 9, want: "perfect"},
		{quality: 10, want: "divine"},
		{quality: -3, want: "awful"},
		{quality: 42, want: "divine"},
	}

	for _, tt := range tests {
		if got := QualityName(tt.quality); got != tt.want {
			t.Errorf("QualityName(%d) = %q, want %q", tt.quality, got, tt.want)
		}
	}
}

func TestDifficultyMod(t *testing.T) {
	setupCatalog(t)
	recipe := mustRecipe(t, recipeIronSword) // value 100 + 15×10 = 250
	roller := dice.NewRoller()

	if got := DifficultyMod(roller, recipe, 0, 10); got != 0 {
		t.Errorf("DifficultyMod with no silver = %d, want 0", got)
	}
	if got := DifficultyMod(roller, recipe, -5, 10); got != 0 {
		t.Errorf("DifficultyMod with negative silver = %d, want 0", got)
	}

	// No action points: the bonus is deterministic.
	// 25/250 = 0.1 → int(0.1/0.10) + 1 = 2.
	if got := DifficultyMod(roller, recipe, 25, 0); got != 2 {
		t.Errorf("DifficultyMod(25, 0 AP) = %d, want 2", got)
	}
	// 50/250 = 0.2 → int(0.2/0.10) + 1 = 3.
	if got := DifficultyMod(roller, recipe, 50, 0); got != 3 {
		t.Errorf("DifficultyMod(50, 0 AP) = %d, want 3", got)
	}
	// 250/250 = 1.0 → 10 + 1 = 11.
	if got := DifficultyMod(roller, recipe, 250, 0); got != 11 {
		t.Errorf("DifficultyMod(250, 0 AP) = %d, want 11", got)
	}

	// With action points the bonus is random but bounded.
	for range 100 {
		got := DifficultyMod(roller, recipe, 50, 4)
		if got < 3 || got > 7 {
			t.Fatalf("DifficultyMod(50, 4 AP) = %d, want within [3,7]", got)
		}
	}
}

func TestDifficultyModSeededDeterminism(t *testing.T) {
	setupCatalog(t)
	recipe := mustRecipe(t, recipeIronSword)

	a := dice.NewSeededRoller(42)
	b := dice.NewSeededRoller(42)
	for i := range 50 {
		got, want := DifficultyMod(a, recipe, 50, 8), DifficultyMod(b, recipe, 50, 8)
		if got != want {
			t.Fatalf("draw %d diverged: %d vs %d", i, got, want)
		}
	}
}

func TestAbilityRank(t *testing.T) {
	setupCatalog(t)

	crafter, err := model.NewCharacter(1, "Aurelia")
	if err != nil {
		t.Fatalf("NewCharacter: %v", err)
	}
	crafter.SetAbility("smithing", 4)
	crafter.SetAbility("carpentry", 2)

	if got := AbilityRank(crafter, mustRecipe(t, recipeIronSword)); got != 4 {
		t.Errorf("AbilityRank(smithing recipe) = %d, want 4", got)
	}
	if got := AbilityRank(crafter, mustRecipe(t, recipeLongbow)); got != 2 {
		t.Errorf("AbilityRank(carpentry recipe) = %d, want 2", got)
	}
	// "all" recipes take the best ability overall.
	if got := AbilityRank(crafter, mustRecipe(t, recipeNovel)); got != 4 {
		t.Errorf("AbilityRank(open recipe) = %d, want 4", got)
	}

	// A character with no crafting abilities falls back to artwork
	// skill on open recipes.
	dabbler, err := model.NewCharacter(2, "Borin")
	if err != nil {
		t.Fatalf("NewCharacter: %v", err)
	}
	dabbler.SetSkill("artwork", 3)
	if got := AbilityRank(dabbler, mustRecipe(t, recipeNovel)); got != 3 {
		t.Errorf("AbilityRank(open recipe, no abilities) = %d, want 3", got)
	}
	if got := AbilityRank(dabbler, mustRecipe(t, recipeIronSword)); got != 0 {
		t.Errorf("AbilityRank(smithing recipe, no abilities) = %d, want 0", got)
	}
}

func TestValidateName(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  bool
	}{
		{name: "plain", input: "an iron sword", want: true},
		{name: "apostrophe", input: "smith's pride", want: true},
		{name: "hyphen and digits", input: "mark-7 blade", want: true},
		{name: "markup characters", input: "{wShining{n blade", want: true},
		{name: "empty", input: "", want: false},
		{name: "semicolon", input: "sword; drop all", want: false},
		{name: "angle brackets", input: "<script>", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ValidateName(tt.input); got != tt.want {
				t.Errorf("ValidateName(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func mustRecipe(t *testing.T, id int32) *data.RecipeTemplate {
	t.Helper()
	recipe := data.GetRecipe(id)
	if recipe == nil {
		t.Fatalf("recipe %d not in catalog", id)
	}
	return recipe
}
