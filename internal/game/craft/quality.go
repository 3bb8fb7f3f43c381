package craft

import (
	"github.com/packetdancer/arx/internal/data"
	"github.com/packetdancer/arx/internal/model"
)

// QualityNames maps a quality tier to its display name.
var QualityNames = [model.MaxQuality + 1]string{
	"awful",
	"mediocre",
	"average",
	"above average",
	"good",
	"very good",
	"excellent",
	"exceptional",
	"superb",
	"perfect",
	"divine",
}

// QualityName returns the display name for a tier, clamping out-of-range
// values to the nearest end of the scale.
func QualityName(quality int32) string {
	if quality < 0 {
		quality = 0
	}
	if quality > model.MaxQuality {
		quality = model.MaxQuality
	}
	return QualityNames[quality]
}

// QualityLevel maps a crafting roll against a recipe difficulty to a
// quality tier in [0,10]. The roll already carries the success margin
// against difficulty, so the difficulty is added back to recover a
// roll-to-difficulty ratio. The threshold multipliers are the game's
// balance contract and must not drift.
//
// A difficulty of 0 fails every threshold comparison, so zero-difficulty
// recipes resolve at tier 10 for any non-negative roll.
func QualityLevel(roll, difficulty int32) int32 {
	effective := float64(roll + difficulty)
	d := float64(difficulty)
	switch {
	case effective < d/4:
		return 0
	case effective < d*3/4:
		return 1
	case effective < d*1.2:
		return 2
	case effective < d*1.6:
		return 3
	case effective < d*2:
		return 4
	case effective < d*2.5:
		return 5
	case effective < d*3.5:
		return 6
	case effective < d*5:
		return 7
	case effective < d*7:
		return 8
	case effective < d*10:
		return 9
	default:
		return 10
	}
}

// DifficultyMod converts invested silver and action points into a
// difficulty reduction: every 10% of the recipe's value invested is
// worth roughly one point, plus a random bonus scaled by the action
// points spent. The bonus draws from the injected dice source, so a
// seeded server stays deterministic. With no silver invested there is
// no bonus and no randomness is consumed.
func DifficultyMod(dice Dice, recipe *data.RecipeTemplate, money int64, actionPoints int32) int32 {
	if money <= 0 {
		return 0
	}
	divisor := recipe.Value()
	if divisor < 1 {
		divisor = 1
	}
	ratio := float64(money) / float64(divisor)
	mod := int32(ratio/0.10) + 1
	if actionPoints > 0 {
		mod += dice.IntN(actionPoints + 1)
	}
	return mod
}

// AbilityRank returns the character's highest rank among the abilities
// a recipe accepts. Recipes accepting any ability ("all" or empty) use
// the character's best ability overall, falling back to the artwork
// skill for characters with no crafting abilities at all.
func AbilityRank(crafter *model.Character, recipe *data.RecipeTemplate) int32 {
	names := recipe.AbilityNames()
	if names == nil {
		abilities := crafter.Abilities()
		if len(abilities) == 0 {
			return crafter.Skill("artwork")
		}
		var best int32
		for _, rank := range abilities {
			if rank > best {
				best = rank
			}
		}
		return best
	}
	var best int32
	for _, name := range names {
		if rank := crafter.Ability(name); rank > best {
			best = rank
		}
	}
	return best
}

// QualityRoll performs one crafting check for the recipe: the better
// of luck and dexterity, the recipe's skill, and the crafter's best
// relevant ability as bonus dice, against the recipe difficulty scaled
// by diffMult and reduced by diffMod.
func QualityRoll(dice Dice, crafter *model.Character, recipe *data.RecipeTemplate, diffMod int32, diffMult float64) int32 {
	difficulty := int32(float64(recipe.Difficulty)*diffMult) - diffMod
	stat := "dexterity"
	if crafter.Stat("luck") > crafter.Stat("dexterity") {
		stat = "luck"
	}
	return dice.Roll(crafter, stat, recipe.Skill, difficulty, AbilityRank(crafter, recipe))
}
