package craft

import (
	"fmt"

	"github.com/packetdancer/arx/internal/data"
	"github.com/packetdancer/arx/internal/model"
)

// Default attack skills when a weapon recipe does not name one.
const (
	defaultWieldSkill      = "medium wpn"
	defaultDecorativeSkill = "small wpn"
)

// defaultCapacityBase is the capacity of places and containers whose
// recipe carries no capacity parameters.
const defaultCapacityBase int32 = 2

// createByType builds the crafted artifact for the recipe's type and
// stamps the quality-derived attributes. Unknown types produce a plain
// bauble with no extra attributes.
func (c *Controller) createByType(recipe *data.RecipeTemplate, name string, crafter *model.Character, quality int32) (*model.CraftedItem, error) {
	item, err := c.items.CreateItem(name, crafter.ID(), quality)
	if err != nil {
		return nil, fmt.Errorf("creating %s %q: %w", recipe.Type, name, err)
	}

	switch recipe.Type {
	case data.RecipeWieldable:
		skill := weaponSkill(recipe, defaultWieldSkill)
		item.SetAttackSkill(skill)
		if skill == "archery" {
			item.SetRanged(true)
		}
	case data.RecipeDecorativeWeapon:
		item.SetAttackSkill(weaponSkill(recipe, defaultDecorativeSkill))
	case data.RecipeWearable:
		if params, ok := recipe.Results.(data.WearableParams); ok {
			item.SetSlot(params.Slot, params.SlotLimit)
		}
	case data.RecipePlace:
		item.SetMaxSpots(Capacity(recipe, quality))
	case data.RecipeContainer, data.RecipeWearableContainer:
		item.SetMaxVolume(Capacity(recipe, quality))
		item.GrantKey(crafter.ID())
	case data.RecipeBook, data.RecipePerfume, data.RecipeBauble:
		// Quality alone; nothing further to derive.
	}
	return item, nil
}

// Capacity computes baseval + scaling × quality for recipes with
// capacity parameters. Used by both crafting and refinement, since a
// refined place reseats to its new quality.
func Capacity(recipe *data.RecipeTemplate, quality int32) int32 {
	if params, ok := recipe.Results.(data.CapacityParams); ok {
		return params.BaseVal + int32(params.Scaling*float64(quality))
	}
	return defaultCapacityBase
}

func weaponSkill(recipe *data.RecipeTemplate, fallback string) string {
	if params, ok := recipe.Results.(data.WeaponParams); ok && params.Skill != "" {
		return params.Skill
	}
	return fallback
}
