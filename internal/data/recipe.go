// Package data holds the read-only crafting catalogs: recipe templates
// and material types. Tables are loaded once at startup (from the
// database, or registered directly in tests) and then only read.
package data

import (
	"fmt"
	"strings"
	"sync"
)

// RecipeType is the kind of item a recipe produces. It selects the
// constructor used when a project is finished.
type RecipeType int32

const (
	RecipeBauble RecipeType = iota // generic trinket, the fallback
	RecipeWieldable
	RecipeDecorativeWeapon
	RecipeWearable
	RecipePlace
	RecipeBook
	RecipeContainer
	RecipeWearableContainer
	RecipePerfume
)

var recipeTypeNames = map[RecipeType]string{
	RecipeBauble:            "bauble",
	RecipeWieldable:         "wieldable",
	RecipeDecorativeWeapon:  "decorative_weapon",
	RecipeWearable:          "wearable",
	RecipePlace:             "place",
	RecipeBook:              "book",
	RecipeContainer:         "container",
	RecipeWearableContainer: "wearable_container",
	RecipePerfume:           "perfume",
}

// String returns the storage name of the recipe type.
func (t RecipeType) String() string {
	if name, ok := recipeTypeNames[t]; ok {
		return name
	}
	return "bauble"
}

// ParseRecipeType maps a storage name to a RecipeType. Unknown names
// fall back to the generic bauble type rather than failing: an
// unmapped type still crafts, it just produces a plain object.
func ParseRecipeType(name string) RecipeType {
	for t, n := range recipeTypeNames {
		if n == name {
			return t
		}
	}
	return RecipeBauble
}

// ResultParams carries the type-specific knobs a recipe's results
// define. Each recipe type uses exactly one variant, so a missing
// field is a compile error instead of a silent stringly-typed default.
type ResultParams interface {
	resultParams()
}

// WeaponParams configures wieldable and decorative weapon recipes.
type WeaponParams struct {
	// Skill is the attack skill the weapon trains against. Empty means
	// the per-type default ("medium wpn" wieldable, "small wpn" decorative).
	Skill string
}

func (WeaponParams) resultParams() {}

// WearableParams configures wearable recipes.
type WearableParams struct {
	Slot      string
	SlotLimit int32
}

func (WearableParams) resultParams() {}

// CapacityParams configures places, containers and wearable
// containers: capacity = BaseVal + Scaling × quality.
type CapacityParams struct {
	BaseVal int32
	Scaling float64
}

func (CapacityParams) resultParams() {}

// BaubleParams configures books, perfumes and generic objects, which
// derive nothing beyond quality.
type BaubleParams struct{}

func (BaubleParams) resultParams() {}

// MaterialRequirement is one entry of a recipe's required multiset.
type MaterialRequirement struct {
	MaterialID int32
	Amount     int64
}

// RecipeTemplate is an immutable recipe definition.
type RecipeTemplate struct {
	ID   int32
	Name string
	Desc string
	Type RecipeType

	// Difficulty of the quality roll. Zero-difficulty recipes always
	// resolve at top tier for non-negative rolls.
	Difficulty int32

	// Skill used for the check, and the comma-separated ability list
	// ("all" or empty means any crafting ability qualifies).
	Skill   string
	Ability string

	// AdditionalCost is the flat silver surcharge paid on finish; it
	// is also the price of learning the recipe.
	AdditionalCost int64

	// Level is the minimum ability rank required to refine the result.
	Level int32

	AllowAdorn bool
	Volume     int32

	Materials []MaterialRequirement
	Results   ResultParams

	valueOnce sync.Once
	value     int64
}

// Validate checks structural invariants on a template before it enters
// the catalog.
func (r *RecipeTemplate) Validate() error {
	if r.ID <= 0 {
		return fmt.Errorf("recipe id must be positive, got %d", r.ID)
	}
	if r.Name == "" {
		return fmt.Errorf("recipe %d has no name", r.ID)
	}
	if r.Difficulty < 0 {
		return fmt.Errorf("recipe %q has negative difficulty %d", r.Name, r.Difficulty)
	}
	for _, req := range r.Materials {
		if req.Amount <= 0 {
			return fmt.Errorf("recipe %q requires non-positive amount %d of material %d",
				r.Name, req.Amount, req.MaterialID)
		}
	}
	return nil
}

// Value returns the recipe's base silver value: the additional cost
// plus the catalog value of every required material. Computed once and
// cached; the catalog is immutable after load, so the cache is safe.
func (r *RecipeTemplate) Value() int64 {
	r.valueOnce.Do(func() {
		val := r.AdditionalCost
		for _, req := range r.Materials {
			if mat := GetMaterial(req.MaterialID); mat != nil {
				val += mat.Value * req.Amount
			}
		}
		r.value = val
	})
	return r.value
}

// RequiredMaterials returns a fresh copy of the base requirement
// multiset, keyed by material type ID.
func (r *RecipeTemplate) RequiredMaterials() map[int32]int64 {
	out := make(map[int32]int64, len(r.Materials))
	for _, req := range r.Materials {
		out[req.MaterialID] += req.Amount
	}
	return out
}

// AbilityNames returns the recipe's ability list split and trimmed.
// nil means any crafting ability may be used.
func (r *RecipeTemplate) AbilityNames() []string {
	field := strings.TrimSpace(r.Ability)
	if field == "" || strings.EqualFold(field, "all") {
		return nil
	}
	parts := strings.Split(field, ",")
	names := make([]string, 0, len(parts))
	for _, p := range parts {
		if name := strings.TrimSpace(p); name != "" {
			names = append(names, name)
		}
	}
	if len(names) == 0 {
		return nil
	}
	return names
}
