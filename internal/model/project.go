package model

// CraftingProject is a character's in-progress draft: the selected
// recipe plus the customization applied before the finishing roll.
// A character owns at most one project at a time; starting a new one
// silently replaces the old draft. Nothing is spent while drafting,
// so abandoning a project has nothing to refund.
//
// The project lives as an optional field on the Character aggregate
// rather than in a registry of its own, so an abandoned draft can
// never be orphaned.
type CraftingProject struct {
	RecipeID    int32
	Name        string
	Description string

	// Adornments maps material type ID to the extra amount added on
	// top of the recipe's base requirements. Setting an adornment for
	// a material that already has one replaces the old amount.
	Adornments map[int32]int64

	// Replacements maps a declared (fake) material type to the real
	// material actually consumed. Populated only through the forgery
	// path, which the command layer currently keeps disabled; the cost
	// math downstream still honors it.
	Replacements map[int32]int32
}

// NewCraftingProject starts an empty draft for a recipe.
func NewCraftingProject(recipeID int32) *CraftingProject {
	return &CraftingProject{
		RecipeID:     recipeID,
		Adornments:   make(map[int32]int64),
		Replacements: make(map[int32]int32),
	}
}

// SetAdornment records extra material on the draft, replacing any
// previous amount for the same material type.
func (p *CraftingProject) SetAdornment(materialID int32, amount int64) {
	if p.Adornments == nil {
		p.Adornments = make(map[int32]int64)
	}
	p.Adornments[materialID] = amount
}

// SetReplacement declares fake as being substituted by real.
func (p *CraftingProject) SetReplacement(fakeID, realID int32) {
	if p.Replacements == nil {
		p.Replacements = make(map[int32]int32)
	}
	p.Replacements[fakeID] = realID
}
