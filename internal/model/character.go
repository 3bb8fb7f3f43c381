package model

import (
	"fmt"
	"sync"
)

// Character is the crafting-relevant view of an acting character: the
// aggregate that owns currency, action points, stats/skills/abilities,
// the learned recipe set, the material ledger, the single optional
// crafting project and the per-item refinement attempt counters.
//
// All mutating accessors take the character mutex; currency and action
// point spends are atomic check-and-subtract so racing command
// submissions cannot overdraw either account.
type Character struct {
	id   int64
	name string

	mu             sync.Mutex
	stats          map[string]int32
	skills         map[string]int32
	abilities      map[string]int32
	currency       int64
	actionPoints   int32
	recipes        map[int32]struct{}
	project        *CraftingProject
	refineAttempts map[uint32]int32

	ledger *MaterialLedger
}

// NewCharacter creates a character with empty stores.
func NewCharacter(id int64, name string) (*Character, error) {
	if id <= 0 {
		return nil, fmt.Errorf("character id must be positive, got %d", id)
	}
	if name == "" {
		return nil, fmt.Errorf("character name must not be empty")
	}
	return &Character{
		id:             id,
		name:           name,
		stats:          make(map[string]int32),
		skills:         make(map[string]int32),
		abilities:      make(map[string]int32),
		recipes:        make(map[int32]struct{}),
		refineAttempts: make(map[uint32]int32),
		ledger:         NewMaterialLedger(id),
	}, nil
}

// ID returns the character ID.
func (c *Character) ID() int64 { return c.id }

// Name returns the character name.
func (c *Character) Name() string { return c.name }

// Ledger returns the character's material ledger.
func (c *Character) Ledger() *MaterialLedger { return c.ledger }

// Stat returns a named stat value (0 if unset).
func (c *Character) Stat(name string) int32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stats[name]
}

// SetStat sets a named stat value.
func (c *Character) SetStat(name string, value int32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stats[name] = value
}

// Skill returns a named skill rank (0 if unset).
func (c *Character) Skill(name string) int32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.skills[name]
}

// SetSkill sets a named skill rank.
func (c *Character) SetSkill(name string, value int32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.skills[name] = value
}

// Ability returns a named crafting ability rank (0 if unset).
func (c *Character) Ability(name string) int32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.abilities[name]
}

// SetAbility sets a named crafting ability rank.
func (c *Character) SetAbility(name string, value int32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.abilities[name] = value
}

// Abilities returns a copy of all ability ranks.
func (c *Character) Abilities() map[string]int32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(map[string]int32, len(c.abilities))
	for name, value := range c.abilities {
		out[name] = value
	}
	return out
}

// Currency returns the silver balance.
func (c *Character) Currency() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.currency
}

// AddMoney credits silver. Negative amounts are rejected.
func (c *Character) AddMoney(amount int64) error {
	if amount < 0 {
		return Validationf("cannot add negative silver: %d", amount)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.currency += amount
	return nil
}

// PayMoney debits silver atomically.
func (c *Character) PayMoney(amount int64) error {
	if amount < 0 {
		return Validationf("cannot pay negative silver: %d", amount)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.currency < amount {
		return Preconditionf("need %d silver, have only %d", amount, c.currency)
	}
	c.currency -= amount
	return nil
}

// ActionPoints returns the current action point balance.
func (c *Character) ActionPoints() int32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.actionPoints
}

// SetActionPoints replaces the action point balance.
func (c *Character) SetActionPoints(value int32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.actionPoints = value
}

// PayActionPoints debits action points atomically.
func (c *Character) PayActionPoints(amount int32) error {
	if amount < 0 {
		return Validationf("cannot pay negative action points: %d", amount)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.actionPoints < amount {
		return Preconditionf("need %d action points, have only %d", amount, c.actionPoints)
	}
	c.actionPoints -= amount
	return nil
}

// KnowsRecipe reports whether the character has learned a recipe.
func (c *Character) KnowsRecipe(recipeID int32) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.recipes[recipeID]
	return ok
}

// LearnRecipe adds a recipe to the learned set.
func (c *Character) LearnRecipe(recipeID int32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.recipes[recipeID] = struct{}{}
}

// KnownRecipeIDs returns the learned recipe IDs in unspecified order.
func (c *Character) KnownRecipeIDs() []int32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]int32, 0, len(c.recipes))
	for id := range c.recipes {
		out = append(out, id)
	}
	return out
}

// Project returns the active crafting project, or nil.
func (c *Character) Project() *CraftingProject {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.project
}

// SetProject replaces the active crafting project. Any prior draft is
// discarded without confirmation; drafting never spends anything, so
// there is nothing to refund.
func (c *Character) SetProject(p *CraftingProject) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.project = p
}

// ClearProject drops the active crafting project.
func (c *Character) ClearProject() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.project = nil
}

// RefineAttempts returns how many refinement attempts this character
// has made against an item.
func (c *Character) RefineAttempts(itemObjectID uint32) int32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.refineAttempts[itemObjectID]
}

// IncRefineAttempts records one more refinement attempt against an item
// and returns the new count.
func (c *Character) IncRefineAttempts(itemObjectID uint32) int32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.refineAttempts[itemObjectID]++
	return c.refineAttempts[itemObjectID]
}

// RefineAttemptCounts returns a copy of all attempt counters.
func (c *Character) RefineAttemptCounts() map[uint32]int32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(map[uint32]int32, len(c.refineAttempts))
	for itemID, count := range c.refineAttempts {
		out[itemID] = count
	}
	return out
}

// RestoreRefineAttempts replaces the attempt counters from storage.
func (c *Character) RestoreRefineAttempts(counts map[uint32]int32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.refineAttempts = make(map[uint32]int32, len(counts))
	for itemID, count := range counts {
		c.refineAttempts[itemID] = count
	}
}
