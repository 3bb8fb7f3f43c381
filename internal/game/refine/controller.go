// Package refine implements quality refinement of already-crafted
// items: a paid re-roll that can only ever improve the stored quality
// tier. The first request against an item quotes the total cost
// without charging; repeating it confirms and commits the attempt.
// Silver and action points are spent even when the roll fails to beat
// the current quality — that risk is the point of refinement.
package refine

import (
	"log/slog"
	"sync"

	"github.com/packetdancer/arx/internal/data"
	"github.com/packetdancer/arx/internal/game/craft"
	"github.com/packetdancer/arx/internal/model"
)

// maxCountedAttempts caps how much accumulated practice on one item
// can ease the difficulty.
const maxCountedAttempts int32 = 60

// difficultyMult softens the roll relative to the original crafting
// difficulty; refining is easier than creating.
const difficultyMult = 0.75

// Controller manages refinement attempts. The confirmation target is
// engine state keyed by crafter, not ambient session state, so a probe
// expires exactly when the crafter probes a different item.
type Controller struct {
	mu        sync.Mutex
	active    map[int64]struct{}
	confirmed map[int64]uint32 // crafter ID → item awaiting confirmation

	dice   craft.Dice
	pricer craft.Pricer
}

// Option configures optional controller collaborators.
type Option func(*Controller)

// WithPricer installs a shop pricer.
func WithPricer(p craft.Pricer) Option {
	return func(c *Controller) { c.pricer = p }
}

// NewController creates a refine controller.
func NewController(dice craft.Dice, opts ...Option) *Controller {
	c := &Controller{
		active:    make(map[int64]struct{}),
		confirmed: make(map[int64]uint32),
		dice:      dice,
		pricer:    craft.FreePricer{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Result describes one refinement invocation. When Committed is false
// the call was a cost probe: nothing was spent and no roll was made.
type Result struct {
	Committed bool
	Cost      int64
	DiffMod   int32

	// Set only when Committed.
	Roll        int32
	Quality     int32
	QualityName string
	Improved    bool
	OldQuality  int32
}

// Refine attempts to improve a crafted item. The first call for an
// item computes the projected cost and difficulty adjustment without
// charging or rolling; calling again for the same item confirms,
// spends silver and action points, and rolls. The new quality applies
// only if it strictly beats the current one.
func (c *Controller) Refine(crafter *model.Character, item *model.CraftedItem, invest int64, actionPoints int32) (*Result, error) {
	if err := c.beginAction(crafter.ID()); err != nil {
		return nil, err
	}
	defer c.endAction(crafter.ID())

	if invest < 0 || actionPoints < 0 {
		return nil, model.Validationf("silver and action points cannot be negative")
	}
	recipe := data.GetRecipe(item.RecipeID())
	if recipe == nil {
		return nil, model.Preconditionf("this object has no recipe, and cannot be refined")
	}

	baseCost := recipe.Value() / 4
	price, err := c.pricer.RefinePrice(baseCost)
	if err != nil {
		return nil, model.Preconditionf("price for refining not set")
	}

	// Redundant next to the strict-improvement rule below, but kept:
	// a capped item refuses before anything is quoted or spent.
	if item.Quality() >= model.MaxQuality {
		return nil, model.Preconditionf("this object can no longer be improved")
	}
	if craft.AbilityRank(crafter, recipe) < recipe.Level {
		return nil, model.Preconditionf("you lack the skill required to attempt to improve this")
	}
	if invest > recipe.Value() {
		return nil, model.Preconditionf("the maximum amount you can spend per roll is %d", recipe.Value())
	}

	committed := c.isConfirmed(crafter.ID(), item.ObjectID())

	// The quote leg never consumes action-point entropy; quoting must
	// not show the crafter a random number they could reroll for free.
	var diffMod int32
	if committed {
		diffMod = craft.DifficultyMod(c.dice, recipe, invest, actionPoints)
	} else {
		diffMod = craft.DifficultyMod(c.dice, recipe, invest, 0)
	}
	attempts := crafter.RefineAttempts(item.ObjectID())
	if attempts > maxCountedAttempts {
		attempts = maxCountedAttempts
	}
	diffMod += attempts

	cost := baseCost + invest + price

	if !committed {
		c.setConfirmTarget(crafter.ID(), item.ObjectID())
		return &Result{Cost: cost, DiffMod: diffMod}, nil
	}

	if crafter.Currency() < cost {
		return nil, model.Preconditionf("this would cost %d, and you only have %d", cost, crafter.Currency())
	}
	if err := crafter.PayActionPoints(2 + actionPoints); err != nil {
		return nil, model.Preconditionf("you do not have enough action points to refine")
	}
	if err := crafter.PayMoney(cost); err != nil {
		return nil, err
	}
	c.pricer.PayOwner(price, crafter.Name()+" has refined '"+item.Name()+"', a "+recipe.Name+", at your shop.")

	roll := craft.QualityRoll(c.dice, crafter, recipe, diffMod, difficultyMult)
	quality := craft.QualityLevel(roll, recipe.Difficulty)
	old := item.Quality()
	crafter.IncRefineAttempts(item.ObjectID())

	result := &Result{
		Committed:   true,
		Cost:        cost,
		DiffMod:     diffMod,
		Roll:        roll,
		Quality:     quality,
		QualityName: craft.QualityName(quality),
		OldQuality:  old,
	}
	if quality <= old {
		slog.Info("refine failed",
			"crafter", crafter.Name(),
			"item", item.Name(),
			"roll", roll,
			"quality", quality,
			"current", old)
		return result, nil
	}

	applyQuality(item, recipe, quality)
	result.Improved = true
	slog.Info("refine improved",
		"crafter", crafter.Name(),
		"item", item.Name(),
		"quality", quality,
		"previous", old)
	return result, nil
}

// applyQuality stamps the improved tier and recomputes the attributes
// that scale with it.
func applyQuality(item *model.CraftedItem, recipe *data.RecipeTemplate, quality int32) {
	if recipe.Type == data.RecipePlace {
		item.SetMaxSpots(craft.Capacity(recipe, quality))
	}
	item.SetQuality(quality)
}

func (c *Controller) isConfirmed(crafterID int64, itemID uint32) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.confirmed[crafterID] == itemID
}

func (c *Controller) setConfirmTarget(crafterID int64, itemID uint32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.confirmed[crafterID] = itemID
}

func (c *Controller) beginAction(crafterID int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, busy := c.active[crafterID]; busy {
		return model.Preconditionf("another refinement is already in progress")
	}
	c.active[crafterID] = struct{}{}
	return nil
}

func (c *Controller) endAction(crafterID int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.active, crafterID)
}
