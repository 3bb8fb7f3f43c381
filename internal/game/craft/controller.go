// Package craft implements the crafting workflow: select a recipe,
// customize the draft, then commit it with a quality roll that spends
// materials, silver and action points in one all-or-nothing step.
package craft

import (
	"log/slog"
	"sync"

	"github.com/packetdancer/arx/internal/data"
	"github.com/packetdancer/arx/internal/model"
)

// ItemCreator creates new crafted items in the world (injected
// dependency). Implementations must not fail for a non-empty name and
// a quality within [0, model.MaxQuality]; the crafting commit treats a
// creation failure as a data fault, not a user error.
type ItemCreator interface {
	CreateItem(name string, ownerID int64, quality int32) (*model.CraftedItem, error)
}

// Dice is the single random source for crafting: a stat/skill check
// returning the signed margin against the difficulty, and a plain
// bounded draw for the action-point bonus. Keeping both on one
// interface means a seeded source makes the whole engine deterministic.
type Dice interface {
	Roll(actor *model.Character, stat, skill string, difficulty, bonusDice int32) int32
	IntN(n int32) int32
}

// StaffNotifier carries out-of-band alerts for data-corruption
// conditions that players cannot fix themselves.
type StaffNotifier interface {
	InformStaff(message string)
}

// Pricer supplies the shop surcharges for crafting and refining, and
// routes earnings to the shop owner. The default implementation
// charges nothing; shop-room crafting plugs in its own.
type Pricer interface {
	RecipePrice(recipe *data.RecipeTemplate) (int64, error)
	RefinePrice(baseCost int64) (int64, error)
	PayOwner(price int64, message string)
}

// AccessPolicy answers permission questions ("learn", "teach") that the
// surrounding permission system owns. The default allows everything.
type AccessPolicy func(ch *model.Character, recipe *data.RecipeTemplate, perm string) bool

// baseActionPointCost is charged on every finish or refine on top of
// any extra action points the crafter chooses to invest.
const baseActionPointCost int32 = 2

// Controller manages crafting project lifecycles. Every mutating
// operation on a given crafter runs as a critical section, so racing
// command submissions cannot double-spend a ledger or finish and
// abandon the same project concurrently.
type Controller struct {
	mu     sync.Mutex
	active map[int64]struct{} // crafter ID → action in progress

	items  ItemCreator
	dice   Dice
	staff  StaffNotifier
	pricer Pricer
	access AccessPolicy
}

// Option configures optional controller collaborators.
type Option func(*Controller)

// WithStaffNotifier routes integrity alerts to n instead of the log.
func WithStaffNotifier(n StaffNotifier) Option {
	return func(c *Controller) { c.staff = n }
}

// WithPricer installs a shop pricer.
func WithPricer(p Pricer) Option {
	return func(c *Controller) { c.pricer = p }
}

// WithAccessPolicy installs a recipe permission check.
func WithAccessPolicy(f AccessPolicy) Option {
	return func(c *Controller) { c.access = f }
}

// NewController creates a craft controller.
func NewController(items ItemCreator, dice Dice, opts ...Option) *Controller {
	c := &Controller{
		active: make(map[int64]struct{}),
		items:  items,
		dice:   dice,
		staff:  logNotifier{},
		pricer: FreePricer{},
		access: func(*model.Character, *data.RecipeTemplate, string) bool { return true },
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Result describes a successfully finished project.
type Result struct {
	Item        *model.CraftedItem
	Recipe      *data.RecipeTemplate
	Roll        int32
	Quality     int32
	QualityName string
	Cost        int64
}

// ProjectStatus is a read-only view of the active draft.
type ProjectStatus struct {
	Recipe       *data.RecipeTemplate
	Name         string
	Description  string
	Adornments   map[int32]int64
	Replacements map[int32]int32
	// Required is the aggregate material need (base plus adornments)
	// and Stock the crafter's current balance for each entry.
	Required map[int32]int64
	Stock    map[int32]int64
}

// Start begins a new project for the named recipe. The crafter must
// know the recipe; any draft already in progress is silently replaced,
// since drafting never spends anything.
func (c *Controller) Start(crafter *model.Character, recipeName string) (*data.RecipeTemplate, error) {
	if err := c.beginAction(crafter.ID()); err != nil {
		return nil, err
	}
	defer c.endAction(crafter.ID())

	recipe := data.GetRecipeByName(recipeName)
	if recipe == nil || !crafter.KnowsRecipe(recipe.ID) {
		return nil, model.Preconditionf("no recipe found by the name %s", recipeName)
	}
	if _, err := c.pricer.RecipePrice(recipe); err != nil {
		return nil, model.Preconditionf("that recipe does not have a price defined")
	}

	crafter.SetProject(model.NewCraftingProject(recipe.ID))
	slog.Info("crafting project started",
		"crafter", crafter.Name(),
		"recipe", recipe.Name)
	return recipe, nil
}

// SetName names the draft. The name must pass the allowed character set.
func (c *Controller) SetName(crafter *model.Character, name string) error {
	if err := c.beginAction(crafter.ID()); err != nil {
		return err
	}
	defer c.endAction(crafter.ID())

	proj := crafter.Project()
	if proj == nil {
		return model.Preconditionf("you have no crafting project")
	}
	if name == "" {
		return model.Validationf("name must not be empty")
	}
	if !ValidateName(name) {
		return model.Validationf("%q is not a valid name", name)
	}
	proj.Name = name
	return nil
}

// SetDescription describes the draft.
func (c *Controller) SetDescription(crafter *model.Character, desc string) error {
	if err := c.beginAction(crafter.ID()); err != nil {
		return err
	}
	defer c.endAction(crafter.ID())

	proj := crafter.Project()
	if proj == nil {
		return model.Preconditionf("you have no crafting project")
	}
	if desc == "" {
		return model.Validationf("description must not be empty")
	}
	proj.Description = desc
	return nil
}

// AddAdornment records extra material on the draft. The recipe must
// permit adornments; setting the same material again replaces the
// earlier amount rather than accumulating.
func (c *Controller) AddAdornment(crafter *model.Character, materialName string, amount int64) (*data.MaterialType, error) {
	if err := c.beginAction(crafter.ID()); err != nil {
		return nil, err
	}
	defer c.endAction(crafter.ID())

	proj := crafter.Project()
	if proj == nil {
		return nil, model.Preconditionf("you have no crafting project")
	}
	if amount < 1 {
		return nil, model.Validationf("amount must be positive")
	}
	material, err := data.FindMaterial(materialName)
	if err != nil {
		return nil, model.Validationf("%v", err)
	}
	recipe := data.GetRecipe(proj.RecipeID)
	if recipe == nil {
		return nil, c.integrity("adornment attempted against recipe %d which does not exist", proj.RecipeID)
	}
	if !recipe.AllowAdorn {
		return nil, model.Preconditionf("this recipe does not allow for additional materials to be used")
	}
	proj.SetAdornment(material.ID, amount)
	return material, nil
}

// SetReplacement declares one material as faking another on the draft.
// The command layer keeps this path disabled; it stays reachable for
// internal and admin callers, and finish honors it in the cost math.
// The faked material must already appear in the recipe or adornments,
// and both materials must share a category.
func (c *Controller) SetReplacement(crafter *model.Character, realName, fakeName string) error {
	if err := c.beginAction(crafter.ID()); err != nil {
		return err
	}
	defer c.endAction(crafter.ID())

	proj := crafter.Project()
	if proj == nil {
		return model.Preconditionf("you have no crafting project")
	}
	realMat, err := data.FindMaterial(realName)
	if err != nil {
		return model.Validationf("%v", err)
	}
	fakeMat, err := data.FindMaterial(fakeName)
	if err != nil {
		return model.Validationf("%v", err)
	}
	recipe := data.GetRecipe(proj.RecipeID)
	if recipe == nil {
		return c.integrity("forgery attempted against recipe %d which does not exist", proj.RecipeID)
	}
	if _, inBase := recipe.RequiredMaterials()[fakeMat.ID]; !inBase {
		if _, inAdorns := proj.Adornments[fakeMat.ID]; !inAdorns {
			return model.Preconditionf("material to fake does not appear in the project's recipe or adornments")
		}
	}
	if realMat.Category != fakeMat.Category {
		return model.Preconditionf("material categories must match: %s is %s, %s is %s",
			realMat.Name, realMat.Category, fakeMat.Name, fakeMat.Category)
	}
	proj.SetReplacement(fakeMat.ID, realMat.ID)
	return nil
}

// Abandon drops the draft. Nothing was spent while drafting, so there
// is nothing to refund.
func (c *Controller) Abandon(crafter *model.Character) error {
	if err := c.beginAction(crafter.ID()); err != nil {
		return err
	}
	defer c.endAction(crafter.ID())

	if crafter.Project() == nil {
		return model.Preconditionf("you have no crafting project")
	}
	crafter.ClearProject()
	return nil
}

// Status reports the current draft along with the aggregate material
// requirements and the crafter's stock against them.
func (c *Controller) Status(crafter *model.Character) (*ProjectStatus, error) {
	proj := crafter.Project()
	if proj == nil {
		return nil, model.Preconditionf("you have no crafting project")
	}
	recipe := data.GetRecipe(proj.RecipeID)
	if recipe == nil {
		return nil, c.integrity("project references recipe %d which does not exist", proj.RecipeID)
	}

	required := recipe.RequiredMaterials()
	for materialID, amount := range proj.Adornments {
		required[materialID] += amount
	}
	stock := make(map[int32]int64, len(required))
	for materialID := range required {
		stock[materialID] = crafter.Ledger().Balance(materialID)
	}

	adorns := make(map[int32]int64, len(proj.Adornments))
	for id, amount := range proj.Adornments {
		adorns[id] = amount
	}
	repl := make(map[int32]int32, len(proj.Replacements))
	for fakeID, realID := range proj.Replacements {
		repl[fakeID] = realID
	}

	return &ProjectStatus{
		Recipe:       recipe,
		Name:         proj.Name,
		Description:  proj.Description,
		Adornments:   adorns,
		Replacements: repl,
		Required:     required,
		Stock:        stock,
	}, nil
}

// Finish commits the draft: validates every precondition, then debits
// materials, action points and silver, rolls for quality and produces
// the item. No side effect is observable unless every precondition
// passed; a shortfall anywhere leaves ledger, currency and action
// points untouched.
func (c *Controller) Finish(crafter *model.Character, extraMoney int64, actionPoints int32) (*Result, error) {
	if err := c.beginAction(crafter.ID()); err != nil {
		return nil, err
	}
	defer c.endAction(crafter.ID())

	proj := crafter.Project()
	if proj == nil {
		return nil, model.Preconditionf("you have no crafting project")
	}
	if proj.Name == "" {
		return nil, model.Preconditionf("you must give it a name first")
	}
	if proj.Description == "" {
		return nil, model.Preconditionf("you must write a description first")
	}
	if extraMoney < 0 || actionPoints < 0 {
		return nil, model.Validationf("silver and action points cannot be negative")
	}

	// The recipe is re-validated at commit time; learning it at start
	// is not enough if it was lost in between.
	recipe := data.GetRecipe(proj.RecipeID)
	if recipe == nil || !crafter.KnowsRecipe(recipe.ID) {
		return nil, model.Preconditionf("you lack the ability to finish that recipe")
	}

	// Aggregate requirements: base materials plus adornments, then the
	// replacement map swaps declared materials for the real ones.
	mats := recipe.RequiredMaterials()
	for materialID, amount := range proj.Adornments {
		mats[materialID] += amount
	}
	for fakeID, realID := range proj.Replacements {
		if amount, ok := mats[fakeID]; ok {
			delete(mats, fakeID)
			mats[realID] = amount
		}
	}

	price, err := c.pricer.RecipePrice(recipe)
	if err != nil {
		return nil, model.Preconditionf("that recipe does not have a price defined")
	}
	cost := recipe.AdditionalCost + extraMoney + price
	if cost < 0 || price < 0 {
		return nil, c.integrity("negative crafting cost for %s: recipe %d, cost %d, price %d",
			crafter.Name(), recipe.ID, cost, price)
	}
	if crafter.Currency() < cost {
		return nil, model.Preconditionf("you need %d silver total, and have only %d", cost, crafter.Currency())
	}

	// Validate stock for the full requirement set, accumulating the
	// real material value for the forgery penalty.
	ledger := crafter.Ledger()
	var realValue int64
	for materialID, amount := range mats {
		material := data.GetMaterial(materialID)
		if material == nil {
			return nil, c.integrity("attempted to craft using material %d which does not exist", materialID)
		}
		if have := ledger.Balance(materialID); have < amount {
			return nil, model.Preconditionf("you need %d of %s, and only have %d", amount, material.Name, have)
		}
		realValue += material.Value * amount
	}

	apCost := baseActionPointCost + actionPoints
	if crafter.ActionPoints() < apCost {
		return nil, model.Preconditionf("you do not have enough action points left to craft that")
	}

	// Every precondition passed. Roll and mint the item before any
	// debit, so a creation failure cannot strand spent materials.
	diffMod := DifficultyMod(c.dice, recipe, extraMoney, actionPoints)
	roll := QualityRoll(c.dice, crafter, recipe, diffMod, 1.0)
	quality := QualityLevel(roll, recipe.Difficulty)

	item, err := c.createByType(recipe, proj.Name, crafter, quality)
	if err != nil {
		return nil, c.integrity("item creation failed for %s: %v", crafter.Name(), err)
	}

	// Mutations start here. The ledger debit re-validates under its
	// own lock, so a conflicting spend from outside the engine still
	// cannot drive stock negative; if anything fails from here on the
	// fresh item is destroyed rather than left half-made.
	if err := ledger.DebitAll(mats); err != nil {
		item.Destroy()
		return nil, err
	}
	if err := crafter.PayActionPoints(apCost); err != nil {
		item.Destroy()
		return nil, c.integrity("action points vanished mid-commit for %s: %v", crafter.Name(), err)
	}

	item.SetDescription(proj.Description)
	item.SetMaterials(mats)
	item.SetRecipeID(recipe.ID)
	item.SetAdornments(proj.Adornments)
	item.SetCrafterID(crafter.ID())
	item.SetVolume(recipe.Volume)

	if err := crafter.PayMoney(cost); err != nil {
		item.Destroy()
		return nil, c.integrity("silver vanished mid-commit for %s: %v", crafter.Name(), err)
	}
	c.pricer.PayOwner(price, crafter.Name()+" has crafted '"+item.Name()+"', a "+recipe.Name+", at your shop.")

	if len(proj.Replacements) > 0 {
		if realValue < 1 {
			realValue = 1
		}
		forgeryRoll := QualityRoll(c.dice, crafter, recipe, 0, 1.0)
		penalty := recipe.Value()/realValue + 1
		item.SetForgery(proj.Replacements, forgeryRoll, penalty)
	}

	crafter.ClearProject()

	slog.Info("craft finished",
		"crafter", crafter.Name(),
		"recipe", recipe.Name,
		"item", item.Name(),
		"roll", roll,
		"quality", quality)

	return &Result{
		Item:        item,
		Recipe:      recipe,
		Roll:        roll,
		Quality:     quality,
		QualityName: QualityName(quality),
		Cost:        cost,
	}, nil
}

// Rename changes a crafted item's name for a fee of one percent of the
// recipe value.
func (c *Controller) Rename(crafter *model.Character, item *model.CraftedItem, newName string) error {
	if err := c.beginAction(crafter.ID()); err != nil {
		return err
	}
	defer c.endAction(crafter.ID())

	if !ValidateName(newName) {
		return model.Validationf("%q is not a valid name", newName)
	}
	recipe := data.GetRecipe(item.RecipeID())
	if recipe == nil {
		return model.Preconditionf("no recipe found for that item")
	}
	cost := recipe.Value() / 100
	if err := crafter.PayMoney(cost); err != nil {
		return model.Preconditionf("you cannot afford to have its name changed")
	}
	item.SetName(newName)
	return nil
}

// beginAction claims the per-crafter critical section.
func (c *Controller) beginAction(crafterID int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, busy := c.active[crafterID]; busy {
		return model.Preconditionf("another crafting action is already in progress")
	}
	c.active[crafterID] = struct{}{}
	return nil
}

func (c *Controller) endAction(crafterID int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.active, crafterID)
}

// integrity raises the staff alert and returns the fault.
func (c *Controller) integrity(format string, args ...any) error {
	err := model.Integrityf(format, args...)
	c.staff.InformStaff(err.Error())
	return err
}

// logNotifier is the fallback StaffNotifier: alerts land in the log.
type logNotifier struct{}

func (logNotifier) InformStaff(message string) {
	slog.Warn("staff alert", "message", message)
}

// FreePricer charges no surcharge for crafting or refining.
type FreePricer struct{}

// RecipePrice always reports zero.
func (FreePricer) RecipePrice(*data.RecipeTemplate) (int64, error) { return 0, nil }

// RefinePrice always reports zero.
func (FreePricer) RefinePrice(int64) (int64, error) { return 0, nil }

// PayOwner is a no-op; there is no shop owner to pay.
func (FreePricer) PayOwner(int64, string) {}
