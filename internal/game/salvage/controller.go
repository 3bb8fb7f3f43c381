// Package salvage implements destroying a crafted item for a partial
// material refund: adornments come back whole, base materials at half,
// and the item is gone for good once the refunds have been credited.
package salvage

import (
	"log/slog"
	"sync"

	"github.com/packetdancer/arx/internal/data"
	"github.com/packetdancer/arx/internal/game/craft"
	"github.com/packetdancer/arx/internal/model"
)

// Controller manages salvage operations with the same per-crafter
// critical section the other engines use.
type Controller struct {
	mu     sync.Mutex
	active map[int64]struct{}

	staff craft.StaffNotifier
}

// Option configures optional controller collaborators.
type Option func(*Controller)

// WithStaffNotifier routes integrity alerts to n instead of the log.
func WithStaffNotifier(n craft.StaffNotifier) Option {
	return func(c *Controller) { c.staff = n }
}

// NewController creates a salvage controller.
func NewController(opts ...Option) *Controller {
	c := &Controller{
		active: make(map[int64]struct{}),
		staff:  nil,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Refund is one entry of the salvage manifest.
type Refund struct {
	MaterialID int32
	Name       string
	Amount     int64
}

// Salvage destroys an item the crafter is holding and credits back a
// fraction of its materials: every adornment in full, every base
// material at half, with overlapping materials only halved on their
// non-adornment portion. Refunds all land on the ledger before the
// item is destroyed; zero refunds are skipped silently.
//
// Items flagged freely destroyable are destroyed with no refund and an
// empty manifest.
func (c *Controller) Salvage(crafter *model.Character, item *model.CraftedItem) ([]Refund, error) {
	if err := c.beginAction(crafter.ID()); err != nil {
		return nil, err
	}
	defer c.endAction(crafter.ID())

	if item.Destroyed() {
		return nil, model.Preconditionf("that object no longer exists")
	}
	if item.HolderID() != crafter.ID() {
		return nil, model.Preconditionf("you can only salvage objects you are holding")
	}
	if item.ContentCount() > 0 {
		return nil, model.Preconditionf("it contains objects that must first be removed")
	}
	if item.Destroyable() {
		item.Destroy()
		slog.Info("item destroyed",
			"crafter", crafter.Name(),
			"item", item.Name())
		return []Refund{}, nil
	}
	if item.RecipeID() == 0 {
		return nil, model.Preconditionf("you may only salvage crafted objects")
	}
	if item.PlotProtected() {
		return nil, model.Preconditionf("this object cannot be destroyed")
	}

	mats := item.Materials()
	adorns := item.Adornments()

	// Validate every referenced material before crediting anything, so
	// a vanished type cannot leave a half-applied refund.
	for materialID := range mats {
		if data.GetMaterial(materialID) == nil {
			return nil, c.integrity("salvage of %s references material %d which does not exist",
				item.Name(), materialID)
		}
	}
	for materialID := range adorns {
		if data.GetMaterial(materialID) == nil {
			return nil, c.integrity("salvage of %s references material %d which does not exist",
				item.Name(), materialID)
		}
	}

	ledger := crafter.Ledger()
	var manifest []Refund

	for materialID, amount := range adorns {
		if amount <= 0 {
			continue
		}
		ledger.Credit(materialID, amount)
		manifest = append(manifest, Refund{
			MaterialID: materialID,
			Name:       data.GetMaterial(materialID).Name,
			Amount:     amount,
		})
	}
	for materialID, amount := range mats {
		refund := amount / 2
		if adornAmount, ok := adorns[materialID]; ok {
			refund = (amount - adornAmount) / 2
		}
		if refund <= 0 {
			continue
		}
		ledger.Credit(materialID, refund)
		manifest = append(manifest, Refund{
			MaterialID: materialID,
			Name:       data.GetMaterial(materialID).Name,
			Amount:     refund,
		})
	}

	item.Destroy()
	slog.Info("item salvaged",
		"crafter", crafter.Name(),
		"item", item.Name(),
		"refunds", len(manifest))
	return manifest, nil
}

func (c *Controller) beginAction(crafterID int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, busy := c.active[crafterID]; busy {
		return model.Preconditionf("another salvage is already in progress")
	}
	c.active[crafterID] = struct{}{}
	return nil
}

func (c *Controller) endAction(crafterID int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.active, crafterID)
}

func (c *Controller) integrity(format string, args ...any) error {
	err := model.Integrityf(format, args...)
	if c.staff != nil {
		c.staff.InformStaff(err.Error())
	} else {
		slog.Warn("staff alert", "message", err.Error())
	}
	return err
}
