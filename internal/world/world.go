// Package world keeps the registry of live crafted objects and hands
// out their object IDs. It is the crafting engine's ItemCreator.
package world

import (
	"sync"
	"sync/atomic"

	"github.com/packetdancer/arx/internal/model"
)

// itemIDBase is where item object IDs start; lower values are reserved
// so that 0 stays invalid and test fixtures can use small IDs freely.
const itemIDBase uint32 = 0x30000000

// World holds every live crafted item, keyed by object ID.
type World struct {
	nextItemID atomic.Uint32

	mu    sync.RWMutex
	items map[uint32]*model.CraftedItem
}

// New creates an empty world.
func New() *World {
	w := &World{items: make(map[uint32]*model.CraftedItem)}
	w.nextItemID.Store(itemIDBase)
	return w
}

// CreateItem creates and registers a crafted item held by ownerID.
func (w *World) CreateItem(name string, ownerID int64, quality int32) (*model.CraftedItem, error) {
	item, err := model.NewCraftedItem(w.nextItemID.Add(1), name, ownerID, quality)
	if err != nil {
		return nil, err
	}
	w.mu.Lock()
	w.items[item.ObjectID()] = item
	w.mu.Unlock()
	return item, nil
}

// Register inserts an item loaded from storage, bumping the ID
// watermark past it so new items never collide.
func (w *World) Register(item *model.CraftedItem) {
	for {
		current := w.nextItemID.Load()
		if item.ObjectID() <= current {
			break
		}
		if w.nextItemID.CompareAndSwap(current, item.ObjectID()) {
			break
		}
	}
	w.mu.Lock()
	w.items[item.ObjectID()] = item
	w.mu.Unlock()
}

// Item returns a live item by object ID, or nil. Destroyed items are
// reported as gone even if not yet reaped.
func (w *World) Item(objectID uint32) *model.CraftedItem {
	w.mu.RLock()
	item := w.items[objectID]
	w.mu.RUnlock()
	if item == nil || item.Destroyed() {
		return nil
	}
	return item
}

// Remove drops an item from the registry.
func (w *World) Remove(objectID uint32) {
	w.mu.Lock()
	delete(w.items, objectID)
	w.mu.Unlock()
}

// Items returns all live items in unspecified order.
func (w *World) Items() []*model.CraftedItem {
	w.mu.RLock()
	defer w.mu.RUnlock()
	out := make([]*model.CraftedItem, 0, len(w.items))
	for _, item := range w.items {
		if !item.Destroyed() {
			out = append(out, item)
		}
	}
	return out
}

// Reap removes destroyed items from the registry and returns their
// object IDs so storage can drop them too.
func (w *World) Reap() []uint32 {
	w.mu.Lock()
	defer w.mu.Unlock()
	var reaped []uint32
	for id, item := range w.items {
		if item.Destroyed() {
			delete(w.items, id)
			reaped = append(reaped, id)
		}
	}
	return reaped
}

// HeldBy returns the live items a character holds directly.
func (w *World) HeldBy(characterID int64) []*model.CraftedItem {
	w.mu.RLock()
	defer w.mu.RUnlock()
	var out []*model.CraftedItem
	for _, item := range w.items {
		if !item.Destroyed() && item.HolderID() == characterID {
			out = append(out, item)
		}
	}
	return out
}
