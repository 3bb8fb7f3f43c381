package model

import (
	"fmt"
	"sync"
)

// CraftedItem is an artifact produced by the crafting engine. Beyond
// the universal fields (quality tier, recipe reference, consumed
// material snapshot, crafter) it carries the type-specific attributes
// stamped by the per-type constructors: attack skill for weapons,
// slot data for wearables, capacity for places and containers.
type CraftedItem struct {
	objectID uint32

	mu          sync.RWMutex
	name        string
	description string
	holderID    int64
	crafterID   int64
	recipeID    int32
	quality     int32
	volume      int32

	materials  map[int32]int64
	adornments map[int32]int64

	// Type-specific attributes.
	attackSkill string
	ranged      bool
	slot        string
	slotLimit   int32
	maxSpots    int32
	maxVolume   int32
	keyHolders  map[int64]struct{}

	// Forgery data, set only when the project carried replacements.
	forgeries      map[int32]int32
	forgeryRoll    int32
	forgeryPenalty int64

	plotProtected bool
	destroyable   bool
	contents      map[uint32]struct{}
	destroyed     bool
}

// MaxQuality is the cap on an item's quality tier.
const MaxQuality int32 = 10

// NewCraftedItem creates a crafted item held by its crafter.
func NewCraftedItem(objectID uint32, name string, crafterID int64, quality int32) (*CraftedItem, error) {
	if objectID == 0 {
		return nil, fmt.Errorf("object id 0 is reserved")
	}
	if name == "" {
		return nil, fmt.Errorf("item name must not be empty")
	}
	if quality < 0 || quality > MaxQuality {
		return nil, fmt.Errorf("quality must be in [0,%d], got %d", MaxQuality, quality)
	}
	return &CraftedItem{
		objectID:   objectID,
		name:       name,
		holderID:   crafterID,
		crafterID:  crafterID,
		quality:    quality,
		materials:  make(map[int32]int64),
		adornments: make(map[int32]int64),
		keyHolders: make(map[int64]struct{}),
		contents:   make(map[uint32]struct{}),
	}, nil
}

// ObjectID returns the item's unique object ID.
func (i *CraftedItem) ObjectID() uint32 { return i.objectID }

// Name returns the item name.
func (i *CraftedItem) Name() string {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.name
}

// SetName renames the item.
func (i *CraftedItem) SetName(name string) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.name = name
}

// Description returns the item description.
func (i *CraftedItem) Description() string {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.description
}

// SetDescription sets the item description.
func (i *CraftedItem) SetDescription(desc string) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.description = desc
}

// HolderID returns the character currently holding the item (0 when
// the item is elsewhere, e.g. inside a room or another container).
func (i *CraftedItem) HolderID() int64 {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.holderID
}

// SetHolderID moves the item into a character's direct possession.
func (i *CraftedItem) SetHolderID(id int64) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.holderID = id
}

// CrafterID returns the character who crafted the item.
func (i *CraftedItem) CrafterID() int64 {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.crafterID
}

// SetCrafterID stamps the crafting character.
func (i *CraftedItem) SetCrafterID(id int64) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.crafterID = id
}

// RecipeID returns the recipe the item was crafted from (0 for
// non-crafted objects).
func (i *CraftedItem) RecipeID() int32 {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.recipeID
}

// SetRecipeID stamps the recipe reference.
func (i *CraftedItem) SetRecipeID(id int32) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.recipeID = id
}

// Quality returns the quality tier (0 awful .. 10 divine).
func (i *CraftedItem) Quality() int32 {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.quality
}

// SetQuality sets the quality tier. Refinement only ever calls this
// with a strictly higher tier; quality never regresses.
func (i *CraftedItem) SetQuality(q int32) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.quality = q
}

// Volume returns the carry volume of the item itself.
func (i *CraftedItem) Volume() int32 {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.volume
}

// SetVolume sets the carry volume.
func (i *CraftedItem) SetVolume(v int32) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.volume = v
}

// Materials returns a copy of the consumed-materials snapshot.
func (i *CraftedItem) Materials() map[int32]int64 {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return copyAmounts(i.materials)
}

// SetMaterials records the consumed-materials snapshot.
func (i *CraftedItem) SetMaterials(mats map[int32]int64) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.materials = copyAmounts(mats)
}

// Adornments returns a copy of the adornments snapshot.
func (i *CraftedItem) Adornments() map[int32]int64 {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return copyAmounts(i.adornments)
}

// SetAdornments records the adornments snapshot.
func (i *CraftedItem) SetAdornments(adorns map[int32]int64) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.adornments = copyAmounts(adorns)
}

// AttackSkill returns the weapon attack skill ("" for non-weapons).
func (i *CraftedItem) AttackSkill() string {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.attackSkill
}

// SetAttackSkill stamps the weapon attack skill.
func (i *CraftedItem) SetAttackSkill(skill string) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.attackSkill = skill
}

// Ranged reports whether the weapon operates in ranged mode.
func (i *CraftedItem) Ranged() bool {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.ranged
}

// SetRanged flags the weapon as ranged.
func (i *CraftedItem) SetRanged(r bool) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.ranged = r
}

// Slot returns the wear slot ("" for non-wearables).
func (i *CraftedItem) Slot() string {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.slot
}

// SlotLimit returns how many items may share the wear slot.
func (i *CraftedItem) SlotLimit() int32 {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.slotLimit
}

// SetSlot stamps the wear slot and its capacity limit.
func (i *CraftedItem) SetSlot(slot string, limit int32) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.slot = slot
	i.slotLimit = limit
}

// MaxSpots returns the seating capacity of a place.
func (i *CraftedItem) MaxSpots() int32 {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.maxSpots
}

// SetMaxSpots sets the seating capacity of a place.
func (i *CraftedItem) SetMaxSpots(n int32) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.maxSpots = n
}

// MaxVolume returns the storage capacity of a container.
func (i *CraftedItem) MaxVolume() int32 {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.maxVolume
}

// SetMaxVolume sets the storage capacity of a container.
func (i *CraftedItem) SetMaxVolume(n int32) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.maxVolume = n
}

// GrantKey gives a character access to the container.
func (i *CraftedItem) GrantKey(characterID int64) {
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.keyHolders == nil {
		i.keyHolders = make(map[int64]struct{})
	}
	i.keyHolders[characterID] = struct{}{}
}

// HasKey reports whether a character holds a key to the container.
func (i *CraftedItem) HasKey(characterID int64) bool {
	i.mu.RLock()
	defer i.mu.RUnlock()
	_, ok := i.keyHolders[characterID]
	return ok
}

// KeyHolders returns the IDs of all characters holding a key.
func (i *CraftedItem) KeyHolders() []int64 {
	i.mu.RLock()
	defer i.mu.RUnlock()
	out := make([]int64, 0, len(i.keyHolders))
	for id := range i.keyHolders {
		out = append(out, id)
	}
	return out
}

// Forgeries returns a copy of the fake-to-real substitution map.
func (i *CraftedItem) Forgeries() map[int32]int32 {
	i.mu.RLock()
	defer i.mu.RUnlock()
	out := make(map[int32]int32, len(i.forgeries))
	for fakeID, realID := range i.forgeries {
		out[fakeID] = realID
	}
	return out
}

// ForgeryRoll returns the stored deception roll.
func (i *CraftedItem) ForgeryRoll() int32 {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.forgeryRoll
}

// ForgeryPenalty returns the stored value-penalty multiplier.
func (i *CraftedItem) ForgeryPenalty() int64 {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.forgeryPenalty
}

// SetForgery records the substitution map, the deception roll and the
// derived penalty in one step.
func (i *CraftedItem) SetForgery(forgeries map[int32]int32, roll int32, penalty int64) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.forgeries = make(map[int32]int32, len(forgeries))
	for fakeID, realID := range forgeries {
		i.forgeries[fakeID] = realID
	}
	i.forgeryRoll = roll
	i.forgeryPenalty = penalty
}

// PlotProtected reports whether the item is protected from salvage.
func (i *CraftedItem) PlotProtected() bool {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.plotProtected
}

// SetPlotProtected flags the item as protected from salvage.
func (i *CraftedItem) SetPlotProtected(p bool) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.plotProtected = p
}

// Destroyable reports whether the item may be freely destroyed without
// refund accounting, even when it is not a crafted object.
func (i *CraftedItem) Destroyable() bool {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.destroyable
}

// SetDestroyable flags the item as freely destroyable.
func (i *CraftedItem) SetDestroyable(d bool) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.destroyable = d
}

// ContentCount returns how many objects the item currently contains.
func (i *CraftedItem) ContentCount() int {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return len(i.contents)
}

// Contents returns the object IDs currently inside the item.
func (i *CraftedItem) Contents() []uint32 {
	i.mu.RLock()
	defer i.mu.RUnlock()
	out := make([]uint32, 0, len(i.contents))
	for id := range i.contents {
		out = append(out, id)
	}
	return out
}

// AddContent places another object inside the item.
func (i *CraftedItem) AddContent(objectID uint32) {
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.contents == nil {
		i.contents = make(map[uint32]struct{})
	}
	i.contents[objectID] = struct{}{}
}

// RemoveContent takes an object out of the item.
func (i *CraftedItem) RemoveContent(objectID uint32) {
	i.mu.Lock()
	defer i.mu.Unlock()
	delete(i.contents, objectID)
}

// Destroyed reports whether the item has been destroyed.
func (i *CraftedItem) Destroyed() bool {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.destroyed
}

// Destroy marks the item destroyed. Irreversible.
func (i *CraftedItem) Destroy() {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.destroyed = true
	i.holderID = 0
}

func copyAmounts(in map[int32]int64) map[int32]int64 {
	out := make(map[int32]int64, len(in))
	for id, amount := range in {
		out[id] = amount
	}
	return out
}
