package salvage

import (
	"testing"

	"github.com/packetdancer/arx/internal/data"
	"github.com/packetdancer/arx/internal/model"
)

const (
	matIron    int32 = 1
	matDiamond int32 = 2
)

func setupCatalog(t *testing.T) {
	t.Helper()
	data.ResetCatalogs()
	t.Cleanup(data.ResetCatalogs)

	materials := []*data.MaterialType{
		{ID: matIron, Name: "iron ingot", Category: "metal", Value: 10},
		{ID: matDiamond, Name: "diamond", Category: "gemstone", Value: 500},
	}
	for _, m := range materials {
		if err := data.RegisterMaterial(m); err != nil {
			t.Fatalf("RegisterMaterial(%d): %v", m.ID, err)
		}
	}
}

func newTestCrafter(t *testing.T, id int64) *model.Character {
	t.Helper()
	ch, err := model.NewCharacter(id, "Aurelia")
	if err != nil {
		t.Fatalf("NewCharacter: %v", err)
	}
	return ch
}

func newCraftedItem(t *testing.T, holderID int64) *model.CraftedItem {
	t.Helper()
	item, err := model.NewCraftedItem(100, "a battered sword", holderID, 3)
	if err != nil {
		t.Fatalf("NewCraftedItem: %v", err)
	}
	item.SetRecipeID(1)
	return item
}

func TestSalvageRefunds(t *testing.T) {
	setupCatalog(t)
	c := NewController()
	crafter := newTestCrafter(t, 1)

	item := newCraftedItem(t, 1)
	item.SetMaterials(map[int32]int64{matIron: 10})
	item.SetAdornments(map[int32]int64{matDiamond: 2})

	manifest, err := c.Salvage(crafter, item)
	if err != nil {
		t.Fatalf("Salvage: %v", err)
	}

	// Adornments whole, base materials halved.
	if got := crafter.Ledger().Balance(matDiamond); got != 2 {
		t.Fatalf("diamond refund = %d, want 2", got)
	}
	if got := crafter.Ledger().Balance(matIron); got != 5 {
		t.Fatalf("iron refund = %d, want 10/2 = 5", got)
	}
	if len(manifest) != 2 {
		t.Fatalf("manifest has %d entries, want 2", len(manifest))
	}
	if !item.Destroyed() {
		t.Fatal("salvaged item survived")
	}
}

func TestSalvageOverlapOnlyHalvesBasePortion(t *testing.T) {
	setupCatalog(t)
	c := NewController()
	crafter := newTestCrafter(t, 1)

	// 10 iron total on the item, 4 of them adornment: the adornment
	// comes back whole and only the remaining 6 base are halved.
	item := newCraftedItem(t, 1)
	item.SetMaterials(map[int32]int64{matIron: 10})
	item.SetAdornments(map[int32]int64{matIron: 4})

	if _, err := c.Salvage(crafter, item); err != nil {
		t.Fatalf("Salvage: %v", err)
	}
	if got := crafter.Ledger().Balance(matIron); got != 7 {
		t.Fatalf("iron refund = %d, want 4 + (10-4)/2 = 7", got)
	}
}

func TestSalvageZeroRefundSkipped(t *testing.T) {
	setupCatalog(t)
	c := NewController()
	crafter := newTestCrafter(t, 1)

	item := newCraftedItem(t, 1)
	item.SetMaterials(map[int32]int64{matIron: 1})

	manifest, err := c.Salvage(crafter, item)
	if err != nil {
		t.Fatalf("Salvage: %v", err)
	}
	if len(manifest) != 0 {
		t.Fatalf("manifest = %v, want no entries for a 1/2 = 0 refund", manifest)
	}
	if got := crafter.Ledger().Balance(matIron); got != 0 {
		t.Fatalf("iron balance = %d, want 0", got)
	}
	if !item.Destroyed() {
		t.Fatal("item with nothing to refund still gets destroyed")
	}
}

func TestSalvageDestroyableShortCircuits(t *testing.T) {
	setupCatalog(t)
	c := NewController()
	crafter := newTestCrafter(t, 1)

	item := newCraftedItem(t, 1)
	item.SetMaterials(map[int32]int64{matIron: 10})
	item.SetDestroyable(true)

	manifest, err := c.Salvage(crafter, item)
	if err != nil {
		t.Fatalf("Salvage: %v", err)
	}
	if len(manifest) != 0 {
		t.Fatalf("freely destroyable items refund nothing, got %v", manifest)
	}
	if got := crafter.Ledger().Balance(matIron); got != 0 {
		t.Fatalf("iron balance = %d, want 0", got)
	}
	if !item.Destroyed() {
		t.Fatal("item was not destroyed")
	}
}

func TestSalvageGuards(t *testing.T) {
	setupCatalog(t)

	tests := []struct {
		name    string
		prepare func(t *testing.T, item *model.CraftedItem)
	}{
		{
			name: "not holding it",
			prepare: func(t *testing.T, item *model.CraftedItem) {
				item.SetHolderID(42)
			},
		},
		{
			name: "not crafted",
			prepare: func(t *testing.T, item *model.CraftedItem) {
				item.SetRecipeID(0)
			},
		},
		{
			name: "plot protected",
			prepare: func(t *testing.T, item *model.CraftedItem) {
				item.SetPlotProtected(true)
			},
		},
		{
			name: "has contents",
			prepare: func(t *testing.T, item *model.CraftedItem) {
				item.AddContent(500)
			},
		},
		{
			name: "already destroyed",
			prepare: func(t *testing.T, item *model.CraftedItem) {
				item.Destroy()
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewController()
			crafter := newTestCrafter(t, 1)
			item := newCraftedItem(t, 1)
			item.SetMaterials(map[int32]int64{matIron: 10})
			tt.prepare(t, item)

			if _, err := c.Salvage(crafter, item); err == nil {
				t.Fatal("Salvage accepted the item")
			}
			if got := crafter.Ledger().Balance(matIron); got != 0 {
				t.Fatalf("refused salvage still refunded %d iron", got)
			}
		})
	}
}

func TestSalvageGhostMaterialRaisesIntegrityFault(t *testing.T) {
	setupCatalog(t)
	c := NewController()
	crafter := newTestCrafter(t, 1)

	item := newCraftedItem(t, 1)
	item.SetMaterials(map[int32]int64{matIron: 10, 99: 4})

	_, err := c.Salvage(crafter, item)
	if err == nil {
		t.Fatal("Salvage accepted an item referencing a vanished material")
	}
	if !model.IsIntegrity(err) {
		t.Fatalf("error = %v, want an integrity fault", err)
	}
	if item.Destroyed() {
		t.Fatal("item was destroyed despite the fault")
	}
	if got := crafter.Ledger().Balance(matIron); got != 0 {
		t.Fatalf("partial refund of %d iron was applied", got)
	}
}
