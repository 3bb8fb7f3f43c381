package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCraftedItem(t *testing.T) {
	tests := []struct {
		name     string
		objectID uint32
		itemName string
		quality  int32
		wantErr  bool
	}{
		{name: "valid", objectID: 1, itemName: "an iron sword", quality: 5, wantErr: false},
		{name: "zero object id", objectID: 0, itemName: "an iron sword", quality: 5, wantErr: true},
		{name: "empty name", objectID: 1, itemName: "", quality: 5, wantErr: true},
		{name: "quality below scale", objectID: 1, itemName: "a sword", quality: -1, wantErr: true},
		{name: "quality above scale", objectID: 1, itemName: "a sword", quality: MaxQuality + 1, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			item, err := NewCraftedItem(tt.objectID, tt.itemName, 1, tt.quality)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.objectID, item.ObjectID())
			assert.Equal(t, tt.itemName, item.Name())
			assert.Equal(t, tt.quality, item.Quality())
			assert.Equal(t, int64(1), item.HolderID(), "crafter holds the new item")
		})
	}
}

func TestCraftedItem_Keys(t *testing.T) {
	item, err := NewCraftedItem(1, "an oak chest", 7, 5)
	require.NoError(t, err)

	assert.False(t, item.HasKey(7))
	item.GrantKey(7)
	item.GrantKey(9)
	assert.True(t, item.HasKey(7))
	assert.True(t, item.HasKey(9))
	assert.False(t, item.HasKey(8))
	assert.ElementsMatch(t, []int64{7, 9}, item.KeyHolders())
}

func TestCraftedItem_MaterialCopies(t *testing.T) {
	item, err := NewCraftedItem(1, "an iron sword", 1, 5)
	require.NoError(t, err)

	item.SetMaterials(map[int32]int64{1: 15})
	mats := item.Materials()
	mats[1] = 999
	assert.Equal(t, int64(15), item.Materials()[1], "Materials returns a copy")
}

func TestCraftedItem_Forgery(t *testing.T) {
	item, err := NewCraftedItem(1, "a 'gold' ring", 1, 5)
	require.NoError(t, err)

	assert.Empty(t, item.Forgeries())

	item.SetForgery(map[int32]int32{2: 1}, 14, 3)
	assert.Equal(t, map[int32]int32{2: 1}, item.Forgeries())
	assert.Equal(t, int32(14), item.ForgeryRoll())
	assert.Equal(t, int64(3), item.ForgeryPenalty())
}

func TestCraftedItem_Contents(t *testing.T) {
	item, err := NewCraftedItem(1, "an oak chest", 1, 5)
	require.NoError(t, err)

	assert.Equal(t, 0, item.ContentCount())
	item.AddContent(100)
	item.AddContent(101)
	item.AddContent(100)
	assert.Equal(t, 2, item.ContentCount())
	assert.ElementsMatch(t, []uint32{100, 101}, item.Contents())
	item.RemoveContent(100)
	assert.Equal(t, 1, item.ContentCount())
	assert.ElementsMatch(t, []uint32{101}, item.Contents())
}

func TestCraftedItem_Destroy(t *testing.T) {
	item, err := NewCraftedItem(1, "an iron sword", 4, 5)
	require.NoError(t, err)

	assert.False(t, item.Destroyed())
	item.Destroy()
	assert.True(t, item.Destroyed())
	assert.Equal(t, int64(0), item.HolderID(), "destroyed items are held by no one")
}
