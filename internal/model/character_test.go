package model

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCharacter(t *testing.T, id int64, name string) *Character {
	t.Helper()
	ch, err := NewCharacter(id, name)
	require.NoError(t, err, "NewCharacter(%d, %s)", id, name)
	return ch
}

func TestNewCharacter(t *testing.T) {
	tests := []struct {
		name     string
		id       int64
		charName string
		wantErr  bool
	}{
		{name: "valid", id: 1, charName: "Aurelia", wantErr: false},
		{name: "zero id", id: 0, charName: "Aurelia", wantErr: true},
		{name: "negative id", id: -4, charName: "Aurelia", wantErr: true},
		{name: "empty name", id: 1, charName: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ch, err := NewCharacter(tt.id, tt.charName)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.id, ch.ID())
			assert.Equal(t, tt.charName, ch.Name())
			assert.Equal(t, tt.id, ch.Ledger().OwnerID())
		})
	}
}

func TestCharacter_Traits(t *testing.T) {
	ch := newTestCharacter(t, 1, "Aurelia")

	assert.Equal(t, int32(0), ch.Stat("dexterity"), "unset traits read as zero")

	ch.SetStat("dexterity", 4)
	ch.SetSkill("smithing", 3)
	ch.SetAbility("smithing", 2)

	assert.Equal(t, int32(4), ch.Stat("dexterity"))
	assert.Equal(t, int32(3), ch.Skill("smithing"))
	assert.Equal(t, int32(2), ch.Ability("smithing"))

	abilities := ch.Abilities()
	assert.Equal(t, map[string]int32{"smithing": 2}, abilities)
	abilities["smithing"] = 99
	assert.Equal(t, int32(2), ch.Ability("smithing"), "Abilities returns a copy")
}

func TestCharacter_Money(t *testing.T) {
	ch := newTestCharacter(t, 1, "Aurelia")

	require.NoError(t, ch.AddMoney(100))
	assert.Equal(t, int64(100), ch.Currency())

	assert.Error(t, ch.AddMoney(-1))

	require.NoError(t, ch.PayMoney(40))
	assert.Equal(t, int64(60), ch.Currency())

	err := ch.PayMoney(61)
	require.Error(t, err)
	assert.True(t, IsPrecondition(err))
	assert.Equal(t, int64(60), ch.Currency(), "failed spend takes nothing")

	assert.Error(t, ch.PayMoney(-5))
}

func TestCharacter_ActionPoints(t *testing.T) {
	ch := newTestCharacter(t, 1, "Aurelia")
	ch.SetActionPoints(10)

	require.NoError(t, ch.PayActionPoints(4))
	assert.Equal(t, int32(6), ch.ActionPoints())

	err := ch.PayActionPoints(7)
	require.Error(t, err)
	assert.True(t, IsPrecondition(err))
	assert.Equal(t, int32(6), ch.ActionPoints())
}

func TestCharacter_ConcurrentPayMoneyNeverOverdraws(t *testing.T) {
	ch := newTestCharacter(t, 1, "Aurelia")
	require.NoError(t, ch.AddMoney(100))

	var wg sync.WaitGroup
	for range 150 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = ch.PayMoney(1)
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(0), ch.Currency())
}

func TestCharacter_Recipes(t *testing.T) {
	ch := newTestCharacter(t, 1, "Aurelia")

	assert.False(t, ch.KnowsRecipe(7))
	ch.LearnRecipe(7)
	ch.LearnRecipe(7)
	ch.LearnRecipe(3)
	assert.True(t, ch.KnowsRecipe(7))
	assert.ElementsMatch(t, []int32{3, 7}, ch.KnownRecipeIDs())
}

func TestCharacter_Project(t *testing.T) {
	ch := newTestCharacter(t, 1, "Aurelia")

	assert.Nil(t, ch.Project())

	ch.SetProject(NewCraftingProject(5))
	require.NotNil(t, ch.Project())
	assert.Equal(t, int32(5), ch.Project().RecipeID)

	ch.ClearProject()
	assert.Nil(t, ch.Project())
}

func TestCharacter_RefineAttempts(t *testing.T) {
	ch := newTestCharacter(t, 1, "Aurelia")

	assert.Equal(t, int32(0), ch.RefineAttempts(100))
	assert.Equal(t, int32(1), ch.IncRefineAttempts(100))
	assert.Equal(t, int32(2), ch.IncRefineAttempts(100))
	assert.Equal(t, int32(1), ch.IncRefineAttempts(200))
	assert.Equal(t, int32(2), ch.RefineAttempts(100))

	counts := ch.RefineAttemptCounts()
	assert.Equal(t, map[uint32]int32{100: 2, 200: 1}, counts)

	restored := newTestCharacter(t, 2, "Borin")
	restored.RestoreRefineAttempts(counts)
	assert.Equal(t, int32(2), restored.RefineAttempts(100))
	assert.Equal(t, int32(1), restored.RefineAttempts(200))
}
