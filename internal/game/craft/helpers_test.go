package craft

import (
	"testing"

	"github.com/packetdancer/arx/internal/data"
	"github.com/packetdancer/arx/internal/model"
)

// fixedDice always returns the same margin, so quality outcomes are
// chosen by the test instead of the RNG.
type fixedDice struct {
	roll int32
}

func (d fixedDice) Roll(*model.Character, string, string, int32, int32) int32 {
	return d.roll
}

func (fixedDice) IntN(int32) int32 { return 0 }

// fakeWorld is an in-memory ItemCreator handing out sequential IDs.
type fakeWorld struct {
	nextID uint32
	items  []*model.CraftedItem
}

func (w *fakeWorld) CreateItem(name string, ownerID int64, quality int32) (*model.CraftedItem, error) {
	w.nextID++
	item, err := model.NewCraftedItem(w.nextID, name, ownerID, quality)
	if err != nil {
		return nil, err
	}
	w.items = append(w.items, item)
	return item, nil
}

// recordingNotifier captures staff alerts for assertions.
type recordingNotifier struct {
	messages []string
}

func (n *recordingNotifier) InformStaff(message string) {
	n.messages = append(n.messages, message)
}

const (
	matIron    int32 = 1
	matSteel   int32 = 2
	matOak     int32 = 3
	matSilk    int32 = 4
	matDiamond int32 = 5
)

const (
	recipeIronSword int32 = 1
	recipeLongbow   int32 = 2
	recipeGown      int32 = 3
	recipeBench     int32 = 4
	recipeChest     int32 = 5
	recipeNovel     int32 = 6
)

// setupCatalog installs a fixed catalog for the duration of one test.
func setupCatalog(t *testing.T) {
	t.Helper()
	data.ResetCatalogs()
	t.Cleanup(data.ResetCatalogs)

	materials := []*data.MaterialType{
		{ID: matIron, Name: "iron ingot", Category: "metal", Value: 10},
		{ID: matSteel, Name: "steel ingot", Category: "metal", Value: 25},
		{ID: matOak, Name: "oak", Category: "wood", Value: 5},
		{ID: matSilk, Name: "silk", Category: "cloth", Value: 30},
		{ID: matDiamond, Name: "diamond", Category: "gemstone", Value: 500},
	}
	for _, m := range materials {
		if err := data.RegisterMaterial(m); err != nil {
			t.Fatalf("RegisterMaterial(%d): %v", m.ID, err)
		}
	}

	recipes := []*data.RecipeTemplate{
		{
			ID: recipeIronSword, Name: "iron sword", Type: data.RecipeWieldable,
			Difficulty: 20, Skill: "smithing", Ability: "smithing",
			AdditionalCost: 100, Level: 2, AllowAdorn: true, Volume: 3,
			Materials: []data.MaterialRequirement{{MaterialID: matIron, Amount: 15}},
			Results:   data.WeaponParams{},
		},
		{
			ID: recipeLongbow, Name: "longbow", Type: data.RecipeWieldable,
			Difficulty: 25, Skill: "carpentry", Ability: "carpentry",
			AdditionalCost: 80, Level: 2, AllowAdorn: true, Volume: 3,
			Materials: []data.MaterialRequirement{{MaterialID: matOak, Amount: 10}},
			Results:   data.WeaponParams{Skill: "archery"},
		},
		{
			ID: recipeGown, Name: "silk gown", Type: data.RecipeWearable,
			Difficulty: 15, Skill: "sewing", Ability: "sewing",
			AdditionalCost: 50, Level: 1, AllowAdorn: true, Volume: 2,
			Materials: []data.MaterialRequirement{{MaterialID: matSilk, Amount: 8}},
			Results:   data.WearableParams{Slot: "chest", SlotLimit: 1},
		},
		{
			ID: recipeBench, Name: "oak bench", Type: data.RecipePlace,
			Difficulty: 10, Skill: "carpentry", Ability: "carpentry",
			AdditionalCost: 20, Level: 1, AllowAdorn: true, Volume: 10,
			Materials: []data.MaterialRequirement{{MaterialID: matOak, Amount: 6}},
			Results:   data.CapacityParams{BaseVal: 2, Scaling: 0.5},
		},
		{
			ID: recipeChest, Name: "oak chest", Type: data.RecipeContainer,
			Difficulty: 10, Skill: "carpentry", Ability: "carpentry",
			AdditionalCost: 30, Level: 1, AllowAdorn: true, Volume: 8,
			Materials: []data.MaterialRequirement{{MaterialID: matOak, Amount: 8}},
			Results:   data.CapacityParams{BaseVal: 10, Scaling: 2},
		},
		{
			ID: recipeNovel, Name: "novel", Type: data.RecipeBook,
			Difficulty: 5, Skill: "artwork", Ability: "all",
			AdditionalCost: 10, Level: 1, AllowAdorn: false, Volume: 1,
			Materials: []data.MaterialRequirement{{MaterialID: matOak, Amount: 1}},
			Results:   data.BaubleParams{},
		},
	}
	for _, r := range recipes {
		if err := data.RegisterRecipe(r); err != nil {
			t.Fatalf("RegisterRecipe(%d): %v", r.ID, err)
		}
	}
}

// newTestCrafter creates a funded, provisioned smith who knows every
// fixture recipe.
func newTestCrafter(t *testing.T, id int64, name string) *model.Character {
	t.Helper()
	ch, err := model.NewCharacter(id, name)
	if err != nil {
		t.Fatalf("NewCharacter: %v", err)
	}
	ch.SetStat("dexterity", 3)
	ch.SetSkill("smithing", 3)
	ch.SetSkill("carpentry", 2)
	ch.SetSkill("sewing", 2)
	ch.SetAbility("smithing", 3)
	ch.SetAbility("carpentry", 2)
	ch.SetAbility("sewing", 2)
	if err := ch.AddMoney(10_000); err != nil {
		t.Fatalf("AddMoney: %v", err)
	}
	ch.SetActionPoints(50)
	for _, recipeID := range []int32{recipeIronSword, recipeLongbow, recipeGown, recipeBench, recipeChest, recipeNovel} {
		ch.LearnRecipe(recipeID)
	}
	ch.Ledger().Credit(matIron, 20)
	ch.Ledger().Credit(matOak, 30)
	ch.Ledger().Credit(matSilk, 10)
	return ch
}

// startNamedProject drives a crafter to a finishable draft.
func startNamedProject(t *testing.T, c *Controller, crafter *model.Character, recipeName string) {
	t.Helper()
	if _, err := c.Start(crafter, recipeName); err != nil {
		t.Fatalf("Start(%s): %v", recipeName, err)
	}
	if err := c.SetName(crafter, "a test piece"); err != nil {
		t.Fatalf("SetName: %v", err)
	}
	if err := c.SetDescription(crafter, "made under test"); err != nil {
		t.Fatalf("SetDescription: %v", err)
	}
}
