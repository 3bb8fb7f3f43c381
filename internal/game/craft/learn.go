package craft

import (
	"log/slog"

	"github.com/packetdancer/arx/internal/data"
	"github.com/packetdancer/arx/internal/model"
)

// KnownRecipes returns the recipes the character has learned, sorted
// by ability, difficulty and name.
func (c *Controller) KnownRecipes(ch *model.Character) []*data.RecipeTemplate {
	var known []*data.RecipeTemplate
	for _, recipe := range data.AllRecipes() {
		if ch.KnowsRecipe(recipe.ID) {
			known = append(known, recipe)
		}
	}
	return known
}

// LearnableRecipes returns the recipes the character could learn but
// has not yet, per the access policy.
func (c *Controller) LearnableRecipes(ch *model.Character) []*data.RecipeTemplate {
	var learnable []*data.RecipeTemplate
	for _, recipe := range data.AllRecipes() {
		if !ch.KnowsRecipe(recipe.ID) && c.access(ch, recipe, "learn") {
			learnable = append(learnable, recipe)
		}
	}
	return learnable
}

// Learn teaches the character a recipe by name, charging the recipe's
// flat cost.
func (c *Controller) Learn(ch *model.Character, recipeName string) (*data.RecipeTemplate, error) {
	if err := c.beginAction(ch.ID()); err != nil {
		return nil, err
	}
	defer c.endAction(ch.ID())

	recipe := data.GetRecipeByName(recipeName)
	if recipe == nil || ch.KnowsRecipe(recipe.ID) || !c.access(ch, recipe, "learn") {
		return nil, model.Preconditionf("no recipe by that name")
	}
	if err := ch.PayMoney(recipe.AdditionalCost); err != nil {
		return nil, model.Preconditionf("it costs %d to learn %s, and you only have %d",
			recipe.AdditionalCost, recipe.Name, ch.Currency())
	}
	ch.LearnRecipe(recipe.ID)
	slog.Info("recipe learned",
		"character", ch.Name(),
		"recipe", recipe.Name,
		"cost", recipe.AdditionalCost)
	return recipe, nil
}

// Teach grants a recipe the teacher knows to a student, free of
// charge. Both the teach permission on the teacher's side and the
// learn permission on the student's side must pass.
func (c *Controller) Teach(teacher, student *model.Character, recipeName string) (*data.RecipeTemplate, error) {
	recipe := data.GetRecipeByName(recipeName)
	if recipe == nil || !teacher.KnowsRecipe(recipe.ID) || !c.access(teacher, recipe, "teach") {
		return nil, model.Preconditionf("you cannot teach a recipe by that name")
	}
	if !c.access(student, recipe, "learn") {
		return nil, model.Preconditionf("%s cannot learn %s", student.Name(), recipe.Name)
	}
	if student.KnowsRecipe(recipe.ID) {
		return nil, model.Preconditionf("%s already knows %s", student.Name(), recipe.Name)
	}
	student.LearnRecipe(recipe.ID)
	slog.Info("recipe taught",
		"teacher", teacher.Name(),
		"student", student.Name(),
		"recipe", recipe.Name)
	return recipe, nil
}
