package data

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/agnivade/levenshtein"
)

// Lookup errors. A fuzzy name search distinguishes "nothing close
// enough" from "more than one plausible match"; callers word their
// user feedback differently for each.
var (
	ErrNotFound  = errors.New("no match found")
	ErrAmbiguous = errors.New("more than one match")
)

var (
	catalogMu     sync.RWMutex
	recipeTable   = make(map[int32]*RecipeTemplate)
	materialTable = make(map[int32]*MaterialType)
)

// RegisterRecipe adds a recipe template to the catalog, replacing any
// previous entry with the same ID.
func RegisterRecipe(r *RecipeTemplate) error {
	if err := r.Validate(); err != nil {
		return fmt.Errorf("registering recipe: %w", err)
	}
	catalogMu.Lock()
	defer catalogMu.Unlock()
	recipeTable[r.ID] = r
	return nil
}

// RegisterMaterial adds a material type to the catalog, replacing any
// previous entry with the same ID.
func RegisterMaterial(m *MaterialType) error {
	if err := m.Validate(); err != nil {
		return fmt.Errorf("registering material: %w", err)
	}
	catalogMu.Lock()
	defer catalogMu.Unlock()
	materialTable[m.ID] = m
	return nil
}

// GetRecipe returns a recipe by ID, or nil.
func GetRecipe(id int32) *RecipeTemplate {
	catalogMu.RLock()
	defer catalogMu.RUnlock()
	return recipeTable[id]
}

// GetRecipeByName returns a recipe by exact case-insensitive name, or nil.
func GetRecipeByName(name string) *RecipeTemplate {
	catalogMu.RLock()
	defer catalogMu.RUnlock()
	for _, r := range recipeTable {
		if strings.EqualFold(r.Name, name) {
			return r
		}
	}
	return nil
}

// AllRecipes returns every recipe sorted by ability, difficulty, name.
func AllRecipes() []*RecipeTemplate {
	catalogMu.RLock()
	out := make([]*RecipeTemplate, 0, len(recipeTable))
	for _, r := range recipeTable {
		out = append(out, r)
	}
	catalogMu.RUnlock()
	sort.Slice(out, func(i, j int) bool {
		if out[i].Ability != out[j].Ability {
			return out[i].Ability < out[j].Ability
		}
		if out[i].Difficulty != out[j].Difficulty {
			return out[i].Difficulty < out[j].Difficulty
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// GetMaterial returns a material type by ID, or nil.
func GetMaterial(id int32) *MaterialType {
	catalogMu.RLock()
	defer catalogMu.RUnlock()
	return materialTable[id]
}

// FindMaterial resolves a material by name. Exact case-insensitive
// matches win; otherwise close names (edit distance scaled by length)
// are considered, returning ErrAmbiguous when several qualify and
// ErrNotFound when none do.
func FindMaterial(name string) (*MaterialType, error) {
	query := strings.ToLower(strings.TrimSpace(name))
	if query == "" {
		return nil, fmt.Errorf("material %q: %w", name, ErrNotFound)
	}

	catalogMu.RLock()
	defer catalogMu.RUnlock()

	var fuzzy []*MaterialType
	for _, m := range materialTable {
		candidate := strings.ToLower(m.Name)
		if candidate == query {
			return m, nil
		}
		if levenshtein.ComputeDistance(query, candidate) <= editLimit(len(candidate)) {
			fuzzy = append(fuzzy, m)
		}
	}
	switch len(fuzzy) {
	case 0:
		return nil, fmt.Errorf("material %q: %w", name, ErrNotFound)
	case 1:
		return fuzzy[0], nil
	default:
		return nil, fmt.Errorf("material %q: %w", name, ErrAmbiguous)
	}
}

// editLimit scales the accepted edit distance with the candidate
// length, so short names stay strict.
func editLimit(length int) int {
	switch {
	case length <= 4:
		return 1
	case length <= 8:
		return 2
	default:
		return 3
	}
}

// ResetCatalogs drops every registered recipe and material. Intended
// for tests that need an isolated catalog.
func ResetCatalogs() {
	catalogMu.Lock()
	defer catalogMu.Unlock()
	recipeTable = make(map[int32]*RecipeTemplate)
	materialTable = make(map[int32]*MaterialType)
}
