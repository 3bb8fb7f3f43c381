package db

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/packetdancer/arx/internal/data"
)

// CatalogRepository loads the static recipe and material catalogs.
type CatalogRepository struct {
	db *pgxpool.Pool
}

// NewCatalogRepository creates a new CatalogRepository.
func NewCatalogRepository(db *pgxpool.Pool) *CatalogRepository {
	return &CatalogRepository{db: db}
}

// LoadAll populates the in-memory catalogs from the database.
// Materials load first so recipe value computation can resolve them.
func (r *CatalogRepository) LoadAll(ctx context.Context) error {
	materials, err := r.loadMaterials(ctx)
	if err != nil {
		return err
	}
	recipes, err := r.loadRecipes(ctx)
	if err != nil {
		return err
	}

	slog.Info("catalogs loaded",
		"materials", materials,
		"recipes", recipes)

	return nil
}

func (r *CatalogRepository) loadMaterials(ctx context.Context) (int, error) {
	query := `
		SELECT id, name, category, value
		FROM material_types
		ORDER BY id
	`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return 0, fmt.Errorf("querying material types: %w", err)
	}
	defer rows.Close()

	count := 0
	for rows.Next() {
		var mat data.MaterialType
		if err := rows.Scan(&mat.ID, &mat.Name, &mat.Category, &mat.Value); err != nil {
			return 0, fmt.Errorf("scanning material row: %w", err)
		}
		if err := data.RegisterMaterial(&mat); err != nil {
			return 0, fmt.Errorf("registering material %d: %w", mat.ID, err)
		}
		count++
	}

	if err := rows.Err(); err != nil {
		return 0, fmt.Errorf("iterating material rows: %w", err)
	}

	return count, nil
}

func (r *CatalogRepository) loadRecipes(ctx context.Context) (int, error) {
	query := `
		SELECT id, name, description, type, difficulty, skill, ability,
		       additional_cost, level, allow_adorn, volume,
		       result_weapon_skill, result_slot, result_slot_limit,
		       result_baseval, result_scaling
		FROM recipes
		ORDER BY id
	`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return 0, fmt.Errorf("querying recipes: %w", err)
	}
	defer rows.Close()

	templates := make([]*data.RecipeTemplate, 0, 64)
	for rows.Next() {
		var (
			rec       data.RecipeTemplate
			typeName  string
			wpnSkill  *string
			slot      *string
			slotLimit *int32
			baseVal   *int32
			scaling   *float64
		)
		err := rows.Scan(
			&rec.ID, &rec.Name, &rec.Desc, &typeName, &rec.Difficulty,
			&rec.Skill, &rec.Ability,
			&rec.AdditionalCost, &rec.Level, &rec.AllowAdorn, &rec.Volume,
			&wpnSkill, &slot, &slotLimit,
			&baseVal, &scaling,
		)
		if err != nil {
			return 0, fmt.Errorf("scanning recipe row: %w", err)
		}

		rec.Type = data.ParseRecipeType(typeName)
		rec.Results = buildResults(rec.Type, wpnSkill, slot, slotLimit, baseVal, scaling)

		templates = append(templates, &rec)
	}
	if err := rows.Err(); err != nil {
		return 0, fmt.Errorf("iterating recipe rows: %w", err)
	}

	for _, rec := range templates {
		if err := r.loadRecipeMaterials(ctx, rec); err != nil {
			return 0, err
		}
		if err := data.RegisterRecipe(rec); err != nil {
			return 0, fmt.Errorf("registering recipe %d: %w", rec.ID, err)
		}
	}

	return len(templates), nil
}

func (r *CatalogRepository) loadRecipeMaterials(ctx context.Context, rec *data.RecipeTemplate) error {
	query := `
		SELECT material_id, amount
		FROM recipe_materials
		WHERE recipe_id = $1
		ORDER BY material_id
	`

	rows, err := r.db.Query(ctx, query, rec.ID)
	if err != nil {
		return fmt.Errorf("querying materials for recipe %d: %w", rec.ID, err)
	}
	defer rows.Close()

	for rows.Next() {
		var req data.MaterialRequirement
		if err := rows.Scan(&req.MaterialID, &req.Amount); err != nil {
			return fmt.Errorf("scanning recipe material row: %w", err)
		}
		rec.Materials = append(rec.Materials, req)
	}

	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterating recipe material rows: %w", err)
	}

	return nil
}

// buildResults maps the nullable result_* columns onto the variant the
// recipe type expects. Columns that belong to a different variant are
// ignored.
func buildResults(t data.RecipeType, wpnSkill, slot *string, slotLimit, baseVal *int32, scaling *float64) data.ResultParams {
	switch t {
	case data.RecipeWieldable, data.RecipeDecorativeWeapon:
		p := data.WeaponParams{}
		if wpnSkill != nil {
			p.Skill = *wpnSkill
		}
		return p
	case data.RecipeWearable:
		p := data.WearableParams{}
		if slot != nil {
			p.Slot = *slot
		}
		if slotLimit != nil {
			p.SlotLimit = *slotLimit
		}
		return p
	case data.RecipePlace, data.RecipeContainer, data.RecipeWearableContainer:
		p := data.CapacityParams{}
		if baseVal != nil {
			p.BaseVal = *baseVal
		}
		if scaling != nil {
			p.Scaling = *scaling
		}
		return p
	default:
		return data.BaubleParams{}
	}
}
