package db

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/packetdancer/arx/internal/model"
)

// CharacterRepository manages crafter state in the database.
type CharacterRepository struct {
	db *pgxpool.Pool
}

// NewCharacterRepository creates a new CharacterRepository.
func NewCharacterRepository(db *pgxpool.Pool) *CharacterRepository {
	return &CharacterRepository{db: db}
}

// AllIDs returns the IDs of every stored character.
func (r *CharacterRepository) AllIDs(ctx context.Context) ([]int64, error) {
	rows, err := r.db.Query(ctx, `SELECT id FROM characters ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("querying character ids: %w", err)
	}
	defer rows.Close()

	ids := make([]int64, 0, 64)
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning character id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating character ids: %w", err)
	}

	return ids, nil
}

// LoadByID loads a character with traits, known recipes, material stock
// and refinement history. Returns nil if the character is not found
// (not an error).
func (r *CharacterRepository) LoadByID(ctx context.Context, characterID int64) (*model.Character, error) {
	query := `
		SELECT id, name, currency, action_points
		FROM characters
		WHERE id = $1
	`

	var id int64
	var name string
	var currency int64
	var actionPoints int32

	err := r.db.QueryRow(ctx, query, characterID).Scan(&id, &name, &currency, &actionPoints)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying character %d: %w", characterID, err)
	}

	ch, err := model.NewCharacter(id, name)
	if err != nil {
		return nil, fmt.Errorf("creating character model: %w", err)
	}
	if err := ch.AddMoney(currency); err != nil {
		return nil, fmt.Errorf("restoring currency for character %d: %w", id, err)
	}
	ch.SetActionPoints(actionPoints)

	if err := r.loadTraits(ctx, ch); err != nil {
		return nil, err
	}
	if err := r.loadRecipes(ctx, ch); err != nil {
		return nil, err
	}
	if err := r.loadMaterials(ctx, ch); err != nil {
		return nil, err
	}
	if err := r.loadRefineAttempts(ctx, ch); err != nil {
		return nil, err
	}

	return ch, nil
}

func (r *CharacterRepository) loadTraits(ctx context.Context, ch *model.Character) error {
	query := `
		SELECT kind, name, value
		FROM character_traits
		WHERE character_id = $1
	`

	rows, err := r.db.Query(ctx, query, ch.ID())
	if err != nil {
		return fmt.Errorf("querying traits for character %d: %w", ch.ID(), err)
	}
	defer rows.Close()

	for rows.Next() {
		var kind, name string
		var value int32
		if err := rows.Scan(&kind, &name, &value); err != nil {
			return fmt.Errorf("scanning trait row: %w", err)
		}
		switch kind {
		case "stat":
			ch.SetStat(name, value)
		case "skill":
			ch.SetSkill(name, value)
		case "ability":
			ch.SetAbility(name, value)
		default:
			return fmt.Errorf("character %d has unknown trait kind %q", ch.ID(), kind)
		}
	}

	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterating trait rows: %w", err)
	}

	return nil
}

func (r *CharacterRepository) loadRecipes(ctx context.Context, ch *model.Character) error {
	query := `
		SELECT recipe_id
		FROM character_recipes
		WHERE character_id = $1
		ORDER BY recipe_id
	`

	rows, err := r.db.Query(ctx, query, ch.ID())
	if err != nil {
		return fmt.Errorf("querying recipes for character %d: %w", ch.ID(), err)
	}
	defer rows.Close()

	for rows.Next() {
		var recipeID int32
		if err := rows.Scan(&recipeID); err != nil {
			return fmt.Errorf("scanning known recipe row: %w", err)
		}
		ch.LearnRecipe(recipeID)
	}

	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterating known recipe rows: %w", err)
	}

	return nil
}

func (r *CharacterRepository) loadMaterials(ctx context.Context, ch *model.Character) error {
	query := `
		SELECT material_id, amount
		FROM character_materials
		WHERE character_id = $1
	`

	rows, err := r.db.Query(ctx, query, ch.ID())
	if err != nil {
		return fmt.Errorf("querying materials for character %d: %w", ch.ID(), err)
	}
	defer rows.Close()

	stock := make(map[int32]int64)
	for rows.Next() {
		var materialID int32
		var amount int64
		if err := rows.Scan(&materialID, &amount); err != nil {
			return fmt.Errorf("scanning material stock row: %w", err)
		}
		stock[materialID] = amount
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterating material stock rows: %w", err)
	}

	ch.Ledger().Restore(stock)
	return nil
}

func (r *CharacterRepository) loadRefineAttempts(ctx context.Context, ch *model.Character) error {
	query := `
		SELECT item_object_id, attempts
		FROM refine_attempts
		WHERE character_id = $1
	`

	rows, err := r.db.Query(ctx, query, ch.ID())
	if err != nil {
		return fmt.Errorf("querying refine attempts for character %d: %w", ch.ID(), err)
	}
	defer rows.Close()

	counts := make(map[uint32]int32)
	for rows.Next() {
		var itemObjectID int64
		var attempts int32
		if err := rows.Scan(&itemObjectID, &attempts); err != nil {
			return fmt.Errorf("scanning refine attempt row: %w", err)
		}
		counts[uint32(itemObjectID)] = attempts
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterating refine attempt rows: %w", err)
	}

	ch.RestoreRefineAttempts(counts)
	return nil
}

// SaveTx saves the full character state within a transaction.
// Child tables are full-replaced: delete all existing, then bulk insert.
// Traits are maintained by the progression system and are not written back.
func (r *CharacterRepository) SaveTx(ctx context.Context, tx pgx.Tx, ch *model.Character) error {
	query := `
		INSERT INTO characters (id, name, currency, action_points)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE SET
			name = $2, currency = $3, action_points = $4
	`

	if _, err := tx.Exec(ctx, query, ch.ID(), ch.Name(), ch.Currency(), ch.ActionPoints()); err != nil {
		return fmt.Errorf("upserting character %d: %w", ch.ID(), err)
	}

	if err := r.saveRecipesTx(ctx, tx, ch); err != nil {
		return err
	}
	if err := r.saveMaterialsTx(ctx, tx, ch); err != nil {
		return err
	}
	if err := r.saveRefineAttemptsTx(ctx, tx, ch); err != nil {
		return err
	}

	slog.Debug("saved character",
		"characterID", ch.ID(),
		"currency", ch.Currency(),
		"actionPoints", ch.ActionPoints())

	return nil
}

func (r *CharacterRepository) saveRecipesTx(ctx context.Context, tx pgx.Tx, ch *model.Character) error {
	if _, err := tx.Exec(ctx, `DELETE FROM character_recipes WHERE character_id = $1`, ch.ID()); err != nil {
		return fmt.Errorf("deleting old recipes for character %d: %w", ch.ID(), err)
	}

	known := ch.KnownRecipeIDs()
	if len(known) == 0 {
		return nil
	}

	rows := make([][]any, 0, len(known))
	for _, recipeID := range known {
		rows = append(rows, []any{ch.ID(), recipeID})
	}

	_, err := tx.CopyFrom(ctx,
		pgx.Identifier{"character_recipes"},
		[]string{"character_id", "recipe_id"},
		pgx.CopyFromRows(rows),
	)
	if err != nil {
		return fmt.Errorf("inserting recipes for character %d: %w", ch.ID(), err)
	}

	return nil
}

func (r *CharacterRepository) saveMaterialsTx(ctx context.Context, tx pgx.Tx, ch *model.Character) error {
	if _, err := tx.Exec(ctx, `DELETE FROM character_materials WHERE character_id = $1`, ch.ID()); err != nil {
		return fmt.Errorf("deleting old material stock for character %d: %w", ch.ID(), err)
	}

	stock := ch.Ledger().Snapshot()
	if len(stock) == 0 {
		return nil
	}

	rows := make([][]any, 0, len(stock))
	for materialID, amount := range stock {
		rows = append(rows, []any{ch.ID(), materialID, amount})
	}

	_, err := tx.CopyFrom(ctx,
		pgx.Identifier{"character_materials"},
		[]string{"character_id", "material_id", "amount"},
		pgx.CopyFromRows(rows),
	)
	if err != nil {
		return fmt.Errorf("inserting material stock for character %d: %w", ch.ID(), err)
	}

	return nil
}

func (r *CharacterRepository) saveRefineAttemptsTx(ctx context.Context, tx pgx.Tx, ch *model.Character) error {
	if _, err := tx.Exec(ctx, `DELETE FROM refine_attempts WHERE character_id = $1`, ch.ID()); err != nil {
		return fmt.Errorf("deleting old refine attempts for character %d: %w", ch.ID(), err)
	}

	counts := ch.RefineAttemptCounts()
	if len(counts) == 0 {
		return nil
	}

	rows := make([][]any, 0, len(counts))
	for itemObjectID, attempts := range counts {
		rows = append(rows, []any{ch.ID(), int64(itemObjectID), attempts})
	}

	_, err := tx.CopyFrom(ctx,
		pgx.Identifier{"refine_attempts"},
		[]string{"character_id", "item_object_id", "attempts"},
		pgx.CopyFromRows(rows),
	)
	if err != nil {
		return fmt.Errorf("inserting refine attempts for character %d: %w", ch.ID(), err)
	}

	return nil
}

// Save saves the full character state (standalone, creates own transaction).
func (r *CharacterRepository) Save(ctx context.Context, ch *model.Character) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err := tx.Rollback(ctx); err != nil && err != pgx.ErrTxClosed {
			slog.Error("rollback failed", "characterID", ch.ID(), "error", err)
		}
	}()

	if err := r.SaveTx(ctx, tx, ch); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	return nil
}

// Delete removes a character and all dependent rows.
func (r *CharacterRepository) Delete(ctx context.Context, characterID int64) error {
	result, err := r.db.Exec(ctx, `DELETE FROM characters WHERE id = $1`, characterID)
	if err != nil {
		return fmt.Errorf("deleting character %d: %w", characterID, err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("character %d not found", characterID)
	}
	return nil
}
