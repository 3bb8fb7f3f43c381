package db

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/packetdancer/arx/internal/model"
)

// ItemRepository manages crafted items in the database.
type ItemRepository struct {
	db *pgxpool.Pool
}

// NewItemRepository creates a new ItemRepository.
func NewItemRepository(db *pgxpool.Pool) *ItemRepository {
	return &ItemRepository{db: db}
}

// LoadByID loads a crafted item by object ID.
// Returns nil if the item is not found (not an error).
func (r *ItemRepository) LoadByID(ctx context.Context, objectID uint32) (*model.CraftedItem, error) {
	query := `
		SELECT object_id, name, description, holder_id, crafter_id, recipe_id,
		       quality, volume, attack_skill, ranged, slot, slot_limit,
		       max_spots, max_volume, plot_protected, destroyable,
		       forgery_roll, forgery_penalty
		FROM crafted_items
		WHERE object_id = $1
	`

	item, err := r.scanItem(r.db.QueryRow(ctx, query, int64(objectID)))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying item %d: %w", objectID, err)
	}

	if err := r.loadChildren(ctx, item); err != nil {
		return nil, err
	}

	return item, nil
}

// LoadByHolder loads all crafted items held by a character.
func (r *ItemRepository) LoadByHolder(ctx context.Context, holderID int64) ([]*model.CraftedItem, error) {
	query := `
		SELECT object_id, name, description, holder_id, crafter_id, recipe_id,
		       quality, volume, attack_skill, ranged, slot, slot_limit,
		       max_spots, max_volume, plot_protected, destroyable,
		       forgery_roll, forgery_penalty
		FROM crafted_items
		WHERE holder_id = $1
		ORDER BY object_id
	`

	rows, err := r.db.Query(ctx, query, holderID)
	if err != nil {
		return nil, fmt.Errorf("querying items for holder %d: %w", holderID, err)
	}
	defer rows.Close()

	items := make([]*model.CraftedItem, 0, 16)
	for rows.Next() {
		item, err := r.scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning item row: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating item rows: %w", err)
	}

	for _, item := range items {
		if err := r.loadChildren(ctx, item); err != nil {
			return nil, err
		}
	}

	return items, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (r *ItemRepository) scanItem(row rowScanner) (*model.CraftedItem, error) {
	var (
		objectID       int64
		name           string
		description    string
		holderID       int64
		crafterID      int64
		recipeID       int32
		quality        int32
		volume         int32
		attackSkill    string
		ranged         bool
		slot           string
		slotLimit      int32
		maxSpots       int32
		maxVolume      int32
		plotProtected  bool
		destroyable    bool
		forgeryRoll    int32
		forgeryPenalty int64
	)

	err := row.Scan(
		&objectID, &name, &description, &holderID, &crafterID, &recipeID,
		&quality, &volume, &attackSkill, &ranged, &slot, &slotLimit,
		&maxSpots, &maxVolume, &plotProtected, &destroyable,
		&forgeryRoll, &forgeryPenalty,
	)
	if err != nil {
		return nil, err
	}

	item, err := model.NewCraftedItem(uint32(objectID), name, crafterID, quality)
	if err != nil {
		return nil, fmt.Errorf("creating item model: %w", err)
	}

	item.SetDescription(description)
	item.SetHolderID(holderID)
	item.SetRecipeID(recipeID)
	item.SetVolume(volume)
	if attackSkill != "" {
		item.SetAttackSkill(attackSkill)
	}
	item.SetRanged(ranged)
	if slot != "" {
		item.SetSlot(slot, slotLimit)
	}
	item.SetMaxSpots(maxSpots)
	item.SetMaxVolume(maxVolume)
	item.SetPlotProtected(plotProtected)
	item.SetDestroyable(destroyable)

	// Forgery maps are attached in loadChildren; stash the scalar parts
	// so the pair stays consistent if the item carries no fake rows.
	if forgeryRoll != 0 || forgeryPenalty != 0 {
		item.SetForgery(nil, forgeryRoll, forgeryPenalty)
	}

	return item, nil
}

func (r *ItemRepository) loadChildren(ctx context.Context, item *model.CraftedItem) error {
	if err := r.loadItemMaterials(ctx, item); err != nil {
		return err
	}
	if err := r.loadItemKeys(ctx, item); err != nil {
		return err
	}
	if err := r.loadItemForgeries(ctx, item); err != nil {
		return err
	}
	return r.loadItemContents(ctx, item)
}

func (r *ItemRepository) loadItemMaterials(ctx context.Context, item *model.CraftedItem) error {
	query := `
		SELECT material_id, amount, adornment
		FROM item_materials
		WHERE item_object_id = $1
	`

	rows, err := r.db.Query(ctx, query, int64(item.ObjectID()))
	if err != nil {
		return fmt.Errorf("querying materials for item %d: %w", item.ObjectID(), err)
	}
	defer rows.Close()

	mats := make(map[int32]int64)
	adorns := make(map[int32]int64)
	for rows.Next() {
		var materialID int32
		var amount int64
		var adornment bool
		if err := rows.Scan(&materialID, &amount, &adornment); err != nil {
			return fmt.Errorf("scanning item material row: %w", err)
		}
		if adornment {
			adorns[materialID] = amount
		} else {
			mats[materialID] = amount
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterating item material rows: %w", err)
	}

	item.SetMaterials(mats)
	item.SetAdornments(adorns)
	return nil
}

func (r *ItemRepository) loadItemKeys(ctx context.Context, item *model.CraftedItem) error {
	query := `
		SELECT character_id
		FROM item_keys
		WHERE item_object_id = $1
	`

	rows, err := r.db.Query(ctx, query, int64(item.ObjectID()))
	if err != nil {
		return fmt.Errorf("querying keys for item %d: %w", item.ObjectID(), err)
	}
	defer rows.Close()

	for rows.Next() {
		var characterID int64
		if err := rows.Scan(&characterID); err != nil {
			return fmt.Errorf("scanning item key row: %w", err)
		}
		item.GrantKey(characterID)
	}

	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterating item key rows: %w", err)
	}

	return nil
}

func (r *ItemRepository) loadItemForgeries(ctx context.Context, item *model.CraftedItem) error {
	query := `
		SELECT fake_material_id, real_material_id
		FROM item_forgeries
		WHERE item_object_id = $1
	`

	rows, err := r.db.Query(ctx, query, int64(item.ObjectID()))
	if err != nil {
		return fmt.Errorf("querying forgeries for item %d: %w", item.ObjectID(), err)
	}
	defer rows.Close()

	forgeries := make(map[int32]int32)
	for rows.Next() {
		var fakeID, realID int32
		if err := rows.Scan(&fakeID, &realID); err != nil {
			return fmt.Errorf("scanning item forgery row: %w", err)
		}
		forgeries[fakeID] = realID
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterating item forgery rows: %w", err)
	}

	if len(forgeries) > 0 {
		item.SetForgery(forgeries, item.ForgeryRoll(), item.ForgeryPenalty())
	}
	return nil
}

func (r *ItemRepository) loadItemContents(ctx context.Context, item *model.CraftedItem) error {
	query := `
		SELECT content_object_id
		FROM item_contents
		WHERE item_object_id = $1
	`

	rows, err := r.db.Query(ctx, query, int64(item.ObjectID()))
	if err != nil {
		return fmt.Errorf("querying contents for item %d: %w", item.ObjectID(), err)
	}
	defer rows.Close()

	for rows.Next() {
		var contentID int64
		if err := rows.Scan(&contentID); err != nil {
			return fmt.Errorf("scanning item content row: %w", err)
		}
		item.AddContent(uint32(contentID))
	}

	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterating item content rows: %w", err)
	}

	return nil
}

// SaveTx saves the full item state within a transaction.
// Child tables are full-replaced: delete all existing, then bulk insert.
func (r *ItemRepository) SaveTx(ctx context.Context, tx pgx.Tx, item *model.CraftedItem) error {
	query := `
		INSERT INTO crafted_items (
			object_id, name, description, holder_id, crafter_id, recipe_id,
			quality, volume, attack_skill, ranged, slot, slot_limit,
			max_spots, max_volume, plot_protected, destroyable,
			forgery_roll, forgery_penalty
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
		ON CONFLICT (object_id) DO UPDATE SET
			name = $2, description = $3, holder_id = $4, crafter_id = $5,
			recipe_id = $6, quality = $7, volume = $8, attack_skill = $9,
			ranged = $10, slot = $11, slot_limit = $12, max_spots = $13,
			max_volume = $14, plot_protected = $15, destroyable = $16,
			forgery_roll = $17, forgery_penalty = $18
	`

	_, err := tx.Exec(ctx, query,
		int64(item.ObjectID()), item.Name(), item.Description(),
		item.HolderID(), item.CrafterID(), item.RecipeID(),
		item.Quality(), item.Volume(), item.AttackSkill(), item.Ranged(),
		item.Slot(), item.SlotLimit(), item.MaxSpots(), item.MaxVolume(),
		item.PlotProtected(), item.Destroyable(),
		item.ForgeryRoll(), item.ForgeryPenalty(),
	)
	if err != nil {
		return fmt.Errorf("upserting item %d: %w", item.ObjectID(), err)
	}

	if err := r.saveItemMaterialsTx(ctx, tx, item); err != nil {
		return err
	}
	if err := r.saveItemKeysTx(ctx, tx, item); err != nil {
		return err
	}
	if err := r.saveItemForgeriesTx(ctx, tx, item); err != nil {
		return err
	}
	if err := r.saveItemContentsTx(ctx, tx, item); err != nil {
		return err
	}

	slog.Debug("saved crafted item",
		"objectID", item.ObjectID(),
		"name", item.Name(),
		"quality", item.Quality())

	return nil
}

func (r *ItemRepository) saveItemMaterialsTx(ctx context.Context, tx pgx.Tx, item *model.CraftedItem) error {
	objID := int64(item.ObjectID())
	if _, err := tx.Exec(ctx, `DELETE FROM item_materials WHERE item_object_id = $1`, objID); err != nil {
		return fmt.Errorf("deleting old materials for item %d: %w", item.ObjectID(), err)
	}

	mats := item.Materials()
	adorns := item.Adornments()
	if len(mats) == 0 && len(adorns) == 0 {
		return nil
	}

	rows := make([][]any, 0, len(mats)+len(adorns))
	for materialID, amount := range mats {
		rows = append(rows, []any{objID, materialID, amount, false})
	}
	for materialID, amount := range adorns {
		rows = append(rows, []any{objID, materialID, amount, true})
	}

	_, err := tx.CopyFrom(ctx,
		pgx.Identifier{"item_materials"},
		[]string{"item_object_id", "material_id", "amount", "adornment"},
		pgx.CopyFromRows(rows),
	)
	if err != nil {
		return fmt.Errorf("inserting materials for item %d: %w", item.ObjectID(), err)
	}

	return nil
}

func (r *ItemRepository) saveItemKeysTx(ctx context.Context, tx pgx.Tx, item *model.CraftedItem) error {
	objID := int64(item.ObjectID())
	if _, err := tx.Exec(ctx, `DELETE FROM item_keys WHERE item_object_id = $1`, objID); err != nil {
		return fmt.Errorf("deleting old keys for item %d: %w", item.ObjectID(), err)
	}

	holders := item.KeyHolders()
	if len(holders) == 0 {
		return nil
	}

	rows := make([][]any, 0, len(holders))
	for _, characterID := range holders {
		rows = append(rows, []any{objID, characterID})
	}

	_, err := tx.CopyFrom(ctx,
		pgx.Identifier{"item_keys"},
		[]string{"item_object_id", "character_id"},
		pgx.CopyFromRows(rows),
	)
	if err != nil {
		return fmt.Errorf("inserting keys for item %d: %w", item.ObjectID(), err)
	}

	return nil
}

func (r *ItemRepository) saveItemForgeriesTx(ctx context.Context, tx pgx.Tx, item *model.CraftedItem) error {
	objID := int64(item.ObjectID())
	if _, err := tx.Exec(ctx, `DELETE FROM item_forgeries WHERE item_object_id = $1`, objID); err != nil {
		return fmt.Errorf("deleting old forgeries for item %d: %w", item.ObjectID(), err)
	}

	forgeries := item.Forgeries()
	if len(forgeries) == 0 {
		return nil
	}

	rows := make([][]any, 0, len(forgeries))
	for fakeID, realID := range forgeries {
		rows = append(rows, []any{objID, fakeID, realID})
	}

	_, err := tx.CopyFrom(ctx,
		pgx.Identifier{"item_forgeries"},
		[]string{"item_object_id", "fake_material_id", "real_material_id"},
		pgx.CopyFromRows(rows),
	)
	if err != nil {
		return fmt.Errorf("inserting forgeries for item %d: %w", item.ObjectID(), err)
	}

	return nil
}

func (r *ItemRepository) saveItemContentsTx(ctx context.Context, tx pgx.Tx, item *model.CraftedItem) error {
	objID := int64(item.ObjectID())
	if _, err := tx.Exec(ctx, `DELETE FROM item_contents WHERE item_object_id = $1`, objID); err != nil {
		return fmt.Errorf("deleting old contents for item %d: %w", item.ObjectID(), err)
	}

	contents := item.Contents()
	if len(contents) == 0 {
		return nil
	}

	rows := make([][]any, 0, len(contents))
	for _, contentID := range contents {
		rows = append(rows, []any{objID, int64(contentID)})
	}

	_, err := tx.CopyFrom(ctx,
		pgx.Identifier{"item_contents"},
		[]string{"item_object_id", "content_object_id"},
		pgx.CopyFromRows(rows),
	)
	if err != nil {
		return fmt.Errorf("inserting contents for item %d: %w", item.ObjectID(), err)
	}

	return nil
}

// Save saves the full item state (standalone, creates own transaction).
func (r *ItemRepository) Save(ctx context.Context, item *model.CraftedItem) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err := tx.Rollback(ctx); err != nil && err != pgx.ErrTxClosed {
			slog.Error("rollback failed", "objectID", item.ObjectID(), "error", err)
		}
	}()

	if err := r.SaveTx(ctx, tx, item); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	return nil
}

// DeleteReaped removes rows for destroyed items. Missing rows are not
// an error; an item can be crafted and salvaged between two flushes.
func (r *ItemRepository) DeleteReaped(ctx context.Context, objectIDs []uint32) error {
	if len(objectIDs) == 0 {
		return nil
	}

	ids := make([]int64, 0, len(objectIDs))
	for _, id := range objectIDs {
		ids = append(ids, int64(id))
	}

	_, err := r.db.Exec(ctx, `DELETE FROM crafted_items WHERE object_id = ANY($1)`, ids)
	if err != nil {
		return fmt.Errorf("deleting reaped items: %w", err)
	}

	return nil
}

// Delete removes an item and all dependent rows.
func (r *ItemRepository) Delete(ctx context.Context, objectID uint32) error {
	result, err := r.db.Exec(ctx, `DELETE FROM crafted_items WHERE object_id = $1`, int64(objectID))
	if err != nil {
		return fmt.Errorf("deleting item %d: %w", objectID, err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("item %d not found", objectID)
	}
	return nil
}
