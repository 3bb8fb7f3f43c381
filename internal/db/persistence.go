package db

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/packetdancer/arx/internal/model"
)

// CharacterSource yields the characters to flush on each save cycle.
type CharacterSource interface {
	Characters() []*model.Character
}

// ItemSource yields the items to flush on each save cycle. Reap hands
// over destroyed items so their rows can be dropped.
type ItemSource interface {
	Items() []*model.CraftedItem
	Reap() []uint32
}

// PersistenceService periodically flushes world state to the database.
type PersistenceService struct {
	pool       *pgxpool.Pool
	charRepo   *CharacterRepository
	itemRepo   *ItemRepository
	characters CharacterSource
	items      ItemSource
	interval   time.Duration
}

// NewPersistenceService creates a new PersistenceService.
func NewPersistenceService(
	pool *pgxpool.Pool,
	charRepo *CharacterRepository,
	itemRepo *ItemRepository,
	characters CharacterSource,
	items ItemSource,
	interval time.Duration,
) *PersistenceService {
	return &PersistenceService{
		pool:       pool,
		charRepo:   charRepo,
		itemRepo:   itemRepo,
		characters: characters,
		items:      items,
		interval:   interval,
	}
}

// SaveCharacter saves one character and everything they hold in a
// single transaction.
func (s *PersistenceService) SaveCharacter(ctx context.Context, ch *model.Character, held []*model.CraftedItem) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction for character %d: %w", ch.ID(), err)
	}
	defer func() {
		if err := tx.Rollback(ctx); err != nil && err != pgx.ErrTxClosed {
			slog.Error("rollback failed", "characterID", ch.ID(), "error", err)
		}
	}()

	if err := s.charRepo.SaveTx(ctx, tx, ch); err != nil {
		return fmt.Errorf("saving character %d: %w", ch.ID(), err)
	}

	for _, item := range held {
		if err := s.itemRepo.SaveTx(ctx, tx, item); err != nil {
			return fmt.Errorf("saving item %d for character %d: %w", item.ObjectID(), ch.ID(), err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction for character %d: %w", ch.ID(), err)
	}

	return nil
}

// SaveAll flushes all active characters and registered items. Destroyed
// items are deleted from storage instead of saved. Errors are logged
// per entity so one bad row does not abort the whole flush.
func (s *PersistenceService) SaveAll(ctx context.Context) {
	start := time.Now()
	savedChars := 0
	for _, ch := range s.characters.Characters() {
		if err := s.charRepo.Save(ctx, ch); err != nil {
			slog.Error("saving character", "characterID", ch.ID(), "error", err)
			continue
		}
		savedChars++
	}

	savedItems := 0
	for _, item := range s.items.Items() {
		if err := s.itemRepo.Save(ctx, item); err != nil {
			slog.Error("saving item", "objectID", item.ObjectID(), "error", err)
			continue
		}
		savedItems++
	}

	reaped := s.items.Reap()
	if err := s.itemRepo.DeleteReaped(ctx, reaped); err != nil {
		slog.Error("deleting destroyed items", "count", len(reaped), "error", err)
	}

	slog.Debug("world state flushed",
		"characters", savedChars,
		"items", savedItems,
		"reaped", len(reaped),
		"elapsed", time.Since(start))
}

// RunSaveLoop flushes on the configured interval until the context is
// cancelled, then performs a final flush.
func (s *PersistenceService) RunSaveLoop(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			// Final flush with a fresh deadline; the parent is already dead.
			flushCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			s.SaveAll(flushCtx)
			cancel()
			return ctx.Err()
		case <-ticker.C:
			s.SaveAll(ctx)
		}
	}
}
