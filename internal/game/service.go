// Package game wires the crafting engines to world state and storage.
package game

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/packetdancer/arx/internal/db"
	"github.com/packetdancer/arx/internal/game/craft"
	"github.com/packetdancer/arx/internal/game/refine"
	"github.com/packetdancer/arx/internal/game/salvage"
	"github.com/packetdancer/arx/internal/model"
	"github.com/packetdancer/arx/internal/world"
)

// Service is the entry point a session layer talks to. It owns the
// engines and moves characters in and out of the live world.
type Service struct {
	Craft   *craft.Controller
	Refine  *refine.Controller
	Salvage *salvage.Controller

	world  *world.World
	roster *world.Roster

	charRepo *db.CharacterRepository
	itemRepo *db.ItemRepository
}

// NewService creates a Service around already-constructed engines.
func NewService(
	crafting *craft.Controller,
	refining *refine.Controller,
	salvaging *salvage.Controller,
	w *world.World,
	roster *world.Roster,
	charRepo *db.CharacterRepository,
	itemRepo *db.ItemRepository,
) *Service {
	return &Service{
		Craft:    crafting,
		Refine:   refining,
		Salvage:  salvaging,
		world:    w,
		roster:   roster,
		charRepo: charRepo,
		itemRepo: itemRepo,
	}
}

// World returns the live item registry.
func (s *Service) World() *world.World { return s.world }

// Roster returns the active character roster.
func (s *Service) Roster() *world.Roster { return s.roster }

// EnterWorld loads a character and their held items from storage and
// makes them live. If the character is already active, the live
// instance is returned untouched.
func (s *Service) EnterWorld(ctx context.Context, characterID int64) (*model.Character, error) {
	if ch := s.roster.Character(characterID); ch != nil {
		return ch, nil
	}

	ch, err := s.charRepo.LoadByID(ctx, characterID)
	if err != nil {
		return nil, fmt.Errorf("loading character %d: %w", characterID, err)
	}
	if ch == nil {
		return nil, model.Preconditionf("character %d does not exist", characterID)
	}

	held, err := s.itemRepo.LoadByHolder(ctx, characterID)
	if err != nil {
		return nil, fmt.Errorf("loading items for character %d: %w", characterID, err)
	}
	for _, item := range held {
		s.world.Register(item)
	}

	s.roster.Add(ch)
	slog.Info("character entered world",
		"characterID", characterID,
		"character", ch.Name(),
		"items", len(held))

	return ch, nil
}

// LeaveWorld saves a character with their held items and drops them
// from the roster. The items stay registered; other characters may
// still interact with a dropped crafter's containers.
func (s *Service) LeaveWorld(ctx context.Context, characterID int64) error {
	ch := s.roster.Character(characterID)
	if ch == nil {
		return model.Preconditionf("character %d is not active", characterID)
	}

	if err := s.charRepo.Save(ctx, ch); err != nil {
		return fmt.Errorf("saving character %d: %w", characterID, err)
	}
	for _, item := range s.world.HeldBy(characterID) {
		if err := s.itemRepo.Save(ctx, item); err != nil {
			return fmt.Errorf("saving item %d: %w", item.ObjectID(), err)
		}
	}

	s.roster.Remove(characterID)
	slog.Info("character left world", "characterID", characterID, "character", ch.Name())

	return nil
}
