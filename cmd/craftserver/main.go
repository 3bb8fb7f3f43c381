package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/packetdancer/arx/internal/config"
	"github.com/packetdancer/arx/internal/db"
	"github.com/packetdancer/arx/internal/dice"
	"github.com/packetdancer/arx/internal/game"
	"github.com/packetdancer/arx/internal/game/craft"
	"github.com/packetdancer/arx/internal/game/refine"
	"github.com/packetdancer/arx/internal/game/salvage"
	"github.com/packetdancer/arx/internal/world"
)

const ConfigPath = "config/craftserver.yaml"

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		slog.Info("shutting down", "signal", sig)
		cancel()
	}()

	if err := run(ctx); err != nil && err != context.Canceled {
		slog.Error("fatal", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfgPath := ConfigPath
	if p := os.Getenv("ARX_CRAFT_CONFIG"); p != "" {
		cfgPath = p
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: parseLogLevel(cfg.LogLevel),
	})))

	slog.Info("craft server starting", "log_level", cfg.LogLevel)

	database, err := db.New(ctx, cfg.Database.DSN())
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	defer database.Close()
	slog.Info("database connected")

	if err := db.RunMigrations(ctx, cfg.Database.DSN()); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	slog.Info("database migrations applied")

	catalogRepo := db.NewCatalogRepository(database.Pool())
	if err := catalogRepo.LoadAll(ctx); err != nil {
		return fmt.Errorf("loading catalogs: %w", err)
	}

	charRepo := db.NewCharacterRepository(database.Pool())
	itemRepo := db.NewItemRepository(database.Pool())

	worldInstance := world.New()
	roster := world.NewRoster()

	// Restore persisted items so the ID watermark moves past them.
	items, err := itemRepo.LoadByHolder(ctx, 0)
	if err != nil {
		return fmt.Errorf("loading unheld items: %w", err)
	}
	for _, item := range items {
		worldInstance.Register(item)
	}

	roller := dice.NewRoller()
	if cfg.Crafting.DiceSeed != 0 {
		roller = dice.NewSeededRoller(cfg.Crafting.DiceSeed)
	}

	crafting := craft.NewController(worldInstance, roller)
	refining := refine.NewController(roller)
	salvaging := salvage.NewController()

	service := game.NewService(crafting, refining, salvaging,
		worldInstance, roster, charRepo, itemRepo)

	// Characters stay resident in a persistent world; enter everyone.
	ids, err := charRepo.AllIDs(ctx)
	if err != nil {
		return fmt.Errorf("listing characters: %w", err)
	}
	for _, id := range ids {
		if _, err := service.EnterWorld(ctx, id); err != nil {
			return fmt.Errorf("entering character %d: %w", id, err)
		}
	}
	slog.Info("crafting engines initialized", "characters", len(ids))

	persistence := db.NewPersistenceService(
		database.Pool(), charRepo, itemRepo,
		roster, worldInstance,
		time.Duration(cfg.Crafting.SaveIntervalSeconds)*time.Second,
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		slog.Info("starting save loop", "interval_seconds", cfg.Crafting.SaveIntervalSeconds)
		if err := persistence.RunSaveLoop(gctx); err != nil && err != context.Canceled {
			return fmt.Errorf("save loop: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return fmt.Errorf("server error: %w", err)
	}

	return nil
}

// parseLogLevel converts string log level to slog.Level.
// Defaults to Info if invalid or empty.
func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
