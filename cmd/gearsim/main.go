// Package main provides an interactive console for managing one character's
// inventory and equipment.
package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/gearcore/internal/config"
	"github.com/cory-johannsen/gearcore/internal/game/character"
	"github.com/cory-johannsen/gearcore/internal/game/command"
	"github.com/cory-johannsen/gearcore/internal/game/item"
	"github.com/cory-johannsen/gearcore/internal/lifecycle"
	"github.com/cory-johannsen/gearcore/internal/observability"
	"github.com/cory-johannsen/gearcore/internal/scripting"
	"github.com/cory-johannsen/gearcore/internal/storage/postgres"
)

func main() {
	start := time.Now()

	configPath := flag.String("config", "configs/dev.yaml", "path to configuration file")
	name := flag.String("name", "adventurer", "character name; also the loadout key when persisting")
	level := flag.Int("level", 1, "starting character level")
	persist := flag.Bool("persist", false, "restore the loadout from PostgreSQL on start and enable the save command")
	flag.Parse()

	ctx := context.Background()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	items, err := item.LoadItems(cfg.Content.ItemsDir)
	if err != nil {
		logger.Fatal("loading items", zap.String("dir", cfg.Content.ItemsDir), zap.Error(err))
	}
	catalog, err := item.NewCatalogFrom(items)
	if err != nil {
		logger.Fatal("building item catalog", zap.Error(err))
	}
	logger.Info("items loaded", zap.Int("count", catalog.Len()))

	rules, err := scripting.NewRules(cfg.Scripting.RulesDir, cfg.Scripting.InstructionLimit, logger)
	if err != nil {
		logger.Fatal("loading equip rules", zap.Error(err))
	}
	defer rules.Close()

	var c *character.Character
	c, err = character.NewBuilder(*name).
		WithLevel(*level).
		WithInventory(cfg.Inventory.Slots, cfg.Inventory.MaxWeight).
		WithGate(rules.Gate(func() int { return c.Level() })).
		WithLogger(logger).
		Build()
	if err != nil {
		logger.Fatal("building character", zap.Error(err))
	}

	sess := &command.Session{
		Character: c,
		Catalog:   catalog,
		Registry:  command.DefaultRegistry(),
	}

	lc := lifecycle.New(logger, 0)
	if *persist {
		dbStart := time.Now()
		pool, err := postgres.NewPool(ctx, cfg.Database)
		if err != nil {
			logger.Fatal("connecting to database", zap.Error(err))
		}
		logger.Info("database connected",
			zap.String("host", cfg.Database.Host),
			zap.Duration("elapsed", time.Since(dbStart)),
		)

		repo := postgres.NewLoadoutRepository(pool.DB())
		sess.Store = repo
		if err := restore(ctx, repo, c, catalog); err != nil {
			pool.Close()
			logger.Fatal("restoring loadout", zap.Error(err))
		}
		lc.Add("autosave", &autosave{sess: sess, pool: pool, logger: logger})
	}
	lc.Add("console", newConsole(sess, os.Stdin, os.Stdout))

	logger.Info("gearsim ready",
		zap.String("character", c.Name),
		zap.Int("level", c.Level()),
		zap.Duration("elapsed", time.Since(start)),
	)

	if err := lc.Run(ctx); err != nil {
		logger.Error("gearsim stopped with errors", zap.Error(err))
	}
}

// loadoutLoader is the read side of the loadout repository used at startup.
type loadoutLoader interface {
	Load(ctx context.Context, character string) (*postgres.Loadout, error)
}

// restore applies the stored loadout for c, if there is one. The stored level
// replaces the -level flag so gear saved at a higher level passes the gates again.
func restore(ctx context.Context, repo loadoutLoader, c *character.Character, catalog *item.Catalog) error {
	lo, err := repo.Load(ctx, c.Name)
	if errors.Is(err, postgres.ErrLoadoutNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	return c.RestoreLoadout(lo.Level, lo.Inventory, lo.Equipped, catalog)
}
