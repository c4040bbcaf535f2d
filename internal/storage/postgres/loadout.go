package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cory-johannsen/gearcore/internal/game/equipment"
	"github.com/cory-johannsen/gearcore/internal/game/inventory"
	"github.com/cory-johannsen/gearcore/internal/game/item"
)

// ErrLoadoutNotFound is returned when no loadout is stored for a character.
var ErrLoadoutNotFound = errors.New("loadout not found")

// Loadout is the persisted form of a character's gear.
type Loadout struct {
	// Character is the owning character's name.
	Character string
	// Level is the character level the equipped gear was worn at.
	Level int
	// Inventory is the inventory dump produced by Inventory.Serialize.
	Inventory string
	// Equipped maps each occupied slot to the item ID worn there.
	Equipped  map[item.SlotKind]int
	UpdatedAt time.Time
}

// LoadoutRepository stores and retrieves loadouts.
type LoadoutRepository struct {
	db *pgxpool.Pool
}

// NewLoadoutRepository creates a LoadoutRepository backed by the given pool.
//
// Precondition: db must be a valid, open connection pool.
func NewLoadoutRepository(db *pgxpool.Pool) *LoadoutRepository {
	return &LoadoutRepository{db: db}
}

// Save replaces the stored loadout for character with level and the current
// contents of inv and eq in a single transaction.
//
// Precondition: character must be non-empty; level >= 1; inv and eq must be non-nil.
// Postcondition: Load(character) returns the saved state, or nothing changes on error.
func (r *LoadoutRepository) Save(ctx context.Context, character string, level int, inv *inventory.Inventory, eq *equipment.Set) error {
	if character == "" {
		return fmt.Errorf("saving loadout: character must not be empty")
	}
	if level < 1 {
		return fmt.Errorf("saving loadout for %q: level must be >= 1, got %d", character, level)
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning loadout transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `
		INSERT INTO loadouts (character_name, level, inventory, updated_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (character_name)
		DO UPDATE SET level = EXCLUDED.level, inventory = EXCLUDED.inventory, updated_at = NOW()`,
		character, level, inv.Serialize(),
	); err != nil {
		return fmt.Errorf("upserting loadout: %w", err)
	}

	if _, err := tx.Exec(ctx,
		`DELETE FROM loadout_equipment WHERE character_name = $1`, character,
	); err != nil {
		return fmt.Errorf("clearing loadout equipment: %w", err)
	}

	batch := &pgx.Batch{}
	for _, slot := range item.SlotKinds() {
		if it := eq.Equipped(slot); it != nil {
			batch.Queue(
				`INSERT INTO loadout_equipment (character_name, slot, item_id) VALUES ($1, $2, $3)`,
				character, string(slot), it.ID,
			)
		}
	}
	if batch.Len() > 0 {
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return fmt.Errorf("inserting loadout equipment: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing loadout: %w", err)
	}
	return nil
}

// Load retrieves the stored loadout for character.
//
// Postcondition: Returns the Loadout or ErrLoadoutNotFound.
func (r *LoadoutRepository) Load(ctx context.Context, character string) (*Loadout, error) {
	out := &Loadout{Character: character, Equipped: make(map[item.SlotKind]int)}
	err := r.db.QueryRow(ctx,
		`SELECT level, inventory, updated_at FROM loadouts WHERE character_name = $1`,
		character,
	).Scan(&out.Level, &out.Inventory, &out.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrLoadoutNotFound
		}
		return nil, fmt.Errorf("querying loadout: %w", err)
	}

	rows, err := r.db.Query(ctx,
		`SELECT slot, item_id FROM loadout_equipment WHERE character_name = $1`,
		character,
	)
	if err != nil {
		return nil, fmt.Errorf("querying loadout equipment: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			slot   string
			itemID int
		)
		if err := rows.Scan(&slot, &itemID); err != nil {
			return nil, fmt.Errorf("scanning loadout equipment row: %w", err)
		}
		out.Equipped[item.SlotKind(slot)] = itemID
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating loadout equipment: %w", err)
	}
	return out, nil
}

// Delete removes the stored loadout for character. Deleting a missing loadout
// returns ErrLoadoutNotFound.
func (r *LoadoutRepository) Delete(ctx context.Context, character string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM loadouts WHERE character_name = $1`, character)
	if err != nil {
		return fmt.Errorf("deleting loadout: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrLoadoutNotFound
	}
	return nil
}
