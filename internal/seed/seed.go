package seed

import (
	"database/sql"
	"fmt"

	"github.com/Simplici0/movequote/internal/pricing"
)

// Config contains the values required by startup seed.
type Config struct {
	Rates pricing.Rates
}

// Stats contains seed operation counters.
type Stats struct {
	Inserts int
	Updates int
}

// Run executes the startup seed in an idempotent way. Rows that already
// exist are left alone so admin edits survive restarts.
func Run(db *sql.DB, cfg Config) (Stats, error) {
	tx, err := db.Begin()
	if err != nil {
		return Stats{}, fmt.Errorf("begin seed transaction: %w", err)
	}

	stats := Stats{}

	if err := ensureRateConfig(tx, cfg.Rates, &stats); err != nil {
		_ = tx.Rollback()
		return Stats{}, err
	}
	if err := ensureCurrency(tx, cfg.Rates.Currency, &stats); err != nil {
		_ = tx.Rollback()
		return Stats{}, err
	}

	if err := tx.Commit(); err != nil {
		return Stats{}, fmt.Errorf("commit seed transaction: %w", err)
	}

	return stats, nil
}

func ensureRateConfig(tx *sql.Tx, rates pricing.Rates, stats *Stats) error {
	var exists bool
	if err := tx.QueryRow(`SELECT EXISTS(SELECT 1 FROM rate_config WHERE id = 1)`).Scan(&exists); err != nil {
		return fmt.Errorf("check rate config existence: %w", err)
	}
	if exists {
		return nil
	}

	if _, err := tx.Exec(`
		INSERT INTO rate_config (id, van_rate, mover_rate, per_mile_rate, currency)
		VALUES (1, ?, ?, ?, ?)
	`, rates.VanRate, rates.MoverRate, rates.PerMileRate, rates.Currency); err != nil {
		return fmt.Errorf("insert rate config singleton: %w", err)
	}
	stats.Inserts++
	return nil
}

// ensureCurrency repairs a singleton saved without a currency code.
func ensureCurrency(tx *sql.Tx, currency string, stats *Stats) error {
	if currency == "" {
		return nil
	}

	result, err := tx.Exec(`
		UPDATE rate_config
		SET currency = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = 1 AND TRIM(currency) = ''
	`, currency)
	if err != nil {
		return fmt.Errorf("repair rate config currency: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("repair rate config currency: %w", err)
	}
	stats.Updates += int(affected)
	return nil
}
