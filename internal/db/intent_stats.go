package db

import (
	"context"

	"aliados/internal/models"
)

// IncrementIntentStat adds delta to an intent/outcome answer count.
func (d *DB) IncrementIntentStat(ctx context.Context, intent, outcome string, delta int64) error {
	_, err := d.Pool.Exec(ctx, `
		INSERT INTO intent_stats (intent, outcome, count, last_seen_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (intent, outcome) DO UPDATE
		SET count = intent_stats.count + EXCLUDED.count, last_seen_at = NOW()
	`, intent, outcome, delta)
	return err
}

// GetAllIntentStats returns all intent stat rows for metrics export.
func (d *DB) GetAllIntentStats(ctx context.Context) ([]models.IntentStat, error) {
	rows, err := d.Pool.Query(ctx, `SELECT intent, outcome, count, last_seen_at FROM intent_stats`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var stats []models.IntentStat
	for rows.Next() {
		var s models.IntentStat
		if err := rows.Scan(&s.Intent, &s.Outcome, &s.Count, &s.LastSeenAt); err != nil {
			return nil, err
		}
		stats = append(stats, s)
	}
	return stats, rows.Err()
}
