package repository

import (
	"context"
	"fmt"

	"github.com/UnknownOlympus/embellish/internal/models"
)

// UpdateDockDistricts stores the boundary assignment of the dock identified by key.
// Empty districts are written as NULL. The community district is a BoroCD code and
// the council district a number, so both are stored as integers.
//
// Returns:
// - true if a dock row was updated, false if no dock carries that key.
// - An error if the update fails.
func (r *Repository) UpdateDockDistricts(ctx context.Context, key string, districts models.Districts) (bool, error) {
	query := `
		UPDATE "Dock"
		SET
			"councilDistrict" = NULLIF($1, '')::integer,
			"communityDistrict" = NULLIF($2, '')::integer,
			"borough" = NULLIF($3, '')
		WHERE
			"name" = $4;
	`

	tag, err := r.db.Exec(ctx, query, districts.Council, districts.Community, districts.Borough, key)
	if err != nil {
		return false, fmt.Errorf("failed to update dock districts: %w", err)
	}

	if tag.RowsAffected() == 0 {
		r.log.DebugContext(ctx, "No dock found for key.", "key", key)
		return false, nil
	}

	return true, nil
}
