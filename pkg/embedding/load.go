package embedding

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"
)

// LoadIndex reads the level-1 and level-2 centroid tables and builds an
// Index. Called once at startup; the caller is expected to bound the
// load with a timeout via ctx.
func LoadIndex(ctx context.Context, db *sql.DB, dim int) (*Index, error) {
	level1, err := loadCentroids(ctx, db, `SELECT id, vector FROM level1_centroids ORDER BY id`, false)
	if err != nil {
		return nil, fmt.Errorf("failed to load level-1 centroids: %w", err)
	}

	level2, err := loadCentroids(ctx, db, `SELECT id, parent_id, vector FROM level2_centroids ORDER BY id`, true)
	if err != nil {
		return nil, fmt.Errorf("failed to load level-2 centroids: %w", err)
	}

	return NewIndex(dim, level1, level2), nil
}

func loadCentroids(ctx context.Context, db *sql.DB, query string, withParent bool) ([]Centroid, error) {
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Centroid
	for rows.Next() {
		var c Centroid
		var vec pq.Float64Array
		if withParent {
			if err := rows.Scan(&c.ID, &c.ParentID, &vec); err != nil {
				return nil, err
			}
		} else {
			if err := rows.Scan(&c.ID, &vec); err != nil {
				return nil, err
			}
		}
		c.Vector = []float64(vec)
		out = append(out, c)
	}
	return out, rows.Err()
}
