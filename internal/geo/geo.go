// Package geo resolves declared origin locations against the imported
// territory reference data. The data itself is loaded by a separate import
// pipeline; this engine only checks existence.
package geo

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	"github.com/google/uuid"

	id "github.com/Soozey/MADAVOLA/pkg/domain"
)

// PostgresResolver checks origins against the geo_points reference table.
type PostgresResolver struct {
	db *sql.DB
}

func NewPostgresResolver(db *sql.DB) *PostgresResolver {
	return &PostgresResolver{db: db}
}

func (r *PostgresResolver) Exists(ctx context.Context, geoID id.GeoPointID) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM geo_points WHERE id = $1)`,
		uuid.UUID(geoID)).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("resolve geo point: %w", err)
	}
	return exists, nil
}

// MemoryResolver is the in-memory fake for tests and local runs.
type MemoryResolver struct {
	mu    sync.RWMutex
	known map[id.GeoPointID]struct{}
}

func NewMemoryResolver() *MemoryResolver {
	return &MemoryResolver{known: make(map[id.GeoPointID]struct{})}
}

func (r *MemoryResolver) Add(geoID id.GeoPointID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.known[geoID] = struct{}{}
}

func (r *MemoryResolver) Exists(_ context.Context, geoID id.GeoPointID) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.known[geoID]
	return ok, nil
}
