// ReelMatch - Content-Based Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package recommend

import (
	"context"
	"errors"
	"time"

	"github.com/tomtom215/reelmatch/internal/artifact"
	"github.com/tomtom215/reelmatch/internal/database"
	"github.com/tomtom215/reelmatch/internal/features"
	"github.com/tomtom215/reelmatch/internal/metrics"
)

// Artifact keys.
const (
	keyTable      = "merged_metadata"
	keyMatrix     = "vector_matrix"
	keyVocabulary = "vocabulary"
	keyIndex      = "similarity_index_" // + mode
)

// TableCache persists the merged feature table between runs. Presence of
// a stored table means it is used as is; there is no freshness check.
type TableCache interface {
	// Load returns found=false when no table is stored.
	Load(ctx context.Context) (*features.Table, bool, error)
	Save(ctx context.Context, t *features.Table) error
	Name() string
}

// ArtifactTables keeps the table in an artifact store.
type ArtifactTables struct {
	Store artifact.Store
}

// Load implements TableCache.
func (a ArtifactTables) Load(ctx context.Context) (*features.Table, bool, error) {
	var t features.Table
	found, err := artifact.Load(ctx, a.Store, keyTable, &t)
	if err != nil || !found {
		return nil, found, err
	}
	return &t, true, nil
}

// Save implements TableCache.
func (a ArtifactTables) Save(ctx context.Context, t *features.Table) error {
	return artifact.Save(ctx, a.Store, keyTable, t)
}

// Name implements TableCache.
func (a ArtifactTables) Name() string { return a.Store.Name() }

// CatalogTables keeps the table in the DuckDB catalog.
type CatalogTables struct {
	DB *database.DB
}

// Load implements TableCache.
func (c CatalogTables) Load(ctx context.Context) (*features.Table, bool, error) {
	start := time.Now()
	t, err := c.DB.LoadTable(ctx)
	if errors.Is(err, database.ErrNoTable) {
		metrics.RecordDBQuery("load_table", time.Since(start), nil)
		return nil, false, nil
	}
	metrics.RecordDBQuery("load_table", time.Since(start), err)
	if err != nil {
		return nil, false, err
	}
	return t, true, nil
}

// Save implements TableCache.
func (c CatalogTables) Save(ctx context.Context, t *features.Table) error {
	start := time.Now()
	err := c.DB.SaveTable(ctx, t)
	metrics.RecordDBQuery("save_table", time.Since(start), err)
	return err
}

// Name implements TableCache.
func (c CatalogTables) Name() string { return "duckdb" }

var (
	_ TableCache = ArtifactTables{}
	_ TableCache = CatalogTables{}
)
