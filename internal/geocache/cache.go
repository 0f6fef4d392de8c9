// Package geocache persists parsed features in a SQLite database so the
// shapefiles are only parsed once.
package geocache

import (
	"context"
	"database/sql"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/meridian-maps/worldview/internal/geodata"
)

// Cache is a SQLite-backed feature store. Geometry is stored as EWKB.
type Cache struct {
	db *sql.DB
}

// Open opens a SQLite database at the given path and configures WAL mode.
func Open(dsn string) (*Cache, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "geocache: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "geocache: exec %s", pragma)
		}
	}
	return &Cache{db: db}, nil
}

const migration = `
CREATE TABLE IF NOT EXISTS features (
	kind       TEXT NOT NULL,
	id         TEXT NOT NULL,
	seq        INTEGER NOT NULL,
	name       TEXT NOT NULL DEFAULT '',
	population INTEGER NOT NULL DEFAULT 0,
	owner_id   TEXT NOT NULL DEFAULT '',
	geom       BLOB NOT NULL,
	PRIMARY KEY (kind, id)
);

CREATE INDEX IF NOT EXISTS idx_features_seq ON features(seq);
`

// Migrate creates the schema.
func (c *Cache) Migrate(ctx context.Context) error {
	_, err := c.db.ExecContext(ctx, migration)
	return eris.Wrap(err, "geocache: migrate")
}

// Close closes the database.
func (c *Cache) Close() error {
	return c.db.Close()
}

// Replace atomically swaps the cache contents for the given features,
// preserving their order.
func (c *Cache) Replace(ctx context.Context, features []geodata.RawFeature) error {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return eris.Wrap(err, "geocache: begin tx")
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM features`); err != nil {
		return eris.Wrap(err, "geocache: clear features")
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO features (kind, id, seq, name, population, owner_id, geom)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return eris.Wrap(err, "geocache: prepare insert")
	}
	defer stmt.Close()

	for seq, f := range features {
		blob, err := encodeGeometry(f.Geometry)
		if err != nil {
			return err
		}
		if _, err := stmt.ExecContext(ctx,
			string(f.Kind), f.ID, seq, f.Attr.Name, f.Attr.Population, f.Attr.OwnerID, blob,
		); err != nil {
			return eris.Wrapf(err, "geocache: insert %s %q", f.Kind, f.ID)
		}
	}

	return eris.Wrap(tx.Commit(), "geocache: commit")
}

// LoadAll returns all cached features in their original order.
func (c *Cache) LoadAll(ctx context.Context) ([]geodata.RawFeature, error) {
	rows, err := c.db.QueryContext(ctx, `
		SELECT kind, id, name, population, owner_id, geom
		FROM features ORDER BY seq`)
	if err != nil {
		return nil, eris.Wrap(err, "geocache: query features")
	}
	defer rows.Close()

	var features []geodata.RawFeature
	for rows.Next() {
		var (
			kind, id string
			attr     geodata.Attributes
			blob     []byte
		)
		if err := rows.Scan(&kind, &id, &attr.Name, &attr.Population, &attr.OwnerID, &blob); err != nil {
			return nil, eris.Wrap(err, "geocache: scan feature row")
		}
		geometry, err := decodeGeometry(blob)
		if err != nil {
			return nil, err
		}
		features = append(features, geodata.RawFeature{
			ID:       id,
			Kind:     geodata.Kind(kind),
			Geometry: geometry,
			Attr:     attr,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "geocache: iterate feature rows")
	}
	return features, nil
}

// Counts returns the number of cached features per layer.
func (c *Cache) Counts(ctx context.Context) (map[geodata.Kind]int, error) {
	rows, err := c.db.QueryContext(ctx, `
		SELECT kind, COUNT(*) FROM features GROUP BY kind`)
	if err != nil {
		return nil, eris.Wrap(err, "geocache: count features")
	}
	defer rows.Close()

	counts := make(map[geodata.Kind]int)
	for rows.Next() {
		var kind string
		var n int
		if err := rows.Scan(&kind, &n); err != nil {
			return nil, eris.Wrap(err, "geocache: scan count row")
		}
		counts[geodata.Kind(kind)] = n
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "geocache: iterate count rows")
	}
	return counts, nil
}
