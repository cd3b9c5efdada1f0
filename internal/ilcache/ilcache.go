// Package ilcache memoizes compiled IL text by shader source, so a driver
// that recompiles the same handful of shader programs across many State/
// Shader objects (spec §6.2) — the way a real GL implementation recompiles
// an application's shader sources every time it creates a new context — does
// the actual preprocess/lex/parse/lower/assemble pipeline once per distinct
// source and reuses the result afterward. Entries are keyed by the SHA-256 of
// the shader kind, the prelude version and the source text, backed by a
// modernc.org/sqlite database so the cache can be shared across process runs
// the way the pack's own sqlite-backed database module persists state.
package ilcache

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"

	_ "modernc.org/sqlite"
	"golang.org/x/sync/singleflight"
)

// Cache is a content-addressed store mapping a shader source to previously
// emitted IL text. The zero value is not usable; build one with Open.
type Cache struct {
	db    *sql.DB
	group singleflight.Group
}

// Open creates (if necessary) and opens the cache database at path. Passing
// ":memory:" gives a private, process-lifetime cache, matching how a single
// Compiler-owning process would use this type without wanting a file on disk.
func Open(path string) (*Cache, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("ilcache: opening %s: %w", path, err)
	}
	db.SetMaxOpenConns(1) // modernc.org/sqlite serializes writers anyway; avoid SQLITE_BUSY churn.

	const schema = `CREATE TABLE IF NOT EXISTS il_cache (
		key TEXT PRIMARY KEY,
		il  TEXT NOT NULL
	)`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("ilcache: creating schema: %w", err)
	}
	return &Cache{db: db}, nil
}

// Close releases the underlying database handle.
func (c *Cache) Close() error { return c.db.Close() }

// Key computes the content address for a compile of source text src as
// shader kind kind, against prelude revision preludeVersion. kind is a
// caller-supplied label ("vertex"/"fragment") rather than pkg/shaderc's
// ShaderKind type, so this package stays independent of the driver package.
func Key(kind, preludeVersion, src string) string {
	h := sha256.New()
	h.Write([]byte(kind))
	h.Write([]byte{0})
	h.Write([]byte(preludeVersion))
	h.Write([]byte{0})
	h.Write([]byte(src))
	return hex.EncodeToString(h.Sum(nil))
}

// Lookup returns the cached IL text for key, if present.
func (c *Cache) Lookup(ctx context.Context, key string) (il string, ok bool, err error) {
	row := c.db.QueryRowContext(ctx, `SELECT il FROM il_cache WHERE key = ?`, key)
	err = row.Scan(&il)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("ilcache: lookup: %w", err)
	}
	return il, true, nil
}

// Store records il under key, overwriting any previous entry for that key.
func (c *Cache) Store(ctx context.Context, key, il string) error {
	_, err := c.db.ExecContext(ctx,
		`INSERT INTO il_cache (key, il) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET il = excluded.il`, key, il)
	if err != nil {
		return fmt.Errorf("ilcache: store: %w", err)
	}
	return nil
}

// GetOrCompile returns the cached IL for key, computing it with compile and
// storing the result if it isn't already present. Concurrent calls for the
// same key (two Compiler values racing to compile identical source, per spec
// §5's "distinct Compiler values may run concurrently") are collapsed into a
// single compile via singleflight, rather than letting every caller repeat
// the work and race on the final Store.
func (c *Cache) GetOrCompile(ctx context.Context, key string, compile func() (string, error)) (string, error) {
	if il, ok, err := c.Lookup(ctx, key); err != nil {
		return "", err
	} else if ok {
		return il, nil
	}

	v, err, _ := c.group.Do(key, func() (interface{}, error) {
		if il, ok, err := c.Lookup(ctx, key); err != nil {
			return "", err
		} else if ok {
			return il, nil
		}
		il, err := compile()
		if err != nil {
			return "", err
		}
		if err := c.Store(ctx, key, il); err != nil {
			return "", err
		}
		return il, nil
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}
