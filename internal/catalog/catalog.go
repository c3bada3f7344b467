// Package catalog stores parsed shots and their dither entries in a SQLite
// database so repeated analysis runs do not have to re-parse the raw files.
package catalog

import (
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/hetdex-collaboration/gohetdex/pkg/dither"
)

//go:embed schema.sql
var schemaSQL string

// dbFileName is the catalog database file inside the data directory.
const dbFileName = "hetdex.db"

// Errors returned by catalog operations.
var (
	ErrNotOpen     = errors.New("catalog not open")
	ErrAlreadyOpen = errors.New("catalog already open")
	ErrNotFound    = errors.New("shot not found")
	ErrInvalidID   = errors.New("invalid shot id")
)

// Shot is a catalogued observation with its dither entries.
type Shot struct {
	ShotID     string         `json:"shot_id"`
	Name       string         `json:"name"`
	DitherFile string         `json:"dither_file"`
	CreatedAt  time.Time      `json:"created_at"`
	Dithers    []DitherRecord `json:"dithers,omitempty"`
}

// DitherRecord is one dither entry of a catalogued shot.
type DitherRecord struct {
	Tag      string  `json:"tag"`
	Basename string  `json:"basename"`
	Dx       float64 `json:"dx"`
	Dy       float64 `json:"dy"`
	Seeing   float64 `json:"seeing"`
	Norm     float64 `json:"norm"`
	Airmass  float64 `json:"airmass"`
}

// Catalog is a SQLite-backed shot store.
type Catalog struct {
	mu   sync.RWMutex
	open bool
	db   *sql.DB
}

// New creates a Catalog. The catalog is not usable until Open is called.
func New() *Catalog {
	return &Catalog{}
}

// Open creates dataDir if needed and opens (or initializes) the catalog
// database inside it.
func (c *Catalog) Open(dataDir string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.open {
		return ErrAlreadyOpen
	}

	if dataDir == "" {
		dataDir = "."
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return err
	}

	db, err := sql.Open("sqlite", filepath.Join(dataDir, dbFileName))
	if err != nil {
		return err
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return fmt.Errorf("initializing schema: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return err
	}

	c.db = db
	c.open = true
	return nil
}

// Close releases the database.
func (c *Catalog) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.open {
		return ErrNotOpen
	}
	c.open = false
	return c.db.Close()
}

// ImportDither stores a parsed dither under the given shot name and returns
// the generated shot id. An existing shot with the same name is replaced.
func (c *Catalog) ImportDither(name string, d *dither.Dither) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.open {
		return "", ErrNotOpen
	}

	id, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("generating shot id: %w", err)
	}
	shotID := id.String()

	tx, err := c.db.Begin()
	if err != nil {
		return "", fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	// replace a previous import of the same shot name
	if _, err := tx.Exec(
		"DELETE FROM dithers WHERE shot_id IN (SELECT shot_id FROM shots WHERE name = ?)",
		name,
	); err != nil {
		return "", fmt.Errorf("clearing previous dithers: %w", err)
	}
	if _, err := tx.Exec("DELETE FROM shots WHERE name = ?", name); err != nil {
		return "", fmt.Errorf("clearing previous shot: %w", err)
	}

	createdAt := time.Now().UTC().Format(time.RFC3339)
	if _, err := tx.Exec(
		"INSERT INTO shots (shot_id, name, dither_file, created_at) VALUES (?, ?, ?, ?)",
		shotID, name, d.AbsFilename(), createdAt,
	); err != nil {
		return "", fmt.Errorf("inserting shot: %w", err)
	}

	for _, tag := range d.Dithers() {
		e, _ := d.Entry(tag)
		if _, err := tx.Exec(
			"INSERT INTO dithers (shot_id, tag, basename, dx, dy, seeing, norm, airmass)"+
				" VALUES (?, ?, ?, ?, ?, ?, ?, ?)",
			shotID, tag, e.Basename, e.Dx, e.Dy, e.Seeing, e.Norm, e.Airmass,
		); err != nil {
			return "", fmt.Errorf("inserting dither %s: %w", tag, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("committing import: %w", err)
	}
	return shotID, nil
}

// Shot retrieves a shot and its dithers by id.
func (c *Catalog) Shot(id string) (*Shot, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if !c.open {
		return nil, ErrNotOpen
	}
	if id == "" {
		return nil, ErrInvalidID
	}

	row := c.db.QueryRow(
		"SELECT shot_id, name, dither_file, created_at FROM shots WHERE shot_id = ?", id,
	)
	shot, err := hydrateShot(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("getting shot %s: %w", id, err)
	}

	if err := c.hydrateDithers(shot); err != nil {
		return nil, fmt.Errorf("getting dithers of shot %s: %w", id, err)
	}
	return shot, nil
}

// ShotByName retrieves a shot and its dithers by name.
func (c *Catalog) ShotByName(name string) (*Shot, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if !c.open {
		return nil, ErrNotOpen
	}

	row := c.db.QueryRow(
		"SELECT shot_id, name, dither_file, created_at FROM shots WHERE name = ?", name,
	)
	shot, err := hydrateShot(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("getting shot %q: %w", name, err)
	}

	if err := c.hydrateDithers(shot); err != nil {
		return nil, fmt.Errorf("getting dithers of shot %q: %w", name, err)
	}
	return shot, nil
}

// Shots lists all shots, newest first, without their dither entries.
func (c *Catalog) Shots() ([]Shot, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if !c.open {
		return nil, ErrNotOpen
	}

	rows, err := c.db.Query(
		"SELECT shot_id, name, dither_file, created_at FROM shots ORDER BY created_at DESC, name",
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var shots []Shot
	for rows.Next() {
		var s Shot
		var createdAt string
		if err := rows.Scan(&s.ShotID, &s.Name, &s.DitherFile, &createdAt); err != nil {
			return nil, err
		}
		if s.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
			return nil, err
		}
		shots = append(shots, s)
	}
	return shots, rows.Err()
}

// DeleteShot removes a shot and its dithers.
func (c *Catalog) DeleteShot(id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.open {
		return ErrNotOpen
	}
	if id == "" {
		return ErrInvalidID
	}

	res, err := c.db.Exec("DELETE FROM shots WHERE shot_id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting shot %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}

	// the schema cascades, but older databases may predate the constraint
	if _, err := c.db.Exec("DELETE FROM dithers WHERE shot_id = ?", id); err != nil {
		return fmt.Errorf("deleting dithers of shot %s: %w", id, err)
	}
	return nil
}

// hydrateShot scans a shots row into a Shot.
func hydrateShot(row *sql.Row) (*Shot, error) {
	var s Shot
	var createdAt string
	if err := row.Scan(&s.ShotID, &s.Name, &s.DitherFile, &createdAt); err != nil {
		return nil, err
	}
	t, err := time.Parse(time.RFC3339, createdAt)
	if err != nil {
		return nil, err
	}
	s.CreatedAt = t
	return &s, nil
}

// hydrateDithers loads the dither entries of shot, ordered by tag.
func (c *Catalog) hydrateDithers(shot *Shot) error {
	rows, err := c.db.Query(
		"SELECT tag, basename, dx, dy, seeing, norm, airmass FROM dithers WHERE shot_id = ?",
		shot.ShotID,
	)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var d DitherRecord
		if err := rows.Scan(&d.Tag, &d.Basename, &d.Dx, &d.Dy, &d.Seeing, &d.Norm, &d.Airmass); err != nil {
			return err
		}
		shot.Dithers = append(shot.Dithers, d)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	sort.Slice(shot.Dithers, func(i, j int) bool {
		return shot.Dithers[i].Tag < shot.Dithers[j].Tag
	})
	return nil
}
