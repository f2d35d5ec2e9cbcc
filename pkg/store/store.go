// Package store saves named assembly projects to a SQLite database. Each
// project is one row holding a JSON envelope of the assembly state and the
// definitions of the part types it uses.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/chazu/strut/pkg/assembly"
	"github.com/chazu/strut/pkg/catalog"

	_ "modernc.org/sqlite" // pure go sqlite driver
)

// DefaultPath is used when Open is given an empty path.
const DefaultPath = "strut.db"

// envelopeVersion is written with every project.
const envelopeVersion = 1

// ErrProjectNotFound is returned by Load and Delete for unknown names.
var ErrProjectNotFound = errors.New("project not found")

// envelope is the stored payload.
type envelope struct {
	Version int              `json:"version"`
	Types   []catalog.Record `json:"types"`
	State   assembly.State   `json:"state"`
}

// Project describes a stored project without loading it.
type Project struct {
	Name      string    `json:"name"`
	Parts     int       `json:"parts"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Store is a SQLite-backed project store. It is safe for concurrent use.
type Store struct {
	db   *sql.DB
	mu   sync.Mutex
	path string
	now  func() time.Time
}

// Open opens or creates the database at path.
func Open(path string) (*Store, error) {
	if path == "" {
		path = DefaultPath
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil && !errors.Is(err, os.ErrExist) {
		return nil, fmt.Errorf("store: create dirs: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("store: open sqlite: %w", err)
	}
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS projects (
		name TEXT PRIMARY KEY,
		parts INTEGER NOT NULL,
		payload BLOB NOT NULL,
		updated_at INTEGER NOT NULL
	)`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("store: create projects table: %w", err)
	}
	return &Store{db: db, path: path, now: time.Now}, nil
}

// Path returns the configured database path.
func (s *Store) Path() string { return s.path }

// Close closes the database.
func (s *Store) Close() error { return s.db.Close() }

// Save writes a under name, replacing any project of the same name. The
// definitions of every part type the assembly uses are stored with it.
func (s *Store) Save(ctx context.Context, name string, a *assembly.Assembly) error {
	if name == "" {
		return fmt.Errorf("store: save: empty project name")
	}
	env := envelope{Version: envelopeVersion, State: a.Save()}
	seen := make(map[catalog.TypeID]bool)
	for _, is := range env.State.Instances {
		if seen[is.Type] {
			continue
		}
		seen[is.Type] = true
		def, err := a.Catalog().Lookup(is.Type)
		if err != nil {
			return fmt.Errorf("store: save %q: %w", name, err)
		}
		env.Types = append(env.Types, catalog.ToRecord(def))
	}
	sort.Slice(env.Types, func(i, j int) bool { return env.Types[i].ID < env.Types[j].ID })

	payload, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("store: encode %q: %w", name, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO projects(name,parts,payload,updated_at) VALUES(?,?,?,?)
		ON CONFLICT(name) DO UPDATE SET parts=excluded.parts, payload=excluded.payload, updated_at=excluded.updated_at`,
		name, len(env.State.Instances), payload, s.now().UnixMilli()); err != nil {
		return fmt.Errorf("store: upsert %q: %w", name, err)
	}
	return nil
}

// Load reads the project called name into a new assembly. Its catalog is a
// clone of base extended with any stored type base lacks; a stored type
// that base already has is resolved through base.
func (s *Store) Load(ctx context.Context, name string, base *catalog.Catalog) (*assembly.Assembly, error) {
	var payload []byte
	err := s.db.QueryRowContext(ctx, `SELECT payload FROM projects WHERE name = ?`, name).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %q", ErrProjectNotFound, name)
	}
	if err != nil {
		return nil, fmt.Errorf("store: select %q: %w", name, err)
	}

	var env envelope
	if err := json.Unmarshal(payload, &env); err != nil {
		return nil, fmt.Errorf("store: decode %q: %w", name, err)
	}
	if env.Version != envelopeVersion {
		return nil, fmt.Errorf("store: load %q: %w: envelope %d", name, assembly.ErrUnsupportedVersion, env.Version)
	}

	cat := base.Clone()
	for _, rec := range env.Types {
		if cat.Has(rec.ID) {
			continue
		}
		def, err := rec.Definition()
		if err != nil {
			return nil, fmt.Errorf("store: load %q: %w", name, err)
		}
		if err := cat.Register(def); err != nil {
			return nil, fmt.Errorf("store: load %q: %w", name, err)
		}
	}
	a := assembly.New(cat)
	if err := a.Load(env.State); err != nil {
		return nil, fmt.Errorf("store: load %q: %w", name, err)
	}
	return a, nil
}

// List returns every stored project, most recently updated first.
func (s *Store) List(ctx context.Context) ([]Project, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT name, parts, updated_at FROM projects ORDER BY updated_at DESC, name`)
	if err != nil {
		return nil, fmt.Errorf("store: list: %w", err)
	}
	defer func() { _ = rows.Close() }()

	out := []Project{}
	for rows.Next() {
		var p Project
		var ms int64
		if err := rows.Scan(&p.Name, &p.Parts, &ms); err != nil {
			return nil, fmt.Errorf("store: scan: %w", err)
		}
		p.UpdatedAt = time.UnixMilli(ms)
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: list: %w", err)
	}
	return out, nil
}

// Delete removes the project called name.
func (s *Store) Delete(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	res, err := s.db.ExecContext(ctx, `DELETE FROM projects WHERE name = ?`, name)
	if err != nil {
		return fmt.Errorf("store: delete %q: %w", name, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("store: delete %q: %w", name, err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %q", ErrProjectNotFound, name)
	}
	return nil
}
