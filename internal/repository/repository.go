package repository

import (
	"bytes"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/phonecore/phonecore/internal/logging"
	"github.com/phonecore/phonecore/internal/storage"
)

var (
	// ErrDuplicateID is returned by Save when an added entity's key is taken
	ErrDuplicateID = errors.New("entity with this id already exists")

	// ErrNotFound is returned by Save when a modified entity does not exist
	ErrNotFound = errors.New("entity not found")

	// ErrInvalidPage is returned for page indexes or sizes below 1
	ErrInvalidPage = errors.New("page index and size must be at least 1")
)

// Entity is anything stored in a Repository
type Entity[K comparable] interface {
	Key() K
}

type opKind int

const (
	opAdd opKind = iota
	opModify
	opRemove
	opRemoveAll
)

type change[K comparable, E Entity[K]] struct {
	kind   opKind
	entity E
}

// Repository keeps entities in insertion order. Add, Modify, Remove and
// RemoveAll are staged; readers only see them after Save.
type Repository[K comparable, E Entity[K]] struct {
	mu      sync.Mutex
	keys    []K
	items   map[K]E
	pending []change[K, E]

	files *storage.FileService
	path  string
}

// New creates an in-memory repository
func New[K comparable, E Entity[K]]() *Repository[K, E] {
	return &Repository[K, E]{items: make(map[K]E)}
}

// Open creates a repository persisted as a YAML snapshot at path inside
// files. Existing snapshots are loaded; every Save rewrites the snapshot.
func Open[K comparable, E Entity[K]](files *storage.FileService, path string) (*Repository[K, E], error) {
	r := New[K, E]()
	r.files = files
	r.path = path

	if !files.FileExists(path) {
		return r, nil
	}
	data, err := files.Read(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot: %w", err)
	}

	var entities []E
	if err := yaml.Unmarshal(data, &entities); err != nil {
		return nil, fmt.Errorf("failed to parse snapshot %s: %w", path, err)
	}
	for _, e := range entities {
		k := e.Key()
		if _, dup := r.items[k]; dup {
			return nil, fmt.Errorf("snapshot %s: %w: %v", path, ErrDuplicateID, k)
		}
		r.keys = append(r.keys, k)
		r.items[k] = e
	}

	logging.Debug("Repository loaded",
		zap.String("path", path),
		zap.Int("entities", len(r.keys)),
	)
	return r, nil
}

// Add stages e for insertion
func (r *Repository[K, E]) Add(e E) {
	r.stage(change[K, E]{kind: opAdd, entity: e})
}

// Modify replaces the stored entity with e's key and saves all pending changes
func (r *Repository[K, E]) Modify(e E) error {
	r.stage(change[K, E]{kind: opModify, entity: e})
	return r.Save()
}

// Remove stages deletion of e. Removing a missing entity is not an error.
func (r *Repository[K, E]) Remove(e E) {
	r.stage(change[K, E]{kind: opRemove, entity: e})
}

// RemoveAll stages deletion of every entity
func (r *Repository[K, E]) RemoveAll() {
	r.stage(change[K, E]{kind: opRemoveAll})
}

func (r *Repository[K, E]) stage(c change[K, E]) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pending = append(r.pending, c)
}

// Pending returns the number of staged changes
func (r *Repository[K, E]) Pending() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.pending)
}

// Save applies staged changes in order. Either all of them take effect or,
// on error, none do and they stay staged.
func (r *Repository[K, E]) Save() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.pending) == 0 {
		return nil
	}

	keys := append([]K(nil), r.keys...)
	items := make(map[K]E, len(r.items))
	for k, v := range r.items {
		items[k] = v
	}

	for _, c := range r.pending {
		switch c.kind {
		case opAdd:
			k := c.entity.Key()
			if _, exists := items[k]; exists {
				return fmt.Errorf("%w: %v", ErrDuplicateID, k)
			}
			keys = append(keys, k)
			items[k] = c.entity
		case opModify:
			k := c.entity.Key()
			if _, exists := items[k]; !exists {
				return fmt.Errorf("%w: %v", ErrNotFound, k)
			}
			items[k] = c.entity
		case opRemove:
			k := c.entity.Key()
			if _, exists := items[k]; exists {
				delete(items, k)
				keys = removeKey(keys, k)
			}
		case opRemoveAll:
			keys = nil
			clear(items)
		}
	}

	if r.files != nil {
		if err := r.writeSnapshot(keys, items); err != nil {
			return err
		}
	}

	logging.Debug("Repository saved",
		zap.Int("changes", len(r.pending)),
		zap.Int("entities", len(keys)),
	)
	r.keys = keys
	r.items = items
	r.pending = nil
	return nil
}

func (r *Repository[K, E]) writeSnapshot(keys []K, items map[K]E) error {
	ordered := make([]E, 0, len(keys))
	for _, k := range keys {
		ordered = append(ordered, items[k])
	}
	data, err := yaml.Marshal(ordered)
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}
	if err := r.files.SaveStream(r.path, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	return nil
}

// Get returns the saved entity with key k
func (r *Repository[K, E]) Get(k K) (E, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.items[k]
	return e, ok
}

// Len returns the number of saved entities
func (r *Repository[K, E]) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.keys)
}

// GetAll returns every saved entity in insertion order
func (r *Repository[K, E]) GetAll() []E {
	return r.GetFiltered(nil)
}

// GetPage returns page pageIndex (1-based) of pageSize entities
func (r *Repository[K, E]) GetPage(pageIndex, pageSize int) ([]E, error) {
	return r.GetFilteredPage(nil, pageIndex, pageSize)
}

// GetFiltered returns the saved entities for which keep returns true.
// A nil keep matches everything.
func (r *Repository[K, E]) GetFiltered(keep func(E) bool) []E {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]E, 0, len(r.keys))
	for _, k := range r.keys {
		e := r.items[k]
		if keep == nil || keep(e) {
			out = append(out, e)
		}
	}
	return out
}

// GetFilteredPage pages through GetFiltered. Pages past the end are empty.
func (r *Repository[K, E]) GetFilteredPage(keep func(E) bool, pageIndex, pageSize int) ([]E, error) {
	if pageIndex < 1 || pageSize < 1 {
		return nil, ErrInvalidPage
	}

	all := r.GetFiltered(keep)
	start := (pageIndex - 1) * pageSize
	if start >= len(all) {
		return []E{}, nil
	}
	end := min(start+pageSize, len(all))
	return all[start:end], nil
}

func removeKey[K comparable](keys []K, k K) []K {
	for i, existing := range keys {
		if existing == k {
			return append(keys[:i], keys[i+1:]...)
		}
	}
	return keys
}
