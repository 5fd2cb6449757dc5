// Package bookmark persists saved searches as JSON blobs in the KV store.
package bookmark

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mekbench/mekbench/internal/db"
	"github.com/mekbench/mekbench/internal/domain/bookmark"
)

const keyPrefix = "mekbench:search:"

// store is the consumer interface for bookmark persistence (ISP).
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Del(ctx context.Context, key string) error
	Scan(ctx context.Context, pattern string) ([]string, error)
}

// Repo stores saved searches.
type Repo struct {
	store store
}

// New creates a bookmark repository.
func New(s store) *Repo {
	return &Repo{store: s}
}

// Save writes a saved search.
func (r *Repo) Save(ctx context.Context, s bookmark.Saved) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("marshal saved search %s: %w", s.ID, err)
	}
	if err := r.store.Set(ctx, keyPrefix+s.ID, data); err != nil {
		return fmt.Errorf("save search %s: %w", s.ID, err)
	}
	return nil
}

// Get reads one saved search by ID.
func (r *Repo) Get(ctx context.Context, id string) (bookmark.Saved, error) {
	data, err := r.store.Get(ctx, keyPrefix+id)
	if err != nil {
		return bookmark.Saved{}, fmt.Errorf("get search %s: %w", id, err)
	}
	var s bookmark.Saved
	if err := json.Unmarshal(data, &s); err != nil {
		return bookmark.Saved{}, fmt.Errorf("decode search %s: %w", id, err)
	}
	return s, nil
}

// List returns all saved searches.
func (r *Repo) List(ctx context.Context) ([]bookmark.Saved, error) {
	keys, err := r.store.Scan(ctx, keyPrefix+"*")
	if err != nil {
		return nil, fmt.Errorf("scan searches: %w", err)
	}
	out := make([]bookmark.Saved, 0, len(keys))
	for _, key := range keys {
		data, err := r.store.Get(ctx, key)
		if err != nil {
			if errors.Is(err, db.ErrKeyNotFound) { // deleted between scan and get
				continue
			}
			return nil, fmt.Errorf("get search %s: %w", key, err)
		}
		var s bookmark.Saved
		if err := json.Unmarshal(data, &s); err != nil {
			return nil, fmt.Errorf("decode search %s: %w", key, err)
		}
		out = append(out, s)
	}
	return out, nil
}

// Delete removes a saved search.
func (r *Repo) Delete(ctx context.Context, id string) error {
	if err := r.store.Del(ctx, keyPrefix+id); err != nil {
		return fmt.Errorf("delete search %s: %w", id, err)
	}
	return nil
}
