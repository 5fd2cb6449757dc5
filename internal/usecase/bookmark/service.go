// Package bookmark implements saved-search management.
package bookmark

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"

	"github.com/mekbench/mekbench/internal/domain/bookmark"
	"github.com/mekbench/mekbench/internal/filterstate"
)

// Repository is the persistence contract for saved searches.
type Repository interface {
	Save(ctx context.Context, s bookmark.Saved) error
	Get(ctx context.Context, id string) (bookmark.Saved, error)
	List(ctx context.Context) ([]bookmark.Saved, error)
	Delete(ctx context.Context, id string) error
}

// Session is the slice of the search coordinator that applying a saved
// search needs.
type Session interface {
	Reset()
	SetQuery(q string)
	SetFilter(field string, fs *filterstate.FieldState)
}

// Service manages saved searches.
type Service struct {
	repo Repository
}

// New creates a bookmark service.
func New(repo Repository) *Service {
	return &Service{repo: repo}
}

// Create validates, assigns an ID, and persists a saved search.
func (s *Service) Create(ctx context.Context, saved bookmark.Saved) (bookmark.Saved, error) {
	if err := saved.Validate(); err != nil {
		return bookmark.Saved{}, fmt.Errorf("invalid saved search: %w", err)
	}
	saved.ID = uuid.NewString()
	if err := s.repo.Save(ctx, saved); err != nil {
		return bookmark.Saved{}, err
	}
	return saved, nil
}

// Get returns one saved search.
func (s *Service) Get(ctx context.Context, id string) (bookmark.Saved, error) {
	return s.repo.Get(ctx, id)
}

// List returns all saved searches.
func (s *Service) List(ctx context.Context) ([]bookmark.Saved, error) {
	return s.repo.List(ctx)
}

// Delete removes a saved search.
func (s *Service) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

// Apply restores a saved search into a session: reset everything, set the
// query text verbatim, then replay each filter entry through the normal
// single-field update path so it gets the same interaction and validation
// semantics as a live edit.
func (s *Service) Apply(ctx context.Context, id string, sess Session) (bookmark.Saved, error) {
	saved, err := s.repo.Get(ctx, id)
	if err != nil {
		return bookmark.Saved{}, err
	}
	sess.Reset()
	sess.SetQuery(saved.Query)
	fields := make([]string, 0, len(saved.Filters))
	for field := range saved.Filters {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	for _, field := range fields {
		sess.SetFilter(field, saved.Filters[field])
	}
	return saved, nil
}
