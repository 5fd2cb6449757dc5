// Package catalog loads and serves the flat unit list the filter engine
// evaluates against.
package catalog

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"go.uber.org/zap"

	"github.com/mekbench/mekbench/internal/domain/schema"
	"github.com/mekbench/mekbench/internal/domain/unit"
	"github.com/mekbench/mekbench/internal/filterstate"
)

// Store holds the in-memory unit catalog. Reloading replaces the unit list
// and bumps the version counter, which wholesale-invalidates every
// dependent cache (derived properties, option lists, totals).
type Store struct {
	path     string
	logger   *zap.Logger
	resolver *unit.Resolver

	mu      sync.RWMutex
	units   []unit.Unit
	version uint64
	totals  map[string]filterstate.Totals // per game, per version
}

// New creates a catalog store reading from the given JSON file.
func New(path string, logger *zap.Logger) *Store {
	return &Store{
		path:     path,
		logger:   logger,
		resolver: unit.NewResolver(),
		totals:   map[string]filterstate.Totals{},
	}
}

// Load reads the catalog file: a JSON array of unit objects.
func (s *Store) Load() error {
	data, err := os.ReadFile(filepath.Clean(s.path))
	if err != nil {
		return fmt.Errorf("read catalog %s: %w", s.path, err)
	}
	var records []map[string]any
	if err := json.Unmarshal(data, &records); err != nil {
		return fmt.Errorf("parse catalog: %w", err)
	}

	units := make([]unit.Unit, 0, len(records))
	for _, rec := range records {
		units = append(units, unit.New(rec))
	}

	s.mu.Lock()
	s.units = units
	s.version++
	s.totals = map[string]filterstate.Totals{}
	s.mu.Unlock()
	s.resolver.Invalidate()

	s.logger.Info("catalog loaded",
		zap.String("path", s.path),
		zap.Int("units", len(units)),
	)
	return nil
}

// Units returns the current unit list. The slice is shared and read-only.
func (s *Store) Units() []unit.Unit {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.units
}

// Version returns the data-set version counter.
func (s *Store) Version() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

// Resolver returns the derived-property resolver bound to this catalog.
func (s *Store) Resolver() *unit.Resolver { return s.resolver }

// Totals computes the full available numeric range per Range field for a
// game, memoized until the next Load. Sentinel values are excluded from the
// computation unless the resulting lower bound is 0, in which case they
// extend the span (so a slider can reach the "not applicable" stop).
func (s *Store) Totals(reg *schema.Registry, game string) filterstate.Totals {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t, ok := s.totals[game]; ok {
		return t
	}

	t := filterstate.Totals{}
	for _, cfg := range reg.Fields(game) {
		if cfg.Kind != schema.Range {
			continue
		}
		span, ok := s.fieldSpan(cfg)
		if ok {
			t[cfg.Key] = span
		}
	}
	s.totals[game] = t
	return t
}

func (s *Store) fieldSpan(cfg schema.FieldConfig) (schema.Span, bool) {
	lo, hi := math.Inf(1), math.Inf(-1)
	sentinelLo := math.Inf(1)
	found := false
	for _, u := range s.units {
		raw, ok := s.resolver.Get(u, cfg.CanonicalKey)
		if !ok {
			continue
		}
		v, ok := toFloat(raw)
		if !ok {
			continue
		}
		if cfg.Ignored(v) {
			sentinelLo = math.Min(sentinelLo, v)
			continue
		}
		found = true
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	if !found {
		return schema.Span{}, false
	}
	if lo == 0 && !math.IsInf(sentinelLo, 1) {
		lo = math.Min(lo, sentinelLo)
	}
	return schema.Span{Min: lo, Max: hi}, true
}

func toFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case int:
		return float64(t), true
	case string:
		n, err := strconv.ParseFloat(t, 64)
		return n, err == nil
	}
	return 0, false
}
