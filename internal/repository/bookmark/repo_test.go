package bookmark

import (
	"context"
	"testing"

	"github.com/mekbench/mekbench/internal/db"
	"github.com/mekbench/mekbench/internal/domain/bookmark"
)

type mockStore struct {
	data map[string][]byte
	// phantom keys show up in Scan but not in Get, like entries deleted
	// between the two calls.
	phantom []string
}

func newMockStore() *mockStore {
	return &mockStore{data: map[string][]byte{}}
}

func (m *mockStore) Get(_ context.Context, key string) ([]byte, error) {
	v, ok := m.data[key]
	if !ok {
		return nil, &db.Error{Op: db.OpGet, Err: db.ErrKeyNotFound}
	}
	return v, nil
}

func (m *mockStore) Set(_ context.Context, key string, value []byte) error {
	m.data[key] = value
	return nil
}

func (m *mockStore) Del(_ context.Context, key string) error {
	delete(m.data, key)
	return nil
}

func (m *mockStore) Scan(_ context.Context, _ string) ([]string, error) {
	out := make([]string, 0, len(m.data)+len(m.phantom))
	for k := range m.data {
		out = append(out, k)
	}
	return append(out, m.phantom...), nil
}

func TestRepo_SaveGetRoundTrip(t *testing.T) {
	repo := New(newMockStore())
	ctx := context.Background()

	in := bookmark.Saved{ID: "s1", Name: "heavies", Query: "tons>=60", Gunnery: 3}
	if err := repo.Save(ctx, in); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := repo.Get(ctx, "s1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Name != in.Name || got.Query != in.Query || got.Gunnery != in.Gunnery {
		t.Errorf("got %+v, want %+v", got, in)
	}
}

func TestRepo_GetMissing(t *testing.T) {
	repo := New(newMockStore())
	if _, err := repo.Get(context.Background(), "ghost"); err == nil {
		t.Error("missing key returned no error")
	}
}

func TestRepo_ListSkipsRacedDeletes(t *testing.T) {
	store := newMockStore()
	repo := New(store)
	ctx := context.Background()

	if err := repo.Save(ctx, bookmark.Saved{ID: "s1", Name: "a"}); err != nil {
		t.Fatal(err)
	}
	if err := repo.Save(ctx, bookmark.Saved{ID: "s2", Name: "b"}); err != nil {
		t.Fatal(err)
	}
	// A key deleted between Scan and Get is skipped, not fatal.
	store.phantom = append(store.phantom, keyPrefix+"s3")

	list, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 2 {
		t.Errorf("list = %+v, want 2 entries", list)
	}
}

func TestRepo_Delete(t *testing.T) {
	repo := New(newMockStore())
	ctx := context.Background()
	if err := repo.Save(ctx, bookmark.Saved{ID: "s1", Name: "a"}); err != nil {
		t.Fatal(err)
	}
	if err := repo.Delete(ctx, "s1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := repo.Get(ctx, "s1"); err == nil {
		t.Error("deleted key still readable")
	}
}
