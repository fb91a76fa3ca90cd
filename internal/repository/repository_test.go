package repository

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/phonecore/phonecore/internal/storage"
)

type note struct {
	ID   int    `yaml:"id"`
	Text string `yaml:"text"`
}

func (n note) Key() int { return n.ID }

func seeded(t *testing.T, n int) *Repository[int, note] {
	t.Helper()
	r := New[int, note]()
	for i := 1; i <= n; i++ {
		r.Add(note{ID: i, Text: "n"})
	}
	if err := r.Save(); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	return r
}

func TestRepository_ChangesVisibleAfterSave(t *testing.T) {
	r := New[int, note]()
	r.Add(note{ID: 1, Text: "one"})

	if _, ok := r.Get(1); ok {
		t.Error("Get() sees an unsaved add")
	}
	if r.Pending() != 1 {
		t.Errorf("Pending() = %d, want 1", r.Pending())
	}

	if err := r.Save(); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	got, ok := r.Get(1)
	if !ok || got.Text != "one" {
		t.Errorf("Get(1) = %+v, %v", got, ok)
	}
	if r.Pending() != 0 {
		t.Errorf("Pending() = %d after Save", r.Pending())
	}
}

func TestRepository_Modify(t *testing.T) {
	r := seeded(t, 2)

	if err := r.Modify(note{ID: 2, Text: "changed"}); err != nil {
		t.Fatalf("Modify() error = %v", err)
	}
	if got, _ := r.Get(2); got.Text != "changed" {
		t.Errorf("Get(2).Text = %q", got.Text)
	}

	err := r.Modify(note{ID: 9})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Modify(missing) error = %v, want ErrNotFound", err)
	}
}

func TestRepository_SaveIsAllOrNothing(t *testing.T) {
	r := seeded(t, 1)

	r.Add(note{ID: 2})
	r.Add(note{ID: 1})

	if err := r.Save(); !errors.Is(err, ErrDuplicateID) {
		t.Fatalf("Save() error = %v, want ErrDuplicateID", err)
	}
	if _, ok := r.Get(2); ok {
		t.Error("failed Save applied part of the changes")
	}
	if r.Pending() != 2 {
		t.Errorf("Pending() = %d, failed changes should stay staged", r.Pending())
	}
}

func TestRepository_RemoveAndRemoveAll(t *testing.T) {
	r := seeded(t, 3)

	r.Remove(note{ID: 2})
	r.Remove(note{ID: 42})
	if err := r.Save(); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if diff := cmp.Diff([]note{{1, "n"}, {3, "n"}}, r.GetAll()); diff != "" {
		t.Errorf("GetAll() mismatch (-want +got):\n%s", diff)
	}

	r.RemoveAll()
	r.Add(note{ID: 7})
	if err := r.Save(); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if diff := cmp.Diff([]note{{7, ""}}, r.GetAll()); diff != "" {
		t.Errorf("GetAll() mismatch (-want +got):\n%s", diff)
	}
}

func TestRepository_GetPage(t *testing.T) {
	r := seeded(t, 5)

	tests := []struct {
		name    string
		index   int
		size    int
		wantIDs []int
		wantErr bool
	}{
		{name: "first page", index: 1, size: 2, wantIDs: []int{1, 2}},
		{name: "last partial page", index: 3, size: 2, wantIDs: []int{5}},
		{name: "past the end", index: 4, size: 2, wantIDs: []int{}},
		{name: "zero index", index: 0, size: 2, wantErr: true},
		{name: "zero size", index: 1, size: 0, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, err := r.GetPage(tt.index, tt.size)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidPage) {
					t.Errorf("GetPage() error = %v, want ErrInvalidPage", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("GetPage() error = %v", err)
			}
			ids := []int{}
			for _, n := range page {
				ids = append(ids, n.ID)
			}
			if diff := cmp.Diff(tt.wantIDs, ids); diff != "" {
				t.Errorf("page ids mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestRepository_GetFilteredPage(t *testing.T) {
	r := seeded(t, 10)
	even := func(n note) bool { return n.ID%2 == 0 }

	if got := len(r.GetFiltered(even)); got != 5 {
		t.Errorf("len(GetFiltered) = %d, want 5", got)
	}

	page, err := r.GetFilteredPage(even, 2, 2)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]note{{6, "n"}, {8, "n"}}, page); diff != "" {
		t.Errorf("GetFilteredPage mismatch (-want +got):\n%s", diff)
	}
}

func TestOpen_PersistsSnapshot(t *testing.T) {
	files := storage.New(t.TempDir())

	r, err := Open[int, note](files, "db/notes.yaml")
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	r.Add(note{ID: 2, Text: "b"})
	r.Add(note{ID: 1, Text: "a"})
	if err := r.Save(); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	reopened, err := Open[int, note](files, "db/notes.yaml")
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if diff := cmp.Diff([]note{{2, "b"}, {1, "a"}}, reopened.GetAll()); diff != "" {
		t.Errorf("reloaded entities mismatch (-want +got):\n%s", diff)
	}
}

func TestOpen_RejectsDuplicateSnapshot(t *testing.T) {
	files := storage.New(t.TempDir())
	if err := files.SaveText("notes.yaml", "- id: 1\n- id: 1\n"); err != nil {
		t.Fatal(err)
	}
	if _, err := Open[int, note](files, "notes.yaml"); !errors.Is(err, ErrDuplicateID) {
		t.Errorf("Open() error = %v, want ErrDuplicateID", err)
	}
}
