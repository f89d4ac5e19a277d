package likes

import (
	"errors"
	"reflect"
	"testing"

	"github.com/takak2166/teum/internal/storage"
)

func TestToggle(t *testing.T) {
	s := New(storage.NewMemory())

	if s.IsLiked("a") {
		t.Fatal("Expected empty set")
	}
	if liked := s.Toggle("a"); !liked {
		t.Error("Expected Toggle to like a")
	}
	if !s.IsLiked("a") {
		t.Error("Expected a to be liked")
	}
	if liked := s.Toggle("a"); liked {
		t.Error("Expected Toggle to unlike a")
	}
	if s.IsLiked("a") {
		t.Error("Expected a to be unliked")
	}
}

func TestDoubleToggleLeavesPersistedSetUnchanged(t *testing.T) {
	store := storage.NewMemory()
	s := New(store)
	s.Toggle("keep")

	before, _, _ := store.Get(Key)

	s.Toggle("x")
	s.Toggle("x")

	after, _, _ := store.Get(Key)
	if before != after {
		t.Errorf("Persisted set changed: %s -> %s", before, after)
	}
}

func TestPersistsAcrossInstances(t *testing.T) {
	store := storage.NewMemory()
	New(store).Toggle("b")
	New(store).Toggle("a")

	got := New(store).IDs()
	if !reflect.DeepEqual(got, []string{"a", "b"}) {
		t.Errorf("IDs() = %v, want [a b]", got)
	}
}

func TestCorruptStateStartsEmpty(t *testing.T) {
	for _, raw := range []string{"not json", `["a"]`, `{"a": "yes"}`} {
		store := storage.NewMemory()
		store.Set(Key, raw)

		if ids := New(store).IDs(); len(ids) != 0 {
			t.Errorf("IDs() with %q = %v, want empty", raw, ids)
		}
	}
}

func TestFalseMarkersAreNotLiked(t *testing.T) {
	store := storage.NewMemory()
	store.Set(Key, `{"a": true, "b": false}`)

	s := New(store)
	if !s.IsLiked("a") || s.IsLiked("b") {
		t.Errorf("IDs() = %v, want [a]", s.IDs())
	}
}

type failingStore struct{}

func (failingStore) Get(string) (string, bool, error) { return "", false, errors.New("quota exceeded") }
func (failingStore) Set(string, string) error         { return errors.New("quota exceeded") }
func (failingStore) Remove(string) error              { return errors.New("quota exceeded") }

func TestStoreFailuresAreSwallowed(t *testing.T) {
	s := New(failingStore{})
	s.Toggle("a")
	if !s.IsLiked("a") {
		t.Error("Expected in-memory state to survive a failed save")
	}
}
