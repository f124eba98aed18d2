package storage

import (
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/eslsoft/studydeck/internal/entity"
)

func newSession(t *testing.T, id string, started time.Time) *entity.StudySession {
	t.Helper()
	s, err := entity.StartSession(id, 1, []entity.Card{{ID: 1}}, func() time.Time { return started })
	if err != nil {
		t.Fatalf("StartSession: %v", err)
	}
	return s
}

func TestSessionStoragePutGetDelete(t *testing.T) {
	store := NewSessionStorage()
	s := newSession(t, "a", time.Now())
	store.Put(s)

	got, err := store.Get("a")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got != s {
		t.Fatal("Get returned a different session")
	}

	store.Delete("a")
	if _, err := store.Get("a"); !errors.Is(err, entity.ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestSessionStorageListOrdersByStart(t *testing.T) {
	store := NewSessionStorage()
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	store.Put(newSession(t, "late", base.Add(time.Hour)))
	store.Put(newSession(t, "early", base))

	list := store.List()
	if len(list) != 2 || list[0].ID != "early" || list[1].ID != "late" {
		t.Fatalf("unexpected order: %v, %v", list[0].ID, list[1].ID)
	}
}

func TestSessionStorageConcurrentAccess(t *testing.T) {
	store := NewSessionStorage()
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := fmt.Sprintf("s-%d", i)
			s, err := entity.StartSession(id, 1, []entity.Card{{ID: 1}}, nil)
			if err != nil {
				t.Errorf("StartSession(%s): %v", id, err)
				return
			}
			store.Put(s)
			if _, err := store.Get(id); err != nil {
				t.Errorf("Get(%s): %v", id, err)
			}
			_ = store.List()
		}(i)
	}
	wg.Wait()
	if n := len(store.List()); n != 20 {
		t.Fatalf("expected 20 sessions, got %d", n)
	}
}
