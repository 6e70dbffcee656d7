package config

import (
	"errors"
	"fmt"
	"sync"
	"testing"
)

// stubSection records the data pushed into it
type stubSection struct {
	id          string
	data        map[string]interface{}
	validateErr error
}

func (s *stubSection) ID() string                                { return s.id }
func (s *stubSection) Title() string                             { return s.id }
func (s *stubSection) Description() string                       { return "" }
func (s *stubSection) Data() map[string]interface{}              { return s.data }
func (s *stubSection) SetData(data map[string]interface{}) error { s.data = data; return nil }
func (s *stubSection) Validate() error                           { return s.validateErr }
func (s *stubSection) Reset()                                    { s.data = map[string]interface{}{} }

// memoryStore is an in-memory Store
type memoryStore struct {
	sections map[string]map[string]interface{}
	loadErr  error
	saveErr  error
	saved    int
}

func newMemoryStore() *memoryStore {
	return &memoryStore{sections: make(map[string]map[string]interface{})}
}

func (m *memoryStore) Load() error { return m.loadErr }

func (m *memoryStore) Save() error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.saved++
	return nil
}

func (m *memoryStore) GetSection(id string) (map[string]interface{}, error) {
	if data, ok := m.sections[id]; ok {
		return data, nil
	}
	return map[string]interface{}{}, nil
}

func (m *memoryStore) SetSection(id string, data map[string]interface{}) error {
	m.sections[id] = data
	return nil
}

func TestManager_RegisterSection(t *testing.T) {
	store := newMemoryStore()
	manager := NewManager(store)

	if manager.Store() != store {
		t.Error("Manager does not reference its store")
	}

	for _, id := range []string{"first", "second", "third"} {
		if err := manager.RegisterSection(&stubSection{id: id}); err != nil {
			t.Fatalf("RegisterSection(%s) failed: %v", id, err)
		}
	}

	if err := manager.RegisterSection(&stubSection{id: "second"}); err == nil {
		t.Error("Expected error for duplicate section ID")
	}

	sections := manager.GetSections()
	if len(sections) != 3 {
		t.Fatalf("Expected 3 sections, got %d", len(sections))
	}
	for i, want := range []string{"first", "second", "third"} {
		if sections[i].ID() != want {
			t.Errorf("sections[%d] = %s, want %s", i, sections[i].ID(), want)
		}
	}

	if _, ok := manager.GetSection("missing"); ok {
		t.Error("GetSection should report unknown IDs")
	}
}

func TestManager_LoadAll(t *testing.T) {
	t.Run("pushes stored data into sections", func(t *testing.T) {
		store := newMemoryStore()
		store.sections["a"] = map[string]interface{}{"key": "value"}

		manager := NewManager(store)
		a := &stubSection{id: "a"}
		b := &stubSection{id: "b"}
		manager.RegisterSection(a)
		manager.RegisterSection(b)

		if err := manager.LoadAll(); err != nil {
			t.Fatalf("LoadAll failed: %v", err)
		}
		if a.data["key"] != "value" {
			t.Error("Section a not loaded")
		}
		if b.data == nil || len(b.data) != 0 {
			t.Error("Section b should receive an empty map")
		}
	})

	t.Run("propagates store errors", func(t *testing.T) {
		store := newMemoryStore()
		store.loadErr = errors.New("disk on fire")

		if err := NewManager(store).LoadAll(); !errors.Is(err, store.loadErr) {
			t.Errorf("Expected load error, got %v", err)
		}
	})
}

func TestManager_SaveAll(t *testing.T) {
	t.Run("writes every section then saves", func(t *testing.T) {
		store := newMemoryStore()
		manager := NewManager(store)
		manager.RegisterSection(&stubSection{id: "a", data: map[string]interface{}{"k": 1}})

		if err := manager.SaveAll(); err != nil {
			t.Fatalf("SaveAll failed: %v", err)
		}
		if store.sections["a"]["k"] != 1 {
			t.Error("Section data not written")
		}
		if store.saved != 1 {
			t.Errorf("Expected one Save, got %d", store.saved)
		}
	})

	t.Run("invalid section aborts before save", func(t *testing.T) {
		store := newMemoryStore()
		manager := NewManager(store)
		manager.RegisterSection(&stubSection{id: "a", validateErr: errors.New("bad")})

		if err := manager.SaveAll(); err == nil {
			t.Error("Expected validation error")
		}
		if store.saved != 0 {
			t.Error("Store should not be saved when validation fails")
		}
	})

	t.Run("propagates save errors", func(t *testing.T) {
		store := newMemoryStore()
		store.saveErr = errors.New("read-only")
		manager := NewManager(store)

		if err := manager.SaveAll(); err == nil {
			t.Error("Expected save error")
		}
	})
}

func TestManager_ResetAll(t *testing.T) {
	manager := NewManager(newMemoryStore())
	s := &stubSection{id: "a", data: map[string]interface{}{"k": "v"}}
	manager.RegisterSection(s)

	manager.ResetAll()

	if len(s.data) != 0 {
		t.Error("Section not reset")
	}
}

func TestManager_ConcurrentRegistration(t *testing.T) {
	manager := NewManager(newMemoryStore())

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			manager.RegisterSection(&stubSection{id: fmt.Sprintf("section%d", i)})
			manager.GetSections()
		}(i)
	}
	wg.Wait()

	if n := len(manager.GetSections()); n != 10 {
		t.Errorf("Expected 10 sections, got %d", n)
	}
}
