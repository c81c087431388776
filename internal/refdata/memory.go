package refdata

import (
	"context"
	"sort"
	"sync"

	"storycare-server/internal/models"
)

// MemoryAccessor - потокобезопасная in-memory реализация Accessor.
// Используется в тестах и как фикстура для локального запуска.
type MemoryAccessor struct {
	mu    sync.RWMutex
	items map[string]map[string]models.ReferenceItem // category -> key -> item
}

var _ Accessor = (*MemoryAccessor)(nil)

// NewMemoryAccessor создает MemoryAccessor c начальным наполнением.
func NewMemoryAccessor(initial map[string][]models.ReferenceItem) *MemoryAccessor {
	m := &MemoryAccessor{items: make(map[string]map[string]models.ReferenceItem)}
	for category, list := range initial {
		m.items[category] = make(map[string]models.ReferenceItem, len(list))
		for _, item := range list {
			m.items[category][item.Key] = item
		}
	}
	return m
}

func (m *MemoryAccessor) GetItem(_ context.Context, category, key string) (*models.ReferenceItem, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	item, ok := m.items[category][key]
	if !ok {
		return nil, models.ErrRefItemNotFound
	}
	cp := item
	return &cp, nil
}

func (m *MemoryAccessor) ListItems(_ context.Context, category string) ([]models.ReferenceItem, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	list := make([]models.ReferenceItem, 0, len(m.items[category]))
	for _, item := range m.items[category] {
		list = append(list, item)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Key < list[j].Key })
	return list, nil
}

func (m *MemoryAccessor) UpsertItem(_ context.Context, category string, item models.ReferenceItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.items[category] == nil {
		m.items[category] = make(map[string]models.ReferenceItem)
	}
	m.items[category][item.Key] = item
	return nil
}
