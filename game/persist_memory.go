package game

import (
	"sync"

	lru "github.com/hashicorp/golang-lru"
	"github.com/pkg/errors"
)

// MemoryHandHistory keeps the latest hands of the most recently active rooms.
type MemoryHandHistory struct {
	lock    sync.Mutex
	rooms   *lru.Cache
	perRoom int
}

func NewMemoryHandHistory(roomCount int, perRoom int) (*MemoryHandHistory, error) {
	rooms, err := lru.New(roomCount)
	if err != nil {
		return nil, errors.Wrap(err, "Unable to create hand history cache")
	}
	if perRoom < 1 {
		perRoom = 1
	}
	return &MemoryHandHistory{
		rooms:   rooms,
		perRoom: perRoom,
	}, nil
}

func (m *MemoryHandHistory) Save(roomID string, record *HandRecord) error {
	m.lock.Lock()
	defer m.lock.Unlock()

	var records []HandRecord
	if v, ok := m.rooms.Get(roomID); ok {
		records = v.([]HandRecord)
	}
	updated := make([]HandRecord, 0, len(records)+1)
	updated = append(updated, *record)
	updated = append(updated, records...)
	if len(updated) > m.perRoom {
		updated = updated[:m.perRoom]
	}
	m.rooms.Add(roomID, updated)
	return nil
}

func (m *MemoryHandHistory) Load(roomID string, limit int) ([]HandRecord, error) {
	m.lock.Lock()
	defer m.lock.Unlock()

	v, ok := m.rooms.Get(roomID)
	if !ok {
		return []HandRecord{}, nil
	}
	records := v.([]HandRecord)
	if limit > 0 && limit < len(records) {
		records = records[:limit]
	}
	result := make([]HandRecord, len(records))
	copy(result, records)
	return result, nil
}

func (m *MemoryHandHistory) Remove(roomID string) error {
	m.lock.Lock()
	defer m.lock.Unlock()

	m.rooms.Remove(roomID)
	return nil
}
