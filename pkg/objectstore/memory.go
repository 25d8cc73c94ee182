package objectstore

import (
	"context"
	"strings"
	"sync"
)

type object struct {
	contentType string
	body        []byte
}

// MemoryStore keeps objects in process memory. Used when no bucket is
// configured (local development) and in tests. URLs point at the API's own
// download route.
type MemoryStore struct {
	mu      sync.RWMutex
	objects map[string]object
	baseURL string
}

func NewMemoryStore(baseURL string) *MemoryStore {
	return &MemoryStore{
		objects: make(map[string]object),
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

func (m *MemoryStore) Put(_ context.Context, key, contentType string, body []byte) (string, error) {
	cp := make([]byte, len(body))
	copy(cp, body)

	m.mu.Lock()
	m.objects[key] = object{contentType: contentType, body: cp}
	m.mu.Unlock()

	return m.baseURL + "/" + key, nil
}

func (m *MemoryStore) Get(_ context.Context, key string) ([]byte, string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	obj, ok := m.objects[key]
	if !ok {
		return nil, "", ErrObjectNotFound
	}
	return obj.body, obj.contentType, nil
}
