package store

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"
)

// StoreMemory keeps sketches in process memory.
type StoreMemory struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func NewMemoryStore() *StoreMemory {
	return &StoreMemory{objects: map[string][]byte{}}
}

func (s *StoreMemory) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	raw, ok := s.objects[key]
	if !ok {
		return nil, fmt.Errorf("%w", &NotFoundError{key: key})
	}
	return io.NopCloser(bytes.NewReader(raw)), nil
}

func (s *StoreMemory) Put(ctx context.Context, key string, r io.Reader, size int64) error {
	raw, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	if size >= 0 && int64(len(raw)) != size {
		return fmt.Errorf("short write to %s: wrote %d of %d bytes", key, len(raw), size)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[key] = raw
	return nil
}

// Keys lists stored keys, in no particular order.
func (s *StoreMemory) Keys() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	ret := make([]string, 0, len(s.objects))
	for k := range s.objects {
		ret = append(ret, k)
	}
	return ret
}
