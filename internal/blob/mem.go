package blob

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sort"
	"sync"
)

// Mem is an in-memory bucket for tests and small fixtures.
type Mem struct {
	mu      sync.RWMutex
	objects map[string][]byte
}

var _ Bucket = (*Mem)(nil)

// NewMem returns an empty bucket.
func NewMem() *Mem {
	return &Mem{objects: make(map[string][]byte)}
}

// Put stores a copy of data under key.
func (m *Mem) Put(key string, data []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = bytes.Clone(data)
}

// Keys lists stored keys in order.
func (m *Mem) Keys() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	keys := make([]string, 0, len(m.objects))
	for k := range m.objects {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Open returns a reader over the stored bytes.
func (m *Mem) Open(_ context.Context, key string) (io.ReadCloser, error) {
	m.mu.RLock()
	data, ok := m.objects[key]
	m.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

// Create buffers writes and stores them on Close.
func (m *Mem) Create(_ context.Context, key string) (io.WriteCloser, error) {
	return &memWriter{bucket: m, key: key}, nil
}

// URL returns "mem://".
func (m *Mem) URL() string {
	return "mem://"
}

// Close is a no-op.
func (m *Mem) Close() error {
	return nil
}

type memWriter struct {
	bytes.Buffer
	bucket *Mem
	key    string
}

func (w *memWriter) Close() error {
	w.bucket.Put(w.key, w.Bytes())
	return nil
}
