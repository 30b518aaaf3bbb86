package repository

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/okian/barberbook/pkg/metrics"
)

const backendMemory = "memory"

type memDoc struct {
	seq  uint64
	body []byte
}

// MemoryStore keeps documents in process memory. Bodies are stored encoded so
// callers never share maps with the store.
type MemoryStore struct {
	mu          sync.RWMutex
	collections map[string]map[string]memDoc
	seq         uint64
	newID       func() string
}

// NewMemoryStore creates an empty store.
func NewMemoryStore(opts ...Option) *MemoryStore {
	s := &MemoryStore{
		collections: make(map[string]map[string]memDoc),
		newID:       uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func observe(op string, start time.Time, err error) {
	metrics.RecordStoreLatency(backendMemory, op, float64(time.Since(start).Microseconds())/1000)
	if err != nil && !errors.Is(err, ErrNotFound) {
		metrics.RecordStoreError(backendMemory, op)
	}
}

// List implements Store.
func (s *MemoryStore) List(ctx context.Context, collection string, filters ...Filter) (out []Record, err error) {
	defer func(start time.Time) { observe("list", start, err) }(time.Now())
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := CheckCollection(collection); err != nil {
		return nil, err
	}

	type entry struct {
		id string
		memDoc
	}
	s.mu.RLock()
	docs := make([]entry, 0, len(s.collections[collection]))
	for id, d := range s.collections[collection] {
		docs = append(docs, entry{id: id, memDoc: d})
	}
	s.mu.RUnlock()
	sort.Slice(docs, func(i, j int) bool { return docs[i].seq < docs[j].seq })

	out = make([]Record, 0, len(docs))
	for _, d := range docs {
		data, err := Decode(d.body)
		if err != nil {
			return nil, err
		}
		if Matches(data, filters) {
			out = append(out, Record{ID: d.id, Data: data})
		}
	}
	return out, nil
}

// Get implements Store.
func (s *MemoryStore) Get(ctx context.Context, collection, id string) (rec Record, err error) {
	defer func(start time.Time) { observe("get", start, err) }(time.Now())
	if err := ctx.Err(); err != nil {
		return Record{}, err
	}

	s.mu.RLock()
	d, ok := s.collections[collection][id]
	s.mu.RUnlock()
	if !ok {
		return Record{}, ErrNotFound
	}
	data, err := Decode(d.body)
	if err != nil {
		return Record{}, err
	}
	return Record{ID: id, Data: data}, nil
}

// Insert implements Store.
func (s *MemoryStore) Insert(ctx context.Context, collection string, data map[string]any) (id string, err error) {
	defer func(start time.Time) { observe("insert", start, err) }(time.Now())
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := CheckCollection(collection); err != nil {
		return "", err
	}
	body, err := Encode(data)
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	id = s.newID()
	s.putLocked(collection, id, body)
	return id, nil
}

// Put implements Store.
func (s *MemoryStore) Put(ctx context.Context, collection, id string, data map[string]any) (err error) {
	defer func(start time.Time) { observe("put", start, err) }(time.Now())
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := CheckCollection(collection); err != nil {
		return err
	}
	body, err := Encode(data)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if d, ok := s.collections[collection][id]; ok {
		s.collections[collection][id] = memDoc{seq: d.seq, body: body}
		return nil
	}
	s.putLocked(collection, id, body)
	return nil
}

// Update implements Store.
func (s *MemoryStore) Update(ctx context.Context, collection, id string, patch map[string]any) (err error) {
	defer func(start time.Time) { observe("update", start, err) }(time.Now())
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.collections[collection][id]
	if !ok {
		return ErrNotFound
	}
	current, err := Decode(d.body)
	if err != nil {
		return err
	}
	body, err := Encode(Merge(current, patch))
	if err != nil {
		return err
	}
	s.collections[collection][id] = memDoc{seq: d.seq, body: body}
	return nil
}

// Delete implements Store.
func (s *MemoryStore) Delete(ctx context.Context, collection, id string) (err error) {
	defer func(start time.Time) { observe("delete", start, err) }(time.Now())
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.collections[collection][id]; !ok {
		return ErrNotFound
	}
	delete(s.collections[collection], id)
	return nil
}

// Close implements Store.
func (s *MemoryStore) Close() error { return nil }

func (s *MemoryStore) putLocked(collection, id string, body []byte) {
	c, ok := s.collections[collection]
	if !ok {
		c = make(map[string]memDoc)
		s.collections[collection] = c
	}
	s.seq++
	c[id] = memDoc{seq: s.seq, body: body}
}
