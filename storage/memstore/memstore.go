// Package memstore implements the reference in-memory Storage backend:
// a single map guarded by a readers-writer lock, exactly the shared-
// resource policy the SCIM core's concurrency model calls for (get/list/
// count take the reader side, put/delete take the writer side).
package memstore

import (
	"context"
	"encoding/json"
	"sort"
	"strings"
	"sync"

	"github.com/xraph/scimcore/storage"
)

type entry struct {
	key   storage.Key
	value []byte
}

// Store is the in-memory Storage implementation.
type Store struct {
	mu   sync.RWMutex
	data map[storage.Key]entry
}

// New creates an empty Store.
func New() *Store {
	return &Store{data: make(map[storage.Key]entry)}
}

var _ storage.Storage = (*Store)(nil)

func (s *Store) Get(_ context.Context, key storage.Key) ([]byte, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.data[key]
	if !ok {
		return nil, false, nil
	}
	out := make([]byte, len(e.value))
	copy(out, e.value)
	return out, true, nil
}

func (s *Store) Put(_ context.Context, key storage.Key, value []byte) ([]byte, error) {
	stored := make([]byte, len(value))
	copy(stored, value)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = entry{key: key, value: stored}
	return stored, nil
}

func (s *Store) Delete(_ context.Context, key storage.Key) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.data[key]; !ok {
		return false, nil
	}
	delete(s.data, key)
	return true, nil
}

func (s *Store) Exists(_ context.Context, key storage.Key) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.data[key]
	return ok, nil
}

func (s *Store) matchingPrefix(prefix storage.Prefix) []entry {
	out := make([]entry, 0)
	for k, e := range s.data {
		if k.TenantID == prefix.TenantID && k.ResourceType == prefix.ResourceType {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].key.ResourceID < out[j].key.ResourceID })
	return out
}

func (s *Store) List(_ context.Context, prefix storage.Prefix, offset, limit int) ([]storage.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	matches := s.matchingPrefix(prefix)
	if offset < 0 {
		offset = 0
	}
	if offset > len(matches) {
		offset = len(matches)
	}
	end := len(matches)
	if limit >= 0 && offset+limit < end {
		end = offset + limit
	}
	out := make([]storage.Record, 0, end-offset)
	for _, e := range matches[offset:end] {
		v := make([]byte, len(e.value))
		copy(v, e.value)
		out = append(out, storage.Record{Key: e.key, Value: v})
	}
	return out, nil
}

func (s *Store) FindByAttribute(_ context.Context, prefix storage.Prefix, attribute, value string) ([]storage.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []storage.Record
	for _, e := range s.matchingPrefix(prefix) {
		var doc map[string]any
		if err := json.Unmarshal(e.value, &doc); err != nil {
			continue
		}
		if matchesAttribute(doc, attribute, value) {
			v := make([]byte, len(e.value))
			copy(v, e.value)
			out = append(out, storage.Record{Key: e.key, Value: v})
		}
	}
	return out, nil
}

// matchesAttribute resolves a dotted attribute path against a decoded
// document and compares it against value as a string.
func matchesAttribute(doc map[string]any, attribute, value string) bool {
	parts := strings.Split(attribute, ".")
	var cur any = doc
	for _, p := range parts {
		m, ok := cur.(map[string]any)
		if !ok {
			return false
		}
		cur, ok = m[p]
		if !ok {
			return false
		}
	}
	str, ok := cur.(string)
	return ok && str == value
}

func (s *Store) Count(_ context.Context, prefix storage.Prefix) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.matchingPrefix(prefix)), nil
}
