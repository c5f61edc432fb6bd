package storage

import (
	"encoding/json"
	"errors"
	"log"
	"sync"

	"backoffice/internal/model"
)

const requestsKey = "solicitacoes"

// RequestStore owns the in-memory delivery-request collection and mirrors it
// into the "solicitacoes" slot after every mutation. The snapshot is the
// source of truth across restarts; date fields round-trip through RFC 3339
// strings and are revived by encoding/json on load.
//
// Snapshot writes are best effort: a failed write is logged and the in-memory
// state stays authoritative for the running session.
type RequestStore struct {
	mu    sync.Mutex
	slots SlotReadWriter
	items []model.DeliveryRequest
}

// NewRequestStore loads the persisted collection. A missing slot yields an
// empty store (the caller decides whether to seed).
func NewRequestStore(slots SlotReadWriter) (*RequestStore, error) {
	s := &RequestStore{slots: slots}

	raw, err := slots.Read(requestsKey)
	if err != nil {
		if errors.Is(err, ErrSlotNotFound) {
			return s, nil
		}
		return nil, err
	}
	if err := json.Unmarshal(raw, &s.items); err != nil {
		return nil, err
	}
	return s, nil
}

// All returns a copy of the collection.
func (s *RequestStore) All() []model.DeliveryRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.DeliveryRequest, len(s.items))
	copy(out, s.items)
	return out
}

// Get returns the request with the given id.
func (s *RequestStore) Get(id string) (model.DeliveryRequest, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.items {
		if r.ID == id {
			return r, true
		}
	}
	return model.DeliveryRequest{}, false
}

// Put inserts the request or replaces the record with the same id, then
// persists the snapshot.
func (s *RequestStore) Put(r model.DeliveryRequest) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.items {
		if s.items[i].ID == r.ID {
			s.items[i] = r
			s.persist()
			return
		}
	}
	s.items = append(s.items, r)
	s.persist()
}

// Remove deletes the request with the given id and reports whether it existed.
func (s *RequestStore) Remove(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.items {
		if s.items[i].ID == id {
			s.items = append(s.items[:i], s.items[i+1:]...)
			s.persist()
			return true
		}
	}
	return false
}

// Count returns the number of stored requests.
func (s *RequestStore) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

// ReplaceAll swaps the whole collection, used by seeding.
func (s *RequestStore) ReplaceAll(items []model.DeliveryRequest) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = make([]model.DeliveryRequest, len(items))
	copy(s.items, items)
	s.persist()
}

// persist writes the snapshot. Caller holds the lock.
func (s *RequestStore) persist() {
	raw, err := json.Marshal(s.items)
	if err != nil {
		log.Printf("request store: snapshot marshal failed: %v", err)
		return
	}
	if err := s.slots.Write(requestsKey, raw); err != nil {
		log.Printf("request store: snapshot write failed: %v", err)
	}
}
