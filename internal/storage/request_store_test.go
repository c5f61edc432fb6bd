package storage

import (
	"errors"
	"testing"
	"time"

	"backoffice/internal/model"

	"github.com/shopspring/decimal"
)

// memorySlots is an in-memory SlotReadWriter.
type memorySlots struct {
	data   map[string][]byte
	writes int
	fail   bool
}

func newMemorySlots() *memorySlots {
	return &memorySlots{data: make(map[string][]byte)}
}

func (m *memorySlots) Read(key string) ([]byte, error) {
	raw, ok := m.data[key]
	if !ok {
		return nil, ErrSlotNotFound
	}
	return raw, nil
}

func (m *memorySlots) Write(key string, value []byte) error {
	if m.fail {
		return errors.New("slot write failed")
	}
	m.writes++
	m.data[key] = value
	return nil
}

func sampleRequest(id string) model.DeliveryRequest {
	created := time.Date(2026, 8, 12, 14, 30, 0, 0, time.UTC)
	return model.DeliveryRequest{
		ID:           id,
		Code:         "ENT-00001",
		CustomerID:   "c-1",
		CustomerName: "Farmácia Central",
		Status:       model.RequestStatusAceita,
		CreatedAt:    created,
		PickupPoint:  "Av. Afonso Pena, 1500",
		Routes: []model.Route{
			{ID: "r-1", Destination: "Savassi", Fee: decimal.NewFromInt(12)},
		},
		TotalFees: decimal.NewFromInt(12),
		History: []model.HistoryItem{
			{ID: "h-1", Date: created, Action: model.HistoryActionCriada, ActorID: "u-1", ActorName: "Ana"},
		},
	}
}

func TestRequestStoreRoundTrip(t *testing.T) {
	slots := newMemorySlots()

	store, err := NewRequestStore(slots)
	if err != nil {
		t.Fatalf("NewRequestStore failed: %v", err)
	}
	original := sampleRequest("req-1")
	store.Put(original)

	// A fresh store must see exactly what was persisted.
	reloaded, err := NewRequestStore(slots)
	if err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	got, ok := reloaded.Get("req-1")
	if !ok {
		t.Fatal("request lost across reload")
	}

	if !got.CreatedAt.Equal(original.CreatedAt) {
		t.Errorf("creation date changed across round trip: %s vs %s", got.CreatedAt, original.CreatedAt)
	}
	if !got.History[0].Date.Equal(original.History[0].Date) {
		t.Errorf("history date changed across round trip: %s vs %s", got.History[0].Date, original.History[0].Date)
	}
	if !got.TotalFees.Equal(original.TotalFees) {
		t.Errorf("total fees changed across round trip: %s", got.TotalFees)
	}
	if got.Code != original.Code || got.Status != original.Status {
		t.Errorf("fields changed across round trip: %+v", got)
	}
}

func TestRequestStoreMissingSlot(t *testing.T) {
	store, err := NewRequestStore(newMemorySlots())
	if err != nil {
		t.Fatalf("NewRequestStore failed: %v", err)
	}
	if store.Count() != 0 {
		t.Errorf("expected empty store, got %d items", store.Count())
	}
}

func TestRequestStorePersistsEveryMutation(t *testing.T) {
	slots := newMemorySlots()
	store, _ := NewRequestStore(slots)

	store.Put(sampleRequest("a"))
	store.Put(sampleRequest("b"))
	store.Remove("a")
	store.ReplaceAll([]model.DeliveryRequest{sampleRequest("c")})

	if slots.writes != 4 {
		t.Errorf("expected 4 snapshot writes, got %d", slots.writes)
	}
	if store.Count() != 1 {
		t.Errorf("expected 1 item after ReplaceAll, got %d", store.Count())
	}
}

func TestRequestStoreWriteFailureKeepsMemoryState(t *testing.T) {
	slots := newMemorySlots()
	store, _ := NewRequestStore(slots)

	slots.fail = true
	store.Put(sampleRequest("req-1"))

	if _, ok := store.Get("req-1"); !ok {
		t.Error("in-memory state lost after snapshot write failure")
	}
}

func TestRequestStoreRemoveUnknown(t *testing.T) {
	store, _ := NewRequestStore(newMemorySlots())
	if store.Remove("missing") {
		t.Error("Remove reported success for an unknown id")
	}
}
