package storage

import (
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SchemaVersion is bumped on any change to the persisted snapshot layout.
// A mismatch against the stored marker wipes every slot and collaborator
// table and reseeds from fixtures. Blunt, but the snapshots carry no
// migration metadata.
const SchemaVersion = "3"

const versionKey = "schema_version"

// Slot is one durable key-value record. Collections are stored as a single
// JSON document per key.
type Slot struct {
	Key       string    `gorm:"type:varchar(100);primaryKey"`
	Value     string    `gorm:"type:jsonb;not null"`
	UpdatedAt time.Time
}

func (Slot) TableName() string { return "storage_slots" }

// SlotReadWriter is the narrow surface stores persist through.
type SlotReadWriter interface {
	Read(key string) ([]byte, error)
	Write(key string, value []byte) error
}

// ErrSlotNotFound is returned when a key has never been written.
var ErrSlotNotFound = errors.New("storage slot not found")

// SlotStore persists slots in a single Postgres table.
type SlotStore struct {
	db *gorm.DB
}

func NewSlotStore(db *gorm.DB) *SlotStore {
	return &SlotStore{db: db}
}

func (s *SlotStore) Read(key string) ([]byte, error) {
	var slot Slot
	if err := s.db.First(&slot, "key = ?", key).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSlotNotFound
		}
		return nil, err
	}
	return []byte(slot.Value), nil
}

func (s *SlotStore) Write(key string, value []byte) error {
	slot := Slot{Key: key, Value: string(value), UpdatedAt: time.Now()}
	return s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&slot).Error
}

func (s *SlotStore) Delete(key string) error {
	return s.db.Delete(&Slot{}, "key = ?", key).Error
}

// WipeAll drops every slot, including the version marker.
func (s *SlotStore) WipeAll() error {
	return s.db.Where("1 = 1").Delete(&Slot{}).Error
}

// CheckSchemaVersion compares the stored marker with the current version.
// On mismatch it wipes all slots, runs the supplied reset (which truncates
// collaborator tables and reseeds fixtures) and records the new marker.
// It reports whether a wipe happened.
func (s *SlotStore) CheckSchemaVersion(reset func() error) (bool, error) {
	stored, err := s.Read(versionKey)
	if err == nil && string(stored) == `"`+SchemaVersion+`"` {
		return false, nil
	}
	if err != nil && !errors.Is(err, ErrSlotNotFound) {
		return false, err
	}

	if err := s.WipeAll(); err != nil {
		return false, err
	}
	if reset != nil {
		if err := reset(); err != nil {
			return false, err
		}
	}
	if err := s.Write(versionKey, []byte(`"`+SchemaVersion+`"`)); err != nil {
		return false, err
	}
	return true, nil
}
