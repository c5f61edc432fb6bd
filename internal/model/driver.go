package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Driver represents a courier that can be assigned to delivery requests.
type Driver struct {
	ID        uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name      string         `gorm:"type:varchar(255);not null" json:"name"`
	Phone     string         `gorm:"type:varchar(50);not null" json:"phone"`
	Avatar    string         `gorm:"type:text" json:"avatar"`
	Vehicle   string         `gorm:"type:varchar(100)" json:"vehicle"`
	Plate     string         `gorm:"type:varchar(20)" json:"plate"`
	IsActive  bool           `gorm:"default:true" json:"is_active"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
