package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// BillingMode enum constants
const (
	BillingModePrepaid  = "PREPAID"  // wallet debited on completion
	BillingModeInvoiced = "INVOICED" // charges accumulate on the open invoice
)

// Customer represents a billing party that originates delivery requests.
type Customer struct {
	ID            uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name          string          `gorm:"type:varchar(255);not null" json:"name"`
	CompanyName   string          `gorm:"type:varchar(255)" json:"company_name"`
	TaxCode       string          `gorm:"type:varchar(50)" json:"tax_code"`
	Phone         string          `gorm:"type:varchar(50)" json:"phone"`
	Email         string          `gorm:"type:varchar(255)" json:"email"`
	Avatar        string          `gorm:"type:text" json:"avatar"`
	BillingMode   string          `gorm:"type:varchar(20);not null;default:'INVOICED';index" json:"billing_mode"` // PREPAID, INVOICED
	WalletBalance decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0" json:"wallet_balance"`
	IsActive      bool            `gorm:"default:true" json:"is_active"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
	DeletedAt     gorm.DeletedAt  `gorm:"index" json:"-"`
}
