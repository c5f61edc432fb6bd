package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// WalletEntryType enum constants
const (
	WalletEntryCredit = "CREDIT"
	WalletEntryDebit  = "DEBIT"
)

// WalletEntry is one immutable movement on a prepaid customer's balance.
type WalletEntry struct {
	ID          uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	CustomerID  uuid.UUID       `gorm:"type:uuid;not null;index" json:"customer_id"`
	Type        string          `gorm:"type:varchar(10);not null" json:"type"` // CREDIT, DEBIT
	Amount      decimal.Decimal `gorm:"type:decimal(18,2);not null" json:"amount"`
	Description string          `gorm:"type:text" json:"description"`
	RequestCode string          `gorm:"type:varchar(30)" json:"request_code"`
	CreatedAt   time.Time       `json:"created_at"`
}
