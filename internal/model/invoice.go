package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InvoiceStatus enum constants
const (
	InvoiceStatusOpen   = "OPEN"
	InvoiceStatusClosed = "CLOSED"
)

// Invoice accumulates completed deliveries for an invoiced customer. At most
// one OPEN invoice exists per customer; the billing bridge appends items to it
// and closing it freezes the totals.
type Invoice struct {
	ID          uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	InvoiceNo   string          `gorm:"type:varchar(30);uniqueIndex;not null" json:"invoice_no"`
	CustomerID  uuid.UUID       `gorm:"type:uuid;not null;index" json:"customer_id"`
	Customer    *Customer       `gorm:"foreignKey:CustomerID" json:"customer,omitempty"`
	Status      string          `gorm:"type:varchar(20);not null;default:'OPEN';index" json:"status"` // OPEN, CLOSED
	Items       []InvoiceItem   `gorm:"foreignKey:InvoiceID;constraint:OnDelete:CASCADE" json:"items"`
	TotalFees   decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0" json:"total_fees"`
	TotalExtras decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0" json:"total_extras"`
	TotalPass   decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0" json:"total_pass"`
	TotalAmount decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0" json:"total_amount"` // fees + extras
	ClosedAt    *time.Time      `json:"closed_at"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// InvoiceItem is one completed delivery attached to an invoice. The
// reconciliation breakdown is carried as raw jsonb so the item keeps whatever
// level of detail the operator recorded at completion.
type InvoiceItem struct {
	ID             uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	InvoiceID      uuid.UUID       `gorm:"type:uuid;not null;index" json:"invoice_id"`
	RequestID      string          `gorm:"type:varchar(64);not null;index" json:"request_id"`
	RequestCode    string          `gorm:"type:varchar(30);not null" json:"request_code"`
	Description    string          `gorm:"type:text" json:"description"`
	FeeAmount      decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0" json:"fee_amount"`
	ExtraAmount    decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0" json:"extra_amount"`
	PassAmount     decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0" json:"pass_amount"`
	Reconciliation json.RawMessage `gorm:"type:jsonb" json:"reconciliation,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
}
