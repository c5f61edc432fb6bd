package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"backoffice/internal/model"
	"backoffice/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BillingService is the ledger/invoice subsystem. It implements the
// BillingBridge contract consumed by the lifecycle engine and exposes the
// invoice and wallet operations the back office needs around it.
type BillingService interface {
	BillingBridge

	TopUp(ctx context.Context, customerID string, amount decimal.Decimal, description string) (*model.WalletEntry, error)
	ListWalletEntries(ctx context.Context, customerID string, page, limit int) ([]model.WalletEntry, int64, error)
	ListInvoices(ctx context.Context, status, customerID string, page, limit int) ([]model.Invoice, int64, error)
	GetInvoice(ctx context.Context, id string) (*model.Invoice, error)
	CloseInvoice(ctx context.Context, id string) (*model.Invoice, error)

	ListPaymentMethods(ctx context.Context) ([]model.PaymentMethod, error)
	ListExtraFees(ctx context.Context) ([]model.ExtraFee, error)
	ResolvePaymentMethods(ctx context.Context, ids []string) ([]model.PaymentMethod, error)
	ResolveExtraFees(ctx context.Context, ids []string) ([]model.ExtraFee, error)
}

type billingService struct {
	invoices  repository.InvoiceRepository
	wallet    repository.WalletRepository
	customers repository.CustomerRepository
	catalog   repository.CatalogRepository
	tx        repository.TransactionManager
}

func NewBillingService(invoices repository.InvoiceRepository, wallet repository.WalletRepository, customers repository.CustomerRepository, catalog repository.CatalogRepository, tx repository.TransactionManager) BillingService {
	return &billingService{
		invoices:  invoices,
		wallet:    wallet,
		customers: customers,
		catalog:   catalog,
		tx:        tx,
	}
}

// --- BillingBridge ---

// Debit records an immediate wallet debit and decrements the customer's
// balance in one transaction. The balance may go negative; prepaid customers
// are reconciled commercially, not blocked mid-delivery.
func (s *billingService) Debit(ctx context.Context, entry model.WalletEntry) error {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	entry.Type = model.WalletEntryDebit

	return s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.wallet.CreateEntry(txCtx, &entry); err != nil {
			return fmt.Errorf("failed to record wallet debit: %w", err)
		}
		if err := s.customers.AdjustBalance(txCtx, entry.CustomerID, entry.Amount.Neg()); err != nil {
			return fmt.Errorf("failed to adjust wallet balance: %w", err)
		}
		return nil
	})
}

// AddDeliveryToInvoice attaches a completed delivery to the customer's open
// invoice, creating one if none exists. Missing extra fees and payment
// methods never block the attachment.
func (s *billingService) AddDeliveryToInvoice(ctx context.Context, snapshot model.DeliveryRequest, extraFees []model.ExtraFee, reconciliation model.Reconciliation, methods []model.PaymentMethod, customer model.Customer) error {
	extraTotal := decimal.Zero
	for _, fee := range extraFees {
		extraTotal = extraTotal.Add(fee.Amount)
	}
	if extraTotal.IsZero() {
		extraTotal = snapshot.TotalExtraFees
	}

	var reconRaw json.RawMessage
	if reconciliation != nil {
		if raw, err := json.Marshal(reconciliation); err == nil {
			reconRaw = raw
		}
	}

	description := snapshot.Operation
	if names := methodNames(methods); names != "" {
		description = strings.TrimSpace(description + " [" + names + "]")
	}

	return s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		invoice, err := s.invoices.FindOpenByCustomer(txCtx, customer.ID)
		if err != nil {
			if err != model.ErrInvoiceNotFound {
				return err
			}
			invoiceNo, numErr := s.generateInvoiceNo(txCtx)
			if numErr != nil {
				return fmt.Errorf("failed to generate invoice number: %w", numErr)
			}
			invoice = &model.Invoice{
				ID:         uuid.New(),
				InvoiceNo:  invoiceNo,
				CustomerID: customer.ID,
				Status:     model.InvoiceStatusOpen,
			}
			if createErr := s.invoices.Create(txCtx, invoice); createErr != nil {
				return fmt.Errorf("failed to open invoice: %w", createErr)
			}
		}

		item := model.InvoiceItem{
			ID:             uuid.New(),
			InvoiceID:      invoice.ID,
			RequestID:      snapshot.ID,
			RequestCode:    snapshot.Code,
			Description:    description,
			FeeAmount:      snapshot.TotalFees,
			ExtraAmount:    extraTotal,
			PassAmount:     snapshot.TotalPass,
			Reconciliation: reconRaw,
		}
		if err := s.invoices.AddItem(txCtx, &item); err != nil {
			return fmt.Errorf("failed to attach delivery to invoice: %w", err)
		}

		invoice.TotalFees = invoice.TotalFees.Add(item.FeeAmount)
		invoice.TotalExtras = invoice.TotalExtras.Add(item.ExtraAmount)
		invoice.TotalPass = invoice.TotalPass.Add(item.PassAmount)
		invoice.TotalAmount = invoice.TotalFees.Add(invoice.TotalExtras)
		if err := s.invoices.Update(txCtx, invoice); err != nil {
			return fmt.Errorf("failed to update invoice totals: %w", err)
		}
		return nil
	})
}

// --- Wallet operations ---

func (s *billingService) TopUp(ctx context.Context, customerID string, amount decimal.Decimal, description string) (*model.WalletEntry, error) {
	id, err := uuid.Parse(customerID)
	if err != nil {
		return nil, fmt.Errorf("invalid customer id: %w", err)
	}
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("top-up amount must be positive")
	}
	if _, err := s.customers.FindByID(ctx, id); err != nil {
		return nil, err
	}

	entry := model.WalletEntry{
		ID:          uuid.New(),
		CustomerID:  id,
		Type:        model.WalletEntryCredit,
		Amount:      amount,
		Description: description,
	}
	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.wallet.CreateEntry(txCtx, &entry); err != nil {
			return fmt.Errorf("failed to record wallet credit: %w", err)
		}
		if err := s.customers.AdjustBalance(txCtx, id, amount); err != nil {
			return fmt.Errorf("failed to adjust wallet balance: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

func (s *billingService) ListWalletEntries(ctx context.Context, customerID string, page, limit int) ([]model.WalletEntry, int64, error) {
	id, err := uuid.Parse(customerID)
	if err != nil {
		return nil, 0, fmt.Errorf("invalid customer id: %w", err)
	}
	return s.wallet.ListByCustomer(ctx, id, page, limit)
}

// --- Invoice operations ---

func (s *billingService) ListInvoices(ctx context.Context, status, customerID string, page, limit int) ([]model.Invoice, int64, error) {
	return s.invoices.List(ctx, status, customerID, page, limit)
}

func (s *billingService) GetInvoice(ctx context.Context, id string) (*model.Invoice, error) {
	invoiceID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("invalid invoice id: %w", err)
	}
	return s.invoices.FindByID(ctx, invoiceID)
}

func (s *billingService) CloseInvoice(ctx context.Context, id string) (*model.Invoice, error) {
	invoiceID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("invalid invoice id: %w", err)
	}

	invoice, err := s.invoices.FindByID(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	if invoice.Status != model.InvoiceStatusOpen {
		return nil, model.ErrInvoiceClosed
	}

	now := time.Now()
	invoice.Status = model.InvoiceStatusClosed
	invoice.ClosedAt = &now
	if err := s.invoices.Update(ctx, invoice); err != nil {
		return nil, fmt.Errorf("failed to close invoice: %w", err)
	}
	return invoice, nil
}

// --- Catalogs ---

func (s *billingService) ListPaymentMethods(ctx context.Context) ([]model.PaymentMethod, error) {
	return s.catalog.ListPaymentMethods(ctx)
}

func (s *billingService) ListExtraFees(ctx context.Context) ([]model.ExtraFee, error) {
	return s.catalog.ListExtraFees(ctx)
}

func (s *billingService) ResolvePaymentMethods(ctx context.Context, ids []string) ([]model.PaymentMethod, error) {
	return s.catalog.FindPaymentMethods(ctx, ids)
}

func (s *billingService) ResolveExtraFees(ctx context.Context, ids []string) ([]model.ExtraFee, error) {
	return s.catalog.FindExtraFees(ctx, ids)
}

// --- Helpers ---

func (s *billingService) generateInvoiceNo(ctx context.Context) (string, error) {
	prefix := "INV-" + time.Now().Format("20060102") + "-"
	count, err := s.invoices.CountByPrefix(ctx, prefix)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s%05d", prefix, count+1), nil
}

func methodNames(methods []model.PaymentMethod) string {
	if len(methods) == 0 {
		return ""
	}
	names := make([]string, 0, len(methods))
	for _, m := range methods {
		names = append(names, m.Name)
	}
	return strings.Join(names, ", ")
}
