package service

import (
	"context"
	"strings"
	"testing"

	"backoffice/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// passthroughTx runs the function without a real transaction.
type passthroughTx struct{}

func (passthroughTx) RunInTx(ctx context.Context, fn func(txCtx context.Context) error) error {
	return fn(ctx)
}

type fakeInvoiceRepo struct {
	invoices map[uuid.UUID]*model.Invoice
	items    []model.InvoiceItem
}

func newFakeInvoiceRepo() *fakeInvoiceRepo {
	return &fakeInvoiceRepo{invoices: make(map[uuid.UUID]*model.Invoice)}
}

func (f *fakeInvoiceRepo) Create(ctx context.Context, invoice *model.Invoice) error {
	cp := *invoice
	f.invoices[invoice.ID] = &cp
	return nil
}

func (f *fakeInvoiceRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Invoice, error) {
	invoice, ok := f.invoices[id]
	if !ok {
		return nil, model.ErrInvoiceNotFound
	}
	cp := *invoice
	return &cp, nil
}

func (f *fakeInvoiceRepo) FindOpenByCustomer(ctx context.Context, customerID uuid.UUID) (*model.Invoice, error) {
	for _, invoice := range f.invoices {
		if invoice.CustomerID == customerID && invoice.Status == model.InvoiceStatusOpen {
			cp := *invoice
			return &cp, nil
		}
	}
	return nil, model.ErrInvoiceNotFound
}

func (f *fakeInvoiceRepo) AddItem(ctx context.Context, item *model.InvoiceItem) error {
	f.items = append(f.items, *item)
	return nil
}

func (f *fakeInvoiceRepo) Update(ctx context.Context, invoice *model.Invoice) error {
	cp := *invoice
	f.invoices[invoice.ID] = &cp
	return nil
}

func (f *fakeInvoiceRepo) List(ctx context.Context, status, customerID string, page, limit int) ([]model.Invoice, int64, error) {
	var out []model.Invoice
	for _, invoice := range f.invoices {
		if status != "" && invoice.Status != status {
			continue
		}
		out = append(out, *invoice)
	}
	return out, int64(len(out)), nil
}

func (f *fakeInvoiceRepo) CountByPrefix(ctx context.Context, prefix string) (int64, error) {
	var count int64
	for _, invoice := range f.invoices {
		if strings.HasPrefix(invoice.InvoiceNo, prefix) {
			count++
		}
	}
	return count, nil
}

type fakeWalletRepo struct {
	entries []model.WalletEntry
}

func (f *fakeWalletRepo) CreateEntry(ctx context.Context, entry *model.WalletEntry) error {
	f.entries = append(f.entries, *entry)
	return nil
}

func (f *fakeWalletRepo) ListByCustomer(ctx context.Context, customerID uuid.UUID, page, limit int) ([]model.WalletEntry, int64, error) {
	var out []model.WalletEntry
	for _, e := range f.entries {
		if e.CustomerID == customerID {
			out = append(out, e)
		}
	}
	return out, int64(len(out)), nil
}

type fakeCustomerRepo struct {
	customers map[uuid.UUID]*model.Customer
	balances  map[uuid.UUID]decimal.Decimal
}

func newFakeCustomerRepo() *fakeCustomerRepo {
	return &fakeCustomerRepo{
		customers: make(map[uuid.UUID]*model.Customer),
		balances:  make(map[uuid.UUID]decimal.Decimal),
	}
}

func (f *fakeCustomerRepo) Create(ctx context.Context, customer *model.Customer) error {
	f.customers[customer.ID] = customer
	return nil
}

func (f *fakeCustomerRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Customer, error) {
	customer, ok := f.customers[id]
	if !ok {
		return nil, model.ErrCustomerNotFound
	}
	return customer, nil
}

func (f *fakeCustomerRepo) List(ctx context.Context, billingMode string, page, limit int) ([]model.Customer, int64, error) {
	return nil, 0, nil
}

func (f *fakeCustomerRepo) Update(ctx context.Context, customer *model.Customer) error {
	f.customers[customer.ID] = customer
	return nil
}

func (f *fakeCustomerRepo) AdjustBalance(ctx context.Context, id uuid.UUID, delta decimal.Decimal) error {
	f.balances[id] = f.balances[id].Add(delta)
	return nil
}

type fakeCatalogRepo struct {
	methods []model.PaymentMethod
	fees    []model.ExtraFee
}

func (f *fakeCatalogRepo) ListPaymentMethods(ctx context.Context) ([]model.PaymentMethod, error) {
	return f.methods, nil
}

func (f *fakeCatalogRepo) ListExtraFees(ctx context.Context) ([]model.ExtraFee, error) {
	return f.fees, nil
}

func (f *fakeCatalogRepo) FindPaymentMethods(ctx context.Context, ids []string) ([]model.PaymentMethod, error) {
	return f.methods, nil
}

func (f *fakeCatalogRepo) FindExtraFees(ctx context.Context, ids []string) ([]model.ExtraFee, error) {
	return f.fees, nil
}

func newTestBilling() (*fakeInvoiceRepo, *fakeWalletRepo, *fakeCustomerRepo, BillingService) {
	invoices := newFakeInvoiceRepo()
	wallet := &fakeWalletRepo{}
	customers := newFakeCustomerRepo()
	svc := NewBillingService(invoices, wallet, customers, &fakeCatalogRepo{}, passthroughTx{})
	return invoices, wallet, customers, svc
}

func completedSnapshot() model.DeliveryRequest {
	return model.DeliveryRequest{
		ID:             uuid.New().String(),
		Code:           "ENT-00042",
		Status:         model.RequestStatusConcluida,
		Operation:      "Entrega de marmitas",
		TotalFees:      decimal.NewFromInt(40),
		TotalPass:      decimal.NewFromInt(15),
		TotalExtraFees: decimal.NewFromInt(5),
	}
}

func TestDebit(t *testing.T) {
	_, wallet, customers, svc := newTestBilling()
	customerID := uuid.New()

	entry := model.WalletEntry{
		CustomerID:  customerID,
		Amount:      decimal.NewFromInt(25),
		Description: "Entrega ENT-00001 - Farmácia Central",
		RequestCode: "ENT-00001",
	}
	if err := svc.Debit(context.Background(), entry); err != nil {
		t.Fatalf("Debit failed: %v", err)
	}

	if len(wallet.entries) != 1 {
		t.Fatalf("expected 1 wallet entry, got %d", len(wallet.entries))
	}
	recorded := wallet.entries[0]
	if recorded.Type != model.WalletEntryDebit {
		t.Errorf("entry type %q, want %q", recorded.Type, model.WalletEntryDebit)
	}
	if recorded.ID == uuid.Nil {
		t.Error("entry id not assigned")
	}
	if !customers.balances[customerID].Equal(decimal.NewFromInt(-25)) {
		t.Errorf("balance delta %s, want -25", customers.balances[customerID])
	}
}

func TestAddDeliveryToInvoice(t *testing.T) {
	t.Run("opens an invoice when none exists", func(t *testing.T) {
		invoices, _, _, svc := newTestBilling()
		customer := model.Customer{ID: uuid.New(), Name: "Sabor Mineiro", BillingMode: model.BillingModeInvoiced}

		err := svc.AddDeliveryToInvoice(context.Background(), completedSnapshot(), nil, nil, nil, customer)
		if err != nil {
			t.Fatalf("AddDeliveryToInvoice failed: %v", err)
		}

		if len(invoices.invoices) != 1 {
			t.Fatalf("expected 1 invoice, got %d", len(invoices.invoices))
		}
		for _, invoice := range invoices.invoices {
			if invoice.Status != model.InvoiceStatusOpen {
				t.Errorf("invoice status %q, want OPEN", invoice.Status)
			}
			if !strings.HasPrefix(invoice.InvoiceNo, "INV-") {
				t.Errorf("unexpected invoice number %q", invoice.InvoiceNo)
			}
			if !invoice.TotalAmount.Equal(decimal.NewFromInt(45)) {
				t.Errorf("total amount %s, want 45 (fees + extras)", invoice.TotalAmount)
			}
			if !invoice.TotalPass.Equal(decimal.NewFromInt(15)) {
				t.Errorf("total pass %s, want 15", invoice.TotalPass)
			}
		}
		if len(invoices.items) != 1 {
			t.Fatalf("expected 1 invoice item, got %d", len(invoices.items))
		}
		item := invoices.items[0]
		if item.RequestCode != "ENT-00042" {
			t.Errorf("item request code %q", item.RequestCode)
		}
		if !item.ExtraAmount.Equal(decimal.NewFromInt(5)) {
			t.Errorf("item extra amount %s, want snapshot total 5", item.ExtraAmount)
		}
	})

	t.Run("appends to the existing open invoice", func(t *testing.T) {
		invoices, _, _, svc := newTestBilling()
		customer := model.Customer{ID: uuid.New(), Name: "Sabor Mineiro", BillingMode: model.BillingModeInvoiced}

		if err := svc.AddDeliveryToInvoice(context.Background(), completedSnapshot(), nil, nil, nil, customer); err != nil {
			t.Fatalf("first attach failed: %v", err)
		}
		if err := svc.AddDeliveryToInvoice(context.Background(), completedSnapshot(), nil, nil, nil, customer); err != nil {
			t.Fatalf("second attach failed: %v", err)
		}

		if len(invoices.invoices) != 1 {
			t.Fatalf("expected a single open invoice, got %d", len(invoices.invoices))
		}
		if len(invoices.items) != 2 {
			t.Fatalf("expected 2 items, got %d", len(invoices.items))
		}
		for _, invoice := range invoices.invoices {
			if !invoice.TotalAmount.Equal(decimal.NewFromInt(90)) {
				t.Errorf("accumulated total %s, want 90", invoice.TotalAmount)
			}
		}
	})

	t.Run("resolved extra fees override the snapshot total", func(t *testing.T) {
		invoices, _, _, svc := newTestBilling()
		customer := model.Customer{ID: uuid.New(), Name: "Ótica Visão", BillingMode: model.BillingModeInvoiced}
		fees := []model.ExtraFee{
			{ID: uuid.New(), Name: "Retorno", Amount: decimal.NewFromInt(5)},
			{ID: uuid.New(), Name: "Espera", Amount: decimal.NewFromFloat(3.5)},
		}

		if err := svc.AddDeliveryToInvoice(context.Background(), completedSnapshot(), fees, nil, nil, customer); err != nil {
			t.Fatalf("AddDeliveryToInvoice failed: %v", err)
		}

		if !invoices.items[0].ExtraAmount.Equal(decimal.NewFromFloat(8.5)) {
			t.Errorf("item extra amount %s, want 8.5", invoices.items[0].ExtraAmount)
		}
	})

	t.Run("payment method names land in the description", func(t *testing.T) {
		invoices, _, _, svc := newTestBilling()
		customer := model.Customer{ID: uuid.New(), Name: "Sabor Mineiro", BillingMode: model.BillingModeInvoiced}
		methods := []model.PaymentMethod{{ID: uuid.New(), Name: "Pix"}, {ID: uuid.New(), Name: "Dinheiro"}}

		if err := svc.AddDeliveryToInvoice(context.Background(), completedSnapshot(), nil, nil, methods, customer); err != nil {
			t.Fatalf("AddDeliveryToInvoice failed: %v", err)
		}

		if got := invoices.items[0].Description; !strings.Contains(got, "[Pix, Dinheiro]") {
			t.Errorf("description %q missing method names", got)
		}
	})

	t.Run("reconciliation is carried on the item", func(t *testing.T) {
		invoices, _, _, svc := newTestBilling()
		customer := model.Customer{ID: uuid.New(), Name: "Sabor Mineiro", BillingMode: model.BillingModeInvoiced}
		recon := model.Reconciliation{
			"route-1": {FeePayments: []model.PaymentSplit{{Amount: decimal.NewFromInt(40), PaymentMethodID: "pm-1"}}},
		}

		if err := svc.AddDeliveryToInvoice(context.Background(), completedSnapshot(), nil, recon, nil, customer); err != nil {
			t.Fatalf("AddDeliveryToInvoice failed: %v", err)
		}

		if len(invoices.items[0].Reconciliation) == 0 {
			t.Error("reconciliation not serialized onto the item")
		}
	})
}

func TestTopUp(t *testing.T) {
	_, wallet, customers, svc := newTestBilling()
	customer := &model.Customer{ID: uuid.New(), Name: "Farmácia Central", BillingMode: model.BillingModePrepaid}
	customers.customers[customer.ID] = customer

	t.Run("credits the wallet", func(t *testing.T) {
		entry, err := svc.TopUp(context.Background(), customer.ID.String(), decimal.NewFromInt(100), "recarga")
		if err != nil {
			t.Fatalf("TopUp failed: %v", err)
		}
		if entry.Type != model.WalletEntryCredit {
			t.Errorf("entry type %q, want %q", entry.Type, model.WalletEntryCredit)
		}
		if len(wallet.entries) != 1 {
			t.Fatalf("expected 1 wallet entry, got %d", len(wallet.entries))
		}
		if !customers.balances[customer.ID].Equal(decimal.NewFromInt(100)) {
			t.Errorf("balance delta %s, want 100", customers.balances[customer.ID])
		}
	})

	t.Run("rejects non-positive amounts", func(t *testing.T) {
		if _, err := svc.TopUp(context.Background(), customer.ID.String(), decimal.Zero, ""); err == nil {
			t.Error("expected error for zero amount")
		}
	})

	t.Run("rejects unknown customers", func(t *testing.T) {
		if _, err := svc.TopUp(context.Background(), uuid.New().String(), decimal.NewFromInt(10), ""); err == nil {
			t.Error("expected error for unknown customer")
		}
	})
}

func TestCloseInvoice(t *testing.T) {
	invoices, _, _, svc := newTestBilling()
	customer := model.Customer{ID: uuid.New(), Name: "Sabor Mineiro", BillingMode: model.BillingModeInvoiced}
	if err := svc.AddDeliveryToInvoice(context.Background(), completedSnapshot(), nil, nil, nil, customer); err != nil {
		t.Fatalf("setup failed: %v", err)
	}

	var invoiceID uuid.UUID
	for id := range invoices.invoices {
		invoiceID = id
	}

	closed, err := svc.CloseInvoice(context.Background(), invoiceID.String())
	if err != nil {
		t.Fatalf("CloseInvoice failed: %v", err)
	}
	if closed.Status != model.InvoiceStatusClosed {
		t.Errorf("status %q, want CLOSED", closed.Status)
	}
	if closed.ClosedAt == nil {
		t.Error("closed timestamp not set")
	}

	if _, err := svc.CloseInvoice(context.Background(), invoiceID.String()); err != model.ErrInvoiceClosed {
		t.Fatalf("expected ErrInvoiceClosed on second close, got %v", err)
	}
}
