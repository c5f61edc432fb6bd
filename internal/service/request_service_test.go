package service

import (
	"context"
	"errors"
	"testing"

	"backoffice/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// fakeRequestStore is an in-memory RequestStore for service tests.
type fakeRequestStore struct {
	items []model.DeliveryRequest
	puts  int
}

func (f *fakeRequestStore) All() []model.DeliveryRequest {
	out := make([]model.DeliveryRequest, len(f.items))
	copy(out, f.items)
	return out
}

func (f *fakeRequestStore) Get(id string) (model.DeliveryRequest, bool) {
	for _, r := range f.items {
		if r.ID == id {
			return r, true
		}
	}
	return model.DeliveryRequest{}, false
}

func (f *fakeRequestStore) Put(r model.DeliveryRequest) {
	f.puts++
	for i := range f.items {
		if f.items[i].ID == r.ID {
			f.items[i] = r
			return
		}
	}
	f.items = append(f.items, r)
}

func (f *fakeRequestStore) Remove(id string) bool {
	for i := range f.items {
		if f.items[i].ID == id {
			f.items = append(f.items[:i], f.items[i+1:]...)
			return true
		}
	}
	return false
}

func (f *fakeRequestStore) Count() int { return len(f.items) }

// fakeBillingBridge records the side-effect calls the engine makes.
type fakeBillingBridge struct {
	debits       []model.WalletEntry
	invoiceCalls []model.DeliveryRequest
	debitErr     error
	invoiceErr   error
}

func (f *fakeBillingBridge) Debit(ctx context.Context, entry model.WalletEntry) error {
	f.debits = append(f.debits, entry)
	return f.debitErr
}

func (f *fakeBillingBridge) AddDeliveryToInvoice(ctx context.Context, snapshot model.DeliveryRequest, extraFees []model.ExtraFee, reconciliation model.Reconciliation, methods []model.PaymentMethod, customer model.Customer) error {
	f.invoiceCalls = append(f.invoiceCalls, snapshot)
	return f.invoiceErr
}

func newTestService() (*fakeRequestStore, *fakeBillingBridge, RequestService) {
	store := &fakeRequestStore{}
	bridge := &fakeBillingBridge{}
	return store, bridge, NewRequestService(store, bridge, nil)
}

var testActor = model.Actor{ID: "u-1", Name: "Ana"}

func makeCreateDTO() CreateRequestDTO {
	return CreateRequestDTO{
		CustomerID:   "c-1",
		CustomerName: "Farmácia Central",
		PickupPoint:  "Av. Afonso Pena, 1500",
		Routes: []model.Route{
			{Destination: "Savassi", Fee: decimal.NewFromInt(10), PassThrough: decimal.NewFromInt(30)},
			{Destination: "Centro", Fee: decimal.NewFromFloat(12.5)},
		},
	}
}

func TestCreateRequest(t *testing.T) {
	t.Run("staff originated starts accepted", func(t *testing.T) {
		store, _, svc := newTestService()

		req, err := svc.Create(context.Background(), makeCreateDTO(), true, testActor)
		if err != nil {
			t.Fatalf("Create failed: %v", err)
		}
		if req.Status != model.RequestStatusAceita {
			t.Errorf("expected status %q, got %q", model.RequestStatusAceita, req.Status)
		}
		if store.Count() != 1 {
			t.Errorf("expected 1 stored request, got %d", store.Count())
		}
	})

	t.Run("customer originated starts pending", func(t *testing.T) {
		_, _, svc := newTestService()

		req, err := svc.Create(context.Background(), makeCreateDTO(), false, testActor)
		if err != nil {
			t.Fatalf("Create failed: %v", err)
		}
		if req.Status != model.RequestStatusPendente {
			t.Errorf("expected status %q, got %q", model.RequestStatusPendente, req.Status)
		}
	})

	t.Run("assigns sequential codes", func(t *testing.T) {
		_, _, svc := newTestService()

		first, _ := svc.Create(context.Background(), makeCreateDTO(), true, testActor)
		second, _ := svc.Create(context.Background(), makeCreateDTO(), true, testActor)
		if first.Code != "ENT-00001" {
			t.Errorf("expected code ENT-00001, got %q", first.Code)
		}
		if second.Code != "ENT-00002" {
			t.Errorf("expected code ENT-00002, got %q", second.Code)
		}
	})

	t.Run("totals are the sum of route values", func(t *testing.T) {
		_, _, svc := newTestService()

		req, _ := svc.Create(context.Background(), makeCreateDTO(), true, testActor)
		if !req.TotalFees.Equal(decimal.NewFromFloat(22.5)) {
			t.Errorf("expected total fees 22.5, got %s", req.TotalFees)
		}
		if !req.TotalPass.Equal(decimal.NewFromInt(30)) {
			t.Errorf("expected total pass 30, got %s", req.TotalPass)
		}
	})

	t.Run("records a single creation history entry", func(t *testing.T) {
		_, _, svc := newTestService()

		req, _ := svc.Create(context.Background(), makeCreateDTO(), true, testActor)
		if len(req.History) != 1 {
			t.Fatalf("expected 1 history entry, got %d", len(req.History))
		}
		entry := req.History[0]
		if entry.Action != model.HistoryActionCriada {
			t.Errorf("expected action %q, got %q", model.HistoryActionCriada, entry.Action)
		}
		if entry.ActorID != testActor.ID || entry.ActorName != testActor.Name {
			t.Errorf("history not attributed to actor: %+v", entry)
		}
	})

	t.Run("backfills missing route ids and keeps existing ones", func(t *testing.T) {
		_, _, svc := newTestService()

		dto := makeCreateDTO()
		dto.Routes[0].ID = "route-fixed"
		req, _ := svc.Create(context.Background(), dto, true, testActor)

		if req.Routes[0].ID != "route-fixed" {
			t.Errorf("existing route id replaced: %q", req.Routes[0].ID)
		}
		if req.Routes[1].ID == "" {
			t.Error("missing route id was not backfilled")
		}
	})
}

func TestEditRequest(t *testing.T) {
	t.Run("merges only provided fields", func(t *testing.T) {
		store, _, svc := newTestService()
		req, _ := svc.Create(context.Background(), makeCreateDTO(), true, testActor)

		operation := "Entrega de medicamentos"
		if err := svc.Edit(context.Background(), req.ID, EditRequestDTO{Operation: &operation}, testActor); err != nil {
			t.Fatalf("Edit failed: %v", err)
		}

		got, _ := store.Get(req.ID)
		if got.Operation != operation {
			t.Errorf("operation not updated: %q", got.Operation)
		}
		if got.PickupPoint != req.PickupPoint {
			t.Errorf("untouched field changed: %q", got.PickupPoint)
		}
	})

	t.Run("does not recompute totals when routes change", func(t *testing.T) {
		store, _, svc := newTestService()
		req, _ := svc.Create(context.Background(), makeCreateDTO(), true, testActor)

		newRoutes := []model.Route{{Destination: "Gameleira", Fee: decimal.NewFromInt(99)}}
		if err := svc.Edit(context.Background(), req.ID, EditRequestDTO{Routes: &newRoutes}, testActor); err != nil {
			t.Fatalf("Edit failed: %v", err)
		}

		got, _ := store.Get(req.ID)
		if len(got.Routes) != 1 {
			t.Fatalf("routes not replaced, got %d", len(got.Routes))
		}
		if got.Routes[0].ID == "" {
			t.Error("replacement route id not backfilled")
		}
		if !got.TotalFees.Equal(req.TotalFees) {
			t.Errorf("total fees recomputed: was %s, now %s", req.TotalFees, got.TotalFees)
		}
	})

	t.Run("updates totals only when sent explicitly", func(t *testing.T) {
		store, _, svc := newTestService()
		req, _ := svc.Create(context.Background(), makeCreateDTO(), true, testActor)

		fees := decimal.NewFromInt(77)
		if err := svc.Edit(context.Background(), req.ID, EditRequestDTO{TotalFees: &fees}, testActor); err != nil {
			t.Fatalf("Edit failed: %v", err)
		}

		got, _ := store.Get(req.ID)
		if !got.TotalFees.Equal(fees) {
			t.Errorf("explicit total fees not applied: %s", got.TotalFees)
		}
	})

	t.Run("appends an edit history entry", func(t *testing.T) {
		store, _, svc := newTestService()
		req, _ := svc.Create(context.Background(), makeCreateDTO(), true, testActor)

		if err := svc.Edit(context.Background(), req.ID, EditRequestDTO{}, testActor); err != nil {
			t.Fatalf("Edit failed: %v", err)
		}

		got, _ := store.Get(req.ID)
		if len(got.History) != 2 {
			t.Fatalf("expected 2 history entries, got %d", len(got.History))
		}
		if got.History[1].Action != model.HistoryActionEditada {
			t.Errorf("expected action %q, got %q", model.HistoryActionEditada, got.History[1].Action)
		}
	})

	t.Run("unknown id returns not found and leaves the store alone", func(t *testing.T) {
		store, _, svc := newTestService()
		svc.Create(context.Background(), makeCreateDTO(), true, testActor)
		putsBefore := store.puts

		err := svc.Edit(context.Background(), "missing", EditRequestDTO{}, testActor)
		if !errors.Is(err, model.ErrRequestNotFound) {
			t.Fatalf("expected ErrRequestNotFound, got %v", err)
		}
		if store.puts != putsBefore {
			t.Error("store mutated on unknown id")
		}
	})
}

func TestDeleteRequest(t *testing.T) {
	store, _, svc := newTestService()
	req, _ := svc.Create(context.Background(), makeCreateDTO(), true, testActor)

	if err := svc.Delete(context.Background(), req.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if store.Count() != 0 {
		t.Errorf("expected empty store, got %d items", store.Count())
	}

	if err := svc.Delete(context.Background(), req.ID); !errors.Is(err, model.ErrRequestNotFound) {
		t.Fatalf("expected ErrRequestNotFound on second delete, got %v", err)
	}
}

func prepaidCustomer() *model.Customer {
	return &model.Customer{
		ID:          uuid.New(),
		Name:        "Farmácia Central",
		BillingMode: model.BillingModePrepaid,
	}
}

func invoicedCustomer() *model.Customer {
	return &model.Customer{
		ID:          uuid.New(),
		Name:        "Restaurante Sabor Mineiro",
		BillingMode: model.BillingModeInvoiced,
	}
}

func TestTransitionRequest(t *testing.T) {
	t.Run("completion without customer is refused", func(t *testing.T) {
		store, bridge, svc := newTestService()
		req, _ := svc.Create(context.Background(), makeCreateDTO(), true, testActor)

		err := svc.Transition(context.Background(), req.ID, model.RequestStatusConcluida, testActor, TransitionDetails{})
		if !errors.Is(err, model.ErrCustomerRequired) {
			t.Fatalf("expected ErrCustomerRequired, got %v", err)
		}

		got, _ := store.Get(req.ID)
		if got.Status != model.RequestStatusAceita {
			t.Errorf("status changed despite refused completion: %q", got.Status)
		}
		if len(got.History) != 1 {
			t.Errorf("history grew despite refused completion: %d entries", len(got.History))
		}
		if len(bridge.debits) != 0 || len(bridge.invoiceCalls) != 0 {
			t.Error("billing invoked despite refused completion")
		}
	})

	t.Run("prepaid completion debits the wallet exactly once", func(t *testing.T) {
		store, bridge, svc := newTestService()
		req, _ := svc.Create(context.Background(), makeCreateDTO(), true, testActor)
		customer := prepaidCustomer()

		err := svc.Transition(context.Background(), req.ID, model.RequestStatusConcluida, testActor, TransitionDetails{Customer: customer})
		if err != nil {
			t.Fatalf("Transition failed: %v", err)
		}

		if len(bridge.debits) != 1 {
			t.Fatalf("expected 1 debit, got %d", len(bridge.debits))
		}
		debit := bridge.debits[0]
		if !debit.Amount.Equal(req.TotalFees) {
			t.Errorf("debit amount %s, want %s", debit.Amount, req.TotalFees)
		}
		if debit.CustomerID != customer.ID {
			t.Errorf("debit customer %s, want %s", debit.CustomerID, customer.ID)
		}
		if debit.RequestCode != req.Code {
			t.Errorf("debit request code %q, want %q", debit.RequestCode, req.Code)
		}
		if len(bridge.invoiceCalls) != 0 {
			t.Error("invoice bridge invoked for a prepaid customer")
		}

		got, _ := store.Get(req.ID)
		if got.Status != model.RequestStatusConcluida {
			t.Errorf("status not updated: %q", got.Status)
		}
	})

	t.Run("prepaid completion survives a debit failure", func(t *testing.T) {
		store, bridge, svc := newTestService()
		bridge.debitErr = errors.New("wallet unavailable")
		req, _ := svc.Create(context.Background(), makeCreateDTO(), true, testActor)

		err := svc.Transition(context.Background(), req.ID, model.RequestStatusConcluida, testActor, TransitionDetails{Customer: prepaidCustomer()})
		if err != nil {
			t.Fatalf("Transition failed: %v", err)
		}

		got, _ := store.Get(req.ID)
		if got.Status != model.RequestStatusConcluida {
			t.Errorf("transition rolled back on billing failure: %q", got.Status)
		}
	})

	t.Run("invoiced completion attaches the delivery to the invoice", func(t *testing.T) {
		_, bridge, svc := newTestService()
		req, _ := svc.Create(context.Background(), makeCreateDTO(), true, testActor)

		err := svc.Transition(context.Background(), req.ID, model.RequestStatusConcluida, testActor, TransitionDetails{Customer: invoicedCustomer()})
		if err != nil {
			t.Fatalf("Transition failed: %v", err)
		}

		if len(bridge.invoiceCalls) != 1 {
			t.Fatalf("expected 1 invoice call, got %d", len(bridge.invoiceCalls))
		}
		snapshot := bridge.invoiceCalls[0]
		if snapshot.Status != model.RequestStatusConcluida {
			t.Errorf("snapshot status %q, want %q", snapshot.Status, model.RequestStatusConcluida)
		}
		if len(bridge.debits) != 0 {
			t.Error("wallet debited for an invoiced customer")
		}
	})

	t.Run("non-completion transitions never touch billing", func(t *testing.T) {
		_, bridge, svc := newTestService()
		req, _ := svc.Create(context.Background(), makeCreateDTO(), false, testActor)

		for _, status := range []string{
			model.RequestStatusAceita,
			model.RequestStatusEmAndamento,
			model.RequestStatusCancelada,
		} {
			if err := svc.Transition(context.Background(), req.ID, status, testActor, TransitionDetails{}); err != nil {
				t.Fatalf("Transition to %q failed: %v", status, err)
			}
		}
		if len(bridge.debits) != 0 || len(bridge.invoiceCalls) != 0 {
			t.Error("billing invoked on a non-completion transition")
		}
	})

	t.Run("history action follows the status table", func(t *testing.T) {
		store, _, svc := newTestService()
		req, _ := svc.Create(context.Background(), makeCreateDTO(), false, testActor)

		svc.Transition(context.Background(), req.ID, model.RequestStatusAceita, testActor, TransitionDetails{})
		svc.Transition(context.Background(), req.ID, model.RequestStatusEmAndamento, testActor, TransitionDetails{})
		svc.Transition(context.Background(), req.ID, model.RequestStatusConcluida, testActor, TransitionDetails{Customer: prepaidCustomer()})

		got, _ := store.Get(req.ID)
		want := []string{
			model.HistoryActionCriada,
			model.HistoryActionAceita,
			model.HistoryActionIniciada,
			model.HistoryActionConciliada,
		}
		if len(got.History) != len(want) {
			t.Fatalf("expected %d history entries, got %d", len(want), len(got.History))
		}
		for i, action := range want {
			if got.History[i].Action != action {
				t.Errorf("history[%d] = %q, want %q", i, got.History[i].Action, action)
			}
		}
	})

	t.Run("unmapped status changes the record but appends no history", func(t *testing.T) {
		store, _, svc := newTestService()
		req, _ := svc.Create(context.Background(), makeCreateDTO(), true, testActor)

		if err := svc.Transition(context.Background(), req.ID, "arquivada", testActor, TransitionDetails{}); err != nil {
			t.Fatalf("Transition failed: %v", err)
		}

		got, _ := store.Get(req.ID)
		if got.Status != "arquivada" {
			t.Errorf("status not updated: %q", got.Status)
		}
		if len(got.History) != 1 {
			t.Errorf("history grew for unmapped status: %d entries", len(got.History))
		}
	})

	t.Run("records driver, justification and reconciliation", func(t *testing.T) {
		store, _, svc := newTestService()
		req, _ := svc.Create(context.Background(), makeCreateDTO(), true, testActor)

		driver := &model.Driver{ID: uuid.New(), Name: "João Batista", Avatar: "joao.png"}
		recon := model.Reconciliation{
			"route-1": {FeePayments: []model.PaymentSplit{{Amount: decimal.NewFromInt(10), PaymentMethodID: "pm-1"}}},
		}
		err := svc.Transition(context.Background(), req.ID, model.RequestStatusCancelada, testActor, TransitionDetails{
			Driver:         driver,
			Justification:  "cliente desistiu",
			Reconciliation: recon,
		})
		if err != nil {
			t.Fatalf("Transition failed: %v", err)
		}

		got, _ := store.Get(req.ID)
		if got.DriverID != driver.ID.String() || got.DriverName != driver.Name {
			t.Errorf("driver not recorded: %q %q", got.DriverID, got.DriverName)
		}
		if got.Justification != "cliente desistiu" {
			t.Errorf("justification not recorded: %q", got.Justification)
		}
		if len(got.Reconciliation) != 1 {
			t.Errorf("reconciliation not recorded: %+v", got.Reconciliation)
		}
		if got.History[len(got.History)-1].Detail != "cliente desistiu" {
			t.Errorf("justification missing from history detail: %q", got.History[len(got.History)-1].Detail)
		}
	})

	t.Run("unknown id returns not found", func(t *testing.T) {
		_, bridge, svc := newTestService()

		err := svc.Transition(context.Background(), "missing", model.RequestStatusConcluida, testActor, TransitionDetails{Customer: prepaidCustomer()})
		if !errors.Is(err, model.ErrRequestNotFound) {
			t.Fatalf("expected ErrRequestNotFound, got %v", err)
		}
		if len(bridge.debits) != 0 {
			t.Error("billing invoked for an unknown request")
		}
	})
}

func TestUpdateReconciliation(t *testing.T) {
	store, _, svc := newTestService()
	req, _ := svc.Create(context.Background(), makeCreateDTO(), true, testActor)

	recon := model.Reconciliation{
		"route-1": {PassPayments: []model.PaymentSplit{{Amount: decimal.NewFromInt(30), PaymentMethodID: "pm-2"}}},
	}
	if err := svc.UpdateReconciliation(context.Background(), req.ID, recon); err != nil {
		t.Fatalf("UpdateReconciliation failed: %v", err)
	}

	got, _ := store.Get(req.ID)
	if len(got.Reconciliation) != 1 {
		t.Fatalf("reconciliation not stored: %+v", got.Reconciliation)
	}
	if len(got.History) != 1 {
		t.Errorf("reconciliation update appended history: %d entries", len(got.History))
	}

	if err := svc.UpdateReconciliation(context.Background(), "missing", recon); !errors.Is(err, model.ErrRequestNotFound) {
		t.Fatalf("expected ErrRequestNotFound, got %v", err)
	}
}

func TestListRequests(t *testing.T) {
	_, _, svc := newTestService()
	for i := 0; i < 5; i++ {
		svc.Create(context.Background(), makeCreateDTO(), true, testActor)
	}
	svc.Create(context.Background(), makeCreateDTO(), false, testActor)

	t.Run("filters by status", func(t *testing.T) {
		items, total := svc.List(context.Background(), model.RequestStatusPendente, 1, 20)
		if total != 1 || len(items) != 1 {
			t.Fatalf("expected 1 pending request, got %d (total %d)", len(items), total)
		}
	})

	t.Run("paginates", func(t *testing.T) {
		items, total := svc.List(context.Background(), "", 2, 4)
		if total != 6 {
			t.Errorf("expected total 6, got %d", total)
		}
		if len(items) != 2 {
			t.Errorf("expected 2 items on page 2, got %d", len(items))
		}
	})

	t.Run("out of range page is empty", func(t *testing.T) {
		items, total := svc.List(context.Background(), "", 9, 4)
		if total != 6 || len(items) != 0 {
			t.Errorf("expected empty page with total 6, got %d items (total %d)", len(items), total)
		}
	})
}
