package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"backoffice/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// --- DTOs ---

type CreateRequestDTO struct {
	CustomerID     string          `json:"customer_id" binding:"required"`
	CustomerName   string          `json:"customer_name" binding:"required"`
	CustomerAvatar string          `json:"customer_avatar"`
	Operation      string          `json:"operation"`
	PickupPoint    string          `json:"pickup_point" binding:"required"`
	Routes         []model.Route   `json:"routes" binding:"required,min=1"`
	TotalExtraFees decimal.Decimal `json:"total_extra_fees"`
}

// EditRequestDTO carries a shallow partial update. Only non-nil fields are
// merged; Routes, when present, replaces the whole list after id backfill.
// Aggregate totals are NOT recomputed from routes here — they only change
// when sent explicitly.
type EditRequestDTO struct {
	Operation      *string          `json:"operation"`
	PickupPoint    *string          `json:"pickup_point"`
	CustomerName   *string          `json:"customer_name"`
	CustomerAvatar *string          `json:"customer_avatar"`
	Routes         *[]model.Route   `json:"routes"`
	TotalFees      *decimal.Decimal `json:"total_fees"`
	TotalPass      *decimal.Decimal `json:"total_pass"`
	TotalExtraFees *decimal.Decimal `json:"total_extra_fees"`
}

// TransitionDetails carries the optional collaborator data a status change
// may bring along. Customer must be resolved by the caller when moving to
// concluida.
type TransitionDetails struct {
	Customer       *model.Customer
	Driver         *model.Driver
	Justification  string
	Reconciliation model.Reconciliation
	ExtraFees      []model.ExtraFee
	PaymentMethods []model.PaymentMethod
}

// --- Collaborator contracts ---

// RequestStore is the authoritative delivery-request collection. Every
// mutating call persists a snapshot as a side effect.
type RequestStore interface {
	All() []model.DeliveryRequest
	Get(id string) (model.DeliveryRequest, bool)
	Put(r model.DeliveryRequest)
	Remove(id string) bool
	Count() int
}

// BillingBridge is the ledger/invoice collaborator invoked when a request
// reaches concluida. Failures never roll the transition back.
type BillingBridge interface {
	Debit(ctx context.Context, entry model.WalletEntry) error
	AddDeliveryToInvoice(ctx context.Context, snapshot model.DeliveryRequest, extraFees []model.ExtraFee, reconciliation model.Reconciliation, methods []model.PaymentMethod, customer model.Customer) error
}

// Broadcaster pushes lifecycle events to connected back-office clients.
type Broadcaster interface {
	GetBroadcast() chan []byte
}

// --- Interface ---

type RequestService interface {
	Create(ctx context.Context, dto CreateRequestDTO, staffOriginated bool, actor model.Actor) (model.DeliveryRequest, error)
	Edit(ctx context.Context, id string, dto EditRequestDTO, actor model.Actor) error
	Delete(ctx context.Context, id string) error
	Transition(ctx context.Context, id, newStatus string, actor model.Actor, details TransitionDetails) error
	UpdateReconciliation(ctx context.Context, id string, data model.Reconciliation) error
	Get(ctx context.Context, id string) (model.DeliveryRequest, error)
	List(ctx context.Context, status string, page, limit int) ([]model.DeliveryRequest, int64)
}

type requestService struct {
	store   RequestStore
	billing BillingBridge
	hub     Broadcaster // optional
	now     func() time.Time
}

func NewRequestService(store RequestStore, billing BillingBridge, hub Broadcaster) RequestService {
	return &requestService{
		store:   store,
		billing: billing,
		hub:     hub,
		now:     time.Now,
	}
}

// --- Implementation ---

func (s *requestService) Create(ctx context.Context, dto CreateRequestDTO, staffOriginated bool, actor model.Actor) (model.DeliveryRequest, error) {
	status := model.RequestStatusPendente
	if staffOriginated {
		status = model.RequestStatusAceita
	}

	routes := backfillRouteIDs(dto.Routes)

	totalFees := decimal.Zero
	totalPass := decimal.Zero
	for _, r := range routes {
		totalFees = totalFees.Add(r.Fee)
		totalPass = totalPass.Add(r.PassThrough)
	}

	req := model.DeliveryRequest{
		ID:             uuid.New().String(),
		Code:           s.nextCode(),
		CustomerID:     dto.CustomerID,
		CustomerName:   dto.CustomerName,
		CustomerAvatar: dto.CustomerAvatar,
		Status:         status,
		CreatedAt:      s.now(),
		Operation:      dto.Operation,
		PickupPoint:    dto.PickupPoint,
		Routes:         routes,
		TotalFees:      totalFees,
		TotalPass:      totalPass,
		TotalExtraFees: dto.TotalExtraFees,
		History: []model.HistoryItem{
			s.historyItem(model.HistoryActionCriada, actor, ""),
		},
	}

	s.store.Put(req)
	s.broadcast("request.created", req)
	return req, nil
}

func (s *requestService) Edit(ctx context.Context, id string, dto EditRequestDTO, actor model.Actor) error {
	req, ok := s.store.Get(id)
	if !ok {
		log.Printf("request service: edit of unknown request %s ignored", id)
		return model.ErrRequestNotFound
	}

	if dto.Operation != nil {
		req.Operation = *dto.Operation
	}
	if dto.PickupPoint != nil {
		req.PickupPoint = *dto.PickupPoint
	}
	if dto.CustomerName != nil {
		req.CustomerName = *dto.CustomerName
	}
	if dto.CustomerAvatar != nil {
		req.CustomerAvatar = *dto.CustomerAvatar
	}
	if dto.Routes != nil {
		req.Routes = backfillRouteIDs(*dto.Routes)
	}
	if dto.TotalFees != nil {
		req.TotalFees = *dto.TotalFees
	}
	if dto.TotalPass != nil {
		req.TotalPass = *dto.TotalPass
	}
	if dto.TotalExtraFees != nil {
		req.TotalExtraFees = *dto.TotalExtraFees
	}

	req.History = append(req.History, s.historyItem(model.HistoryActionEditada, actor, ""))
	s.store.Put(req)
	return nil
}

func (s *requestService) Delete(ctx context.Context, id string) error {
	if !s.store.Remove(id) {
		log.Printf("request service: delete of unknown request %s ignored", id)
		return model.ErrRequestNotFound
	}
	return nil
}

// Transition applies a status change and, when the target is concluida, fires
// the billing side effect first. The billing branch never mutates the store;
// the guard failure (missing customer) blocks the whole transition.
func (s *requestService) Transition(ctx context.Context, id, newStatus string, actor model.Actor, details TransitionDetails) error {
	req, ok := s.store.Get(id)
	if !ok {
		log.Printf("request service: transition of unknown request %s to %s ignored", id, newStatus)
		return model.ErrRequestNotFound
	}

	if newStatus == model.RequestStatusConcluida {
		if details.Customer == nil {
			log.Printf("request service: refusing to complete %s without a resolved customer", req.Code)
			return model.ErrCustomerRequired
		}

		switch details.Customer.BillingMode {
		case model.BillingModePrepaid:
			entry := model.WalletEntry{
				CustomerID:  details.Customer.ID,
				Type:        model.WalletEntryDebit,
				Amount:      req.TotalFees,
				Description: fmt.Sprintf("Entrega %s - %s", req.Code, details.Customer.Name),
				RequestCode: req.Code,
			}
			if err := s.billing.Debit(ctx, entry); err != nil {
				// No compensating transaction: the transition proceeds.
				log.Printf("request service: wallet debit for %s failed: %v", req.Code, err)
			}
		case model.BillingModeInvoiced:
			snapshot := req
			snapshot.Status = model.RequestStatusConcluida
			if details.Reconciliation != nil {
				snapshot.Reconciliation = details.Reconciliation
			}
			extraFees := details.ExtraFees
			if extraFees == nil {
				extraFees = []model.ExtraFee{}
			}
			methods := details.PaymentMethods
			if methods == nil {
				methods = []model.PaymentMethod{}
			}
			if err := s.billing.AddDeliveryToInvoice(ctx, snapshot, extraFees, details.Reconciliation, methods, *details.Customer); err != nil {
				log.Printf("request service: invoice attach for %s failed: %v", req.Code, err)
			}
		}
	}

	req.Status = newStatus
	if action, ok := model.HistoryActionForStatus(newStatus); ok {
		req.History = append(req.History, s.historyItem(action, actor, details.Justification))
	}
	if details.Justification != "" {
		req.Justification = details.Justification
	}
	if details.Driver != nil {
		req.DriverID = details.Driver.ID.String()
		req.DriverName = details.Driver.Name
		req.DriverAvatar = details.Driver.Avatar
	}
	if details.Reconciliation != nil {
		req.Reconciliation = details.Reconciliation
	}

	s.store.Put(req)
	s.broadcast("request.status_changed", req)
	return nil
}

// UpdateReconciliation replaces the reconciliation data without a status
// change or history entry — used while the operator is still editing it.
func (s *requestService) UpdateReconciliation(ctx context.Context, id string, data model.Reconciliation) error {
	req, ok := s.store.Get(id)
	if !ok {
		log.Printf("request service: reconciliation update of unknown request %s ignored", id)
		return model.ErrRequestNotFound
	}
	req.Reconciliation = data
	s.store.Put(req)
	return nil
}

func (s *requestService) Get(ctx context.Context, id string) (model.DeliveryRequest, error) {
	req, ok := s.store.Get(id)
	if !ok {
		return model.DeliveryRequest{}, model.ErrRequestNotFound
	}
	return req, nil
}

func (s *requestService) List(ctx context.Context, status string, page, limit int) ([]model.DeliveryRequest, int64) {
	all := s.store.All()
	filtered := make([]model.DeliveryRequest, 0, len(all))
	for _, r := range all {
		if status == "" || r.Status == status {
			filtered = append(filtered, r)
		}
	}
	total := int64(len(filtered))

	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}
	start := (page - 1) * limit
	if start >= len(filtered) {
		return []model.DeliveryRequest{}, total
	}
	end := start + limit
	if end > len(filtered) {
		end = len(filtered)
	}
	return filtered[start:end], total
}

// --- Helpers ---

func (s *requestService) historyItem(action string, actor model.Actor, detail string) model.HistoryItem {
	return model.HistoryItem{
		ID:        uuid.New().String(),
		Date:      s.now(),
		Action:    action,
		ActorID:   actor.ID,
		ActorName: actor.Name,
		Detail:    detail,
	}
}

// nextCode yields the next sequential human-readable code (ENT-00001, ...).
func (s *requestService) nextCode() string {
	highest := 0
	for _, r := range s.store.All() {
		n, err := strconv.Atoi(strings.TrimPrefix(r.Code, "ENT-"))
		if err == nil && n > highest {
			highest = n
		}
	}
	return fmt.Sprintf("ENT-%05d", highest+1)
}

// backfillRouteIDs assigns a fresh id to any route lacking one. Existing ids
// are kept, so the backfill is idempotent.
func backfillRouteIDs(routes []model.Route) []model.Route {
	out := make([]model.Route, len(routes))
	copy(out, routes)
	for i := range out {
		if out[i].ID == "" {
			out[i].ID = uuid.New().String()
		}
	}
	return out
}

func (s *requestService) broadcast(event string, req model.DeliveryRequest) {
	if s.hub == nil {
		return
	}
	payload, err := json.Marshal(map[string]string{
		"type":   event,
		"id":     req.ID,
		"codigo": req.Code,
		"status": req.Status,
	})
	if err != nil {
		return
	}
	select {
	case s.hub.GetBroadcast() <- payload:
	default:
		// Hub backed up; UI refresh events are droppable.
	}
}
