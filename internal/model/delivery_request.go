package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// RequestStatus enum constants. Values are lowercase Portuguese because the
// persisted snapshot keeps the layout the back-office clients already store.
const (
	RequestStatusPendente    = "pendente"
	RequestStatusAceita      = "aceita"
	RequestStatusEmAndamento = "em_andamento"
	RequestStatusConcluida   = "concluida"
	RequestStatusCancelada   = "cancelada"
	RequestStatusRecusada    = "recusada"
)

// HistoryAction enum constants
const (
	HistoryActionCriada     = "criada"
	HistoryActionEditada    = "editada"
	HistoryActionAceita     = "aceita"
	HistoryActionRecusada   = "recusada"
	HistoryActionIniciada   = "iniciada"
	HistoryActionConciliada = "conciliada"
	HistoryActionCancelada  = "cancelada"
)

// historyActionByStatus maps a new status to the history action recorded for
// it. Statuses outside this table change the record but append no history.
var historyActionByStatus = map[string]string{
	RequestStatusAceita:      HistoryActionAceita,
	RequestStatusEmAndamento: HistoryActionIniciada,
	RequestStatusConcluida:   HistoryActionConciliada,
	RequestStatusRecusada:    HistoryActionRecusada,
	RequestStatusCancelada:   HistoryActionCancelada,
}

// HistoryActionForStatus returns the history action for a status transition
// and whether the status participates in history at all.
func HistoryActionForStatus(status string) (string, bool) {
	action, ok := historyActionByStatus[status]
	return action, ok
}

// DeliveryRequest is a delivery job (solicitação): one pickup point and one or
// more destination routes. It lives in the snapshot store, not in a relational
// table, so customer and driver fields are denormalized copies taken at
// creation/assignment time.
type DeliveryRequest struct {
	ID             string           `json:"id"`
	Code           string           `json:"codigo"`
	CustomerID     string           `json:"clienteId"`
	CustomerName   string           `json:"nomeCliente"`
	CustomerAvatar string           `json:"avatarCliente,omitempty"`
	DriverID       string           `json:"entregadorId,omitempty"`
	DriverName     string           `json:"nomeEntregador,omitempty"`
	DriverAvatar   string           `json:"avatarEntregador,omitempty"`
	Status         string           `json:"status"`
	CreatedAt      time.Time        `json:"dataCriacao"`
	Operation      string           `json:"descricaoOperacao,omitempty"`
	PickupPoint    string           `json:"pontoColeta"`
	Routes         []Route          `json:"rotas"`
	TotalFees      decimal.Decimal  `json:"valorTotalTaxas"`
	TotalPass      decimal.Decimal  `json:"valorTotalRepasse"`
	TotalExtraFees decimal.Decimal  `json:"valorTotalTaxasExtras"`
	Justification  string           `json:"justificativa,omitempty"`
	Reconciliation Reconciliation   `json:"conciliacao,omitempty"`
	History        []HistoryItem    `json:"historico"`
}

// Route is one destination leg of a DeliveryRequest.
type Route struct {
	ID             string          `json:"id"`
	Destination    string          `json:"destino"`
	Contact        string          `json:"responsavel,omitempty"`
	Phone          string          `json:"telefone,omitempty"`
	Notes          string          `json:"observacoes,omitempty"`
	Fee            decimal.Decimal `json:"taxaEntrega"`
	PassThrough    decimal.Decimal `json:"valorRepasse"`
	ExtraFeeIDs    []string        `json:"taxasExtras,omitempty"`
	CollectFromEnd bool            `json:"cobrarDoClienteFinal"`
	PaymentMethods []string        `json:"formasPagamento,omitempty"`
	Status         string          `json:"status,omitempty"`
}

// HistoryItem records one lifecycle event. The list is append-only.
type HistoryItem struct {
	ID        string    `json:"id"`
	Date      time.Time `json:"data"`
	Action    string    `json:"acao"`
	ActorID   string    `json:"usuarioId"`
	ActorName string    `json:"nomeUsuario"`
	Detail    string    `json:"detalhe,omitempty"`
}

// Actor identifies the authenticated user a history item is attributed to.
type Actor struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Reconciliation maps route id to the payment breakdown recorded at
// completion time.
type Reconciliation map[string]RouteReconciliation

// RouteReconciliation holds how a route's fee and pass-through were paid.
type RouteReconciliation struct {
	FeePayments  []PaymentSplit `json:"pagamentosTaxa,omitempty"`
	PassPayments []PaymentSplit `json:"pagamentosRepasse,omitempty"`
	Notes        string         `json:"observacoes,omitempty"`
}

// PaymentSplit is one {amount, payment method} slice of a payment.
type PaymentSplit struct {
	Amount          decimal.Decimal `json:"valor"`
	PaymentMethodID string          `json:"formaPagamentoId"`
}
