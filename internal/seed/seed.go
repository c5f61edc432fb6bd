// Package seed generates the demo fixtures the back office boots with when
// the snapshot store is empty or the schema version changed. Production code
// paths never touch it beyond the boot-time check; the random generator lives
// only behind the Provider interface.
package seed

import (
	"fmt"
	"math/rand"
	"time"

	"backoffice/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
)

// Provider supplies initial data sets. Swap it out to boot from anything
// other than the built-in fixtures.
type Provider interface {
	Users() []model.User
	Customers() []model.Customer
	Drivers() []model.Driver
	PaymentMethods() []model.PaymentMethod
	ExtraFees() []model.ExtraFee
	Requests(customers []model.Customer, drivers []model.Driver, actor model.Actor) []model.DeliveryRequest
}

// fixtureProvider draws every randomized value from a single seeded source,
// so the generated shape and amounts repeat for a given seed (ids and
// timestamps do not).
type fixtureProvider struct {
	rng *rand.Rand
}

func NewFixtureProvider(seed int64) Provider {
	return &fixtureProvider{rng: rand.New(rand.NewSource(seed))}
}

func (p *fixtureProvider) Users() []model.User {
	hash, _ := bcrypt.GenerateFromPassword([]byte("123456"), bcrypt.DefaultCost)
	return []model.User{
		{Name: "Ana Ribeiro", Email: "ana@operadora.com.br", Password: string(hash), Role: "admin"},
		{Name: "Carlos Mendes", Email: "carlos@operadora.com.br", Password: string(hash), Role: "staff"},
	}
}

func (p *fixtureProvider) Customers() []model.Customer {
	return []model.Customer{
		{Name: "Farmácia Central", CompanyName: "Central Drogarias LTDA", Phone: "(31) 3222-1010", Email: "contato@farmaciacentral.com.br", BillingMode: model.BillingModePrepaid, WalletBalance: decimal.NewFromInt(500), IsActive: true},
		{Name: "Restaurante Sabor Mineiro", CompanyName: "Sabor Mineiro ME", Phone: "(31) 3333-2020", Email: "pedidos@sabormineiro.com.br", BillingMode: model.BillingModeInvoiced, IsActive: true},
		{Name: "Ótica Visão", Phone: "(31) 3444-3030", Email: "otica@visao.com.br", BillingMode: model.BillingModeInvoiced, IsActive: true},
	}
}

func (p *fixtureProvider) Drivers() []model.Driver {
	return []model.Driver{
		{Name: "João Batista", Phone: "(31) 98888-1111", Vehicle: "Moto", Plate: "ABC-1234", IsActive: true},
		{Name: "Marcos Paulo", Phone: "(31) 97777-2222", Vehicle: "Moto", Plate: "DEF-5678", IsActive: true},
		{Name: "Rita de Souza", Phone: "(31) 96666-3333", Vehicle: "Carro", Plate: "GHI-9012", IsActive: true},
	}
}

func (p *fixtureProvider) PaymentMethods() []model.PaymentMethod {
	return []model.PaymentMethod{
		{Name: "Dinheiro", IsActive: true},
		{Name: "Pix", IsActive: true},
		{Name: "Cartão de débito", IsActive: true},
		{Name: "Cartão de crédito", IsActive: true},
	}
}

func (p *fixtureProvider) ExtraFees() []model.ExtraFee {
	return []model.ExtraFee{
		{Name: "Retorno", Amount: decimal.NewFromFloat(5.00), IsActive: true},
		{Name: "Espera", Amount: decimal.NewFromFloat(3.50), IsActive: true},
		{Name: "Volume extra", Amount: decimal.NewFromFloat(7.00), IsActive: true},
	}
}

var seedStatuses = []string{
	model.RequestStatusPendente,
	model.RequestStatusAceita,
	model.RequestStatusEmAndamento,
	model.RequestStatusConcluida,
	model.RequestStatusCancelada,
}

var seedDestinations = []string{
	"Rua dos Aimorés, 1450 - Funcionários",
	"Av. do Contorno, 6061 - Savassi",
	"Rua Padre Eustáquio, 2801 - Padre Eustáquio",
	"Av. Amazonas, 7000 - Gameleira",
	"Rua da Bahia, 1148 - Centro",
}

// Requests builds a fixed-size batch of requests with 1-4 routes each,
// randomized statuses and monetary values, and a coherent history trail.
func (p *fixtureProvider) Requests(customers []model.Customer, drivers []model.Driver, actor model.Actor) []model.DeliveryRequest {
	const batch = 12

	requests := make([]model.DeliveryRequest, 0, batch)
	for i := 0; i < batch; i++ {
		customer := customers[p.rng.Intn(len(customers))]
		status := seedStatuses[p.rng.Intn(len(seedStatuses))]
		createdAt := time.Now().AddDate(0, 0, -p.rng.Intn(30))

		routeCount := 1 + p.rng.Intn(4)
		routes := make([]model.Route, 0, routeCount)
		totalFees := decimal.Zero
		totalPass := decimal.Zero
		for r := 0; r < routeCount; r++ {
			fee := decimal.NewFromInt(int64(8 + p.rng.Intn(20))).Add(decimal.NewFromFloat(0.5).Mul(decimal.NewFromInt(int64(p.rng.Intn(2)))))
			pass := decimal.Zero
			if p.rng.Intn(3) == 0 {
				pass = decimal.NewFromInt(int64(20 + p.rng.Intn(100)))
			}
			routes = append(routes, model.Route{
				ID:             uuid.New().String(),
				Destination:    seedDestinations[p.rng.Intn(len(seedDestinations))],
				Contact:        "Recebedor " + fmt.Sprint(r+1),
				Phone:          fmt.Sprintf("(31) 9%04d-%04d", p.rng.Intn(10000), p.rng.Intn(10000)),
				Fee:            fee,
				PassThrough:    pass,
				CollectFromEnd: !pass.IsZero(),
			})
			totalFees = totalFees.Add(fee)
			totalPass = totalPass.Add(pass)
		}

		req := model.DeliveryRequest{
			ID:           uuid.New().String(),
			Code:         fmt.Sprintf("ENT-%05d", i+1),
			CustomerID:   customer.ID.String(),
			CustomerName: customer.Name,
			Status:       status,
			CreatedAt:    createdAt,
			PickupPoint:  "Av. Afonso Pena, 1500 - Centro",
			Routes:       routes,
			TotalFees:    totalFees,
			TotalPass:    totalPass,
			History:      p.historyFor(status, createdAt, actor),
		}
		if status != model.RequestStatusPendente && len(drivers) > 0 {
			driver := drivers[p.rng.Intn(len(drivers))]
			req.DriverID = driver.ID.String()
			req.DriverName = driver.Name
		}
		requests = append(requests, req)
	}
	return requests
}

// historyFor walks the lifecycle up to the given status so seeded records
// carry a plausible trail.
func (p *fixtureProvider) historyFor(status string, createdAt time.Time, actor model.Actor) []model.HistoryItem {
	trail := []string{model.HistoryActionCriada}
	switch status {
	case model.RequestStatusAceita:
		trail = append(trail, model.HistoryActionAceita)
	case model.RequestStatusEmAndamento:
		trail = append(trail, model.HistoryActionAceita, model.HistoryActionIniciada)
	case model.RequestStatusConcluida:
		trail = append(trail, model.HistoryActionAceita, model.HistoryActionIniciada, model.HistoryActionConciliada)
	case model.RequestStatusCancelada:
		trail = append(trail, model.HistoryActionCancelada)
	case model.RequestStatusRecusada:
		trail = append(trail, model.HistoryActionRecusada)
	}

	items := make([]model.HistoryItem, 0, len(trail))
	for i, action := range trail {
		items = append(items, model.HistoryItem{
			ID:        uuid.New().String(),
			Date:      createdAt.Add(time.Duration(i) * time.Hour),
			Action:    action,
			ActorID:   actor.ID,
			ActorName: actor.Name,
		})
	}
	return items
}
