package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Tipos de movimentação manual de caixa. ABERTURA e ENTRADA somam,
// SANGRIA e SAIDA subtraem — a mesma regra de sinal vale para o fechamento
// e para o relatório de reconciliação.
const (
	MovAbertura = "ABERTURA"
	MovEntrada  = "ENTRADA"
	MovSangria  = "SANGRIA"
	MovSaida    = "SAIDA"
)

// Caixa is a cash register session. Status true means open. The partial
// unique index created in infra guarantees at most one open caixa per user
// per restaurant, so a concurrent double-open fails at the database instead
// of racing a check-then-create.
type Caixa struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	RestaurantCnpj string    `gorm:"type:varchar(14);not null;index" json:"restaurantCnpj"`
	UserID         uuid.UUID `gorm:"type:uuid;not null" json:"userId"`
	Status         bool      `gorm:"not null;default:true" json:"status"`
	Deleted        bool      `gorm:"not null;default:false" json:"-"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`

	User          *Usuario            `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Movimentacoes []CaixaMovimentacao `gorm:"foreignKey:CaixaID" json:"movimentacoes,omitempty"`
	Fechamento    *CaixaFechamento    `gorm:"foreignKey:CaixaID" json:"fechamento,omitempty"`
}

// CaixaMovimentacao is a manual ledger entry within a caixa session.
// Updates may only adjust Valor and Obs — Tipo never changes after insert.
type CaixaMovimentacao struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	CaixaID   uuid.UUID       `gorm:"type:uuid;index;not null" json:"caixaId"`
	Tipo      string          `gorm:"type:varchar(20);not null" json:"tipo"`
	Valor     decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"valor"`
	Obs       *string         `gorm:"type:varchar(500)" json:"obs,omitempty"`
	CreatedAt time.Time       `json:"createdAt"`
}

// CaixaFechamento is written exactly once when a caixa closes. The three
// totals are snapshots computed at close time; the reconciliation report
// recomputes them independently from the same rows and the two must agree.
type CaixaFechamento struct {
	ID           uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	CaixaID      uuid.UUID       `gorm:"type:uuid;uniqueIndex;not null" json:"caixaId"`
	TotalMoment  decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"totalMoment"`
	TotalMethods decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"totalMethods"`
	TotalChange  decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"totalChange"`
	CreatedAt    time.Time       `json:"createdAt"`

	Metodos []CaixaFechamentoMetodo `gorm:"foreignKey:FechamentoID" json:"metodos,omitempty"`
}

// CaixaFechamentoMetodo is the amount physically counted by staff for one
// payment method at close time (valor informado).
type CaixaFechamentoMetodo struct {
	ID              uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	FechamentoID    uuid.UUID       `gorm:"type:uuid;index;not null" json:"fechamentoId"`
	PaymentMethodID uuid.UUID       `gorm:"type:uuid;not null" json:"paymentMethodId"`
	Valor           decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"valor"`

	MetodoPagamento *MetodoPagamento `gorm:"foreignKey:PaymentMethodID" json:"metodoPagamento,omitempty"`
}
