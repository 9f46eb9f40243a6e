package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Status do pedido. O status de criação é sempre ABERTO — o valor enviado
// pelo cliente no POST é ignorado.
const (
	PedidoAberto     = "ABERTO"
	PedidoFinalizado = "FINALIZADO"
	PedidoCancelado  = "CANCELADO"
)

// Status por item do pedido (fluxo de cozinha).
const (
	ProdutoAguardando = "AGUARDANDO"
	ProdutoPreparando = "PREPARANDO"
	ProdutoCancelado  = "CANCELADO"
	ProdutoPronto     = "PRONTO"
	ProdutoEntregue   = "ENTREGUE"
)

// Pedido is the order aggregate root. It belongs to one restaurant tenant
// and optionally to a mesa, a comanda, a caixa and the user who created it.
// Rows are never physically removed — Deleted marks a soft delete that hides
// the pedido from listings but keeps it reachable for auditing.
type Pedido struct {
	ID                 uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	RestaurantCnpj     string     `gorm:"type:varchar(14);not null;index" json:"restaurantCnpj"`
	MesaID             *uuid.UUID `gorm:"type:uuid;index" json:"mesaId,omitempty"`
	ComandaID          *uuid.UUID `gorm:"type:uuid;index" json:"comandaId,omitempty"`
	CaixaID            *uuid.UUID `gorm:"type:uuid;index" json:"caixaId,omitempty"`
	UserID             *uuid.UUID `gorm:"type:uuid" json:"userId,omitempty"`
	Status             string     `gorm:"type:varchar(20);not null;default:'ABERTO'" json:"status"`
	TipoPedido         string     `gorm:"type:varchar(20);not null;default:'COUNTER'" json:"tipoPedido"`
	PdvCodPedido       *string    `gorm:"type:varchar(255)" json:"pdvCodPedido,omitempty"`
	MotivoCancelamento *string    `gorm:"type:varchar(500)" json:"motivoCancelamento,omitempty"`
	Deleted            bool       `gorm:"not null;default:false" json:"-"`
	CreatedAt          time.Time  `json:"createdAt"`
	UpdatedAt          time.Time  `json:"updatedAt"`

	Mesa      *Mesa           `gorm:"foreignKey:MesaID" json:"mesa,omitempty"`
	Produtos  []PedidoProduto `gorm:"foreignKey:PedidoID" json:"produtos,omitempty"`
	Payments  []Payment       `gorm:"foreignKey:PedidoID" json:"payments,omitempty"`
	Historico []HistoryPedido `gorm:"foreignKey:PedidoID" json:"historico,omitempty"`
}

// PedidoProduto is one line of a pedido. The generated id is needed before
// its adicionais can be inserted, so lines are created sequentially.
type PedidoProduto struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	PedidoID   uuid.UUID `gorm:"type:uuid;index;not null" json:"pedidoId"`
	ProdutoID  uuid.UUID `gorm:"type:uuid;not null" json:"produtoId"`
	ExternoID  *string   `gorm:"type:varchar(255)" json:"externoId,omitempty"`
	Quantidade int       `gorm:"not null" json:"quantidade"`
	Obs        *string   `gorm:"type:varchar(1000)" json:"obs,omitempty"`
	Status     string    `gorm:"type:varchar(20);not null;default:'AGUARDANDO'" json:"status"`
	CreatedAt  time.Time `json:"createdAt"`

	Produto    *Produto                `gorm:"foreignKey:ProdutoID" json:"produto,omitempty"`
	Adicionais []PedidoProdutoAdicional `gorm:"foreignKey:PedidoProdutoID;constraint:OnDelete:CASCADE" json:"adicionais,omitempty"`
}

// PedidoProdutoAdicional links a line to a catalog adicional. Preco is the
// price captured at order-creation time; it is copied from the request and
// never re-read from the catalog, so historical pedidos keep the value they
// were sold at.
type PedidoProdutoAdicional struct {
	ID              uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	PedidoProdutoID uuid.UUID       `gorm:"type:uuid;index;not null" json:"pedidoProdutoId"`
	AdicionalID     uuid.UUID       `gorm:"type:uuid;not null" json:"adicionalId"`
	Quantidade      int             `gorm:"not null" json:"quantidade"`
	Preco           decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"preco"`

	Adicional *Adicional `gorm:"foreignKey:AdicionalID" json:"adicional,omitempty"`
}

// History event types.
const (
	HistoryCreated = "CREATED"
	HistoryUpdated = "UPDATED"
)

// HistoryPedido is the append-only audit trail of a pedido. Rows are never
// updated or deleted.
type HistoryPedido struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	PedidoID  uuid.UUID `gorm:"type:uuid;index;not null" json:"pedidoId"`
	Type      string    `gorm:"type:varchar(20);not null" json:"type"`
	CreatedAt time.Time `json:"createdAt"`
}

// Payment belongs to a pedido and references a payment method. Troco is the
// change handed back for cash payments.
type Payment struct {
	ID              uuid.UUID        `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	PedidoID        uuid.UUID        `gorm:"type:uuid;index;not null" json:"pedidoId"`
	PaymentMethodID uuid.UUID        `gorm:"type:uuid;not null" json:"paymentMethodId"`
	RestaurantCnpj  string           `gorm:"type:varchar(14);not null;index" json:"restaurantCnpj"`
	Valor           decimal.Decimal  `gorm:"type:decimal(12,2);not null" json:"valor"`
	Troco           *decimal.Decimal `gorm:"type:decimal(12,2)" json:"troco,omitempty"`
	Deleted         bool             `gorm:"not null;default:false" json:"-"`
	CreatedAt       time.Time        `json:"createdAt"`
}
