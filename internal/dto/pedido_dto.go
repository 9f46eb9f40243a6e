package dto

import (
	"github.com/shopspring/decimal"
)

// ─── Request DTOs ────────────────────────────────────────────────────────────

// AdicionalPedidoRequest freezes the adicional price at order time: Preco is
// persisted as sent, never re-read from the catalog.
type AdicionalPedidoRequest struct {
	ID         string          `json:"id"         validate:"required,uuid"`
	CodIntegra *string         `json:"codIntegra" validate:"omitempty,max=255"`
	Quantidade int             `json:"quantidade" validate:"required,min=1,max=99"`
	Preco      decimal.Decimal `json:"preco"      validate:"min=0"`
}

type ProdutoPedidoRequest struct {
	ProdutoID  string                   `json:"produtoId"  validate:"required,uuid"`
	ExternoID  *string                  `json:"externoId"  validate:"omitempty,max=255"`
	Quantidade int                      `json:"quantidade" validate:"required,min=1,max=999"`
	Obs        *string                  `json:"obs"        validate:"omitempty,max=1000"`
	Status     *string                  `json:"status"     validate:"omitempty,oneof=AGUARDANDO PREPARANDO CANCELADO PRONTO ENTREGUE"`
	Adicionais []AdicionalPedidoRequest `json:"adicionais" validate:"omitempty,max=20,dive"`
}

type CreatePedidoRequest struct {
	MesaID     *string                `json:"mesaId"     validate:"omitempty,uuid"`
	ComandaID  *string                `json:"comandaId"  validate:"omitempty,uuid"`
	CaixaID    *string                `json:"caixaId"    validate:"omitempty,uuid"`
	TipoPedido *string                `json:"tipoPedido" validate:"omitempty,oneof=COUNTER MESA COMANDA DELIVERY"`
	Produtos   []ProdutoPedidoRequest `json:"produtos"   validate:"required,min=1,max=50,dive"`
}

// Line-item operations for UpdatePedidoRequest. Append keeps the observed
// contract of "add more items to an existing ticket"; Replace removes the
// current lines first so callers that re-submit the full list get what they
// expect instead of silent duplication.
const (
	ItensOpAppend  = "append"
	ItensOpReplace = "replace"
)

type UpdatePedidoRequest struct {
	Status             *string                `json:"status"             validate:"omitempty,oneof=ABERTO FINALIZADO CANCELADO"`
	PdvCodPedido       *string                `json:"pdvCodPedido"       validate:"omitempty,max=255"`
	MotivoCancelamento *string                `json:"motivoCancelamento" validate:"omitempty,max=500"`
	ItensOp            string                 `json:"itensOp"            validate:"omitempty,oneof=append replace"`
	Produtos           []ProdutoPedidoRequest `json:"produtos"           validate:"omitempty,max=50,dive"`
}

// FinalizarPedidoRequest closes the pedido against a caixa, recording its
// payments in the same operation.
type FinalizarPedidoRequest struct {
	CaixaID  string                 `json:"caixaId"  validate:"required,uuid"`
	Payments []CreatePaymentRequest `json:"payments" validate:"omitempty,dive"`
}

// FindByMesaQuery are the optional filters of GET /pedidos/mesa/:id.
type FindByMesaQuery struct {
	PaginationQuery
	Status    string `form:"status"    validate:"omitempty,oneof=ABERTO FINALIZADO CANCELADO"`
	ComandaID string `form:"comandaId" validate:"omitempty,uuid"`
	ProdImage bool   `form:"prodImage"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type AdicionalPedidoResponse struct {
	AdicionalID string          `json:"adicionalId"`
	Nome        string          `json:"nome"`
	CodIntegra  *string         `json:"codIntegra,omitempty"`
	Quantidade  int             `json:"quantidade"`
	Preco       decimal.Decimal `json:"preco"`
}

type ProdutoPedidoResponse struct {
	ProdutoID  string                    `json:"produtoId"`
	Nome       string                    `json:"nome"`
	Preco      decimal.Decimal           `json:"preco"`
	Codigo     *string                   `json:"codigo,omitempty"`
	Imagem     *string                   `json:"imagem,omitempty"`
	Obs        *string                   `json:"obs,omitempty"`
	Quantidade int                       `json:"quantidade"`
	Status     string                    `json:"status"`
	Adicionais []AdicionalPedidoResponse `json:"adicionais"`
}

type PaymentResponse struct {
	ID              string          `json:"id"`
	PaymentMethodID string          `json:"paymentMethodId"`
	Valor           decimal.Decimal `json:"valor"`
	Troco           decimal.Decimal `json:"troco"`
}

type PedidoResponse struct {
	ID                 string                  `json:"id"`
	Status             string                  `json:"status"`
	TipoPedido         string                  `json:"tipoPedido"`
	PdvCodPedido       *string                 `json:"pdvCodPedido,omitempty"`
	MotivoCancelamento *string                 `json:"motivoCancelamento,omitempty"`
	MesaID             *string                 `json:"mesaId,omitempty"`
	MesaNumero         *int                    `json:"mesaNumero,omitempty"`
	ComandaID          *string                 `json:"comandaId,omitempty"`
	CaixaID            *string                 `json:"caixaId,omitempty"`
	Produtos           []ProdutoPedidoResponse `json:"produtos"`
	Payments           []PaymentResponse       `json:"payments,omitempty"`
	CreatedAt          string                  `json:"createdAt"`
}
