package dto

import "github.com/shopspring/decimal"

type CreatePaymentRequest struct {
	PedidoID        string           `json:"pedidoId"        validate:"omitempty,uuid"`
	PaymentMethodID string           `json:"paymentMethodId" validate:"required,uuid"`
	Valor           decimal.Decimal  `json:"valor"           validate:"required"`
	Troco           *decimal.Decimal `json:"troco"`
}

type UpdatePaymentRequest struct {
	Valor *decimal.Decimal `json:"valor"`
	Troco *decimal.Decimal `json:"troco"`
}

// PaymentListQuery filters the payment listing by pedido.
type PaymentListQuery struct {
	PaginationQuery
	PedidoID string `form:"pedidoId" validate:"omitempty,uuid"`
}
