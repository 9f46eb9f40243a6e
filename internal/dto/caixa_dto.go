package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

// AbrirCaixaRequest opens a new session. ValorAbertura becomes the first
// ABERTURA movement of the session ledger.
type AbrirCaixaRequest struct {
	ValorAbertura decimal.Decimal `json:"valorAbertura" validate:"min=0"`
	Obs           *string         `json:"obs"           validate:"omitempty,max=500"`
}

type MovimentacaoRequest struct {
	Tipo  string          `json:"tipo"  validate:"required,oneof=ABERTURA ENTRADA SANGRIA SAIDA"`
	Valor decimal.Decimal `json:"valor" validate:"required"`
	Obs   *string         `json:"obs"   validate:"omitempty,max=500"`
}

// UpdateMovimentacaoRequest adjusts valor/obs only — the tipo of a recorded
// movement never changes.
type UpdateMovimentacaoRequest struct {
	Valor *decimal.Decimal `json:"valor"`
	Obs   *string          `json:"obs" validate:"omitempty,max=500"`
}

type FechamentoMetodoRequest struct {
	ID    string          `json:"id"    validate:"required,uuid"`
	Valor decimal.Decimal `json:"valor" validate:"min=0"`
}

type FecharCaixaRequest struct {
	Methods []FechamentoMetodoRequest `json:"methods" validate:"required,min=1,dive"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type MovimentacaoResponse struct {
	ID        string          `json:"id"`
	Tipo      string          `json:"tipo"`
	Valor     decimal.Decimal `json:"valor"`
	Obs       *string         `json:"obs,omitempty"`
	CreatedAt string          `json:"createdAt"`
}

type CaixaUserResponse struct {
	ID   string `json:"id"`
	Nome string `json:"nome"`
}

type CaixaResponse struct {
	ID            string                 `json:"id"`
	Status        bool                   `json:"status"`
	User          CaixaUserResponse      `json:"user"`
	Movimentacoes []MovimentacaoResponse `json:"movimentacoes"`
	CreatedAt     string                 `json:"createdAt"`
}

type FechamentoMetodoResponse struct {
	PaymentMethodID string          `json:"paymentMethodId"`
	Valor           decimal.Decimal `json:"valor"`
}

// FechamentoResponse is the snapshot written when a caixa closes.
type FechamentoResponse struct {
	ID           string                     `json:"id"`
	CaixaID      string                     `json:"caixaId"`
	TotalMoment  decimal.Decimal            `json:"totalMoment"`
	TotalMethods decimal.Decimal            `json:"totalMethods"`
	TotalChange  decimal.Decimal            `json:"totalChange"`
	Metodos      []FechamentoMetodoResponse `json:"metodos"`
	CreatedAt    string                     `json:"createdAt"`
}

// ─── Reconciliation report ───────────────────────────────────────────────────

// MetodoReconciliacao is one row of the declared-vs-actual comparison.
// Diferenca = ValorInformado − ValorReal; positive means over-declared.
type MetodoReconciliacao struct {
	ID             string          `json:"id"`
	Nome           string          `json:"nome"`
	Tipo           string          `json:"tipo"`
	Descricao      string          `json:"descricao"`
	ValorInformado decimal.Decimal `json:"valorInformado"`
	ValorReal      decimal.Decimal `json:"valorReal"`
	Diferenca      decimal.Decimal `json:"diferenca"`
}

type VendaReconciliacao struct {
	ID         string            `json:"id"`
	Status     string            `json:"status"`
	TipoPedido string            `json:"tipoPedido"`
	CreatedAt  string            `json:"createdAt"`
	Total      decimal.Decimal   `json:"total"`
	Troco      decimal.Decimal   `json:"troco"`
	Payments   []PaymentResponse `json:"payments"`
}

type FechamentoReconciliacao struct {
	ID               string                `json:"id"`
	TotalMoment      decimal.Decimal       `json:"totalMoment"`
	TotalMethods     decimal.Decimal       `json:"totalMethods"`
	TotalChange      decimal.Decimal       `json:"totalChange"`
	CreatedAt        string                `json:"createdAt"`
	MetodosPagamento []MetodoReconciliacao `json:"metodosPagamento"`
}

type ResumoReconciliacao struct {
	TotalVendas        decimal.Decimal `json:"totalVendas"`
	TotalMovimentacoes decimal.Decimal `json:"totalMovimentacoes"`
	TotalTroco         decimal.Decimal `json:"totalTroco"`
	TotalInformado     decimal.Decimal `json:"totalInformado"`
	TotalReal          decimal.Decimal `json:"totalReal"`
	DiferencaTotal     decimal.Decimal `json:"diferencaTotal"`
}

type CaixaResumoResponse struct {
	ID        string            `json:"id"`
	Status    bool              `json:"status"`
	CreatedAt string            `json:"createdAt"`
	User      CaixaUserResponse `json:"user"`
}

// RelatorioFechamentoResponse is the full reconciliation view of a closed
// caixa. Building it performs no writes: same inputs, same output.
type RelatorioFechamentoResponse struct {
	Caixa         CaixaResumoResponse     `json:"caixa"`
	Vendas        []VendaReconciliacao    `json:"vendas"`
	Movimentacoes []MovimentacaoResponse  `json:"movimentacoes"`
	Fechamento    FechamentoReconciliacao `json:"fechamento"`
	Resumo        ResumoReconciliacao     `json:"resumo"`
}
