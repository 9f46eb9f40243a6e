package service

import (
	"context"
	"errors"

	"github.com/BistroPdv/bistro-api/internal/apierror"
	"github.com/BistroPdv/bistro-api/internal/dto"
	"github.com/BistroPdv/bistro-api/internal/model"
	"github.com/BistroPdv/bistro-api/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type PaymentService interface {
	Create(ctx context.Context, cnpj string, req dto.CreatePaymentRequest) (*dto.PaymentResponse, error)
	FindAll(ctx context.Context, cnpj string, q dto.PaymentListQuery) (*dto.PaginatedResponse, error)
	FindOne(ctx context.Context, cnpj string, id uuid.UUID) (*dto.PaymentResponse, error)
	Update(ctx context.Context, cnpj string, id uuid.UUID, req dto.UpdatePaymentRequest) (*dto.PaymentResponse, error)
}

type paymentService struct {
	repo       repository.PaymentRepository
	pedidoRepo repository.PedidoRepository
}

func NewPaymentService(repo repository.PaymentRepository, pedidoRepo repository.PedidoRepository) PaymentService {
	return &paymentService{repo: repo, pedidoRepo: pedidoRepo}
}

func (s *paymentService) Create(ctx context.Context, cnpj string, req dto.CreatePaymentRequest) (*dto.PaymentResponse, error) {
	if req.PedidoID == "" {
		return nil, apierror.Validation("Campo pedidoId é obrigatório")
	}
	pedidoID, err := uuid.Parse(req.PedidoID)
	if err != nil {
		return nil, apierror.Validation("ID do pedido deve ser um UUID válido")
	}
	if _, err := s.pedidoRepo.FindByID(ctx, cnpj, pedidoID, false); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierror.NotFound("Pedido não encontrado")
		}
		return nil, apierror.Internal()
	}
	methodID, err := uuid.Parse(req.PaymentMethodID)
	if err != nil {
		return nil, apierror.Validation("ID do método de pagamento deve ser um UUID válido")
	}

	payment := model.Payment{
		PedidoID:        pedidoID,
		PaymentMethodID: methodID,
		RestaurantCnpj:  cnpj,
		Valor:           req.Valor,
		Troco:           req.Troco,
	}
	if err := s.repo.Create(ctx, nil, &payment); err != nil {
		log.Error().Err(err).Str("pedido_id", pedidoID.String()).Msg("payment: create failed")
		return nil, apierror.Internal()
	}
	resp := paymentToResponse(&payment)
	return &resp, nil
}

func (s *paymentService) FindAll(ctx context.Context, cnpj string, q dto.PaymentListQuery) (*dto.PaginatedResponse, error) {
	q.Normalize()
	payments, total, err := s.repo.List(ctx, cnpj, q)
	if err != nil {
		log.Error().Err(err).Str("cnpj", cnpj).Msg("payment: list failed")
		return nil, apierror.Internal()
	}
	data := make([]dto.PaymentResponse, 0, len(payments))
	for i := range payments {
		data = append(data, paymentToResponse(&payments[i]))
	}
	return &dto.PaginatedResponse{Data: data, Total: total, Page: q.Page, Limit: q.Limit}, nil
}

func (s *paymentService) FindOne(ctx context.Context, cnpj string, id uuid.UUID) (*dto.PaymentResponse, error) {
	payment, err := s.repo.FindByID(ctx, cnpj, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierror.NotFound("Pagamento não encontrado")
		}
		return nil, apierror.Internal()
	}
	resp := paymentToResponse(payment)
	return &resp, nil
}

func (s *paymentService) Update(ctx context.Context, cnpj string, id uuid.UUID, req dto.UpdatePaymentRequest) (*dto.PaymentResponse, error) {
	payment, err := s.repo.FindByID(ctx, cnpj, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierror.NotFound("Pagamento não encontrado")
		}
		return nil, apierror.Internal()
	}
	if req.Valor != nil {
		payment.Valor = *req.Valor
	}
	if req.Troco != nil {
		payment.Troco = req.Troco
	}
	if err := s.repo.Update(ctx, payment); err != nil {
		log.Error().Err(err).Str("payment_id", id.String()).Msg("payment: update failed")
		return nil, apierror.Internal()
	}
	resp := paymentToResponse(payment)
	return &resp, nil
}

func paymentToResponse(p *model.Payment) dto.PaymentResponse {
	troco := decimal.Zero
	if p.Troco != nil {
		troco = *p.Troco
	}
	return dto.PaymentResponse{
		ID:              p.ID.String(),
		PaymentMethodID: p.PaymentMethodID.String(),
		Valor:           p.Valor,
		Troco:           troco,
	}
}
