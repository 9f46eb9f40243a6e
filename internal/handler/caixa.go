package handler

import (
	"net/http"

	"github.com/BistroPdv/bistro-api/internal/apierror"
	"github.com/BistroPdv/bistro-api/internal/dto"
	"github.com/BistroPdv/bistro-api/internal/middleware"
	"github.com/BistroPdv/bistro-api/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type CaixaHandler struct {
	svc       service.CaixaService
	relatorio service.RelatorioService
}

func NewCaixaHandler(svc service.CaixaService, relatorio service.RelatorioService) *CaixaHandler {
	return &CaixaHandler{svc: svc, relatorio: relatorio}
}

// Abrir cria uma nova sessão de caixa para o usuário autenticado.
// No máximo uma sessão aberta por usuário por restaurante.
func (h *CaixaHandler) Abrir(c *gin.Context) {
	var req dto.AbrirCaixaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	claims := middleware.GetClaims(c)
	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		respondError(c, apierror.Validation("ID de usuário inválido no token"))
		return
	}

	resp, err := h.svc.Abrir(c.Request.Context(), claims.RestaurantCnpj, userID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *CaixaHandler) FindAll(c *gin.Context) {
	var q dto.PaginationQuery
	if !bindQueryAndValidate(c, &q) {
		return
	}
	claims := middleware.GetClaims(c)

	resp, err := h.svc.FindAll(c.Request.Context(), claims.RestaurantCnpj, q)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// FindOpen retorna o caixa aberto do usuário autenticado, se houver.
func (h *CaixaHandler) FindOpen(c *gin.Context) {
	claims := middleware.GetClaims(c)
	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		respondError(c, apierror.Validation("ID de usuário inválido no token"))
		return
	}

	resp, err := h.svc.FindOpen(c.Request.Context(), claims.RestaurantCnpj, userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *CaixaHandler) FindOne(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	claims := middleware.GetClaims(c)

	resp, err := h.svc.FindOne(c.Request.Context(), claims.RestaurantCnpj, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// RegistrarMovimentacao adiciona um lançamento manual ao livro do caixa.
func (h *CaixaHandler) RegistrarMovimentacao(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req dto.MovimentacaoRequest
	if !bindAndValidate(c, &req) {
		return
	}
	claims := middleware.GetClaims(c)

	resp, err := h.svc.RegistrarMovimentacao(c.Request.Context(), claims.RestaurantCnpj, id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *CaixaHandler) AtualizarMovimentacao(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	movID, ok := parseIDParam(c, "movId")
	if !ok {
		return
	}
	var req dto.UpdateMovimentacaoRequest
	if !bindAndValidate(c, &req) {
		return
	}
	claims := middleware.GetClaims(c)

	resp, err := h.svc.AtualizarMovimentacao(c.Request.Context(), claims.RestaurantCnpj, id, movID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Fechar encerra a sessão: grava o fechamento com os totais calculados e as
// declarações por método, e marca o caixa como fechado.
func (h *CaixaHandler) Fechar(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req dto.FecharCaixaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	claims := middleware.GetClaims(c)

	resp, err := h.svc.Fechar(c.Request.Context(), claims.RestaurantCnpj, id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Relatorio monta a reconciliação declarado-versus-apurado de um caixa fechado.
func (h *CaixaHandler) Relatorio(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	claims := middleware.GetClaims(c)

	resp, err := h.relatorio.Fechamento(c.Request.Context(), claims.RestaurantCnpj, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *CaixaHandler) Delete(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	claims := middleware.GetClaims(c)

	if err := h.svc.Delete(c.Request.Context(), claims.RestaurantCnpj, id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
