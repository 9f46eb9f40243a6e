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

type PedidoHandler struct{ svc service.PedidoService }

func NewPedidoHandler(svc service.PedidoService) *PedidoHandler { return &PedidoHandler{svc: svc} }

// Create abre um novo pedido. Status é sempre ABERTO, independente do corpo.
func (h *PedidoHandler) Create(c *gin.Context) {
	var req dto.CreatePedidoRequest
	if !bindAndValidate(c, &req) {
		return
	}
	claims := middleware.GetClaims(c)
	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		respondError(c, apierror.Validation("ID de usuário inválido no token"))
		return
	}

	resp, err := h.svc.Create(c.Request.Context(), claims.RestaurantCnpj, userID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *PedidoHandler) FindAll(c *gin.Context) {
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

func (h *PedidoHandler) FindOne(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	claims := middleware.GetClaims(c)
	prodImage := c.Query("prodImage") == "true"

	resp, err := h.svc.FindOne(c.Request.Context(), claims.RestaurantCnpj, id, prodImage)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// FindByMesa lista os pedidos de uma mesa, com filtros opcionais de status e
// comanda.
func (h *PedidoHandler) FindByMesa(c *gin.Context) {
	mesaID, ok := parseIDParam(c, "mesaId")
	if !ok {
		return
	}
	var q dto.FindByMesaQuery
	if !bindQueryAndValidate(c, &q) {
		return
	}
	claims := middleware.GetClaims(c)

	resp, err := h.svc.FindByMesa(c.Request.Context(), claims.RestaurantCnpj, mesaID, q)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *PedidoHandler) Update(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req dto.UpdatePedidoRequest
	if !bindAndValidate(c, &req) {
		return
	}
	claims := middleware.GetClaims(c)

	resp, err := h.svc.Update(c.Request.Context(), claims.RestaurantCnpj, id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Finalizar fecha o pedido contra um caixa aberto, registrando os pagamentos.
func (h *PedidoHandler) Finalizar(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req dto.FinalizarPedidoRequest
	if !bindAndValidate(c, &req) {
		return
	}
	claims := middleware.GetClaims(c)
	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		respondError(c, apierror.Validation("ID de usuário inválido no token"))
		return
	}

	resp, err := h.svc.Finalizar(c.Request.Context(), claims.RestaurantCnpj, id, userID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *PedidoHandler) Delete(c *gin.Context) {
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
