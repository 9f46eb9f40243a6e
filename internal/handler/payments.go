package handler

import (
	"net/http"

	"github.com/BistroPdv/bistro-api/internal/dto"
	"github.com/BistroPdv/bistro-api/internal/middleware"
	"github.com/BistroPdv/bistro-api/internal/service"

	"github.com/gin-gonic/gin"
)

type PaymentHandler struct{ svc service.PaymentService }

func NewPaymentHandler(svc service.PaymentService) *PaymentHandler {
	return &PaymentHandler{svc: svc}
}

func (h *PaymentHandler) Create(c *gin.Context) {
	var req dto.CreatePaymentRequest
	if !bindAndValidate(c, &req) {
		return
	}
	claims := middleware.GetClaims(c)

	resp, err := h.svc.Create(c.Request.Context(), claims.RestaurantCnpj, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *PaymentHandler) FindAll(c *gin.Context) {
	var q dto.PaymentListQuery
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

func (h *PaymentHandler) FindOne(c *gin.Context) {
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

func (h *PaymentHandler) Update(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req dto.UpdatePaymentRequest
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
