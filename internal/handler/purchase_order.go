package handler

import (
	"net/http"

	"github.com/AR-Project/wpt-v3/internal/service"

	"github.com/labstack/echo/v4"
)

func (h *Handler) ListPurchaseOrders(c echo.Context) error {
	p, err := actor(c)
	if err != nil {
		return respondError(c, err)
	}
	orders, err := h.services.PurchaseOrder.List(c.Request().Context(), p)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, orders)
}

func (h *Handler) GetPurchaseOrder(c echo.Context) error {
	p, err := actor(c)
	if err != nil {
		return respondError(c, err)
	}
	order, err := h.services.PurchaseOrder.Get(c.Request().Context(), p, c.Param("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, order)
}

func (h *Handler) CreatePurchaseOrder(c echo.Context) error {
	p, err := actor(c)
	if err != nil {
		return respondError(c, err)
	}
	var req service.CreatePurchaseOrderInput
	if err := bind(c, &req); err != nil {
		return respondError(c, err)
	}
	order, err := h.services.PurchaseOrder.Create(c.Request().Context(), p, req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, order)
}

func (h *Handler) DeletePurchaseOrder(c echo.Context) error {
	p, err := actor(c)
	if err != nil {
		return respondError(c, err)
	}
	if err := h.services.PurchaseOrder.Delete(c.Request().Context(), p, c.Param("id")); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "purchase order deleted"})
}

func (h *Handler) ReorderPurchaseItems(c echo.Context) error {
	p, err := actor(c)
	if err != nil {
		return respondError(c, err)
	}
	var req struct {
		PurchaseItemIDsNewOrder []string `json:"purchaseItemIdsNewOrder"`
	}
	if err := bind(c, &req); err != nil {
		return respondError(c, err)
	}
	err = h.services.PurchaseOrder.ReorderItems(c.Request().Context(), p, c.Param("id"), req.PurchaseItemIDsNewOrder)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "sort order updated"})
}
