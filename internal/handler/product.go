package handler

import (
	"net/http"

	"github.com/AR-Project/wpt-v3/internal/service"

	"github.com/labstack/echo/v4"
)

type updateProductRequest struct {
	ID string `json:"id"`
	service.UpdateProductInput
}

type reorderProductsRequest struct {
	CategoryID      string   `json:"categoryId"`
	ItemIDsNewOrder []string `json:"itemIdsNewOrder"`
}

// ListProducts lists the tenant's products, optionally of one category
func (h *Handler) ListProducts(c echo.Context) error {
	p, err := actor(c)
	if err != nil {
		return respondError(c, err)
	}
	products, err := h.services.Product.List(c.Request().Context(), p, c.QueryParam("categoryId"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, products)
}

func (h *Handler) GetProduct(c echo.Context) error {
	p, err := actor(c)
	if err != nil {
		return respondError(c, err)
	}
	product, err := h.services.Product.Get(c.Request().Context(), p, c.Param("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, product)
}

func (h *Handler) CreateProduct(c echo.Context) error {
	p, err := actor(c)
	if err != nil {
		return respondError(c, err)
	}
	var req service.CreateProductInput
	if err := bind(c, &req); err != nil {
		return respondError(c, err)
	}
	product, err := h.services.Product.Create(c.Request().Context(), p, req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, product)
}

func (h *Handler) UpdateProduct(c echo.Context) error {
	p, err := actor(c)
	if err != nil {
		return respondError(c, err)
	}
	var req updateProductRequest
	if err := bind(c, &req); err != nil {
		return respondError(c, err)
	}
	if err := (idRequest{ID: req.ID}).require(); err != nil {
		return respondError(c, err)
	}
	product, err := h.services.Product.Update(c.Request().Context(), p, req.ID, req.UpdateProductInput)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, product)
}

func (h *Handler) DeleteProduct(c echo.Context) error {
	p, err := actor(c)
	if err != nil {
		return respondError(c, err)
	}
	var req idRequest
	if err := bind(c, &req); err != nil {
		return respondError(c, err)
	}
	if err := req.require(); err != nil {
		return respondError(c, err)
	}
	if err := h.services.Product.Delete(c.Request().Context(), p, req.ID); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "product deleted"})
}

func (h *Handler) ReorderProducts(c echo.Context) error {
	p, err := actor(c)
	if err != nil {
		return respondError(c, err)
	}
	var req reorderProductsRequest
	if err := bind(c, &req); err != nil {
		return respondError(c, err)
	}
	if err := h.services.Product.Reorder(c.Request().Context(), p, req.CategoryID, req.ItemIDsNewOrder); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "sort order updated"})
}
