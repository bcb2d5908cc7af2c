package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

type vendorRequest struct {
	ID   string  `json:"id"`
	Name *string `json:"name"`
}

func (h *Handler) ListVendors(c echo.Context) error {
	p, err := actor(c)
	if err != nil {
		return respondError(c, err)
	}
	vendors, err := h.services.Vendor.List(c.Request().Context(), p)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, vendors)
}

func (h *Handler) CreateVendor(c echo.Context) error {
	p, err := actor(c)
	if err != nil {
		return respondError(c, err)
	}
	var req vendorRequest
	if err := bind(c, &req); err != nil {
		return respondError(c, err)
	}
	name := ""
	if req.Name != nil {
		name = *req.Name
	}
	vendor, err := h.services.Vendor.Create(c.Request().Context(), p, name)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, vendor)
}

func (h *Handler) UpdateVendor(c echo.Context) error {
	p, err := actor(c)
	if err != nil {
		return respondError(c, err)
	}
	var req vendorRequest
	if err := bind(c, &req); err != nil {
		return respondError(c, err)
	}
	if err := (idRequest{ID: req.ID}).require(); err != nil {
		return respondError(c, err)
	}
	vendor, err := h.services.Vendor.Update(c.Request().Context(), p, req.ID, req.Name)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, vendor)
}

func (h *Handler) DeleteVendor(c echo.Context) error {
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
	if err := h.services.Vendor.Delete(c.Request().Context(), p, req.ID); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "vendor deleted"})
}
