package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

type categoryRequest struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func (h *Handler) ListCategories(c echo.Context) error {
	p, err := actor(c)
	if err != nil {
		return respondError(c, err)
	}
	categories, err := h.services.Category.List(c.Request().Context(), p)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, categories)
}

func (h *Handler) CreateCategory(c echo.Context) error {
	p, err := actor(c)
	if err != nil {
		return respondError(c, err)
	}
	var req categoryRequest
	if err := bind(c, &req); err != nil {
		return respondError(c, err)
	}
	category, err := h.services.Category.Create(c.Request().Context(), p, req.Name)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, category)
}

func (h *Handler) RenameCategory(c echo.Context) error {
	p, err := actor(c)
	if err != nil {
		return respondError(c, err)
	}
	var req categoryRequest
	if err := bind(c, &req); err != nil {
		return respondError(c, err)
	}
	if err := (idRequest{ID: req.ID}).require(); err != nil {
		return respondError(c, err)
	}
	category, err := h.services.Category.Rename(c.Request().Context(), p, req.ID, req.Name)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, category)
}

func (h *Handler) DeleteCategory(c echo.Context) error {
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
	if err := h.services.Category.Delete(c.Request().Context(), p, req.ID); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "category deleted"})
}
