package handler

import (
	"errors"
	"net/http"

	"github.com/AR-Project/wpt-v3/internal/apperror"
	"github.com/AR-Project/wpt-v3/internal/asset"

	"github.com/labstack/echo/v4"
)

// UploadImage stores the multipart field "image"
func (h *Handler) UploadImage(c echo.Context) error {
	p, err := actor(c)
	if err != nil {
		return respondError(c, err)
	}
	fh, err := c.FormFile("image")
	if errors.Is(err, http.ErrMissingFile) {
		return respondError(c, apperror.BadRequest("image is required"))
	}
	if err != nil {
		return respondError(c, apperror.BadRequest("invalid multipart form"))
	}
	f, err := fh.Open()
	if err != nil {
		return respondError(c, apperror.Internal("open upload", err))
	}
	defer f.Close()

	img, err := h.assets.Create(c.Request().Context(), p, asset.Upload{FileName: fh.Filename, Body: f})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, img)
}

func (h *Handler) DeleteImage(c echo.Context) error {
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
	if err := h.assets.Delete(c.Request().Context(), p, req.ID); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "image deleted"})
}
