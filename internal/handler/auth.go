package handler

import (
	"net/http"

	"github.com/AR-Project/wpt-v3/internal/identity"
	"github.com/AR-Project/wpt-v3/pkg/logger"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// SignUp creates a tenant root user
func (h *Handler) SignUp(c echo.Context) error {
	var req identity.CreateInput
	if err := bind(c, &req); err != nil {
		return respondError(c, err)
	}
	req.Role = ""

	user, err := h.identity.Create(c.Request().Context(), req, nil)
	if err != nil {
		return respondError(c, err)
	}
	logger.FromContext(c).Info("User signed up", zap.String("user_id", user.ID))
	return c.JSON(http.StatusCreated, echo.Map{
		"message": "User registered successfully",
		"user":    user,
	})
}

func (h *Handler) SignIn(c echo.Context) error {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := bind(c, &req); err != nil {
		return respondError(c, err)
	}

	token, p, err := h.identity.SignIn(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"token": token, "user": p})
}

// Profile returns the authenticated principal
func (h *Handler) Profile(c echo.Context) error {
	p, err := actor(c)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, p)
}

// CreateChild adds a user to the caller's tenant
func (h *Handler) CreateChild(c echo.Context) error {
	p, err := actor(c)
	if err != nil {
		return respondError(c, err)
	}
	var req identity.CreateInput
	if err := bind(c, &req); err != nil {
		return respondError(c, err)
	}

	user, err := h.identity.CreateChild(c.Request().Context(), p, c.Param("parentId"), req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, user)
}
