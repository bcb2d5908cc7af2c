// Package handler maps the HTTP contract onto the domain services.
package handler

import (
	"github.com/AR-Project/wpt-v3/internal/apperror"
	"github.com/AR-Project/wpt-v3/internal/asset"
	"github.com/AR-Project/wpt-v3/internal/identity"
	"github.com/AR-Project/wpt-v3/internal/middleware"
	"github.com/AR-Project/wpt-v3/internal/principal"
	"github.com/AR-Project/wpt-v3/internal/service"
	"github.com/AR-Project/wpt-v3/pkg/logger"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

type Handler struct {
	identity *identity.Service
	services *service.Services
	assets   *asset.Service
}

func New(id *identity.Service, svc *service.Services, assets *asset.Service) *Handler {
	return &Handler{identity: id, services: svc, assets: assets}
}

// Register mounts every route on e. auth guards the /api routes except sign-up and sign-in.
func (h *Handler) Register(e *echo.Echo, auth echo.MiddlewareFunc) {
	e.GET("/health", HealthCheck)

	e.POST("/api/auth/sign-up", h.SignUp)
	e.POST("/api/auth/sign-in", h.SignIn)

	api := e.Group("/api", auth)

	api.GET("/profile", h.Profile)
	api.POST("/profile/user/:parentId/children", h.CreateChild)

	api.GET("/category", h.ListCategories)
	api.POST("/category", h.CreateCategory)
	api.PATCH("/category", h.RenameCategory)
	api.DELETE("/category", h.DeleteCategory)

	api.GET("/product", h.ListProducts)
	api.GET("/product/:id", h.GetProduct)
	api.POST("/product", h.CreateProduct)
	api.PATCH("/product", h.UpdateProduct)
	api.DELETE("/product", h.DeleteProduct)
	api.PATCH("/product/sort-order", h.ReorderProducts)

	api.GET("/vendor", h.ListVendors)
	api.POST("/vendor", h.CreateVendor)
	api.PATCH("/vendor", h.UpdateVendor)
	api.DELETE("/vendor", h.DeleteVendor)

	api.GET("/purchase-order", h.ListPurchaseOrders)
	api.POST("/purchase-order", h.CreatePurchaseOrder)
	api.GET("/purchase-order/:id", h.GetPurchaseOrder)
	api.DELETE("/purchase-order/:id", h.DeletePurchaseOrder)
	api.PATCH("/purchase-order/:id/sort-order", h.ReorderPurchaseItems)

	api.POST("/image", h.UploadImage)
	api.DELETE("/image", h.DeleteImage)
}

// respondError writes err as {"error", "kind"}. Internal causes are logged only.
func respondError(c echo.Context, err error) error {
	e := apperror.As(err)
	if e.Kind == apperror.KindInternal {
		logger.FromContext(c).Error("Request failed",
			zap.String("path", c.Path()),
			zap.Error(err))
	}
	return c.JSON(apperror.HTTPStatus(e.Kind), echo.Map{"error": e.Message, "kind": e.Kind})
}

func bind(c echo.Context, dst any) error {
	if err := c.Bind(dst); err != nil {
		logger.FromContext(c).Debug("Failed to parse request", zap.Error(err))
		return apperror.BadRequest("invalid request")
	}
	return nil
}

// actor returns the authenticated principal or an Unauthorized error
func actor(c echo.Context) (*principal.Principal, error) {
	p := middleware.GetPrincipal(c)
	if p == nil {
		return nil, apperror.Unauthorized("missing principal")
	}
	return p, nil
}

type idRequest struct {
	ID string `json:"id"`
}

func (r idRequest) require() error {
	if r.ID == "" {
		return apperror.BadRequest("id is required")
	}
	return nil
}
