package middleware

import (
	"net/http"
	"strings"

	"github.com/AR-Project/wpt-v3/internal/apperror"
	"github.com/AR-Project/wpt-v3/internal/principal"
	"github.com/AR-Project/wpt-v3/pkg/logger"
	"github.com/AR-Project/wpt-v3/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

const PrincipalKey = "principal"

// AuthMiddleware resolves the Bearer token into a Principal and stores it on
// both the echo context and the request context.
func AuthMiddleware(resolver *principal.Resolver) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			log := logger.FromContext(c)

			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				log.Debug("Missing Authorization header")
				return unauthorized(c, "missing authorization token")
			}
			parts := strings.Fields(authHeader)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				log.Debug("Invalid Authorization header format")
				return unauthorized(c, "invalid authorization format, expected Bearer token")
			}

			p, err := resolver.Resolve(c.Request().Context(), parts[1])
			if err != nil {
				prometheus.RecordAuthAttempt(err)
				e := apperror.As(err)
				if e.Kind == apperror.KindInternal {
					log.Error("Principal lookup failed", zap.Error(err))
				} else {
					log.Debug("Rejected token", zap.Error(err))
				}
				return c.JSON(apperror.HTTPStatus(e.Kind), echo.Map{"error": e.Message, "kind": e.Kind})
			}

			c.Set(PrincipalKey, p)
			req := c.Request()
			ctx := principal.WithPrincipal(req.Context(), p)
			ctx = logger.WithLogger(ctx, log.With(zap.String("user_id", p.ID)))
			c.SetRequest(req.WithContext(ctx))
			return next(c)
		}
	}
}

func unauthorized(c echo.Context, msg string) error {
	prometheus.RecordAuthAttempt(apperror.ErrUnauthorized)
	return c.JSON(http.StatusUnauthorized, echo.Map{"error": msg, "kind": apperror.KindUnauthorized})
}

// GetPrincipal returns the Principal set by AuthMiddleware, or nil
func GetPrincipal(c echo.Context) *principal.Principal {
	if p, ok := c.Get(PrincipalKey).(*principal.Principal); ok {
		return p
	}
	if p, ok := principal.FromContext(c.Request().Context()); ok {
		return p
	}
	return nil
}
