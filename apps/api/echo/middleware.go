package echoapi

import (
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/trezcool/gradebook/services/metrics"
)

func adminMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			claims, err := getContextClaims(ctx)
			if err != nil {
				return err
			}
			if claims.isAdmin() {
				return next(ctx)
			}
			return errHttpForbidden
		}
	}
}

// requestIDMiddleware tags every request (and its response) with an X-Request-ID, keeping the client's one if any.
func requestIDMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			rid := ctx.Request().Header.Get(echo.HeaderXRequestID)
			if rid == "" {
				rid = uuid.New().String()
				ctx.Request().Header.Set(echo.HeaderXRequestID, rid)
			}
			ctx.Response().Header().Set(echo.HeaderXRequestID, rid)
			return next(ctx)
		}
	}
}

// metricsMiddleware counts requests by route. Errors are handled here so the final status code is known.
func metricsMiddleware(m *metricsvc.Metrics) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			if err := next(ctx); err != nil {
				ctx.Error(err)
			}
			m.ObserveRequest(ctx.Request().Method, ctx.Path(), ctx.Response().Status)
			return nil
		}
	}
}
