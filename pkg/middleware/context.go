package middleware

import (
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	clovercontext "github.com/Ramsey-B/clover/pkg/context"
)

const (
	// HeaderTenantID is the header key for tenant ID
	HeaderTenantID = "X-Tenant-ID"
)

func Context() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) (err error) {
			req := c.Request()

			// get request id from header
			requestID := req.Header.Get(echo.HeaderXRequestID)
			if requestID == "" {
				requestID = uuid.New().String()
			}

			// get tenant id from header
			tenantID := req.Header.Get(HeaderTenantID)

			ctx := req.Context()
			ctx = clovercontext.SetRequestID(ctx, requestID)
			ctx = clovercontext.SetMethod(ctx, req.Method)
			ctx = clovercontext.SetRoute(ctx, req.URL.Path)
			ctx = clovercontext.SetRemoteIP(ctx, c.RealIP())
			ctx = clovercontext.SetTenantID(ctx, tenantID)

			c.SetRequest(req.WithContext(ctx))

			return next(c)
		}
	}
}
