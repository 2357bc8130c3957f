package middleware

import (
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/ecowork/api/transport"
	"github.com/fastygo/ecowork/domain"
	"github.com/fastygo/ecowork/pkg/httpcontext"
)

// CurrentIdentity is satisfied by the session store.
type CurrentIdentity interface {
	Current() *domain.Identity
}

// RequireSession rejects requests while no identity is signed in and hands the
// identity to the next handler.
func RequireSession(session CurrentIdentity, logger *zap.Logger) func(fasthttp.RequestHandler) fasthttp.RequestHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(next fasthttp.RequestHandler) fasthttp.RequestHandler {
		return func(ctx *fasthttp.RequestCtx) {
			identity := session.Current()
			if identity == nil {
				logger.Debug("request without session",
					zap.String("request_id", httpcontext.RequestID(ctx)),
					zap.ByteString("path", ctx.Path()),
				)
				ctx.Response.Header.SetContentType("application/json")
				ctx.SetStatusCode(fasthttp.StatusUnauthorized)
				ctx.SetBody(transport.NewError(string(domain.ErrCodeUnauthorized), domain.ErrNotAuthenticated.Message, nil).Bytes())
				return
			}
			httpcontext.SetIdentity(ctx, identity)
			next(ctx)
		}
	}
}
