// Package httpcontext bridges fasthttp request contexts and the
// context.Context the use cases expect.
package httpcontext

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/valyala/fasthttp"

	"github.com/fastygo/ecowork/domain"
	appLogger "github.com/fastygo/ecowork/pkg/logger"
)

const HeaderRequestID = "X-Request-ID"

const (
	userValueIdentity  = "ecowork.identity"
	userValueRequestID = "ecowork.request_id"
)

// Adapter derives a deadline-bound context for each gateway request.
type Adapter struct {
	timeout time.Duration
}

func NewAdapter(timeout time.Duration) *Adapter {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Adapter{timeout: timeout}
}

// Attach returns a context bounded by the adapter timeout that carries the
// request id and, behind the session middleware, the signed-in user id. The
// request id is echoed in the response header.
func (a *Adapter) Attach(ctx *fasthttp.RequestCtx) (context.Context, context.CancelFunc) {
	stdCtx, cancel := context.WithTimeout(context.Background(), a.timeout)

	reqID := RequestID(ctx)
	stdCtx = appLogger.ContextWithRequestID(stdCtx, reqID)
	if identity := Identity(ctx); identity != nil {
		stdCtx = appLogger.ContextWithUserID(stdCtx, identity.ID)
	}
	return stdCtx, cancel
}

// RequestID returns the id of the request, taking X-Request-ID when the
// caller sent one. The id is generated once per request.
func RequestID(ctx *fasthttp.RequestCtx) string {
	if ctx == nil {
		return uuid.NewString()
	}
	if id, ok := ctx.UserValue(userValueRequestID).(string); ok {
		return id
	}
	id := strings.TrimSpace(string(ctx.Request.Header.Peek(HeaderRequestID)))
	if id == "" {
		id = uuid.NewString()
	}
	ctx.SetUserValue(userValueRequestID, id)
	ctx.Response.Header.Set(HeaderRequestID, id)
	return id
}

// SetIdentity stores the session identity on the request for later handlers.
func SetIdentity(ctx *fasthttp.RequestCtx, identity *domain.Identity) {
	ctx.SetUserValue(userValueIdentity, identity)
}

// Identity returns the identity stored by SetIdentity, or nil.
func Identity(ctx *fasthttp.RequestCtx) *domain.Identity {
	if ctx == nil {
		return nil
	}
	identity, _ := ctx.UserValue(userValueIdentity).(*domain.Identity)
	return identity
}
