package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/ecowork/api/transport"
	"github.com/fastygo/ecowork/domain"
	"github.com/fastygo/ecowork/internal/apiclient"
	"github.com/fastygo/ecowork/pkg/httpcontext"
)

type baseHandler struct {
	adapter *httpcontext.Adapter
	logger  *zap.Logger
}

func newBaseHandler(adapter *httpcontext.Adapter, logger *zap.Logger) baseHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return baseHandler{adapter: adapter, logger: logger}
}

func (h baseHandler) requestContext(ctx *fasthttp.RequestCtx) (context.Context, context.CancelFunc) {
	if h.adapter != nil {
		return h.adapter.Attach(ctx)
	}
	return context.WithCancel(context.Background())
}

func (h baseHandler) respondJSON(ctx *fasthttp.RequestCtx, status int, payload transport.Envelope) {
	ctx.Response.Header.SetContentType("application/json")
	ctx.SetStatusCode(status)
	ctx.SetBody(payload.Bytes())
}

func (h baseHandler) respondSuccess(ctx *fasthttp.RequestCtx, status int, data interface{}) {
	h.respondJSON(ctx, status, transport.NewSuccess(data, nil))
}

func (h baseHandler) respondSourced(ctx *fasthttp.RequestCtx, status int, data interface{}, source apiclient.Source) {
	h.respondJSON(ctx, status, transport.NewSourced(data, string(source), source != apiclient.SourceBackend))
}

func (h baseHandler) respondError(ctx *fasthttp.RequestCtx, err error) {
	status, code := mapError(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error("request failed",
			zap.String("request_id", httpcontext.RequestID(ctx)),
			zap.ByteString("path", ctx.Path()),
			zap.Error(err),
		)
	}
	h.respondJSON(ctx, status, transport.NewError(code, err.Error(), nil))
}

func (h baseHandler) invalidPayload(ctx *fasthttp.RequestCtx) {
	h.respondJSON(ctx, http.StatusBadRequest, transport.NewError(string(domain.ErrCodeInvalid), "invalid payload", nil))
}

func decodeBody(ctx *fasthttp.RequestCtx, v interface{}) bool {
	return json.Unmarshal(ctx.PostBody(), v) == nil
}

func mapError(err error) (int, string) {
	codes := []struct {
		code   domain.ErrorCode
		status int
	}{
		{domain.ErrCodeInvalidCredentials, http.StatusUnauthorized},
		{domain.ErrCodeUnauthorized, http.StatusUnauthorized},
		{domain.ErrCodeForbidden, http.StatusForbidden},
		{domain.ErrCodeInvalid, http.StatusBadRequest},
		{domain.ErrCodeInvalidInviteCode, http.StatusUnprocessableEntity},
		{domain.ErrCodeInsufficientCredits, http.StatusConflict},
		{domain.ErrCodeNotFound, http.StatusNotFound},
		{domain.ErrCodeNetworkUnavailable, http.StatusServiceUnavailable},
		{domain.ErrCodeMalformedResponse, http.StatusBadGateway},
	}
	for _, c := range codes {
		if domain.IsDomainError(err, c.code) {
			return c.status, string(c.code)
		}
	}
	return http.StatusInternalServerError, string(domain.ErrCodeInternal)
}
