package handler

import (
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/ecowork/pkg/httpcontext"
	directoryUC "github.com/fastygo/ecowork/usecase/directory"
)

type DirectoryHandler struct {
	baseHandler
	uc *directoryUC.UseCase
}

func NewDirectoryHandler(uc *directoryUC.UseCase, adapter *httpcontext.Adapter, logger *zap.Logger) *DirectoryHandler {
	return &DirectoryHandler{
		baseHandler: newBaseHandler(adapter, logger),
		uc:          uc,
	}
}

// @Summary Users of the caller's company
// @Tags directory
// @Router /api/v1/users [get]
func (h *DirectoryHandler) Users(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	users, source, err := h.uc.Users(stdCtx, httpcontext.Identity(ctx))
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSourced(ctx, http.StatusOK, users, source)
}

// @Summary User details
// @Tags directory
// @Router /api/v1/users/{id} [get]
func (h *DirectoryHandler) User(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	user, source, err := h.uc.User(stdCtx, httpcontext.Identity(ctx), pathParam(ctx, "id"))
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSourced(ctx, http.StatusOK, user, source)
}

// @Summary Company details
// @Tags directory
// @Router /api/v1/companies/{id} [get]
func (h *DirectoryHandler) Company(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	company, source, err := h.uc.Company(stdCtx, httpcontext.Identity(ctx), pathParam(ctx, "id"))
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSourced(ctx, http.StatusOK, company, source)
}

func pathParam(ctx *fasthttp.RequestCtx, name string) string {
	value, _ := ctx.UserValue(name).(string)
	return value
}
