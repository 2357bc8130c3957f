package handler

import (
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/ecowork/pkg/httpcontext"
	companyUC "github.com/fastygo/ecowork/usecase/company"
)

type CompanyHandler struct {
	baseHandler
	uc *companyUC.UseCase
}

func NewCompanyHandler(uc *companyUC.UseCase, adapter *httpcontext.Adapter, logger *zap.Logger) *CompanyHandler {
	return &CompanyHandler{
		baseHandler: newBaseHandler(adapter, logger),
		uc:          uc,
	}
}

// @Summary Company dashboard
// @Tags company
// @Router /api/v1/company/dashboard [get]
func (h *CompanyHandler) Dashboard(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	overview, source, err := h.uc.Dashboard(stdCtx, httpcontext.Identity(ctx))
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSourced(ctx, http.StatusOK, overview, source)
}
