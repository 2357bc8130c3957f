package handler

import (
	"net/http"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/ecowork/api/transport"
	"github.com/fastygo/ecowork/domain"
	"github.com/fastygo/ecowork/pkg/httpcontext"
	rewardsUC "github.com/fastygo/ecowork/usecase/rewards"
)

type RewardsHandler struct {
	baseHandler
	uc *rewardsUC.UseCase
}

func NewRewardsHandler(uc *rewardsUC.UseCase, adapter *httpcontext.Adapter, logger *zap.Logger) *RewardsHandler {
	return &RewardsHandler{
		baseHandler: newBaseHandler(adapter, logger),
		uc:          uc,
	}
}

// @Summary Home office history
// @Tags rewards
// @Router /api/v1/records [get]
func (h *RewardsHandler) ListRecords(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	records, source, err := h.uc.History(stdCtx, httpcontext.Identity(ctx))
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSourced(ctx, http.StatusOK, records, source)
}

// @Summary Register a home office day
// @Tags rewards
// @Router /api/v1/records [post]
func (h *RewardsHandler) CreateRecord(ctx *fasthttp.RequestCtx) {
	var req transport.HomeOfficeRequest
	if !decodeBody(ctx, &req) {
		h.invalidPayload(ctx)
		return
	}
	entry := rewardsUC.DayEntry{Mode: req.Transportation, DistanceKm: req.Distance}
	if req.Date != "" {
		day, err := time.Parse(domain.DateLayout, req.Date)
		if err != nil {
			h.respondError(ctx, domain.WrapError(domain.ErrCodeInvalid, "recordDate must be YYYY-MM-DD", err))
			return
		}
		entry.Date = day
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	record, source, err := h.uc.LogHomeOffice(stdCtx, httpcontext.Identity(ctx), entry)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSourced(ctx, http.StatusCreated, record, source)
}

// @Summary Employee stats
// @Tags rewards
// @Router /api/v1/stats [get]
func (h *RewardsHandler) Stats(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	stats, source, err := h.uc.Stats(stdCtx, httpcontext.Identity(ctx))
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSourced(ctx, http.StatusOK, stats, source)
}

// @Summary Benefit catalog
// @Tags rewards
// @Router /api/v1/benefits [get]
func (h *RewardsHandler) Benefits(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	benefits, source, err := h.uc.Benefits(stdCtx, string(ctx.QueryArgs().Peek("category")))
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSourced(ctx, http.StatusOK, benefits, source)
}

// @Summary Redeem a benefit
// @Tags rewards
// @Router /api/v1/benefits/redeem [post]
func (h *RewardsHandler) Redeem(ctx *fasthttp.RequestCtx) {
	var req transport.RedeemRequest
	if !decodeBody(ctx, &req) || req.BenefitID == "" {
		h.invalidPayload(ctx)
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	redemption, source, err := h.uc.Redeem(stdCtx, httpcontext.Identity(ctx), req.BenefitID)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSourced(ctx, http.StatusCreated, redemption, source)
}
