package handler

import (
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/ecowork/api/transport"
	"github.com/fastygo/ecowork/domain"
	"github.com/fastygo/ecowork/internal/apiclient"
	"github.com/fastygo/ecowork/pkg/httpcontext"
	sessionUC "github.com/fastygo/ecowork/usecase/session"
)

type SessionHandler struct {
	baseHandler
	store *sessionUC.Store
}

func NewSessionHandler(store *sessionUC.Store, adapter *httpcontext.Adapter, logger *zap.Logger) *SessionHandler {
	return &SessionHandler{
		baseHandler: newBaseHandler(adapter, logger),
		store:       store,
	}
}

// @Summary Current session
// @Tags session
// @Router /api/v1/session [get]
func (h *SessionHandler) Get(ctx *fasthttp.RequestCtx) {
	h.respondSuccess(ctx, http.StatusOK, h.store.Snapshot())
}

// @Summary Sign in
// @Tags session
// @Router /api/v1/session/login [post]
func (h *SessionHandler) Login(ctx *fasthttp.RequestCtx) {
	var req transport.LoginRequest
	if !decodeBody(ctx, &req) {
		h.invalidPayload(ctx)
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	snap, err := h.store.Login(stdCtx, req.Email, req.Password)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, snap)
}

// @Summary Register a company and sign it in
// @Tags session
// @Router /api/v1/session/register/company [post]
func (h *SessionHandler) RegisterCompany(ctx *fasthttp.RequestCtx) {
	var req transport.CompanyRegistrationRequest
	if !decodeBody(ctx, &req) {
		h.invalidPayload(ctx)
		return
	}
	plan, ok := domain.ParsePlan(req.Plan)
	if !ok {
		h.respondError(ctx, domain.NewError(domain.ErrCodeInvalid, "plan must be BASIC, PREMIUM or ENTERPRISE"))
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	snap, company, err := h.store.RegisterCompany(stdCtx, apiclient.CompanySignup{
		Name:     req.Name,
		TaxID:    req.TaxID,
		Email:    req.Email,
		Password: req.Password,
		Phone:    req.Phone,
		Address:  req.Address,
		Plan:     plan,
	})
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusCreated, map[string]interface{}{
		"session": snap,
		"company": company,
	})
}

// @Summary Register an employee with an invite code
// @Tags session
// @Router /api/v1/session/register/employee [post]
func (h *SessionHandler) RegisterEmployee(ctx *fasthttp.RequestCtx) {
	var req transport.EmployeeRegistrationRequest
	if !decodeBody(ctx, &req) {
		h.invalidPayload(ctx)
		return
	}
	signup := apiclient.EmployeeSignup{
		Name:       req.Name,
		Email:      req.Email,
		Password:   req.Password,
		InviteCode: req.InviteCode,
		DistanceKm: req.Distance,
	}
	if req.Transportation != "" {
		mode, ok := domain.ParseTransportMode(req.Transportation)
		if !ok {
			h.respondError(ctx, domain.NewError(domain.ErrCodeInvalid, "unknown transportation"))
			return
		}
		signup.Transportation = mode
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	snap, err := h.store.RegisterEmployee(stdCtx, signup)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusCreated, snap)
}

// @Summary Sign out
// @Tags session
// @Router /api/v1/session [delete]
func (h *SessionHandler) Logout(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	h.store.Logout(stdCtx)
	h.respondSuccess(ctx, http.StatusOK, h.store.Snapshot())
}
