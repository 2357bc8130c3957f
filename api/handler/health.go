package handler

import (
	"net/http"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/ecowork/api/transport"
	"github.com/fastygo/ecowork/domain"
	"github.com/fastygo/ecowork/internal/infrastructure/monitor"
	"github.com/fastygo/ecowork/pkg/httpcontext"
)

// StatusSource exposes the latest connection status.
type StatusSource interface {
	GetStatus() monitor.Status
}

// SessionViewer exposes the current session.
type SessionViewer interface {
	Snapshot() domain.Session
}

type HealthHandler struct {
	baseHandler
	monitor StatusSource
	session SessionViewer
}

func NewHealthHandler(mon StatusSource, session SessionViewer, adapter *httpcontext.Adapter, logger *zap.Logger) *HealthHandler {
	return &HealthHandler{
		baseHandler: newBaseHandler(adapter, logger),
		monitor:     mon,
		session:     session,
	}
}

// Check reports 200 while session storage works, even with the backend down,
// since the client keeps serving demo data.
//
// @Summary Health check
// @Tags health
// @Router /health [get]
func (h *HealthHandler) Check(ctx *fasthttp.RequestCtx) {
	status := h.monitor.GetStatus()
	snap := h.session.Snapshot()
	payload := map[string]interface{}{
		"timestamp":  time.Now().UTC(),
		"last_check": status.LastCheck,
		"services": map[string]interface{}{
			"backend": status.Backend,
			"storage": status.Storage,
		},
		"session": map[string]interface{}{
			"authenticated": snap.Authenticated(),
			"degraded":      snap.Degraded,
		},
	}

	if status.Storage {
		h.respondSuccess(ctx, http.StatusOK, payload)
		return
	}
	h.respondJSON(ctx, http.StatusServiceUnavailable, transport.NewError("DEGRADED", "session storage unavailable", payload))
}
