package http

import (
	"net/http"
	"time"

	"github.com/cmlabs-hris/hrpulse-backend-go/internal/domain/dashboard"
	"github.com/cmlabs-hris/hrpulse-backend-go/internal/handler/http/response"
)

type DashboardHandler interface {
	GetToday(w http.ResponseWriter, r *http.Request)
	Stream(w http.ResponseWriter, r *http.Request)
}

type dashboardHandlerImpl struct {
	dashboardService dashboard.DashboardService
}

func NewDashboardHandler(dashboardService dashboard.DashboardService) DashboardHandler {
	return &dashboardHandlerImpl{dashboardService: dashboardService}
}

// GetToday implements DashboardHandler.
func (h *dashboardHandlerImpl) GetToday(w http.ResponseWriter, r *http.Request) {
	result, err := h.dashboardService.GetToday(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// Stream implements DashboardHandler. Every recorded scan becomes an
// "attendance" event; clients refetch GetToday on receipt.
func (h *dashboardHandlerImpl) Stream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := openStream(w)
	if !ok {
		return
	}

	ctx := r.Context()
	events, cleanup := h.dashboardService.Subscribe(ctx)
	defer cleanup()

	if err := writeEvent(w, flusher, "connected", map[string]string{"status": "connected"}); err != nil {
		return
	}

	keepalive := time.NewTicker(streamKeepalive)
	defer keepalive.Stop()

	for {
		select {
		case event, ok := <-events:
			if !ok {
				return
			}
			if err := writeEvent(w, flusher, "attendance", event); err != nil {
				return
			}

		case <-keepalive.C:
			if err := writeEvent(w, flusher, "ping", map[string]int64{"timestamp": time.Now().Unix()}); err != nil {
				return
			}

		case <-ctx.Done():
			return
		}
	}
}
