package dashboard

import (
	"context"

	"github.com/cmlabs-hris/hrpulse-backend-go/internal/domain/attendance"
)

// DashboardService defines the interface for dashboard operations
type DashboardService interface {
	// GetToday loads employee counts and today's attendance concurrently
	GetToday(ctx context.Context) (TodayResponse, error)

	// Subscribe streams scan outcomes until ctx is done. The returned func
	// releases the subscription early.
	Subscribe(ctx context.Context) (<-chan attendance.RecordedEvent, func())
}
