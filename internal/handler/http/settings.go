package http

import (
	"encoding/json"
	"net/http"

	"github.com/cmlabs-hris/hrpulse-backend-go/internal/domain/settings"
	"github.com/cmlabs-hris/hrpulse-backend-go/internal/handler/http/response"
)

type SettingsHandler interface {
	GetAttendanceSettings(w http.ResponseWriter, r *http.Request)
	UpdateAttendanceSettings(w http.ResponseWriter, r *http.Request)
}

type settingsHandlerImpl struct {
	settingsService settings.SettingsService
}

func NewSettingsHandler(settingsService settings.SettingsService) SettingsHandler {
	return &settingsHandlerImpl{settingsService: settingsService}
}

// GetAttendanceSettings implements SettingsHandler.
func (h *settingsHandlerImpl) GetAttendanceSettings(w http.ResponseWriter, r *http.Request) {
	result, err := h.settingsService.GetAttendanceSettings(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// UpdateAttendanceSettings implements SettingsHandler.
func (h *settingsHandlerImpl) UpdateAttendanceSettings(w http.ResponseWriter, r *http.Request) {
	var req settings.UpdateSettingsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	result, err := h.settingsService.UpdateAttendanceSettings(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Attendance settings updated", result)
}
