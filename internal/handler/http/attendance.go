package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"time"

	"github.com/cmlabs-hris/hrpulse-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hrpulse-backend-go/internal/handler/http/response"
	"github.com/go-chi/chi/v5"
)

type AttendanceHandler interface {
	Scan(w http.ResponseWriter, r *http.Request)
	IssueToken(w http.ResponseWriter, r *http.Request)
	StreamTokens(w http.ResponseWriter, r *http.Request)
	List(w http.ResponseWriter, r *http.Request)
	GetMyAttendance(w http.ResponseWriter, r *http.Request)
	Get(w http.ResponseWriter, r *http.Request)
	Export(w http.ResponseWriter, r *http.Request)
	PurgeStaleTokens(w http.ResponseWriter, r *http.Request)
}

type attendanceHandlerImpl struct {
	attendanceService attendance.AttendanceService
	tick              time.Duration
}

func NewAttendanceHandler(attendanceService attendance.AttendanceService) AttendanceHandler {
	return &attendanceHandlerImpl{
		attendanceService: attendanceService,
		tick:              time.Second,
	}
}

// Scan implements AttendanceHandler.
func (h *attendanceHandlerImpl) Scan(w http.ResponseWriter, r *http.Request) {
	var req attendance.ScanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	result, err := h.attendanceService.Scan(r.Context(), req)
	if err != nil {
		slog.Info("scan rejected", "error", err)
		response.HandleError(w, err)
		return
	}

	if result.Action == string(attendance.ActionCheckIn) {
		response.Created(w, result.Message, result)
		return
	}
	response.SuccessWithMessage(w, result.Message, result)
}

// IssueToken implements AttendanceHandler.
func (h *attendanceHandlerImpl) IssueToken(w http.ResponseWriter, r *http.Request) {
	result, err := h.attendanceService.IssueToken(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Attendance code issued", result)
}

// StreamTokens implements AttendanceHandler. The connection owns one rotation:
// a "token" event per issued code and a "countdown" event every tick until the
// client disconnects, which stops the rotation.
func (h *attendanceHandlerImpl) StreamTokens(w http.ResponseWriter, r *http.Request) {
	flusher, ok := openStream(w)
	if !ok {
		return
	}

	ctx := r.Context()
	rotation := h.attendanceService.StartRotation(ctx)
	defer rotation.Stop()

	ticker := time.NewTicker(h.tick)
	defer ticker.Stop()

	for {
		select {
		case issued, ok := <-rotation.Updates():
			if !ok {
				return
			}
			if err := writeEvent(w, flusher, "token", h.attendanceService.MapIssuedToken(issued)); err != nil {
				return
			}

		case now := <-ticker.C:
			current, ok := rotation.Current()
			if !ok {
				continue
			}
			countdown := attendance.CountdownResponse{
				TokenID:          current.Token.ID,
				RemainingSeconds: int(math.Ceil(rotation.Remaining(now).Seconds())),
			}
			if err := writeEvent(w, flusher, "countdown", countdown); err != nil {
				return
			}

		case <-ctx.Done():
			return
		}
	}
}

func attendanceFilter(r *http.Request) attendance.AttendanceFilter {
	filter := attendance.AttendanceFilter{
		EmployeeID: optional(r, "employee_id"),
		Date:       optional(r, "date"),
		StartDate:  optional(r, "start_date"),
		EndDate:    optional(r, "end_date"),
		Status:     optional(r, "status"),
		OpenOnly:   r.URL.Query().Get("open_only") == "true",
		SortBy:     r.URL.Query().Get("sort_by"),
		SortOrder:  r.URL.Query().Get("sort_order"),
	}
	filter.Page, filter.Limit = pagination(r)
	return filter
}

// List implements AttendanceHandler.
func (h *attendanceHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	results, err := h.attendanceService.ListAttendance(r.Context(), attendanceFilter(r))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, results)
}

// GetMyAttendance implements AttendanceHandler.
func (h *attendanceHandlerImpl) GetMyAttendance(w http.ResponseWriter, r *http.Request) {
	filter := attendance.MyAttendanceFilter{
		StartDate: optional(r, "start_date"),
		EndDate:   optional(r, "end_date"),
		Status:    optional(r, "status"),
	}
	filter.Page, filter.Limit = pagination(r)

	results, err := h.attendanceService.GetMyAttendance(r.Context(), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, results)
}

// Get implements AttendanceHandler.
func (h *attendanceHandlerImpl) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	result, err := h.attendanceService.GetAttendance(r.Context(), id)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// Export implements AttendanceHandler.
func (h *attendanceHandlerImpl) Export(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := h.attendanceService.ExportAttendance(r.Context(), attendanceFilter(r), &buf); err != nil {
		response.HandleError(w, err)
		return
	}

	filename := fmt.Sprintf("attendance-%s.xlsx", time.Now().Format("20060102-150405"))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		slog.Error("failed to write attendance export", "error", err)
	}
}

// PurgeStaleTokens implements AttendanceHandler.
func (h *attendanceHandlerImpl) PurgeStaleTokens(w http.ResponseWriter, r *http.Request) {
	result, err := h.attendanceService.PurgeStaleTokens(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, fmt.Sprintf("%d stale attendance codes deleted", result.Deleted), result)
}
