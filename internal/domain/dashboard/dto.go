package dashboard

// ========== TODAY ==========

// TodayResponse is the main dashboard: who came in today and how the headcount looks
type TodayResponse struct {
	Date            string                  `json:"date"` // Format: "YYYY-MM-DD"
	EmployeeSummary EmployeeSummaryResponse `json:"employee_summary"`
	AttendanceStats AttendanceStatsResponse `json:"attendance_stats"`
	Records         []AttendanceRecordItem  `json:"records"`
}

// EmployeeSummaryResponse counts employees by status
type EmployeeSummaryResponse struct {
	TotalEmployee    int64 `json:"total_employee"`
	ActiveEmployee   int64 `json:"active_employee"`
	OnLeaveEmployee  int64 `json:"on_leave_employee"`
	InactiveEmployee int64 `json:"inactive_employee"`
}

// AttendanceStatsResponse represents attendance statistics for a specific day
type AttendanceStatsResponse struct {
	OnTime        int64   `json:"on_time"`
	Late          int64   `json:"late"`
	Absent        int64   `json:"absent"` // active employees without a check-in
	CheckedOut    int64   `json:"checked_out"`
	OnTimePercent float64 `json:"on_time_percent"`
	LatePercent   float64 `json:"late_percent"`
	AbsentPercent float64 `json:"absent_percent"`
}

// AttendanceRecordItem represents a single check-in on the dashboard list
type AttendanceRecordItem struct {
	No           int     `json:"no"`
	EmployeeID   string  `json:"employee_id"`
	EmployeeName string  `json:"employee_name"`
	Status       string  `json:"status"`
	DelayMinutes int     `json:"delay_minutes"`
	CheckIn      string  `json:"check_in"` // Format: "HH:MM"
	CheckOut     *string `json:"check_out,omitempty"`
}
