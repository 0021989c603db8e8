package validator

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

type ValidationError struct {
	Field   string
	Message string
}

type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	var msgs []string
	for _, err := range v {
		msgs = append(msgs, err.Field+": "+err.Message)
	}
	return strings.Join(msgs, "; ")
}

func (v ValidationErrors) ToMap() map[string]string {
	result := make(map[string]string)
	for _, err := range v {
		result[err.Field] = err.Message
	}
	return result
}

// IsEmpty checks if a string is empty after trimming whitespace.
func IsEmpty(s string) bool {
	return strings.TrimSpace(s) == ""
}

// UUIDv7 regex: version 7 (the 15th character must be '7'), all lowercase hex digits.
var uuidv7Regex = regexp.MustCompile(`^[0-9a-f]{8}-[0-9a-f]{4}-7[0-9a-f]{3}-[89ab][0-9a-f]{3}-[0-9a-f]{12}$`)

// UUIDv7 validation
func IsValidUUID(uuid string) bool {
	return uuidv7Regex.MatchString(strings.ToLower(uuid))
}

// Date validation
func IsValidDate(dateStr string) (time.Time, bool) {
	date, err := time.Parse("2006-01-02", dateStr)
	return date, err == nil
}

var clockRegex = regexp.MustCompile(`^([01]\d|2[0-3]):[0-5]\d$`)

// IsValidClockTime accepts a 24h "HH:MM" time of day.
func IsValidClockTime(s string) bool {
	return clockRegex.MatchString(s)
}

// Slice contains check
func IsInSlice(value string, slice []string) bool {
	for _, item := range slice {
		if item == value {
			return true
		}
	}
	return false
}

// Login codes: 3-32 chars, A-Z, a-z, 0-9, ., _, -
var employeeCodeRegex = regexp.MustCompile(`^[A-Za-z0-9._-]{3,32}$`)

func IsValidEmployeeCode(code string) bool {
	return employeeCodeRegex.MatchString(code)
}

// Pagination clamps page and limit to sane defaults and reports out-of-range values.
func Pagination(page, limit *int, maxLimit int) ValidationErrors {
	var errs ValidationErrors
	if *page < 0 {
		errs = append(errs, ValidationError{Field: "page", Message: "page must be a positive number"})
	}
	if *page == 0 {
		*page = 1
	}
	if *limit < 0 {
		errs = append(errs, ValidationError{Field: "limit", Message: "limit must be a positive number"})
	}
	if *limit == 0 {
		*limit = 20
	}
	if *limit > maxLimit {
		errs = append(errs, ValidationError{Field: "limit", Message: "limit must not exceed " + strconv.Itoa(maxLimit)})
	}
	return errs
}
