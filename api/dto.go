/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the internal domain model from the external API contract.

NAMING CONVENTION:
  - *Request:  Request body types from clients
  - *Response: Response types returned to clients
  - *DTO:      Nested response elements

MONEY FORMATTING:
  All monetary amounts cross the wire as display strings ("$0.50"); the
  decimal representation never leaves the domain layer.

VALIDATION:
  Validation is done in handlers and the domain layer, not in DTOs.
  DTOs are pure data carriers.

SEE ALSO:
  - handlers.go: Uses these types
*/
package api

// =============================================================================
// SCHEDULES
// =============================================================================

// CreateScheduleRequest is the body of POST /api/schedule.
type CreateScheduleRequest struct {
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

// OffDayDTO describes a weekend or holiday inside a requested range.
type OffDayDTO struct {
	Day    string `json:"day"`
	Date   string `json:"date"`
	Detail string `json:"detail"`
}

// CreateScheduleResponse reports what a creation charged and produced.
type CreateScheduleResponse struct {
	Message           string      `json:"message"`
	Charge            string      `json:"charge"`
	NumberOfActiveDay string      `json:"number_of_active_day"`
	ActiveDays        []string    `json:"active_days"`
	OffDays           []OffDayDTO `json:"off_days"`
	ExistingDays      []string    `json:"existing_days"`
}

// AttendanceEntryDTO is one roster employee's presence flag on a schedule.
type AttendanceEntryDTO struct {
	Username string `json:"username"`
	Attend   bool   `json:"attend"`
}

// ScheduleDTO is one schedule record in listings. Attendance carries the
// full company roster with a per-employee attend flag.
type ScheduleDTO struct {
	Date       string               `json:"date"`
	Day        string               `json:"day"`
	Attendance []AttendanceEntryDTO `json:"attendance"`
}

// ListSchedulesResponse wraps GET /api/schedule results.
type ListSchedulesResponse struct {
	Schedules []ScheduleDTO `json:"schedules"`
}

// DeleteScheduleResponse reports deleted dates and the refunded charge.
type DeleteScheduleResponse struct {
	Message          string   `json:"message"`
	DeletedSchedules []string `json:"deleted_schedules"`
	Charge           string   `json:"charge"`
}

// =============================================================================
// BILLING
// =============================================================================

// UpgradePlanRequest is the body of PUT /api/upgrade.
type UpgradePlanRequest struct {
	PlanType string `json:"plan_type"`
}

// InvitationCodeRequest is the body of PUT /api/invitation_code.
type InvitationCodeRequest struct {
	InvitationLimit int `json:"invitation_limit"`
}

// InvitationCodeResponse returns the freshly issued code.
type InvitationCodeResponse struct {
	InvitationCode  string `json:"invitation_code"`
	InvitationLimit int    `json:"invitation_limit"`
}

// TopUpSubmitRequest is the body of POST /api/topup.
type TopUpSubmitRequest struct {
	Amount float64 `json:"amount"`
}

// TopUpSubmitResponse acknowledges a pending top-up request.
type TopUpSubmitResponse struct {
	TopUpID int64  `json:"topup_id"`
	Amount  string `json:"amount"`
	Status  string `json:"status"`
	Time    string `json:"time"`
}

// TransactionsResponse wraps GET /api/transactions results. Each entry
// carries its type-specific metadata flattened alongside the fixed keys.
type TransactionsResponse struct {
	Transactions []map[string]any `json:"transactions"`
}

// =============================================================================
// SHARED
// =============================================================================

// MessageResponse is a bare acknowledgement.
type MessageResponse struct {
	Message string `json:"message"`
}

// ErrorResponse is the uniform error body.
type ErrorResponse struct {
	Message string `json:"message"`
}
