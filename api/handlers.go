/*
handlers.go - HTTP API handlers for the attendance engine

PURPOSE:
  Exposes the schedule-and-billing engine via REST API. Handles HTTP
  request/response, JSON serialization, and delegates to domain logic.

ENDPOINTS:
  Schedules:
    POST   /api/schedule         Create schedules over a date range (charged)
    GET    /api/schedule         List schedules (optional range + pagination)
    DELETE /api/schedule         Delete schedules over a date range (refunded)

  Billing:
    PUT    /api/upgrade          Upgrade the company plan tier
    PUT    /api/invitation_code  Issue a fresh invitation code
    POST   /api/topup            Submit a balance top-up request
    GET    /api/transactions     Billing audit history, newest first

IDENTITY:
  The company username arrives in the X-Company header, placed there by
  the authenticating gateway in front of this service. Requests without
  it are rejected by middleware before any handler runs.

ERROR HANDLING:
  Domain errors are mapped onto HTTP statuses in one place
  (writeDomainError):
  - 400: Validation errors, business-rule rejections
  - 404: Unknown company, no schedules in range
  - 500: Store failures, unreachable holiday calendar

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
*/
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/warp/attendance-engine/billing"
	"github.com/warp/attendance-engine/calendar"
	"github.com/warp/attendance-engine/invite"
	"github.com/warp/attendance-engine/schedule"
	"github.com/warp/attendance-engine/store/sqlite"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store  *sqlite.Store
	Ledger *schedule.Ledger
	Plans  *billing.PlanEngine
	TopUps *billing.TopUps
}

// NewHandler wires the engines around a store and holiday source.
func NewHandler(store *sqlite.Store, holidays calendar.Source) *Handler {
	return &Handler{
		Store:  store,
		Ledger: schedule.NewLedger(store, holidays),
		Plans:  billing.NewPlanEngine(store),
		TopUps: billing.NewTopUps(store),
	}
}

// =============================================================================
// SCHEDULE HANDLERS
// =============================================================================

// CreateSchedule creates one schedule record per workday in the range,
// charging the balance.
// POST /api/schedule
func (h *Handler) CreateSchedule(w http.ResponseWriter, r *http.Request) {
	username := companyFrom(r)

	var req CreateScheduleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	result, err := h.Ledger.Create(r.Context(), username, req.StartDate, req.EndDate)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	offDays := make([]OffDayDTO, len(result.OffDays))
	for i, d := range result.OffDays {
		offDays[i] = OffDayDTO{Day: d.Day, Date: d.Date.String(), Detail: d.Detail}
	}

	writeJSON(w, http.StatusCreated, CreateScheduleResponse{
		Message:           "Schedule created successfully",
		Charge:            result.Charge.Display(),
		NumberOfActiveDay: fmt.Sprintf("%d days", len(result.Created)),
		ActiveDays:        dateStrings(result.Created),
		OffDays:           offDays,
		ExistingDays:      dateStrings(result.Existing),
	})
}

// ListSchedules returns the company's schedule records with the
// employee roster joined into each record's attendance.
// GET /api/schedule?start_date=&end_date=&limit=&offset=
func (h *Handler) ListSchedules(w http.ResponseWriter, r *http.Request) {
	username := companyFrom(r)
	q := r.URL.Query()

	filter := schedule.ListFilter{
		StartDate: q.Get("start_date"),
		EndDate:   q.Get("end_date"),
	}
	var err error
	if filter.Limit, err = intParam(q.Get("limit"), "limit"); err != nil {
		writeDomainError(w, err)
		return
	}
	if filter.Offset, err = pageParam(q.Get("offset"), "offset"); err != nil {
		writeDomainError(w, err)
		return
	}

	company, err := h.Store.Company(r.Context(), username)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	records, err := h.Ledger.List(r.Context(), username, filter)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if len(records) == 0 {
		writeError(w, http.StatusNotFound, "No schedules found within the specified filter")
		return
	}

	dtos := make([]ScheduleDTO, len(records))
	for i, rec := range records {
		dtos[i] = ScheduleDTO{
			Date:       rec.Date.String(),
			Day:        rec.Day,
			Attendance: rosterAttendance(company.Employees, rec.Attendance),
		}
	}
	writeJSON(w, http.StatusOK, ListSchedulesResponse{Schedules: dtos})
}

// rosterAttendance joins the company roster against a record's stored
// attendance set: every employee appears, flagged attend or not.
func rosterAttendance(roster, attended []string) []AttendanceEntryDTO {
	attending := make(map[string]bool, len(attended))
	for _, u := range attended {
		attending[u] = true
	}

	entries := make([]AttendanceEntryDTO, len(roster))
	for i, u := range roster {
		entries[i] = AttendanceEntryDTO{Username: u, Attend: attending[u]}
	}
	return entries
}

// DeleteSchedule removes every record in the range and refunds the
// balance.
// DELETE /api/schedule?start_date=&end_date=
func (h *Handler) DeleteSchedule(w http.ResponseWriter, r *http.Request) {
	username := companyFrom(r)
	q := r.URL.Query()

	result, err := h.Ledger.Delete(r.Context(), username, q.Get("start_date"), q.Get("end_date"))
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, DeleteScheduleResponse{
		Message:          "Schedules deleted successfully",
		DeletedSchedules: dateStrings(result.Deleted),
		Charge:           result.Charge.Display(),
	})
}

// =============================================================================
// BILLING HANDLERS
// =============================================================================

// UpgradePlan moves the company to a higher plan tier.
// PUT /api/upgrade
func (h *Handler) UpgradePlan(w http.ResponseWriter, r *http.Request) {
	username := companyFrom(r)

	var req UpgradePlanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	target, err := billing.ParsePlanTier(req.PlanType)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	if _, err := h.Plans.Upgrade(r.Context(), username, target); err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, MessageResponse{
		Message: fmt.Sprintf("Successful upgrade plan type to %s", target),
	})
}

// GenerateInvitationCode issues a fresh invitation code, invalidating
// the previous one.
// PUT /api/invitation_code
func (h *Handler) GenerateInvitationCode(w http.ResponseWriter, r *http.Request) {
	username := companyFrom(r)

	var req InvitationCodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.InvitationLimit < 1 {
		writeError(w, http.StatusBadRequest, "invitation_limit must be greater than or equal to 1")
		return
	}

	if _, err := h.Store.Company(r.Context(), username); err != nil {
		writeDomainError(w, err)
		return
	}

	code, err := invite.Generate(r.Context(), h.Store)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if err := h.Store.SetInvitationCode(r.Context(), username, code, req.InvitationLimit); err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, InvitationCodeResponse{
		InvitationCode:  code,
		InvitationLimit: req.InvitationLimit,
	})
}

// SubmitTopUp creates a pending balance top-up request.
// POST /api/topup
func (h *Handler) SubmitTopUp(w http.ResponseWriter, r *http.Request) {
	username := companyFrom(r)

	var req TopUpSubmitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	topup, err := h.TopUps.Submit(r.Context(), username, req.Amount)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, TopUpSubmitResponse{
		TopUpID: topup.ID,
		Amount:  topup.Amount.Display(),
		Status:  string(topup.Status),
		Time:    topup.Created,
	})
}

// ListTransactions returns the company's audit entries, newest first.
// GET /api/transactions
func (h *Handler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	username := companyFrom(r)

	entries, err := h.Store.EntriesByCompany(r.Context(), username)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	payload := make([]map[string]any, len(entries))
	for i, e := range entries {
		payload[i] = transactionPayload(e)
	}
	writeJSON(w, http.StatusOK, TransactionsResponse{Transactions: payload})
}

// transactionPayload flattens an entry's metadata alongside its fixed
// keys, mirroring how entries are stored.
func transactionPayload(e billing.Entry) map[string]any {
	p := map[string]any{
		"type":   e.Type,
		"date":   e.Date,
		"charge": e.Charge.Display(),
	}
	for k, v := range e.Metadata {
		p[k] = v
	}
	return p
}

// =============================================================================
// HELPERS
// =============================================================================

func dateStrings(dates []calendar.Date) []string {
	out := make([]string, len(dates))
	for i, d := range dates {
		out[i] = d.String()
	}
	return out
}

func intParam(raw, name string) (int, error) {
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, billing.Invalidf("%s must be a number", name)
	}
	return n, nil
}

// pageParam parses a 1-based pagination parameter. Absent means unset;
// an explicit value below 1 is rejected.
func pageParam(raw, name string) (int, error) {
	n, err := intParam(raw, name)
	if err != nil {
		return 0, err
	}
	if raw != "" && n < 1 {
		return 0, billing.Invalidf("%s must be greater than or equal to 1", name)
	}
	return n, nil
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ErrorResponse{Message: message})
}

// writeDomainError maps domain errors onto HTTP statuses in one place.
func writeDomainError(w http.ResponseWriter, err error) {
	var alreadyErr *billing.AlreadyOnPlanError

	switch {
	case errors.Is(err, billing.ErrInsufficientBalance):
		writeError(w, http.StatusBadRequest, "Insufficient balance")
	case errors.Is(err, billing.ErrMaxPlanReached):
		writeError(w, http.StatusBadRequest, "Has reached max plan type")
	case errors.As(err, &alreadyErr):
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Already on %s plan", alreadyErr.Plan))
	case errors.Is(err, billing.ErrPendingTopUp):
		writeError(w, http.StatusBadRequest, "Please wait until latest topup attempt verified by our system")
	case errors.Is(err, schedule.ErrNoWorkdays):
		writeError(w, http.StatusBadRequest, "No schedules were created as all dates are either holidays, weekends, or already scheduled")
	case errors.Is(err, schedule.ErrNoSchedulesInRange):
		writeError(w, http.StatusNotFound, "No schedules found within the specified date range")
	case errors.Is(err, billing.ErrCompanyNotFound):
		writeError(w, http.StatusNotFound, "Company not found")
	case errors.Is(err, billing.ErrTopUpNotFound):
		writeError(w, http.StatusNotFound, "Topup not found")
	case billing.IsClientError(err):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, calendar.ErrUpstreamUnavailable):
		writeError(w, http.StatusInternalServerError, "Failed to fetch the holiday calendar")
	default:
		writeError(w, http.StatusInternalServerError, "Internal Server Error")
	}
}
