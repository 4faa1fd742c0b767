// internal/api/bookings/handlers.go
package bookings

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/codr1/pickleclub/internal/api/apiutil"
	"github.com/codr1/pickleclub/internal/api/authz"
	"github.com/codr1/pickleclub/internal/booking"
	dbgen "github.com/codr1/pickleclub/internal/db/generated"
	"github.com/codr1/pickleclub/internal/models"
)

type services struct {
	manager *booking.Manager
	planner *booking.Planner
}

var current atomic.Pointer[services]

// InitHandlers must be called during server startup before handling requests.
func InitHandlers(manager *booking.Manager, planner *booking.Planner) {
	if manager == nil || planner == nil {
		return
	}
	current.Store(&services{manager: manager, planner: planner})
}

func loadServices(w http.ResponseWriter, r *http.Request) *services {
	svc := current.Load()
	if svc == nil {
		log.Ctx(r.Context()).Error().Msg("Booking handlers not initialized")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
	return svc
}

type bookingRequest struct {
	MemberID  int64  `json:"member_id,omitempty"`
	CourtID   int64  `json:"court_id"`
	Date      string `json:"date"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
	Notes     string `json:"notes,omitempty"`
}

type recurringRequest struct {
	MemberID  int64    `json:"member_id,omitempty"`
	CourtID   int64    `json:"court_id"`
	StartDate string   `json:"start_date"`
	EndDate   string   `json:"end_date"`
	Weekdays  []string `json:"weekdays"`
	StartTime string   `json:"start_time"`
	EndTime   string   `json:"end_time"`
	Notes     string   `json:"notes,omitempty"`
}

type statusRequest struct {
	Status string `json:"status"`
}

type bookingResponse struct {
	ID          int64           `json:"id"`
	MemberID    int64           `json:"member_id,omitempty"`
	CourtID     int64           `json:"court_id"`
	Date        string          `json:"date"`
	StartTime   string          `json:"start_time"`
	EndTime     string          `json:"end_time"`
	Status      string          `json:"status"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	Notes       string          `json:"notes,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

type recurringResponse struct {
	Created []bookingResponse    `json:"created"`
	Skipped []booking.SkippedDay `json:"skipped"`
}

func newBookingResponse(b dbgen.Booking) bookingResponse {
	return bookingResponse{
		ID:          b.ID,
		MemberID:    b.MemberID,
		CourtID:     b.CourtID,
		Date:        b.BookingDate,
		StartTime:   b.StartTime,
		EndTime:     b.EndTime,
		Status:      b.Status,
		TotalAmount: b.TotalAmount,
		Notes:       b.Notes.String,
		CreatedAt:   b.CreatedAt,
		UpdatedAt:   b.UpdatedAt,
	}
}

func newBookingResponses(list []dbgen.Booking) []bookingResponse {
	out := make([]bookingResponse, 0, len(list))
	for _, b := range list {
		out = append(out, newBookingResponse(b))
	}
	return out
}

// resolveMemberID returns the member a booking request acts for. Staff may
// book on behalf of any member; members only for themselves.
func resolveMemberID(user *authz.AuthUser, requested int64) (int64, error) {
	if requested == 0 || requested == user.ID {
		return user.ID, nil
	}
	if !user.IsStaff {
		return 0, authz.ErrForbidden
	}
	return requested, nil
}

func (req bookingRequest) params(memberID int64) (booking.CreateParams, error) {
	if req.CourtID <= 0 {
		return booking.CreateParams{}, apiutil.FieldError{Field: "court_id", Reason: "must be greater than 0"}
	}
	date, err := apiutil.ParseDateField(req.Date, "date")
	if err != nil {
		return booking.CreateParams{}, err
	}
	if strings.TrimSpace(req.StartTime) == "" {
		return booking.CreateParams{}, apiutil.FieldError{Field: "start_time", Reason: "is required"}
	}
	if strings.TrimSpace(req.EndTime) == "" {
		return booking.CreateParams{}, apiutil.FieldError{Field: "end_time", Reason: "is required"}
	}
	return booking.CreateParams{
		MemberID: memberID,
		CourtID:  req.CourtID,
		Date:     date,
		Start:    strings.TrimSpace(req.StartTime),
		End:      strings.TrimSpace(req.EndTime),
		Notes:    strings.TrimSpace(req.Notes),
	}, nil
}

func decodeCreate(w http.ResponseWriter, r *http.Request) (booking.CreateParams, bool) {
	user := apiutil.RequireUser(w, r)
	if user == nil {
		return booking.CreateParams{}, false
	}
	var req bookingRequest
	if err := apiutil.DecodeJSON(r, &req); err != nil {
		apiutil.WriteError(w, r, apiutil.HandlerError{Status: http.StatusBadRequest, Message: "Invalid JSON body", Err: err})
		return booking.CreateParams{}, false
	}
	memberID, err := resolveMemberID(user, req.MemberID)
	if err != nil {
		apiutil.WriteError(w, r, err)
		return booking.CreateParams{}, false
	}
	params, err := req.params(memberID)
	if err != nil {
		apiutil.WriteError(w, r, err)
		return booking.CreateParams{}, false
	}
	return params, true
}

// POST /api/v1/bookings
func HandleCreate(w http.ResponseWriter, r *http.Request) {
	svc := loadServices(w, r)
	if svc == nil {
		return
	}
	params, ok := decodeCreate(w, r)
	if !ok {
		return
	}
	created, err := svc.manager.Create(r.Context(), params)
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}
	apiutil.WriteResult(w, r, http.StatusCreated, newBookingResponse(created))
}

// POST /api/v1/bookings/hold
func HandleHold(w http.ResponseWriter, r *http.Request) {
	svc := loadServices(w, r)
	if svc == nil {
		return
	}
	params, ok := decodeCreate(w, r)
	if !ok {
		return
	}
	held, err := svc.manager.Hold(r.Context(), params)
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}
	apiutil.WriteResult(w, r, http.StatusCreated, newBookingResponse(held))
}

// loadOwned loads the path booking and checks the caller may act on it.
func loadOwned(w http.ResponseWriter, r *http.Request, svc *services) (dbgen.Booking, bool) {
	if apiutil.RequireUser(w, r) == nil {
		return dbgen.Booking{}, false
	}
	id, err := apiutil.PathID(r, "id")
	if err != nil {
		apiutil.WriteError(w, r, err)
		return dbgen.Booking{}, false
	}
	b, err := svc.manager.Get(r.Context(), id)
	if err != nil {
		apiutil.WriteError(w, r, err)
		return dbgen.Booking{}, false
	}
	if err := authz.RequireSelfOrStaff(r.Context(), b.MemberID); err != nil {
		// Other members' bookings are reported as missing.
		if errors.Is(err, authz.ErrForbidden) {
			err = models.ErrBookingNotFound
		}
		apiutil.WriteError(w, r, err)
		return dbgen.Booking{}, false
	}
	return b, true
}

// POST /api/v1/bookings/{id}/confirm
func HandleConfirm(w http.ResponseWriter, r *http.Request) {
	svc := loadServices(w, r)
	if svc == nil {
		return
	}
	b, ok := loadOwned(w, r, svc)
	if !ok {
		return
	}
	confirmed, err := svc.manager.ConfirmHold(r.Context(), b.ID)
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}
	apiutil.WriteResult(w, r, http.StatusOK, newBookingResponse(confirmed))
}

// GET /api/v1/bookings/{id}
func HandleGet(w http.ResponseWriter, r *http.Request) {
	svc := loadServices(w, r)
	if svc == nil {
		return
	}
	b, ok := loadOwned(w, r, svc)
	if !ok {
		return
	}
	apiutil.WriteResult(w, r, http.StatusOK, newBookingResponse(b))
}

// DELETE /api/v1/bookings/{id}
func HandleCancel(w http.ResponseWriter, r *http.Request) {
	svc := loadServices(w, r)
	if svc == nil {
		return
	}
	b, ok := loadOwned(w, r, svc)
	if !ok {
		return
	}
	cancelled, err := svc.manager.Cancel(r.Context(), b.ID)
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}
	apiutil.WriteResult(w, r, http.StatusOK, newBookingResponse(cancelled))
}

// GET /api/v1/bookings/mine
func HandleMine(w http.ResponseWriter, r *http.Request) {
	svc := loadServices(w, r)
	if svc == nil {
		return
	}
	user := apiutil.RequireUser(w, r)
	if user == nil {
		return
	}
	list, err := svc.manager.ListForMember(r.Context(), user.ID)
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}
	apiutil.WriteResult(w, r, http.StatusOK, newBookingResponses(list))
}

// GET /api/v1/bookings/calendar?from=YYYY-MM-DD&to=YYYY-MM-DD
//
// Members see every booked slot; the booking owner is only shown to staff
// and to the owner.
func HandleCalendar(w http.ResponseWriter, r *http.Request) {
	svc := loadServices(w, r)
	if svc == nil {
		return
	}
	user := apiutil.RequireUser(w, r)
	if user == nil {
		return
	}
	from, err := apiutil.ParseDateField(r.URL.Query().Get("from"), "from")
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}
	to, err := apiutil.ParseDateField(r.URL.Query().Get("to"), "to")
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}
	list, err := svc.manager.Calendar(r.Context(), from, to)
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}
	out := newBookingResponses(list)
	if !user.IsStaff {
		for i := range out {
			if out[i].MemberID != user.ID {
				out[i].MemberID = 0
				out[i].Notes = ""
			}
		}
	}
	apiutil.WriteResult(w, r, http.StatusOK, out)
}

// PATCH /api/v1/bookings/{id}/status
func HandleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	svc := loadServices(w, r)
	if svc == nil {
		return
	}
	if !apiutil.RequireStaff(w, r) {
		return
	}
	id, err := apiutil.PathID(r, "id")
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}
	var req statusRequest
	if err := apiutil.DecodeJSON(r, &req); err != nil {
		apiutil.WriteError(w, r, apiutil.HandlerError{Status: http.StatusBadRequest, Message: "Invalid JSON body", Err: err})
		return
	}
	updated, err := svc.manager.UpdateStatus(r.Context(), id, strings.TrimSpace(req.Status))
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}
	apiutil.WriteResult(w, r, http.StatusOK, newBookingResponse(updated))
}

// POST /api/v1/bookings/recurring
func HandleRecurring(w http.ResponseWriter, r *http.Request) {
	svc := loadServices(w, r)
	if svc == nil {
		return
	}
	user := apiutil.RequireUser(w, r)
	if user == nil {
		return
	}
	var req recurringRequest
	if err := apiutil.DecodeJSON(r, &req); err != nil {
		apiutil.WriteError(w, r, apiutil.HandlerError{Status: http.StatusBadRequest, Message: "Invalid JSON body", Err: err})
		return
	}
	memberID, err := resolveMemberID(user, req.MemberID)
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}
	first, err := bookingRequest{
		CourtID:   req.CourtID,
		Date:      req.StartDate,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
		Notes:     req.Notes,
	}.params(memberID)
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}
	endDate, err := apiutil.ParseDateField(req.EndDate, "end_date")
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}
	weekdays, err := parseWeekdays(req.Weekdays)
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}

	result, err := svc.planner.Plan(r.Context(), booking.RecurringParams{
		MemberID:  first.MemberID,
		CourtID:   first.CourtID,
		StartDate: first.Date,
		EndDate:   endDate,
		Weekdays:  weekdays,
		Start:     first.Start,
		End:       first.End,
		Notes:     first.Notes,
	})
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}
	apiutil.WriteResult(w, r, http.StatusCreated, recurringResponse{
		Created: newBookingResponses(result.Created),
		Skipped: result.Skipped,
	})
}

func parseWeekdays(names []string) ([]time.Weekday, error) {
	if len(names) == 0 {
		return nil, apiutil.FieldError{Field: "weekdays", Reason: "is required"}
	}
	days := make([]time.Weekday, 0, len(names))
	for _, name := range names {
		day, ok := weekdayByName(name)
		if !ok {
			return nil, apiutil.FieldError{Field: "weekdays", Reason: fmt.Sprintf("contains unknown day %q", name)}
		}
		days = append(days, day)
	}
	return days, nil
}

func weekdayByName(name string) (time.Weekday, bool) {
	name = strings.TrimSpace(name)
	for d := time.Sunday; d <= time.Saturday; d++ {
		full := d.String()
		if strings.EqualFold(name, full) || strings.EqualFold(name, full[:3]) {
			return d, true
		}
	}
	return 0, false
}
