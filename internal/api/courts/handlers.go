// internal/api/courts/handlers.go
package courts

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/codr1/pickleclub/internal/api/apiutil"
	"github.com/codr1/pickleclub/internal/availability"
	dbgen "github.com/codr1/pickleclub/internal/db/generated"
	"github.com/codr1/pickleclub/internal/models"
)

const courtsQueryTimeout = 5 * time.Second

var courtTypes = []string{"Indoor", "Outdoor"}

type state struct {
	queries *dbgen.Queries
	hours   availability.Hours
}

var current atomic.Pointer[state]

// InitHandlers must be called during server startup before handling requests.
func InitHandlers(q *dbgen.Queries, hours availability.Hours) {
	if q == nil {
		return
	}
	current.Store(&state{queries: q, hours: hours})
}

func loadState(w http.ResponseWriter, r *http.Request) *state {
	s := current.Load()
	if s == nil {
		log.Ctx(r.Context()).Error().Msg("Database queries not initialized")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
	return s
}

type createCourtRequest struct {
	Name         string `json:"name"`
	CourtType    string `json:"court_type"`
	PricePerHour string `json:"price_per_hour"`
}

type activeRequest struct {
	IsActive bool `json:"is_active"`
}

type slotsResponse struct {
	CourtID int64               `json:"court_id"`
	Date    string              `json:"date"`
	Slots   []availability.Slot `json:"slots"`
}

// GET /api/v1/courts
func HandleList(w http.ResponseWriter, r *http.Request) {
	s := loadState(w, r)
	if s == nil {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), courtsQueryTimeout)
	defer cancel()

	courts, err := s.queries.ListCourts(ctx)
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}
	if courts == nil {
		courts = []dbgen.Court{}
	}
	apiutil.WriteResult(w, r, http.StatusOK, courts)
}

// GET /api/v1/courts/{id}/slots?date=YYYY-MM-DD
func HandleSlots(w http.ResponseWriter, r *http.Request) {
	s := loadState(w, r)
	if s == nil {
		return
	}
	courtID, err := apiutil.PathID(r, "id")
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}
	date, err := apiutil.ParseDateField(r.URL.Query().Get("date"), "date")
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), courtsQueryTimeout)
	defer cancel()

	if _, err := s.queries.GetCourtByID(ctx, courtID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			err = models.ErrCourtNotFound
		}
		apiutil.WriteError(w, r, err)
		return
	}
	seq, err := availability.Slots(ctx, s.queries, courtID, date, s.hours)
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}
	resp := slotsResponse{CourtID: courtID, Date: date, Slots: []availability.Slot{}}
	for slot := range seq {
		resp.Slots = append(resp.Slots, slot)
	}
	apiutil.WriteResult(w, r, http.StatusOK, resp)
}

// POST /api/v1/courts
func HandleCreate(w http.ResponseWriter, r *http.Request) {
	s := loadState(w, r)
	if s == nil {
		return
	}
	if !apiutil.RequireStaff(w, r) {
		return
	}
	var req createCourtRequest
	if err := apiutil.DecodeJSON(r, &req); err != nil {
		apiutil.WriteError(w, r, apiutil.HandlerError{Status: http.StatusBadRequest, Message: "Invalid JSON body", Err: err})
		return
	}
	params, err := req.params()
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), courtsQueryTimeout)
	defer cancel()

	court, err := s.queries.CreateCourt(ctx, params)
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}
	log.Ctx(r.Context()).Info().Int64("court_id", court.ID).Str("name", court.Name).Msg("Court created")
	apiutil.WriteResult(w, r, http.StatusCreated, court)
}

func (req createCourtRequest) params() (dbgen.CreateCourtParams, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return dbgen.CreateCourtParams{}, apiutil.FieldError{Field: "name", Reason: "is required"}
	}
	courtType := courtTypes[0]
	if raw := strings.TrimSpace(req.CourtType); raw != "" {
		courtType = ""
		for _, known := range courtTypes {
			if strings.EqualFold(raw, known) {
				courtType = known
			}
		}
		if courtType == "" {
			return dbgen.CreateCourtParams{}, apiutil.FieldError{Field: "court_type", Reason: "must be Indoor or Outdoor"}
		}
	}
	price, err := apiutil.ParseMoneyField(req.PricePerHour, "price_per_hour")
	if err != nil {
		return dbgen.CreateCourtParams{}, err
	}
	if !price.GreaterThan(decimal.Zero) {
		return dbgen.CreateCourtParams{}, apiutil.FieldError{Field: "price_per_hour", Reason: "must be greater than 0"}
	}
	now := time.Now().UTC()
	return dbgen.CreateCourtParams{
		Name:         name,
		CourtType:    courtType,
		PricePerHour: models.RoundMoney(price),
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// PATCH /api/v1/courts/{id}/active
func HandleSetActive(w http.ResponseWriter, r *http.Request) {
	s := loadState(w, r)
	if s == nil {
		return
	}
	if !apiutil.RequireStaff(w, r) {
		return
	}
	courtID, err := apiutil.PathID(r, "id")
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}
	var req activeRequest
	if err := apiutil.DecodeJSON(r, &req); err != nil {
		apiutil.WriteError(w, r, apiutil.HandlerError{Status: http.StatusBadRequest, Message: "Invalid JSON body", Err: err})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), courtsQueryTimeout)
	defer cancel()

	rows, err := s.queries.SetCourtActive(ctx, dbgen.SetCourtActiveParams{
		IsActive:  req.IsActive,
		UpdatedAt: time.Now().UTC(),
		ID:        courtID,
	})
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}
	if rows == 0 {
		apiutil.WriteError(w, r, models.ErrCourtNotFound)
		return
	}
	court, err := s.queries.GetCourtByID(ctx, courtID)
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}
	log.Ctx(r.Context()).Info().Int64("court_id", court.ID).Bool("is_active", court.IsActive).Msg("Court availability changed")
	apiutil.WriteResult(w, r, http.StatusOK, court)
}
