// internal/api/tournaments/handlers.go
package tournaments

import (
	"database/sql"
	"math/rand/v2"
	"net/http"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/codr1/pickleclub/internal/api/apiutil"
	dbgen "github.com/codr1/pickleclub/internal/db/generated"
	"github.com/codr1/pickleclub/internal/tournaments"
)

type services struct {
	registry *tournaments.Registry
	bracket  *tournaments.Bracket
}

var current atomic.Pointer[services]

// InitHandlers must be called during server startup before handling requests.
func InitHandlers(registry *tournaments.Registry, bracket *tournaments.Bracket) {
	if registry == nil || bracket == nil {
		return
	}
	current.Store(&services{registry: registry, bracket: bracket})
}

func loadServices(w http.ResponseWriter, r *http.Request) *services {
	svc := current.Load()
	if svc == nil {
		log.Ctx(r.Context()).Error().Msg("Tournament handlers not initialized")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
	return svc
}

type createRequest struct {
	Name                 string `json:"name"`
	Format               string `json:"format"`
	MaxParticipants      int64  `json:"max_participants"`
	EntryFee             string `json:"entry_fee,omitempty"`
	StartDate            string `json:"start_date"`
	EndDate              string `json:"end_date"`
	RegistrationDeadline string `json:"registration_deadline"`
	Status               string `json:"status,omitempty"`
}

type resultRequest struct {
	Team1Score *int64 `json:"team1_score"`
	Team2Score *int64 `json:"team2_score"`
}

type matchResponse struct {
	ID            int64     `json:"id"`
	TournamentID  int64     `json:"tournament_id"`
	Round         int64     `json:"round"`
	Team1         []int64   `json:"team1"`
	Team2         []int64   `json:"team2"`
	Team1Score    *int64    `json:"team1_score"`
	Team2Score    *int64    `json:"team2_score"`
	WinnerTeam    *int64    `json:"winner_team"`
	Status        string    `json:"status"`
	ScheduledTime time.Time `json:"scheduled_time"`
}

func nullable(v sql.NullInt64) *int64 {
	if !v.Valid {
		return nil
	}
	return &v.Int64
}

func players(ids ...sql.NullInt64) []int64 {
	out := []int64{}
	for _, id := range ids {
		if id.Valid {
			out = append(out, id.Int64)
		}
	}
	return out
}

func newMatchResponse(m dbgen.Match) matchResponse {
	return matchResponse{
		ID:            m.ID,
		TournamentID:  m.TournamentID,
		Round:         m.Round,
		Team1:         players(m.Team1Player1ID, m.Team1Player2ID),
		Team2:         players(m.Team2Player1ID, m.Team2Player2ID),
		Team1Score:    nullable(m.Team1Score),
		Team2Score:    nullable(m.Team2Score),
		WinnerTeam:    nullable(m.WinnerTeam),
		Status:        m.Status,
		ScheduledTime: m.ScheduledTime,
	}
}

func newMatchResponses(list []dbgen.Match) []matchResponse {
	out := make([]matchResponse, 0, len(list))
	for _, m := range list {
		out = append(out, newMatchResponse(m))
	}
	return out
}

func (req createRequest) params() (tournaments.CreateParams, error) {
	fee := decimal.Zero
	if strings.TrimSpace(req.EntryFee) != "" {
		var err error
		fee, err = apiutil.ParseMoneyField(req.EntryFee, "entry_fee")
		if err != nil {
			return tournaments.CreateParams{}, err
		}
	}
	startDate, err := apiutil.ParseDateField(req.StartDate, "start_date")
	if err != nil {
		return tournaments.CreateParams{}, err
	}
	endDate, err := apiutil.ParseDateField(req.EndDate, "end_date")
	if err != nil {
		return tournaments.CreateParams{}, err
	}
	deadline, err := time.Parse(time.RFC3339, strings.TrimSpace(req.RegistrationDeadline))
	if err != nil {
		return tournaments.CreateParams{}, apiutil.FieldError{Field: "registration_deadline", Reason: "must be an RFC 3339 timestamp"}
	}
	return tournaments.CreateParams{
		Name:                 strings.TrimSpace(req.Name),
		Format:               strings.TrimSpace(req.Format),
		MaxParticipants:      req.MaxParticipants,
		EntryFee:             fee,
		StartDate:            startDate,
		EndDate:              endDate,
		RegistrationDeadline: deadline.UTC(),
		Status:               strings.TrimSpace(req.Status),
	}, nil
}

// GET /api/v1/tournaments
func HandleList(w http.ResponseWriter, r *http.Request) {
	svc := loadServices(w, r)
	if svc == nil {
		return
	}
	list, err := svc.registry.List(r.Context())
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}
	if list == nil {
		list = []dbgen.Tournament{}
	}
	apiutil.WriteResult(w, r, http.StatusOK, list)
}

// GET /api/v1/tournaments/{id}
func HandleGet(w http.ResponseWriter, r *http.Request) {
	svc := loadServices(w, r)
	if svc == nil {
		return
	}
	id, err := apiutil.PathID(r, "id")
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}
	t, err := svc.registry.Get(r.Context(), id)
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}
	apiutil.WriteResult(w, r, http.StatusOK, t)
}

// POST /api/v1/tournaments
func HandleCreate(w http.ResponseWriter, r *http.Request) {
	svc := loadServices(w, r)
	if svc == nil {
		return
	}
	if !apiutil.RequireStaff(w, r) {
		return
	}
	var req createRequest
	if err := apiutil.DecodeJSON(r, &req); err != nil {
		apiutil.WriteError(w, r, apiutil.HandlerError{Status: http.StatusBadRequest, Message: "Invalid JSON body", Err: err})
		return
	}
	params, err := req.params()
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}
	t, err := svc.registry.Create(r.Context(), params)
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}
	apiutil.WriteResult(w, r, http.StatusCreated, t)
}

// POST /api/v1/tournaments/{id}/join
func HandleJoin(w http.ResponseWriter, r *http.Request) {
	svc := loadServices(w, r)
	if svc == nil {
		return
	}
	user := apiutil.RequireUser(w, r)
	if user == nil {
		return
	}
	id, err := apiutil.PathID(r, "id")
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}
	reg, err := svc.registry.Join(r.Context(), id, user.ID)
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}
	apiutil.WriteResult(w, r, http.StatusCreated, reg)
}

// DELETE /api/v1/tournaments/{id}/join
func HandleLeave(w http.ResponseWriter, r *http.Request) {
	svc := loadServices(w, r)
	if svc == nil {
		return
	}
	user := apiutil.RequireUser(w, r)
	if user == nil {
		return
	}
	id, err := apiutil.PathID(r, "id")
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}
	reg, err := svc.registry.Cancel(r.Context(), id, user.ID)
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}
	apiutil.WriteResult(w, r, http.StatusOK, reg)
}

// GET /api/v1/tournaments/{id}/registrations
func HandleRegistrations(w http.ResponseWriter, r *http.Request) {
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
	regs, err := svc.registry.Registrations(r.Context(), id)
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}
	if regs == nil {
		regs = []dbgen.TournamentRegistration{}
	}
	apiutil.WriteResult(w, r, http.StatusOK, regs)
}

// POST /api/v1/tournaments/{id}/generate-schedule[?seed=N]
//
// Each request shuffles with its own generator. A seed makes the draw
// reproducible.
func HandleGenerateSchedule(w http.ResponseWriter, r *http.Request) {
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
	rng, err := requestRand(r)
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}
	matches, err := svc.bracket.Generate(r.Context(), id, rng)
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}
	apiutil.WriteResult(w, r, http.StatusCreated, newMatchResponses(matches))
}

func requestRand(r *http.Request) (*rand.Rand, error) {
	raw := strings.TrimSpace(r.URL.Query().Get("seed"))
	if raw == "" {
		return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())), nil
	}
	seed, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return nil, apiutil.FieldError{Field: "seed", Reason: "must be a non-negative integer"}
	}
	return rand.New(rand.NewPCG(seed, seed)), nil
}

// GET /api/v1/tournaments/{id}/matches
func HandleMatches(w http.ResponseWriter, r *http.Request) {
	svc := loadServices(w, r)
	if svc == nil {
		return
	}
	id, err := apiutil.PathID(r, "id")
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}
	matches, err := svc.bracket.Matches(r.Context(), id)
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}
	apiutil.WriteResult(w, r, http.StatusOK, newMatchResponses(matches))
}

// GET /api/v1/tournaments/{id}/standings
func HandleStandings(w http.ResponseWriter, r *http.Request) {
	svc := loadServices(w, r)
	if svc == nil {
		return
	}
	id, err := apiutil.PathID(r, "id")
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}
	standings, err := svc.bracket.Standings(r.Context(), id)
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}
	apiutil.WriteResult(w, r, http.StatusOK, standings)
}

// POST /api/v1/matches/{id}/result
func HandleRecordResult(w http.ResponseWriter, r *http.Request) {
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
	var req resultRequest
	if err := apiutil.DecodeJSON(r, &req); err != nil {
		apiutil.WriteError(w, r, apiutil.HandlerError{Status: http.StatusBadRequest, Message: "Invalid JSON body", Err: err})
		return
	}
	if req.Team1Score == nil {
		apiutil.WriteError(w, r, apiutil.FieldError{Field: "team1_score", Reason: "is required"})
		return
	}
	if req.Team2Score == nil {
		apiutil.WriteError(w, r, apiutil.FieldError{Field: "team2_score", Reason: "is required"})
		return
	}
	match, err := svc.bracket.RecordResult(r.Context(), id, *req.Team1Score, *req.Team2Score)
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}
	apiutil.WriteResult(w, r, http.StatusOK, newMatchResponse(match))
}
