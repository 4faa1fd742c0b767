// internal/api/members/handlers.go
package members

import (
	"net/http"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/codr1/pickleclub/internal/api/apiutil"
	"github.com/codr1/pickleclub/internal/api/authz"
	dbgen "github.com/codr1/pickleclub/internal/db/generated"
	"github.com/codr1/pickleclub/internal/members"
)

const (
	defaultPageSize = 50
	maxPageSize     = 200
)

var service atomic.Pointer[members.Service]

// InitHandlers must be called during server startup before handling requests.
func InitHandlers(s *members.Service) {
	if s == nil {
		return
	}
	service.Store(s)
}

func loadService(w http.ResponseWriter, r *http.Request) *members.Service {
	s := service.Load()
	if s == nil {
		log.Ctx(r.Context()).Error().Msg("Member handlers not initialized")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
	return s
}

type createRequest struct {
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	Phone    string `json:"phone,omitempty"`
	Tier     string `json:"membership_tier,omitempty"`
}

type tierRequest struct {
	Tier string `json:"membership_tier"`
}

type activeRequest struct {
	IsActive bool `json:"is_active"`
}

type memberResponse struct {
	ID             int64           `json:"id"`
	FullName       string          `json:"full_name"`
	Email          string          `json:"email"`
	Phone          string          `json:"phone,omitempty"`
	MembershipTier string          `json:"membership_tier"`
	WalletBalance  decimal.Decimal `json:"wallet_balance"`
	IsActive       bool            `json:"is_active"`
	CreatedAt      time.Time       `json:"created_at"`
}

func newMemberResponse(m dbgen.Member) memberResponse {
	return memberResponse{
		ID:             m.ID,
		FullName:       m.FullName,
		Email:          m.Email,
		Phone:          m.Phone.String,
		MembershipTier: m.MembershipTier,
		WalletBalance:  m.WalletBalance,
		IsActive:       m.IsActive,
		CreatedAt:      m.CreatedAt,
	}
}

// GET /api/v1/members/me
func HandleMe(w http.ResponseWriter, r *http.Request) {
	s := loadService(w, r)
	if s == nil {
		return
	}
	user := apiutil.RequireUser(w, r)
	if user == nil {
		return
	}
	member, err := s.Get(r.Context(), user.ID)
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}
	apiutil.WriteResult(w, r, http.StatusOK, newMemberResponse(member))
}

// GET /api/v1/members/{id}
func HandleGet(w http.ResponseWriter, r *http.Request) {
	s := loadService(w, r)
	if s == nil {
		return
	}
	id, err := apiutil.PathID(r, "id")
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}
	if err := authz.RequireSelfOrStaff(r.Context(), id); err != nil {
		apiutil.WriteError(w, r, err)
		return
	}
	member, err := s.Get(r.Context(), id)
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}
	apiutil.WriteResult(w, r, http.StatusOK, newMemberResponse(member))
}

// GET /api/v1/members?limit=&offset=
func HandleList(w http.ResponseWriter, r *http.Request) {
	s := loadService(w, r)
	if s == nil {
		return
	}
	if !apiutil.RequireStaff(w, r) {
		return
	}
	limit, offset, err := apiutil.ParseLimitOffset(r, defaultPageSize, maxPageSize)
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}
	list, err := s.List(r.Context(), limit, offset)
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}
	out := make([]memberResponse, 0, len(list))
	for _, m := range list {
		out = append(out, newMemberResponse(m))
	}
	apiutil.WriteResult(w, r, http.StatusOK, out)
}

// POST /api/v1/members
func HandleCreate(w http.ResponseWriter, r *http.Request) {
	s := loadService(w, r)
	if s == nil {
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
	member, err := s.Create(r.Context(), members.CreateParams{
		FullName: req.FullName,
		Email:    req.Email,
		Phone:    req.Phone,
		Tier:     req.Tier,
	})
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}
	apiutil.WriteResult(w, r, http.StatusCreated, newMemberResponse(member))
}

// PATCH /api/v1/members/{id}/tier
func HandleSetTier(w http.ResponseWriter, r *http.Request) {
	s := loadService(w, r)
	if s == nil {
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
	var req tierRequest
	if err := apiutil.DecodeJSON(r, &req); err != nil {
		apiutil.WriteError(w, r, apiutil.HandlerError{Status: http.StatusBadRequest, Message: "Invalid JSON body", Err: err})
		return
	}
	member, err := s.SetTier(r.Context(), id, req.Tier)
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}
	apiutil.WriteResult(w, r, http.StatusOK, newMemberResponse(member))
}

// PATCH /api/v1/members/{id}/active
func HandleSetActive(w http.ResponseWriter, r *http.Request) {
	s := loadService(w, r)
	if s == nil {
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
	var req activeRequest
	if err := apiutil.DecodeJSON(r, &req); err != nil {
		apiutil.WriteError(w, r, apiutil.HandlerError{Status: http.StatusBadRequest, Message: "Invalid JSON body", Err: err})
		return
	}
	member, err := s.SetActive(r.Context(), id, req.IsActive)
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}
	apiutil.WriteResult(w, r, http.StatusOK, newMemberResponse(member))
}
