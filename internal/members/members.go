// Package members administers club member records. Wallet balances are not
// touched here; every balance change goes through the wallet ledger.
package members

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/mattn/go-sqlite3"
	"github.com/nyaruka/phonenumbers"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/codr1/pickleclub/internal/db"
	dbgen "github.com/codr1/pickleclub/internal/db/generated"
	"github.com/codr1/pickleclub/internal/models"
)

const defaultRegion = "US"

type Options struct {
	// Region is the ISO country used for phone numbers given without a
	// leading +country code.
	Region string
	Now    func() time.Time
}

type Service struct {
	db     *db.DB
	region string
	now    func() time.Time
	logger zerolog.Logger
}

func NewService(database *db.DB, opts Options) *Service {
	if opts.Region == "" {
		opts.Region = defaultRegion
	}
	if opts.Now == nil {
		opts.Now = func() time.Time { return time.Now().UTC() }
	}
	return &Service{
		db:     database,
		region: strings.ToUpper(opts.Region),
		now:    opts.Now,
		logger: log.With().Str("component", "members").Logger(),
	}
}

type CreateParams struct {
	FullName string
	Email    string
	Phone    string
	Tier     string
}

// NormalizePhone returns the number in E.164 form. An empty input is allowed
// and returns "".
func NormalizePhone(raw, region string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", nil
	}
	num, err := phonenumbers.Parse(raw, region)
	if err != nil || !phonenumbers.IsValidNumber(num) {
		return "", fmt.Errorf("%w: invalid phone number", models.ErrInvalidInput)
	}
	return phonenumbers.Format(num, phonenumbers.E164), nil
}

func (s *Service) Create(ctx context.Context, params CreateParams) (dbgen.Member, error) {
	name := strings.TrimSpace(params.FullName)
	if name == "" {
		return dbgen.Member{}, fmt.Errorf("%w: full name is required", models.ErrInvalidInput)
	}
	addr, err := mail.ParseAddress(strings.TrimSpace(params.Email))
	if err != nil {
		return dbgen.Member{}, fmt.Errorf("%w: invalid email", models.ErrInvalidInput)
	}
	tier := models.TierBasic
	if params.Tier != "" {
		if tier, err = models.ParseTier(params.Tier); err != nil {
			return dbgen.Member{}, err
		}
	}
	phone, err := NormalizePhone(params.Phone, s.region)
	if err != nil {
		return dbgen.Member{}, err
	}

	now := s.now()
	member, err := s.db.Queries.CreateMember(ctx, dbgen.CreateMemberParams{
		FullName:       name,
		Email:          strings.ToLower(addr.Address),
		Phone:          sql.NullString{String: phone, Valid: phone != ""},
		MembershipTier: string(tier),
		WalletBalance:  decimal.Zero,
		CreatedAt:      now,
		UpdatedAt:      now,
	})
	if err != nil {
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique {
			return dbgen.Member{}, fmt.Errorf("%w: email already in use", models.ErrConflict)
		}
		return dbgen.Member{}, fmt.Errorf("insert member: %w", err)
	}

	s.logger.Info().
		Int64("member_id", member.ID).
		Str("tier", member.MembershipTier).
		Msg("Member created")
	return member, nil
}

func (s *Service) Get(ctx context.Context, memberID int64) (dbgen.Member, error) {
	member, err := s.db.Queries.GetMemberByID(ctx, memberID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return dbgen.Member{}, models.ErrMemberNotFound
		}
		return dbgen.Member{}, fmt.Errorf("load member: %w", err)
	}
	return member, nil
}

func (s *Service) List(ctx context.Context, limit, offset int64) ([]dbgen.Member, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	members, err := s.db.Queries.ListMembers(ctx, dbgen.ListMembersParams{Limit: limit, Offset: max(offset, 0)})
	if err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}
	return members, nil
}

func (s *Service) SetTier(ctx context.Context, memberID int64, value string) (dbgen.Member, error) {
	tier, err := models.ParseTier(value)
	if err != nil {
		return dbgen.Member{}, err
	}
	rows, err := s.db.Queries.UpdateMemberTier(ctx, dbgen.UpdateMemberTierParams{
		MembershipTier: string(tier),
		UpdatedAt:      s.now(),
		ID:             memberID,
	})
	if err != nil {
		return dbgen.Member{}, fmt.Errorf("update tier: %w", err)
	}
	if rows == 0 {
		return dbgen.Member{}, models.ErrMemberNotFound
	}
	s.logger.Info().Int64("member_id", memberID).Str("tier", string(tier)).Msg("Member tier changed")
	return s.Get(ctx, memberID)
}

// SetActive enables or disables a member. Inactive members cannot book or join tournaments.
func (s *Service) SetActive(ctx context.Context, memberID int64, active bool) (dbgen.Member, error) {
	rows, err := s.db.Queries.SetMemberActive(ctx, dbgen.SetMemberActiveParams{
		IsActive:  active,
		UpdatedAt: s.now(),
		ID:        memberID,
	})
	if err != nil {
		return dbgen.Member{}, fmt.Errorf("update member: %w", err)
	}
	if rows == 0 {
		return dbgen.Member{}, models.ErrMemberNotFound
	}
	s.logger.Info().Int64("member_id", memberID).Bool("active", active).Msg("Member status changed")
	return s.Get(ctx, memberID)
}
