// Package tournaments manages tournament entries and brackets. Entry fees and
// cancellation refunds go through the wallet ledger in the same transaction as
// the registration row.
package tournaments

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/codr1/pickleclub/internal/db"
	dbgen "github.com/codr1/pickleclub/internal/db/generated"
	"github.com/codr1/pickleclub/internal/lockmap"
	"github.com/codr1/pickleclub/internal/metrics"
	"github.com/codr1/pickleclub/internal/models"
	"github.com/codr1/pickleclub/internal/notify"
	"github.com/codr1/pickleclub/internal/wallet"
)

// cancellationRefundRate is the share of the entry fee returned on withdrawal.
var cancellationRefundRate = decimal.RequireFromString("0.5")

type Options struct {
	Publisher notify.Publisher
	Metrics   *metrics.Metrics
	// Locks must be shared with the wallet ledger and booking manager.
	Locks *lockmap.Map
	Now   func() time.Time
}

func (o Options) withDefaults() Options {
	if o.Locks == nil {
		o.Locks = lockmap.New()
	}
	if o.Now == nil {
		o.Now = func() time.Time { return time.Now().UTC() }
	}
	return o
}

type Registry struct {
	db      *db.DB
	metrics *metrics.Metrics
	locks   *lockmap.Map
	now     func() time.Time
	logger  zerolog.Logger
}

func NewRegistry(database *db.DB, opts Options) *Registry {
	opts = opts.withDefaults()
	return &Registry{
		db:      database,
		metrics: opts.Metrics,
		locks:   opts.Locks,
		now:     opts.Now,
		logger:  log.With().Str("component", "tournaments").Logger(),
	}
}

func tournamentLockKey(tournamentID int64) string {
	return "tournament:" + strconv.FormatInt(tournamentID, 10)
}

type CreateParams struct {
	Name                 string
	Format               string
	MaxParticipants      int64
	EntryFee             decimal.Decimal
	StartDate            string // YYYY-MM-DD
	EndDate              string // YYYY-MM-DD
	RegistrationDeadline time.Time
	Status               string
}

func (p CreateParams) validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("%w: name is required", models.ErrInvalidInput)
	}
	switch p.Format {
	case models.FormatSingles, models.FormatDoubles, models.FormatMixed, models.FormatRoundRobin:
	default:
		return fmt.Errorf("%w: unknown format %q", models.ErrInvalidInput, p.Format)
	}
	if p.MaxParticipants <= 0 {
		return fmt.Errorf("%w: max participants must be positive", models.ErrInvalidInput)
	}
	if p.EntryFee.IsNegative() {
		return models.ErrInvalidAmount
	}
	start, err := models.ParseDate(p.StartDate)
	if err != nil {
		return err
	}
	end, err := models.ParseDate(p.EndDate)
	if err != nil {
		return err
	}
	if end.Before(start) {
		return fmt.Errorf("%w: end date is before start date", models.ErrInvalidInput)
	}
	if p.RegistrationDeadline.IsZero() {
		return fmt.Errorf("%w: registration deadline is required", models.ErrInvalidInput)
	}
	switch p.Status {
	case "", models.TournamentUpcoming, models.TournamentOpen, models.TournamentRegistering:
	default:
		return models.ErrInvalidStatus
	}
	return nil
}

// Create adds a tournament. Status defaults to Upcoming.
func (r *Registry) Create(ctx context.Context, params CreateParams) (dbgen.Tournament, error) {
	if err := params.validate(); err != nil {
		return dbgen.Tournament{}, err
	}
	status := params.Status
	if status == "" {
		status = models.TournamentUpcoming
	}

	now := r.now()
	tournament, err := r.db.Queries.CreateTournament(ctx, dbgen.CreateTournamentParams{
		Name:                 strings.TrimSpace(params.Name),
		Format:               params.Format,
		MaxParticipants:      params.MaxParticipants,
		EntryFee:             models.RoundMoney(params.EntryFee),
		StartDate:            params.StartDate,
		EndDate:              params.EndDate,
		RegistrationDeadline: params.RegistrationDeadline.UTC(),
		Status:               status,
		CreatedAt:            now,
		UpdatedAt:            now,
	})
	if err != nil {
		return dbgen.Tournament{}, fmt.Errorf("insert tournament: %w", err)
	}

	r.logger.Info().
		Int64("tournament_id", tournament.ID).
		Str("format", tournament.Format).
		Msg("Tournament created")
	return tournament, nil
}

func (r *Registry) Get(ctx context.Context, tournamentID int64) (dbgen.Tournament, error) {
	return loadTournament(ctx, r.db.Queries, tournamentID)
}

func (r *Registry) List(ctx context.Context) ([]dbgen.Tournament, error) {
	tournaments, err := r.db.Queries.ListTournaments(ctx)
	if err != nil {
		return nil, fmt.Errorf("list tournaments: %w", err)
	}
	return tournaments, nil
}

// Registrations lists every registration for the tournament, cancelled ones included.
func (r *Registry) Registrations(ctx context.Context, tournamentID int64) ([]dbgen.TournamentRegistration, error) {
	if _, err := loadTournament(ctx, r.db.Queries, tournamentID); err != nil {
		return nil, err
	}
	registrations, err := r.db.Queries.ListRegistrations(ctx, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("list registrations: %w", err)
	}
	return registrations, nil
}

func loadTournament(ctx context.Context, q dbgen.Querier, tournamentID int64) (dbgen.Tournament, error) {
	tournament, err := q.GetTournamentByID(ctx, tournamentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return dbgen.Tournament{}, models.ErrTournamentNotFound
		}
		return dbgen.Tournament{}, fmt.Errorf("load tournament: %w", err)
	}
	return tournament, nil
}

func acceptsEntries(status string) bool {
	return status == models.TournamentUpcoming || status == models.TournamentOpen
}

func acceptsWithdrawals(status string) bool {
	return acceptsEntries(status) || status == models.TournamentRegistering
}

// Join registers the member and charges the entry fee. Deadline and capacity
// are checked before the wallet so a full tournament never reports
// insufficient funds. A previously cancelled registration is reactivated.
func (r *Registry) Join(ctx context.Context, tournamentID, memberID int64) (dbgen.TournamentRegistration, error) {
	unlockTournament := r.locks.Lock(tournamentLockKey(tournamentID))
	defer unlockTournament()
	unlockMember := r.locks.Lock(wallet.MemberLockKey(memberID))
	defer unlockMember()

	var (
		registration dbgen.TournamentRegistration
		tournament   dbgen.Tournament
	)
	err := wallet.WithRetry(ctx, func() error {
		return r.db.RunInTx(ctx, func(txdb *db.DB) error {
			q := txdb.Queries
			var err error
			tournament, err = loadTournament(ctx, q, tournamentID)
			if err != nil {
				return err
			}
			if !acceptsEntries(tournament.Status) {
				return models.ErrRegistrationClosed
			}
			now := r.now()
			if now.After(tournament.RegistrationDeadline) {
				return models.ErrDeadlinePassed
			}
			if tournament.CurrentParticipants >= tournament.MaxParticipants {
				return models.ErrTournamentFull
			}

			existing, err := q.GetRegistration(ctx, dbgen.GetRegistrationParams{
				TournamentID: tournamentID,
				MemberID:     memberID,
			})
			found := err == nil
			if err != nil && !errors.Is(err, sql.ErrNoRows) {
				return fmt.Errorf("load registration: %w", err)
			}
			if found && existing.Status != models.RegistrationCancelled {
				return models.ErrAlreadyRegistered
			}

			if _, err := loadActiveMember(ctx, q, memberID); err != nil {
				return err
			}

			reference := ""
			fee := tournament.EntryFee
			if fee.IsPositive() {
				reference = "TOURNAMENT-" + strconv.FormatInt(tournament.ID, 10)
				if _, err := wallet.Apply(ctx, q, wallet.ApplyParams{
					MemberID:    memberID,
					Type:        models.TxTypePayment,
					Amount:      fee.Neg(),
					Description: "Tournament entry - " + tournament.Name,
					Reference:   reference,
					At:          now,
				}); err != nil {
					return err
				}
			}

			if found {
				registration, err = q.UpdateRegistration(ctx, dbgen.UpdateRegistrationParams{
					Status:           models.RegistrationConfirmed,
					AmountPaid:       fee,
					PaymentReference: reference,
					RegisteredAt:     now,
					ID:               existing.ID,
				})
			} else {
				registration, err = q.CreateRegistration(ctx, dbgen.CreateRegistrationParams{
					TournamentID:     tournamentID,
					MemberID:         memberID,
					Status:           models.RegistrationConfirmed,
					AmountPaid:       fee,
					PaymentReference: reference,
					RegisteredAt:     now,
				})
			}
			if err != nil {
				return fmt.Errorf("save registration: %w", err)
			}

			return q.UpdateTournamentParticipants(ctx, dbgen.UpdateTournamentParticipantsParams{
				CurrentParticipants: tournament.CurrentParticipants + 1,
				UpdatedAt:           now,
				ID:                  tournament.ID,
			})
		})
	})
	if err != nil {
		r.metrics.Registration("join_failed")
		return dbgen.TournamentRegistration{}, err
	}

	r.metrics.Registration("join")
	if tournament.EntryFee.IsPositive() {
		r.metrics.WalletTransaction(models.TxTypePayment, models.TxStatusCompleted)
	}
	r.logger.Info().
		Int64("tournament_id", tournamentID).
		Int64("member_id", memberID).
		Str("fee", tournament.EntryFee.StringFixed(2)).
		Msg("Tournament registration confirmed")
	return registration, nil
}

// Cancel withdraws the member and refunds half the entry fee. Withdrawals are
// refused once the bracket has been generated.
func (r *Registry) Cancel(ctx context.Context, tournamentID, memberID int64) (dbgen.TournamentRegistration, error) {
	unlockTournament := r.locks.Lock(tournamentLockKey(tournamentID))
	defer unlockTournament()
	unlockMember := r.locks.Lock(wallet.MemberLockKey(memberID))
	defer unlockMember()

	var (
		registration dbgen.TournamentRegistration
		refund       decimal.Decimal
	)
	err := wallet.WithRetry(ctx, func() error {
		return r.db.RunInTx(ctx, func(txdb *db.DB) error {
			q := txdb.Queries
			tournament, err := loadTournament(ctx, q, tournamentID)
			if err != nil {
				return err
			}
			registration, err = q.GetRegistration(ctx, dbgen.GetRegistrationParams{
				TournamentID: tournamentID,
				MemberID:     memberID,
			})
			if err != nil {
				if errors.Is(err, sql.ErrNoRows) {
					return models.ErrNotRegistered
				}
				return fmt.Errorf("load registration: %w", err)
			}
			if registration.Status == models.RegistrationCancelled {
				return models.ErrRegistrationAlreadyCancelled
			}
			if !acceptsWithdrawals(tournament.Status) {
				return models.ErrTournamentStarted
			}

			now := r.now()
			refund = models.RoundMoney(tournament.EntryFee.Mul(cancellationRefundRate))
			if refund.IsPositive() {
				if _, err := wallet.Apply(ctx, q, wallet.ApplyParams{
					MemberID:    memberID,
					Type:        models.TxTypeRefund,
					Amount:      refund,
					Description: "Tournament cancellation refund - " + tournament.Name,
					Reference:   "TOURNAMENT-REFUND-" + strconv.FormatInt(tournament.ID, 10),
					At:          now,
				}); err != nil {
					return err
				}
			}

			if err := q.UpdateRegistrationStatus(ctx, dbgen.UpdateRegistrationStatusParams{
				Status: models.RegistrationCancelled,
				ID:     registration.ID,
			}); err != nil {
				return fmt.Errorf("cancel registration: %w", err)
			}
			registration.Status = models.RegistrationCancelled

			return q.UpdateTournamentParticipants(ctx, dbgen.UpdateTournamentParticipantsParams{
				CurrentParticipants: max(tournament.CurrentParticipants-1, 0),
				UpdatedAt:           now,
				ID:                  tournament.ID,
			})
		})
	})
	if err != nil {
		return dbgen.TournamentRegistration{}, err
	}

	r.metrics.Registration("cancel")
	if refund.IsPositive() {
		r.metrics.WalletTransaction(models.TxTypeRefund, models.TxStatusCompleted)
	}
	r.logger.Info().
		Int64("tournament_id", tournamentID).
		Int64("member_id", memberID).
		Str("refund", refund.StringFixed(2)).
		Msg("Tournament registration cancelled")
	return registration, nil
}

func loadActiveMember(ctx context.Context, q dbgen.Querier, memberID int64) (dbgen.Member, error) {
	member, err := q.GetMemberByID(ctx, memberID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return dbgen.Member{}, models.ErrMemberNotFound
		}
		return dbgen.Member{}, fmt.Errorf("load member: %w", err)
	}
	if !member.IsActive {
		return dbgen.Member{}, models.ErrMemberInactive
	}
	return member, nil
}
