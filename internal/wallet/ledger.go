// Package wallet owns member balances and the append-only transaction ledger.
// Every balance change in the system goes through Apply.
package wallet

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/codr1/pickleclub/internal/db"
	dbgen "github.com/codr1/pickleclub/internal/db/generated"
	"github.com/codr1/pickleclub/internal/lockmap"
	"github.com/codr1/pickleclub/internal/metrics"
	"github.com/codr1/pickleclub/internal/models"
	"github.com/codr1/pickleclub/internal/notify"
)

const maxAttempts = 3

type ApplyParams struct {
	MemberID    int64
	Type        string
	Amount      decimal.Decimal // signed; negative amounts are debits
	Description string
	Reference   string
	// Status defaults to Completed. A Pending row records the request without
	// touching the balance.
	Status string
	At     time.Time
}

// Apply records one ledger entry and, unless it is Pending, moves the
// member's balance by Amount. Callers should pass a transactional querier
// when the entry must commit together with other writes.
//
// The balance write is conditional on the member version read here, so a
// concurrent writer makes Apply fail with ErrConcurrentUpdate instead of
// silently overwriting a newer balance.
func Apply(ctx context.Context, q dbgen.Querier, params ApplyParams) (dbgen.WalletTransaction, error) {
	if q == nil {
		return dbgen.WalletTransaction{}, fmt.Errorf("queries are required")
	}
	if params.Reference == "" {
		return dbgen.WalletTransaction{}, fmt.Errorf("reference is required")
	}
	status := params.Status
	if status == "" {
		status = models.TxStatusCompleted
	}
	at := params.At
	if at.IsZero() {
		at = time.Now().UTC()
	}
	amount := models.RoundMoney(params.Amount)

	member, err := q.GetMemberByID(ctx, params.MemberID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return dbgen.WalletTransaction{}, models.ErrMemberNotFound
		}
		return dbgen.WalletTransaction{}, fmt.Errorf("load member: %w", err)
	}

	before := member.WalletBalance
	after := before
	if status == models.TxStatusCompleted {
		after = before.Add(amount)
		if amount.IsNegative() && after.IsNegative() {
			return dbgen.WalletTransaction{}, models.ErrInsufficientFunds
		}
		if err := updateBalance(ctx, q, member, after, at); err != nil {
			return dbgen.WalletTransaction{}, err
		}
	}

	tx, err := q.CreateWalletTransaction(ctx, dbgen.CreateWalletTransactionParams{
		MemberID:      member.ID,
		Type:          params.Type,
		Amount:        amount,
		BalanceBefore: before,
		BalanceAfter:  after,
		Description:   params.Description,
		Reference:     params.Reference,
		Status:        status,
		CreatedAt:     at,
	})
	if err != nil {
		return dbgen.WalletTransaction{}, fmt.Errorf("insert wallet transaction: %w", err)
	}
	return tx, nil
}

func updateBalance(ctx context.Context, q dbgen.Querier, member dbgen.Member, balance decimal.Decimal, at time.Time) error {
	rows, err := q.UpdateMemberBalance(ctx, dbgen.UpdateMemberBalanceParams{
		WalletBalance: balance,
		UpdatedAt:     at,
		ID:            member.ID,
		Version:       member.Version,
	})
	if err != nil {
		return fmt.Errorf("update balance: %w", err)
	}
	if rows == 0 {
		return models.ErrConcurrentUpdate
	}
	return nil
}

// WithRetry runs fn again when it fails with ErrConcurrentUpdate. fn must be a
// complete unit of work, normally one RunInTx call.
func WithRetry(ctx context.Context, fn func() error) error {
	var err error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		err = fn()
		if !errors.Is(err, models.ErrConcurrentUpdate) {
			return err
		}
		log.Ctx(ctx).Debug().Int("attempt", attempt).Msg("Retrying after concurrent balance update")
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
	}
	return err
}

type Options struct {
	RequireDepositApproval bool
	Publisher              notify.Publisher
	Metrics                *metrics.Metrics
	Locks                  *lockmap.Map
	Now                    func() time.Time
}

// Ledger exposes the member-facing wallet operations.
type Ledger struct {
	db              *db.DB
	locks           *lockmap.Map
	publisher       notify.Publisher
	metrics         *metrics.Metrics
	requireApproval bool
	now             func() time.Time
	logger          zerolog.Logger
}

func NewLedger(database *db.DB, opts Options) *Ledger {
	if opts.Locks == nil {
		opts.Locks = lockmap.New()
	}
	if opts.Now == nil {
		opts.Now = func() time.Time { return time.Now().UTC() }
	}
	return &Ledger{
		db:              database,
		locks:           opts.Locks,
		publisher:       opts.Publisher,
		metrics:         opts.Metrics,
		requireApproval: opts.RequireDepositApproval,
		now:             opts.Now,
		logger:          log.With().Str("component", "wallet").Logger(),
	}
}

// MemberLockKey is the lockmap key serializing balance changes for a member.
func MemberLockKey(memberID int64) string {
	return "member:" + strconv.FormatInt(memberID, 10)
}

func (l *Ledger) applyLocked(ctx context.Context, params ApplyParams) (dbgen.WalletTransaction, error) {
	unlock := l.locks.Lock(MemberLockKey(params.MemberID))
	defer unlock()

	var tx dbgen.WalletTransaction
	err := WithRetry(ctx, func() error {
		return l.db.RunInTx(ctx, func(txdb *db.DB) error {
			var err error
			tx, err = Apply(ctx, txdb.Queries, params)
			return err
		})
	})
	if err != nil {
		return dbgen.WalletTransaction{}, err
	}
	l.metrics.WalletTransaction(tx.Type, tx.Status)
	return tx, nil
}

func (l *Ledger) Balance(ctx context.Context, memberID int64) (decimal.Decimal, error) {
	member, err := l.db.Queries.GetMemberByID(ctx, memberID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return decimal.Zero, models.ErrMemberNotFound
		}
		return decimal.Zero, fmt.Errorf("load member: %w", err)
	}
	return member.WalletBalance, nil
}

// Transactions lists a member's ledger, newest first.
func (l *Ledger) Transactions(ctx context.Context, memberID int64) ([]dbgen.WalletTransaction, error) {
	if _, err := l.Balance(ctx, memberID); err != nil {
		return nil, err
	}
	txs, err := l.db.Queries.ListWalletTransactionsByMember(ctx, memberID)
	if err != nil {
		return nil, fmt.Errorf("list wallet transactions: %w", err)
	}
	return txs, nil
}

// Deposit credits amount. When deposits require approval the entry is
// recorded Pending and staff are notified instead.
func (l *Ledger) Deposit(ctx context.Context, memberID int64, amount decimal.Decimal, description string) (dbgen.WalletTransaction, error) {
	if !amount.IsPositive() {
		return dbgen.WalletTransaction{}, models.ErrInvalidAmount
	}
	if description == "" {
		description = "Wallet deposit"
	}
	status := models.TxStatusCompleted
	if l.requireApproval {
		status = models.TxStatusPending
	}

	tx, err := l.applyLocked(ctx, ApplyParams{
		MemberID:    memberID,
		Type:        models.TxTypeDeposit,
		Amount:      amount,
		Description: description,
		Reference:   "DEP-" + uuid.NewString(),
		Status:      status,
		At:          l.now(),
	})
	if err != nil {
		return dbgen.WalletTransaction{}, err
	}

	if tx.Status == models.TxStatusPending {
		notify.Publish(ctx, l.publisher, notify.Event{
			Type:     notify.EventDepositPending,
			MemberID: memberID,
			Subject:  "Deposit awaiting approval",
			Message:  fmt.Sprintf("Deposit of %s is awaiting approval", tx.Amount.StringFixed(2)),
			Data: map[string]string{
				"transaction_id": strconv.FormatInt(tx.ID, 10),
				"amount":         tx.Amount.StringFixed(2),
				"reference":      tx.Reference,
			},
		})
	}
	return tx, nil
}

func (l *Ledger) Withdraw(ctx context.Context, memberID int64, amount decimal.Decimal, description string) (dbgen.WalletTransaction, error) {
	if !amount.IsPositive() {
		return dbgen.WalletTransaction{}, models.ErrInvalidAmount
	}
	if description == "" {
		description = "Wallet withdrawal"
	}
	return l.applyLocked(ctx, ApplyParams{
		MemberID:    memberID,
		Type:        models.TxTypeWithdrawal,
		Amount:      amount.Neg(),
		Description: description,
		Reference:   "WDR-" + uuid.NewString(),
		At:          l.now(),
	})
}

func (l *Ledger) PendingDeposits(ctx context.Context) ([]dbgen.WalletTransaction, error) {
	txs, err := l.db.Queries.ListPendingDeposits(ctx)
	if err != nil {
		return nil, fmt.Errorf("list pending deposits: %w", err)
	}
	return txs, nil
}

// ApproveDeposit completes a Pending deposit, snapshotting the live balance
// at approval time.
func (l *Ledger) ApproveDeposit(ctx context.Context, transactionID int64) (dbgen.WalletTransaction, error) {
	return l.settle(ctx, transactionID, func(ctx context.Context, q dbgen.Querier, pending dbgen.WalletTransaction) (dbgen.SettlePendingDepositParams, error) {
		member, err := q.GetMemberByID(ctx, pending.MemberID)
		if err != nil {
			return dbgen.SettlePendingDepositParams{}, fmt.Errorf("load member: %w", err)
		}
		after := member.WalletBalance.Add(pending.Amount)
		if err := updateBalance(ctx, q, member, after, l.now()); err != nil {
			return dbgen.SettlePendingDepositParams{}, err
		}
		return dbgen.SettlePendingDepositParams{
			Status:        models.TxStatusCompleted,
			BalanceBefore: member.WalletBalance,
			BalanceAfter:  after,
			Description:   pending.Description,
			ID:            pending.ID,
		}, nil
	})
}

// RejectDeposit marks a Pending deposit Rejected. The balance is untouched.
func (l *Ledger) RejectDeposit(ctx context.Context, transactionID int64, reason string) (dbgen.WalletTransaction, error) {
	return l.settle(ctx, transactionID, func(_ context.Context, _ dbgen.Querier, pending dbgen.WalletTransaction) (dbgen.SettlePendingDepositParams, error) {
		description := pending.Description
		if reason != "" {
			description = fmt.Sprintf("%s (rejected: %s)", description, reason)
		}
		return dbgen.SettlePendingDepositParams{
			Status:        models.TxStatusRejected,
			BalanceBefore: pending.BalanceBefore,
			BalanceAfter:  pending.BalanceAfter,
			Description:   description,
			ID:            pending.ID,
		}, nil
	})
}

type settleFunc func(ctx context.Context, q dbgen.Querier, pending dbgen.WalletTransaction) (dbgen.SettlePendingDepositParams, error)

func (l *Ledger) settle(ctx context.Context, transactionID int64, build settleFunc) (dbgen.WalletTransaction, error) {
	pending, err := l.db.Queries.GetWalletTransaction(ctx, transactionID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return dbgen.WalletTransaction{}, models.ErrTransactionNotFound
		}
		return dbgen.WalletTransaction{}, fmt.Errorf("load transaction: %w", err)
	}

	unlock := l.locks.Lock(MemberLockKey(pending.MemberID))
	defer unlock()

	var settled dbgen.WalletTransaction
	err = WithRetry(ctx, func() error {
		return l.db.RunInTx(ctx, func(txdb *db.DB) error {
			current, err := txdb.Queries.GetWalletTransaction(ctx, transactionID)
			if err != nil {
				return fmt.Errorf("reload transaction: %w", err)
			}
			if current.Type != models.TxTypeDeposit || current.Status != models.TxStatusPending {
				return models.ErrTransactionNotPending
			}
			params, err := build(ctx, txdb.Queries, current)
			if err != nil {
				return err
			}
			settled, err = txdb.Queries.SettlePendingDeposit(ctx, params)
			if errors.Is(err, sql.ErrNoRows) {
				return models.ErrTransactionNotPending
			}
			return err
		})
	})
	if err != nil {
		return dbgen.WalletTransaction{}, err
	}

	l.metrics.WalletTransaction(settled.Type, settled.Status)
	l.logger.Info().
		Int64("transaction_id", settled.ID).
		Int64("member_id", settled.MemberID).
		Str("status", settled.Status).
		Msg("Pending deposit settled")
	return settled, nil
}
