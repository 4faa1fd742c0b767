// internal/api/wallet/handlers.go
package wallet

import (
	"net/http"
	"strings"
	"sync/atomic"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/codr1/pickleclub/internal/api/apiutil"
	dbgen "github.com/codr1/pickleclub/internal/db/generated"
	"github.com/codr1/pickleclub/internal/models"
	"github.com/codr1/pickleclub/internal/wallet"
)

var ledger atomic.Pointer[wallet.Ledger]

// InitHandlers must be called during server startup before handling requests.
func InitHandlers(l *wallet.Ledger) {
	if l == nil {
		return
	}
	ledger.Store(l)
}

func loadLedger(w http.ResponseWriter, r *http.Request) *wallet.Ledger {
	l := ledger.Load()
	if l == nil {
		log.Ctx(r.Context()).Error().Msg("Wallet handlers not initialized")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
	return l
}

type amountRequest struct {
	Amount      string `json:"amount"`
	Description string `json:"description,omitempty"`
}

type rejectRequest struct {
	Reason string `json:"reason,omitempty"`
}

type balanceResponse struct {
	MemberID int64           `json:"member_id"`
	Balance  decimal.Decimal `json:"balance"`
}

func nonNil(list []dbgen.WalletTransaction) []dbgen.WalletTransaction {
	if list == nil {
		return []dbgen.WalletTransaction{}
	}
	return list
}

// GET /api/v1/wallet/balance
func HandleBalance(w http.ResponseWriter, r *http.Request) {
	l := loadLedger(w, r)
	if l == nil {
		return
	}
	user := apiutil.RequireUser(w, r)
	if user == nil {
		return
	}
	balance, err := l.Balance(r.Context(), user.ID)
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}
	apiutil.WriteResult(w, r, http.StatusOK, balanceResponse{MemberID: user.ID, Balance: balance})
}

// GET /api/v1/wallet/transactions
func HandleTransactions(w http.ResponseWriter, r *http.Request) {
	l := loadLedger(w, r)
	if l == nil {
		return
	}
	user := apiutil.RequireUser(w, r)
	if user == nil {
		return
	}
	txs, err := l.Transactions(r.Context(), user.ID)
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}
	apiutil.WriteResult(w, r, http.StatusOK, nonNil(txs))
}

func decodeAmount(w http.ResponseWriter, r *http.Request) (decimal.Decimal, string, bool) {
	var req amountRequest
	if err := apiutil.DecodeJSON(r, &req); err != nil {
		apiutil.WriteError(w, r, apiutil.HandlerError{Status: http.StatusBadRequest, Message: "Invalid JSON body", Err: err})
		return decimal.Zero, "", false
	}
	amount, err := apiutil.ParseMoneyField(req.Amount, "amount")
	if err != nil {
		apiutil.WriteError(w, r, err)
		return decimal.Zero, "", false
	}
	return amount, strings.TrimSpace(req.Description), true
}

// POST /api/v1/wallet/deposit
func HandleDeposit(w http.ResponseWriter, r *http.Request) {
	l := loadLedger(w, r)
	if l == nil {
		return
	}
	user := apiutil.RequireUser(w, r)
	if user == nil {
		return
	}
	amount, description, ok := decodeAmount(w, r)
	if !ok {
		return
	}
	tx, err := l.Deposit(r.Context(), user.ID, amount, description)
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}
	status := http.StatusCreated
	if tx.Status == models.TxStatusPending {
		status = http.StatusAccepted
	}
	apiutil.WriteResult(w, r, status, tx)
}

// POST /api/v1/wallet/withdraw
func HandleWithdraw(w http.ResponseWriter, r *http.Request) {
	l := loadLedger(w, r)
	if l == nil {
		return
	}
	user := apiutil.RequireUser(w, r)
	if user == nil {
		return
	}
	amount, description, ok := decodeAmount(w, r)
	if !ok {
		return
	}
	tx, err := l.Withdraw(r.Context(), user.ID, amount, description)
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}
	apiutil.WriteResult(w, r, http.StatusCreated, tx)
}

// GET /api/v1/wallet/admin/pending
func HandlePending(w http.ResponseWriter, r *http.Request) {
	l := loadLedger(w, r)
	if l == nil {
		return
	}
	if !apiutil.RequireStaff(w, r) {
		return
	}
	txs, err := l.PendingDeposits(r.Context())
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}
	apiutil.WriteResult(w, r, http.StatusOK, nonNil(txs))
}

// PUT /api/v1/wallet/admin/approve/{id}
func HandleApprove(w http.ResponseWriter, r *http.Request) {
	l := loadLedger(w, r)
	if l == nil {
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
	tx, err := l.ApproveDeposit(r.Context(), id)
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}
	apiutil.WriteResult(w, r, http.StatusOK, tx)
}

// PUT /api/v1/wallet/admin/reject/{id}
func HandleReject(w http.ResponseWriter, r *http.Request) {
	l := loadLedger(w, r)
	if l == nil {
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
	var req rejectRequest
	if r.ContentLength != 0 {
		if err := apiutil.DecodeJSON(r, &req); err != nil {
			apiutil.WriteError(w, r, apiutil.HandlerError{Status: http.StatusBadRequest, Message: "Invalid JSON body", Err: err})
			return
		}
	}
	tx, err := l.RejectDeposit(r.Context(), id, strings.TrimSpace(req.Reason))
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}
	apiutil.WriteResult(w, r, http.StatusOK, tx)
}
