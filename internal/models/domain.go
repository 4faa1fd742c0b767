// internal/models/domain.go
package models

import (
	"strings"

	"github.com/shopspring/decimal"
)

const (
	BookingStatusPending   = "Pending"
	BookingStatusConfirmed = "Confirmed"
	BookingStatusCancelled = "Cancelled"
)

// ValidBookingStatus reports whether status is one of the stored booking states.
func ValidBookingStatus(status string) bool {
	switch status {
	case BookingStatusPending, BookingStatusConfirmed, BookingStatusCancelled:
		return true
	}
	return false
}

const (
	TxTypeDeposit    = "Deposit"
	TxTypeWithdrawal = "Withdrawal"
	TxTypePayment    = "Payment"
	TxTypeRefund     = "Refund"

	TxStatusPending   = "Pending"
	TxStatusCompleted = "Completed"
	TxStatusRejected  = "Rejected"
)

const (
	TournamentUpcoming    = "Upcoming"
	TournamentOpen        = "Open"
	TournamentRegistering = "Registering"
	TournamentOngoing     = "Ongoing"
	TournamentFinished    = "Finished"

	RegistrationPending   = "Pending"
	RegistrationConfirmed = "Confirmed"
	RegistrationCancelled = "Cancelled"

	MatchScheduled  = "Scheduled"
	MatchInProgress = "InProgress"
	MatchFinished   = "Finished"
)

const (
	FormatSingles    = "Singles"
	FormatDoubles    = "Doubles"
	FormatMixed      = "Mixed"
	FormatRoundRobin = "RoundRobin"
)

// IsKnockout reports whether a tournament format is played as single elimination.
// Every other format is scheduled as a round robin.
func IsKnockout(format string) bool {
	return format == FormatSingles || format == FormatDoubles
}

// TeamSize is the number of members on each side of a match.
func TeamSize(format string) int {
	if format == FormatDoubles {
		return 2
	}
	return 1
}

// Tier is a membership tier. Tiers are ordered Basic < Silver < Gold < VIP < Diamond.
type Tier string

const (
	TierBasic   Tier = "Basic"
	TierSilver  Tier = "Silver"
	TierGold    Tier = "Gold"
	TierVIP     Tier = "VIP"
	TierDiamond Tier = "Diamond"
)

var tierRank = map[Tier]int{
	TierBasic:   0,
	TierSilver:  1,
	TierGold:    2,
	TierVIP:     3,
	TierDiamond: 4,
}

// ParseTier accepts a tier name case-insensitively.
func ParseTier(value string) (Tier, error) {
	for tier := range tierRank {
		if strings.EqualFold(string(tier), strings.TrimSpace(value)) {
			return tier, nil
		}
	}
	return "", ErrInvalidTier
}

// Rank returns the tier's position in the ordering, or -1 for unknown tiers.
func (t Tier) Rank() int {
	rank, ok := tierRank[t]
	if !ok {
		return -1
	}
	return rank
}

// AtLeast reports whether t ranks at or above other. Unknown tiers rank below everything.
func (t Tier) AtLeast(other Tier) bool {
	return t.Rank() >= 0 && t.Rank() >= other.Rank()
}

// AllowsRecurring reports whether members of this tier may place recurring bookings.
func (t Tier) AllowsRecurring() bool {
	return t.AtLeast(TierGold)
}

// RoundMoney rounds to the two decimal places money is stored with.
func RoundMoney(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}
