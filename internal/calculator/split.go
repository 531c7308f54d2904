package calculator

import (
	"github.com/shopspring/decimal"

	"github.com/mmynk/splitledger/internal/models"
)

// Precision is the number of decimal places shares are rounded to (cents).
const Precision int32 = 2

var (
	// Tolerance is the largest absolute difference accepted when checking that
	// EXACT amounts add up to the total or PERCENT values add up to 100.
	Tolerance = decimal.New(1, -6)

	cent    = decimal.New(1, -Precision)
	hundred = decimal.NewFromInt(100)
)

// ComputeShares converts an expense total and split strategy into the amount
// each participant owes.
//
// Remainder policy: amounts are cut to whole cents, and the cents lost to
// rounding are handed out one at a time in participant order. PERCENT values
// that add up to slightly more than 100 can over-allocate; the excess cents are
// taken back from the largest shares. Any sub-cent residue left after that
// goes to the participant with the largest share. Shares are never negative.
// The returned shares always add up to exactly total.
//
// explicit must be empty for EQUAL. For EXACT it holds amounts, for PERCENT it
// holds percentages, and in both cases its keys must match participants exactly.
func ComputeShares(total decimal.Decimal, strategy models.SplitStrategy, participants []string, explicit models.ShareMap) (models.ShareMap, error) {
	if !total.IsPositive() {
		return nil, models.Invalid("total", "must be greater than 0, got %s", total)
	}
	if err := validateParticipants(participants); err != nil {
		return nil, err
	}

	switch strategy {
	case models.SplitEqual:
		if len(explicit) > 0 {
			return nil, models.Invalid("shares", "EQUAL split does not take explicit shares")
		}
		return equalShares(total, participants), nil
	case models.SplitExact:
		return exactShares(total, participants, explicit)
	case models.SplitPercent:
		return percentShares(total, participants, explicit)
	default:
		return nil, models.Invalid("strategy", "unknown split strategy %q", strategy)
	}
}

func validateParticipants(participants []string) error {
	if len(participants) == 0 {
		return models.Invalid("participants", "must have at least one participant")
	}
	seen := make(map[string]bool, len(participants))
	for _, p := range participants {
		if p == "" {
			return models.Invalid("participants", "participant id must not be empty")
		}
		if seen[p] {
			return models.Invalid("participants", "duplicate participant %q", p)
		}
		seen[p] = true
	}
	return nil
}

// validateKeys checks that explicit covers exactly the participant set.
func validateKeys(participants []string, explicit models.ShareMap) error {
	if len(explicit) == 0 {
		return models.Invalid("shares", "explicit shares are required")
	}
	for _, p := range participants {
		if _, ok := explicit[p]; !ok {
			return models.Invalid("shares", "missing share for participant %q", p)
		}
	}
	if len(explicit) != len(participants) {
		for k := range explicit {
			if !contains(participants, k) {
				return models.Invalid("shares", "share given for non-participant %q", k)
			}
		}
	}
	return nil
}

func equalShares(total decimal.Decimal, participants []string) models.ShareMap {
	n := decimal.NewFromInt(int64(len(participants)))
	base := total.Div(n).RoundDown(Precision)

	shares := make(models.ShareMap, len(participants))
	for _, p := range participants {
		shares[p] = base
	}
	distributeRemainder(shares, participants, total.Sub(base.Mul(n)))
	return shares
}

func exactShares(total decimal.Decimal, participants []string, explicit models.ShareMap) (models.ShareMap, error) {
	if err := validateKeys(participants, explicit); err != nil {
		return nil, err
	}
	for _, p := range participants {
		if explicit[p].IsNegative() {
			return nil, models.Invalid("shares", "share for %q must not be negative, got %s", p, explicit[p])
		}
	}
	sum := explicit.Sum()
	if sum.Sub(total).Abs().GreaterThan(Tolerance) {
		return nil, models.Invalid("shares", "exact shares add up to %s, expected %s", sum, total)
	}
	return explicit.Clone(), nil
}

func percentShares(total decimal.Decimal, participants []string, percentages models.ShareMap) (models.ShareMap, error) {
	if err := validateKeys(participants, percentages); err != nil {
		return nil, err
	}
	var eligible []string
	for _, p := range participants {
		pct := percentages[p]
		if pct.IsNegative() || pct.GreaterThan(hundred) {
			return nil, models.Invalid("shares", "percentage for %q must be within [0,100], got %s", p, pct)
		}
		if pct.IsPositive() {
			eligible = append(eligible, p)
		}
	}
	sum := percentages.Sum()
	if sum.Sub(hundred).Abs().GreaterThan(Tolerance) {
		return nil, models.Invalid("shares", "percentages add up to %s, expected 100", sum)
	}

	shares := make(models.ShareMap, len(participants))
	allocated := decimal.Zero
	for _, p := range participants {
		share := total.Mul(percentages[p]).Div(hundred).RoundDown(Precision)
		shares[p] = share
		allocated = allocated.Add(share)
	}
	distributeRemainder(shares, eligible, total.Sub(allocated))
	return shares, nil
}

// distributeRemainder adds remainder to shares so they sum to the intended
// total. A positive remainder is handed out a cent at a time in order. A
// negative one is taken a cent at a time from the largest share, so no share
// drops below zero. Any sub-cent residue goes to the largest share.
func distributeRemainder(shares models.ShareMap, order []string, remainder decimal.Decimal) {
	if len(order) == 0 || remainder.IsZero() {
		return
	}
	if remainder.IsNegative() {
		for remainder.LessThanOrEqual(cent.Neg()) {
			p := largestShare(shares, order)
			shares[p] = shares[p].Sub(cent)
			remainder = remainder.Add(cent)
		}
	} else {
		for i := 0; remainder.GreaterThanOrEqual(cent); i++ {
			p := order[i%len(order)]
			shares[p] = shares[p].Add(cent)
			remainder = remainder.Sub(cent)
		}
	}
	if remainder.IsZero() {
		return
	}
	p := largestShare(shares, order)
	shares[p] = shares[p].Add(remainder)
}

// largestShare returns the participant with the largest share, the earliest
// in order on ties.
func largestShare(shares models.ShareMap, order []string) string {
	largest := order[0]
	for _, p := range order[1:] {
		if shares[p].GreaterThan(shares[largest]) {
			largest = p
		}
	}
	return largest
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
