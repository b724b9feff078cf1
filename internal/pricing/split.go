package pricing

import "github.com/shopspring/decimal"

// SplitFee divides a delivery fee into the agent commission and the company
// revenue. Rounding is applied exactly once, to the commission; revenue is the
// remainder, so the two always sum back to the fee.
func SplitFee(feeCents int, commissionPct int) (commissionCents, revenueCents int) {
	commission := decimal.NewFromInt(int64(feeCents)).
		Mul(decimal.NewFromInt(int64(commissionPct))).
		Div(decimal.NewFromInt(100)).
		Round(0)
	commissionCents = int(commission.IntPart())
	revenueCents = feeCents - commissionCents
	return commissionCents, revenueCents
}
