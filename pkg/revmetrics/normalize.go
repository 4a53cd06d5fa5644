package revmetrics

import "github.com/shopspring/decimal"

// Normalization factors. The 4.33 weeks-per-month approximation is a
// deliberate choice carried over from the billing dashboard's original
// arithmetic; changing it changes every reported MRR.
var (
	minorUnitsPerMajor = decimal.NewFromInt(100)
	monthsPerYear      = decimal.NewFromInt(12)
	weeksPerMonth      = decimal.RequireFromString("4.33")
	daysPerMonth       = decimal.NewFromInt(30)
)

// MonthlyAmount converts a recurring charge into its monthly
// equivalent in major currency units. UnitAmount is in minor units.
// Unknown cadences contribute zero rather than failing, so a single
// exotic price cannot poison an MRR sum.
func MonthlyAmount(unitAmount int64, interval Interval) decimal.Decimal {
	major := decimal.NewFromInt(unitAmount).Div(minorUnitsPerMajor)
	switch interval {
	case IntervalMonth:
		return major
	case IntervalYear:
		return major.Div(monthsPerYear)
	case IntervalWeek:
		return major.Mul(weeksPerMonth)
	case IntervalDay:
		return major.Mul(daysPerMonth)
	default:
		return decimal.Zero
	}
}
