package fleet

import "math"

// BreakdownChance converts a per-hour failure rate into the probability of at
// least one failure over `hours` elapsed, via the Poisson process identity
// p = 1 - exp(-rate*hours). Zero rate or zero elapsed time never fails; the
// chance rises monotonically with hours and approaches 1 in the limit.
func BreakdownChance(ratePerHour, hours float64) float64 {
	if ratePerHour <= 0 || hours <= 0 {
		return 0
	}
	return 1 - math.Exp(-ratePerHour*hours)
}

// effectiveBreakdownRate applies the balancing constant and the fleet-AI
// discount to a unit's base rate.
func effectiveBreakdownRate(base float64, fleetAIActive bool, p *Params) float64 {
	rate := base * p.BreakdownBalance
	if fleetAIActive {
		rate *= p.FleetAIBreakdown
	}
	return rate
}
