package planner

import "math"

// CostPolicy minimizes the monetary cost of the schedule: it stores cheap
// energy (solar surplus, off-peak grid) and spends it to avoid peak-rate
// imports.
type CostPolicy struct{}

// Name implements Policy.
func (CostPolicy) Name() string { return "cost" }

// Decide implements Policy.
func (CostPolicy) Decide(ctx Context) Action {
	act := Action{AllowExport: true}
	net := ctx.NetKW()

	if net < 0 {
		// Solar surplus: always worth storing before exporting.
		act.BatteryKW = math.Min(-net, ctx.Battery.Headroom(ctx.SoC, ctx.Interval))
		return act
	}

	if ctx.Config.PeakHour(ctx.Hour) {
		// Peak: discharge to displace expensive imports.
		act.BatteryKW = -math.Min(net, ctx.Battery.Available(ctx.SoC, ctx.Interval))
		return act
	}

	// Off-peak deficit: import cheaply, keep the battery for the peak. Top
	// up from the grid when the forecast shows a window where solar will
	// not even cover the essential base load.
	if ctx.SoC < ctx.Config.MaxSoC && upcomingDeficit(ctx.ForecastAhead, ctx.EssentialKW) {
		act.BatteryKW = ctx.Battery.Headroom(ctx.SoC, ctx.Interval)
	}
	return act
}

// upcomingDeficit reports whether any remaining interval's solar falls
// short of the essential base load.
func upcomingDeficit(ahead []float64, essentialKW float64) bool {
	for _, kw := range ahead {
		if kw < essentialKW {
			return true
		}
	}
	return false
}
