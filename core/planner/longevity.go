package planner

import "math"

// LongevityPolicy minimizes battery wear: shallow cycles, halved rates,
// charging from solar surplus only and never discharging below a comfort
// floor above the hard SOC minimum.
type LongevityPolicy struct{}

// Name implements Policy.
func (LongevityPolicy) Name() string { return "battery_longevity" }

// rateFraction caps charge/discharge magnitude relative to the configured
// limits to reduce cycling stress.
const rateFraction = 0.5

// floorFraction positions the comfort floor inside the usable SOC range.
const floorFraction = 0.25

// Decide implements Policy.
func (LongevityPolicy) Decide(ctx Context) Action {
	act := Action{AllowExport: true}
	net := ctx.NetKW()
	cfg := ctx.Config

	if net < 0 {
		// Only solar surplus ever charges the battery in this mode.
		limit := math.Min(rateFraction*cfg.MaxChargeRateKW, ctx.Battery.Headroom(ctx.SoC, ctx.Interval))
		act.BatteryKW = math.Min(-net, limit)
		return act
	}

	floor := cfg.MinSoC + floorFraction*(cfg.MaxSoC-cfg.MinSoC)
	if ctx.SoC <= floor {
		// Prefer grid or generator over a deep discharge.
		return act
	}
	avail := dischargeAbove(ctx, floor)
	act.BatteryKW = -math.Min(net, math.Min(rateFraction*cfg.MaxDischargeRateKW, avail))
	return act
}

// dischargeAbove returns the bus power deliverable this interval without
// dropping below the given SOC floor.
func dischargeAbove(ctx Context, floor float64) float64 {
	h := ctx.Interval.Hours()
	if h <= 0 {
		return 0
	}
	oneWay := math.Sqrt(ctx.Config.RoundTripEfficiency)
	p := (ctx.SoC - floor) * ctx.Config.BatteryCapacityKWh * oneWay / h
	return math.Max(0, p)
}
