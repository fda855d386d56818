package planner

import "math"

// IndependencePolicy minimizes reliance on the utility grid: battery and
// generator headroom are exhausted before any import, and surplus is only
// exported once the battery is full and the generator is off.
type IndependencePolicy struct{}

// Name implements Policy.
func (IndependencePolicy) Name() string { return "grid_independence" }

// Decide implements Policy.
func (IndependencePolicy) Decide(ctx Context) Action {
	act := Action{GeneratorBeforeGrid: true}
	net := ctx.NetKW()

	if net < 0 {
		act.BatteryKW = math.Min(-net, ctx.Battery.Headroom(ctx.SoC, ctx.Interval))
		act.AllowExport = ctx.SoC >= ctx.Config.MaxSoC-1e-9 && !ctx.GeneratorOn
		return act
	}

	act.BatteryKW = -math.Min(net, ctx.Battery.Available(ctx.SoC, ctx.Interval))
	return act
}
