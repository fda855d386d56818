// Package planner produces time-discretized dispatch plans for a microgrid.
// It runs a sequential forward simulation over the horizon: each interval
// samples the solar forecast, admits loads, balances battery, generator and
// grid under the active optimization policy, and emits one schedule slot.
package planner

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/kilianp07/microgrid/core/admission"
	"github.com/kilianp07/microgrid/core/battery"
	"github.com/kilianp07/microgrid/core/events"
	"github.com/kilianp07/microgrid/core/forecast"
	"github.com/kilianp07/microgrid/core/generator"
	"github.com/kilianp07/microgrid/core/grid"
	"github.com/kilianp07/microgrid/core/logger"
	"github.com/kilianp07/microgrid/core/model"
	"github.com/kilianp07/microgrid/internal/eventbus"
)

// Planner generates schedules. It holds no per-run state; a single Planner
// may serve concurrent runs for different microgrids.
type Planner struct {
	Log     logger.Logger
	Bus     eventbus.EventBus
	Sampler forecast.Sampler
}

// New returns a Planner logging through the given logger.
func New(log logger.Logger) *Planner {
	if log == nil {
		log = logger.Nop{}
	}
	return &Planner{Log: log}
}

// GenerateSchedule runs the full horizon and returns the completed
// schedule. Essential-load shortfalls are surfaced as a joined
// UnservableLoadError alongside the schedule; all other errors abort the
// run and return a nil schedule.
func (p *Planner) GenerateSchedule(
	points []model.ForecastPoint,
	devices []model.Device,
	cfg model.SystemConfiguration,
	horizon time.Duration,
	start time.Time,
	interval time.Duration,
) (*model.Schedule, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration: %w", err)
	}
	for _, d := range devices {
		if err := d.Validate(); err != nil {
			return nil, err
		}
	}
	if interval <= 0 || horizon < interval {
		return nil, fmt.Errorf("horizon %s and interval %s must be positive with horizon >= interval", horizon, interval)
	}
	n := int(horizon / interval)

	policy, err := ForMode(cfg.Mode)
	if err != nil {
		return nil, err
	}
	bat, err := battery.New(cfg)
	if err != nil {
		return nil, err
	}
	gen := generator.New(cfg)
	broker := grid.New(cfg)

	samples, err := p.Sampler.Sample(points, start, interval, n)
	if err != nil {
		return nil, err
	}

	p.publish(events.RunStartedEvent{Date: start, Mode: cfg.Mode, Intervals: n})
	p.Log.Infof("planning %d intervals of %s in %s mode", n, interval, cfg.Mode)

	soc := cfg.InitialSoC
	runtimeToday := make(map[string]float64, len(devices))
	slots := make([]model.ScheduleTimeSlot, 0, n)
	var shortfalls []error

	for i := 0; i < n; i++ {
		t := start.Add(time.Duration(i) * interval)
		slot, newSoC, stepErr := p.step(stepInput{
			index:        i,
			time:         t,
			interval:     interval,
			solarKW:      samples[i],
			ahead:        samples[i+1:],
			soc:          soc,
			devices:      devices,
			cfg:          cfg,
			policy:       policy,
			bat:          bat,
			gen:          gen,
			broker:       broker,
			runtimeToday: runtimeToday,
		})
		if stepErr != nil {
			var unservable *UnservableLoadError
			if errors.As(stepErr, &unservable) {
				shortfalls = append(shortfalls, stepErr)
				p.publish(events.ShortfallEvent{Interval: i, Time: t, DeficitKW: unservable.DeficitKW})
			} else {
				return nil, stepErr
			}
		}
		soc = newSoC
		slots = append(slots, slot)
	}

	sched := &model.Schedule{
		Date:       start,
		Mode:       cfg.Mode,
		InitialSoC: cfg.InitialSoC,
		FinalSoC:   soc,
		Slots:      slots,
		Metrics:    Aggregate(slots, cfg, interval),
	}
	p.publish(events.RunCompletedEvent{Schedule: sched})
	return sched, errors.Join(shortfalls...)
}

type stepInput struct {
	index        int
	time         time.Time
	interval     time.Duration
	solarKW      float64
	ahead        []float64
	soc          float64
	devices      []model.Device
	cfg          model.SystemConfiguration
	policy       Policy
	bat          *battery.Model
	gen          *generator.Controller
	broker       grid.Broker
	runtimeToday map[string]float64
}

// step computes one ScheduleTimeSlot. It returns the post-interval SOC and,
// when essential demand went unserved, an UnservableLoadError while still
// producing a physically consistent slot.
func (p *Planner) step(in stepInput) (model.ScheduleTimeSlot, float64, error) {
	hour := in.time.Hour()

	adm := admission.Admit(in.devices, admission.Request{
		AvailableKW:  in.solarKW,
		SafetyMargin: in.cfg.SafetyMargin,
		Hour:         hour,
		RuntimeToday: in.runtimeToday,
	})
	loadKW := adm.TotalKW()

	act := in.policy.Decide(Context{
		Index:         in.index,
		Time:          in.time,
		Hour:          hour,
		Interval:      in.interval,
		SoC:           in.soc,
		SolarKW:       in.solarKW,
		LoadKW:        loadKW,
		EssentialKW:   adm.EssentialKW,
		ForecastAhead: in.ahead,
		GeneratorOn:   in.gen.Running(),
		Battery:       in.bat,
		Config:        in.cfg,
	})

	tr, err := in.bat.Apply(in.soc, act.BatteryKW, in.interval)
	if err != nil {
		return model.ScheduleTimeSlot{}, in.soc, fmt.Errorf("interval %d (%s): %w", in.index, in.time.Format(time.RFC3339), err)
	}

	exportAllowed := act.AllowExport && in.broker.ExportEnabled()

	// Residual before generator and grid: positive is deficit.
	demand := loadKW + tr.ChargeKW
	residual := demand - in.solarKW - tr.DischargeKW

	genState := in.gen.State()
	genReq := p.generatorRequest(in, act, tr, residual, demand, exportAllowed)
	genOut := in.gen.Step(genReq, in.interval)
	if genOut.State != genState {
		p.publish(events.GeneratorTransitionEvent{Interval: in.index, Time: in.time, From: genState.String(), To: genOut.State.String()})
	}
	residual -= genOut.PowerKW

	var flow grid.Flow
	if residual < 0 && !exportAllowed {
		flow = grid.Flow{CurtailedKW: -residual}
	} else {
		flow = in.broker.Settle(residual, hour, in.interval)
	}

	// Deficit beyond every source: cancel grid-driven charging first, then
	// discharge the battery down to its floor regardless of policy, then
	// shed discretionary loads, finally record an essential shortfall.
	unserved := flow.UnservedKW
	var shortfallErr error
	if unserved > 0 && tr.ChargeKW > 0 {
		reduce := math.Min(tr.ChargeKW, unserved)
		tr2, applyErr := in.bat.Apply(in.soc, tr.ChargeKW-reduce, in.interval)
		if applyErr != nil {
			return model.ScheduleTimeSlot{}, in.soc, applyErr
		}
		tr = tr2
		unserved -= reduce
	}
	if unserved > 0 {
		tr2, applyErr := in.bat.Apply(in.soc, -(tr.DischargeKW + unserved), in.interval)
		if applyErr != nil {
			return model.ScheduleTimeSlot{}, in.soc, applyErr
		}
		unserved -= tr2.DischargeKW - tr.DischargeKW
		tr = tr2
	}
	shedDisc, shedEss := shedLoads(adm.Grants, unserved)
	servedLoad := loadKW - shedDisc - shedEss
	if shedEss > 0 {
		shortfallErr = &UnservableLoadError{Interval: in.index, Time: in.time, DeficitKW: shedEss}
		p.Log.Errorf("interval %d: %.3f kW of essential load unserved", in.index, shedEss)
	}

	// Curtailment displaces solar; the generator request is sized so the
	// curtailed power never exceeds the available solar.
	solarUsed := in.solarKW - flow.CurtailedKW

	for _, g := range adm.Grants {
		if g.PowerKW > 0 {
			in.runtimeToday[g.Device.ID] += in.interval.Minutes()
		}
	}

	slot := model.ScheduleTimeSlot{
		Time:               in.time,
		SolarAvailableKW:   in.solarKW,
		SolarGenerationKW:  solarUsed,
		TotalLoadKW:        servedLoad,
		UnservedLoadKW:     shedDisc + shedEss,
		BatteryChargeKW:    tr.ChargeKW,
		BatteryDischargeKW: tr.DischargeKW,
		BatterySoC:         tr.SoC,
		GridImportKW:       flow.ImportKW,
		GridExportKW:       flow.ExportKW,
		GeneratorPowerKW:   genOut.PowerKW,
		Devices:            assignSources(adm.Grants, solarUsed, tr.DischargeKW, genOut.PowerKW, flow.ImportKW),
	}

	supply := slot.SolarGenerationKW + slot.BatteryDischargeKW + slot.GridImportKW + slot.GeneratorPowerKW
	sink := slot.TotalLoadKW + slot.BatteryChargeKW + slot.GridExportKW
	if delta := supply - sink; math.Abs(delta) > balanceEpsilon {
		return model.ScheduleTimeSlot{}, in.soc, &BalanceInvariantError{Interval: in.index, Time: in.time, DeltaKW: delta}
	}

	return slot, tr.SoC, shortfallErr
}

// generatorRequest sizes the generator output for the interval. A running
// generator inside its minimum-runtime window is held at least at its idle
// floor, bounded by what the interval can absorb; otherwise the generator
// only starts for deficit the policy routes to it.
func (p *Planner) generatorRequest(in stepInput, act Action, tr battery.Transfer, residual, demand float64, exportAllowed bool) float64 {
	gen := in.gen
	deficit := math.Max(residual, 0)

	if gen.Running() && !gen.MinRuntimeMet() {
		idle := gen.IdleFloorKW()
		if !exportAllowed {
			// Without export, idle output can only displace solar or cover
			// deficit; never produce power with no sink.
			sink := math.Max(deficit, demand-tr.DischargeKW)
			idle = math.Min(idle, math.Max(sink, 0))
		}
		return math.Max(deficit, idle)
	}

	if deficit <= 0 {
		return 0
	}
	if act.GeneratorBeforeGrid {
		return deficit
	}
	// Grid-first policies start the generator only for deficit the import
	// cap leaves uncovered.
	headroom := in.broker.ImportHeadroomKW(0)
	if deficit > headroom {
		return deficit - headroom
	}
	return 0
}

// shedLoads reduces grants in reverse admission order to absorb unserved
// power. Discretionary demand is curtailed silently; the essential
// remainder is returned separately.
func shedLoads(grants []admission.Grant, unservedKW float64) (shedDisc, shedEss float64) {
	if unservedKW <= 0 {
		return 0, 0
	}
	remaining := unservedKW
	for i := len(grants) - 1; i >= 0 && remaining > 0; i-- {
		g := &grants[i]
		if g.PowerKW <= 0 || g.Device.Type == model.DeviceEssential {
			continue
		}
		cut := math.Min(g.PowerKW, remaining)
		g.PowerKW -= cut
		shedDisc += cut
		remaining -= cut
	}
	for i := len(grants) - 1; i >= 0 && remaining > 0; i-- {
		g := &grants[i]
		if g.PowerKW <= 0 {
			continue
		}
		cut := math.Min(g.PowerKW, remaining)
		g.PowerKW -= cut
		shedEss += cut
		remaining -= cut
	}
	return shedDisc, shedEss
}

// assignSources tags each allocation with the source supplying most of its
// power, filling devices in admission order from solar, battery, generator
// and grid in that merit order.
func assignSources(grants []admission.Grant, solarKW, batteryKW, generatorKW, gridKW float64) []model.DeviceAllocation {
	pools := []struct {
		src model.PowerSource
		kw  float64
	}{
		{model.SourceSolar, solarKW},
		{model.SourceBattery, batteryKW},
		{model.SourceGenerator, generatorKW},
		{model.SourceGrid, gridKW},
	}
	allocs := make([]model.DeviceAllocation, 0, len(grants))
	pi := 0
	for _, g := range grants {
		a := model.DeviceAllocation{DeviceID: g.Device.ID, PowerKW: g.PowerKW, Source: model.SourceNone}
		if g.PowerKW > 0 {
			need := g.PowerKW
			best, bestKW := model.SourceNone, 0.0
			for need > 0 && pi < len(pools) {
				take := math.Min(need, pools[pi].kw)
				if take > bestKW {
					best, bestKW = pools[pi].src, take
				}
				need -= take
				pools[pi].kw -= take
				if pools[pi].kw <= 1e-12 {
					pi++
				}
			}
			a.Source = best
		}
		allocs = append(allocs, a)
	}
	return allocs
}

func (p *Planner) publish(e eventbus.Event) {
	if p.Bus != nil {
		p.Bus.Publish(e)
	}
}
