package admission

import (
	"math"
	"testing"

	"github.com/kilianp07/microgrid/core/model"
)

func device(id string, typ model.DeviceType, watts float64, prio int) model.Device {
	return model.Device{ID: id, Name: id, RatedPowerW: watts, Type: typ, Priority: prio, Active: true}
}

func TestAdmitEssentialAlwaysServed(t *testing.T) {
	devices := []model.Device{
		device("fridge", model.DeviceEssential, 2000, 0),
		device("router", model.DeviceEssential, 500, 1),
	}
	// No supply at all: essential demand is still admitted.
	res := Admit(devices, Request{AvailableKW: 0})
	if math.Abs(res.EssentialKW-2.5) > 1e-9 {
		t.Fatalf("expected 2.5 essential got %v", res.EssentialKW)
	}
	if res.DiscretionaryKW != 0 {
		t.Fatalf("expected no discretionary got %v", res.DiscretionaryKW)
	}
	if math.Abs(res.TotalKW()-2.5) > 1e-9 {
		t.Fatalf("expected total 2.5 got %v", res.TotalKW())
	}
}

func TestAdmitBudgetCutsDiscretionary(t *testing.T) {
	devices := []model.Device{
		device("fridge", model.DeviceEssential, 1000, 0),
		device("washer", model.DeviceFlexible, 2000, 0),
		device("pool", model.DeviceOptional, 3000, 0),
	}
	res := Admit(devices, Request{AvailableKW: 4})
	// Budget 4 kW: essential 1 + washer 2 fit, pool 3 does not.
	if math.Abs(res.EssentialKW-1) > 1e-9 || math.Abs(res.DiscretionaryKW-2) > 1e-9 {
		t.Fatalf("expected 1 essential / 2 discretionary got %v / %v", res.EssentialKW, res.DiscretionaryKW)
	}
	if len(res.Grants) != 3 {
		t.Fatalf("expected 3 grants got %d", len(res.Grants))
	}
	if res.Grants[2].PowerKW != 0 || res.Grants[2].Deferred {
		t.Fatalf("pool must be cut, not deferred: %+v", res.Grants[2])
	}
}

func TestAdmitSafetyMarginShrinksBudget(t *testing.T) {
	devices := []model.Device{
		device("washer", model.DeviceFlexible, 2000, 0),
	}
	// 2.5 kW * (1 - 0.25) = 1.875 kW budget, below the 2 kW draw.
	res := Admit(devices, Request{AvailableKW: 2.5, SafetyMargin: 0.25})
	if res.DiscretionaryKW != 0 {
		t.Fatalf("expected washer rejected under margin got %v", res.DiscretionaryKW)
	}

	res = Admit(devices, Request{AvailableKW: 2.5})
	if math.Abs(res.DiscretionaryKW-2) > 1e-9 {
		t.Fatalf("expected 2 without margin got %v", res.DiscretionaryKW)
	}
}

func TestAdmitDeterministicOrdering(t *testing.T) {
	devices := []model.Device{
		device("b", model.DeviceOptional, 1000, 2),
		device("a", model.DeviceOptional, 1000, 2),
		device("c", model.DeviceFlexible, 1000, 5),
		device("d", model.DeviceEssential, 1000, 9),
	}
	res := Admit(devices, Request{AvailableKW: 100})
	// Type first, then priority, then ID.
	want := []string{"d", "c", "a", "b"}
	for i, g := range res.Grants {
		if g.Device.ID != want[i] {
			t.Fatalf("grant %d: expected %s got %s", i, want[i], g.Device.ID)
		}
	}
}

func TestAdmitWindowDefers(t *testing.T) {
	d := device("heater", model.DeviceFlexible, 1000, 0)
	d.Window = &model.HourWindow{StartHour: 22, EndHour: 6}
	devices := []model.Device{d}

	res := Admit(devices, Request{AvailableKW: 10, Hour: 12})
	if len(res.Grants) != 1 || !res.Grants[0].Deferred {
		t.Fatalf("expected deferred grant got %+v", res.Grants)
	}
	if math.Abs(res.DeferredKW-1) > 1e-9 || res.TotalKW() != 0 {
		t.Fatalf("expected 1 kW deferred, nothing admitted: %v / %v", res.DeferredKW, res.TotalKW())
	}

	res = Admit(devices, Request{AvailableKW: 10, Hour: 23})
	if res.Grants[0].Deferred {
		t.Fatalf("expected admission inside window")
	}
	if math.Abs(res.DiscretionaryKW-1) > 1e-9 {
		t.Fatalf("expected 1 kW admitted got %v", res.DiscretionaryKW)
	}
}

func TestAdmitMinRuntimeForcesWindow(t *testing.T) {
	d := device("pump", model.DeviceFlexible, 1000, 0)
	d.Window = &model.HourWindow{StartHour: 22, EndHour: 6}
	d.MinRuntimeMinutes = 120
	devices := []model.Device{d}

	// Outside the window but short of its daily runtime: admitted anyway.
	res := Admit(devices, Request{
		AvailableKW:  10,
		Hour:         12,
		RuntimeToday: map[string]float64{"pump": 30},
	})
	if res.Grants[0].Deferred {
		t.Fatalf("expected forced admission short of runtime")
	}
	if math.Abs(res.DiscretionaryKW-1) > 1e-9 {
		t.Fatalf("expected 1 kW admitted got %v", res.DiscretionaryKW)
	}

	// Runtime met: the window applies again.
	res = Admit(devices, Request{
		AvailableKW:  10,
		Hour:         12,
		RuntimeToday: map[string]float64{"pump": 120},
	})
	if !res.Grants[0].Deferred {
		t.Fatalf("expected deferral once runtime is met")
	}
}

func TestAdmitForcedDeviceStillBudgetBound(t *testing.T) {
	d := device("pump", model.DeviceFlexible, 5000, 0)
	d.Window = &model.HourWindow{StartHour: 22, EndHour: 6}
	d.MinRuntimeMinutes = 60
	devices := []model.Device{d}

	res := Admit(devices, Request{AvailableKW: 2, Hour: 12, RuntimeToday: map[string]float64{}})
	if res.Grants[0].Deferred {
		t.Fatalf("expected no deferral")
	}
	if res.Grants[0].PowerKW != 0 {
		t.Fatalf("forced device must still respect the budget, got %v", res.Grants[0].PowerKW)
	}
}

func TestAdmitSkipsInactive(t *testing.T) {
	d := device("old", model.DeviceEssential, 1000, 0)
	d.Active = false
	res := Admit([]model.Device{d}, Request{AvailableKW: 10})
	if len(res.Grants) != 0 || res.TotalKW() != 0 {
		t.Fatalf("expected inactive device skipped: %+v", res)
	}
}
