package planner

import (
	"fmt"
	"time"
)

// balanceEpsilon is the tolerance for the per-slot power balance check.
const balanceEpsilon = 1e-6

// UnservableLoadError reports an interval whose essential demand could not
// be met even after exhausting battery, generator and grid. The run is not
// aborted; the slot records the shortfall and the error surfaces the
// critical condition to the caller.
type UnservableLoadError struct {
	Interval  int
	Time      time.Time
	DeficitKW float64
}

func (e *UnservableLoadError) Error() string {
	return fmt.Sprintf("essential load unservable at interval %d (%s): %.3f kW short",
		e.Interval, e.Time.Format(time.RFC3339), e.DeficitKW)
}

// BalanceInvariantError signals that a slot violated the power balance.
// It indicates a bug in one of the components and always aborts the run.
type BalanceInvariantError struct {
	Interval int
	Time     time.Time
	DeltaKW  float64
}

func (e *BalanceInvariantError) Error() string {
	return fmt.Sprintf("power balance violated at interval %d (%s): delta %.9f kW",
		e.Interval, e.Time.Format(time.RFC3339), e.DeltaKW)
}
