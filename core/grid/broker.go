// Package grid settles the residual power of an interval against the
// utility connection, applying time-of-use tariffs and the export policy.
package grid

import (
	"math"
	"time"

	"github.com/kilianp07/microgrid/core/model"
)

// Flow is the grid contribution for one interval. ImportKW and ExportKW
// are mutually exclusive.
type Flow struct {
	ImportKW    float64
	ExportKW    float64
	CurtailedKW float64
	// UnservedKW is deficit left uncovered because the import cap was hit.
	UnservedKW float64
	Cost       float64
	Revenue    float64
}

// Broker computes grid import/export and the associated cost or revenue.
type Broker struct {
	peakRate      float64
	offPeakRate   float64
	exportRate    float64
	peakWindow    model.HourWindow
	exportEnabled bool
	maxImportKW   float64 // 0 = unlimited
}

// New builds a Broker from the system configuration.
func New(cfg model.SystemConfiguration) Broker {
	return Broker{
		peakRate:      cfg.GridPeakRate,
		offPeakRate:   cfg.GridOffPeakRate,
		exportRate:    cfg.GridExportRate,
		peakWindow:    model.HourWindow{StartHour: cfg.PeakStartHour, EndHour: cfg.PeakEndHour},
		exportEnabled: cfg.GridExportEnabled,
		maxImportKW:   cfg.GridMaxImportKW,
	}
}

// ImportRate returns the tariff applying at the given hour of day.
func (b Broker) ImportRate(hour int) float64 {
	if b.peakWindow.Contains(hour) {
		return b.peakRate
	}
	return b.offPeakRate
}

// ImportHeadroomKW returns how much more the grid can supply on top of the
// given import level.
func (b Broker) ImportHeadroomKW(currentImportKW float64) float64 {
	if b.maxImportKW <= 0 {
		return math.Inf(1)
	}
	return math.Max(0, b.maxImportKW-currentImportKW)
}

// ExportEnabled reports whether surplus may be sold to the grid.
func (b Broker) ExportEnabled() bool { return b.exportEnabled }

// Settle resolves the residual power of an interval. A positive residual is
// a deficit to import, a negative one a surplus to export. Surplus beyond
// the export policy is curtailed, never an error; deficit beyond the import
// cap is reported as unserved for the planner to handle.
func (b Broker) Settle(residualKW float64, hour int, interval time.Duration) Flow {
	var f Flow
	h := interval.Hours()
	switch {
	case residualKW > 0:
		imp := residualKW
		if b.maxImportKW > 0 && imp > b.maxImportKW {
			f.UnservedKW = imp - b.maxImportKW
			imp = b.maxImportKW
		}
		f.ImportKW = imp
		f.Cost = imp * h * b.ImportRate(hour)
	case residualKW < 0:
		surplus := -residualKW
		if b.exportEnabled {
			f.ExportKW = surplus
			f.Revenue = surplus * h * b.exportRate
		} else {
			f.CurtailedKW = surplus
		}
	}
	return f
}
