// Package report renders discharge results as console text and CSV.
package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/chrissnell/streamflow/internal/constants"
	"github.com/chrissnell/streamflow/pkg/discharge"
)

// FormatTotal prints a rounded total without trailing zeros, e.g. 220.983
func FormatTotal(method discharge.Method, total float64) string {
	return strconv.FormatFloat(discharge.Round(total, method.Decimals()), 'f', -1, 64)
}

// WriteSnapshot prints one section and the running total after it
func WriteSnapshot(w io.Writer, method discharge.Method, snap discharge.Snapshot) error {
	s := snap.Section
	_, err := fmt.Fprintf(w, "Section %d:\n"+
		"  Area: %.3f %s\n"+
		"  Velocity: %.3f %s\n"+
		"  Section discharge: %.3f %s\n"+
		"Total discharge so far: %s %s\n",
		s.Index,
		s.Area, constants.UnitArea,
		s.Velocity, constants.UnitVelocity,
		s.Discharge, constants.UnitDischarge,
		FormatTotal(method, snap.RunningTotal), constants.UnitDischarge)
	return err
}

// WriteTotal prints the final line of a computation
func WriteTotal(w io.Writer, res *discharge.Result) error {
	_, err := fmt.Fprintf(w, "Total discharge calculated using %s: %s cubic feet per second (cusecs)\n",
		res.Method.Title(), FormatTotal(res.Method, res.Total))
	return err
}

// WriteSummary prints the cross-section summary of a profile
func WriteSummary(w io.Writer, p discharge.Profile) error {
	s := p.Summary
	_, err := fmt.Fprintf(w, "Sections: %d\n"+
		"Total area: %.3f %s\n"+
		"Mean depth: %.3f %s (max %.3f %s)\n"+
		"Mean velocity: %.3f %s (max %.3f %s)\n"+
		"Peak section: %d (%.3f %s)\n",
		s.Sections,
		s.TotalArea, constants.UnitArea,
		s.MeanDepth, constants.UnitLength, s.MaxDepth, constants.UnitLength,
		s.MeanVelocity, constants.UnitVelocity, s.MaxVelocity, constants.UnitVelocity,
		s.PeakSection, s.MaxDischarge, constants.UnitDischarge)
	return err
}

// WriteProfileCSV writes one row per measurement point with the plotting series
func WriteProfileCSV(w io.Writer, p discharge.Profile) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"point", "mean_depth", "velocity", "area", "discharge", "cumulative", "share"}); err != nil {
		return err
	}

	f := func(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }
	for i := range p.Points {
		row := []string{
			strconv.Itoa(int(p.Points[i])),
			f(p.Depths[i]),
			f(p.Velocities[i]),
			f(p.Areas[i]),
			f(p.Discharges[i]),
			f(p.Cumulative[i]),
			f(p.Summary.Shares[i]),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
