package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/chrissnell/streamflow/internal/report"
	"github.com/chrissnell/streamflow/pkg/discharge"
)

// Prints the step by step arithmetic of all three methods for one section so
// the results can be checked against a hand or spreadsheet calculation.
// Defaults are a 20 ft strip between verticals 4'-10" and 3'-10" deep.
func main() {
	var (
		width    = flag.Float64("width", 20.0, "Section width in ft")
		depth1   = flag.Float64("depth1", 4.833, "Depth at the first vertical in ft")
		depth2   = flag.Float64("depth2", 3.833, "Depth at the second vertical in ft")
		vel1     = flag.Float64("vel1", 2.5, "0.6Y velocity at the first vertical in ft/s")
		vel2     = flag.Float64("vel2", 2.3, "0.6Y velocity at the second vertical in ft/s")
		vel081   = flag.Float64("vel08-1", 2.6, "0.8Y velocity at the first vertical in ft/s")
		vel082   = flag.Float64("vel08-2", 2.4, "0.8Y velocity at the second vertical in ft/s")
		vel021   = flag.Float64("vel02-1", 2.3, "0.2Y velocity at the first vertical in ft/s")
		vel022   = flag.Float64("vel02-2", 2.1, "0.2Y velocity at the second vertical in ft/s")
		factor   = flag.Float64("conversion-factor", discharge.DefaultConversionFactor, "Surface velocity conversion factor")
		surfaceV = flag.Float64("surface-velocity", 3.0, "Surface velocity in ft/s")
	)
	flag.Parse()

	section := discharge.Section{Width: *width, DepthFirst: *depth1, DepthSecond: *depth2}
	area := section.Area()

	fmt.Printf("Area calculation:\n")
	fmt.Printf("Width: %g ft\n", *width)
	fmt.Printf("Depths: %g ft, %g ft\n", *depth1, *depth2)
	fmt.Printf("Area = ((%g + %g)/2) * %g = %.3f sq ft\n", *depth1, *depth2, *width, area)

	s06 := discharge.Section06Y{Section: section, VelocityFirst: *vel1, VelocitySecond: *vel2}
	res06, err := discharge.ComputeMidSection06Y([]discharge.Section06Y{s06})
	exitOnError(err)
	fmt.Printf("\n0.6Y Method:\n")
	fmt.Printf("Velocities: %g ft/s, %g ft/s\n", *vel1, *vel2)
	fmt.Printf("Average velocity = (%g + %g)/2 = %.3f ft/s\n", *vel1, *vel2, s06.Velocity())
	fmt.Printf("Discharge = %.3f * %.3f = %s cusecs\n", area, s06.Velocity(), report.FormatTotal(res06.Method, res06.Total))

	s0802 := discharge.Section08Y02Y{
		Section:          section,
		Velocity08First:  *vel081,
		Velocity08Second: *vel082,
		Velocity02First:  *vel021,
		Velocity02Second: *vel022,
	}
	res0802, err := discharge.ComputeMidSection08Y02Y([]discharge.Section08Y02Y{s0802})
	exitOnError(err)
	avg08 := (*vel081 + *vel082) / 2
	avg02 := (*vel021 + *vel022) / 2
	fmt.Printf("\n0.8Y/0.2Y Method:\n")
	fmt.Printf("0.8Y velocities: %g ft/s, %g ft/s\n", *vel081, *vel082)
	fmt.Printf("0.2Y velocities: %g ft/s, %g ft/s\n", *vel021, *vel022)
	fmt.Printf("Average at 0.8Y = (%g + %g)/2 = %.3f ft/s\n", *vel081, *vel082, avg08)
	fmt.Printf("Average at 0.2Y = (%g + %g)/2 = %.3f ft/s\n", *vel021, *vel022, avg02)
	fmt.Printf("Final average = (%.3f + %.3f)/2 = %.3f ft/s\n", avg08, avg02, s0802.Velocity())
	fmt.Printf("Discharge = %.3f * %.3f = %s cusecs\n", area, s0802.Velocity(), report.FormatTotal(res0802.Method, res0802.Total))

	resSurface, err := discharge.ComputeSurfaceVelocity([]discharge.Section{section}, *factor, *surfaceV)
	exitOnError(err)
	fmt.Printf("\nSurface Velocity Method:\n")
	fmt.Printf("Conversion factor: %g\n", *factor)
	fmt.Printf("Surface velocity: %g ft/s\n", *surfaceV)
	fmt.Printf("Area: %.3f sq ft\n", area)
	fmt.Printf("Discharge = %g * %.3f * %g = %s cusecs\n", *factor, area, *surfaceV, report.FormatTotal(resSurface.Method, resSurface.Total))
}

func exitOnError(err error) {
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
