// Package constants defines application-wide constants and version information.
package constants

import "runtime"

// Version holds the application version information
const Version = "1.0-" + runtime.GOOS + "/" + runtime.GOARCH

// Units used in every printed and served value
const (
	UnitLength    = "ft"
	UnitVelocity  = "ft/s"
	UnitArea      = "sq ft"
	UnitDischarge = "cusecs"
)
