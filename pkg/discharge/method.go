// Package discharge computes open-channel discharge from mid-section
// measurements using the 0.6Y, 0.8Y/0.2Y and surface velocity methods.
//
// All lengths are feet, velocities feet per second and discharge cubic feet
// per second (cusecs). No unit conversion is performed.
package discharge

import (
	"fmt"
	"strings"
)

// Method identifies a velocity averaging method
type Method string

const (
	// Method06Y samples velocity at 0.6 of the depth at both verticals
	Method06Y Method = "0.6y"

	// Method08Y02Y samples velocity at 0.8 and 0.2 of the depth at both verticals
	Method08Y02Y Method = "0.8y-0.2y"

	// MethodSurface scales one surface velocity by a conversion factor
	MethodSurface Method = "surface"
)

// DefaultConversionFactor is the customary surface-to-mean velocity ratio
const DefaultConversionFactor = 0.85

// Methods lists the supported methods in menu order
var Methods = []Method{Method06Y, Method08Y02Y, MethodSurface}

// ParseMethod accepts a method name or its menu number (1, 2 or 3)
func ParseMethod(s string) (Method, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "0.6y", "06y", "0.6":
		return Method06Y, nil
	case "2", "0.8y-0.2y", "0.8y/0.2y", "08y02y", "0.8y0.2y":
		return Method08Y02Y, nil
	case "3", "surface", "surface-velocity":
		return MethodSurface, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownMethod, s)
}

// Valid reports whether m is one of the supported methods
func (m Method) Valid() bool {
	switch m {
	case Method06Y, Method08Y02Y, MethodSurface:
		return true
	}
	return false
}

// Decimals is the number of decimal places a reported total is rounded to
func (m Method) Decimals() int {
	if m == Method06Y {
		return 3
	}
	return 4
}

// Title is the human readable method name used in reports
func (m Method) Title() string {
	switch m {
	case Method06Y:
		return "0.6Y Method"
	case Method08Y02Y:
		return "0.8Y/0.2Y Method"
	case MethodSurface:
		return "Surface Velocity Method"
	}
	return string(m)
}

func (m Method) String() string {
	return string(m)
}
