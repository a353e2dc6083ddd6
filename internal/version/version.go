package version

import "fmt"

// Release components reported in the service banner.
const (
	Major  = 1
	Minor  = 0
	Patch  = 0
	OptTag = ""
)

// String returns the display form, e.g. "V1.0.0" or "V1.0.0-beta".
func String() string {
	s := fmt.Sprintf("V%d.%d.%d", Major, Minor, Patch)
	if OptTag != "" {
		s += "-" + OptTag
	}
	return s
}
