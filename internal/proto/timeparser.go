// ABOUTME: Time-string parsing for the seek command
// ABOUTME: Parses "<integer>[unit]" into a microsecond count
package proto

import (
	"fmt"
	"strconv"
)

// unitMultipliers maps a time-string unit suffix to its multiplier in
// microseconds. An empty unit defaults to microseconds.
var unitMultipliers = map[string]uint64{
	"":   1,
	"us": 1,
	"ms": 1000,
	"s":  1000000,
	"m":  60000000,
	"h":  3600000000,
}

// ParseTime parses a time string of the form "<integer><unit>", where
// unit is one of "", "us", "ms", "s", "m", "h", into a microsecond
// count.
func ParseTime(timeStr string) (uint64, error) {
	digits := 0
	for digits < len(timeStr) && timeStr[digits] >= '0' && timeStr[digits] <= '9' {
		digits++
	}
	if digits == 0 {
		return 0, fmt.Errorf("seek time has no leading number: %q", timeStr)
	}

	num, err := strconv.ParseUint(timeStr[:digits], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("seek time number out of range: %q", timeStr)
	}

	unit := timeStr[digits:]
	multiplier, ok := unitMultipliers[unit]
	if !ok {
		return 0, fmt.Errorf("unrecognised time unit %q", unit)
	}

	return num * multiplier, nil
}
