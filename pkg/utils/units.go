package utils

import (
	"fmt"
	"time"
)

var sizeUnits = []string{"B", "KB", "MB", "GB", "TB", "PB"}

// SizeLabel renders a byte count with a 1024-based unit and one decimal,
// e.g. "5.0 KB". Values below 1 KB render without a decimal.
func SizeLabel(byteCount float64) string {
	if byteCount < 0 {
		byteCount = 0
	}
	if byteCount < 1024 {
		return fmt.Sprintf("%d B", int64(byteCount))
	}

	value := byteCount
	unit := 0
	for value >= 1024 && unit < len(sizeUnits)-1 {
		value /= 1024
		unit++
	}
	return fmt.Sprintf("%.1f %s", value, sizeUnits[unit])
}

// RateLabel is SizeLabel with a per-second suffix.
func RateLabel(bytesPerSecond float64) string {
	return SizeLabel(bytesPerSecond) + "/s"
}

// ShortTimeLabel renders a duration as h:mm:ss, with a day prefix once it
// exceeds 24 hours.
func ShortTimeLabel(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int64(d / time.Second)

	days := total / 86400
	hours := (total % 86400) / 3600
	minutes := (total % 3600) / 60
	seconds := total % 60

	if days > 0 {
		return fmt.Sprintf("%dd %d:%02d:%02d", days, hours, minutes, seconds)
	}
	return fmt.Sprintf("%d:%02d:%02d", hours, minutes, seconds)
}
