package textutil

import (
	"fmt"
	"time"
)

// FormatSpeed renders a transfer rate in bytes per second as a fixed-width
// value and its unit label. unit "Mbps" reports megabits, anything else
// megabytes.
func FormatSpeed(bytesPerSecond float64, unit string) (string, string) {
	if bytesPerSecond < 0 {
		bytesPerSecond = 0
	}
	if unit == "Mbps" {
		return fmt.Sprintf("%5.1f", bytesPerSecond*8/1e6), "Mb/s"
	}
	return fmt.Sprintf("%5.1f", bytesPerSecond/1e6), "MB/s"
}

// FormatSeconds renders a stage duration like "1.4s" or "2m05s".
func FormatSeconds(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}
	if seconds < 60 {
		return fmt.Sprintf("%.1fs", seconds)
	}
	d := time.Duration(seconds * float64(time.Second)).Round(time.Second)
	m := int(d / time.Minute)
	s := int((d % time.Minute) / time.Second)
	return fmt.Sprintf("%dm%02ds", m, s)
}

// FormatBytes renders a byte count using binary units.
func FormatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for v := n / unit; v >= unit; v /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
