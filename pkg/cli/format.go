package cli

import "fmt"

var byteUnits = []string{"KB", "MB", "GB", "TB"}

// FormatBytes renders a byte count with a binary unit, e.g. "512 B" or
// "1.50 KB".
func FormatBytes(n int64) string {
	if n < 1024 && n > -1024 {
		return fmt.Sprintf("%d B", n)
	}
	v := float64(n) / 1024
	unit := 0
	for (v >= 1024 || v <= -1024) && unit < len(byteUnits)-1 {
		v /= 1024
		unit++
	}
	return fmt.Sprintf("%.2f %s", v, byteUnits[unit])
}

// FormatBytesInt is FormatBytes for int lengths.
func FormatBytesInt(n int) string {
	return FormatBytes(int64(n))
}
