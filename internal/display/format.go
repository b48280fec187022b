// Package display renders the banner and the human-readable sizes used in
// per-file and summary log lines.
package display

import (
	"fmt"
	"strconv"
)

var byteUnits = []string{"KiB", "MiB", "GiB", "TiB", "PiB", "EiB"}

// FormatBytes returns n in binary units with one decimal ("3.2 MiB").
// Values under 1 KiB are printed exactly ("512 B").
func FormatBytes(n int64) string {
	if n < 1024 {
		return strconv.FormatInt(n, 10) + " B"
	}
	v := float64(n) / 1024
	i := 0
	for v >= 1024 && i < len(byteUnits)-1 {
		v /= 1024
		i++
	}
	return fmt.Sprintf("%.1f %s", v, byteUnits[i])
}

// FormatBytesWithSign formats a size delta: "+ 1.0 MiB", "- 5.0 MiB", "0 B".
func FormatBytesWithSign(n int64) string {
	switch {
	case n > 0:
		return "+ " + FormatBytes(n)
	case n < 0:
		return "- " + FormatBytes(-n)
	}
	return FormatBytes(0)
}

// FormatRatio returns out as a whole percentage of in ("12%"). An empty
// input reports "n/a".
func FormatRatio(out, in int64) string {
	if in <= 0 {
		return "n/a"
	}
	return strconv.FormatInt(out*100/in, 10) + "%"
}
