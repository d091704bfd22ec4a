package views

import (
	"fmt"
	"strings"
)

// ProgressBar renders pct (0..100) as a bar width cells wide followed by
// the percentage.
func ProgressBar(pct float64, width int) string {
	pct = min(max(pct, 0), 100)
	filled := int(pct / 100 * float64(width))
	return "[" + strings.Repeat("█", filled) + strings.Repeat("░", width-filled) + "] " + fmt.Sprintf("%3.0f%%", pct)
}
