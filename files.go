/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"fmt"
)

// humanReadableSize formats a byte count with SI units, e.g. "1.2 kB".
func humanReadableSize(bytes int64) string {
	const unit int64 = 1000

	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}

	value := float64(bytes)
	prefix := 0
	for value >= float64(unit) && prefix < len("kMGTPE") {
		value /= float64(unit)
		prefix++
	}

	return fmt.Sprintf("%.1f %cB", value, "kMGTPE"[prefix-1])
}
