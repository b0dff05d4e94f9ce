package exporter

import (
	"strconv"
)

// formatSeed renders a seed as decimal text.
func formatSeed(seed uint64) string {
	return strconv.FormatUint(seed, 10)
}
