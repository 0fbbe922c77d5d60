package meshtastic

import (
	"strconv"
	"strings"
)

// compareVersions compares two dotted numeric version strings
// ("2.3.2"), returning -1, 0, or 1 as a is less than, equal to, or
// greater than b. Missing or non-numeric components compare as zero, so
// a malformed version never panics, only sorts low.
func compareVersions(a, b string) int {
	as, bs := strings.Split(a, "."), strings.Split(b, ".")
	for i := 0; i < len(as) || i < len(bs); i++ {
		var av, bv int
		if i < len(as) {
			av, _ = strconv.Atoi(as[i])
		}
		if i < len(bs) {
			bv, _ = strconv.Atoi(bs[i])
		}
		switch {
		case av < bv:
			return -1
		case av > bv:
			return 1
		}
	}
	return 0
}
