package generation

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var hhmmssRe = regexp.MustCompile(`^(\d{2,}):([0-5]\d):([0-5]\d)$`)

// FormatHHMMSS renders a millisecond offset as HH:MM:SS, flooring to the
// containing second. Hours widen past two digits for very long audio.
func FormatHHMMSS(ms int64) string {
	if ms < 0 {
		ms = 0
	}
	total := ms / 1000
	h := total / 3600
	m := (total % 3600) / 60
	s := total % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}

// ParseHHMMSS returns the offset in seconds, or an error for anything that is
// not strict HH:MM:SS.
func ParseHHMMSS(ts string) (int64, error) {
	m := hhmmssRe.FindStringSubmatch(strings.TrimSpace(ts))
	if m == nil {
		return 0, fmt.Errorf("timestamp %q is not HH:MM:SS", ts)
	}
	h, _ := strconv.ParseInt(m[1], 10, 64)
	mi, _ := strconv.ParseInt(m[2], 10, 64)
	s, _ := strconv.ParseInt(m[3], 10, 64)
	return h*3600 + mi*60 + s, nil
}
